package runner

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/twinflow/twinflow/internal/emulator"
	"github.com/twinflow/twinflow/internal/measure"
	"github.com/twinflow/twinflow/internal/ring"
	"github.com/twinflow/twinflow/internal/sequencer"
	"github.com/twinflow/twinflow/internal/sli"
)

// maxDeltaSleep caps the consumer's self-clocking sleep in
// REAL_DELTA_T mode so a gap in the trace cannot stall the run.
const maxDeltaSleep = 5 * time.Second

type traceStep = sli.Step[measure.Measurement]

// Runner wires a trace file, the ring buffer, and a sequencer into the
// two-goroutine pipeline: the producer pushes and paces, the consumer
// pulls and processes, termination is producer-initiated by closing
// the buffer.
type Runner struct {
	opts    Options
	runID   string
	tracker *Tracker
}

// New validates the options and creates a runner. Each runner carries
// a UUIDv7 run ID for log and report correlation. tracking receives
// the interleaved narration when Options.Tracking is set; pass nil to
// discard it.
func New(opts Options, tracking io.Writer) (*Runner, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	r := &Runner{opts: opts, runID: uuid.Must(uuid.NewV7()).String()}
	if opts.Tracking {
		r.tracker = NewTracker(tracking)
	}
	return r, nil
}

// RunID returns the run correlation token.
func (r *Runner) RunID() string { return r.runID }

// RunTrace replays a trace through the trace semantics: every pair of
// consecutive measurements becomes one timestamped step.
func (r *Runner) RunTrace(ctx context.Context, tracePath string) (*Report, error) {
	buf := ring.New[*measure.Measurement](r.opts.Capacity)
	emu, err := emulator.Open(tracePath, buf, r.opts.Period())
	if err != nil {
		return nil, err
	}

	traceSem := sli.NewTraceSemantics(emulator.Duration)
	seq := sequencer.New[*measure.Measurement, *traceStep, sli.StepAction, *measure.Measurement](traceSem, buf)

	r.attachTracking(emu, buf)
	seq.OnOutput(func(step *traceStep) {
		if step == nil {
			r.tracker.Printf("[T2 sequencer] first reading - no step yet, config initialized")
			return
		}
		r.tracker.Printf("[T2 sequencer] %s", step)
	})
	if r.opts.Mode == ModeRealDeltaT {
		sleep := r.deltaTSleeper(ctx)
		seq.OnInput(func(m *measure.Measurement, _ *measure.Measurement) { sleep(m) })
	}

	err = r.drive(ctx, emu, seq.Run)
	return r.baseReport(tracePath, emu, buf, seq.InputsProcessed(), seq.OutputsProduced(), seq.Elapsed()), err
}

// attachTracking narrates producer-side progress through the tracker.
func (r *Runner) attachTracking(emu *emulator.Emulator, buf *ring.Ring[*measure.Measurement]) {
	if r.tracker == nil {
		return
	}
	emu.OnReading = func(m *measure.Measurement) {
		r.tracker.Printf("[T1 emulator] fifo.write(m%d)  [fifo: %d/%d]", m.Number(), buf.Len(), buf.Cap())
	}
}

// deltaTSleeper returns the REAL_DELTA_T input listener: it sleeps
// min(Δt, 5s) between consecutive measurements based on their time
// column. The listener runs on the sequencer goroutine, so the sleep
// is exactly the intended consumer self-clocking.
func (r *Runner) deltaTSleeper(ctx context.Context) func(*measure.Measurement) {
	var prev *measure.Measurement
	return func(m *measure.Measurement) {
		defer func() { prev = m }()
		if prev == nil {
			return
		}
		t1, ok1 := emulator.TimeValue(prev)
		t2, ok2 := emulator.TimeValue(m)
		if !ok1 || !ok2 {
			return
		}
		d := t2 - t1
		if d < 0 {
			d = -d
		}
		sleep := time.Duration(d * float64(time.Second))
		if sleep > maxDeltaSleep {
			sleep = maxDeltaSleep
		}
		if sleep <= 0 {
			return
		}
		select {
		case <-ctx.Done():
		case <-time.After(sleep):
		}
	}
}

// drive runs the producer on its own goroutine and the consumer on the
// calling goroutine, then joins both. The emulator closes the buffer
// on every exit path, so the consumer always terminates.
func (r *Runner) drive(ctx context.Context, emu *emulator.Emulator, consume func(context.Context) error) error {
	slog.Info("pipeline starting",
		"run_id", r.runID,
		"capacity", r.opts.Capacity,
		"period_ms", r.opts.PeriodMs,
		"mode", r.opts.Mode,
	)

	var wg sync.WaitGroup
	var prodErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		prodErr = emu.Run(ctx)
	}()

	consErr := consume(ctx)
	wg.Wait()

	err := errors.Join(prodErr, consErr)
	if err != nil {
		slog.Error("pipeline finished with error", "run_id", r.runID, "error", err)
	} else {
		slog.Info("pipeline finished", "run_id", r.runID, "readings", emu.ReadingsProduced())
	}
	return err
}

func (r *Runner) baseReport(tracePath string, emu *emulator.Emulator, buf *ring.Ring[*measure.Measurement], inputs, outputs int64, elapsed time.Duration) *Report {
	return &Report{
		RunID:     r.runID,
		Trace:     tracePath,
		Readings:  emu.ReadingsProduced(),
		Capacity:  buf.Cap(),
		PeakSize:  buf.PeakSize(),
		Written:   buf.TotalWritten(),
		Read:      buf.TotalRead(),
		Dropped:   buf.TotalDropped(),
		Remaining: buf.Len(),
		Inputs:    inputs,
		Outputs:   outputs,
		ElapsedMs: elapsed.Milliseconds(),
	}
}
