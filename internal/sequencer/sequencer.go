package sequencer

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/twinflow/twinflow/internal/ring"
	"github.com/twinflow/twinflow/internal/sli"
)

// Sequencer is the generic driver loop: it pulls inputs from the ring
// buffer and advances any deterministic semantics to completion. The
// sequencer does not know what kind of semantics it is running - swap
// the SLI, get different behavior, same driver.
//
// Thread-safety model:
//   - OnInput/OnOutput: register before Run, from one goroutine
//   - Run(): must be called from exactly one goroutine
//   - InputsProcessed/OutputsProduced: observable from any goroutine
//
// Listeners are invoked synchronously on the sequencer goroutine, so a
// slow listener slows the consumer and raises the buffer's drop
// probability. That routing is intentional: listener latency
// participates in the drop-vs-latency trade-off instead of hiding
// behind an unbounded queue. Listener panics are not recovered.
type Sequencer[I, O, A, C any] struct {
	sem sli.Deterministic[I, O, A, C]
	buf *ring.Ring[I]

	inputListeners  []func(I, C)
	outputListeners []func(O)

	inputsProcessed atomic.Int64
	outputsProduced atomic.Int64
	elapsed         atomic.Int64 // nanoseconds, set when Run returns
}

// New creates a sequencer driving sem with inputs from buf.
func New[I, O, A, C any](sem sli.Deterministic[I, O, A, C], buf *ring.Ring[I]) *Sequencer[I, O, A, C] {
	return &Sequencer[I, O, A, C]{sem: sem, buf: buf}
}

// OnInput registers a listener called with each input and the
// configuration current BEFORE the input is executed.
func (s *Sequencer[I, O, A, C]) OnInput(listener func(input I, config C)) {
	s.inputListeners = append(s.inputListeners, listener)
}

// OnOutput registers a listener called with each produced output.
// This is the viewer interface.
func (s *Sequencer[I, O, A, C]) OnOutput(listener func(output O)) {
	s.outputListeners = append(s.outputListeners, listener)
}

// Run executes the driver loop until end of stream, semantics halt, or
// context cancellation. Each input is delivered at most once to the
// listeners. Returns ctx.Err() when cancelled, nil otherwise - a
// semantics halt is a complete run, not an error.
func (s *Sequencer[I, O, A, C]) Run(ctx context.Context) error {
	started := time.Now()
	defer func() { s.elapsed.Store(int64(time.Since(started))) }()

	config, ok := s.sem.Initial()
	if !ok {
		slog.Debug("sequencer: no initial configuration, halting")
		return nil
	}

	for {
		input, ok := s.buf.Read(ctx)
		if !ok {
			// End of stream or cancellation - both exit the loop; the
			// ctx check below tells them apart.
			break
		}
		s.inputsProcessed.Add(1)

		for _, l := range s.inputListeners {
			l(input, config)
		}

		action, ok := s.sem.Actions(input, config)
		if !ok {
			slog.Debug("sequencer: semantics returned no action, halting")
			break
		}

		var output O
		output, config, ok = s.sem.Execute(action, input, config)
		if !ok {
			slog.Debug("sequencer: semantics halted on execute")
			break
		}
		s.outputsProduced.Add(1)

		for _, l := range s.outputListeners {
			l(output)
		}
	}

	if err := ctx.Err(); err != nil {
		slog.Debug("sequencer: cancelled", "error", err)
		return err
	}
	return nil
}

// InputsProcessed returns the number of inputs read from the buffer.
func (s *Sequencer[I, O, A, C]) InputsProcessed() int64 {
	return s.inputsProcessed.Load()
}

// OutputsProduced returns the number of outputs delivered to listeners.
func (s *Sequencer[I, O, A, C]) OutputsProduced() int64 {
	return s.outputsProduced.Load()
}

// Elapsed returns the wall time of the last completed Run.
func (s *Sequencer[I, O, A, C]) Elapsed() time.Duration {
	return time.Duration(s.elapsed.Load())
}
