package runner

import (
	"context"
	"fmt"
	"sort"

	"github.com/twinflow/twinflow/internal/automaton"
	"github.com/twinflow/twinflow/internal/emulator"
	"github.com/twinflow/twinflow/internal/measure"
	"github.com/twinflow/twinflow/internal/membership"
	"github.com/twinflow/twinflow/internal/ring"
	"github.com/twinflow/twinflow/internal/sequencer"
	"github.com/twinflow/twinflow/internal/sli"
)

type membState = membership.State[measure.Measurement, automaton.Configuration]

type membSemantics = membership.Membership[measure.Measurement, automaton.Output, automaton.Transition, automaton.Configuration]

// StepResult is the per-step record of a verification run, delivered
// synchronously on the sequencer goroutine.
type StepResult struct {
	Step          int                  `json:"step"`
	Verdict       membership.Verdict   `json:"-"`
	VerdictText   string               `json:"verdict"`
	Measurement   *measure.Measurement `json:"-"`
	PreviousState string               `json:"previous_state"`
	CurrentState  string               `json:"current_state"`
	Fired         string               `json:"fired,omitempty"`
	Enabled       []string             `json:"enabled,omitempty"`
	Possible      int                  `json:"possible_configs"`
	Reason        string               `json:"reason,omitempty"`
}

// verifySemantics decorates the membership semantics with step
// accounting and reporting. It delegates every decision to the inner
// semantics; the counters and the last-state tracking exist only to
// feed StepResult and the final report.
type verifySemantics struct {
	inner   *membSemantics
	spec    *automaton.Automaton
	tracker *Tracker
	onStep  func(StepResult)

	total     int
	okCount   int
	failCount int
	lastState string
}

func (v *verifySemantics) Initial() (membState, bool) {
	config, ok := v.inner.Initial()
	if !ok {
		return config, false
	}
	states := configStates(config.Specs)
	if len(states) > 0 {
		v.lastState = states[0]
	}
	v.tracker.Printf("[membership] ready: %d initial config(s) %v", len(states), states)
	return config, true
}

func (v *verifySemantics) Actions(input *measure.Measurement, config membState) (membership.Action, bool) {
	return v.inner.Actions(input, config)
}

func (v *verifySemantics) Execute(action membership.Action, input *measure.Measurement, config membState) (membership.Verdict, membState, bool) {
	verdict, next, ok := v.inner.Execute(action, input, config)
	if !ok {
		return verdict, next, false
	}

	v.total++
	states := configStates(next.Specs)
	prev := v.lastState
	current := prev
	if len(states) > 0 {
		current = states[0]
	}

	result := StepResult{
		Step:        v.total,
		Verdict:     verdict,
		VerdictText: verdict.String(),
		Measurement: input,
		Possible:    len(states),
	}
	result.PreviousState = prev

	if verdict == membership.OK {
		v.okCount++
		result.CurrentState = current
		if tr, found := v.spec.Between(prev, current); found {
			result.Fired = tr.Name
		}
		for _, tr := range v.spec.TransitionsFrom(prev) {
			if tr.Enabled(input) {
				result.Enabled = append(result.Enabled, tr.Name)
			}
		}
		v.lastState = current
		v.tracker.Printf("[membership] step %d: OK  %s -> %s  (%s)", v.total, prev, current, input)
	} else {
		v.failCount++
		result.CurrentState = prev
		result.Reason = fmt.Sprintf("no transition enabled from %s", prev)
		v.tracker.Printf("[membership] step %d: FAIL at %s  (%s)", v.total, prev, input)
	}

	if v.onStep != nil {
		v.onStep(result)
	}
	return verdict, next, true
}

// configStates renders a spec configuration set as sorted state names,
// so reports are stable however the set iterates.
func configStates(specs map[automaton.Configuration]struct{}) []string {
	states := make([]string, 0, len(specs))
	for c := range specs {
		states = append(states, c.State)
	}
	sort.Strings(states)
	return states
}

// Verify replays a trace against an automaton through the relaxed
// membership semantics. onStep, when non-nil, receives every verdict;
// it runs on the sequencer goroutine and participates in the
// drop-vs-latency trade-off like any listener.
func (r *Runner) Verify(ctx context.Context, tracePath string, spec *automaton.Automaton, onStep func(StepResult)) (*Report, error) {
	buf := ring.New[*measure.Measurement](r.opts.Capacity)
	emu, err := emulator.Open(tracePath, buf, r.opts.Period())
	if err != nil {
		return nil, err
	}

	traceSem := sli.NewTraceSemantics(emulator.Duration)
	memb := membership.New[measure.Measurement, automaton.Output, automaton.Transition, automaton.Configuration](
		traceSem, automaton.NewSTR(spec), r.opts.Strict)

	vs := &verifySemantics{inner: memb, spec: spec, tracker: r.tracker, onStep: onStep}
	seq := sequencer.New[*measure.Measurement, membership.Verdict, membership.Action, membState](vs, buf)

	r.attachTracking(emu, buf)
	if r.opts.Mode == ModeRealDeltaT {
		sleep := r.deltaTSleeper(ctx)
		seq.OnInput(func(m *measure.Measurement, _ membState) { sleep(m) })
	}

	err = r.drive(ctx, emu, seq.Run)

	report := r.baseReport(tracePath, emu, buf, seq.InputsProcessed(), seq.OutputsProduced(), seq.Elapsed())
	report.Automaton = spec.Name
	report.Verification = &Verification{
		TotalSteps: vs.total,
		OK:         vs.okCount,
		Fail:       vs.failCount,
		Conforms:   vs.failCount == 0,
	}
	return report, err
}
