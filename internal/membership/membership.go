package membership

import (
	"github.com/twinflow/twinflow/internal/sli"
)

// Verdict is the boolean outcome of a membership step. It is a value,
// not an error: a FAIL is propagated to listeners and never thrown.
type Verdict int

const (
	// OK means the step was accepted by at least one surviving
	// specification configuration.
	OK Verdict = iota + 1
	// Fail means no specification configuration could take the step.
	Fail
)

func (v Verdict) String() string {
	switch v {
	case OK:
		return "OK"
	case Fail:
		return "FAIL"
	default:
		return "UNKNOWN"
	}
}

// State is the membership configuration: the previous measurement plus
// the set of surviving specification configurations.
//
// The Specs map is treated as immutable once placed in a State; Execute
// always rolls forward with a freshly built set (or the prior map
// unchanged, on the bootstrap step and on a relaxed-mode FAIL).
type State[M any, C2 comparable] struct {
	Last  *M
	Specs map[C2]struct{}
}

// Configs returns the surviving spec configurations as a slice, in no
// particular order.
func (s State[M, C2]) Configs() []C2 {
	out := make([]C2, 0, len(s.Specs))
	for c := range s.Specs {
		out = append(out, c)
	}
	return out
}

// Action is the single action token of the membership semantics.
type Action struct{}

// Membership is the relaxed-membership combinator: a deterministic
// semantics built from a trace semantics and a nondeterministic
// specification semantics. Each input advances the trace semantics one
// step and checks the step against every surviving spec configuration.
//
// In relaxed mode (the default) a FAIL preserves the prior spec set so
// the stream can recover; in strict mode the first FAIL extinguishes
// the set and every later verdict is FAIL.
type Membership[M, O, A2 any, C2 comparable] struct {
	trace  *sli.TraceSemantics[M]
	spec   sli.Nondeterministic[*sli.Step[M], O, A2, C2]
	strict bool
}

var _ sli.Deterministic[*struct{}, Verdict, Action, State[struct{}, int]] = (*Membership[struct{}, string, string, int])(nil)

// New creates a membership semantics over the given trace and spec
// semantics. strict selects whether a FAIL poisons the run.
func New[M, O, A2 any, C2 comparable](
	trace *sli.TraceSemantics[M],
	spec sli.Nondeterministic[*sli.Step[M], O, A2, C2],
	strict bool,
) *Membership[M, O, A2, C2] {
	return &Membership[M, O, A2, C2]{trace: trace, spec: spec, strict: strict}
}

// Initial returns (nil previous, initial spec configurations). No
// initial spec configuration means the system cannot start at all, so
// the configuration is absent.
func (m *Membership[M, O, A2, C2]) Initial() (State[M, C2], bool) {
	initials := m.spec.Initial()
	if len(initials) == 0 {
		return State[M, C2]{}, false
	}
	last, _ := m.trace.Initial()
	specs := make(map[C2]struct{}, len(initials))
	for _, c := range initials {
		specs[c] = struct{}{}
	}
	return State[M, C2]{Last: last, Specs: specs}, true
}

// Actions returns the membership action while the input is present.
func (m *Membership[M, O, A2, C2]) Actions(input *M, _ State[M, C2]) (Action, bool) {
	if input == nil {
		return Action{}, false
	}
	return Action{}, true
}

// Execute advances the trace semantics and, when a step is produced,
// folds it through the spec semantics:
//
//	specNext = ⋃ { next | c ∈ config.Specs,
//	                      a ∈ spec.Actions(step, c),
//	                      (out, next) ∈ spec.Execute(a, step, c) }
//
// The first measurement produces no step and trivially conforms.
func (m *Membership[M, O, A2, C2]) Execute(_ Action, input *M, config State[M, C2]) (Verdict, State[M, C2], bool) {
	if input == nil {
		return 0, State[M, C2]{}, false
	}

	traceAction, ok := m.trace.Actions(input, config.Last)
	if !ok {
		return 0, State[M, C2]{}, false
	}
	step, newLast, ok := m.trace.Execute(traceAction, input, config.Last)
	if !ok {
		return 0, State[M, C2]{}, false
	}

	if step == nil {
		// Bootstrapping: no step yet, spec set unchanged.
		return OK, State[M, C2]{Last: newLast, Specs: config.Specs}, true
	}

	specNext := make(map[C2]struct{})
	for c := range config.Specs {
		for _, a := range m.spec.Actions(step, c) {
			for _, outcome := range m.spec.Execute(a, step, c) {
				specNext[outcome.Next] = struct{}{}
			}
		}
	}

	if len(specNext) == 0 {
		if m.strict {
			// Strict mode freezes the dead set: every later step FAILs.
			return Fail, State[M, C2]{Last: newLast, Specs: specNext}, true
		}
		// Relaxed mode preserves the prior set so the stream can recover.
		return Fail, State[M, C2]{Last: newLast, Specs: config.Specs}, true
	}

	return OK, State[M, C2]{Last: newLast, Specs: specNext}, true
}
