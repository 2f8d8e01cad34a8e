package automaton

import (
	"fmt"
	"slices"

	"github.com/twinflow/twinflow/internal/measure"
)

// Transition is a guarded edge between two automaton states. The guard
// is evaluated against the current measurement of a trace step; an
// empty guard is always enabled.
type Transition struct {
	Name  string
	From  string
	To    string
	Guard string

	expr guardExpr // compiled by Automaton.Compile
}

// Enabled reports whether the transition's guard holds on m.
// An uncompiled non-empty guard is never enabled.
func (t Transition) Enabled(m *measure.Measurement) bool {
	if t.Guard == "" {
		return true
	}
	if t.expr == nil {
		return false
	}
	return t.expr.eval(m)
}

func (t Transition) String() string {
	if t.Guard == "" {
		return fmt.Sprintf("%s: %s -> %s", t.Name, t.From, t.To)
	}
	return fmt.Sprintf("%s: %s -> %s [%s]", t.Name, t.From, t.To, t.Guard)
}

// Automaton is a finite-state specification: named states, one initial
// state, and guarded transitions. Compile before use.
type Automaton struct {
	Name        string
	States      []string
	Initial     string
	Transitions []Transition
}

// Compile parses every guard and validates the structure: nonempty
// state set, known initial state, transitions between known states.
func (a *Automaton) Compile() error {
	if len(a.States) == 0 {
		return fmt.Errorf("automaton %q: no states", a.Name)
	}
	if !slices.Contains(a.States, a.Initial) {
		return fmt.Errorf("automaton %q: initial state %q is not a state", a.Name, a.Initial)
	}
	for i := range a.Transitions {
		t := &a.Transitions[i]
		if !slices.Contains(a.States, t.From) {
			return fmt.Errorf("automaton %q: transition %q from unknown state %q", a.Name, t.Name, t.From)
		}
		if !slices.Contains(a.States, t.To) {
			return fmt.Errorf("automaton %q: transition %q to unknown state %q", a.Name, t.Name, t.To)
		}
		if t.Guard == "" {
			continue
		}
		expr, err := parseGuard(t.Guard)
		if err != nil {
			return fmt.Errorf("automaton %q: transition %q: %w", a.Name, t.Name, err)
		}
		t.expr = expr
	}
	return nil
}

// TransitionsFrom returns the transitions leaving a state, in
// declaration order.
func (a *Automaton) TransitionsFrom(state string) []Transition {
	var out []Transition
	for _, t := range a.Transitions {
		if t.From == state {
			out = append(out, t)
		}
	}
	return out
}

// Between returns the first declared transition from one state to
// another, used to name the fired edge in step reports.
func (a *Automaton) Between(from, to string) (Transition, bool) {
	for _, t := range a.Transitions {
		if t.From == from && t.To == to {
			return t, true
		}
	}
	return Transition{}, false
}
