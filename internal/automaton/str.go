package automaton

import (
	"github.com/twinflow/twinflow/internal/measure"
	"github.com/twinflow/twinflow/internal/sli"
)

// Configuration is the spec-side configuration: the automaton state the
// run currently occupies. It is comparable so membership can hold sets
// of configurations.
type Configuration struct {
	State string
}

func (c Configuration) String() string { return c.State }

// Output describes a fired transition.
type Output struct {
	Transition string
	From       string
	To         string
}

// STR is the semantic transition relation of an automaton, exposed as
// a nondeterministic I/O semantics over trace steps. Guards are
// evaluated against the values of the step's current measurement.
type STR struct {
	a *Automaton
}

var _ sli.Nondeterministic[*sli.Step[measure.Measurement], Output, Transition, Configuration] = (*STR)(nil)

// NewSTR wraps a compiled automaton.
func NewSTR(a *Automaton) *STR {
	return &STR{a: a}
}

// Initial returns the single initial configuration.
func (s *STR) Initial() []Configuration {
	return []Configuration{{State: s.a.Initial}}
}

// Actions returns the transitions enabled from the configuration's
// state on the step's current measurement, in declaration order.
func (s *STR) Actions(step *sli.Step[measure.Measurement], c Configuration) []Transition {
	if step == nil {
		return nil
	}
	var enabled []Transition
	for _, t := range s.a.Transitions {
		if t.From == c.State && t.Enabled(step.Current) {
			enabled = append(enabled, t)
		}
	}
	return enabled
}

// Execute fires a transition. A transition that is not enabled from
// the given configuration yields no outcome.
func (s *STR) Execute(t Transition, step *sli.Step[measure.Measurement], c Configuration) []sli.Outcome[Output, Configuration] {
	if step == nil || t.From != c.State || !t.Enabled(step.Current) {
		return nil
	}
	return []sli.Outcome[Output, Configuration]{{
		Output: Output{Transition: t.Name, From: t.From, To: t.To},
		Next:   Configuration{State: t.To},
	}}
}
