package sli

import (
	"fmt"
	"time"
)

// Step is the output of the trace semantics: two consecutive
// measurements annotated with the duration between them.
type Step[M any] struct {
	Last    *M
	Elapsed time.Duration
	Current *M
}

func (s *Step[M]) String() string {
	return fmt.Sprintf("step(%v, Δt=%.6fs, %v)", s.Last, s.Elapsed.Seconds(), s.Current)
}

// DurationFunc computes the elapsed time between two consecutive
// measurements. Supplied at construction so the trace semantics stays
// agnostic of how the source encodes time.
type DurationFunc[M any] func(last, current *M) time.Duration

// StepAction is the single action token of the trace semantics.
type StepAction struct{}

// TraceSemantics is the deterministic semantics whose configuration is
// the previous measurement (nil before the first input). Processing the
// n-th input (n >= 2) emits exactly one step; the first input emits a
// nil step and only seeds the configuration.
type TraceSemantics[M any] struct {
	duration DurationFunc[M]
}

var _ Deterministic[*struct{}, *Step[struct{}], StepAction, *struct{}] = (*TraceSemantics[struct{}])(nil)

// NewTraceSemantics creates a trace semantics with the given duration
// function. The function must not be nil.
func NewTraceSemantics[M any](duration DurationFunc[M]) *TraceSemantics[M] {
	if duration == nil {
		panic("sli: duration function must not be nil")
	}
	return &TraceSemantics[M]{duration: duration}
}

// Initial returns a nil previous measurement. The nil configuration is
// valid - the semantics can always start.
func (t *TraceSemantics[M]) Initial() (*M, bool) {
	return nil, true
}

// Actions returns the step action while the input is present.
func (t *TraceSemantics[M]) Actions(current *M, last *M) (StepAction, bool) {
	if current == nil {
		return StepAction{}, false
	}
	return StepAction{}, true
}

// Execute pairs the input with the previous measurement. The first
// input produces a nil step; every later input produces exactly one
// step whose Current is the input and whose Last is the prior input.
func (t *TraceSemantics[M]) Execute(_ StepAction, current *M, last *M) (*Step[M], *M, bool) {
	if current == nil {
		return nil, nil, false
	}
	if last == nil {
		return nil, current, true
	}
	return &Step[M]{Last: last, Elapsed: t.duration(last, current), Current: current}, current, true
}
