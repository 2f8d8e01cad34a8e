package membership

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twinflow/twinflow/internal/measure"
	"github.com/twinflow/twinflow/internal/sli"
)

// rule is a guarded state transition of the fake spec semantics.
type rule struct {
	from, to string
	guard    func(step *sli.Step[measure.Measurement]) bool
}

// fakeSpec is a hand-rolled nondeterministic spec semantics over
// string-named states.
type fakeSpec struct {
	initials []string
	rules    []rule
}

func (f *fakeSpec) Initial() []string { return f.initials }

func (f *fakeSpec) Actions(step *sli.Step[measure.Measurement], state string) []int {
	var actions []int
	for i, r := range f.rules {
		if r.from == state && r.guard(step) {
			actions = append(actions, i)
		}
	}
	return actions
}

func (f *fakeSpec) Execute(action int, step *sli.Step[measure.Measurement], state string) []sli.Outcome[string, string] {
	r := f.rules[action]
	if r.from != state || !r.guard(step) {
		return nil
	}
	return []sli.Outcome[string, string]{{Output: r.to, Next: r.to}}
}

// positiveV accepts streams whose v column stays positive:
// s0 -> s1 on v > 0, s1 -> s1 on v > 0.
func positiveV() *fakeSpec {
	vPositive := func(step *sli.Step[measure.Measurement]) bool {
		v, ok := step.Current.Float("v")
		return ok && v > 0
	}
	return &fakeSpec{
		initials: []string{"s0"},
		rules: []rule{
			{from: "s0", to: "s1", guard: vPositive},
			{from: "s1", to: "s1", guard: vPositive},
		},
	}
}

func indexSeconds(last, current *measure.Measurement) time.Duration {
	return time.Duration(current.Index()-last.Index()) * time.Second
}

func vMeas(index int, v int64) *measure.Measurement {
	return measure.New(index, measure.F("v", measure.Int(v)))
}

func newMembership(strict bool) *Membership[measure.Measurement, string, int, string] {
	trace := sli.NewTraceSemantics(indexSeconds)
	return New[measure.Measurement, string, int, string](trace, positiveV(), strict)
}

// feed runs one Execute and requires a present result.
func feed(t *testing.T, m *Membership[measure.Measurement, string, int, string],
	input *measure.Measurement, cfg State[measure.Measurement, string]) (Verdict, State[measure.Measurement, string]) {
	t.Helper()
	action, ok := m.Actions(input, cfg)
	require.True(t, ok)
	verdict, next, ok := m.Execute(action, input, cfg)
	require.True(t, ok)
	return verdict, next
}

func TestMembership_Initial(t *testing.T) {
	m := newMembership(false)

	cfg, ok := m.Initial()
	require.True(t, ok)
	assert.Nil(t, cfg.Last)
	assert.ElementsMatch(t, []string{"s0"}, cfg.Configs())
}

func TestMembership_Initial_EmptySpecIsAbsent(t *testing.T) {
	trace := sli.NewTraceSemantics(indexSeconds)
	m := New[measure.Measurement, string, int, string](trace, &fakeSpec{}, false)

	_, ok := m.Initial()
	assert.False(t, ok, "no initial spec configuration means the system cannot start")
}

func TestMembership_FirstInputIsUnconditionalOK(t *testing.T) {
	m := newMembership(false)
	cfg, _ := m.Initial()

	verdict, next := feed(t, m, vMeas(0, -99), cfg)

	assert.Equal(t, OK, verdict, "the initial measurement trivially conforms")
	assert.ElementsMatch(t, []string{"s0"}, next.Configs(), "spec set unchanged on bootstrap")
	assert.Equal(t, 0, next.Last.Index())
}

func TestMembership_RelaxedConformance(t *testing.T) {
	// Inputs v=1,2,3 from s0: verdicts OK,OK,OK; final configs {s1}.
	m := newMembership(false)
	cfg, _ := m.Initial()

	var verdicts []Verdict
	for i, v := range []int64{1, 2, 3} {
		var verdict Verdict
		verdict, cfg = feed(t, m, vMeas(i, v), cfg)
		verdicts = append(verdicts, verdict)
	}

	assert.Equal(t, []Verdict{OK, OK, OK}, verdicts)
	assert.ElementsMatch(t, []string{"s1"}, cfg.Configs())
}

func TestMembership_RelaxedRecovery(t *testing.T) {
	// Inputs v=1, v=-1, v=2: verdicts OK, FAIL, OK. After the FAIL
	// the live configs are preserved, so v=2 transitions normally.
	m := newMembership(false)
	cfg, _ := m.Initial()

	var verdicts []Verdict
	for i, v := range []int64{1, -1, 2} {
		var verdict Verdict
		verdict, cfg = feed(t, m, vMeas(i, v), cfg)
		verdicts = append(verdicts, verdict)
	}

	assert.Equal(t, []Verdict{OK, Fail, OK}, verdicts)
	assert.ElementsMatch(t, []string{"s1"}, cfg.Configs())
}

func TestMembership_StrictPoisoning(t *testing.T) {
	// Same inputs in strict mode: OK, FAIL, FAIL; configs empty after
	// the first FAIL.
	m := newMembership(true)
	cfg, _ := m.Initial()

	var verdicts []Verdict
	for i, v := range []int64{1, -1, 2} {
		var verdict Verdict
		verdict, cfg = feed(t, m, vMeas(i, v), cfg)
		verdicts = append(verdicts, verdict)
	}

	assert.Equal(t, []Verdict{OK, Fail, Fail}, verdicts)
	assert.Empty(t, cfg.Configs(), "strict mode freezes the dead set")
}

func TestMembership_SuccessorUnion(t *testing.T) {
	// Two rules enabled from the same state: new configs are the union
	// of spec successors.
	always := func(*sli.Step[measure.Measurement]) bool { return true }
	spec := &fakeSpec{
		initials: []string{"s0"},
		rules: []rule{
			{from: "s0", to: "a", guard: always},
			{from: "s0", to: "b", guard: always},
		},
	}
	trace := sli.NewTraceSemantics(indexSeconds)
	m := New[measure.Measurement, string, int, string](trace, spec, false)

	cfg, _ := m.Initial()
	_, cfg = feed(t, m, vMeas(0, 1), cfg)
	verdict, cfg := feed(t, m, vMeas(1, 1), cfg)

	assert.Equal(t, OK, verdict)
	assert.ElementsMatch(t, []string{"a", "b"}, cfg.Configs())
}

func TestMembership_AbsentInput(t *testing.T) {
	m := newMembership(false)
	cfg, _ := m.Initial()

	_, ok := m.Actions(nil, cfg)
	assert.False(t, ok)

	_, _, ok = m.Execute(Action{}, nil, cfg)
	assert.False(t, ok)
}

func TestMembership_ExecuteDoesNotMutatePriorState(t *testing.T) {
	m := newMembership(false)
	cfg, _ := m.Initial()

	_, cfg = feed(t, m, vMeas(0, 1), cfg)
	before := cfg.Configs()

	// FAIL step must not mutate the prior spec set it preserves.
	verdict, next := feed(t, m, vMeas(1, -1), cfg)
	require.Equal(t, Fail, verdict)
	assert.ElementsMatch(t, before, cfg.Configs())
	assert.ElementsMatch(t, before, next.Configs())
}

func TestVerdict_String(t *testing.T) {
	assert.Equal(t, "OK", OK.String())
	assert.Equal(t, "FAIL", Fail.String())
	assert.Equal(t, "UNKNOWN", Verdict(0).String())
}
