package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const positiveVYAML = `
name: positive-v
states: [s0, s1]
initial: s0
transitions:
  - name: boot
    from: s0
    to: s1
    guard: v > 0
  - name: hold
    from: s1
    to: s1
    guard: v > 0
`

func TestVerify_Conforming(t *testing.T) {
	trace := writeFile(t, "trace.csv", "t;v\n0;1\n1;2\n2;3\n")
	spec := writeFile(t, "spec.yaml", positiveVYAML)

	out, err := execute(t, "verify", trace, spec)
	require.NoError(t, err)

	assert.Contains(t, out, "CONFORMS")
	assert.Contains(t, out, "[OK]")
}

func TestVerify_ViolationExitsWithFailure(t *testing.T) {
	trace := writeFile(t, "trace.csv", "t;v\n0;1\n1;-1\n2;2\n")
	spec := writeFile(t, "spec.yaml", positiveVYAML)

	out, err := execute(t, "verify", trace, spec)
	require.Error(t, err)

	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "VIOLATIONS DETECTED")
	assert.Contains(t, out, "[FAIL]")
	assert.Contains(t, err.Error(), "1 of 3 steps failed")
}

func TestVerify_JSON(t *testing.T) {
	trace := writeFile(t, "trace.csv", "t;v\n0;1\n1;-1\n2;2\n")
	spec := writeFile(t, "spec.yaml", positiveVYAML)

	out, err := execute(t, "--format", "json", "verify", trace, spec)
	require.Error(t, err, "violations still exit non-zero in JSON mode")
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var result VerifyResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.NotNil(t, result.Report.Verification)
	assert.Equal(t, 3, result.Report.Verification.TotalSteps)
	assert.Equal(t, 1, result.Report.Verification.Fail)
	require.Len(t, result.Steps, 3)
	assert.Equal(t, "OK", result.Steps[0].VerdictText)
	assert.Equal(t, "FAIL", result.Steps[1].VerdictText)
}

func TestVerify_Strict(t *testing.T) {
	trace := writeFile(t, "trace.csv", "t;v\n0;1\n1;-1\n2;2\n")
	spec := writeFile(t, "spec.yaml", positiveVYAML)

	out, err := execute(t, "--format", "json", "verify", trace, spec, "--strict")
	require.Error(t, err)

	var result VerifyResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, 2, result.Report.Verification.Fail, "strict mode poisons the run after the first FAIL")
}

func TestVerify_BadAutomaton(t *testing.T) {
	trace := writeFile(t, "trace.csv", "t;v\n0;1\n")
	spec := writeFile(t, "spec.yaml", "states: [s0]\ninitial: ghost\ntransitions: []\n")

	_, err := execute(t, "verify", trace, spec)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestVerify_CUEAutomaton(t *testing.T) {
	trace := writeFile(t, "trace.csv", "t;v\n0;1\n1;2\n")
	spec := writeFile(t, "spec.cue", `
name: "positive-v"
states: ["s0", "s1"]
initial: "s0"
transitions: [
	{name: "boot", from: "s0", to: "s1", guard: "v > 0"},
	{name: "hold", from: "s1", to: "s1", guard: "v > 0"},
]
`)

	out, err := execute(t, "verify", trace, spec)
	require.NoError(t, err)
	assert.Contains(t, out, "CONFORMS")
}
