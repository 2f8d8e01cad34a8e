package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/twinflow/twinflow/internal/automaton"
	"github.com/twinflow/twinflow/internal/membership"
	"github.com/twinflow/twinflow/internal/runner"
)

// VerifyResult is the JSON payload of a verification run.
type VerifyResult struct {
	Report *runner.Report      `json:"report"`
	Steps  []runner.StepResult `json:"steps"`
}

// NewVerifyCommand creates the verify command: relaxed membership of a
// trace against an automaton specification.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	flags := &pipelineFlags{}

	cmd := &cobra.Command{
		Use:   "verify <trace.csv> <automaton.{cue,yaml}>",
		Short: "Check a trace against an automaton specification",
		Long: `Replay a trace through the relaxed membership semantics and report a
verdict per step.

Every pair of consecutive measurements becomes a step; the automaton's
guarded transitions decide whether each step is accepted from any
surviving configuration. In relaxed mode (the default) a violation is a
local event and the stream can recover; with --strict the first FAIL
extinguishes the configurations and poisons the rest of the run.

Exit codes: 0 when the trace conforms, 1 on violations, 2 on command
errors.

Example:
  twinflow verify ./egm-fault.csv ./egm.cue
  twinflow verify ./egm.csv ./egm.yaml --strict --capacity 500`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(rootOpts, flags, args[0], args[1], cmd)
		},
	}

	addPipelineFlags(cmd, flags, runner.DefaultVerifyOptions())

	return cmd
}

func runVerify(rootOpts *RootOptions, flags *pipelineFlags, tracePath, automatonPath string, cmd *cobra.Command) error {
	opts, err := flags.resolve(cmd, runner.DefaultVerifyOptions())
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid options", err)
	}

	spec, err := automaton.Load(automatonPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load automaton", err)
	}

	out := cmd.OutOrStdout()
	jsonFormat := rootOpts.Format == "json"

	// Tracking narration goes to stderr in JSON mode so stdout stays
	// parseable.
	trackingSink := out
	if jsonFormat {
		trackingSink = cmd.ErrOrStderr()
	}
	r, err := runner.New(opts, trackingSink)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid options", err)
	}

	var steps []runner.StepResult
	onStep := func(sr runner.StepResult) {
		if jsonFormat {
			steps = append(steps, sr)
			return
		}
		if sr.Verdict == membership.OK {
			if sr.Fired != "" {
				fmt.Fprintf(out, "step %4d [OK]   %s -> %s via %s\n", sr.Step, sr.PreviousState, sr.CurrentState, sr.Fired)
			} else {
				fmt.Fprintf(out, "step %4d [OK]   %s\n", sr.Step, sr.CurrentState)
			}
			return
		}
		fmt.Fprintf(out, "step %4d [FAIL] %s\n", sr.Step, sr.Reason)
	}

	report, err := r.Verify(cmd.Context(), tracePath, spec, onStep)
	if err != nil && !errors.Is(err, context.Canceled) {
		return WrapExitError(ExitCommandError, "verification failed to run", err)
	}

	if jsonFormat {
		if err := printJSON(out, VerifyResult{Report: report, Steps: steps}); err != nil {
			return WrapExitError(ExitCommandError, "failed to encode result", err)
		}
	} else {
		report.Render(out)
	}

	if report.Verification != nil && !report.Verification.Conforms {
		return NewExitError(ExitFailure, fmt.Sprintf("trace violates specification: %d of %d steps failed",
			report.Verification.Fail, report.Verification.TotalSteps))
	}
	return nil
}
