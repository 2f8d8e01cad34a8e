package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/twinflow/twinflow/internal/runner"
)

// NewRunCommand creates the run command: the real-time trace demo.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	flags := &pipelineFlags{}

	cmd := &cobra.Command{
		Use:   "run <trace.csv>",
		Short: "Replay a trace through the trace semantics",
		Long: `Replay a delimited trace file through the digital-twin pipeline.

The producer paces measurements into the ring buffer; the sequencer
drives the trace semantics, pairing consecutive measurements into
timestamped steps. A final report accounts for every reading.

Example:
  twinflow run ./egm.csv
  twinflow run ./egm.csv --capacity 15 --period 40 --tracking`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(rootOpts, flags, args[0], cmd)
		},
	}

	addPipelineFlags(cmd, flags, runner.DefaultRunOptions())

	return cmd
}

func runTrace(rootOpts *RootOptions, flags *pipelineFlags, tracePath string, cmd *cobra.Command) error {
	opts, err := flags.resolve(cmd, runner.DefaultRunOptions())
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid options", err)
	}

	// Tracking narration goes to stderr in JSON mode so stdout stays
	// parseable.
	trackingSink := cmd.OutOrStdout()
	if rootOpts.Format == "json" {
		trackingSink = cmd.ErrOrStderr()
	}
	r, err := runner.New(opts, trackingSink)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid options", err)
	}

	report, err := r.RunTrace(cmd.Context(), tracePath)
	if err != nil && !errors.Is(err, context.Canceled) {
		return WrapExitError(ExitCommandError, "run failed", err)
	}

	if rootOpts.Format == "json" {
		return printJSON(cmd.OutOrStdout(), report)
	}
	report.Render(cmd.OutOrStdout())
	return nil
}
