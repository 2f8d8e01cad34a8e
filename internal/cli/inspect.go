package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/twinflow/twinflow/internal/automaton"
)

// InspectResult is the JSON payload of the inspect command.
type InspectResult struct {
	Name        string   `json:"name"`
	States      []string `json:"states"`
	Initial     string   `json:"initial"`
	Transitions []string `json:"transitions"`
}

// NewInspectCommand creates the inspect command: parse, validate, and
// describe an automaton specification.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <automaton.{cue,yaml}>",
		Short: "Describe an automaton specification",
		Long: `Parse and validate an automaton file and print its structure: states,
initial state, and guarded transitions.

Example:
  twinflow inspect ./egm.cue`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runInspect(rootOpts *RootOptions, path string, cmd *cobra.Command) error {
	spec, err := automaton.Load(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load automaton", err)
	}

	if rootOpts.Format == "json" {
		result := InspectResult{
			Name:    spec.Name,
			States:  spec.States,
			Initial: spec.Initial,
		}
		for _, t := range spec.Transitions {
			result.Transitions = append(result.Transitions, t.String())
		}
		return printJSON(cmd.OutOrStdout(), result)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Automaton   : %s\n", spec.Name)
	fmt.Fprintf(out, "States      : %v\n", spec.States)
	fmt.Fprintf(out, "Initial     : %s\n", spec.Initial)
	fmt.Fprintf(out, "Transitions : %d\n", len(spec.Transitions))
	for _, t := range spec.Transitions {
		fmt.Fprintf(out, "  %s\n", t)
	}
	return nil
}
