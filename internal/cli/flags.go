package cli

import (
	"github.com/spf13/cobra"

	"github.com/twinflow/twinflow/internal/runner"
)

// pipelineFlags are the run/verify flags mapping onto runner.Options.
// Resolution is layered: built-in defaults, then the --config YAML
// file, then explicitly set flags.
type pipelineFlags struct {
	Capacity   int
	Period     int
	Mode       string
	Strict     bool
	Tracking   bool
	ConfigFile string
}

func addPipelineFlags(cmd *cobra.Command, f *pipelineFlags, defaults runner.Options) {
	cmd.Flags().IntVar(&f.Capacity, "capacity", defaults.Capacity, "ring buffer capacity")
	cmd.Flags().IntVar(&f.Period, "period", defaults.PeriodMs, "producer pacing in milliseconds (0 = unpaced)")
	cmd.Flags().StringVar(&f.Mode, "mode", string(defaults.Mode), "emulation mode (fixed_period|real_delta_t)")
	cmd.Flags().BoolVar(&f.Strict, "strict", defaults.Strict, "strict membership: the first FAIL poisons the run")
	cmd.Flags().BoolVar(&f.Tracking, "tracking", defaults.Tracking, "narrate producer/consumer progress")
	cmd.Flags().StringVar(&f.ConfigFile, "config", "", "YAML options file")
}

func (f *pipelineFlags) resolve(cmd *cobra.Command, base runner.Options) (runner.Options, error) {
	opts := base
	if f.ConfigFile != "" {
		loaded, err := runner.LoadOptions(f.ConfigFile, base)
		if err != nil {
			return runner.Options{}, err
		}
		opts = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("capacity") {
		opts.Capacity = f.Capacity
	}
	if flags.Changed("period") {
		opts.PeriodMs = f.Period
	}
	if flags.Changed("mode") {
		opts.Mode = runner.Mode(f.Mode)
	}
	if flags.Changed("strict") {
		opts.Strict = f.Strict
	}
	if flags.Changed("tracking") {
		opts.Tracking = f.Tracking
	}

	if err := opts.Validate(); err != nil {
		return runner.Options{}, err
	}
	return opts, nil
}
