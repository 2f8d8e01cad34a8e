package runner

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Mode selects how the pipeline is paced.
type Mode string

const (
	// ModeFixedPeriod paces the producer: one measurement every
	// PeriodMs milliseconds (0 = unpaced).
	ModeFixedPeriod Mode = "fixed_period"
	// ModeRealDeltaT leaves the producer unpaced and instead sleeps at
	// the consumer for min(Δt, 5s) between measurements, Δt taken from
	// their time column.
	ModeRealDeltaT Mode = "real_delta_t"
)

// Options configures a pipeline run. All fields are overridable by CLI
// flags; the YAML file is the base layer.
type Options struct {
	Capacity int  `yaml:"capacity"`
	PeriodMs int  `yaml:"period_ms"`
	Mode     Mode `yaml:"mode"`
	Strict   bool `yaml:"strict"`
	Tracking bool `yaml:"tracking"`
}

// DefaultRunOptions are the real-time demo defaults: a small buffer
// and a 25 Hz sensor rate.
func DefaultRunOptions() Options {
	return Options{Capacity: 15, PeriodMs: 40, Mode: ModeFixedPeriod}
}

// DefaultVerifyOptions are the batch verification defaults: a generous
// buffer and an unpaced producer.
func DefaultVerifyOptions() Options {
	return Options{Capacity: 100, PeriodMs: 0, Mode: ModeFixedPeriod}
}

// Validate checks option ranges.
func (o Options) Validate() error {
	if o.Capacity < 1 {
		return fmt.Errorf("options: capacity must be >= 1, got %d", o.Capacity)
	}
	if o.PeriodMs < 0 {
		return fmt.Errorf("options: period_ms must be >= 0, got %d", o.PeriodMs)
	}
	switch o.Mode {
	case ModeFixedPeriod, ModeRealDeltaT:
	default:
		return fmt.Errorf("options: unknown mode %q (want %q or %q)", o.Mode, ModeFixedPeriod, ModeRealDeltaT)
	}
	return nil
}

// Period returns the producer pacing as a duration. REAL_DELTA_T
// overrides pacing: the producer runs unpaced and the consumer
// self-clocks.
func (o Options) Period() time.Duration {
	if o.Mode == ModeRealDeltaT {
		return 0
	}
	return time.Duration(o.PeriodMs) * time.Millisecond
}

// LoadOptions reads options from a YAML file, layered over base.
// Unknown keys are rejected.
func LoadOptions(path string, base Options) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("options: read %s: %w", path, err)
	}
	opts := base
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&opts); err != nil {
		return Options{}, fmt.Errorf("options: parse %s: %w", path, err)
	}
	if err := opts.Validate(); err != nil {
		return Options{}, fmt.Errorf("%s: %w", path, err)
	}
	return opts, nil
}
