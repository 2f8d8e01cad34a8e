package runner

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultOptions(t *testing.T) {
	run := DefaultRunOptions()
	require.NoError(t, run.Validate())
	assert.Equal(t, 15, run.Capacity)
	assert.Equal(t, 40, run.PeriodMs)

	verify := DefaultVerifyOptions()
	require.NoError(t, verify.Validate())
	assert.Equal(t, 100, verify.Capacity)
	assert.Equal(t, 0, verify.PeriodMs)
}

func TestOptions_Validate(t *testing.T) {
	tests := []struct {
		name string
		mut  func(*Options)
	}{
		{"zero capacity", func(o *Options) { o.Capacity = 0 }},
		{"negative period", func(o *Options) { o.PeriodMs = -1 }},
		{"unknown mode", func(o *Options) { o.Mode = "warp" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultRunOptions()
			tt.mut(&opts)
			assert.Error(t, opts.Validate())
		})
	}
}

func TestOptions_Period(t *testing.T) {
	opts := Options{Capacity: 1, PeriodMs: 40, Mode: ModeFixedPeriod}
	assert.Equal(t, 40*time.Millisecond, opts.Period())

	// REAL_DELTA_T overrides pacing: the producer runs unpaced.
	opts.Mode = ModeRealDeltaT
	assert.Equal(t, time.Duration(0), opts.Period())
}

func TestLoadOptions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
capacity: 50
period_ms: 10
strict: true
`), 0o644))

	opts, err := LoadOptions(path, DefaultVerifyOptions())
	require.NoError(t, err)

	assert.Equal(t, 50, opts.Capacity)
	assert.Equal(t, 10, opts.PeriodMs)
	assert.True(t, opts.Strict)
	// Unset keys keep the base layer.
	assert.Equal(t, ModeFixedPeriod, opts.Mode)
}

func TestLoadOptions_UnknownKeyRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte("capcity: 5\n"), 0o644))

	_, err := LoadOptions(path, DefaultRunOptions())
	assert.Error(t, err)
}

func TestLoadOptions_InvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte("capacity: 0\n"), 0o644))

	_, err := LoadOptions(path, DefaultRunOptions())
	assert.Error(t, err)
}

func TestLoadOptions_MissingFile(t *testing.T) {
	_, err := LoadOptions(filepath.Join(t.TempDir(), "nope.yaml"), DefaultRunOptions())
	assert.Error(t, err)
}
