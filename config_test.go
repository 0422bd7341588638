package goldbach

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOptionsDefaults(t *testing.T) {
	opts, err := LoadOptions()
	require.NoError(t, err)
	assert.Equal(t, DefaultOptions(), opts)
	require.NoError(t, opts.Validate())
}

func TestLoadOptionsFromEnv(t *testing.T) {
	t.Setenv("GOLDBACH_PERSISTENCE_PATH", "/var/lib/goldbach/primes.db")
	t.Setenv("GOLDBACH_BACKEND", "sqlite")
	t.Setenv("GOLDBACH_UPPER_BOUND", "1000000")
	t.Setenv("GOLDBACH_REPORT_EVERY", "1000")
	t.Setenv("GOLDBACH_CHECKPOINT_EVERY", "0")
	t.Setenv("GOLDBACH_VERIFY_ON_LOAD", "true")
	t.Setenv("GOLDBACH_LOG_LEVEL", "debug")

	opts, err := LoadOptions()
	require.NoError(t, err)
	assert.Equal(t, Options{
		PersistencePath: "/var/lib/goldbach/primes.db",
		Backend:         BackendSQLite,
		UpperBound:      1_000_000,
		ReportEvery:     1000,
		CheckpointEvery: 0,
		VerifyOnLoad:    true,
		LogLevel:        "debug",
	}, opts)

	lvl, err := opts.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)
}

func TestLoadOptionsError(t *testing.T) {
	t.Setenv("GOLDBACH_UPPER_BOUND", "lots")

	_, err := LoadOptions()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env:")
}

func TestOptionsValidate(t *testing.T) {
	cases := map[string]func(*Options){
		"empty path":          func(o *Options) { o.PersistencePath = "  " },
		"unknown backend":     func(o *Options) { o.Backend = "pickle" },
		"negative bound":      func(o *Options) { o.UpperBound = -1 },
		"negative cadence":    func(o *Options) { o.ReportEvery = -5 },
		"negative checkpoint": func(o *Options) { o.CheckpointEvery = -1 },
		"bad log level":       func(o *Options) { o.LogLevel = "loud" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			opts := DefaultOptions()
			mutate(&opts)
			require.Error(t, opts.Validate())
		})
	}
}
