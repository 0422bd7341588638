package goldbach

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// LoadOptions reads Options from GOLDBACH_* environment variables, falling back
// to the defaults for anything unset.
func LoadOptions() (Options, error) {
	var opts Options
	if err := env.Parse(&opts); err != nil {
		return Options{}, fmt.Errorf("parse env: %w", err)
	}
	return opts, nil
}

// Validate reports the first problem with opts, if any.
func (o Options) Validate() error {
	if strings.TrimSpace(o.PersistencePath) == "" {
		return fmt.Errorf("persistence path is required")
	}
	switch o.Backend {
	case BackendFile, BackendSQLite:
	default:
		return fmt.Errorf("unknown backend %q (want %q or %q)", o.Backend, BackendFile, BackendSQLite)
	}
	if o.UpperBound < 0 {
		return fmt.Errorf("upper bound must not be negative: %d", o.UpperBound)
	}
	if o.ReportEvery < 0 {
		return fmt.Errorf("report cadence must not be negative: %d", o.ReportEvery)
	}
	if o.CheckpointEvery < 0 {
		return fmt.Errorf("checkpoint cadence must not be negative: %d", o.CheckpointEvery)
	}
	if _, err := o.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel into a slog level.
func (o Options) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(o.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log level %q: %w", o.LogLevel, err)
	}
	return lvl, nil
}
