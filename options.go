package goldbach

// Backend names accepted by Options.Backend.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Options configures a search run.
//
//   - PersistencePath: where the prime cache is stored
//   - Backend:         persistence backend, "file" or "sqlite"
//   - UpperBound:      last target to try (0 = run until interrupted)
//   - ReportEvery:     print a found pair when target % ReportEvery == 0 (0 = never)
//   - CheckpointEvery: save a checkpoint every N targets (0 = only on exit)
//   - VerifyOnLoad:    re-check every loaded prime before searching
//   - LogLevel:        slog level name (debug, info, warn, error)
//
// See DefaultOptions() for the defaults.
type Options struct {
	PersistencePath string `env:"GOLDBACH_PERSISTENCE_PATH" envDefault:"primes.bin"`
	Backend         string `env:"GOLDBACH_BACKEND" envDefault:"file"`
	UpperBound      int    `env:"GOLDBACH_UPPER_BOUND" envDefault:"0"`
	ReportEvery     int    `env:"GOLDBACH_REPORT_EVERY" envDefault:"50000"`
	CheckpointEvery int    `env:"GOLDBACH_CHECKPOINT_EVERY" envDefault:"1000000"`
	VerifyOnLoad    bool   `env:"GOLDBACH_VERIFY_ON_LOAD" envDefault:"false"`
	LogLevel        string `env:"GOLDBACH_LOG_LEVEL" envDefault:"info"`
}

// DefaultOptions returns the configuration used when nothing is set in the
// environment or on the command line.
func DefaultOptions() Options {
	return Options{
		PersistencePath: "primes.bin",
		Backend:         BackendFile,
		UpperBound:      0,
		ReportEvery:     50_000,
		CheckpointEvery: 1_000_000,
		VerifyOnLoad:    false,
		LogLevel:        "info",
	}
}
