package goldbach

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// RunConfig wires a search run together.
type RunConfig struct {
	Options  Options
	Store    Store
	Reporter Reporter
	Logger   *slog.Logger // nil uses slog.Default()
}

// Run loads the last checkpoint from cfg.Store and resolves even targets
// upward from the one after the last resolved target, until ctx is cancelled,
// Options.UpperBound is passed, or a target has no pair.
//
// The current state is saved on every exit path. Cancellation is a normal stop
// and returns nil once that save succeeds. A target without a pair returns an
// error wrapping ErrNoPair; the saved checkpoint then records the target
// before it. A failed final save is always returned.
func Run(ctx context.Context, cfg RunConfig) (err error) {
	if cfg.Store == nil {
		return fmt.Errorf("store is required")
	}
	if cfg.Reporter == nil {
		return fmt.Errorf("reporter is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	opts := cfg.Options

	// Loaded even when ctx is already done; the loop then stops at once and
	// the exit save writes back what was loaded.
	cp, err := cfg.Store.Load(context.WithoutCancel(ctx))
	if err != nil {
		return fmt.Errorf("load checkpoint: %w", err)
	}
	if opts.VerifyOnLoad {
		if verr := cp.Cache.Verify(); verr != nil {
			logger.Warn("loaded primes failed verification, starting fresh", "err", verr)
			cp = FreshCheckpoint()
		}
	}
	logger.Info("state loaded", "primes", cp.Cache.Len(), "last_prime", cp.Cache.Last(),
		"last_target", cp.LastTarget, "next_target", cp.NextTarget())

	s := NewSearcher(cp.Cache)
	lastTarget := cp.LastTarget

	// Always save on the way out, whatever the reason.
	defer func() {
		final := Checkpoint{LastTarget: lastTarget, Cache: s.Cache()}
		// ctx may already be cancelled; the final save must still run.
		if serr := cfg.Store.Save(context.WithoutCancel(ctx), final); serr != nil {
			err = errors.Join(err, fmt.Errorf("final save: %w", serr))
			return
		}
		logger.Info(summary(s, final))
	}()

	sinceCheckpoint := 0
	for n := cp.NextTarget(); opts.UpperBound <= 0 || n <= opts.UpperBound; n += 2 {
		select {
		case <-ctx.Done():
			logger.Info("search interrupted", "next_target", n)
			return nil
		default:
		}

		pair, ok := s.Find(n)
		if !ok {
			cfg.Reporter.NotFound(n)
			return fmt.Errorf("target %d: %w", n, ErrNoPair)
		}
		cfg.Reporter.Found(n, pair)
		lastTarget = n

		sinceCheckpoint++
		if opts.CheckpointEvery > 0 && sinceCheckpoint >= opts.CheckpointEvery {
			sinceCheckpoint = 0
			if err := cfg.Store.Save(ctx, Checkpoint{LastTarget: lastTarget, Cache: s.Cache()}); err != nil {
				if ctx.Err() != nil {
					continue
				}
				return fmt.Errorf("checkpoint at %d: %w", n, err)
			}
			logger.Debug("checkpoint saved", "last_target", lastTarget, "primes", s.Cache().Len())
		}
	}
	logger.Info("upper bound reached", "upper_bound", opts.UpperBound)
	return nil
}

func summary(s *Searcher, cp Checkpoint) string {
	st := s.GetStats()
	p := message.NewPrinter(language.English)
	return p.Sprintf("saved %d primes (largest %d); resolved %d targets this run, last %d; cache grew on %d of them",
		cp.Cache.Len(), cp.Cache.Last(), st.Targets, cp.LastTarget, st.Misses)
}
