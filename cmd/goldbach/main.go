// Command goldbach searches even numbers for Goldbach pairs, resuming from the
// checkpoint left by the previous run.
//
// Settings come from GOLDBACH_* environment variables and may be overridden by
// flags. Interrupting the search (Ctrl-C, SIGTERM) saves the prime cache and
// exits 0; a target without a pair exits 1.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	goldbach "github.com/luhtfiimanal/go-goldbach"
	"github.com/luhtfiimanal/go-goldbach/sqlitestore"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the command and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseOptions(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	level, _ := opts.Level()
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	store, err := openStore(opts, logger)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("close store", "err", err)
		}
	}()

	err = goldbach.Run(ctx, goldbach.RunConfig{
		Options:  opts,
		Store:    store,
		Reporter: goldbach.LineReporter{W: stdout, Every: opts.ReportEvery},
		Logger:   logger,
	})
	switch {
	case err == nil:
		if ctx.Err() != nil {
			fmt.Fprintln(stdout, "Program interrupted.")
		}
		fmt.Fprintf(stdout, "Primes saved in %s.\n", opts.PersistencePath)
		return 0
	case errors.Is(err, goldbach.ErrNoPair):
		logger.Error("search stopped", "err", err)
		return 1
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
}

// parseOptions loads defaults from the environment and then applies flags.
func parseOptions(args []string, stderr io.Writer) (goldbach.Options, error) {
	opts, err := goldbach.LoadOptions()
	if err != nil {
		return goldbach.Options{}, err
	}

	fs := flag.NewFlagSet("goldbach", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.PersistencePath, "path", opts.PersistencePath, "where the prime cache is stored")
	fs.StringVar(&opts.Backend, "backend", opts.Backend, "persistence backend: file or sqlite")
	fs.IntVar(&opts.UpperBound, "upper", opts.UpperBound, "last target to try (0 = until interrupted)")
	fs.IntVar(&opts.ReportEvery, "every", opts.ReportEvery, "print pairs for targets divisible by this (0 = never)")
	fs.IntVar(&opts.CheckpointEvery, "checkpoint", opts.CheckpointEvery, "save every N targets (0 = only on exit)")
	fs.BoolVar(&opts.VerifyOnLoad, "verify", opts.VerifyOnLoad, "re-check loaded primes before searching")
	fs.StringVar(&opts.LogLevel, "log-level", opts.LogLevel, "log level: debug, info, warn, error")
	if err := fs.Parse(args); err != nil {
		return goldbach.Options{}, err
	}
	if fs.NArg() > 0 {
		return goldbach.Options{}, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if err := opts.Validate(); err != nil {
		return goldbach.Options{}, err
	}
	return opts, nil
}

func openStore(opts goldbach.Options, logger *slog.Logger) (goldbach.Store, error) {
	switch opts.Backend {
	case goldbach.BackendSQLite:
		return sqlitestore.Open(opts.PersistencePath, logger)
	default:
		return goldbach.OpenFileStore(opts.PersistencePath, logger)
	}
}
