// Package sqlitestore provides a SQLite-backed goldbach.Store.
//
// Primes are stored one row per index, so a save only inserts the primes found
// since the previous save. The checkpoint row and the new prime rows are
// written in one transaction.
package sqlitestore

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	goldbach "github.com/luhtfiimanal/go-goldbach"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

//go:embed schema.sql
var schema string

// Store persists goldbach checkpoints in SQLite.
type Store struct {
	sqlDB  *sql.DB
	logger *slog.Logger
}

var _ goldbach.Store = (*Store)(nil)

// Open opens (or creates) a SQLite store at path and ensures the schema. A nil
// logger uses slog.Default(). A file that SQLite cannot read as a database is
// renamed to path+".corrupt" and replaced by an empty one.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if path != ":memory:" {
		path = filepath.Clean(path)
	}

	sqlDB, err := openDB(path)
	if err != nil && path != ":memory:" && isUnreadable(err) {
		logger.Warn("error reading primes database, starting fresh",
			"path", path, "moved_to", path+corruptSuffix, "err", err)
		if mErr := moveAside(path); mErr != nil {
			return nil, errors.Join(err, mErr)
		}
		sqlDB, err = openDB(path)
	}
	if err != nil {
		return nil, err
	}
	return &Store{sqlDB: sqlDB, logger: logger}, nil
}

const corruptSuffix = ".corrupt"

func openDB(path string) (*sql.DB, error) {
	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(FULL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One connection keeps ":memory:" databases alive across calls.
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return sqlDB, nil
}

// isUnreadable reports whether err means the file is not a usable database.
func isUnreadable(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() & 0xff {
		case sqlite3lib.SQLITE_NOTADB, sqlite3lib.SQLITE_CORRUPT:
			return true
		}
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "file is not a database") ||
		strings.Contains(message, "database disk image is malformed")
}

// moveAside renames path out of the way and drops its WAL sidecars, which
// belong to the old file.
func moveAside(path string) error {
	if err := os.Rename(path, path+corruptSuffix); err != nil {
		return fmt.Errorf("move unreadable database: %w", err)
	}
	for _, sidecar := range []string{path + "-wal", path + "-shm"} {
		if err := os.Remove(sidecar); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove %s: %w", sidecar, err)
		}
	}
	return nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Load reads the saved checkpoint. An empty database, or rows that do not form
// a valid prime prefix, yield goldbach.FreshCheckpoint().
func (s *Store) Load(ctx context.Context) (goldbach.Checkpoint, error) {
	if err := ctx.Err(); err != nil {
		return goldbach.Checkpoint{}, err
	}

	var lastTarget, primeCount int64
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT last_target, prime_count FROM checkpoint WHERE id = 1`,
	).Scan(&lastTarget, &primeCount)
	if errors.Is(err, sql.ErrNoRows) {
		s.logger.Info("no checkpoint found, starting fresh")
		return goldbach.FreshCheckpoint(), nil
	}
	if err != nil {
		return goldbach.Checkpoint{}, fmt.Errorf("read checkpoint: %w", err)
	}

	primes, err := s.loadPrimes(ctx)
	if err != nil {
		return goldbach.Checkpoint{}, err
	}
	if int64(len(primes)) != primeCount {
		s.logger.Warn("prime rows do not match checkpoint, starting fresh",
			"rows", len(primes), "prime_count", primeCount)
		return goldbach.FreshCheckpoint(), nil
	}
	cache, err := goldbach.NewPrimeCacheFrom(primes)
	if err != nil {
		s.logger.Warn("error reading prime rows, starting fresh", "err", err)
		return goldbach.FreshCheckpoint(), nil
	}

	cp := goldbach.Checkpoint{Cache: cache}
	if lastTarget < 0 || lastTarget > int64(cache.Last()) {
		s.logger.Warn("checkpoint is ahead of the prime cache, search restarts",
			"last_target", lastTarget, "last_prime", cache.Last())
		return cp, nil
	}
	// Resolved targets are always even.
	if lastTarget%2 != 0 {
		s.logger.Warn("checkpoint holds an odd target, search restarts",
			"last_target", lastTarget)
		return cp, nil
	}
	cp.LastTarget = int(lastTarget)
	return cp, nil
}

// loadPrimes returns the stored primes in index order. A gap in the indexes
// ends the sequence early, which Load then reports as a count mismatch.
func (s *Store) loadPrimes(ctx context.Context) ([]int, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT idx, value FROM primes ORDER BY idx`)
	if err != nil {
		return nil, fmt.Errorf("query primes: %w", err)
	}
	defer rows.Close()

	var primes []int
	for rows.Next() {
		var idx, value int64
		if err := rows.Scan(&idx, &value); err != nil {
			return nil, fmt.Errorf("scan prime: %w", err)
		}
		if idx != int64(len(primes)) {
			break
		}
		primes = append(primes, int(value))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate primes: %w", err)
	}
	return primes, nil
}

// Save writes cp in a single transaction. When the stored rows are a prefix of
// cp.Cache only the missing tail is inserted; otherwise the rows are replaced.
func (s *Store) Save(ctx context.Context, cp goldbach.Checkpoint) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if cp.Cache == nil {
		return fmt.Errorf("checkpoint has no cache")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	start, err := appendFrom(ctx, tx, cp.Cache)
	if err != nil {
		return err
	}
	if start == 0 {
		if _, err := tx.ExecContext(ctx, `DELETE FROM primes`); err != nil {
			return fmt.Errorf("reset primes: %w", err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO primes (idx, value) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()
	for i := start; i < cp.Cache.Len(); i++ {
		if _, err := stmt.ExecContext(ctx, i, cp.Cache.At(i)); err != nil {
			return fmt.Errorf("insert prime %d: %w", i, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
INSERT INTO checkpoint (id, last_target, prime_count, saved_at) VALUES (1, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    last_target = excluded.last_target,
    prime_count = excluded.prime_count,
    saved_at = excluded.saved_at`,
		cp.LastTarget, cp.Cache.Len(), time.Now().UTC().UnixMilli(),
	); err != nil {
		return fmt.Errorf("upsert checkpoint: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// appendFrom returns the first index that still has to be inserted, or 0 when
// the stored rows must be replaced.
func appendFrom(ctx context.Context, tx *sql.Tx, cache *goldbach.PrimeCache) (int, error) {
	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM primes`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count primes: %w", err)
	}
	if count == 0 || count > cache.Len() {
		return 0, nil
	}
	var last int64
	err := tx.QueryRowContext(ctx, `SELECT value FROM primes WHERE idx = ?`, count-1).Scan(&last)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read last prime: %w", err)
	}
	if last != int64(cache.At(count-1)) {
		return 0, nil
	}
	return count, nil
}
