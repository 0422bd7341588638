package goldbach

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// ErrLocked is returned when another process already holds the store.
var ErrLocked = errors.New("store is locked by another process")

// Store persists checkpoints between runs.
//
// Load must treat missing or undecodable state as a fresh checkpoint rather
// than an error; only unexpected I/O failures are returned. Save must be
// all-or-nothing.
type Store interface {
	Load(ctx context.Context) (Checkpoint, error)
	Save(ctx context.Context, cp Checkpoint) error
	Close() error
}

// FileStore keeps the prime snapshot in a single file and the last resolved
// target in a sidecar ".meta" file. Both are replaced atomically on Save.
//
// The store holds an exclusive advisory lock on "<path>.lock" until Close.
type FileStore struct {
	path   string
	lock   *os.File
	logger *slog.Logger
}

var _ Store = (*FileStore)(nil)

// OpenFileStore prepares a FileStore at path, creating the parent directory if
// needed. A nil logger uses slog.Default().
func OpenFileStore(path string, logger *slog.Logger) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	path = filepath.Clean(path)

	// Make sure the parent directory exists.
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create directory: %w", err)
	}

	lock, err := os.OpenFile(path+".lock", os.O_RDWR|os.O_CREATE, 0o666)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}
	if err := unix.Flock(int(lock.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		lock.Close()
		if errors.Is(err, unix.EWOULDBLOCK) {
			return nil, fmt.Errorf("%s: %w", path, ErrLocked)
		}
		return nil, fmt.Errorf("lock %s: %w", path, err)
	}

	return &FileStore{path: path, lock: lock, logger: logger}, nil
}

// Path returns the snapshot file path.
func (s *FileStore) Path() string { return s.path }

// Load reads the last saved checkpoint. A missing or corrupt snapshot yields
// FreshCheckpoint(); a missing or corrupt meta file keeps the cache but resets
// the resume point.
func (s *FileStore) Load(ctx context.Context) (Checkpoint, error) {
	if err := ctx.Err(); err != nil {
		return Checkpoint{}, err
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Info("no primes file found, starting fresh", "path", s.path)
		return FreshCheckpoint(), nil
	}
	if err != nil {
		return Checkpoint{}, fmt.Errorf("read primes file: %w", err)
	}

	cache, err := LoadPrimeCache(data)
	if err != nil {
		s.logger.Warn("error reading primes file, starting fresh", "path", s.path, "err", err)
		return FreshCheckpoint(), nil
	}

	cp := Checkpoint{Cache: cache}
	lastTarget, primeCount, err := loadMeta(metaPath(s.path))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		s.logger.Info("no checkpoint meta found, search restarts", "path", metaPath(s.path), "first_target", FirstTarget)
		return cp, nil
	case errors.Is(err, ErrCorrupt):
		s.logger.Warn("error reading checkpoint meta, search restarts", "path", metaPath(s.path), "err", err)
		return cp, nil
	case err != nil:
		return Checkpoint{}, fmt.Errorf("read checkpoint meta: %w", err)
	}

	if lastTarget > uint64(cache.Last()) {
		s.logger.Warn("checkpoint meta is ahead of the prime cache, search restarts",
			"last_target", lastTarget, "last_prime", cache.Last())
		return cp, nil
	}
	// Resolved targets are always even.
	if lastTarget%2 != 0 {
		s.logger.Warn("checkpoint meta holds an odd target, search restarts",
			"last_target", lastTarget)
		return cp, nil
	}
	if primeCount != uint64(cache.Len()) {
		s.logger.Debug("checkpoint meta prime count differs from snapshot",
			"meta_count", primeCount, "snapshot_count", cache.Len())
	}
	cp.LastTarget = int(lastTarget)
	return cp, nil
}

// Save writes the snapshot and then the meta file, each through a temporary
// file that is fsynced and renamed into place.
func (s *FileStore) Save(ctx context.Context, cp Checkpoint) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if cp.Cache == nil {
		return fmt.Errorf("checkpoint has no cache")
	}

	buf := getEncodeBuf(snapshotSize(cp.Cache.Len()))
	defer returnEncodeBuf(buf)
	*buf = appendSnapshot((*buf)[:0], cp.Cache.primes)

	if err := writeFileAtomic(s.path, *buf); err != nil {
		return fmt.Errorf("save primes: %w", err)
	}
	meta := encodeMeta(uint64(cp.LastTarget), uint64(cp.Cache.Len()))
	if err := writeFileAtomic(metaPath(s.path), meta); err != nil {
		return fmt.Errorf("save checkpoint meta: %w", err)
	}
	return nil
}

// writeFileAtomic replaces path with data so that readers see either the old
// content or the new content, never a mix.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if err := tmp.Chmod(0o644); err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := unix.Fsync(int(tmp.Fd())); err != nil {
		return fmt.Errorf("fsync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}
	return syncDir(dir)
}
