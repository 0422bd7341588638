package goldbach

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// syncDir flushes directory entries (such as a rename) to disk.
func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return fmt.Errorf("open dir %s: %w", dir, err)
	}
	defer d.Close()
	if err := unix.Fsync(int(d.Fd())); err != nil {
		return fmt.Errorf("fsync dir %s: %w", dir, err)
	}
	return nil
}

// Close releases the lock file. Save has already persisted the data, so Close
// writes nothing. Calling Close more than once is safe.
func (s *FileStore) Close() error {
	if s == nil || s.lock == nil {
		return nil
	}
	var firstErr error
	if err := unix.Flock(int(s.lock.Fd()), unix.LOCK_UN); err != nil {
		firstErr = fmt.Errorf("unlock %s: %w", s.path, err)
	}
	if err := s.lock.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("close lock file: %w", err)
	}
	s.lock = nil
	return firstErr
}
