// Package jobdir guards writes into a simulation job directory: a per-job
// advisory lock and atomic replacement of output files.
package jobdir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// Lock is an exclusive advisory lock on one job directory. The lock file
// lives outside the job directory so the job's contents stay untouched.
type Lock struct {
	flock *flock.Flock
	path  string
}

// LockPath returns the lock file used for jobPath under lockDir. The name is
// derived from the absolute job path so different spellings of the same
// directory share a lock.
func LockPath(lockDir, jobPath string) (string, error) {
	abs, err := filepath.Abs(jobPath)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256([]byte(filepath.Clean(abs)))
	return filepath.Join(lockDir, hex.EncodeToString(sum[:8])+".lock"), nil
}

// Acquire blocks until the lock for jobPath is held.
func Acquire(lockDir, jobPath string) (*Lock, error) {
	if err := os.MkdirAll(lockDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating lock directory %s: %w", lockDir, err)
	}
	path, err := LockPath(lockDir, jobPath)
	if err != nil {
		return nil, err
	}
	l := &Lock{flock: flock.New(path), path: path}
	if err := l.flock.Lock(); err != nil {
		return nil, fmt.Errorf("failed to acquire lock on %s: %w", path, err)
	}
	return l, nil
}

// TryAcquire attempts the lock without blocking. It returns nil and no
// error when another process holds it.
func TryAcquire(lockDir, jobPath string) (*Lock, error) {
	if err := os.MkdirAll(lockDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating lock directory %s: %w", lockDir, err)
	}
	path, err := LockPath(lockDir, jobPath)
	if err != nil {
		return nil, err
	}
	l := &Lock{flock: flock.New(path), path: path}
	ok, err := l.flock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to try lock on %s: %w", path, err)
	}
	if !ok {
		return nil, nil
	}
	return l, nil
}

// Release drops the lock.
func (l *Lock) Release() error {
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock on %s: %w", l.path, err)
	}
	return nil
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.path
}

// AtomicWrite replaces path with data via a temp file in the same directory
// and a rename, so readers never observe a truncated file. The parent
// directory must already exist.
func AtomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	defer func() {
		if tmp != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		tmp = nil
		return fmt.Errorf("failed to rename temp file to %s: %w", path, err)
	}

	tmp = nil
	return nil
}
