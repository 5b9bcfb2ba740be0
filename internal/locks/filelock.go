package locks

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/flock"

	"github.com/cometalabs/devflow/internal/debug"
)

const fileLockTimeout = 30 * time.Second

// FileLock wraps an flock on disk for coordinating with processes that do
// not share the brain database, such as a second devflow invocation running
// a backup of the same store.
type FileLock struct {
	flock *flock.Flock
}

// NewFileLock creates a file lock at path. The file is created on first
// acquire.
func NewFileLock(path string) *FileLock {
	return &FileLock{flock: flock.New(path)}
}

// TryAcquire attempts to take the lock without blocking.
func (l *FileLock) TryAcquire() (bool, error) {
	locked, err := l.flock.TryLock()
	if err != nil {
		return false, fmt.Errorf("acquiring file lock %s: %w", l.flock.Path(), err)
	}
	if locked {
		debug.Logf("locks: acquired file lock %s\n", l.flock.Path())
	}
	return locked, nil
}

// Acquire takes the lock, polling until it succeeds, the context is done,
// or the timeout elapses.
func (l *FileLock) Acquire(ctx context.Context) error {
	timeoutCtx, cancel := context.WithTimeout(ctx, fileLockTimeout)
	defer cancel()

	start := time.Now()
	for {
		locked, err := l.TryAcquire()
		if err != nil {
			return err
		}
		if locked {
			return nil
		}

		select {
		case <-timeoutCtx.Done():
			return fmt.Errorf("timeout waiting for file lock %s after %v (another devflow process may be running)",
				l.flock.Path(), time.Since(start).Round(time.Millisecond))
		case <-time.After(acquirePollInterval):
		}
	}
}

// Release drops the lock. Safe to call multiple times.
func (l *FileLock) Release() error {
	return l.flock.Unlock()
}

// WithFileLock runs fn while holding an exclusive file lock at path.
func WithFileLock(ctx context.Context, path string, fn func() error) error {
	lock := NewFileLock(path)
	if err := lock.Acquire(ctx); err != nil {
		return err
	}
	defer func() { _ = lock.Release() }()
	return fn()
}
