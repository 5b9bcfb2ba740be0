// Package locks coordinates exclusive access to shared resources.
//
// Two layers: named advisory locks with a TTL, persisted in the brain
// database so they work across processes and survive crashes (the TTL is
// the crash recovery), and flock-based file locks for paths the database
// cannot cover, like the backup directory.
package locks

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/cometalabs/devflow/internal/brain"
	"github.com/cometalabs/devflow/internal/debug"
	"github.com/google/uuid"
)

const (
	// DefaultTTL bounds how long a crashed process can wedge a lock.
	DefaultTTL = 2 * time.Minute

	// janitorInterval is how often expired locks are swept.
	janitorInterval = 30 * time.Second

	acquirePollInterval = 50 * time.Millisecond
)

// Coordinator hands out named TTL locks backed by the brain store. Each
// coordinator has a stable holder identity so re-acquiring its own lock
// renews rather than deadlocks.
type Coordinator struct {
	store  *brain.Store
	holder string
	ttl    time.Duration
}

// NewCoordinator creates a coordinator with a unique holder identity.
// ttl <= 0 uses DefaultTTL.
func NewCoordinator(store *brain.Store, ttl time.Duration) *Coordinator {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Coordinator{
		store:  store,
		holder: fmt.Sprintf("%d-%s", os.Getpid(), uuid.NewString()[:8]),
		ttl:    ttl,
	}
}

// Holder returns the coordinator's identity, mainly for diagnostics.
func (c *Coordinator) Holder() string { return c.holder }

// TryAcquire attempts to take the named lock without waiting.
func (c *Coordinator) TryAcquire(ctx context.Context, name string) (bool, error) {
	return c.store.AcquireLock(ctx, name, c.holder, c.ttl)
}

// Acquire takes the named lock, polling until it succeeds or the context
// expires.
func (c *Coordinator) Acquire(ctx context.Context, name string) error {
	start := time.Now()
	for {
		ok, err := c.TryAcquire(ctx, name)
		if err != nil {
			return err
		}
		if ok {
			debug.Logf("locks: acquired %s after %v\n", name, time.Since(start))
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for lock %s: %w", name, ctx.Err())
		case <-time.After(acquirePollInterval):
		}
	}
}

// Release drops the named lock if this coordinator holds it.
func (c *Coordinator) Release(ctx context.Context, name string) error {
	return c.store.ReleaseLock(ctx, name, c.holder)
}

// WithLock runs fn while holding the named lock.
func (c *Coordinator) WithLock(ctx context.Context, name string, fn func() error) error {
	if err := c.Acquire(ctx, name); err != nil {
		return err
	}
	defer func() { _ = c.Release(context.WithoutCancel(ctx), name) }()
	return fn()
}

// RunJanitor sweeps expired locks until the context is cancelled. Meant to
// run as a goroutine from long-lived commands; one-shot hook invocations
// rely on the TTL alone.
func (c *Coordinator) RunJanitor(ctx context.Context) {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := c.store.PruneExpiredLocks(ctx)
			if err != nil {
				debug.Logf("locks: janitor sweep failed: %v\n", err)
				continue
			}
			if n > 0 {
				debug.Logf("locks: janitor pruned %d expired lock(s)\n", n)
			}
		}
	}
}
