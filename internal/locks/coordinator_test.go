package locks

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/cometalabs/devflow/internal/brain"
)

func newTestStore(t *testing.T) *brain.Store {
	t.Helper()
	s, err := brain.Open(context.Background(), filepath.Join(t.TempDir(), "cometa.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestCoordinatorExclusion(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a := NewCoordinator(store, time.Minute)
	b := NewCoordinator(store, time.Minute)

	ok, err := a.TryAcquire(ctx, "backup")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("first coordinator could not acquire")
	}

	ok, err = b.TryAcquire(ctx, "backup")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("second coordinator acquired a held lock")
	}

	if err := a.Release(ctx, "backup"); err != nil {
		t.Fatal(err)
	}
	ok, err = b.TryAcquire(ctx, "backup")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("released lock not acquirable")
	}
}

func TestCoordinatorReentry(t *testing.T) {
	store := newTestStore(t)
	c := NewCoordinator(store, time.Minute)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := c.TryAcquire(ctx, "job")
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			t.Fatalf("acquire %d failed for own holder", i)
		}
	}
}

func TestAcquireWaitsForRelease(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a := NewCoordinator(store, time.Minute)
	b := NewCoordinator(store, time.Minute)

	if ok, _ := a.TryAcquire(ctx, "job"); !ok {
		t.Fatal("setup acquire failed")
	}

	done := make(chan error, 1)
	go func() {
		done <- b.Acquire(ctx, "job")
	}()

	time.Sleep(100 * time.Millisecond)
	if err := a.Release(ctx, "job"); err != nil {
		t.Fatal(err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Acquire after release: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Acquire did not return after release")
	}
}

func TestAcquireHonorsContext(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a := NewCoordinator(store, time.Minute)
	b := NewCoordinator(store, time.Minute)

	if ok, _ := a.TryAcquire(ctx, "job"); !ok {
		t.Fatal("setup acquire failed")
	}

	waitCtx, cancel := context.WithTimeout(ctx, 200*time.Millisecond)
	defer cancel()
	if err := b.Acquire(waitCtx, "job"); err == nil {
		t.Error("expected context deadline error")
	}
}

func TestWithLockReleases(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a := NewCoordinator(store, time.Minute)
	b := NewCoordinator(store, time.Minute)

	ran := false
	if err := a.WithLock(ctx, "job", func() error {
		ran = true
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	if !ran {
		t.Fatal("fn did not run")
	}

	ok, err := b.TryAcquire(ctx, "job")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("lock not released after WithLock")
	}
}

func TestFileLockExclusion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backup.lock")

	a := NewFileLock(path)
	ok, err := a.TryAcquire()
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("first file lock failed")
	}
	defer a.Release()

	// flock is per file description, so a second Flock on the same path in
	// the same process still contends.
	b := NewFileLock(path)
	ok, err = b.TryAcquire()
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("second file lock acquired a held lock")
	}

	if err := a.Release(); err != nil {
		t.Fatal(err)
	}
	ok, err = b.TryAcquire()
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("released file lock not acquirable")
	}
	b.Release()
}
