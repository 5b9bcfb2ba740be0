package backup

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/cometalabs/devflow/internal/debug"
)

const watchDebounce = 5 * time.Second

// Watch snapshots the database whenever it changes, debounced so a burst of
// hook writes yields one snapshot. Runs until the context is cancelled.
// Prune runs after every snapshot.
func (m *Manager) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Watch the directory, not the file: SQLite swaps WAL files around and
	// directory watches survive that.
	dbDir := filepath.Dir(m.store.Path())
	if err := watcher.Add(dbDir); err != nil {
		return fmt.Errorf("watching %s: %w", dbDir, err)
	}

	dbBase := filepath.Base(m.store.Path())
	var debounce *time.Timer
	var fired <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// Only writes to the database or its WAL matter.
			name := filepath.Base(event.Name)
			if !strings.HasPrefix(name, dbBase) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if debounce == nil {
				debounce = time.NewTimer(watchDebounce)
				fired = debounce.C
			} else {
				debounce.Reset(watchDebounce)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			debug.Logf("backup: watch error: %v\n", err)

		case <-fired:
			debounce = nil
			fired = nil
			if _, err := m.Snapshot(ctx); err != nil {
				debug.Logf("backup: auto-snapshot failed: %v\n", err)
				continue
			}
			if _, err := m.Prune(); err != nil {
				debug.Logf("backup: prune failed: %v\n", err)
			}
		}
	}
}
