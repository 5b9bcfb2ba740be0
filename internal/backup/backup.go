// Package backup snapshots the brain database and manages retention.
//
// Snapshots are plain file copies taken after a WAL checkpoint, named by
// timestamp so the list sorts chronologically. Retention keeps one snapshot
// per hour for the last day, one per day for the last week, and one per
// week beyond that.
package backup

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/cometalabs/devflow/internal/brain"
	"github.com/cometalabs/devflow/internal/debug"
	"github.com/cometalabs/devflow/internal/locks"
)

const (
	timestampFormat = "20060102-150405"
	snapshotPrefix  = "cometa-"
	snapshotSuffix  = ".db"
	lockFileName    = ".backup.lock"
)

// Retention caps how many snapshots each age bucket keeps.
type Retention struct {
	Hourly int `json:"hourly"`
	Daily  int `json:"daily"`
	Weekly int `json:"weekly"`
}

// DefaultRetention keeps a day of hourly, a week of daily, and a month of
// weekly snapshots.
func DefaultRetention() Retention {
	return Retention{Hourly: 24, Daily: 7, Weekly: 4}
}

// Backup describes one snapshot on disk.
type Backup struct {
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"created_at"`
	Size      int64     `json:"size"`
	Bucket    string    `json:"bucket"` // hourly, daily, or weekly
}

// Manager snapshots one store into one backup directory.
type Manager struct {
	store     *brain.Store
	dir       string
	retention Retention

	// now is swappable for tests.
	now func() time.Time
}

// NewManager creates a backup manager writing into dir.
func NewManager(store *brain.Store, dir string, retention Retention) *Manager {
	return &Manager{store: store, dir: dir, retention: retention, now: time.Now}
}

// Dir returns the backup directory.
func (m *Manager) Dir() string { return m.dir }

// Snapshot checkpoints the WAL and copies the database into the backup
// directory. The copy is guarded by a file lock so concurrent devflow
// processes do not interleave snapshots.
func (m *Manager) Snapshot(ctx context.Context) (string, error) {
	if m.store.Path() == "" || m.store.Path() == ":memory:" {
		return "", fmt.Errorf("cannot back up an in-memory database")
	}
	if err := os.MkdirAll(m.dir, 0755); err != nil {
		return "", fmt.Errorf("creating backup dir: %w", err)
	}

	var dest string
	err := locks.WithFileLock(ctx, filepath.Join(m.dir, lockFileName), func() error {
		// Fold the WAL into the main file so the copy is self-contained.
		if err := m.store.CheckpointWAL(ctx, "TRUNCATE"); err != nil {
			return fmt.Errorf("checkpointing before backup: %w", err)
		}

		name := snapshotPrefix + m.now().UTC().Format(timestampFormat) + snapshotSuffix
		dest = filepath.Join(m.dir, name)
		if _, err := os.Stat(dest); err == nil {
			return fmt.Errorf("snapshot already exists: %s", dest)
		}

		if err := copyFile(m.store.Path(), dest); err != nil {
			_ = os.Remove(dest)
			return fmt.Errorf("copying database: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	debug.Logf("backup: wrote snapshot %s\n", dest)
	return dest, nil
}

// List returns all snapshots in the backup directory, newest first.
func (m *Manager) List() ([]Backup, error) {
	entries, err := os.ReadDir(m.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading backup dir: %w", err)
	}

	now := m.now().UTC()
	var backups []Backup
	for _, e := range entries {
		ts, ok := parseSnapshotName(e.Name())
		if !ok {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		backups = append(backups, Backup{
			Path:      filepath.Join(m.dir, e.Name()),
			CreatedAt: ts,
			Size:      info.Size(),
			Bucket:    bucketFor(now.Sub(ts)),
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].CreatedAt.After(backups[j].CreatedAt)
	})
	return backups, nil
}

// parseSnapshotName extracts the timestamp from a snapshot filename.
func parseSnapshotName(name string) (time.Time, bool) {
	if !strings.HasPrefix(name, snapshotPrefix) || !strings.HasSuffix(name, snapshotSuffix) {
		return time.Time{}, false
	}
	raw := strings.TrimSuffix(strings.TrimPrefix(name, snapshotPrefix), snapshotSuffix)
	ts, err := time.Parse(timestampFormat, raw)
	if err != nil {
		return time.Time{}, false
	}
	return ts.UTC(), true
}

// bucketFor maps a snapshot age to its retention bucket.
func bucketFor(age time.Duration) string {
	switch {
	case age < 24*time.Hour:
		return "hourly"
	case age < 7*24*time.Hour:
		return "daily"
	default:
		return "weekly"
	}
}

// copyFile copies src to dst and fsyncs the result so a crash right after
// the backup cannot leave a torn snapshot.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
