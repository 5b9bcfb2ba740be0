package backup

import (
	"fmt"
	"os"
	"time"

	"github.com/cometalabs/devflow/internal/debug"
)

// Prune deletes snapshots beyond the retention policy and reports how many
// were removed. Within each bucket the newest snapshot per period survives:
// one per hour for hourly, one per calendar day for daily, one per ISO week
// for weekly. The newest snapshot overall is never deleted.
func (m *Manager) Prune() (int, error) {
	backups, err := m.List()
	if err != nil {
		return 0, err
	}
	if len(backups) == 0 {
		return 0, nil
	}

	keep := make(map[string]bool)
	// List is newest first, so the first backup seen for a period wins.
	keep[backups[0].Path] = true

	hourly := map[string]bool{}
	daily := map[string]bool{}
	weekly := map[string]bool{}

	for _, b := range backups {
		switch b.Bucket {
		case "hourly":
			key := b.CreatedAt.Format("2006010215")
			if !hourly[key] && len(hourly) < m.retention.Hourly {
				hourly[key] = true
				keep[b.Path] = true
			}
		case "daily":
			key := b.CreatedAt.Format("20060102")
			if !daily[key] && len(daily) < m.retention.Daily {
				daily[key] = true
				keep[b.Path] = true
			}
		case "weekly":
			year, week := b.CreatedAt.ISOWeek()
			key := fmt.Sprintf("%d-%02d", year, week)
			if !weekly[key] && len(weekly) < m.retention.Weekly {
				weekly[key] = true
				keep[b.Path] = true
			}
		}
	}

	removed := 0
	for _, b := range backups {
		if keep[b.Path] {
			continue
		}
		if err := os.Remove(b.Path); err != nil {
			return removed, fmt.Errorf("removing %s: %w", b.Path, err)
		}
		removed++
	}
	if removed > 0 {
		debug.Logf("backup: pruned %d snapshot(s)\n", removed)
	}
	return removed, nil
}

// Age returns how old the newest snapshot is, or false when none exist.
func (m *Manager) Age() (time.Duration, bool, error) {
	backups, err := m.List()
	if err != nil {
		return 0, false, err
	}
	if len(backups) == 0 {
		return 0, false, nil
	}
	return m.now().UTC().Sub(backups[0].CreatedAt), true, nil
}
