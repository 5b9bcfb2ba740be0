package brain

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Lock is a named advisory lock row.
type Lock struct {
	Name       string    `json:"name"`
	Holder     string    `json:"holder"`
	AcquiredAt time.Time `json:"acquired_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// AcquireLock takes the named lock for holder with a TTL. Returns true when
// acquired. A lock held by the same holder is renewed instead of refused;
// an expired lock is taken over regardless of holder.
func (s *Store) AcquireLock(ctx context.Context, name, holder string, ttl time.Duration) (bool, error) {
	if name == "" || holder == "" {
		return false, fmt.Errorf("lock name and holder are required")
	}
	if ttl <= 0 {
		return false, fmt.Errorf("lock ttl must be positive")
	}

	now := time.Now().UTC()
	expires := now.Add(ttl)

	// The WHERE clause on the conflict arm makes takeover atomic: the update
	// applies only when the row is expired or already ours.
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO locks (name, holder, acquired_at, expires_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			holder = excluded.holder,
			acquired_at = excluded.acquired_at,
			expires_at = excluded.expires_at
		WHERE locks.expires_at <= excluded.acquired_at OR locks.holder = excluded.holder`,
		name, holder, now, expires)
	if err != nil {
		return false, fmt.Errorf("acquiring lock %s: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("acquiring lock %s: %w", name, err)
	}
	return n > 0, nil
}

// ReleaseLock drops the named lock if holder owns it. Releasing a lock you
// do not hold is a no-op, not an error.
func (s *Store) ReleaseLock(ctx context.Context, name, holder string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM locks WHERE name = ? AND holder = ?`, name, holder)
	if err != nil {
		return fmt.Errorf("releasing lock %s: %w", name, err)
	}
	return nil
}

// GetLock returns the current lock row or nil when the lock is free.
// Expired rows count as free.
func (s *Store) GetLock(ctx context.Context, name string) (*Lock, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT name, holder, acquired_at, expires_at
		FROM locks WHERE name = ? AND expires_at > ?`,
		name, time.Now().UTC())

	var l Lock
	if err := row.Scan(&l.Name, &l.Holder, &l.AcquiredAt, &l.ExpiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading lock %s: %w", name, err)
	}
	return &l, nil
}

// PruneExpiredLocks deletes expired lock rows and reports how many went.
func (s *Store) PruneExpiredLocks(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM locks WHERE expires_at <= ?`, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("pruning locks: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
