package brain

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// Reserved metadata keys managed by the store itself.
const metadataSchemaVersionKey = "schema_version"

// SetMetadata stores a key/value setting in the database. Reserved keys
// cannot be written through this path.
func (s *Store) SetMetadata(ctx context.Context, key, value string) error {
	if key == "" {
		return fmt.Errorf("metadata key is required")
	}
	if key == metadataSchemaVersionKey {
		return fmt.Errorf("metadata key %q is reserved", key)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value)
	if err != nil {
		return fmt.Errorf("setting metadata %q: %w", key, err)
	}
	return nil
}

// GetMetadata returns the stored value for key, or "" when unset.
func (s *Store) GetMetadata(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading metadata %q: %w", key, err)
	}
	return value, nil
}

// DeleteMetadata removes a stored setting. Deleting an unset key is not
// an error.
func (s *Store) DeleteMetadata(ctx context.Context, key string) error {
	if key == metadataSchemaVersionKey {
		return fmt.Errorf("metadata key %q is reserved", key)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM metadata WHERE key = ?`, key); err != nil {
		return fmt.Errorf("deleting metadata %q: %w", key, err)
	}
	return nil
}

// AllMetadata returns every user-visible setting, excluding reserved keys.
func (s *Store) AllMetadata(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM metadata ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("listing metadata: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scanning metadata: %w", err)
		}
		if strings.EqualFold(key, metadataSchemaVersionKey) {
			continue
		}
		out[key] = value
	}
	return out, rows.Err()
}
