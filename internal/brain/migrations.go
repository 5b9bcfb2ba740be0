package brain

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
)

// migration is a single schema change applied on top of the baseline schema.
// Migrations must be idempotent: they run inside a transaction but the
// version check is the only thing preventing re-runs on rollback-prone
// filesystems.
type migration struct {
	version int
	name    string
	apply   func(ctx context.Context, tx *sql.Tx) error
}

var migrations = []migration{
	{1, "memories_source_column", migrateMemoriesSourceColumn},
	{2, "sessions_model_column", migrateSessionsModelColumn},
	{3, "locks_table", migrateLocksTable},
}

// runMigrations applies pending migrations in order. The current version is
// tracked in the metadata table.
func runMigrations(ctx context.Context, db *sql.DB) error {
	current, err := schemaVersion(ctx, db)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("migration %d (%s): begin: %w", m.version, m.name, err)
		}
		if err := m.apply(ctx, tx); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO metadata (key, value) VALUES ('schema_version', ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
			strconv.Itoa(m.version)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d (%s): record version: %w", m.version, m.name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d (%s): commit: %w", m.version, m.name, err)
		}
	}
	return nil
}

func schemaVersion(ctx context.Context, db *sql.DB) (int, error) {
	var raw string
	err := db.QueryRowContext(ctx,
		`SELECT value FROM metadata WHERE key = 'schema_version'`).Scan(&raw)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parsing schema version %q: %w", raw, err)
	}
	return v, nil
}

func migrateMemoriesSourceColumn(ctx context.Context, tx *sql.Tx) error {
	ok, err := columnExists(ctx, tx, "memories", "source")
	if err != nil {
		return err
	}
	if !ok {
		if _, err := tx.ExecContext(ctx,
			`ALTER TABLE memories ADD COLUMN source TEXT NOT NULL DEFAULT 'hook'`); err != nil {
			return fmt.Errorf("adding memories.source: %w", err)
		}
	}
	return nil
}

func migrateSessionsModelColumn(ctx context.Context, tx *sql.Tx) error {
	ok, err := columnExists(ctx, tx, "sessions", "model")
	if err != nil {
		return err
	}
	if !ok {
		if _, err := tx.ExecContext(ctx,
			`ALTER TABLE sessions ADD COLUMN model TEXT NOT NULL DEFAULT ''`); err != nil {
			return fmt.Errorf("adding sessions.model: %w", err)
		}
	}
	return nil
}

func migrateLocksTable(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS locks (
			name        TEXT PRIMARY KEY,
			holder      TEXT NOT NULL,
			acquired_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			expires_at  DATETIME NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("creating locks table: %w", err)
	}
	return nil
}

// columnExists checks PRAGMA table_info for the named column. Rows must be
// fully drained before any other statement runs on the same connection.
func columnExists(ctx context.Context, tx *sql.Tx, table, column string) (bool, error) {
	rows, err := tx.QueryContext(ctx, "PRAGMA table_info("+table+")")
	if err != nil {
		return false, fmt.Errorf("reading table info for %s: %w", table, err)
	}
	defer rows.Close()

	found := false
	for rows.Next() {
		var cid int
		var name, typ string
		var notnull, pk int
		var dflt *string
		if err := rows.Scan(&cid, &name, &typ, &notnull, &dflt, &pk); err != nil {
			return false, fmt.Errorf("scanning column info: %w", err)
		}
		if name == column {
			found = true
		}
	}
	return found, rows.Err()
}
