// Package brain is the Cometa Brain: the SQLite-backed memory and task
// tracking layer shared by every devflow hook and command.
//
// All hook processes open the same database file. Connections are opened
// with WAL mode and a generous busy_timeout so short-lived hook processes
// queue behind each other instead of failing.
package brain

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"

	sqlite3 "github.com/ncruces/go-sqlite3"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/tetratelabs/wazero"
)

// Store is the SQLite-backed Cometa Brain storage layer.
type Store struct {
	db     *sql.DB
	dbPath string
	closed atomic.Bool
}

// setupWASMCache configures WASM compilation caching to cut SQLite startup
// time. Hooks are short-lived processes, so paying the wazero JIT cost on
// every invocation would dominate their runtime.
//
// Falls back to an in-memory cache if the filesystem cache cannot be created.
func setupWASMCache() string {
	cacheDir := ""
	if userCache, err := os.UserCacheDir(); err == nil {
		cacheDir = filepath.Join(userCache, "devflow", "wasm")
	}

	var cache wazero.CompilationCache
	if cacheDir != "" {
		if c, err := wazero.NewCompilationCacheWithDir(cacheDir); err == nil {
			cache = c
		}
	}
	if cache == nil {
		cache = wazero.NewCompilationCache()
		cacheDir = ""
	}

	sqlite3.RuntimeConfig = wazero.NewRuntimeConfig().WithCompilationCache(cache)
	return cacheDir
}

func init() {
	_ = setupWASMCache()
}

// Open opens (creating if needed) the Cometa Brain database at path and runs
// migrations. Use ":memory:" for an isolated in-memory database in tests.
func Open(ctx context.Context, path string) (*Store, error) {
	var connStr string
	isInMemory := path == ":memory:" ||
		(strings.HasPrefix(path, "file:") && strings.Contains(path, "mode=memory"))

	switch {
	case path == ":memory:":
		// Shared cache so every pooled connection sees the same data.
		// WAL does not work for in-memory databases, use DELETE mode.
		connStr = "file:cometa?mode=memory&cache=shared&_pragma=journal_mode(DELETE)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(30000)&_time_format=sqlite"
	case strings.HasPrefix(path, "file:"):
		connStr = path
		if !strings.Contains(path, "_pragma=foreign_keys") {
			connStr += "&_pragma=foreign_keys(ON)&_pragma=busy_timeout(30000)&_time_format=sqlite"
		}
	default:
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
		connStr = "file:" + path + "?_pragma=foreign_keys(ON)&_pragma=busy_timeout(30000)&_time_format=sqlite"
	}

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if isInMemory {
		// In-memory databases are isolated per connection; force one
		// connection so every caller sees the same data.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	} else {
		// WAL supports 1 writer + N readers. Bound the pool so concurrent
		// hook invocations don't pile goroutines onto the write lock.
		db.SetMaxOpenConns(runtime.NumCPU() + 1)
		db.SetMaxIdleConns(2)
		db.SetConnMaxLifetime(0)
	}

	if !isInMemory {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("enabling WAL mode: %w", err)
		}
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db, dbPath: path}, nil
}

// Close closes the database. Safe to call more than once.
func (s *Store) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file path the store was opened with.
func (s *Store) Path() string { return s.dbPath }

// CheckpointWAL forces a WAL checkpoint. mode is PASSIVE, FULL, RESTART, or
// TRUNCATE. Used before backups so the snapshot captures all committed data
// in the main database file.
func (s *Store) CheckpointWAL(ctx context.Context, mode string) error {
	switch mode {
	case "PASSIVE", "FULL", "RESTART", "TRUNCATE":
	default:
		return fmt.Errorf("invalid checkpoint mode %q", mode)
	}
	_, err := s.db.ExecContext(ctx, "PRAGMA wal_checkpoint("+mode+")")
	if err != nil {
		return fmt.Errorf("wal checkpoint %s: %w", mode, err)
	}
	return nil
}

// Stats reports row counts for the status command.
type Stats struct {
	Sessions   int `json:"sessions"`
	Memories   int `json:"memories"`
	Tasks      int `json:"tasks"`
	OpenTasks  int `json:"open_tasks"`
	ToolEvents int `json:"tool_events"`
}

// Stats returns row counts across the main tables.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	st := &Stats{}
	queries := []struct {
		q    string
		dest *int
	}{
		{"SELECT COUNT(*) FROM sessions", &st.Sessions},
		{"SELECT COUNT(*) FROM memories", &st.Memories},
		{"SELECT COUNT(*) FROM tasks", &st.Tasks},
		{"SELECT COUNT(*) FROM tasks WHERE status NOT IN ('done', 'cancelled')", &st.OpenTasks},
		{"SELECT COUNT(*) FROM tool_events", &st.ToolEvents},
	}
	for _, q := range queries {
		if err := s.db.QueryRowContext(ctx, q.q).Scan(q.dest); err != nil {
			return nil, fmt.Errorf("stats query: %w", err)
		}
	}
	return st, nil
}
