package brain

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// Memory kinds.
const (
	MemoryKindObservation = "observation"
	MemoryKindPrompt      = "prompt"
	MemoryKindSummary     = "summary"
	MemoryKindNote        = "note"
)

// Memory is one stored observation in the Cometa Brain.
type Memory struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id,omitempty"`
	Kind      string    `json:"kind"`
	Intent    string    `json:"intent,omitempty"`
	Content   string    `json:"content"`
	Embedding []float32 `json:"-"`
	Metadata  string    `json:"metadata,omitempty"`
	Source    string    `json:"source,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// AddMemory inserts a memory, assigning an ID when none is set.
func (s *Store) AddMemory(ctx context.Context, m *Memory) error {
	if m.Content == "" {
		return fmt.Errorf("memory content is required")
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Kind == "" {
		m.Kind = MemoryKindObservation
	}
	if m.Metadata == "" {
		m.Metadata = "{}"
	}
	if m.Source == "" {
		m.Source = "hook"
	}

	var sessionID any
	if m.SessionID != "" {
		sessionID = m.SessionID
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO memories (id, session_id, kind, intent, content, embedding, metadata, source)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, sessionID, m.Kind, m.Intent, m.Content, encodeVector(m.Embedding), m.Metadata, m.Source)
	if err != nil {
		return fmt.Errorf("adding memory: %w", err)
	}
	return nil
}

// GetMemory returns the memory or nil if it does not exist.
func (s *Store) GetMemory(ctx context.Context, id string) (*Memory, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, COALESCE(session_id, ''), kind, intent, content, embedding, metadata, source, created_at
		FROM memories WHERE id = ?`, id)
	m, err := scanMemory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting memory %s: %w", id, err)
	}
	return m, nil
}

// ListMemories returns memories newest first, optionally filtered by kind.
func (s *Store) ListMemories(ctx context.Context, kind string, limit int) ([]*Memory, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, COALESCE(session_id, ''), kind, intent, content, embedding, metadata, source, created_at
		FROM memories`
	args := []any{}
	if kind != "" {
		query += ` WHERE kind = ?`
		args = append(args, kind)
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing memories: %w", err)
	}
	defer rows.Close()
	return collectMemories(rows)
}

// MemoriesForSession returns every memory captured for the session, oldest
// first (transcript order).
func (s *Store) MemoriesForSession(ctx context.Context, sessionID string) ([]*Memory, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, COALESCE(session_id, ''), kind, intent, content, embedding, metadata, source, created_at
		FROM memories WHERE session_id = ? ORDER BY created_at ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("listing session memories: %w", err)
	}
	defer rows.Close()
	return collectMemories(rows)
}

// DeleteMemory removes a memory. Deleting a nonexistent ID is not an error.
func (s *Store) DeleteMemory(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM memories WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting memory %s: %w", id, err)
	}
	return nil
}

// DeleteMemories removes a batch of memories in one statement per ID inside
// a transaction. Used by compaction to replace raw memories with a summary.
func (s *Store) DeleteMemories(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("deleting memories: begin: %w", err)
	}
	for _, id := range ids {
		if _, err := tx.ExecContext(ctx, `DELETE FROM memories WHERE id = ?`, id); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("deleting memory %s: %w", id, err)
		}
	}
	return tx.Commit()
}

func collectMemories(rows *sql.Rows) ([]*Memory, error) {
	var memories []*Memory
	for rows.Next() {
		m, err := scanMemory(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning memory: %w", err)
		}
		memories = append(memories, m)
	}
	return memories, rows.Err()
}

func scanMemory(r rowScanner) (*Memory, error) {
	var m Memory
	var blob []byte
	if err := r.Scan(&m.ID, &m.SessionID, &m.Kind, &m.Intent, &m.Content,
		&blob, &m.Metadata, &m.Source, &m.CreatedAt); err != nil {
		return nil, err
	}
	m.Embedding = decodeVector(blob)
	return &m, nil
}

// encodeVector packs a float32 slice as little-endian bytes. Nil in, nil out.
func encodeVector(v []float32) []byte {
	if len(v) == 0 {
		return nil
	}
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// decodeVector unpacks little-endian float32 bytes. Truncated blobs decode
// to however many full floats they contain.
func decodeVector(buf []byte) []float32 {
	n := len(buf) / 4
	if n == 0 {
		return nil
	}
	v := make([]float32, n)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return v
}
