package brain

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Session is one Claude Code session as seen by the hooks.
type Session struct {
	ID             string     `json:"id"`
	CWD            string     `json:"cwd"`
	TranscriptPath string     `json:"transcript_path,omitempty"`
	Model          string     `json:"model,omitempty"`
	StartedAt      time.Time  `json:"started_at"`
	LastSeenAt     time.Time  `json:"last_seen_at"`
	EndedAt        *time.Time `json:"ended_at,omitempty"`
	PromptCount    int        `json:"prompt_count"`
	ToolCount      int        `json:"tool_count"`
}

// TouchSession upserts the session row and bumps last_seen_at. Every hook
// event calls this first, so the row exists before any dependent insert.
func (s *Store) TouchSession(ctx context.Context, id, cwd, transcriptPath, model string) error {
	if id == "" {
		return fmt.Errorf("session id is required")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, cwd, transcript_path, model, started_at, last_seen_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			last_seen_at = CURRENT_TIMESTAMP,
			cwd = CASE WHEN excluded.cwd != '' THEN excluded.cwd ELSE sessions.cwd END,
			transcript_path = CASE WHEN excluded.transcript_path != '' THEN excluded.transcript_path ELSE sessions.transcript_path END,
			model = CASE WHEN excluded.model != '' THEN excluded.model ELSE sessions.model END`,
		id, cwd, transcriptPath, model)
	if err != nil {
		return fmt.Errorf("touching session %s: %w", id, err)
	}
	return nil
}

// BumpPromptCount increments the session's prompt counter.
func (s *Store) BumpPromptCount(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET prompt_count = prompt_count + 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("bumping prompt count for %s: %w", id, err)
	}
	return nil
}

// BumpToolCount increments the session's tool counter.
func (s *Store) BumpToolCount(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET tool_count = tool_count + 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("bumping tool count for %s: %w", id, err)
	}
	return nil
}

// EndSession stamps ended_at. Ending an already-ended session is a no-op.
func (s *Store) EndSession(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET ended_at = CURRENT_TIMESTAMP WHERE id = ? AND ended_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("ending session %s: %w", id, err)
	}
	return nil
}

// GetSession returns the session or nil if it does not exist.
func (s *Store) GetSession(ctx context.Context, id string) (*Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, cwd, transcript_path, model, started_at, last_seen_at, ended_at, prompt_count, tool_count
		FROM sessions WHERE id = ?`, id)
	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting session %s: %w", id, err)
	}
	return sess, nil
}

// ListSessions returns sessions ordered by recency, newest first.
func (s *Store) ListSessions(ctx context.Context, limit int) ([]*Session, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, cwd, transcript_path, model, started_at, last_seen_at, ended_at, prompt_count, tool_count
		FROM sessions ORDER BY last_seen_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// SessionIdleSince reports how long ago the session was last seen. Returns
// false when the session is unknown.
func (s *Store) SessionIdleSince(ctx context.Context, id string) (time.Duration, bool, error) {
	sess, err := s.GetSession(ctx, id)
	if err != nil || sess == nil {
		return 0, false, err
	}
	return time.Since(sess.LastSeenAt), true, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(r rowScanner) (*Session, error) {
	var sess Session
	var endedAt sql.NullTime
	if err := r.Scan(&sess.ID, &sess.CWD, &sess.TranscriptPath, &sess.Model,
		&sess.StartedAt, &sess.LastSeenAt, &endedAt,
		&sess.PromptCount, &sess.ToolCount); err != nil {
		return nil, err
	}
	if endedAt.Valid {
		sess.EndedAt = &endedAt.Time
	}
	return &sess, nil
}
