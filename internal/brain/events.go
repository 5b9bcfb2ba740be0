package brain

import (
	"context"
	"fmt"
	"time"
)

// Commands can be arbitrarily large (heredocs, inline scripts); cap what we
// persist so one hook call cannot bloat the database.
const maxCommandLen = 4096

// ToolEvent is one recorded hook evaluation of a tool call.
type ToolEvent struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	HookEvent string    `json:"hook_event"`
	ToolName  string    `json:"tool_name"`
	Command   string    `json:"command,omitempty"`
	Decision  string    `json:"decision"`
	RiskRule  string    `json:"risk_rule,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// RecordToolEvent inserts a tool event row.
func (s *Store) RecordToolEvent(ctx context.Context, e *ToolEvent) error {
	if e.HookEvent == "" {
		return fmt.Errorf("hook event is required")
	}
	if e.Decision == "" {
		e.Decision = "approve"
	}
	cmd := e.Command
	if len(cmd) > maxCommandLen {
		cmd = cmd[:maxCommandLen]
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO tool_events (session_id, hook_event, tool_name, command, decision, risk_rule)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.SessionID, e.HookEvent, e.ToolName, cmd, e.Decision, e.RiskRule)
	if err != nil {
		return fmt.Errorf("recording tool event: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		e.ID = id
	}
	return nil
}

// RecentToolEvents returns the latest tool events, newest first, optionally
// scoped to one session.
func (s *Store) RecentToolEvents(ctx context.Context, sessionID string, limit int) ([]*ToolEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, session_id, hook_event, tool_name, command, decision, risk_rule, created_at
		FROM tool_events`
	args := []any{}
	if sessionID != "" {
		query += ` WHERE session_id = ?`
		args = append(args, sessionID)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing tool events: %w", err)
	}
	defer rows.Close()

	var events []*ToolEvent
	for rows.Next() {
		var e ToolEvent
		if err := rows.Scan(&e.ID, &e.SessionID, &e.HookEvent, &e.ToolName,
			&e.Command, &e.Decision, &e.RiskRule, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning tool event: %w", err)
		}
		events = append(events, &e)
	}
	return events, rows.Err()
}

// DeniedToolEvents counts denials for a session, used in session summaries.
func (s *Store) DeniedToolEvents(ctx context.Context, sessionID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM tool_events WHERE session_id = ? AND decision = 'deny'`,
		sessionID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting denied events: %w", err)
	}
	return n, nil
}
