package brain

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Task statuses.
const (
	TaskStatusOpen       = "open"
	TaskStatusInProgress = "in_progress"
	TaskStatusDone       = "done"
	TaskStatusCancelled  = "cancelled"
)

// validTaskStatuses maps status transitions; any listed status is accepted.
var validTaskStatuses = map[string]bool{
	TaskStatusOpen:       true,
	TaskStatusInProgress: true,
	TaskStatusDone:       true,
	TaskStatusCancelled:  true,
}

// Task is a lightweight unit of tracked work.
type Task struct {
	ID        string     `json:"id"`
	SessionID string     `json:"session_id,omitempty"`
	Title     string     `json:"title"`
	Status    string     `json:"status"`
	Priority  int        `json:"priority"`
	DueAt     *time.Time `json:"due_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	ClosedAt  *time.Time `json:"closed_at,omitempty"`
}

// CreateTask inserts a task, assigning an ID when none is set.
func (s *Store) CreateTask(ctx context.Context, t *Task) error {
	if t.Title == "" {
		return fmt.Errorf("task title is required")
	}
	if len(t.Title) > 500 {
		return fmt.Errorf("task title exceeds 500 characters")
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Status == "" {
		t.Status = TaskStatusOpen
	}
	if !validTaskStatuses[t.Status] {
		return fmt.Errorf("invalid task status %q", t.Status)
	}
	if t.Priority < 0 || t.Priority > 4 {
		return fmt.Errorf("task priority must be 0-4, got %d", t.Priority)
	}

	var sessionID any
	if t.SessionID != "" {
		sessionID = t.SessionID
	}
	var dueAt any
	if t.DueAt != nil {
		dueAt = t.DueAt.UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (id, session_id, title, status, priority, due_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, sessionID, t.Title, t.Status, t.Priority, dueAt)
	if err != nil {
		return fmt.Errorf("creating task: %w", err)
	}
	return nil
}

// GetTask returns the task or nil if it does not exist.
func (s *Store) GetTask(ctx context.Context, id string) (*Task, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, COALESCE(session_id, ''), title, status, priority, due_at, created_at, updated_at, closed_at
		FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting task %s: %w", id, err)
	}
	return t, nil
}

// ListTasks returns tasks filtered by status (empty = all), ordered by
// priority then recency.
func (s *Store) ListTasks(ctx context.Context, status string, limit int) ([]*Task, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, COALESCE(session_id, ''), title, status, priority, due_at, created_at, updated_at, closed_at
		FROM tasks`
	args := []any{}
	if status != "" {
		if !validTaskStatuses[status] {
			return nil, fmt.Errorf("invalid task status %q", status)
		}
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY priority ASC, updated_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// UpdateTaskStatus moves a task to a new status. Terminal statuses stamp
// closed_at; moving back out of a terminal status clears it.
func (s *Store) UpdateTaskStatus(ctx context.Context, id, status string) error {
	if !validTaskStatuses[status] {
		return fmt.Errorf("invalid task status %q", status)
	}
	terminal := status == TaskStatusDone || status == TaskStatusCancelled

	var closedAt string
	if terminal {
		closedAt = "CURRENT_TIMESTAMP"
	} else {
		closedAt = "NULL"
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE tasks SET status = ?, updated_at = CURRENT_TIMESTAMP, closed_at = `+closedAt+`
		WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("updating task %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating task %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("task %s not found", id)
	}
	return nil
}

func scanTask(r rowScanner) (*Task, error) {
	var t Task
	var dueAt, closedAt sql.NullTime
	if err := r.Scan(&t.ID, &t.SessionID, &t.Title, &t.Status, &t.Priority,
		&dueAt, &t.CreatedAt, &t.UpdatedAt, &closedAt); err != nil {
		return nil, err
	}
	if dueAt.Valid {
		t.DueAt = &dueAt.Time
	}
	if closedAt.Valid {
		t.ClosedAt = &closedAt.Time
	}
	return &t, nil
}
