// Package hook parses Claude Code hook payloads and encodes hook decisions.
//
// Claude Code invokes `devflow hook <event>` at lifecycle points, passing a
// JSON payload on stdin and reading an optional JSON decision from stdout.
// This package owns both sides of that exchange; the dispatch logic lives in
// internal/eventbus.
package hook

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// EventType identifies a Claude Code hook event.
type EventType string

const (
	EventSessionStart     EventType = "SessionStart"
	EventUserPromptSubmit EventType = "UserPromptSubmit"
	EventPreToolUse       EventType = "PreToolUse"
	EventPostToolUse      EventType = "PostToolUse"
	EventStop             EventType = "Stop"
	EventPreCompact       EventType = "PreCompact"
	EventSessionEnd       EventType = "SessionEnd"
)

// ValidEventTypes returns all hook event types devflow handles.
func ValidEventTypes() []EventType {
	return []EventType{
		EventSessionStart, EventUserPromptSubmit, EventPreToolUse,
		EventPostToolUse, EventStop, EventPreCompact, EventSessionEnd,
	}
}

// ParseEventType parses a string into an EventType, case-insensitive.
func ParseEventType(s string) (EventType, error) {
	lower := strings.ToLower(s)
	for _, t := range ValidEventTypes() {
		if strings.ToLower(string(t)) == lower {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown hook event %q", s)
}

// maxStdinBytes caps stdin reads. Hook payloads are small JSON objects;
// 1 MiB is generous headroom that prevents unbounded allocation.
const maxStdinBytes = 1 << 20

// Event is the JSON payload Claude Code sends on stdin to hooks.
type Event struct {
	Type           EventType `json:"hook_event_name"`
	SessionID      string    `json:"session_id"`
	TranscriptPath string    `json:"transcript_path"`
	CWD            string    `json:"cwd"`
	PermissionMode string    `json:"permission_mode,omitempty"`

	// Hook-specific fields, populated based on Type.
	Prompt       string          `json:"prompt,omitempty"`
	ToolName     string          `json:"tool_name,omitempty"`
	ToolInput    json.RawMessage `json:"tool_input,omitempty"`
	ToolResponse json.RawMessage `json:"tool_response,omitempty"`
	Source       string          `json:"source,omitempty"`
	Model        string          `json:"model,omitempty"`

	// Raw preserves the full payload for diagnostics and for fields the
	// struct does not model.
	Raw map[string]any `json:"-"`
}

// ParseEvent reads a hook payload from r. The read is capped at maxStdinBytes.
// The event type argument wins over the payload's hook_event_name when they
// disagree; Claude Code sets both, but the subcommand name is authoritative.
func ParseEvent(r io.Reader, eventType EventType) (*Event, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxStdinBytes))
	if err != nil {
		return nil, fmt.Errorf("reading hook payload: %w", err)
	}

	ev := &Event{Type: eventType}
	if len(data) == 0 {
		return ev, nil
	}
	if err := json.Unmarshal(data, ev); err != nil {
		return nil, fmt.Errorf("parsing hook payload: %w", err)
	}
	ev.Type = eventType

	// Second unmarshal keeps unknown fields reachable. Payloads are tiny,
	// so the extra pass costs nothing measurable.
	var raw map[string]any
	_ = json.Unmarshal(data, &raw)
	ev.Raw = raw

	return ev, nil
}

// BashCommand extracts the command string from a Bash tool_input payload.
// Returns "" for non-Bash tools or malformed input.
func (e *Event) BashCommand() string {
	if e.ToolName != "Bash" || len(e.ToolInput) == 0 {
		return ""
	}
	var in struct {
		Command string `json:"command"`
	}
	if err := json.Unmarshal(e.ToolInput, &in); err != nil {
		return ""
	}
	return in.Command
}

// ToolInputString renders tool_input as a flat string for pattern matching.
// Bash commands come back verbatim; other tools fall back to the raw JSON.
func (e *Event) ToolInputString() string {
	if cmd := e.BashCommand(); cmd != "" {
		return cmd
	}
	return string(e.ToolInput)
}
