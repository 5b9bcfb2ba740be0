package hook

import (
	"strings"
	"testing"
)

func TestParseEventType(t *testing.T) {
	cases := []struct {
		in      string
		want    EventType
		wantErr bool
	}{
		{"PreToolUse", EventPreToolUse, false},
		{"pretooluse", EventPreToolUse, false},
		{"SESSIONSTART", EventSessionStart, false},
		{"user-prompt", "", true},
		{"", "", true},
	}
	for _, tc := range cases {
		got, err := ParseEventType(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseEventType(%q): expected error, got %v", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseEventType(%q): unexpected error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseEventType(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestParseEvent(t *testing.T) {
	payload := `{
		"hook_event_name": "PreToolUse",
		"session_id": "sess-123",
		"transcript_path": "/tmp/transcript.jsonl",
		"cwd": "/work",
		"tool_name": "Bash",
		"tool_input": {"command": "ls -la"}
	}`

	ev, err := ParseEvent(strings.NewReader(payload), EventPreToolUse)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.SessionID != "sess-123" {
		t.Errorf("SessionID = %q, want sess-123", ev.SessionID)
	}
	if ev.ToolName != "Bash" {
		t.Errorf("ToolName = %q, want Bash", ev.ToolName)
	}
	if got := ev.BashCommand(); got != "ls -la" {
		t.Errorf("BashCommand() = %q, want %q", got, "ls -la")
	}
	if ev.Raw["cwd"] != "/work" {
		t.Errorf("Raw[cwd] = %v, want /work", ev.Raw["cwd"])
	}
}

func TestParseEventTypeOverridesPayload(t *testing.T) {
	// The subcommand name wins over a mismatched hook_event_name.
	payload := `{"hook_event_name": "Stop", "session_id": "s"}`
	ev, err := ParseEvent(strings.NewReader(payload), EventSessionEnd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.Type != EventSessionEnd {
		t.Errorf("Type = %v, want SessionEnd", ev.Type)
	}
}

func TestParseEventEmptyInput(t *testing.T) {
	ev, err := ParseEvent(strings.NewReader(""), EventStop)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.Type != EventStop {
		t.Errorf("Type = %v, want Stop", ev.Type)
	}
}

func TestParseEventMalformed(t *testing.T) {
	if _, err := ParseEvent(strings.NewReader("{not json"), EventStop); err == nil {
		t.Fatal("expected error for malformed payload")
	}
}

func TestBashCommandNonBash(t *testing.T) {
	ev := &Event{ToolName: "Write", ToolInput: []byte(`{"file_path": "/x"}`)}
	if got := ev.BashCommand(); got != "" {
		t.Errorf("BashCommand() = %q, want empty for non-Bash tool", got)
	}
	if got := ev.ToolInputString(); got != `{"file_path": "/x"}` {
		t.Errorf("ToolInputString() = %q", got)
	}
}
