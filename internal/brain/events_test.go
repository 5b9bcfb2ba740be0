package brain

import (
	"context"
	"strings"
	"testing"
)

func TestRecordToolEvent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.TouchSession(ctx, "sess-1", "", "", ""); err != nil {
		t.Fatal(err)
	}

	ev := &ToolEvent{
		SessionID: "sess-1",
		HookEvent: "PreToolUse",
		ToolName:  "Bash",
		Command:   "git status",
		Decision:  "approve",
	}
	if err := s.RecordToolEvent(ctx, ev); err != nil {
		t.Fatalf("RecordToolEvent: %v", err)
	}
	if ev.ID == 0 {
		t.Error("expected assigned event ID")
	}

	events, err := s.RecentToolEvents(ctx, "sess-1", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	got := events[0]
	if got.ToolName != "Bash" || got.Command != "git status" || got.Decision != "approve" {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestRecordToolEventTruncatesCommand(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	long := strings.Repeat("x", 10000)
	ev := &ToolEvent{SessionID: "s", HookEvent: "PreToolUse", ToolName: "Bash", Command: long, Decision: "approve"}
	if err := s.RecordToolEvent(ctx, ev); err != nil {
		t.Fatal(err)
	}

	events, err := s.RecentToolEvents(ctx, "s", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(events[0].Command) != maxCommandLen {
		t.Errorf("stored command length = %d, want %d", len(events[0].Command), maxCommandLen)
	}
}

func TestRecentToolEventsOrderAndLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, cmd := range []string{"first", "second", "third"} {
		if err := s.RecordToolEvent(ctx, &ToolEvent{
			SessionID: "s", HookEvent: "PostToolUse", ToolName: "Bash", Command: cmd, Decision: "approve",
		}); err != nil {
			t.Fatal(err)
		}
	}

	events, err := s.RecentToolEvents(ctx, "s", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	// Newest first.
	if events[0].Command != "third" || events[1].Command != "second" {
		t.Errorf("order wrong: %q, %q", events[0].Command, events[1].Command)
	}
}

func TestDeniedToolEvents(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, d := range []string{"approve", "deny", "deny", "block"} {
		if err := s.RecordToolEvent(ctx, &ToolEvent{
			SessionID: "s", HookEvent: "PreToolUse", ToolName: "Bash", Command: "c", Decision: d,
		}); err != nil {
			t.Fatal(err)
		}
	}

	n, err := s.DeniedToolEvents(ctx, "s")
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("denied count = %d, want 2", n)
	}
}
