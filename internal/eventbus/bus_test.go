package eventbus

import (
	"context"
	"errors"
	"testing"

	"github.com/cometalabs/devflow/internal/hook"
)

// recordingHandler captures dispatch order and can fail on demand.
type recordingHandler struct {
	id       string
	types    []hook.EventType
	priority int
	err      error
	calls    *[]string
}

func (h *recordingHandler) ID() string                { return h.id }
func (h *recordingHandler) Handles() []hook.EventType { return h.types }
func (h *recordingHandler) Priority() int             { return h.priority }
func (h *recordingHandler) Handle(_ context.Context, _ *hook.Event, _ *Result) error {
	*h.calls = append(*h.calls, h.id)
	return h.err
}

func TestDispatchPriorityOrder(t *testing.T) {
	bus := New()
	var calls []string

	// Registered out of order on purpose.
	bus.Register(&recordingHandler{id: "late", types: []hook.EventType{hook.EventPreToolUse}, priority: 90, calls: &calls})
	bus.Register(&recordingHandler{id: "early", types: []hook.EventType{hook.EventPreToolUse}, priority: 10, calls: &calls})
	bus.Register(&recordingHandler{id: "middle", types: []hook.EventType{hook.EventPreToolUse}, priority: 50, calls: &calls})

	_, err := bus.Dispatch(context.Background(), &hook.Event{Type: hook.EventPreToolUse})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	want := []string{"early", "middle", "late"}
	if len(calls) != len(want) {
		t.Fatalf("got %d calls, want %d", len(calls), len(want))
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("call %d = %s, want %s", i, calls[i], want[i])
		}
	}
}

func TestDispatchFiltersEventType(t *testing.T) {
	bus := New()
	var calls []string

	bus.Register(&recordingHandler{id: "tools", types: []hook.EventType{hook.EventPreToolUse}, calls: &calls})
	bus.Register(&recordingHandler{id: "prompts", types: []hook.EventType{hook.EventUserPromptSubmit}, calls: &calls})

	if _, err := bus.Dispatch(context.Background(), &hook.Event{Type: hook.EventUserPromptSubmit}); err != nil {
		t.Fatal(err)
	}
	if len(calls) != 1 || calls[0] != "prompts" {
		t.Errorf("calls = %v, want [prompts]", calls)
	}
}

func TestDispatchHandlerErrorContinuesChain(t *testing.T) {
	bus := New()
	var calls []string

	bus.Register(&recordingHandler{id: "broken", types: []hook.EventType{hook.EventStop}, priority: 1,
		err: errors.New("db unavailable"), calls: &calls})
	bus.Register(&recordingHandler{id: "after", types: []hook.EventType{hook.EventStop}, priority: 2, calls: &calls})

	result, err := bus.Dispatch(context.Background(), &hook.Event{Type: hook.EventStop})
	if err != nil {
		t.Fatalf("handler errors must not fail the dispatch: %v", err)
	}
	if len(calls) != 2 {
		t.Errorf("chain stopped early: %v", calls)
	}
	if result.Decision() != hook.DecisionApprove {
		t.Errorf("decision = %s, want approve", result.Decision())
	}
}

func TestDispatchNilEvent(t *testing.T) {
	if _, err := New().Dispatch(context.Background(), nil); err == nil {
		t.Error("expected error for nil event")
	}
}

func TestDispatchCancelledContext(t *testing.T) {
	bus := New()
	var calls []string
	bus.Register(&recordingHandler{id: "h", types: []hook.EventType{hook.EventStop}, calls: &calls})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := bus.Dispatch(ctx, &hook.Event{Type: hook.EventStop}); err == nil {
		t.Error("expected context error")
	}
	if len(calls) != 0 {
		t.Errorf("no handlers should run after cancellation, got %v", calls)
	}
}

func TestResultEscalation(t *testing.T) {
	r := &Result{}
	if r.Decision() != hook.DecisionApprove {
		t.Fatalf("empty result = %s, want approve", r.Decision())
	}

	r.SetBlock("first reason")
	if r.Decision() != hook.DecisionBlock {
		t.Errorf("decision = %s, want block", r.Decision())
	}

	r.SetDeny("second reason")
	if r.Decision() != hook.DecisionDeny {
		t.Errorf("decision = %s, want deny", r.Decision())
	}
	// The first reason wins.
	if r.Reason != "first reason" {
		t.Errorf("reason = %q, want first reason", r.Reason)
	}
}
