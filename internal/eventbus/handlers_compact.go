package eventbus

import (
	"context"
	"fmt"
	"strings"

	"github.com/cometalabs/devflow/internal/brain"
	"github.com/cometalabs/devflow/internal/hook"
)

// Summarizer condenses session activity into a short text. Implemented by
// compact.HaikuSummarizer; nil disables the handler's model call and falls
// back to a plain digest.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// CompactHandler preserves a session summary before Claude Code compacts the
// transcript, so the gist survives as a searchable memory. Priority 60.
type CompactHandler struct {
	Store      *brain.Store
	Summarizer Summarizer
}

func (h *CompactHandler) ID() string { return "compact" }

func (h *CompactHandler) Handles() []hook.EventType {
	return []hook.EventType{hook.EventPreCompact, hook.EventSessionEnd}
}

func (h *CompactHandler) Priority() int { return 60 }

func (h *CompactHandler) Handle(ctx context.Context, event *hook.Event, _ *Result) error {
	if event.SessionID == "" {
		return nil
	}

	memories, err := h.Store.MemoriesForSession(ctx, event.SessionID)
	if err != nil {
		return fmt.Errorf("compact: %w", err)
	}

	var prompts []string
	for _, m := range memories {
		if m.Kind == brain.MemoryKindPrompt {
			prompts = append(prompts, m.Content)
		}
	}
	if len(prompts) == 0 {
		return nil
	}

	summary := h.digest(ctx, prompts)
	if summary == "" {
		return nil
	}
	return h.Store.AddMemory(ctx, &brain.Memory{
		SessionID: event.SessionID,
		Kind:      brain.MemoryKindSummary,
		Content:   summary,
	})
}

func (h *CompactHandler) digest(ctx context.Context, prompts []string) string {
	joined := strings.Join(prompts, "\n")
	if h.Summarizer != nil {
		if s, err := h.Summarizer.Summarize(ctx, joined); err == nil && s != "" {
			return s
		}
		// Model unavailable; the plain digest below still captures the gist.
	}

	total := len(prompts)
	if total > 5 {
		prompts = prompts[total-5:]
	}
	return fmt.Sprintf("Session covered %d prompt(s). Most recent:\n- %s",
		total, strings.Join(prompts, "\n- "))
}
