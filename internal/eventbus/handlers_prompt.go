package eventbus

import (
	"context"
	"fmt"
	"strings"

	"github.com/cometalabs/devflow/internal/brain"
	"github.com/cometalabs/devflow/internal/classify"
	"github.com/cometalabs/devflow/internal/debug"
	"github.com/cometalabs/devflow/internal/embedding"
	"github.com/cometalabs/devflow/internal/hook"
	"github.com/cometalabs/devflow/internal/orchestrator"
)

// PromptCaptureHandler classifies each user prompt and stores it as a memory
// with its embedding. Priority 30.
type PromptCaptureHandler struct {
	Store      *brain.Store
	Classifier *classify.Classifier
	Embedder   embedding.Engine
}

func (h *PromptCaptureHandler) ID() string { return "prompt-capture" }

func (h *PromptCaptureHandler) Handles() []hook.EventType {
	return []hook.EventType{hook.EventUserPromptSubmit}
}

func (h *PromptCaptureHandler) Priority() int { return 30 }

func (h *PromptCaptureHandler) Handle(ctx context.Context, event *hook.Event, _ *Result) error {
	if event.Prompt == "" {
		return nil
	}

	intent, rule := h.Classifier.Classify(event.Prompt)
	debug.Logf("classify: prompt intent=%s rule=%s\n", intent, rule)

	mem := &brain.Memory{
		SessionID: event.SessionID,
		Kind:      brain.MemoryKindPrompt,
		Intent:    string(intent),
		Content:   event.Prompt,
	}
	if h.Embedder != nil {
		vec, err := h.Embedder.Embed(ctx, event.Prompt)
		if err != nil {
			// Store the memory without a vector rather than losing it.
			debug.Logf("classify: embedding failed: %v\n", err)
		} else {
			mem.Embedding = vec
		}
	}
	if err := h.Store.AddMemory(ctx, mem); err != nil {
		return fmt.Errorf("prompt-capture: %w", err)
	}
	return nil
}

// RecallHandler injects relevant past memories as context for each prompt.
// Priority 40 (after capture, so the freshest prompt is already stored).
type RecallHandler struct {
	Store    *brain.Store
	Embedder embedding.Engine

	// Limit caps the injected memories. Zero means the default of 3.
	Limit int
}

func (h *RecallHandler) ID() string { return "recall" }

func (h *RecallHandler) Handles() []hook.EventType {
	return []hook.EventType{hook.EventUserPromptSubmit}
}

func (h *RecallHandler) Priority() int { return 40 }

func (h *RecallHandler) Handle(ctx context.Context, event *hook.Event, result *Result) error {
	if event.Prompt == "" {
		return nil
	}
	limit := h.Limit
	if limit <= 0 {
		limit = 3
	}

	var queryVec []float32
	if h.Embedder != nil {
		if vec, err := h.Embedder.Embed(ctx, event.Prompt); err == nil {
			queryVec = vec
		}
	}

	results, err := h.Store.SearchMemories(ctx, event.Prompt, queryVec, limit+1)
	if err != nil {
		return fmt.Errorf("recall: %w", err)
	}

	var lines []string
	for _, r := range results {
		// The prompt just captured for this session is not useful context.
		if r.Memory.Content == event.Prompt {
			continue
		}
		lines = append(lines, "- "+r.Memory.Content)
		if len(lines) >= limit {
			break
		}
	}
	if len(lines) > 0 {
		result.AddInject("Relevant context from past sessions:\n" + strings.Join(lines, "\n"))
	}
	return nil
}

// DelegationHandler asks the orchestrator whether the prompt belongs to a
// specialist agent and injects the suggestion. Priority 50.
type DelegationHandler struct {
	Engine *orchestrator.Engine
}

func (h *DelegationHandler) ID() string { return "delegation" }

func (h *DelegationHandler) Handles() []hook.EventType {
	return []hook.EventType{hook.EventUserPromptSubmit}
}

func (h *DelegationHandler) Priority() int { return 50 }

func (h *DelegationHandler) Handle(_ context.Context, event *hook.Event, result *Result) error {
	if event.Prompt == "" {
		return nil
	}
	d := h.Engine.Decide(event.Prompt)
	if d.Delegate {
		result.AddInject(fmt.Sprintf(
			"Routing suggestion: delegate this to the %s agent (%s).", d.Agent, d.Reason))
	}
	return nil
}
