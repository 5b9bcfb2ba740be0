package eventbus

import (
	"context"
	"fmt"

	"github.com/cometalabs/devflow/internal/brain"
	"github.com/cometalabs/devflow/internal/classify"
	"github.com/cometalabs/devflow/internal/embedding"
	"github.com/cometalabs/devflow/internal/hook"
	"github.com/cometalabs/devflow/internal/orchestrator"
)

// SessionHandler keeps the sessions table current across the session
// lifecycle. Priority 10 (runs first so later handlers see the session row).
type SessionHandler struct {
	Store *brain.Store
}

func (h *SessionHandler) ID() string { return "session" }

func (h *SessionHandler) Handles() []hook.EventType {
	return []hook.EventType{
		hook.EventSessionStart, hook.EventUserPromptSubmit,
		hook.EventPostToolUse, hook.EventStop, hook.EventSessionEnd,
	}
}

func (h *SessionHandler) Priority() int { return 10 }

func (h *SessionHandler) Handle(ctx context.Context, event *hook.Event, _ *Result) error {
	if event.SessionID == "" {
		return nil
	}

	switch event.Type {
	case hook.EventSessionStart:
		return h.Store.TouchSession(ctx, event.SessionID, event.CWD, event.TranscriptPath, event.Model)
	case hook.EventUserPromptSubmit:
		if err := h.Store.TouchSession(ctx, event.SessionID, event.CWD, event.TranscriptPath, event.Model); err != nil {
			return err
		}
		return h.Store.BumpPromptCount(ctx, event.SessionID)
	case hook.EventPostToolUse:
		return h.Store.BumpToolCount(ctx, event.SessionID)
	case hook.EventStop:
		return h.Store.TouchSession(ctx, event.SessionID, event.CWD, event.TranscriptPath, event.Model)
	case hook.EventSessionEnd:
		return h.Store.EndSession(ctx, event.SessionID)
	}
	return nil
}

// RiskGateHandler evaluates Bash commands on PreToolUse and denies
// destructive ones. Priority 20.
type RiskGateHandler struct {
	// WorkspaceRoot bounds the path checks. Empty disables them.
	WorkspaceRoot string
}

func (h *RiskGateHandler) ID() string { return "risk-gate" }

func (h *RiskGateHandler) Handles() []hook.EventType {
	return []hook.EventType{hook.EventPreToolUse}
}

func (h *RiskGateHandler) Priority() int { return 20 }

func (h *RiskGateHandler) Handle(_ context.Context, event *hook.Event, result *Result) error {
	cmd := event.BashCommand()
	if cmd == "" {
		return nil
	}

	findings := classify.CheckCommand(cmd, h.WorkspaceRoot)
	for _, f := range findings {
		switch f.Level {
		case classify.RiskDeny:
			result.SetDeny(f.Message)
			result.SetRule(f.Rule)
		case classify.RiskWarn:
			result.AddWarning(f.Message)
		}
	}
	return nil
}

// ToolPolicyHandler enforces the orchestrator's tool allow/block lists on
// PreToolUse. Priority 25 (after the risk gate; a deny from either stands).
type ToolPolicyHandler struct {
	Engine *orchestrator.Engine
}

func (h *ToolPolicyHandler) ID() string { return "tool-policy" }

func (h *ToolPolicyHandler) Handles() []hook.EventType {
	return []hook.EventType{hook.EventPreToolUse}
}

func (h *ToolPolicyHandler) Priority() int { return 25 }

func (h *ToolPolicyHandler) Handle(_ context.Context, event *hook.Event, result *Result) error {
	if event.ToolName == "" {
		return nil
	}
	if check := h.Engine.CheckTool(event.ToolName); !check.Allowed {
		result.SetDeny(check.Reason)
		result.SetRule("tool-policy")
	}
	return nil
}

// ToolAuditHandler records every tool evaluation in the brain. Priority 90
// (last, so the recorded decision reflects the whole chain).
type ToolAuditHandler struct {
	Store *brain.Store
}

func (h *ToolAuditHandler) ID() string { return "tool-audit" }

func (h *ToolAuditHandler) Handles() []hook.EventType {
	return []hook.EventType{hook.EventPreToolUse, hook.EventPostToolUse}
}

func (h *ToolAuditHandler) Priority() int { return 90 }

func (h *ToolAuditHandler) Handle(ctx context.Context, event *hook.Event, result *Result) error {
	ev := &brain.ToolEvent{
		SessionID: event.SessionID,
		HookEvent: string(event.Type),
		ToolName:  event.ToolName,
		Command:   event.ToolInputString(),
		Decision:  string(result.Decision()),
		RiskRule:  result.Rule,
	}
	if err := h.Store.RecordToolEvent(ctx, ev); err != nil {
		return fmt.Errorf("audit: %w", err)
	}
	return nil
}

// Deps carries the shared services the standard handlers need.
type Deps struct {
	Store         *brain.Store
	Classifier    *classify.Classifier
	Embedder      embedding.Engine
	Orchestrator  *orchestrator.Engine
	Summarizer    Summarizer
	WorkspaceRoot string
}

// DefaultHandlers returns the standard handler set for hook dispatch.
func DefaultHandlers(d Deps) []Handler {
	return []Handler{
		&SessionHandler{Store: d.Store},
		&RiskGateHandler{WorkspaceRoot: d.WorkspaceRoot},
		&ToolPolicyHandler{Engine: d.Orchestrator},
		&PromptCaptureHandler{Store: d.Store, Classifier: d.Classifier, Embedder: d.Embedder},
		&RecallHandler{Store: d.Store, Embedder: d.Embedder},
		&DelegationHandler{Engine: d.Orchestrator},
		&CompactHandler{Store: d.Store, Summarizer: d.Summarizer},
		&ToolAuditHandler{Store: d.Store},
	}
}
