package hook

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Decision is the outcome of evaluating a hook event.
type Decision string

const (
	// DecisionApprove lets the event proceed, optionally injecting context.
	DecisionApprove Decision = "approve"
	// DecisionBlock stops the event and feeds the reason back to the agent.
	DecisionBlock Decision = "block"
	// DecisionDeny refuses a tool call outright (PreToolUse only).
	DecisionDeny Decision = "deny"
)

// Response is the aggregate outcome a hook writes to stdout.
type Response struct {
	Decision Decision
	Reason   string
	Inject   []string // context text to add to the conversation
	Warnings []string // soft findings, surfaced but non-blocking
}

// hookSpecificOutput is the envelope Claude Code reads from hook stdout.
type hookSpecificOutput struct {
	HookEventName            string `json:"hookEventName"`
	AdditionalContext        string `json:"additionalContext,omitempty"`
	PermissionDecision       string `json:"permissionDecision,omitempty"`
	PermissionDecisionReason string `json:"permissionDecisionReason,omitempty"`
}

type hookOutput struct {
	Decision           string              `json:"decision,omitempty"`
	Reason             string              `json:"reason,omitempty"`
	HookSpecificOutput *hookSpecificOutput `json:"hookSpecificOutput,omitempty"`
}

// Write encodes the response in the wire format the given event expects and
// writes it to w. A nil-effect response (approve, nothing to say) writes
// nothing: silence is the fast path and Claude Code treats it as approval.
func (r *Response) Write(w io.Writer, eventType EventType) error {
	out := r.encode(eventType)
	if out == nil {
		return nil
	}
	if err := json.NewEncoder(w).Encode(out); err != nil {
		return fmt.Errorf("encoding hook response: %w", err)
	}
	return nil
}

func (r *Response) encode(eventType EventType) *hookOutput {
	switch r.Decision {
	case DecisionDeny:
		// permissionDecision is only meaningful on PreToolUse; other events
		// degrade to a plain block.
		if eventType == EventPreToolUse {
			return &hookOutput{
				HookSpecificOutput: &hookSpecificOutput{
					HookEventName:            string(eventType),
					PermissionDecision:       "deny",
					PermissionDecisionReason: r.Reason,
				},
			}
		}
		return &hookOutput{Decision: "block", Reason: r.Reason}

	case DecisionBlock:
		return &hookOutput{Decision: "block", Reason: r.blockReason()}

	default:
		ctx := r.contextText()
		if ctx == "" {
			return nil
		}
		return &hookOutput{
			HookSpecificOutput: &hookSpecificOutput{
				HookEventName:     string(eventType),
				AdditionalContext: ctx,
			},
		}
	}
}

// blockReason folds warnings into the block reason so the agent sees the
// whole picture in one message.
func (r *Response) blockReason() string {
	if len(r.Warnings) == 0 {
		return r.Reason
	}
	parts := append([]string{r.Reason}, r.Warnings...)
	return strings.Join(parts, "\n")
}

// contextText joins injected context and warnings into the additionalContext
// payload.
func (r *Response) contextText() string {
	var parts []string
	parts = append(parts, r.Inject...)
	for _, w := range r.Warnings {
		parts = append(parts, "Warning: "+w)
	}
	return strings.Join(parts, "\n\n")
}
