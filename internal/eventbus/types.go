package eventbus

import "github.com/cometalabs/devflow/internal/hook"

// Result aggregates handler outcomes for one event. Handlers escalate but
// never downgrade: a deny set by an early handler survives later approvals.
type Result struct {
	Deny     bool     `json:"deny,omitempty"`
	Block    bool     `json:"block,omitempty"`
	Reason   string   `json:"reason,omitempty"`
	Rule     string   `json:"rule,omitempty"`
	Inject   []string `json:"inject,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// SetDeny refuses the event outright. The first reason wins.
func (r *Result) SetDeny(reason string) {
	r.Deny = true
	if r.Reason == "" {
		r.Reason = reason
	}
}

// SetRule names the rule behind the current decision, for the audit row.
// The first rule wins, matching SetDeny's reason.
func (r *Result) SetRule(rule string) {
	if r.Rule == "" {
		r.Rule = rule
	}
}

// SetBlock stops the event and feeds the reason back to the agent.
func (r *Result) SetBlock(reason string) {
	r.Block = true
	if r.Reason == "" {
		r.Reason = reason
	}
}

// AddInject queues context text for the agent.
func (r *Result) AddInject(text string) {
	if text != "" {
		r.Inject = append(r.Inject, text)
	}
}

// AddWarning records a soft finding.
func (r *Result) AddWarning(text string) {
	if text != "" {
		r.Warnings = append(r.Warnings, text)
	}
}

// Decision collapses the aggregate into the three-way hook decision.
func (r *Result) Decision() hook.Decision {
	switch {
	case r.Deny:
		return hook.DecisionDeny
	case r.Block:
		return hook.DecisionBlock
	default:
		return hook.DecisionApprove
	}
}

// Response converts the aggregate into the wire response.
func (r *Result) Response() *hook.Response {
	return &hook.Response{
		Decision: r.Decision(),
		Reason:   r.Reason,
		Inject:   r.Inject,
		Warnings: r.Warnings,
	}
}
