package orchestrator

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Decision is the routing outcome for one prompt.
type Decision struct {
	// Delegate is true when the prompt scored high enough to hand off.
	Delegate bool    `json:"delegate"`
	Agent    string  `json:"agent,omitempty"`
	Score    float64 `json:"score"`
	Reason   string  `json:"reason"`
}

// ToolCheck is the gate outcome for one tool invocation.
type ToolCheck struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

type compiledRule struct {
	name     string
	patterns []*regexp.Regexp
	weight   float64
}

// Engine evaluates prompts and tool calls against a policy. Safe for
// concurrent use; the compiled policy is read-only after New.
type Engine struct {
	policy Policy
	rules  []compiledRule
}

// New compiles a policy into an engine.
func New(policy Policy) (*Engine, error) {
	if err := policy.validate(); err != nil {
		return nil, err
	}

	rules := make([]compiledRule, 0, len(policy.Agents))
	for _, a := range policy.Agents {
		cr := compiledRule{name: a.Name, weight: a.Weight}
		if cr.weight == 0 {
			cr.weight = 10
		}
		for _, kw := range a.Keywords {
			cr.patterns = append(cr.patterns, regexp.MustCompile(kw))
		}
		rules = append(rules, cr)
	}
	return &Engine{policy: policy, rules: rules}, nil
}

// CheckTool evaluates a tool name against the allow/block lists. Block wins
// over allow; an empty allow list permits everything else.
func (e *Engine) CheckTool(toolName string) ToolCheck {
	for _, blocked := range e.policy.Tools.Block {
		if strings.EqualFold(toolName, blocked) {
			return ToolCheck{Allowed: false, Reason: fmt.Sprintf("tool %s is blocked by policy", toolName)}
		}
	}
	if len(e.policy.Tools.Allow) > 0 {
		for _, allowed := range e.policy.Tools.Allow {
			if strings.EqualFold(toolName, allowed) {
				return ToolCheck{Allowed: true}
			}
		}
		return ToolCheck{Allowed: false, Reason: fmt.Sprintf("tool %s is not on the allow list", toolName)}
	}
	return ToolCheck{Allowed: true}
}

// Decide scores the prompt against every agent rule and delegates to the top
// scorer when it clears the threshold. Each matching keyword adds the rule's
// weight, so rules with several hits outrank single-keyword matches. Ties
// keep policy order.
func (e *Engine) Decide(prompt string) Decision {
	type scored struct {
		name  string
		score float64
		hits  int
	}

	var candidates []scored
	for _, rule := range e.rules {
		s := scored{name: rule.name}
		for _, re := range rule.patterns {
			if re.MatchString(prompt) {
				s.score += rule.weight
				s.hits++
			}
		}
		if s.hits > 0 {
			candidates = append(candidates, s)
		}
	}

	if len(candidates) == 0 {
		return Decision{
			Agent:  e.policy.DefaultAgent,
			Reason: "no routing rule matched",
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	best := candidates[0]

	threshold := e.policy.Threshold
	if best.score < threshold {
		return Decision{
			Agent: e.policy.DefaultAgent,
			Score: best.score,
			Reason: fmt.Sprintf("best match %s scored %.0f, below threshold %.0f",
				best.name, best.score, threshold),
		}
	}
	return Decision{
		Delegate: true,
		Agent:    best.name,
		Score:    best.score,
		Reason:   fmt.Sprintf("%d keyword match(es) for agent %s", best.hits, best.name),
	}
}
