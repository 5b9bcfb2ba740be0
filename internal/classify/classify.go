// Package classify turns prompt text and tool invocations into intents and
// risk findings using an ordered regex rule list. First match wins; the
// built-in rules can be extended from a YAML file.
package classify

import (
	"regexp"
)

// Intent is the classified purpose of a user prompt.
type Intent string

const (
	IntentTask     Intent = "task"
	IntentBug      Intent = "bug"
	IntentQuestion Intent = "question"
	IntentRefactor Intent = "refactor"
	IntentReview   Intent = "review"
	IntentDocs     Intent = "docs"
	IntentGeneral  Intent = "general"
)

// Rule pairs a compiled pattern with the intent it signals. Rules are
// evaluated in order; the first match decides.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
	Intent  Intent
}

// builtinRules is the default ordered rule list. Order matters: bug beats
// question ("why is X broken?" is a bug report, not a question), and
// review/refactor beat the generic task verbs.
var builtinRules = []Rule{
	{"bug-report", regexp.MustCompile(`(?i)\b(bug|broken|crash|error|exception|fail(s|ed|ing|ure)?|regression|stack\s*trace|panic)\b`), IntentBug},
	{"review", regexp.MustCompile(`(?i)\b(review|look\s+over|audit|check\s+(my|the|this)\s+(code|pr|diff|change))\b`), IntentReview},
	{"refactor", regexp.MustCompile(`(?i)\b(refactor|clean\s*up|restructure|simplify|extract|rename|dedup(e|licate)?)\b`), IntentRefactor},
	{"docs", regexp.MustCompile(`(?i)\b(document|docs?|readme|changelog|comment(s)?\b.*\b(add|write|update))\b`), IntentDocs},
	{"task-create", regexp.MustCompile(`(?i)\b(implement|add|create|build|write|set\s*up|wire\s*up|support|todo|fix)\b`), IntentTask},
	{"question", regexp.MustCompile(`(?i)(\?\s*$|^\s*(what|how|why|where|when|which|who|can|does|is|are|should)\b)`), IntentQuestion},
}

// Classifier evaluates prompts against an ordered rule list.
type Classifier struct {
	rules []Rule
}

// NewClassifier returns a classifier with the built-in rules.
func NewClassifier() *Classifier {
	return &Classifier{rules: builtinRules}
}

// NewClassifierWithRules prepends custom rules to the built-ins. Custom rules
// win ties because they are evaluated first.
func NewClassifierWithRules(custom []Rule) *Classifier {
	rules := make([]Rule, 0, len(custom)+len(builtinRules))
	rules = append(rules, custom...)
	rules = append(rules, builtinRules...)
	return &Classifier{rules: rules}
}

// Classify returns the intent of the prompt and the name of the rule that
// matched. Empty or unmatched prompts classify as general.
func (c *Classifier) Classify(prompt string) (Intent, string) {
	if prompt == "" {
		return IntentGeneral, ""
	}
	for _, r := range c.rules {
		if r.Pattern.MatchString(prompt) {
			return r.Intent, r.Name
		}
	}
	return IntentGeneral, ""
}

// Rules returns the classifier's rule list in evaluation order.
func (c *Classifier) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}
