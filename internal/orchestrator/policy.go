// Package orchestrator decides whether a prompt should be delegated to a
// specialized agent and which tools the session may use. Routing is driven
// by a TOML policy file in .devflow/ so teams tune it without rebuilding.
package orchestrator

import (
	"fmt"
	"os"
	"regexp"

	"github.com/BurntSushi/toml"
)

// Policy is the on-disk routing configuration.
type Policy struct {
	// DefaultAgent receives prompts that match no routing rule. Empty means
	// keep the work in the main session.
	DefaultAgent string `toml:"default_agent"`

	// Threshold is the minimum score required to delegate.
	Threshold float64 `toml:"threshold"`

	Tools  ToolPolicy  `toml:"tools"`
	Agents []AgentRule `toml:"agents"`
}

// ToolPolicy restricts which tools the gate permits. Block always wins over
// allow; an empty allow list permits everything not blocked.
type ToolPolicy struct {
	Allow []string `toml:"allow"`
	Block []string `toml:"block"`
}

// AgentRule routes prompts to one agent. Each keyword is a regular
// expression; a prompt scores Weight per matching keyword.
type AgentRule struct {
	Name     string   `toml:"name"`
	Keywords []string `toml:"keywords"`
	Weight   float64  `toml:"weight"`
}

// DefaultPolicy routes review and test prompts to specialist agents and
// blocks nothing.
func DefaultPolicy() Policy {
	return Policy{
		Threshold: 10,
		Agents: []AgentRule{
			{Name: "reviewer", Keywords: []string{`(?i)\breview\b`, `(?i)\baudit\b`}, Weight: 10},
			{Name: "tester", Keywords: []string{`(?i)\btests?\b`, `(?i)\bcoverage\b`}, Weight: 10},
		},
	}
}

// LoadPolicy reads a TOML policy file. A missing file returns the default
// policy so the orchestrator works out of the box.
func LoadPolicy(path string) (Policy, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultPolicy(), nil
	}
	if err != nil {
		return Policy{}, fmt.Errorf("reading policy %s: %w", path, err)
	}

	var p Policy
	if err := toml.Unmarshal(data, &p); err != nil {
		return Policy{}, fmt.Errorf("parsing policy %s: %w", path, err)
	}
	if err := p.validate(); err != nil {
		return Policy{}, fmt.Errorf("invalid policy %s: %w", path, err)
	}
	return p, nil
}

func (p Policy) validate() error {
	if p.Threshold < 0 {
		return fmt.Errorf("threshold must be >= 0, got %v", p.Threshold)
	}
	for _, a := range p.Agents {
		if a.Name == "" {
			return fmt.Errorf("agent rule missing name")
		}
		if a.Weight < 0 {
			return fmt.Errorf("agent %q: weight must be >= 0", a.Name)
		}
		for _, kw := range a.Keywords {
			if _, err := regexp.Compile(kw); err != nil {
				return fmt.Errorf("agent %q: keyword %q: %w", a.Name, kw, err)
			}
		}
	}
	return nil
}
