package classify

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// rulesFile mirrors the on-disk YAML rule format:
//
//	rules:
//	  - name: deploy
//	    pattern: '(?i)\bdeploy\b'
//	    intent: task
type rulesFile struct {
	Rules []struct {
		Name    string `yaml:"name"`
		Pattern string `yaml:"pattern"`
		Intent  string `yaml:"intent"`
	} `yaml:"rules"`
}

// LoadRules reads custom classification rules from a YAML file. A missing
// file is not an error; it returns an empty slice so callers can fall back
// to the built-ins unconditionally.
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path) // #nosec G304 - controlled path under .devflow
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading rules file: %w", err)
	}

	var rf rulesFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parsing rules file: %w", err)
	}

	rules := make([]Rule, 0, len(rf.Rules))
	for i, r := range rf.Rules {
		if r.Name == "" {
			return nil, fmt.Errorf("rule %d: name is required", i)
		}
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("rule %q: invalid pattern: %w", r.Name, err)
		}
		rules = append(rules, Rule{Name: r.Name, Pattern: re, Intent: Intent(r.Intent)})
	}
	return rules, nil
}
