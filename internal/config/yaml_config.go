package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// YamlOnlyKeys are configuration keys that must be stored in config.yaml
// rather than the database. These are startup settings that are read
// before the database is opened.
var YamlOnlyKeys = map[string]bool{
	// Bootstrap flags
	"db":    true,
	"json":  true,
	"debug": true,

	// Timing settings
	"lock.ttl": true,

	"recall.limit": true,
}

// IsYamlOnlyKey returns true if the given key should be stored in
// config.yaml rather than the database.
func IsYamlOnlyKey(key string) bool {
	if YamlOnlyKeys[key] {
		return true
	}

	// Nested keys for subsystems that must be configured before the
	// database opens.
	prefixes := []string{"embeddings.", "backup.", "orchestrator.", "summary."}
	for _, prefix := range prefixes {
		if strings.HasPrefix(key, prefix) {
			return true
		}
	}

	return false
}

// SetYamlConfig sets a configuration value in the project's config.yaml,
// handling both new keys and updating existing (possibly commented) keys.
func SetYamlConfig(key, value string) error {
	configPath, err := findProjectConfigYaml()
	if err != nil {
		return err
	}

	content, err := os.ReadFile(configPath) //nolint:gosec // configPath is from findProjectConfigYaml
	if err != nil {
		return fmt.Errorf("failed to read config.yaml: %w", err)
	}

	newContent, err := updateYamlKey(string(content), key, value)
	if err != nil {
		return err
	}

	if err := os.WriteFile(configPath, []byte(newContent), 0600); err != nil { //nolint:gosec // configPath is validated
		return fmt.Errorf("failed to write config.yaml: %w", err)
	}

	return nil
}

// GetYamlConfig gets a configuration value from config.yaml.
// Returns empty string if the key is not found or is commented out.
func GetYamlConfig(key string) string {
	if v == nil {
		return ""
	}
	return v.GetString(key)
}

// findProjectConfigYaml finds the project's .devflow/config.yaml file,
// creating an empty one if the .devflow directory exists without it.
func findProjectConfigYaml() (string, error) {
	dir := FindDevflowDir("")
	if dir == "" {
		return "", fmt.Errorf("no .devflow directory found (run 'devflow init' first)")
	}

	configPath := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := os.WriteFile(configPath, []byte{}, 0600); err != nil {
			return "", fmt.Errorf("failed to create config.yaml: %w", err)
		}
	}
	return configPath, nil
}

// updateYamlKey updates a key in yaml content, handling commented-out keys.
// If the key exists (commented or not), it is updated in place; otherwise
// it is appended at the end.
//
//nolint:unparam // error return kept for future validation
func updateYamlKey(content, key, value string) (string, error) {
	formattedValue := formatYamlValue(value)
	newLine := fmt.Sprintf("%s: %s", key, formattedValue)

	// Matches: "key: value" or "# key: value" with optional leading whitespace
	keyPattern := regexp.MustCompile(`^(\s*)(#\s*)?` + regexp.QuoteMeta(key) + `\s*:`)

	found := false
	var result []string

	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := scanner.Text()
		if keyPattern.MatchString(line) {
			// Replace with the new value, uncommented, preserving indent.
			matches := keyPattern.FindStringSubmatch(line)
			indent := ""
			if len(matches) > 1 {
				indent = matches[1]
			}
			result = append(result, indent+newLine)
			found = true
		} else {
			result = append(result, line)
		}
	}

	if !found {
		if len(result) > 0 && result[len(result)-1] != "" {
			result = append(result, "")
		}
		result = append(result, newLine)
	}

	return strings.Join(result, "\n"), nil
}

// formatYamlValue formats a value appropriately for YAML.
func formatYamlValue(value string) string {
	lower := strings.ToLower(value)
	if lower == "true" || lower == "false" {
		return lower
	}

	if isNumeric(value) {
		return value
	}

	// Duration values like "30s", "5m" pass through unquoted.
	if isDuration(value) {
		return value
	}

	if needsQuoting(value) {
		return fmt.Sprintf("%q", value)
	}

	return value
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		if c == '-' && i == 0 {
			continue
		}
		if c == '.' {
			continue
		}
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func isDuration(s string) bool {
	if len(s) < 2 {
		return false
	}
	suffix := s[len(s)-1]
	if suffix != 's' && suffix != 'm' && suffix != 'h' {
		return false
	}
	return isNumeric(s[:len(s)-1])
}

func needsQuoting(s string) bool {
	special := []string{":", "#", "[", "]", "{", "}", ",", "&", "*", "!", "|", ">", "'", "\"", "%", "@", "`"}
	for _, c := range special {
		if strings.Contains(s, c) {
			return true
		}
	}
	if strings.TrimSpace(s) != s {
		return true
	}
	return false
}
