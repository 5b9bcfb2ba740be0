package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestIsYamlOnlyKey(t *testing.T) {
	tests := []struct {
		key      string
		expected bool
	}{
		// Exact matches
		{"db", true},
		{"json", true},
		{"debug", true},
		{"lock.ttl", true},
		{"recall.limit", true},

		// Prefix matches
		{"embeddings.provider", true},
		{"embeddings.endpoint", true},
		{"backup.hourly", true},
		{"orchestrator.threshold", true},
		{"summary.model", true},

		// Database-stored keys
		{"project.notes", false},
		{"custom.setting", false},
		{"actor", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got := IsYamlOnlyKey(tt.key)
			if got != tt.expected {
				t.Errorf("IsYamlOnlyKey(%q) = %v, want %v", tt.key, got, tt.expected)
			}
		})
	}
}

func TestUpdateYamlKey(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		key      string
		value    string
		expected string
	}{
		{
			name:     "update commented key",
			content:  "# debug: false\nother: value",
			key:      "debug",
			value:    "true",
			expected: "debug: true\nother: value",
		},
		{
			name:     "update existing key",
			content:  "debug: false\nother: value",
			key:      "debug",
			value:    "true",
			expected: "debug: true\nother: value",
		},
		{
			name:     "add new key",
			content:  "other: value",
			key:      "debug",
			value:    "true",
			expected: "other: value\n\ndebug: true",
		},
		{
			name:     "preserve indentation",
			content:  "  # debug: false\nother: value",
			key:      "debug",
			value:    "true",
			expected: "  debug: true\nother: value",
		},
		{
			name:     "handle duration value",
			content:  "# lock.ttl: \"30s\"",
			key:      "lock.ttl",
			value:    "90s",
			expected: "lock.ttl: 90s",
		},
		{
			name:     "quote special characters",
			content:  "other: value",
			key:      "summary.model",
			value:    "claude: latest",
			expected: "other: value\n\nsummary.model: \"claude: latest\"",
		},
		{
			name:     "numeric value unquoted",
			content:  "",
			key:      "backup.hourly",
			value:    "12",
			expected: "backup.hourly: 12",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := updateYamlKey(tt.content, tt.key, tt.value)
			if err != nil {
				t.Fatalf("updateYamlKey() error = %v", err)
			}
			if got != tt.expected {
				t.Errorf("updateYamlKey() =\n%q\nwant:\n%q", got, tt.expected)
			}
		})
	}
}

func TestSetYamlConfig(t *testing.T) {
	tmpDir := t.TempDir()
	devflowDir := filepath.Join(tmpDir, ".devflow")
	if err := os.MkdirAll(devflowDir, 0750); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	oldWD, _ := os.Getwd()
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(oldWD) })

	if err := SetYamlConfig("embeddings.provider", "ollama"); err != nil {
		t.Fatalf("SetYamlConfig: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(devflowDir, "config.yaml"))
	if err != nil {
		t.Fatalf("reading config.yaml: %v", err)
	}
	if !strings.Contains(string(data), "embeddings.provider: ollama") {
		t.Errorf("config.yaml missing key, got:\n%s", data)
	}

	// Update in place rather than appending a duplicate.
	if err := SetYamlConfig("embeddings.provider", "simulated"); err != nil {
		t.Fatalf("SetYamlConfig update: %v", err)
	}
	data, _ = os.ReadFile(filepath.Join(devflowDir, "config.yaml"))
	if strings.Count(string(data), "embeddings.provider") != 1 {
		t.Errorf("key duplicated in config.yaml:\n%s", data)
	}
	if !strings.Contains(string(data), "embeddings.provider: simulated") {
		t.Errorf("config.yaml not updated, got:\n%s", data)
	}
}

func TestFormatYamlValue(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"true", "true"},
		{"FALSE", "false"},
		{"42", "42"},
		{"-3.5", "-3.5"},
		{"30s", "30s"},
		{"plain", "plain"},
		{"has: colon", `"has: colon"`},
		{" padded ", `" padded "`},
	}
	for _, tt := range tests {
		if got := formatYamlValue(tt.in); got != tt.want {
			t.Errorf("formatYamlValue(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
