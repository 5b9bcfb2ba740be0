package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestInitialize(t *testing.T) {
	if err := Initialize(); err != nil {
		t.Fatalf("Initialize() returned error: %v", err)
	}

	if v == nil {
		t.Fatal("viper instance is nil after Initialize()")
	}
}

func TestDefaults(t *testing.T) {
	if err := Initialize(); err != nil {
		t.Fatalf("Initialize() returned error: %v", err)
	}

	tests := []struct {
		key      string
		expected interface{}
		getter   func(string) interface{}
	}{
		{"json", false, func(k string) interface{} { return GetBool(k) }},
		{"debug", false, func(k string) interface{} { return GetBool(k) }},
		{"db", "", func(k string) interface{} { return GetString(k) }},
		{"embeddings.endpoint", "http://localhost:11434", func(k string) interface{} { return GetString(k) }},
		{"embeddings.model", "nomic-embed-text", func(k string) interface{} { return GetString(k) }},
		{"backup.hourly", 24, func(k string) interface{} { return GetInt(k) }},
		{"backup.daily", 7, func(k string) interface{} { return GetInt(k) }},
		{"backup.weekly", 4, func(k string) interface{} { return GetInt(k) }},
		{"recall.limit", 3, func(k string) interface{} { return GetInt(k) }},
		{"lock.ttl", 2 * time.Minute, func(k string) interface{} { return GetDuration(k) }},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got := tt.getter(tt.key)
			if got != tt.expected {
				t.Errorf("get(%q) = %v, want %v", tt.key, got, tt.expected)
			}
		})
	}
}

func TestEnvironmentBinding(t *testing.T) {
	tests := []struct {
		envVar string
		key    string
		value  string
		check  func(string) interface{}
		want   interface{}
	}{
		{"DEVFLOW_JSON", "json", "true", func(k string) interface{} { return GetBool(k) }, true},
		{"DEVFLOW_DB", "db", "/tmp/other.db", func(k string) interface{} { return GetString(k) }, "/tmp/other.db"},
		{"DEVFLOW_EMBEDDINGS_PROVIDER", "embeddings.provider", "ollama", func(k string) interface{} { return GetString(k) }, "ollama"},
		{"DEVFLOW_BACKUP_HOURLY", "backup.hourly", "12", func(k string) interface{} { return GetInt(k) }, 12},
		{"DEVFLOW_ORCHESTRATOR_THRESHOLD", "orchestrator.threshold", "12.5", func(k string) interface{} { return GetFloat64(k) }, 12.5},
	}

	for _, tt := range tests {
		t.Run(tt.envVar, func(t *testing.T) {
			t.Setenv(tt.envVar, tt.value)
			if err := Initialize(); err != nil {
				t.Fatalf("Initialize() returned error: %v", err)
			}
			got := tt.check(tt.key)
			if got != tt.want {
				t.Errorf("get(%q) with %s=%s = %v, want %v", tt.key, tt.envVar, tt.value, got, tt.want)
			}
		})
	}
}

func TestConfigFileLoading(t *testing.T) {
	tmpDir := t.TempDir()
	devflowDir := filepath.Join(tmpDir, ".devflow")
	if err := os.MkdirAll(devflowDir, 0750); err != nil {
		t.Fatalf("failed to create .devflow: %v", err)
	}

	yaml := "db: custom.db\nembeddings:\n  provider: ollama\n"
	if err := os.WriteFile(filepath.Join(devflowDir, "config.yaml"), []byte(yaml), 0600); err != nil {
		t.Fatalf("failed to write config.yaml: %v", err)
	}

	oldWD, _ := os.Getwd()
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		_ = os.Chdir(oldWD)
		_ = Initialize()
	})

	if err := Initialize(); err != nil {
		t.Fatalf("Initialize() returned error: %v", err)
	}

	if got := GetString("db"); got != "custom.db" {
		t.Errorf("db = %q, want custom.db", got)
	}
	if got := GetString("embeddings.provider"); got != "ollama" {
		t.Errorf("embeddings.provider = %q, want ollama", got)
	}
	if !IsSet("db") {
		t.Error("IsSet(db) = false for key set in config.yaml")
	}
	if IsSet("backup.daily") {
		t.Error("IsSet(backup.daily) = true for default-only key")
	}
}

func TestFindDevflowDir(t *testing.T) {
	tmpDir := t.TempDir()
	devflowDir := filepath.Join(tmpDir, ".devflow")
	nested := filepath.Join(tmpDir, "a", "b")
	if err := os.MkdirAll(devflowDir, 0750); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.MkdirAll(nested, 0750); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	if got := FindDevflowDir(nested); got != devflowDir {
		t.Errorf("FindDevflowDir(%q) = %q, want %q", nested, got, devflowDir)
	}

	other := t.TempDir()
	if got := FindDevflowDir(other); got != "" {
		t.Errorf("FindDevflowDir(%q) = %q, want empty", other, got)
	}
}
