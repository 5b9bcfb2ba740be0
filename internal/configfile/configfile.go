package configfile

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

const ConfigFileName = "metadata.json"

// Config is the per-project configuration stored in .devflow/metadata.json.
// All fields are optional; zero values fall back to the documented defaults
// so a freshly initialized project works with an empty file.
type Config struct {
	Database string `json:"database,omitempty"` // SQLite filename inside .devflow/ (default "cometa.db")

	// Embedding configuration
	EmbeddingProvider string `json:"embedding_provider,omitempty"` // "simulated" or "ollama"
	OllamaEndpoint    string `json:"ollama_endpoint,omitempty"`
	OllamaModel       string `json:"ollama_model,omitempty"`

	// Backup retention (0 means use the package default)
	BackupHourly int `json:"backup_hourly,omitempty"`
	BackupDaily  int `json:"backup_daily,omitempty"`
	BackupWeekly int `json:"backup_weekly,omitempty"`

	// Optional override files, relative to .devflow/
	RulesFile  string `json:"rules_file,omitempty"`  // classifier rules (YAML)
	PolicyFile string `json:"policy_file,omitempty"` // orchestrator policy (TOML)

	ProjectName  string `json:"project_name,omitempty"` // identifier for multi-project setups
	SummaryModel string `json:"summary_model,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Database: "cometa.db",
	}
}

func ConfigPath(devflowDir string) string {
	return filepath.Join(devflowDir, ConfigFileName)
}

// Load reads metadata.json from the given .devflow directory. A missing file
// returns (nil, nil) so callers can distinguish "no config" from a parse error.
func Load(devflowDir string) (*Config, error) {
	configPath := ConfigPath(devflowDir)

	data, err := os.ReadFile(configPath) // #nosec G304 - controlled path from config
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Save(devflowDir string) error {
	configPath := ConfigPath(devflowDir)

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

func (c *Config) DatabasePath(devflowDir string) string {
	if c.Database == "" {
		return filepath.Join(devflowDir, "cometa.db")
	}
	return filepath.Join(devflowDir, c.Database)
}

// RulesPath returns the absolute path to the classifier rules file, or ""
// when no override is configured.
func (c *Config) RulesPath(devflowDir string) string {
	if c.RulesFile == "" {
		return ""
	}
	return filepath.Join(devflowDir, c.RulesFile)
}

// PolicyPath returns the absolute path to the orchestrator policy file, or ""
// when no override is configured.
func (c *Config) PolicyPath(devflowDir string) string {
	if c.PolicyFile == "" {
		return ""
	}
	return filepath.Join(devflowDir, c.PolicyFile)
}

// GetProjectName returns the configured project name, or auto-detects from
// git if empty. Returns empty string if neither is available.
func (c *Config) GetProjectName() string {
	if c.ProjectName != "" {
		return c.ProjectName
	}
	return detectProjectFromGitRemote()
}

// detectProjectFromGitRemote extracts the repository name from the git remote
// URL. Returns empty string if git is not available or no remote is set.
func detectProjectFromGitRemote() string {
	cmd := exec.Command("git", "config", "--get", "remote.origin.url")
	output, err := cmd.Output()
	if err != nil {
		return ""
	}

	url := strings.TrimSpace(string(output))
	if url == "" {
		return ""
	}

	url = strings.TrimSuffix(url, ".git")

	// SSH form: git@github.com:user/repo
	if i := strings.Index(url, ":"); i >= 0 && !strings.Contains(url, "://") {
		url = url[i+1:]
	}

	// HTTPS form: https://github.com/user/repo
	if i := strings.Index(url, "://"); i >= 0 {
		url = url[i+3:]
	}

	if i := strings.LastIndex(url, "/"); i >= 0 {
		return url[i+1:]
	}

	return filepath.Base(url)
}
