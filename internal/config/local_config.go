package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LocalConfig is the subset of config.yaml fields that sometimes need
// to be read directly from the file rather than through the viper
// singleton. Hook subcommands run with whatever CWD Claude Code gives
// them, which may not match the directory viper was initialized from.
type LocalConfig struct {
	Database      string `yaml:"db"`
	Debug         bool   `yaml:"debug"`
	JSONOutput    bool   `yaml:"json"`
	EmbedProvider string `yaml:"embeddings-provider"`
}

// LoadLocalConfig reads and parses config.yaml directly from the given
// .devflow directory, bypassing the viper singleton. Returns an empty
// LocalConfig (not nil) if the file doesn't exist or can't be parsed.
func LoadLocalConfig(devflowDir string) *LocalConfig {
	configPath := filepath.Join(devflowDir, "config.yaml")
	data, err := os.ReadFile(configPath) // #nosec G304 - config file path from devflowDir
	if err != nil {
		return &LocalConfig{}
	}

	var cfg LocalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return &LocalConfig{}
	}
	return &cfg
}
