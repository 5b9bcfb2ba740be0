// Package config provides layered configuration for devflow: defaults,
// .devflow/config.yaml, and DEVFLOW_* environment variables, in increasing
// precedence. Non-startup settings live in the database metadata table and
// are handled by the config command, not this package.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var v *viper.Viper

// Initialize sets up the viper singleton. Safe to call more than once;
// later calls rebuild the instance (used by tests to reset state).
func Initialize() error {
	nv := viper.New()
	nv.SetConfigName("config")
	nv.SetConfigType("yaml")

	if dir := FindDevflowDir(""); dir != "" {
		nv.AddConfigPath(dir)
	}
	if home, err := os.UserHomeDir(); err == nil {
		nv.AddConfigPath(filepath.Join(home, ".config", "devflow"))
	}

	nv.SetEnvPrefix("DEVFLOW")
	nv.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	nv.AutomaticEnv()

	setDefaults(nv)

	if err := nv.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return err
		}
	}

	v = nv
	return nil
}

func setDefaults(nv *viper.Viper) {
	nv.SetDefault("db", "")
	nv.SetDefault("json", false)
	nv.SetDefault("debug", false)

	nv.SetDefault("embeddings.provider", "")
	nv.SetDefault("embeddings.endpoint", "http://localhost:11434")
	nv.SetDefault("embeddings.model", "nomic-embed-text")
	nv.SetDefault("embeddings.cache-ttl", 10*time.Minute)

	nv.SetDefault("backup.hourly", 24)
	nv.SetDefault("backup.daily", 7)
	nv.SetDefault("backup.weekly", 4)
	nv.SetDefault("backup.debounce", 5*time.Second)

	nv.SetDefault("summary.model", "")

	nv.SetDefault("orchestrator.threshold", 0)
	nv.SetDefault("recall.limit", 3)

	nv.SetDefault("lock.ttl", 2*time.Minute)
}

// FindDevflowDir walks up from start (or the working directory when empty)
// looking for a .devflow directory. Returns "" when none is found.
func FindDevflowDir(start string) string {
	dir := start
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return ""
		}
		dir = cwd
	}

	for ; dir != filepath.Dir(dir); dir = filepath.Dir(dir) {
		candidate := filepath.Join(dir, ".devflow")
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate
		}
	}
	return ""
}

// GetString returns the configured string for key, or "" before Initialize.
func GetString(key string) string {
	if v == nil {
		return ""
	}
	return v.GetString(key)
}

func GetBool(key string) bool {
	if v == nil {
		return false
	}
	return v.GetBool(key)
}

func GetInt(key string) int {
	if v == nil {
		return 0
	}
	return v.GetInt(key)
}

func GetFloat64(key string) float64 {
	if v == nil {
		return 0
	}
	return v.GetFloat64(key)
}

func GetDuration(key string) time.Duration {
	if v == nil {
		return 0
	}
	return v.GetDuration(key)
}

// IsSet reports whether key was set explicitly via file or environment.
// viper's own IsSet treats defaults as set, so the layered sources are
// checked directly.
func IsSet(key string) bool {
	if v == nil {
		return false
	}
	if v.InConfig(key) {
		return true
	}
	envKey := "DEVFLOW_" + strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(key))
	_, fromEnv := os.LookupEnv(envKey)
	return fromEnv
}

// Set overrides a value in the running process only. Persisting belongs to
// SetYamlConfig or the database metadata table.
func Set(key string, value interface{}) {
	if v == nil {
		return
	}
	v.Set(key, value)
}
