package debug

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var (
	enabled     = os.Getenv("DEVFLOW_DEBUG") != ""
	verboseMode = false
	quietMode   = false
	logMutex    sync.Mutex
)

func Enabled() bool {
	return enabled || verboseMode
}

// SetVerbose enables verbose/debug output
func SetVerbose(verbose bool) {
	verboseMode = verbose
}

// SetQuiet enables quiet mode (suppress non-essential output)
func SetQuiet(quiet bool) {
	quietMode = quiet
}

// IsQuiet returns true if quiet mode is enabled
func IsQuiet() bool {
	return quietMode
}

// Logf writes debug output to stderr. Hooks talk to Claude Code over
// stdout, so diagnostics must never go there.
func Logf(format string, args ...interface{}) {
	if enabled || verboseMode {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}

// PrintNormal prints output unless quiet mode is enabled
func PrintNormal(format string, args ...interface{}) {
	if !quietMode {
		fmt.Printf(format, args...)
	}
}

// PrintlnNormal prints a line unless quiet mode is enabled
func PrintlnNormal(args ...interface{}) {
	if !quietMode {
		fmt.Println(args...)
	}
}

// LogEvent appends an event to .devflow/events.log
// Format: TIMESTAMP|EVENT_CODE|SESSION_ID|DETAILS
func LogEvent(eventCode, sessionID, details string) {
	projectRoot, err := findProjectRoot()
	if err != nil {
		// Silent fail if not in a project
		return
	}

	logPath := filepath.Join(projectRoot, ".devflow", "events.log")

	if sessionID == "" {
		sessionID = os.Getenv("CLAUDE_SESSION_ID")
		if sessionID == "" {
			sessionID = "none"
		}
	}

	timestamp := time.Now().UTC().Format(time.RFC3339)
	entry := fmt.Sprintf("%s|%s|%s|%s\n", timestamp, eventCode, sessionID, details)

	logMutex.Lock()
	defer logMutex.Unlock()

	os.MkdirAll(filepath.Dir(logPath), 0755)

	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		// Silent fail - don't interrupt operations if logging fails
		return
	}
	defer file.Close()

	file.WriteString(entry)
}

func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		devflowDir := filepath.Join(dir, ".devflow")
		if info, err := os.Stat(devflowDir); err == nil && info.IsDir() {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("not in a devflow project")
		}
		dir = parent
	}
}
