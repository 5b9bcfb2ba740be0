package ui

import (
	"os"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// IsTerminal reports whether stdout is attached to a TTY.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// IsAgentMode reports whether output is being consumed by a coding agent
// rather than a human. Hook subcommands always run in agent mode; the
// env var lets other commands opt in.
func IsAgentMode() bool {
	if os.Getenv("DEVFLOW_AGENT_MODE") != "" {
		return true
	}
	return os.Getenv("CLAUDECODE") == "1"
}

// ShouldUseColor decides whether to emit ANSI colors, honoring the
// conventional env vars. NO_COLOR wins over everything, including
// CLICOLOR_FORCE.
func ShouldUseColor() bool {
	if _, set := os.LookupEnv("NO_COLOR"); set {
		return false
	}
	if termenv.EnvNoColor() {
		return false
	}
	if os.Getenv("CLICOLOR_FORCE") != "" {
		return true
	}
	return IsTerminal()
}

// ShouldUseEmoji decides whether to emit emoji status indicators.
func ShouldUseEmoji() bool {
	if os.Getenv("DEVFLOW_NO_EMOJI") != "" {
		return false
	}
	return IsTerminal()
}
