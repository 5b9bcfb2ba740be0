package ui

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"golang.org/x/term"
)

// PagerOptions controls whether long output is piped through a pager.
type PagerOptions struct {
	// NoPager skips the pager for this command (--no-pager).
	NoPager bool
}

// ToPager writes content to stdout, through a pager when stdout is a
// terminal and the content overflows it. DEVFLOW_NO_PAGER and the
// --no-pager flag force direct output; DEVFLOW_PAGER then PAGER pick
// the program, defaulting to less.
func ToPager(content string, opts PagerOptions) error {
	if opts.NoPager || os.Getenv("DEVFLOW_NO_PAGER") != "" {
		fmt.Print(content)
		return nil
	}

	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		fmt.Print(content)
		return nil
	}

	if _, height, err := term.GetSize(fd); err == nil && height > 0 {
		if lineCount(content) <= height-1 {
			fmt.Print(content)
			return nil
		}
	}

	parts := strings.Fields(pagerCommand())
	if len(parts) == 0 {
		fmt.Print(content)
		return nil
	}

	cmd := exec.Command(parts[0], parts[1:]...) // #nosec G204 - pager comes from the user's environment
	cmd.Stdin = strings.NewReader(content)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	cmd.Env = os.Environ()
	if os.Getenv("LESS") == "" {
		// -R passes ANSI colors, -F quits on a single screen, -X keeps
		// the output on screen after exit.
		cmd.Env = append(cmd.Env, "LESS=-RFX")
	}
	return cmd.Run()
}

func pagerCommand() string {
	if pager := os.Getenv("DEVFLOW_PAGER"); pager != "" {
		return pager
	}
	if pager := os.Getenv("PAGER"); pager != "" {
		return pager
	}
	return "less"
}

func lineCount(content string) int {
	if content == "" {
		return 0
	}
	return strings.Count(content, "\n") + 1
}
