package classify

import (
	"os"
	"path/filepath"
	"strings"
)

// RiskLevel grades a tool invocation.
type RiskLevel int

const (
	RiskNone RiskLevel = iota
	RiskWarn
	RiskDeny
)

// Finding is the outcome of a risk check on a tool invocation.
type Finding struct {
	Level   RiskLevel
	Rule    string
	Message string
}

// destructivePatterns lists command substrings considered destructive.
var destructivePatterns = []string{
	"rm -rf",
	"rm -r ",
	"rm -fr",
	"git push --force",
	"git push -f",
	"git reset --hard",
	"git clean -f",
	"git branch -D",
	"git checkout -- .",
	"DROP TABLE",
	"drop table",
	"TRUNCATE",
	"truncate ",
	"DELETE FROM",
	"docker rm ",
	"docker rmi ",
	"mkfs",
	"> /dev/sd",
}

// sensitivePathPrefixes flag writes to locations outside any sane workspace.
var sensitivePathPrefixes = []string{
	"/etc/",
	"/usr/",
	"/var/",
	"/boot/",
	"~/.ssh",
}

// CheckCommand runs the risk checks against a shell command. The workspace
// root bounds the path checks; an empty root skips them, since a hook that
// cannot determine its boundary must not wedge the session.
func CheckCommand(command, workspaceRoot string) []Finding {
	if command == "" {
		return nil
	}

	var findings []Finding

	for _, pattern := range destructivePatterns {
		if strings.Contains(command, pattern) {
			findings = append(findings, Finding{
				Level:   RiskDeny,
				Rule:    "destructive-op",
				Message: "destructive command detected: " + pattern,
			})
			break
		}
	}

	for _, prefix := range sensitivePathPrefixes {
		for _, p := range extractPaths(command) {
			if strings.HasPrefix(p, prefix) {
				findings = append(findings, Finding{
					Level:   RiskWarn,
					Rule:    "sensitive-path",
					Message: "command touches sensitive path " + p,
				})
			}
		}
	}

	if workspaceRoot != "" && !withinWorkspace(command, workspaceRoot) {
		findings = append(findings, Finding{
			Level:   RiskWarn,
			Rule:    "workspace-boundary",
			Message: "command operates outside the workspace boundary",
		})
	}

	return findings
}

// Worst returns the highest risk level among the findings.
func Worst(findings []Finding) RiskLevel {
	worst := RiskNone
	for _, f := range findings {
		if f.Level > worst {
			worst = f.Level
		}
	}
	return worst
}

// withinWorkspace reports whether every path argument in the command resolves
// under root. Unresolvable paths are ignored rather than flagged.
func withinWorkspace(command, root string) bool {
	root, err := filepath.Abs(root)
	if err != nil {
		return true
	}

	for _, p := range extractPaths(command) {
		if strings.HasPrefix(p, "~") {
			home, err := os.UserHomeDir()
			if err != nil {
				continue
			}
			p = filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			continue
		}
		// A bare prefix check would treat /work/space-evil as inside
		// /work/space; require the root itself or a separator boundary.
		if abs != root && !strings.HasPrefix(abs, root+string(filepath.Separator)) {
			return false
		}
	}
	return true
}

// extractPaths extracts file path-like arguments from a command string.
// It looks for arguments starting with / or ~/ or ../ which indicate
// absolute, home-relative, or parent-relative paths.
func extractPaths(command string) []string {
	var paths []string
	for _, p := range strings.Fields(command) {
		if strings.HasPrefix(p, "-") {
			continue
		}
		if strings.HasPrefix(p, "/") || strings.HasPrefix(p, "~/") || strings.HasPrefix(p, "../") {
			paths = append(paths, p)
		}
	}
	return paths
}
