package ui

import (
	"fmt"
	"strings"
	"testing"
)

func memoryLines(n int) string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = fmt.Sprintf("prompt %d: tighten the regex rules", i+1)
	}
	return strings.Join(lines, "\n")
}

func TestTruncateLines(t *testing.T) {
	t.Run("short content unchanged", func(t *testing.T) {
		text := memoryLines(10)
		if got := TruncateLines(text, 15, 5); got != text {
			t.Error("TruncateLines changed content under the limit")
		}
	})

	t.Run("empty string unchanged", func(t *testing.T) {
		if got := TruncateLines("", 15, 5); got != "" {
			t.Errorf("TruncateLines(\"\") = %q", got)
		}
	})

	t.Run("long content keeps head and tail", func(t *testing.T) {
		got := TruncateLines(memoryLines(40), 15, 5)
		if !strings.Contains(got, "prompt 1:") {
			t.Error("first line missing from head context")
		}
		if !strings.Contains(got, "prompt 40:") {
			t.Error("last line missing from tail context")
		}
		// 40 lines minus 5 head and 5 tail.
		if !strings.Contains(got, "30 lines hidden") {
			t.Errorf("hidden count marker missing:\n%s", got)
		}
		if !strings.Contains(got, "--full") {
			t.Error("marker should point at --full")
		}
	})

	t.Run("tiny budget truncates from top", func(t *testing.T) {
		got := TruncateLines(memoryLines(40), 4, 5)
		if lines := strings.Split(got, "\n"); len(lines) != 5 {
			t.Errorf("got %d lines, want 4 content lines plus ellipsis", len(lines))
		}
		if !strings.HasSuffix(got, "...") {
			t.Errorf("missing trailing ellipsis: %q", got)
		}
	})
}

func TestTruncateChars(t *testing.T) {
	long := strings.Repeat("investigate the flaky backup watcher ", 30)

	t.Run("short content unchanged", func(t *testing.T) {
		if got := TruncateChars("small note", 500, 200); got != "small note" {
			t.Errorf("TruncateChars = %q", got)
		}
	})

	t.Run("long content hides the middle", func(t *testing.T) {
		got := TruncateChars(long, 500, 200)
		if !strings.Contains(got, "chars hidden") {
			t.Errorf("hidden marker missing:\n%s", got)
		}
		if !strings.HasPrefix(got, "investigate") {
			t.Error("head context lost")
		}
		if !strings.HasSuffix(strings.TrimSpace(got), "watcher") {
			t.Error("tail context lost")
		}
	})

	t.Run("head breaks at a word boundary", func(t *testing.T) {
		got := TruncateChars(long, 500, 200)
		head := strings.SplitN(got, "\n", 2)[0]
		words := strings.Fields("investigate the flaky backup watcher")
		last := head[strings.LastIndex(head, " ")+1:]
		found := false
		for _, w := range words {
			if last == w {
				found = true
			}
		}
		if !found {
			t.Errorf("head ends mid-word: %q", last)
		}
	})
}

func TestTruncateSimple(t *testing.T) {
	tests := []struct {
		in     string
		maxLen int
		want   string
	}{
		{"fix lint", 20, "fix lint"},
		{"refactor the classifier rules", 12, "refactor ..."},
		{"héllo wörld", 8, "héllo..."},
		{"anything", 3, "..."},
		{"", 5, ""},
	}
	for _, tt := range tests {
		if got := TruncateSimple(tt.in, tt.maxLen); got != tt.want {
			t.Errorf("TruncateSimple(%q, %d) = %q, want %q", tt.in, tt.maxLen, got, tt.want)
		}
	}
}

func TestWrapText(t *testing.T) {
	t.Run("wraps at word boundaries", func(t *testing.T) {
		got := WrapText("the orchestrator routes review prompts to the reviewer agent", 20)
		for _, line := range strings.Split(got, "\n") {
			if len(line) > 20 {
				t.Errorf("line exceeds width: %q", line)
			}
		}
	})

	t.Run("preserves existing breaks", func(t *testing.T) {
		in := "first\nsecond"
		if got := WrapText(in, 80); got != in {
			t.Errorf("WrapText = %q, want %q", got, in)
		}
	})

	t.Run("oversized word stands alone", func(t *testing.T) {
		got := WrapText("see internal/orchestrator/policy.go now", 10)
		if !strings.Contains(got, "internal/orchestrator/policy.go") {
			t.Errorf("long token split: %q", got)
		}
	})

	t.Run("zero width falls back to 80", func(t *testing.T) {
		in := strings.TrimSpace(strings.Repeat("x ", 30))
		if got := WrapText(in, 0); got != in {
			t.Errorf("WrapText wrapped under the fallback width: %q", got)
		}
	})
}

func TestShouldTruncate(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		maxLines int
		maxChars int
		want     bool
	}{
		{"under both limits", "short", 10, 100, false},
		{"over char limit", strings.Repeat("a", 101), 10, 100, true},
		{"over line limit", memoryLines(11), 10, 0, true},
		{"at line limit", memoryLines(10), 10, 0, false},
		{"zero limits disable checks", memoryLines(100), 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldTruncate(tt.text, tt.maxLines, tt.maxChars); got != tt.want {
				t.Errorf("ShouldTruncate = %v, want %v", got, tt.want)
			}
		})
	}
}
