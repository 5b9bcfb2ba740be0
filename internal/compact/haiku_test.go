package compact

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
)

func TestNewHaikuSummarizerRequiresKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")

	_, err := NewHaikuSummarizer("")
	if !errors.Is(err, ErrAPIKeyRequired) {
		t.Errorf("error = %v, want ErrAPIKeyRequired", err)
	}
}

func TestNewHaikuSummarizerEnvOverridesModel(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "test-key")
	t.Setenv("DEVFLOW_SUMMARY_MODEL", "claude-test-model")

	h, err := NewHaikuSummarizer("")
	if err != nil {
		t.Fatal(err)
	}
	if string(h.model) != "claude-test-model" {
		t.Errorf("model = %s", h.model)
	}
}

func TestSummarizeRejectsEmptyInput(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "test-key")
	h, err := NewHaikuSummarizer("")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := h.Summarize(context.Background(), "  \n "); err == nil {
		t.Error("expected error for empty input")
	}
}

func TestRenderPrompt(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "test-key")
	h, err := NewHaikuSummarizer("")
	if err != nil {
		t.Fatal(err)
	}

	prompt, err := h.renderPrompt("fix the uploader\nadd retries")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(prompt, "fix the uploader") {
		t.Errorf("prompt missing activity: %q", prompt)
	}
	if !strings.Contains(prompt, "**Focus:**") {
		t.Error("prompt missing format instructions")
	}
}

func TestIsRetryable(t *testing.T) {
	if isRetryable(nil) {
		t.Error("nil should not be retryable")
	}
	if isRetryable(context.Canceled) {
		t.Error("cancellation should not be retryable")
	}
	if isRetryable(os.ErrNotExist) {
		t.Error("arbitrary errors should not be retryable")
	}
}
