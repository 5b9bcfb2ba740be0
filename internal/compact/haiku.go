// Package compact condenses session activity into short summaries using
// Claude Haiku, so past sessions stay searchable after their transcripts
// are gone.
package compact

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net"
	"os"
	"strings"
	"text/template"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/cometalabs/devflow/internal/telemetry"
)

const (
	defaultModel   = "claude-3-5-haiku-latest"
	maxRetries     = 3
	initialBackoff = 1 * time.Second
	maxInputChars  = 50000
)

// ErrAPIKeyRequired is returned when no Anthropic API key is available.
var ErrAPIKeyRequired = errors.New("API key required")

// HaikuSummarizer summarizes session activity via the Anthropic API.
type HaikuSummarizer struct {
	client         anthropic.Client
	model          anthropic.Model
	promptTemplate *template.Template
	maxRetries     int
	initialBackoff time.Duration
}

// NewHaikuSummarizer creates a summarizer. The ANTHROPIC_API_KEY environment
// variable takes precedence over the explicit apiKey.
func NewHaikuSummarizer(apiKey string) (*HaikuSummarizer, error) {
	if envKey := os.Getenv("ANTHROPIC_API_KEY"); envKey != "" {
		apiKey = envKey
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%w: set ANTHROPIC_API_KEY", ErrAPIKeyRequired)
	}

	model := os.Getenv("DEVFLOW_SUMMARY_MODEL")
	if model == "" {
		model = defaultModel
	}

	tmpl, err := template.New("summary").Parse(summaryPromptTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing summary template: %w", err)
	}

	return &HaikuSummarizer{
		client:         anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:          anthropic.Model(model),
		promptTemplate: tmpl,
		maxRetries:     maxRetries,
		initialBackoff: initialBackoff,
	}, nil
}

// Summarize condenses session activity text into a few sentences.
func (h *HaikuSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("nothing to summarize")
	}
	if len(text) > maxInputChars {
		text = text[:maxInputChars]
	}

	prompt, err := h.renderPrompt(text)
	if err != nil {
		return "", fmt.Errorf("rendering prompt: %w", err)
	}
	return h.callWithRetry(ctx, prompt)
}

func (h *HaikuSummarizer) callWithRetry(ctx context.Context, prompt string) (string, error) {
	tracer := telemetry.Tracer("github.com/cometalabs/devflow/ai")
	ctx, span := tracer.Start(ctx, "anthropic.messages.new")
	defer span.End()
	span.SetAttributes(
		attribute.String("devflow.ai.model", string(h.model)),
		attribute.String("devflow.ai.operation", "summarize"),
	)

	params := anthropic.MessageNewParams{
		Model:     h.model,
		MaxTokens: 512,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}

	var lastErr error
	for attempt := 0; attempt <= h.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := h.initialBackoff * time.Duration(math.Pow(2, float64(attempt-1)))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		message, err := h.client.Messages.New(ctx, params)
		if err == nil {
			span.SetAttributes(
				attribute.Int64("devflow.ai.input_tokens", message.Usage.InputTokens),
				attribute.Int64("devflow.ai.output_tokens", message.Usage.OutputTokens),
				attribute.Int("devflow.ai.attempts", attempt+1),
			)
			if len(message.Content) == 0 {
				return "", fmt.Errorf("unexpected response format: no content blocks")
			}
			content := message.Content[0]
			if content.Type != "text" {
				return "", fmt.Errorf("unexpected response format: not a text block (type=%s)", content.Type)
			}
			return content.Text, nil
		}

		lastErr = err
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if !isRetryable(err) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return "", fmt.Errorf("non-retryable error: %w", err)
		}
	}

	if lastErr != nil {
		span.RecordError(lastErr)
		span.SetStatus(codes.Error, lastErr.Error())
	}
	return "", fmt.Errorf("failed after %d retries: %w", h.maxRetries+1, lastErr)
}

func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429 || apiErr.StatusCode >= 500
	}
	return false
}

func (h *HaikuSummarizer) renderPrompt(activity string) (string, error) {
	var sb strings.Builder
	if err := h.promptTemplate.Execute(&sb, struct{ Activity string }{activity}); err != nil {
		return "", err
	}
	return sb.String(), nil
}

const summaryPromptTemplate = `You are summarizing a coding session for long-term memory. Your output MUST be significantly shorter than the input while preserving what the session was about and what was decided.

Session activity (user prompts in order):
{{.Activity}}

Provide a summary in this exact format:

**Focus:** [1-2 sentences on what the session worked on]

**Decisions:** [Brief bullet points of technical choices made, if any]

**Open threads:** [One line on anything left unfinished, or "none"]`
