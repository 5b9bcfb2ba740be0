package timeparsing

import (
	"fmt"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// nlpParser is shared; when.Parser is read-only after rule registration.
var nlpParser = when.New(nil)

func init() {
	nlpParser.Add(en.All...)
	nlpParser.Add(common.All...)
}

// ParseNaturalLanguage parses natural language date expressions like
// "tomorrow", "next monday", "in 3 days" relative to now.
//
// Returns error if the expression contains no recognizable date.
func ParseNaturalLanguage(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty time expression")
	}

	result, err := nlpParser.Parse(s, now)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing %q: %w", s, err)
	}
	if result == nil {
		return time.Time{}, fmt.Errorf("not a recognizable date expression: %q", s)
	}
	return result.Time, nil
}

// ParseRelativeTime parses a time expression using the layered strategy:
// compact duration first, then absolute timestamps (date-only, RFC3339),
// then natural language.
func ParseRelativeTime(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty time expression")
	}

	// Layer 1: compact duration (+6h, -1d, +2w)
	if IsCompactDuration(s) {
		return ParseCompactDuration(s, now)
	}

	// Layer 2: absolute timestamps. Tried before NLP so "2025-01-20" is never
	// reinterpreted by the natural language parser.
	if t, err := time.ParseInLocation("2006-01-02", s, now.Location()); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}

	// Layer 3: natural language (tomorrow, next monday)
	if t, err := ParseNaturalLanguage(s, now); err == nil {
		return t, nil
	}

	return time.Time{}, fmt.Errorf("unrecognized time expression: %q", s)
}
