package timeparsing

import (
	"testing"
	"time"
)

func TestParseCompactDuration(t *testing.T) {
	// Fixed anchor so due-date math is deterministic.
	anchor := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		input   string
		want    time.Time
		wantErr bool
	}{
		{input: "+2h", want: anchor.Add(2 * time.Hour)},
		{input: "+1d", want: time.Date(2026, 3, 11, 9, 30, 0, 0, time.UTC)},
		{input: "+2w", want: time.Date(2026, 3, 24, 9, 30, 0, 0, time.UTC)},
		{input: "+6m", want: time.Date(2026, 9, 10, 9, 30, 0, 0, time.UTC)},
		{input: "+1y", want: time.Date(2027, 3, 10, 9, 30, 0, 0, time.UTC)},
		{input: "-3d", want: time.Date(2026, 3, 7, 9, 30, 0, 0, time.UTC)},
		{input: "-12h", want: anchor.Add(-12 * time.Hour)},
		// Sign is optional; bare forms mean "from now".
		{input: "90d", want: time.Date(2026, 6, 8, 9, 30, 0, 0, time.UTC)},
		{input: "4w", want: time.Date(2026, 4, 7, 9, 30, 0, 0, time.UTC)},
		// Rejected shapes.
		{input: "", wantErr: true},
		{input: "2", wantErr: true},
		{input: "d", wantErr: true},
		{input: "2d+", wantErr: true},
		{input: "--1d", wantErr: true},
		{input: "+1 d", wantErr: true},
		{input: "1fortnight", wantErr: true},
		{input: "next week", wantErr: true},
		{input: "2026-03-10", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseCompactDuration(tt.input, anchor)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseCompactDuration(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && !got.Equal(tt.want) {
				t.Errorf("ParseCompactDuration(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsCompactDuration(t *testing.T) {
	for _, valid := range []string{"+2h", "-3d", "4w", "6m", "1y", "+90d"} {
		if !IsCompactDuration(valid) {
			t.Errorf("IsCompactDuration(%q) = false, want true", valid)
		}
	}
	for _, invalid := range []string{"", "90", "w", "2d+", "tomorrow", "2026-03-10"} {
		if IsCompactDuration(invalid) {
			t.Errorf("IsCompactDuration(%q) = true, want false", invalid)
		}
	}
}

func TestParseCompactDurationMonthOverflow(t *testing.T) {
	// AddDate normalizes Jan 31 + 1m into early March; callers get Go's
	// arithmetic, not calendar clamping.
	jan31 := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	got, err := ParseCompactDuration("+1m", jan31)
	if err != nil {
		t.Fatalf("ParseCompactDuration: %v", err)
	}
	if got.Month() != time.March || got.Day() != 3 {
		t.Errorf("Jan 31 + 1m = %v, want March 3", got)
	}
}

func TestParseCompactDurationKeepsLocation(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	got, err := ParseCompactDuration("+1d", time.Date(2026, 3, 10, 9, 30, 0, 0, loc))
	if err != nil {
		t.Fatalf("ParseCompactDuration: %v", err)
	}
	if got.Location() != loc {
		t.Errorf("location = %v, want %v", got.Location(), loc)
	}
}
