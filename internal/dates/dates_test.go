package dates

import (
	"testing"
	"time"
)

func TestParseDateOnly(t *testing.T) {
	got, err := Parse("1990-04-12")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(1990, 4, 12, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestParseRFC3339TruncatesToMidnight(t *testing.T) {
	got, err := Parse("2024-03-01T17:45:00Z")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Hour() != 0 || got.Minute() != 0 || got.Day() != 1 {
		t.Fatalf("expected midnight of day 1, got %s", got)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "  ", "12/04/1990", "yesterday"} {
		if _, err := Parse(raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}
