package main

import (
	"testing"

	"lexharvest/internal/timeutil"
)

func TestParseRange(t *testing.T) {
	t.Parallel()

	rng, err := parseRange("01-01-2025", "31-12-2025")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if timeutil.FormatDay(rng.Start) != "01-01-2025" || timeutil.FormatDay(rng.End) != "31-12-2025" {
		t.Fatalf("range = %+v", rng)
	}
}

func TestParseRangeRejectsReversedDates(t *testing.T) {
	t.Parallel()

	if _, err := parseRange("31-12-2025", "01-01-2025"); err == nil {
		t.Fatal("expected error for end before start")
	}
}

func TestParseRangeRejectsBadFormat(t *testing.T) {
	t.Parallel()

	for _, bad := range [][2]string{
		{"2025-01-01", "31-12-2025"},
		{"01-01-2025", "31/12/2025"},
		{"", "31-12-2025"},
	} {
		if _, err := parseRange(bad[0], bad[1]); err == nil {
			t.Fatalf("parseRange(%q, %q) accepted invalid input", bad[0], bad[1])
		}
	}
}
