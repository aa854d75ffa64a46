package timeutil

import (
	"testing"
	"time"
)

func TestParseDay(t *testing.T) {
	t.Parallel()

	d, err := ParseDay("31-12-2025")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if d.Day() != 31 || d.Month() != time.December || d.Year() != 2025 {
		t.Fatalf("parsed %v", d)
	}

	for _, bad := range []string{"", "2025-12-31", "31/12/2025", "32-01-2025", "foo"} {
		if _, err := ParseDay(bad); err == nil {
			t.Fatalf("ParseDay(%q) accepted invalid input", bad)
		}
	}
}

func TestFormatDayRoundTrip(t *testing.T) {
	t.Parallel()

	const s = "05-03-2025"
	d, err := ParseDay(s)
	if err != nil {
		t.Fatal(err)
	}
	if got := FormatDay(d); got != s {
		t.Fatalf("round trip %q -> %q", s, got)
	}
}

func TestDays(t *testing.T) {
	t.Parallel()

	start, _ := ParseDay("30-12-2024")
	end, _ := ParseDay("02-01-2025")

	days := Days(start, end)
	if len(days) != 4 {
		t.Fatalf("got %d days, want 4", len(days))
	}
	want := []string{"30-12-2024", "31-12-2024", "01-01-2025", "02-01-2025"}
	for i, d := range days {
		if FormatDay(d) != want[i] {
			t.Fatalf("day %d = %s, want %s", i, FormatDay(d), want[i])
		}
	}

	if got := Days(end, start); got != nil {
		t.Fatalf("reversed range yielded %v", got)
	}
	single := Days(start, start)
	if len(single) != 1 {
		t.Fatalf("single-day range yielded %d days", len(single))
	}
}
