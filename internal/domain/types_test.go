package domain

import (
	"testing"
	"time"
)

func TestNewDateRangeRejectsReversedRange(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	if _, err := NewDateRange(start, end); err == nil {
		t.Fatal("expected error for end before start")
	}
}

func TestNewDateRangeTruncatesToMidnight(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 1, 1, 13, 45, 0, 0, time.UTC)
	r, err := NewDateRange(start, start)
	if err != nil {
		t.Fatal(err)
	}
	if r.Start.Hour() != 0 || r.Start != r.End {
		t.Fatalf("range = %+v", r)
	}
	if r.Days() != 1 {
		t.Fatalf("days = %d, want 1", r.Days())
	}
}

func TestDateRangeDays(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)
	r, err := NewDateRange(start, end)
	if err != nil {
		t.Fatal(err)
	}
	if r.Days() != 365 {
		t.Fatalf("days = %d, want 365", r.Days())
	}
}

func TestBatchRange(t *testing.T) {
	t.Parallel()

	r := BatchRange{Start: 251, End: 400}
	if r.Size() != 150 {
		t.Fatalf("size = %d, want 150", r.Size())
	}
	if r.String() != "251-400" {
		t.Fatalf("string = %q, want 251-400", r.String())
	}

	single := BatchRange{Start: 1, End: 1}
	if single.Size() != 1 || single.String() != "1-1" {
		t.Fatalf("single = %d %q", single.Size(), single.String())
	}
}
