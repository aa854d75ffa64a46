package timeutil

import (
	"fmt"
	"strings"
	"time"
)

// DayFormat is the ledger and folder date layout (DD-MM-YYYY).
const DayFormat = "02-01-2006"

// FilterFormat is the layout the results interface expects in its
// date-filter inputs (DD/MM/YYYY).
const FilterFormat = "02/01/2006"

// ParseDay parses a DD-MM-YYYY day string into midnight UTC.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(DayFormat, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected DD-MM-YYYY", s)
	}
	return t, nil
}

// FormatDay renders t as DD-MM-YYYY.
func FormatDay(t time.Time) string {
	return t.Format(DayFormat)
}

// Days returns every calendar day from start to end inclusive, ascending.
func Days(start, end time.Time) []time.Time {
	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}
