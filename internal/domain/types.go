package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateRange is a closed range of calendar days. End is inclusive.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange validates end >= start. Both dates are truncated to midnight UTC.
func NewDateRange(start, end time.Time) (DateRange, error) {
	start = Midnight(start)
	end = Midnight(end)
	if end.Before(start) {
		return DateRange{}, fmt.Errorf("end date %s is before start date %s",
			end.Format("02-01-2006"), start.Format("02-01-2006"))
	}
	return DateRange{Start: start, End: end}, nil
}

// Days returns the number of calendar days in the range, inclusive.
func (r DateRange) Days() int {
	return int(r.End.Sub(r.Start)/(24*time.Hour)) + 1
}

// Midnight truncates t to 00:00 UTC of its calendar day.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// BatchRange is a contiguous 1-based index range of result items submitted
// together as one download job. Derived from the day's total count, never stored.
type BatchRange struct {
	Start int
	End   int
}

// Size is the number of items covered by the range.
func (b BatchRange) Size() int {
	return b.End - b.Start + 1
}

// String renders the range the way the results interface expects it, e.g. "1-250".
func (b BatchRange) String() string {
	return fmt.Sprintf("%d-%d", b.Start, b.End)
}

// DownloadOutcome summarizes one day's batch downloading.
type DownloadOutcome struct {
	ResultCount     int
	DownloadedCount int
}

// ProgressRecord is one day's row in the progress ledger.
type ProgressRecord struct {
	Day            time.Time
	Completed      bool
	ResultCount    int
	DownloadCount  int
	ElapsedSeconds float64
}

// HarvestRun records one invocation of the harvest command in the run journal.
type HarvestRun struct {
	ID          string          `json:"id"`
	StartDate   time.Time       `json:"start_date"`
	EndDate     time.Time       `json:"end_date"`
	Query       string          `json:"query"`
	Status      RunStatus       `json:"status"`
	StartedAt   time.Time       `json:"started_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
	Stats       json.RawMessage `json:"stats,omitempty"`
	Error       string          `json:"error,omitempty"`
}

type RunStatus string

const (
	RunStatusRunning RunStatus = "running"
	RunStatusSuccess RunStatus = "success"
	RunStatusFailed  RunStatus = "failed"
)

// HarvestStats is serialized into HarvestRun.Stats on completion.
type HarvestStats struct {
	DaysProcessed   int     `json:"days_processed"`
	DaysSkipped     int     `json:"days_skipped"`
	DaysFailed      int     `json:"days_failed"`
	TotalDocs       int     `json:"total_docs"`
	TotalDownloaded int     `json:"total_downloaded"`
	DurationSeconds float64 `json:"duration_seconds"`
}
