// Package ledger is the durable per-day progress store: a small CSV keyed by
// day, rewritten as a whole on every upsert so the file always holds a
// consistent snapshot.
package ledger

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"lexharvest/internal/domain"
	"lexharvest/internal/timeutil"
)

// Columns is the fixed ledger schema, in file order.
var Columns = []string{"date", "completed", "num_docs", "num_downloaded", "time_taken"}

// Ledger reads and rewrites a progress CSV. It assumes a single writer.
type Ledger struct {
	path string
}

func New(path string) *Ledger {
	return &Ledger{path: path}
}

// Path returns the backing file path.
func (l *Ledger) Path() string { return l.path }

// Exists reports whether the backing file is present. Upsert is a no-op
// without it; the ledger is optional.
func (l *Ledger) Exists() bool {
	_, err := os.Stat(l.path)
	return err == nil
}

// Load reads every record in file order. An absent file yields no records.
func (l *Ledger) Load() ([]domain.ProgressRecord, error) {
	f, err := os.Open(l.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	records := make([]domain.ProgressRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("ledger row %v: %w", row, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// Upsert updates the record for rec.Day in place, or appends it when the day
// is not present. The whole file is rewritten atomically. When the backing
// file does not exist the call is a silent no-op, so an absent ledger never
// fails a run. Calling Upsert twice with the same record is idempotent.
func (l *Ledger) Upsert(rec domain.ProgressRecord) error {
	if !l.Exists() {
		return nil
	}

	records, err := l.Load()
	if err != nil {
		return err
	}

	key := timeutil.FormatDay(rec.Day)
	updated := false
	for i := range records {
		if timeutil.FormatDay(records[i].Day) == key {
			records[i] = rec
			updated = true
			break
		}
	}
	if !updated {
		records = append(records, rec)
	}

	return l.rewrite(records)
}

// Completed reports whether the ledger holds a completed record for day.
// An absent ledger never reports completion.
func (l *Ledger) Completed(day time.Time) (bool, error) {
	records, err := l.Load()
	if err != nil {
		return false, err
	}
	key := timeutil.FormatDay(day)
	for _, rec := range records {
		if timeutil.FormatDay(rec.Day) == key {
			return rec.Completed, nil
		}
	}
	return false, nil
}

// Init creates (or overwrites) the ledger with one incomplete row per day of
// the range, in calendar order.
func (l *Ledger) Init(r domain.DateRange) error {
	records := make([]domain.ProgressRecord, 0, r.Days())
	for _, day := range timeutil.Days(r.Start, r.End) {
		records = append(records, domain.ProgressRecord{Day: day})
	}
	return l.rewrite(records)
}

// rewrite writes the full record set to a temp file in the same directory
// and renames it over the ledger, so readers never observe a partial file.
func (l *Ledger) rewrite(records []domain.ProgressRecord) error {
	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create ledger directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".progress-*.csv")
	if err != nil {
		return fmt.Errorf("create temp ledger: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	w := csv.NewWriter(tmp)
	if err := w.Write(Columns); err != nil {
		tmp.Close()
		return fmt.Errorf("write ledger header: %w", err)
	}
	for _, rec := range records {
		if err := w.Write(formatRow(rec)); err != nil {
			tmp.Close()
			return fmt.Errorf("write ledger row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp ledger: %w", err)
	}

	if err := os.Rename(tmpName, l.path); err != nil {
		return fmt.Errorf("replace ledger: %w", err)
	}
	return nil
}

func formatRow(rec domain.ProgressRecord) []string {
	return []string{
		timeutil.FormatDay(rec.Day),
		strconv.FormatBool(rec.Completed),
		strconv.Itoa(rec.ResultCount),
		strconv.Itoa(rec.DownloadCount),
		fmt.Sprintf("%.2f", rec.ElapsedSeconds),
	}
}

func parseRow(row []string) (domain.ProgressRecord, error) {
	if len(row) != len(Columns) {
		return domain.ProgressRecord{}, fmt.Errorf("expected %d columns, got %d", len(Columns), len(row))
	}

	day, err := timeutil.ParseDay(row[0])
	if err != nil {
		return domain.ProgressRecord{}, err
	}
	// ParseBool rejects "True"/"False"; lower-case first so hand-edited
	// ledgers still load.
	completed, err := strconv.ParseBool(strings.ToLower(strings.TrimSpace(row[1])))
	if err != nil {
		return domain.ProgressRecord{}, fmt.Errorf("completed: %w", err)
	}
	numDocs, err := strconv.Atoi(strings.TrimSpace(row[2]))
	if err != nil {
		return domain.ProgressRecord{}, fmt.Errorf("num_docs: %w", err)
	}
	numDownloaded, err := strconv.Atoi(strings.TrimSpace(row[3]))
	if err != nil {
		return domain.ProgressRecord{}, fmt.Errorf("num_downloaded: %w", err)
	}
	elapsed, err := strconv.ParseFloat(strings.TrimSpace(row[4]), 64)
	if err != nil {
		return domain.ProgressRecord{}, fmt.Errorf("time_taken: %w", err)
	}

	return domain.ProgressRecord{
		Day:            day,
		Completed:      completed,
		ResultCount:    numDocs,
		DownloadCount:  numDownloaded,
		ElapsedSeconds: elapsed,
	}, nil
}
