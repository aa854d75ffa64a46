package ledger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"lexharvest/internal/domain"
	"lexharvest/internal/timeutil"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := timeutil.ParseDay(s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func tempLedger(t *testing.T) *Ledger {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "progress.csv"))
}

func TestUpsertAbsentFileIsNoOp(t *testing.T) {
	t.Parallel()

	l := tempLedger(t)
	err := l.Upsert(domain.ProgressRecord{Day: day(t, "01-01-2025"), Completed: true})
	if err != nil {
		t.Fatalf("upsert on absent ledger failed: %v", err)
	}
	if l.Exists() {
		t.Fatal("upsert on absent ledger must not create the file")
	}
}

func TestInitWritesOneRowPerDay(t *testing.T) {
	t.Parallel()

	l := tempLedger(t)
	r, err := domain.NewDateRange(day(t, "01-01-2025"), day(t, "31-12-2025"))
	if err != nil {
		t.Fatal(err)
	}
	if err := l.Init(r); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	records, err := l.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 365 {
		t.Fatalf("got %d rows, want 365", len(records))
	}
	for _, rec := range records {
		if rec.Completed || rec.ResultCount != 0 || rec.DownloadCount != 0 {
			t.Fatalf("bootstrap row not incomplete: %+v", rec)
		}
	}
	if got := timeutil.FormatDay(records[0].Day); got != "01-01-2025" {
		t.Fatalf("first row is %s, want 01-01-2025", got)
	}
	if got := timeutil.FormatDay(records[364].Day); got != "31-12-2025" {
		t.Fatalf("last row is %s, want 31-12-2025", got)
	}
}

func TestUpsertUpdatesInPlace(t *testing.T) {
	t.Parallel()

	l := tempLedger(t)
	r, err := domain.NewDateRange(day(t, "01-01-2025"), day(t, "31-12-2025"))
	if err != nil {
		t.Fatal(err)
	}
	if err := l.Init(r); err != nil {
		t.Fatal(err)
	}

	rec := domain.ProgressRecord{Day: day(t, "01-01-2025"), Completed: true}
	if err := l.Upsert(rec); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	records, err := l.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 365 {
		t.Fatalf("row count changed to %d, want 365", len(records))
	}
	if !records[0].Completed || records[0].ResultCount != 0 || records[0].DownloadCount != 0 {
		t.Fatalf("first row = %+v, want completed with zero counts", records[0])
	}
	for _, other := range records[1:] {
		if other.Completed {
			t.Fatalf("unrelated row mutated: %+v", other)
		}
	}
}

func TestUpsertAppendsUnknownDay(t *testing.T) {
	t.Parallel()

	l := tempLedger(t)
	r, err := domain.NewDateRange(day(t, "01-01-2025"), day(t, "03-01-2025"))
	if err != nil {
		t.Fatal(err)
	}
	if err := l.Init(r); err != nil {
		t.Fatal(err)
	}

	rec := domain.ProgressRecord{
		Day: day(t, "15-06-2025"), Completed: true,
		ResultCount: 42, DownloadCount: 42, ElapsedSeconds: 1.25,
	}
	if err := l.Upsert(rec); err != nil {
		t.Fatal(err)
	}

	records, err := l.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 4 {
		t.Fatalf("got %d rows, want 4", len(records))
	}
	last := records[3]
	if timeutil.FormatDay(last.Day) != "15-06-2025" || last.ResultCount != 42 {
		t.Fatalf("appended row = %+v", last)
	}
	if last.ElapsedSeconds != 1.25 {
		t.Fatalf("elapsed = %v, want 1.25", last.ElapsedSeconds)
	}
}

func TestUpsertIsIdempotent(t *testing.T) {
	t.Parallel()

	l := tempLedger(t)
	r, err := domain.NewDateRange(day(t, "01-01-2025"), day(t, "02-01-2025"))
	if err != nil {
		t.Fatal(err)
	}
	if err := l.Init(r); err != nil {
		t.Fatal(err)
	}

	rec := domain.ProgressRecord{
		Day: day(t, "02-01-2025"), Completed: true,
		ResultCount: 7, DownloadCount: 7, ElapsedSeconds: 1.5,
	}
	if err := l.Upsert(rec); err != nil {
		t.Fatal(err)
	}
	first, err := os.ReadFile(l.Path())
	if err != nil {
		t.Fatal(err)
	}

	if err := l.Upsert(rec); err != nil {
		t.Fatal(err)
	}
	second, err := os.ReadFile(l.Path())
	if err != nil {
		t.Fatal(err)
	}

	if string(first) != string(second) {
		t.Fatalf("repeated upsert changed the file:\n%s\nvs\n%s", first, second)
	}
}

func TestLoadAcceptsCapitalizedBooleans(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "progress.csv")
	content := strings.Join([]string{
		"date,completed,num_docs,num_downloaded,time_taken",
		"01-01-2025,True,10,10,3.50",
		"02-01-2025,False,0,0,0.0",
		"",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	l := New(path)
	records, err := l.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if !records[0].Completed || records[1].Completed {
		t.Fatalf("boolean parsing wrong: %+v", records)
	}

	done, err := l.Completed(day(t, "01-01-2025"))
	if err != nil || !done {
		t.Fatalf("Completed = %v, %v; want true", done, err)
	}
	done, err = l.Completed(day(t, "02-01-2025"))
	if err != nil || done {
		t.Fatalf("Completed = %v, %v; want false", done, err)
	}
}

func TestCompletedOnAbsentLedger(t *testing.T) {
	t.Parallel()

	l := tempLedger(t)
	done, err := l.Completed(day(t, "01-01-2025"))
	if err != nil {
		t.Fatalf("Completed on absent ledger failed: %v", err)
	}
	if done {
		t.Fatal("absent ledger must never report completion")
	}
}

func TestHeaderAndFormat(t *testing.T) {
	t.Parallel()

	l := tempLedger(t)
	r, err := domain.NewDateRange(day(t, "05-03-2025"), day(t, "05-03-2025"))
	if err != nil {
		t.Fatal(err)
	}
	if err := l.Init(r); err != nil {
		t.Fatal(err)
	}
	if err := l.Upsert(domain.ProgressRecord{
		Day: day(t, "05-03-2025"), Completed: true,
		ResultCount: 3, DownloadCount: 3, ElapsedSeconds: 2.0,
	}); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(l.Path())
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if lines[0] != "date,completed,num_docs,num_downloaded,time_taken" {
		t.Fatalf("header = %q", lines[0])
	}
	if lines[1] != "05-03-2025,true,3,3,2.00" {
		t.Fatalf("row = %q", lines[1])
	}
}
