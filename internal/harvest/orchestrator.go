// Package harvest is the top-level control loop: it walks the date range one
// day at a time, drives the day's filter and batch downloads, files the
// downloaded documents and records durable progress.
package harvest

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"lexharvest/internal/collector"
	"lexharvest/internal/domain"
	"lexharvest/internal/infra/repos/runs"
	"lexharvest/internal/timeutil"
)

// ResultsPage is the slice of the site adapter the day loop needs.
type ResultsPage interface {
	ApplyDayFilter(day time.Time) error
	ResultCount() (int, error)
}

// BatchDownloader drives all download batches for one day's result count.
type BatchDownloader interface {
	DownloadAll(total int) (domain.DownloadOutcome, error)
}

// ProgressLedger is the durable per-day record store.
type ProgressLedger interface {
	Completed(day time.Time) (bool, error)
	Upsert(rec domain.ProgressRecord) error
}

// Orchestrator processes a date range strictly sequentially: the remote
// results interface holds single-session filter state that each day mutates,
// so days must run in calendar order, one at a time.
type Orchestrator struct {
	page        ResultsPage
	downloader  BatchDownloader
	ledger      ProgressLedger
	runRepo     runs.Repository
	downloadDir string
	log         *slog.Logger
}

func NewOrchestrator(
	page ResultsPage,
	downloader BatchDownloader,
	ledger ProgressLedger,
	runRepo runs.Repository,
	downloadDir string,
	log *slog.Logger,
) *Orchestrator {
	return &Orchestrator{
		page:        page,
		downloader:  downloader,
		ledger:      ledger,
		runRepo:     runRepo,
		downloadDir: downloadDir,
		log:         log,
	}
}

// Run iterates every day of the range in ascending order. Days already
// completed in the ledger are skipped; a failed day is logged and the loop
// moves on, it is never retried within the same run.
func (o *Orchestrator) Run(r domain.DateRange, query string) error {
	run := &domain.HarvestRun{
		StartDate: r.Start,
		EndDate:   r.End,
		Query:     query,
		Status:    domain.RunStatusRunning,
		StartedAt: time.Now(),
	}
	if o.runRepo != nil {
		if err := o.runRepo.Create(run); err != nil {
			return fmt.Errorf("create run record: %w", err)
		}
		o.log.Info("run started", "id", run.ID,
			"start", timeutil.FormatDay(r.Start), "end", timeutil.FormatDay(r.End))
	}

	stats := domain.HarvestStats{}
	for _, day := range timeutil.Days(r.Start, r.End) {
		dayKey := timeutil.FormatDay(day)

		done, err := o.ledger.Completed(day)
		if err != nil {
			o.log.Warn("ledger read failed, not skipping", "day", dayKey, "error", err)
		} else if done {
			o.log.Info("day already completed, skipping", "day", dayKey)
			stats.DaysSkipped++
			continue
		}

		outcome, err := o.processDay(day)
		if err != nil {
			o.log.Error("day failed", "day", dayKey, "error", err)
			stats.DaysFailed++
			continue
		}
		stats.DaysProcessed++
		stats.TotalDocs += outcome.ResultCount
		stats.TotalDownloaded += outcome.DownloadedCount
	}

	if o.runRepo != nil {
		now := time.Now()
		stats.DurationSeconds = now.Sub(run.StartedAt).Seconds()
		statsJSON, _ := json.Marshal(stats)
		run.Stats = statsJSON
		run.Status = domain.RunStatusSuccess
		run.CompletedAt = &now
		if err := o.runRepo.Update(run); err != nil {
			o.log.Error("run record not updated", "id", run.ID, "error", err)
		}
	}

	o.log.Info("range completed",
		"processed", stats.DaysProcessed, "skipped", stats.DaysSkipped,
		"failed", stats.DaysFailed, "downloaded", stats.TotalDownloaded)
	return nil
}

// processDay runs one day end to end. The ledger row is only written at the
// very end, so an interruption anywhere leaves the day incomplete and it is
// retried in full on the next run.
func (o *Orchestrator) processDay(day time.Time) (domain.DownloadOutcome, error) {
	dayKey := timeutil.FormatDay(day)

	before, err := collector.Take(o.downloadDir)
	if err != nil {
		return domain.DownloadOutcome{}, err
	}

	start := time.Now()

	if err := o.page.ApplyDayFilter(day); err != nil {
		return domain.DownloadOutcome{}, fmt.Errorf("apply day filter: %w", err)
	}

	count, err := o.page.ResultCount()
	if err != nil {
		return domain.DownloadOutcome{}, fmt.Errorf("read result count: %w", err)
	}
	o.log.Info("day filtered", "day", dayKey, "results", count)

	outcome := domain.DownloadOutcome{}
	if count > 0 {
		outcome, err = o.downloader.DownloadAll(count)
		if err != nil {
			return outcome, err
		}
	}

	// The download directory is only read after every batch's completion
	// wait has resolved, so the diff does not race in-flight downloads.
	after, err := collector.Take(o.downloadDir)
	if err != nil {
		return outcome, err
	}
	if newFiles := collector.Diff(before, after); len(newFiles) > 0 {
		dest := filepath.Join(o.downloadDir, dayKey)
		moved, err := collector.Relocate(newFiles, dest, o.log)
		if err != nil {
			return outcome, err
		}
		o.log.Info("files relocated", "day", dayKey, "moved", moved, "new", len(newFiles))
	}

	elapsed := time.Since(start).Seconds()

	rec := domain.ProgressRecord{
		Day:            day,
		Completed:      true,
		ResultCount:    outcome.ResultCount,
		DownloadCount:  outcome.DownloadedCount,
		ElapsedSeconds: elapsed,
	}
	if err := o.ledger.Upsert(rec); err != nil {
		return outcome, fmt.Errorf("update ledger: %w", err)
	}
	return outcome, nil
}
