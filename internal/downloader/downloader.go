// Package downloader drives the batch acquisition protocol: it partitions a
// day's result count into bounded ranges and pushes each range through the
// download dialog. It depends only on the browser facade; every locator is
// injected through Selectors.
package downloader

import (
	"fmt"
	"log/slog"
	"time"

	"lexharvest/internal/browser"
	"lexharvest/internal/domain"
)

// Selectors locates the download dialog controls on the target results
// interface. IncludeOptions and StylingOptions controls may be absent; every
// other control is required.
type Selectors struct {
	OpenDialog         string
	DialogForm         string
	FullDocumentsRadio string
	RangeInput         string
	FormatRadio        string
	SeparateFilesRadio string
	FormattingTab      string
	FormattingPanel    string
	IncludeOptions     []string
	StylingOptions     string
	Submit             string
	JobIndicator       string
	JobSuccess         string
	ActiveJobs         string
}

// Waits bounds the blocking waits of the protocol.
type Waits struct {
	// Element bounds required-control lookups; a timeout escalates.
	Element time.Duration
	// Spinner bounds the job-in-progress indicator; a timeout is tolerated
	// because small batches can finish before the indicator renders.
	Spinner time.Duration
	// Success bounds the success status message; tolerated.
	Success time.Duration
	// Drain bounds the wait for the active-jobs list to empty; tolerated.
	Drain time.Duration
}

// Downloader submits one batch at a time, strictly in ascending range order.
type Downloader struct {
	facade browser.Facade
	sel    Selectors
	waits  Waits
	limit  int
	log    *slog.Logger
}

func New(facade browser.Facade, sel Selectors, waits Waits, batchLimit int, log *slog.Logger) *Downloader {
	return &Downloader{facade: facade, sel: sel, waits: waits, limit: batchLimit, log: log}
}

// Partition splits the closed interval [1, total] into contiguous ranges of
// size <= limit, ascending. All ranges are full except possibly the last.
func Partition(total, limit int) []domain.BatchRange {
	if total < 1 || limit < 1 {
		return nil
	}
	ranges := make([]domain.BatchRange, 0, (total+limit-1)/limit)
	for start := 1; start <= total; start += limit {
		end := start + limit - 1
		if end > total {
			end = total
		}
		ranges = append(ranges, domain.BatchRange{Start: start, End: end})
	}
	return ranges
}

// DownloadAll drives every batch for a day with total result items. A batch
// whose dialog cannot be operated escalates; tolerated waits never fail a
// batch, so its full range size still counts as downloaded.
func (d *Downloader) DownloadAll(total int) (domain.DownloadOutcome, error) {
	out := domain.DownloadOutcome{ResultCount: total}
	for _, r := range Partition(total, d.limit) {
		d.log.Info("downloading batch", "range", r.String(), "size", r.Size())
		if err := d.downloadRange(r); err != nil {
			return out, fmt.Errorf("batch %s: %w", r, err)
		}
		out.DownloadedCount += r.Size()
	}
	return out, nil
}

func (d *Downloader) downloadRange(r domain.BatchRange) error {
	open, err := d.facade.FindClickable(d.sel.OpenDialog, d.waits.Element)
	if err != nil {
		return fmt.Errorf("open dialog: %w", err)
	}
	if err := open.Click(); err != nil {
		return fmt.Errorf("open dialog: %w", err)
	}

	if _, err := d.facade.FindVisible(d.sel.DialogForm, d.waits.Element); err != nil {
		return fmt.Errorf("dialog form: %w", err)
	}

	if err := d.selectRadio(d.sel.FullDocumentsRadio); err != nil {
		return fmt.Errorf("full documents option: %w", err)
	}

	rangeInput, err := d.facade.FindVisible(d.sel.RangeInput, d.waits.Element)
	if err != nil {
		return fmt.Errorf("range input: %w", err)
	}
	if err := rangeInput.SetText(r.String()); err != nil {
		return fmt.Errorf("range input: %w", err)
	}

	if err := d.selectRadio(d.sel.FormatRadio); err != nil {
		return fmt.Errorf("format option: %w", err)
	}
	if r.Size() > 1 {
		if err := d.selectRadio(d.sel.SeparateFilesRadio); err != nil {
			return fmt.Errorf("separate files option: %w", err)
		}
	}

	if err := d.clearFormattingOptions(); err != nil {
		return err
	}

	submit, err := d.facade.FindClickable(d.sel.Submit, d.waits.Element)
	if err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	if err := submit.Click(); err != nil {
		return fmt.Errorf("submit: %w", err)
	}

	d.awaitCompletion(r)
	return nil
}

// clearFormattingOptions switches to the formatting panel and deselects every
// enabled option. Individually absent controls are skipped.
func (d *Downloader) clearFormattingOptions() error {
	tab, err := d.facade.FindClickable(d.sel.FormattingTab, d.waits.Element)
	if err != nil {
		return fmt.Errorf("formatting tab: %w", err)
	}
	if err := tab.Click(); err != nil {
		return fmt.Errorf("formatting tab: %w", err)
	}
	if _, err := d.facade.FindVisible(d.sel.FormattingPanel, d.waits.Element); err != nil {
		return fmt.Errorf("formatting panel: %w", err)
	}

	for _, sel := range d.sel.IncludeOptions {
		if err := d.uncheckIfChecked(sel); err != nil {
			d.log.Debug("formatting option not cleared", "selector", sel, "error", err)
		}
	}

	boxes, err := d.facade.FindAll(d.sel.StylingOptions)
	if err != nil {
		d.log.Debug("styling options not found", "error", err)
		return nil
	}
	for _, box := range boxes {
		checked, err := box.Selected()
		if err != nil || !checked {
			continue
		}
		if err := box.Click(); err != nil {
			d.log.Debug("styling option not cleared", "error", err)
		}
	}
	return nil
}

func (d *Downloader) selectRadio(selector string) error {
	el, err := d.facade.FindClickable(selector, d.waits.Element)
	if err != nil {
		return err
	}
	selected, err := el.Selected()
	if err != nil {
		return err
	}
	if !selected {
		return el.Click()
	}
	return nil
}

func (d *Downloader) uncheckIfChecked(selector string) error {
	// Absent optional checkboxes use a short lookup; there is nothing to wait for.
	el, err := d.facade.FindVisible(selector, 2*time.Second)
	if err != nil {
		return err
	}
	checked, err := el.Selected()
	if err != nil {
		return err
	}
	if checked {
		return el.Click()
	}
	return nil
}

// awaitCompletion is the two-tier completion wait: first for the in-progress
// indicator to appear, then for the success status, then for the active-jobs
// list to drain. Draining keeps a lingering job notification from
// intercepting the next batch's dialog. Every timeout here is tolerated so
// the loop cannot hang.
func (d *Downloader) awaitCompletion(r domain.BatchRange) {
	if _, err := d.facade.FindVisible(d.sel.JobIndicator, d.waits.Spinner); err != nil {
		d.log.Debug("job indicator never appeared", "range", r.String())
	}

	if _, err := d.facade.FindVisible(d.sel.JobSuccess, d.waits.Success); err != nil {
		d.log.Warn("no success status before timeout", "range", r.String())
	}

	drained := d.facade.WaitUntil(func() bool {
		jobs, err := d.facade.FindAll(d.sel.ActiveJobs)
		return err == nil && len(jobs) == 0
	}, d.waits.Drain)
	if !drained {
		d.log.Warn("active jobs did not drain before timeout", "range", r.String())
	}
}
