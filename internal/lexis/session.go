// Package lexis adapts the Lexis results interface to the harvesting logic:
// session bootstrap, language and day filters, and result counting. It is
// the only package that knows this site's markup.
package lexis

import (
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"lexharvest/internal/browser"
	"lexharvest/internal/timeutil"
)

// settleDelay gives the results pane a moment to refresh after a filter
// mutation before the next interaction.
const settleDelay = 3 * time.Second

// Session holds one browser session on the results interface. The remote
// interface keeps single-session filter state, so a Session must be driven
// strictly sequentially.
type Session struct {
	facade  browser.Facade
	timeout time.Duration
	settle  time.Duration
	log     *slog.Logger
}

func NewSession(facade browser.Facade, timeout time.Duration, log *slog.Logger) *Session {
	return &Session{facade: facade, timeout: timeout, settle: settleDelay, log: log}
}

// BuildFilteredSearchURL takes a search URL copied with the desired filters
// already applied and swaps only the search terms, keeping the rest intact.
func BuildFilteredSearchURL(baseSearchURL, query string) (string, error) {
	u, err := url.Parse(baseSearchURL)
	if err != nil {
		return "", fmt.Errorf("parse search url: %w", err)
	}
	q := u.Query()
	q.Set("pdsearchterms", query)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Open navigates to the library catalog page, follows the "Available Online"
// link into the new window it opens, enters the search query and runs it.
func (s *Session) Open(catalogURL, query string) error {
	if err := s.facade.Navigate(catalogURL); err != nil {
		return fmt.Errorf("open catalog page: %w", err)
	}

	link, err := s.facade.FindClickable(availableOnlineButton, s.timeout)
	if err != nil {
		return fmt.Errorf("available-online link: %w", err)
	}

	before, err := s.facade.WindowCount()
	if err != nil {
		return fmt.Errorf("count windows: %w", err)
	}
	if err := link.Click(); err != nil {
		return fmt.Errorf("available-online link: %w", err)
	}

	opened := s.facade.WaitUntil(func() bool {
		n, err := s.facade.WindowCount()
		return err == nil && n > before
	}, s.timeout)
	if !opened {
		return fmt.Errorf("results window did not open")
	}
	if err := s.facade.SwitchToLatestWindow(); err != nil {
		return fmt.Errorf("switch to results window: %w", err)
	}

	box, err := s.facade.FindVisible(searchBox, s.timeout)
	if err != nil {
		return fmt.Errorf("search box: %w", err)
	}
	if err := box.Click(); err != nil {
		return fmt.Errorf("search box: %w", err)
	}
	if err := box.SetText(query); err != nil {
		return fmt.Errorf("search box: %w", err)
	}

	submit, err := s.facade.FindClickable(searchButton, s.timeout)
	if err != nil {
		return fmt.Errorf("search button: %w", err)
	}
	if err := submit.Click(); err != nil {
		return fmt.Errorf("search button: %w", err)
	}
	return nil
}

// ApplyLanguageFilter restricts the results to one language. The accordion
// is expanded first when collapsed.
func (s *Session) ApplyLanguageFilter(language string) error {
	trigger, err := s.facade.FindVisible(languageTrigger, s.timeout)
	if err != nil {
		return fmt.Errorf("language accordion: %w", err)
	}
	class, err := trigger.Attribute("class")
	if err != nil {
		return fmt.Errorf("language accordion: %w", err)
	}
	if !strings.Contains(class, "expanded") {
		if err := trigger.Click(); err != nil {
			return fmt.Errorf("language accordion: %w", err)
		}
	}

	label, err := s.facade.FindClickable(fmt.Sprintf(languageLabelTemplate, language), s.timeout)
	if err != nil {
		return fmt.Errorf("language %q: %w", language, err)
	}
	if err := label.Click(); err != nil {
		return fmt.Errorf("language %q: %w", language, err)
	}
	time.Sleep(s.settle)
	return nil
}

// ApplyDayFilter sets the timeline filter to the single given day: it clears
// any active chip, sets both bounds to the day and confirms.
func (s *Session) ApplyDayFilter(day time.Time) error {
	s.clearTimelineChip()

	trigger, err := s.facade.FindVisible(timelineTrigger, s.timeout)
	if err != nil {
		return fmt.Errorf("timeline accordion: %w", err)
	}
	class, err := trigger.Attribute("class")
	if err != nil {
		return fmt.Errorf("timeline accordion: %w", err)
	}
	if strings.Contains(class, "collapsed") {
		if err := trigger.Click(); err != nil {
			return fmt.Errorf("timeline accordion: %w", err)
		}
	}

	dayStr := day.Format(timeutil.FilterFormat)
	for _, sel := range []string{timelineMin, timelineMax} {
		input, err := s.facade.FindVisible(sel, s.timeout)
		if err != nil {
			return fmt.Errorf("timeline input: %w", err)
		}
		if err := input.SetText(dayStr); err != nil {
			return fmt.Errorf("timeline input: %w", err)
		}
	}

	save, err := s.facade.FindClickable(timelineSave, s.timeout)
	if err != nil {
		return fmt.Errorf("timeline confirm: %w", err)
	}
	if err := save.Click(); err != nil {
		return fmt.Errorf("timeline confirm: %w", err)
	}
	time.Sleep(s.settle)
	return nil
}

// clearTimelineChip removes an active timeline filter chip. A missing chip
// means there is nothing to clear.
func (s *Session) clearTimelineChip() {
	chip, err := s.facade.FindClickable(timelineChip, 10*time.Second)
	if err != nil {
		if !browser.NotFound(err) {
			s.log.Debug("timeline chip lookup failed", "error", err)
		}
		return
	}
	if err := chip.Click(); err != nil {
		s.log.Debug("timeline chip not cleared", "error", err)
		return
	}
	time.Sleep(s.settle)
}

// ResultCount reads the displayed total for the first content type. Any
// non-numeric content counts as zero results rather than failing the day.
func (s *Session) ResultCount() (int, error) {
	tab, err := s.facade.FindVisible(resultsTab, s.timeout)
	if err != nil {
		return 0, fmt.Errorf("results tab: %w", err)
	}
	raw, err := tab.Attribute(resultCountAttr)
	if err != nil {
		return 0, fmt.Errorf("results tab: %w", err)
	}
	return parseResultCount(raw), nil
}

// parseResultCount strips the thousands separators and the "+" suffix the
// interface renders on large counts.
func parseResultCount(raw string) int {
	cleaned := strings.TrimSpace(strings.NewReplacer(".", "", "+", "").Replace(raw))
	n, err := strconv.Atoi(cleaned)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
