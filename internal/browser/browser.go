// Package browser defines the automation capability set the harvesting logic
// depends on, plus its go-rod implementation. Orchestration code never sees
// concrete locator strings beyond what its callers inject.
package browser

import (
	"errors"
	"fmt"
	"time"
)

// ErrNotFound marks an element lookup that did not match within its timeout.
// It is a typed outcome, not a generic fault: several call sites tolerate it.
var ErrNotFound = errors.New("element not found")

// NotFound reports whether err is (or wraps) a failed element lookup.
func NotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func notFound(selector string, cause error) error {
	return fmt.Errorf("%w: %s: %v", ErrNotFound, selector, cause)
}

// Element is a handle to a located page element.
type Element interface {
	// Click clicks the element.
	Click() error
	// SetText clears any current value and types text into the element.
	SetText(text string) error
	// Attribute returns the named attribute, or "" when absent.
	Attribute(name string) (string, error)
	// Selected reports whether a checkbox or radio element is checked.
	Selected() (bool, error)
}

// Facade is the bounded-wait automation capability set. Selectors starting
// with "//" are treated as XPath, everything else as CSS.
type Facade interface {
	// Navigate loads url in the active window and waits for the load event.
	Navigate(url string) error
	// FindVisible waits up to timeout for a visible match.
	FindVisible(selector string, timeout time.Duration) (Element, error)
	// FindClickable waits up to timeout for a visible, enabled match.
	FindClickable(selector string, timeout time.Duration) (Element, error)
	// FindAll returns every current match without waiting.
	FindAll(selector string) ([]Element, error)
	// WaitUntil polls pred until it returns true or timeout elapses.
	WaitUntil(pred func() bool, timeout time.Duration) bool
	// WindowCount returns the number of open windows.
	WindowCount() (int, error)
	// SwitchToLatestWindow makes the most recently opened window active.
	SwitchToLatestWindow() error
}
