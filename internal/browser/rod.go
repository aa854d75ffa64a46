package browser

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Options configures the launched browser.
type Options struct {
	DownloadDir string
	UserDataDir string
	Headless    bool
}

// Driver implements Facade on a go-rod controlled Chromium.
type Driver struct {
	browser *rod.Browser
	page    *rod.Page
	opts    Options
}

// NewDriver launches a browser, preferring the system install over a
// downloaded Chromium, and connects to it.
func NewDriver(opts Options) (*Driver, error) {
	l := launcher.New().
		Headless(opts.Headless).
		Devtools(false).
		Set("disable-blink-features", "AutomationControlled").
		Set("exclude-switches", "enable-automation").
		Set("use-automation-extension", "false")

	if opts.UserDataDir != "" {
		l = l.UserDataDir(opts.UserDataDir)
	}
	if !opts.Headless {
		l = l.Set("start-maximized")
	}
	if path, _ := launcher.LookPath(); path != "" {
		l = l.Bin(path)
	}

	url, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	b := rod.New().ControlURL(url)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("connect to browser: %w", err)
	}

	return &Driver{browser: b, opts: opts}, nil
}

// Close shuts the browser down.
func (d *Driver) Close() error {
	if d.browser != nil {
		return d.browser.Close()
	}
	return nil
}

func (d *Driver) Navigate(url string) error {
	if d.page == nil {
		page, err := d.browser.Page(proto.TargetCreateTarget{URL: url})
		if err != nil {
			return fmt.Errorf("open page: %w", err)
		}
		d.page = page
		d.applyDownloadBehavior()
		return d.page.WaitLoad()
	}
	if err := d.page.Navigate(url); err != nil {
		return fmt.Errorf("navigate: %w", err)
	}
	return d.page.WaitLoad()
}

// applyDownloadBehavior routes the browser's own download process into the
// watched directory.
func (d *Driver) applyDownloadBehavior() {
	if d.opts.DownloadDir == "" || d.page == nil {
		return
	}
	_ = proto.PageSetDownloadBehavior{
		Behavior:     proto.PageSetDownloadBehaviorBehaviorAllow,
		DownloadPath: d.opts.DownloadDir,
	}.Call(d.page)
}

func (d *Driver) find(selector string, timeout time.Duration) (*rod.Element, error) {
	if d.page == nil {
		return nil, fmt.Errorf("no active page")
	}
	page := d.page.Timeout(timeout)
	if isXPath(selector) {
		return page.ElementX(selector)
	}
	return page.Element(selector)
}

func (d *Driver) FindVisible(selector string, timeout time.Duration) (Element, error) {
	el, err := d.find(selector, timeout)
	if err != nil {
		return nil, notFound(selector, err)
	}
	if err := el.WaitVisible(); err != nil {
		return nil, notFound(selector, err)
	}
	return &rodElement{el: el.CancelTimeout()}, nil
}

func (d *Driver) FindClickable(selector string, timeout time.Duration) (Element, error) {
	el, err := d.find(selector, timeout)
	if err != nil {
		return nil, notFound(selector, err)
	}
	if err := el.WaitVisible(); err != nil {
		return nil, notFound(selector, err)
	}
	if err := el.WaitEnabled(); err != nil {
		return nil, notFound(selector, err)
	}
	return &rodElement{el: el.CancelTimeout()}, nil
}

func (d *Driver) FindAll(selector string) ([]Element, error) {
	if d.page == nil {
		return nil, fmt.Errorf("no active page")
	}
	var els rod.Elements
	var err error
	if isXPath(selector) {
		els, err = d.page.ElementsX(selector)
	} else {
		els, err = d.page.Elements(selector)
	}
	if err != nil {
		return nil, err
	}
	out := make([]Element, len(els))
	for i, el := range els {
		out[i] = &rodElement{el: el}
	}
	return out, nil
}

func (d *Driver) WaitUntil(pred func() bool, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		if pred() {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(500 * time.Millisecond)
	}
}

func (d *Driver) WindowCount() (int, error) {
	pages, err := d.browser.Pages()
	if err != nil {
		return 0, err
	}
	return len(pages), nil
}

func (d *Driver) SwitchToLatestWindow() error {
	pages, err := d.browser.Pages()
	if err != nil {
		return err
	}
	if len(pages) == 0 {
		return fmt.Errorf("no open windows")
	}
	// rod lists the most recently opened target first.
	d.page = pages.First()
	d.applyDownloadBehavior()
	return d.page.WaitLoad()
}

func isXPath(selector string) bool {
	return strings.HasPrefix(selector, "//") || strings.HasPrefix(selector, "(//")
}

type rodElement struct {
	el *rod.Element
}

func (e *rodElement) Click() error {
	return e.el.Click(proto.InputMouseButtonLeft, 1)
}

func (e *rodElement) SetText(text string) error {
	// Select-all then type replaces any prior value, which also works for
	// masked inputs that ignore a plain clear.
	if err := e.el.SelectAllText(); err != nil {
		return err
	}
	return e.el.Input(text)
}

func (e *rodElement) Attribute(name string) (string, error) {
	val, err := e.el.Attribute(name)
	if err != nil {
		return "", err
	}
	if val == nil {
		return "", nil
	}
	return *val, nil
}

func (e *rodElement) Selected() (bool, error) {
	prop, err := e.el.Property("checked")
	if err != nil {
		return false, err
	}
	return prop.Bool(), nil
}
