// Package pages contains page objects for the discover demo.
//
// A page object wraps one playwright.Page and exposes the interactions tests need.
// Every blocking call is bounded by a timeout and returns a classified error from
// internal/errs. Probes that only inspect the page return a default value instead.
package pages

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/networkteam/discover-e2e/config"
	"github.com/networkteam/discover-e2e/internal/errs"
)

// visibilityGrace is how long IsVisible waits unless overridden.
const visibilityGrace = 5 * time.Second

// Option configures a page object.
type Option func(*BasePage)

// WithLogger sets the logger. Default: slog.Default()
func WithLogger(logger *slog.Logger) Option {
	return func(p *BasePage) {
		p.logger = logger
	}
}

// WithSleep replaces the function used for settle delays. Default: time.Sleep
func WithSleep(sleep func(time.Duration)) Option {
	return func(p *BasePage) {
		p.sleep = sleep
	}
}

// WithClock replaces the clock used for timestamped screenshots. Default: time.Now
func WithClock(now func() time.Time) Option {
	return func(p *BasePage) {
		p.now = now
	}
}

// WithScreenshotPrefix prepends prefix and an underscore to every screenshot name.
// Page objects of tests running in parallel use distinct prefixes so their files do not collide.
func WithScreenshotPrefix(prefix string) Option {
	return func(p *BasePage) {
		p.screenshotPrefix = prefix
	}
}

// CallOption adjusts a single interaction.
type CallOption func(*callOptions)

type callOptions struct {
	timeout time.Duration
}

// WithTimeout overrides the timeout of one interaction.
func WithTimeout(timeout time.Duration) CallOption {
	return func(o *callOptions) {
		o.timeout = timeout
	}
}

// BasePage provides the interactions shared by all page objects.
type BasePage struct {
	page             playwright.Page
	timeout          time.Duration
	screenshotDir    string
	screenshotPrefix string

	logger *slog.Logger
	sleep  func(time.Duration)
	now    func() time.Time
}

// NewBasePage wraps page. Timeouts and the screenshot directory come from cfg.
func NewBasePage(page playwright.Page, cfg config.Config, opts ...Option) *BasePage {
	p := &BasePage{
		page:          page,
		timeout:       cfg.Timeout(),
		screenshotDir: cfg.ScreenshotDir,
		logger:        slog.Default(),
		sleep:         time.Sleep,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Page returns the wrapped playwright page.
func (p *BasePage) Page() playwright.Page {
	return p.page
}

// Logger returns the logger of the page object.
func (p *BasePage) Logger() *slog.Logger {
	return p.logger
}

func (p *BasePage) timeoutFor(opts []CallOption, fallback time.Duration) *float64 {
	o := callOptions{timeout: fallback}
	for _, opt := range opts {
		opt(&o)
	}
	return playwright.Float(float64(o.timeout.Milliseconds()))
}

func (p *BasePage) ensureOpen(op string) error {
	if p.page == nil || p.page.IsClosed() {
		return errs.New(errs.InvalidConfig, op, "page is closed")
	}
	return nil
}

// settle waits a fixed delay for the application to react.
func (p *BasePage) settle(d time.Duration) {
	p.sleep(d)
}

// Navigate opens url and waits until the network is idle and the DOM is loaded.
func (p *BasePage) Navigate(url string, opts ...CallOption) error {
	const op = "page.navigate"
	if err := p.ensureOpen(op); err != nil {
		return err
	}

	p.logger.Info("Navigating to "+url, "url", url)
	timeout := p.timeoutFor(opts, p.timeout)
	if _, err := p.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
		Timeout:   timeout,
	}); err != nil {
		return errs.FromDriver(op, err)
	}
	if err := p.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateDomcontentloaded,
		Timeout: timeout,
	}); err != nil {
		return errs.FromDriver(op, err)
	}
	return nil
}

// Click clicks the first element of locator once it is actionable.
func (p *BasePage) Click(locator string, opts ...CallOption) error {
	const op = "page.click"
	if err := p.ensureOpen(op); err != nil {
		return err
	}

	p.logger.Info("Clicking element", "locator", locator)
	err := p.page.Locator(locator).First().Click(playwright.LocatorClickOptions{
		Timeout: p.timeoutFor(opts, p.timeout),
	})
	return errs.FromDriver(op, err)
}

// Fill replaces the value of the input matched by locator.
func (p *BasePage) Fill(locator, text string, opts ...CallOption) error {
	const op = "page.fill"
	if err := p.ensureOpen(op); err != nil {
		return err
	}

	p.logger.Info("Filling input", "locator", locator, "text", text)
	err := p.page.Locator(locator).First().Fill(text, playwright.LocatorFillOptions{
		Timeout: p.timeoutFor(opts, p.timeout),
	})
	return errs.FromDriver(op, err)
}

// Press presses key while the element matched by locator is focused.
func (p *BasePage) Press(locator, key string, opts ...CallOption) error {
	const op = "page.press"
	if err := p.ensureOpen(op); err != nil {
		return err
	}

	err := p.page.Locator(locator).First().Press(key, playwright.LocatorPressOptions{
		Timeout: p.timeoutFor(opts, p.timeout),
	})
	return errs.FromDriver(op, err)
}

// Text waits until locator is visible and returns its trimmed text content.
func (p *BasePage) Text(locator string, opts ...CallOption) (string, error) {
	const op = "page.text"
	element, err := p.WaitFor(locator, playwright.WaitForSelectorStateVisible, opts...)
	if err != nil {
		return "", err
	}
	text, err := element.TextContent(playwright.LocatorTextContentOptions{
		Timeout: p.timeoutFor(opts, p.timeout),
	})
	if err != nil {
		return "", errs.FromDriver(op, err)
	}
	return strings.TrimSpace(text), nil
}

// WaitFor waits until the first element of locator reaches state and returns it.
func (p *BasePage) WaitFor(locator string, state *playwright.WaitForSelectorState, opts ...CallOption) (playwright.Locator, error) {
	const op = "page.wait_for"
	if err := p.ensureOpen(op); err != nil {
		return nil, err
	}

	element := p.page.Locator(locator).First()
	if err := element.WaitFor(playwright.LocatorWaitForOptions{
		State:   state,
		Timeout: p.timeoutFor(opts, p.timeout),
	}); err != nil {
		return nil, errs.FromDriver(op, err)
	}
	return element, nil
}

// IsVisible reports whether locator becomes visible within a short grace period.
// It never fails; any error counts as not visible.
func (p *BasePage) IsVisible(locator string, opts ...CallOption) bool {
	_, err := p.WaitFor(locator, playwright.WaitForSelectorStateVisible, append([]CallOption{WithTimeout(visibilityGrace)}, opts...)...)
	return err == nil
}

// Count returns the number of elements matched by locator.
func (p *BasePage) Count(locator string) (int, error) {
	const op = "page.count"
	if err := p.ensureOpen(op); err != nil {
		return 0, err
	}
	count, err := p.page.Locator(locator).Count()
	if err != nil {
		return 0, errs.FromDriver(op, err)
	}
	return count, nil
}

// ScrollIntoView scrolls the first element of locator into the viewport.
func (p *BasePage) ScrollIntoView(locator string, opts ...CallOption) error {
	const op = "page.scroll_into_view"
	if err := p.ensureOpen(op); err != nil {
		return err
	}
	err := p.page.Locator(locator).First().ScrollIntoViewIfNeeded(playwright.LocatorScrollIntoViewIfNeededOptions{
		Timeout: p.timeoutFor(opts, p.timeout),
	})
	return errs.FromDriver(op, err)
}

// Hover moves the mouse over the first element of locator.
func (p *BasePage) Hover(locator string, opts ...CallOption) error {
	const op = "page.hover"
	if err := p.ensureOpen(op); err != nil {
		return err
	}
	err := p.page.Locator(locator).First().Hover(playwright.LocatorHoverOptions{
		Timeout: p.timeoutFor(opts, p.timeout),
	})
	return errs.FromDriver(op, err)
}

// SelectOption selects option in the native select element matched by locator.
func (p *BasePage) SelectOption(locator, option string, opts ...CallOption) error {
	const op = "page.select_option"
	if err := p.ensureOpen(op); err != nil {
		return err
	}
	_, err := p.page.Locator(locator).First().SelectOption(playwright.SelectOptionValues{
		Values: &[]string{option},
	}, playwright.LocatorSelectOptionOptions{
		Timeout: p.timeoutFor(opts, p.timeout),
	})
	return errs.FromDriver(op, err)
}

// PressKey presses key on the page keyboard.
func (p *BasePage) PressKey(key string) error {
	const op = "page.press_key"
	if err := p.ensureOpen(op); err != nil {
		return err
	}
	return errs.FromDriver(op, p.page.Keyboard().Press(key))
}

// Title returns the document title.
func (p *BasePage) Title() (string, error) {
	const op = "page.title"
	if err := p.ensureOpen(op); err != nil {
		return "", err
	}
	title, err := p.page.Title()
	if err != nil {
		return "", errs.FromDriver(op, err)
	}
	return title, nil
}

// URL returns the current address of the page.
func (p *BasePage) URL() string {
	return p.page.URL()
}

// Reload reloads the page and waits until the network is idle.
func (p *BasePage) Reload(opts ...CallOption) error {
	const op = "page.reload"
	if err := p.ensureOpen(op); err != nil {
		return err
	}
	_, err := p.page.Reload(playwright.PageReloadOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
		Timeout:   p.timeoutFor(opts, p.timeout),
	})
	return errs.FromDriver(op, err)
}

// WaitForNetworkIdle waits until there are no network connections for at least 500ms.
func (p *BasePage) WaitForNetworkIdle(opts ...CallOption) error {
	const op = "page.wait_for_network_idle"
	if err := p.ensureOpen(op); err != nil {
		return err
	}
	err := p.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateNetworkidle,
		Timeout: p.timeoutFor(opts, p.timeout),
	})
	return errs.FromDriver(op, err)
}

// Screenshot saves a screenshot as <name>.png in the screenshot directory and returns its path.
// With a screenshot prefix the file is <prefix>_<name>.png.
func (p *BasePage) Screenshot(name string) (string, error) {
	const op = "page.screenshot"
	if err := p.ensureOpen(op); err != nil {
		return "", err
	}

	if p.screenshotPrefix != "" {
		name = p.screenshotPrefix + "_" + name
	}
	path := filepath.Join(p.screenshotDir, name+".png")
	if _, err := p.page.Screenshot(playwright.PageScreenshotOptions{
		Path: playwright.String(path),
	}); err != nil {
		return "", errs.FromDriver(op, err)
	}
	p.logger.Info("Screenshot saved: "+path, "path", path)
	return path, nil
}

// ScreenshotWithTimestamp saves a screenshot named <name>_<unix seconds>.
func (p *BasePage) ScreenshotWithTimestamp(name string) (string, error) {
	return p.Screenshot(fmt.Sprintf("%s_%d", name, p.now().Unix()))
}

// fail logs err, saves a screenshot named shot and returns err.
// A failing screenshot is logged but does not replace err.
func (p *BasePage) fail(msg string, shot string, err error) error {
	p.logger.Error(msg, "error", err)
	if _, shotErr := p.Screenshot(shot); shotErr != nil {
		p.logger.Warn("Could not save failure screenshot", "name", shot, "error", shotErr)
	}
	return err
}
