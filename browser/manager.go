package browser

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/samber/lo"

	"github.com/networkteam/discover-e2e/config"
	"github.com/networkteam/discover-e2e/internal/errs"
)

// chromiumArgs are passed to chromium on launch. Other engines reject them.
var chromiumArgs = []string{
	"--no-sandbox",
	"--disable-dev-shm-usage",
	"--disable-gpu",
	"--disable-extensions",
}

// Manager owns the automation driver and one browser process.
//
// Resources are acquired in the order driver, browser, context, page and released in reverse.
// Every close operation is idempotent. Contexts and pages live in Sessions, so parallel tests
// can share the browser while keeping their own context and page.
type Manager struct {
	cfg    config.Config
	logger *slog.Logger
	start  StartFunc

	mu             sync.Mutex
	driver         Driver
	browser        playwright.Browser
	kind           config.BrowserKind
	sessions       []*Session
	defaultSession *Session
}

// Option configures a Manager.
type Option func(*Manager)

// WithStartFunc replaces how the driver is started. Default: StartPlaywright
func WithStartFunc(start StartFunc) Option {
	return func(m *Manager) {
		m.start = start
	}
}

// WithLogger sets the logger. Default: slog.Default()
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a Manager. Nothing is started until Start is called.
func NewManager(cfg config.Config, opts ...Option) *Manager {
	m := &Manager{
		cfg:    cfg,
		logger: slog.Default(),
		start:  StartPlaywright,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start acquires the automation driver. Calling it again is a no-op.
func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.driver != nil {
		return nil
	}

	driver, err := m.start()
	if err != nil {
		return errs.FromDriver("browser.start", err)
	}
	m.driver = driver
	m.logger.Info("Playwright started")
	return nil
}

// Launch starts a browser of kind. The driver must be started and no browser may be running.
func (m *Manager) Launch(kind config.BrowserKind, headless bool, slowMo time.Duration) (playwright.Browser, error) {
	const op = "browser.launch"

	kind, err := config.ParseBrowserKind(string(kind))
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.driver == nil {
		return nil, errs.New(errs.InvalidConfig, op, "driver not started, call Start first")
	}
	if m.browser != nil {
		return nil, errs.New(errs.InvalidConfig, op, fmt.Sprintf("browser %s already launched", m.kind))
	}

	browserType := m.driver.BrowserType(kind)
	if browserType == nil {
		return nil, errs.New(errs.InvalidConfig, op, fmt.Sprintf("unsupported browser %q", kind))
	}

	options := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(headless),
		SlowMo:   playwright.Float(float64(slowMo.Milliseconds())),
	}
	if kind == config.Chromium {
		options.Args = chromiumArgs
	}

	browser, err := browserType.Launch(options)
	if err != nil {
		return nil, errs.FromDriver(op, err)
	}

	m.browser = browser
	m.kind = kind
	m.logger.Info("Browser launched", "browser", kind, "headless", headless)
	return browser, nil
}

// LaunchConfigured launches the browser selected by the configuration.
func (m *Manager) LaunchConfigured() (playwright.Browser, error) {
	return m.Launch(m.cfg.Browser, m.cfg.Headless, m.cfg.SlowMo())
}

// Browser returns the running browser or nil.
func (m *Manager) Browser() playwright.Browser {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.browser
}

// NewSession creates a session on the running browser.
func (m *Manager) NewSession() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.browser == nil {
		return nil, errs.New(errs.InvalidConfig, "browser.new_session", "browser not launched, call Launch first")
	}

	s := newSession(m)
	m.sessions = append(m.sessions, s)
	return s, nil
}

// OpenSessions returns the number of sessions not closed yet.
func (m *Manager) OpenSessions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// release forgets a closed session.
func (m *Manager) release(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions = lo.Without(m.sessions, s)
	if m.defaultSession == s {
		m.defaultSession = nil
	}
}

// CreateContext creates a context in the default session.
func (m *Manager) CreateContext(opts ContextOptions) (playwright.BrowserContext, error) {
	m.mu.Lock()
	if m.browser == nil {
		m.mu.Unlock()
		return nil, errs.New(errs.InvalidConfig, "browser.create_context", "browser not launched, call Launch first")
	}
	if m.defaultSession == nil {
		m.defaultSession = newSession(m)
		m.sessions = append(m.sessions, m.defaultSession)
	}
	s := m.defaultSession
	m.mu.Unlock()

	return s.CreateContext(opts)
}

// CreatePage creates a page in the context of the default session.
func (m *Manager) CreatePage() (playwright.Page, error) {
	s := m.currentDefaultSession()
	if s == nil {
		return nil, errs.New(errs.InvalidConfig, "browser.create_page", "context not created, call CreateContext first")
	}
	return s.CreatePage()
}

// ClosePage closes the page of the default session.
func (m *Manager) ClosePage() error {
	if s := m.currentDefaultSession(); s != nil {
		return s.ClosePage()
	}
	return nil
}

// CloseContext closes the context of the default session.
func (m *Manager) CloseContext() error {
	if s := m.currentDefaultSession(); s != nil {
		return s.CloseContext()
	}
	return nil
}

// Page returns the page of the default session or nil.
func (m *Manager) Page() playwright.Page {
	if s := m.currentDefaultSession(); s != nil {
		return s.Page()
	}
	return nil
}

func (m *Manager) currentDefaultSession() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.defaultSession
}

// CloseBrowser closes all sessions and then the browser.
func (m *Manager) CloseBrowser() error {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = nil
	m.defaultSession = nil
	m.mu.Unlock()

	var errList []error
	// Newest sessions first
	for i := len(sessions) - 1; i >= 0; i-- {
		errList = append(errList, sessions[i].Close())
	}

	m.mu.Lock()
	browser := m.browser
	m.browser = nil
	m.mu.Unlock()

	if browser != nil {
		if err := browser.Close(); err != nil {
			errList = append(errList, errs.FromDriver("browser.close", err))
		} else {
			m.logger.Info("Browser closed")
		}
	}
	return errors.Join(errList...)
}

// Stop closes the browser if still running and stops the driver.
func (m *Manager) Stop() error {
	err := m.CloseBrowser()

	m.mu.Lock()
	driver := m.driver
	m.driver = nil
	m.mu.Unlock()

	if driver != nil {
		if stopErr := driver.Stop(); stopErr != nil {
			err = errors.Join(err, errs.FromDriver("browser.stop", stopErr))
		} else {
			m.logger.Info("Playwright stopped")
		}
	}
	return err
}

// Cleanup releases everything in reverse order: pages, contexts, browser, driver.
func (m *Manager) Cleanup() error {
	return m.Stop()
}
