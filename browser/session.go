package browser

import (
	"errors"
	"sync"

	"github.com/playwright-community/playwright-go"

	"github.com/networkteam/discover-e2e/collector"
	"github.com/networkteam/discover-e2e/internal/errs"
)

// DefaultViewport is the viewport of every context unless overridden.
var DefaultViewport = playwright.Size{Width: 1920, Height: 1080}

// ContextOptions configures a browser context. Zero fields fall back to defaults.
type ContextOptions struct {
	// Viewport defaults to DefaultViewport.
	Viewport *playwright.Size
	// IgnoreHTTPSErrors defaults to true.
	IgnoreHTTPSErrors *bool
	// VideoDir enables video recording into the directory. Defaults to the configured VIDEO_DIR.
	VideoDir string
	// Recorder receives the network traffic of the context. A new one is created if nil.
	Recorder *collector.Recorder
}

// Session is one browser context with at most one page on a shared browser.
type Session struct {
	manager *Manager

	mu       sync.Mutex
	context  playwright.BrowserContext
	page     playwright.Page
	recorder *collector.Recorder
}

func newSession(m *Manager) *Session {
	return &Session{manager: m}
}

// CreateContext opens a browser context. A session holds one context at a time.
func (s *Session) CreateContext(opts ContextOptions) (playwright.BrowserContext, error) {
	const op = "browser.create_context"

	browser := s.manager.Browser()
	if browser == nil {
		return nil, errs.New(errs.InvalidConfig, op, "browser not launched, call Launch first")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.context != nil {
		return nil, errs.New(errs.InvalidConfig, op, "context already created")
	}

	viewport := DefaultViewport
	if opts.Viewport != nil {
		viewport = *opts.Viewport
	}
	ignoreHTTPSErrors := true
	if opts.IgnoreHTTPSErrors != nil {
		ignoreHTTPSErrors = *opts.IgnoreHTTPSErrors
	}
	options := playwright.BrowserNewContextOptions{
		Viewport:          &viewport,
		IgnoreHttpsErrors: playwright.Bool(ignoreHTTPSErrors),
	}
	videoDir := opts.VideoDir
	if videoDir == "" {
		videoDir = s.manager.cfg.VideoDir
	}
	if videoDir != "" {
		options.RecordVideo = &playwright.RecordVideo{Dir: videoDir}
	}

	context, err := browser.NewContext(options)
	if err != nil {
		return nil, errs.FromDriver(op, err)
	}

	recorder := opts.Recorder
	if recorder == nil {
		recorder = collector.NewRecorderWithOptions(collector.Options{Logger: s.manager.logger})
	}
	recorder.Attach(context)

	s.context = context
	s.recorder = recorder
	s.manager.logger.Info("Browser context created", "viewport", viewport, "video", videoDir != "")
	return context, nil
}

// CreatePage opens a page in the session's context with the configured default timeout.
func (s *Session) CreatePage() (playwright.Page, error) {
	const op = "browser.create_page"

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.context == nil {
		return nil, errs.New(errs.InvalidConfig, op, "context not created, call CreateContext first")
	}
	if s.page != nil {
		return nil, errs.New(errs.InvalidConfig, op, "page already created")
	}

	page, err := s.context.NewPage()
	if err != nil {
		return nil, errs.FromDriver(op, err)
	}
	page.SetDefaultTimeout(float64(s.manager.cfg.TimeoutMillis))

	s.page = page
	s.manager.logger.Info("New page created")
	return page, nil
}

// Page returns the current page or nil.
func (s *Session) Page() playwright.Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page
}

// Context returns the current context or nil.
func (s *Session) Context() playwright.BrowserContext {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.context
}

// Recorder returns the traffic recorder of the current context or nil.
func (s *Session) Recorder() *collector.Recorder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recorder
}

// ClosePage closes the page if open.
func (s *Session) ClosePage() error {
	s.mu.Lock()
	page := s.page
	s.page = nil
	s.mu.Unlock()

	if page == nil {
		return nil
	}
	if err := page.Close(); err != nil && !errors.Is(err, playwright.ErrTargetClosed) {
		return errs.FromDriver("browser.close_page", err)
	}
	s.manager.logger.Info("Page closed")
	return nil
}

// CloseContext closes the page and then the context.
func (s *Session) CloseContext() error {
	pageErr := s.ClosePage()

	s.mu.Lock()
	context := s.context
	s.context = nil
	s.mu.Unlock()

	if context == nil {
		return pageErr
	}
	if err := context.Close(); err != nil && !errors.Is(err, playwright.ErrTargetClosed) {
		return errors.Join(pageErr, errs.FromDriver("browser.close_context", err))
	}
	s.manager.logger.Info("Browser context closed")
	return pageErr
}

// Close releases the page and the context of the session and removes it from the manager.
func (s *Session) Close() error {
	err := s.CloseContext()
	s.manager.release(s)
	return err
}
