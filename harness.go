// Package discover wires configuration, logging, browser sessions and the API client
// of the discover E2E tests together.
package discover

import (
	"log/slog"
	"net/http"
	"sync"

	slogmulti "github.com/samber/slog-multi"

	"github.com/networkteam/discover-e2e/browser"
	"github.com/networkteam/discover-e2e/collector"
	"github.com/networkteam/discover-e2e/config"
	"github.com/networkteam/discover-e2e/pages"
	"github.com/networkteam/discover-e2e/report"
	"github.com/networkteam/discover-e2e/tmdbapi"
)

// Instance is the entry point of the E2E harness. It owns one browser manager,
// shares its browser between sessions and hands out page objects and API clients.
type Instance struct {
	cfg     config.Config
	logger  *slog.Logger
	manager *browser.Manager
	options Options

	launchOnce sync.Once
	launchErr  error
}

// Options configures an Instance.
type Options struct {
	// Logger receives the log records of the harness and of all page objects.
	// Default: slog.Default()
	Logger *slog.Logger
	// StartFunc starts the automation driver.
	// Default: nil, will use browser.StartPlaywright
	StartFunc browser.StartFunc
	// RecorderOptions are the options for the recorder of each session.
	// Default: zero value, will use collector.DefaultOptions()
	RecorderOptions collector.Options
	// PageOptions are applied to every page object.
	PageOptions []pages.Option
	// HTTPClient is used by API clients.
	// Default: nil, will use a client with a 10 second timeout
	HTTPClient *http.Client
}

// New creates a harness for cfg with default options.
func New(cfg config.Config) *Instance {
	return NewWithOptions(cfg, Options{})
}

// NewWithOptions creates a harness for cfg.
//
// Nothing is started until the first session is opened. The browser is launched once
// and shared, each session gets its own context and page.
func NewWithOptions(cfg config.Config, options Options) *Instance {
	if options.Logger == nil {
		options.Logger = slog.Default()
	}

	managerOptions := []browser.Option{browser.WithLogger(options.Logger)}
	if options.StartFunc != nil {
		managerOptions = append(managerOptions, browser.WithStartFunc(options.StartFunc))
	}

	return &Instance{
		cfg:     cfg,
		logger:  options.Logger,
		manager: browser.NewManager(cfg, managerOptions...),
		options: options,
	}
}

// Config returns the configuration of the harness.
func (i *Instance) Config() config.Config {
	return i.cfg
}

// Manager returns the browser manager.
func (i *Instance) Manager() *browser.Manager {
	return i.manager
}

// NewRecorder creates a recorder for the traffic and logs of one test.
func (i *Instance) NewRecorder() *collector.Recorder {
	options := i.options.RecorderOptions
	if options.Logger == nil {
		options.Logger = i.logger
	}
	return collector.NewRecorderWithOptions(options)
}

// Logger returns a logger writing to the harness logger and to recorder.
func (i *Instance) Logger(recorder *collector.Recorder) *slog.Logger {
	return slog.New(slogmulti.Fanout(
		i.logger.Handler(),
		recorder.Handler(slog.LevelDebug),
	))
}

func (i *Instance) launch() error {
	i.launchOnce.Do(func() {
		if err := i.manager.Start(); err != nil {
			i.launchErr = err
			return
		}
		_, i.launchErr = i.manager.LaunchConfigured()
	})
	return i.launchErr
}

// OpenSession launches the configured browser if needed and opens a context and page
// recording into recorder. The caller closes the session.
func (i *Instance) OpenSession(recorder *collector.Recorder) (*browser.Session, error) {
	if err := i.launch(); err != nil {
		return nil, err
	}

	session, err := i.manager.NewSession()
	if err != nil {
		return nil, err
	}
	if _, err := session.CreateContext(browser.ContextOptions{Recorder: recorder}); err != nil {
		_ = session.Close()
		return nil, err
	}
	if _, err := session.CreatePage(); err != nil {
		_ = session.Close()
		return nil, err
	}
	return session, nil
}

// HomePage returns the home page object for the page of session, logging to logger.
// opts are applied after Options.PageOptions.
func (i *Instance) HomePage(session *browser.Session, logger *slog.Logger, opts ...pages.Option) *pages.HomePage {
	pageOpts := append([]pages.Option{pages.WithLogger(logger)}, i.options.PageOptions...)
	pageOpts = append(pageOpts, opts...)
	return pages.NewHomePage(session.Page(), i.cfg, pageOpts...)
}

// APIClient creates a TMDB client recording into recorder and logging to logger.
func (i *Instance) APIClient(recorder *collector.Recorder, logger *slog.Logger) *tmdbapi.Client {
	opts := []tmdbapi.Option{
		tmdbapi.WithLogger(logger),
	}
	if i.options.HTTPClient != nil {
		opts = append(opts, tmdbapi.WithHTTPClient(i.options.HTTPClient))
	}
	opts = append(opts, tmdbapi.WithRecorder(recorder))
	return tmdbapi.NewClient(i.cfg, opts...)
}

// ReportHandler serves the reports directory below pathPrefix.
func (i *Instance) ReportHandler(dir, pathPrefix string) http.Handler {
	return report.NewHandler(dir, report.WithPathPrefix(pathPrefix))
}

// Close closes all sessions, the browser and the driver.
func (i *Instance) Close() error {
	return i.manager.Cleanup()
}
