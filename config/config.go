package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/networkteam/discover-e2e/internal/errs"
)

// BrowserKind selects the browser engine to launch.
type BrowserKind string

const (
	Chromium BrowserKind = "chromium"
	Firefox  BrowserKind = "firefox"
	WebKit   BrowserKind = "webkit"
)

// BrowserKinds lists all supported browser engines.
var BrowserKinds = []BrowserKind{Chromium, Firefox, WebKit}

// ParseBrowserKind parses a browser name case-insensitively.
func ParseBrowserKind(s string) (BrowserKind, error) {
	kind := BrowserKind(strings.ToLower(strings.TrimSpace(s)))
	for _, k := range BrowserKinds {
		if k == kind {
			return k, nil
		}
	}
	return "", errs.New(errs.InvalidConfig, "config.browser", fmt.Sprintf("unsupported browser %q", s))
}

// Config holds all settings of a test run.
// It is loaded once and passed explicitly to everything that needs it.
type Config struct {
	// BaseURL is the address of the site under test.
	BaseURL string `envconfig:"BASE_URL" default:"https://tmdb-discover.surge.sh/"`
	// Browser is the engine used for UI tests.
	Browser BrowserKind `envconfig:"BROWSER" default:"chromium"`
	// Headless runs the browser without a window.
	Headless bool `envconfig:"HEADLESS" default:"false"`
	// TimeoutMillis is the default operation timeout in milliseconds.
	TimeoutMillis int `envconfig:"TIMEOUT" default:"30000"`
	// SlowMoMillis slows down every driver operation by the given milliseconds.
	SlowMoMillis int `envconfig:"SLOW_MO" default:"0"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"INFO"`
	LogFile  string `envconfig:"LOG_FILE" default:"logs/test_execution.log"`

	ScreenshotDir string `envconfig:"SCREENSHOT_DIR" default:"reports/screenshots"`
	// VideoDir enables video recording of browser contexts when set.
	VideoDir   string `envconfig:"VIDEO_DIR"`
	ReportPath string `envconfig:"REPORT_PATH" default:"reports/html/report.html"`

	// APIBaseURL is the TMDB REST endpoint used by API tests.
	APIBaseURL string `envconfig:"API_BASE_URL" default:"https://api.themoviedb.org/3"`
	// APIKey is optional; without it the API answers 401 with a structured error.
	APIKey string `envconfig:"TMDB_API_KEY"`

	// Suite selects which tagged tests run.
	Suite Suite `envconfig:"E2E_SUITE" default:"all"`
}

// Load reads an optional .env file from the working directory and then the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, errs.Wrap(errs.InvalidConfig, "config.load", "reading .env", err)
	}
	return FromEnv()
}

// FromEnv reads the configuration from environment variables only.
func FromEnv() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, errs.Wrap(errs.InvalidConfig, "config.load", "processing environment", err)
	}

	cfg.Browser = BrowserKind(strings.ToLower(string(cfg.Browser)))
	cfg.Suite = Suite(strings.ToLower(string(cfg.Suite)))

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default returns the configuration with all defaults applied, ignoring the environment.
func Default() Config {
	return Config{
		BaseURL:       "https://tmdb-discover.surge.sh/",
		Browser:       Chromium,
		TimeoutMillis: 30000,
		LogLevel:      "INFO",
		LogFile:       "logs/test_execution.log",
		ScreenshotDir: "reports/screenshots",
		ReportPath:    "reports/html/report.html",
		APIBaseURL:    "https://api.themoviedb.org/3",
		Suite:         SuiteAll,
	}
}

// ValidationError lists all problems found in a configuration.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("configuration validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

// Validate checks the configuration and returns an InvalidConfig error wrapping a *ValidationError.
func (c Config) Validate() error {
	var problems []string

	if u, err := url.Parse(c.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		problems = append(problems, fmt.Sprintf("BASE_URL must be an absolute URL, got %q", c.BaseURL))
	}
	if _, err := ParseBrowserKind(string(c.Browser)); err != nil {
		problems = append(problems, fmt.Sprintf("BROWSER must be one of chromium, firefox, webkit, got %q", c.Browser))
	}
	if c.TimeoutMillis <= 0 {
		problems = append(problems, fmt.Sprintf("TIMEOUT must be positive, got %d", c.TimeoutMillis))
	}
	if c.SlowMoMillis < 0 {
		problems = append(problems, fmt.Sprintf("SLOW_MO must not be negative, got %d", c.SlowMoMillis))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		problems = append(problems, err.Error())
	}
	if c.LogFile == "" {
		problems = append(problems, "LOG_FILE must not be empty")
	}
	if c.ScreenshotDir == "" {
		problems = append(problems, "SCREENSHOT_DIR must not be empty")
	}
	if u, err := url.Parse(c.APIBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		problems = append(problems, fmt.Sprintf("API_BASE_URL must be an absolute URL, got %q", c.APIBaseURL))
	}
	if _, err := ParseSuite(string(c.Suite)); err != nil {
		problems = append(problems, fmt.Sprintf("E2E_SUITE must be one of smoke, regression, api, ui, all, got %q", c.Suite))
	}

	if len(problems) > 0 {
		return errs.Wrap(errs.InvalidConfig, "config.validate", "", &ValidationError{Errors: problems})
	}
	return nil
}

// Timeout returns the default operation timeout.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutMillis) * time.Millisecond
}

// SlowMo returns the delay added to every driver operation.
func (c Config) SlowMo() time.Duration {
	return time.Duration(c.SlowMoMillis) * time.Millisecond
}

// Level returns the parsed console log level. Validate guarantees it parses.
func (c Config) Level() slog.Level {
	level, _ := ParseLevel(c.LogLevel)
	return level
}

// ParseLevel parses a log level name. WARNING and CRITICAL are accepted as aliases.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG", "TRACE":
		return slog.LevelDebug, nil
	case "INFO", "":
		return slog.LevelInfo, nil
	case "WARN", "WARNING":
		return slog.LevelWarn, nil
	case "ERROR", "CRITICAL":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("LOG_LEVEL must be one of DEBUG, INFO, WARNING, ERROR, got %q", s)
	}
}
