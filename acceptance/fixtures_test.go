//go:build acceptance
// +build acceptance

package acceptance

import (
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/networkteam/discover-e2e/browser"
	"github.com/networkteam/discover-e2e/collector"
	"github.com/networkteam/discover-e2e/config"
	"github.com/networkteam/discover-e2e/logging"
	"github.com/networkteam/discover-e2e/pages"
	"github.com/networkteam/discover-e2e/tmdbapi"
)

// summaryLines is the number of log records and exchanges printed for a failed test.
const summaryLines = 20

// TestFixtures bundles all commonly needed test fixtures.
type TestFixtures struct {
	Cfg      config.Config
	Logger   *slog.Logger
	Recorder *collector.Recorder
	Session  *browser.Session
	Page     playwright.Page
	Home     *pages.HomePage
}

// requireSuite skips the test unless the selected suite includes one of tags.
func requireSuite(t *testing.T, tags ...config.Tag) {
	t.Helper()

	if !suiteConfig.Suite.Selects(tags...) {
		t.Skipf("not part of suite %s", suiteConfig.Suite)
	}
}

// newTestLogger returns a logger writing to the run log and to recorder.
func newTestLogger(t *testing.T, recorder *collector.Recorder) *slog.Logger {
	return harness.Logger(recorder).With("test", t.Name())
}

// trackResult writes the outcome of t to the results log and prints the recent
// traffic of a failed test.
func trackResult(t *testing.T, logger *slog.Logger, recorder *collector.Recorder) {
	t.Helper()

	start := time.Now()
	logging.TestStarted(logger, t.Name())
	t.Cleanup(func() {
		switch {
		case t.Skipped():
			logging.TestSkipped(logger, t.Name(), "skipped")
		case t.Failed():
			logging.TestFailed(logger, t.Name(), "assertion failed", time.Since(start))
			var summary strings.Builder
			if err := recorder.WriteSummary(&summary, summaryLines); err == nil {
				t.Log("\n" + summary.String())
			}
		default:
			logging.TestPassed(logger, t.Name(), time.Since(start))
		}
	})
}

// WithTestFixtures opens a page in its own browser context, registers cleanup with t.Cleanup()
// and calls the test function. The test is skipped unless the selected suite includes one of tags.
func WithTestFixtures(t *testing.T, tags []config.Tag, fn func(t *testing.T, f *TestFixtures)) {
	t.Helper()

	requireSuite(t, tags...)

	recorder := harness.NewRecorder()
	logger := newTestLogger(t, recorder)
	trackResult(t, logger, recorder)

	session := OpenSession(t, harness, recorder)

	fn(t, &TestFixtures{
		Cfg:      suiteConfig,
		Logger:   logger,
		Recorder: recorder,
		Session:  session,
		Page:     session.Page(),
		Home:     harness.HomePage(session, logger, pages.WithScreenshotPrefix(screenshotPrefix(t))),
	})
}

// WithAPIClient creates a TMDB client recording its traffic and calls the test function.
func WithAPIClient(t *testing.T, tags []config.Tag, fn func(t *testing.T, client *tmdbapi.Client)) {
	t.Helper()

	requireSuite(t, tags...)

	recorder := harness.NewRecorder()
	logger := newTestLogger(t, recorder)
	trackResult(t, logger, recorder)

	fn(t, harness.APIClient(recorder, logger))
}

// Screenshot saves a screenshot of the page, logging instead of failing when that is not possible.
func (f *TestFixtures) Screenshot(t *testing.T, name string) {
	t.Helper()

	if _, err := f.Home.Screenshot(name); err != nil {
		t.Logf("screenshot %s: %v", name, err)
	}
}

// screenshotPrefix turns the test name into a file name prefix, so parallel tests
// never overwrite each other's screenshots.
func screenshotPrefix(t *testing.T) string {
	return strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
}

// tags is shorthand for a tag list.
func tags(t ...config.Tag) []config.Tag {
	return t
}
