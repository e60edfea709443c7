// Package runner runs the acceptance tests of a suite through go test and writes the HTML report.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/networkteam/discover-e2e/config"
	"github.com/networkteam/discover-e2e/internal/errs"
	"github.com/networkteam/discover-e2e/report"
)

// DefaultPackages are the packages holding the browser and API test cases.
var DefaultPackages = []string{"./acceptance/..."}

// ErrTestsFailed is returned by Run when at least one test failed.
var ErrTestsFailed = errors.New("tests failed")

var (
	passColor  = color.New(color.FgGreen)
	failColor  = color.New(color.FgRed)
	skipColor  = color.New(color.FgYellow)
	titleColor = color.New(color.Bold)
	faintColor = color.New(color.Faint)
)

// Options select what to run.
type Options struct {
	Suite    config.Suite
	Browser  config.BrowserKind
	Headed   bool
	Parallel int
	// ReportPath is where the HTML report is written.
	ReportPath string
	// ScreenshotDir is scanned for screenshots to include in the report.
	ScreenshotDir string
	// LogFile is passed to the tests so all packages log to the same file.
	LogFile string
	// Packages default to DefaultPackages.
	Packages []string
	// Timeout bounds the whole go test run. Default: 30m
	Timeout time.Duration
}

// Plan is a validated go test invocation.
type Plan struct {
	Options Options
	Name    string
	Args    []string
	// Env is added to the environment of the current process.
	Env []string
}

// NewPlan validates opts and builds the go test invocation.
func NewPlan(opts Options) (Plan, error) {
	const op = "runner.plan"

	suite, err := config.ParseSuite(string(opts.Suite))
	if err != nil {
		return Plan{}, err
	}
	browser, err := config.ParseBrowserKind(string(opts.Browser))
	if err != nil {
		return Plan{}, err
	}
	if opts.Parallel < 1 {
		return Plan{}, errs.New(errs.InvalidConfig, op, fmt.Sprintf("parallel must be at least 1, got %d", opts.Parallel))
	}
	if opts.ReportPath == "" {
		return Plan{}, errs.New(errs.InvalidConfig, op, "report path must not be empty")
	}
	opts.Suite = suite
	opts.Browser = browser
	if len(opts.Packages) == 0 {
		opts.Packages = DefaultPackages
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Minute
	}

	args := []string{
		"test",
		"-json",
		"-count=1",
		"-tags", "acceptance",
		"-timeout", opts.Timeout.String(),
		"-parallel", strconv.Itoa(opts.Parallel),
	}
	args = append(args, opts.Packages...)

	env := []string{
		"E2E_SUITE=" + string(suite),
		"BROWSER=" + string(browser),
		"HEADLESS=" + strconv.FormatBool(!opts.Headed),
	}
	if opts.ScreenshotDir != "" {
		// go test runs each package in its own directory
		abs, err := filepath.Abs(opts.ScreenshotDir)
		if err != nil {
			return Plan{}, errs.Wrap(errs.InvalidConfig, op, "resolving screenshot directory", err)
		}
		opts.ScreenshotDir = abs
		env = append(env, "SCREENSHOT_DIR="+opts.ScreenshotDir)
	}
	if opts.LogFile != "" {
		abs, err := filepath.Abs(opts.LogFile)
		if err != nil {
			return Plan{}, errs.Wrap(errs.InvalidConfig, op, "resolving log file", err)
		}
		opts.LogFile = abs
		env = append(env, "LOG_FILE="+opts.LogFile)
	}

	return Plan{
		Options: opts,
		Name:    "go",
		Args:    args,
		Env:     env,
	}, nil
}

// String returns the command line of the plan.
func (p Plan) String() string {
	return strings.Join(append(append(append([]string{}, p.Env...), p.Name), p.Args...), " ")
}

// CommandFunc creates the command executing a plan.
type CommandFunc func(ctx context.Context, name string, args ...string) *exec.Cmd

// Runner executes plans.
type Runner struct {
	Stdout  io.Writer
	Logger  *slog.Logger
	Command CommandFunc
	Now     func() time.Time
}

// New creates a Runner printing progress to stdout.
func New(stdout io.Writer, logger *slog.Logger) *Runner {
	return &Runner{
		Stdout:  stdout,
		Logger:  logger,
		Command: exec.CommandContext,
		Now:     time.Now,
	}
}

// Run executes plan, prints the progress of each test and writes the report.
// The returned error wraps ErrTestsFailed if a test failed; the run is returned either way.
func (r *Runner) Run(ctx context.Context, plan Plan) (*report.Run, error) {
	opts := plan.Options
	out := r.Stdout

	titleColor.Fprintln(out, "Discover E2E Test Runner")
	fmt.Fprintln(out, strings.Repeat("=", 50))
	fmt.Fprintf(out, "Suite: %s\nBrowser: %s\nMode: %s\nWorkers: %d\n\n", opts.Suite, opts.Browser, mode(opts.Headed), opts.Parallel)
	r.Logger.Info("Running tests", "suite", opts.Suite, "browser", opts.Browser, "command", plan.String())

	cmd := r.Command(ctx, plan.Name, plan.Args...)
	cmd.Env = append(cmd.Environ(), plan.Env...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("connecting to go test output: %w", err)
	}

	start := r.Now()
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting go test: %w", err)
	}

	run := report.NewRun(string(opts.Suite), string(opts.Browser))
	parseErr := report.Parse(stdout, run, func(e report.Event) {
		r.progress(e)
	})
	if parseErr != nil {
		// go test blocks on a full pipe until its output is read
		_, _ = io.Copy(io.Discard, stdout)
	}
	waitErr := cmd.Wait()
	run.Output.Write(stderr.Bytes())
	duration := r.Now().Sub(start)

	if parseErr != nil {
		return run, fmt.Errorf("reading go test output: %w", parseErr)
	}

	if err := r.writeReport(ctx, run, opts); err != nil {
		return run, err
	}

	counts := run.Counts()
	fmt.Fprintln(out)
	summary := fmt.Sprintf("%d passed, %d failed, %d skipped", counts.Passed, counts.Failed, counts.Skipped)
	failed := run.Failed() || waitErr != nil
	if failed {
		failColor.Fprintf(out, "%s tests FAILED (%s) %s\n", strings.ToUpper(string(opts.Suite)), duration.Round(time.Millisecond), summary)
	} else {
		passColor.Fprintf(out, "%s tests PASSED (%s) %s\n", strings.ToUpper(string(opts.Suite)), duration.Round(time.Millisecond), summary)
	}
	fmt.Fprintf(out, "\nTest reports available at:\n   HTML Report: %s\n   Screenshots: %s\n", opts.ReportPath, opts.ScreenshotDir)

	r.Logger.Info("Test run finished", "passed", counts.Passed, "failed", counts.Failed, "skipped", counts.Skipped, "duration", duration)

	if failed {
		if waitErr != nil && !run.Failed() {
			// go test failed without a failing test, e.g. a build error
			return run, fmt.Errorf("%w: go test: %w", ErrTestsFailed, waitErr)
		}
		return run, fmt.Errorf("%w: %d of %d", ErrTestsFailed, counts.Failed, counts.Total)
	}
	return run, nil
}

func (r *Runner) progress(e report.Event) {
	if e.Test == "" {
		return
	}
	elapsed := faintColor.Sprintf("(%.2fs)", e.Elapsed)
	switch e.Action {
	case report.ActionPass:
		passColor.Fprint(r.Stdout, "PASS ")
	case report.ActionFail:
		failColor.Fprint(r.Stdout, "FAIL ")
	case report.ActionSkip:
		skipColor.Fprint(r.Stdout, "SKIP ")
	default:
		return
	}
	fmt.Fprintf(r.Stdout, "%s %s\n", e.Test, elapsed)
}

func (r *Runner) writeReport(ctx context.Context, run *report.Run, opts Options) error {
	var shots []string
	if opts.ScreenshotDir != "" {
		found, err := report.FindScreenshots(opts.ScreenshotDir, opts.ReportPath)
		if err != nil {
			r.Logger.Warn("Could not list screenshots", "dir", opts.ScreenshotDir, "error", err)
		}
		shots = found
	}

	err := report.WriteFile(ctx, opts.ReportPath, report.Props{
		Run:         run,
		Title:       fmt.Sprintf("Discover E2E: %s suite", opts.Suite),
		Screenshots: shots,
		Generated:   r.Now(),
	})
	if err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	r.Logger.Info("Report written", "path", opts.ReportPath)
	return nil
}

func mode(headed bool) string {
	if headed {
		return "Headed"
	}
	return "Headless"
}
