package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	slogmulti "github.com/samber/slog-multi"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/networkteam/discover-e2e/config"
)

const (
	// KindKey is the attribute key marking records for the test results log.
	KindKey = "kind"
	// KindTestResult is the KindKey value of test result records.
	KindTestResult = "test_result"
)

// ResultsRetentionDays is how long daily results files of earlier days are kept.
const ResultsRetentionDays = 7

const (
	resultsPrefix     = "test_results_"
	resultsDateLayout = "2006-01-02"
)

// Options tune the sinks of Setup. The zero value writes the console to stdout.
type Options struct {
	// Console receives the human readable output. Default: os.Stdout
	Console io.Writer
	// ResultsDir is where the daily test results file is written. Default: directory of the log file
	ResultsDir string
	// Now is used to name the daily results file. Default: time.Now
	Now func() time.Time
	// Extra handlers receive every record, e.g. a collector capturing logs per test.
	Extra []slog.Handler
}

// Logger is the configured logger together with the files it writes to.
type Logger struct {
	*slog.Logger

	closers []io.Closer
}

// Close flushes and closes all log files.
func (l *Logger) Close() error {
	var firstErr error
	for _, c := range l.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	l.closers = nil
	return firstErr
}

// Setup creates the logger for a test run.
//
// Records fan out to the console at the configured level, to a rotating log file at debug level
// and, for records tagged as test results, to a daily results file.
func Setup(cfg config.Config, opts Options) (*Logger, error) {
	if opts.Console == nil {
		opts.Console = os.Stdout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.ResultsDir == "" {
		opts.ResultsDir = filepath.Dir(cfg.LogFile)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	if err := os.MkdirAll(opts.ResultsDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating results directory: %w", err)
	}

	logFile := &lumberjack.Logger{
		Filename: cfg.LogFile,
		MaxSize:  10, // megabytes
		MaxAge:   30, // days
		Compress: true,
	}
	resultsFile := &lumberjack.Logger{
		Filename: filepath.Join(opts.ResultsDir, resultsPrefix+opts.Now().Format(resultsDateLayout)+".log"),
		MaxAge:   ResultsRetentionDays,
	}
	// lumberjack only prunes backups of the current file name, earlier days are removed here
	pruneErr := pruneResults(opts.ResultsDir, opts.Now())

	handlers := []slog.Handler{
		slog.NewTextHandler(opts.Console, &slog.HandlerOptions{
			Level: cfg.Level(),
		}),
		slog.NewTextHandler(logFile, &slog.HandlerOptions{
			Level:     slog.LevelDebug,
			AddSource: true,
		}),
		slogmulti.Router().
			Add(slog.NewTextHandler(resultsFile, &slog.HandlerOptions{Level: slog.LevelInfo}), isTestResult).
			Handler(),
	}
	handlers = append(handlers, opts.Extra...)

	logger := &Logger{
		Logger:  slog.New(slogmulti.Fanout(handlers...)),
		closers: []io.Closer{logFile, resultsFile},
	}
	logger.Debug("Logger initialized", "logFile", cfg.LogFile, "level", cfg.Level().String())
	if pruneErr != nil {
		logger.Warn("Could not remove old test results", "dir", opts.ResultsDir, "error", pruneErr)
	}

	return logger, nil
}

// pruneResults deletes results files dated more than ResultsRetentionDays before now.
// Rotated backups (test_results_<date>-<timestamp>.log) are matched by their date as well.
func pruneResults(dir string, now time.Time) error {
	matches, err := filepath.Glob(filepath.Join(dir, resultsPrefix+"*.log*"))
	if err != nil {
		return err
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	cutoff := today.AddDate(0, 0, -ResultsRetentionDays)

	var errList []error
	for _, path := range matches {
		name := strings.TrimPrefix(filepath.Base(path), resultsPrefix)
		if len(name) < len(resultsDateLayout) {
			continue
		}
		day, err := time.ParseInLocation(resultsDateLayout, name[:len(resultsDateLayout)], now.Location())
		if err != nil || !day.Before(cutoff) {
			continue
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			errList = append(errList, err)
		}
	}
	return errors.Join(errList...)
}

func isTestResult(_ context.Context, r slog.Record) bool {
	found := false
	r.Attrs(func(attr slog.Attr) bool {
		if attr.Key == KindKey && attr.Value.String() == KindTestResult {
			found = true
			return false
		}
		return true
	})
	return found
}
