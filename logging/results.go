package logging

import (
	"context"
	"log/slog"
	"time"
)

// Test result states written to the results log.
const (
	ResultStarted = "STARTED"
	ResultPassed  = "PASSED"
	ResultFailed  = "FAILED"
	ResultSkipped = "SKIPPED"
)

func logResult(logger *slog.Logger, level slog.Level, result, test string, attrs ...slog.Attr) {
	attrs = append([]slog.Attr{
		slog.String(KindKey, KindTestResult),
		slog.String("result", result),
		slog.String("test", test),
	}, attrs...)
	logger.LogAttrs(context.Background(), level, "TEST_RESULT", attrs...)
}

// TestStarted records the start of a test.
func TestStarted(logger *slog.Logger, test string) {
	logResult(logger, slog.LevelInfo, ResultStarted, test)
}

// TestPassed records a passed test.
func TestPassed(logger *slog.Logger, test string, duration time.Duration) {
	logResult(logger, slog.LevelInfo, ResultPassed, test, slog.Duration("duration", duration))
}

// TestFailed records a failed test with the reason.
func TestFailed(logger *slog.Logger, test string, reason string, duration time.Duration) {
	logResult(logger, slog.LevelError, ResultFailed, test, slog.Duration("duration", duration), slog.String("error", reason))
}

// TestSkipped records a skipped test.
func TestSkipped(logger *slog.Logger, test string, reason string) {
	logResult(logger, slog.LevelWarn, ResultSkipped, test, slog.String("reason", reason))
}
