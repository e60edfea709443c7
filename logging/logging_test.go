package logging_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/networkteam/discover-e2e/config"
	"github.com/networkteam/discover-e2e/logging"
)

func TestSetup_RoutesRecordsToSinks(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := config.Default()
	cfg.LogFile = filepath.Join(dir, "logs", "test_execution.log")
	cfg.LogLevel = "WARNING"

	var console bytes.Buffer
	now := time.Date(2024, 3, 14, 9, 0, 0, 0, time.UTC)

	logger, err := logging.Setup(cfg, logging.Options{
		Console: &console,
		Now:     func() time.Time { return now },
	})
	require.NoError(t, err)

	logger.Debug("Request: GET https://tmdb-discover.surge.sh/")
	logger.Warn("Search input field not found")
	logging.TestPassed(logger.Logger, "TestSearch/basic", 1500*time.Millisecond)

	require.NoError(t, logger.Close())

	// Console only shows records at or above the configured level
	assert.NotContains(t, console.String(), "Request: GET")
	assert.Contains(t, console.String(), "Search input field not found")

	// The log file receives everything down to debug
	logContent, err := os.ReadFile(cfg.LogFile)
	require.NoError(t, err)
	assert.Contains(t, string(logContent), "Request: GET")
	assert.Contains(t, string(logContent), "Search input field not found")

	// The results file only receives test results
	resultsContent, err := os.ReadFile(filepath.Join(dir, "logs", "test_results_2024-03-14.log"))
	require.NoError(t, err)
	assert.Contains(t, string(resultsContent), "TEST_RESULT")
	assert.Contains(t, string(resultsContent), "result=PASSED")
	assert.Contains(t, string(resultsContent), "test=TestSearch/basic")
	assert.NotContains(t, string(resultsContent), "Search input field not found")
}

func TestResultHelpers(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := config.Default()
	cfg.LogFile = filepath.Join(dir, "run.log")

	var console bytes.Buffer
	logger, err := logging.Setup(cfg, logging.Options{Console: &console})
	require.NoError(t, err)
	defer logger.Close()

	logging.TestStarted(logger.Logger, "TestFiltering/year_range")
	logging.TestFailed(logger.Logger, "TestFiltering/year_range", "years out of range", time.Second)
	logging.TestSkipped(logger.Logger, "TestPagination/last_page", "pagination not available")

	out := console.String()
	assert.Contains(t, out, "result=STARTED")
	assert.Contains(t, out, "level=ERROR")
	assert.Contains(t, out, `error="years out of range"`)
	assert.Contains(t, out, "result=SKIPPED")
	assert.Contains(t, out, `reason="pagination not available"`)
}

func TestSetup_RemovesResultsOlderThanRetention(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := config.Default()
	cfg.LogFile = filepath.Join(dir, "test_execution.log")

	existing := []string{
		"test_results_2024-03-06.log",
		"test_results_2024-02-01-2024-02-01T10-00-00.000.log.gz",
		"test_results_2024-03-07.log",
		"test_results_2024-03-13.log",
		"test_results_latest.log",
		"notes.log",
	}
	for _, name := range existing {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}

	now := time.Date(2024, 3, 14, 9, 0, 0, 0, time.UTC)
	logger, err := logging.Setup(cfg, logging.Options{
		Console: &bytes.Buffer{},
		Now:     func() time.Time { return now },
	})
	require.NoError(t, err)
	require.NoError(t, logger.Close())

	assert.NoFileExists(t, filepath.Join(dir, "test_results_2024-03-06.log"))
	assert.NoFileExists(t, filepath.Join(dir, "test_results_2024-02-01-2024-02-01T10-00-00.000.log.gz"))
	assert.FileExists(t, filepath.Join(dir, "test_results_2024-03-07.log"), "exactly seven days old is kept")
	assert.FileExists(t, filepath.Join(dir, "test_results_2024-03-13.log"))
	assert.FileExists(t, filepath.Join(dir, "test_results_latest.log"))
	assert.FileExists(t, filepath.Join(dir, "notes.log"))
}
