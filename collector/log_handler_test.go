package collector_test

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/networkteam/discover-e2e/collector"
)

func attrsOf(r slog.Record) map[string]slog.Value {
	attrs := map[string]slog.Value{}
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value
		return true
	})
	return attrs
}

func TestLogHandler_AttrsAndGroups(t *testing.T) {
	t.Parallel()

	recorder := collector.NewRecorder()
	logger := slog.New(recorder.Handler(slog.LevelDebug)).
		With("test", "TestSearch/basic").
		WithGroup("filter").
		With("kind", "year")

	logger.Info("Applying year filter", "from", 2020, "to", 2023)

	logs := recorder.Logs()
	require.Len(t, logs, 1)
	assert.Equal(t, "Applying year filter", logs[0].Message)

	attrs := attrsOf(logs[0])
	assert.Equal(t, "TestSearch/basic", attrs["test"].String())

	// Handler attributes and record attributes both end up in the open group
	var filterKeys []string
	logs[0].Attrs(func(a slog.Attr) bool {
		if a.Key == "filter" {
			for _, nested := range a.Value.Group() {
				filterKeys = append(filterKeys, nested.Key)
			}
		}
		return true
	})
	assert.ElementsMatch(t, []string{"kind", "from", "to"}, filterKeys)
}

func TestLogHandler_Level(t *testing.T) {
	t.Parallel()

	recorder := collector.NewRecorder()
	logger := slog.New(recorder.Handler(slog.LevelWarn))

	logger.Info("Navigation loaded")
	logger.Warn("Search input field not found")

	logs := recorder.Logs()
	require.Len(t, logs, 1)
	assert.Equal(t, slog.LevelWarn, logs[0].Level)
}
