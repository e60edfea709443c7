package collector_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/networkteam/discover-e2e/collector"
	"github.com/networkteam/discover-e2e/internal/pwfake"
)

func TestRecorder_BrowserTraffic(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	recorder := collector.NewRecorderWithOptions(collector.Options{Logger: logger})
	ctx := &pwfake.BrowserContext{}
	recorder.Attach(ctx)

	doc := &pwfake.Request{MethodValue: "GET", URLValue: "https://tmdb-discover.surge.sh/", Type: "document"}
	api := &pwfake.Request{MethodValue: "GET", URLValue: "https://api.themoviedb.org/3/discover/movie?page=1", Type: "fetch"}
	font := &pwfake.Request{MethodValue: "GET", URLValue: "https://fonts.example/roboto.woff2", Type: "font"}

	ctx.EmitRequest(doc)
	ctx.EmitRequest(api)
	ctx.EmitRequest(font)
	assert.Equal(t, 3, recorder.Pending())

	ctx.EmitResponse(&pwfake.Response{Req: doc, StatusCode: 200})
	ctx.EmitResponse(&pwfake.Response{Req: api, StatusCode: 401})
	ctx.EmitRequestFailed(font)
	assert.Equal(t, 0, recorder.Pending())

	exchanges := recorder.ExchangesFrom(collector.SourceBrowser)
	require.Len(t, exchanges, 3)

	assert.Equal(t, "document", exchanges[0].ResourceType)
	assert.Equal(t, 200, exchanges[0].StatusCode)
	assert.False(t, exchanges[0].Failed())

	assert.Equal(t, "fetch", exchanges[1].ResourceType)
	assert.Equal(t, 401, exchanges[1].StatusCode)
	assert.True(t, exchanges[1].Failed())

	assert.Equal(t, "request failed", exchanges[2].Error)
	assert.Len(t, recorder.FailedExchanges(), 2)

	assert.Contains(t, logs.String(), "Request: GET https://tmdb-discover.surge.sh/")
	assert.Contains(t, logs.String(), "Response: 401 https://api.themoviedb.org/3/discover/movie?page=1")
}

func TestRecorder_ResponseWithoutRequest(t *testing.T) {
	t.Parallel()

	recorder := collector.NewRecorder()
	ctx := &pwfake.BrowserContext{}
	recorder.Attach(ctx)

	// A response for a request issued before the recorder was attached
	req := &pwfake.Request{MethodValue: "GET", URLValue: "https://image.tmdb.org/t/p/w500/poster.jpg", Type: "image"}
	ctx.EmitResponse(&pwfake.Response{Req: req, StatusCode: 304})

	exchanges := recorder.Exchanges()
	require.Len(t, exchanges, 1)
	assert.Equal(t, "https://image.tmdb.org/t/p/w500/poster.jpg", exchanges[0].URL)
	assert.Equal(t, 304, exchanges[0].StatusCode)
	assert.False(t, exchanges[0].ID.IsNil())
}

func TestRecorder_WriteSummaryAndReset(t *testing.T) {
	t.Parallel()

	recorder := collector.NewRecorder()
	logger := slog.New(recorder.Handler(slog.LevelInfo))

	logger.Debug("not kept")
	logger.Info("Selecting category", "category", "Popular")
	logger.Error("Failed to click category", "category", "Popular")

	recorder.Add(collector.Exchange{
		Source:     collector.SourceAPI,
		Method:     "GET",
		URL:        "https://api.themoviedb.org/3/movie/popular",
		StatusCode: 401,
	})

	var out bytes.Buffer
	require.NoError(t, recorder.WriteSummary(&out, 10))

	summary := out.String()
	assert.Contains(t, summary, "last 2 log records")
	assert.Contains(t, summary, "Selecting category category=Popular")
	assert.NotContains(t, summary, "not kept")
	assert.Contains(t, summary, "last 1 exchanges (1 failed)")
	assert.Contains(t, summary, "[api] GET https://api.themoviedb.org/3/movie/popular -> 401")

	recorder.Reset()
	assert.Empty(t, recorder.Logs())
	assert.Empty(t, recorder.Exchanges())
}
