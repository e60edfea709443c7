package tmdbapi_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/networkteam/discover-e2e/collector"
	"github.com/networkteam/discover-e2e/config"
	"github.com/networkteam/discover-e2e/internal/errs"
	"github.com/networkteam/discover-e2e/tmdbapi"
)

const unauthorizedBody = `{"status_code":7,"status_message":"Invalid API key: You must be granted a valid key.","success":false}`

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func newClient(serverURL string, opts ...tmdbapi.Option) *tmdbapi.Client {
	cfg := config.Default()
	cfg.APIBaseURL = serverURL + "/3"
	return tmdbapi.NewClient(cfg, append([]tmdbapi.Option{tmdbapi.WithLogger(discardLogger)}, opts...)...)
}

func TestClient_PopularUnauthorized(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/3/movie/popular", r.URL.Path)
		assert.Equal(t, tmdbapi.UserAgent, r.Header.Get("User-Agent"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Empty(t, r.URL.Query().Get("api_key"))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(unauthorizedBody))
	}))
	defer server.Close()

	recorder := collector.NewRecorder()
	client := newClient(server.URL, tmdbapi.WithRecorder(recorder))

	resp, err := client.Popular(context.Background())
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.NoError(t, tmdbapi.CheckConnectivity(resp))
	require.NoError(t, tmdbapi.CheckStructure(resp))
	assert.Equal(t, "Invalid API key: You must be granted a valid key.", resp.Get("status_message").String())

	exchanges := recorder.ExchangesFrom(collector.SourceAPI)
	require.Len(t, exchanges, 1)
	assert.Equal(t, unauthorizedBody, exchanges[0].ResponseBody)
}

func TestClient_SendsAPIKey(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.URL.Query().Get("api_key"))
		w.Write([]byte(`{"page":1,"results":[{"id":550,"title":"Fight Club"}],"total_pages":500,"total_results":10000}`))
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.APIBaseURL = server.URL + "/3/"
	cfg.APIKey = "secret"
	client := tmdbapi.NewClient(cfg, tmdbapi.WithLogger(discardLogger))

	resp, err := client.Get(context.Background(), "movie/popular")
	require.NoError(t, err)
	require.NoError(t, tmdbapi.CheckConnectivity(resp))
	assert.Equal(t, tmdbapi.ListKeys, resp.PresentKeys(tmdbapi.ListKeys...))
	assert.Equal(t, "Fight Club", resp.Get("results.0.title").String())
}

type flakyTransport struct {
	failures int32
	calls    atomic.Int32
	next     http.RoundTripper
}

func (f *flakyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if f.calls.Add(1) <= f.failures {
		return nil, errors.New("dial tcp: connection reset by peer")
	}
	return f.next.RoundTrip(req)
}

func TestClient_RetriesConnectionErrors(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(unauthorizedBody))
	}))
	defer server.Close()

	t.Run("succeeds on last attempt", func(t *testing.T) {
		transport := &flakyTransport{failures: 2, next: http.DefaultTransport}
		client := newClient(server.URL, tmdbapi.WithHTTPClient(&http.Client{Transport: transport}))

		resp, err := client.Popular(context.Background())
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, int32(3), transport.calls.Load())
	})

	t.Run("gives up after three attempts", func(t *testing.T) {
		transport := &flakyTransport{failures: 3, next: http.DefaultTransport}
		client := newClient(server.URL, tmdbapi.WithHTTPClient(&http.Client{Transport: transport}))

		_, err := client.Popular(context.Background())
		require.Error(t, err)
		assert.ErrorIs(t, err, tmdbapi.ErrUnreachable)
		assert.Equal(t, int32(3), transport.calls.Load())
	})

	t.Run("status errors are not retried", func(t *testing.T) {
		var calls atomic.Int32
		failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer failing.Close()

		resp, err := newClient(failing.URL).Popular(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int32(1), calls.Load())

		err = tmdbapi.CheckConnectivity(resp)
		assert.True(t, errs.Is(err, errs.NotFound))
		assert.Contains(t, err.Error(), "unexpected status code 503")
	})
}

func TestCheckConnectivity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		resp    tmdbapi.Response
		wantErr string
	}{
		{name: "unauthorized with structured error", resp: tmdbapi.Response{StatusCode: 401, Body: []byte(unauthorizedBody)}},
		{name: "ok object", resp: tmdbapi.Response{StatusCode: 200, Body: []byte(`{"page":1}`)}},
		{name: "array body", resp: tmdbapi.Response{StatusCode: 200, Body: []byte(`[1,2]`)}, wantErr: "JSON object"},
		{name: "html body", resp: tmdbapi.Response{StatusCode: 401, Body: []byte(`<html>`)}, wantErr: "JSON object"},
		{
			name:    "unauthorized without message",
			resp:    tmdbapi.Response{StatusCode: 401, Body: []byte(`{"status_code":7}`)},
			wantErr: "status_message",
		},
		{name: "not found", resp: tmdbapi.Response{StatusCode: 404, Body: []byte(`{}`)}, wantErr: "404"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tmdbapi.CheckConnectivity(&tt.resp)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCheckStructure(t *testing.T) {
	t.Parallel()

	assert.NoError(t, tmdbapi.CheckStructure(&tmdbapi.Response{StatusCode: 401, Body: []byte(`{"success":false}`)}))
	assert.Error(t, tmdbapi.CheckStructure(&tmdbapi.Response{StatusCode: 401, Body: []byte(`{"error":"nope"}`)}))
	assert.NoError(t, tmdbapi.CheckStructure(&tmdbapi.Response{StatusCode: 200, Body: []byte(`{"page":1}`)}))

	resp := &tmdbapi.Response{StatusCode: 200, Body: []byte(`{"page":1,"results":[]}`)}
	assert.Equal(t, []string{"total_pages", "total_results"}, resp.MissingKeys(tmdbapi.ListKeys...))
}
