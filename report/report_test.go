package report_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/networkteam/discover-e2e/report"
)

const sampleStream = `{"Time":"2026-10-18T10:00:00Z","Action":"start","Package":"github.com/networkteam/discover-e2e/acceptance"}
{"Time":"2026-10-18T10:00:00.1Z","Action":"run","Package":"github.com/networkteam/discover-e2e/acceptance","Test":"TestSearch"}
{"Time":"2026-10-18T10:00:00.2Z","Action":"run","Package":"github.com/networkteam/discover-e2e/acceptance","Test":"TestSearch/TC014_basic_search"}
{"Time":"2026-10-18T10:00:05Z","Action":"output","Package":"github.com/networkteam/discover-e2e/acceptance","Test":"TestSearch/TC014_basic_search","Output":"    search_test.go:42: results contain <POOL>\n"}
{"Time":"2026-10-18T10:00:05Z","Action":"pass","Package":"github.com/networkteam/discover-e2e/acceptance","Test":"TestSearch/TC014_basic_search","Elapsed":4.8}
{"Time":"2026-10-18T10:00:05.1Z","Action":"run","Package":"github.com/networkteam/discover-e2e/acceptance","Test":"TestSearch/TC016_empty_search"}
{"Time":"2026-10-18T10:00:07Z","Action":"output","Package":"github.com/networkteam/discover-e2e/acceptance","Test":"TestSearch/TC016_empty_search","Output":"    search_test.go:80: page.click: timeout: waiting for locator\n"}
{"Time":"2026-10-18T10:00:07Z","Action":"fail","Package":"github.com/networkteam/discover-e2e/acceptance","Test":"TestSearch/TC016_empty_search","Elapsed":1.9}
{"Time":"2026-10-18T10:00:07Z","Action":"fail","Package":"github.com/networkteam/discover-e2e/acceptance","Test":"TestSearch","Elapsed":6.9}
{"Time":"2026-10-18T10:00:07.1Z","Action":"run","Package":"github.com/networkteam/discover-e2e/acceptance","Test":"TestAPIConnectivity"}
{"Time":"2026-10-18T10:00:07.2Z","Action":"skip","Package":"github.com/networkteam/discover-e2e/acceptance","Test":"TestAPIConnectivity","Elapsed":0}
{"Time":"2026-10-18T10:00:08Z","Action":"output","Package":"github.com/networkteam/discover-e2e/acceptance","Output":"FAIL\n"}
{"Time":"2026-10-18T10:00:08Z","Action":"fail","Package":"github.com/networkteam/discover-e2e/acceptance","Elapsed":8}
`

func parseSample(t *testing.T) *report.Run {
	t.Helper()

	run := report.NewRun("smoke", "chromium")
	var events int
	err := report.Parse(strings.NewReader("# github.com/networkteam/discover-e2e/acceptance\n"+sampleStream), run, func(report.Event) {
		events++
	})
	require.NoError(t, err)
	assert.Equal(t, 13, events)
	return run
}

func TestParse(t *testing.T) {
	t.Parallel()

	run := parseSample(t)

	assert.Equal(t, report.Counts{Total: 3, Passed: 1, Failed: 1, Skipped: 1}, run.Counts())
	assert.True(t, run.Failed())
	assert.Equal(t, 8*time.Second, run.Duration())
	assert.Len(t, run.Tests(), 4)

	parent, ok := run.Test("github.com/networkteam/discover-e2e/acceptance", "TestSearch")
	require.True(t, ok)
	assert.Equal(t, report.StatusFailed, parent.Status)

	basic, ok := run.Test("github.com/networkteam/discover-e2e/acceptance", "TestSearch/TC014_basic_search")
	require.True(t, ok)
	assert.Equal(t, 4800*time.Millisecond, basic.Elapsed)
	assert.Equal(t, "TestSearch", basic.Parent())
	assert.Contains(t, basic.Output.String(), "results contain <POOL>")

	assert.Contains(t, run.Output.String(), "# github.com/networkteam/discover-e2e/acceptance")
	assert.Contains(t, run.Output.String(), "FAIL")
}

func TestParse_PassingRun(t *testing.T) {
	t.Parallel()

	run := report.NewRun("api", "chromium")
	stream := `{"Action":"run","Package":"p","Test":"TestAPIConnectivity"}
{"Action":"pass","Package":"p","Test":"TestAPIConnectivity","Elapsed":0.3}
{"Action":"pass","Package":"p","Elapsed":0.4}
`
	require.NoError(t, report.Parse(strings.NewReader(stream), run, nil))
	assert.False(t, run.Failed())
	assert.Equal(t, report.Counts{Total: 1, Passed: 1}, run.Counts())
}

func TestRender(t *testing.T) {
	t.Parallel()

	run := parseSample(t)

	var buf bytes.Buffer
	err := report.Render(context.Background(), &buf, report.Props{
		Run:         run,
		Title:       "Discover E2E",
		Screenshots: []string{"../screenshots/search_error.png"},
	})
	require.NoError(t, err)

	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)

	assert.Equal(t, "Discover E2E", doc.Find("title").Text())
	assert.Equal(t, "1 passed", doc.Find("#summary .passed").Text())
	assert.Equal(t, "1 failed", doc.Find("#summary .failed").Text())
	assert.Equal(t, "1 skipped", doc.Find("#summary .skipped").Text())

	rows := doc.Find("#tests tr.test")
	require.Equal(t, 3, rows.Length())
	assert.Equal(t, "TestSearch/TC014_basic_search", rows.Eq(0).Find("td.name").Text())
	assert.Equal(t, "passed", rows.Eq(0).AttrOr("data-status", ""))
	assert.Equal(t, "4.8s", rows.Eq(0).Find("td.duration").Text())

	// Output is shown for failed and skipped tests only
	outputs := doc.Find("#tests tr.output")
	require.Equal(t, 2, outputs.Length())
	assert.Contains(t, outputs.Eq(0).Text(), "page.click: timeout")
	assert.Equal(t, 1, outputs.Eq(0).Find(".chroma").Length())

	img := doc.Find("#screenshots img")
	require.Equal(t, 1, img.Length())
	assert.Equal(t, "../screenshots/search_error.png", img.AttrOr("src", ""))
	assert.Equal(t, "search_error", doc.Find("#screenshots figcaption").Text())

	assert.Equal(t, 3, doc.Find("#filters button").Length())
}

func TestRender_EscapesOutput(t *testing.T) {
	t.Parallel()

	run := report.NewRun("ui", "firefox")
	run.Apply(report.Event{Action: report.ActionRun, Package: "p", Test: "TestXSS"})
	run.Apply(report.Event{Action: report.ActionOutput, Package: "p", Test: "TestXSS", Output: "<script>alert(1)</script>\n"})
	run.Apply(report.Event{Action: report.ActionFail, Package: "p", Test: "TestXSS"})

	var buf bytes.Buffer
	require.NoError(t, report.Render(context.Background(), &buf, report.Props{Run: run}))

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(buf.String()))
	require.NoError(t, err)
	// Only the filter script of the page itself
	assert.Equal(t, 1, doc.Find("script").Length())
	assert.Contains(t, doc.Find("#tests tr.output").Text(), "<script>alert(1)</script>")
}

func TestWriteFileAndHandler(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	screenshotDir := filepath.Join(dir, "screenshots")
	require.NoError(t, os.MkdirAll(screenshotDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(screenshotDir, "year_filter_error.png"), []byte("png"), 0o644))

	reportPath := filepath.Join(dir, "html", "report.html")
	shots, err := report.FindScreenshots(screenshotDir, reportPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"../screenshots/year_filter_error.png"}, shots)

	run := parseSample(t)
	require.NoError(t, report.WriteFile(context.Background(), reportPath, report.Props{Run: run, Screenshots: shots}))

	server := httptest.NewServer(report.NewHandler(dir, report.WithPathPrefix("/reports")))
	defer server.Close()

	client := &http.Client{CheckRedirect: func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}}
	resp, err := client.Get(server.URL + "/reports/")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Equal(t, "/reports/html/report.html", resp.Header.Get("Location"))

	resp, err = http.Get(server.URL + "/reports/html/report.html")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, 3, doc.Find("#tests tr.test").Length())

	resp2, err := http.Get(server.URL + "/reports/screenshots/year_filter_error.png")
	require.NoError(t, err)
	resp2.Body.Close()
	assert.Equal(t, http.StatusOK, resp2.StatusCode)
}
