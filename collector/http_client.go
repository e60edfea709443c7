package collector

import (
	"io"
	"net/http"
	"sync"
	"time"
)

// Transport returns an http.RoundTripper that records every request as an API exchange.
// The exchange is stored once the response body is closed, so it includes the captured body.
func (r *Recorder) Transport(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}

	return &recordingTransport{
		next:     next,
		recorder: r,
	}
}

// recordingTransport is an http.RoundTripper that captures request/response data
type recordingTransport struct {
	next     http.RoundTripper
	recorder *Recorder
}

func (t *recordingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	e := Exchange{
		ID:          generateID(),
		Source:      SourceAPI,
		Method:      req.Method,
		URL:         req.URL.String(),
		RequestTime: time.Now(),
	}
	t.recorder.logger.Debug("Request: "+e.Method+" "+e.URL, "source", SourceAPI)

	resp, err := t.next.RoundTrip(req)

	e.ResponseTime = time.Now()
	if err != nil {
		e.Error = err.Error()
		t.recorder.Add(e)
		return resp, err
	}

	e.StatusCode = resp.StatusCode
	e.StatusText = http.StatusText(resp.StatusCode)
	t.recorder.logger.Debug("Response: "+resp.Status+" "+e.URL, "source", SourceAPI)

	if resp.Body == nil || resp.Body == http.NoBody {
		t.recorder.Add(e)
		return resp, nil
	}

	// Capture the body as the caller reads it
	buf := NewLimitedBuffer(t.recorder.options.MaxBodySize)
	resp.Body = &capturingBody{
		reader: io.TeeReader(resp.Body, buf),
		closer: resp.Body,
		onClose: func() {
			e.ResponseBody = buf.String()
			e.BodyTruncated = buf.Truncated()
			t.recorder.Add(e)
		},
	}

	return resp, nil
}

// capturingBody calls onClose exactly once when the body is closed
type capturingBody struct {
	reader  io.Reader
	closer  io.Closer
	onClose func()
	once    sync.Once
}

func (b *capturingBody) Read(p []byte) (int, error) {
	return b.reader.Read(p)
}

func (b *capturingBody) Close() error {
	err := b.closer.Close()
	b.once.Do(b.onClose)
	return err
}
