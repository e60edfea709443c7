package collector

import (
	"strconv"
	"time"

	"github.com/playwright-community/playwright-go"
)

// TrafficSource emits network events. playwright.BrowserContext and playwright.Page implement it.
type TrafficSource interface {
	OnRequest(fn func(playwright.Request))
	OnResponse(fn func(playwright.Response))
	OnRequestFailed(fn func(playwright.Request))
}

// Attach records every request of source as an exchange and logs it at debug level.
func (r *Recorder) Attach(source TrafficSource) {
	source.OnRequest(r.onRequest)
	source.OnResponse(r.onResponse)
	source.OnRequestFailed(r.onRequestFailed)
}

func (r *Recorder) onRequest(req playwright.Request) {
	r.logger.Debug("Request: "+req.Method()+" "+req.URL(), "resourceType", req.ResourceType())

	r.mu.Lock()
	defer r.mu.Unlock()

	r.pending[req] = Exchange{
		ID:           generateID(),
		Source:       SourceBrowser,
		Method:       req.Method(),
		URL:          req.URL(),
		ResourceType: req.ResourceType(),
		RequestTime:  time.Now(),
	}
}

func (r *Recorder) onResponse(resp playwright.Response) {
	r.logger.Debug("Response: "+strconv.Itoa(resp.Status())+" "+resp.URL())

	e := r.takePending(resp.Request())
	if e.URL == "" {
		e.URL = resp.URL()
	}
	e.StatusCode = resp.Status()
	e.StatusText = resp.StatusText()
	e.ResponseTime = time.Now()

	r.Add(e)
}

func (r *Recorder) onRequestFailed(req playwright.Request) {
	r.logger.Debug("Request failed: "+req.Method()+" "+req.URL())

	e := r.takePending(req)
	if e.URL == "" {
		e.Method = req.Method()
		e.URL = req.URL()
		e.ResourceType = req.ResourceType()
	}
	e.Error = "request failed"
	e.ResponseTime = time.Now()

	r.Add(e)
}

// takePending removes and returns the exchange started by req.
// Responses for requests issued before Attach get a fresh exchange.
func (r *Recorder) takePending(req playwright.Request) Exchange {
	r.mu.Lock()
	defer r.mu.Unlock()

	if req != nil {
		if e, ok := r.pending[req]; ok {
			delete(r.pending, req)
			return e
		}
	}

	e := Exchange{
		ID:          generateID(),
		Source:      SourceBrowser,
		RequestTime: time.Now(),
	}
	if req != nil {
		e.Method = req.Method()
		e.URL = req.URL()
		e.ResourceType = req.ResourceType()
	}
	return e
}
