package pwfake

import (
	"sync"

	"github.com/playwright-community/playwright-go"
)

// BrowserType launches fake browsers.
type BrowserType struct {
	playwright.BrowserType

	Journal   *Journal
	NameValue string
	// LaunchErr is returned by Launch.
	LaunchErr error

	mu       sync.Mutex
	launches []playwright.BrowserTypeLaunchOptions
	browsers []*Browser
}

// NewBrowserType creates a browser type called name.
func NewBrowserType(journal *Journal, name string) *BrowserType {
	return &BrowserType{Journal: journal, NameValue: name}
}

func (bt *BrowserType) Name() string {
	return bt.NameValue
}

func (bt *BrowserType) Launch(options ...playwright.BrowserTypeLaunchOptions) (playwright.Browser, error) {
	if bt.LaunchErr != nil {
		return nil, bt.LaunchErr
	}
	bt.Journal.Record("launch %s", bt.NameValue)

	browser := &Browser{Journal: bt.Journal}
	bt.mu.Lock()
	defer bt.mu.Unlock()
	if len(options) > 0 {
		bt.launches = append(bt.launches, options[0])
	} else {
		bt.launches = append(bt.launches, playwright.BrowserTypeLaunchOptions{})
	}
	bt.browsers = append(bt.browsers, browser)
	return browser, nil
}

// Launches returns the options of every Launch call.
func (bt *BrowserType) Launches() []playwright.BrowserTypeLaunchOptions {
	bt.mu.Lock()
	defer bt.mu.Unlock()
	return append([]playwright.BrowserTypeLaunchOptions(nil), bt.launches...)
}

// Browsers returns every launched browser.
func (bt *BrowserType) Browsers() []*Browser {
	bt.mu.Lock()
	defer bt.mu.Unlock()
	return append([]*Browser(nil), bt.browsers...)
}

// Browser creates fake contexts.
type Browser struct {
	playwright.Browser

	Journal *Journal

	mu       sync.Mutex
	closed   bool
	contexts []*BrowserContext
	options  []playwright.BrowserNewContextOptions
}

func (b *Browser) NewContext(options ...playwright.BrowserNewContextOptions) (playwright.BrowserContext, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ClosedError("browser.new_context")
	}

	ctx := &BrowserContext{Journal: b.Journal}
	b.contexts = append(b.contexts, ctx)
	if len(options) > 0 {
		b.options = append(b.options, options[0])
	} else {
		b.options = append(b.options, playwright.BrowserNewContextOptions{})
	}
	b.Journal.Record("context created")
	return ctx, nil
}

func (b *Browser) Close(options ...playwright.BrowserCloseOptions) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.closed {
		b.closed = true
		b.Journal.Record("browser closed")
	}
	return nil
}

func (b *Browser) IsConnected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return !b.closed
}

// Contexts returns every created context.
func (b *Browser) Contexts() []playwright.BrowserContext {
	b.mu.Lock()
	defer b.mu.Unlock()
	contexts := make([]playwright.BrowserContext, len(b.contexts))
	for i, c := range b.contexts {
		contexts[i] = c
	}
	return contexts
}

// FakeContexts returns every created context as fake.
func (b *Browser) FakeContexts() []*BrowserContext {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*BrowserContext(nil), b.contexts...)
}

// ContextOptions returns the options of every NewContext call.
func (b *Browser) ContextOptions() []playwright.BrowserNewContextOptions {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]playwright.BrowserNewContextOptions(nil), b.options...)
}

// BrowserContext creates fake pages and lets tests emit network events.
type BrowserContext struct {
	playwright.BrowserContext

	Journal *Journal
	// Setup prepares every new page, e.g. registering elements.
	Setup func(p *Page)

	mu              sync.Mutex
	closed          bool
	pages           []*Page
	onRequest       []func(playwright.Request)
	onResponse      []func(playwright.Response)
	onRequestFailed []func(playwright.Request)
}

func (c *BrowserContext) NewPage() (playwright.Page, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ClosedError("browser_context.new_page")
	}
	page := NewPage(c.Journal)
	c.pages = append(c.pages, page)
	setup := c.Setup
	c.mu.Unlock()

	if setup != nil {
		setup(page)
	}
	c.Journal.Record("page created")
	return page, nil
}

func (c *BrowserContext) Close(options ...playwright.BrowserContextCloseOptions) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	pages := append([]*Page(nil), c.pages...)
	c.mu.Unlock()

	for _, p := range pages {
		_ = p.Close()
	}
	c.Journal.Record("context closed")
	return nil
}

// Closed reports whether Close was called.
func (c *BrowserContext) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// FakePages returns every created page.
func (c *BrowserContext) FakePages() []*Page {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*Page(nil), c.pages...)
}

func (c *BrowserContext) OnRequest(fn func(playwright.Request)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onRequest = append(c.onRequest, fn)
}

func (c *BrowserContext) OnResponse(fn func(playwright.Response)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onResponse = append(c.onResponse, fn)
}

func (c *BrowserContext) OnRequestFailed(fn func(playwright.Request)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onRequestFailed = append(c.onRequestFailed, fn)
}

// EmitRequest delivers a request event to all listeners.
func (c *BrowserContext) EmitRequest(req playwright.Request) {
	c.mu.Lock()
	listeners := append(([]func(playwright.Request))(nil), c.onRequest...)
	c.mu.Unlock()
	for _, fn := range listeners {
		fn(req)
	}
}

// EmitResponse delivers a response event to all listeners.
func (c *BrowserContext) EmitResponse(resp playwright.Response) {
	c.mu.Lock()
	listeners := append(([]func(playwright.Response))(nil), c.onResponse...)
	c.mu.Unlock()
	for _, fn := range listeners {
		fn(resp)
	}
}

// EmitRequestFailed delivers a failed request event to all listeners.
func (c *BrowserContext) EmitRequestFailed(req playwright.Request) {
	c.mu.Lock()
	listeners := append(([]func(playwright.Request))(nil), c.onRequestFailed...)
	c.mu.Unlock()
	for _, fn := range listeners {
		fn(req)
	}
}

// Request is a fake network request.
type Request struct {
	playwright.Request

	MethodValue string
	URLValue    string
	Type        string
}

func (r *Request) Method() string       { return r.MethodValue }
func (r *Request) URL() string          { return r.URLValue }
func (r *Request) ResourceType() string { return r.Type }

// Response is a fake network response.
type Response struct {
	playwright.Response

	Req        *Request
	StatusCode int
}

func (r *Response) Status() int { return r.StatusCode }

func (r *Response) StatusText() string {
	if r.StatusCode >= 400 {
		return "Error"
	}
	return "OK"
}

func (r *Response) URL() string { return r.Req.URLValue }

func (r *Response) Request() playwright.Request { return r.Req }
