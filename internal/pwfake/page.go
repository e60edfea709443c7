package pwfake

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/playwright-community/playwright-go"
)

// Element is a fake DOM node returned for a selector.
type Element struct {
	Text       string
	Attributes map[string]string
	Hidden     bool
	Disabled   bool
	// ClickErr is returned by Click instead of succeeding.
	ClickErr error
}

// Page is an in-memory playwright.Page. Selectors are matched literally against the
// elements registered with Set.
type Page struct {
	playwright.Page

	Journal *Journal

	// GotoErr is returned by Goto and Reload.
	GotoErr error
	// LoadStateErr is returned by WaitForLoadState.
	LoadStateErr error
	// FunctionErr is returned by WaitForFunction.
	FunctionErr error
	// TitleValue is returned by Title.
	TitleValue string
	// OnAction is called after every successful click, fill or key press.
	// It can change the fake DOM to simulate the application reacting.
	OnAction func(p *Page, action string)

	mu             sync.Mutex
	elements       map[string][]*Element
	url            string
	closed         bool
	defaultTimeout float64
	screenshots    []string
	timeouts       map[string]float64
}

// NewPage creates an empty page.
func NewPage(journal *Journal) *Page {
	return &Page{
		Journal:  journal,
		elements: make(map[string][]*Element),
		timeouts: make(map[string]float64),
		url:      "about:blank",
	}
}

// Set replaces the elements matched by selector.
func (p *Page) Set(selector string, elements ...*Element) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.elements[selector] = elements
}

// Texts registers one visible element per text for selector.
func (p *Page) Texts(selector string, texts ...string) {
	elements := make([]*Element, len(texts))
	for i, text := range texts {
		elements[i] = &Element{Text: text}
	}
	p.Set(selector, elements...)
}

// Remove drops all elements of selector.
func (p *Page) Remove(selector string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.elements, selector)
}

// DefaultTimeout returns the value passed to SetDefaultTimeout.
func (p *Page) DefaultTimeout() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.defaultTimeout
}

// LastTimeout returns the timeout in milliseconds passed to the latest call of action
// ("click", "fill", "press", "wait_for", "goto"). It is 0 if the action got no timeout.
func (p *Page) LastTimeout(action string) float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.timeouts[action]
}

func (p *Page) recordTimeout(action string, timeout *float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if timeout == nil {
		delete(p.timeouts, action)
		return
	}
	p.timeouts[action] = *timeout
}

// Screenshots returns the paths of all screenshots taken.
func (p *Page) Screenshots() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.screenshots...)
}

func (p *Page) lookup(selector string) []*Element {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.elements[selector]
}

func (p *Page) action(format string, args ...any) {
	entry := fmt.Sprintf(format, args...)
	p.Journal.Record("%s", entry)
	if p.OnAction != nil {
		p.OnAction(p, entry)
	}
}

func (p *Page) Goto(url string, options ...playwright.PageGotoOptions) (playwright.Response, error) {
	if p.IsClosed() {
		return nil, ClosedError("page.goto")
	}
	if len(options) > 0 {
		p.recordTimeout("goto", options[0].Timeout)
	}
	p.Journal.Record("goto %s", url)
	if p.GotoErr != nil {
		return nil, p.GotoErr
	}
	p.mu.Lock()
	p.url = url
	p.mu.Unlock()
	return nil, nil
}

func (p *Page) Reload(options ...playwright.PageReloadOptions) (playwright.Response, error) {
	if p.IsClosed() {
		return nil, ClosedError("page.reload")
	}
	p.Journal.Record("reload")
	return nil, p.GotoErr
}

func (p *Page) WaitForLoadState(options ...playwright.PageWaitForLoadStateOptions) error {
	if len(options) > 0 && options[0].State != nil {
		p.Journal.Record("load state %s", *options[0].State)
	}
	return p.LoadStateErr
}

func (p *Page) WaitForFunction(expression string, arg interface{}, options ...playwright.PageWaitForFunctionOptions) (playwright.JSHandle, error) {
	if p.IsClosed() {
		return nil, ClosedError("page.wait_for_function")
	}
	p.Journal.Record("wait for function")
	return nil, p.FunctionErr
}

func (p *Page) Locator(selector string, options ...playwright.PageLocatorOptions) playwright.Locator {
	return &Locator{page: p, selector: selector, index: -1}
}

func (p *Page) Screenshot(options ...playwright.PageScreenshotOptions) ([]byte, error) {
	if p.IsClosed() {
		return nil, ClosedError("page.screenshot")
	}
	data := []byte("\x89PNG fake")
	if len(options) > 0 && options[0].Path != nil {
		path := *options[0].Path
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return nil, err
		}
		p.mu.Lock()
		p.screenshots = append(p.screenshots, path)
		p.mu.Unlock()
		p.Journal.Record("screenshot %s", path)
	}
	return data, nil
}

func (p *Page) Title() (string, error) {
	if p.IsClosed() {
		return "", ClosedError("page.title")
	}
	return p.TitleValue, nil
}

func (p *Page) URL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.url
}

func (p *Page) SetDefaultTimeout(timeout float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.defaultTimeout = timeout
}

func (p *Page) Keyboard() playwright.Keyboard {
	return &Keyboard{page: p}
}

func (p *Page) Close(options ...playwright.PageCloseOptions) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closed {
		p.closed = true
		p.Journal.Record("page closed")
	}
	return nil
}

func (p *Page) IsClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// Keyboard is the keyboard of a fake Page.
type Keyboard struct {
	playwright.Keyboard

	page *Page
}

func (k *Keyboard) Press(key string, options ...playwright.KeyboardPressOptions) error {
	if k.page.IsClosed() {
		return ClosedError("keyboard.press")
	}
	k.page.action("keyboard %s", key)
	return nil
}
