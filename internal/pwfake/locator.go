package pwfake

import (
	"fmt"

	"github.com/playwright-community/playwright-go"
)

// pwLocator aliases playwright.Locator so it can be embedded without
// clashing with the Locator method.
type pwLocator = playwright.Locator

// Locator resolves a selector against the elements of a fake Page.
// Actions fail with a timeout error when no actionable element matches,
// without waiting.
type Locator struct {
	pwLocator

	page     *Page
	selector string
	// index selects a single element, -1 means all matches
	index int
}

func (l *Locator) String() string {
	if l.index < 0 {
		return l.selector
	}
	return fmt.Sprintf("%s >> nth=%d", l.selector, l.index)
}

func (l *Locator) matches() []*Element {
	elements := l.page.lookup(l.selector)
	if l.index < 0 {
		return elements
	}
	if l.index >= len(elements) {
		return nil
	}
	return elements[l.index : l.index+1]
}

// target returns the element an action applies to.
func (l *Locator) target(op string) (*Element, error) {
	if l.page.IsClosed() {
		return nil, ClosedError(op)
	}
	elements := l.matches()
	if len(elements) == 0 {
		return nil, TimeoutError(op, l.String())
	}
	return elements[0], nil
}

func (l *Locator) All() ([]playwright.Locator, error) {
	if l.page.IsClosed() {
		return nil, ClosedError("locator.all")
	}
	elements := l.matches()
	locators := make([]playwright.Locator, len(elements))
	for i := range elements {
		index := i
		if l.index >= 0 {
			index = l.index
		}
		locators[i] = &Locator{page: l.page, selector: l.selector, index: index}
	}
	return locators, nil
}

// Locator chains a selector or another fake locator below l.
// The fake matches the chain "<l> >> <selector>" literally.
func (l *Locator) Locator(selectorOrLocator interface{}, options ...playwright.LocatorLocatorOptions) playwright.Locator {
	return &Locator{page: l.page, selector: l.String() + " >> " + fmt.Sprint(selectorOrLocator), index: -1}
}

func (l *Locator) First() playwright.Locator {
	return l.Nth(0)
}

func (l *Locator) Nth(index int) playwright.Locator {
	if l.index >= 0 {
		// nth of a single element only matches itself
		if index == 0 {
			return l
		}
		return &Locator{page: l.page, selector: l.selector + " >> impossible", index: -1}
	}
	return &Locator{page: l.page, selector: l.selector, index: index}
}

func (l *Locator) Count() (int, error) {
	if l.page.IsClosed() {
		return 0, ClosedError("locator.count")
	}
	return len(l.matches()), nil
}

func (l *Locator) Click(options ...playwright.LocatorClickOptions) error {
	if len(options) > 0 {
		l.page.recordTimeout("click", options[0].Timeout)
	}
	el, err := l.target("locator.click")
	if err != nil {
		return err
	}
	if el.Hidden || el.Disabled {
		return TimeoutError("locator.click", l.String())
	}
	if el.ClickErr != nil {
		return el.ClickErr
	}
	l.page.action("click %s", l)
	return nil
}

func (l *Locator) Fill(value string, options ...playwright.LocatorFillOptions) error {
	if len(options) > 0 {
		l.page.recordTimeout("fill", options[0].Timeout)
	}
	el, err := l.target("locator.fill")
	if err != nil {
		return err
	}
	if el.Hidden || el.Disabled {
		return TimeoutError("locator.fill", l.String())
	}
	l.page.mu.Lock()
	if el.Attributes == nil {
		el.Attributes = map[string]string{}
	}
	el.Attributes["value"] = value
	l.page.mu.Unlock()
	l.page.action("fill %s = %q", l, value)
	return nil
}

func (l *Locator) Press(key string, options ...playwright.LocatorPressOptions) error {
	if len(options) > 0 {
		l.page.recordTimeout("press", options[0].Timeout)
	}
	if _, err := l.target("locator.press"); err != nil {
		return err
	}
	l.page.action("press %s %s", l, key)
	return nil
}

func (l *Locator) Hover(options ...playwright.LocatorHoverOptions) error {
	if _, err := l.target("locator.hover"); err != nil {
		return err
	}
	l.page.Journal.Record("hover %s", l)
	return nil
}

func (l *Locator) ScrollIntoViewIfNeeded(options ...playwright.LocatorScrollIntoViewIfNeededOptions) error {
	if _, err := l.target("locator.scroll_into_view_if_needed"); err != nil {
		return err
	}
	l.page.Journal.Record("scroll %s", l)
	return nil
}

func (l *Locator) SelectOption(values playwright.SelectOptionValues, options ...playwright.LocatorSelectOptionOptions) ([]string, error) {
	if _, err := l.target("locator.select_option"); err != nil {
		return nil, err
	}
	var selected []string
	if values.Values != nil {
		selected = *values.Values
	}
	l.page.action("select %s %v", l, selected)
	return selected, nil
}

func (l *Locator) TextContent(options ...playwright.LocatorTextContentOptions) (string, error) {
	el, err := l.target("locator.text_content")
	if err != nil {
		return "", err
	}
	return el.Text, nil
}

func (l *Locator) GetAttribute(name string, options ...playwright.LocatorGetAttributeOptions) (string, error) {
	el, err := l.target("locator.get_attribute")
	if err != nil {
		return "", err
	}
	l.page.mu.Lock()
	defer l.page.mu.Unlock()
	return el.Attributes[name], nil
}

func (l *Locator) IsVisible(options ...playwright.LocatorIsVisibleOptions) (bool, error) {
	if l.page.IsClosed() {
		return false, ClosedError("locator.is_visible")
	}
	for _, el := range l.matches() {
		if !el.Hidden {
			return true, nil
		}
	}
	return false, nil
}

func (l *Locator) IsEnabled(options ...playwright.LocatorIsEnabledOptions) (bool, error) {
	el, err := l.target("locator.is_enabled")
	if err != nil {
		return false, err
	}
	return !el.Disabled, nil
}

func (l *Locator) WaitFor(options ...playwright.LocatorWaitForOptions) error {
	if l.page.IsClosed() {
		return ClosedError("locator.wait_for")
	}

	state := *playwright.WaitForSelectorStateVisible
	if len(options) > 0 {
		l.page.recordTimeout("wait_for", options[0].Timeout)
		if options[0].State != nil {
			state = *options[0].State
		}
	}

	elements := l.matches()
	visible := false
	for _, el := range elements {
		if !el.Hidden {
			visible = true
			break
		}
	}

	var ok bool
	switch state {
	case *playwright.WaitForSelectorStateAttached:
		ok = len(elements) > 0
	case *playwright.WaitForSelectorStateDetached:
		ok = len(elements) == 0
	case *playwright.WaitForSelectorStateHidden:
		ok = !visible
	default:
		ok = visible
	}
	if !ok {
		return TimeoutError("locator.wait_for", l.String())
	}
	return nil
}
