// Package pwfake provides in-memory stand-ins for playwright-go objects.
//
// Each fake embeds the playwright interface it replaces and overrides only the methods
// the harness uses. Calling anything else panics on the nil embedded interface,
// which makes unexpected driver usage visible in unit tests.
package pwfake

import (
	"fmt"
	"slices"
	"sync"

	"github.com/playwright-community/playwright-go"
)

// Journal records actions of fakes in the order they happen.
type Journal struct {
	mu      sync.Mutex
	entries []string
}

// Record appends an entry.
func (j *Journal) Record(format string, args ...any) {
	if j == nil {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, fmt.Sprintf(format, args...))
}

// Entries returns a copy of all entries.
func (j *Journal) Entries() []string {
	if j == nil {
		return nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	return slices.Clone(j.entries)
}

// TimeoutError builds an error that matches playwright.ErrTimeout like a real driver timeout.
func TimeoutError(op, selector string) error {
	return fmt.Errorf("%w: %s: waiting for locator(%q): Timeout exceeded", playwright.ErrTimeout, op, selector)
}

// ClosedError builds an error that matches playwright.ErrTargetClosed.
func ClosedError(op string) error {
	return fmt.Errorf("%w: %s: target page, context or browser has been closed", playwright.ErrTargetClosed, op)
}
