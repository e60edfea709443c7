package pwfake

import (
	"github.com/playwright-community/playwright-go"

	"github.com/networkteam/discover-e2e/config"
)

// Driver is a running driver offering fake chromium and firefox browser types.
type Driver struct {
	Journal *Journal
	Types   map[config.BrowserKind]*BrowserType
	// Stopped counts calls of Stop.
	Stopped int
}

// NewDriver creates a driver recording into journal.
func NewDriver(journal *Journal) *Driver {
	return &Driver{
		Journal: journal,
		Types: map[config.BrowserKind]*BrowserType{
			config.Chromium: NewBrowserType(journal, "chromium"),
			config.Firefox:  NewBrowserType(journal, "firefox"),
		},
	}
}

// BrowserType returns the fake of kind or nil if there is none.
func (d *Driver) BrowserType(kind config.BrowserKind) playwright.BrowserType {
	bt, ok := d.Types[kind]
	if !ok {
		return nil
	}
	return bt
}

func (d *Driver) Stop() error {
	d.Stopped++
	d.Journal.Record("driver stopped")
	return nil
}
