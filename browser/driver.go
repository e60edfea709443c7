package browser

import (
	"github.com/playwright-community/playwright-go"

	"github.com/networkteam/discover-e2e/config"
)

// Driver is a running automation driver that can launch browsers.
type Driver interface {
	// BrowserType returns the launcher for kind or nil if the driver does not support it.
	BrowserType(kind config.BrowserKind) playwright.BrowserType
	// Stop shuts the driver down.
	Stop() error
}

// StartFunc starts a Driver.
type StartFunc func() (Driver, error)

// StartPlaywright starts the playwright driver.
func StartPlaywright() (Driver, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, err
	}
	return &playwrightDriver{pw: pw}, nil
}

type playwrightDriver struct {
	pw *playwright.Playwright
}

func (d *playwrightDriver) BrowserType(kind config.BrowserKind) playwright.BrowserType {
	switch kind {
	case config.Chromium:
		return d.pw.Chromium
	case config.Firefox:
		return d.pw.Firefox
	case config.WebKit:
		return d.pw.WebKit
	default:
		return nil
	}
}

func (d *playwrightDriver) Stop() error {
	return d.pw.Stop()
}

// Install downloads the playwright driver and the browsers of kinds.
func Install(kinds ...config.BrowserKind) error {
	browsers := make([]string, len(kinds))
	for i, k := range kinds {
		browsers[i] = string(k)
	}
	return playwright.Install(&playwright.RunOptions{
		Browsers: browsers,
	})
}
