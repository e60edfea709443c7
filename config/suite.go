package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/networkteam/discover-e2e/internal/errs"
)

// Suite is a named selection of tests.
type Suite string

const (
	SuiteSmoke      Suite = "smoke"
	SuiteRegression Suite = "regression"
	SuiteAPI        Suite = "api"
	SuiteUI         Suite = "ui"
	SuiteAll        Suite = "all"
)

// Suites lists all selectable suites.
var Suites = []Suite{SuiteSmoke, SuiteRegression, SuiteAPI, SuiteUI, SuiteAll}

// ParseSuite parses a suite name case-insensitively.
func ParseSuite(s string) (Suite, error) {
	suite := Suite(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(Suites, suite) {
		return suite, nil
	}
	return "", errs.New(errs.InvalidConfig, "config.suite", fmt.Sprintf("unknown suite %q", s))
}

// Tag marks a test as part of one or more suites.
type Tag string

const (
	TagSmoke      Tag = "smoke"
	TagRegression Tag = "regression"
	TagAPI        Tag = "api"
	TagUI         Tag = "ui"
	// TagKnownIssue marks tests documenting a known defect of the site.
	TagKnownIssue Tag = "known_issue"
)

// Selects reports whether a test carrying tags belongs to the suite.
func (s Suite) Selects(tags ...Tag) bool {
	switch s {
	case SuiteAll:
		return true
	case SuiteSmoke:
		return slices.Contains(tags, TagSmoke)
	case SuiteRegression:
		return slices.Contains(tags, TagRegression)
	case SuiteAPI:
		return slices.Contains(tags, TagAPI)
	case SuiteUI:
		return slices.Contains(tags, TagUI)
	default:
		return false
	}
}
