package pages

import (
	"fmt"
	"strings"

	"github.com/networkteam/discover-e2e/internal/errs"
)

// Category is one of the listing tabs in the top navigation.
type Category string

const (
	Popular  Category = "popular"
	Trending Category = "trending"
	Newest   Category = "newest"
	TopRated Category = "top_rated"
)

// Categories lists all navigation tabs in display order.
var Categories = []Category{Popular, Trending, Newest, TopRated}

var categoryLocators = map[Category]string{
	Popular:  "text=Popular",
	Trending: "text=Trend",
	Newest:   "text=Newest",
	TopRated: "text=Top rated",
}

var categoryAliases = map[string]Category{
	"popular":   Popular,
	"trending":  Trending,
	"trend":     Trending,
	"newest":    Newest,
	"top_rated": TopRated,
	"top rated": TopRated,
}

// ParseCategory parses a category name case-insensitively.
func ParseCategory(s string) (Category, error) {
	if c, ok := categoryAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return c, nil
	}
	return "", errs.New(errs.InvalidConfig, "pages.category", fmt.Sprintf("unknown category %q", s))
}

// Locator returns the selector of the navigation tab.
func (c Category) Locator() string {
	return categoryLocators[c]
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	_, ok := categoryLocators[c]
	return ok
}

// ContentType is an option of the type filter.
type ContentType string

const (
	Movie  ContentType = "Movie"
	TVShow ContentType = "TV Show"
)

var contentTypeAliases = map[string]ContentType{
	"movie":    Movie,
	"movies":   Movie,
	"tv_show":  TVShow,
	"tv":       TVShow,
	"tv shows": TVShow,
	"tv show":  TVShow,
}

// ParseContentType parses a content type name case-insensitively.
func ParseContentType(s string) (ContentType, error) {
	if t, ok := contentTypeAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return t, nil
	}
	return "", errs.New(errs.InvalidConfig, "pages.content_type", fmt.Sprintf("invalid content type %q", s))
}

// Valid reports whether t is a known content type.
func (t ContentType) Valid() bool {
	return t == Movie || t == TVShow
}
