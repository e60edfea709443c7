package pages

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/samber/lo"

	"github.com/networkteam/discover-e2e/config"
	"github.com/networkteam/discover-e2e/internal/errs"
)

// Locators of the discover home page.
const (
	NavigationLocator  = "text=Popular"
	SearchInput        = "input[placeholder='SEARCH'], input[name='search']"
	SearchButton       = "text=SEARCH"
	MovieImages        = "img[alt*='Poster'], img[src*='image']"
	MovieCards         = "div[class*='cursor-pointer'], a[class*='cursor-pointer']"
	Sidebar            = "aside"
	TypeDropdown       = "div:has(#react-select-2-input) .css-yk16xz-control"
	GenreDropdown      = "div:has(#react-select-3-input) .css-yk16xz-control"
	YearFromDropdown   = "div:has(#react-select-4-input) .css-yk16xz-control"
	YearToDropdown     = "div:has(#react-select-5-input) .css-yk16xz-control"
	RatingSection      = "aside div:has-text('Ratings')"
	RatingContainer    = "aside div:has-text('Ratings') + div"
	NextPageButton     = "button:has-text('Next')"
	titleElements      = "h3, h2, h4, [class*='title']"
	yearElements       = "[class*='year'], [class*='date'], [class*='release']"
	textElements       = "div, span, p"
	suggestionElements = "[class*='suggestion'], [class*='dropdown'], [class*='autocomplete']"
	imagesCompleteJS   = "document.querySelector('img') && document.querySelector('img').complete"
)

// React-Select generates numbered inputs in the order the controls are rendered.
const (
	typeSelect     = 2
	genreSelect    = 3
	yearFromSelect = 4
	yearToSelect   = 5
)

// RatingStarLocators are tried in order; the first one with matches provides the stars.
var RatingStarLocators = []string{
	RatingContainer + " [class*='star']",
	RatingContainer + " [class*='rate']",
	RatingContainer + " [class*='rating']",
	RatingContainer + " [class*='★']",
	RatingContainer + " svg",
}

// PaginationLocators indicate a paginated listing when any of them matches.
var PaginationLocators = []string{
	"button:has-text('Next')",
	"button:has-text('Previous')",
	"[class*='pagination']",
	"[class*='page']",
}

const (
	maxTitles         = 10
	maxYears          = 20
	fallbackTextScans = 20
)

func reactSelectInput(n int) string {
	return fmt.Sprintf("#react-select-%d-input", n)
}

// HomePage is the page object of the discover listing with its search and sidebar filters.
type HomePage struct {
	*BasePage

	baseURL string
}

// NewHomePage wraps page as the home page of cfg.BaseURL.
func NewHomePage(page playwright.Page, cfg config.Config, opts ...Option) *HomePage {
	return &HomePage{
		BasePage: NewBasePage(page, cfg, opts...),
		baseURL:  cfg.BaseURL,
	}
}

// NavigateHome opens the base URL and waits for the listing.
func (h *HomePage) NavigateHome() error {
	if err := h.Navigate(h.baseURL); err != nil {
		return err
	}
	return h.WaitForPageLoad()
}

// WaitForPageLoad waits for the navigation and the first image.
func (h *HomePage) WaitForPageLoad() error {
	if _, err := h.WaitFor(NavigationLocator, playwright.WaitForSelectorStateVisible, WithTimeout(15*time.Second)); err != nil {
		return h.fail("Error waiting for page load", "page_load_error", err)
	}
	h.logger.Info("Navigation loaded")

	if _, err := h.WaitFor("img", playwright.WaitForSelectorStateVisible, WithTimeout(10*time.Second)); err != nil {
		return h.fail("Error waiting for page load", "page_load_error", err)
	}
	h.logger.Info("Images loaded")

	h.settle(time.Second)
	h.logger.Info("Home page loaded successfully")
	return nil
}

// RefreshPage reloads and waits for the listing again.
func (h *HomePage) RefreshPage() error {
	if err := h.Reload(); err != nil {
		return err
	}
	return h.WaitForPageLoad()
}

// SelectCategory switches the listing to category c.
func (h *HomePage) SelectCategory(c Category) error {
	if !c.Valid() {
		return errs.New(errs.InvalidConfig, "home.select_category", fmt.Sprintf("unknown category %q", c))
	}

	h.logger.Info("Selecting category", "category", c)
	if err := h.Click(c.Locator(), WithTimeout(10*time.Second)); err != nil {
		return h.fail("Failed to click category", "category_click_failed_"+string(c), err)
	}
	h.settle(2 * time.Second)
	h.logger.Info("Successfully clicked category", "category", c)
	return nil
}

// ClickSearch clicks the search button. Failures are only logged.
func (h *HomePage) ClickSearch() {
	if err := h.Click(SearchButton, WithTimeout(10*time.Second)); err != nil {
		h.logger.Warn("Search button click failed", "error", err)
		return
	}
	h.logger.Info("Clicked search button")
	h.settle(time.Second)
}

// selectReactOption opens a React-Select control and enters value into its input.
func (h *HomePage) selectReactOption(control string, input int, value string) error {
	if err := h.Click(control, WithTimeout(5*time.Second)); err != nil {
		return err
	}
	h.settle(500 * time.Millisecond)

	locator := reactSelectInput(input)
	if err := h.Fill(locator, value); err != nil {
		return err
	}
	return h.Press(locator, "Enter")
}

// ApplyTypeFilter restricts the listing to movies or TV shows.
func (h *HomePage) ApplyTypeFilter(t ContentType) error {
	if !t.Valid() {
		return errs.New(errs.InvalidConfig, "home.type_filter", fmt.Sprintf("invalid content type %q", t))
	}

	h.logger.Info("Applying type filter", "type", t)
	if _, err := h.WaitFor(Sidebar, playwright.WaitForSelectorStateVisible, WithTimeout(10*time.Second)); err != nil {
		return h.fail("Error applying type filter", "type_filter_error", err)
	}
	if err := h.selectReactOption(TypeDropdown, typeSelect, string(t)); err != nil {
		return h.fail("Error applying type filter", "type_filter_error", err)
	}
	h.logger.Info("Selected type", "type", t)
	h.settle(2 * time.Second)
	return nil
}

// ApplyGenreFilter selects genre in the genre filter.
func (h *HomePage) ApplyGenreFilter(genre string) error {
	if strings.TrimSpace(genre) == "" {
		return errs.New(errs.InvalidConfig, "home.genre_filter", "genre must not be empty")
	}

	h.logger.Info("Applying genre filter", "genre", genre)
	if _, err := h.WaitFor(Sidebar, playwright.WaitForSelectorStateVisible, WithTimeout(10*time.Second)); err != nil {
		return h.fail("Error applying genre filter", "genre_filter_error", err)
	}
	if err := h.selectReactOption(GenreDropdown, genreSelect, genre); err != nil {
		return h.fail("Error applying genre filter", "genre_filter_error", err)
	}
	h.logger.Info("Selected genre", "genre", genre)
	h.settle(2 * time.Second)
	return nil
}

// ApplyYearFilter selects the release year range. An inverted range is passed through unchanged.
func (h *HomePage) ApplyYearFilter(from, to int) error {
	h.logger.Info("Applying year filter", "from", from, "to", to)

	for _, locator := range []string{Sidebar, YearFromDropdown, YearToDropdown} {
		if _, err := h.WaitFor(locator, playwright.WaitForSelectorStateVisible, WithTimeout(10*time.Second)); err != nil {
			return h.fail("Error applying year filter", "year_filter_error", err)
		}
	}

	if err := h.selectReactOption(YearFromDropdown, yearFromSelect, strconv.Itoa(from)); err != nil {
		return h.fail("Error applying year filter", "year_filter_error", err)
	}
	h.logger.Info("Selected year from", "year", from)
	h.settle(time.Second)

	if err := h.selectReactOption(YearToDropdown, yearToSelect, strconv.Itoa(to)); err != nil {
		return h.fail("Error applying year filter", "year_filter_error", err)
	}
	h.logger.Info("Selected year to", "year", to)
	h.settle(3 * time.Second)
	return nil
}

// ratingStars returns the clickable stars of the rating filter.
// The first candidate locator with matches wins, otherwise all descendants of the rating container.
func (h *HomePage) ratingStars() []playwright.Locator {
	for _, locator := range RatingStarLocators {
		stars, err := h.page.Locator(locator).All()
		if err != nil || len(stars) == 0 {
			continue
		}
		h.logger.Info("Found star elements", "count", len(stars), "locator", locator)
		return stars
	}

	children, err := h.page.Locator(RatingContainer).Locator("*").All()
	if err != nil {
		h.logger.Warn("Could not list rating section children", "error", err)
		return nil
	}
	h.logger.Info("Found elements in rating section", "count", len(children))
	return children
}

// ApplyRatingFilter clicks the rating-th star. If fewer stars exist, it logs a warning and does nothing.
func (h *HomePage) ApplyRatingFilter(rating int) error {
	if rating < 1 {
		return errs.New(errs.InvalidConfig, "home.rating_filter", fmt.Sprintf("rating must be at least 1, got %d", rating))
	}

	h.logger.Info("Applying rating filter", "rating", rating)
	if _, err := h.WaitFor(Sidebar, playwright.WaitForSelectorStateVisible, WithTimeout(10*time.Second)); err != nil {
		return h.fail("Error applying rating filter", "rating_filter_error", err)
	}
	if _, err := h.WaitFor(RatingSection, playwright.WaitForSelectorStateVisible, WithTimeout(5*time.Second)); err != nil {
		return h.fail("Error applying rating filter", "rating_filter_error", err)
	}

	stars := h.ratingStars()
	if len(stars) < rating {
		h.logger.Warn("Not enough star elements found for rating", "rating", rating, "stars", len(stars))
		return nil
	}

	if err := stars[rating-1].Click(playwright.LocatorClickOptions{Timeout: playwright.Float(5000)}); err != nil {
		return h.fail("Error applying rating filter", "rating_filter_error", errs.FromDriver("home.rating_filter", err))
	}
	h.logger.Info("Selected star rating", "rating", rating)
	h.settle(2 * time.Second)
	return nil
}

// SearchMovies enters term into the search input and submits it.
// A page without a search input is logged and not treated as an error.
func (h *HomePage) SearchMovies(term string) error {
	h.logger.Info("Searching for "+term, "term", term)

	count, err := h.Count(SearchInput)
	if err != nil {
		return h.fail("Error searching movies", "search_error", err)
	}
	if count == 0 {
		h.logger.Warn("Search input field not found")
		return nil
	}

	for _, step := range []func() error{
		func() error { return h.Click(SearchInput) },
		func() error { return h.Fill(SearchInput, "") },
		func() error { return h.Fill(SearchInput, term) },
		func() error { return h.Press(SearchInput, "Enter") },
	} {
		if err := step(); err != nil {
			return h.fail("Error searching movies", "search_error", err)
		}
	}
	h.logger.Info("Entered search term", "term", term)
	h.settle(3 * time.Second)
	return nil
}

// ClearSearch empties the search input and submits it. Failures are only logged.
func (h *HomePage) ClearSearch() {
	count, err := h.Count(SearchInput)
	if err != nil || count == 0 {
		return
	}

	for _, step := range []func() error{
		func() error { return h.Click(SearchInput) },
		func() error { return h.Fill(SearchInput, "") },
		func() error { return h.Press(SearchInput, "Enter") },
	} {
		if err := step(); err != nil {
			h.logger.Warn("Error clearing search", "error", err)
			return
		}
	}
	h.logger.Info("Cleared search field")
	h.settle(2 * time.Second)
}

// MovieCount returns the number of poster images, 0 on error.
func (h *HomePage) MovieCount() int {
	count, err := h.Count(MovieImages)
	if err != nil {
		h.logger.Error("Error counting movies", "error", err)
		return 0
	}
	h.logger.Info("Found movie images", "count", count)
	return count
}

// SearchResultsCount returns the number of poster images in the results, 0 on error.
func (h *HomePage) SearchResultsCount() int {
	count, err := h.Count(MovieImages)
	if err != nil {
		h.logger.Error("Error counting search results", "error", err)
		return 0
	}
	h.logger.Info("Found search results", "count", count)
	return count
}

// visibleTexts returns the trimmed non-empty texts of the visible elements of locator.
// Only the first limit elements are inspected if limit is positive.
func (h *HomePage) visibleTexts(locator string, limit int) ([]string, error) {
	if err := h.ensureOpen("home.visible_texts"); err != nil {
		return nil, err
	}
	elements, err := h.page.Locator(locator).All()
	if err != nil {
		return nil, errs.FromDriver("home.visible_texts", err)
	}
	if limit > 0 && len(elements) > limit {
		elements = elements[:limit]
	}

	var texts []string
	for _, element := range elements {
		visible, err := element.IsVisible()
		if err != nil || !visible {
			continue
		}
		text, err := element.TextContent()
		if err != nil {
			continue
		}
		if text = strings.TrimSpace(text); text != "" {
			texts = append(texts, text)
		}
	}
	return texts, nil
}

// MovieTitles returns up to ten visible heading texts.
func (h *HomePage) MovieTitles() []string {
	titles, err := h.visibleTexts(titleElements, 0)
	if err != nil {
		h.logger.Error("Error getting movie titles", "error", err)
		return nil
	}
	h.logger.Info("Found potential movie titles", "count", len(titles))
	if len(titles) > maxTitles {
		titles = titles[:maxTitles]
	}
	return titles
}

// SearchSuggestions returns the texts of visible suggestion dropdown entries.
func (h *HomePage) SearchSuggestions() []string {
	suggestions, err := h.visibleTexts(suggestionElements, 0)
	if err != nil {
		h.logger.Error("Error getting search suggestions", "error", err)
		return nil
	}
	h.logger.Info("Found search suggestions", "count", len(suggestions))
	return suggestions
}

// MovieYears scrapes release years from the listing, at most twenty.
//
// Elements whose class mentions year, date or release are searched first, keeping every year found.
// Only if that yields nothing, the first twenty div, span and p elements are scanned and
// years outside MinPlausibleYear..MaxPlausibleYear are dropped.
func (h *HomePage) MovieYears() []int {
	texts, err := h.visibleTexts(yearElements, 0)
	if err != nil {
		h.logger.Error("Error extracting movie years", "error", err)
		return nil
	}
	years := ExtractYears(texts, false)

	if len(years) == 0 {
		texts, err = h.visibleTexts(textElements, fallbackTextScans)
		if err != nil {
			h.logger.Error("Error extracting movie years", "error", err)
			return nil
		}
		years = ExtractYears(texts, true)
	}

	if len(years) > maxYears {
		years = years[:maxYears]
	}
	h.logger.Info("Found years", "years", lo.Subset(years, 0, 10))
	return years
}

// VerifyYearRange reports whether all scraped years lie within [from, to].
// It also reports true when no years could be found.
func (h *HomePage) VerifyYearRange(from, to int) bool {
	years := h.MovieYears()
	if len(years) == 0 {
		h.logger.Warn("No years found to verify")
		return true
	}

	if outside := YearsOutside(years, from, to); len(outside) > 0 {
		h.logger.Warn("Found years out of range", "years", outside, "from", from, "to", to)
		return false
	}
	h.logger.Info("All years are within range", "count", len(years), "from", from, "to", to)
	return true
}

// VerifySearchResultsContain reports whether the page text contains term, ignoring case.
func (h *HomePage) VerifySearchResultsContain(term string) bool {
	if err := h.ensureOpen("home.verify_search_results"); err != nil {
		return false
	}
	body, err := h.page.Locator("body").TextContent()
	if err != nil {
		h.logger.Error("Error verifying search results", "error", err)
		return false
	}
	contains := strings.Contains(strings.ToLower(body), strings.ToLower(term))
	h.logger.Info("Checked search results for term", "term", term, "found", contains)
	return contains
}

// IsSidebarVisible reports whether the filter sidebar is shown.
func (h *HomePage) IsSidebarVisible() bool {
	if h.ensureOpen("home.sidebar") != nil {
		return false
	}
	visible, err := h.page.Locator(Sidebar).IsVisible()
	return err == nil && visible
}

// PageTitle returns the document title or an empty string.
func (h *HomePage) PageTitle() string {
	title, err := h.Title()
	if err != nil {
		return ""
	}
	return title
}

// VerifyPageLoaded reports whether the navigation is visible and there are images or a title.
func (h *HomePage) VerifyPageLoaded() bool {
	if h.ensureOpen("home.verify_page_loaded") != nil {
		return false
	}

	hasNavigation, err := h.page.Locator(NavigationLocator).IsVisible()
	if err != nil {
		h.logger.Error("Error verifying page load", "error", err)
		return false
	}
	images, err := h.Count("img")
	if err != nil {
		h.logger.Error("Error verifying page load", "error", err)
		return false
	}
	hasTitle := h.PageTitle() != ""

	h.logger.Info("Page verification", "navigation", hasNavigation, "images", images > 0, "title", hasTitle)
	return hasNavigation && (images > 0 || hasTitle)
}

// WaitForImagesToLoad waits until the first image finished loading. Failures are only logged.
func (h *HomePage) WaitForImagesToLoad() {
	if _, err := h.WaitFor("img", playwright.WaitForSelectorStateVisible, WithTimeout(10*time.Second)); err != nil {
		h.logger.Warn("Images may not have fully loaded", "error", err)
		return
	}
	if _, err := h.page.WaitForFunction(imagesCompleteJS, nil, playwright.PageWaitForFunctionOptions{
		Timeout: playwright.Float(10000),
	}); err != nil {
		h.logger.Warn("Images may not have fully loaded", "error", err)
		return
	}
	h.logger.Info("Images finished loading")
}

// IsPaginationAvailable reports whether any pagination control exists.
func (h *HomePage) IsPaginationAvailable() bool {
	for _, locator := range PaginationLocators {
		count, err := h.Count(locator)
		if err != nil {
			h.logger.Error("Error checking pagination", "error", err)
			return false
		}
		if count > 0 {
			h.logger.Info("Pagination found", "locator", locator)
			return true
		}
	}
	h.logger.Info("No pagination found")
	return false
}

// NavigateToNextPage clicks the next page button if present and enabled.
// It reports whether the click happened.
func (h *HomePage) NavigateToNextPage() bool {
	count, err := h.Count(NextPageButton)
	if err != nil {
		h.logger.Error("Error navigating to next page", "error", err)
		return false
	}
	if count == 0 {
		h.logger.Info("Next page button not available")
		return false
	}

	next := h.page.Locator(NextPageButton).First()
	enabled, err := next.IsEnabled()
	if err != nil || !enabled {
		h.logger.Info("Next page button not available")
		return false
	}
	if err := h.Click(NextPageButton, WithTimeout(5*time.Second)); err != nil {
		h.logger.Error("Error navigating to next page", "error", err)
		return false
	}
	h.logger.Info("Clicked next page button")
	h.settle(3 * time.Second)
	return true
}

// IsSearchInputVisible reports whether the search input is shown.
func (h *HomePage) IsSearchInputVisible() bool {
	return h.IsVisible(SearchInput)
}

// InputAttributes are the attributes of the search input checked by tests.
type InputAttributes struct {
	Placeholder string
	Type        string
}

// SearchInputAttributes returns the placeholder and type of the search input.
// Missing attributes are empty.
func (h *HomePage) SearchInputAttributes() InputAttributes {
	var attrs InputAttributes
	if h.ensureOpen("home.search_input_attributes") != nil {
		return attrs
	}
	input := h.page.Locator(SearchInput).First()
	attrs.Placeholder, _ = input.GetAttribute("placeholder")
	attrs.Type, _ = input.GetAttribute("type")
	return attrs
}
