//go:build acceptance
// +build acceptance

package acceptance

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/networkteam/discover-e2e/config"
	"github.com/networkteam/discover-e2e/pages"
)

var filteringTags = tags(config.TagUI)

// TestSiteLoadsAndShowsMovies checks that posters are shown (TC001).
func TestSiteLoadsAndShowsMovies(t *testing.T) {
	t.Parallel()

	WithTestFixtures(t, filteringTags, func(t *testing.T, f *TestFixtures) {
		require.NoError(t, f.Home.NavigateHome())

		images, err := f.Home.Count("img")
		require.NoError(t, err)
		f.Logger.Info("Found images on the page", "count", images)
		assert.Positive(t, images, "no movie images found")

		f.Screenshot(t, "site_loaded_successfully")
	})
}

// TestPopularCategoryClick switches to the popular listing (TC002).
func TestPopularCategoryClick(t *testing.T) {
	t.Parallel()

	WithTestFixtures(t, filteringTags, func(t *testing.T, f *TestFixtures) {
		require.NoError(t, f.Home.NavigateHome())

		require.NoError(t, f.Home.SelectCategory(pages.Popular))
		f.Screenshot(t, "popular_clicked")

		assert.NotEmpty(t, f.Home.PageTitle(), "page title missing")
	})
}

// TestYearRangeFiltering filters by release year including a single year and an inverted range (TC003).
func TestYearRangeFiltering(t *testing.T) {
	t.Parallel()

	WithTestFixtures(t, filteringTags, func(t *testing.T, f *TestFixtures) {
		require.NoError(t, f.Home.NavigateHome())
		f.Screenshot(t, "before_year_filter")

		require.NoError(t, f.Home.ApplyYearFilter(2020, 2023))
		f.Screenshot(t, "after_year_filter_2020_2023")
		assert.True(t, f.Home.VerifyYearRange(2020, 2023), "some movies are outside the 2020-2023 year range")

		require.NoError(t, f.Home.ApplyYearFilter(2022, 2022))
		f.Screenshot(t, "year_filter_boundary_2022")
		f.Logger.Info("Boundary year checked", "year", 2022, "withinRange", f.Home.VerifyYearRange(2022, 2022))

		// The site may reject an inverted range, it only must not break the page
		if err := f.Home.ApplyYearFilter(2025, 2023); err != nil {
			f.Logger.Warn("Inverted year range caused an error", "error", err)
		} else {
			f.Screenshot(t, "invalid_year_range_test")
		}

		f.Logger.Info("Movie count after year filtering", "count", f.Home.MovieCount())
		assert.True(t, f.Home.VerifyPageLoaded(), "page should still be loaded")
	})
}

// TestTypeFiltering filters by content type (TC004 movies, TC005 TV shows).
func TestTypeFiltering(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		name        string
		contentType pages.ContentType
		shot        string
	}{
		{"TC004_movies", pages.Movie, "after_type_filter_movies"},
		{"TC005_tv_shows", pages.TVShow, "after_type_filter_tv_shows"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			WithTestFixtures(t, filteringTags, func(t *testing.T, f *TestFixtures) {
				require.NoError(t, f.Home.NavigateHome())
				f.Screenshot(t, "before_type_filter")

				require.NoError(t, f.Home.ApplyTypeFilter(tc.contentType))
				f.Screenshot(t, tc.shot)

				f.Logger.Info("Content count after type filter", "type", tc.contentType, "count", f.Home.MovieCount())
				assert.True(t, f.Home.IsSidebarVisible(), "filters should still be shown")
			})
		})
	}
}

// TestGenreFiltering tries genres until one shows content (TC006).
func TestGenreFiltering(t *testing.T) {
	t.Parallel()

	WithTestFixtures(t, filteringTags, func(t *testing.T, f *TestFixtures) {
		require.NoError(t, f.Home.NavigateHome())
		f.Screenshot(t, "before_genre_filter")

		for _, genre := range []string{"Action", "Comedy", "Drama", "Horror", "Romance"} {
			if err := f.Home.ApplyGenreFilter(genre); err != nil {
				f.Logger.Warn("Genre filter failed", "genre", genre, "error", err)
				continue
			}
			f.Screenshot(t, "genre_filter_"+strings.ToLower(genre))

			count := f.Home.MovieCount()
			f.Logger.Info("Content count for genre", "genre", genre, "count", count)
			if count > 0 {
				f.Logger.Info("Genre filter shows content", "genre", genre)
				break
			}
		}
	})
}

// TestRatingFiltering tries star ratings until one shows content (TC007).
func TestRatingFiltering(t *testing.T) {
	t.Parallel()

	WithTestFixtures(t, filteringTags, func(t *testing.T, f *TestFixtures) {
		require.NoError(t, f.Home.NavigateHome())
		f.Screenshot(t, "before_rating_filter")

		for _, rating := range []int{3, 5, 7, 9} {
			if err := f.Home.ApplyRatingFilter(rating); err != nil {
				f.Logger.Warn("Rating filter failed", "rating", rating, "error", err)
				continue
			}
			f.Screenshot(t, fmt.Sprintf("rating_filter_%d_stars", rating))

			count := f.Home.MovieCount()
			f.Logger.Info("Content count for rating", "rating", rating, "count", count)
			if count > 0 {
				break
			}
		}
	})
}

// TestCombinedFilters applies type, year and rating filters together (TC008).
// Filter errors are logged and do not fail the test.
func TestCombinedFilters(t *testing.T) {
	t.Parallel()

	WithTestFixtures(t, filteringTags, func(t *testing.T, f *TestFixtures) {
		require.NoError(t, f.Home.NavigateHome())
		f.Screenshot(t, "before_combined_filters")

		err := f.Home.ApplyTypeFilter(pages.Movie)
		if err == nil {
			err = f.Home.ApplyYearFilter(2020, 2023)
		}
		if err == nil {
			err = f.Home.ApplyRatingFilter(5)
		}
		if err != nil {
			f.Logger.Warn("Combined filters failed", "error", err)
			f.Screenshot(t, "combined_filters_error")
			return
		}

		f.Screenshot(t, "after_combined_filters")
		f.Logger.Info("Content count after combined filters", "count", f.Home.MovieCount())
	})
}
