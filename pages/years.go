package pages

import (
	"regexp"
	"strconv"

	"github.com/samber/lo"
)

// Years outside this range are ignored when scraping arbitrary page text.
const (
	MinPlausibleYear = 1900
	MaxPlausibleYear = 2024
)

var yearPattern = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)

// ExtractYears returns every four-digit year starting with 19 or 20 found in texts, in order.
// If bounded is set, only years between MinPlausibleYear and MaxPlausibleYear are kept.
func ExtractYears(texts []string, bounded bool) []int {
	var years []int
	for _, text := range texts {
		for _, match := range yearPattern.FindAllString(text, -1) {
			year, err := strconv.Atoi(match)
			if err != nil {
				continue
			}
			if bounded && (year < MinPlausibleYear || year > MaxPlausibleYear) {
				continue
			}
			years = append(years, year)
		}
	}
	return years
}

// YearsOutside returns the years not within [from, to].
func YearsOutside(years []int, from, to int) []int {
	return lo.Filter(years, func(y int, _ int) bool {
		return y < from || y > to
	})
}
