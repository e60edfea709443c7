package pages_test

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/networkteam/discover-e2e/pages"
)

func TestExtractYears(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		texts   []string
		bounded bool
		want    []int
	}{
		{
			name:  "full four digit years",
			texts: []string{"Deadpool (2016)", "Released 1999-03-31"},
			want:  []int{2016, 1999},
		},
		{
			name:  "longer numbers and other centuries are ignored",
			texts: []string{"20160 votes", "1850", "2100", "id 19999"},
		},
		{
			name:    "bounded drops implausible years",
			texts:   []string{"Released 1999", "2027 (out of range)", "Copyright 2021"},
			bounded: true,
			want:    []int{1999, 2021},
		},
		{
			name:  "unbounded keeps future years",
			texts: []string{"Released 1999", "2027 (out of range)", "Copyright 2021"},
			want:  []int{1999, 2027, 2021},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pages.ExtractYears(tt.texts, tt.bounded))
		})
	}
}

func TestExtractYears_FindsEveryEmbeddedYear(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		years := rapid.SliceOf(rapid.IntRange(1900, 2099)).Draw(t, "years")
		bounded := rapid.Bool().Draw(t, "bounded")

		words := make([]string, len(years))
		var want []int
		for i, y := range years {
			words[i] = "(" + strconv.Itoa(y) + ")"
			if !bounded || y <= pages.MaxPlausibleYear {
				want = append(want, y)
			}
		}

		got := pages.ExtractYears([]string{strings.Join(words, " ")}, bounded)
		if len(got) != len(want) {
			t.Fatalf("expected %v, got %v", want, got)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("expected %v, got %v", want, got)
			}
		}
	})
}

func TestYearsOutside(t *testing.T) {
	t.Parallel()

	assert.Empty(t, pages.YearsOutside([]int{2020, 2021, 2023}, 2020, 2023))
	assert.Equal(t, []int{2019, 2024}, pages.YearsOutside([]int{2019, 2020, 2024}, 2020, 2023))
	// Inverted ranges contain nothing
	assert.Equal(t, []int{2021}, pages.YearsOutside([]int{2021}, 2023, 2020))
}
