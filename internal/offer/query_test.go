package offer

import (
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/offerhub/offerhub/internal/apperr"
)

func TestParseSearchDefaults(t *testing.T) {
	q, err := ParseSearch(Params{})
	require.NoError(t, err)
	assert.Equal(t, SearchQuery{Page: 1}, q)
	assert.Equal(t, 0, q.Offset())
}

func TestParseSearch(t *testing.T) {
	q, err := ParseSearch(Params{
		"title":    "jack",
		"priceMin": "10",
		"priceMax": "50.5",
		"sort":     "price-desc",
		"limit":    "5",
		"page":     "3",
	})
	require.NoError(t, err)
	assert.Equal(t, "jack", q.Title)
	require.NotNil(t, q.PriceMin)
	require.NotNil(t, q.PriceMax)
	assert.Equal(t, 10.0, *q.PriceMin)
	assert.Equal(t, 50.5, *q.PriceMax)
	assert.Equal(t, SortPriceDesc, q.Sort)
	assert.Equal(t, 5, q.Limit)
	assert.Equal(t, 3, q.Page)
	assert.Equal(t, 10, q.Offset())
}

func TestParseSearchLenientPaging(t *testing.T) {
	cases := []struct {
		limit, page string
		wantLimit   int
		wantPage    int
	}{
		{"abc", "xyz", 0, 1},
		{"0", "0", 0, 1},
		{"-3", "-2", 0, 1},
		{"2", "", 2, 1},
	}
	for _, tc := range cases {
		q, err := ParseSearch(Params{"limit": tc.limit, "page": tc.page})
		require.NoError(t, err)
		assert.Equal(t, tc.wantLimit, q.Limit, "limit %q", tc.limit)
		assert.Equal(t, tc.wantPage, q.Page, "page %q", tc.page)
	}
}

func TestSearchQueryOffset(t *testing.T) {
	cases := []struct {
		name        string
		limit, page string
		want        int
	}{
		{"first page", "10", "1", 0},
		{"third page", "10", "3", 20},
		{"unbounded ignores page", "", "7", 0},
		{"page wraps to min int", "2", "4611686018427387905", math.MaxInt},
		{"page wraps to zero", "4", "4611686018427387905", math.MaxInt},
		{"huge limit second page", strconv.Itoa(math.MaxInt), "2", math.MaxInt},
		{"huge limit first page", strconv.Itoa(math.MaxInt), "1", 0},
		{"largest page", "1", strconv.Itoa(math.MaxInt), math.MaxInt - 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q, err := ParseSearch(Params{"limit": tc.limit, "page": tc.page})
			require.NoError(t, err)
			assert.Equal(t, tc.want, q.Offset())
		})
	}
}

func TestParseSearchUnknownSortIsNatural(t *testing.T) {
	q, err := ParseSearch(Params{"sort": "cheapest"})
	require.NoError(t, err)
	assert.Equal(t, SortNatural, q.Sort)
}

func TestParseSearchRejectsBadPrice(t *testing.T) {
	for _, key := range []string{"priceMin", "priceMax"} {
		_, err := ParseSearch(Params{key: "ten"})
		require.Error(t, err)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	}
}

func TestSearchQueryMatches(t *testing.T) {
	min, max := 10.0, 20.0
	q := SearchQuery{Title: "JACK", PriceMin: &min, PriceMax: &max}
	assert.True(t, q.Matches(Offer{Title: "Denim jacket", Price: 10}))
	assert.True(t, q.Matches(Offer{Title: "jacket", Price: 20}))
	assert.False(t, q.Matches(Offer{Title: "jacket", Price: 20.01}))
	assert.False(t, q.Matches(Offer{Title: "coat", Price: 15}))
}
