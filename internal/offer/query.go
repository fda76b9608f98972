// Package offer implements the listing catalog: filtered, sorted and paged
// search over offers, and publishing, partial update and removal of offers.
package offer

import (
	"math"
	"strconv"
	"strings"

	"github.com/offerhub/offerhub/internal/apperr"
)

// Params are raw query-string values keyed by parameter name. An empty
// value is treated as absent.
type Params map[string]string

// SortOrder selects the result ordering.
type SortOrder int

const (
	SortNatural SortOrder = iota
	SortPriceAsc
	SortPriceDesc
)

// SearchQuery is a decoded catalog search.
type SearchQuery struct {
	Title    string
	PriceMin *float64
	PriceMax *float64
	Sort     SortOrder
	// Limit <= 0 means no cap.
	Limit int
	// Page is 1-based.
	Page int
}

// ParseSearch decodes untyped search parameters. Missing or non-numeric
// limit means no cap; page values below 1 or non-numeric become 1.
func ParseSearch(p Params) (SearchQuery, error) {
	q := SearchQuery{Title: p["title"], Page: 1}

	var err error
	if q.PriceMin, err = parsePrice(p, "priceMin"); err != nil {
		return SearchQuery{}, err
	}
	if q.PriceMax, err = parsePrice(p, "priceMax"); err != nil {
		return SearchQuery{}, err
	}

	switch p["sort"] {
	case "price-asc":
		q.Sort = SortPriceAsc
	case "price-desc":
		q.Sort = SortPriceDesc
	}

	if limit, err := strconv.Atoi(strings.TrimSpace(p["limit"])); err == nil && limit > 0 {
		q.Limit = limit
	}
	if page, err := strconv.Atoi(strings.TrimSpace(p["page"])); err == nil && page > 1 {
		q.Page = page
	}
	return q, nil
}

func parsePrice(p Params, key string) (*float64, error) {
	raw := strings.TrimSpace(p[key])
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, apperr.Validation("invalid " + key)
	}
	return &v, nil
}

// Offset is the number of matches skipped before the current page. Pages
// too far out to be addressed saturate at math.MaxInt, past every match.
func (q SearchQuery) Offset() int {
	if q.Limit <= 0 || q.Page <= 1 {
		return 0
	}
	if q.Page-1 > math.MaxInt/q.Limit {
		return math.MaxInt
	}
	return (q.Page - 1) * q.Limit
}

// Matches reports whether o satisfies the filter part of q.
func (q SearchQuery) Matches(o Offer) bool {
	if q.Title != "" && !strings.Contains(strings.ToLower(o.Title), strings.ToLower(q.Title)) {
		return false
	}
	if q.PriceMin != nil && o.Price < *q.PriceMin {
		return false
	}
	if q.PriceMax != nil && o.Price > *q.PriceMax {
		return false
	}
	return true
}
