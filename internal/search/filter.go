// Package search compiles structured catalog filter requests into query
// plans: a deterministic predicate list, a resolved sort spec and a
// pagination window.
package search

import (
	"strconv"
	"strings"
)

// DefaultLimit is the page size used when the client sends none.
const DefaultLimit = 12

// FilterQuery is the request-scoped description of a catalog search. All
// fields arrive as string query parameters and are coerced here.
type FilterQuery struct {
	Term        string   `json:"term"`
	Category    string   `json:"category"`
	Subcategory string   `json:"subcategory"`
	MinPrice    *float64 `json:"minPrice"`
	MaxPrice    *float64 `json:"maxPrice"`
	HairType    string   `json:"hairType"`
	SkinType    string   `json:"skinType"`
	MinRating   *float64 `json:"minRating"`
	SortBy      string   `json:"sortBy"`
	SortOrder   string   `json:"sortOrder"`
	Page        int      `json:"page"`
	Limit       int      `json:"limit"`
}

// QueryGetter reads a raw query parameter; fiber's Ctx.Query satisfies it.
type QueryGetter func(key string, defaultValue ...string) string

// ParseFilter builds a FilterQuery from string-typed query parameters.
// Malformed numeric values are dropped or defaulted, never rejected.
func ParseFilter(query QueryGetter) FilterQuery {
	fq := FilterQuery{
		Term:        strings.TrimSpace(query("search")),
		Category:    strings.TrimSpace(query("category")),
		Subcategory: strings.TrimSpace(query("subcategory")),
		HairType:    strings.TrimSpace(query("hairType")),
		SkinType:    strings.TrimSpace(query("skinType")),
		SortBy:      strings.TrimSpace(query("sortBy")),
		SortOrder:   strings.ToLower(strings.TrimSpace(query("sortOrder"))),
		Page:        positiveInt(query("page"), 1),
		Limit:       positiveInt(query("limit"), DefaultLimit),
	}

	fq.MinPrice = parseFloat(query("minPrice"))
	fq.MaxPrice = parseFloat(query("maxPrice"))
	fq.MinRating = parseFloat(query("minRating"))

	return fq
}

func positiveInt(value string, fallback int) int {
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func parseFloat(value string) *float64 {
	if value == "" {
		return nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil
	}
	return &parsed
}

// Echo returns the filter values to send back to the client for state
// reconciliation.
func (fq FilterQuery) Echo() map[string]interface{} {
	echo := map[string]interface{}{
		"search":      fq.Term,
		"category":    fq.Category,
		"subcategory": fq.Subcategory,
		"hairType":    fq.HairType,
		"skinType":    fq.SkinType,
		"sortBy":      fq.SortBy,
		"sortOrder":   fq.SortOrder,
	}
	if fq.MinPrice != nil {
		echo["minPrice"] = *fq.MinPrice
	}
	if fq.MaxPrice != nil {
		echo["maxPrice"] = *fq.MaxPrice
	}
	if fq.MinRating != nil {
		echo["minRating"] = *fq.MinRating
	}
	return echo
}
