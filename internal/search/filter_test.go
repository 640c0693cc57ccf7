package search

import "testing"

func queryFrom(values map[string]string) QueryGetter {
	return func(key string, defaultValue ...string) string {
		if v, ok := values[key]; ok {
			return v
		}
		if len(defaultValue) > 0 {
			return defaultValue[0]
		}
		return ""
	}
}

func TestParseFilter(t *testing.T) {
	t.Run("coerces full parameter set", func(t *testing.T) {
		fq := ParseFilter(queryFrom(map[string]string{
			"search":      " argan oil ",
			"category":    "haircare",
			"subcategory": "oils",
			"minPrice":    "10",
			"maxPrice":    "30.5",
			"hairType":    "dry",
			"skinType":    "sensitive",
			"minRating":   "4",
			"sortBy":      "price",
			"sortOrder":   "ASC",
			"page":        "2",
			"limit":       "24",
		}))

		if fq.Term != "argan oil" {
			t.Errorf("term not trimmed: %q", fq.Term)
		}
		if fq.MinPrice == nil || *fq.MinPrice != 10 {
			t.Errorf("minPrice = %v", fq.MinPrice)
		}
		if fq.MaxPrice == nil || *fq.MaxPrice != 30.5 {
			t.Errorf("maxPrice = %v", fq.MaxPrice)
		}
		if fq.MinRating == nil || *fq.MinRating != 4 {
			t.Errorf("minRating = %v", fq.MinRating)
		}
		if fq.SortOrder != "asc" {
			t.Errorf("sortOrder not lowercased: %q", fq.SortOrder)
		}
		if fq.Page != 2 || fq.Limit != 24 {
			t.Errorf("page/limit = %d/%d", fq.Page, fq.Limit)
		}
	})

	t.Run("malformed numbers are dropped or defaulted", func(t *testing.T) {
		fq := ParseFilter(queryFrom(map[string]string{
			"minPrice": "cheap",
			"maxPrice": "",
			"page":     "zero",
			"limit":    "-5",
		}))

		if fq.MinPrice != nil || fq.MaxPrice != nil {
			t.Errorf("malformed prices should be nil, got %v/%v", fq.MinPrice, fq.MaxPrice)
		}
		if fq.Page != 1 {
			t.Errorf("page should default to 1, got %d", fq.Page)
		}
		if fq.Limit != DefaultLimit {
			t.Errorf("limit should default to %d, got %d", DefaultLimit, fq.Limit)
		}
	})

	t.Run("empty request yields defaults", func(t *testing.T) {
		fq := ParseFilter(queryFrom(nil))
		if fq.Page != 1 || fq.Limit != DefaultLimit {
			t.Errorf("page/limit = %d/%d", fq.Page, fq.Limit)
		}
		if fq.Term != "" || fq.Category != "" {
			t.Errorf("unexpected non-empty fields: %+v", fq)
		}
	})
}

func TestEcho(t *testing.T) {
	min := 10.0
	fq := FilterQuery{Term: "oil", MinPrice: &min, SortBy: "price"}

	echo := fq.Echo()
	if echo["search"] != "oil" {
		t.Errorf("search echo = %v", echo["search"])
	}
	if echo["minPrice"] != 10.0 {
		t.Errorf("minPrice echo = %v", echo["minPrice"])
	}
	if _, present := echo["maxPrice"]; present {
		t.Errorf("unset maxPrice should be absent from the echo")
	}
}
