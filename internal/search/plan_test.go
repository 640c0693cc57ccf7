package search

import "testing"

func floatPtr(v float64) *float64 { return &v }

func TestCompile(t *testing.T) {
	t.Run("empty query keeps only the active-product guard", func(t *testing.T) {
		plan := Compile(FilterQuery{Page: 1, Limit: DefaultLimit})

		if len(plan.Predicates) != 1 {
			t.Fatalf("expected 1 predicate, got %d", len(plan.Predicates))
		}
		eq, ok := plan.Predicates[0].(Equals)
		if !ok || eq.Field != "is_active" || eq.Value != true {
			t.Errorf("expected is_active guard, got %+v", plan.Predicates[0])
		}
	})

	t.Run("every filter contributes exactly one predicate", func(t *testing.T) {
		fq := FilterQuery{
			Term:        "argan",
			Category:    "haircare",
			Subcategory: "oils",
			MinPrice:    floatPtr(10),
			MaxPrice:    floatPtr(30),
			HairType:    "dry",
			SkinType:    "sensitive",
			MinRating:   floatPtr(4),
			Page:        1,
			Limit:       DefaultLimit,
		}

		plan := Compile(fq)

		// Guard + category + subcategory + price range + hair + skin +
		// rating + text.
		if len(plan.Predicates) != 8 {
			t.Fatalf("expected 8 predicates, got %d", len(plan.Predicates))
		}

		var ranges, memberships, texts int
		for _, p := range plan.Predicates {
			switch p.(type) {
			case Range:
				ranges++
			case SetMembership:
				memberships++
			case TextMatch:
				texts++
			}
		}
		if ranges != 2 || memberships != 2 || texts != 1 {
			t.Errorf("predicate mix off: %d ranges, %d memberships, %d texts", ranges, memberships, texts)
		}
	})

	t.Run("price bounds share one range predicate", func(t *testing.T) {
		plan := Compile(FilterQuery{MinPrice: floatPtr(10), MaxPrice: floatPtr(30)})

		var found *Range
		for _, p := range plan.Predicates {
			if r, ok := p.(Range); ok && r.Field == "price" {
				found = &r
			}
		}
		if found == nil {
			t.Fatal("price range predicate missing")
		}
		if *found.Min != 10 || *found.Max != 30 {
			t.Errorf("range bounds = %v..%v", *found.Min, *found.Max)
		}
	})

	t.Run("window math", func(t *testing.T) {
		plan := Compile(FilterQuery{Page: 2, Limit: 5})
		if plan.Offset != 5 || plan.Limit != 5 || plan.Page != 2 {
			t.Errorf("page 2 limit 5: offset=%d limit=%d page=%d", plan.Offset, plan.Limit, plan.Page)
		}

		plan = Compile(FilterQuery{Page: -3, Limit: 0})
		if plan.Page != 1 || plan.Limit != DefaultLimit || plan.Offset != 0 {
			t.Errorf("bad inputs: offset=%d limit=%d page=%d", plan.Offset, plan.Limit, plan.Page)
		}
	})
}

func TestResolveSort(t *testing.T) {
	cases := []struct {
		name      string
		sortBy    string
		sortOrder string
		want      SortSpec
	}{
		{"default is newest first", "", "", SortSpec{Field: "created_at", Desc: true}},
		{"bogus key matches the default", "bogus", "", SortSpec{Field: "created_at", Desc: true}},
		{"price defaults descending", "price", "", SortSpec{Field: "price", Desc: true}},
		{"price ascending on request", "price", "asc", SortSpec{Field: "price", Desc: false}},
		{"rating descending", "rating", "desc", SortSpec{Field: "average_rating", Desc: true}},
		{"name defaults ascending", "name", "", SortSpec{Field: "name", Desc: false}},
		{"name descending on request", "name", "desc", SortSpec{Field: "name", Desc: true}},
		{"oldest ignores order", "oldest", "desc", SortSpec{Field: "created_at", Desc: false}},
		{"popular means most reviewed", "popular", "asc", SortSpec{Field: "review_count", Desc: true}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := resolveSort(tc.sortBy, tc.sortOrder)
			if got != tc.want {
				t.Errorf("resolveSort(%q, %q) = %+v, want %+v", tc.sortBy, tc.sortOrder, got, tc.want)
			}
		})
	}
}

func TestNewPageMeta(t *testing.T) {
	t.Run("middle page has both neighbours", func(t *testing.T) {
		// 12 matching rows windowed by 5 span 3 pages.
		meta := NewPageMeta(2, 5, 12)

		if meta.TotalPages != 3 {
			t.Errorf("totalPages = %d, want 3", meta.TotalPages)
		}
		if !meta.HasNextPage || !meta.HasPrevPage {
			t.Errorf("page 2 of 3 should have both neighbours: next=%v prev=%v", meta.HasNextPage, meta.HasPrevPage)
		}
		if meta.TotalProducts != 12 || meta.CurrentPage != 2 || meta.Limit != 5 {
			t.Errorf("meta = %+v", meta)
		}
	})

	t.Run("first and last pages", func(t *testing.T) {
		first := NewPageMeta(1, 5, 12)
		if first.HasPrevPage || !first.HasNextPage {
			t.Errorf("first page: next=%v prev=%v", first.HasNextPage, first.HasPrevPage)
		}

		last := NewPageMeta(3, 5, 12)
		if last.HasNextPage || !last.HasPrevPage {
			t.Errorf("last page: next=%v prev=%v", last.HasNextPage, last.HasPrevPage)
		}
	})

	t.Run("no matches", func(t *testing.T) {
		meta := NewPageMeta(1, DefaultLimit, 0)
		if meta.TotalPages != 0 {
			t.Errorf("totalPages = %d, want 0", meta.TotalPages)
		}
		if meta.HasNextPage || meta.HasPrevPage {
			t.Errorf("empty result should have no neighbours")
		}
	})

	t.Run("exact multiple has no partial page", func(t *testing.T) {
		meta := NewPageMeta(2, 5, 10)
		if meta.TotalPages != 2 {
			t.Errorf("totalPages = %d, want 2", meta.TotalPages)
		}
		if meta.HasNextPage {
			t.Errorf("page 2 of 2 should not have a next page")
		}
	})

	t.Run("out of range inputs are normalized", func(t *testing.T) {
		meta := NewPageMeta(0, -1, 7)
		if meta.CurrentPage != 1 || meta.Limit != DefaultLimit {
			t.Errorf("meta = %+v", meta)
		}
	})
}
