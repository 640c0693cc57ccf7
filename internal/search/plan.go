package search

import "math"

// Predicate is a tagged filter condition over product attributes. The
// concrete variants are Equals, Range, SetMembership and TextMatch.
type Predicate interface {
	predicate()
}

// Equals requires an exact attribute value.
type Equals struct {
	Field string
	Value interface{}
}

// Range bounds a numeric attribute; nil ends are unbounded.
type Range struct {
	Field string
	Min   *float64
	Max   *float64
}

// SetMembership requires an array attribute to intersect Values.
type SetMembership struct {
	Field  string
	Values []string
}

// TextMatch is a case-insensitive substring match across Fields.
type TextMatch struct {
	Fields []string
	Term   string
}

func (Equals) predicate()        {}
func (Range) predicate()         {}
func (SetMembership) predicate() {}
func (TextMatch) predicate()     {}

// SortSpec is a resolved sort column and direction.
type SortSpec struct {
	Field string
	Desc  bool
}

// Plan is the compiled form of a FilterQuery. Count and page queries must
// both be driven from Predicates so totals never drift from page contents.
type Plan struct {
	Predicates []Predicate
	Sort       SortSpec
	Page       int
	Limit      int
	Offset     int
}

// Sort keys accepted by the API. Anything else resolves to newest.
const (
	SortPrice   = "price"
	SortRating  = "rating"
	SortName    = "name"
	SortNewest  = "newest"
	SortOldest  = "oldest"
	SortPopular = "popular"
)

// Compile translates a FilterQuery into a Plan. Only active products are
// ever surfaced, so an Equals on is_active is always present.
func Compile(fq FilterQuery) Plan {
	predicates := []Predicate{
		Equals{Field: "is_active", Value: true},
	}

	if fq.Category != "" {
		predicates = append(predicates, Equals{Field: "category", Value: fq.Category})
	}
	if fq.Subcategory != "" {
		predicates = append(predicates, Equals{Field: "subcategory", Value: fq.Subcategory})
	}
	if fq.MinPrice != nil || fq.MaxPrice != nil {
		predicates = append(predicates, Range{Field: "price", Min: fq.MinPrice, Max: fq.MaxPrice})
	}
	if fq.HairType != "" {
		predicates = append(predicates, SetMembership{Field: "hair_types", Values: []string{fq.HairType}})
	}
	if fq.SkinType != "" {
		predicates = append(predicates, SetMembership{Field: "skin_types", Values: []string{fq.SkinType}})
	}
	if fq.MinRating != nil {
		predicates = append(predicates, Range{Field: "average_rating", Min: fq.MinRating})
	}
	if fq.Term != "" {
		predicates = append(predicates, TextMatch{
			Fields: []string{"name", "description", "ingredients"},
			Term:   fq.Term,
		})
	}

	page := fq.Page
	if page <= 0 {
		page = 1
	}
	limit := fq.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	return Plan{
		Predicates: predicates,
		Sort:       resolveSort(fq.SortBy, fq.SortOrder),
		Page:       page,
		Limit:      limit,
		Offset:     (page - 1) * limit,
	}
}

func resolveSort(sortBy, sortOrder string) SortSpec {
	desc := sortOrder != "asc"

	switch sortBy {
	case SortPrice:
		return SortSpec{Field: "price", Desc: desc}
	case SortRating:
		return SortSpec{Field: "average_rating", Desc: desc}
	case SortName:
		return SortSpec{Field: "name", Desc: sortOrder == "desc"}
	case SortOldest:
		return SortSpec{Field: "created_at", Desc: false}
	case SortPopular:
		return SortSpec{Field: "review_count", Desc: true}
	case SortNewest:
		return SortSpec{Field: "created_at", Desc: true}
	default:
		// Unrecognized or empty sort keys fall back to newest-first.
		return SortSpec{Field: "created_at", Desc: true}
	}
}

// PageMeta is the pagination envelope echoed with every search response.
type PageMeta struct {
	CurrentPage   int   `json:"currentPage"`
	TotalPages    int   `json:"totalPages"`
	TotalProducts int64 `json:"totalProducts"`
	HasNextPage   bool  `json:"hasNextPage"`
	HasPrevPage   bool  `json:"hasPrevPage"`
	Limit         int   `json:"limit"`
}

// NewPageMeta derives the pagination envelope from the shared count.
func NewPageMeta(page, limit int, total int64) PageMeta {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	totalPages := int(math.Ceil(float64(total) / float64(limit)))

	return PageMeta{
		CurrentPage:   page,
		TotalPages:    totalPages,
		TotalProducts: total,
		HasNextPage:   page < totalPages,
		HasPrevPage:   page > 1,
		Limit:         limit,
	}
}
