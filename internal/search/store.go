package search

import (
	"fmt"
	"strings"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/example/velora/internal/models"
)

// ApplyPredicates translates a predicate list into gorm clauses. The same
// translated query must be used for both the count and the page fetch.
func ApplyPredicates(db *gorm.DB, predicates []Predicate) *gorm.DB {
	query := db
	for _, p := range predicates {
		switch pred := p.(type) {
		case Equals:
			query = query.Where(fmt.Sprintf("%s = ?", pred.Field), pred.Value)
		case Range:
			if pred.Min != nil {
				query = query.Where(fmt.Sprintf("%s >= ?", pred.Field), *pred.Min)
			}
			if pred.Max != nil {
				query = query.Where(fmt.Sprintf("%s <= ?", pred.Field), *pred.Max)
			}
		case SetMembership:
			query = query.Where(fmt.Sprintf("%s && ?", pred.Field), pq.Array(pred.Values))
		case TextMatch:
			term := "%" + pred.Term + "%"
			clauses := make([]string, 0, len(pred.Fields))
			args := make([]interface{}, 0, len(pred.Fields))
			for _, field := range pred.Fields {
				if field == "ingredients" {
					clauses = append(clauses, "array_to_string(ingredients, ' ') ILIKE ?")
				} else {
					clauses = append(clauses, fmt.Sprintf("%s ILIKE ?", field))
				}
				args = append(args, term)
			}
			query = query.Where(strings.Join(clauses, " OR "), args...)
		}
	}
	return query
}

// OrderClause renders the sort spec for gorm's Order.
func (s SortSpec) OrderClause() string {
	direction := "asc"
	if s.Desc {
		direction = "desc"
	}
	return s.Field + " " + direction
}

// Run executes a compiled plan against the product catalog and returns the
// page of products together with the pagination envelope.
func Run(db *gorm.DB, plan Plan) ([]models.Product, PageMeta, error) {
	base := ApplyPredicates(db.Model(&models.Product{}), plan.Predicates)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, PageMeta{}, err
	}

	var products []models.Product
	if err := base.
		Order(plan.Sort.OrderClause()).
		Limit(plan.Limit).
		Offset(plan.Offset).
		Find(&products).Error; err != nil {
		return nil, PageMeta{}, err
	}

	return products, NewPageMeta(plan.Page, plan.Limit, total), nil
}

// Suggestion kinds returned by Suggest.
const (
	KindProduct    = "product"
	KindCategory   = "category"
	KindIngredient = "ingredient"
)

// Suggestion is a single autocomplete entry tagged with its source kind.
type Suggestion struct {
	Value string `json:"value"`
	Kind  string `json:"kind"`
}

// MinSuggestTermLength is the shortest term Suggest will look up.
const MinSuggestTermLength = 2

// Suggest returns up to 5 product-name, 3 category and 5 ingredient matches
// for an autocomplete term. Terms shorter than two characters yield nothing.
func Suggest(db *gorm.DB, term string) ([]Suggestion, error) {
	term = strings.TrimSpace(term)
	if len(term) < MinSuggestTermLength {
		return []Suggestion{}, nil
	}
	pattern := "%" + term + "%"

	var names []string
	if err := db.Model(&models.Product{}).
		Where("is_active = ? AND name ILIKE ?", true, pattern).
		Order("name asc").
		Limit(5).
		Pluck("name", &names).Error; err != nil {
		return nil, err
	}

	var categories []string
	if err := db.Model(&models.Product{}).
		Where("is_active = ? AND category ILIKE ?", true, pattern).
		Distinct("category").
		Order("category asc").
		Limit(3).
		Pluck("category", &categories).Error; err != nil {
		return nil, err
	}

	var ingredients []string
	if err := db.Raw(
		`SELECT DISTINCT ing FROM products, unnest(ingredients) AS ing
		 WHERE is_active = ? AND ing ILIKE ? ORDER BY ing ASC LIMIT 5`,
		true, pattern,
	).Scan(&ingredients).Error; err != nil {
		return nil, err
	}

	suggestions := make([]Suggestion, 0, len(names)+len(categories)+len(ingredients))
	for _, v := range names {
		suggestions = append(suggestions, Suggestion{Value: v, Kind: KindProduct})
	}
	for _, v := range categories {
		suggestions = append(suggestions, Suggestion{Value: v, Kind: KindCategory})
	}
	for _, v := range ingredients {
		suggestions = append(suggestions, Suggestion{Value: v, Kind: KindIngredient})
	}

	return suggestions, nil
}

// Options lists the distinct filterable values currently in the catalog,
// used to populate client-side filter controls.
type Options struct {
	Categories    []string   `json:"categories"`
	Subcategories []string   `json:"subcategories"`
	HairTypes     []string   `json:"hairTypes"`
	SkinTypes     []string   `json:"skinTypes"`
	PriceRange    PriceRange `json:"priceRange"`
}

// PriceRange is the catalog's current price envelope.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// LoadOptions computes filter options live from the active catalog.
func LoadOptions(db *gorm.DB) (Options, error) {
	opts := Options{
		Categories:    []string{},
		Subcategories: []string{},
		HairTypes:     []string{},
		SkinTypes:     []string{},
	}

	if err := db.Model(&models.Product{}).
		Where("is_active = ? AND category <> ''", true).
		Distinct("category").
		Order("category asc").
		Pluck("category", &opts.Categories).Error; err != nil {
		return opts, err
	}

	if err := db.Model(&models.Product{}).
		Where("is_active = ? AND subcategory <> ''", true).
		Distinct("subcategory").
		Order("subcategory asc").
		Pluck("subcategory", &opts.Subcategories).Error; err != nil {
		return opts, err
	}

	if err := db.Raw(
		`SELECT DISTINCT t FROM products, unnest(hair_types) AS t WHERE is_active = ? ORDER BY t ASC`,
		true,
	).Scan(&opts.HairTypes).Error; err != nil {
		return opts, err
	}

	if err := db.Raw(
		`SELECT DISTINCT t FROM products, unnest(skin_types) AS t WHERE is_active = ? ORDER BY t ASC`,
		true,
	).Scan(&opts.SkinTypes).Error; err != nil {
		return opts, err
	}

	var envelope struct {
		Min float64
		Max float64
	}
	if err := db.Model(&models.Product{}).
		Where("is_active = ?", true).
		Select("COALESCE(MIN(price), 0) AS min, COALESCE(MAX(price), 0) AS max").
		Scan(&envelope).Error; err != nil {
		return opts, err
	}
	opts.PriceRange = PriceRange{Min: envelope.Min, Max: envelope.Max}

	return opts, nil
}
