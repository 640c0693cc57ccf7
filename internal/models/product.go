package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Product is a catalog item. ReviewCount and AverageRating are derived
// aggregates recomputed by the review subsystem; nothing else writes them.
type Product struct {
	BaseModel
	Name          string         `json:"name"`
	Category      string         `gorm:"index" json:"category"`
	Subcategory   string         `gorm:"index" json:"subcategory"`
	Price         float64        `json:"price"`
	Description   string         `json:"description"`
	HairTypes     pq.StringArray `gorm:"type:text[]" json:"hairTypes"`
	SkinTypes     pq.StringArray `gorm:"type:text[]" json:"skinTypes"`
	Ingredients   pq.StringArray `gorm:"type:text[]" json:"ingredients"`
	Stock         int            `json:"stock"`
	ReviewCount   int            `json:"reviewCount"`
	AverageRating float64        `json:"averageRating"`
	IsActive      bool           `gorm:"default:true" json:"isActive"`
}

// Review is a customer rating for a product. One review per user per product.
type Review struct {
	BaseModel
	UserID    uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_review_user_product" json:"userId"`
	User      *User     `json:"user,omitempty"`
	ProductID uuid.UUID `gorm:"type:uuid;index;uniqueIndex:idx_review_user_product" json:"productId"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
}
