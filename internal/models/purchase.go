package models

import (
	"time"

	"github.com/google/uuid"
)

// Purchase is a completed checkout. Items snapshot the price at purchase
// time; the recommendation core reads purchases but never writes them.
type Purchase struct {
	BaseModel
	UserID          uuid.UUID      `gorm:"type:uuid;index" json:"userId"`
	User            *User          `json:"user,omitempty"`
	Number          string         `gorm:"uniqueIndex" json:"number"`
	Status          string         `json:"status"`
	TotalAmount     float64        `json:"totalAmount"`
	Currency        string         `json:"currency"`
	PaymentIntentID string         `json:"paymentIntentId"`
	PlacedAt        time.Time      `json:"placedAt"`
	Items           []PurchaseItem `json:"items,omitempty"`
}

type PurchaseItem struct {
	BaseModel
	PurchaseID      uuid.UUID `gorm:"type:uuid;index" json:"purchaseId"`
	ProductID       uuid.UUID `gorm:"type:uuid;index" json:"productId"`
	Product         *Product  `json:"product,omitempty"`
	ProductName     string    `json:"productName"`
	Quantity        int       `json:"quantity"`
	PriceAtPurchase float64   `json:"priceAtPurchase"`
}
