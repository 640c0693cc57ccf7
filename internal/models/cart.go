package models

import (
	"github.com/google/uuid"
)

// CartItem maps a product to a quantity in a user's cart. Quantity is
// always >= 1; removing an item deletes the row.
type CartItem struct {
	BaseModel
	UserID    uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_cart_user_product" json:"userId"`
	ProductID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_cart_user_product" json:"productId"`
	Product   *Product  `json:"product,omitempty"`
	Quantity  int       `json:"quantity"`
}
