package models

import (
	"time"

	"github.com/lib/pq"
)

// User represents an authenticated customer.
type User struct {
	BaseModel
	Name         string      `json:"name"`
	Email        string      `gorm:"uniqueIndex" json:"email"`
	PasswordHash string      `json:"-"`
	IsAdmin      bool        `json:"isAdmin"`
	Preferences  Preferences `gorm:"embedded;embeddedPrefix:pref_" json:"preferences"`
	Purchases    []Purchase  `json:"purchases,omitempty"`
	CartItems    []CartItem  `json:"cartItems,omitempty"`
}

// Preferences holds the declared attributes recommendations match against.
// IsSet distinguishes "never filled in" from a deliberately empty record.
type Preferences struct {
	HairType    string         `json:"hairType"`
	SkinType    string         `json:"skinType"`
	BeautyGoals pq.StringArray `gorm:"type:text[]" json:"beautyGoals"`
	MinPrice    float64        `json:"minPrice"`
	MaxPrice    float64        `json:"maxPrice"`
	IsSet       bool           `json:"isSet"`
}

// PasswordResetToken tracks a pending password-reset request.
type PasswordResetToken struct {
	BaseModel
	Email     string     `gorm:"index" json:"email"`
	Token     string     `gorm:"uniqueIndex" json:"-"`
	ExpiresAt time.Time  `json:"expiresAt"`
	UsedAt    *time.Time `json:"usedAt"`
}
