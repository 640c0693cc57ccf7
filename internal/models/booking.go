package models

import (
	"time"

	"github.com/google/uuid"
)

// Booking statuses.
const (
	BookingStatusBooked    = "booked"
	BookingStatusCancelled = "cancelled"
)

// Booking is a salon-service appointment. ReminderSent flags bookings the
// reminder sweep has already emailed about.
type Booking struct {
	BaseModel
	UserID       uuid.UUID `gorm:"type:uuid;index" json:"userId"`
	User         *User     `json:"user,omitempty"`
	Service      string    `json:"service"`
	ScheduledAt  time.Time `gorm:"index" json:"scheduledAt"`
	Note         string    `json:"note"`
	Status       string    `json:"status"`
	ReminderSent bool      `json:"reminderSent"`
}
