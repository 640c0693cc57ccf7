package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/example/velora/internal/middleware"
	"github.com/example/velora/internal/models"
	"github.com/example/velora/internal/services"
	"github.com/example/velora/internal/utils"
)

// BookingHandler manages salon-service appointments.
type BookingHandler struct {
	db *gorm.DB
}

// NewBookingHandler constructs BookingHandler.
func NewBookingHandler(db *gorm.DB) *BookingHandler {
	return &BookingHandler{db: db}
}

type bookingRequest struct {
	Service     string    `json:"service" validate:"required"`
	ScheduledAt time.Time `json:"scheduledAt" validate:"required"`
	Note        string    `json:"note"`
}

// CreateBooking books an appointment in the future.
func (h *BookingHandler) CreateBooking(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req bookingRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "service and scheduledAt are required")
	}

	if !req.ScheduledAt.After(time.Now()) {
		return fiber.NewError(fiber.StatusBadRequest, "scheduledAt must be in the future")
	}

	booking := models.Booking{
		UserID:      userID,
		Service:     req.Service,
		ScheduledAt: req.ScheduledAt,
		Note:        req.Note,
		Status:      models.BookingStatusBooked,
	}

	if err := h.db.Create(&booking).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": booking})
}

// ListBookings returns the user's bookings, soonest first.
func (h *BookingHandler) ListBookings(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Booking{}).Where("user_id = ?", userID)

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var bookings []models.Booking
	if err := query.Order("scheduled_at asc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&bookings).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    bookings,
		"pagination": fiber.Map{
			"currentPage":  pg.Page,
			"itemsPerPage": pg.Limit,
			"totalItems":   total,
		},
	})
}

// CancelBooking marks a booking cancelled.
func (h *BookingHandler) CancelBooking(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	result := h.db.Model(&models.Booking{}).
		Where("id = ? AND user_id = ? AND status = ?", id, userID, models.BookingStatusBooked).
		Update("status", models.BookingStatusCancelled)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "booking not found")
	}

	return c.JSON(fiber.Map{"success": true, "message": "booking cancelled"})
}

// RunReminderSweep periodically emails reminders for bookings starting
// within the window. It exits when ctx is cancelled.
func RunReminderSweep(ctx context.Context, db *gorm.DB, email *services.EmailService, log zerolog.Logger, interval, window time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweepReminders(db, email, log, window)
		}
	}
}

func sweepReminders(db *gorm.DB, email *services.EmailService, log zerolog.Logger, window time.Duration) {
	now := time.Now()

	var due []models.Booking
	if err := db.Preload("User").
		Where("status = ? AND reminder_sent = ? AND scheduled_at > ? AND scheduled_at <= ?",
			models.BookingStatusBooked, false, now, now.Add(window)).
		Find(&due).Error; err != nil {
		log.Error().Err(err).Msg("reminder sweep query failed")
		return
	}

	for _, booking := range due {
		if booking.User == nil {
			continue
		}
		if err := email.SendBookingReminder(booking.User.Email, booking.User.Name, booking.Service, booking.ScheduledAt); err != nil {
			log.Error().Err(err).Str("booking", booking.ID.String()).Msg("booking reminder failed")
			continue
		}
		if err := db.Model(&models.Booking{}).Where("id = ?", booking.ID).
			Update("reminder_sent", true).Error; err != nil {
			log.Error().Err(err).Str("booking", booking.ID.String()).Msg("failed to mark reminder sent")
		}
	}
}
