package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/example/velora/internal/models"
	"github.com/example/velora/internal/services"
	"github.com/example/velora/internal/utils"
)

// PasswordResetHandler manages forgot-password endpoints.
type PasswordResetHandler struct {
	db    *gorm.DB
	email *services.EmailService
	log   zerolog.Logger
}

// NewPasswordResetHandler constructs a PasswordResetHandler.
func NewPasswordResetHandler(db *gorm.DB, email *services.EmailService, log zerolog.Logger) *PasswordResetHandler {
	return &PasswordResetHandler{db: db, email: email, log: log}
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ForgotPassword generates a reset token and emails it. The response is
// identical whether or not the account exists.
func (h *PasswordResetHandler) ForgotPassword(c *fiber.Ctx) error {
	var req forgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "a valid email is required")
	}

	accepted := fiber.Map{"success": true, "message": "if the account exists, a reset email has been sent"}

	var user models.User
	if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(accepted)
		}
		return err
	}

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate token")
	}
	token := hex.EncodeToString(tokenBytes)

	reset := models.PasswordResetToken{
		Email:     user.Email,
		Token:     token,
		ExpiresAt: time.Now().Add(30 * time.Minute),
	}
	if err := h.db.Create(&reset).Error; err != nil {
		return err
	}

	go func() {
		if err := h.email.SendPasswordReset(user.Email, token); err != nil {
			h.log.Error().Err(err).Str("email", user.Email).Msg("password reset email failed")
		}
	}()

	return c.JSON(accepted)
}

type resetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

// ResetPassword consumes a reset token and sets the new password.
func (h *PasswordResetHandler) ResetPassword(c *fiber.Ctx) error {
	var req resetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "token and a password of at least 8 characters are required")
	}

	var reset models.PasswordResetToken
	if err := h.db.Where("token = ?", req.Token).First(&reset).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusBadRequest, "invalid or expired token")
		}
		return err
	}

	if reset.UsedAt != nil || reset.ExpiresAt.Before(time.Now()) {
		return fiber.NewError(fiber.StatusBadRequest, "invalid or expired token")
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to hash password")
	}

	if err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("email = ?", reset.Email).
			Update("password_hash", passwordHash).Error; err != nil {
			return err
		}

		now := time.Now()
		return tx.Model(&reset).Update("used_at", &now).Error
	}); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "password updated"})
}
