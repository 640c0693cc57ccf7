package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/example/velora/internal/middleware"
	"github.com/example/velora/internal/models"
)

// ProfileHandler manages user profile and preference endpoints.
type ProfileHandler struct {
	db *gorm.DB
}

// NewProfileHandler constructs ProfileHandler.
func NewProfileHandler(db *gorm.DB) *ProfileHandler {
	return &ProfileHandler{db: db}
}

// GetProfile returns the authenticated user's profile and preferences.
func (h *ProfileHandler) GetProfile(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "user not found")
		}
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"id":          user.ID,
			"name":        user.Name,
			"email":       user.Email,
			"preferences": user.Preferences,
			"createdAt":   user.CreatedAt,
		},
	})
}

type updatePreferencesRequest struct {
	HairType    *string  `json:"hairType"`
	SkinType    *string  `json:"skinType"`
	BeautyGoals []string `json:"beautyGoals"`
	MinPrice    *float64 `json:"minPrice"`
	MaxPrice    *float64 `json:"maxPrice"`
}

// UpdatePreferences sets the declared preference record that content-based
// recommendations match against.
func (h *ProfileHandler) UpdatePreferences(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req updatePreferencesRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	updates := map[string]interface{}{
		"pref_is_set": true,
		"updated_at":  time.Now(),
	}
	if req.HairType != nil {
		updates["pref_hair_type"] = *req.HairType
	}
	if req.SkinType != nil {
		updates["pref_skin_type"] = *req.SkinType
	}
	if req.BeautyGoals != nil {
		updates["pref_beauty_goals"] = pq.StringArray(req.BeautyGoals)
	}
	if req.MinPrice != nil {
		updates["pref_min_price"] = *req.MinPrice
	}
	if req.MaxPrice != nil {
		updates["pref_max_price"] = *req.MaxPrice
	}

	if err := h.db.Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
		return err
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": user.Preferences})
}
