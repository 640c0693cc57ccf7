package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/velora/internal/middleware"
	"github.com/example/velora/internal/models"
	"github.com/example/velora/internal/utils"
)

// ReviewHandler manages product reviews and owns the derived rating
// aggregates on Product.
type ReviewHandler struct {
	db *gorm.DB
}

// NewReviewHandler constructs ReviewHandler.
func NewReviewHandler(db *gorm.DB) *ReviewHandler {
	return &ReviewHandler{db: db}
}

type reviewRequest struct {
	Rating  int    `json:"rating" validate:"gte=1,lte=5"`
	Comment string `json:"comment"`
}

// CreateReview adds or replaces the caller's review for a product and
// recomputes the product's aggregates in the same transaction.
func (h *ReviewHandler) CreateReview(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	productID, err := uuid.Parse(c.Params("productId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid productId")
	}

	var req reviewRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "rating must be between 1 and 5")
	}

	var product models.Product
	if err := h.db.First(&product, "id = ?", productID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}

	review := models.Review{
		UserID:    userID,
		ProductID: productID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}

	if err := h.db.Transaction(func(tx *gorm.DB) error {
		var existing models.Review
		err := tx.Where("user_id = ? AND product_id = ?", userID, productID).First(&existing).Error
		switch {
		case err == nil:
			existing.Rating = req.Rating
			existing.Comment = req.Comment
			if err := tx.Save(&existing).Error; err != nil {
				return err
			}
			review = existing
		case err == gorm.ErrRecordNotFound:
			if err := tx.Create(&review).Error; err != nil {
				return err
			}
		default:
			return err
		}

		return recomputeProductRating(tx, productID)
	}); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": review})
}

// DeleteReview removes the caller's review and recomputes aggregates.
func (h *ReviewHandler) DeleteReview(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	productID, err := uuid.Parse(c.Params("productId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid productId")
	}

	if err := h.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("user_id = ? AND product_id = ?", userID, productID).
			Delete(&models.Review{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fiber.NewError(fiber.StatusNotFound, "review not found")
		}

		return recomputeProductRating(tx, productID)
	}); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "review deleted"})
}

// ListReviews returns reviews for a product, newest first.
func (h *ReviewHandler) ListReviews(c *fiber.Ctx) error {
	productID, err := uuid.Parse(c.Params("productId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid productId")
	}

	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Review{}).Where("product_id = ?", productID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var reviews []models.Review
	if err := query.Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&reviews).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    reviews,
		"pagination": fiber.Map{
			"currentPage":  pg.Page,
			"itemsPerPage": pg.Limit,
			"totalItems":   total,
		},
	})
}

// recomputeProductRating rewrites the derived aggregates from the review
// table. It is the only writer of reviewCount/averageRating.
func recomputeProductRating(tx *gorm.DB, productID uuid.UUID) error {
	var agg struct {
		Count int64
		Avg   float64
	}
	if err := tx.Model(&models.Review{}).
		Where("product_id = ?", productID).
		Select("COUNT(*) AS count, COALESCE(AVG(rating), 0) AS avg").
		Scan(&agg).Error; err != nil {
		return err
	}

	return tx.Model(&models.Product{}).
		Where("id = ?", productID).
		Updates(map[string]interface{}{
			"review_count":   agg.Count,
			"average_rating": agg.Avg,
		}).Error
}
