package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/velora/internal/middleware"
	"github.com/example/velora/internal/models"
	"github.com/example/velora/internal/recommend"
	"github.com/example/velora/internal/services"
)

// RecommendationHandler serves personalized product recommendations.
type RecommendationHandler struct {
	db            *gorm.DB
	generator     *recommend.Generator
	reranker      *recommend.Reranker
	rerankTimeout time.Duration
}

// NewRecommendationHandler constructs RecommendationHandler.
func NewRecommendationHandler(db *gorm.DB, generator *recommend.Generator, reranker *recommend.Reranker, rerankTimeout time.Duration) *RecommendationHandler {
	if rerankTimeout <= 0 {
		rerankTimeout = 10 * time.Second
	}
	return &RecommendationHandler{
		db:            db,
		generator:     generator,
		reranker:      reranker,
		rerankTimeout: rerankTimeout,
	}
}

// GetRecommendations blends content-based and collaborative candidates,
// then asks the external reranker for a final order. Reranker transport
// failure maps to 503; an unusable response degrades to merge order.
func (h *RecommendationHandler) GetRecommendations(c *fiber.Ctx) error {
	user, err := h.loadUser(c)
	if err != nil {
		return err
	}

	candidates, err := h.generator.Blended(*user)
	if err != nil {
		return err
	}

	userCtx, err := h.buildUserContext(user)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Context(), h.rerankTimeout)
	defer cancel()

	ranked, err := h.reranker.Rerank(ctx, userCtx, candidates)
	if err != nil {
		if errors.Is(err, services.ErrRerankerUnavailable) || errors.Is(err, context.DeadlineExceeded) {
			return fiber.NewError(fiber.StatusServiceUnavailable, "recommendation service unavailable")
		}
		return err
	}

	return c.JSON(fiber.Map{"recommendedProducts": ranked})
}

// GetContentBased returns recommendations from declared preferences only.
func (h *RecommendationHandler) GetContentBased(c *fiber.Ctx) error {
	user, err := h.loadUser(c)
	if err != nil {
		return err
	}

	products, err := h.generator.ContentBased(*user)
	if err != nil {
		if errors.Is(err, recommend.ErrPreferencesNotSet) {
			return fiber.NewError(fiber.StatusBadRequest, "preferences are not set")
		}
		return err
	}

	return c.JSON(fiber.Map{"recommendedProducts": products})
}

// GetCollaborative returns recommendations from similar users' purchases.
func (h *RecommendationHandler) GetCollaborative(c *fiber.Ctx) error {
	user, err := h.loadUser(c)
	if err != nil {
		return err
	}

	products, err := h.generator.Collaborative(user.ID)
	if err != nil {
		return err
	}

	if products == nil {
		products = []models.Product{}
	}
	return c.JSON(fiber.Map{"recommendedProducts": products})
}

func (h *RecommendationHandler) loadUser(c *fiber.Ctx) (*models.User, error) {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fiber.NewError(fiber.StatusNotFound, "user not found")
		}
		return nil, err
	}
	return &user, nil
}

// buildUserContext summarizes recent purchases for the ranking prompt.
func (h *RecommendationHandler) buildUserContext(user *models.User) (recommend.UserContext, error) {
	type row struct {
		ProductName string
		Category    string
	}
	var rows []row
	err := h.db.Model(&models.PurchaseItem{}).
		Select("purchase_items.product_name AS product_name, products.category AS category").
		Joins("JOIN purchases ON purchases.id = purchase_items.purchase_id").
		Joins("LEFT JOIN products ON products.id = purchase_items.product_id").
		Where("purchases.user_id = ?", user.ID).
		Order("purchases.placed_at desc").
		Limit(20).
		Scan(&rows).Error
	if err != nil {
		return recommend.UserContext{}, err
	}

	purchases := make([]recommend.PurchasedProduct, 0, len(rows))
	for _, r := range rows {
		purchases = append(purchases, recommend.PurchasedProduct{Name: r.ProductName, Category: r.Category})
	}

	return recommend.UserContext{
		Preferences: user.Preferences,
		Purchases:   purchases,
	}, nil
}
