package handlers

import (
	"errors"
	"fmt"
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

// PurchaseHandler turns carts into purchases and lists purchase history.
type PurchaseHandler struct {
	db      *gorm.DB
	payment *services.PaymentService
	email   *services.EmailService
	log     zerolog.Logger
}

// NewPurchaseHandler constructs PurchaseHandler.
func NewPurchaseHandler(db *gorm.DB, payment *services.PaymentService, email *services.EmailService, log zerolog.Logger) *PurchaseHandler {
	return &PurchaseHandler{db: db, payment: payment, email: email, log: log}
}

// Checkout converts the cart into a purchase: snapshots prices, decrements
// stock, creates a payment intent and clears the cart in one transaction.
// The confirmation email goes out asynchronously after commit.
func (h *PurchaseHandler) Checkout(c *fiber.Ctx) error {
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

	var items []models.CartItem
	if err := h.db.Preload("Product").Where("user_id = ?", userID).Find(&items).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "cart is empty")
	}

	purchase := models.Purchase{
		UserID:   userID,
		Number:   generatePurchaseNumber(),
		Status:   "pending",
		Currency: "USD",
		PlacedAt: time.Now(),
	}

	var total float64
	for _, item := range items {
		if item.Product == nil || !item.Product.IsActive {
			return fiber.NewError(fiber.StatusBadRequest, "cart contains an unavailable product")
		}
		if item.Product.Stock < item.Quantity {
			return fiber.NewError(fiber.StatusBadRequest,
				fmt.Sprintf("insufficient stock for %s", item.Product.Name))
		}

		lineTotal := item.Product.Price * float64(item.Quantity)
		total += lineTotal
		purchase.Items = append(purchase.Items, models.PurchaseItem{
			ProductID:       item.ProductID,
			ProductName:     item.Product.Name,
			Quantity:        item.Quantity,
			PriceAtPurchase: item.Product.Price,
		})
	}
	purchase.TotalAmount = total

	if err := h.db.Transaction(func(tx *gorm.DB) error {
		for _, item := range items {
			result := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", item.ProductID, item.Quantity).
				Update("stock", gorm.Expr("stock - ?", item.Quantity))
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "insufficient stock")
			}
		}

		if err := tx.Create(&purchase).Error; err != nil {
			return err
		}

		return tx.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error
	}); err != nil {
		return err
	}

	intentID, err := h.payment.CreateIntent(total, purchase.Currency, "Order "+purchase.Number)
	switch {
	case err == nil:
		if err := h.db.Model(&models.Purchase{}).Where("id = ?", purchase.ID).
			Update("payment_intent_id", intentID).Error; err != nil {
			h.log.Error().Err(err).Str("purchase", purchase.Number).Msg("failed to store payment intent")
		}
		purchase.PaymentIntentID = intentID
	case errors.Is(err, services.ErrPaymentNotConfigured):
		h.log.Info().Str("purchase", purchase.Number).Msg("payment provider not configured, purchase left pending")
	default:
		h.log.Error().Err(err).Str("purchase", purchase.Number).Msg("payment intent creation failed")
	}

	go h.sendConfirmation(user, purchase)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"id":              purchase.ID,
			"number":          purchase.Number,
			"status":          purchase.Status,
			"totalAmount":     purchase.TotalAmount,
			"currency":        purchase.Currency,
			"paymentIntentId": purchase.PaymentIntentID,
			"placedAt":        purchase.PlacedAt,
		},
	})
}

func (h *PurchaseHandler) sendConfirmation(user models.User, purchase models.Purchase) {
	lines := make([]services.PurchaseLine, 0, len(purchase.Items))
	for _, item := range purchase.Items {
		lines = append(lines, services.PurchaseLine{
			Name:     item.ProductName,
			Quantity: item.Quantity,
			Price:    item.PriceAtPurchase,
		})
	}

	if err := h.email.SendPurchaseConfirmation(user.Email, user.Name, purchase.Number, lines, purchase.TotalAmount); err != nil {
		h.log.Error().Err(err).Str("purchase", purchase.Number).Msg("confirmation email failed")
	}
}

// ListPurchases returns the authenticated user's purchase history.
func (h *PurchaseHandler) ListPurchases(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Purchase{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var purchases []models.Purchase
	if err := query.Preload("Items").
		Order("placed_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&purchases).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    purchases,
		"pagination": fiber.Map{
			"currentPage":  pg.Page,
			"itemsPerPage": pg.Limit,
			"totalItems":   total,
		},
	})
}

// GetPurchase returns a single purchase belonging to the user.
func (h *PurchaseHandler) GetPurchase(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var purchase models.Purchase
	if err := h.db.Preload("Items").
		First(&purchase, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "purchase not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": purchase})
}

func generatePurchaseNumber() string {
	return fmt.Sprintf("#%d", time.Now().UnixNano()%1000000000)
}
