package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/velora/internal/models"
	"github.com/example/velora/internal/utils"
)

// AdminHandler manages admin-only analytics endpoints.
type AdminHandler struct {
	db *gorm.DB
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(db *gorm.DB) *AdminHandler {
	return &AdminHandler{db: db}
}

// DashboardStats returns aggregate statistics for the admin dashboard.
func (h *AdminHandler) DashboardStats(c *fiber.Ctx) error {
	var totalUsers int64
	if err := h.db.Model(&models.User{}).Count(&totalUsers).Error; err != nil {
		return err
	}

	var totalProducts int64
	if err := h.db.Model(&models.Product{}).Where("is_active = ?", true).Count(&totalProducts).Error; err != nil {
		return err
	}

	var totalPurchases int64
	if err := h.db.Model(&models.Purchase{}).Count(&totalPurchases).Error; err != nil {
		return err
	}

	var totalRevenue float64
	if err := h.db.Model(&models.Purchase{}).
		Where("status <> ?", "cancelled").
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&totalRevenue).Error; err != nil {
		return err
	}

	var todayRevenue float64
	if err := h.db.Model(&models.Purchase{}).
		Where("status <> ? AND placed_at::date = CURRENT_DATE", "cancelled").
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&todayRevenue).Error; err != nil {
		return err
	}

	var upcomingBookings int64
	if err := h.db.Model(&models.Booking{}).
		Where("status = ? AND scheduled_at > NOW()", models.BookingStatusBooked).
		Count(&upcomingBookings).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"totalUsers":       totalUsers,
			"totalProducts":    totalProducts,
			"totalPurchases":   totalPurchases,
			"totalRevenue":     totalRevenue,
			"todayRevenue":     todayRevenue,
			"upcomingBookings": upcomingBookings,
		},
	})
}

// TopProducts returns the best-selling products by units sold.
func (h *AdminHandler) TopProducts(c *fiber.Ctx) error {
	type topProduct struct {
		ProductID string  `json:"productId"`
		Name      string  `json:"name"`
		UnitsSold int64   `json:"unitsSold"`
		Revenue   float64 `json:"revenue"`
	}

	var top []topProduct
	if err := h.db.Model(&models.PurchaseItem{}).
		Select(`purchase_items.product_id AS product_id,
			purchase_items.product_name AS name,
			SUM(purchase_items.quantity) AS units_sold,
			SUM(purchase_items.quantity * purchase_items.price_at_purchase) AS revenue`).
		Group("purchase_items.product_id, purchase_items.product_name").
		Order("units_sold desc").
		Limit(10).
		Scan(&top).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": top})
}

// RatingLeaders returns the best-rated products with enough reviews to
// mean something.
func (h *AdminHandler) RatingLeaders(c *fiber.Ctx) error {
	var products []models.Product
	if err := h.db.
		Where("is_active = ? AND review_count >= ?", true, 3).
		Order("average_rating desc, review_count desc").
		Limit(10).
		Find(&products).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": products})
}

// ListAllUsers returns registered users with purchase totals.
func (h *AdminHandler) ListAllUsers(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.User{})

	if search := c.Query("search"); search != "" {
		query = query.Where("name ILIKE ? OR email ILIKE ?", "%"+search+"%", "%"+search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var users []models.User
	if err := query.Select("id, name, email, is_admin, created_at, updated_at").
		Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&users).Error; err != nil {
		return err
	}

	type userStats struct {
		UserID        string  `json:"userId"`
		PurchaseCount int64   `json:"purchaseCount"`
		TotalSpent    float64 `json:"totalSpent"`
	}

	var stats []userStats
	h.db.Model(&models.Purchase{}).
		Select("user_id, COUNT(*) AS purchase_count, COALESCE(SUM(total_amount), 0) AS total_spent").
		Group("user_id").
		Scan(&stats)

	statsMap := make(map[string]userStats, len(stats))
	for _, s := range stats {
		statsMap[s.UserID] = s
	}

	type userResponse struct {
		models.User
		PurchaseCount int64   `json:"purchaseCount"`
		TotalSpent    float64 `json:"totalSpent"`
	}

	result := make([]userResponse, len(users))
	for i, u := range users {
		result[i] = userResponse{User: u}
		if s, ok := statsMap[u.ID.String()]; ok {
			result[i].PurchaseCount = s.PurchaseCount
			result[i].TotalSpent = s.TotalSpent
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    result,
		"pagination": fiber.Map{
			"currentPage":  pg.Page,
			"itemsPerPage": pg.Limit,
			"totalItems":   total,
		},
	})
}
