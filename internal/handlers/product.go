package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/example/velora/internal/models"
	"github.com/example/velora/internal/search"
)

// ProductHandler serves catalog browsing and admin product CRUD.
type ProductHandler struct {
	db *gorm.DB
}

// NewProductHandler constructs ProductHandler.
func NewProductHandler(db *gorm.DB) *ProductHandler {
	return &ProductHandler{db: db}
}

// ListProducts compiles the filter query and returns one result page.
// Malformed page/limit values are coerced, never rejected.
func (h *ProductHandler) ListProducts(c *fiber.Ctx) error {
	fq := search.ParseFilter(c.Query)
	plan := search.Compile(fq)

	products, meta, err := search.Run(h.db, plan)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"products":   products,
			"pagination": meta,
			"filters":    fq.Echo(),
		},
	})
}

// SuggestProducts returns autocomplete entries for a partial search term.
func (h *ProductHandler) SuggestProducts(c *fiber.Ctx) error {
	suggestions, err := search.Suggest(h.db, c.Query("search"))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": fiber.Map{"suggestions": suggestions}})
}

// FilterOptions returns the distinct filterable values in the catalog.
func (h *ProductHandler) FilterOptions(c *fiber.Ctx) error {
	options, err := search.LoadOptions(h.db)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": options})
}

// GetProduct loads a single product.
func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var product models.Product
	if err := h.db.First(&product, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": product})
}

type productRequest struct {
	Name        string   `json:"name" validate:"required"`
	Category    string   `json:"category" validate:"required"`
	Subcategory string   `json:"subcategory"`
	Price       float64  `json:"price" validate:"gte=0"`
	Description string   `json:"description"`
	HairTypes   []string `json:"hairTypes"`
	SkinTypes   []string `json:"skinTypes"`
	Ingredients []string `json:"ingredients"`
	Stock       int      `json:"stock" validate:"gte=0"`
	IsActive    *bool    `json:"isActive"`
}

// CreateProduct handles admin product creation.
func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "name and category are required; price and stock must not be negative")
	}

	product := models.Product{
		Name:        req.Name,
		Category:    req.Category,
		Subcategory: req.Subcategory,
		Price:       req.Price,
		Description: req.Description,
		HairTypes:   pq.StringArray(req.HairTypes),
		SkinTypes:   pq.StringArray(req.SkinTypes),
		Ingredients: pq.StringArray(req.Ingredients),
		Stock:       req.Stock,
		IsActive:    true,
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	if err := h.db.Create(&product).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": product})
}

// UpdateProduct updates an existing product. Review aggregates are owned
// by the review subsystem and are never written here.
func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var existing models.Product
	if err := h.db.First(&existing, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}

	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "name and category are required; price and stock must not be negative")
	}

	updates := map[string]interface{}{
		"name":        req.Name,
		"category":    req.Category,
		"subcategory": req.Subcategory,
		"price":       req.Price,
		"description": req.Description,
		"hair_types":  pq.StringArray(req.HairTypes),
		"skin_types":  pq.StringArray(req.SkinTypes),
		"ingredients": pq.StringArray(req.Ingredients),
		"stock":       req.Stock,
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if err := h.db.Model(&existing).Updates(updates).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": existing})
}

// DeleteProduct removes a product and its reviews and cart references.
func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	if err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&models.Review{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Product{}, "id = ?", id).Error
	}); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// RegisterProductRoutes attaches public product routes.
func (h *ProductHandler) RegisterProductRoutes(router fiber.Router) {
	router.Get("/", h.ListProducts)
	router.Get("/suggestions", h.SuggestProducts)
	router.Get("/filter-options", h.FilterOptions)
	router.Get("/:id", h.GetProduct)
}
