package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/example/velora/internal/config"
	"github.com/example/velora/internal/handlers"
	"github.com/example/velora/internal/middleware"
	"github.com/example/velora/internal/recommend"
	"github.com/example/velora/internal/services"
)

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config, log zerolog.Logger) {
	emailService := services.NewEmailService(cfg.EmailBaseURL, cfg.EmailAPIKey, cfg.EmailSender, log)
	paymentService := services.NewPaymentService(cfg.PaymentBaseURL, cfg.PaymentSecretKey, log)

	// Without an API key the reranker client stays nil and blended
	// recommendations keep their deterministic merge order.
	var rankingClient recommend.RankingClient
	if cfg.RerankerAPIKey != "" {
		rankingClient = services.NewRerankerService(cfg.RerankerBaseURL, cfg.RerankerAPIKey, cfg.RerankerModel, cfg.RerankerTimeout, log)
	}

	generator := recommend.NewGenerator(
		recommend.NewGormProductSource(db),
		recommend.NewGormProfileSource(db),
	)
	reranker := recommend.NewReranker(rankingClient, log)

	authHandler := handlers.NewAuthHandler(db, cfg)
	passwordResetHandler := handlers.NewPasswordResetHandler(db, emailService, log)
	productHandler := handlers.NewProductHandler(db)
	cartHandler := handlers.NewCartHandler(db)
	purchaseHandler := handlers.NewPurchaseHandler(db, paymentService, emailService, log)
	reviewHandler := handlers.NewReviewHandler(db)
	bookingHandler := handlers.NewBookingHandler(db)
	profileHandler := handlers.NewProfileHandler(db)
	recommendationHandler := handlers.NewRecommendationHandler(db, generator, reranker, cfg.RerankerTimeout)
	adminHandler := handlers.NewAdminHandler(db)

	api := app.Group("/api")

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/forgot-password", passwordResetHandler.ForgotPassword)
	auth.Post("/reset-password", passwordResetHandler.ResetPassword)

	// Public catalog routes
	products := api.Group("/products")
	productHandler.RegisterProductRoutes(products)
	products.Get("/:productId/reviews", reviewHandler.ListReviews)

	// Protected routes
	protected := api.Group("", middleware.AuthMiddleware(cfg))

	protected.Get("/auth/me", authHandler.Me)

	protected.Get("/profile", profileHandler.GetProfile)
	protected.Put("/profile/preferences", profileHandler.UpdatePreferences)

	protected.Get("/cart", cartHandler.GetCart)
	protected.Post("/cart/items", cartHandler.AddItem)
	protected.Put("/cart/items/:productId", cartHandler.UpdateItem)
	protected.Delete("/cart/items/:productId", cartHandler.RemoveItem)
	protected.Delete("/cart", cartHandler.ClearCart)

	protected.Post("/purchases", purchaseHandler.Checkout)
	protected.Get("/purchases", purchaseHandler.ListPurchases)
	protected.Get("/purchases/:id", purchaseHandler.GetPurchase)

	protected.Post("/products/:productId/reviews", reviewHandler.CreateReview)
	protected.Delete("/products/:productId/reviews", reviewHandler.DeleteReview)

	protected.Post("/bookings", bookingHandler.CreateBooking)
	protected.Get("/bookings", bookingHandler.ListBookings)
	protected.Delete("/bookings/:id", bookingHandler.CancelBooking)

	protected.Get("/recommendations", recommendationHandler.GetRecommendations)
	protected.Get("/recommendations/content", recommendationHandler.GetContentBased)
	protected.Get("/recommendations/collaborative", recommendationHandler.GetCollaborative)

	// Admin routes
	admin := api.Group("/admin", middleware.AuthMiddleware(cfg), middleware.RequireAdmin(db))
	admin.Post("/products", productHandler.CreateProduct)
	admin.Put("/products/:id", productHandler.UpdateProduct)
	admin.Delete("/products/:id", productHandler.DeleteProduct)
	admin.Get("/stats", adminHandler.DashboardStats)
	admin.Get("/stats/top-products", adminHandler.TopProducts)
	admin.Get("/stats/rating-leaders", adminHandler.RatingLeaders)
	admin.Get("/users", adminHandler.ListAllUsers)
}
