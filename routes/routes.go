package routes

import (
	"time"

	"freshbytes-backend/firebase"
	"freshbytes-backend/handlers"
	"freshbytes-backend/middleware"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func SetupRoutes(r *gin.Engine, db *gorm.DB, storage firebase.StorageClient) {
	// Initialize handlers
	authHandler := &handlers.AuthHandler{DB: db}
	sellerHandler := &handlers.SellerHandler{DB: db}
	categoryHandler := &handlers.CategoryHandler{DB: db, Storage: storage}
	subcategoryHandler := &handlers.SubcategoryHandler{DB: db, Storage: storage}
	productHandler := &handlers.ProductHandler{DB: db, Storage: storage}
	promoHandler := &handlers.PromoHandler{DB: db}
	cartHandler := &handlers.CartHandler{DB: db}
	orderHandler := &handlers.OrderHandler{DB: db}
	reviewHandler := &handlers.ReviewHandler{DB: db}
	paymentHandler := &handlers.PaymentHandler{DB: db}

	// Brute-force protection on the credential endpoints
	authLimiter := middleware.NewRateLimiter(10, time.Minute)

	// Public routes
	api := r.Group("/api")
	{
		// Auth routes
		api.POST("/auth/register", authLimiter.Middleware(), authHandler.Register)
		api.POST("/auth/login", authLimiter.Middleware(), authHandler.Login)
		api.POST("/auth/refresh", authLimiter.Middleware(), authHandler.RefreshToken)

		// Public catalog routes
		api.GET("/products", productHandler.GetProducts)
		api.GET("/products/paginated", productHandler.GetProductsPaginated)
		api.GET("/products/:id", productHandler.GetProduct)
		api.GET("/products/:id/reviews", reviewHandler.GetProductReviews)

		api.GET("/categories", categoryHandler.GetCategories)
		api.GET("/categories/:id", categoryHandler.GetCategory)
		api.GET("/subcategories", subcategoryHandler.GetSubcategories)
		api.GET("/subcategories/:id", subcategoryHandler.GetSubcategory)

		// Public promo routes
		api.GET("/promos", promoHandler.GetPromos)
		api.GET("/promos/:id", promoHandler.GetPromo)

		api.GET("/sellers/:id", sellerHandler.GetSeller)
	}

	// Protected routes (require authentication)
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware())
	{
		// User profile
		protected.GET("/auth/profile", authHandler.GetProfile)
		protected.PUT("/auth/profile", authHandler.UpdateProfile)

		// Seller onboarding
		protected.POST("/sellers/register", sellerHandler.RegisterSeller)

		// Cart routes
		protected.GET("/cart", cartHandler.GetCart)
		protected.POST("/cart", cartHandler.AddToCart)
		protected.PUT("/cart/:id", cartHandler.UpdateCartItem)
		protected.DELETE("/cart/:id", cartHandler.RemoveFromCart)
		protected.DELETE("/cart", cartHandler.ClearCart)

		// Order routes
		protected.POST("/orders", orderHandler.CreateOrder)
		protected.GET("/orders", orderHandler.GetMyOrders)
		protected.GET("/orders/:id", orderHandler.GetOrder)
		protected.PUT("/orders/:id/archive", orderHandler.ArchiveOrder)

		// Payment routes
		protected.POST("/payments", paymentHandler.CreatePayment)
		protected.GET("/orders/:id/payments", paymentHandler.GetOrderPayments)

		// Review routes
		protected.POST("/reviews", reviewHandler.CreateReview)
		protected.DELETE("/reviews/:id", reviewHandler.DeleteReview)
	}

	// Seller routes (require seller role)
	seller := api.Group("/seller")
	seller.Use(middleware.AuthMiddleware())
	seller.Use(middleware.SellerMiddleware())
	{
		seller.GET("/profile", sellerHandler.GetMySellerProfile)
		seller.PUT("/profile", sellerHandler.UpdateMySellerProfile)

		// Product management
		seller.GET("/products", productHandler.GetMyProducts)
		seller.POST("/products", productHandler.CreateProduct)
		seller.PUT("/products/:id", productHandler.UpdateProduct)
		seller.DELETE("/products/:id", productHandler.DeleteProduct)

		// Promo management
		seller.GET("/promos", promoHandler.GetMyPromos)
		seller.POST("/promos", promoHandler.CreatePromo)
		seller.PUT("/promos/:id", promoHandler.UpdatePromo)
		seller.DELETE("/promos/:id", promoHandler.DeletePromo)
		seller.POST("/promos/:id/products", promoHandler.AddPromoProducts)
		seller.DELETE("/promos/:id/products", promoHandler.RemovePromoProducts)
		seller.DELETE("/promos/:id/products/all", promoHandler.ClearPromoProducts)
	}

	// Admin routes (require admin role)
	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware())
	admin.Use(middleware.AdminMiddleware())
	{
		// Category management
		admin.POST("/categories", categoryHandler.CreateCategory)
		admin.PUT("/categories/:id", categoryHandler.UpdateCategory)
		admin.DELETE("/categories/:id", categoryHandler.DeleteCategory)
		admin.POST("/subcategories", subcategoryHandler.CreateSubcategory)
		admin.PUT("/subcategories/:id", subcategoryHandler.UpdateSubcategory)
		admin.DELETE("/subcategories/:id", subcategoryHandler.DeleteSubcategory)

		// Seller management
		admin.GET("/sellers", sellerHandler.GetSellers)
		admin.PUT("/sellers/:id/verify", sellerHandler.VerifySeller)
		admin.PUT("/sellers/:id/active", sellerHandler.SetSellerActive)

		// Promo management
		admin.GET("/promos", promoHandler.GetAllPromos)
		admin.DELETE("/promos/:id", promoHandler.AdminDeletePromo)

		// Order management
		admin.GET("/orders", orderHandler.GetOrders)
		admin.PUT("/orders/:id/status", orderHandler.UpdateOrderStatus)

		// Payment management
		admin.PUT("/payments/:id/status", paymentHandler.UpdatePaymentStatus)
	}

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
}
