package handlers

import (
	"log"
	"net/http"

	"freshbytes-backend/models"
	"freshbytes-backend/services"
	"freshbytes-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReviewHandler struct {
	DB *gorm.DB
}

func (h *ReviewHandler) GetProductReviews(c *gin.Context) {
	productID := c.Param("id")

	var reviews []models.Review
	if err := h.DB.Preload("User").
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Find(&reviews).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch reviews"})
		return
	}

	c.JSON(http.StatusOK, reviews)
}

// CreateReview lets a user review a product they have received. One review
// per user per product; a repeat submission updates the existing one.
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	userID, _ := c.Get("user_id")
	uid := userID.(uuid.UUID)

	var req struct {
		ProductID uuid.UUID `json:"product_id" binding:"required"`
		Rating    int       `json:"rating" binding:"required,min=1,max=5"`
		Comment   string    `json:"comment"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	var product models.Product
	if err := h.DB.Where("id = ? AND is_deleted = ?", req.ProductID, false).First(&product).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	// Reviews require a delivered order containing the product
	var deliveredCount int64
	h.DB.Model(&models.OrderItem{}).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.user_id = ? AND orders.status = ? AND order_items.product_id = ?",
			uid, models.OrderStatusDelivered, req.ProductID).
		Count(&deliveredCount)
	if deliveredCount == 0 {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only review products from delivered orders"})
		return
	}

	var review models.Review
	err := h.DB.Where("user_id = ? AND product_id = ?", uid, req.ProductID).First(&review).Error
	created := err != nil

	review.UserID = uid
	review.ProductID = req.ProductID
	review.Rating = req.Rating
	review.Comment = req.Comment

	if created {
		err = h.DB.Create(&review).Error
	} else {
		err = h.DB.Save(&review).Error
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save review"})
		return
	}

	// Review stats fan out to the product and its seller
	if err := services.RecomputeProductReviewStats(h.DB, req.ProductID); err != nil {
		log.Printf("Failed to refresh product review stats: %v", err)
	}
	if err := services.RecomputeSellerReviewStats(h.DB, product.SellerID); err != nil {
		log.Printf("Failed to refresh seller review stats: %v", err)
	}

	if created {
		c.JSON(http.StatusCreated, review)
		return
	}
	c.JSON(http.StatusOK, review)
}

func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	userID, _ := c.Get("user_id")
	role, _ := c.Get("user_role")
	id := c.Param("id")

	var review models.Review
	if err := h.DB.Where("id = ?", id).First(&review).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Review not found"})
		return
	}

	if role != "admin" && review.UserID != userID.(uuid.UUID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return
	}

	var product models.Product
	productFound := h.DB.Where("id = ?", review.ProductID).First(&product).Error == nil

	if err := h.DB.Delete(&review).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete review"})
		return
	}

	if err := services.RecomputeProductReviewStats(h.DB, review.ProductID); err != nil {
		log.Printf("Failed to refresh product review stats: %v", err)
	}
	if productFound {
		if err := services.RecomputeSellerReviewStats(h.DB, product.SellerID); err != nil {
			log.Printf("Failed to refresh seller review stats: %v", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Review deleted successfully"})
}
