package handlers

import (
	"net/http"

	"freshbytes-backend/models"
	"freshbytes-backend/services"
	"freshbytes-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CartHandler struct {
	DB *gorm.DB
}

func (h *CartHandler) GetCart(c *gin.Context) {
	userID, _ := c.Get("user_id")

	var items []models.CartItem
	if err := h.DB.Preload("Product").Preload("Product.Images").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"total": services.CartTotal(items),
	})
}

func (h *CartHandler) AddToCart(c *gin.Context) {
	userID, _ := c.Get("user_id")

	var req struct {
		ProductID uuid.UUID `json:"product_id" binding:"required"`
		Quantity  int       `json:"quantity" binding:"required,min=1"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	var product models.Product
	if err := h.DB.Where("id = ? AND is_deleted = ? AND is_active = ?", req.ProductID, false, true).
		First(&product).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	if product.Quantity < req.Quantity {
		c.JSON(http.StatusConflict, gin.H{"error": "Insufficient stock"})
		return
	}

	// Merge with an existing cart row for the same product
	var item models.CartItem
	err := h.DB.Where("user_id = ? AND product_id = ?", userID, req.ProductID).First(&item).Error
	if err == nil {
		item.Quantity += req.Quantity
		// Re-snapshot the price: a promo may have started or ended since the
		// item first entered the cart.
		item.UnitPrice = product.CurrentPrice()
		if err := h.DB.Save(&item).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart"})
			return
		}
		c.JSON(http.StatusOK, item)
		return
	}

	item = models.CartItem{
		UserID:    userID.(uuid.UUID),
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		UnitPrice: product.CurrentPrice(),
	}

	if err := h.DB.Create(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add to cart"})
		return
	}

	c.JSON(http.StatusCreated, item)
}

func (h *CartHandler) UpdateCartItem(c *gin.Context) {
	userID, _ := c.Get("user_id")
	id := c.Param("id")

	var req struct {
		Quantity int `json:"quantity" binding:"required,min=1"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	var item models.CartItem
	if err := h.DB.Where("id = ? AND user_id = ?", id, userID).First(&item).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Cart item not found"})
		return
	}

	var product models.Product
	if err := h.DB.Where("id = ?", item.ProductID).First(&product).Error; err == nil {
		if product.Quantity < req.Quantity {
			c.JSON(http.StatusConflict, gin.H{"error": "Insufficient stock"})
			return
		}
	}

	item.Quantity = req.Quantity
	if err := h.DB.Save(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart item"})
		return
	}

	c.JSON(http.StatusOK, item)
}

func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	userID, _ := c.Get("user_id")
	id := c.Param("id")

	result := h.DB.Where("id = ? AND user_id = ?", id, userID).Delete(&models.CartItem{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove cart item"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Cart item not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Item removed from cart"})
}

func (h *CartHandler) ClearCart(c *gin.Context) {
	userID, _ := c.Get("user_id")

	if err := h.DB.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear cart"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
}
