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

type OrderHandler struct {
	DB *gorm.DB
}

// CreateOrder converts the user's cart into an order. Stock is decremented
// and the cart cleared in the same transaction; the cart's price snapshots
// become the order's line prices.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	userID, _ := c.Get("user_id")
	uid := userID.(uuid.UUID)

	var items []models.CartItem
	if err := h.DB.Preload("Product").Where("user_id = ?", uid).Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
		return
	}
	if len(items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cart is empty"})
		return
	}

	var order models.Order
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		orderNumber, err := services.GenerateOrderNumber(tx)
		if err != nil {
			return err
		}

		order = models.Order{
			OrderNumber: orderNumber,
			UserID:      uid,
			Status:      models.OrderStatusPending,
			Total:       services.CartTotal(items),
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		for _, item := range items {
			if item.Product.Quantity < item.Quantity {
				return gorm.ErrInvalidData
			}

			orderItem := models.OrderItem{
				OrderID:     order.ID,
				ProductID:   item.ProductID,
				ProductName: item.Product.Name,
				Quantity:    item.Quantity,
				UnitPrice:   item.UnitPrice,
				TotalPrice:  item.TotalPrice(),
			}
			if err := tx.Create(&orderItem).Error; err != nil {
				return err
			}

			if err := tx.Model(&models.Product{}).
				Where("id = ?", item.ProductID).
				Updates(map[string]interface{}{
					"quantity":   gorm.Expr("quantity - ?", item.Quantity),
					"sell_count": gorm.Expr("sell_count + ?", item.Quantity),
				}).Error; err != nil {
				return err
			}
		}

		return tx.Where("user_id = ?", uid).Delete(&models.CartItem{}).Error
	})
	if err != nil {
		if err == gorm.ErrInvalidData {
			c.JSON(http.StatusConflict, gin.H{"error": "Insufficient stock for one or more items"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create order"})
		return
	}

	var user models.User
	if err := h.DB.Where("id = ?", uid).First(&user).Error; err == nil {
		utils.SendOrderConfirmationEmail(user.Email, user.Name, order.OrderNumber, order.Total.StringFixed(2))
	}

	h.DB.Preload("Items").First(&order, order.ID)
	c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) GetMyOrders(c *gin.Context) {
	userID, _ := c.Get("user_id")

	var orders []models.Order
	query := h.DB.Preload("Items").Preload("Items.Product").
		Where("user_id = ?", userID).
		Order("created_at DESC")

	if c.Query("include_archived") != "true" {
		query = query.Where("is_archived = ?", false)
	}

	if err := query.Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}

	c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	userID, _ := c.Get("user_id")
	role, _ := c.Get("user_role")
	id := c.Param("id")

	var order models.Order
	if err := h.DB.Preload("Items").Preload("Items.Product").Preload("User").
		Where("id = ?", id).First(&order).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	// Customers only see their own orders
	if role != "admin" && order.UserID != userID.(uuid.UUID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return
	}

	c.JSON(http.StatusOK, order)
}

// GetOrders returns all orders (admin only).
func (h *OrderHandler) GetOrders(c *gin.Context) {
	var orders []models.Order
	query := h.DB.Preload("Items").Preload("User").Order("created_at DESC")

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}

	c.JSON(http.StatusOK, orders)
}

// UpdateOrderStatus moves an order through the status state machine (admin
// only). Delivery feeds the owning sellers' earnings and order counters.
func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	id := c.Param("id")

	var req struct {
		Status models.OrderStatus `json:"status" binding:"required,oneof=PENDING CONFIRMED SHIPPED DELIVERED CANCELLED REFUNDED"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	var order models.Order
	if err := h.DB.Preload("Items").Where("id = ?", id).First(&order).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	if !models.IsValidTransition(order.Status, req.Status) {
		c.JSON(http.StatusConflict, gin.H{
			"error": "Invalid status transition from " + string(order.Status) + " to " + string(req.Status),
		})
		return
	}

	if err := h.DB.Model(&order).Update("status", req.Status).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order status"})
		return
	}

	switch req.Status {
	case models.OrderStatusDelivered:
		h.creditSellers(&order)
	case models.OrderStatusCancelled:
		// Restock the cancelled items
		for _, item := range order.Items {
			if err := h.DB.Model(&models.Product{}).
				Where("id = ?", item.ProductID).
				Updates(map[string]interface{}{
					"quantity":   gorm.Expr("quantity + ?", item.Quantity),
					"sell_count": gorm.Expr("sell_count - ?", item.Quantity),
				}).Error; err != nil {
				log.Printf("Failed to restock product %s for cancelled order %s: %v", item.ProductID, order.ID, err)
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Order status updated", "status": req.Status})
}

// creditSellers adds a delivered order's line totals to each seller's
// earnings and bumps their order counters.
func (h *OrderHandler) creditSellers(order *models.Order) {
	credited := make(map[uuid.UUID]bool)
	for _, item := range order.Items {
		var product models.Product
		if err := h.DB.Where("id = ?", item.ProductID).First(&product).Error; err != nil {
			log.Printf("Failed to load product %s for order %s: %v", item.ProductID, order.ID, err)
			continue
		}

		updates := map[string]interface{}{
			"total_earnings": gorm.Expr("total_earnings + ?", item.TotalPrice),
		}
		if !credited[product.SellerID] {
			updates["total_orders"] = gorm.Expr("total_orders + 1")
			credited[product.SellerID] = true
		}

		if err := h.DB.Model(&models.Seller{}).
			Where("id = ?", product.SellerID).
			Updates(updates).Error; err != nil {
			log.Printf("Failed to credit seller %s for order %s: %v", product.SellerID, order.ID, err)
		}
	}
}

// ArchiveOrder hides a finished order from the user's default listing.
func (h *OrderHandler) ArchiveOrder(c *gin.Context) {
	userID, _ := c.Get("user_id")
	id := c.Param("id")

	var order models.Order
	if err := h.DB.Where("id = ? AND user_id = ?", id, userID).First(&order).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	switch order.Status {
	case models.OrderStatusDelivered, models.OrderStatusCancelled, models.OrderStatusRefunded:
	default:
		c.JSON(http.StatusConflict, gin.H{"error": "Only finished orders can be archived"})
		return
	}

	if err := h.DB.Model(&order).Update("is_archived", true).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to archive order"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Order archived"})
}
