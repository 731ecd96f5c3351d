package handlers

import (
	"net/http"

	"freshbytes-backend/models"
	"freshbytes-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentHandler struct {
	DB *gorm.DB
}

// CreatePayment records a payment for one of the caller's orders. COD
// payments stay pending until delivery; digital wallets are marked completed
// once a transaction id comes back.
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	userID, _ := c.Get("user_id")

	var req struct {
		OrderID       uuid.UUID            `json:"order_id" binding:"required"`
		Method        models.PaymentMethod `json:"method" binding:"required,oneof=GCASH PAYMAYA COD"`
		TransactionID string               `json:"transaction_id"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	var order models.Order
	if err := h.DB.Where("id = ? AND user_id = ?", req.OrderID, userID).First(&order).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	var existing models.Payment
	if err := h.DB.Where("order_id = ? AND status IN ?", order.ID,
		[]models.PaymentStatus{models.PaymentStatusPending, models.PaymentStatusCompleted}).
		First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Payment already exists for this order"})
		return
	}

	status := models.PaymentStatusPending
	if req.Method != models.PaymentMethodCOD && req.TransactionID != "" {
		status = models.PaymentStatusCompleted
	}

	payment := models.Payment{
		OrderID:       order.ID,
		Method:        req.Method,
		Status:        status,
		Amount:        order.Total,
		TransactionID: req.TransactionID,
	}

	if err := h.DB.Create(&payment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record payment"})
		return
	}

	c.JSON(http.StatusCreated, payment)
}

func (h *PaymentHandler) GetOrderPayments(c *gin.Context) {
	userID, _ := c.Get("user_id")
	role, _ := c.Get("user_role")
	orderID := c.Param("id")

	var order models.Order
	if err := h.DB.Where("id = ?", orderID).First(&order).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	if role != "admin" && order.UserID != userID.(uuid.UUID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return
	}

	var payments []models.Payment
	if err := h.DB.Where("order_id = ?", order.ID).Order("created_at DESC").Find(&payments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch payments"})
		return
	}

	c.JSON(http.StatusOK, payments)
}

// UpdatePaymentStatus moves a payment to a new status (admin only).
func (h *PaymentHandler) UpdatePaymentStatus(c *gin.Context) {
	id := c.Param("id")

	var req struct {
		Status models.PaymentStatus `json:"status" binding:"required,oneof=PENDING COMPLETED FAILED REFUNDED"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	var payment models.Payment
	if err := h.DB.Where("id = ?", id).First(&payment).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
		return
	}

	if err := h.DB.Model(&payment).Update("status", req.Status).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update payment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Payment status updated", "status": req.Status})
}
