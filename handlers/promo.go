package handlers

import (
	"log"
	"net/http"
	"time"

	"freshbytes-backend/models"
	"freshbytes-backend/services"
	"freshbytes-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PromoHandler struct {
	DB *gorm.DB
}

type promoRequest struct {
	Name               string              `json:"name" binding:"required"`
	Description        string              `json:"description"`
	DiscountType       models.DiscountType `json:"discount_type" binding:"required,oneof=PERCENTAGE FIXED"`
	DiscountAmount     int                 `json:"discount_amount" binding:"min=0"`
	DiscountPercentage int                 `json:"discount_percentage" binding:"min=0,max=100"`
	IsActive           *bool               `json:"is_active"`
	StartDate          time.Time           `json:"start_date"`
	EndDate            time.Time           `json:"end_date"`
	ProductIDs         []uuid.UUID         `json:"product_ids"`
}

// validateOwnedProducts checks every product id belongs to the seller and is
// not deleted. Returns the offending id when one fails.
func (h *PromoHandler) validateOwnedProducts(sellerID uuid.UUID, productIDs []uuid.UUID) (uuid.UUID, bool) {
	for _, pid := range productIDs {
		var count int64
		h.DB.Model(&models.Product{}).
			Where("id = ? AND seller_id = ? AND is_deleted = ?", pid, sellerID, false).
			Count(&count)
		if count == 0 {
			return pid, false
		}
	}
	return uuid.Nil, true
}

// GetPromos is the public listing: active promos inside their date window.
func (h *PromoHandler) GetPromos(c *gin.Context) {
	var promos []models.Promo
	now := time.Now()

	query := h.DB.Where("is_active = ?", true).
		Where("start_date <= ? AND end_date >= ?", now, now)

	if sellerID := c.Query("seller_id"); sellerID != "" {
		query = query.Where("seller_id = ?", sellerID)
	}

	if err := query.Find(&promos).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch promos"})
		return
	}

	c.JSON(http.StatusOK, promos)
}

func (h *PromoHandler) GetPromo(c *gin.Context) {
	id := c.Param("id")
	var promo models.Promo

	if err := h.DB.Where("id = ?", id).First(&promo).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Promo not found"})
		return
	}

	var productIDs []uuid.UUID
	h.DB.Model(&models.PromoProduct{}).
		Where("promo_id = ?", promo.ID).
		Pluck("product_id", &productIDs)

	c.JSON(http.StatusOK, gin.H{
		"promo":       promo,
		"product_ids": productIDs,
	})
}

// GetMyPromos returns all promos owned by the calling seller, inactive and
// expired ones included.
func (h *PromoHandler) GetMyPromos(c *gin.Context) {
	sellerID, _ := c.Get("seller_id")

	var promos []models.Promo
	if err := h.DB.Where("seller_id = ?", sellerID).
		Order("created_at DESC").
		Find(&promos).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch promos"})
		return
	}

	c.JSON(http.StatusOK, promos)
}

func (h *PromoHandler) CreatePromo(c *gin.Context) {
	sellerID, _ := c.Get("seller_id")
	sid := sellerID.(uuid.UUID)

	var req promoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	if req.DiscountType == models.DiscountTypePercentage && req.DiscountPercentage == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "discount_percentage is required for percentage promos"})
		return
	}
	if req.DiscountType == models.DiscountTypeFixed && req.DiscountAmount == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "discount_amount is required for fixed promos"})
		return
	}

	if pid, ok := h.validateOwnedProducts(sid, req.ProductIDs); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Product " + pid.String() + " not found or not owned by you"})
		return
	}

	promo := models.Promo{
		SellerID:           sid,
		Name:               req.Name,
		Description:        req.Description,
		DiscountType:       req.DiscountType,
		DiscountAmount:     req.DiscountAmount,
		DiscountPercentage: req.DiscountPercentage,
		IsActive:           req.IsActive == nil || *req.IsActive,
		StartDate:          req.StartDate,
		EndDate:            req.EndDate,
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&promo).Error; err != nil {
			return err
		}
		for _, pid := range req.ProductIDs {
			pp := models.PromoProduct{PromoID: promo.ID, ProductID: pid}
			if err := tx.Create(&pp).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create promo"})
		return
	}

	// Promo save trigger: every associated product gets its derived pricing
	// fields rebuilt.
	if err := services.RecomputeForPromoProducts(h.DB, &promo, req.ProductIDs); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to recalculate product discounts"})
		return
	}

	c.JSON(http.StatusCreated, promo)
}

func (h *PromoHandler) UpdatePromo(c *gin.Context) {
	sellerID, _ := c.Get("seller_id")
	id := c.Param("id")

	var promo models.Promo
	if err := h.DB.Where("id = ?", id).First(&promo).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Promo not found"})
		return
	}

	if promo.SellerID != sellerID.(uuid.UUID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not own this promo"})
		return
	}

	var req struct {
		Name               string               `json:"name"`
		Description        *string              `json:"description"`
		DiscountType       *models.DiscountType `json:"discount_type" binding:"omitempty,oneof=PERCENTAGE FIXED"`
		DiscountAmount     *int                 `json:"discount_amount" binding:"omitempty,min=0"`
		DiscountPercentage *int                 `json:"discount_percentage" binding:"omitempty,min=0,max=100"`
		IsActive           *bool                `json:"is_active"`
		StartDate          *time.Time           `json:"start_date"`
		EndDate            *time.Time           `json:"end_date"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	if req.Name != "" {
		promo.Name = req.Name
	}
	if req.Description != nil {
		promo.Description = *req.Description
	}
	if req.DiscountType != nil {
		promo.DiscountType = *req.DiscountType
	}
	if req.DiscountAmount != nil {
		promo.DiscountAmount = *req.DiscountAmount
	}
	if req.DiscountPercentage != nil {
		promo.DiscountPercentage = *req.DiscountPercentage
	}
	if req.IsActive != nil {
		promo.IsActive = *req.IsActive
	}
	if req.StartDate != nil {
		promo.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		promo.EndDate = *req.EndDate
	}

	if err := h.DB.Save(&promo).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update promo"})
		return
	}

	// Any promo change (dates, discount values, active flag) can change the
	// best promo for each associated product.
	if err := services.RecomputeForPromoProducts(h.DB, &promo, nil); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to recalculate product discounts"})
		return
	}

	c.JSON(http.StatusOK, promo)
}

func (h *PromoHandler) DeletePromo(c *gin.Context) {
	sellerID, _ := c.Get("seller_id")
	id := c.Param("id")

	var promo models.Promo
	if err := h.DB.Where("id = ?", id).First(&promo).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Promo not found"})
		return
	}

	if promo.SellerID != sellerID.(uuid.UUID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not own this promo"})
		return
	}

	productIDs, err := h.deletePromoWithAssociations(&promo)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete promo"})
		return
	}

	if err := services.RecomputeForPromoProducts(h.DB, &promo, productIDs); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to recalculate product discounts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Promo deleted successfully"})
}

// deletePromoWithAssociations removes a promo and its join rows in one
// transaction, returning the product ids that were associated. The ids must
// be captured before the join rows disappear or the recalculation has nothing
// to fan out over.
func (h *PromoHandler) deletePromoWithAssociations(promo *models.Promo) ([]uuid.UUID, error) {
	var productIDs []uuid.UUID
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.PromoProduct{}).
			Where("promo_id = ?", promo.ID).
			Pluck("product_id", &productIDs).Error; err != nil {
			return err
		}
		if err := tx.Where("promo_id = ?", promo.ID).Delete(&models.PromoProduct{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Promo{}, "id = ?", promo.ID).Error
	})
	return productIDs, err
}

// AddPromoProducts associates more products with a promo.
func (h *PromoHandler) AddPromoProducts(c *gin.Context) {
	sellerID, _ := c.Get("seller_id")
	id := c.Param("id")

	var promo models.Promo
	if err := h.DB.Where("id = ?", id).First(&promo).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Promo not found"})
		return
	}

	if promo.SellerID != sellerID.(uuid.UUID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not own this promo"})
		return
	}

	var req struct {
		ProductIDs []uuid.UUID `json:"product_ids" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	if pid, ok := h.validateOwnedProducts(promo.SellerID, req.ProductIDs); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Product " + pid.String() + " not found or not owned by you"})
		return
	}

	for _, pid := range req.ProductIDs {
		var count int64
		h.DB.Model(&models.PromoProduct{}).
			Where("promo_id = ? AND product_id = ?", promo.ID, pid).
			Count(&count)
		if count > 0 {
			continue
		}
		pp := models.PromoProduct{PromoID: promo.ID, ProductID: pid}
		if err := h.DB.Create(&pp).Error; err != nil {
			log.Printf("Failed to associate product %s with promo %s: %v", pid, promo.ID, err)
		}
	}

	// Membership change trigger: only the products whose membership changed
	// need recalculating.
	if err := services.RecomputeForPromoProducts(h.DB, &promo, req.ProductIDs); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to recalculate product discounts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Products added to promo"})
}

// RemovePromoProducts drops products from a promo. The removed products are
// recalculated afterwards so a surviving promo (or none) takes over their
// pricing.
func (h *PromoHandler) RemovePromoProducts(c *gin.Context) {
	sellerID, _ := c.Get("seller_id")
	id := c.Param("id")

	var promo models.Promo
	if err := h.DB.Where("id = ?", id).First(&promo).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Promo not found"})
		return
	}

	if promo.SellerID != sellerID.(uuid.UUID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not own this promo"})
		return
	}

	var req struct {
		ProductIDs []uuid.UUID `json:"product_ids" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	if err := h.DB.Where("promo_id = ? AND product_id IN ?", promo.ID, req.ProductIDs).
		Delete(&models.PromoProduct{}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove products from promo"})
		return
	}

	if err := services.RecomputeForPromoProducts(h.DB, &promo, req.ProductIDs); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to recalculate product discounts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Products removed from promo"})
}

// ClearPromoProducts removes every product from a promo.
func (h *PromoHandler) ClearPromoProducts(c *gin.Context) {
	sellerID, _ := c.Get("seller_id")
	id := c.Param("id")

	var promo models.Promo
	if err := h.DB.Where("id = ?", id).First(&promo).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Promo not found"})
		return
	}

	if promo.SellerID != sellerID.(uuid.UUID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not own this promo"})
		return
	}

	var productIDs []uuid.UUID
	if err := h.DB.Model(&models.PromoProduct{}).
		Where("promo_id = ?", promo.ID).
		Pluck("product_id", &productIDs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list promo products"})
		return
	}

	if err := h.DB.Where("promo_id = ?", promo.ID).Delete(&models.PromoProduct{}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear promo products"})
		return
	}

	if err := services.RecomputeForPromoProducts(h.DB, &promo, productIDs); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to recalculate product discounts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Products removed from promo"})
}

// GetAllPromos returns every promo in the system (admin only).
func (h *PromoHandler) GetAllPromos(c *gin.Context) {
	var promos []models.Promo
	if err := h.DB.Order("created_at DESC").Find(&promos).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch promos"})
		return
	}
	c.JSON(http.StatusOK, promos)
}

// AdminDeletePromo lets an admin delete any promo regardless of owner.
func (h *PromoHandler) AdminDeletePromo(c *gin.Context) {
	id := c.Param("id")

	var promo models.Promo
	if err := h.DB.Where("id = ?", id).First(&promo).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Promo not found"})
		return
	}

	productIDs, err := h.deletePromoWithAssociations(&promo)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete promo"})
		return
	}

	if err := services.RecomputeForPromoProducts(h.DB, &promo, productIDs); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to recalculate product discounts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Promo deleted successfully"})
}
