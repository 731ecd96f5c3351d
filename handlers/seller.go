package handlers

import (
	"net/http"

	"freshbytes-backend/models"
	"freshbytes-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SellerHandler struct {
	DB *gorm.DB
}

// RegisterSeller creates a seller profile for the authenticated user and
// promotes them to the seller role.
func (h *SellerHandler) RegisterSeller(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req struct {
		BusinessName  string `json:"business_name" binding:"required"`
		BusinessEmail string `json:"business_email" binding:"omitempty,email"`
		BusinessPhone string `json:"business_phone"`
		Street        string `json:"street"`
		City          string `json:"city"`
		Province      string `json:"province"`
		ZipCode       string `json:"zip_code"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	uid := userID.(uuid.UUID)

	var existing models.Seller
	if err := h.DB.Where("user_id = ?", uid).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Seller profile already exists"})
		return
	}

	seller := models.Seller{
		UserID:        uid,
		BusinessName:  req.BusinessName,
		BusinessEmail: req.BusinessEmail,
		BusinessPhone: req.BusinessPhone,
		Street:        req.Street,
		City:          req.City,
		Province:      req.Province,
		ZipCode:       req.ZipCode,
	}

	if err := h.DB.Create(&seller).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create seller profile"})
		return
	}

	if err := h.DB.Model(&models.User{}).Where("id = ?", uid).Update("role", "seller").Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user role"})
		return
	}

	var user models.User
	h.DB.Where("id = ?", uid).First(&user)

	// A fresh token carries the new role and seller id so the client does not
	// have to log in again.
	token, err := utils.GenerateToken(user.ID, user.Email, "seller", &seller.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"seller": seller,
		"token":  token,
	})
}

// GetMySellerProfile returns the caller's own seller profile.
func (h *SellerHandler) GetMySellerProfile(c *gin.Context) {
	sellerID, exists := c.Get("seller_id")
	if !exists {
		c.JSON(http.StatusForbidden, gin.H{"error": "No seller profile associated with this account"})
		return
	}

	var seller models.Seller
	if err := h.DB.Preload("User").Where("id = ?", sellerID).First(&seller).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Seller not found"})
		return
	}

	c.JSON(http.StatusOK, seller)
}

func (h *SellerHandler) UpdateMySellerProfile(c *gin.Context) {
	sellerID, exists := c.Get("seller_id")
	if !exists {
		c.JSON(http.StatusForbidden, gin.H{"error": "No seller profile associated with this account"})
		return
	}

	var seller models.Seller
	if err := h.DB.Where("id = ?", sellerID).First(&seller).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Seller not found"})
		return
	}

	var req struct {
		BusinessName  string `json:"business_name"`
		BusinessEmail string `json:"business_email" binding:"omitempty,email"`
		BusinessPhone string `json:"business_phone"`
		Street        string `json:"street"`
		City          string `json:"city"`
		Province      string `json:"province"`
		ZipCode       string `json:"zip_code"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	if req.BusinessName != "" {
		seller.BusinessName = req.BusinessName
	}
	if req.BusinessEmail != "" {
		seller.BusinessEmail = req.BusinessEmail
	}
	if req.BusinessPhone != "" {
		seller.BusinessPhone = req.BusinessPhone
	}
	if req.Street != "" {
		seller.Street = req.Street
	}
	if req.City != "" {
		seller.City = req.City
	}
	if req.Province != "" {
		seller.Province = req.Province
	}
	if req.ZipCode != "" {
		seller.ZipCode = req.ZipCode
	}

	if err := h.DB.Save(&seller).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update seller profile"})
		return
	}

	c.JSON(http.StatusOK, seller)
}

// GetSeller returns a seller's public profile.
func (h *SellerHandler) GetSeller(c *gin.Context) {
	id := c.Param("id")
	var seller models.Seller

	if err := h.DB.Where("id = ? AND is_active = ?", id, true).First(&seller).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Seller not found"})
		return
	}

	c.JSON(http.StatusOK, seller)
}

// GetSellers returns all sellers including inactive ones (admin only).
func (h *SellerHandler) GetSellers(c *gin.Context) {
	var sellers []models.Seller
	query := h.DB.Preload("User").Order("created_at DESC")

	if verified := c.Query("is_verified"); verified != "" {
		query = query.Where("is_verified = ?", verified == "true")
	}

	if err := query.Find(&sellers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch sellers"})
		return
	}

	c.JSON(http.StatusOK, sellers)
}

// VerifySeller marks a seller as verified (admin only).
func (h *SellerHandler) VerifySeller(c *gin.Context) {
	id := c.Param("id")
	var seller models.Seller

	if err := h.DB.Where("id = ?", id).First(&seller).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Seller not found"})
		return
	}

	if err := h.DB.Model(&seller).Update("is_verified", true).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify seller"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Seller verified successfully"})
}

// SetSellerActive toggles a seller's active status (admin only).
func (h *SellerHandler) SetSellerActive(c *gin.Context) {
	id := c.Param("id")

	var req struct {
		IsActive *bool `json:"is_active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	var seller models.Seller
	if err := h.DB.Where("id = ?", id).First(&seller).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Seller not found"})
		return
	}

	if err := h.DB.Model(&seller).Update("is_active", *req.IsActive).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update seller"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Seller updated successfully"})
}
