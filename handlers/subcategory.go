package handlers

import (
	"net/http"

	"freshbytes-backend/firebase"
	"freshbytes-backend/models"
	"freshbytes-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SubcategoryHandler struct {
	DB      *gorm.DB
	Storage firebase.StorageClient
}

func (h *SubcategoryHandler) GetSubcategories(c *gin.Context) {
	var subcategories []models.Subcategory
	query := h.DB.Preload("Category").Order("name ASC")

	if categoryID := c.Query("category_id"); categoryID != "" {
		query = query.Where("category_id = ?", categoryID)
	}

	if err := query.Find(&subcategories).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch subcategories"})
		return
	}

	c.JSON(http.StatusOK, subcategories)
}

func (h *SubcategoryHandler) GetSubcategory(c *gin.Context) {
	id := c.Param("id")
	var subcategory models.Subcategory

	if err := h.DB.Preload("Category").Where("id = ?", id).First(&subcategory).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Subcategory not found"})
		return
	}

	c.JSON(http.StatusOK, subcategory)
}

func (h *SubcategoryHandler) CreateSubcategory(c *gin.Context) {
	var subcategory models.Subcategory

	subcategory.Name = c.PostForm("name")
	subcategory.Description = c.PostForm("description")

	if subcategory.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Subcategory name is required"})
		return
	}

	categoryID, err := uuid.Parse(c.PostForm("category_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category ID"})
		return
	}

	if err := h.DB.First(&models.Category{}, "id = ?", categoryID).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category"})
		return
	}
	subcategory.CategoryID = categoryID

	if fileHeader, err := c.FormFile("image"); err == nil {
		if err := utils.ValidateFileUpload(fileHeader); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to open uploaded file"})
			return
		}
		defer file.Close()

		imageURL, err := h.Storage.UploadCategoryImage(
			file,
			fileHeader.Filename,
			fileHeader.Header.Get("Content-Type"),
		)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Image upload failed"})
			return
		}
		subcategory.Image = imageURL
	}

	if err := h.DB.Create(&subcategory).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create subcategory"})
		return
	}

	c.JSON(http.StatusCreated, subcategory)
}

func (h *SubcategoryHandler) UpdateSubcategory(c *gin.Context) {
	id := c.Param("id")
	var subcategory models.Subcategory

	if err := h.DB.Where("id = ?", id).First(&subcategory).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Subcategory not found"})
		return
	}

	if name := c.PostForm("name"); name != "" {
		subcategory.Name = name
	}
	if description := c.PostForm("description"); description != "" {
		subcategory.Description = description
	}

	if categoryIDStr := c.PostForm("category_id"); categoryIDStr != "" {
		categoryID, err := uuid.Parse(categoryIDStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category ID"})
			return
		}
		if err := h.DB.First(&models.Category{}, "id = ?", categoryID).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category"})
			return
		}
		subcategory.CategoryID = categoryID
	}

	if fileHeader, err := c.FormFile("image"); err == nil {
		if err := utils.ValidateFileUpload(fileHeader); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if subcategory.Image != "" {
			objectPath, pathErr := utils.ExtractObjectPath(subcategory.Image)
			if pathErr == nil {
				_ = h.Storage.DeleteFile(objectPath)
			}
		}

		file, openErr := fileHeader.Open()
		if openErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to open uploaded file"})
			return
		}
		defer file.Close()

		imageURL, uploadErr := h.Storage.UploadCategoryImage(
			file,
			fileHeader.Filename,
			fileHeader.Header.Get("Content-Type"),
		)
		if uploadErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Image upload failed"})
			return
		}
		subcategory.Image = imageURL
	}

	if err := h.DB.Save(&subcategory).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update subcategory"})
		return
	}

	c.JSON(http.StatusOK, subcategory)
}

func (h *SubcategoryHandler) DeleteSubcategory(c *gin.Context) {
	id := c.Param("id")
	var subcategory models.Subcategory

	if err := h.DB.Where("id = ?", id).First(&subcategory).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Subcategory not found"})
		return
	}

	var productCount int64
	h.DB.Model(&models.Product{}).Where("subcategory_id = ? AND is_deleted = ?", id, false).Count(&productCount)
	if productCount > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Cannot delete subcategory with existing products"})
		return
	}

	if subcategory.Image != "" {
		objectPath, err := utils.ExtractObjectPath(subcategory.Image)
		if err == nil {
			_ = h.Storage.DeleteFile(objectPath)
		}
	}

	if err := h.DB.Delete(&models.Subcategory{}, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete subcategory"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Subcategory deleted successfully"})
}
