package handlers

import (
	"log"
	"net/http"

	"freshbytes-backend/firebase"
	"freshbytes-backend/models"
	"freshbytes-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CategoryHandler struct {
	DB      *gorm.DB
	Storage firebase.StorageClient
}

func (h *CategoryHandler) GetCategories(c *gin.Context) {
	var categories []models.Category
	query := h.DB.Order("name ASC")

	if c.Query("show_all") != "true" {
		query = query.Where("is_active = ?", true)
	}

	if err := query.Find(&categories).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch categories"})
		return
	}

	c.JSON(http.StatusOK, categories)
}

func (h *CategoryHandler) GetCategory(c *gin.Context) {
	id := c.Param("id")
	var category models.Category

	if err := h.DB.Where("id = ?", id).First(&category).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	}

	c.JSON(http.StatusOK, category)
}

func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var category models.Category

	category.Name = c.PostForm("name")
	category.Description = c.PostForm("description")
	category.IsActive = c.PostForm("is_active") != "false"

	if category.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Category name is required"})
		return
	}

	// Image is optional for categories
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
		category.Image = imageURL
	}

	if err := h.DB.Create(&category).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create category"})
		return
	}

	c.JSON(http.StatusCreated, category)
}

func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	id := c.Param("id")
	var category models.Category

	if err := h.DB.Where("id = ?", id).First(&category).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	}

	if name := c.PostForm("name"); name != "" {
		category.Name = name
	}
	if description := c.PostForm("description"); description != "" {
		category.Description = description
	}
	if isActive := c.PostForm("is_active"); isActive != "" {
		category.IsActive = isActive == "true"
	}

	if fileHeader, err := c.FormFile("image"); err == nil {
		if err := utils.ValidateFileUpload(fileHeader); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if category.Image != "" {
			objectPath, pathErr := utils.ExtractObjectPath(category.Image)
			if pathErr == nil {
				_ = h.Storage.DeleteFile(objectPath)
			}
		}

		file, openErr := fileHeader.Open()
		if openErr != nil {
			log.Printf("Failed to open uploaded file: %v", openErr)
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
		category.Image = imageURL
	}

	if err := h.DB.Save(&category).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update category"})
		return
	}

	c.JSON(http.StatusOK, category)
}

func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	id := c.Param("id")
	var category models.Category

	if err := h.DB.Where("id = ?", id).First(&category).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	}

	// Block deletion while subcategories still reference this category
	var subcategoryCount int64
	h.DB.Model(&models.Subcategory{}).Where("category_id = ?", id).Count(&subcategoryCount)
	if subcategoryCount > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Cannot delete category with existing subcategories"})
		return
	}

	if category.Image != "" {
		objectPath, err := utils.ExtractObjectPath(category.Image)
		if err == nil {
			_ = h.Storage.DeleteFile(objectPath)
		}
	}

	if err := h.DB.Delete(&models.Category{}, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete category"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully"})
}
