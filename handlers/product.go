package handlers

import (
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"freshbytes-backend/firebase"
	"freshbytes-backend/models"
	"freshbytes-backend/services"
	"freshbytes-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProductHandler struct {
	DB      *gorm.DB
	Storage firebase.StorageClient
}

// generateSKU produces a timestamped SKU with a random suffix.
func generateSKU() string {
	return fmt.Sprintf("FB-%d%04d", time.Now().Unix()%100000, rand.Intn(10000))
}

func (h *ProductHandler) GetProducts(c *gin.Context) {
	var products []models.Product
	query := h.DB.Preload("Subcategory").Preload("Images").
		Where("is_deleted = ? AND is_active = ?", false, true)

	if subcategoryID := c.Query("subcategory_id"); subcategoryID != "" {
		query = query.Where("subcategory_id = ?", subcategoryID)
	}
	if categoryID := c.Query("category_id"); categoryID != "" {
		query = query.Where("subcategory_id IN (SELECT id FROM subcategories WHERE category_id = ?)", categoryID)
	}
	if sellerID := c.Query("seller_id"); sellerID != "" {
		query = query.Where("seller_id = ?", sellerID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if c.Query("has_promo") == "true" {
		query = query.Where("has_promo = ?", true)
	}
	if c.Query("top_rated") == "true" {
		query = query.Where("top_rated = ?", true)
	}

	// Search by name
	if search := c.Query("search"); search != "" {
		query = query.Where("LOWER(name) LIKE LOWER(?)", "%"+search+"%")
	}

	if err := query.Find(&products).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}

	c.JSON(http.StatusOK, products)
}

func (h *ProductHandler) GetProductsPaginated(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	var products []models.Product
	var total int64

	query := h.DB.Preload("Subcategory").Preload("Images").
		Where("is_deleted = ? AND is_active = ?", false, true)

	if subcategoryID := c.Query("subcategory_id"); subcategoryID != "" {
		query = query.Where("subcategory_id = ?", subcategoryID)
	}
	if search := c.Query("search"); search != "" {
		query = query.Where("LOWER(name) LIKE LOWER(?)", "%"+search+"%")
	}

	query.Model(&models.Product{}).Count(&total)
	query.Offset(offset).Limit(limit).Find(&products)

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"total":    total,
		"page":     page,
		"limit":    limit,
	})
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	id := c.Param("id")
	var product models.Product

	if err := h.DB.Preload("Subcategory").Preload("Images").Preload("Seller").
		Where("id = ? AND is_deleted = ?", id, false).First(&product).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	c.JSON(http.StatusOK, product)
}

// GetMyProducts returns all products owned by the calling seller, deleted ones
// excluded.
func (h *ProductHandler) GetMyProducts(c *gin.Context) {
	sellerID, _ := c.Get("seller_id")

	var products []models.Product
	if err := h.DB.Preload("Subcategory").Preload("Images").
		Where("seller_id = ? AND is_deleted = ?", sellerID, false).
		Order("created_at DESC").
		Find(&products).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}

	c.JSON(http.StatusOK, products)
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	sellerID, _ := c.Get("seller_id")

	var product models.Product
	product.ID = uuid.New()
	product.SellerID = sellerID.(uuid.UUID)

	product.Name = c.PostForm("name")
	if product.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Product name is required"})
		return
	}

	product.SKU = c.PostForm("sku")
	if product.SKU == "" {
		product.SKU = generateSKU()
	}

	product.BriefDescription = c.PostForm("brief_description")
	product.FullDescription = c.PostForm("full_description")
	product.Location = c.PostForm("location")

	price, err := decimal.NewFromString(c.PostForm("price"))
	if err != nil || !price.IsPositive() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Valid price is required"})
		return
	}
	product.Price = price

	if weight := c.PostForm("weight"); weight != "" {
		if w, err := decimal.NewFromString(weight); err == nil {
			product.Weight = w
		}
	}
	if quantity := c.PostForm("quantity"); quantity != "" {
		product.Quantity, _ = strconv.Atoi(quantity)
	}
	if product.Quantity < 1 {
		product.Quantity = 1
	}

	product.Status = models.ProductStatusFresh
	if status := c.PostForm("status"); status != "" {
		switch models.ProductStatus(status) {
		case models.ProductStatusFresh, models.ProductStatusSlightlyWithered, models.ProductStatusRotten:
			product.Status = models.ProductStatus(status)
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product status"})
			return
		}
	}

	if harvestDate := c.PostForm("harvest_date"); harvestDate != "" {
		if parsedTime, err := time.Parse("2006-01-02", harvestDate); err == nil {
			product.HarvestDate = &parsedTime
		} else {
			log.Printf("Failed to parse harvest_date: %s, error: %v", harvestDate, err)
		}
	}

	// Subcategory (optional)
	if subcategoryIDStr := c.PostForm("subcategory_id"); subcategoryIDStr != "" {
		subcategoryID, err := uuid.Parse(subcategoryIDStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid subcategory ID"})
			return
		}
		if err := h.DB.First(&models.Subcategory{}, "id = ?", subcategoryID).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid subcategory"})
			return
		}
		product.SubcategoryID = &subcategoryID
	}

	product.IsActive = c.PostForm("is_active") != "false"

	if err := h.DB.Create(&product).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
		return
	}

	// Every product save goes through discount recalculation; a brand-new
	// product can already fall inside an active promo when the client sends
	// promo associations right after.
	if err := services.RecomputeDiscount(h.DB, &product); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to recalculate discount"})
		return
	}

	if err := services.RecomputeSellerTotalProducts(h.DB, product.SellerID); err != nil {
		log.Printf("Failed to refresh seller product count: %v", err)
	}

	// Image uploads are optional at creation time
	if form, err := c.MultipartForm(); err == nil {
		files := form.File["images"]
		var productImages []models.ProductImage
		for i, fileHeader := range files {
			if err := utils.ValidateFileUpload(fileHeader); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}

			file, err := fileHeader.Open()
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid image"})
				return
			}

			imageURL, err := h.Storage.UploadProductImage(
				file,
				fileHeader.Filename,
				fileHeader.Header.Get("Content-Type"),
			)
			file.Close()

			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Image upload failed"})
				return
			}

			// First image is marked as primary
			productImages = append(productImages, models.ProductImage{
				ProductID: product.ID,
				ImageURL:  imageURL,
				IsPrimary: i == 0,
			})
		}

		if len(productImages) > 0 {
			if err := h.DB.Create(&productImages).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save product images"})
				return
			}
		}
	}

	h.DB.Preload("Subcategory").Preload("Images").First(&product, product.ID)
	c.JSON(http.StatusCreated, product)
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	sellerID, _ := c.Get("seller_id")
	id := c.Param("id")

	var product models.Product
	if err := h.DB.Preload("Images").
		Where("id = ? AND is_deleted = ?", id, false).First(&product).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	if product.SellerID != sellerID.(uuid.UUID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not own this product"})
		return
	}

	if name := c.PostForm("name"); name != "" {
		product.Name = name
	}
	if sku := c.PostForm("sku"); sku != "" {
		product.SKU = sku
	}
	if brief := c.PostForm("brief_description"); brief != "" {
		product.BriefDescription = brief
	}
	if full := c.PostForm("full_description"); full != "" {
		product.FullDescription = full
	}
	if location := c.PostForm("location"); location != "" {
		product.Location = location
	}

	if priceStr := c.PostForm("price"); priceStr != "" {
		price, err := decimal.NewFromString(priceStr)
		if err != nil || !price.IsPositive() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid price"})
			return
		}
		product.Price = price
	}

	if weight := c.PostForm("weight"); weight != "" {
		if w, err := decimal.NewFromString(weight); err == nil {
			product.Weight = w
		}
	}
	if quantity := c.PostForm("quantity"); quantity != "" {
		product.Quantity, _ = strconv.Atoi(quantity)
	}

	if status := c.PostForm("status"); status != "" {
		switch models.ProductStatus(status) {
		case models.ProductStatusFresh, models.ProductStatusSlightlyWithered, models.ProductStatusRotten:
			product.Status = models.ProductStatus(status)
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product status"})
			return
		}
	}

	if harvestDate := c.PostForm("harvest_date"); harvestDate != "" {
		if parsedTime, err := time.Parse("2006-01-02", harvestDate); err == nil {
			product.HarvestDate = &parsedTime
		} else {
			log.Printf("Failed to parse harvest_date: %s, error: %v", harvestDate, err)
		}
	}

	if subcategoryIDStr := c.PostForm("subcategory_id"); subcategoryIDStr != "" {
		subcategoryID, err := uuid.Parse(subcategoryIDStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid subcategory ID"})
			return
		}
		if err := h.DB.First(&models.Subcategory{}, "id = ?", subcategoryID).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid subcategory"})
			return
		}
		product.SubcategoryID = &subcategoryID
	}

	if isActive := c.PostForm("is_active"); isActive != "" {
		product.IsActive = isActive == "true"
	}

	// Handle image updates
	if form, err := c.MultipartForm(); err == nil {
		files := form.File["images"]
		imagesToDelete := form.Value["delete_images"]

		for _, imageID := range imagesToDelete {
			var productImage models.ProductImage
			if err := h.DB.Where("id = ? AND product_id = ?", imageID, product.ID).First(&productImage).Error; err == nil {
				objectPath, err := utils.ExtractObjectPath(productImage.ImageURL)
				if err == nil && objectPath != "" {
					if err := h.Storage.DeleteFile(objectPath); err != nil {
						log.Println("Failed to delete image from storage:", err)
					}
				}
				h.DB.Delete(&productImage)
			}
		}

		if len(files) > 0 {
			var newProductImages []models.ProductImage
			for i, fileHeader := range files {
				if err := utils.ValidateFileUpload(fileHeader); err != nil {
					c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
					return
				}

				file, err := fileHeader.Open()
				if err != nil {
					c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid image"})
					return
				}

				imageURL, err := h.Storage.UploadProductImage(
					file,
					fileHeader.Filename,
					fileHeader.Header.Get("Content-Type"),
				)
				file.Close()

				if err != nil {
					c.JSON(http.StatusInternalServerError, gin.H{"error": "Image upload failed"})
					return
				}

				newProductImages = append(newProductImages, models.ProductImage{
					ProductID: product.ID,
					ImageURL:  imageURL,
					IsPrimary: len(product.Images) == 0 && i == 0,
				})
			}

			if err := h.DB.Create(&newProductImages).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save product images"})
				return
			}
		}
	}

	if primaryImageID := c.PostForm("primary_image_id"); primaryImageID != "" {
		h.DB.Model(&models.ProductImage{}).
			Where("product_id = ?", product.ID).
			Update("is_primary", false)
		h.DB.Model(&models.ProductImage{}).
			Where("id = ? AND product_id = ?", primaryImageID, product.ID).
			Update("is_primary", true)
	}

	if err := h.DB.Save(&product).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
		return
	}

	// A price change moves the percentage-discount base, so the derived fields
	// must be rebuilt after every save.
	if err := services.RecomputeDiscount(h.DB, &product); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to recalculate discount"})
		return
	}

	h.DB.Preload("Subcategory").Preload("Images").First(&product, product.ID)
	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	sellerID, _ := c.Get("seller_id")
	id := c.Param("id")

	var product models.Product
	if err := h.DB.Where("id = ? AND is_deleted = ?", id, false).First(&product).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	if product.SellerID != sellerID.(uuid.UUID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not own this product"})
		return
	}

	// Soft delete: the row stays readable so order history keeps its product
	// references and the seller counter can still see it.
	if err := h.DB.Model(&product).Updates(map[string]interface{}{
		"is_deleted": true,
		"is_active":  false,
	}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
		return
	}

	// Drop the product from any promos it was attached to
	if err := h.DB.Where("product_id = ?", product.ID).Delete(&models.PromoProduct{}).Error; err != nil {
		log.Printf("Failed to remove promo associations for product %s: %v", product.ID, err)
	}

	if err := services.RecomputeSellerTotalProducts(h.DB, product.SellerID); err != nil {
		log.Printf("Failed to refresh seller product count: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}
