package services

import (
	"fmt"
	"log"
	"time"

	"freshbytes-backend/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RecomputeSellerTotalProducts refreshes a seller's product counter from the
// non-deleted products they own. Ran on every product save and delete; the
// write is skipped when the counter already matches.
func RecomputeSellerTotalProducts(db *gorm.DB, sellerID uuid.UUID) error {
	var total int64
	if err := db.Model(&models.Product{}).
		Where("seller_id = ? AND is_deleted = ?", sellerID, false).
		Count(&total).Error; err != nil {
		log.Printf("stats: failed to count products for seller %s: %v", sellerID, err)
		return err
	}

	var seller models.Seller
	if err := db.First(&seller, "id = ?", sellerID).Error; err != nil {
		log.Printf("stats: failed to load seller %s: %v", sellerID, err)
		return err
	}
	if seller.TotalProducts == int(total) {
		return nil
	}

	if err := db.Model(&seller).Update("total_products", int(total)).Error; err != nil {
		log.Printf("stats: failed to update product count for seller %s: %v", sellerID, err)
		return err
	}
	return nil
}

// topRatedMinReviews and topRatedMinAverage gate the product top_rated flag.
const topRatedMinReviews = 3

var topRatedMinAverage = decimal.NewFromFloat(4.5)

// RecomputeProductReviewStats refreshes review_count and top_rated for one
// product from its reviews.
func RecomputeProductReviewStats(db *gorm.DB, productID uuid.UUID) error {
	type agg struct {
		Count int64
		Avg   float64
	}
	var a agg
	if err := db.Model(&models.Review{}).
		Select("COUNT(*) as count, COALESCE(AVG(rating), 0) as avg").
		Where("product_id = ?", productID).
		Scan(&a).Error; err != nil {
		log.Printf("stats: failed to aggregate reviews for product %s: %v", productID, err)
		return err
	}

	topRated := a.Count >= topRatedMinReviews &&
		decimal.NewFromFloat(a.Avg).GreaterThanOrEqual(topRatedMinAverage)

	if err := db.Model(&models.Product{}).
		Where("id = ?", productID).
		Updates(map[string]interface{}{
			"review_count": a.Count,
			"top_rated":    topRated,
		}).Error; err != nil {
		log.Printf("stats: failed to update review stats for product %s: %v", productID, err)
		return err
	}
	return nil
}

// RecomputeSellerReviewStats refreshes total_reviews and average_rating for a
// seller across all reviews of their products.
func RecomputeSellerReviewStats(db *gorm.DB, sellerID uuid.UUID) error {
	type agg struct {
		Count int64
		Avg   float64
	}
	var a agg
	if err := db.Model(&models.Review{}).
		Select("COUNT(*) as count, COALESCE(AVG(reviews.rating), 0) as avg").
		Joins("JOIN products ON products.id = reviews.product_id").
		Where("products.seller_id = ?", sellerID).
		Scan(&a).Error; err != nil {
		log.Printf("stats: failed to aggregate reviews for seller %s: %v", sellerID, err)
		return err
	}

	if err := db.Model(&models.Seller{}).
		Where("id = ?", sellerID).
		Updates(map[string]interface{}{
			"total_reviews":  a.Count,
			"average_rating": decimal.NewFromFloat(a.Avg).Round(2),
		}).Error; err != nil {
		log.Printf("stats: failed to update review stats for seller %s: %v", sellerID, err)
		return err
	}
	return nil
}

// CartTotal sums the line totals of a user's cart.
func CartTotal(items []models.CartItem) decimal.Decimal {
	total := decimal.Zero
	for i := range items {
		total = total.Add(items[i].TotalPrice())
	}
	return total
}

// GenerateOrderNumber produces the next order number in the OID-<year>-<seq>
// sequence, e.g. OID-2026-00042.
func GenerateOrderNumber(db *gorm.DB) (string, error) {
	year := time.Now().Year()
	prefix := fmt.Sprintf("OID-%d-", year)

	var last models.Order
	err := db.Where("order_number LIKE ?", prefix+"%").
		Order("order_number DESC").
		First(&last).Error

	next := 1
	if err == nil {
		var seq int
		if _, scanErr := fmt.Sscanf(last.OrderNumber, "OID-%d-%05d", &year, &seq); scanErr == nil {
			next = seq + 1
		}
	} else if err != gorm.ErrRecordNotFound {
		return "", err
	}

	return fmt.Sprintf("%s%05d", prefix, next), nil
}
