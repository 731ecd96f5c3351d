package services

import (
	"log"
	"time"

	"freshbytes-backend/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ActivePromosForProduct returns the promos that currently apply to a product:
// flagged active, inside their date window at the given instant, and joined to
// the product through promo_products. Results come back best-first, where
// "best" orders by discount_amount, then discount_percentage, both descending,
// regardless of discount type.
func ActivePromosForProduct(db *gorm.DB, productID uuid.UUID, now time.Time) ([]models.Promo, error) {
	var promos []models.Promo
	err := db.
		Joins("JOIN promo_products ON promo_products.promo_id = promos.id").
		Where("promo_products.product_id = ?", productID).
		Where("promos.is_active = ? AND promos.start_date <= ? AND promos.end_date >= ?", true, now, now).
		Order("promos.discount_amount DESC, promos.discount_percentage DESC").
		Find(&promos).Error
	return promos, err
}

// RecomputeDiscount rewrites a product's discounted_price, is_discounted and
// has_promo from its currently active promos and persists exactly those three
// fields, skipping the write entirely when nothing changed.
//
// The SkipRecalc flag on the product instance breaks the cycle where the
// engine's own save would re-trigger recalculation; nested calls for the same
// instance are no-ops.
func RecomputeDiscount(db *gorm.DB, product *models.Product) error {
	if product == nil || product.ID == uuid.Nil || product.SkipRecalc {
		return nil
	}
	product.SkipRecalc = true
	defer func() { product.SkipRecalc = false }()

	now := time.Now()
	promos, err := ActivePromosForProduct(db, product.ID, now)
	if err != nil {
		log.Printf("pricing: failed to load active promos for product %s: %v", product.ID, err)
		return err
	}

	var (
		discounted   *decimal.Decimal
		isDiscounted bool
		hasPromo     bool
	)
	if len(promos) > 0 {
		best := promos[0]
		var discount decimal.Decimal
		if best.DiscountType == models.DiscountTypePercentage {
			discount = product.Price.
				Mul(decimal.NewFromInt(int64(best.DiscountPercentage))).
				Div(decimal.NewFromInt(100))
		} else {
			discount = decimal.NewFromInt(int64(best.DiscountAmount))
		}

		price := product.Price.Sub(discount)
		if price.IsNegative() {
			price = decimal.Zero
		}
		discounted = &price
		// is_discounted and has_promo are always recomputed together:
		// discounted only counts when the result is actually below base price.
		isDiscounted = price.LessThan(product.Price)
		hasPromo = true
	}

	if !derivedFieldsChanged(product, discounted, isDiscounted, hasPromo) {
		return nil
	}

	product.DiscountedPrice = discounted
	product.IsDiscounted = isDiscounted
	product.HasPromo = hasPromo

	var dp interface{}
	if discounted != nil {
		dp = *discounted
	}
	if err := db.Model(product).Updates(map[string]interface{}{
		"discounted_price": dp,
		"is_discounted":    isDiscounted,
		"has_promo":        hasPromo,
	}).Error; err != nil {
		log.Printf("pricing: failed to persist discount fields for product %s: %v", product.ID, err)
		return err
	}
	return nil
}

func derivedFieldsChanged(p *models.Product, discounted *decimal.Decimal, isDiscounted, hasPromo bool) bool {
	if p.IsDiscounted != isDiscounted || p.HasPromo != hasPromo {
		return true
	}
	if (p.DiscountedPrice == nil) != (discounted == nil) {
		return true
	}
	if p.DiscountedPrice != nil && !p.DiscountedPrice.Equal(*discounted) {
		return true
	}
	return false
}

// RecomputeForPromoProducts runs RecomputeDiscount over every product touched
// by a promo mutation. With a nil id list it fans out over all products
// currently associated with the promo; callers deleting a promo must capture
// the product ids first and pass them in, since the join rows go away with
// the promo.
func RecomputeForPromoProducts(db *gorm.DB, promo *models.Promo, productIDs []uuid.UUID) error {
	if productIDs == nil {
		if err := db.Model(&models.PromoProduct{}).
			Where("promo_id = ?", promo.ID).
			Pluck("product_id", &productIDs).Error; err != nil {
			log.Printf("pricing: failed to list products for promo %s: %v", promo.ID, err)
			return err
		}
	}
	if len(productIDs) == 0 {
		return nil
	}

	var products []models.Product
	if err := db.Where("id IN ?", productIDs).Find(&products).Error; err != nil {
		log.Printf("pricing: failed to load products for promo %s: %v", promo.ID, err)
		return err
	}

	for i := range products {
		if err := RecomputeDiscount(db, &products[i]); err != nil {
			return err
		}
	}
	return nil
}
