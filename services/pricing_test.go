package services

import (
	"testing"
	"time"

	"freshbytes-backend/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestRecomputeDiscountFixedAmount(t *testing.T) {
	db := freshDB()
	seller := seedSeller(db)
	product := seedProduct(db, seller.ID, "100.00")
	promo := seedPromo(db, seller.ID, models.DiscountTypeFixed, 30, 0, true)
	linkPromo(db, promo.ID, product.ID)

	if err := RecomputeDiscount(db, &product); err != nil {
		t.Fatalf("RecomputeDiscount failed: %v", err)
	}

	got := reload(db, product.ID)
	if got.DiscountedPrice == nil {
		t.Fatal("expected discounted_price to be set")
	}
	if !got.DiscountedPrice.Equal(decimal.RequireFromString("70")) {
		t.Errorf("expected discounted_price 70, got %s", got.DiscountedPrice)
	}
	if !got.IsDiscounted {
		t.Error("expected is_discounted true")
	}
	if !got.HasPromo {
		t.Error("expected has_promo true")
	}
}

func TestRecomputeDiscountPercentage(t *testing.T) {
	db := freshDB()
	seller := seedSeller(db)
	product := seedProduct(db, seller.ID, "100.00")
	promo := seedPromo(db, seller.ID, models.DiscountTypePercentage, 0, 25, true)
	linkPromo(db, promo.ID, product.ID)

	if err := RecomputeDiscount(db, &product); err != nil {
		t.Fatalf("RecomputeDiscount failed: %v", err)
	}

	got := reload(db, product.ID)
	if got.DiscountedPrice == nil {
		t.Fatal("expected discounted_price to be set")
	}
	if !got.DiscountedPrice.Equal(decimal.RequireFromString("75")) {
		t.Errorf("expected discounted_price 75, got %s", got.DiscountedPrice)
	}
	if !got.IsDiscounted || !got.HasPromo {
		t.Error("expected is_discounted and has_promo true")
	}
}

func TestRecomputeDiscountFloorsAtZero(t *testing.T) {
	db := freshDB()
	seller := seedSeller(db)
	product := seedProduct(db, seller.ID, "100.00")
	promo := seedPromo(db, seller.ID, models.DiscountTypeFixed, 150, 0, true)
	linkPromo(db, promo.ID, product.ID)

	if err := RecomputeDiscount(db, &product); err != nil {
		t.Fatalf("RecomputeDiscount failed: %v", err)
	}

	got := reload(db, product.ID)
	if got.DiscountedPrice == nil {
		t.Fatal("expected discounted_price to be set")
	}
	if !got.DiscountedPrice.Equal(decimal.Zero) {
		t.Errorf("expected discounted_price 0, got %s", got.DiscountedPrice)
	}
	if !got.IsDiscounted {
		t.Error("a zero price below base is still discounted")
	}
}

func TestRecomputeDiscountNoActivePromoResetsFields(t *testing.T) {
	db := freshDB()
	seller := seedSeller(db)
	product := seedProduct(db, seller.ID, "100.00")

	// Simulate stale derived fields from a promo that has since gone away
	stale := decimal.RequireFromString("60")
	db.Model(&product).Updates(map[string]interface{}{
		"discounted_price": stale,
		"is_discounted":    true,
		"has_promo":        true,
	})
	product = reload(db, product.ID)

	if err := RecomputeDiscount(db, &product); err != nil {
		t.Fatalf("RecomputeDiscount failed: %v", err)
	}

	got := reload(db, product.ID)
	if got.DiscountedPrice != nil {
		t.Errorf("expected discounted_price cleared, got %s", got.DiscountedPrice)
	}
	if got.IsDiscounted {
		t.Error("expected is_discounted false")
	}
	if got.HasPromo {
		t.Error("expected has_promo false")
	}
}

func TestRecomputeDiscountIgnoresInactivePromo(t *testing.T) {
	db := freshDB()
	seller := seedSeller(db)
	product := seedProduct(db, seller.ID, "100.00")
	promo := seedPromo(db, seller.ID, models.DiscountTypeFixed, 30, 0, false)
	linkPromo(db, promo.ID, product.ID)

	if err := RecomputeDiscount(db, &product); err != nil {
		t.Fatalf("RecomputeDiscount failed: %v", err)
	}

	got := reload(db, product.ID)
	if got.HasPromo || got.IsDiscounted || got.DiscountedPrice != nil {
		t.Error("inactive promo must not discount the product")
	}
}

func TestRecomputeDiscountIgnoresExpiredPromo(t *testing.T) {
	db := freshDB()
	seller := seedSeller(db)
	product := seedProduct(db, seller.ID, "100.00")
	promo := seedPromo(db, seller.ID, models.DiscountTypeFixed, 30, 0, true)
	// Push the window entirely into the past
	db.Model(&promo).Updates(map[string]interface{}{
		"start_date": time.Now().Add(-48 * time.Hour),
		"end_date":   time.Now().Add(-24 * time.Hour),
	})
	linkPromo(db, promo.ID, product.ID)

	if err := RecomputeDiscount(db, &product); err != nil {
		t.Fatalf("RecomputeDiscount failed: %v", err)
	}

	got := reload(db, product.ID)
	if got.HasPromo || got.IsDiscounted || got.DiscountedPrice != nil {
		t.Error("expired promo must not discount the product")
	}
}

func TestRecomputeDiscountPicksHighestAmountRegardlessOfType(t *testing.T) {
	db := freshDB()
	seller := seedSeller(db)
	product := seedProduct(db, seller.ID, "100.00")

	// A percentage promo that would yield a deeper cut (50% -> 50 off) but
	// carries a lower discount_amount loses to the fixed promo with the
	// higher amount. Selection orders on the raw columns, not the computed
	// price.
	worse := seedPromo(db, seller.ID, models.DiscountTypePercentage, 0, 50, true)
	better := seedPromo(db, seller.ID, models.DiscountTypeFixed, 20, 0, true)
	linkPromo(db, worse.ID, product.ID)
	linkPromo(db, better.ID, product.ID)

	if err := RecomputeDiscount(db, &product); err != nil {
		t.Fatalf("RecomputeDiscount failed: %v", err)
	}

	got := reload(db, product.ID)
	if got.DiscountedPrice == nil {
		t.Fatal("expected discounted_price to be set")
	}
	if !got.DiscountedPrice.Equal(decimal.RequireFromString("80")) {
		t.Errorf("expected fixed promo with amount 20 to win (price 80), got %s", got.DiscountedPrice)
	}
}

func TestRecomputeDiscountTieBreaksOnPercentage(t *testing.T) {
	db := freshDB()
	seller := seedSeller(db)
	product := seedProduct(db, seller.ID, "100.00")

	low := seedPromo(db, seller.ID, models.DiscountTypePercentage, 0, 10, true)
	high := seedPromo(db, seller.ID, models.DiscountTypePercentage, 0, 40, true)
	linkPromo(db, low.ID, product.ID)
	linkPromo(db, high.ID, product.ID)

	if err := RecomputeDiscount(db, &product); err != nil {
		t.Fatalf("RecomputeDiscount failed: %v", err)
	}

	got := reload(db, product.ID)
	if got.DiscountedPrice == nil {
		t.Fatal("expected discounted_price to be set")
	}
	if !got.DiscountedPrice.Equal(decimal.RequireFromString("60")) {
		t.Errorf("expected 40%% promo to win (price 60), got %s", got.DiscountedPrice)
	}
}

func TestRecomputeDiscountIdempotent(t *testing.T) {
	db := freshDB()
	seller := seedSeller(db)
	product := seedProduct(db, seller.ID, "100.00")
	promo := seedPromo(db, seller.ID, models.DiscountTypeFixed, 30, 0, true)
	linkPromo(db, promo.ID, product.ID)

	if err := RecomputeDiscount(db, &product); err != nil {
		t.Fatalf("first RecomputeDiscount failed: %v", err)
	}
	first := reload(db, product.ID)

	time.Sleep(10 * time.Millisecond)

	// Second run sees identical derived values and must skip the write
	if err := RecomputeDiscount(db, &first); err != nil {
		t.Fatalf("second RecomputeDiscount failed: %v", err)
	}
	second := reload(db, first.ID)

	if !second.UpdatedAt.Equal(first.UpdatedAt) {
		t.Errorf("idempotent recalculation must not touch the row: updated_at moved from %v to %v",
			first.UpdatedAt, second.UpdatedAt)
	}
}

func TestRecomputeDiscountReentrancyGuard(t *testing.T) {
	db := freshDB()
	seller := seedSeller(db)
	product := seedProduct(db, seller.ID, "100.00")
	promo := seedPromo(db, seller.ID, models.DiscountTypeFixed, 30, 0, true)
	linkPromo(db, promo.ID, product.ID)

	product.SkipRecalc = true
	if err := RecomputeDiscount(db, &product); err != nil {
		t.Fatalf("RecomputeDiscount failed: %v", err)
	}

	got := reload(db, product.ID)
	if got.HasPromo || got.DiscountedPrice != nil {
		t.Error("guarded instance must not be recalculated")
	}

	// Guard lifts once cleared
	product.SkipRecalc = false
	if err := RecomputeDiscount(db, &product); err != nil {
		t.Fatalf("RecomputeDiscount failed: %v", err)
	}
	got = reload(db, product.ID)
	if !got.HasPromo {
		t.Error("unguarded instance should be recalculated")
	}
}

func TestRecomputeForPromoProductsFansOut(t *testing.T) {
	db := freshDB()
	seller := seedSeller(db)
	first := seedProduct(db, seller.ID, "100.00")
	second := seedProduct(db, seller.ID, "50.00")
	promo := seedPromo(db, seller.ID, models.DiscountTypePercentage, 0, 10, true)
	linkPromo(db, promo.ID, first.ID)
	linkPromo(db, promo.ID, second.ID)

	if err := RecomputeForPromoProducts(db, &promo, nil); err != nil {
		t.Fatalf("RecomputeForPromoProducts failed: %v", err)
	}

	gotFirst := reload(db, first.ID)
	gotSecond := reload(db, second.ID)
	if gotFirst.DiscountedPrice == nil || !gotFirst.DiscountedPrice.Equal(decimal.RequireFromString("90")) {
		t.Errorf("expected first product at 90, got %v", gotFirst.DiscountedPrice)
	}
	if gotSecond.DiscountedPrice == nil || !gotSecond.DiscountedPrice.Equal(decimal.RequireFromString("45")) {
		t.Errorf("expected second product at 45, got %v", gotSecond.DiscountedPrice)
	}
}

func TestPromoDeletionResetsProducts(t *testing.T) {
	db := freshDB()
	seller := seedSeller(db)
	product := seedProduct(db, seller.ID, "100.00")
	promo := seedPromo(db, seller.ID, models.DiscountTypeFixed, 30, 0, true)
	linkPromo(db, promo.ID, product.ID)

	if err := RecomputeDiscount(db, &product); err != nil {
		t.Fatalf("RecomputeDiscount failed: %v", err)
	}
	if got := reload(db, product.ID); !got.HasPromo {
		t.Fatal("setup: product should be discounted")
	}

	// Delete the way the handlers do: capture ids, remove join rows and
	// promo, then fan out over the captured ids.
	var productIDs []uuid.UUID
	db.Model(&models.PromoProduct{}).Where("promo_id = ?", promo.ID).Pluck("product_id", &productIDs)
	db.Where("promo_id = ?", promo.ID).Delete(&models.PromoProduct{})
	db.Delete(&models.Promo{}, "id = ?", promo.ID)

	if err := RecomputeForPromoProducts(db, &promo, productIDs); err != nil {
		t.Fatalf("RecomputeForPromoProducts failed: %v", err)
	}

	got := reload(db, product.ID)
	if got.HasPromo || got.IsDiscounted || got.DiscountedPrice != nil {
		t.Error("deleting the promo must reset the product's derived fields")
	}
}

func TestAssociationRemovalScopedToRemovedProduct(t *testing.T) {
	db := freshDB()
	seller := seedSeller(db)
	removed := seedProduct(db, seller.ID, "100.00")
	kept := seedProduct(db, seller.ID, "100.00")
	promo := seedPromo(db, seller.ID, models.DiscountTypeFixed, 30, 0, true)
	linkPromo(db, promo.ID, removed.ID)
	linkPromo(db, promo.ID, kept.ID)

	if err := RecomputeForPromoProducts(db, &promo, nil); err != nil {
		t.Fatalf("setup recompute failed: %v", err)
	}

	// Drop one association and recompute only the removed product
	db.Where("promo_id = ? AND product_id = ?", promo.ID, removed.ID).Delete(&models.PromoProduct{})
	if err := RecomputeForPromoProducts(db, &promo, []uuid.UUID{removed.ID}); err != nil {
		t.Fatalf("RecomputeForPromoProducts failed: %v", err)
	}

	gotRemoved := reload(db, removed.ID)
	gotKept := reload(db, kept.ID)
	if gotRemoved.HasPromo || gotRemoved.DiscountedPrice != nil {
		t.Error("removed product must lose its discount")
	}
	if !gotKept.HasPromo || gotKept.DiscountedPrice == nil {
		t.Error("product still in the promo must keep its discount")
	}
}

func TestActivePromosForProductOrdering(t *testing.T) {
	db := freshDB()
	seller := seedSeller(db)
	product := seedProduct(db, seller.ID, "100.00")

	small := seedPromo(db, seller.ID, models.DiscountTypeFixed, 5, 0, true)
	big := seedPromo(db, seller.ID, models.DiscountTypeFixed, 50, 0, true)
	mid := seedPromo(db, seller.ID, models.DiscountTypeFixed, 25, 0, true)
	linkPromo(db, small.ID, product.ID)
	linkPromo(db, big.ID, product.ID)
	linkPromo(db, mid.ID, product.ID)

	promos, err := ActivePromosForProduct(db, product.ID, time.Now())
	if err != nil {
		t.Fatalf("ActivePromosForProduct failed: %v", err)
	}
	if len(promos) != 3 {
		t.Fatalf("expected 3 promos, got %d", len(promos))
	}
	if promos[0].DiscountAmount != 50 || promos[1].DiscountAmount != 25 || promos[2].DiscountAmount != 5 {
		t.Errorf("promos not ordered best-first: got %d, %d, %d",
			promos[0].DiscountAmount, promos[1].DiscountAmount, promos[2].DiscountAmount)
	}
}
