package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"freshbytes-backend/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestCreatePromoDiscountsProducts(t *testing.T) {
	db := freshDB()
	_, seller, token := seedSellerWithToken(db, "seller@test.com")
	product := seedProduct(db, "Mangoes", seller.ID, "100.00")

	router := setupPromoRouter(db)
	w := httptest.NewRecorder()
	body := map[string]interface{}{
		"name":            "Harvest Sale",
		"discount_type":   "FIXED",
		"discount_amount": 30,
		"start_date":      time.Now().Add(-time.Hour).Format(time.RFC3339),
		"end_date":        time.Now().Add(24 * time.Hour).Format(time.RFC3339),
		"product_ids":     []string{product.ID.String()},
	}
	router.ServeHTTP(w, authRequest("POST", "/api/seller/promos", body, token))

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	got := reloadProduct(db, product.ID)
	if got.DiscountedPrice == nil || !got.DiscountedPrice.Equal(decimal.RequireFromString("70")) {
		t.Errorf("expected product discounted to 70, got %v", got.DiscountedPrice)
	}
	if !got.IsDiscounted || !got.HasPromo {
		t.Error("expected is_discounted and has_promo set")
	}
}

func TestCreatePromoRejectsForeignProduct(t *testing.T) {
	db := freshDB()
	_, _, token := seedSellerWithToken(db, "seller@test.com")
	_, other, _ := seedSellerWithToken(db, "other@test.com")
	foreign := seedProduct(db, "Not Yours", other.ID, "50.00")

	router := setupPromoRouter(db)
	w := httptest.NewRecorder()
	body := map[string]interface{}{
		"name":            "Sneaky Sale",
		"discount_type":   "FIXED",
		"discount_amount": 10,
		"product_ids":     []string{foreign.ID.String()},
	}
	router.ServeHTTP(w, authRequest("POST", "/api/seller/promos", body, token))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for foreign product, got %d", w.Code)
	}
}

func TestCreatePromoExtendsInvalidEndDate(t *testing.T) {
	db := freshDB()
	_, _, token := seedSellerWithToken(db, "seller@test.com")

	start := time.Now()
	router := setupPromoRouter(db)
	w := httptest.NewRecorder()
	body := map[string]interface{}{
		"name":            "Backwards Window",
		"discount_type":   "FIXED",
		"discount_amount": 10,
		"start_date":      start.Format(time.RFC3339),
		"end_date":        start.Add(-time.Hour).Format(time.RFC3339),
	}
	router.ServeHTTP(w, authRequest("POST", "/api/seller/promos", body, token))

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var promo models.Promo
	db.Order("created_at DESC").First(&promo)
	if !promo.EndDate.After(promo.StartDate) {
		t.Error("end date should have been corrected past the start date")
	}
	// The window is corrected by extending a full week
	if promo.EndDate.Sub(promo.StartDate) < 6*24*time.Hour {
		t.Errorf("expected a week-long window, got %v", promo.EndDate.Sub(promo.StartDate))
	}
}

func TestUpdatePromoDeactivateResetsProducts(t *testing.T) {
	db := freshDB()
	_, seller, token := seedSellerWithToken(db, "seller@test.com")
	product := seedProduct(db, "Tomatoes", seller.ID, "80.00")
	promo := seedPromo(db, seller.ID, "Flash Sale", models.DiscountTypeFixed, 20, 0, true)
	seedPromoProduct(db, promo.ID, product.ID)

	router := setupPromoRouter(db)

	// Activate the discount first
	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("PUT", "/api/seller/promos/"+promo.ID.String(),
		map[string]interface{}{"name": "Flash Sale"}, token))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if got := reloadProduct(db, product.ID); !got.HasPromo {
		t.Fatal("setup: product should be discounted")
	}

	// Deactivate and expect a reset
	w = httptest.NewRecorder()
	inactive := false
	router.ServeHTTP(w, authRequest("PUT", "/api/seller/promos/"+promo.ID.String(),
		map[string]interface{}{"is_active": &inactive}, token))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	got := reloadProduct(db, product.ID)
	if got.HasPromo || got.IsDiscounted || got.DiscountedPrice != nil {
		t.Error("deactivating the promo must clear the product's derived fields")
	}
}

func TestDeletePromoResetsProducts(t *testing.T) {
	db := freshDB()
	_, seller, token := seedSellerWithToken(db, "seller@test.com")
	product := seedProduct(db, "Lettuce", seller.ID, "60.00")
	promo := seedPromo(db, seller.ID, "Green Week", models.DiscountTypePercentage, 0, 50, true)
	seedPromoProduct(db, promo.ID, product.ID)

	// Prime the derived fields
	db.Model(&models.Product{}).Where("id = ?", product.ID).Updates(map[string]interface{}{
		"discounted_price": decimal.RequireFromString("30"),
		"is_discounted":    true,
		"has_promo":        true,
	})

	router := setupPromoRouter(db)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("DELETE", "/api/seller/promos/"+promo.ID.String(), nil, token))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	got := reloadProduct(db, product.ID)
	if got.HasPromo || got.IsDiscounted || got.DiscountedPrice != nil {
		t.Error("deleting the promo must reset the product's derived fields")
	}

	var joinCount int64
	db.Model(&models.PromoProduct{}).Where("promo_id = ?", promo.ID).Count(&joinCount)
	if joinCount != 0 {
		t.Error("join rows should be removed with the promo")
	}
}

func TestDeletePromoForbiddenForOtherSeller(t *testing.T) {
	db := freshDB()
	_, seller, _ := seedSellerWithToken(db, "owner@test.com")
	_, _, intruderToken := seedSellerWithToken(db, "intruder@test.com")
	promo := seedPromo(db, seller.ID, "Private Sale", models.DiscountTypeFixed, 10, 0, true)

	router := setupPromoRouter(db)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("DELETE", "/api/seller/promos/"+promo.ID.String(), nil, intruderToken))

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

func TestAddAndRemovePromoProducts(t *testing.T) {
	db := freshDB()
	_, seller, token := seedSellerWithToken(db, "seller@test.com")
	first := seedProduct(db, "Carrots", seller.ID, "40.00")
	second := seedProduct(db, "Potatoes", seller.ID, "40.00")
	promo := seedPromo(db, seller.ID, "Root Veg Sale", models.DiscountTypeFixed, 10, 0, true)

	router := setupPromoRouter(db)

	// Add both products
	w := httptest.NewRecorder()
	body := map[string]interface{}{"product_ids": []string{first.ID.String(), second.ID.String()}}
	router.ServeHTTP(w, authRequest("POST", "/api/seller/promos/"+promo.ID.String()+"/products", body, token))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	if got := reloadProduct(db, first.ID); got.DiscountedPrice == nil || !got.DiscountedPrice.Equal(decimal.RequireFromString("30")) {
		t.Errorf("expected first product at 30, got %v", got.DiscountedPrice)
	}

	// Remove only the first; the second keeps its discount
	w = httptest.NewRecorder()
	body = map[string]interface{}{"product_ids": []string{first.ID.String()}}
	router.ServeHTTP(w, authRequest("DELETE", "/api/seller/promos/"+promo.ID.String()+"/products", body, token))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	gotFirst := reloadProduct(db, first.ID)
	gotSecond := reloadProduct(db, second.ID)
	if gotFirst.HasPromo || gotFirst.DiscountedPrice != nil {
		t.Error("removed product must lose its discount")
	}
	if !gotSecond.HasPromo || gotSecond.DiscountedPrice == nil {
		t.Error("remaining product must keep its discount")
	}
}

func TestAddPromoProductsIgnoresDuplicates(t *testing.T) {
	db := freshDB()
	_, seller, token := seedSellerWithToken(db, "seller@test.com")
	product := seedProduct(db, "Onions", seller.ID, "25.00")
	promo := seedPromo(db, seller.ID, "Promo", models.DiscountTypeFixed, 5, 0, true)
	seedPromoProduct(db, promo.ID, product.ID)

	router := setupPromoRouter(db)
	w := httptest.NewRecorder()
	body := map[string]interface{}{"product_ids": []string{product.ID.String()}}
	router.ServeHTTP(w, authRequest("POST", "/api/seller/promos/"+promo.ID.String()+"/products", body, token))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var joinCount int64
	db.Model(&models.PromoProduct{}).
		Where("promo_id = ? AND product_id = ?", promo.ID, product.ID).
		Count(&joinCount)
	if joinCount != 1 {
		t.Errorf("expected a single join row, got %d", joinCount)
	}
}

func TestClearPromoProducts(t *testing.T) {
	db := freshDB()
	_, seller, token := seedSellerWithToken(db, "seller@test.com")
	first := seedProduct(db, "Apples", seller.ID, "30.00")
	second := seedProduct(db, "Pears", seller.ID, "35.00")
	promo := seedPromo(db, seller.ID, "Orchard Sale", models.DiscountTypeFixed, 10, 0, true)
	seedPromoProduct(db, promo.ID, first.ID)
	seedPromoProduct(db, promo.ID, second.ID)

	router := setupPromoRouter(db)

	// Prime via the add endpoint's recompute path
	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("PUT", "/api/seller/promos/"+promo.ID.String(),
		map[string]interface{}{"name": "Orchard Sale"}, token))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("DELETE", "/api/seller/promos/"+promo.ID.String()+"/products/all", nil, token))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	for _, id := range []uuid.UUID{first.ID, second.ID} {
		if got := reloadProduct(db, id); got.HasPromo || got.DiscountedPrice != nil {
			t.Errorf("product %s should have been reset", id)
		}
	}
}

func TestGetPromosPublicFiltersInactive(t *testing.T) {
	db := freshDB()
	_, seller, _ := seedSellerWithToken(db, "seller@test.com")
	seedPromo(db, seller.ID, "Visible", models.DiscountTypeFixed, 10, 0, true)
	seedPromo(db, seller.ID, "Hidden", models.DiscountTypeFixed, 10, 0, false)

	router := setupPromoRouter(db)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/promos", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	promos := parseResponseArray(w)
	if len(promos) != 1 {
		t.Errorf("expected only the active promo, got %d", len(promos))
	}
}

func TestAdminDeletePromoResetsProducts(t *testing.T) {
	db := freshDB()
	_, seller, _ := seedSellerWithToken(db, "seller@test.com")
	_, adminToken := seedTestUser(db, "admin@test.com", "admin", nil)
	product := seedProduct(db, "Bananas", seller.ID, "45.00")
	promo := seedPromo(db, seller.ID, "Admin Target", models.DiscountTypeFixed, 15, 0, true)
	seedPromoProduct(db, promo.ID, product.ID)

	db.Model(&models.Product{}).Where("id = ?", product.ID).Updates(map[string]interface{}{
		"discounted_price": decimal.RequireFromString("30"),
		"is_discounted":    true,
		"has_promo":        true,
	})

	router := setupPromoRouter(db)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("DELETE", "/api/admin/promos/"+promo.ID.String(), nil, adminToken))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if got := reloadProduct(db, product.ID); got.HasPromo || got.DiscountedPrice != nil {
		t.Error("admin deletion must also reset product pricing")
	}
}
