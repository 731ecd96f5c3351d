package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"freshbytes-backend/models"

	"github.com/shopspring/decimal"
)

func TestCreatePaymentCODStaysPending(t *testing.T) {
	db := freshDB()
	_, seller, _ := seedSellerWithToken(db, "seller@test.com")
	user, token := seedTestUser(db, "buyer@test.com", "customer", nil)
	product := seedProduct(db, "Paid", seller.ID, "10.00")
	order := seedDeliveredOrder(db, user.ID, product.ID)

	router := setupPaymentRouter(db)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("POST", "/api/payments", map[string]interface{}{
		"order_id": order.ID,
		"method":   "COD",
	}, token))

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var payment models.Payment
	if err := db.Where("order_id = ?", order.ID).First(&payment).Error; err != nil {
		t.Fatalf("payment not persisted: %v", err)
	}
	if payment.Status != models.PaymentStatusPending {
		t.Errorf("COD payment should stay PENDING, got %s", payment.Status)
	}
	if !payment.Amount.Equal(decimal.RequireFromString("10")) {
		t.Errorf("payment amount should mirror the order total, got %s", payment.Amount)
	}
}

func TestCreatePaymentWalletCompletesWithTransactionID(t *testing.T) {
	db := freshDB()
	_, seller, _ := seedSellerWithToken(db, "seller@test.com")
	user, token := seedTestUser(db, "buyer@test.com", "customer", nil)
	product := seedProduct(db, "Paid", seller.ID, "10.00")
	order := seedDeliveredOrder(db, user.ID, product.ID)

	router := setupPaymentRouter(db)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("POST", "/api/payments", map[string]interface{}{
		"order_id":       order.ID,
		"method":         "GCASH",
		"transaction_id": "GC-12345",
	}, token))

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var payment models.Payment
	db.Where("order_id = ?", order.ID).First(&payment)
	if payment.Status != models.PaymentStatusCompleted {
		t.Errorf("wallet payment with transaction id should be COMPLETED, got %s", payment.Status)
	}
}

func TestCreatePaymentDuplicateConflict(t *testing.T) {
	db := freshDB()
	_, seller, _ := seedSellerWithToken(db, "seller@test.com")
	user, token := seedTestUser(db, "buyer@test.com", "customer", nil)
	product := seedProduct(db, "Paid", seller.ID, "10.00")
	order := seedDeliveredOrder(db, user.ID, product.ID)

	router := setupPaymentRouter(db)
	for i, want := range []int{http.StatusCreated, http.StatusConflict} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, authRequest("POST", "/api/payments", map[string]interface{}{
			"order_id": order.ID,
			"method":   "COD",
		}, token))
		if w.Code != want {
			t.Fatalf("attempt %d: expected %d, got %d: %s", i+1, want, w.Code, w.Body.String())
		}
	}
}

func TestCreatePaymentRejectsForeignOrder(t *testing.T) {
	db := freshDB()
	_, seller, _ := seedSellerWithToken(db, "seller@test.com")
	owner, _ := seedTestUser(db, "owner@test.com", "customer", nil)
	_, otherToken := seedTestUser(db, "other@test.com", "customer", nil)
	product := seedProduct(db, "Private", seller.ID, "10.00")
	order := seedDeliveredOrder(db, owner.ID, product.ID)

	router := setupPaymentRouter(db)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("POST", "/api/payments", map[string]interface{}{
		"order_id": order.ID,
		"method":   "COD",
	}, otherToken))

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for another user's order, got %d", w.Code)
	}
}

func TestUpdatePaymentStatusAdmin(t *testing.T) {
	db := freshDB()
	_, seller, _ := seedSellerWithToken(db, "seller@test.com")
	user, token := seedTestUser(db, "buyer@test.com", "customer", nil)
	_, adminToken := seedTestUser(db, "admin@test.com", "admin", nil)
	product := seedProduct(db, "Paid", seller.ID, "10.00")
	order := seedDeliveredOrder(db, user.ID, product.ID)

	router := setupPaymentRouter(db)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("POST", "/api/payments", map[string]interface{}{
		"order_id": order.ID,
		"method":   "COD",
	}, token))
	if w.Code != http.StatusCreated {
		t.Fatalf("payment creation failed with %d", w.Code)
	}

	var payment models.Payment
	db.Where("order_id = ?", order.ID).First(&payment)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("PUT", "/api/admin/payments/"+payment.ID.String()+"/status", map[string]string{
		"status": "COMPLETED",
	}, adminToken))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	db.First(&payment, "id = ?", payment.ID)
	if payment.Status != models.PaymentStatusCompleted {
		t.Errorf("expected COMPLETED, got %s", payment.Status)
	}
}
