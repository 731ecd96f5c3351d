package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestPromoBeforeSaveExtendsInvalidWindow(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	promo := Promo{
		StartDate: start,
		EndDate:   start.Add(-48 * time.Hour),
	}

	if err := promo.BeforeSave(nil); err != nil {
		t.Fatalf("BeforeSave failed: %v", err)
	}
	if !promo.EndDate.Equal(start.Add(7 * 24 * time.Hour)) {
		t.Errorf("expected end date a week after start, got %s", promo.EndDate)
	}
}

func TestPromoBeforeSaveKeepsValidWindow(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(3 * 24 * time.Hour)
	promo := Promo{StartDate: start, EndDate: end}

	if err := promo.BeforeSave(nil); err != nil {
		t.Fatalf("BeforeSave failed: %v", err)
	}
	if !promo.EndDate.Equal(end) {
		t.Errorf("valid end date should be untouched, got %s", promo.EndDate)
	}
}

func TestPromoBeforeSaveDefaultsStartDate(t *testing.T) {
	promo := Promo{}

	if err := promo.BeforeSave(nil); err != nil {
		t.Fatalf("BeforeSave failed: %v", err)
	}
	if promo.StartDate.IsZero() {
		t.Error("zero start date should default to now")
	}
	if !promo.EndDate.After(promo.StartDate) {
		t.Error("end date should land after the defaulted start date")
	}
}

func TestPromoActiveNow(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name  string
		promo Promo
		want  bool
	}{
		{
			name:  "inside window",
			promo: Promo{IsActive: true, StartDate: now.Add(-time.Hour), EndDate: now.Add(time.Hour)},
			want:  true,
		},
		{
			name:  "flag off",
			promo: Promo{IsActive: false, StartDate: now.Add(-time.Hour), EndDate: now.Add(time.Hour)},
			want:  false,
		},
		{
			name:  "not started",
			promo: Promo{IsActive: true, StartDate: now.Add(time.Hour), EndDate: now.Add(2 * time.Hour)},
			want:  false,
		},
		{
			name:  "already ended",
			promo: Promo{IsActive: true, StartDate: now.Add(-2 * time.Hour), EndDate: now.Add(-time.Hour)},
			want:  false,
		},
		{
			name:  "boundary instants count",
			promo: Promo{IsActive: true, StartDate: now, EndDate: now},
			want:  true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.promo.ActiveNow(now); got != tc.want {
				t.Errorf("ActiveNow = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestProductCurrentPrice(t *testing.T) {
	discounted := decimal.RequireFromString("75")
	product := Product{
		Price:           decimal.RequireFromString("100"),
		DiscountedPrice: &discounted,
		IsDiscounted:    true,
	}
	if !product.CurrentPrice().Equal(discounted) {
		t.Errorf("expected discounted price, got %s", product.CurrentPrice())
	}

	product.IsDiscounted = false
	if !product.CurrentPrice().Equal(product.Price) {
		t.Errorf("expected base price, got %s", product.CurrentPrice())
	}
}

func TestProductBeforeSaveSetsSRP(t *testing.T) {
	product := Product{Price: decimal.RequireFromString("50")}
	if err := product.BeforeSave(nil); err != nil {
		t.Fatalf("BeforeSave failed: %v", err)
	}
	if !product.IsSRP {
		t.Error("undiscounted product should be at SRP")
	}

	discounted := decimal.RequireFromString("40")
	product.DiscountedPrice = &discounted
	if err := product.BeforeSave(nil); err != nil {
		t.Fatalf("BeforeSave failed: %v", err)
	}
	if product.IsSRP {
		t.Error("discounted product is not at SRP")
	}
}

func TestCartItemTotalPrice(t *testing.T) {
	item := CartItem{
		Quantity:  3,
		UnitPrice: decimal.RequireFromString("12.50"),
	}
	if !item.TotalPrice().Equal(decimal.RequireFromString("37.50")) {
		t.Errorf("expected 37.50, got %s", item.TotalPrice())
	}
}

func TestIsValidTransition(t *testing.T) {
	cases := []struct {
		from, to OrderStatus
		want     bool
	}{
		{OrderStatusPending, OrderStatusConfirmed, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusConfirmed, OrderStatusShipped, true},
		{OrderStatusShipped, OrderStatusDelivered, true},
		{OrderStatusDelivered, OrderStatusRefunded, true},
		{OrderStatusPending, OrderStatusDelivered, false},
		{OrderStatusDelivered, OrderStatusPending, false},
		{OrderStatusCancelled, OrderStatusConfirmed, false},
		{OrderStatusRefunded, OrderStatusDelivered, false},
	}

	for _, tc := range cases {
		if got := IsValidTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("IsValidTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}
