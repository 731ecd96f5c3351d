package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DiscountType string

const (
	DiscountTypePercentage DiscountType = "PERCENTAGE"
	DiscountTypeFixed      DiscountType = "FIXED"
)

type Promo struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	SellerID    uuid.UUID `gorm:"type:uuid;not null;index" json:"seller_id"`
	Seller      Seller    `gorm:"foreignKey:SellerID" json:"-"`
	Name        string    `gorm:"not null" json:"name"`
	Description string    `json:"description"`

	DiscountType       DiscountType `gorm:"default:FIXED" json:"discount_type"`
	DiscountAmount     int          `gorm:"default:0" json:"discount_amount"`
	DiscountPercentage int          `gorm:"default:0" json:"discount_percentage"`

	IsActive  bool      `gorm:"default:true" json:"is_active"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (p *Promo) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (p *Promo) BeforeSave(tx *gorm.DB) error {
	if p.StartDate.IsZero() {
		p.StartDate = time.Now()
	}
	// The end date must be strictly after the start date. An invalid window is
	// corrected by extending it a week rather than rejecting the promo.
	if !p.EndDate.After(p.StartDate) {
		p.EndDate = p.StartDate.Add(7 * 24 * time.Hour)
	}
	return nil
}

// ActiveNow reports whether the promo is flagged active and inside its date
// window at the given instant. Product association is checked separately.
func (p *Promo) ActiveNow(now time.Time) bool {
	return p.IsActive && !p.StartDate.After(now) && !p.EndDate.Before(now)
}

// PromoProduct is the explicit join row between a promo and a product. Rows
// are created and deleted directly (never through association magic) so that
// every membership change passes through the pricing service.
type PromoProduct struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	PromoID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_promo_product" json:"promo_id"`
	Promo     Promo     `gorm:"foreignKey:PromoID" json:"-"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_promo_product" json:"product_id"`
	Product   Product   `gorm:"foreignKey:ProductID" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

func (pp *PromoProduct) BeforeCreate(tx *gorm.DB) error {
	if pp.ID == uuid.Nil {
		pp.ID = uuid.New()
	}
	return nil
}
