package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProductStatus string

const (
	ProductStatusFresh            ProductStatus = "FRESH"
	ProductStatusSlightlyWithered ProductStatus = "SLIGHTLY_WITHERED"
	ProductStatusRotten           ProductStatus = "ROTTEN"
)

type Product struct {
	ID               uuid.UUID     `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	SellerID         uuid.UUID     `gorm:"type:uuid;not null;index" json:"seller_id"`
	Seller           Seller        `gorm:"foreignKey:SellerID" json:"seller,omitempty"`
	Name             string        `gorm:"not null" json:"name"`
	SKU              string        `gorm:"index" json:"sku"`
	BriefDescription string        `json:"brief_description"`
	FullDescription  string        `gorm:"type:text" json:"full_description"`
	Status           ProductStatus `gorm:"default:FRESH" json:"status"`
	Location         string        `json:"location"`
	SubcategoryID    *uuid.UUID    `gorm:"type:uuid;index" json:"subcategory_id,omitempty"`
	Subcategory      *Subcategory  `gorm:"foreignKey:SubcategoryID" json:"subcategory,omitempty"`

	Price decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	// Derived pricing fields. Only the pricing service writes these; they stay
	// consistent with the set of active promos as of the last recalculation.
	DiscountedPrice *decimal.Decimal `gorm:"type:decimal(10,2)" json:"discounted_price"`
	IsDiscounted    bool             `gorm:"default:false" json:"is_discounted"`
	HasPromo        bool             `gorm:"default:false" json:"has_promo"`
	IsSRP           bool             `gorm:"default:false" json:"is_srp"`

	Weight      decimal.Decimal `gorm:"type:decimal(10,2);default:0" json:"weight"`
	Quantity    int             `gorm:"default:1" json:"quantity"`
	HarvestDate *time.Time      `json:"harvest_date,omitempty"`
	ReviewCount int             `gorm:"default:0" json:"review_count"`
	TopRated    bool            `gorm:"default:false" json:"top_rated"`
	SellCount   int             `gorm:"default:0" json:"sell_count"`
	IsActive    bool            `gorm:"default:true" json:"is_active"`
	// Soft delete is an explicit flag rather than gorm.DeletedAt: deleted rows
	// must remain readable because product deletion is itself a trigger for the
	// seller product counter.
	IsDeleted bool           `gorm:"default:false;index" json:"is_deleted"`
	Images    []ProductImage `gorm:"foreignKey:ProductID" json:"images,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`

	// SkipRecalc marks this instance as currently inside a discount
	// recalculation. Never persisted, never shared across requests; it only
	// stops a recalculation from re-entering itself through its own save.
	SkipRecalc bool `gorm:"-" json:"-"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (p *Product) BeforeSave(tx *gorm.DB) error {
	// A product selling at its base price with no discount applied is at SRP.
	p.IsSRP = p.Price.IsPositive() && (p.DiscountedPrice == nil || !p.DiscountedPrice.IsPositive())
	return nil
}

// CurrentPrice is the price a buyer pays right now.
func (p *Product) CurrentPrice() decimal.Decimal {
	if p.IsDiscounted && p.DiscountedPrice != nil {
		return *p.DiscountedPrice
	}
	return p.Price
}

// DiscountedAmount returns how much is taken off the base price, or nil when
// no discount applies.
func (p *Product) DiscountedAmount() *decimal.Decimal {
	if p.DiscountedPrice == nil {
		return nil
	}
	d := p.Price.Sub(*p.DiscountedPrice)
	return &d
}
