package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Seller struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	User          User            `gorm:"foreignKey:UserID" json:"user,omitempty"`
	BusinessName  string          `gorm:"not null" json:"business_name"`
	BusinessEmail string          `json:"business_email"`
	BusinessPhone string          `json:"business_phone"`
	Street        string          `json:"street"`
	City          string          `json:"city"`
	Province      string          `json:"province"`
	ZipCode       string          `json:"zip_code"`
	TotalEarnings decimal.Decimal `gorm:"type:decimal(10,2);default:0" json:"total_earnings"`
	// Aggregate counters maintained by the services package, never set directly.
	TotalProducts int             `gorm:"default:0" json:"total_products"`
	TotalOrders   int             `gorm:"default:0" json:"total_orders"`
	TotalReviews  int             `gorm:"default:0" json:"total_reviews"`
	AverageRating decimal.Decimal `gorm:"type:decimal(3,2);default:0" json:"average_rating"`
	IsVerified    bool            `gorm:"default:false" json:"is_verified"`
	IsActive      bool            `gorm:"default:true" json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (s *Seller) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
