package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PaymentMethod string

const (
	PaymentMethodGCash   PaymentMethod = "GCASH"
	PaymentMethodPayMaya PaymentMethod = "PAYMAYA"
	PaymentMethodCOD     PaymentMethod = "COD"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED"
)

type Payment struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	OrderID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	Order         Order           `gorm:"foreignKey:OrderID" json:"-"`
	Method        PaymentMethod   `gorm:"not null" json:"method"`
	Status        PaymentStatus   `gorm:"default:PENDING" json:"status"`
	Amount        decimal.Decimal `gorm:"type:decimal(10,2)" json:"amount"`
	TransactionID string          `json:"transaction_id"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
