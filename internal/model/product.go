package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product mirrors the catalog rows this subsystem is contractually allowed to
// touch. The catalog itself (creation, enrichment, supplier imports) lives in
// another service; here we only read pricing inputs and write the two price
// columns during apply/rollback.
type Product struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name          string          `gorm:"index;not null"`
	Category      string          `gorm:"index;not null"`
	PriceHT       decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	PriceTTC      decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CostPrice     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	StockQuantity int             `gorm:"not null;default:0"`
	// LastSaleAt is nil for products that never sold; low_rotation rules
	// treat those as stale regardless of the configured day threshold.
	LastSaleAt *time.Time
	IsActive   bool `gorm:"not null;default:true"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (Product) TableName() string { return "products" }
