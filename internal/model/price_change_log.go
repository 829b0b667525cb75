package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceChangeLog is the append-only ledger of every price mutation this
// subsystem ever makes, and the sole source of truth for rollback. No update
// or delete path exists: the repository only exposes inserts and reads, and a
// database trigger rejects UPDATE/DELETE outright (see infra schema patches).
// Rollbacks never erase rows; they append inverse entries.
type PriceChangeLog struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	SimulationID       uuid.UUID       `gorm:"type:uuid;not null;index:idx_price_log_simulation"`
	RuleType           RuleType        `gorm:"type:varchar(20);not null"`
	OldPriceHT         decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	NewPriceHT         decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	PriceChangePercent decimal.Decimal `gorm:"type:decimal(8,2);not null"`
	OldMarginPercent   decimal.Decimal `gorm:"type:decimal(6,2);not null"`
	NewMarginPercent   decimal.Decimal `gorm:"type:decimal(6,2);not null"`
	Reason             string          `gorm:"not null"`
	AppliedBy          uuid.UUID       `gorm:"type:uuid;not null"`
	AppliedAt          time.Time       `gorm:"not null"`
	IsRollback         bool            `gorm:"not null;default:false;index:idx_price_log_simulation"`
	RollbackOf         *uuid.UUID      `gorm:"type:uuid"`
	CreatedAt          time.Time
}

func (PriceChangeLog) TableName() string { return "price_change_log" }
