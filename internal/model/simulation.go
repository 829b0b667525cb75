package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SimulationStatus follows a strict one-way machine:
// completed → applied → rolled_back. Simulations are born completed; only the
// apply/rollback executors may advance the status, via guarded UPDATEs.
type SimulationStatus string

const (
	SimulationCompleted  SimulationStatus = "completed"
	SimulationApplied    SimulationStatus = "applied"
	SimulationRolledBack SimulationStatus = "rolled_back"
)

// Simulation is a persisted dry run of a ruleset against the catalog at one
// point in time. Everything except status/applied_by/applied_at is write-once.
type Simulation struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RulesetID uuid.UUID `gorm:"type:uuid;not null;index"`
	// Category restricts the eligible product set; nil = whole catalog.
	Category      *string
	Status        SimulationStatus `gorm:"type:varchar(20);not null;index"`
	ProductCount  int              `gorm:"not null"`
	AffectedCount int              `gorm:"not null"`
	AvgChangePct  decimal.Decimal  `gorm:"type:decimal(8,2);not null"`
	CreatedAt     time.Time
	AppliedBy     *uuid.UUID `gorm:"type:uuid"`
	AppliedAt     *time.Time

	Items []SimulationItem `gorm:"foreignKey:SimulationID;constraint:OnDelete:CASCADE"`
}

func (Simulation) TableName() string { return "simulations" }

// SimulationItem is one previewed price change. Products no adjustment rule
// matched are omitted entirely, not stored with zero deltas.
type SimulationItem struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SimulationID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	RuleType           RuleType        `gorm:"type:varchar(20);not null"`
	OldPriceHT         decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	NewPriceHT         decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	PriceChangePercent decimal.Decimal `gorm:"type:decimal(8,2);not null"`
	OldMarginPercent   decimal.Decimal `gorm:"type:decimal(6,2);not null"`
	NewMarginPercent   decimal.Decimal `gorm:"type:decimal(6,2);not null"`
	BlockedByGuard     bool            `gorm:"not null;default:false"`
	Reason             string          `gorm:"not null"`
}

func (SimulationItem) TableName() string { return "simulation_items" }
