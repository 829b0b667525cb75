package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RuleType discriminates the params union. seasonality, low_stock and
// low_rotation are adjustment rules (mutually exclusive per product);
// margin_guard is a clamp applied after an adjustment is selected.
type RuleType string

const (
	RuleSeasonality RuleType = "seasonality"
	RuleLowStock    RuleType = "low_stock"
	RuleLowRotation RuleType = "low_rotation"
	RuleMarginGuard RuleType = "margin_guard"
)

// IsAdjustment reports whether rules of this type compete for the single
// per-product price adjustment.
func (t RuleType) IsAdjustment() bool {
	return t == RuleSeasonality || t == RuleLowStock || t == RuleLowRotation
}

func (t RuleType) Valid() bool {
	return t.IsAdjustment() || t == RuleMarginGuard
}

// Rule is one pricing condition + effect inside a ruleset. Priority 1 is
// evaluated first. Params holds the JSONB-encoded variant matching RuleType;
// use DecodeParams/SetParams instead of touching the raw column.
type Rule struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RulesetID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name      string          `gorm:"not null"`
	RuleType  RuleType        `gorm:"type:varchar(20);not null"`
	Priority  int             `gorm:"not null;default:100"`
	IsActive  bool            `gorm:"not null;default:true"`
	Params    json.RawMessage `gorm:"type:jsonb;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Rule) TableName() string { return "rules" }

// DecodeParams unmarshals the params column into the variant selected by
// RuleType. Unknown fields are rejected so a low_stock payload can never be
// smuggled into a seasonality rule.
func (r *Rule) DecodeParams() (RuleParams, error) {
	p, err := newParams(r.RuleType)
	if err != nil {
		return nil, err
	}
	if err := strictUnmarshal(r.Params, p); err != nil {
		return nil, fmt.Errorf("params de la règle %s: %w", r.ID, err)
	}
	return p, nil
}

// SetParams validates p, stamps RuleType from the variant and stores the
// encoded payload.
func (r *Rule) SetParams(p RuleParams) error {
	if err := p.Validate(); err != nil {
		return err
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	r.RuleType = p.Type()
	r.Params = raw
	return nil
}
