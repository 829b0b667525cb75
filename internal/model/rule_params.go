package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/Neo52000/ma-papeterie-sub000/internal/apierror"
)

// Bounds for operator-entered percentages. Anything outside them is a typo,
// not a pricing strategy.
var (
	minAdjustmentPercent = decimal.NewFromInt(-90)
	maxAdjustmentPercent = decimal.NewFromInt(300)
	maxDiscountPercent   = decimal.NewFromInt(90)
	hundred              = decimal.NewFromInt(100)
)

// RuleParams is the sealed union of per-type rule parameters. Exactly one
// concrete variant exists per RuleType; the interface is not implementable
// outside this package.
type RuleParams interface {
	Type() RuleType
	Validate() error
}

// SeasonalityParams applies a markup/markdown when the evaluation month is in
// Months (1 = January).
type SeasonalityParams struct {
	Months            []int           `json:"months"`
	AdjustmentPercent decimal.Decimal `json:"adjustment_percent"`
}

func (*SeasonalityParams) Type() RuleType { return RuleSeasonality }

// Validate checks month bounds and deduplicates Months in place (sorted).
func (p *SeasonalityParams) Validate() error {
	if len(p.Months) == 0 {
		return fmt.Errorf("%w: months est obligatoire", apierror.ErrValidation)
	}
	for _, m := range p.Months {
		if m < 1 || m > 12 {
			return fmt.Errorf("%w: mois %d hors de l'intervalle 1-12", apierror.ErrValidation, m)
		}
	}
	slices.Sort(p.Months)
	p.Months = slices.Compact(p.Months)
	return validateAdjustment(p.AdjustmentPercent)
}

// LowStockParams applies a markup when stock_quantity <= Threshold.
type LowStockParams struct {
	Threshold         int             `json:"threshold"`
	AdjustmentPercent decimal.Decimal `json:"adjustment_percent"`
}

func (*LowStockParams) Type() RuleType { return RuleLowStock }

func (p *LowStockParams) Validate() error {
	if p.Threshold < 0 {
		return fmt.Errorf("%w: threshold ne peut pas être négatif", apierror.ErrValidation)
	}
	return validateAdjustment(p.AdjustmentPercent)
}

// LowRotationParams applies a discount when the product has not sold for at
// least DaysWithoutSale days.
type LowRotationParams struct {
	DaysWithoutSale int             `json:"days_without_sale"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
}

func (*LowRotationParams) Type() RuleType { return RuleLowRotation }

func (p *LowRotationParams) Validate() error {
	if p.DaysWithoutSale < 1 {
		return fmt.Errorf("%w: days_without_sale doit être positif", apierror.ErrValidation)
	}
	if p.DiscountPercent.IsNegative() || p.DiscountPercent.GreaterThan(maxDiscountPercent) {
		return fmt.Errorf("%w: discount_percent doit être entre 0 et %s", apierror.ErrValidation, maxDiscountPercent)
	}
	return nil
}

// MarginGuardParams floors the gross margin of the selected price.
// Valid range is [0,100): a 100% margin floor would require an infinite price.
type MarginGuardParams struct {
	MinMarginPercent decimal.Decimal `json:"min_margin_percent"`
}

func (*MarginGuardParams) Type() RuleType { return RuleMarginGuard }

func (p *MarginGuardParams) Validate() error {
	if p.MinMarginPercent.IsNegative() || p.MinMarginPercent.GreaterThanOrEqual(hundred) {
		return fmt.Errorf("%w: min_margin_percent doit être dans [0,100)", apierror.ErrValidation)
	}
	return nil
}

func validateAdjustment(pct decimal.Decimal) error {
	if pct.LessThan(minAdjustmentPercent) || pct.GreaterThan(maxAdjustmentPercent) {
		return fmt.Errorf("%w: adjustment_percent doit être entre %s et %s",
			apierror.ErrValidation, minAdjustmentPercent, maxAdjustmentPercent)
	}
	return nil
}

func newParams(t RuleType) (RuleParams, error) {
	switch t {
	case RuleSeasonality:
		return &SeasonalityParams{}, nil
	case RuleLowStock:
		return &LowStockParams{}, nil
	case RuleLowRotation:
		return &LowRotationParams{}, nil
	case RuleMarginGuard:
		return &MarginGuardParams{}, nil
	default:
		return nil, fmt.Errorf("%w: rule_type inconnu %q", apierror.ErrValidation, t)
	}
}

// DecodeParamsFor builds and validates the variant for t from a raw payload.
// Used by the CRUD layer before a Rule row exists.
func DecodeParamsFor(t RuleType, raw json.RawMessage) (RuleParams, error) {
	p, err := newParams(t)
	if err != nil {
		return nil, err
	}
	if err := strictUnmarshal(raw, p); err != nil {
		return nil, fmt.Errorf("%w: %v", apierror.ErrValidation, err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func strictUnmarshal(raw json.RawMessage, dst any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
