package dto

import "github.com/shopspring/decimal"

// ─── Simulations ─────────────────────────────────────────────────────────────

type RunSimulationRequest struct {
	RulesetID string  `json:"ruleset_id" validate:"required,uuid"`
	Category  *string `json:"category"   validate:"omitempty,min=1,max=120"`
}

type SimulationFilter struct {
	Status string `form:"status" validate:"omitempty,oneof=completed applied rolled_back"`
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=20" validate:"min=1,max=100"`
}

type SimulationResponse struct {
	ID            string                   `json:"id"`
	RulesetID     string                   `json:"ruleset_id"`
	Category      *string                  `json:"category"`
	Status        string                   `json:"status"`
	ProductCount  int                      `json:"product_count"`
	AffectedCount int                      `json:"affected_count"`
	AvgChangePct  decimal.Decimal          `json:"avg_change_pct"`
	CreatedAt     string                   `json:"created_at"`
	AppliedBy     *string                  `json:"applied_by,omitempty"`
	AppliedAt     *string                  `json:"applied_at,omitempty"`
	Items         []SimulationItemResponse `json:"items,omitempty"`
}

type SimulationItemResponse struct {
	ID                 string          `json:"id"`
	ProductID          string          `json:"product_id"`
	RuleType           string          `json:"rule_type"`
	OldPriceHT         decimal.Decimal `json:"old_price_ht"`
	NewPriceHT         decimal.Decimal `json:"new_price_ht"`
	PriceChangePercent decimal.Decimal `json:"price_change_percent"`
	OldMarginPercent   decimal.Decimal `json:"old_margin_percent"`
	NewMarginPercent   decimal.Decimal `json:"new_margin_percent"`
	BlockedByGuard     bool            `json:"blocked_by_guard"`
	Reason             string          `json:"reason"`
}

type SimulationListResponse struct {
	Items []SimulationResponse `json:"items"`
	Total int64                `json:"total"`
}
