package dto

import "github.com/shopspring/decimal"

// ─── Apply / Rollback ────────────────────────────────────────────────────────

type PricingRequest struct {
	SimulationID string `json:"simulation_id" validate:"required,uuid"`
}

// ApplyResponse reports the batch outcome. Errors holds per-item failures;
// the batch keeps going past them, so applied_count may be lower than total.
type ApplyResponse struct {
	Success      bool     `json:"success"`
	AppliedCount int      `json:"applied_count"`
	Total        int      `json:"total"`
	Errors       []string `json:"errors,omitempty"`
}

type RollbackResponse struct {
	Success         bool     `json:"success"`
	RolledBackCount int      `json:"rolled_back_count"`
	Total           int      `json:"total"`
	Errors          []string `json:"errors,omitempty"`
}

// ─── Price-change ledger ─────────────────────────────────────────────────────

type PriceLogFilter struct {
	Page  int `form:"page,default=1"   validate:"min=1"`
	Limit int `form:"limit,default=50" validate:"min=1,max=200"`
}

type PriceLogEntryResponse struct {
	ID                 string          `json:"id"`
	ProductID          string          `json:"product_id"`
	SimulationID       string          `json:"simulation_id"`
	RuleType           string          `json:"rule_type"`
	OldPriceHT         decimal.Decimal `json:"old_price_ht"`
	NewPriceHT         decimal.Decimal `json:"new_price_ht"`
	PriceChangePercent decimal.Decimal `json:"price_change_percent"`
	OldMarginPercent   decimal.Decimal `json:"old_margin_percent"`
	NewMarginPercent   decimal.Decimal `json:"new_margin_percent"`
	Reason             string          `json:"reason"`
	AppliedBy          string          `json:"applied_by"`
	AppliedAt          string          `json:"applied_at"`
	IsRollback         bool            `json:"is_rollback"`
	RollbackOf         *string         `json:"rollback_of,omitempty"`
}

type PriceLogListResponse struct {
	Items []PriceLogEntryResponse `json:"items"`
	Total int64                   `json:"total"`
}
