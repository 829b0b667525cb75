package dto

import "encoding/json"

// ─── Rulesets ────────────────────────────────────────────────────────────────

type CreateRulesetRequest struct {
	Name        string  `json:"name" validate:"required,min=2,max=120"`
	Description *string `json:"description"`
}

type UpdateRulesetRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=2,max=120"`
	Description *string `json:"description"`
}

type RulesetResponse struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description *string        `json:"description"`
	IsActive    bool           `json:"is_active"`
	CreatedAt   string         `json:"created_at"`
	Rules       []RuleResponse `json:"rules,omitempty"`
}

type RulesetListResponse struct {
	Items []RulesetResponse `json:"items"`
	Total int64             `json:"total"`
}

// ─── Rules ───────────────────────────────────────────────────────────────────

// Params stays raw here: the tagged union is decoded and validated against
// RuleType in the service via model.DecodeParamsFor.
type CreateRuleRequest struct {
	Name     string          `json:"name"      validate:"required,min=2,max=120"`
	RuleType string          `json:"rule_type" validate:"required,oneof=seasonality low_stock low_rotation margin_guard"`
	Priority int             `json:"priority"  validate:"required,min=1"`
	Params   json.RawMessage `json:"params"    validate:"required"`
}

type UpdateRuleRequest struct {
	Name     *string         `json:"name"     validate:"omitempty,min=2,max=120"`
	Priority *int            `json:"priority" validate:"omitempty,min=1"`
	Params   json.RawMessage `json:"params"`
}

type RuleResponse struct {
	ID        string          `json:"id"`
	RulesetID string          `json:"ruleset_id"`
	Name      string          `json:"name"`
	RuleType  string          `json:"rule_type"`
	Priority  int             `json:"priority"`
	IsActive  bool            `json:"is_active"`
	Params    json.RawMessage `json:"params"`
}
