package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Neo52000/ma-papeterie-sub000/internal/apierror"
	"github.com/Neo52000/ma-papeterie-sub000/internal/dto"
	"github.com/Neo52000/ma-papeterie-sub000/internal/model"
	"github.com/Neo52000/ma-papeterie-sub000/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RulesetService covers CRUD for rulesets and their rules, including the
// rule-type-specific parameter validation. Activation toggles take effect on
// the next simulation only; past simulations and ledger entries are
// immutable snapshots.
type RulesetService interface {
	Create(ctx context.Context, req dto.CreateRulesetRequest) (*dto.RulesetResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.RulesetResponse, error)
	List(ctx context.Context, page, limit int) (*dto.RulesetListResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateRulesetRequest) (*dto.RulesetResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error

	CreateRule(ctx context.Context, rulesetID uuid.UUID, req dto.CreateRuleRequest) (*dto.RuleResponse, error)
	ListRules(ctx context.Context, rulesetID uuid.UUID) ([]dto.RuleResponse, error)
	UpdateRule(ctx context.Context, id uuid.UUID, req dto.UpdateRuleRequest) (*dto.RuleResponse, error)
	DeleteRule(ctx context.Context, id uuid.UUID) error
	SetRuleActive(ctx context.Context, id uuid.UUID, active bool) error
}

type rulesetService struct {
	rulesets repository.RulesetRepository
	rules    repository.RuleRepository
}

func NewRulesetService(rulesets repository.RulesetRepository, rules repository.RuleRepository) RulesetService {
	return &rulesetService{rulesets: rulesets, rules: rules}
}

func (s *rulesetService) Create(ctx context.Context, req dto.CreateRulesetRequest) (*dto.RulesetResponse, error) {
	rs := &model.Ruleset{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    true,
	}
	if err := s.rulesets.Create(ctx, rs); err != nil {
		return nil, err
	}
	return rulesetToResponse(rs, nil), nil
}

func (s *rulesetService) Get(ctx context.Context, id uuid.UUID) (*dto.RulesetResponse, error) {
	rs, err := s.rulesets.FindByIDWithRules(ctx, id)
	if err != nil {
		return nil, notFound(err, "ruleset")
	}
	return rulesetToResponse(rs, rs.Rules), nil
}

func (s *rulesetService) List(ctx context.Context, page, limit int) (*dto.RulesetListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	sets, total, err := s.rulesets.List(ctx, page, limit)
	if err != nil {
		return nil, err
	}
	resp := &dto.RulesetListResponse{Total: total, Items: make([]dto.RulesetResponse, 0, len(sets))}
	for i := range sets {
		resp.Items = append(resp.Items, *rulesetToResponse(&sets[i], nil))
	}
	return resp, nil
}

func (s *rulesetService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateRulesetRequest) (*dto.RulesetResponse, error) {
	rs, err := s.rulesets.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "ruleset")
	}
	if req.Name != nil {
		rs.Name = *req.Name
	}
	if req.Description != nil {
		rs.Description = req.Description
	}
	if err := s.rulesets.Update(ctx, rs); err != nil {
		return nil, err
	}
	return rulesetToResponse(rs, nil), nil
}

func (s *rulesetService) Delete(ctx context.Context, id uuid.UUID) error {
	return notFoundOrNil(s.rulesets.Delete(ctx, id), "ruleset")
}

func (s *rulesetService) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return notFoundOrNil(s.rulesets.SetActive(ctx, id, active), "ruleset")
}

// ── Rules ────────────────────────────────────────────────────────────────────

func (s *rulesetService) CreateRule(ctx context.Context, rulesetID uuid.UUID, req dto.CreateRuleRequest) (*dto.RuleResponse, error) {
	if _, err := s.rulesets.FindByID(ctx, rulesetID); err != nil {
		return nil, notFound(err, "ruleset")
	}
	params, err := model.DecodeParamsFor(model.RuleType(req.RuleType), req.Params)
	if err != nil {
		return nil, err
	}

	rule := &model.Rule{
		RulesetID: rulesetID,
		Name:      req.Name,
		Priority:  req.Priority,
		IsActive:  true,
	}
	// SetParams re-encodes the validated, normalized variant (deduplicated
	// months etc.) and stamps rule_type.
	if err := rule.SetParams(params); err != nil {
		return nil, err
	}
	if err := s.rules.Create(ctx, rule); err != nil {
		return nil, err
	}
	return ruleToResponse(rule), nil
}

func (s *rulesetService) ListRules(ctx context.Context, rulesetID uuid.UUID) ([]dto.RuleResponse, error) {
	if _, err := s.rulesets.FindByID(ctx, rulesetID); err != nil {
		return nil, notFound(err, "ruleset")
	}
	rules, err := s.rules.ListByRuleset(ctx, rulesetID)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.RuleResponse, 0, len(rules))
	for i := range rules {
		resp = append(resp, *ruleToResponse(&rules[i]))
	}
	return resp, nil
}

// UpdateRule can change name, priority and params. rule_type is fixed at
// creation: changing the variant of an existing rule would silently repurpose
// every simulation preview built on it; create a new rule instead.
func (s *rulesetService) UpdateRule(ctx context.Context, id uuid.UUID, req dto.UpdateRuleRequest) (*dto.RuleResponse, error) {
	rule, err := s.rules.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "règle")
	}
	if req.Name != nil {
		rule.Name = *req.Name
	}
	if req.Priority != nil {
		rule.Priority = *req.Priority
	}
	if req.Params != nil {
		params, err := model.DecodeParamsFor(rule.RuleType, req.Params)
		if err != nil {
			return nil, err
		}
		if err := rule.SetParams(params); err != nil {
			return nil, err
		}
	}
	if err := s.rules.Update(ctx, rule); err != nil {
		return nil, err
	}
	return ruleToResponse(rule), nil
}

func (s *rulesetService) DeleteRule(ctx context.Context, id uuid.UUID) error {
	return notFoundOrNil(s.rules.Delete(ctx, id), "règle")
}

func (s *rulesetService) SetRuleActive(ctx context.Context, id uuid.UUID, active bool) error {
	return notFoundOrNil(s.rules.SetActive(ctx, id, active), "règle")
}

// ── Helpers ──────────────────────────────────────────────────────────────────

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, apierror.ErrNotFound)
	}
	return err
}

func notFoundOrNil(err error, what string) error {
	if err == nil {
		return nil
	}
	return notFound(err, what)
}

func rulesetToResponse(rs *model.Ruleset, rules []model.Rule) *dto.RulesetResponse {
	resp := &dto.RulesetResponse{
		ID:          rs.ID.String(),
		Name:        rs.Name,
		Description: rs.Description,
		IsActive:    rs.IsActive,
		CreatedAt:   rs.CreatedAt.Format(time.RFC3339),
	}
	for i := range rules {
		resp.Rules = append(resp.Rules, *ruleToResponse(&rules[i]))
	}
	return resp
}

func ruleToResponse(r *model.Rule) *dto.RuleResponse {
	return &dto.RuleResponse{
		ID:        r.ID.String(),
		RulesetID: r.RulesetID.String(),
		Name:      r.Name,
		RuleType:  string(r.RuleType),
		Priority:  r.Priority,
		IsActive:  r.IsActive,
		Params:    r.Params,
	}
}
