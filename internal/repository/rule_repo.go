package repository

import (
	"context"

	"github.com/Neo52000/ma-papeterie-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RuleRepository interface {
	Create(ctx context.Context, rule *model.Rule) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Rule, error)
	ListByRuleset(ctx context.Context, rulesetID uuid.UUID) ([]model.Rule, error)
	// ListActiveByRuleset returns the rules the simulation engine evaluates,
	// in evaluation order: priority ASC, then creation order as the
	// documented tie-break for equal priorities.
	ListActiveByRuleset(ctx context.Context, rulesetID uuid.UUID) ([]model.Rule, error)
	Update(ctx context.Context, rule *model.Rule) error
	Delete(ctx context.Context, id uuid.UUID) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

type ruleRepo struct{ db *gorm.DB }

func NewRuleRepository(db *gorm.DB) RuleRepository { return &ruleRepo{db: db} }

func (r *ruleRepo) Create(ctx context.Context, rule *model.Rule) error {
	return r.db.WithContext(ctx).Create(rule).Error
}

func (r *ruleRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Rule, error) {
	var rule model.Rule
	err := r.db.WithContext(ctx).First(&rule, id).Error
	return &rule, err
}

func (r *ruleRepo) ListByRuleset(ctx context.Context, rulesetID uuid.UUID) ([]model.Rule, error) {
	var rules []model.Rule
	err := r.db.WithContext(ctx).
		Where("ruleset_id = ?", rulesetID).
		Order("priority ASC, created_at ASC, id ASC").
		Find(&rules).Error
	return rules, err
}

func (r *ruleRepo) ListActiveByRuleset(ctx context.Context, rulesetID uuid.UUID) ([]model.Rule, error) {
	var rules []model.Rule
	err := r.db.WithContext(ctx).
		Where("ruleset_id = ? AND is_active = true", rulesetID).
		Order("priority ASC, created_at ASC, id ASC").
		Find(&rules).Error
	return rules, err
}

func (r *ruleRepo) Update(ctx context.Context, rule *model.Rule) error {
	return r.db.WithContext(ctx).Save(rule).Error
}

func (r *ruleRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.Rule{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *ruleRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	res := r.db.WithContext(ctx).Model(&model.Rule{}).Where("id = ?", id).Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
