package repository

import (
	"context"

	"github.com/Neo52000/ma-papeterie-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RulesetRepository interface {
	Create(ctx context.Context, rs *model.Ruleset) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Ruleset, error)
	FindByIDWithRules(ctx context.Context, id uuid.UUID) (*model.Ruleset, error)
	List(ctx context.Context, page, limit int) ([]model.Ruleset, int64, error)
	Update(ctx context.Context, rs *model.Ruleset) error
	// Delete removes the ruleset and its rules in one transaction. Past
	// simulations and ledger entries are snapshots and stay untouched.
	Delete(ctx context.Context, id uuid.UUID) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

type rulesetRepo struct{ db *gorm.DB }

func NewRulesetRepository(db *gorm.DB) RulesetRepository { return &rulesetRepo{db: db} }

func (r *rulesetRepo) Create(ctx context.Context, rs *model.Ruleset) error {
	return r.db.WithContext(ctx).Create(rs).Error
}

func (r *rulesetRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Ruleset, error) {
	var rs model.Ruleset
	err := r.db.WithContext(ctx).First(&rs, id).Error
	return &rs, err
}

func (r *rulesetRepo) FindByIDWithRules(ctx context.Context, id uuid.UUID) (*model.Ruleset, error) {
	var rs model.Ruleset
	err := r.db.WithContext(ctx).
		Preload("Rules", func(db *gorm.DB) *gorm.DB {
			return db.Order("priority ASC, created_at ASC, id ASC")
		}).
		First(&rs, id).Error
	return &rs, err
}

func (r *rulesetRepo) List(ctx context.Context, page, limit int) ([]model.Ruleset, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Ruleset{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var sets []model.Ruleset
	offset := (page - 1) * limit
	err := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Offset(offset).Find(&sets).Error
	return sets, total, err
}

func (r *rulesetRepo) Update(ctx context.Context, rs *model.Ruleset) error {
	return r.db.WithContext(ctx).Save(rs).Error
}

func (r *rulesetRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("ruleset_id = ?", id).Delete(&model.Rule{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Ruleset{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *rulesetRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	res := r.db.WithContext(ctx).Model(&model.Ruleset{}).Where("id = ?", id).Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
