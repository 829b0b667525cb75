package repository

import (
	"context"

	"github.com/Neo52000/ma-papeterie-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PriceChangeLogRepository is insert-only by construction: no Update or
// Delete method exists, here or anywhere else in the codebase. A database
// trigger backs this up at the schema level (see infra.applySchemaPatches).
type PriceChangeLogRepository interface {
	// CreateTx appends one ledger entry inside the caller's transaction, so
	// the entry commits or fails together with its price write.
	CreateTx(tx *gorm.DB, entry *model.PriceChangeLog) error
	// ListAppliedBySimulation returns the non-rollback entries of a
	// simulation in insert order, exactly the rows the apply run wrote.
	// This is the rollback executor's worklist.
	ListAppliedBySimulation(ctx context.Context, simulationID uuid.UUID) ([]model.PriceChangeLog, error)
	ListByProduct(ctx context.Context, productID uuid.UUID, page, limit int) ([]model.PriceChangeLog, int64, error)
}

type priceLogRepo struct{ db *gorm.DB }

func NewPriceChangeLogRepository(db *gorm.DB) PriceChangeLogRepository {
	return &priceLogRepo{db: db}
}

func (r *priceLogRepo) CreateTx(tx *gorm.DB, entry *model.PriceChangeLog) error {
	return tx.Create(entry).Error
}

func (r *priceLogRepo) ListAppliedBySimulation(ctx context.Context, simulationID uuid.UUID) ([]model.PriceChangeLog, error) {
	var entries []model.PriceChangeLog
	err := r.db.WithContext(ctx).
		Where("simulation_id = ? AND is_rollback = false", simulationID).
		Order("created_at ASC, id ASC").
		Find(&entries).Error
	return entries, err
}

// ListByProduct returns paginated ledger entries for one product, newest
// first (append-only table, so this reflects natural insert order).
func (r *priceLogRepo) ListByProduct(ctx context.Context, productID uuid.UUID, page, limit int) ([]model.PriceChangeLog, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}

	var total int64
	if err := r.db.WithContext(ctx).
		Model(&model.PriceChangeLog{}).
		Where("product_id = ?", productID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []model.PriceChangeLog
	offset := (page - 1) * limit
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&entries).Error
	return entries, total, err
}
