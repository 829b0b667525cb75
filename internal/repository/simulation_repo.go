package repository

import (
	"context"
	"time"

	"github.com/Neo52000/ma-papeterie-sub000/internal/dto"
	"github.com/Neo52000/ma-papeterie-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SimulationRepository interface {
	// CreateWithItems persists the simulation and its preview rows in one
	// transaction; a simulation is never visible without its items.
	CreateWithItems(ctx context.Context, sim *model.Simulation, items []model.SimulationItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Simulation, error)
	FindByIDWithItems(ctx context.Context, id uuid.UUID) (*model.Simulation, error)
	List(ctx context.Context, filter dto.SimulationFilter) ([]model.Simulation, int64, error)
	ListItems(ctx context.Context, simulationID uuid.UUID) ([]model.SimulationItem, error)

	// ClaimApply atomically advances completed → applied, recording who and
	// when. Returns false when the simulation was not in completed state.
	// The guarded UPDATE is what prevents two concurrent apply calls from
	// both passing the precondition.
	ClaimApply(ctx context.Context, id uuid.UUID, appliedBy uuid.UUID, at time.Time) (bool, error)
	// ClaimRollback atomically advances applied → rolled_back.
	ClaimRollback(ctx context.Context, id uuid.UUID) (bool, error)
}

type simulationRepo struct{ db *gorm.DB }

func NewSimulationRepository(db *gorm.DB) SimulationRepository { return &simulationRepo{db: db} }

func (r *simulationRepo) CreateWithItems(ctx context.Context, sim *model.Simulation, items []model.SimulationItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(sim).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].SimulationID = sim.ID
		}
		if len(items) == 0 {
			return nil
		}
		return tx.CreateInBatches(items, 200).Error
	})
}

func (r *simulationRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Simulation, error) {
	var sim model.Simulation
	err := r.db.WithContext(ctx).First(&sim, id).Error
	return &sim, err
}

func (r *simulationRepo) FindByIDWithItems(ctx context.Context, id uuid.UUID) (*model.Simulation, error) {
	var sim model.Simulation
	err := r.db.WithContext(ctx).Preload("Items").First(&sim, id).Error
	return &sim, err
}

func (r *simulationRepo) List(ctx context.Context, filter dto.SimulationFilter) ([]model.Simulation, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Simulation{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var sims []model.Simulation
	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("created_at DESC").Limit(filter.Limit).Offset(offset).Find(&sims).Error
	return sims, total, err
}

func (r *simulationRepo) ListItems(ctx context.Context, simulationID uuid.UUID) ([]model.SimulationItem, error) {
	var items []model.SimulationItem
	err := r.db.WithContext(ctx).
		Where("simulation_id = ?", simulationID).
		Order("product_id ASC").
		Find(&items).Error
	return items, err
}

func (r *simulationRepo) ClaimApply(ctx context.Context, id uuid.UUID, appliedBy uuid.UUID, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Simulation{}).
		Where("id = ? AND status = ?", id, model.SimulationCompleted).
		Updates(map[string]interface{}{
			"status":     model.SimulationApplied,
			"applied_by": appliedBy,
			"applied_at": at,
		})
	return res.RowsAffected == 1, res.Error
}

func (r *simulationRepo) ClaimRollback(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Simulation{}).
		Where("id = ? AND status = ?", id, model.SimulationApplied).
		Update("status", model.SimulationRolledBack)
	return res.RowsAffected == 1, res.Error
}
