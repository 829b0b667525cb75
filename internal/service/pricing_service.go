package service

import (
	"context"
	"fmt"

	"github.com/Neo52000/ma-papeterie-sub000/internal/apierror"
	"github.com/Neo52000/ma-papeterie-sub000/internal/dto"
	"github.com/Neo52000/ma-papeterie-sub000/internal/model"
	"github.com/Neo52000/ma-papeterie-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// PricingService owns the two catalog-mutating operations of the subsystem.
// Both claim the simulation's status transition up front with a guarded
// UPDATE, then process items strictly one at a time; each item's price write
// and ledger append share a transaction, so a failed item leaves neither.
// Per-item failures are collected and the batch keeps going.
type PricingService interface {
	Apply(ctx context.Context, userID, simulationID uuid.UUID) (*dto.ApplyResponse, error)
	Rollback(ctx context.Context, userID, simulationID uuid.UUID) (*dto.RollbackResponse, error)
}

type pricingService struct {
	simulations repository.SimulationRepository
	products    repository.ProductRepository
	ledger      repository.PriceChangeLogRepository
	clock       Clock
}

func NewPricingService(
	simulations repository.SimulationRepository,
	products repository.ProductRepository,
	ledger repository.PriceChangeLogRepository,
	clock Clock,
) PricingService {
	return &pricingService{
		simulations: simulations,
		products:    products,
		ledger:      ledger,
		clock:       clock,
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ── Apply ────────────────────────────────────────────────────────────────────

func (s *pricingService) Apply(ctx context.Context, userID, simulationID uuid.UUID) (*dto.ApplyResponse, error) {
	sim, err := s.simulations.FindByID(ctx, simulationID)
	if err != nil {
		return nil, notFound(err, "simulation")
	}
	if sim.Status != model.SimulationCompleted {
		return nil, fmt.Errorf("%w: la simulation est %q, apply exige %q",
			apierror.ErrInvalidState, sim.Status, model.SimulationCompleted)
	}

	now := s.clock.Now()
	claimed, err := s.simulations.ClaimApply(ctx, simulationID, userID, now)
	if err != nil {
		return nil, err
	}
	if !claimed {
		// Lost the race against a concurrent apply on the same simulation.
		return nil, fmt.Errorf("%w: la simulation n'est plus en état %q",
			apierror.ErrInvalidState, model.SimulationCompleted)
	}

	items, err := s.simulations.ListItems(ctx, simulationID)
	if err != nil {
		return nil, err
	}

	resp := &dto.ApplyResponse{Success: true, Total: len(items)}
	for i := range items {
		item := &items[i]
		err := runTx(ctx, s.products.DB(), func(tx *gorm.DB) error {
			if err := s.products.UpdatePricesTx(tx, item.ProductID, item.NewPriceHT, priceTTC(item.NewPriceHT)); err != nil {
				return err
			}
			return s.ledger.CreateTx(tx, &model.PriceChangeLog{
				ProductID:          item.ProductID,
				SimulationID:       simulationID,
				RuleType:           item.RuleType,
				OldPriceHT:         item.OldPriceHT,
				NewPriceHT:         item.NewPriceHT,
				PriceChangePercent: item.PriceChangePercent,
				OldMarginPercent:   item.OldMarginPercent,
				NewMarginPercent:   item.NewMarginPercent,
				Reason:             item.Reason,
				AppliedBy:          userID,
				AppliedAt:          now,
				IsRollback:         false,
			})
		})
		if err != nil {
			resp.Errors = append(resp.Errors, fmt.Sprintf("produit %s: %v", item.ProductID, err))
			log.Warn().
				Str("simulation_id", simulationID.String()).
				Str("product_id", item.ProductID.String()).
				Err(err).
				Msg("apply: item failed, continuing")
			continue
		}
		resp.AppliedCount++
	}

	log.Info().
		Str("simulation_id", simulationID.String()).
		Str("applied_by", userID.String()).
		Int("applied_count", resp.AppliedCount).
		Int("total", resp.Total).
		Int("failures", len(resp.Errors)).
		Msg("simulation applied")

	return resp, nil
}

// ── Rollback ─────────────────────────────────────────────────────────────────

func (s *pricingService) Rollback(ctx context.Context, userID, simulationID uuid.UUID) (*dto.RollbackResponse, error) {
	sim, err := s.simulations.FindByID(ctx, simulationID)
	if err != nil {
		return nil, notFound(err, "simulation")
	}
	if sim.Status != model.SimulationApplied {
		return nil, fmt.Errorf("%w: la simulation est %q, rollback exige %q",
			apierror.ErrInvalidState, sim.Status, model.SimulationApplied)
	}

	claimed, err := s.simulations.ClaimRollback(ctx, simulationID)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, fmt.Errorf("%w: la simulation n'est plus en état %q",
			apierror.ErrInvalidState, model.SimulationApplied)
	}

	// The non-rollback ledger rows are exactly what the apply run committed.
	// Items that failed during apply never got a row, so they are not
	// reverted either.
	entries, err := s.ledger.ListAppliedBySimulation(ctx, simulationID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	resp := &dto.RollbackResponse{Success: true, Total: len(entries)}
	for i := range entries {
		entry := &entries[i]
		err := runTx(ctx, s.products.DB(), func(tx *gorm.DB) error {
			if err := s.products.UpdatePricesTx(tx, entry.ProductID, entry.OldPriceHT, priceTTC(entry.OldPriceHT)); err != nil {
				return err
			}
			return s.ledger.CreateTx(tx, &model.PriceChangeLog{
				ProductID:          entry.ProductID,
				SimulationID:       simulationID,
				RuleType:           entry.RuleType,
				OldPriceHT:         entry.NewPriceHT,
				NewPriceHT:         entry.OldPriceHT,
				PriceChangePercent: entry.PriceChangePercent.Neg(),
				OldMarginPercent:   entry.NewMarginPercent,
				NewMarginPercent:   entry.OldMarginPercent,
				Reason:             fmt.Sprintf("Rollback - simulation %s", simulationID),
				AppliedBy:          userID,
				AppliedAt:          now,
				IsRollback:         true,
				RollbackOf:         &entry.ID,
			})
		})
		if err != nil {
			resp.Errors = append(resp.Errors, fmt.Sprintf("produit %s: %v", entry.ProductID, err))
			log.Warn().
				Str("simulation_id", simulationID.String()).
				Str("product_id", entry.ProductID.String()).
				Err(err).
				Msg("rollback: item failed, continuing")
			continue
		}
		resp.RolledBackCount++
	}

	log.Info().
		Str("simulation_id", simulationID.String()).
		Str("rolled_back_by", userID.String()).
		Int("rolled_back_count", resp.RolledBackCount).
		Int("total", resp.Total).
		Int("failures", len(resp.Errors)).
		Msg("simulation rolled back")

	return resp, nil
}
