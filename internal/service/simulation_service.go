package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Neo52000/ma-papeterie-sub000/internal/apierror"
	"github.com/Neo52000/ma-papeterie-sub000/internal/dto"
	"github.com/Neo52000/ma-papeterie-sub000/internal/model"
	"github.com/Neo52000/ma-papeterie-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// SimulationService runs a ruleset against the eligible catalog snapshot and
// persists the preview. Running a simulation never mutates catalog prices.
type SimulationService interface {
	Run(ctx context.Context, req dto.RunSimulationRequest) (*dto.SimulationResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.SimulationResponse, error)
	List(ctx context.Context, filter dto.SimulationFilter) (*dto.SimulationListResponse, error)
}

type simulationService struct {
	simulations repository.SimulationRepository
	rulesets    repository.RulesetRepository
	rules       repository.RuleRepository
	products    repository.ProductRepository
	clock       Clock
}

func NewSimulationService(
	simulations repository.SimulationRepository,
	rulesets repository.RulesetRepository,
	rules repository.RuleRepository,
	products repository.ProductRepository,
	clock Clock,
) SimulationService {
	return &simulationService{
		simulations: simulations,
		rulesets:    rulesets,
		rules:       rules,
		products:    products,
		clock:       clock,
	}
}

// adjustmentRule pairs a rule with its decoded params so the per-product loop
// decodes each rule exactly once.
type adjustmentRule struct {
	rule   *model.Rule
	params model.RuleParams
}

func (s *simulationService) Run(ctx context.Context, req dto.RunSimulationRequest) (*dto.SimulationResponse, error) {
	rulesetID, err := uuid.Parse(req.RulesetID)
	if err != nil {
		return nil, fmt.Errorf("%w: ruleset_id invalide", apierror.ErrValidation)
	}
	ruleset, err := s.rulesets.FindByID(ctx, rulesetID)
	if err != nil {
		return nil, notFound(err, "ruleset")
	}
	if !ruleset.IsActive {
		return nil, fmt.Errorf("%w: le ruleset %q est désactivé", apierror.ErrValidation, ruleset.Name)
	}

	rules, err := s.rules.ListActiveByRuleset(ctx, rulesetID)
	if err != nil {
		return nil, err
	}

	// Split the active rules: adjustment rules compete in priority order for
	// the single per-product change; the margin guard only clamps. With
	// several active guards the strictest floor wins.
	var adjustments []adjustmentRule
	var guard *model.MarginGuardParams
	for i := range rules {
		params, err := rules[i].DecodeParams()
		if err != nil {
			return nil, err
		}
		if g, ok := params.(*model.MarginGuardParams); ok {
			if guard == nil || g.MinMarginPercent.GreaterThan(guard.MinMarginPercent) {
				guard = g
			}
			continue
		}
		adjustments = append(adjustments, adjustmentRule{rule: &rules[i], params: params})
	}

	products, err := s.products.ListEligible(ctx, req.Category)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	items := make([]model.SimulationItem, 0, len(products))
	for i := range products {
		if item := evaluateProduct(&products[i], adjustments, guard, now); item != nil {
			items = append(items, *item)
		}
	}

	affected := 0
	sumChange := decimal.Zero
	for i := range items {
		if !items[i].NewPriceHT.Equal(items[i].OldPriceHT) {
			affected++
			sumChange = sumChange.Add(items[i].PriceChangePercent)
		}
	}
	avgChange := decimal.Zero
	if affected > 0 {
		avgChange = sumChange.Div(decimal.NewFromInt(int64(affected))).Round(2)
	}

	sim := &model.Simulation{
		RulesetID:     rulesetID,
		Category:      req.Category,
		Status:        model.SimulationCompleted,
		ProductCount:  len(products),
		AffectedCount: affected,
		AvgChangePct:  avgChange,
	}
	if err := s.simulations.CreateWithItems(ctx, sim, items); err != nil {
		return nil, err
	}

	log.Info().
		Str("simulation_id", sim.ID.String()).
		Str("ruleset_id", rulesetID.String()).
		Int("product_count", sim.ProductCount).
		Int("affected_count", sim.AffectedCount).
		Str("avg_change_pct", sim.AvgChangePct.String()).
		Msg("simulation completed")

	return simulationToResponse(sim, items), nil
}

// evaluateProduct runs the rule selection for one product:
// first matching adjustment rule wins (rules are already in priority order),
// then the margin guard clamps the candidate price. Returns nil when no
// adjustment rule matches; the product is omitted from the preview.
func evaluateProduct(p *model.Product, adjustments []adjustmentRule, guard *model.MarginGuardParams, now time.Time) *model.SimulationItem {
	var (
		selected  *adjustmentRule
		candidate decimal.Decimal
		reason    string
	)

	month := int(now.Month())
	for i := range adjustments {
		adj := &adjustments[i]
		switch params := adj.params.(type) {
		case *model.SeasonalityParams:
			if !containsMonth(params.Months, month) {
				continue
			}
			candidate = p.PriceHT.Mul(one.Add(params.AdjustmentPercent.Div(oneHundred)))
			reason = fmt.Sprintf("%s : ajustement saisonnier %s%% (mois %d)", adj.rule.Name, params.AdjustmentPercent, month)
		case *model.LowStockParams:
			if p.StockQuantity > params.Threshold {
				continue
			}
			candidate = p.PriceHT.Mul(one.Add(params.AdjustmentPercent.Div(oneHundred)))
			reason = fmt.Sprintf("%s : stock bas (%d <= seuil %d), ajustement %s%%", adj.rule.Name, p.StockQuantity, params.Threshold, params.AdjustmentPercent)
		case *model.LowRotationParams:
			days, sold := daysSinceLastSale(p, now)
			if sold && days < params.DaysWithoutSale {
				continue
			}
			candidate = p.PriceHT.Mul(one.Sub(params.DiscountPercent.Div(oneHundred)))
			if sold {
				reason = fmt.Sprintf("%s : %d jours sans vente, remise %s%%", adj.rule.Name, days, params.DiscountPercent)
			} else {
				reason = fmt.Sprintf("%s : jamais vendu, remise %s%%", adj.rule.Name, params.DiscountPercent)
			}
		default:
			continue
		}
		selected = adj
		break
	}
	if selected == nil {
		return nil
	}

	blocked := false
	if guard != nil && !candidate.IsZero() {
		margin := candidate.Sub(p.CostPrice).Div(candidate).Mul(oneHundred)
		if margin.LessThan(guard.MinMarginPercent) {
			candidate = p.CostPrice.Div(one.Sub(guard.MinMarginPercent.Div(oneHundred)))
			blocked = true
			reason += fmt.Sprintf(" ; plancher de marge %s%% appliqué", guard.MinMarginPercent)
		}
	}

	newPrice := candidate.Round(2)
	return &model.SimulationItem{
		ProductID:          p.ID,
		RuleType:           selected.rule.RuleType,
		OldPriceHT:         p.PriceHT,
		NewPriceHT:         newPrice,
		PriceChangePercent: changePercent(p.PriceHT, newPrice),
		OldMarginPercent:   marginPercent(p.PriceHT, p.CostPrice),
		NewMarginPercent:   marginPercent(newPrice, p.CostPrice),
		BlockedByGuard:     blocked,
		Reason:             reason,
	}
}

func containsMonth(months []int, month int) bool {
	for _, m := range months {
		if m == month {
			return true
		}
	}
	return false
}

// daysSinceLastSale returns the whole days elapsed since the last sale.
// sold=false means the product never sold, which low_rotation rules treat as
// stale whatever their threshold.
func daysSinceLastSale(p *model.Product, now time.Time) (days int, sold bool) {
	if p.LastSaleAt == nil {
		return 0, false
	}
	return int(now.Sub(*p.LastSaleAt).Hours() / 24), true
}

func (s *simulationService) Get(ctx context.Context, id uuid.UUID) (*dto.SimulationResponse, error) {
	sim, err := s.simulations.FindByIDWithItems(ctx, id)
	if err != nil {
		return nil, notFound(err, "simulation")
	}
	return simulationToResponse(sim, sim.Items), nil
}

func (s *simulationService) List(ctx context.Context, filter dto.SimulationFilter) (*dto.SimulationListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}
	sims, total, err := s.simulations.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	resp := &dto.SimulationListResponse{Total: total, Items: make([]dto.SimulationResponse, 0, len(sims))}
	for i := range sims {
		resp.Items = append(resp.Items, *simulationToResponse(&sims[i], nil))
	}
	return resp, nil
}

func simulationToResponse(sim *model.Simulation, items []model.SimulationItem) *dto.SimulationResponse {
	resp := &dto.SimulationResponse{
		ID:            sim.ID.String(),
		RulesetID:     sim.RulesetID.String(),
		Category:      sim.Category,
		Status:        string(sim.Status),
		ProductCount:  sim.ProductCount,
		AffectedCount: sim.AffectedCount,
		AvgChangePct:  sim.AvgChangePct,
		CreatedAt:     sim.CreatedAt.Format(time.RFC3339),
	}
	if sim.AppliedBy != nil {
		by := sim.AppliedBy.String()
		resp.AppliedBy = &by
	}
	if sim.AppliedAt != nil {
		at := sim.AppliedAt.Format(time.RFC3339)
		resp.AppliedAt = &at
	}
	for i := range items {
		it := &items[i]
		resp.Items = append(resp.Items, dto.SimulationItemResponse{
			ID:                 it.ID.String(),
			ProductID:          it.ProductID.String(),
			RuleType:           string(it.RuleType),
			OldPriceHT:         it.OldPriceHT,
			NewPriceHT:         it.NewPriceHT,
			PriceChangePercent: it.PriceChangePercent,
			OldMarginPercent:   it.OldMarginPercent,
			NewMarginPercent:   it.NewMarginPercent,
			BlockedByGuard:     it.BlockedByGuard,
			Reason:             it.Reason,
		})
	}
	return resp
}
