package service

import (
	"context"
	"sort"
	"time"

	"github.com/Neo52000/ma-papeterie-sub000/internal/dto"
	"github.com/Neo52000/ma-papeterie-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// In-memory repository stubs. DB() returns nil so runTx executes callbacks
// directly (unit test mode).

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// ── ProductRepository ────────────────────────────────────────────────────────

type stubProductRepo struct {
	products map[uuid.UUID]*model.Product
	// failPriceUpdate simulates a mid-batch write failure for one product.
	failPriceUpdate map[uuid.UUID]error
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{
		products:        make(map[uuid.UUID]*model.Product),
		failPriceUpdate: make(map[uuid.UUID]error),
	}
}

func (r *stubProductRepo) add(p *model.Product) *model.Product {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.products[p.ID] = p
	return p
}

func (r *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *stubProductRepo) ListEligible(_ context.Context, category *string) ([]model.Product, error) {
	var result []model.Product
	for _, p := range r.products {
		if !p.IsActive || !p.PriceHT.IsPositive() {
			continue
		}
		if category != nil && *category != "" && p.Category != *category {
			continue
		}
		result = append(result, *p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (r *stubProductRepo) UpdatePricesTx(_ *gorm.DB, id uuid.UUID, priceHT, priceTTC interface{}) error {
	if err, ok := r.failPriceUpdate[id]; ok {
		return err
	}
	p, ok := r.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.PriceHT = priceHT.(decimal.Decimal)
	p.PriceTTC = priceTTC.(decimal.Decimal)
	return nil
}

func (r *stubProductRepo) DB() *gorm.DB { return nil }

// ── RulesetRepository ────────────────────────────────────────────────────────

type stubRulesetRepo struct {
	rulesets map[uuid.UUID]*model.Ruleset
}

func newStubRulesetRepo() *stubRulesetRepo {
	return &stubRulesetRepo{rulesets: make(map[uuid.UUID]*model.Ruleset)}
}

func (r *stubRulesetRepo) Create(_ context.Context, rs *model.Ruleset) error {
	if rs.ID == uuid.Nil {
		rs.ID = uuid.New()
	}
	rs.CreatedAt = time.Now()
	r.rulesets[rs.ID] = rs
	return nil
}

func (r *stubRulesetRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Ruleset, error) {
	rs, ok := r.rulesets[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return rs, nil
}

func (r *stubRulesetRepo) FindByIDWithRules(ctx context.Context, id uuid.UUID) (*model.Ruleset, error) {
	return r.FindByID(ctx, id)
}

func (r *stubRulesetRepo) List(_ context.Context, page, limit int) ([]model.Ruleset, int64, error) {
	var result []model.Ruleset
	for _, rs := range r.rulesets {
		result = append(result, *rs)
	}
	return result, int64(len(result)), nil
}

func (r *stubRulesetRepo) Update(_ context.Context, rs *model.Ruleset) error {
	r.rulesets[rs.ID] = rs
	return nil
}

func (r *stubRulesetRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.rulesets[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.rulesets, id)
	return nil
}

func (r *stubRulesetRepo) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	rs, ok := r.rulesets[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	rs.IsActive = active
	return nil
}

// ── RuleRepository ───────────────────────────────────────────────────────────

type stubRuleRepo struct {
	rules []*model.Rule
}

func newStubRuleRepo() *stubRuleRepo { return &stubRuleRepo{} }

func (r *stubRuleRepo) Create(_ context.Context, rule *model.Rule) error {
	if rule.ID == uuid.Nil {
		rule.ID = uuid.New()
	}
	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = time.Now()
	}
	r.rules = append(r.rules, rule)
	return nil
}

func (r *stubRuleRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Rule, error) {
	for _, rule := range r.rules {
		if rule.ID == id {
			return rule, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubRuleRepo) ListByRuleset(_ context.Context, rulesetID uuid.UUID) ([]model.Rule, error) {
	return r.list(rulesetID, false), nil
}

func (r *stubRuleRepo) ListActiveByRuleset(_ context.Context, rulesetID uuid.UUID) ([]model.Rule, error) {
	return r.list(rulesetID, true), nil
}

// list mirrors the SQL ordering: priority ASC, created_at ASC, id ASC.
func (r *stubRuleRepo) list(rulesetID uuid.UUID, activeOnly bool) []model.Rule {
	var result []model.Rule
	for _, rule := range r.rules {
		if rule.RulesetID != rulesetID {
			continue
		}
		if activeOnly && !rule.IsActive {
			continue
		}
		result = append(result, *rule)
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Priority != result[j].Priority {
			return result[i].Priority < result[j].Priority
		}
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID.String() < result[j].ID.String()
	})
	return result
}

func (r *stubRuleRepo) Update(_ context.Context, rule *model.Rule) error {
	for i := range r.rules {
		if r.rules[i].ID == rule.ID {
			r.rules[i] = rule
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *stubRuleRepo) Delete(_ context.Context, id uuid.UUID) error {
	for i := range r.rules {
		if r.rules[i].ID == id {
			r.rules = append(r.rules[:i], r.rules[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *stubRuleRepo) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	for _, rule := range r.rules {
		if rule.ID == id {
			rule.IsActive = active
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// ── SimulationRepository ─────────────────────────────────────────────────────

type stubSimulationRepo struct {
	sims  map[uuid.UUID]*model.Simulation
	items map[uuid.UUID][]model.SimulationItem
}

func newStubSimulationRepo() *stubSimulationRepo {
	return &stubSimulationRepo{
		sims:  make(map[uuid.UUID]*model.Simulation),
		items: make(map[uuid.UUID][]model.SimulationItem),
	}
}

func (r *stubSimulationRepo) CreateWithItems(_ context.Context, sim *model.Simulation, items []model.SimulationItem) error {
	if sim.ID == uuid.Nil {
		sim.ID = uuid.New()
	}
	sim.CreatedAt = time.Now()
	r.sims[sim.ID] = sim
	for i := range items {
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
		items[i].SimulationID = sim.ID
	}
	r.items[sim.ID] = items
	return nil
}

func (r *stubSimulationRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Simulation, error) {
	sim, ok := r.sims[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	// Return a copy: the service must not observe later stub mutations
	// through a shared pointer.
	cp := *sim
	return &cp, nil
}

func (r *stubSimulationRepo) FindByIDWithItems(ctx context.Context, id uuid.UUID) (*model.Simulation, error) {
	sim, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	sim.Items = r.items[id]
	return sim, nil
}

func (r *stubSimulationRepo) List(_ context.Context, filter dto.SimulationFilter) ([]model.Simulation, int64, error) {
	var result []model.Simulation
	for _, sim := range r.sims {
		if filter.Status != "" && string(sim.Status) != filter.Status {
			continue
		}
		result = append(result, *sim)
	}
	return result, int64(len(result)), nil
}

func (r *stubSimulationRepo) ListItems(_ context.Context, simulationID uuid.UUID) ([]model.SimulationItem, error) {
	return r.items[simulationID], nil
}

func (r *stubSimulationRepo) ClaimApply(_ context.Context, id uuid.UUID, appliedBy uuid.UUID, at time.Time) (bool, error) {
	sim, ok := r.sims[id]
	if !ok || sim.Status != model.SimulationCompleted {
		return false, nil
	}
	sim.Status = model.SimulationApplied
	sim.AppliedBy = &appliedBy
	sim.AppliedAt = &at
	return true, nil
}

func (r *stubSimulationRepo) ClaimRollback(_ context.Context, id uuid.UUID) (bool, error) {
	sim, ok := r.sims[id]
	if !ok || sim.Status != model.SimulationApplied {
		return false, nil
	}
	sim.Status = model.SimulationRolledBack
	return true, nil
}

// ── PriceChangeLogRepository ─────────────────────────────────────────────────

type stubPriceLogRepo struct {
	entries []model.PriceChangeLog
}

func newStubPriceLogRepo() *stubPriceLogRepo { return &stubPriceLogRepo{} }

func (r *stubPriceLogRepo) CreateTx(_ *gorm.DB, entry *model.PriceChangeLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	entry.CreatedAt = time.Now()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *stubPriceLogRepo) ListAppliedBySimulation(_ context.Context, simulationID uuid.UUID) ([]model.PriceChangeLog, error) {
	var result []model.PriceChangeLog
	for _, e := range r.entries {
		if e.SimulationID == simulationID && !e.IsRollback {
			result = append(result, e)
		}
	}
	return result, nil
}

func (r *stubPriceLogRepo) ListByProduct(_ context.Context, productID uuid.UUID, page, limit int) ([]model.PriceChangeLog, int64, error) {
	var result []model.PriceChangeLog
	for _, e := range r.entries {
		if e.ProductID == productID {
			result = append(result, e)
		}
	}
	return result, int64(len(result)), nil
}
