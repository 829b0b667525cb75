package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Neo52000/ma-papeterie-sub000/internal/apierror"
	"github.com/Neo52000/ma-papeterie-sub000/internal/dto"
	"github.com/Neo52000/ma-papeterie-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// August 15th: month 8, relevant for the seasonality cases.
var augustNow = time.Date(2026, time.August, 15, 10, 0, 0, 0, time.UTC)

type simFixture struct {
	svc      SimulationService
	products *stubProductRepo
	rulesets *stubRulesetRepo
	rules    *stubRuleRepo
	sims     *stubSimulationRepo
	ruleset  *model.Ruleset
}

func newSimFixture(t *testing.T, now time.Time) *simFixture {
	t.Helper()
	f := &simFixture{
		products: newStubProductRepo(),
		rulesets: newStubRulesetRepo(),
		rules:    newStubRuleRepo(),
		sims:     newStubSimulationRepo(),
	}
	f.ruleset = &model.Ruleset{Name: "tarifs rentrée", IsActive: true}
	require.NoError(t, f.rulesets.Create(context.Background(), f.ruleset))
	f.svc = NewSimulationService(f.sims, f.rulesets, f.rules, f.products, fixedClock{t: now})
	return f
}

func (f *simFixture) addRule(t *testing.T, name string, priority int, p model.RuleParams) *model.Rule {
	t.Helper()
	rule := &model.Rule{RulesetID: f.ruleset.ID, Name: name, Priority: priority, IsActive: true}
	require.NoError(t, rule.SetParams(p))
	require.NoError(t, f.rules.Create(context.Background(), rule))
	return rule
}

func (f *simFixture) run(t *testing.T, category *string) *dto.SimulationResponse {
	t.Helper()
	resp, err := f.svc.Run(context.Background(), dto.RunSimulationRequest{
		RulesetID: f.ruleset.ID.String(),
		Category:  category,
	})
	require.NoError(t, err)
	return resp
}

func TestRunSimulationSeasonality(t *testing.T) {
	f := newSimFixture(t, augustNow)
	f.addRule(t, "Rentrée scolaire", 1, &model.SeasonalityParams{
		Months:            []int{8, 9},
		AdjustmentPercent: dec("10"),
	})
	f.products.add(&model.Product{
		Name: "Cahier 96p", Category: "papier",
		PriceHT: dec("10.00"), PriceTTC: dec("12.00"), CostPrice: dec("4.00"),
		StockQuantity: 50, IsActive: true,
	})

	resp := f.run(t, nil)

	assert.Equal(t, "completed", resp.Status)
	assert.Equal(t, 1, resp.ProductCount)
	assert.Equal(t, 1, resp.AffectedCount)
	require.Len(t, resp.Items, 1)

	item := resp.Items[0]
	assert.Equal(t, "seasonality", item.RuleType)
	assert.Equal(t, "10.00", item.OldPriceHT.StringFixed(2))
	assert.Equal(t, "11.00", item.NewPriceHT.StringFixed(2))
	assert.Equal(t, "10.00", item.PriceChangePercent.StringFixed(2))
	assert.Equal(t, "60.00", item.OldMarginPercent.StringFixed(2))
	assert.Equal(t, "63.64", item.NewMarginPercent.StringFixed(2))
	assert.False(t, item.BlockedByGuard)
	assert.Contains(t, item.Reason, "Rentrée scolaire")
}

func TestRunSimulationSeasonalityOutOfSeason(t *testing.T) {
	// Evaluation in March, rule covers August/September only.
	f := newSimFixture(t, time.Date(2026, time.March, 3, 9, 0, 0, 0, time.UTC))
	f.addRule(t, "Rentrée scolaire", 1, &model.SeasonalityParams{
		Months:            []int{8, 9},
		AdjustmentPercent: dec("10"),
	})
	f.products.add(&model.Product{
		Name: "Cahier 96p", Category: "papier",
		PriceHT: dec("10.00"), CostPrice: dec("4.00"), StockQuantity: 50, IsActive: true,
	})

	resp := f.run(t, nil)

	assert.Equal(t, 1, resp.ProductCount)
	assert.Equal(t, 0, resp.AffectedCount)
	assert.Empty(t, resp.Items)
	assert.Equal(t, "0.00", resp.AvgChangePct.StringFixed(2))
}

func TestRunSimulationLowStock(t *testing.T) {
	f := newSimFixture(t, augustNow)
	f.addRule(t, "Stock critique", 1, &model.LowStockParams{
		Threshold:         5,
		AdjustmentPercent: dec("10"),
	})
	f.products.add(&model.Product{
		Name: "Agenda 2027", Category: "papier",
		PriceHT: dec("20.00"), CostPrice: dec("9.00"), StockQuantity: 3, IsActive: true,
	})
	f.products.add(&model.Product{
		Name: "Classeur A4", Category: "papier",
		PriceHT: dec("6.00"), CostPrice: dec("2.50"), StockQuantity: 40, IsActive: true,
	})

	resp := f.run(t, nil)

	assert.Equal(t, 2, resp.ProductCount)
	assert.Equal(t, 1, resp.AffectedCount)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "low_stock", resp.Items[0].RuleType)
	assert.Equal(t, "22.00", resp.Items[0].NewPriceHT.StringFixed(2))
}

func TestRunSimulationLowRotation(t *testing.T) {
	f := newSimFixture(t, augustNow)
	f.addRule(t, "Déstockage", 1, &model.LowRotationParams{
		DaysWithoutSale: 90,
		DiscountPercent: dec("20"),
	})

	staleSale := augustNow.AddDate(0, 0, -120)
	recentSale := augustNow.AddDate(0, 0, -10)
	f.products.add(&model.Product{
		Name: "Stylo plume vintage", Category: "écriture",
		PriceHT: dec("30.00"), CostPrice: dec("12.00"),
		StockQuantity: 8, LastSaleAt: &staleSale, IsActive: true,
	})
	f.products.add(&model.Product{
		Name: "Stylo bille", Category: "écriture",
		PriceHT: dec("2.00"), CostPrice: dec("0.60"),
		StockQuantity: 200, LastSaleAt: &recentSale, IsActive: true,
	})
	// Never sold: stale whatever the threshold.
	f.products.add(&model.Product{
		Name: "Encre violette", Category: "écriture",
		PriceHT: dec("8.00"), CostPrice: dec("3.00"),
		StockQuantity: 12, IsActive: true,
	})

	resp := f.run(t, nil)

	assert.Equal(t, 3, resp.ProductCount)
	assert.Equal(t, 2, resp.AffectedCount)
	require.Len(t, resp.Items, 2)
	for _, item := range resp.Items {
		assert.Equal(t, "low_rotation", item.RuleType)
		assert.Equal(t, "-20.00", item.PriceChangePercent.StringFixed(2))
	}
}

func TestRunSimulationMarginGuardClampsDiscount(t *testing.T) {
	f := newSimFixture(t, augustNow)
	f.addRule(t, "Déstockage", 1, &model.LowRotationParams{
		DaysWithoutSale: 90,
		DiscountPercent: dec("15"),
	})
	f.addRule(t, "Plancher de marge", 2, &model.MarginGuardParams{
		MinMarginPercent: dec("15"),
	})
	stale := augustNow.AddDate(0, 0, -200)
	f.products.add(&model.Product{
		Name: "Boîte d'archives", Category: "rangement",
		PriceHT: dec("10.00"), CostPrice: dec("8.00"),
		StockQuantity: 30, LastSaleAt: &stale, IsActive: true,
	})

	resp := f.run(t, nil)

	require.Len(t, resp.Items, 1)
	item := resp.Items[0]
	// 15% off 10.00 would be 8.50, margin 5.88%; the guard lifts the price
	// back to cost / (1 - 0.15) = 9.41.
	assert.Equal(t, "9.41", item.NewPriceHT.StringFixed(2))
	assert.True(t, item.BlockedByGuard)
	assert.Equal(t, "14.98", item.NewMarginPercent.StringFixed(2))
	assert.Contains(t, item.Reason, "plancher de marge")
}

func TestRunSimulationStrictestGuardWins(t *testing.T) {
	f := newSimFixture(t, augustNow)
	f.addRule(t, "Déstockage", 1, &model.LowRotationParams{
		DaysWithoutSale: 90,
		DiscountPercent: dec("50"),
	})
	f.addRule(t, "Plancher souple", 2, &model.MarginGuardParams{MinMarginPercent: dec("10")})
	f.addRule(t, "Plancher strict", 3, &model.MarginGuardParams{MinMarginPercent: dec("25")})
	f.products.add(&model.Product{
		Name: "Papier photo", Category: "papier",
		PriceHT: dec("12.00"), CostPrice: dec("9.00"), StockQuantity: 5, IsActive: true,
	})

	resp := f.run(t, nil)

	require.Len(t, resp.Items, 1)
	// cost / (1 - 0.25) = 12.00
	assert.Equal(t, "12.00", resp.Items[0].NewPriceHT.StringFixed(2))
	assert.True(t, resp.Items[0].BlockedByGuard)
}

func TestRunSimulationFirstMatchingRuleWins(t *testing.T) {
	f := newSimFixture(t, augustNow)
	f.addRule(t, "Stock critique", 1, &model.LowStockParams{
		Threshold:         5,
		AdjustmentPercent: dec("25"),
	})
	f.addRule(t, "Rentrée scolaire", 2, &model.SeasonalityParams{
		Months:            []int{8},
		AdjustmentPercent: dec("10"),
	})
	// Both rules match; priority 1 must win.
	f.products.add(&model.Product{
		Name: "Cartouches d'encre", Category: "écriture",
		PriceHT: dec("4.00"), CostPrice: dec("1.50"), StockQuantity: 2, IsActive: true,
	})

	resp := f.run(t, nil)

	require.Len(t, resp.Items, 1)
	assert.Equal(t, "low_stock", resp.Items[0].RuleType)
	assert.Equal(t, "5.00", resp.Items[0].NewPriceHT.StringFixed(2))
}

func TestRunSimulationEqualPriorityTieBreak(t *testing.T) {
	f := newSimFixture(t, augustNow)
	first := f.addRule(t, "Première règle", 10, &model.SeasonalityParams{
		Months:            []int{8},
		AdjustmentPercent: dec("5"),
	})
	second := f.addRule(t, "Seconde règle", 10, &model.SeasonalityParams{
		Months:            []int{8},
		AdjustmentPercent: dec("50"),
	})
	first.CreatedAt = augustNow.Add(-2 * time.Hour)
	second.CreatedAt = augustNow.Add(-1 * time.Hour)

	f.products.add(&model.Product{
		Name: "Bloc-notes", Category: "papier",
		PriceHT: dec("3.00"), CostPrice: dec("1.00"), StockQuantity: 60, IsActive: true,
	})

	resp := f.run(t, nil)

	require.Len(t, resp.Items, 1)
	// Same priority: the older rule is evaluated first.
	assert.Contains(t, resp.Items[0].Reason, "Première règle")
	assert.Equal(t, "3.15", resp.Items[0].NewPriceHT.StringFixed(2))
}

func TestRunSimulationCategoryFilter(t *testing.T) {
	f := newSimFixture(t, augustNow)
	f.addRule(t, "Rentrée scolaire", 1, &model.SeasonalityParams{
		Months:            []int{8},
		AdjustmentPercent: dec("10"),
	})
	f.products.add(&model.Product{
		Name: "Cahier", Category: "papier",
		PriceHT: dec("10.00"), CostPrice: dec("4.00"), StockQuantity: 10, IsActive: true,
	})
	f.products.add(&model.Product{
		Name: "Feutres", Category: "écriture",
		PriceHT: dec("6.00"), CostPrice: dec("2.00"), StockQuantity: 10, IsActive: true,
	})

	category := "papier"
	resp := f.run(t, &category)

	assert.Equal(t, &category, resp.Category)
	assert.Equal(t, 1, resp.ProductCount)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "11.00", resp.Items[0].NewPriceHT.StringFixed(2))
}

func TestRunSimulationSkipsInactiveAndUnpricedProducts(t *testing.T) {
	f := newSimFixture(t, augustNow)
	f.addRule(t, "Rentrée scolaire", 1, &model.SeasonalityParams{
		Months:            []int{8},
		AdjustmentPercent: dec("10"),
	})
	f.products.add(&model.Product{
		Name: "Produit retiré", Category: "papier",
		PriceHT: dec("10.00"), CostPrice: dec("4.00"), StockQuantity: 10, IsActive: false,
	})
	f.products.add(&model.Product{
		Name: "Prix non renseigné", Category: "papier",
		PriceHT: dec("0.00"), CostPrice: dec("4.00"), StockQuantity: 10, IsActive: true,
	})

	resp := f.run(t, nil)

	assert.Equal(t, 0, resp.ProductCount)
	assert.Empty(t, resp.Items)
}

func TestRunSimulationZeroChangeNotCountedAsAffected(t *testing.T) {
	f := newSimFixture(t, augustNow)
	f.addRule(t, "Gel tarifaire", 1, &model.SeasonalityParams{
		Months:            []int{8},
		AdjustmentPercent: dec("0"),
	})
	f.products.add(&model.Product{
		Name: "Cahier", Category: "papier",
		PriceHT: dec("10.00"), CostPrice: dec("4.00"), StockQuantity: 10, IsActive: true,
	})

	resp := f.run(t, nil)

	// The item is previewed but the price did not move.
	require.Len(t, resp.Items, 1)
	assert.Equal(t, 0, resp.AffectedCount)
	assert.Equal(t, "0.00", resp.AvgChangePct.StringFixed(2))
}

func TestRunSimulationAverageChangeOverAffectedOnly(t *testing.T) {
	f := newSimFixture(t, augustNow)
	f.addRule(t, "Stock critique", 1, &model.LowStockParams{
		Threshold:         5,
		AdjustmentPercent: dec("10"),
	})
	f.addRule(t, "Déstockage", 2, &model.LowRotationParams{
		DaysWithoutSale: 90,
		DiscountPercent: dec("20"),
	})
	recent := augustNow.AddDate(0, 0, -5)
	stale := augustNow.AddDate(0, 0, -365)
	// +10% via low_stock.
	f.products.add(&model.Product{
		Name: "Agenda", Category: "papier",
		PriceHT: dec("10.00"), CostPrice: dec("4.00"),
		StockQuantity: 3, LastSaleAt: &recent, IsActive: true,
	})
	// -20% via low_rotation.
	f.products.add(&model.Product{
		Name: "Presse-papiers", Category: "bureau",
		PriceHT: dec("15.00"), CostPrice: dec("5.00"),
		StockQuantity: 40, LastSaleAt: &stale, IsActive: true,
	})
	// Matches neither.
	f.products.add(&model.Product{
		Name: "Trombones", Category: "bureau",
		PriceHT: dec("1.50"), CostPrice: dec("0.40"),
		StockQuantity: 500, LastSaleAt: &recent, IsActive: true,
	})

	resp := f.run(t, nil)

	assert.Equal(t, 3, resp.ProductCount)
	assert.Equal(t, 2, resp.AffectedCount)
	// (+10 - 20) / 2
	assert.Equal(t, "-5.00", resp.AvgChangePct.StringFixed(2))
}

func TestRunSimulationIgnoresInactiveRules(t *testing.T) {
	f := newSimFixture(t, augustNow)
	rule := f.addRule(t, "Rentrée scolaire", 1, &model.SeasonalityParams{
		Months:            []int{8},
		AdjustmentPercent: dec("10"),
	})
	require.NoError(t, f.rules.SetActive(context.Background(), rule.ID, false))
	f.products.add(&model.Product{
		Name: "Cahier", Category: "papier",
		PriceHT: dec("10.00"), CostPrice: dec("4.00"), StockQuantity: 10, IsActive: true,
	})

	resp := f.run(t, nil)
	assert.Empty(t, resp.Items)
}

func TestRunSimulationInactiveRuleset(t *testing.T) {
	f := newSimFixture(t, augustNow)
	require.NoError(t, f.rulesets.SetActive(context.Background(), f.ruleset.ID, false))

	_, err := f.svc.Run(context.Background(), dto.RunSimulationRequest{RulesetID: f.ruleset.ID.String()})
	assert.True(t, errors.Is(err, apierror.ErrValidation))
}

func TestRunSimulationUnknownRuleset(t *testing.T) {
	f := newSimFixture(t, augustNow)

	_, err := f.svc.Run(context.Background(), dto.RunSimulationRequest{RulesetID: uuid.NewString()})
	assert.True(t, errors.Is(err, apierror.ErrNotFound))
}

func TestRunSimulationBadRulesetID(t *testing.T) {
	f := newSimFixture(t, augustNow)

	_, err := f.svc.Run(context.Background(), dto.RunSimulationRequest{RulesetID: "pas-un-uuid"})
	assert.True(t, errors.Is(err, apierror.ErrValidation))
}

func TestGetSimulationNotFound(t *testing.T) {
	f := newSimFixture(t, augustNow)

	_, err := f.svc.Get(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, apierror.ErrNotFound))
}

func TestListSimulationsFilterByStatus(t *testing.T) {
	f := newSimFixture(t, augustNow)
	f.addRule(t, "Rentrée scolaire", 1, &model.SeasonalityParams{
		Months:            []int{8},
		AdjustmentPercent: dec("10"),
	})
	f.run(t, nil)
	f.run(t, nil)

	resp, err := f.svc.List(context.Background(), dto.SimulationFilter{Status: "completed"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.Total)

	resp, err = f.svc.List(context.Background(), dto.SimulationFilter{Status: "applied"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), resp.Total)
}
