package model

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/Neo52000/ma-papeterie-sub000/internal/apierror"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestSeasonalityParamsValidate(t *testing.T) {
	cases := []struct {
		name   string
		params SeasonalityParams
		ok     bool
	}{
		{"valid", SeasonalityParams{Months: []int{8, 9}, AdjustmentPercent: d("10")}, true},
		{"max markup", SeasonalityParams{Months: []int{1}, AdjustmentPercent: d("300")}, true},
		{"max markdown", SeasonalityParams{Months: []int{1}, AdjustmentPercent: d("-90")}, true},
		{"no months", SeasonalityParams{AdjustmentPercent: d("10")}, false},
		{"month zero", SeasonalityParams{Months: []int{0}, AdjustmentPercent: d("10")}, false},
		{"month thirteen", SeasonalityParams{Months: []int{13}, AdjustmentPercent: d("10")}, false},
		{"markup too high", SeasonalityParams{Months: []int{1}, AdjustmentPercent: d("301")}, false},
		{"markdown too deep", SeasonalityParams{Months: []int{1}, AdjustmentPercent: d("-91")}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.params.Validate()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, apierror.ErrValidation))
			}
		})
	}
}

func TestSeasonalityParamsValidateNormalizesMonths(t *testing.T) {
	p := SeasonalityParams{Months: []int{9, 8, 8, 9}, AdjustmentPercent: d("5")}
	require.NoError(t, p.Validate())
	assert.Equal(t, []int{8, 9}, p.Months)
}

func TestLowStockParamsValidate(t *testing.T) {
	assert.NoError(t, (&LowStockParams{Threshold: 0, AdjustmentPercent: d("10")}).Validate())
	assert.Error(t, (&LowStockParams{Threshold: -1, AdjustmentPercent: d("10")}).Validate())
	assert.Error(t, (&LowStockParams{Threshold: 5, AdjustmentPercent: d("500")}).Validate())
}

func TestLowRotationParamsValidate(t *testing.T) {
	assert.NoError(t, (&LowRotationParams{DaysWithoutSale: 1, DiscountPercent: d("0")}).Validate())
	assert.NoError(t, (&LowRotationParams{DaysWithoutSale: 90, DiscountPercent: d("90")}).Validate())
	assert.Error(t, (&LowRotationParams{DaysWithoutSale: 0, DiscountPercent: d("10")}).Validate())
	assert.Error(t, (&LowRotationParams{DaysWithoutSale: 90, DiscountPercent: d("-1")}).Validate())
	assert.Error(t, (&LowRotationParams{DaysWithoutSale: 90, DiscountPercent: d("91")}).Validate())
}

func TestMarginGuardParamsValidate(t *testing.T) {
	assert.NoError(t, (&MarginGuardParams{MinMarginPercent: d("0")}).Validate())
	assert.NoError(t, (&MarginGuardParams{MinMarginPercent: d("99.99")}).Validate())
	assert.Error(t, (&MarginGuardParams{MinMarginPercent: d("-1")}).Validate())
	// A 100% floor has no finite price.
	assert.Error(t, (&MarginGuardParams{MinMarginPercent: d("100")}).Validate())
}

func TestSetParamsRoundTrip(t *testing.T) {
	rule := &Rule{Name: "Déstockage"}
	require.NoError(t, rule.SetParams(&LowRotationParams{DaysWithoutSale: 90, DiscountPercent: d("20")}))

	assert.Equal(t, RuleLowRotation, rule.RuleType)

	decoded, err := rule.DecodeParams()
	require.NoError(t, err)
	got, ok := decoded.(*LowRotationParams)
	require.True(t, ok)
	assert.Equal(t, 90, got.DaysWithoutSale)
	assert.True(t, got.DiscountPercent.Equal(d("20")))
}

func TestSetParamsRejectsInvalid(t *testing.T) {
	rule := &Rule{Name: "Déstockage"}
	err := rule.SetParams(&LowRotationParams{DaysWithoutSale: 0, DiscountPercent: d("20")})
	assert.True(t, errors.Is(err, apierror.ErrValidation))
	assert.Empty(t, rule.Params)
}

func TestDecodeParamsForRejectsUnknownField(t *testing.T) {
	_, err := DecodeParamsFor(RuleLowStock, json.RawMessage(`{"threshold":3,"adjustment_percent":10,"extra":true}`))
	assert.True(t, errors.Is(err, apierror.ErrValidation))
}

func TestDecodeParamsForRejectsUnknownType(t *testing.T) {
	_, err := DecodeParamsFor(RuleType("flash_sale"), json.RawMessage(`{}`))
	assert.True(t, errors.Is(err, apierror.ErrValidation))
}

func TestDecodeParamsRejectsCrossTypePayload(t *testing.T) {
	rule := &Rule{Name: "Stock critique"}
	require.NoError(t, rule.SetParams(&LowStockParams{Threshold: 5, AdjustmentPercent: d("10")}))

	// Swap the discriminator without touching the payload.
	rule.RuleType = RuleSeasonality
	_, err := rule.DecodeParams()
	assert.Error(t, err)
}
