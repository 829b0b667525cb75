package service

import "github.com/shopspring/decimal"

var (
	one        = decimal.NewFromInt(1)
	oneHundred = decimal.NewFromInt(100)
	// vatFactor is the French standard rate: price_ttc = round(price_ht × 1.20, 2).
	// Per-product VAT rates live in the catalog service and are not surfaced
	// through the pricing contract.
	vatFactor = decimal.NewFromFloat(1.20)
)

func priceTTC(priceHT decimal.Decimal) decimal.Decimal {
	return priceHT.Mul(vatFactor).Round(2)
}

// marginPercent computes the gross margin (price − cost) / price × 100,
// rounded to 2 decimals. Zero-price rows are filtered out of the eligible
// set, but guard against them anyway.
func marginPercent(price, cost decimal.Decimal) decimal.Decimal {
	if price.IsZero() {
		return decimal.Zero
	}
	return price.Sub(cost).Div(price).Mul(oneHundred).Round(2)
}

// changePercent computes (new − old) / old × 100, rounded to 2 decimals.
func changePercent(oldPrice, newPrice decimal.Decimal) decimal.Decimal {
	if oldPrice.IsZero() {
		return decimal.Zero
	}
	return newPrice.Sub(oldPrice).Div(oldPrice).Mul(oneHundred).Round(2)
}
