// Package tariff implements the two-tier residential CFE billing model used to
// price a billing period: a basic block up to 150 kWh, an intermediate block
// up to 350 kWh, surplus beyond that, and a flat 16% IVA.
package tariff

import "github.com/shopspring/decimal"

// Breakpoints and tax of the tariff. These are the contract of the model.
const (
	BasicLimitKWh        = 150
	IntermediateLimitKWh = 350
	TaxRatePercent       = 16
)

var (
	basicLimit        = decimal.NewFromInt(BasicLimitKWh)
	intermediateLimit = decimal.NewFromInt(IntermediateLimitKWh)
	intermediateSpan  = intermediateLimit.Sub(basicLimit)
	taxRate           = decimal.New(TaxRatePercent, -2)
)

// TaxRate returns the IVA rate applied to every subtotal (0.16).
func TaxRate() decimal.Decimal {
	return taxRate
}

// Tiers holds one value per tariff block.
type Tiers struct {
	Basic         decimal.Decimal `json:"basic" yaml:"basic"`
	Intermediate1 decimal.Decimal `json:"intermediate_1" yaml:"intermediate_1"`
	Intermediate2 decimal.Decimal `json:"intermediate_2" yaml:"intermediate_2"`
	Surplus       decimal.Decimal `json:"surplus" yaml:"surplus"`
}

// Sum adds the four blocks.
func (t Tiers) Sum() decimal.Decimal {
	return t.Basic.Add(t.Intermediate1).Add(t.Intermediate2).Add(t.Surplus)
}

// Prices are the unit prices per kWh. Intermediate 2 has no price of its own.
type Prices struct {
	Basic        decimal.Decimal `json:"basic" yaml:"basic"`
	Intermediate decimal.Decimal `json:"intermediate" yaml:"intermediate"`
	Surplus      decimal.Decimal `json:"surplus" yaml:"surplus"`
}

// Bill is a subtotal with its IVA applied.
type Bill struct {
	Subtotal decimal.Decimal `json:"subtotal" yaml:"subtotal"`
	Tax      decimal.Decimal `json:"tax" yaml:"tax"`
	Total    decimal.Decimal `json:"total" yaml:"total"`
}

// NewBill applies the tax rate to subtotal.
func NewBill(subtotal decimal.Decimal) Bill {
	tax := subtotal.Mul(taxRate)
	return Bill{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}
}

// Result is everything a billing period stores about its tariff.
type Result struct {
	Solar    Bill            `json:"solar" yaml:"solar"`
	GridCost Tiers           `json:"grid_cost" yaml:"grid_cost"`
	Grid     Bill            `json:"grid" yaml:"grid"`
	Savings  decimal.Decimal `json:"savings" yaml:"savings"`
}

// GridCost prices metered grid quantities. Intermediate 2 is taken as an
// amount already in currency and is not multiplied by any price.
func GridCost(qty Tiers, prices Prices) Tiers {
	return Tiers{
		Basic:         qty.Basic.Mul(prices.Basic),
		Intermediate1: qty.Intermediate1.Mul(prices.Intermediate),
		Intermediate2: qty.Intermediate2,
		Surplus:       qty.Surplus.Mul(prices.Surplus),
	}
}

// Savings values energy returned to the grid at the tiered prices.
func Savings(returnedKWh decimal.Decimal, prices Prices) decimal.Decimal {
	switch {
	case returnedKWh.LessThanOrEqual(basicLimit):
		return returnedKWh.Mul(prices.Basic)
	case returnedKWh.LessThanOrEqual(intermediateLimit):
		return basicLimit.Mul(prices.Basic).
			Add(returnedKWh.Sub(basicLimit).Mul(prices.Intermediate))
	default:
		return basicLimit.Mul(prices.Basic).
			Add(intermediateSpan.Mul(prices.Intermediate)).
			Add(returnedKWh.Sub(intermediateLimit).Mul(prices.Surplus))
	}
}

// Compute prices one billing period. Solar tiers are already currency
// amounts and are summed as they are.
func Compute(solar Tiers, gridQty Tiers, prices Prices, returnedKWh decimal.Decimal) Result {
	gridCost := GridCost(gridQty, prices)
	return Result{
		Solar:    NewBill(solar.Sum()),
		GridCost: gridCost,
		Grid:     NewBill(gridCost.Sum()),
		Savings:  Savings(returnedKWh, prices),
	}
}

// Allocate splits a period's metered consumption into the basic and
// intermediate-1 blocks. Anything above the intermediate limit is left for
// the caller to place.
func Allocate(consumption decimal.Decimal) (basic, intermediate1 decimal.Decimal) {
	if consumption.LessThanOrEqual(basicLimit) {
		return consumption, decimal.Zero
	}
	if consumption.GreaterThan(intermediateLimit) {
		return basicLimit, intermediateSpan
	}
	return basicLimit, consumption.Sub(basicLimit)
}
