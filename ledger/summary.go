package ledger

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Summary is the payback position of a view against an investment goal.
type Summary struct {
	Goal             decimal.Decimal `json:"goal" yaml:"goal"`
	Periods          int             `json:"periods" yaml:"periods"`
	Cumulative       decimal.Decimal `json:"cumulative_savings" yaml:"cumulative_savings"`
	Remaining        decimal.Decimal `json:"remaining" yaml:"remaining"`
	PercentRecovered decimal.Decimal `json:"percent_recovered" yaml:"percent_recovered"`
	AverageMonthly   decimal.Decimal `json:"average_monthly_savings" yaml:"average_monthly_savings"`
	MonthsRemaining  decimal.Decimal `json:"months_remaining" yaml:"months_remaining"`
}

// Summarize totals the savings of a view. Every ratio whose divisor is zero
// is reported as zero, and so are the months remaining while the savings
// are not positive.
func Summarize(view View, goal decimal.Decimal) Summary {
	s := Summary{
		Goal:             goal,
		Periods:          len(view.Periods),
		Cumulative:       decimal.Zero,
		Remaining:        goal,
		PercentRecovered: decimal.Zero,
		AverageMonthly:   decimal.Zero,
		MonthsRemaining:  decimal.Zero,
	}
	if s.Periods == 0 {
		return s
	}

	for _, p := range view.Periods {
		s.Cumulative = s.Cumulative.Add(p.TotalSavings)
	}

	s.Remaining = decimal.Max(decimal.Zero, goal.Sub(s.Cumulative))
	if goal.IsPositive() {
		s.PercentRecovered = s.Cumulative.Div(goal).Mul(hundred)
	}
	s.AverageMonthly = s.Cumulative.Div(decimal.NewFromInt(int64(s.Periods)))
	if s.Cumulative.IsPositive() {
		s.MonthsRemaining = s.Remaining.Div(s.AverageMonthly)
	}
	return s
}
