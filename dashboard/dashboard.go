// Package dashboard derives the chart and table data shown for a ledger
// view. Nothing here draws; every output is plain values.
package dashboard

import (
	"github.com/shopspring/decimal"

	"github.com/aqlanhadi/solarpayback/ledger"
)

// Slice names of the progress chart.
const (
	SliceRecovered = "recovered"
	SliceRemaining = "remaining"
)

// Point is one period on the savings series.
type Point struct {
	Period string          `json:"period" yaml:"period"`
	Value  decimal.Decimal `json:"value" yaml:"value"`
}

// Slice is one named share of a whole.
type Slice struct {
	Name  string          `json:"name" yaml:"name"`
	Value decimal.Decimal `json:"value" yaml:"value"`
}

// Comparison puts the solar bill next to what the grid would have charged.
type Comparison struct {
	Period     string          `json:"period" yaml:"period"`
	SolarTotal decimal.Decimal `json:"solar_total" yaml:"solar_total"`
	GridTotal  decimal.Decimal `json:"grid_total" yaml:"grid_total"`
}

type Best struct {
	Period  string          `json:"period" yaml:"period"`
	Number  int64           `json:"period_number" yaml:"period_number"`
	Savings decimal.Decimal `json:"savings" yaml:"savings"`
}

type Dashboard struct {
	Summary       ledger.Summary `json:"summary" yaml:"summary"`
	Savings       []Point        `json:"savings_series" yaml:"savings_series"`
	Progress      []Slice        `json:"progress" yaml:"progress"`
	CostBreakdown []Slice        `json:"cost_breakdown" yaml:"cost_breakdown"`
	Comparison    []Comparison   `json:"bill_comparison" yaml:"bill_comparison"`
	BestPeriod    *Best          `json:"best_period,omitempty" yaml:"best_period,omitempty"`

	Columns []string `json:"columns" yaml:"columns"`
	Rows    [][]any  `json:"rows" yaml:"rows"`
}

// Build computes every output for view against goal. Charts are empty and
// BestPeriod is nil when the view has no periods; the summary is always set.
func Build(view ledger.View, goal decimal.Decimal) Dashboard {
	summary := ledger.Summarize(view, goal)
	db := Dashboard{
		Summary:       summary,
		Savings:       []Point{},
		Progress:      []Slice{},
		CostBreakdown: []Slice{},
		Comparison:    []Comparison{},
		Columns:       view.Columns,
		Rows:          view.Rows(),
	}
	if len(view.Periods) == 0 {
		return db
	}

	db.Progress = []Slice{
		{Name: SliceRecovered, Value: summary.Cumulative},
		{Name: SliceRemaining, Value: summary.Remaining},
	}

	for _, column := range ledger.TierColumns {
		total := decimal.Zero
		for _, p := range view.Periods {
			v, _ := p.Amount(column)
			total = total.Add(v)
		}
		db.CostBreakdown = append(db.CostBreakdown, Slice{Name: column, Value: total})
	}

	for _, p := range view.Periods {
		db.Savings = append(db.Savings, Point{Period: p.Label, Value: p.TotalSavings})
		db.Comparison = append(db.Comparison, Comparison{
			Period:     p.Label,
			SolarTotal: p.TotalSolar,
			GridTotal:  p.TotalGrid,
		})
		if db.BestPeriod == nil || p.TotalSavings.GreaterThan(db.BestPeriod.Savings) {
			db.BestPeriod = &Best{Period: p.Label, Number: p.Number, Savings: p.TotalSavings}
		}
	}

	return db
}
