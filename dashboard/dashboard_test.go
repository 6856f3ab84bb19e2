package dashboard

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqlanhadi/solarpayback/ledger"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sampleLedger() *ledger.Ledger {
	l := ledger.New()
	for _, p := range []ledger.Period{
		{Label: "Enero", BasicSolar: d("10"), BasicGrid: d("100"), TotalSolar: d("11.6"), TotalGrid: d("116"), TotalSavings: d("100")},
		{Label: "Febrero", BasicSolar: d("20"), SurplusGrid: d("50"), TotalSolar: d("23.2"), TotalGrid: d("58"), TotalSavings: d("300")},
		{Label: "Marzo", Intermediate2Grid: d("7"), TotalSolar: d("0"), TotalGrid: d("8.12"), TotalSavings: d("300")},
	} {
		l.Append(p)
	}
	return l
}

func TestBuild(t *testing.T) {
	db := Build(sampleLedger().View(), d("1000"))

	assert.True(t, d("700").Equal(db.Summary.Cumulative))
	require.Len(t, db.Savings, 3)
	assert.Equal(t, "Febrero", db.Savings[1].Period)
	assert.True(t, d("300").Equal(db.Savings[1].Value))

	require.Len(t, db.Progress, 2)
	assert.Equal(t, SliceRecovered, db.Progress[0].Name)
	assert.True(t, d("700").Equal(db.Progress[0].Value))
	assert.True(t, d("300").Equal(db.Progress[1].Value))

	require.Len(t, db.Comparison, 3)
	assert.True(t, d("116").Equal(db.Comparison[0].GridTotal))
	assert.True(t, d("11.6").Equal(db.Comparison[0].SolarTotal))

	assert.Len(t, db.Rows, 3)
	assert.Equal(t, db.Columns, sampleLedger().Columns())
}

func TestBuild_CostBreakdown(t *testing.T) {
	db := Build(sampleLedger().View(), d("1000"))

	require.Len(t, db.CostBreakdown, 8)
	totals := map[string]decimal.Decimal{}
	for _, s := range db.CostBreakdown {
		totals[s.Name] = s.Value
	}
	assert.True(t, d("30").Equal(totals[ledger.ColBasicSolar]))
	assert.True(t, d("100").Equal(totals[ledger.ColBasicGrid]))
	assert.True(t, d("7").Equal(totals[ledger.ColIntermediate2Grid]))
	assert.True(t, d("50").Equal(totals[ledger.ColSurplusGrid]))
	assert.True(t, totals[ledger.ColSurplusSolar].IsZero())
}

func TestBuild_BestPeriodIsFirstMaximum(t *testing.T) {
	db := Build(sampleLedger().View(), d("1000"))

	require.NotNil(t, db.BestPeriod)
	assert.Equal(t, "Febrero", db.BestPeriod.Period)
	assert.Equal(t, int64(2), db.BestPeriod.Number)
}

func TestBuild_EmptyView(t *testing.T) {
	db := Build(ledger.New().View(), d("1000"))

	assert.Nil(t, db.BestPeriod)
	assert.Empty(t, db.Savings)
	assert.Empty(t, db.Progress)
	assert.Empty(t, db.CostBreakdown)
	assert.True(t, d("1000").Equal(db.Summary.Remaining))
}

func TestBuild_FilteredView(t *testing.T) {
	view := sampleLedger().Filter(ledger.Filter{Periods: []string{"Marzo"}})

	db := Build(view, d("1000"))

	require.NotNil(t, db.BestPeriod)
	assert.Equal(t, "Marzo", db.BestPeriod.Period)
	assert.Len(t, db.Savings, 1)
}
