package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqlanhadi/solarpayback/dashboard"
	"github.com/aqlanhadi/solarpayback/ledger"
)

func TestRender(t *testing.T) {
	l := ledger.New()
	l.Append(ledger.Period{Label: "15 MAR 24 al 15 MAY 24", TotalSavings: decimal.NewFromInt(950)})
	l.Append(ledger.Period{Label: "Año nuevo", TotalSavings: decimal.NewFromInt(1200)})

	out, err := Render(dashboard.Build(l.View(), decimal.NewFromInt(100000)), time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestRender_Empty(t *testing.T) {
	out, err := Render(dashboard.Build(ledger.New().View(), decimal.NewFromInt(100000)), time.Now())

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestMoney(t *testing.T) {
	tests := map[string]string{
		"0":         "$0.00",
		"12.5":      "$12.50",
		"1234.567":  "$1,234.57",
		"100000":    "$100,000.00",
		"-2500.1":   "-$2,500.10",
		"999999.99": "$999,999.99",
		"999.999":   "$1,000.00",
		"-0.001":    "$0.00",
	}
	for in, want := range tests {
		assert.Equal(t, want, money(decimal.RequireFromString(in)), in)
	}
}
