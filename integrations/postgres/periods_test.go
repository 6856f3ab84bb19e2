package postgres

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/aqlanhadi/solarpayback/ledger"
)

func TestPeriodArgs_MatchPlaceholders(t *testing.T) {
	p := ledger.Period{
		Label:        "Enero",
		Number:       4,
		Source:       "casa",
		TotalSavings: decimal.NewFromInt(120),
	}

	args := periodArgs(2, p)

	assert.Equal(t, strings.Count(insertPeriodSQL, "$"), len(args))
	assert.Equal(t, 2, args[0])
	assert.Equal(t, int64(4), args[1])
	assert.Equal(t, "Enero", args[2])
	assert.Equal(t, "casa", args[3])
	assert.True(t, decimal.NewFromInt(120).Equal(args[len(args)-1].(decimal.Decimal)))
}

func TestConnect_InvalidURL(t *testing.T) {
	_, err := Connect(context.Background(), "postgres://%zz")

	assert.Error(t, err)
}
