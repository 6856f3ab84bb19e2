package ledger

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Column headers of the period sheet.
const (
	ColPeriods = "Periodos"
	ColPeriod  = "Periodo"
	ColNumber  = "No. Periodo"
	ColSource  = "Origen"

	ColBasicSolar         = "Básico Solar"
	ColIntermediate1Solar = "Intermedio 1 Solar"
	ColIntermediate2Solar = "Intermedio 2 Solar"
	ColSurplusSolar       = "Excedente Solar"
	ColBasicGrid          = "Básico CFE"
	ColIntermediate1Grid  = "Intermedio 1 CFE"
	ColIntermediate2Grid  = "Intermedio 2 CFE"
	ColSurplusGrid        = "Excedente CFE"
	ColReturnedKWh        = "Mwh Devueltos"
	ColSubtotalSolar      = "Subtotal Solar"
	ColTaxSolar           = "IVA Solar"
	ColTotalSolar         = "Total de recibo Solar"
	ColSubtotalGrid       = "Subtotal CFE"
	ColTaxGrid            = "IVA CFE"
	ColTotalGrid          = "Subtotal CFE.1"
	ColTotalSavings       = "Ahorro Total"
)

// Period is one row of the ledger: a billing period with its tariff figures.
// Grid tier fields hold cost, solar tier fields hold the amounts as entered.
type Period struct {
	Label  string `json:"period" yaml:"period"`
	Number int64  `json:"period_number" yaml:"period_number"`
	Source string `json:"source,omitempty" yaml:"source,omitempty"`

	BasicSolar         decimal.Decimal `json:"basic_solar" yaml:"basic_solar"`
	Intermediate1Solar decimal.Decimal `json:"intermediate1_solar" yaml:"intermediate1_solar"`
	Intermediate2Solar decimal.Decimal `json:"intermediate2_solar" yaml:"intermediate2_solar"`
	SurplusSolar       decimal.Decimal `json:"surplus_solar" yaml:"surplus_solar"`
	BasicGrid          decimal.Decimal `json:"basic_grid_cost" yaml:"basic_grid_cost"`
	Intermediate1Grid  decimal.Decimal `json:"intermediate1_grid_cost" yaml:"intermediate1_grid_cost"`
	Intermediate2Grid  decimal.Decimal `json:"intermediate2_grid_cost" yaml:"intermediate2_grid_cost"`
	SurplusGrid        decimal.Decimal `json:"surplus_grid_cost" yaml:"surplus_grid_cost"`
	ReturnedKWh        decimal.Decimal `json:"returned_kwh" yaml:"returned_kwh"`

	SubtotalSolar decimal.Decimal `json:"subtotal_solar" yaml:"subtotal_solar"`
	TaxSolar      decimal.Decimal `json:"tax_solar" yaml:"tax_solar"`
	TotalSolar    decimal.Decimal `json:"total_solar" yaml:"total_solar"`
	SubtotalGrid  decimal.Decimal `json:"subtotal_grid" yaml:"subtotal_grid"`
	TaxGrid       decimal.Decimal `json:"tax_grid" yaml:"tax_grid"`
	TotalGrid     decimal.Decimal `json:"total_grid" yaml:"total_grid"`
	TotalSavings  decimal.Decimal `json:"total_savings" yaml:"total_savings"`

	// Raw is the cell text of a row read from the workbook, keyed by header.
	// Nil for rows created in this process.
	Raw map[string]string `json:"-" yaml:"-"`
}

type amountColumn struct {
	name  string
	field func(*Period) *decimal.Decimal
}

var amountColumns = []amountColumn{
	{ColBasicSolar, func(p *Period) *decimal.Decimal { return &p.BasicSolar }},
	{ColIntermediate1Solar, func(p *Period) *decimal.Decimal { return &p.Intermediate1Solar }},
	{ColIntermediate2Solar, func(p *Period) *decimal.Decimal { return &p.Intermediate2Solar }},
	{ColSurplusSolar, func(p *Period) *decimal.Decimal { return &p.SurplusSolar }},
	{ColBasicGrid, func(p *Period) *decimal.Decimal { return &p.BasicGrid }},
	{ColIntermediate1Grid, func(p *Period) *decimal.Decimal { return &p.Intermediate1Grid }},
	{ColIntermediate2Grid, func(p *Period) *decimal.Decimal { return &p.Intermediate2Grid }},
	{ColSurplusGrid, func(p *Period) *decimal.Decimal { return &p.SurplusGrid }},
	{ColReturnedKWh, func(p *Period) *decimal.Decimal { return &p.ReturnedKWh }},
	{ColSubtotalSolar, func(p *Period) *decimal.Decimal { return &p.SubtotalSolar }},
	{ColTaxSolar, func(p *Period) *decimal.Decimal { return &p.TaxSolar }},
	{ColTotalSolar, func(p *Period) *decimal.Decimal { return &p.TotalSolar }},
	{ColSubtotalGrid, func(p *Period) *decimal.Decimal { return &p.SubtotalGrid }},
	{ColTaxGrid, func(p *Period) *decimal.Decimal { return &p.TaxGrid }},
	{ColTotalGrid, func(p *Period) *decimal.Decimal { return &p.TotalGrid }},
	{ColTotalSavings, func(p *Period) *decimal.Decimal { return &p.TotalSavings }},
}

func findAmountColumn(name string) (amountColumn, bool) {
	for _, c := range amountColumns {
		if c.name == name {
			return c, true
		}
	}
	return amountColumn{}, false
}

// TierColumns are the eight per-tier cost columns, solar first.
var TierColumns = []string{
	ColBasicSolar, ColIntermediate1Solar, ColIntermediate2Solar, ColSurplusSolar,
	ColBasicGrid, ColIntermediate1Grid, ColIntermediate2Grid, ColSurplusGrid,
}

// Amount returns the value of an amount column, false if column is not one.
func (p Period) Amount(column string) (decimal.Decimal, bool) {
	c, ok := findAmountColumn(column)
	if !ok {
		return decimal.Zero, false
	}
	return *c.field(&p), true
}

func canonicalColumns(labelColumn string) []string {
	cols := []string{labelColumn, ColNumber}
	for _, c := range amountColumns {
		cols = append(cols, c.name)
	}
	return cols
}

// schema is what a sheet's header says about how to read and write its cells.
type schema struct {
	labelColumn string
	hasSource   bool
	invalid     map[string]bool
}

// cell returns the value a column holds for p: a string, an int64, a
// decimal.Decimal, or nil for an empty cell.
func (s schema) cell(p Period, column string) any {
	switch column {
	case s.labelColumn:
		return p.Label
	case ColSource:
		if s.hasSource {
			return p.Source
		}
	}

	raw := p.Raw[column]
	if p.Raw != nil && strings.TrimSpace(raw) == "" {
		return nil
	}
	if s.invalid[column] && p.Raw != nil {
		return raw
	}

	if column == ColNumber {
		return p.Number
	}
	if v, ok := p.Amount(column); ok {
		return v
	}
	if raw == "" {
		return nil
	}
	return raw
}
