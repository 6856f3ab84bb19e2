package ledger

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aqlanhadi/solarpayback/extractor/common"
	"github.com/aqlanhadi/solarpayback/tariff"
	"github.com/shopspring/decimal"
)

// ErrInvalidSubmission wraps every reason a submission is rejected.
var ErrInvalidSubmission = errors.New("invalid submission")

// FormValue is a raw form input. JSON numbers and strings both decode into it.
type FormValue string

func (v *FormValue) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*v = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = FormValue(s)
	default:
		*v = FormValue(b)
	}
	return nil
}

// Submission is the input for one new period: solar amounts, grid
// quantities, unit prices and the energy returned to the grid. Empty values
// count as zero.
type Submission struct {
	Period string `json:"period"`
	Source string `json:"source,omitempty"`

	BasicSolar         FormValue `json:"basic_solar"`
	Intermediate1Solar FormValue `json:"intermediate1_solar"`
	Intermediate2Solar FormValue `json:"intermediate2_solar"`
	SurplusSolar       FormValue `json:"surplus_solar"`

	BasicGridKWh          FormValue `json:"basic_grid_kwh"`
	Intermediate1GridKWh  FormValue `json:"intermediate1_grid_kwh"`
	Intermediate2GridCost FormValue `json:"intermediate2_grid_cost"`
	SurplusGridKWh        FormValue `json:"surplus_grid_kwh"`

	BasicPrice        FormValue `json:"basic_price"`
	IntermediatePrice FormValue `json:"intermediate_price"`
	SurplusPrice      FormValue `json:"surplus_price"`

	ReturnedKWh FormValue `json:"returned_kwh"`
}

type submissionParser struct {
	err error
}

func (sp *submissionParser) value(name string, v FormValue) decimal.Decimal {
	if sp.err != nil {
		return decimal.Zero
	}
	d, err := common.ParseAmount(string(v))
	if errors.Is(err, common.ErrEmptyValue) {
		return decimal.Zero
	}
	if err != nil {
		sp.err = fmt.Errorf("%w: %s: %q is not a number", ErrInvalidSubmission, name, string(v))
		return decimal.Zero
	}
	if d.IsNegative() {
		sp.err = fmt.Errorf("%w: %s: must not be negative", ErrInvalidSubmission, name)
		return decimal.Zero
	}
	return d
}

// ToPeriod coerces every value and prices the period. Any value that does not
// coerce rejects the whole submission. The returned period has no number;
// Append assigns it.
func (s Submission) ToPeriod() (Period, error) {
	sp := &submissionParser{}

	solar := tariff.Tiers{
		Basic:         sp.value("basic_solar", s.BasicSolar),
		Intermediate1: sp.value("intermediate1_solar", s.Intermediate1Solar),
		Intermediate2: sp.value("intermediate2_solar", s.Intermediate2Solar),
		Surplus:       sp.value("surplus_solar", s.SurplusSolar),
	}
	grid := tariff.Tiers{
		Basic:         sp.value("basic_grid_kwh", s.BasicGridKWh),
		Intermediate1: sp.value("intermediate1_grid_kwh", s.Intermediate1GridKWh),
		Intermediate2: sp.value("intermediate2_grid_cost", s.Intermediate2GridCost),
		Surplus:       sp.value("surplus_grid_kwh", s.SurplusGridKWh),
	}
	prices := tariff.Prices{
		Basic:        sp.value("basic_price", s.BasicPrice),
		Intermediate: sp.value("intermediate_price", s.IntermediatePrice),
		Surplus:      sp.value("surplus_price", s.SurplusPrice),
	}
	returned := sp.value("returned_kwh", s.ReturnedKWh)
	if sp.err != nil {
		return Period{}, sp.err
	}

	return NewPeriod(s.Period, s.Source, solar, grid, prices, returned), nil
}

// NewPeriod builds a period with every derived field computed.
func NewPeriod(label, source string, solar, gridQty tariff.Tiers, prices tariff.Prices, returnedKWh decimal.Decimal) Period {
	result := tariff.Compute(solar, gridQty, prices, returnedKWh)
	return Period{
		Label:  label,
		Source: source,

		BasicSolar:         solar.Basic,
		Intermediate1Solar: solar.Intermediate1,
		Intermediate2Solar: solar.Intermediate2,
		SurplusSolar:       solar.Surplus,
		BasicGrid:          result.GridCost.Basic,
		Intermediate1Grid:  result.GridCost.Intermediate1,
		Intermediate2Grid:  result.GridCost.Intermediate2,
		SurplusGrid:        result.GridCost.Surplus,
		ReturnedKWh:        returnedKWh,

		SubtotalSolar: result.Solar.Subtotal,
		TaxSolar:      result.Solar.Tax,
		TotalSolar:    result.Solar.Total,
		SubtotalGrid:  result.Grid.Subtotal,
		TaxGrid:       result.Grid.Tax,
		TotalGrid:     result.Grid.Total,
		TotalSavings:  result.Savings,
	}
}
