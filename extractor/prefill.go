package extractor

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/aqlanhadi/solarpayback/extractor/cfe"
	"github.com/aqlanhadi/solarpayback/ledger"
	"github.com/aqlanhadi/solarpayback/tariff"
)

// Prefill holds the input defaults a bill suggests for a new period. Solar
// amounts are never read from the bill.
type Prefill struct {
	PeriodLabel          string          `json:"period" yaml:"period"`
	BasicGridKWh         decimal.Decimal `json:"basic_grid_kwh" yaml:"basic_grid_kwh"`
	Intermediate1GridKWh decimal.Decimal `json:"intermediate1_grid_kwh" yaml:"intermediate1_grid_kwh"`
	Intermediate2GridKWh decimal.Decimal `json:"intermediate2_grid_kwh" yaml:"intermediate2_grid_kwh"`
	SurplusGridKWh       decimal.Decimal `json:"surplus_grid_kwh" yaml:"surplus_grid_kwh"`
	BasicPrice           decimal.Decimal `json:"basic_price" yaml:"basic_price"`
	IntermediatePrice    decimal.Decimal `json:"intermediate_price" yaml:"intermediate_price"`
	SurplusPrice         decimal.Decimal `json:"surplus_price" yaml:"surplus_price"`
	ReturnedKWh          decimal.Decimal `json:"returned_kwh" yaml:"returned_kwh"`
}

// NewPrefill splits the period consumption across the basic and
// intermediate-1 blocks and takes surplus as printed on the bill. Whatever
// consumption is left over is treated as returned energy and may be
// negative.
func NewPrefill(bill cfe.Bill) Prefill {
	consumption := bill.PeriodConsumption
	basic, intermediate1 := tariff.Allocate(consumption)
	surplus := bill.SurplusKWh

	return Prefill{
		PeriodLabel:          strings.ReplaceAll(bill.BilledPeriod, " - ", " al "),
		BasicGridKWh:         basic,
		Intermediate1GridKWh: intermediate1,
		Intermediate2GridKWh: decimal.Zero,
		SurplusGridKWh:       surplus,
		BasicPrice:           bill.BasicPrice,
		IntermediatePrice:    bill.IntermediatePrice,
		SurplusPrice:         bill.SurplusPrice,
		ReturnedKWh:          consumption.Sub(basic).Sub(intermediate1).Sub(surplus),
	}
}

// Submission fills a ledger submission with the prefilled values. Solar
// amounts are left empty for the user.
func (p Prefill) Submission() ledger.Submission {
	return ledger.Submission{
		Period:                p.PeriodLabel,
		BasicGridKWh:          formValue(p.BasicGridKWh),
		Intermediate1GridKWh:  formValue(p.Intermediate1GridKWh),
		Intermediate2GridCost: formValue(p.Intermediate2GridKWh),
		SurplusGridKWh:        formValue(p.SurplusGridKWh),
		BasicPrice:            formValue(p.BasicPrice),
		IntermediatePrice:     formValue(p.IntermediatePrice),
		SurplusPrice:          formValue(p.SurplusPrice),
		ReturnedKWh:           formValue(p.ReturnedKWh),
	}
}

func formValue(d decimal.Decimal) ledger.FormValue {
	return ledger.FormValue(d.String())
}
