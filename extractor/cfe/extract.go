// Package cfe reads the billing fields of a CFE residential electricity bill
// out of the plain text of its PDF.
package cfe

import (
	"strings"

	"github.com/aqlanhadi/solarpayback/extractor/common"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// Bill is the flat set of fields read from one bill. A field the text does
// not yield is zero (or "" for BilledPeriod), never absent.
type Bill struct {
	BilledPeriod         string          `json:"billed_period" yaml:"billed_period"`
	TotalDue             decimal.Decimal `json:"total_due" yaml:"total_due"`
	TotalEnergyKWh       decimal.Decimal `json:"total_energy_kwh" yaml:"total_energy_kwh"`
	PeriodConsumption    decimal.Decimal `json:"period_consumption" yaml:"period_consumption"`
	BasicKWh             decimal.Decimal `json:"basic_kwh" yaml:"basic_kwh"`
	BasicPrice           decimal.Decimal `json:"basic_price" yaml:"basic_price"`
	BasicSubtotal        decimal.Decimal `json:"basic_subtotal" yaml:"basic_subtotal"`
	IntermediateKWh      decimal.Decimal `json:"intermediate_kwh" yaml:"intermediate_kwh"`
	IntermediatePrice    decimal.Decimal `json:"intermediate_price" yaml:"intermediate_price"`
	IntermediateSubtotal decimal.Decimal `json:"intermediate_subtotal" yaml:"intermediate_subtotal"`
	SurplusKWh           decimal.Decimal `json:"surplus_kwh" yaml:"surplus_kwh"`
	SurplusPrice         decimal.Decimal `json:"surplus_price" yaml:"surplus_price"`
	SurplusSubtotal      decimal.Decimal `json:"surplus_subtotal" yaml:"surplus_subtotal"`
	GovernmentSubsidy    decimal.Decimal `json:"government_subsidy" yaml:"government_subsidy"`
}

// Extract applies every rule to text and never fails.
func Extract(text string) Bill {
	bill, _ := ExtractWithMisses(text)
	return bill
}

// ExtractWithMisses is Extract that also names the fields that fell back to
// their default.
func ExtractWithMisses(text string) (Bill, []string) {
	var bill Bill
	var misses []string

	for _, rule := range loadRules() {
		if !rule.apply(text, &bill) {
			misses = append(misses, rule.Field)
		}
	}

	if len(misses) > 0 {
		log.WithField("fields", misses).Debug("bill fields defaulted")
	}
	return bill, misses
}

func (r Rule) apply(text string, bill *Bill) bool {
	match := r.Pattern.FindStringSubmatch(text)
	if match == nil || r.Group >= len(match) {
		return false
	}
	raw := match[r.Group]

	if r.Text != nil {
		*r.Text(bill) = strings.TrimSpace(raw)
		return true
	}

	value, err := common.ParseAmount(raw)
	if err != nil {
		return false
	}
	*r.Number(bill) = value
	return true
}

// Fields returns the bill keyed by field name.
func (b Bill) Fields() map[string]any {
	fields := make(map[string]any, len(Rules))
	for _, rule := range Rules {
		if rule.Text != nil {
			fields[rule.Field] = *rule.Text(&b)
		} else {
			fields[rule.Field] = *rule.Number(&b)
		}
	}
	return fields
}
