package cfe

import (
	_ "embed"
	"fmt"
	"regexp"
	"slices"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Field names, as exposed in JSON and in miss reports.
const (
	FieldBilledPeriod         = "billed_period"
	FieldTotalDue             = "total_due"
	FieldTotalEnergyKWh       = "total_energy_kwh"
	FieldPeriodConsumption    = "period_consumption"
	FieldBasicKWh             = "basic_kwh"
	FieldBasicPrice           = "basic_price"
	FieldBasicSubtotal        = "basic_subtotal"
	FieldIntermediateKWh      = "intermediate_kwh"
	FieldIntermediatePrice    = "intermediate_price"
	FieldIntermediateSubtotal = "intermediate_subtotal"
	FieldSurplusKWh           = "surplus_kwh"
	FieldSurplusPrice         = "surplus_price"
	FieldSurplusSubtotal      = "surplus_subtotal"
	FieldGovernmentSubsidy    = "government_subsidy"
)

// Rule locates one bill field: the first match of Pattern anywhere in the
// text, read from capture group Group. Exactly one of Number or Text is set
// and points at the Bill field the value lands in.
//
// Fields that share a label (the Básico, Intermedio and Excedente rows) are
// told apart only by which group of the shared pattern they read. That ties
// the rules to one bill layout; a moved column silently yields the wrong
// number rather than a miss.
type Rule struct {
	Field   string
	Pattern *regexp.Regexp
	Group   int
	Number  func(*Bill) *decimal.Decimal
	Text    func(*Bill) *string
}

//go:embed patterns.yaml
var patternsYAML []byte

var defaultPatterns = mustLoadPatterns(patternsYAML)

func mustLoadPatterns(b []byte) map[string]string {
	var patterns map[string]string
	if err := yaml.Unmarshal(b, &patterns); err != nil {
		panic(fmt.Sprintf("cfe: bad embedded patterns: %v", err))
	}
	return patterns
}

// dotAll compiles p with '.' also matching newlines, so a pattern may span
// the row breaks of the text dump.
func dotAll(p string) (*regexp.Regexp, error) {
	return regexp.Compile(`(?s)` + p)
}

func defaultPattern(field string) *regexp.Regexp {
	re, err := dotAll(defaultPatterns[field])
	if err != nil {
		panic(fmt.Sprintf("cfe: bad default pattern for %s: %v", field, err))
	}
	return re
}

// loadRules returns Rules with the pattern of any field configured under
// bill.cfe.patterns replaced. An override that does not compile is ignored.
func loadRules() []Rule {
	rules := slices.Clone(Rules)
	for i, r := range rules {
		p := viper.GetString("bill.cfe.patterns." + r.Field)
		if p == "" {
			continue
		}
		re, err := dotAll(p)
		if err != nil {
			log.WithError(err).WithField("field", r.Field).Warn("invalid bill pattern, using default")
			continue
		}
		rules[i].Pattern = re
	}
	return rules
}

// Rules is evaluated top to bottom; every rule is independent of the others.
//
// The intermediate and surplus subtotal rules read group 3 of a two-group
// pattern, so they never produce a value and always default to zero. They
// are kept that way to match the bills already in the ledger.
var Rules = []Rule{
	{
		Field:   FieldBilledPeriod,
		Pattern: defaultPattern(FieldBilledPeriod),
		Group:   1,
		Text:    func(b *Bill) *string { return &b.BilledPeriod },
	},
	{
		Field:   FieldTotalDue,
		Pattern: defaultPattern(FieldTotalDue),
		Group:   1,
		Number:  func(b *Bill) *decimal.Decimal { return &b.TotalDue },
	},
	{
		Field:   FieldTotalEnergyKWh,
		Pattern: defaultPattern(FieldTotalEnergyKWh),
		Group:   1,
		Number:  func(b *Bill) *decimal.Decimal { return &b.TotalEnergyKWh },
	},
	{
		Field:   FieldPeriodConsumption,
		Pattern: defaultPattern(FieldPeriodConsumption),
		Group:   1,
		Number:  func(b *Bill) *decimal.Decimal { return &b.PeriodConsumption },
	},
	{
		Field:   FieldBasicKWh,
		Pattern: defaultPattern(FieldBasicKWh),
		Group:   3,
		Number:  func(b *Bill) *decimal.Decimal { return &b.BasicKWh },
	},
	{
		Field:   FieldBasicPrice,
		Pattern: defaultPattern(FieldBasicPrice),
		Group:   1,
		Number:  func(b *Bill) *decimal.Decimal { return &b.BasicPrice },
	},
	{
		Field:   FieldBasicSubtotal,
		Pattern: defaultPattern(FieldBasicSubtotal),
		Group:   2,
		Number:  func(b *Bill) *decimal.Decimal { return &b.BasicSubtotal },
	},
	{
		Field:   FieldIntermediateKWh,
		Pattern: defaultPattern(FieldIntermediateKWh),
		Group:   1,
		Number:  func(b *Bill) *decimal.Decimal { return &b.IntermediateKWh },
	},
	{
		Field:   FieldIntermediatePrice,
		Pattern: defaultPattern(FieldIntermediatePrice),
		Group:   2,
		Number:  func(b *Bill) *decimal.Decimal { return &b.IntermediatePrice },
	},
	{
		Field:   FieldIntermediateSubtotal,
		Pattern: defaultPattern(FieldIntermediateSubtotal),
		Group:   3,
		Number:  func(b *Bill) *decimal.Decimal { return &b.IntermediateSubtotal },
	},
	{
		Field:   FieldSurplusKWh,
		Pattern: defaultPattern(FieldSurplusKWh),
		Group:   1,
		Number:  func(b *Bill) *decimal.Decimal { return &b.SurplusKWh },
	},
	{
		Field:   FieldSurplusPrice,
		Pattern: defaultPattern(FieldSurplusPrice),
		Group:   2,
		Number:  func(b *Bill) *decimal.Decimal { return &b.SurplusPrice },
	},
	{
		Field:   FieldSurplusSubtotal,
		Pattern: defaultPattern(FieldSurplusSubtotal),
		Group:   3,
		Number:  func(b *Bill) *decimal.Decimal { return &b.SurplusSubtotal },
	},
	{
		Field:   FieldGovernmentSubsidy,
		Pattern: defaultPattern(FieldGovernmentSubsidy),
		Group:   1,
		Number:  func(b *Bill) *decimal.Decimal { return &b.GovernmentSubsidy },
	},
}
