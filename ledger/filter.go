package ledger

import (
	"slices"
	"strings"
)

// SelectAll in any selector disables filtering on that dimension.
const SelectAll = "all"

// Tier names as they appear inside column headers.
const (
	TierBasic         = "Básico"
	TierIntermediate1 = "Intermedio 1"
	TierIntermediate2 = "Intermedio 2"
	TierSurplus       = "Excedente"
)

var tierAliases = map[string]string{
	"basic":          TierBasic,
	"basico":         TierBasic,
	"intermediate1":  TierIntermediate1,
	"intermediate-1": TierIntermediate1,
	"intermediate_1": TierIntermediate1,
	"intermediate2":  TierIntermediate2,
	"intermediate-2": TierIntermediate2,
	"intermediate_2": TierIntermediate2,
	"surplus":        TierSurplus,
	"excedente":      TierSurplus,
}

// TierName maps an English alias ("basic", "intermediate1", ...) to the name
// used in headers. Anything else is returned unchanged.
func TierName(name string) string {
	if tier, ok := tierAliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return tier
	}
	return name
}

// Filter selects rows by period label and source and columns by tier. A nil
// or empty selector, or one containing SelectAll, keeps everything.
type Filter struct {
	Periods []string `json:"periods,omitempty"`
	Sources []string `json:"sources,omitempty"`
	Tiers   []string `json:"tiers,omitempty"`
}

func selects(selector []string) bool {
	return len(selector) > 0 && !slices.Contains(selector, SelectAll)
}

// View is a filtered slice of a ledger. Periods keep every field; Columns is
// the projection to show.
type View struct {
	schema
	Columns []string `json:"columns"`
	Periods []Period `json:"periods"`
}

// Rows returns the cells of the projected columns, one slice per period.
func (v View) Rows() [][]any {
	rows := make([][]any, 0, len(v.Periods))
	for _, p := range v.Periods {
		row := make([]any, 0, len(v.Columns))
		for _, c := range v.Columns {
			row = append(row, v.cell(p, c))
		}
		rows = append(rows, row)
	}
	return rows
}

// LabelColumn is the header holding period labels.
func (v View) LabelColumn() string {
	return v.labelColumn
}

// View returns every row and column.
func (l *Ledger) View() View {
	return l.Filter(Filter{})
}

func (l *Ledger) Filter(f Filter) View {
	view := View{
		schema:  l.schema,
		Columns: l.Columns(),
		Periods: make([]Period, 0, len(l.periods)),
	}

	for _, p := range l.periods {
		if selects(f.Periods) && !slices.Contains(f.Periods, p.Label) {
			continue
		}
		if l.hasSource && selects(f.Sources) && !slices.Contains(f.Sources, p.Source) {
			continue
		}
		view.Periods = append(view.Periods, p)
	}

	if selects(f.Tiers) {
		tiers := make([]string, 0, len(f.Tiers))
		for _, t := range f.Tiers {
			tiers = append(tiers, TierName(t))
		}

		columns := []string{l.labelColumn}
		if l.hasSource {
			columns = append(columns, ColSource)
		}
		for _, c := range l.columns {
			if slices.ContainsFunc(tiers, func(t string) bool { return strings.Contains(c, t) }) {
				columns = append(columns, c)
			}
		}
		view.Columns = columns
	}

	return view
}

// PeriodLabels lists the distinct period labels in row order.
func (l *Ledger) PeriodLabels() []string {
	return distinct(l.periods, func(p Period) string { return p.Label })
}

// Sources lists the distinct sources in row order, nil without a source column.
func (l *Ledger) Sources() []string {
	if !l.hasSource {
		return nil
	}
	return distinct(l.periods, func(p Period) string { return p.Source })
}

func distinct(periods []Period, key func(Period) string) []string {
	var out []string
	for _, p := range periods {
		if k := key(p); !slices.Contains(out, k) {
			out = append(out, k)
		}
	}
	return out
}
