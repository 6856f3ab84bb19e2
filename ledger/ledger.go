// Package ledger keeps the table of billing periods: one row per period,
// appended by explicit submission, stored as a single spreadsheet sheet.
package ledger

import (
	"errors"
	"slices"
)

// ErrEmptyLedger is returned when deleting from a ledger with no rows.
var ErrEmptyLedger = errors.New("ledger has no periods")

// Ledger is an ordered table of periods plus the header it was read with.
// It is not safe for concurrent use.
type Ledger struct {
	schema
	columns []string
	periods []Period
}

// New returns an empty ledger with the standard header.
func New() *Ledger {
	return &Ledger{
		schema: schema{
			labelColumn: ColPeriods,
			invalid:     map[string]bool{},
		},
		columns: canonicalColumns(ColPeriods),
	}
}

func (l *Ledger) Columns() []string {
	return slices.Clone(l.columns)
}

func (l *Ledger) Periods() []Period {
	return slices.Clone(l.periods)
}

func (l *Ledger) Len() int {
	return len(l.periods)
}

// LabelColumn is the header holding period labels, Periodos or Periodo.
func (l *Ledger) LabelColumn() string {
	return l.labelColumn
}

// HasSource reports whether the sheet has an Origen column.
func (l *Ledger) HasSource() bool {
	return l.hasSource
}

// NextNumber is one past the highest period number, or 1 for an empty ledger.
func (l *Ledger) NextNumber() int64 {
	if len(l.periods) == 0 {
		return 1
	}
	var highest int64
	for _, p := range l.periods {
		if p.Number > highest {
			highest = p.Number
		}
	}
	return highest + 1
}

// Append numbers p and adds it as the last row. Columns a new row needs
// that the sheet lacks are added to the header.
func (l *Ledger) Append(p Period) Period {
	for _, c := range canonicalColumns(l.labelColumn) {
		if !slices.Contains(l.columns, c) {
			l.columns = append(l.columns, c)
		}
	}

	p.Number = l.NextNumber()
	p.Raw = nil
	l.periods = append(l.periods, p)
	return p
}

// DeleteLast removes the last row and returns it.
func (l *Ledger) DeleteLast() (Period, error) {
	if len(l.periods) == 0 {
		return Period{}, ErrEmptyLedger
	}
	last := l.periods[len(l.periods)-1]
	l.periods = l.periods[:len(l.periods)-1]
	return last, nil
}
