package ledger

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"github.com/aqlanhadi/solarpayback/extractor/common"
)

// DefaultSheet is the sheet the period table lives on.
const DefaultSheet = "Total"

// CoercionWarning reports a numeric column holding a value that is not a
// number. The column keeps its text and reads as zero.
type CoercionWarning struct {
	Column string `json:"column"`
	Row    int    `json:"row"`
	Value  string `json:"value"`
}

func (w CoercionWarning) String() string {
	return fmt.Sprintf("column %q could not be converted to a number (row %d: %q)", w.Column, w.Row, w.Value)
}

// Store reads and writes the ledger as one sheet of an xlsx workbook. Every
// write replaces the whole file; there is no locking between processes.
type Store struct {
	Path  string
	Sheet string
}

func NewStore(path, sheet string) *Store {
	if sheet == "" {
		sheet = DefaultSheet
	}
	return &Store{Path: path, Sheet: sheet}
}

// Load reads the workbook. On error it still returns an empty ledger so the
// caller can carry on with nothing loaded.
func (s *Store) Load() (*Ledger, []CoercionWarning, error) {
	f, err := excelize.OpenFile(s.Path)
	if err != nil {
		return New(), nil, fmt.Errorf("failed to open %s: %w", s.Path, err)
	}
	defer f.Close()

	// Raw values: display formatting would round number-formatted cells.
	rows, err := f.GetRows(s.Sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return New(), nil, fmt.Errorf("failed to read sheet %q: %w", s.Sheet, err)
	}

	l, warnings := parseRows(rows)
	return l, warnings, nil
}

// Open is Load for read-only use: failures are logged and an empty ledger
// is returned in their place.
func (s *Store) Open() *Ledger {
	l, warnings, err := s.Load()
	if err != nil {
		log.WithError(err).Error("could not load ledger, continuing with no periods")
	}
	for _, w := range warnings {
		log.Warn(w.String())
	}
	return l
}

// LoadForUpdate is Load for callers about to Save. A missing workbook yields
// an empty ledger; a workbook that exists but cannot be read is an error so
// that it is not overwritten.
func (s *Store) LoadForUpdate() (*Ledger, []CoercionWarning, error) {
	l, warnings, err := s.Load()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.WithField("path", s.Path).Info("ledger file not found, starting a new one")
			return l, nil, nil
		}
		return nil, nil, err
	}
	return l, warnings, nil
}

// Save writes the full table to a temporary file next to Path and renames it
// into place.
func (s *Store) Save(l *Ledger) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", s.Sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]any, 0, len(l.columns))
	for _, c := range l.columns {
		header = append(header, c)
	}
	if err := f.SetSheetRow(s.Sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, p := range l.periods {
		row := make([]any, 0, len(l.columns))
		for _, c := range l.columns {
			row = append(row, sheetValue(l.cell(p, c)))
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(s.Sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	return s.replace(f)
}

func (s *Store) replace(f *excelize.File) error {
	dir := filepath.Dir(s.Path)
	tmp, err := os.CreateTemp(dir, ".solarpayback-*.xlsx")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := f.Write(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	mode := fs.FileMode(0o644)
	if info, err := os.Stat(s.Path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.Chmod(tmp.Name(), mode); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", s.Path, err)
	}
	return nil
}

func sheetValue(v any) any {
	if d, ok := v.(decimal.Decimal); ok {
		return d.InexactFloat64()
	}
	return v
}

// headerNames trims headers, names blank ones and suffixes repeats with .1,
// .2 and so on, the way spreadsheet readers de-duplicate them.
func headerNames(cells []string) []string {
	names := make([]string, 0, len(cells))
	for i, c := range cells {
		base := strings.TrimSpace(c)
		if base == "" {
			base = fmt.Sprintf("Unnamed: %d", i)
		}
		name := base
		for n := 1; slices.Contains(names, name); n++ {
			name = fmt.Sprintf("%s.%d", base, n)
		}
		names = append(names, name)
	}
	return names
}

func blankRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func parseRows(rows [][]string) (*Ledger, []CoercionWarning) {
	if len(rows) == 0 {
		return New(), nil
	}

	columns := headerNames(rows[0])
	l := &Ledger{
		schema: schema{
			labelColumn: ColPeriod,
			hasSource:   slices.Contains(columns, ColSource),
			invalid:     map[string]bool{},
		},
		columns: columns,
	}
	if slices.Contains(columns, ColPeriods) {
		l.labelColumn = ColPeriods
	}

	var sheetRows []int
	for n, cells := range rows[1:] {
		if blankRow(cells) {
			continue
		}
		sheetRows = append(sheetRows, n+2)
		raw := make(map[string]string, len(columns))
		for i, c := range columns {
			if i < len(cells) {
				raw[c] = cells[i]
			} else {
				raw[c] = ""
			}
		}
		l.periods = append(l.periods, Period{
			Label:  raw[l.labelColumn],
			Source: raw[ColSource],
			Raw:    raw,
		})
	}

	var warnings []CoercionWarning
	for _, c := range columns {
		var warning *CoercionWarning
		switch {
		case c == ColNumber:
			warning = l.coerce(c, sheetRows, func(p *Period, d decimal.Decimal) { p.Number = d.IntPart() })
		default:
			ac, ok := findAmountColumn(c)
			if !ok {
				continue
			}
			warning = l.coerce(c, sheetRows, func(p *Period, d decimal.Decimal) { *ac.field(p) = d })
		}
		if warning != nil {
			l.invalid[c] = true
			warnings = append(warnings, *warning)
		}
	}

	return l, warnings
}

// coerce parses one column of every row. On the first bad value it zeroes
// the column again and reports the value.
func (l *Ledger) coerce(column string, sheetRows []int, set func(*Period, decimal.Decimal)) *CoercionWarning {
	for i := range l.periods {
		p := &l.periods[i]
		d, err := common.ParseCurrency(p.Raw[column])
		if errors.Is(err, common.ErrEmptyValue) {
			continue
		}
		if err != nil {
			for j := range l.periods {
				set(&l.periods[j], decimal.Zero)
			}
			return &CoercionWarning{Column: column, Row: sheetRows[i], Value: p.Raw[column]}
		}
		set(p, d)
	}
	return nil
}
