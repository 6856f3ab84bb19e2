package ledger

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, path, sheet string, rows [][]any) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetName("Sheet1", sheet))
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
}

func TestStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ahorro.xlsx")
	store := NewStore(path, "")

	l := New()
	l.Append(period("Enero", "100.5"))
	l.Append(period("Febrero", "200"))
	require.NoError(t, store.Save(l))

	loaded, warnings, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, l.Columns(), loaded.Columns())
	assert.Equal(t, 2, loaded.Len())

	p := loaded.Periods()[0]
	assert.Equal(t, "Enero", p.Label)
	assert.Equal(t, int64(1), p.Number)
	assertDecimal(t, "100.5", p.TotalSavings, "savings")
	assert.Equal(t, int64(3), loaded.NextNumber())
}

func TestStore_DuplicateHeaderIsSuffixed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ahorro.xlsx")
	writeWorkbook(t, path, DefaultSheet, [][]any{
		{"Periodo", "Subtotal CFE", "IVA CFE", "Subtotal CFE", "Ahorro Total"},
		{"Enero", 100, 16, 116, 50},
	})

	l, _, err := NewStore(path, DefaultSheet).Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"Periodo", "Subtotal CFE", "IVA CFE", "Subtotal CFE.1", "Ahorro Total"}, l.Columns())
	assert.Equal(t, ColPeriod, l.LabelColumn())
	p := l.Periods()[0]
	assertDecimal(t, "100", p.SubtotalGrid, "subtotal")
	assertDecimal(t, "116", p.TotalGrid, "total")
}

func TestStore_CoercionWarningKeepsText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ahorro.xlsx")
	writeWorkbook(t, path, DefaultSheet, [][]any{
		{"Periodos", "No. Periodo", "Origen", "Básico Solar", "Ahorro Total", "Notas"},
		{"Enero", 1, "casa", "pendiente", "$1,000", "primera"},
		{"Febrero", 2, "casa", 20, 500, ""},
	})
	store := NewStore(path, DefaultSheet)

	l, warnings, err := store.Load()
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, ColBasicSolar, warnings[0].Column)
	assert.Equal(t, 2, warnings[0].Row)
	assert.Equal(t, "pendiente", warnings[0].Value)
	assert.True(t, l.HasSource())

	periods := l.Periods()
	assertDecimal(t, "0", periods[1].BasicSolar, "invalid column")
	assertDecimal(t, "1000", periods[0].TotalSavings, "currency")

	l.Append(period("Marzo", "10"))
	require.NoError(t, store.Save(l))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(DefaultSheet)
	require.NoError(t, err)
	assert.Equal(t, "pendiente", rows[1][3])
	assert.Equal(t, "primera", rows[1][5])
	assert.Equal(t, "Marzo", rows[3][0])
	assert.Equal(t, "3", rows[3][1])
}

func TestStore_NumberFormatDoesNotRound(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ahorro.xlsx")
	writeWorkbook(t, path, DefaultSheet, [][]any{
		{"Periodo", "Subtotal CFE", "IVA CFE", "Ahorro Total"},
		{"Enero", 123.45, 19.752, 250.4567},
	})
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	style, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle(DefaultSheet, "B2", "D2", style))
	require.NoError(t, f.Save())
	require.NoError(t, f.Close())
	store := NewStore(path, DefaultSheet)

	l, _, err := store.Load()
	require.NoError(t, err)
	p := l.Periods()[0]
	assertDecimal(t, "19.752", p.TaxGrid, "tax")
	assertDecimal(t, "250.4567", p.TotalSavings, "savings")

	require.NoError(t, store.Save(l))
	l, _, err = store.Load()
	require.NoError(t, err)
	p = l.Periods()[0]
	assertDecimal(t, "123.45", p.SubtotalGrid, "subtotal")
	assertDecimal(t, "19.752", p.TaxGrid, "tax")
	assertDecimal(t, "250.4567", p.TotalSavings, "savings")

	f, err = excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	raw, err := f.GetCellValue(DefaultSheet, "C2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "19.752", raw)
}

func TestStore_MissingFile(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "nada.xlsx"), DefaultSheet)

	l, _, err := store.Load()
	assert.True(t, errors.Is(err, fs.ErrNotExist), "got %v", err)
	assert.Equal(t, 0, l.Len())

	l, _, err = store.LoadForUpdate()
	assert.NoError(t, err)
	assert.Equal(t, 0, l.Len())
}

func TestStore_UnreadableFileIsNotOverwritten(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ahorro.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("not a workbook"), 0o644))
	store := NewStore(path, DefaultSheet)

	_, _, err := store.LoadForUpdate()
	assert.Error(t, err)

	assert.Equal(t, 0, store.Open().Len())
}

func TestHeaderNames(t *testing.T) {
	names := headerNames([]string{" Periodo ", "", "A", "A", "A"})

	assert.Equal(t, []string{"Periodo", "Unnamed: 1", "A", "A.1", "A.2"}, names)
}
