// Package report renders a dashboard as a one-document PDF summary.
package report

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"github.com/aqlanhadi/solarpayback/dashboard"
)

// Render lays out the payback metrics, the per-period comparison, the cost
// breakdown and the best period on A4 pages.
func Render(db dashboard.Dashboard, generated time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Solar payback report", true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 8, "Solar Payback Report")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", generated.Format(time.RFC3339)))
	pdf.Ln(8)

	s := db.Summary
	metrics := [][2]string{
		{"Investment goal", money(s.Goal)},
		{"Periods", fmt.Sprintf("%d", s.Periods)},
		{"Cumulative savings", money(s.Cumulative)},
		{"Remaining to recover", money(s.Remaining)},
		{"Recovered", s.PercentRecovered.StringFixed(2) + "%"},
		{"Estimated months remaining", s.MonthsRemaining.StringFixed(1)},
		{"Average savings per period", money(s.AverageMonthly)},
	}
	for _, m := range metrics {
		pdf.CellFormat(70, 6, m[0], "", 0, "L", false, 0, "")
		pdf.CellFormat(50, 6, m[1], "", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}
	pdf.Ln(4)

	if db.BestPeriod == nil {
		pdf.Cell(0, 6, "No periods to report.")
		pdf.Ln(-1)
		return output(pdf)
	}

	pdf.SetFont("Arial", "B", 10)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Best period: %s with %s saved", db.BestPeriod.Period, money(db.BestPeriod.Savings))))
	pdf.Ln(10)

	pdf.Cell(0, 6, "Savings by period")
	pdf.Ln(7)
	pdf.CellFormat(70, 6, "Period", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Solar bill", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Grid bill", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Savings", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for i, c := range db.Comparison {
		pdf.CellFormat(70, 6, tr(c.Period), "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, money(c.SolarTotal), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, money(c.GridTotal), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, money(db.Savings[i].Value), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 10)
	pdf.Cell(0, 6, "Cost by tier")
	pdf.Ln(7)
	pdf.CellFormat(70, 6, "Tier", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Total", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, slice := range db.CostBreakdown {
		pdf.CellFormat(70, 6, tr(slice.Name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, money(slice.Value), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	return output(pdf)
}

func output(pdf *gofpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// money formats d as $1,234.56.
func money(d decimal.Decimal) string {
	rounded := d.Abs().Round(2)
	_, frac, _ := strings.Cut(rounded.StringFixed(2), ".")

	sign := ""
	if d.IsNegative() && !rounded.IsZero() {
		sign = "-"
	}
	return sign + "$" + humanize.Comma(rounded.IntPart()) + "." + frac
}
