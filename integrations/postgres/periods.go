package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/aqlanhadi/solarpayback/ledger"
)

const insertPeriodSQL = `
	INSERT INTO billing_periods (
		position, period_number, label, source,
		basic_solar, intermediate1_solar, intermediate2_solar, surplus_solar,
		basic_grid, intermediate1_grid, intermediate2_grid, surplus_grid,
		returned_kwh,
		subtotal_solar, tax_solar, total_solar,
		subtotal_grid, tax_grid, total_grid,
		total_savings
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
`

// periodArgs lists the insert parameters of p, in column order.
func periodArgs(position int, p ledger.Period) []any {
	return []any{
		position, p.Number, p.Label, p.Source,
		p.BasicSolar, p.Intermediate1Solar, p.Intermediate2Solar, p.SurplusSolar,
		p.BasicGrid, p.Intermediate1Grid, p.Intermediate2Grid, p.SurplusGrid,
		p.ReturnedKWh,
		p.SubtotalSolar, p.TaxSolar, p.TotalSolar,
		p.SubtotalGrid, p.TaxGrid, p.TotalGrid,
		p.TotalSavings,
	}
}

// Publish replaces the contents of billing_periods with periods in a single
// transaction, the same snapshot semantics as the workbook.
func (db *DB) Publish(ctx context.Context, periods []ledger.Period) error {
	return pgx.BeginFunc(ctx, db.Pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM billing_periods`); err != nil {
			return fmt.Errorf("failed to clear periods: %w", err)
		}
		if len(periods) == 0 {
			return nil
		}

		batch := &pgx.Batch{}
		for i, p := range periods {
			batch.Queue(insertPeriodSQL, periodArgs(i+1, p)...)
		}

		br := tx.SendBatch(ctx, batch)
		for _, p := range periods {
			if _, err := br.Exec(); err != nil {
				br.Close()
				return fmt.Errorf("failed to insert period %q: %w", p.Label, err)
			}
		}
		return br.Close()
	})
}

// CountPeriods returns the number of published periods.
func (db *DB) CountPeriods(ctx context.Context) (int, error) {
	var n int
	if err := db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM billing_periods`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count periods: %w", err)
	}
	return n, nil
}
