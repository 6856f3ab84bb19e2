package postgres

import (
	"context"
	"fmt"
)

const ddl = `
-- One row per ledger period, replaced wholesale on every publish
CREATE TABLE IF NOT EXISTS billing_periods (
    period_number BIGINT NOT NULL,
    position INTEGER NOT NULL,
    label TEXT NOT NULL,
    source TEXT NOT NULL DEFAULT '',
    basic_solar NUMERIC(18,4) NOT NULL,
    intermediate1_solar NUMERIC(18,4) NOT NULL,
    intermediate2_solar NUMERIC(18,4) NOT NULL,
    surplus_solar NUMERIC(18,4) NOT NULL,
    basic_grid NUMERIC(18,4) NOT NULL,
    intermediate1_grid NUMERIC(18,4) NOT NULL,
    intermediate2_grid NUMERIC(18,4) NOT NULL,
    surplus_grid NUMERIC(18,4) NOT NULL,
    returned_kwh NUMERIC(18,4) NOT NULL,
    subtotal_solar NUMERIC(18,4) NOT NULL,
    tax_solar NUMERIC(18,4) NOT NULL,
    total_solar NUMERIC(18,4) NOT NULL,
    subtotal_grid NUMERIC(18,4) NOT NULL,
    tax_grid NUMERIC(18,4) NOT NULL,
    total_grid NUMERIC(18,4) NOT NULL,
    total_savings NUMERIC(18,4) NOT NULL,
    published_at TIMESTAMPTZ DEFAULT NOW(),

    PRIMARY KEY (position)
);

CREATE INDEX IF NOT EXISTS idx_billing_periods_label ON billing_periods(label);
`

// migrateDDL brings tables created by older versions up to date
const migrateDDL = `
-- Add source column if not exists
DO $$ BEGIN
    IF NOT EXISTS (SELECT 1 FROM information_schema.columns
                   WHERE table_name = 'billing_periods' AND column_name = 'source') THEN
        ALTER TABLE billing_periods ADD COLUMN source TEXT NOT NULL DEFAULT '';
    END IF;
END $$;
`

// EnsureSchema creates tables if they don't exist and runs migrations
func (db *DB) EnsureSchema(ctx context.Context) error {
	_, err := db.Pool.Exec(ctx, ddl)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	_, err = db.Pool.Exec(ctx, migrateDDL)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
