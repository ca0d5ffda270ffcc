package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gamergoods/storefront/internal/domain/currency"
)

const (
	listCurrenciesSQL = `SELECT code, name, rate_to_usd, is_default, active
		FROM currencies WHERE active = TRUE ORDER BY is_default DESC, code`

	upsertCurrencySQL = `INSERT INTO currencies (code, name, rate_to_usd, is_default, active)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (code) DO UPDATE SET
			name = EXCLUDED.name,
			rate_to_usd = EXCLUDED.rate_to_usd,
			is_default = EXCLUDED.is_default,
			active = EXCLUDED.active`

	clearDefaultCurrencySQL = `UPDATE currencies SET is_default = FALSE WHERE code <> $1`
)

var _ currency.Source = (*CurrencyRepository)(nil)

// CurrencyRepository implements currency.Source backed by PostgreSQL.
type CurrencyRepository struct {
	pool *pgxpool.Pool
}

// NewCurrencyRepository returns a CurrencyRepository that uses the given pool.
func NewCurrencyRepository(pool *pgxpool.Pool) *CurrencyRepository {
	return &CurrencyRepository{pool: pool}
}

// List returns the active currency set, default first.
func (r *CurrencyRepository) List(ctx context.Context) ([]currency.Currency, error) {
	rows, err := r.pool.Query(ctx, listCurrenciesSQL)
	if err != nil {
		return nil, fmt.Errorf("listing currencies: %w", err)
	}

	currencies, err := pgx.CollectRows(rows, scanCurrency)
	if err != nil {
		return nil, fmt.Errorf("listing currencies: %w", err)
	}
	return currencies, nil
}

// Upsert creates or replaces a currency. When the currency is flagged as
// default, the flag is cleared from every other row so exactly one default
// remains.
func (r *CurrencyRepository) Upsert(ctx context.Context, c *currency.Currency) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("upserting currency %q: %w", c.Code, err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, upsertCurrencySQL,
		c.Code, c.Name, c.RateToUSD, c.IsDefault, c.Active,
	); err != nil {
		return fmt.Errorf("upserting currency %q: %w", c.Code, err)
	}
	if c.IsDefault {
		if _, err := tx.Exec(ctx, clearDefaultCurrencySQL, c.Code); err != nil {
			return fmt.Errorf("clearing default flag: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("upserting currency %q: %w", c.Code, err)
	}
	return nil
}

func scanCurrency(row pgx.CollectableRow) (currency.Currency, error) {
	var c currency.Currency
	err := row.Scan(&c.Code, &c.Name, &c.RateToUSD, &c.IsDefault, &c.Active)
	return c, err
}
