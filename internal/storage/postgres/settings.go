package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gamergoods/storefront/internal/domain/currency"
)

const (
	getSettingSQL = `SELECT value FROM settings WHERE key = $1`

	putSettingSQL = `INSERT INTO settings (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`

	currencyPrefKey = "currency_code"
)

var _ currency.Preferences = (*SettingsRepository)(nil)

// SettingsRepository stores small key-value settings, among them the
// shopper-facing currency preference.
type SettingsRepository struct {
	pool *pgxpool.Pool
}

// NewSettingsRepository returns a SettingsRepository that uses the given pool.
func NewSettingsRepository(pool *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{pool: pool}
}

// Load returns the persisted currency preference, or "" when none is stored.
func (r *SettingsRepository) Load(ctx context.Context) (string, error) {
	var value string
	err := r.pool.QueryRow(ctx, getSettingSQL, currencyPrefKey).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("loading currency preference: %w", err)
	}
	return value, nil
}

// Save persists the currency preference for future sessions.
func (r *SettingsRepository) Save(ctx context.Context, code string) error {
	if _, err := r.pool.Exec(ctx, putSettingSQL, currencyPrefKey, code); err != nil {
		return fmt.Errorf("saving currency preference: %w", err)
	}
	return nil
}
