package postgres_test

import (
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gamergoods/storefront/internal/domain/auth"
	"github.com/gamergoods/storefront/internal/domain/currency"
	"github.com/gamergoods/storefront/internal/domain/product"
	"github.com/gamergoods/storefront/internal/storage/postgres"
)

// catalogRepositorySuite covers the small read-mostly repositories sharing
// one container: products, currencies, settings, and API keys.
type catalogRepositorySuite struct {
	suite.Suite

	products   *postgres.ProductRepository
	currencies *postgres.CurrencyRepository
	settings   *postgres.SettingsRepository
	apikeys    *postgres.APIKeyRepository
	pool       *pgxpool.Pool
}

func TestCatalogRepositorySuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	suite.Run(t, new(catalogRepositorySuite))
}

func (s *catalogRepositorySuite) SetupSuite() {
	ctx := s.T().Context()

	_, connStr, err := startPostgres(ctx)
	s.Require().NoError(err)

	s.pool, err = postgres.NewPool(ctx, connStr)
	s.Require().NoError(err)

	s.products = postgres.NewProductRepository(s.pool)
	s.currencies = postgres.NewCurrencyRepository(s.pool)
	s.settings = postgres.NewSettingsRepository(s.pool)
	s.apikeys = postgres.NewAPIKeyRepository(s.pool)
}

func (s *catalogRepositorySuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *catalogRepositorySuite) TestProducts() {
	t := s.T()
	ctx := t.Context()

	p := &product.Product{
		ID:       "p-headset",
		Name:     "Gaming Headset",
		Kind:     product.KindProduct,
		Price:    decimal.NewFromInt(19990),
		Category: "gear",
		Image:    gofakeit.URL(),
		Active:   true,
	}
	require.NoError(t, s.products.Upsert(ctx, p))

	got, err := s.products.GetByID(ctx, "p-headset")
	require.NoError(t, err)
	assert.Equal(t, p.Name, got.Name)
	assert.Equal(t, product.KindProduct, got.Kind)
	assert.True(t, got.Price.Equal(p.Price))

	listed, err := s.products.List(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, listed)

	// Deactivated items disappear from both reads.
	p.Active = false
	require.NoError(t, s.products.Upsert(ctx, p))
	_, err = s.products.GetByID(ctx, "p-headset")
	assert.ErrorIs(t, err, product.ErrNotFound)
}

func (s *catalogRepositorySuite) TestProductGetUnknown() {
	t := s.T()

	_, err := s.products.GetByID(t.Context(), "ghost")
	assert.ErrorIs(t, err, product.ErrNotFound)
}

func (s *catalogRepositorySuite) TestCurrenciesSingleDefault() {
	t := s.T()
	ctx := t.Context()

	require.NoError(t, s.currencies.Upsert(ctx, &currency.Currency{
		Code: "CLP", Name: "Chilean Peso", RateToUSD: decimal.NewFromInt(900), IsDefault: true, Active: true,
	}))
	require.NoError(t, s.currencies.Upsert(ctx, &currency.Currency{
		Code: "USD", Name: "US Dollar", RateToUSD: decimal.NewFromInt(1), Active: true,
	}))

	// Flagging another currency as default clears the previous one.
	require.NoError(t, s.currencies.Upsert(ctx, &currency.Currency{
		Code: "ARS", Name: "Argentine Peso", RateToUSD: decimal.NewFromInt(1050), IsDefault: true, Active: true,
	}))

	listed, err := s.currencies.List(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, listed)

	var defaults int
	for _, c := range listed {
		if c.IsDefault {
			defaults++
			assert.Equal(t, "ARS", c.Code)
		}
	}
	assert.Equal(t, 1, defaults, "exactly one default currency")
	assert.True(t, listed[0].IsDefault, "default sorts first")
}

func (s *catalogRepositorySuite) TestSettingsRoundTrip() {
	t := s.T()
	ctx := t.Context()

	pref, err := s.settings.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, pref, "no preference stored yet")

	require.NoError(t, s.settings.Save(ctx, "USD"))
	require.NoError(t, s.settings.Save(ctx, "ARS"))

	pref, err = s.settings.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ARS", pref, "the last save wins")
}

func (s *catalogRepositorySuite) TestAPIKeys() {
	t := s.T()
	ctx := t.Context()

	k := &auth.APIKey{ID: "k1", KeyHash: gofakeit.UUID(), Name: "back-office"}
	require.NoError(t, s.apikeys.Insert(ctx, k))

	got, err := s.apikeys.FindByHash(ctx, k.KeyHash)
	require.NoError(t, err)
	assert.Equal(t, "back-office", got.Name)

	// Re-inserting the same hash is a no-op, not an error.
	require.NoError(t, s.apikeys.Insert(ctx, &auth.APIKey{ID: "k2", KeyHash: k.KeyHash, Name: "other"}))
	got, err = s.apikeys.FindByHash(ctx, k.KeyHash)
	require.NoError(t, err)
	assert.Equal(t, "k1", got.ID)

	_, err = s.apikeys.FindByHash(ctx, "missing")
	assert.ErrorIs(t, err, postgres.ErrAPIKeyNotFound)
}
