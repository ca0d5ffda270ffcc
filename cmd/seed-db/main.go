// Command seed-db loads the catalog, the currency set, and an admin API key
// into the database for development and first deploys.
package main

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gamergoods/storefront/internal/domain/auth"
	"github.com/gamergoods/storefront/internal/domain/currency"
	"github.com/gamergoods/storefront/internal/domain/product"
	"github.com/gamergoods/storefront/internal/storage/postgres"
)

type productJSON struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Kind     string          `json:"kind"`
	Price    decimal.Decimal `json:"price"`
	Category string          `json:"category"`
	Image    string          `json:"image"`
}

type currencyJSON struct {
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	RateToUSD decimal.Decimal `json:"rateToUsd"`
	IsDefault bool            `json:"isDefault"`
}

func main() {
	var (
		databaseURL    string
		productsFile   string
		currenciesFile string
		apiKey         string
		apiKeyPepper   string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&productsFile, "products-file", "db/seed/products.json", "path to products JSON file")
	flag.StringVar(&currenciesFile, "currencies-file", "db/seed/currencies.json", "path to currencies JSON file")
	flag.StringVar(&apiKey, "api-key", "", "admin API key to seed (or STORE_SEED_API_KEY env)")
	flag.StringVar(&apiKeyPepper, "api-key-pepper", "", "HMAC pepper for API key hashing (or STORE_API_KEY_PEPPER env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if apiKey == "" {
		apiKey = os.Getenv("STORE_SEED_API_KEY")
	}
	if apiKeyPepper == "" {
		apiKeyPepper = os.Getenv("STORE_API_KEY_PEPPER")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, productsFile, currenciesFile, apiKey, apiKeyPepper); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, productsFile, currenciesFile, apiKey, pepper string) error {
	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedProducts(ctx, postgres.NewProductRepository(pool), productsFile); err != nil {
		return err
	}
	if err := seedCurrencies(ctx, postgres.NewCurrencyRepository(pool), currenciesFile); err != nil {
		return err
	}
	if apiKey != "" {
		if err := seedAPIKey(ctx, postgres.NewAPIKeyRepository(pool), apiKey, pepper); err != nil {
			return err
		}
	}
	return nil
}

func seedProducts(ctx context.Context, repo *postgres.ProductRepository, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "read products file")
	}
	var products []productJSON
	if err := json.Unmarshal(raw, &products); err != nil {
		return errors.Wrap(err, "parse products file")
	}

	for _, p := range products {
		err := repo.Upsert(ctx, &product.Product{
			ID:       p.ID,
			Name:     p.Name,
			Kind:     product.Kind(p.Kind),
			Price:    p.Price,
			Category: p.Category,
			Image:    p.Image,
			Active:   true,
		})
		if err != nil {
			return errors.Wrapf(err, "seed product %s", p.ID)
		}
	}
	slog.Info("seeded products", slog.Int("count", len(products)))
	return nil
}

func seedCurrencies(ctx context.Context, repo *postgres.CurrencyRepository, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "read currencies file")
	}
	var currencies []currencyJSON
	if err := json.Unmarshal(raw, &currencies); err != nil {
		return errors.Wrap(err, "parse currencies file")
	}

	for _, c := range currencies {
		err := repo.Upsert(ctx, &currency.Currency{
			Code:      c.Code,
			Name:      c.Name,
			RateToUSD: c.RateToUSD,
			IsDefault: c.IsDefault,
			Active:    true,
		})
		if err != nil {
			return errors.Wrapf(err, "seed currency %s", c.Code)
		}
	}
	slog.Info("seeded currencies", slog.Int("count", len(currencies)))
	return nil
}

func seedAPIKey(ctx context.Context, repo *postgres.APIKeyRepository, key, pepper string) error {
	mac := hmac.New(sha256.New, []byte(pepper))
	mac.Write([]byte(key))

	err := repo.Insert(ctx, &auth.APIKey{
		ID:      uuid.New().String(),
		KeyHash: hex.EncodeToString(mac.Sum(nil)),
		Name:    "seed admin key",
	})
	if err != nil {
		return errors.Wrap(err, "seed api key")
	}
	slog.Info("seeded admin api key")
	return nil
}
