package currency

import (
	"context"

	"github.com/shopspring/decimal"
)

// CanonicalCode is the currency all catalog prices are stored in. Every
// conversion originates from it.
const CanonicalCode = "CLP"

// Currency describes one display currency available to shoppers.
type Currency struct {
	Code      string
	Name      string
	RateToUSD decimal.Decimal
	IsDefault bool
	Active    bool
}

// Source lists the available currencies, typically from the back office.
type Source interface {
	List(ctx context.Context) ([]Currency, error)
}

// Preferences persists the shopper's selected currency code across sessions.
type Preferences interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, code string) error
}
