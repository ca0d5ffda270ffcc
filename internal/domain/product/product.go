package product

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Kind distinguishes the catalog item families sold by the store.
type Kind string

const (
	KindProduct  Kind = "product"
	KindCosmetic Kind = "cosmetic"
	KindBundle   Kind = "bundle"
)

// Product represents a catalog item available for purchase. Prices are in
// the canonical currency.
type Product struct {
	ID       string
	Name     string
	Kind     Kind
	Price    decimal.Decimal
	Category string
	Image    string
	Active   bool
}

// Repository defines read operations for the product catalog.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
}
