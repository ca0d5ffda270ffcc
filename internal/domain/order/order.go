package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Order represents a completed checkout with pricing and discount details.
// Amounts are in the canonical currency.
type Order struct {
	ID           string
	CartID       string
	Email        string
	Items        []Item
	Subtotal     decimal.Decimal
	Discount     decimal.Decimal
	Total        decimal.Decimal
	CouponCode   string
	FreeShipping bool
	Currency     string
	CreatedAt    time.Time
}

// Item is a single order line, priced as it was in the cart.
type Item struct {
	ProductID string
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
}

// Repository defines persistence operations for orders.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
}

// PaymentGateway creates a hosted-checkout payment preference for an order
// and returns the URL the shopper is redirected to. The provider's internals
// are opaque; only this contract is consumed.
type PaymentGateway interface {
	CreatePreference(ctx context.Context, o *Order) (redirectURL string, err error)
}
