package order

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gamergoods/storefront/internal/domain/cart"
)

// ErrEmptyCart is returned when checkout is attempted on a cart with no lines.
var ErrEmptyCart = errors.New("cart is empty")

// CheckoutRequest holds the input for checking out a cart.
type CheckoutRequest struct {
	CartID   string
	Email    string
	Currency string
}

// CheckoutResult holds the persisted order and the payment redirect URL.
type CheckoutResult struct {
	Order       *Order
	RedirectURL string
}

// Service orchestrates checkout: it snapshots the cart, persists the order,
// creates the payment preference, and clears the cart on success.
type Service struct {
	carts    *cart.Store
	orders   Repository
	payments PaymentGateway
	lg       *zap.Logger
}

// NewService creates a checkout Service with the required dependencies.
func NewService(carts *cart.Store, orders Repository, payments PaymentGateway, lg *zap.Logger) *Service {
	return &Service{
		carts:    carts,
		orders:   orders,
		payments: payments,
		lg:       lg,
	}
}

// Checkout turns the cart into a persisted order and returns the payment
// provider's redirect URL. The cart is cleared only after both the order and
// the payment preference succeed, so a failed checkout leaves the cart
// intact for retry.
func (s *Service) Checkout(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error) {
	snap, err := s.carts.Get(req.CartID)
	if err != nil {
		return nil, err
	}
	if snap.IsEmpty() {
		return nil, ErrEmptyCart
	}

	o := &Order{
		ID:       uuid.New().String(),
		CartID:   snap.ID,
		Email:    req.Email,
		Subtotal: snap.Subtotal(),
		Total:    snap.Total().Round(2),
		Currency: req.Currency,
	}
	for _, l := range snap.Lines {
		o.Items = append(o.Items, Item{
			ProductID: l.ProductID,
			Name:      l.Name,
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
		})
	}
	if snap.Coupon != nil {
		o.CouponCode = snap.Coupon.Code
		o.Discount = snap.Coupon.DiscountAmount.Round(2)
		o.FreeShipping = snap.Coupon.FreeShipping
	}

	if err := s.orders.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	redirectURL, err := s.payments.CreatePreference(ctx, o)
	if err != nil {
		return nil, errors.Wrap(err, "create payment preference")
	}

	if _, err := s.carts.Clear(req.CartID); err != nil {
		// The purchase already went through; an unclearable cart is a
		// bookkeeping problem, not a checkout failure.
		s.lg.Warn("clearing cart after checkout failed",
			zap.String("cart_id", req.CartID), zap.Error(err))
	}

	return &CheckoutResult{Order: o, RedirectURL: redirectURL}, nil
}
