package coupon

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// DiscountType enumerates the supported coupon discount strategies.
type DiscountType string

const (
	// DiscountPercentage takes a percentage off the cart subtotal.
	DiscountPercentage DiscountType = "percentage"
	// DiscountFixed takes a fixed amount off, capped at the subtotal.
	DiscountFixed DiscountType = "fixed"
)

var (
	// ErrInvalidCoupon is returned when a coupon code is not found or inactive.
	ErrInvalidCoupon = errors.New("invalid coupon code")
	// ErrCouponExpired is returned when a coupon is outside its valid time window.
	ErrCouponExpired = errors.New("coupon expired")
	// ErrUsageLimitReached is returned when a coupon has exhausted its allowed uses.
	ErrUsageLimitReached = errors.New("coupon usage limit reached")
	// ErrMinPurchaseNotMet is returned when the cart subtotal is below the
	// coupon's minimum purchase amount.
	ErrMinPurchaseNotMet = errors.New("minimum purchase amount not met")
)

// Rule defines a coupon's discount behaviour and eligibility constraints as
// stored in the back office.
type Rule struct {
	Code         string
	DiscountType DiscountType
	Value        decimal.Decimal
	MinPurchase  decimal.Decimal
	MaxDiscount  decimal.Decimal
	FreeShipping bool
	Description  string
	ValidFrom    *time.Time
	ValidUntil   *time.Time
	MaxUses      int
	Uses         int
}

// Coupon is the resolved discount descriptor handed to the cart once a code
// validates. The discount is already an absolute amount in the canonical
// currency, never a raw percentage or rule.
type Coupon struct {
	Code           string
	DiscountAmount decimal.Decimal
	FreeShipping   bool
	Description    string
}

// Repository provides lookup and mutation of coupon rules.
type Repository interface {
	FindByCode(ctx context.Context, code string) (*Rule, error)
	IncrementUses(ctx context.Context, code string) error
}

// Validator validates a coupon code against a cart subtotal and returns the
// resolved coupon. Validation does not consume a use; recording usage is a
// separate, best-effort concern (see UsageRecorder).
type Validator interface {
	Validate(ctx context.Context, code string, subtotal decimal.Decimal) (*Coupon, error)
}

// UsageRecorder increments a coupon's usage counter. Callers treat failures
// as best-effort: a lost increment must never fail the coupon application.
type UsageRecorder interface {
	RecordUse(ctx context.Context, code string) error
}
