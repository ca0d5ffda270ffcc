package coupon

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Resolve turns a rule into a resolved Coupon for the given cart subtotal.
// It returns ErrMinPurchaseNotMet when the subtotal is below the rule's
// minimum purchase amount.
func Resolve(rule *Rule, subtotal decimal.Decimal) (*Coupon, error) {
	if rule.MinPurchase.IsPositive() && subtotal.LessThan(rule.MinPurchase) {
		return nil, ErrMinPurchaseNotMet
	}

	var amount decimal.Decimal
	switch rule.DiscountType {
	case DiscountPercentage:
		amount = subtotal.Mul(rule.Value).Div(hundred)
		if rule.MaxDiscount.IsPositive() {
			amount = decimal.Min(amount, rule.MaxDiscount)
		}
	case DiscountFixed:
		amount = decimal.Min(rule.Value, subtotal)
	default:
		return nil, errors.Errorf("unsupported discount type: %q", rule.DiscountType)
	}

	amount = floorAtZero(amount).Round(2)

	return &Coupon{
		Code:           rule.Code,
		DiscountAmount: amount,
		FreeShipping:   rule.FreeShipping,
		Description:    rule.Description,
	}, nil
}

// floorAtZero clamps negative values to zero.
func floorAtZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
