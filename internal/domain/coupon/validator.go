package coupon

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// RepoValidator implements Validator by looking up coupon rules from a
// Repository and resolving them against the cart subtotal.
type RepoValidator struct {
	repo Repository
	now  func() time.Time
}

// NewRepoValidator creates a RepoValidator backed by the given Repository.
func NewRepoValidator(repo Repository) *RepoValidator {
	return &RepoValidator{repo: repo, now: time.Now}
}

// Validate looks up the coupon rule for the given code, checks temporal
// validity and usage limits, and resolves the discount to an absolute amount.
// It does not increment the usage counter; that happens through RecordUse
// after the caller has accepted the coupon.
func (v *RepoValidator) Validate(ctx context.Context, code string, subtotal decimal.Decimal) (*Coupon, error) {
	rule, err := v.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrInvalidCoupon) {
			return nil, ErrInvalidCoupon
		}
		return nil, errors.Wrap(err, "lookup coupon")
	}

	now := v.now()

	if rule.ValidFrom != nil && now.Before(*rule.ValidFrom) {
		return nil, ErrCouponExpired
	}
	if rule.ValidUntil != nil && now.After(*rule.ValidUntil) {
		return nil, ErrCouponExpired
	}

	if rule.MaxUses > 0 && rule.Uses >= rule.MaxUses {
		return nil, ErrUsageLimitReached
	}

	return Resolve(rule, subtotal)
}

// RecordUse increments the usage counter for the given code.
func (v *RepoValidator) RecordUse(ctx context.Context, code string) error {
	return v.repo.IncrementUses(ctx, code)
}
