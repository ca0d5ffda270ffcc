package coupon

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCouponRepo struct {
	rules        map[string]*Rule
	findErr      error
	incrementErr error
	increments   []string
}

func (m *mockCouponRepo) FindByCode(_ context.Context, code string) (*Rule, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	rule, ok := m.rules[code]
	if !ok {
		return nil, ErrInvalidCoupon
	}
	return rule, nil
}

func (m *mockCouponRepo) IncrementUses(_ context.Context, code string) error {
	m.increments = append(m.increments, code)
	return m.incrementErr
}

func timePtr(t time.Time) *time.Time { return &t }

func TestRepoValidator_Validate(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		rule     *Rule
		code     string
		subtotal decimal.Decimal
		wantErr  error
		wantAmt  decimal.Decimal
	}{
		{
			name:     "unknown code",
			code:     "NOPE",
			subtotal: decimal.NewFromInt(1000),
			wantErr:  ErrInvalidCoupon,
		},
		{
			name: "valid percentage coupon",
			rule: &Rule{Code: "TEN", DiscountType: DiscountPercentage, Value: decimal.NewFromInt(10)},
			code: "TEN", subtotal: decimal.NewFromInt(1000),
			wantAmt: decimal.NewFromInt(100),
		},
		{
			name: "not yet valid",
			rule: &Rule{
				Code: "SOON", DiscountType: DiscountFixed, Value: decimal.NewFromInt(100),
				ValidFrom: timePtr(now.Add(time.Hour)),
			},
			code: "SOON", subtotal: decimal.NewFromInt(1000),
			wantErr: ErrCouponExpired,
		},
		{
			name: "expired",
			rule: &Rule{
				Code: "OLD", DiscountType: DiscountFixed, Value: decimal.NewFromInt(100),
				ValidUntil: timePtr(now.Add(-time.Hour)),
			},
			code: "OLD", subtotal: decimal.NewFromInt(1000),
			wantErr: ErrCouponExpired,
		},
		{
			name: "within validity window",
			rule: &Rule{
				Code: "NOW", DiscountType: DiscountFixed, Value: decimal.NewFromInt(100),
				ValidFrom:  timePtr(now.Add(-time.Hour)),
				ValidUntil: timePtr(now.Add(time.Hour)),
			},
			code: "NOW", subtotal: decimal.NewFromInt(1000),
			wantAmt: decimal.NewFromInt(100),
		},
		{
			name: "usage limit reached",
			rule: &Rule{
				Code: "USED", DiscountType: DiscountFixed, Value: decimal.NewFromInt(100),
				MaxUses: 5, Uses: 5,
			},
			code: "USED", subtotal: decimal.NewFromInt(1000),
			wantErr: ErrUsageLimitReached,
		},
		{
			name: "one use remaining",
			rule: &Rule{
				Code: "LAST", DiscountType: DiscountFixed, Value: decimal.NewFromInt(100),
				MaxUses: 5, Uses: 4,
			},
			code: "LAST", subtotal: decimal.NewFromInt(1000),
			wantAmt: decimal.NewFromInt(100),
		},
		{
			name: "zero max uses means unlimited",
			rule: &Rule{
				Code: "FOREVER", DiscountType: DiscountFixed, Value: decimal.NewFromInt(100),
				MaxUses: 0, Uses: 1_000_000,
			},
			code: "FOREVER", subtotal: decimal.NewFromInt(1000),
			wantAmt: decimal.NewFromInt(100),
		},
		{
			name: "min purchase not met",
			rule: &Rule{
				Code: "MIN", DiscountType: DiscountFixed, Value: decimal.NewFromInt(100),
				MinPurchase: decimal.NewFromInt(5000),
			},
			code: "MIN", subtotal: decimal.NewFromInt(1000),
			wantErr: ErrMinPurchaseNotMet,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockCouponRepo{rules: map[string]*Rule{}}
			if tt.rule != nil {
				repo.rules[tt.rule.Code] = tt.rule
			}
			v := NewRepoValidator(repo)
			v.now = func() time.Time { return now }

			got, err := v.Validate(context.Background(), tt.code, tt.subtotal)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.code, got.Code)
			assert.True(t, got.DiscountAmount.Equal(tt.wantAmt),
				"got %s want %s", got.DiscountAmount, tt.wantAmt)
			assert.Empty(t, repo.increments, "validation must not consume a use")
		})
	}
}

func TestRepoValidator_ValidateWrapsRepoError(t *testing.T) {
	repo := &mockCouponRepo{findErr: errors.New("connection reset")}
	v := NewRepoValidator(repo)

	_, err := v.Validate(context.Background(), "ANY", decimal.NewFromInt(100))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCoupon)
}

func TestRepoValidator_RecordUse(t *testing.T) {
	repo := &mockCouponRepo{rules: map[string]*Rule{}}
	v := NewRepoValidator(repo)

	require.NoError(t, v.RecordUse(context.Background(), "SAVE"))
	assert.Equal(t, []string{"SAVE"}, repo.increments)
}
