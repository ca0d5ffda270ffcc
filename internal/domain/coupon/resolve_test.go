package coupon

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name       string
		rule       Rule
		subtotal   decimal.Decimal
		wantAmount decimal.Decimal
		wantErr    error
		wantAnyErr bool
	}{
		{
			name:       "percentage of subtotal",
			rule:       Rule{Code: "TEN", DiscountType: DiscountPercentage, Value: decimal.NewFromInt(10)},
			subtotal:   decimal.NewFromInt(2000),
			wantAmount: decimal.NewFromInt(200),
		},
		{
			name: "percentage capped by max discount",
			rule: Rule{
				Code:         "TEN",
				DiscountType: DiscountPercentage,
				Value:        decimal.NewFromInt(10),
				MaxDiscount:  decimal.NewFromInt(150),
			},
			subtotal:   decimal.NewFromInt(2000),
			wantAmount: decimal.NewFromInt(150),
		},
		{
			name:       "percentage rounds to cents",
			rule:       Rule{Code: "THIRD", DiscountType: DiscountPercentage, Value: decimal.NewFromFloat(33.33)},
			subtotal:   decimal.NewFromInt(100),
			wantAmount: decimal.NewFromFloat(33.33),
		},
		{
			name:       "fixed amount",
			rule:       Rule{Code: "FIVEHUNDRED", DiscountType: DiscountFixed, Value: decimal.NewFromInt(500)},
			subtotal:   decimal.NewFromInt(2000),
			wantAmount: decimal.NewFromInt(500),
		},
		{
			name:       "fixed amount capped at subtotal",
			rule:       Rule{Code: "BIG", DiscountType: DiscountFixed, Value: decimal.NewFromInt(10000)},
			subtotal:   decimal.NewFromInt(3000),
			wantAmount: decimal.NewFromInt(3000),
		},
		{
			name: "min purchase met exactly",
			rule: Rule{
				Code:         "MIN",
				DiscountType: DiscountFixed,
				Value:        decimal.NewFromInt(100),
				MinPurchase:  decimal.NewFromInt(1000),
			},
			subtotal:   decimal.NewFromInt(1000),
			wantAmount: decimal.NewFromInt(100),
		},
		{
			name: "min purchase not met",
			rule: Rule{
				Code:         "MIN",
				DiscountType: DiscountFixed,
				Value:        decimal.NewFromInt(100),
				MinPurchase:  decimal.NewFromInt(1000),
			},
			subtotal: decimal.NewFromInt(999),
			wantErr:  ErrMinPurchaseNotMet,
		},
		{
			name:       "unsupported discount type",
			rule:       Rule{Code: "WAT", DiscountType: "bogus", Value: decimal.NewFromInt(1)},
			subtotal:   decimal.NewFromInt(100),
			wantAnyErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(&tt.rule, tt.subtotal)
			if tt.wantAnyErr {
				require.Error(t, err)
				return
			}
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.rule.Code, got.Code)
			assert.True(t, got.DiscountAmount.Equal(tt.wantAmount),
				"got %s want %s", got.DiscountAmount, tt.wantAmount)
		})
	}
}

func TestResolveCarriesRuleMetadata(t *testing.T) {
	rule := Rule{
		Code:         "SHIPFREE",
		DiscountType: DiscountFixed,
		Value:        decimal.Zero,
		FreeShipping: true,
		Description:  "free shipping on any order",
	}

	got, err := Resolve(&rule, decimal.NewFromInt(500))
	require.NoError(t, err)
	assert.True(t, got.FreeShipping)
	assert.Equal(t, "free shipping on any order", got.Description)
	assert.True(t, got.DiscountAmount.IsZero())
}
