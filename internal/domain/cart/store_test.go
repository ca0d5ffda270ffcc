package cart

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gamergoods/storefront/internal/domain/coupon"
)

type stubValidator struct {
	coupon *coupon.Coupon
	err    error

	// beforeReturn runs after the subtotal snapshot was taken but before the
	// validation result is returned, simulating work that races with the
	// cart being mutated in the meantime.
	beforeReturn func()

	gotCode     string
	gotSubtotal decimal.Decimal
}

func (v *stubValidator) Validate(_ context.Context, code string, subtotal decimal.Decimal) (*coupon.Coupon, error) {
	v.gotCode = code
	v.gotSubtotal = subtotal
	if v.beforeReturn != nil {
		v.beforeReturn()
	}
	return v.coupon, v.err
}

type stubUsage struct {
	err   error
	codes []string
}

func (u *stubUsage) RecordUse(_ context.Context, code string) error {
	u.codes = append(u.codes, code)
	return u.err
}

func newTestStore(v coupon.Validator, u coupon.UsageRecorder) *Store {
	return NewStore(v, u, zap.NewNop())
}

func TestStore_CreateAndGet(t *testing.T) {
	s := newTestStore(&stubValidator{}, &stubUsage{})

	created := s.Create()
	require.NotEmpty(t, created.ID)
	assert.True(t, created.IsEmpty())

	got, err := s.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = s.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_MutationsRequireExistingCart(t *testing.T) {
	s := newTestStore(&stubValidator{}, &stubUsage{})

	_, err := s.AddItem("missing", "p1", "A", decimal.NewFromInt(100), 1)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.RemoveItem("missing", "p1")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.SetQuantity("missing", "p1", 2)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Clear("missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.RemoveCoupon("missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.ApplyCoupon(context.Background(), "missing", "CODE")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_AddItemQuantityMerges(t *testing.T) {
	s := newTestStore(&stubValidator{}, &stubUsage{})
	c := s.Create()

	snap, err := s.AddItem(c.ID, "p1", "A", decimal.NewFromInt(100), 3)
	require.NoError(t, err)
	require.Len(t, snap.Lines, 1)
	assert.Equal(t, 3, snap.Lines[0].Quantity)

	// Adds merge onto the existing line.
	snap, err = s.AddItem(c.ID, "p1", "A", decimal.NewFromInt(100), 2)
	require.NoError(t, err)
	assert.Equal(t, 5, snap.Lines[0].Quantity)

	// Quantities below one still add a single unit.
	snap, err = s.AddItem(c.ID, "p2", "B", decimal.NewFromInt(200), 0)
	require.NoError(t, err)
	require.Len(t, snap.Lines, 2)
	assert.Equal(t, 1, snap.Lines[1].Quantity)
}

func TestStore_SnapshotsAreDetached(t *testing.T) {
	s := newTestStore(&stubValidator{}, &stubUsage{})
	c := s.Create()

	snap, err := s.AddItem(c.ID, "p1", "A", decimal.NewFromInt(100), 1)
	require.NoError(t, err)

	// Mutating the returned snapshot must not leak into the store.
	snap.Lines[0].Quantity = 99
	got, err := s.Get(c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Lines[0].Quantity)
}

func TestStore_ApplyCouponSuccess(t *testing.T) {
	v := &stubValidator{coupon: &coupon.Coupon{Code: "SAVE500", DiscountAmount: decimal.NewFromInt(500)}}
	u := &stubUsage{}
	s := newTestStore(v, u)

	c := s.Create()
	_, err := s.AddItem(c.ID, "p1", "A", decimal.NewFromInt(1000), 1)
	require.NoError(t, err)
	_, err = s.SetQuantity(c.ID, "p1", 2)
	require.NoError(t, err)

	got, err := s.ApplyCoupon(context.Background(), c.ID, "SAVE500")
	require.NoError(t, err)

	assert.Equal(t, "SAVE500", v.gotCode)
	assert.True(t, v.gotSubtotal.Equal(decimal.NewFromInt(2000)), "validator sees the cart subtotal")
	require.NotNil(t, got.Coupon)
	assert.True(t, got.Total().Equal(decimal.NewFromInt(1500)))
	assert.Equal(t, []string{"SAVE500"}, u.codes, "usage recorded once")
}

func TestStore_ApplyCouponRejectionKeepsPrevious(t *testing.T) {
	v := &stubValidator{coupon: &coupon.Coupon{Code: "FIRST", DiscountAmount: decimal.NewFromInt(100)}}
	s := newTestStore(v, &stubUsage{})

	c := s.Create()
	_, err := s.AddItem(c.ID, "p1", "A", decimal.NewFromInt(1000), 1)
	require.NoError(t, err)

	_, err = s.ApplyCoupon(context.Background(), c.ID, "FIRST")
	require.NoError(t, err)

	v.coupon = nil
	v.err = coupon.ErrCouponExpired
	_, err = s.ApplyCoupon(context.Background(), c.ID, "SECOND")
	assert.ErrorIs(t, err, coupon.ErrCouponExpired)

	got, err := s.Get(c.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Coupon)
	assert.Equal(t, "FIRST", got.Coupon.Code)
}

func TestStore_ApplyCouponDiscardedAfterClear(t *testing.T) {
	s := newTestStore(&stubValidator{}, &stubUsage{})
	c := s.Create()
	_, err := s.AddItem(c.ID, "p1", "A", decimal.NewFromInt(1000), 1)
	require.NoError(t, err)

	v := &stubValidator{
		coupon: &coupon.Coupon{Code: "LATE", DiscountAmount: decimal.NewFromInt(100)},
		beforeReturn: func() {
			// The cart is cleared while the validator call is in flight.
			_, err := s.Clear(c.ID)
			require.NoError(t, err)
		},
	}
	u := &stubUsage{}
	s.validator = v
	s.usage = u

	got, err := s.ApplyCoupon(context.Background(), c.ID, "LATE")
	require.NoError(t, err)

	assert.Nil(t, got.Coupon, "late validation result must not resurrect a coupon")
	assert.True(t, got.IsEmpty())
	assert.Empty(t, u.codes, "discarded application must not record a usage")
}

func TestStore_ApplyCouponUsageFailureIsBestEffort(t *testing.T) {
	v := &stubValidator{coupon: &coupon.Coupon{Code: "SAVE", DiscountAmount: decimal.NewFromInt(100)}}
	u := &stubUsage{err: errors.New("db down")}
	s := newTestStore(v, u)

	c := s.Create()
	_, err := s.AddItem(c.ID, "p1", "A", decimal.NewFromInt(1000), 1)
	require.NoError(t, err)

	got, err := s.ApplyCoupon(context.Background(), c.ID, "SAVE")
	require.NoError(t, err, "usage increment failure must not surface")
	require.NotNil(t, got.Coupon)
	assert.Equal(t, "SAVE", got.Coupon.Code)
}

func TestStore_ClearThenRebuild(t *testing.T) {
	s := newTestStore(&stubValidator{}, &stubUsage{})
	c := s.Create()

	_, err := s.AddItem(c.ID, "p1", "A", decimal.NewFromInt(100), 1)
	require.NoError(t, err)
	_, err = s.AddItem(c.ID, "p2", "B", decimal.NewFromInt(200), 1)
	require.NoError(t, err)
	_, err = s.RemoveItem(c.ID, "p1")
	require.NoError(t, err)
	_, err = s.RemoveItem(c.ID, "p2")
	require.NoError(t, err)

	got, err := s.Get(c.ID)
	require.NoError(t, err)
	assert.True(t, got.IsEmpty(), "removing every line empties the cart")

	_, err = s.AddItem(c.ID, "p1", "A", decimal.NewFromInt(100), 1)
	require.NoError(t, err)
	got, err = s.Get(c.ID)
	require.NoError(t, err)
	assert.False(t, got.IsEmpty())
}

func TestStore_Delete(t *testing.T) {
	s := newTestStore(&stubValidator{}, &stubUsage{})
	c := s.Create()

	s.Delete(c.ID)

	_, err := s.Get(c.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
