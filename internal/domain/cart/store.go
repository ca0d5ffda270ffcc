package cart

import (
	"context"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/gamergoods/storefront/internal/domain/coupon"
)

// ErrNotFound is returned when a cart ID does not exist in the store.
var ErrNotFound = errors.New("cart not found")

// entry pairs a cart with a generation counter. Clear bumps the generation so
// that a coupon validation still in flight when the cart was cleared can
// detect it and discard its result instead of resurrecting the coupon.
type entry struct {
	cart       *Cart
	generation uint64
}

// Store holds session carts in memory and runs the coupon application flow.
// Cart mutations are serialized by the store mutex; the coupon validator
// round-trip happens outside the lock.
type Store struct {
	validator coupon.Validator
	usage     coupon.UsageRecorder
	lg        *zap.Logger
	now       func() time.Time

	mu    sync.Mutex
	carts map[string]*entry
}

// NewStore creates an empty cart store.
func NewStore(validator coupon.Validator, usage coupon.UsageRecorder, lg *zap.Logger) *Store {
	return &Store{
		validator: validator,
		usage:     usage,
		lg:        lg,
		now:       time.Now,
		carts:     make(map[string]*entry),
	}
}

// Create registers a new empty cart and returns a snapshot of it.
func (s *Store) Create() Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := New(uuid.New().String(), s.now())
	s.carts[c.ID] = &entry{cart: c}
	return snapshot(c)
}

// Get returns a snapshot of the cart with the given ID.
func (s *Store) Get(id string) (Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.carts[id]
	if !ok {
		return Cart{}, ErrNotFound
	}
	return snapshot(e.cart), nil
}

// AddItem adds quantity units of the product to the cart, merging with an
// existing line for the same product. Quantities below one add a single unit.
func (s *Store) AddItem(id, productID, name string, unitPrice decimal.Decimal, quantity int) (Cart, error) {
	if quantity < 1 {
		quantity = 1
	}
	return s.mutate(id, func(c *Cart) {
		for i := 0; i < quantity; i++ {
			c.AddItem(productID, name, unitPrice)
		}
	})
}

// RemoveItem deletes the product's line from the cart, if present.
func (s *Store) RemoveItem(id, productID string) (Cart, error) {
	return s.mutate(id, func(c *Cart) {
		c.RemoveItem(productID)
	})
}

// SetQuantity sets the product's line quantity; zero or less removes the line.
func (s *Store) SetQuantity(id, productID string, quantity int) (Cart, error) {
	return s.mutate(id, func(c *Cart) {
		c.SetQuantity(productID, quantity)
	})
}

// Clear empties the cart and drops the coupon. It also bumps the cart's
// generation: a coupon application whose validator call is still in flight
// when Clear runs will see the generation change and discard its result.
func (s *Store) Clear(id string) (Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.carts[id]
	if !ok {
		return Cart{}, ErrNotFound
	}
	e.cart.Clear()
	e.generation++
	e.cart.UpdatedAt = s.now()
	return snapshot(e.cart), nil
}

// RemoveCoupon drops the cart's applied coupon unconditionally.
func (s *Store) RemoveCoupon(id string) (Cart, error) {
	return s.mutate(id, func(c *Cart) {
		c.RemoveCoupon()
	})
}

// ApplyCoupon validates the code against the cart's current subtotal and, on
// success, replaces the applied coupon and records a usage best-effort.
//
// The validator round-trip runs outside the store lock. If the cart is
// cleared while validation is in flight the late result is discarded rather
// than resurrecting a coupon on an emptied cart. A rejection leaves any
// previously applied coupon untouched.
//
// The usage increment is fire and forget: its failure is logged and never
// surfaces to the caller once validation succeeded.
func (s *Store) ApplyCoupon(ctx context.Context, id, code string) (Cart, error) {
	s.mu.Lock()
	e, ok := s.carts[id]
	if !ok {
		s.mu.Unlock()
		return Cart{}, ErrNotFound
	}
	subtotal := e.cart.Subtotal()
	gen := e.generation
	s.mu.Unlock()

	cp, err := s.validator.Validate(ctx, code, subtotal)
	if err != nil {
		return Cart{}, err
	}

	s.mu.Lock()
	e, ok = s.carts[id]
	if !ok {
		s.mu.Unlock()
		return Cart{}, ErrNotFound
	}
	if e.generation != gen {
		snap := snapshot(e.cart)
		s.mu.Unlock()
		s.lg.Info("discarding coupon validated against a cleared cart",
			zap.String("cart_id", id),
			zap.String("code", cp.Code),
		)
		return snap, nil
	}
	e.cart.SetCoupon(cp)
	e.cart.UpdatedAt = s.now()
	snap := snapshot(e.cart)
	s.mu.Unlock()

	if err := s.usage.RecordUse(ctx, cp.Code); err != nil {
		s.lg.Warn("coupon usage increment failed",
			zap.String("code", cp.Code),
			zap.Error(err),
		)
	}

	return snap, nil
}

// Delete removes the cart from the store entirely, e.g. after checkout.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, id)
}

func (s *Store) mutate(id string, fn func(*Cart)) (Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.carts[id]
	if !ok {
		return Cart{}, ErrNotFound
	}
	fn(e.cart)
	e.cart.UpdatedAt = s.now()
	return snapshot(e.cart), nil
}

// snapshot copies the cart so callers never hold a reference into the store.
func snapshot(c *Cart) Cart {
	out := *c
	out.Lines = make([]Line, len(c.Lines))
	copy(out.Lines, c.Lines)
	if c.Coupon != nil {
		cp := *c.Coupon
		out.Coupon = &cp
	}
	return out
}
