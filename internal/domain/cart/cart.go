// Package cart implements the shopping cart: line items keyed by product,
// an optional applied coupon, and the derived subtotal and total.
package cart

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/gamergoods/storefront/internal/domain/coupon"
)

// Line is one row in the cart: a distinct catalog item and its quantity.
// The unit price is copied from the catalog at add time and is never
// refreshed; a later catalog price change only takes effect if the item is
// removed and re-added.
type Line struct {
	ProductID string
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
}

// Total returns unit price times quantity for this line.
func (l Line) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart holds the line items and at most one applied coupon.
//
// Cart is a plain value type with no internal locking; Store serializes
// access when carts are shared across requests.
type Cart struct {
	ID        string
	Lines     []Line
	Coupon    *coupon.Coupon
	CreatedAt time.Time
	UpdatedAt time.Time
}

// New returns an empty cart with the given identifier.
func New(id string, now time.Time) *Cart {
	return &Cart{ID: id, CreatedAt: now, UpdatedAt: now}
}

// AddItem adds one unit of the given product. If a line for the product
// already exists its quantity is incremented; the stored unit price is kept.
func (c *Cart) AddItem(productID, name string, unitPrice decimal.Decimal) {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			c.Lines[i].Quantity++
			return
		}
	}
	c.Lines = append(c.Lines, Line{
		ProductID: productID,
		Name:      name,
		UnitPrice: unitPrice,
		Quantity:  1,
	})
}

// RemoveItem deletes the line for the given product. Unknown products are a
// no-op, not an error.
func (c *Cart) RemoveItem(productID string) {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return
		}
	}
}

// SetQuantity sets the quantity of the line for the given product. A quantity
// of zero or less removes the line. Unknown products are a no-op.
func (c *Cart) SetQuantity(productID string, quantity int) {
	if quantity <= 0 {
		c.RemoveItem(productID)
		return
	}
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			c.Lines[i].Quantity = quantity
			return
		}
	}
}

// Clear empties all lines and drops any applied coupon.
func (c *Cart) Clear() {
	c.Lines = nil
	c.Coupon = nil
}

// SetCoupon replaces the applied coupon. At most one coupon is active at a
// time; applying a new one replaces the previous.
func (c *Cart) SetCoupon(cp *coupon.Coupon) {
	c.Coupon = cp
}

// RemoveCoupon drops the applied coupon unconditionally.
func (c *Cart) RemoveCoupon() {
	c.Coupon = nil
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Subtotal is the sum of line totals, recomputed on every call.
func (c *Cart) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range c.Lines {
		sum = sum.Add(l.Total())
	}
	return sum
}

// Total is the subtotal minus the coupon discount, floored at zero. A
// discount can never produce a negative total. Free shipping does not affect
// the total; shipping is always zero in this store and the flag is
// informational only.
func (c *Cart) Total() decimal.Decimal {
	total := c.Subtotal()
	if c.Coupon != nil {
		total = total.Sub(c.Coupon.DiscountAmount)
		if total.IsNegative() {
			total = decimal.Zero
		}
	}
	return total
}
