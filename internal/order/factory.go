package order

import (
	"time"

	"github.com/google/uuid"

	"github.com/maisonnoire/storefront/internal/cart"
	"github.com/maisonnoire/storefront/internal/shipping"
)

// Factory snapshots a validated cart plus checkout selections into an
// immutable Order.
type Factory struct {
	pricing cart.Pricing
	now     func() time.Time
}

// NewFactory creates a Factory using the given pricing parameters for the
// independent totals recomputation.
func NewFactory(pricing cart.Pricing) *Factory {
	return &Factory{pricing: pricing, now: time.Now}
}

// Create builds an Order from the cart snapshot. Totals are recomputed from
// the snapshot's line items, never taken from the caller, so stale client
// state cannot leak into the charged amount. The coupon discount carries
// forward into the order total. Initial order and payment status are both
// pending.
func (f *Factory) Create(
	c *cart.Cart,
	shippingAddr, billingAddr Address,
	method shipping.Method,
	paymentMethod string,
) (*Order, error) {
	if c == nil || c.IsEmpty() {
		return nil, ErrEmptyCart
	}

	now := f.now()

	couponCode := ""
	if c.Coupon != nil {
		couponCode = c.Coupon.Code
	}

	items := append([]cart.LineItem(nil), c.Items...)

	return &Order{
		ID:              uuid.New().String(),
		Number:          NewNumber(now),
		Items:           items,
		Totals:          cart.ComputeTotals(items, c.Coupon, &method, f.pricing),
		CouponCode:      couponCode,
		ShippingAddress: shippingAddr,
		BillingAddress:  billingAddr,
		ShippingMethod:  method,
		PaymentMethod:   paymentMethod,
		PaymentStatus:   PaymentPending,
		Status:          StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}
