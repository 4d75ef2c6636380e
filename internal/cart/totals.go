package cart

import (
	"github.com/shopspring/decimal"

	"github.com/maisonnoire/storefront/internal/coupon"
	"github.com/maisonnoire/storefront/internal/shipping"
)

var hundred = decimal.NewFromInt(100)

// Pricing holds the cart-wide pricing parameters.
type Pricing struct {
	// TaxRate is applied to the pre-discount subtotal.
	TaxRate decimal.Decimal
	// FreeShippingThreshold is the subtotal at which shipping is waived
	// regardless of the chosen method.
	FreeShippingThreshold decimal.Decimal
}

// Subtotal returns the sum of unit price times quantity over all items,
// computed pre-discount.
func Subtotal(items []LineItem) decimal.Decimal {
	sum := decimal.Zero
	for i := range items {
		line := items[i].UnitPrice.Mul(decimal.NewFromInt(int64(items[i].Quantity)))
		sum = sum.Add(line)
	}
	return sum
}

// ComputeTotals derives the cart totals from their inputs. Deterministic,
// no hidden state:
//
//	subtotal = Σ unitPrice×quantity
//	discount = per coupon type, never exceeding subtotal
//	tax      = round(subtotal × taxRate), on the pre-discount subtotal
//	shipping = 0 at the free-shipping threshold or with a free_shipping
//	           coupon, else the method price
//	total    = max(0, subtotal − discount + tax + shipping)
func ComputeTotals(items []LineItem, applied *coupon.Applied, method *shipping.Method, p Pricing) Totals {
	subtotal := Subtotal(items)
	discount := discountFor(applied, subtotal)
	tax := subtotal.Mul(p.TaxRate).Round(2)

	ship := decimal.Zero
	freeShipping := subtotal.GreaterThanOrEqual(p.FreeShippingThreshold) ||
		(applied != nil && applied.Type == coupon.TypeFreeShipping)
	if !freeShipping && method != nil {
		ship = method.Price
	}

	total := subtotal.Sub(discount).Add(tax).Add(ship)
	if total.IsNegative() {
		total = decimal.Zero
	}

	return Totals{
		Subtotal: subtotal,
		Discount: discount,
		Tax:      tax,
		Shipping: ship,
		Total:    total,
	}
}

// discountFor computes the subtotal discount for the applied coupon. A
// free_shipping coupon discounts nothing here; it zeroes shipping instead.
func discountFor(applied *coupon.Applied, subtotal decimal.Decimal) decimal.Decimal {
	if applied == nil {
		return decimal.Zero
	}

	switch applied.Type {
	case coupon.TypePercentage:
		amount := subtotal.Mul(applied.Value).Div(hundred).Round(2)
		return clamp(amount, subtotal)
	case coupon.TypeFixed:
		return clamp(applied.Value, subtotal)
	case coupon.TypeFreeShipping:
		return decimal.Zero
	default:
		return decimal.Zero
	}
}

// clamp bounds amount into [0, limit].
func clamp(amount, limit decimal.Decimal) decimal.Decimal {
	if amount.IsNegative() {
		return decimal.Zero
	}
	if amount.GreaterThan(limit) {
		return limit
	}
	return amount
}
