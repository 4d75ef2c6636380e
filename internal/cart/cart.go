// Package cart implements the cart pricing engine: line items, coupon
// application, and totals that are always recomputed from their inputs.
package cart

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/maisonnoire/storefront/internal/coupon"
	"github.com/maisonnoire/storefront/internal/shipping"
)

var (
	// ErrNotFound is returned by a Store when no cart exists for the key.
	ErrNotFound = errors.New("cart not found")
	// ErrItemNotFound is returned when a mutation targets a line item the
	// cart does not contain.
	ErrItemNotFound = errors.New("cart item not found")
)

// StockError indicates a requested quantity cannot be satisfied from stock.
// The cart is left unchanged when it is returned.
type StockError struct {
	ProductID string
	Color     string
	Size      string
	Requested int
	Available int
}

func (e *StockError) Error() string {
	return "insufficient stock for product " + e.ProductID
}

// LineItem is one (product, color, size) entry in a cart. Two entries
// differing only in quantity are the same line item and merge on add.
type LineItem struct {
	ProductID     string           `json:"product_id"`
	Name          string           `json:"name"`
	Color         string           `json:"color,omitempty"`
	Size          string           `json:"size,omitempty"`
	UnitPrice     decimal.Decimal  `json:"unit_price"`
	OriginalPrice *decimal.Decimal `json:"original_price,omitempty"`
	Quantity      int              `json:"quantity"`
	MaxQuantity   int              `json:"max_quantity"`
	InStock       bool             `json:"in_stock"`
	PreOrder      *PreOrderInfo    `json:"pre_order,omitempty"`
	Image         string           `json:"image,omitempty"`
}

// PreOrderInfo carries pre-order metadata for a line item.
type PreOrderInfo struct {
	EstimatedDelivery string `json:"estimated_delivery"`
}

// Matches reports whether the line item has the given identity.
func (li *LineItem) Matches(productID, color, size string) bool {
	return li.ProductID == productID &&
		strings.EqualFold(li.Color, color) &&
		strings.EqualFold(li.Size, size)
}

// Totals holds the derived money amounts of a cart. They are a pure function
// of (items, coupon, shipping method) and are recomputed on every mutation.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	Tax      decimal.Decimal `json:"tax"`
	Shipping decimal.Decimal `json:"shipping"`
	Total    decimal.Decimal `json:"total"`
}

// Cart is a shopper's session cart. At most one coupon is applied at a time.
type Cart struct {
	ID             string           `json:"id"`
	Items          []LineItem       `json:"items"`
	Coupon         *coupon.Applied  `json:"coupon,omitempty"`
	ShippingMethod *shipping.Method `json:"shipping_method,omitempty"`
	Totals         Totals           `json:"totals"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// IsEmpty reports whether the cart has no line items.
func (c *Cart) IsEmpty() bool { return len(c.Items) == 0 }

// ItemCount returns the total quantity across all line items.
func (c *Cart) ItemCount() int {
	n := 0
	for i := range c.Items {
		n += c.Items[i].Quantity
	}
	return n
}

func (c *Cart) findItem(productID, color, size string) int {
	for i := range c.Items {
		if c.Items[i].Matches(productID, color, size) {
			return i
		}
	}
	return -1
}

// Store persists carts between mutations. Implementations must round-trip
// the cart losslessly, including the applied coupon and totals.
type Store interface {
	Get(ctx context.Context, id string) (*Cart, error)
	Save(ctx context.Context, c *Cart) error
	Delete(ctx context.Context, id string) error
}
