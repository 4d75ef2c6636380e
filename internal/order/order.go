// Package order owns order creation and the order lifecycle state machine.
package order

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"

	"github.com/maisonnoire/storefront/internal/cart"
	"github.com/maisonnoire/storefront/internal/shipping"
)

// Status is the order lifecycle status.
type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
	StatusRefunded   Status = "refunded"
)

// PaymentStatus tracks the payment side of an order.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

var (
	// ErrNotFound is returned when a requested order does not exist.
	ErrNotFound = errors.New("order not found")
	// ErrEmptyCart is returned when an order is created from a cart with
	// no line items.
	ErrEmptyCart = errors.New("cart has no items")
	// ErrNonMonotonicTracking is returned when a tracking event is older
	// than the last recorded one.
	ErrNonMonotonicTracking = errors.New("tracking event timestamp before last event")
)

// TransitionError indicates an order-status change outside the legal path.
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid transition from %s to %s", e.From, e.To)
}

// transitions is the legal-path table. Forward path is
// pending → confirmed → processing → shipped → delivered; cancellation is
// only possible before shipment; delivered orders can only be recorded as
// refunded. cancelled and refunded are terminal.
var transitions = map[Status][]Status{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
	StatusDelivered:  {StatusRefunded},
	StatusCancelled:  {},
	StatusRefunded:   {},
}

// IsValidStatus reports whether s is a known order status.
func IsValidStatus(s Status) bool {
	_, ok := transitions[s]
	return ok
}

// CanTransition reports whether from → to is on the legal path.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is permitted from s.
// A delivered order can still be recorded as refunded, so it is not treated
// as terminal for cancellation checks done through CanTransition.
func IsTerminal(s Status) bool {
	return len(transitions[s]) == 0
}

// Address is a shipping or billing address captured at checkout.
type Address struct {
	FullName   string `json:"full_name" validate:"required"`
	Line1      string `json:"line1" validate:"required"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city" validate:"required"`
	State      string `json:"state" validate:"required"`
	PostalCode string `json:"postal_code" validate:"required"`
	Country    string `json:"country" validate:"required"`
	Phone      string `json:"phone,omitempty"`
	Email      string `json:"email,omitempty" validate:"omitempty,email"`
}

// TrackingEvent is one timestamped entry in an order's delivery history.
// Events are kept in ascending timestamp order.
type TrackingEvent struct {
	Timestamp   time.Time `json:"timestamp"`
	Status      string    `json:"status"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
}

// Order is an immutable snapshot of a cart plus checkout selections. It is
// created once by the Factory; all later mutation goes through the Lifecycle
// manager, never by re-deriving totals from a live cart.
type Order struct {
	ID              string          `json:"id"`
	Number          string          `json:"number"`
	Items           []cart.LineItem `json:"items"`
	Totals          cart.Totals     `json:"totals"`
	CouponCode      string          `json:"coupon_code,omitempty"`
	ShippingAddress Address         `json:"shipping_address"`
	BillingAddress  Address         `json:"billing_address"`
	ShippingMethod  shipping.Method `json:"shipping_method"`
	PaymentMethod   string          `json:"payment_method"`
	PaymentStatus   PaymentStatus   `json:"payment_status"`
	PaymentRef      string          `json:"payment_ref,omitempty"`
	Status          Status          `json:"status"`
	Tracking        []TrackingEvent `json:"tracking,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	DeliveredAt     *time.Time      `json:"delivered_at,omitempty"`
}

// EffectiveStatus is the externally visible status: the latest tracking
// event's label when a tracking history exists, otherwise the order's own
// status.
func (o *Order) EffectiveStatus() string {
	if n := len(o.Tracking); n > 0 {
		return o.Tracking[n-1].Status
	}
	return string(o.Status)
}

// Repository defines persistence operations for orders.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	Update(ctx context.Context, o *Order) error
	List(ctx context.Context) ([]Order, error)
}
