// Package event publishes storefront domain events for the notification and
// UI layers.
package event

import (
	"context"
	"time"
)

// Event names emitted by the storefront engine.
const (
	CartUpdated        = "storefront.cart.updated"
	CouponApplied      = "storefront.cart.coupon_applied"
	CouponRejected     = "storefront.cart.coupon_rejected"
	OrderCreated       = "storefront.order.created"
	OrderStatusChanged = "storefront.order.status_changed"
	PaymentSucceeded   = "storefront.payment.succeeded"
	PaymentFailed      = "storefront.payment.failed"
)

// Event is a single outbound domain event.
type Event struct {
	Name       string    `json:"name"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload,omitempty"`
}

// Publisher delivers events to the outbound transport. Publishing is
// best-effort: engine mutations commit regardless of delivery.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Nop is a Publisher that discards all events. Used when no broker is
// configured.
type Nop struct{}

// Publish discards the event.
func (Nop) Publish(context.Context, Event) error { return nil }
