// Package checkout orchestrates the cart snapshot, payment, and initial
// order lifecycle advance.
package checkout

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/maisonnoire/storefront/internal/cart"
	"github.com/maisonnoire/storefront/internal/event"
	"github.com/maisonnoire/storefront/internal/order"
	"github.com/maisonnoire/storefront/internal/payment"
	"github.com/maisonnoire/storefront/internal/shipping"
	"github.com/maisonnoire/storefront/pkg/validate"
)

// ErrAlreadyPaid is returned when a payment retry targets an order that has
// already been charged successfully.
var ErrAlreadyPaid = errors.New("order already paid")

// Request holds the checkout selections for a cart.
type Request struct {
	CartID           string        `validate:"required"`
	ShippingAddress  order.Address `validate:"required"`
	BillingAddress   order.Address `validate:"required"`
	ShippingMethodID string        `validate:"required"`
	PaymentMethod    string        `validate:"required,oneof=card transfer cod"`
}

// Service drives a cart through order creation and payment. A failed charge
// leaves the order pending with payment marked failed; RetryPayment charges
// the same order again and never creates a second one.
type Service struct {
	carts     *cart.Engine
	cartStore cart.Store
	shipping  shipping.Repository
	factory   *order.Factory
	orders    order.Repository
	lifecycle *order.Lifecycle
	gateway   payment.Gateway
	events    event.Publisher
	currency  string
	now       func() time.Time
}

// NewService wires the checkout orchestration.
func NewService(
	carts *cart.Engine,
	cartStore cart.Store,
	ship shipping.Repository,
	factory *order.Factory,
	orders order.Repository,
	lifecycle *order.Lifecycle,
	gateway payment.Gateway,
	events event.Publisher,
	currency string,
) *Service {
	return &Service{
		carts:     carts,
		cartStore: cartStore,
		shipping:  ship,
		factory:   factory,
		orders:    orders,
		lifecycle: lifecycle,
		gateway:   gateway,
		events:    events,
		currency:  currency,
		now:       time.Now,
	}
}

// Checkout snapshots the cart into an order, persists it, and charges the
// gateway. On success the order advances to confirmed and the cart is
// cleared; on gateway failure the order is returned alongside the error so
// the caller can retry the same order.
func (s *Service) Checkout(ctx context.Context, req Request) (*order.Order, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}

	c, err := s.carts.Get(ctx, req.CartID)
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		return nil, order.ErrEmptyCart
	}

	method, err := s.shipping.GetByID(ctx, req.ShippingMethodID)
	if err != nil {
		return nil, errors.Wrap(err, "get shipping method")
	}

	o, err := s.factory.Create(c, req.ShippingAddress, req.BillingAddress, *method, req.PaymentMethod)
	if err != nil {
		return nil, err
	}

	if err := s.orders.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}
	s.publish(ctx, event.OrderCreated, map[string]any{
		"order_id": o.ID,
		"number":   o.Number,
		"total":    o.Totals.Total,
	})

	return s.pay(ctx, o, req.CartID)
}

// RetryPayment charges an existing order whose previous charge failed.
func (s *Service) RetryPayment(ctx context.Context, orderID string) (*order.Order, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, errors.Wrap(err, "get order")
	}
	if o.PaymentStatus == order.PaymentPaid {
		return nil, ErrAlreadyPaid
	}
	// The originating cart was already consumed by the first attempt.
	return s.pay(ctx, o, "")
}

// pay charges the gateway for the given order and records the outcome. The
// charge is keyed by the existing order, so retries are safe.
func (s *Service) pay(ctx context.Context, o *order.Order, cartID string) (*order.Order, error) {
	receipt, err := s.gateway.Charge(ctx, payment.Request{
		OrderID:     o.ID,
		OrderNumber: o.Number,
		Amount:      o.Totals.Total,
		Currency:    s.currency,
		Method:      o.PaymentMethod,
	})
	if err != nil {
		o.PaymentStatus = order.PaymentFailed
		o.UpdatedAt = s.now()
		if uerr := s.orders.Update(ctx, o); uerr != nil {
			return nil, errors.Wrap(uerr, "record failed payment")
		}
		s.publish(ctx, event.PaymentFailed, map[string]any{
			"order_id": o.ID,
			"number":   o.Number,
		})
		return o, err
	}

	o.PaymentStatus = order.PaymentPaid
	o.PaymentRef = receipt.Reference
	o.UpdatedAt = s.now()
	if err := s.orders.Update(ctx, o); err != nil {
		return nil, errors.Wrap(err, "record payment")
	}
	s.publish(ctx, event.PaymentSucceeded, map[string]any{
		"order_id":  o.ID,
		"number":    o.Number,
		"reference": receipt.Reference,
	})

	o, err = s.lifecycle.UpdateStatus(ctx, o.ID, order.StatusConfirmed)
	if err != nil {
		return nil, errors.Wrap(err, "confirm order")
	}

	// The cart served its purpose; a fresh session starts empty.
	if cartID != "" {
		if err := s.cartStore.Delete(ctx, cartID); err != nil {
			zctx.From(ctx).Warn("Clear cart after checkout", zap.Error(err))
		}
	}

	return o, nil
}

func (s *Service) publish(ctx context.Context, name string, payload any) {
	if err := s.events.Publish(ctx, event.Event{Name: name, OccurredAt: s.now(), Payload: payload}); err != nil {
		zctx.From(ctx).Warn("Publish event", zap.String("event", name), zap.Error(err))
	}
}
