package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/maisonnoire/storefront/internal/event"
)

// Lifecycle owns the order status state machine, the tracking-event log, and
// cancellation rules. It is the only writer of orders after creation.
type Lifecycle struct {
	repo   Repository
	events event.Publisher
	now    func() time.Time
}

// NewLifecycle creates a Lifecycle manager over the given repository.
func NewLifecycle(repo Repository, events event.Publisher) *Lifecycle {
	return &Lifecycle{repo: repo, events: events, now: time.Now}
}

// UpdateStatus transitions the order to the target status. Transitions
// outside the legal-path table fail with a TransitionError and leave the
// order unchanged. Transitioning to delivered stamps the delivery timestamp.
func (l *Lifecycle) UpdateStatus(ctx context.Context, orderID string, to Status) (*Order, error) {
	if !IsValidStatus(to) {
		return nil, errors.Errorf("unknown order status %q", to)
	}

	o, err := l.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, errors.Wrap(err, "get order")
	}

	from := o.Status
	if !CanTransition(from, to) {
		return nil, &TransitionError{From: from, To: to}
	}

	now := l.now()
	o.Status = to
	o.UpdatedAt = now
	if to == StatusDelivered {
		o.DeliveredAt = &now
	}

	if err := l.repo.Update(ctx, o); err != nil {
		return nil, errors.Wrap(err, "update order")
	}

	l.publish(ctx, event.OrderStatusChanged, map[string]any{
		"order_id": o.ID,
		"number":   o.Number,
		"from":     from,
		"to":       to,
	})
	return o, nil
}

// AppendTracking records a tracking event. Timestamps must be monotonically
// non-decreasing; a zero timestamp is stamped with the current time.
func (l *Lifecycle) AppendTracking(ctx context.Context, orderID string, ev TrackingEvent) (*Order, error) {
	o, err := l.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, errors.Wrap(err, "get order")
	}

	if ev.Timestamp.IsZero() {
		ev.Timestamp = l.now()
	}
	if n := len(o.Tracking); n > 0 && ev.Timestamp.Before(o.Tracking[n-1].Timestamp) {
		return nil, ErrNonMonotonicTracking
	}

	o.Tracking = append(o.Tracking, ev)
	o.UpdatedAt = l.now()

	if err := l.repo.Update(ctx, o); err != nil {
		return nil, errors.Wrap(err, "update order")
	}
	return o, nil
}

// Cancel transitions the order to cancelled. Orders in a terminal state, or
// already shipped, are rejected with a TransitionError.
func (l *Lifecycle) Cancel(ctx context.Context, orderID string) (*Order, error) {
	return l.UpdateStatus(ctx, orderID, StatusCancelled)
}

func (l *Lifecycle) publish(ctx context.Context, name string, payload any) {
	if err := l.events.Publish(ctx, event.Event{Name: name, OccurredAt: l.now(), Payload: payload}); err != nil {
		zctx.From(ctx).Warn("Publish event", zap.String("event", name), zap.Error(err))
	}
}
