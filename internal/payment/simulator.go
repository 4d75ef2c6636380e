package payment

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
)

// FailureStrategy decides whether the next simulated charge fails. Injecting
// it keeps tests deterministic.
type FailureStrategy func() bool

// RandomFailure fails with the given probability.
func RandomFailure(probability float64) FailureStrategy {
	return func() bool { return rand.Float64() < probability }
}

// NeverFail always succeeds.
func NeverFail() FailureStrategy { return func() bool { return false } }

// AlwaysFail always fails.
func AlwaysFail() FailureStrategy { return func() bool { return true } }

var _ Gateway = (*Simulator)(nil)

// Simulator models an external gateway call with network latency and a
// nonzero failure probability. It holds no state: a failed charge mutates
// nothing, and the caller advances the order on success.
type Simulator struct {
	latency time.Duration
	fail    FailureStrategy
	now     func() time.Time
}

// NewSimulator creates a Simulator with the given latency and failure
// strategy.
func NewSimulator(latency time.Duration, fail FailureStrategy) *Simulator {
	return &Simulator{latency: latency, fail: fail, now: time.Now}
}

// Charge waits out the simulated latency, then either fails with a transient
// GatewayError or returns a generated payment reference. Cancelling the
// context abandons the call; any result is discarded, nothing is rolled
// back.
func (s *Simulator) Charge(ctx context.Context, req Request) (*Receipt, error) {
	if s.latency > 0 {
		timer := time.NewTimer(s.latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if s.fail() {
		return nil, &GatewayError{Reason: "charge declined for order " + req.OrderNumber}
	}

	return &Receipt{
		Reference:   "pay_" + uuid.New().String(),
		ProcessedAt: s.now(),
	}, nil
}
