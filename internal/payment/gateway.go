// Package payment models the external payment gateway.
package payment

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Request holds the parameters for charging a payment. Charges are keyed by
// the existing order, so a retry after a failure never creates a second
// order.
type Request struct {
	OrderID     string
	OrderNumber string
	Amount      decimal.Decimal
	Currency    string
	Method      string
}

// Receipt is the result of a successful charge.
type Receipt struct {
	Reference   string
	ProcessedAt time.Time
}

// GatewayError is a transient gateway failure. The charge mutated nothing
// and is safe to retry.
type GatewayError struct {
	Reason string
}

func (e *GatewayError) Error() string { return "payment gateway: " + e.Reason }

// Transient reports that retrying the charge is safe.
func (e *GatewayError) Transient() bool { return true }

// Gateway processes payment charges.
type Gateway interface {
	Charge(ctx context.Context, req Request) (*Receipt, error)
}
