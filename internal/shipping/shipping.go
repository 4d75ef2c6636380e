// Package shipping holds the shipping method catalog consumed by the cart
// engine and checkout.
package shipping

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested shipping method does not exist.
var ErrNotFound = errors.New("shipping method not found")

// Method is a deliverable shipping option with its price and estimated
// transit time in days.
type Method struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	EstimatedDays int             `json:"estimated_days"`
}

// Repository defines read operations for the shipping method catalog.
type Repository interface {
	List(ctx context.Context) ([]Method, error)
	GetByID(ctx context.Context, id string) (*Method, error)
}
