package coupon

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Type enumerates the supported coupon discount strategies.
type Type string

const (
	// TypePercentage applies a percentage-based discount to the subtotal.
	TypePercentage Type = "percentage"
	// TypeFixed applies a fixed monetary discount capped at the subtotal.
	TypeFixed Type = "fixed"
	// TypeFreeShipping waives the shipping cost instead of discounting
	// the subtotal.
	TypeFreeShipping Type = "free_shipping"
)

var (
	// ErrNotFound is returned when a coupon code does not exist.
	ErrNotFound = errors.New("coupon not found")
	// ErrBelowMinimum is returned when the cart subtotal is below the
	// coupon's minimum purchase threshold.
	ErrBelowMinimum = errors.New("cart subtotal below coupon minimum purchase")
	// ErrNotYetActive is returned when a coupon's valid window has not
	// started yet.
	ErrNotYetActive = errors.New("coupon not yet active")
	// ErrExpired is returned when a coupon's valid window has passed.
	ErrExpired = errors.New("coupon expired")
	// ErrUsageLimitReached is returned when a coupon has exhausted its
	// allowed uses.
	ErrUsageLimitReached = errors.New("coupon usage limit reached")
)

// Rule defines a coupon's discount behaviour and eligibility constraints.
// Code is matched case-insensitively.
type Rule struct {
	Code        string
	Type        Type
	Value       decimal.Decimal
	MinPurchase decimal.Decimal
	MaxUses     int
	Uses        int
	ValidFrom   *time.Time
	ValidUntil  *time.Time
	Description string
}

// Applied describes a coupon that passed validation and is attached to a
// cart. The discount amount itself is derived from the cart totals, not
// stored here, so totals can never drift from their inputs.
type Applied struct {
	Code        string          `json:"code"`
	Type        Type            `json:"type"`
	Value       decimal.Decimal `json:"value"`
	Description string          `json:"description,omitempty"`
}

// Repository provides lookup and usage accounting for coupon rules.
type Repository interface {
	FindByCode(ctx context.Context, code string) (*Rule, error)
	IncrementUses(ctx context.Context, code string) error
}
