package coupon

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Validator validates a coupon code against a cart subtotal and returns the
// applied-coupon descriptor.
type Validator interface {
	Validate(ctx context.Context, code string, subtotal decimal.Decimal) (*Applied, error)
}

// RepoValidator implements Validator by looking up coupon rules from a
// Repository.
type RepoValidator struct {
	repo Repository
	now  func() time.Time
}

// NewRepoValidator creates a RepoValidator backed by the given Repository.
func NewRepoValidator(repo Repository) *RepoValidator {
	return &RepoValidator{repo: repo, now: time.Now}
}

// Validate looks up the rule for the given code, checks its valid window,
// usage cap, and minimum purchase against the subtotal, and increments the
// usage counter on success. Codes are normalized to upper case before lookup.
// Validation failures leave the usage counter untouched.
func (v *RepoValidator) Validate(ctx context.Context, code string, subtotal decimal.Decimal) (*Applied, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))

	rule, err := v.repo.FindByCode(ctx, normalized)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "lookup coupon")
	}

	now := v.now()

	if rule.ValidFrom != nil && now.Before(*rule.ValidFrom) {
		return nil, ErrNotYetActive
	}
	if rule.ValidUntil != nil && now.After(*rule.ValidUntil) {
		return nil, ErrExpired
	}
	if rule.MaxUses > 0 && rule.Uses >= rule.MaxUses {
		return nil, ErrUsageLimitReached
	}
	if subtotal.LessThan(rule.MinPurchase) {
		return nil, ErrBelowMinimum
	}

	// Usage is only tracked for capped rules. Removal of an applied coupon
	// is not a usage refund.
	if rule.MaxUses > 0 {
		if err := v.repo.IncrementUses(ctx, rule.Code); err != nil {
			return nil, errors.Wrap(err, "increment coupon uses")
		}
	}

	return &Applied{
		Code:        rule.Code,
		Type:        rule.Type,
		Value:       rule.Value,
		Description: rule.Description,
	}, nil
}
