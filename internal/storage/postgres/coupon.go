package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/maisonnoire/storefront/internal/coupon"
)

var _ coupon.Repository = (*CouponRepository)(nil)

// CouponRepository implements coupon.Repository backed by PostgreSQL.
type CouponRepository struct {
	db DB
}

// NewCouponRepository returns a CouponRepository using the given pool.
func NewCouponRepository(db DB) *CouponRepository {
	return &CouponRepository{db: db}
}

// FindByCode looks up a coupon by code, case-insensitively. Returns
// coupon.ErrNotFound when no rule exists. Window and usage checks are the
// validator's concern, not the query's.
func (r *CouponRepository) FindByCode(ctx context.Context, code string) (*coupon.Rule, error) {
	row := r.db.QueryRow(ctx, `
		SELECT code, type, value, min_purchase, max_uses, uses, valid_from, valid_until, description
		FROM coupons
		WHERE code = UPPER($1)`, code)

	var rule coupon.Rule
	err := row.Scan(
		&rule.Code, &rule.Type, &rule.Value, &rule.MinPurchase,
		&rule.MaxUses, &rule.Uses, &rule.ValidFrom, &rule.ValidUntil,
		&rule.Description,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, coupon.ErrNotFound
		}
		return nil, errors.Wrapf(err, "find coupon %q", code)
	}
	return &rule, nil
}

// IncrementUses bumps a coupon's usage counter. The cap check happens in the
// UPDATE itself so concurrent checkouts cannot push uses past max_uses.
func (r *CouponRepository) IncrementUses(ctx context.Context, code string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE coupons SET uses = uses + 1
		WHERE code = UPPER($1) AND (max_uses = 0 OR uses < max_uses)`, code)
	if err != nil {
		return errors.Wrapf(err, "increment uses for %q", code)
	}
	if tag.RowsAffected() == 0 {
		return coupon.ErrUsageLimitReached
	}
	return nil
}

// Upsert inserts or replaces a coupon rule. Usage counters are preserved on
// replace. Used by the seed and ingest commands.
func (r *CouponRepository) Upsert(ctx context.Context, rule *coupon.Rule) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO coupons (code, type, value, min_purchase, max_uses, uses, valid_from, valid_until, description)
		VALUES (UPPER($1), $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (code) DO UPDATE SET
			type = EXCLUDED.type,
			value = EXCLUDED.value,
			min_purchase = EXCLUDED.min_purchase,
			max_uses = EXCLUDED.max_uses,
			valid_from = EXCLUDED.valid_from,
			valid_until = EXCLUDED.valid_until,
			description = EXCLUDED.description`,
		rule.Code, rule.Type, rule.Value, rule.MinPurchase,
		rule.MaxUses, rule.Uses, rule.ValidFrom, rule.ValidUntil,
		rule.Description,
	)
	if err != nil {
		return errors.Wrapf(err, "upsert coupon %q", rule.Code)
	}
	return nil
}
