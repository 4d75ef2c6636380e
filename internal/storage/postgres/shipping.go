package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/maisonnoire/storefront/internal/shipping"
)

var _ shipping.Repository = (*ShippingRepository)(nil)

// ShippingRepository implements shipping.Repository backed by PostgreSQL.
type ShippingRepository struct {
	db DB
}

// NewShippingRepository returns a ShippingRepository using the given pool.
func NewShippingRepository(db DB) *ShippingRepository {
	return &ShippingRepository{db: db}
}

// List returns all shipping methods, cheapest first.
func (r *ShippingRepository) List(ctx context.Context) ([]shipping.Method, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, price, estimated_days FROM shipping_methods ORDER BY price`)
	if err != nil {
		return nil, errors.Wrap(err, "query shipping methods")
	}
	defer rows.Close()

	var out []shipping.Method
	for rows.Next() {
		var m shipping.Method
		if err := rows.Scan(&m.ID, &m.Name, &m.Price, &m.EstimatedDays); err != nil {
			return nil, errors.Wrap(err, "scan shipping method")
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate shipping methods")
	}
	return out, nil
}

// GetByID returns one shipping method. Returns shipping.ErrNotFound when it
// does not exist.
func (r *ShippingRepository) GetByID(ctx context.Context, id string) (*shipping.Method, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, name, price, estimated_days FROM shipping_methods WHERE id = $1`, id)

	var m shipping.Method
	if err := row.Scan(&m.ID, &m.Name, &m.Price, &m.EstimatedDays); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shipping.ErrNotFound
		}
		return nil, errors.Wrapf(err, "get shipping method %q", id)
	}
	return &m, nil
}

// Upsert inserts or replaces a shipping method. Used by the seed command.
func (r *ShippingRepository) Upsert(ctx context.Context, m *shipping.Method) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO shipping_methods (id, name, price, estimated_days)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			price = EXCLUDED.price,
			estimated_days = EXCLUDED.estimated_days`,
		m.ID, m.Name, m.Price, m.EstimatedDays,
	)
	if err != nil {
		return errors.Wrapf(err, "upsert shipping method %q", m.ID)
	}
	return nil
}
