package postgres

import (
	"context"
	"encoding/json"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/maisonnoire/storefront/internal/cart"
	"github.com/maisonnoire/storefront/internal/order"
	"github.com/maisonnoire/storefront/internal/shipping"
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL. Line
// items, addresses, totals, and the tracking log are stored as JSONB; status
// fields are columns so they can be queried.
type OrderRepository struct {
	db DB
}

// NewOrderRepository returns an OrderRepository using the given pool.
func NewOrderRepository(db DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create persists a new order.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	doc, err := marshalDoc(o)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO orders (id, number, coupon_code, payment_method, payment_status, payment_ref, status, doc, created_at, updated_at, delivered_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		o.ID, o.Number, o.CouponCode, o.PaymentMethod, o.PaymentStatus, o.PaymentRef,
		o.Status, doc, o.CreatedAt, o.UpdatedAt, o.DeliveredAt,
	)
	if err != nil {
		return errors.Wrapf(err, "create order %q", o.ID)
	}
	return nil
}

// GetByID loads one order. Returns order.ErrNotFound when it does not exist.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, number, coupon_code, payment_method, payment_status, payment_ref, status, doc, created_at, updated_at, delivered_at
		FROM orders WHERE id = $1`, id)

	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, errors.Wrapf(err, "get order %q", id)
	}
	return o, nil
}

// Update replaces the mutable fields of an order: status, payment state,
// tracking log, timestamps. The snapshot itself never changes.
func (r *OrderRepository) Update(ctx context.Context, o *order.Order) error {
	doc, err := marshalDoc(o)
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, `
		UPDATE orders
		SET payment_status = $2, payment_ref = $3, status = $4, doc = $5, updated_at = $6, delivered_at = $7
		WHERE id = $1`,
		o.ID, o.PaymentStatus, o.PaymentRef, o.Status, doc, o.UpdatedAt, o.DeliveredAt,
	)
	if err != nil {
		return errors.Wrapf(err, "update order %q", o.ID)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

// List returns all orders, newest first.
func (r *OrderRepository) List(ctx context.Context) ([]order.Order, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, number, coupon_code, payment_method, payment_status, payment_ref, status, doc, created_at, updated_at, delivered_at
		FROM orders ORDER BY created_at DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "query orders")
	}
	defer rows.Close()

	var out []order.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan order")
		}
		out = append(out, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate orders")
	}
	return out, nil
}

func marshalDoc(o *order.Order) ([]byte, error) {
	doc := struct {
		Items           []cart.LineItem       `json:"items"`
		Totals          cart.Totals           `json:"totals"`
		ShippingAddress order.Address         `json:"shipping_address"`
		BillingAddress  order.Address         `json:"billing_address"`
		ShippingMethod  shipping.Method       `json:"shipping_method"`
		Tracking        []order.TrackingEvent `json:"tracking,omitempty"`
	}{
		Items:           o.Items,
		Totals:          o.Totals,
		ShippingAddress: o.ShippingAddress,
		BillingAddress:  o.BillingAddress,
		ShippingMethod:  o.ShippingMethod,
		Tracking:        o.Tracking,
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, errors.Wrap(err, "marshal order doc")
	}
	return data, nil
}

func scanOrder(row rowScanner) (*order.Order, error) {
	var (
		o       order.Order
		docJSON []byte
	)
	err := row.Scan(
		&o.ID, &o.Number, &o.CouponCode, &o.PaymentMethod, &o.PaymentStatus,
		&o.PaymentRef, &o.Status, &docJSON, &o.CreatedAt, &o.UpdatedAt, &o.DeliveredAt,
	)
	if err != nil {
		return nil, err
	}

	var doc struct {
		Items           []cart.LineItem       `json:"items"`
		Totals          cart.Totals           `json:"totals"`
		ShippingAddress order.Address         `json:"shipping_address"`
		BillingAddress  order.Address         `json:"billing_address"`
		ShippingMethod  shipping.Method       `json:"shipping_method"`
		Tracking        []order.TrackingEvent `json:"tracking"`
	}
	if err := json.Unmarshal(docJSON, &doc); err != nil {
		return nil, errors.Wrap(err, "unmarshal order doc")
	}

	o.Items = doc.Items
	o.Totals = doc.Totals
	o.ShippingAddress = doc.ShippingAddress
	o.BillingAddress = doc.BillingAddress
	o.ShippingMethod = doc.ShippingMethod
	o.Tracking = doc.Tracking
	return &o, nil
}
