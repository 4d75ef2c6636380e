package postgres

import (
	"context"
	"encoding/json"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/maisonnoire/storefront/internal/catalog"
)

var _ catalog.Repository = (*ProductRepository)(nil)

// ProductRepository implements catalog.Repository backed by PostgreSQL.
// Variants and pre-order metadata are stored as JSONB.
type ProductRepository struct {
	db DB
}

// NewProductRepository returns a ProductRepository using the given pool.
func NewProductRepository(db DB) *ProductRepository {
	return &ProductRepository{db: db}
}

const productColumns = `id, name, category, price, original_price, stock, max_quantity, variants, pre_order, image_thumbnail, image_full`

// List returns the full catalog.
func (r *ProductRepository) List(ctx context.Context) ([]catalog.Product, error) {
	rows, err := r.db.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY name`)
	if err != nil {
		return nil, errors.Wrap(err, "query products")
	}
	defer rows.Close()

	return scanProducts(rows)
}

// GetByID returns one product. Returns catalog.ErrNotFound when it does not
// exist.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*catalog.Product, error) {
	row := r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)

	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrNotFound
		}
		return nil, errors.Wrapf(err, "get product %q", id)
	}
	return p, nil
}

// GetByIDs returns the products for the given IDs in a single query. Missing
// IDs are simply absent from the result.
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []string) ([]catalog.Product, error) {
	rows, err := r.db.Query(ctx, `SELECT `+productColumns+` FROM products WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, errors.Wrap(err, "query products by ids")
	}
	defer rows.Close()

	return scanProducts(rows)
}

// Upsert inserts or replaces a product. Used by the seed command.
func (r *ProductRepository) Upsert(ctx context.Context, p *catalog.Product) error {
	variants, err := json.Marshal(p.Variants)
	if err != nil {
		return errors.Wrap(err, "marshal variants")
	}
	var preOrder []byte
	if p.PreOrder != nil {
		if preOrder, err = json.Marshal(p.PreOrder); err != nil {
			return errors.Wrap(err, "marshal pre-order")
		}
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO products (id, name, category, price, original_price, stock, max_quantity, variants, pre_order, image_thumbnail, image_full)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			category = EXCLUDED.category,
			price = EXCLUDED.price,
			original_price = EXCLUDED.original_price,
			stock = EXCLUDED.stock,
			max_quantity = EXCLUDED.max_quantity,
			variants = EXCLUDED.variants,
			pre_order = EXCLUDED.pre_order,
			image_thumbnail = EXCLUDED.image_thumbnail,
			image_full = EXCLUDED.image_full`,
		p.ID, p.Name, p.Category, p.Price, p.OriginalPrice, p.Stock, p.MaxQuantity,
		variants, preOrder, p.Image.Thumbnail, p.Image.Full,
	)
	if err != nil {
		return errors.Wrapf(err, "upsert product %q", p.ID)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*catalog.Product, error) {
	var (
		p            catalog.Product
		variantsJSON []byte
		preOrderJSON []byte
	)
	err := row.Scan(
		&p.ID, &p.Name, &p.Category, &p.Price, &p.OriginalPrice,
		&p.Stock, &p.MaxQuantity, &variantsJSON, &preOrderJSON,
		&p.Image.Thumbnail, &p.Image.Full,
	)
	if err != nil {
		return nil, err
	}

	if len(variantsJSON) > 0 {
		if err := json.Unmarshal(variantsJSON, &p.Variants); err != nil {
			return nil, errors.Wrap(err, "unmarshal variants")
		}
	}
	if len(preOrderJSON) > 0 {
		p.PreOrder = &catalog.PreOrder{}
		if err := json.Unmarshal(preOrderJSON, p.PreOrder); err != nil {
			return nil, errors.Wrap(err, "unmarshal pre-order")
		}
	}
	return &p, nil
}

func scanProducts(rows pgx.Rows) ([]catalog.Product, error) {
	var out []catalog.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan product")
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate products")
	}
	return out, nil
}
