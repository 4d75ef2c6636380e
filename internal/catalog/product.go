package catalog

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product represents a catalog item available for purchase.
//
// A product either carries a variant matrix (color -> sizes -> stock) or a
// flat Stock count; the resolver falls back to the flat fields when no
// variants are defined.
type Product struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Category      string           `json:"category,omitempty"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"original_price,omitempty"`
	Stock         int              `json:"stock"`
	MaxQuantity   int              `json:"max_quantity,omitempty"`
	Variants      []Variant        `json:"variants,omitempty"`
	PreOrder      *PreOrder        `json:"pre_order,omitempty"`
	Image         Image            `json:"image"`
}

// Variant is a color variant with its own size/stock matrix and an optional
// price override.
type Variant struct {
	Color string           `json:"color"`
	Price *decimal.Decimal `json:"price,omitempty"`
	Sizes []SizeStock      `json:"sizes"`
}

// SizeStock holds the available stock for a single size of a variant.
type SizeStock struct {
	Size  string `json:"size"`
	Stock int    `json:"stock"`
}

// PreOrder marks a product as purchasable ahead of availability.
type PreOrder struct {
	EstimatedDelivery string `json:"estimated_delivery"`
}

// Image holds responsive image URLs for a product.
type Image struct {
	Thumbnail string `json:"thumbnail"`
	Full      string `json:"full"`
}

// Repository defines read operations for the product catalog.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]Product, error)
}
