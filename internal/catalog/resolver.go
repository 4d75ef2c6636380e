package catalog

import (
	"strings"

	"github.com/shopspring/decimal"
)

// StockInfo is the result of resolving a (product, color, size) selection.
type StockInfo struct {
	Stock     int
	UnitPrice decimal.Decimal
}

// Selection identifies a concrete purchasable unit of a product.
type Selection struct {
	Color string
	Size  string
}

// ResolveStock returns the available stock and effective unit price for the
// given selection. A product without variants resolves to its flat stock and
// base price; with variants, an unknown color or size resolves to zero stock.
// The lookup is pure.
func ResolveStock(p *Product, color, size string) StockInfo {
	if len(p.Variants) == 0 {
		return StockInfo{Stock: p.Stock, UnitPrice: p.Price}
	}

	v := findVariant(p, color)
	if v == nil {
		return StockInfo{UnitPrice: p.Price}
	}

	price := p.Price
	if v.Price != nil {
		price = *v.Price
	}

	for _, s := range v.Sizes {
		if strings.EqualFold(s.Size, size) {
			return StockInfo{Stock: s.Stock, UnitPrice: price}
		}
	}
	return StockInfo{UnitPrice: price}
}

// SelectVariant returns the selection that results from switching to the
// given color: the size resets to the first size the new variant offers, so
// a stale size from the previous variant is never kept.
func SelectVariant(p *Product, color string) Selection {
	v := findVariant(p, color)
	if v == nil || len(v.Sizes) == 0 {
		return Selection{Color: color}
	}
	return Selection{Color: color, Size: v.Sizes[0].Size}
}

func findVariant(p *Product, color string) *Variant {
	for i := range p.Variants {
		if strings.EqualFold(p.Variants[i].Color, color) {
			return &p.Variants[i]
		}
	}
	return nil
}
