package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func variantProduct() *Product {
	noirPrice := dec(48000)
	return &Product{
		ID:    "silk-blouse",
		Name:  "Silk Blouse",
		Price: dec(45000),
		Variants: []Variant{
			{
				Color: "Ivory",
				Sizes: []SizeStock{
					{Size: "S", Stock: 3},
					{Size: "M", Stock: 5},
					{Size: "L", Stock: 0},
				},
			},
			{
				Color: "Noir",
				Price: &noirPrice,
				Sizes: []SizeStock{
					{Size: "M", Stock: 2},
				},
			},
		},
	}
}

func TestResolveStock(t *testing.T) {
	tests := []struct {
		name      string
		product   *Product
		color     string
		size      string
		wantStock int
		wantPrice decimal.Decimal
	}{
		{
			name:      "flat product falls back to base stock and price",
			product:   &Product{ID: "scarf", Price: dec(12000), Stock: 8},
			wantStock: 8,
			wantPrice: dec(12000),
		},
		{
			name:      "variant and size found",
			product:   variantProduct(),
			color:     "Ivory",
			size:      "M",
			wantStock: 5,
			wantPrice: dec(45000),
		},
		{
			name:      "variant price override",
			product:   variantProduct(),
			color:     "Noir",
			size:      "M",
			wantStock: 2,
			wantPrice: dec(48000),
		},
		{
			name:      "size sold out resolves to zero stock",
			product:   variantProduct(),
			color:     "Ivory",
			size:      "L",
			wantStock: 0,
			wantPrice: dec(45000),
		},
		{
			name:      "unknown size resolves to zero stock",
			product:   variantProduct(),
			color:     "Ivory",
			size:      "XXL",
			wantStock: 0,
			wantPrice: dec(45000),
		},
		{
			name:      "unknown color resolves to zero stock",
			product:   variantProduct(),
			color:     "Crimson",
			size:      "M",
			wantStock: 0,
			wantPrice: dec(45000),
		},
		{
			name:      "no size selected on variant product resolves to zero stock",
			product:   variantProduct(),
			color:     "Ivory",
			wantStock: 0,
			wantPrice: dec(45000),
		},
		{
			name:      "color lookup is case-insensitive",
			product:   variantProduct(),
			color:     "ivory",
			size:      "s",
			wantStock: 3,
			wantPrice: dec(45000),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveStock(tt.product, tt.color, tt.size)

			assert.Equal(t, tt.wantStock, got.Stock)
			assert.True(t, tt.wantPrice.Equal(got.UnitPrice),
				"expected price %s, got %s", tt.wantPrice, got.UnitPrice)
		})
	}
}

func TestSelectVariant(t *testing.T) {
	p := variantProduct()

	t.Run("switching variant resets size to its first size", func(t *testing.T) {
		sel := SelectVariant(p, "Noir")
		assert.Equal(t, Selection{Color: "Noir", Size: "M"}, sel)

		sel = SelectVariant(p, "Ivory")
		assert.Equal(t, Selection{Color: "Ivory", Size: "S"}, sel)
	})

	t.Run("unknown color keeps size empty", func(t *testing.T) {
		sel := SelectVariant(p, "Crimson")
		assert.Equal(t, Selection{Color: "Crimson"}, sel)
	})
}
