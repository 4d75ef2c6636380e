package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maisonnoire/storefront/internal/cart"
	"github.com/maisonnoire/storefront/internal/coupon"
	"github.com/maisonnoire/storefront/internal/shipping"
)

func setupStore(t *testing.T) (*CartStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCartStore(client, 24*time.Hour), mr
}

func sampleCart() *cart.Cart {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	orig := decimal.NewFromInt(52000)
	return &cart.Cart{
		ID: "c-001",
		Items: []cart.LineItem{
			{
				ProductID:     "silk-blouse",
				Name:          "Silk Blouse",
				Color:         "Ivory",
				Size:          "M",
				UnitPrice:     decimal.NewFromInt(45000),
				OriginalPrice: &orig,
				Quantity:      2,
				MaxQuantity:   5,
				InStock:       true,
				PreOrder:      &cart.PreOrderInfo{EstimatedDelivery: "2026-04-01"},
			},
		},
		Coupon: &coupon.Applied{
			Code:  "WELCOME10",
			Type:  coupon.TypePercentage,
			Value: decimal.NewFromInt(10),
		},
		ShippingMethod: &shipping.Method{
			ID: "standard", Name: "Standard", Price: decimal.NewFromInt(2500), EstimatedDays: 5,
		},
		Totals: cart.Totals{
			Subtotal: decimal.NewFromInt(90000),
			Discount: decimal.NewFromInt(9000),
			Tax:      decimal.NewFromInt(6750),
			Shipping: decimal.Zero,
			Total:    decimal.NewFromInt(87750),
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestCartStore_RoundTrip(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	want := sampleCart()
	require.NoError(t, store.Save(ctx, want))

	got, err := store.Get(ctx, "c-001")
	require.NoError(t, err)

	assert.Equal(t, want.ID, got.ID)
	require.Len(t, got.Items, 1)
	assert.Equal(t, want.Items[0].ProductID, got.Items[0].ProductID)
	assert.Equal(t, want.Items[0].Quantity, got.Items[0].Quantity)
	assert.True(t, want.Items[0].UnitPrice.Equal(got.Items[0].UnitPrice))
	require.NotNil(t, got.Items[0].OriginalPrice)
	assert.True(t, want.Items[0].OriginalPrice.Equal(*got.Items[0].OriginalPrice))
	require.NotNil(t, got.Items[0].PreOrder)
	assert.Equal(t, "2026-04-01", got.Items[0].PreOrder.EstimatedDelivery)

	require.NotNil(t, got.Coupon)
	assert.Equal(t, "WELCOME10", got.Coupon.Code)
	assert.True(t, want.Coupon.Value.Equal(got.Coupon.Value))

	require.NotNil(t, got.ShippingMethod)
	assert.Equal(t, "standard", got.ShippingMethod.ID)

	assert.True(t, want.Totals.Total.Equal(got.Totals.Total))
	assert.True(t, want.UpdatedAt.Equal(got.UpdatedAt))
}

func TestCartStore_GetMissing(t *testing.T) {
	store, _ := setupStore(t)

	_, err := store.Get(context.Background(), "ghost")
	assert.ErrorIs(t, err, cart.ErrNotFound)
}

func TestCartStore_Delete(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sampleCart()))
	require.NoError(t, store.Delete(ctx, "c-001"))

	_, err := store.Get(ctx, "c-001")
	assert.ErrorIs(t, err, cart.ErrNotFound)
}

func TestCartStore_TTL(t *testing.T) {
	store, mr := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sampleCart()))

	mr.FastForward(25 * time.Hour)

	_, err := store.Get(ctx, "c-001")
	assert.ErrorIs(t, err, cart.ErrNotFound)
}
