// Package redis implements cart persistence on Redis.
package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"

	"github.com/maisonnoire/storefront/internal/cart"
)

// keyPrefix namespaces all cart keys.
const keyPrefix = "cart:"

var _ cart.Store = (*CartStore)(nil)

// CartStore implements cart.Store backed by Redis. Carts are stored as JSON
// under a fixed key namespace and expire after the configured TTL.
type CartStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCartStore creates a CartStore with the given TTL for idle carts.
func NewCartStore(client *redis.Client, ttl time.Duration) *CartStore {
	return &CartStore{client: client, ttl: ttl}
}

// Get retrieves a cart by ID. Returns cart.ErrNotFound when no cart is
// stored under the key.
func (s *CartStore) Get(ctx context.Context, id string) (*cart.Cart, error) {
	data, err := s.client.Get(ctx, keyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, cart.ErrNotFound
		}
		return nil, errors.Wrap(err, "redis get cart")
	}

	var c cart.Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, errors.Wrap(err, "unmarshal cart")
	}
	return &c, nil
}

// Save persists the cart, refreshing its TTL.
func (s *CartStore) Save(ctx context.Context, c *cart.Cart) error {
	data, err := json.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "marshal cart")
	}

	if err := s.client.Set(ctx, keyPrefix+c.ID, data, s.ttl).Err(); err != nil {
		return errors.Wrap(err, "redis set cart")
	}
	return nil
}

// Delete removes the cart.
func (s *CartStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		return errors.Wrap(err, "redis del cart")
	}
	return nil
}
