package cart

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/maisonnoire/storefront/internal/catalog"
	"github.com/maisonnoire/storefront/internal/coupon"
	"github.com/maisonnoire/storefront/internal/event"
	"github.com/maisonnoire/storefront/internal/shipping"
)

// Engine applies mutations to carts. Every mutation recomputes totals and
// persists the cart before returning, so a caller never observes a cart with
// stale totals. Mutations that fail leave the stored cart unchanged.
type Engine struct {
	store    Store
	catalog  catalog.Repository
	coupons  coupon.Validator
	shipping shipping.Repository
	events   event.Publisher
	pricing  Pricing
	now      func() time.Time
}

// NewEngine constructs an Engine with its collaborators.
func NewEngine(
	store Store,
	cat catalog.Repository,
	coupons coupon.Validator,
	ship shipping.Repository,
	events event.Publisher,
	pricing Pricing,
) *Engine {
	return &Engine{
		store:    store,
		catalog:  cat,
		coupons:  coupons,
		shipping: ship,
		events:   events,
		pricing:  pricing,
		now:      time.Now,
	}
}

// AddItemRequest identifies the selection to add and how many units.
type AddItemRequest struct {
	ProductID string
	Color     string
	Size      string
	Quantity  int
}

// Get returns the cart for the given ID, or a fresh empty cart when none is
// stored yet.
func (e *Engine) Get(ctx context.Context, cartID string) (*Cart, error) {
	c, err := e.store.Get(ctx, cartID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return e.newCart(cartID), nil
		}
		return nil, errors.Wrap(err, "load cart")
	}
	return c, nil
}

// AddItem adds the selection to the cart. An existing line item with the
// same (product, color, size) identity has its quantity incremented instead
// of a duplicate being inserted. The resulting quantity is clamped to the
// available stock and the product's per-order cap, whichever is smaller. An
// out-of-stock selection is rejected with a StockError and the cart is left
// unchanged.
func (e *Engine) AddItem(ctx context.Context, cartID string, req AddItemRequest) (*Cart, error) {
	if req.Quantity < 1 {
		req.Quantity = 1
	}

	c, err := e.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}

	p, err := e.catalog.GetByID(ctx, req.ProductID)
	if err != nil {
		return nil, errors.Wrap(err, "get product")
	}

	info := catalog.ResolveStock(p, req.Color, req.Size)
	if info.Stock <= 0 {
		return nil, &StockError{
			ProductID: req.ProductID,
			Color:     req.Color,
			Size:      req.Size,
			Requested: req.Quantity,
			Available: 0,
		}
	}
	maxQty := lineMax(info.Stock, p.MaxQuantity)

	if i := c.findItem(req.ProductID, req.Color, req.Size); i >= 0 {
		c.Items[i].Quantity = clampQty(c.Items[i].Quantity+req.Quantity, maxQty)
		c.Items[i].UnitPrice = info.UnitPrice
		c.Items[i].MaxQuantity = maxQty
		c.Items[i].InStock = true
	} else {
		item := LineItem{
			ProductID:     p.ID,
			Name:          p.Name,
			Color:         req.Color,
			Size:          req.Size,
			UnitPrice:     info.UnitPrice,
			OriginalPrice: p.OriginalPrice,
			Quantity:      clampQty(req.Quantity, maxQty),
			MaxQuantity:   maxQty,
			InStock:       true,
			Image:         p.Image.Thumbnail,
		}
		if p.PreOrder != nil {
			item.PreOrder = &PreOrderInfo{EstimatedDelivery: p.PreOrder.EstimatedDelivery}
		}
		c.Items = append(c.Items, item)
	}

	return e.commit(ctx, c)
}

// UpdateQuantity sets the quantity of an existing line item, clamped into
// [1, min(stock, product cap)]. A requested quantity of zero or below
// removes the item.
func (e *Engine) UpdateQuantity(ctx context.Context, cartID, productID, color, size string, qty int) (*Cart, error) {
	if qty <= 0 {
		return e.RemoveItem(ctx, cartID, productID, color, size)
	}

	c, err := e.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}

	i := c.findItem(productID, color, size)
	if i < 0 {
		return nil, ErrItemNotFound
	}

	p, err := e.catalog.GetByID(ctx, productID)
	if err != nil {
		return nil, errors.Wrap(err, "get product")
	}

	info := catalog.ResolveStock(p, color, size)
	if info.Stock <= 0 {
		return nil, &StockError{
			ProductID: productID,
			Color:     color,
			Size:      size,
			Requested: qty,
			Available: 0,
		}
	}
	maxQty := lineMax(info.Stock, p.MaxQuantity)

	c.Items[i].Quantity = clampQty(qty, maxQty)
	c.Items[i].UnitPrice = info.UnitPrice
	c.Items[i].MaxQuantity = maxQty
	c.Items[i].InStock = true

	return e.commit(ctx, c)
}

// RemoveItem deletes the matching line item from the cart.
func (e *Engine) RemoveItem(ctx context.Context, cartID, productID, color, size string) (*Cart, error) {
	c, err := e.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}

	i := c.findItem(productID, color, size)
	if i < 0 {
		return nil, ErrItemNotFound
	}
	c.Items = append(c.Items[:i], c.Items[i+1:]...)

	return e.commit(ctx, c)
}

// Clear removes all line items and the applied coupon.
func (e *Engine) Clear(ctx context.Context, cartID string) (*Cart, error) {
	c, err := e.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}

	c.Items = nil
	c.Coupon = nil

	return e.commit(ctx, c)
}

// ApplyCoupon validates the code against the current subtotal and attaches
// the applied coupon. A rejected code leaves the cart's totals unchanged and
// the rejection reason is returned. Applying a new code replaces the
// previous one.
func (e *Engine) ApplyCoupon(ctx context.Context, cartID, code string) (*Cart, error) {
	c, err := e.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}

	applied, err := e.coupons.Validate(ctx, code, Subtotal(c.Items))
	if err != nil {
		e.publish(ctx, event.CouponRejected, map[string]any{
			"cart_id": cartID,
			"code":    code,
			"reason":  err.Error(),
		})
		return nil, err
	}

	c.Coupon = applied
	c, err = e.commit(ctx, c)
	if err != nil {
		return nil, err
	}

	e.publish(ctx, event.CouponApplied, map[string]any{
		"cart_id": cartID,
		"code":    applied.Code,
		"type":    applied.Type,
	})
	return c, nil
}

// RemoveCoupon detaches the applied coupon. Usage counters are not refunded.
func (e *Engine) RemoveCoupon(ctx context.Context, cartID string) (*Cart, error) {
	c, err := e.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}

	c.Coupon = nil
	return e.commit(ctx, c)
}

// SetShippingMethod selects the shipping method used for totals.
func (e *Engine) SetShippingMethod(ctx context.Context, cartID, methodID string) (*Cart, error) {
	c, err := e.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}

	m, err := e.shipping.GetByID(ctx, methodID)
	if err != nil {
		return nil, errors.Wrap(err, "get shipping method")
	}

	c.ShippingMethod = m
	return e.commit(ctx, c)
}

// Recalculate recomputes and persists the totals without any other
// mutation. Idempotent.
func (e *Engine) Recalculate(ctx context.Context, cartID string) (*Cart, error) {
	c, err := e.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}
	return e.commit(ctx, c)
}

// commit recomputes totals, persists the cart, and emits cart.updated.
func (e *Engine) commit(ctx context.Context, c *Cart) (*Cart, error) {
	c.Totals = ComputeTotals(c.Items, c.Coupon, c.ShippingMethod, e.pricing)
	c.UpdatedAt = e.now()

	if err := e.store.Save(ctx, c); err != nil {
		return nil, errors.Wrap(err, "save cart")
	}

	e.publish(ctx, event.CartUpdated, map[string]any{
		"cart_id":    c.ID,
		"item_count": c.ItemCount(),
		"total":      c.Totals.Total,
	})
	return c, nil
}

func (e *Engine) newCart(id string) *Cart {
	now := e.now()
	return &Cart{ID: id, CreatedAt: now, UpdatedAt: now}
}

// publish is best-effort: a failed delivery never fails the mutation.
func (e *Engine) publish(ctx context.Context, name string, payload any) {
	if err := e.events.Publish(ctx, event.Event{Name: name, OccurredAt: e.now(), Payload: payload}); err != nil {
		zctx.From(ctx).Warn("Publish event", zap.String("event", name), zap.Error(err))
	}
}

func lineMax(stock, productCap int) int {
	if productCap > 0 && productCap < stock {
		return productCap
	}
	return stock
}

func clampQty(qty, max int) int {
	if qty < 1 {
		return 1
	}
	if max > 0 && qty > max {
		return max
	}
	return qty
}
