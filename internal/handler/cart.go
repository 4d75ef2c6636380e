package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/maisonnoire/storefront/internal/cart"
)

// cartIDHeader carries the client's cart identity. The server mints one on
// first contact and echoes it back so the client can persist it.
const cartIDHeader = "X-Cart-ID"

// cartID extracts the cart identity from the request, minting a fresh one
// when the header is absent. The effective ID is always echoed back.
func cartID(w http.ResponseWriter, r *http.Request) string {
	id := r.Header.Get(cartIDHeader)
	if id == "" {
		id = uuid.NewString()
	}
	w.Header().Set(cartIDHeader, id)
	return id
}

type addItemRequest struct {
	ProductID string `json:"product_id"`
	Color     string `json:"color,omitempty"`
	Size      string `json:"size,omitempty"`
	Quantity  int    `json:"quantity"`
}

type updateItemRequest struct {
	Color    string `json:"color,omitempty"`
	Size     string `json:"size,omitempty"`
	Quantity int    `json:"quantity"`
}

type applyCouponRequest struct {
	Code string `json:"code"`
}

type setShippingRequest struct {
	MethodID string `json:"method_id"`
}

// GetCart handles GET /api/cart.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	c, err := h.carts.Get(r.Context(), cartID(w, r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, response{Data: c})
}

// AddCartItem handles POST /api/cart/items.
func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body: "+err.Error())
		return
	}
	if req.ProductID == "" {
		badRequest(w, "product_id is required")
		return
	}
	if req.Quantity <= 0 {
		badRequest(w, "quantity must be positive")
		return
	}

	c, err := h.carts.AddItem(r.Context(), cartID(w, r), cart.AddItemRequest{
		ProductID: req.ProductID,
		Color:     req.Color,
		Size:      req.Size,
		Quantity:  req.Quantity,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, response{Data: c})
}

// UpdateCartItem handles PUT /api/cart/items/{productID}. A quantity of zero
// removes the line.
func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	productID := chi.URLParam(r, "productID")
	if productID == "" {
		badRequest(w, "product id is required")
		return
	}

	var req updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body: "+err.Error())
		return
	}

	c, err := h.carts.UpdateQuantity(r.Context(), cartID(w, r), productID, req.Color, req.Size, req.Quantity)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, response{Data: c})
}

// RemoveCartItem handles DELETE /api/cart/items/{productID}. Color and size
// select the line via query parameters.
func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")
	if productID == "" {
		badRequest(w, "product id is required")
		return
	}
	color := r.URL.Query().Get("color")
	size := r.URL.Query().Get("size")

	c, err := h.carts.RemoveItem(r.Context(), cartID(w, r), productID, color, size)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, response{Data: c})
}

// ClearCart handles DELETE /api/cart.
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	c, err := h.carts.Clear(r.Context(), cartID(w, r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, response{Data: c})
}

// ApplyCoupon handles POST /api/cart/coupon.
func (h *Handler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req applyCouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body: "+err.Error())
		return
	}
	if req.Code == "" {
		badRequest(w, "code is required")
		return
	}

	c, err := h.carts.ApplyCoupon(r.Context(), cartID(w, r), req.Code)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, response{Data: c})
}

// RemoveCoupon handles DELETE /api/cart/coupon.
func (h *Handler) RemoveCoupon(w http.ResponseWriter, r *http.Request) {
	c, err := h.carts.RemoveCoupon(r.Context(), cartID(w, r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, response{Data: c})
}

// SetShippingMethod handles PUT /api/cart/shipping-method.
func (h *Handler) SetShippingMethod(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req setShippingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body: "+err.Error())
		return
	}
	if req.MethodID == "" {
		badRequest(w, "method_id is required")
		return
	}

	c, err := h.carts.SetShippingMethod(r.Context(), cartID(w, r), req.MethodID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, response{Data: c})
}
