package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"

	"github.com/maisonnoire/storefront/internal/checkout"
	"github.com/maisonnoire/storefront/internal/order"
	"github.com/maisonnoire/storefront/internal/payment"
)

type checkoutRequest struct {
	ShippingAddress  order.Address  `json:"shipping_address"`
	BillingAddress   *order.Address `json:"billing_address,omitempty"`
	ShippingMethodID string         `json:"shipping_method_id"`
	PaymentMethod    string         `json:"payment_method"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type trackingRequest struct {
	Timestamp   time.Time `json:"timestamp,omitempty"`
	Status      string    `json:"status"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
}

// Checkout handles POST /api/checkout. It converts the cart identified by
// X-Cart-ID into an order and charges it. A declined charge still creates the
// order; the client retries via RetryPayment.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body: "+err.Error())
		return
	}

	billing := req.ShippingAddress
	if req.BillingAddress != nil {
		billing = *req.BillingAddress
	}

	o, err := h.checkout.Checkout(r.Context(), checkout.Request{
		CartID:           cartID(w, r),
		ShippingAddress:  req.ShippingAddress,
		BillingAddress:   billing,
		ShippingMethodID: req.ShippingMethodID,
		PaymentMethod:    req.PaymentMethod,
	})
	if err != nil {
		var gwErr *payment.GatewayError
		if errors.As(err, &gwErr) {
			writePaymentError(w, o, gwErr)
			return
		}
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, response{Data: o})
}

// RetryPayment handles POST /api/orders/{id}/pay.
func (h *Handler) RetryPayment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		badRequest(w, "order id is required")
		return
	}

	o, err := h.checkout.RetryPayment(r.Context(), id)
	if err != nil {
		var gwErr *payment.GatewayError
		if errors.As(err, &gwErr) {
			writePaymentError(w, o, gwErr)
			return
		}
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, response{Data: o})
}

// ListOrders handles GET /api/orders.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	out, err := h.orders.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, response{Data: out})
}

// GetOrder handles GET /api/orders/{id}.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		badRequest(w, "order id is required")
		return
	}

	o, err := h.orders.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, response{Data: o})
}

// UpdateOrderStatus handles POST /api/orders/{id}/status.
func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	id := chi.URLParam(r, "id")
	if id == "" {
		badRequest(w, "order id is required")
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body: "+err.Error())
		return
	}
	if req.Status == "" {
		badRequest(w, "status is required")
		return
	}

	o, err := h.lifecycle.UpdateStatus(r.Context(), id, order.Status(req.Status))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, response{Data: o})
}

// AppendTracking handles POST /api/orders/{id}/tracking.
func (h *Handler) AppendTracking(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	id := chi.URLParam(r, "id")
	if id == "" {
		badRequest(w, "order id is required")
		return
	}

	var req trackingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body: "+err.Error())
		return
	}
	if req.Status == "" {
		badRequest(w, "status is required")
		return
	}

	o, err := h.lifecycle.AppendTracking(r.Context(), id, order.TrackingEvent{
		Timestamp:   req.Timestamp,
		Status:      req.Status,
		Description: req.Description,
		Location:    req.Location,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, response{Data: o})
}

// CancelOrder handles POST /api/orders/{id}/cancel.
func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		badRequest(w, "order id is required")
		return
	}

	o, err := h.lifecycle.Cancel(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, response{Data: o})
}
