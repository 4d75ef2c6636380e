package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/maisonnoire/storefront/internal/cart"
	"github.com/maisonnoire/storefront/internal/catalog"
	"github.com/maisonnoire/storefront/internal/checkout"
	"github.com/maisonnoire/storefront/internal/coupon"
	"github.com/maisonnoire/storefront/internal/order"
	"github.com/maisonnoire/storefront/internal/payment"
	"github.com/maisonnoire/storefront/internal/shipping"
	"github.com/maisonnoire/storefront/pkg/validate"
)

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// ImageBaseURL is prepended to relative image paths in product responses.
	// When empty, image paths are returned as stored.
	ImageBaseURL string
}

// Handler serves the storefront HTTP API, delegating business logic to the
// domain services.
type Handler struct {
	products     catalog.Repository
	carts        *cart.Engine
	shipping     shipping.Repository
	checkout     *checkout.Service
	orders       order.Repository
	lifecycle    *order.Lifecycle
	imageBaseURL string
}

// New constructs a Handler with the required domain dependencies.
func New(
	cfg Config,
	products catalog.Repository,
	carts *cart.Engine,
	ship shipping.Repository,
	co *checkout.Service,
	orders order.Repository,
	lifecycle *order.Lifecycle,
) *Handler {
	return &Handler{
		products:     products,
		carts:        carts,
		shipping:     ship,
		checkout:     co,
		orders:       orders,
		lifecycle:    lifecycle,
		imageBaseURL: cfg.ImageBaseURL,
	}
}

// response is the envelope for every JSON reply.
type response struct {
	Data  any            `json:"data,omitempty"`
	Error *errorResponse `json:"error,omitempty"`
}

type errorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, response{
		Error: &errorResponse{Code: "INVALID_INPUT", Message: msg},
	})
}

// writeError maps domain errors onto HTTP status codes. Anything unmapped is
// logged and reported as a 500 without leaking the cause.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var valErr *validate.Error
	if errors.As(err, &valErr) {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{
				Code:    "VALIDATION_ERROR",
				Message: "request validation failed",
				Fields:  valErr.Fields(),
			},
		})
		return
	}

	var stockErr *cart.StockError
	if errors.As(err, &stockErr) {
		writeJSON(w, http.StatusUnprocessableEntity, response{
			Error: &errorResponse{Code: "INSUFFICIENT_STOCK", Message: stockErr.Error()},
		})
		return
	}

	var transErr *order.TransitionError
	if errors.As(err, &transErr) {
		writeJSON(w, http.StatusConflict, response{
			Error: &errorResponse{Code: "INVALID_TRANSITION", Message: transErr.Error()},
		})
		return
	}

	switch {
	case errors.Is(err, catalog.ErrNotFound):
		writeJSON(w, http.StatusNotFound, response{
			Error: &errorResponse{Code: "PRODUCT_NOT_FOUND", Message: "product not found"},
		})
	case errors.Is(err, cart.ErrItemNotFound):
		writeJSON(w, http.StatusNotFound, response{
			Error: &errorResponse{Code: "ITEM_NOT_FOUND", Message: "item not in cart"},
		})
	case errors.Is(err, shipping.ErrNotFound):
		writeJSON(w, http.StatusUnprocessableEntity, response{
			Error: &errorResponse{Code: "UNKNOWN_SHIPPING_METHOD", Message: "unknown shipping method"},
		})
	case errors.Is(err, order.ErrNotFound):
		writeJSON(w, http.StatusNotFound, response{
			Error: &errorResponse{Code: "ORDER_NOT_FOUND", Message: "order not found"},
		})
	case errors.Is(err, order.ErrEmptyCart):
		writeJSON(w, http.StatusUnprocessableEntity, response{
			Error: &errorResponse{Code: "EMPTY_CART", Message: "cart is empty"},
		})
	case errors.Is(err, order.ErrNonMonotonicTracking):
		writeJSON(w, http.StatusUnprocessableEntity, response{
			Error: &errorResponse{Code: "STALE_TRACKING_EVENT", Message: err.Error()},
		})
	case errors.Is(err, checkout.ErrAlreadyPaid):
		writeJSON(w, http.StatusConflict, response{
			Error: &errorResponse{Code: "ALREADY_PAID", Message: "order is already paid"},
		})
	case errors.Is(err, coupon.ErrNotFound),
		errors.Is(err, coupon.ErrBelowMinimum),
		errors.Is(err, coupon.ErrNotYetActive),
		errors.Is(err, coupon.ErrExpired),
		errors.Is(err, coupon.ErrUsageLimitReached):
		writeJSON(w, http.StatusUnprocessableEntity, response{
			Error: &errorResponse{Code: "INVALID_COUPON", Message: err.Error()},
		})
	default:
		zctx.From(r.Context()).Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeJSON(w, http.StatusInternalServerError, response{
			Error: &errorResponse{Code: "INTERNAL_ERROR", Message: "an internal error occurred"},
		})
	}
}

// writePaymentError reports a declined charge. The order survives in pending
// state, so it rides along in the envelope for the client to retry against.
func writePaymentError(w http.ResponseWriter, o *order.Order, err *payment.GatewayError) {
	resp := response{
		Error: &errorResponse{Code: "PAYMENT_FAILED", Message: err.Error()},
	}
	if o != nil {
		resp.Data = o
	}
	writeJSON(w, http.StatusPaymentRequired, resp)
}
