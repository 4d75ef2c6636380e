package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/maisonnoire/storefront/internal/catalog"
)

// ListProducts handles GET /api/products.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	for i := range products {
		h.resolveImages(&products[i])
	}
	writeJSON(w, http.StatusOK, response{Data: products})
}

// GetProduct handles GET /api/products/{id}.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		badRequest(w, "product id is required")
		return
	}

	p, err := h.products.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.resolveImages(p)
	writeJSON(w, http.StatusOK, response{Data: p})
}

// ListShippingMethods handles GET /api/shipping-methods.
func (h *Handler) ListShippingMethods(w http.ResponseWriter, r *http.Request) {
	methods, err := h.shipping.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, response{Data: methods})
}

// resolveImages prefixes relative image paths with the configured base URL.
func (h *Handler) resolveImages(p *catalog.Product) {
	if h.imageBaseURL == "" {
		return
	}
	p.Image.Thumbnail = h.resolveImageURL(p.Image.Thumbnail)
	p.Image.Full = h.resolveImageURL(p.Image.Full)
}

func (h *Handler) resolveImageURL(path string) string {
	if path == "" || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimSuffix(h.imageBaseURL, "/") + "/" + strings.TrimPrefix(path, "/")
}
