package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Routes builds the API router. Ambient middleware (logging, metrics, rate
// limiting) is layered on by the caller.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))

	r.Route("/api", func(r chi.Router) {
		r.Get("/products", h.ListProducts)
		r.Get("/products/{id}", h.GetProduct)
		r.Get("/shipping-methods", h.ListShippingMethods)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.GetCart)
			r.Delete("/", h.ClearCart)
			r.Post("/items", h.AddCartItem)
			r.Put("/items/{productID}", h.UpdateCartItem)
			r.Delete("/items/{productID}", h.RemoveCartItem)
			r.Post("/coupon", h.ApplyCoupon)
			r.Delete("/coupon", h.RemoveCoupon)
			r.Put("/shipping-method", h.SetShippingMethod)
		})

		r.Post("/checkout", h.Checkout)

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", h.ListOrders)
			r.Get("/{id}", h.GetOrder)
			r.Post("/{id}/pay", h.RetryPayment)
			r.Post("/{id}/status", h.UpdateOrderStatus)
			r.Post("/{id}/tracking", h.AppendTracking)
			r.Post("/{id}/cancel", h.CancelOrder)
		})
	})

	return r
}
