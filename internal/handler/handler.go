// Package handler exposes the marketplace HTTP API: cart mutation, checkout,
// order status updates and the vendor notification surface.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/weddify/marketplace/internal/domain/cart"
	"github.com/weddify/marketplace/internal/domain/catalog"
	"github.com/weddify/marketplace/internal/domain/notification"
	"github.com/weddify/marketplace/internal/domain/order"
)

// Handler holds the domain services behind the HTTP surface.
type Handler struct {
	catalog       catalog.Repository
	carts         *cart.Service
	orders        *order.Service
	notifications *notification.Dispatcher
	auth          *Authenticator
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	cat catalog.Repository,
	carts *cart.Service,
	orders *order.Service,
	notifications *notification.Dispatcher,
	auth *Authenticator,
) *Handler {
	return &Handler{
		catalog:       cat,
		carts:         carts,
		orders:        orders,
		notifications: notifications,
		auth:          auth,
	}
}

// Routes returns the API router. Catalog browsing is public; everything else
// requires an authenticated caller.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/services/{category}", func(r chi.Router) {
		r.Get("/", h.listServices)
		r.Get("/{serviceID}", h.getService)
	})

	r.Group(func(r chi.Router) {
		r.Use(h.auth.Middleware)
		h.protectedRoutes(r)
	})

	return r
}

func (h *Handler) protectedRoutes(r chi.Router) {
	r.Route("/cart", func(r chi.Router) {
		r.Get("/", h.getCart)
		r.Post("/items", h.addCartItem)
		r.Patch("/items/{lineID}", h.updateCartItem)
		r.Delete("/items/{lineID}", h.removeCartItem)
		r.Post("/checkout", h.checkout)
	})

	r.Route("/orders", func(r chi.Router) {
		r.Get("/", h.listOrders)
		r.Get("/{orderID}", h.getOrder)
		r.Patch("/{orderID}/status", h.updateOrderStatus)
	})

	r.Route("/vendor", func(r chi.Router) {
		r.Get("/orders", h.listVendorOrders)
		r.Get("/notifications", h.listVendorNotifications)
		r.Post("/notifications/{notificationID}/view", h.viewNotification)
	})
}

// respond writes a JSON body with the given status.
func respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// decode parses a JSON request body into dst.
func decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
