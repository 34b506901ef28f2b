package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/weddify/marketplace/internal/domain/cart"
	"github.com/weddify/marketplace/internal/domain/catalog"
	"github.com/weddify/marketplace/internal/domain/notification"
	"github.com/weddify/marketplace/internal/domain/order"
)

// Machine-readable error kinds exposed to API clients.
const (
	kindInvalidCategory = "invalid_category"
	kindInvalidQuantity = "invalid_quantity"
	kindInvalidStatus   = "invalid_status"
	kindEmptyCart       = "empty_cart"
	kindNotFound        = "not_found"
	kindForbidden       = "forbidden"
	kindBadRequest      = "bad_request"
	kindUnauthorized    = "unauthorized"
	kindInternal        = "internal"
)

// errorBody is the structured error response.
type errorBody struct {
	ErrorKind string `json:"error_kind"`
	Message   string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, kind, message string) {
	respond(w, status, errorBody{ErrorKind: kind, Message: message})
}

// writeDomainError maps a domain error onto the API error taxonomy. Unknown
// errors are reported as a generic internal failure without leaking details.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var invalidCategory *catalog.InvalidCategoryError
	switch {
	case errors.As(err, &invalidCategory):
		writeError(w, http.StatusBadRequest, kindInvalidCategory, invalidCategory.Error())
	case errors.Is(err, cart.ErrInvalidQuantity):
		writeError(w, http.StatusBadRequest, kindInvalidQuantity, err.Error())
	case errors.Is(err, order.ErrEmptyCart):
		writeError(w, http.StatusBadRequest, kindEmptyCart, "cart has no lines")
	case errors.Is(err, order.ErrInvalidStatus):
		writeError(w, http.StatusBadRequest, kindInvalidStatus, "no recognized status label provided")
	case errors.Is(err, order.ErrForbidden):
		writeError(w, http.StatusForbidden, kindForbidden, "you may not update this order")
	case errors.Is(err, cart.ErrLineNotFound):
		writeError(w, http.StatusNotFound, kindNotFound, "cart line not found")
	case errors.Is(err, order.ErrNotFound):
		writeError(w, http.StatusNotFound, kindNotFound, "order not found")
	case errors.Is(err, notification.ErrNotFound):
		writeError(w, http.StatusNotFound, kindNotFound, "notification not found")
	case errors.Is(err, catalog.ErrNotFound):
		writeError(w, http.StatusNotFound, kindNotFound, "catalog entity not found")
	default:
		zctx.From(r.Context()).Error("Unhandled request error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, kindInternal, "internal error")
	}
}
