package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"

	"github.com/weddify/marketplace/internal/domain/cart"
	"github.com/weddify/marketplace/internal/domain/catalog"
	"github.com/weddify/marketplace/internal/domain/order"
)

type addCartItemRequest struct {
	Category    string  `json:"category"`
	ServiceID   int64   `json:"id"`
	Quantity    *int    `json:"quantity"`
	ServiceDate *string `json:"service_date"`
	ServiceTime *string `json:"service_time"`
	Notes       *string `json:"notes"`
}

type updateCartItemRequest struct {
	Quantity    *int    `json:"quantity"`
	ServiceDate *string `json:"service_date"`
	ServiceTime *string `json:"service_time"`
	Notes       *string `json:"notes"`
}

type checkoutRequest struct {
	EventDate           *string `json:"event_date"`
	SpecialInstructions string  `json:"special_instructions"`
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	u := UserFromContext(ctx)

	c, err := h.carts.Get(ctx, u.ID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	total, err := h.carts.Total(ctx, c)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	respond(w, http.StatusOK, toCartBody(c, total))
}

func (h *Handler) addCartItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	u := UserFromContext(ctx)

	var req addCartItemRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, kindBadRequest, "malformed request body")
		return
	}

	category, err := catalog.ParseCategory(req.Category)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	date, err := parseDate(req.ServiceDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, kindBadRequest, err.Error())
		return
	}

	// Quantity defaults to one when omitted.
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	line, err := h.carts.AddLine(ctx, u.ID, cart.AddLineRequest{
		Reference:   catalog.Reference{Category: category, ID: req.ServiceID},
		Quantity:    quantity,
		ServiceDate: date,
		ServiceTime: req.ServiceTime,
		Notes:       req.Notes,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	respond(w, http.StatusCreated, toCartLineBody(*line))
}

func (h *Handler) updateCartItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	u := UserFromContext(ctx)

	lineID, err := pathID(r, "lineID")
	if err != nil {
		writeError(w, http.StatusBadRequest, kindBadRequest, "invalid line id")
		return
	}

	var req updateCartItemRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, kindBadRequest, "malformed request body")
		return
	}
	date, err := parseDate(req.ServiceDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, kindBadRequest, err.Error())
		return
	}

	line, err := h.carts.UpdateLine(ctx, u.ID, lineID, cart.UpdateLineRequest{
		Quantity:    req.Quantity,
		ServiceDate: date,
		ServiceTime: req.ServiceTime,
		Notes:       req.Notes,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	respond(w, http.StatusOK, toCartLineBody(*line))
}

func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	u := UserFromContext(ctx)

	lineID, err := pathID(r, "lineID")
	if err != nil {
		writeError(w, http.StatusBadRequest, kindBadRequest, "invalid line id")
		return
	}

	if err := h.carts.RemoveLine(ctx, u.ID, lineID); err != nil {
		writeDomainError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	u := UserFromContext(ctx)

	// An empty body is a plain checkout with no event details.
	var req checkoutRequest
	if err := decode(r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, kindBadRequest, "malformed request body")
		return
	}
	eventDate, err := parseDate(req.EventDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, kindBadRequest, err.Error())
		return
	}

	o, err := h.orders.Checkout(ctx, u, order.CheckoutRequest{
		EventDate:           eventDate,
		SpecialInstructions: req.SpecialInstructions,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	respond(w, http.StatusCreated, toOrderBody(o))
}

// pathID parses a positive integer path parameter.
func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}
