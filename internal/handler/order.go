package handler

import (
	"net/http"

	"github.com/weddify/marketplace/internal/domain/order"
)

type updateOrderStatusRequest struct {
	OrderStatus   *string `json:"order_status"`
	PaymentStatus *string `json:"payment_status"`
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	u := UserFromContext(ctx)

	list, err := h.orders.ListForCustomer(ctx, u.ID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	respond(w, http.StatusOK, toOrderListBody(list))
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	u := UserFromContext(ctx)

	orderID, err := pathID(r, "orderID")
	if err != nil {
		writeError(w, http.StatusBadRequest, kindBadRequest, "invalid order id")
		return
	}

	o, err := h.orders.Get(ctx, u, orderID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	respond(w, http.StatusOK, toOrderBody(o))
}

func (h *Handler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	u := UserFromContext(ctx)

	orderID, err := pathID(r, "orderID")
	if err != nil {
		writeError(w, http.StatusBadRequest, kindBadRequest, "invalid order id")
		return
	}

	var req updateOrderStatusRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, kindBadRequest, "malformed request body")
		return
	}

	var upd order.StatusUpdateRequest
	if req.OrderStatus != nil {
		s := order.Status(*req.OrderStatus)
		upd.Status = &s
	}
	if req.PaymentStatus != nil {
		p := order.PaymentStatus(*req.PaymentStatus)
		upd.PaymentStatus = &p
	}

	o, err := h.orders.UpdateStatus(ctx, u, orderID, upd)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	respond(w, http.StatusOK, toOrderBody(o))
}

func (h *Handler) listVendorOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	u := UserFromContext(ctx)

	list, err := h.orders.ListForVendor(ctx, u.Email)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	respond(w, http.StatusOK, toOrderListBody(list))
}

func toOrderListBody(list []order.Order) []orderBody {
	bodies := make([]orderBody, 0, len(list))
	for i := range list {
		bodies = append(bodies, toOrderBody(&list[i]))
	}
	return bodies
}
