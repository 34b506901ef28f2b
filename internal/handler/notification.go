package handler

import (
	"net/http"
)

func (h *Handler) listVendorNotifications(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	u := UserFromContext(ctx)

	list, err := h.notifications.ListForVendor(ctx, u.ID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	bodies := make([]notificationBody, 0, len(list))
	for i := range list {
		bodies = append(bodies, toNotificationBody(&list[i]))
	}
	respond(w, http.StatusOK, bodies)
}

func (h *Handler) viewNotification(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	u := UserFromContext(ctx)

	id, err := pathID(r, "notificationID")
	if err != nil {
		writeError(w, http.StatusBadRequest, kindBadRequest, "invalid notification id")
		return
	}

	n, err := h.notifications.MarkViewed(ctx, u, id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	respond(w, http.StatusOK, toNotificationBody(n))
}
