package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/weddify/marketplace/internal/domain/catalog"
)

type serviceBody struct {
	ID            int64            `json:"id"`
	Category      string           `json:"category"`
	Name          string           `json:"name"`
	Location      string           `json:"location,omitempty"`
	Rating        float64          `json:"rating"`
	Price         *decimal.Decimal `json:"price,omitempty"`
	PriceRangeMin *decimal.Decimal `json:"price_range_min,omitempty"`
	PriceRangeMax *decimal.Decimal `json:"price_range_max,omitempty"`
	PricePerPlate *decimal.Decimal `json:"price_per_plate,omitempty"`
	VendorName    string           `json:"vendor_name,omitempty"`
}

func toServiceBody(e catalog.Entity) serviceBody {
	body := serviceBody{
		ID:       e.ID,
		Category: string(e.Category),
		Name:     e.Name,
		Location: e.Location,
		Rating:   e.Rating,
	}
	switch e.Price.Kind {
	case catalog.PriceRange:
		body.PriceRangeMin = &e.Price.Min
		body.PriceRangeMax = &e.Price.Max
	case catalog.PricePerUnit:
		body.PricePerPlate = &e.Price.Amount
	default:
		body.Price = &e.Price.Amount
	}
	if e.Vendor != nil {
		body.VendorName = e.Vendor.Name
	}
	return body
}

func (h *Handler) listServices(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	category, err := catalog.ParseCategory(chi.URLParam(r, "category"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	entities, err := h.catalog.List(ctx, category)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	bodies := make([]serviceBody, 0, len(entities))
	for _, e := range entities {
		bodies = append(bodies, toServiceBody(e))
	}
	respond(w, http.StatusOK, bodies)
}

func (h *Handler) getService(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	category, err := catalog.ParseCategory(chi.URLParam(r, "category"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	id, err := pathID(r, "serviceID")
	if err != nil {
		writeError(w, http.StatusBadRequest, kindBadRequest, "invalid service id")
		return
	}

	entity, err := h.catalog.Resolve(ctx, catalog.Reference{Category: category, ID: id})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	respond(w, http.StatusOK, toServiceBody(*entity))
}
