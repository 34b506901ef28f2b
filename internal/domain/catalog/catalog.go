// Package catalog models the polymorphic service catalog: twelve structurally
// different listing types addressed uniformly through (category, id)
// references, with an explicit per-category price representation.
package catalog

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a reference does not resolve to a live entity.
var ErrNotFound = errors.New("catalog entity not found")

// Vendor identifies the user who owns a catalog entity.
type Vendor struct {
	ID    uuid.UUID
	Name  string
	Email string
}

// Entity is the uniform read view of one catalog listing, whatever its
// category. Vendor is nil when the entity's creator has been removed.
type Entity struct {
	Category Category
	ID       int64
	Name     string
	Location string
	Rating   float64
	Price    PriceValue
	Vendor   *Vendor
}

// Reference points at one catalog entity without embedding its type.
type Reference struct {
	Category Category `json:"category"`
	ID       int64    `json:"id"`
}

func (r Reference) String() string {
	return fmt.Sprintf("%s#%d", r.Category, r.ID)
}

// Repository provides read access to catalog entities.
type Repository interface {
	// Resolve returns the entity a reference points at, or ErrNotFound.
	Resolve(ctx context.Context, ref Reference) (*Entity, error)
	// List returns all entities of one category ordered by ID.
	List(ctx context.Context, category Category) ([]Entity, error)
}

// VendorSnapshot returns the vendor name and email to freeze into an order
// line. Entities whose creator was removed still sell, under the fallback
// vendor label with no notification address.
func (e *Entity) VendorSnapshot() (name, email string) {
	if e.Vendor == nil {
		return "Unknown Vendor", ""
	}
	return e.Vendor.Name, e.Vendor.Email
}

// UnitPrice is a convenience passthrough to the entity's price value.
func (e *Entity) UnitPrice() decimal.Decimal {
	return e.Price.UnitPrice()
}
