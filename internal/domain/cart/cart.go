// Package cart models the mutable pre-checkout basket: one cart per customer,
// holding pending lines that reference catalog entities by (category, id).
package cart

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/weddify/marketplace/internal/domain/catalog"
)

// Sentinel errors for cart operations.
var (
	ErrLineNotFound       = errors.New("cart line not found")
	ErrInvalidQuantity    = errors.New("quantity must be greater than 0")
	ErrDuplicateReference = errors.New("reference already in cart")
)

// Line is one pending cart entry. References are not resolved against the
// catalog when a line is added; stale references are dropped at checkout.
type Line struct {
	ID          int64
	CartID      int64
	Reference   catalog.Reference
	Quantity    int
	ServiceDate *time.Time
	ServiceTime *string
	Notes       string
	AddedAt     time.Time
}

// Cart is one customer's basket. It is created lazily on first access and
// survives checkout emptied, never deleted.
type Cart struct {
	ID         int64
	CustomerID uuid.UUID
	Lines      []Line
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Repository defines persistence operations for carts and their lines.
type Repository interface {
	// GetOrCreate returns the customer's cart, creating the row on first touch.
	GetOrCreate(ctx context.Context, customerID uuid.UUID) (*Cart, error)
	// Lines returns all lines of a cart ordered by insertion.
	Lines(ctx context.Context, cartID int64) ([]Line, error)
	// GetLine returns one line scoped to a cart, or ErrLineNotFound.
	GetLine(ctx context.Context, cartID, lineID int64) (*Line, error)
	// FindLineByReference returns the cart's line for a reference, or ErrLineNotFound.
	FindLineByReference(ctx context.Context, cartID int64, ref catalog.Reference) (*Line, error)
	// InsertLine appends a new line and returns it with its assigned ID, or
	// ErrDuplicateReference when the reference is already in the cart.
	InsertLine(ctx context.Context, line Line) (*Line, error)
	// UpdateLine persists quantity, schedule and notes of an existing line.
	UpdateLine(ctx context.Context, line Line) error
	// DeleteLine removes one line; it reports whether a row was deleted.
	DeleteLine(ctx context.Context, cartID, lineID int64) (bool, error)
	// ClearLines empties the cart while keeping the cart row itself.
	ClearLines(ctx context.Context, cartID int64) error
}
