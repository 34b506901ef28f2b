// Package order models completed checkouts: immutable orders, price-snapshot
// lines, and the fulfillment engine that turns a cart into both.
package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/weddify/marketplace/internal/domain/catalog"
	"github.com/weddify/marketplace/internal/domain/user"
)

// Sentinel errors for order operations.
var (
	ErrEmptyCart       = errors.New("cart has no lines")
	ErrNotFound        = errors.New("order not found")
	ErrDuplicateNumber = errors.New("order number already exists")
	ErrForbidden       = errors.New("not allowed to update this order")
	ErrInvalidStatus   = errors.New("unrecognized status label")
)

// Status enumerates order progress labels. Transitions are deliberately not
// constrained beyond label validity; see the status update handler.
type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Valid reports whether s is one of the five known labels.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// PaymentStatus is an independent, unordered payment label.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// Valid reports whether p is one of the four known labels.
func (p PaymentStatus) Valid() bool {
	switch p {
	case PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

// Line is the immutable snapshot of one cart line at checkout time. Service
// name, unit price and vendor contact are copied from the catalog entity at
// that instant and never change, whatever later happens to the entity.
type Line struct {
	ID          int64
	OrderID     int64
	Reference   catalog.Reference
	ServiceName string
	VendorID    *uuid.UUID
	VendorName  string
	VendorEmail string
	Quantity    int
	UnitPrice   decimal.Decimal
	TotalPrice  decimal.Decimal
	ServiceDate *time.Time
	ServiceTime *string
	Notes       string
}

// Order is the immutable record of a completed checkout. TotalAmount equals
// the sum of line totals at creation and is never recomputed.
type Order struct {
	ID                  int64
	Number              string
	CustomerID          uuid.UUID
	CustomerName        string
	CustomerEmail       string
	CustomerPhone       string
	TotalAmount         decimal.Decimal
	Status              Status
	PaymentStatus       PaymentStatus
	EventDate           *time.Time
	SpecialInstructions string
	Lines               []Line
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// VendorLines returns the order lines snapshotted for the given vendor email.
func (o *Order) VendorLines(email string) []Line {
	var lines []Line
	for _, l := range o.Lines {
		if l.VendorEmail == email {
			lines = append(lines, l)
		}
	}
	return lines
}

// CanUpdateStatus reports whether u may change this order's status labels:
// the owning customer, any vendor with a matching line, or staff.
func (o *Order) CanUpdateStatus(u *user.User) bool {
	if u.IsStaff() || o.CustomerID == u.ID {
		return true
	}
	for _, l := range o.Lines {
		if l.VendorEmail != "" && l.VendorEmail == u.Email {
			return true
		}
	}
	return false
}

// FulfillmentRecord is everything the checkout transaction must persist
// atomically: the order with its lines, the notification outbox rows for the
// distinct vendor set, and the emptying of the originating cart.
type FulfillmentRecord struct {
	Order   *Order
	Vendors []catalog.Vendor
	CartID  int64
}

// Repository defines persistence operations for orders.
type Repository interface {
	// Create persists a FulfillmentRecord in a single transaction, locking
	// the originating cart so concurrent checkouts serialize. It returns
	// ErrEmptyCart when the cart was emptied by a racing checkout and
	// ErrDuplicateNumber when the generated order number collides, leaving
	// no partial state behind either way.
	Create(ctx context.Context, rec *FulfillmentRecord) error
	// GetByID returns one order with its lines, or ErrNotFound.
	GetByID(ctx context.Context, id int64) (*Order, error)
	// ListByCustomer returns a customer's orders, newest first, with lines.
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]Order, error)
	// ListByVendorEmail returns orders containing at least one line
	// snapshotted for the given vendor email, newest first, with lines.
	ListByVendorEmail(ctx context.Context, email string) ([]Order, error)
	// UpdateStatus persists new status labels; nil fields are untouched.
	UpdateStatus(ctx context.Context, id int64, status *Status, payment *PaymentStatus) error
}
