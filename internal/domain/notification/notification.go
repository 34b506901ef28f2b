// Package notification tracks per-vendor order notifications and drives
// best-effort email fan-out after checkout.
package notification

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

// ErrNotFound is returned when a notification lookup misses.
var ErrNotFound = errors.New("notification not found")

// VendorNotification records that a vendor was (or should have been) told
// about an order. At most one row exists per (order, vendor) pair.
type VendorNotification struct {
	ID          int64
	OrderID     int64
	VendorID    uuid.UUID
	EmailSent   bool
	EmailSentAt *time.Time
	Viewed      bool
	ViewedAt    *time.Time
	CreatedAt   time.Time
}

// Repository defines persistence operations for vendor notifications.
type Repository interface {
	// GetOrCreate returns the (order, vendor) notification, inserting it with
	// email_sent=false when absent. Concurrent calls for the same pair must
	// converge on one row; an insert racing an identical insert is treated as
	// "already exists", not an error.
	GetOrCreate(ctx context.Context, orderID int64, vendorID uuid.UUID) (*VendorNotification, error)
	// GetByID returns one notification, or ErrNotFound.
	GetByID(ctx context.Context, id int64) (*VendorNotification, error)
	// ListByVendor returns a vendor's notifications, newest first.
	ListByVendor(ctx context.Context, vendorID uuid.UUID) ([]VendorNotification, error)
	// MarkEmailSent stamps a successful delivery.
	MarkEmailSent(ctx context.Context, id int64, at time.Time) error
	// MarkViewed flips viewed=false to true, stamping the timestamp once.
	// Re-invoking is a no-op that returns the unchanged row.
	MarkViewed(ctx context.Context, id int64, at time.Time) (*VendorNotification, error)
}

// Sender delivers one email. Transport is an injected collaborator; the
// dispatcher only cares that a send either succeeds or returns an error.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}
