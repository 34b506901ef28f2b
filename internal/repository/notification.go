package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/weddify/marketplace/internal/domain/notification"
)

const (
	notificationColumns = `id, order_id, vendor_id, email_sent, email_sent_at, viewed, viewed_at, created_at`

	insertNotificationSQL = `INSERT INTO vendor_notifications (order_id, vendor_id)
		VALUES ($1, $2) ON CONFLICT (order_id, vendor_id) DO NOTHING
		RETURNING ` + notificationColumns

	getNotificationByPairSQL = `SELECT ` + notificationColumns + ` FROM vendor_notifications
		WHERE order_id = $1 AND vendor_id = $2`

	getNotificationByIDSQL = `SELECT ` + notificationColumns + ` FROM vendor_notifications WHERE id = $1`

	listNotificationsByVendorSQL = `SELECT ` + notificationColumns + ` FROM vendor_notifications
		WHERE vendor_id = $1 ORDER BY created_at DESC, id DESC`

	markEmailSentSQL = `UPDATE vendor_notifications
		SET email_sent = TRUE, email_sent_at = $2 WHERE id = $1`

	markViewedSQL = `UPDATE vendor_notifications
		SET viewed = TRUE, viewed_at = COALESCE(viewed_at, $2)
		WHERE id = $1
		RETURNING ` + notificationColumns
)

var _ notification.Repository = (*NotificationRepository)(nil)

// NotificationRepository implements notification.Repository backed by
// PostgreSQL. The (order_id, vendor_id) unique constraint is the idempotency
// guard for get-or-create.
type NotificationRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository returns a NotificationRepository that uses the
// given pool.
func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

// GetOrCreate returns the (order, vendor) notification, inserting it when
// absent. The insert uses ON CONFLICT DO NOTHING, so two concurrent calls
// for the same pair converge on the single existing row: the loser of the
// race simply falls through to the select.
func (r *NotificationRepository) GetOrCreate(ctx context.Context, orderID int64, vendorID uuid.UUID) (*notification.VendorNotification, error) {
	rows, err := r.pool.Query(ctx, insertNotificationSQL, orderID, vendorID)
	if err != nil {
		return nil, fmt.Errorf("creating notification (%d, %s): %w", orderID, vendorID, err)
	}

	n, err := pgx.CollectExactlyOneRow(rows, scanNotification)
	if err == nil {
		return &n, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("creating notification (%d, %s): %w", orderID, vendorID, err)
	}

	// Conflict: the pair already has a row; fetch it.
	rows, err = r.pool.Query(ctx, getNotificationByPairSQL, orderID, vendorID)
	if err != nil {
		return nil, fmt.Errorf("getting notification (%d, %s): %w", orderID, vendorID, err)
	}
	n, err = pgx.CollectExactlyOneRow(rows, scanNotification)
	if err != nil {
		return nil, fmt.Errorf("getting notification (%d, %s): %w", orderID, vendorID, err)
	}
	return &n, nil
}

// GetByID returns one notification.
func (r *NotificationRepository) GetByID(ctx context.Context, id int64) (*notification.VendorNotification, error) {
	rows, err := r.pool.Query(ctx, getNotificationByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting notification %d: %w", id, err)
	}

	n, err := pgx.CollectExactlyOneRow(rows, scanNotification)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notification.ErrNotFound
		}
		return nil, fmt.Errorf("getting notification %d: %w", id, err)
	}
	return &n, nil
}

// ListByVendor returns a vendor's notifications, newest first.
func (r *NotificationRepository) ListByVendor(ctx context.Context, vendorID uuid.UUID) ([]notification.VendorNotification, error) {
	rows, err := r.pool.Query(ctx, listNotificationsByVendorSQL, vendorID)
	if err != nil {
		return nil, fmt.Errorf("listing notifications for vendor %s: %w", vendorID, err)
	}
	return pgx.CollectRows(rows, scanNotification)
}

// MarkEmailSent stamps a successful delivery.
func (r *NotificationRepository) MarkEmailSent(ctx context.Context, id int64, at time.Time) error {
	tag, err := r.pool.Exec(ctx, markEmailSentSQL, id, at)
	if err != nil {
		return fmt.Errorf("marking notification %d sent: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return notification.ErrNotFound
	}
	return nil
}

// MarkViewed flips viewed to true; viewed_at keeps its first-set value, so
// repeat calls are no-ops that return the unchanged row.
func (r *NotificationRepository) MarkViewed(ctx context.Context, id int64, at time.Time) (*notification.VendorNotification, error) {
	rows, err := r.pool.Query(ctx, markViewedSQL, id, at)
	if err != nil {
		return nil, fmt.Errorf("marking notification %d viewed: %w", id, err)
	}

	n, err := pgx.CollectExactlyOneRow(rows, scanNotification)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notification.ErrNotFound
		}
		return nil, fmt.Errorf("marking notification %d viewed: %w", id, err)
	}
	return &n, nil
}

func scanNotification(row pgx.CollectableRow) (notification.VendorNotification, error) {
	var n notification.VendorNotification
	err := row.Scan(
		&n.ID, &n.OrderID, &n.VendorID,
		&n.EmailSent, &n.EmailSentAt, &n.Viewed, &n.ViewedAt, &n.CreatedAt,
	)
	return n, err
}
