package notification

import (
	"context"
	"time"

	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/weddify/marketplace/internal/domain/catalog"
	"github.com/weddify/marketplace/internal/domain/order"
	"github.com/weddify/marketplace/internal/domain/user"
)

const (
	// defaultSendTimeout caps one email delivery attempt; a timeout is a
	// delivery failure like any other.
	defaultSendTimeout = 10 * time.Second

	// maxConcurrentSends bounds parallel vendor deliveries.
	maxConcurrentSends = 4
)

// Dispatcher creates vendor notification records and attempts delivery,
// isolating each vendor's failure from the others and from the order itself.
type Dispatcher struct {
	notifications Repository
	sender        Sender
	sendTimeout   time.Duration
	now           func() time.Time
}

// NewDispatcher creates a Dispatcher with the default send timeout.
func NewDispatcher(notifications Repository, sender Sender) *Dispatcher {
	return &Dispatcher{
		notifications: notifications,
		sender:        sender,
		sendTimeout:   defaultSendTimeout,
		now:           time.Now,
	}
}

// OrderPlaced notifies every distinct vendor of a freshly committed order and
// sends the customer confirmation. All sends are best-effort: a failure is
// logged and leaves the notification row with email_sent=false for later
// retry, and no failure propagates to the caller.
func (d *Dispatcher) OrderPlaced(ctx context.Context, o *order.Order, vendors []catalog.Vendor) {
	lg := zctx.From(ctx)

	var g errgroup.Group
	g.SetLimit(maxConcurrentSends)
	for _, v := range vendors {
		g.Go(func() error {
			d.notifyVendor(ctx, o, v)
			return nil
		})
	}
	g.Go(func() error {
		d.confirmCustomer(ctx, o)
		return nil
	})
	// Goroutines never return errors; failures are recorded per vendor.
	_ = g.Wait()

	lg.Info("Order notifications dispatched",
		zap.String("order_number", o.Number),
		zap.Int("vendors", len(vendors)))
}

// notifyVendor runs the get-or-create plus delivery attempt for one vendor.
func (d *Dispatcher) notifyVendor(ctx context.Context, o *order.Order, v catalog.Vendor) {
	lg := zctx.From(ctx).With(
		zap.String("order_number", o.Number),
		zap.String("vendor_email", v.Email),
	)

	n, err := d.notifications.GetOrCreate(ctx, o.ID, v.ID)
	if err != nil {
		lg.Error("Creating vendor notification failed", zap.Error(err))
		return
	}
	if n.EmailSent {
		// A previous attempt (e.g. a checkout retry) already delivered.
		return
	}

	subject, body := vendorSummaryMail(o, v)

	sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	defer cancel()

	if err := d.sender.Send(sendCtx, v.Email, subject, body); err != nil {
		// Leave email_sent=false; the row stays inspectable and retryable.
		lg.Error("Vendor email delivery failed", zap.Error(err))
		return
	}

	if err := d.notifications.MarkEmailSent(ctx, n.ID, d.now()); err != nil {
		lg.Error("Recording vendor email delivery failed", zap.Error(err))
	}
}

// confirmCustomer sends the order confirmation to the customer, best-effort.
func (d *Dispatcher) confirmCustomer(ctx context.Context, o *order.Order) {
	subject, body := customerConfirmationMail(o)

	sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	defer cancel()

	if err := d.sender.Send(sendCtx, o.CustomerEmail, subject, body); err != nil {
		zctx.From(ctx).Error("Customer confirmation delivery failed",
			zap.String("order_number", o.Number),
			zap.Error(err))
	}
}

// MarkViewed marks the caller's notification as viewed. The transition is
// idempotent: the timestamp is stamped on the first call and untouched after.
// Notifications owned by other vendors read as absent.
func (d *Dispatcher) MarkViewed(ctx context.Context, u *user.User, id int64) (*VendorNotification, error) {
	n, err := d.notifications.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if n.VendorID != u.ID {
		return nil, ErrNotFound
	}
	return d.notifications.MarkViewed(ctx, id, d.now())
}

// ListForVendor returns the caller's notification feed, newest first.
func (d *Dispatcher) ListForVendor(ctx context.Context, vendorID uuid.UUID) ([]VendorNotification, error) {
	return d.notifications.ListByVendor(ctx, vendorID)
}
