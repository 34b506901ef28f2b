package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/weddify/marketplace/internal/domain/cart"
	"github.com/weddify/marketplace/internal/domain/catalog"
	"github.com/weddify/marketplace/internal/domain/user"
)

// maxNumberAttempts bounds retries when a generated order number collides
// with an existing row.
const maxNumberAttempts = 3

// CheckoutRequest holds the input for converting a cart into an order.
type CheckoutRequest struct {
	EventDate           *time.Time
	SpecialInstructions string
}

// Notifier fans notifications out after a checkout transaction commits.
// Implementations must be best-effort: a delivery failure is theirs to record
// and must never surface to the checkout caller.
type Notifier interface {
	OrderPlaced(ctx context.Context, o *Order, vendors []catalog.Vendor)
}

// Service is the order fulfillment engine: it converts a customer's cart into
// an immutable order with snapshot lines, persists everything atomically, and
// triggers vendor fan-out.
type Service struct {
	carts    cart.Repository
	catalog  catalog.Repository
	orders   Repository
	numbers  *NumberGenerator
	notifier Notifier
}

// NewService creates an order Service with the required domain dependencies.
func NewService(
	carts cart.Repository,
	cat catalog.Repository,
	orders Repository,
	numbers *NumberGenerator,
	notifier Notifier,
) *Service {
	return &Service{
		carts:    carts,
		catalog:  cat,
		orders:   orders,
		numbers:  numbers,
		notifier: notifier,
	}
}

// Checkout runs the cart-to-order conversion for the given customer.
//
// Cart lines whose reference no longer resolves are dropped, matching the
// cart's lazy-validation policy; every resolvable line becomes a snapshot
// Line priced at the entity's current unit price. The order, its lines, the
// vendor notification rows and the cart emptying are persisted in one
// transaction; email delivery is attempted only after commit and cannot fail
// the checkout.
func (s *Service) Checkout(ctx context.Context, customer *user.User, req CheckoutRequest) (*Order, error) {
	c, err := s.carts.GetOrCreate(ctx, customer.ID)
	if err != nil {
		return nil, errors.Wrap(err, "get cart")
	}

	cartLines, err := s.carts.Lines(ctx, c.ID)
	if err != nil {
		return nil, errors.Wrap(err, "load cart lines")
	}
	if len(cartLines) == 0 {
		return nil, ErrEmptyCart
	}

	o := &Order{
		CustomerID:          customer.ID,
		CustomerName:        customer.Name,
		CustomerEmail:       customer.Email,
		CustomerPhone:       customer.Phone,
		TotalAmount:         decimal.Zero,
		Status:              StatusPending,
		PaymentStatus:       PaymentPending,
		EventDate:           req.EventDate,
		SpecialInstructions: req.SpecialInstructions,
	}

	var vendors []catalog.Vendor
	for _, cl := range cartLines {
		entity, err := s.catalog.Resolve(ctx, cl.Reference)
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				// Entity deleted since the line was added: drop the line,
				// keep the checkout going.
				zctx.From(ctx).Debug("Dropping dangling cart line",
					zap.String("reference", cl.Reference.String()))
				continue
			}
			return nil, errors.Wrap(err, "resolve cart line")
		}

		line := buildLine(cl, entity)
		o.Lines = append(o.Lines, line)
		o.TotalAmount = o.TotalAmount.Add(line.TotalPrice)

		if entity.Vendor != nil {
			vendors = append(vendors, *entity.Vendor)
		}
	}

	// Deduplicate by vendor identity, not by email string.
	vendors = lo.UniqBy(vendors, func(v catalog.Vendor) uuid.UUID { return v.ID })

	rec := &FulfillmentRecord{Order: o, Vendors: vendors, CartID: c.ID}
	if err := s.createWithFreshNumber(ctx, rec); err != nil {
		return nil, err
	}

	s.notifier.OrderPlaced(ctx, o, vendors)

	return o, nil
}

// createWithFreshNumber persists the record, regenerating the order number on
// a uniqueness collision. The collision is an internal retry, never the
// caller's fault.
func (s *Service) createWithFreshNumber(ctx context.Context, rec *FulfillmentRecord) error {
	for attempt := 1; ; attempt++ {
		rec.Order.Number = s.numbers.Next()

		err := s.orders.Create(ctx, rec)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrDuplicateNumber) || attempt >= maxNumberAttempts {
			return errors.Wrap(err, "create order")
		}

		zctx.From(ctx).Warn("Order number collision, regenerating",
			zap.String("order_number", rec.Order.Number),
			zap.Int("attempt", attempt))
	}
}

// Get returns one order to a caller who owns it, matches one of its vendor
// lines, or is staff; everyone else sees ErrNotFound.
func (s *Service) Get(ctx context.Context, u *user.User, id int64) (*Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !o.CanUpdateStatus(u) {
		return nil, ErrNotFound
	}
	return o, nil
}

// ListForCustomer returns the caller's orders, newest first.
func (s *Service) ListForCustomer(ctx context.Context, customerID uuid.UUID) ([]Order, error) {
	return s.orders.ListByCustomer(ctx, customerID)
}

// ListForVendor returns orders containing any line snapshotted for the
// caller's email.
func (s *Service) ListForVendor(ctx context.Context, email string) ([]Order, error) {
	return s.orders.ListByVendorEmail(ctx, email)
}

// StatusUpdateRequest carries optional new labels; nil fields are untouched.
type StatusUpdateRequest struct {
	Status        *Status
	PaymentStatus *PaymentStatus
}

// UpdateStatus applies new status labels to an order. Any known label may
// follow any other; only label validity is enforced. A supplied label that is
// not recognized is dropped, and the update fails with ErrInvalidStatus only
// when nothing usable remains. Permitted to the owning customer, a vendor
// with a matching line, or staff.
func (s *Service) UpdateStatus(ctx context.Context, u *user.User, id int64, req StatusUpdateRequest) (*Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !o.CanUpdateStatus(u) {
		return nil, ErrForbidden
	}

	status := req.Status
	if status != nil && !status.Valid() {
		zctx.From(ctx).Debug("Dropping unrecognized order status label",
			zap.String("label", string(*status)))
		status = nil
	}
	payment := req.PaymentStatus
	if payment != nil && !payment.Valid() {
		zctx.From(ctx).Debug("Dropping unrecognized payment status label",
			zap.String("label", string(*payment)))
		payment = nil
	}
	if status == nil && payment == nil {
		return nil, ErrInvalidStatus
	}

	if err := s.orders.UpdateStatus(ctx, id, status, payment); err != nil {
		return nil, errors.Wrap(err, "update order status")
	}

	if status != nil {
		o.Status = *status
	}
	if payment != nil {
		o.PaymentStatus = *payment
	}
	return o, nil
}

// buildLine freezes one resolvable cart line into an order line snapshot.
func buildLine(cl cart.Line, entity *catalog.Entity) Line {
	unit := entity.UnitPrice()
	vendorName, vendorEmail := entity.VendorSnapshot()

	var vendorID *uuid.UUID
	if entity.Vendor != nil {
		id := entity.Vendor.ID
		vendorID = &id
	}

	return Line{
		Reference:   cl.Reference,
		ServiceName: entity.Name,
		VendorID:    vendorID,
		VendorName:  vendorName,
		VendorEmail: vendorEmail,
		Quantity:    cl.Quantity,
		UnitPrice:   unit,
		TotalPrice:  unit.Mul(decimal.NewFromInt(int64(cl.Quantity))),
		ServiceDate: cl.ServiceDate,
		ServiceTime: cl.ServiceTime,
		Notes:       cl.Notes,
	}
}
