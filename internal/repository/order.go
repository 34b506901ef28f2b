package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/lo"

	"github.com/weddify/marketplace/internal/domain/catalog"
	"github.com/weddify/marketplace/internal/domain/order"
)

const (
	lockCartSQL = `SELECT id FROM carts WHERE id = $1 FOR UPDATE`

	countCartLinesSQL = `SELECT count(*) FROM cart_items WHERE cart_id = $1`

	insertOrderSQL = `INSERT INTO orders (order_number, customer_id, customer_name, customer_email,
			customer_phone, total_amount, order_status, payment_status, event_date, special_instructions)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`

	insertOrderLineSQL = `INSERT INTO order_items (order_id, category, service_id, service_name,
			vendor_id, vendor_name, vendor_email, quantity, unit_price, total_price,
			service_date, service_time, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id`

	insertNotificationOutboxSQL = `INSERT INTO vendor_notifications (order_id, vendor_id)
		VALUES ($1, $2) ON CONFLICT (order_id, vendor_id) DO NOTHING`

	orderColumns = `id, order_number, customer_id, customer_name, customer_email, customer_phone,
		total_amount, order_status, payment_status, event_date, special_instructions, created_at, updated_at`

	getOrderByIDSQL = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	listOrdersByCustomerSQL = `SELECT ` + orderColumns + ` FROM orders
		WHERE customer_id = $1 ORDER BY created_at DESC, id DESC`

	listOrdersByVendorEmailSQL = `SELECT ` + orderColumns + ` FROM orders
		WHERE id IN (SELECT DISTINCT order_id FROM order_items WHERE vendor_email = $1)
		ORDER BY created_at DESC, id DESC`

	orderLineColumns = `id, order_id, category, service_id, service_name, vendor_id, vendor_name,
		vendor_email, quantity, unit_price, total_price, service_date, service_time, notes`

	listOrderLinesSQL = `SELECT ` + orderLineColumns + ` FROM order_items
		WHERE order_id = ANY($1) ORDER BY order_id, id`

	updateOrderStatusSQL = `UPDATE orders
		SET order_status = COALESCE($2, order_status),
		    payment_status = COALESCE($3, payment_status),
		    updated_at = now()
		WHERE id = $1`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists the whole fulfillment record in one transaction: the order
// row, its line snapshots, one notification outbox row per distinct vendor,
// and the emptying of the originating cart. The cart row is locked for the
// duration of the transaction, so concurrent checkouts of the same cart
// serialize; the one that loses the race finds the cart already emptied and
// gets order.ErrEmptyCart. Any failure rolls everything back; an order
// number collision surfaces as order.ErrDuplicateNumber.
func (r *OrderRepository) Create(ctx context.Context, rec *order.FulfillmentRecord) (txErr error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning checkout transaction: %w", err)
	}
	defer func() {
		if txErr != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var lockedID int64
	if err := tx.QueryRow(ctx, lockCartSQL, rec.CartID).Scan(&lockedID); err != nil {
		return fmt.Errorf("locking cart %d: %w", rec.CartID, err)
	}
	var remaining int
	if err := tx.QueryRow(ctx, countCartLinesSQL, rec.CartID).Scan(&remaining); err != nil {
		return fmt.Errorf("counting cart %d lines: %w", rec.CartID, err)
	}
	if remaining == 0 {
		return order.ErrEmptyCart
	}

	o := rec.Order
	err = tx.QueryRow(ctx, insertOrderSQL,
		o.Number, o.CustomerID, o.CustomerName, o.CustomerEmail, o.CustomerPhone,
		o.TotalAmount, o.Status, o.PaymentStatus, o.EventDate, o.SpecialInstructions,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "orders_order_number_key") {
			return order.ErrDuplicateNumber
		}
		return fmt.Errorf("creating order %q: %w", o.Number, err)
	}

	// Bulk insert the line snapshots.
	batch := &pgx.Batch{}
	for i := range o.Lines {
		l := &o.Lines[i]
		l.OrderID = o.ID
		batch.Queue(insertOrderLineSQL,
			o.ID, l.Reference.Category, l.Reference.ID, l.ServiceName,
			l.VendorID, l.VendorName, l.VendorEmail,
			l.Quantity, l.UnitPrice, l.TotalPrice,
			l.ServiceDate, l.ServiceTime, l.Notes,
		)
	}
	// Notification outbox rows for the distinct vendor set.
	for _, v := range rec.Vendors {
		batch.Queue(insertNotificationOutboxSQL, o.ID, v.ID)
	}
	batch.Queue(clearCartLinesSQL, rec.CartID)

	br := tx.SendBatch(ctx, batch)
	for i := range o.Lines {
		if err := br.QueryRow().Scan(&o.Lines[i].ID); err != nil {
			_ = br.Close()
			return fmt.Errorf("creating order line %d: %w", i, err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("finishing checkout batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing checkout: %w", err)
	}
	return nil
}

// GetByID returns one order with its lines.
func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrderByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting order %d: %w", id, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %d: %w", id, err)
	}

	if err := r.attachLines(ctx, []*order.Order{&o}); err != nil {
		return nil, err
	}
	return &o, nil
}

// ListByCustomer returns a customer's orders, newest first, with lines.
func (r *OrderRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]order.Order, error) {
	return r.list(ctx, listOrdersByCustomerSQL, customerID)
}

// ListByVendorEmail returns orders containing at least one line snapshotted
// for the given vendor email, newest first, with lines.
func (r *OrderRepository) ListByVendorEmail(ctx context.Context, email string) ([]order.Order, error) {
	return r.list(ctx, listOrdersByVendorEmailSQL, email)
}

func (r *OrderRepository) list(ctx context.Context, query string, arg any) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}

	orders, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}

	refs := lo.Map(orders, func(_ order.Order, i int) *order.Order { return &orders[i] })
	if err := r.attachLines(ctx, refs); err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateStatus persists new status labels; nil fields are left untouched.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id int64, status *order.Status, payment *order.PaymentStatus) error {
	tag, err := r.pool.Exec(ctx, updateOrderStatusSQL, id, status, payment)
	if err != nil {
		return fmt.Errorf("updating order %d status: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

// attachLines loads and distributes line snapshots for the given orders.
func (r *OrderRepository) attachLines(ctx context.Context, orders []*order.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := lo.Map(orders, func(o *order.Order, _ int) int64 { return o.ID })
	rows, err := r.pool.Query(ctx, listOrderLinesSQL, ids)
	if err != nil {
		return fmt.Errorf("listing order lines: %w", err)
	}

	lines, err := pgx.CollectRows(rows, scanOrderLine)
	if err != nil {
		return fmt.Errorf("listing order lines: %w", err)
	}

	byOrder := lo.GroupBy(lines, func(l order.Line) int64 { return l.OrderID })
	for _, o := range orders {
		o.Lines = byOrder[o.ID]
	}
	return nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var o order.Order
	err := row.Scan(
		&o.ID, &o.Number, &o.CustomerID, &o.CustomerName, &o.CustomerEmail, &o.CustomerPhone,
		&o.TotalAmount, &o.Status, &o.PaymentStatus, &o.EventDate, &o.SpecialInstructions,
		&o.CreatedAt, &o.UpdatedAt,
	)
	return o, err
}

func scanOrderLine(row pgx.CollectableRow) (order.Line, error) {
	var (
		l        order.Line
		category string
	)
	err := row.Scan(
		&l.ID, &l.OrderID, &category, &l.Reference.ID, &l.ServiceName,
		&l.VendorID, &l.VendorName, &l.VendorEmail,
		&l.Quantity, &l.UnitPrice, &l.TotalPrice,
		&l.ServiceDate, &l.ServiceTime, &l.Notes,
	)
	l.Reference.Category = catalog.Category(category)
	return l, err
}
