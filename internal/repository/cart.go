package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/weddify/marketplace/internal/domain/cart"
	"github.com/weddify/marketplace/internal/domain/catalog"
)

const (
	getOrCreateCartSQL = `INSERT INTO carts (customer_id) VALUES ($1)
		ON CONFLICT (customer_id) DO UPDATE SET updated_at = now()
		RETURNING id, customer_id, created_at, updated_at`

	cartLineColumns = `id, cart_id, category, service_id, quantity, service_date, service_time, notes, added_at`

	listCartLinesSQL = `SELECT ` + cartLineColumns + ` FROM cart_items WHERE cart_id = $1 ORDER BY id`

	getCartLineSQL = `SELECT ` + cartLineColumns + ` FROM cart_items WHERE cart_id = $1 AND id = $2`

	findCartLineByRefSQL = `SELECT ` + cartLineColumns + ` FROM cart_items
		WHERE cart_id = $1 AND category = $2 AND service_id = $3`

	insertCartLineSQL = `INSERT INTO cart_items (cart_id, category, service_id, quantity, service_date, service_time, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + cartLineColumns

	updateCartLineSQL = `UPDATE cart_items
		SET quantity = $3, service_date = $4, service_time = $5, notes = $6
		WHERE cart_id = $1 AND id = $2`

	deleteCartLineSQL = `DELETE FROM cart_items WHERE cart_id = $1 AND id = $2`

	clearCartLinesSQL = `DELETE FROM cart_items WHERE cart_id = $1`
)

var _ cart.Repository = (*CartRepository)(nil)

// CartRepository implements cart.Repository backed by PostgreSQL.
type CartRepository struct {
	pool *pgxpool.Pool
}

// NewCartRepository returns a CartRepository that uses the given pool.
func NewCartRepository(pool *pgxpool.Pool) *CartRepository {
	return &CartRepository{pool: pool}
}

// GetOrCreate returns the customer's cart, inserting the row on first touch.
func (r *CartRepository) GetOrCreate(ctx context.Context, customerID uuid.UUID) (*cart.Cart, error) {
	var c cart.Cart
	err := r.pool.QueryRow(ctx, getOrCreateCartSQL, customerID).
		Scan(&c.ID, &c.CustomerID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("getting cart for customer %s: %w", customerID, err)
	}
	return &c, nil
}

// Lines returns all lines of a cart ordered by insertion.
func (r *CartRepository) Lines(ctx context.Context, cartID int64) ([]cart.Line, error) {
	rows, err := r.pool.Query(ctx, listCartLinesSQL, cartID)
	if err != nil {
		return nil, fmt.Errorf("listing cart %d lines: %w", cartID, err)
	}
	return pgx.CollectRows(rows, scanCartLine)
}

// GetLine returns one line scoped to a cart.
func (r *CartRepository) GetLine(ctx context.Context, cartID, lineID int64) (*cart.Line, error) {
	rows, err := r.pool.Query(ctx, getCartLineSQL, cartID, lineID)
	if err != nil {
		return nil, fmt.Errorf("getting cart line %d: %w", lineID, err)
	}

	line, err := pgx.CollectExactlyOneRow(rows, scanCartLine)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, cart.ErrLineNotFound
		}
		return nil, fmt.Errorf("getting cart line %d: %w", lineID, err)
	}
	return &line, nil
}

// FindLineByReference returns the cart's line holding the given reference.
func (r *CartRepository) FindLineByReference(ctx context.Context, cartID int64, ref catalog.Reference) (*cart.Line, error) {
	rows, err := r.pool.Query(ctx, findCartLineByRefSQL, cartID, ref.Category, ref.ID)
	if err != nil {
		return nil, fmt.Errorf("finding cart line %s: %w", ref, err)
	}

	line, err := pgx.CollectExactlyOneRow(rows, scanCartLine)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, cart.ErrLineNotFound
		}
		return nil, fmt.Errorf("finding cart line %s: %w", ref, err)
	}
	return &line, nil
}

// InsertLine appends a new line and returns it with its assigned ID. A
// concurrent add of the same reference surfaces as ErrDuplicateReference so
// the caller can fall back to the merge path.
func (r *CartRepository) InsertLine(ctx context.Context, line cart.Line) (*cart.Line, error) {
	rows, err := r.pool.Query(ctx, insertCartLineSQL,
		line.CartID, line.Reference.Category, line.Reference.ID,
		line.Quantity, line.ServiceDate, line.ServiceTime, line.Notes,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting cart line %s: %w", line.Reference, err)
	}

	inserted, err := pgx.CollectExactlyOneRow(rows, scanCartLine)
	if err != nil {
		if isUniqueViolation(err, "cart_items_reference_key") {
			return nil, cart.ErrDuplicateReference
		}
		return nil, fmt.Errorf("inserting cart line %s: %w", line.Reference, err)
	}
	return &inserted, nil
}

// UpdateLine persists quantity, schedule and notes of an existing line.
func (r *CartRepository) UpdateLine(ctx context.Context, line cart.Line) error {
	tag, err := r.pool.Exec(ctx, updateCartLineSQL,
		line.CartID, line.ID,
		line.Quantity, line.ServiceDate, line.ServiceTime, line.Notes,
	)
	if err != nil {
		return fmt.Errorf("updating cart line %d: %w", line.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return cart.ErrLineNotFound
	}
	return nil
}

// DeleteLine removes one line; it reports whether a row was deleted.
func (r *CartRepository) DeleteLine(ctx context.Context, cartID, lineID int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, deleteCartLineSQL, cartID, lineID)
	if err != nil {
		return false, fmt.Errorf("deleting cart line %d: %w", lineID, err)
	}
	return tag.RowsAffected() > 0, nil
}

// ClearLines empties the cart while keeping the cart row itself.
func (r *CartRepository) ClearLines(ctx context.Context, cartID int64) error {
	if _, err := r.pool.Exec(ctx, clearCartLinesSQL, cartID); err != nil {
		return fmt.Errorf("clearing cart %d: %w", cartID, err)
	}
	return nil
}

func scanCartLine(row pgx.CollectableRow) (cart.Line, error) {
	var (
		l        cart.Line
		category string
	)
	err := row.Scan(
		&l.ID, &l.CartID, &category, &l.Reference.ID,
		&l.Quantity, &l.ServiceDate, &l.ServiceTime, &l.Notes, &l.AddedAt,
	)
	l.Reference.Category = catalog.Category(category)
	return l, err
}
