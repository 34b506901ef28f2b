package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/weddify/marketplace/internal/domain/catalog"
)

var _ catalog.Repository = (*CatalogRepository)(nil)

// CatalogRepository implements catalog.Repository backed by PostgreSQL. Each
// category lives in its own table; the query is chosen by explicit dispatch
// on the category's declared price representation.
type CatalogRepository struct {
	pool *pgxpool.Pool
}

// NewCatalogRepository returns a CatalogRepository that uses the given pool.
func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

// Column sets per price representation. The table name is interpolated from
// the fixed registry, never from user input.
const (
	fixedPriceColumns   = `t.price, 0::numeric, 0::numeric`
	rangePriceColumns   = `0::numeric, t.price_range_min, t.price_range_max`
	perUnitPriceColumns = `t.price_per_plate, 0::numeric, 0::numeric`

	entityQueryTemplate = `SELECT t.id, t.name, t.location, t.rating, %s, u.id, u.name, u.email
		FROM %s t LEFT JOIN users u ON u.id = t.vendor_id`
)

func priceColumns(kind catalog.PriceKind) string {
	switch kind {
	case catalog.PriceRange:
		return rangePriceColumns
	case catalog.PricePerUnit:
		return perUnitPriceColumns
	default:
		return fixedPriceColumns
	}
}

// Resolve returns the entity a reference points at, or catalog.ErrNotFound
// when the id does not name a live row (or the tag is unknown).
func (r *CatalogRepository) Resolve(ctx context.Context, ref catalog.Reference) (*catalog.Entity, error) {
	schema, err := catalog.SchemaFor(ref.Category)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(entityQueryTemplate, priceColumns(schema.PriceKind), schema.Table) +
		` WHERE t.id = $1`

	rows, err := r.pool.Query(ctx, query, ref.ID)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", ref, err)
	}

	entity, err := pgx.CollectExactlyOneRow(rows, scanEntity(schema))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrNotFound
		}
		return nil, fmt.Errorf("resolving %s: %w", ref, err)
	}
	return &entity, nil
}

// List returns all entities of one category ordered by ID.
func (r *CatalogRepository) List(ctx context.Context, category catalog.Category) ([]catalog.Entity, error) {
	schema, err := catalog.SchemaFor(category)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(entityQueryTemplate, priceColumns(schema.PriceKind), schema.Table) +
		` ORDER BY t.id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", category, err)
	}
	return pgx.CollectRows(rows, scanEntity(schema))
}

// scanEntity builds a row scanner that assembles the PriceValue declared for
// the schema and the nullable vendor.
func scanEntity(schema catalog.Schema) func(pgx.CollectableRow) (catalog.Entity, error) {
	return func(row pgx.CollectableRow) (catalog.Entity, error) {
		var (
			e           catalog.Entity
			amount      decimal.Decimal
			rangeMin    decimal.Decimal
			rangeMax    decimal.Decimal
			vendorID    *uuid.UUID
			vendorName  *string
			vendorEmail *string
		)

		err := row.Scan(
			&e.ID, &e.Name, &e.Location, &e.Rating,
			&amount, &rangeMin, &rangeMax,
			&vendorID, &vendorName, &vendorEmail,
		)
		if err != nil {
			return e, err
		}

		e.Category = schema.Category
		switch schema.PriceKind {
		case catalog.PriceRange:
			e.Price = catalog.Range(rangeMin, rangeMax)
		case catalog.PricePerUnit:
			e.Price = catalog.PerUnit(amount)
		default:
			e.Price = catalog.Fixed(amount)
		}

		if vendorID != nil {
			e.Vendor = &catalog.Vendor{ID: *vendorID}
			if vendorName != nil {
				e.Vendor.Name = *vendorName
			}
			if vendorEmail != nil {
				e.Vendor.Email = *vendorEmail
			}
		}
		return e, nil
	}
}
