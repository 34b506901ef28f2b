package cart

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/weddify/marketplace/internal/domain/catalog"
)

// AddLineRequest holds the input for adding a reference to a cart. Optional
// fields are pointers so an omitted field can be told apart from a zero one.
type AddLineRequest struct {
	Reference   catalog.Reference
	Quantity    int
	ServiceDate *time.Time
	ServiceTime *string
	Notes       *string
}

// UpdateLineRequest holds a partial update of one cart line. Nil fields are
// left unchanged.
type UpdateLineRequest struct {
	Quantity    *int
	ServiceDate *time.Time
	ServiceTime *string
	Notes       *string
}

// Service encapsulates cart mutation logic.
type Service struct {
	carts   Repository
	catalog catalog.Repository
}

// NewService creates a cart Service.
func NewService(carts Repository, cat catalog.Repository) *Service {
	return &Service{carts: carts, catalog: cat}
}

// Get returns the customer's cart with its lines, creating it on first touch.
func (s *Service) Get(ctx context.Context, customerID uuid.UUID) (*Cart, error) {
	c, err := s.carts.GetOrCreate(ctx, customerID)
	if err != nil {
		return nil, errors.Wrap(err, "get cart")
	}

	lines, err := s.carts.Lines(ctx, c.ID)
	if err != nil {
		return nil, errors.Wrap(err, "load cart lines")
	}
	c.Lines = lines

	return c, nil
}

// Total computes the cart's running total at current catalog prices. Lines
// whose reference no longer resolves contribute nothing, mirroring the
// checkout policy of dropping dangling references.
func (s *Service) Total(ctx context.Context, c *Cart) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, l := range c.Lines {
		entity, err := s.catalog.Resolve(ctx, l.Reference)
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				continue
			}
			return decimal.Zero, errors.Wrap(err, "resolve cart line")
		}
		total = total.Add(entity.UnitPrice().Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total, nil
}

// AddLine upserts a line into the customer's cart. The category tag must be
// known; the referenced entity is deliberately NOT resolved here — existence
// is only checked at checkout, where dead references are dropped.
//
// Adding an already-present reference accumulates quantity; schedule and
// notes are overwritten only when the request supplies them.
func (s *Service) AddLine(ctx context.Context, customerID uuid.UUID, req AddLineRequest) (*Line, error) {
	if _, err := catalog.SchemaFor(req.Reference.Category); err != nil {
		return nil, err
	}
	if req.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	c, err := s.carts.GetOrCreate(ctx, customerID)
	if err != nil {
		return nil, errors.Wrap(err, "get cart")
	}

	existing, err := s.carts.FindLineByReference(ctx, c.ID, req.Reference)
	switch {
	case err == nil:
		return s.mergeLine(ctx, existing, req)

	case errors.Is(err, ErrLineNotFound):
		line := Line{
			CartID:      c.ID,
			Reference:   req.Reference,
			Quantity:    req.Quantity,
			ServiceDate: req.ServiceDate,
			ServiceTime: req.ServiceTime,
		}
		if req.Notes != nil {
			line.Notes = *req.Notes
		}
		inserted, err := s.carts.InsertLine(ctx, line)
		if errors.Is(err, ErrDuplicateReference) {
			// A concurrent add of the same reference won the insert; fall
			// back to merging into its line.
			existing, err := s.carts.FindLineByReference(ctx, c.ID, req.Reference)
			if err != nil {
				return nil, errors.Wrap(err, "find cart line after duplicate insert")
			}
			return s.mergeLine(ctx, existing, req)
		}
		if err != nil {
			return nil, errors.Wrap(err, "insert cart line")
		}
		return inserted, nil

	default:
		return nil, errors.Wrap(err, "find cart line")
	}
}

// mergeLine accumulates the request into an already-present line.
func (s *Service) mergeLine(ctx context.Context, existing *Line, req AddLineRequest) (*Line, error) {
	existing.Quantity += req.Quantity
	applyOptional(existing, req.ServiceDate, req.ServiceTime, req.Notes)
	if err := s.carts.UpdateLine(ctx, *existing); err != nil {
		return nil, errors.Wrap(err, "merge cart line")
	}
	return existing, nil
}

// UpdateLine applies a partial update to one line of the customer's cart.
// Returns ErrLineNotFound when the line is absent or owned by another cart.
func (s *Service) UpdateLine(ctx context.Context, customerID uuid.UUID, lineID int64, req UpdateLineRequest) (*Line, error) {
	c, err := s.carts.GetOrCreate(ctx, customerID)
	if err != nil {
		return nil, errors.Wrap(err, "get cart")
	}

	line, err := s.carts.GetLine(ctx, c.ID, lineID)
	if err != nil {
		return nil, err
	}

	if req.Quantity != nil {
		if *req.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		line.Quantity = *req.Quantity
	}
	applyOptional(line, req.ServiceDate, req.ServiceTime, req.Notes)

	if err := s.carts.UpdateLine(ctx, *line); err != nil {
		return nil, errors.Wrap(err, "update cart line")
	}
	return line, nil
}

// RemoveLine deletes one line of the customer's cart.
func (s *Service) RemoveLine(ctx context.Context, customerID uuid.UUID, lineID int64) error {
	c, err := s.carts.GetOrCreate(ctx, customerID)
	if err != nil {
		return errors.Wrap(err, "get cart")
	}

	deleted, err := s.carts.DeleteLine(ctx, c.ID, lineID)
	if err != nil {
		return errors.Wrap(err, "delete cart line")
	}
	if !deleted {
		return ErrLineNotFound
	}
	return nil
}

// Clear empties the customer's cart, preserving the cart row.
func (s *Service) Clear(ctx context.Context, customerID uuid.UUID) error {
	c, err := s.carts.GetOrCreate(ctx, customerID)
	if err != nil {
		return errors.Wrap(err, "get cart")
	}
	if err := s.carts.ClearLines(ctx, c.ID); err != nil {
		return errors.Wrap(err, "clear cart")
	}
	return nil
}

func applyOptional(line *Line, date *time.Time, svcTime, notes *string) {
	if date != nil {
		line.ServiceDate = date
	}
	if svcTime != nil {
		line.ServiceTime = svcTime
	}
	if notes != nil {
		line.Notes = *notes
	}
}
