package catalog

import "github.com/shopspring/decimal"

// PriceKind discriminates the three price representations used across the
// twelve catalog categories.
type PriceKind string

const (
	// PriceFixed is a single flat price.
	PriceFixed PriceKind = "fixed"
	// PriceRange is a min..max band; the floor is the transactional unit price.
	PriceRange PriceKind = "range"
	// PricePerUnit is a per-unit rate (catering: per plate).
	PricePerUnit PriceKind = "per_unit"
)

// PriceValue is a tagged union over the three price representations. Only the
// fields for the declared kind are meaningful.
type PriceValue struct {
	Kind   PriceKind
	Amount decimal.Decimal // PriceFixed, PricePerUnit
	Min    decimal.Decimal // PriceRange
	Max    decimal.Decimal // PriceRange
}

// Fixed builds a flat PriceValue.
func Fixed(amount decimal.Decimal) PriceValue {
	return PriceValue{Kind: PriceFixed, Amount: amount}
}

// Range builds a banded PriceValue.
func Range(min, max decimal.Decimal) PriceValue {
	return PriceValue{Kind: PriceRange, Min: min, Max: max}
}

// PerUnit builds a per-unit PriceValue.
func PerUnit(amount decimal.Decimal) PriceValue {
	return PriceValue{Kind: PricePerUnit, Amount: amount}
}

// UnitPrice returns the canonical transactional unit price. Ranges resolve to
// their floor; checkout must never average a band or charge its ceiling.
func (p PriceValue) UnitPrice() decimal.Decimal {
	if p.Kind == PriceRange {
		return p.Min
	}
	return p.Amount
}
