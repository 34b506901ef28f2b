package order

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// NumberGenerator mints human-readable order numbers of the fixed form
// ORD<YYYYMMDD><6 digits>. Numbers are not globally unique by construction;
// the orders table's unique constraint is the actual guard, and callers retry
// on ErrDuplicateNumber.
type NumberGenerator struct {
	now    func() time.Time
	digits func() int
}

// NewNumberGenerator creates a generator using the system clock and global
// random source.
func NewNumberGenerator() *NumberGenerator {
	return &NumberGenerator{
		now:    time.Now,
		digits: func() int { return rand.IntN(1_000_000) },
	}
}

// Next returns a fresh 17-character order number.
func (g *NumberGenerator) Next() string {
	return fmt.Sprintf("ORD%s%06d", g.now().Format("20060102"), g.digits())
}
