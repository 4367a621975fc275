package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// lot is a slice of previously acquired currency sitting in a FIFO queue.
// Remaining only ever decreases; UnitCost and AcquiredAt are fixed at
// acquisition. CostErr is set when the acquisition had no usable fiat value,
// in which case the lot's cost basis counts as zero but every gain computed
// from it is flagged as unknown.
type lot struct {
	Remaining  decimal.Decimal
	UnitCost   decimal.Decimal
	CostErr    error
	AcquiredAt time.Time
	TxID       string
}

// costBase returns the remaining cost basis of the lot. Unknown-cost lots
// contribute zero; the flag travels separately.
func (l *lot) costBase() decimal.Decimal {
	if l.CostErr != nil {
		return decimal.Zero
	}
	return l.UnitCost.Mul(l.Remaining)
}

func (l *lot) String() string {
	if l.CostErr != nil {
		return fmt.Sprintf("%s @ unknown (%s)", l.Remaining.String(), l.AcquiredAt.Format("2006-01-02"))
	}
	return fmt.Sprintf("%s @ %s (%s)", l.Remaining.String(), l.UnitCost.String(), l.AcquiredAt.Format("2006-01-02"))
}

// Fragment is the slice of a lot consumed by a single disposal. A disposal
// spanning several lots returns one fragment per lot touched.
type Fragment struct {
	Quantity   decimal.Decimal
	UnitCost   decimal.Decimal
	CostErr    error
	AcquiredAt time.Time
	TxID       string
}

// Cost returns the fiat cost basis of the fragment. Zero when the basis is
// unknown; check CostErr before trusting it.
func (f *Fragment) Cost() decimal.Decimal {
	if f.CostErr != nil {
		return decimal.Zero
	}
	return f.Quantity.Mul(f.UnitCost)
}

// Holding is a read-only snapshot of an open lot, exposed for portfolio
// display.
type Holding struct {
	Currency   string
	Quantity   decimal.Decimal
	UnitCost   decimal.Decimal
	CostKnown  bool
	AcquiredAt time.Time
	TxID       string
}
