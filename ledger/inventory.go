package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Inventory tracks open lots per currency in FIFO order. Acquisitions append
// to the tail of a currency's queue, disposals consume from the head. The
// input sequence is sorted by (timestamp, id) before it reaches the
// inventory, so insertion order already encodes the FIFO tie-break.
type Inventory struct {
	holdings map[string][]*lot
}

// NewInventory creates an empty inventory.
func NewInventory() *Inventory {
	return &Inventory{holdings: make(map[string][]*lot)}
}

// Acquire adds a new lot to the currency's queue. Lots are kept in
// ascending (AcquiredAt, TxID) order; chronological input appends at the
// tail, while swap-inherited lots carrying their original acquisition date
// insert at their place in the queue. Zero quantities are refused; they
// carry no balance and would divide by zero in unit cost math.
func (inv *Inventory) Acquire(currency string, quantity, unitCost decimal.Decimal, costErr error, at time.Time, txID string) {
	if quantity.IsZero() {
		return
	}
	newLot := &lot{
		Remaining:  quantity,
		UnitCost:   unitCost,
		CostErr:    costErr,
		AcquiredAt: at,
		TxID:       txID,
	}

	queue := inv.holdings[currency]
	pos := len(queue)
	for pos > 0 {
		prev := queue[pos-1]
		if prev.AcquiredAt.Before(at) || (prev.AcquiredAt.Equal(at) && prev.TxID <= txID) {
			break
		}
		pos--
	}

	queue = append(queue, nil)
	copy(queue[pos+1:], queue[pos:])
	queue[pos] = newLot
	inv.holdings[currency] = queue
}

// Dispose consumes lots from the head of the currency's queue, splitting the
// head lot when it is larger than the remaining amount. It returns one
// fragment per lot touched. When the queue empties before the requested
// quantity is satisfied, the unmatched remainder is returned as the deficit;
// the queue is left empty and subsequent operations on the currency are
// unaffected.
func (inv *Inventory) Dispose(currency string, quantity decimal.Decimal, at time.Time) ([]Fragment, decimal.Decimal, error) {
	var fragments []Fragment
	remaining := quantity

	queue := inv.holdings[currency]
	for len(queue) > 0 && remaining.IsPositive() {
		head := queue[0]
		if head.AcquiredAt.After(at) {
			inv.holdings[currency] = queue
			return fragments, remaining, &TransactionOrderError{Currency: currency, At: at, LotAt: head.AcquiredAt}
		}

		consumed := decimal.Min(head.Remaining, remaining)
		fragments = append(fragments, Fragment{
			Quantity:   consumed,
			UnitCost:   head.UnitCost,
			CostErr:    head.CostErr,
			AcquiredAt: head.AcquiredAt,
			TxID:       head.TxID,
		})

		remaining = remaining.Sub(consumed)
		if head.Remaining.Equal(consumed) {
			queue = queue[1:]
		} else {
			head.Remaining = head.Remaining.Sub(consumed)
		}
	}

	inv.holdings[currency] = queue
	return fragments, remaining, nil
}

// Balance returns the total remaining quantity of a currency across its
// open lots.
func (inv *Inventory) Balance(currency string) decimal.Decimal {
	total := decimal.Zero
	for _, l := range inv.holdings[currency] {
		total = total.Add(l.Remaining)
	}
	return total
}

// CostBase returns the total remaining cost basis of a currency.
func (inv *Inventory) CostBase(currency string) decimal.Decimal {
	total := decimal.Zero
	for _, l := range inv.holdings[currency] {
		total = total.Add(l.costBase())
	}
	return total
}

// Currencies returns the currencies with at least one open lot, sorted.
func (inv *Inventory) Currencies() []string {
	currencies := make([]string, 0, len(inv.holdings))
	for currency, lots := range inv.holdings {
		if len(lots) > 0 {
			currencies = append(currencies, currency)
		}
	}
	sort.Strings(currencies)
	return currencies
}

// Holdings returns a snapshot of the open lots for a currency, oldest first.
func (inv *Inventory) Holdings(currency string) []Holding {
	lots := inv.holdings[currency]
	holdings := make([]Holding, 0, len(lots))
	for _, l := range lots {
		holdings = append(holdings, Holding{
			Currency:   currency,
			Quantity:   l.Remaining,
			UnitCost:   l.UnitCost,
			CostKnown:  l.CostErr == nil,
			AcquiredAt: l.AcquiredAt,
			TxID:       l.TxID,
		})
	}
	return holdings
}
