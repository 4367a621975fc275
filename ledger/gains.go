package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/cointax/tx"
)

// CapitalGain is the realized result of one lot fragment consumed by a
// disposal. A disposal spanning several lots emits one event per fragment.
//
// Cost or Proceeds can be unknown: CostErr is set when the consumed lot had
// no usable acquisition value or the disposal ran into a deficit, and
// ProceedsErr when the disposing transaction had no fiat valuation. Unknown
// figures are zero-valued but must never be summed as zero; aggregation
// excludes them and raises a visible flag instead.
type CapitalGain struct {
	Currency string
	Quantity decimal.Decimal

	Acquired time.Time
	Disposed time.Time

	BoughtTxID string
	SoldTxID   string

	Cost        decimal.Decimal
	Proceeds    decimal.Decimal
	CostErr     error
	ProceedsErr error

	// Deficit marks the unmatched remainder of a disposal that consumed
	// more than the tracked holdings.
	Deficit bool

	LongTerm bool
}

// GainOrLoss returns proceeds minus cost. Only meaningful when Known.
func (g *CapitalGain) GainOrLoss() decimal.Decimal {
	return g.Proceeds.Sub(g.Cost)
}

// Known reports whether both cost and proceeds could be computed.
func (g *CapitalGain) Known() bool {
	return g.CostErr == nil && g.ProceedsErr == nil
}

// ProcessedTransaction is a transaction augmented with its computed gain,
// for display. HasGain is false for transactions that realize nothing
// (acquisitions, fiat movements, clean transfers).
type ProcessedTransaction struct {
	*tx.Transaction

	Gain    decimal.Decimal
	GainErr error
	HasGain bool
}

// fiatValue extracts the fiat quantity of a valuation amount.
func fiatValue(value *tx.Amount) (decimal.Decimal, error) {
	if value == nil {
		return decimal.Zero, ErrMissingFiatValue
	}
	if !value.IsFiat() {
		return decimal.Zero, ErrInvalidFiatValue
	}
	return value.Quantity, nil
}

// applyTransaction runs one transaction through the FIFO inventory and
// returns the realized gain events plus the transaction's display
// annotation. Expected business conditions (deficits, missing prices) are
// carried in the results, never returned as processing failures.
func (l *Ledger) applyTransaction(t *tx.Transaction) ([]CapitalGain, ProcessedTransaction) {
	annotated := ProcessedTransaction{Transaction: t}
	var gains []CapitalGain

	record := func(events []CapitalGain, gain decimal.Decimal, err error) {
		gains = append(gains, events...)
		if err != nil {
			if annotated.GainErr == nil {
				annotated.GainErr = err
			}
			return
		}
		annotated.Gain = annotated.Gain.Add(gain)
		annotated.HasGain = true
	}

	feeConsumed := false

	switch t.Type {
	case tx.Deposit, tx.Withdrawal:
		// Fiat movements don't touch the ledger.

	case tx.Buy, tx.Gift, tx.Income, tx.Staking, tx.Cashback, tx.Receive:
		if !t.Received.IsFiat() {
			l.acquireHoldings(t, t.Received, t.Value)
		}

	case tx.ChainSplit, tx.Airdrop, tx.Spam:
		if !t.Received.IsFiat() {
			l.acquireHoldings(t, t.Received, zeroValue(l.config.BaseCurrency))
		}

	case tx.Trade:
		if !t.Sent.IsFiat() {
			events, gain, err := l.disposeHoldings(t, t.Sent, t.Value, false)
			record(events, gain, err)
		}
		if !t.Received.IsFiat() {
			l.acquireHoldings(t, t.Received, t.Value)
		}

	case tx.Swap:
		if err := l.swapHoldings(t); err != nil && annotated.GainErr == nil {
			annotated.GainErr = err
		}

	case tx.Sell, tx.Expense, tx.Send, tx.OutgoingGift:
		if !t.Sent.IsFiat() {
			outgoing, value := t.Sent, t.Value
			if t.FeeInSentCurrency() {
				// The fee is part of the disposed quantity and reduces the
				// net per-unit proceeds.
				outgoing, _ = outgoing.TryAdd(t.Fee)
				feeConsumed = true
			}
			events, gain, err := l.disposeHoldings(t, outgoing, value, false)
			record(events, gain, err)
		}

	case tx.Stolen, tx.Lost, tx.Burn:
		if !t.Sent.IsFiat() {
			events, gain, err := l.disposeHoldings(t, t.Sent, nil, true)
			record(events, gain, err)
		}

	case tx.Fee:
		if !t.Sent.IsFiat() {
			events, gain, err := l.disposeHoldings(t, t.Sent, t.Value, false)
			record(events, gain, err)
		}

	case tx.Transfer:
		// Lots stay where they are; only the network fee leaves the
		// holdings. Handled below with the other fees.
	}

	// A fee paid in crypto is a disposal of its own, whatever the
	// transaction type.
	if !feeConsumed && t.Fee != nil && !t.Fee.IsFiat() {
		events, gain, err := l.disposeHoldings(t, t.Fee, t.FeeValue, false)
		record(events, gain, err)
	}

	return gains, annotated
}

// acquireHoldings appends a lot for an acquisition leg. A missing or
// non-fiat valuation leaves the lot with an unknown cost basis; the flag
// resurfaces on every gain later computed from it.
func (l *Ledger) acquireHoldings(t *tx.Transaction, amount *tx.Amount, value *tx.Amount) {
	if amount.Quantity.IsZero() {
		return
	}

	fiat, err := fiatValue(value)
	unitCost := decimal.Zero
	if err == nil {
		unitCost = fiat.Div(amount.Quantity)
	}

	l.inventory.Acquire(amount.Currency, amount.Quantity, unitCost, err, t.Timestamp, t.ID)
}

// disposeHoldings consumes lots for a disposal leg and computes one gain
// event per fragment. Proceeds are pro-rated over the fragments by
// quantity. zeroProceeds forces a total-loss disposal (stolen, lost, burn).
func (l *Ledger) disposeHoldings(t *tx.Transaction, outgoing *tx.Amount, value *tx.Amount, zeroProceeds bool) ([]CapitalGain, decimal.Decimal, error) {
	quantity := outgoing.Quantity
	if quantity.IsZero() {
		return nil, decimal.Zero, nil
	}

	fiat, fiatErr := fiatValue(value)
	if zeroProceeds {
		fiat, fiatErr = decimal.Zero, nil
	}
	unitProceeds := fiat.Div(quantity)

	fragments, deficit, orderErr := l.inventory.Dispose(outgoing.Currency, quantity, t.Timestamp)

	var events []CapitalGain
	gain := decimal.Zero
	var firstErr error

	for _, fragment := range fragments {
		event := CapitalGain{
			Currency:    outgoing.Currency,
			Quantity:    fragment.Quantity,
			Acquired:    fragment.AcquiredAt,
			Disposed:    t.Timestamp,
			BoughtTxID:  fragment.TxID,
			SoldTxID:    t.ID,
			Cost:        fragment.Cost(),
			Proceeds:    fragment.Quantity.Mul(unitProceeds),
			CostErr:     fragment.CostErr,
			ProceedsErr: fiatErr,
			LongTerm:    l.config.LongTerm(fragment.AcquiredAt, t.Timestamp),
		}
		events = append(events, event)
		gain = gain.Add(event.GainOrLoss())
		if firstErr == nil {
			if event.CostErr != nil {
				firstErr = event.CostErr
			} else if event.ProceedsErr != nil {
				firstErr = event.ProceedsErr
			}
		}
	}

	if deficit.IsPositive() {
		deficitErr := &InsufficientBalanceError{Currency: outgoing.Currency, Missing: deficit, At: t.Timestamp}
		events = append(events, CapitalGain{
			Currency:    outgoing.Currency,
			Quantity:    deficit,
			Disposed:    t.Timestamp,
			SoldTxID:    t.ID,
			Proceeds:    deficit.Mul(unitProceeds),
			CostErr:     deficitErr,
			ProceedsErr: fiatErr,
			Deficit:     true,
		})
		if firstErr == nil {
			firstErr = deficitErr
		}
	}

	if orderErr != nil {
		firstErr = orderErr
	}

	return events, gain, firstErr
}

// swapHoldings replays the consumed lots under the received currency with
// their cost basis and acquisition dates intact. Swaps model renames and
// wraps, not economic disposals, so no gain events are emitted and the
// holding period keeps running.
func (l *Ledger) swapHoldings(t *tx.Transaction) error {
	if t.Sent.IsFiat() || t.Received.IsFiat() {
		return ErrInvalidFiatValue
	}
	if t.Sent.Quantity.IsZero() || t.Received.Quantity.IsZero() {
		return nil
	}

	// Quantities may differ (e.g. a redenomination); scale each fragment so
	// its total cost carries over unchanged.
	ratio := t.Received.Quantity.Div(t.Sent.Quantity)

	fragments, deficit, orderErr := l.inventory.Dispose(t.Sent.Currency, t.Sent.Quantity, t.Timestamp)

	for _, fragment := range fragments {
		quantity := fragment.Quantity.Mul(ratio)
		unitCost := decimal.Zero
		if fragment.CostErr == nil && !quantity.IsZero() {
			unitCost = fragment.Cost().Div(quantity)
		}
		l.inventory.Acquire(t.Received.Currency, quantity, unitCost, fragment.CostErr, fragment.AcquiredAt, fragment.TxID)
	}

	if deficit.IsPositive() {
		deficitErr := &InsufficientBalanceError{Currency: t.Sent.Currency, Missing: deficit, At: t.Timestamp}
		l.inventory.Acquire(t.Received.Currency, deficit.Mul(ratio), decimal.Zero, deficitErr, t.Timestamp, t.ID)
		if orderErr == nil {
			return deficitErr
		}
	}

	return orderErr
}

func zeroValue(currency string) *tx.Amount {
	return tx.NewAmount(decimal.Zero, currency)
}
