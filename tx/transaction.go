// Package tx defines the normalized transaction model shared by importers,
// the capital-gains ledger and the exporters. A Transaction is an immutable
// record of a single event on an exchange or wallet; importers produce them,
// the ledger consumes them in chronological order.
package tx

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Transaction is a single normalized event from any wallet or exchange.
//
// Sent, Received and Fee carry the asset legs. Value and FeeValue carry the
// fiat (EUR) valuation of the transaction and its fee, supplied by the
// importer or estimated from price history before processing. Either may be
// nil if no valuation is available; the ledger then marks the affected
// results as unknown instead of defaulting to zero.
type Transaction struct {
	// ID is the stable, source-assigned identifier. Ties on Timestamp are
	// broken by ID order.
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Wallet    string    `json:"wallet,omitempty"`
	Source    string    `json:"source,omitempty"`
	Type      Type      `json:"type"`

	Sent     *Amount `json:"sent,omitempty"`
	Received *Amount `json:"received,omitempty"`
	Fee      *Amount `json:"fee,omitempty"`

	Value    *Amount `json:"value,omitempty"`
	FeeValue *Amount `json:"fee_value,omitempty"`

	Description string `json:"description,omitempty"`

	// Chain and TxHash reference the on-chain transaction, when known.
	Chain  string `json:"chain,omitempty"`
	TxHash string `json:"tx_hash,omitempty"`
}

// InvalidTransactionError is returned when a transaction's fields don't form
// one of the allowed shapes for its type.
type InvalidTransactionError struct {
	ID     string
	Type   Type
	Reason string
}

func (e *InvalidTransactionError) Error() string {
	return fmt.Sprintf("transaction %s (%s): %s", e.ID, e.Type, e.Reason)
}

// Validate checks the transaction's structural shape. Malformed records are
// rejected before they can enter the ledger.
func (t *Transaction) Validate() error {
	fail := func(reason string) error {
		return &InvalidTransactionError{ID: t.ID, Type: t.Type, Reason: reason}
	}

	if t.ID == "" {
		return fail("missing id")
	}
	if t.Timestamp.IsZero() {
		return fail("missing timestamp")
	}
	if !t.Type.Valid() {
		return fail("unknown type")
	}

	shape := shapes[t.Type]
	if shape.sent && t.Sent == nil {
		return fail("missing sent amount")
	}
	if !shape.sent && t.Sent != nil {
		return fail("unexpected sent amount")
	}
	if shape.received && t.Received == nil {
		return fail("missing received amount")
	}
	if !shape.received && t.Received != nil {
		return fail("unexpected received amount")
	}

	for name, amount := range map[string]*Amount{"sent": t.Sent, "received": t.Received, "fee": t.Fee} {
		if amount == nil {
			continue
		}
		if amount.Currency == "" {
			return fail(fmt.Sprintf("%s amount has no currency", name))
		}
		if amount.Quantity.IsNegative() {
			return fail(fmt.Sprintf("%s amount is negative", name))
		}
	}

	switch t.Type {
	case Trade, Swap:
		if t.Sent.Currency == t.Received.Currency {
			return fail("sent and received currencies are identical")
		}
	case Transfer:
		if t.Sent.Currency != t.Received.Currency {
			return fail("transfer legs have different currencies")
		}
		if t.Received.Quantity.GreaterThan(t.Sent.Quantity) {
			return fail("transfer receives more than it sends")
		}
	case Deposit, Withdrawal:
		leg := t.Received
		if t.Type == Withdrawal {
			leg = t.Sent
		}
		if !leg.IsFiat() {
			return fail("deposit/withdrawal must be fiat; use receive/send for crypto")
		}
	}

	return nil
}

// FeeInSentCurrency reports whether the fee was paid in the same currency as
// the sent leg, in which case it is part of the disposed quantity.
func (t *Transaction) FeeInSentCurrency() bool {
	return t.Fee != nil && t.Sent != nil && t.Fee.Currency == t.Sent.Currency
}

// Compare orders transactions chronologically, with ties broken by ID so
// processing order is deterministic.
func (t *Transaction) Compare(other *Transaction) int {
	if c := t.Timestamp.Compare(other.Timestamp); c != 0 {
		return c
	}
	return strings.Compare(t.ID, other.ID)
}

// Equal reports whether two transactions describe the same event. Used for
// duplicate detection across overlapping imports.
func (t *Transaction) Equal(other *Transaction) bool {
	return t.ID == other.ID &&
		t.Timestamp.Equal(other.Timestamp) &&
		t.Type == other.Type &&
		t.Wallet == other.Wallet &&
		t.Sent.Equal(other.Sent) &&
		t.Received.Equal(other.Received) &&
		t.Fee.Equal(other.Fee)
}

func (t *Transaction) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s", t.Timestamp.Format("2006-01-02 15:04:05"), t.Type, t.ID)
	if t.Sent != nil {
		fmt.Fprintf(&b, " -%s", t.Sent)
	}
	if t.Received != nil {
		fmt.Fprintf(&b, " +%s", t.Received)
	}
	return b.String()
}

// Sort orders transactions chronologically in place, stable on ties so the
// source ingestion order survives for records sharing a timestamp and ID.
func Sort(transactions []*Transaction) {
	sort.SliceStable(transactions, func(i, j int) bool {
		return transactions[i].Compare(transactions[j]) < 0
	})
}

// ValidateAll validates every transaction and returns all structural errors
// found, not just the first.
func ValidateAll(transactions []*Transaction) []error {
	var errs []error
	for _, t := range transactions {
		if err := t.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// Duplicates returns the transactions that appear more than once in a sorted
// sequence. Duplicates are reported, never dropped; resolving them is up to
// the user.
func Duplicates(sorted []*Transaction) []*Transaction {
	var dups []*Transaction
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Equal(sorted[i-1]) {
			dups = append(dups, sorted[i])
		}
	}
	return dups
}
