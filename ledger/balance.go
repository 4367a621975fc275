package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/cointax/tx"
)

// Balances computes per-currency balances from raw transaction deltas,
// independent of lot accounting. Fiat legs are skipped; the ledger doesn't
// track fiat. Used for portfolio display and for cross-checking the
// inventory invariant that lot totals equal net acquired-minus-disposed.
func Balances(transactions []*tx.Transaction) map[string]decimal.Decimal {
	return BalancesAsOf(transactions, time.Time{}, "")
}

// BalancesAsOf computes balances restricted to transactions at or before a
// point in time and, optionally, to a single wallet. A zero time means no
// time bound; an empty wallet means all wallets.
func BalancesAsOf(transactions []*tx.Transaction, at time.Time, wallet string) map[string]decimal.Decimal {
	balances := make(map[string]decimal.Decimal)

	add := func(amount *tx.Amount, sign decimal.Decimal) {
		if amount == nil || amount.IsFiat() {
			return
		}
		balances[amount.Currency] = balances[amount.Currency].Add(amount.Quantity.Mul(sign))
	}

	one := decimal.NewFromInt(1)
	minusOne := decimal.NewFromInt(-1)

	for _, t := range transactions {
		if !at.IsZero() && t.Timestamp.After(at) {
			continue
		}
		if wallet != "" && t.Wallet != wallet {
			continue
		}

		add(t.Received, one)
		add(t.Sent, minusOne)
		// Fees are paid on top of the sent amount, except on transfers
		// where the fee is already the sent/received difference.
		if t.Type != tx.Transfer {
			add(t.Fee, minusOne)
		}
	}

	return balances
}
