package ledger

import (
	"sort"
	"time"

	"github.com/robinvdvleuten/cointax/tx"
)

// ConsolidateTrades merges chains of trades routed through an intermediate
// currency into a single logical trade. Exchanges without direct markets
// execute e.g. BCH→XLM as BCH→BTC plus BTC→XLM; recording both legs would
// fabricate a BTC acquisition/disposal pair the user never intended.
//
// Two trades on the same wallet merge when the first leg's received amount
// equals the second leg's sent amount exactly, both fall within the window,
// and their fee currencies are compatible. Anything short of an exact match
// is left alone, never guessed. The pass is idempotent: the intermediate leg
// is removed entirely, so re-running it finds nothing new to merge.
//
// The input must already be sorted chronologically. Candidate legs sharing a
// timestamp are additionally ordered by fee currency so merges stay
// deterministic when several legs could pair up.
func ConsolidateTrades(transactions []*tx.Transaction, window time.Duration) []*tx.Transaction {
	if window <= 0 {
		return transactions
	}

	merged := make([]*tx.Transaction, len(transactions))
	copy(merged, transactions)

	sort.SliceStable(merged, func(i, j int) bool {
		a, b := merged[i], merged[j]
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.Before(b.Timestamp)
		}
		return feeCurrency(a) < feeCurrency(b)
	})

	i := 1
	for i < len(merged) {
		if combined, ok := mergeTrades(merged[i-1], merged[i], window); ok {
			merged[i-1] = combined
			merged = append(merged[:i], merged[i+1:]...)
		} else {
			i++
		}
	}

	return merged
}

func feeCurrency(t *tx.Transaction) string {
	if t.Fee == nil {
		return ""
	}
	return t.Fee.Currency
}

// mergeTrades combines two legs of a routed trade into one synthetic trade
// carrying the outer currencies and the combined fees.
func mergeTrades(first, second *tx.Transaction, window time.Duration) (*tx.Transaction, bool) {
	if first.Type != tx.Trade || second.Type != tx.Trade {
		return nil, false
	}
	if first.Wallet != second.Wallet {
		return nil, false
	}
	if second.Timestamp.Sub(first.Timestamp) > window {
		return nil, false
	}
	// The intermediate amount must match exactly; a partial fill is two
	// separate economic events.
	if !first.Received.Equal(second.Sent) {
		return nil, false
	}
	// Merging the outer legs must not produce a same-currency trade.
	if first.Sent.Currency == second.Received.Currency {
		return nil, false
	}

	fee := first.Fee.Clone()
	feeValue := first.FeeValue.Clone()
	if second.Fee != nil {
		if fee == nil {
			fee = second.Fee.Clone()
			feeValue = second.FeeValue.Clone()
		} else {
			sum, ok := fee.TryAdd(second.Fee)
			if !ok {
				return nil, false
			}
			fee = sum
			if feeValue != nil && second.FeeValue != nil {
				if sumValue, ok := feeValue.TryAdd(second.FeeValue); ok {
					feeValue = sumValue
				}
			}
		}
	}

	value := second.Value.Clone()
	if value == nil {
		value = first.Value.Clone()
	}

	combined := *first
	combined.Received = second.Received.Clone()
	combined.Fee = fee
	combined.FeeValue = feeValue
	combined.Value = value
	if second.Description != "" && second.Description != first.Description {
		combined.Description = first.Description + "; " + second.Description
	}

	return &combined, true
}
