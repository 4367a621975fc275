package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/cointax/tx"
)

// Windows for pairing a send with its receive. Receives confirm slowly on
// congested chains, sends should see their receive within the hour.
const (
	sendMatchWindow    = time.Hour
	receiveMatchWindow = 24 * time.Hour
)

// transferTolerance is the smallest received/sent ratio still explainable by
// a network fee. Anything below is not the same transfer.
var transferTolerance = decimal.NewFromFloat(0.95)

// MatchTransfers pairs send and receive transactions between the user's own
// wallets into single transfer transactions. A transfer never resets the
// holding period: the FIFO queues are left untouched, only the implied fee
// (sent minus received) is later disposed.
//
// Sends and receives that stay unmatched are reclassified: a send becomes a
// sell, a receive becomes a buy. They represent flows to or from outside the
// tracked wallets, which are economic disposals and acquisitions.
//
// The input must be sorted; the output is sorted again since a merged
// transfer takes the send leg's timestamp.
func MatchTransfers(transactions []*tx.Transaction) []*tx.Transaction {
	type candidate struct {
		index int
		used  bool
	}
	var open []*candidate
	receiveFor := make(map[int]int) // send index -> receive index
	sendFor := make(map[int]int)    // receive index -> send index

	match := func(sendIndex, receiveIndex int) {
		receiveFor[sendIndex] = receiveIndex
		sendFor[receiveIndex] = sendIndex
	}

	for i, t := range transactions {
		if t.Type != tx.Send && t.Type != tx.Receive {
			continue
		}

		window := receiveMatchWindow
		if t.Type == tx.Send {
			window = sendMatchWindow
		}
		oldest := t.Timestamp.Add(-window)

		var best *candidate
		bestDiff := decimal.Zero
		found := false

		for j := len(open) - 1; j >= 0; j-- {
			c := open[j]
			if c.used {
				continue
			}
			other := transactions[c.index]
			if other.Timestamp.Before(oldest) {
				break
			}
			if other.Type == t.Type {
				continue
			}

			send, receive := t, other
			if t.Type == tx.Receive {
				send, receive = other, t
			}
			if !transferable(send, receive) {
				continue
			}

			diff := send.Sent.Quantity.Sub(receive.Received.Quantity).Abs()
			if !found || diff.LessThan(bestDiff) {
				best, bestDiff, found = c, diff, true
			}
			if diff.IsZero() {
				break
			}
		}

		if found {
			best.used = true
			if t.Type == tx.Send {
				match(i, best.index)
			} else {
				match(best.index, i)
			}
		} else {
			open = append(open, &candidate{index: i})
		}
	}

	result := make([]*tx.Transaction, 0, len(transactions))
	for i, t := range transactions {
		switch {
		case hasMatch(receiveFor, i):
			result = append(result, mergeTransfer(t, transactions[receiveFor[i]]))
		case hasMatch(sendFor, i):
			// consumed by its send leg
		case t.Type == tx.Send:
			sell := *t
			sell.Type = tx.Sell
			result = append(result, &sell)
		case t.Type == tx.Receive:
			buy := *t
			buy.Type = tx.Buy
			result = append(result, &buy)
		default:
			result = append(result, t)
		}
	}

	tx.Sort(result)
	return result
}

// transferable reports whether a send/receive pair can be the two ends of
// one wallet-to-wallet transfer.
func transferable(send, receive *tx.Transaction) bool {
	if send.Sent.Currency != receive.Received.Currency {
		return false
	}
	// On-chain references must agree when both sides carry one.
	if send.TxHash != "" && receive.TxHash != "" && send.TxHash != receive.TxHash {
		return false
	}
	// The received amount can't exceed what was sent, and more than a 5%
	// shortfall is too much to be a network fee.
	sent, received := send.Sent.Quantity, receive.Received.Quantity
	if received.GreaterThan(sent) {
		return false
	}
	return received.GreaterThanOrEqual(sent.Mul(transferTolerance))
}

// mergeTransfer combines a matched send/receive pair into one transfer. The
// difference between the sent and received amounts is the implied network
// fee, unless the send leg already declared a matching fee.
func mergeTransfer(send, receive *tx.Transaction) *tx.Transaction {
	transfer := *send
	transfer.Type = tx.Transfer
	transfer.Received = receive.Received.Clone()
	if receive.Wallet != "" {
		transfer.Description = joinDescriptions(send.Description, "to "+receive.Wallet)
	}

	implied := send.Sent.Quantity.Sub(receive.Received.Quantity)
	if implied.IsPositive() {
		if send.Fee != nil && send.Fee.Currency == send.Sent.Currency && send.Fee.Quantity.Equal(implied) {
			transfer.Fee = send.Fee.Clone()
		} else {
			transfer.Fee = tx.NewAmount(implied, send.Sent.Currency)
			transfer.FeeValue = nil
		}
	}

	return &transfer
}

func joinDescriptions(a, b string) string {
	if a == "" {
		return b
	}
	return a + "; " + b
}

func hasMatch(m map[int]int, i int) bool {
	_, ok := m[i]
	return ok
}
