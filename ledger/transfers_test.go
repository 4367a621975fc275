package ledger

import (
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"

	"github.com/robinvdvleuten/cointax/tx"
)

func TestMatchTransfers(t *testing.T) {
	at := date(2021, 6, 1)

	tests := []struct {
		name      string
		txs       []*tx.Transaction
		checkFunc func(*testing.T, []*tx.Transaction)
	}{
		{
			name: "send and receive pair into a transfer",
			txs: []*tx.Transaction{
				{
					ID: "s1", Timestamp: at, Wallet: "kraken", Type: tx.Send,
					Sent: amt("1", "BTC"),
				},
				{
					ID: "r1", Timestamp: at.Add(30 * time.Minute), Wallet: "ledger", Type: tx.Receive,
					Received: amt("0.999", "BTC"),
				},
			},
			checkFunc: func(t *testing.T, matched []*tx.Transaction) {
				assert.Equal(t, 1, len(matched))
				transfer := matched[0]
				assert.Equal(t, tx.Transfer, transfer.Type)
				assert.Equal(t, "s1", transfer.ID)
				assert.True(t, transfer.Sent.Equal(amt("1", "BTC")))
				assert.True(t, transfer.Received.Equal(amt("0.999", "BTC")))
				assert.True(t, transfer.Fee.Equal(amt("0.001", "BTC")), "difference becomes the implied network fee")
			},
		},
		{
			name: "exact amounts imply no fee",
			txs: []*tx.Transaction{
				{
					ID: "s1", Timestamp: at, Wallet: "kraken", Type: tx.Send,
					Sent: amt("1", "BTC"),
				},
				{
					ID: "r1", Timestamp: at.Add(time.Hour), Wallet: "ledger", Type: tx.Receive,
					Received: amt("1", "BTC"),
				},
			},
			checkFunc: func(t *testing.T, matched []*tx.Transaction) {
				assert.Equal(t, 1, len(matched))
				assert.Equal(t, tx.Transfer, matched[0].Type)
				assert.Zero(t, matched[0].Fee)
			},
		},
		{
			name: "unmatched send becomes a sell",
			txs: []*tx.Transaction{
				{
					ID: "s1", Timestamp: at, Wallet: "kraken", Type: tx.Send,
					Sent: amt("1", "BTC"), Value: amt("30000", "EUR"),
				},
			},
			checkFunc: func(t *testing.T, matched []*tx.Transaction) {
				assert.Equal(t, 1, len(matched))
				assert.Equal(t, tx.Sell, matched[0].Type)
				assert.True(t, matched[0].Value.Equal(amt("30000", "EUR")))
			},
		},
		{
			name: "unmatched receive becomes a buy",
			txs: []*tx.Transaction{
				{
					ID: "r1", Timestamp: at, Wallet: "ledger", Type: tx.Receive,
					Received: amt("1", "BTC"),
				},
			},
			checkFunc: func(t *testing.T, matched []*tx.Transaction) {
				assert.Equal(t, 1, len(matched))
				assert.Equal(t, tx.Buy, matched[0].Type)
			},
		},
		{
			name: "different currencies never pair",
			txs: []*tx.Transaction{
				{
					ID: "s1", Timestamp: at, Wallet: "kraken", Type: tx.Send,
					Sent: amt("1", "BTC"),
				},
				{
					ID: "r1", Timestamp: at.Add(time.Minute), Wallet: "ledger", Type: tx.Receive,
					Received: amt("1", "ETH"),
				},
			},
			checkFunc: func(t *testing.T, matched []*tx.Transaction) {
				assert.Equal(t, 2, len(matched))
				assert.Equal(t, tx.Sell, matched[0].Type)
				assert.Equal(t, tx.Buy, matched[1].Type)
			},
		},
		{
			name: "shortfall beyond tolerance never pairs",
			txs: []*tx.Transaction{
				{
					ID: "s1", Timestamp: at, Wallet: "kraken", Type: tx.Send,
					Sent: amt("1", "BTC"),
				},
				{
					ID: "r1", Timestamp: at.Add(time.Minute), Wallet: "ledger", Type: tx.Receive,
					Received: amt("0.9", "BTC"),
				},
			},
			checkFunc: func(t *testing.T, matched []*tx.Transaction) {
				assert.Equal(t, 2, len(matched))
				assert.Equal(t, tx.Sell, matched[0].Type)
				assert.Equal(t, tx.Buy, matched[1].Type)
			},
		},
		{
			name: "receiving more than sent never pairs",
			txs: []*tx.Transaction{
				{
					ID: "s1", Timestamp: at, Wallet: "kraken", Type: tx.Send,
					Sent: amt("1", "BTC"),
				},
				{
					ID: "r1", Timestamp: at.Add(time.Minute), Wallet: "ledger", Type: tx.Receive,
					Received: amt("1.05", "BTC"),
				},
			},
			checkFunc: func(t *testing.T, matched []*tx.Transaction) {
				assert.Equal(t, 2, len(matched))
			},
		},
		{
			name: "conflicting tx hashes never pair",
			txs: []*tx.Transaction{
				{
					ID: "s1", Timestamp: at, Wallet: "kraken", Type: tx.Send,
					Sent: amt("1", "BTC"), TxHash: "0xaaa",
				},
				{
					ID: "r1", Timestamp: at.Add(time.Minute), Wallet: "ledger", Type: tx.Receive,
					Received: amt("1", "BTC"), TxHash: "0xbbb",
				},
			},
			checkFunc: func(t *testing.T, matched []*tx.Transaction) {
				assert.Equal(t, 2, len(matched))
			},
		},
		{
			name: "receive outside the window never pairs",
			txs: []*tx.Transaction{
				{
					ID: "s1", Timestamp: at, Wallet: "kraken", Type: tx.Send,
					Sent: amt("1", "BTC"),
				},
				{
					ID: "r1", Timestamp: at.Add(25 * time.Hour), Wallet: "ledger", Type: tx.Receive,
					Received: amt("1", "BTC"),
				},
			},
			checkFunc: func(t *testing.T, matched []*tx.Transaction) {
				assert.Equal(t, 2, len(matched))
			},
		},
		{
			name: "closest amount wins among candidates",
			txs: []*tx.Transaction{
				{
					ID: "s1", Timestamp: at, Wallet: "kraken", Type: tx.Send,
					Sent: amt("1", "BTC"),
				},
				{
					ID: "s2", Timestamp: at, Wallet: "binance", Type: tx.Send,
					Sent: amt("1.02", "BTC"),
				},
				{
					ID: "r1", Timestamp: at.Add(time.Minute), Wallet: "ledger", Type: tx.Receive,
					Received: amt("1", "BTC"),
				},
			},
			checkFunc: func(t *testing.T, matched []*tx.Transaction) {
				assert.Equal(t, 2, len(matched))
				var transfer *tx.Transaction
				for _, m := range matched {
					if m.Type == tx.Transfer {
						transfer = m
					}
				}
				assert.NotZero(t, transfer)
				assert.Equal(t, "s1", transfer.ID, "the exact match should pair, not the earlier candidate")
			},
		},
		{
			name: "declared fee matching the difference is kept",
			txs: []*tx.Transaction{
				{
					ID: "s1", Timestamp: at, Wallet: "kraken", Type: tx.Send,
					Sent: amt("1", "BTC"),
					Fee:  amt("0.001", "BTC"), FeeValue: amt("30", "EUR"),
				},
				{
					ID: "r1", Timestamp: at.Add(time.Minute), Wallet: "ledger", Type: tx.Receive,
					Received: amt("0.999", "BTC"),
				},
			},
			checkFunc: func(t *testing.T, matched []*tx.Transaction) {
				assert.Equal(t, 1, len(matched))
				assert.True(t, matched[0].Fee.Equal(amt("0.001", "BTC")))
				assert.True(t, matched[0].FeeValue.Equal(amt("30", "EUR")), "declared fee keeps its valuation")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx.Sort(tt.txs)
			matched := MatchTransfers(tt.txs)
			tt.checkFunc(t, matched)
		})
	}
}
