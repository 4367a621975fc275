// Package export writes the engine's outputs in external formats: the CTC
// transaction CSV, the capital gains CSV, the per-year summary CSV and the
// JSON interchange document. The CSV field orders and labels are
// compatibility contracts with external tax tools; don't reorder them.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/cointax/tx"
)

// ctcHeader is the fixed column set of the CTC import format.
var ctcHeader = []string{
	"Timestamp (UTC)",
	"Type",
	"Base Currency",
	"Base Amount",
	"Quote Currency (Optional)",
	"Quote Amount (Optional)",
	"Fee Currency (Optional)",
	"Fee Amount (Optional)",
	"From (Optional)",
	"To (Optional)",
	"Blockchain (Optional)",
	"ID (Optional)",
	"Description (Optional)",
	"Reference Price Per Unit (Optional)",
	"Reference Price Currency (Optional)",
}

const ctcTimeLayout = "2006-01-02 15:04:05"

// ctcRow is one record of the CTC CSV in column order.
type ctcRow struct {
	operation     string
	baseCurrency  string
	baseAmount    decimal.Decimal
	quoteCurrency string
	quoteAmount   *decimal.Decimal
	from          string
	to            string
}

// WriteTransactions writes transactions as CTC-format CSV.
func WriteTransactions(w io.Writer, transactions []*tx.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ctcHeader); err != nil {
		return err
	}

	for _, t := range transactions {
		for _, row := range ctcRows(t) {
			record := make([]string, len(ctcHeader))
			record[0] = t.Timestamp.UTC().Format(ctcTimeLayout)
			record[1] = row.operation
			record[2] = row.baseCurrency
			record[3] = row.baseAmount.String()
			record[4] = row.quoteCurrency
			if row.quoteAmount != nil {
				record[5] = row.quoteAmount.String()
			}
			if t.Fee != nil {
				record[6] = t.Fee.Currency
				record[7] = t.Fee.Quantity.String()
			}
			record[8] = row.from
			record[9] = row.to
			record[10] = t.Chain
			record[11] = t.ID
			record[12] = t.Description
			if err := cw.Write(record); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

// ctcRows maps a transaction onto CTC records. Most types map 1:1; trades
// become a buy of the received currency quoted in the sent one, and swaps
// become a matched bridge-out/bridge-in pair so the cost basis carries over
// on import.
func ctcRows(t *tx.Transaction) []ctcRow {
	switch t.Type {
	case tx.Buy:
		return []ctcRow{received(t, "buy")}
	case tx.Sell:
		return []ctcRow{sent(t, "sell")}
	case tx.Trade:
		row := received(t, "buy")
		row.quoteCurrency = t.Sent.Currency
		quote := t.Sent.Quantity
		row.quoteAmount = &quote
		return []ctcRow{row}
	case tx.Swap:
		out := sent(t, "bridge-out")
		in := received(t, "bridge-in")
		return []ctcRow{out, in}
	case tx.Deposit:
		return []ctcRow{received(t, "fiat-deposit")}
	case tx.Withdrawal:
		return []ctcRow{sent(t, "fiat-withdrawal")}
	case tx.Fee:
		return []ctcRow{sent(t, "fee")}
	case tx.Receive:
		return []ctcRow{received(t, "receive")}
	case tx.Send:
		return []ctcRow{sent(t, "send")}
	case tx.Transfer:
		row := sent(t, "send")
		row.from = t.Wallet
		return []ctcRow{row}
	case tx.ChainSplit:
		return []ctcRow{received(t, "chain-split")}
	case tx.Expense:
		return []ctcRow{sent(t, "expense")}
	case tx.Stolen:
		return []ctcRow{sent(t, "stolen")}
	case tx.Lost:
		return []ctcRow{sent(t, "lost")}
	case tx.Burn:
		return []ctcRow{sent(t, "burn")}
	case tx.Income:
		return []ctcRow{received(t, "income")}
	case tx.Airdrop:
		return []ctcRow{received(t, "airdrop")}
	case tx.Staking:
		return []ctcRow{received(t, "staking")}
	case tx.Cashback:
		return []ctcRow{received(t, "cashback")}
	case tx.Gift:
		return []ctcRow{received(t, "incoming-gift")}
	case tx.OutgoingGift:
		return []ctcRow{sent(t, "outgoing-gift")}
	case tx.Spam:
		return []ctcRow{received(t, "spam")}
	}
	panic(fmt.Sprintf("unmapped transaction type %q", t.Type))
}

func sent(t *tx.Transaction, operation string) ctcRow {
	return ctcRow{
		operation:    operation,
		baseCurrency: t.Sent.Currency,
		baseAmount:   t.Sent.Quantity,
		from:         t.Wallet,
	}
}

func received(t *tx.Transaction, operation string) ctcRow {
	return ctcRow{
		operation:    operation,
		baseCurrency: t.Received.Currency,
		baseAmount:   t.Received.Quantity,
		to:           t.Wallet,
	}
}
