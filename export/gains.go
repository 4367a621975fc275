package export

import (
	"encoding/csv"
	"io"

	"github.com/robinvdvleuten/cointax/ledger"
)

var gainsHeader = []string{
	"Currency",
	"Bought",
	"Sold",
	"Quantity",
	"Cost",
	"Proceeds",
	"Gain or Loss",
	"Long Term",
}

const boolTrue, boolFalse = "true", "false"

// WriteGains writes capital gain events as CSV, one row per event. Fiat
// figures are rounded to cents, half away from zero. Unknown cost or
// proceeds render as empty cells so a spreadsheet never mistakes them for
// zero.
func WriteGains(w io.Writer, gains []ledger.CapitalGain) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(gainsHeader); err != nil {
		return err
	}

	for i := range gains {
		gain := &gains[i]

		bought := ""
		if !gain.Deficit {
			bought = gain.Acquired.UTC().Format(ctcTimeLayout)
		}

		cost, proceeds, gainOrLoss := "", "", ""
		if gain.CostErr == nil {
			cost = gain.Cost.Round(2).String()
		}
		if gain.ProceedsErr == nil {
			proceeds = gain.Proceeds.Round(2).String()
		}
		if gain.Known() {
			gainOrLoss = gain.GainOrLoss().Round(2).String()
		}

		longTerm := boolFalse
		if gain.LongTerm {
			longTerm = boolTrue
		}

		record := []string{
			gain.Currency,
			bought,
			gain.Disposed.UTC().Format(ctcTimeLayout),
			gain.Quantity.String(),
			cost,
			proceeds,
			gainOrLoss,
			longTerm,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
