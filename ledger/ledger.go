// Package ledger implements the transaction ledger and FIFO capital-gains
// engine. It turns a chronologically sorted stream of normalized
// transactions into matched acquisition/disposal pairs, classified gain
// events and per-year tax reports.
//
// The engine is a pure, single-writer batch transform: a processing pass
// takes an immutable transaction snapshot and deterministically produces
// ledger state and reports. It performs no I/O; prices and valuations are
// supplied on the transactions before the pass starts. Recomputation is
// always from scratch.
//
// Example usage:
//
//	l, err := ledger.New(ledger.NewConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := l.Process(ctx, transactions)
//	if err != nil {
//	    // Structural errors; no partial state was produced.
//	}
//	for _, report := range result.Reports {
//	    fmt.Println(report.Year, report.TotalNetCapitalGains())
//	}
package ledger

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/cointax/telemetry"
	"github.com/robinvdvleuten/cointax/tx"
)

// Ledger holds the FIFO lot inventory and configuration for one processing
// pass. A Ledger is single-use per Process call in the sense that Process
// rebuilds the inventory from scratch each time; there is no shared state
// across report generations.
type Ledger struct {
	config    *Config
	inventory *Inventory
}

// Result is the complete output of a processing pass.
type Result struct {
	// Transactions is the sorted input augmented with computed gains, for
	// display.
	Transactions []ProcessedTransaction

	// Reports holds one report per calendar year with activity, in year
	// order, followed by the synthetic all-time report.
	Reports []*TaxReport

	// Warnings are non-fatal observations from the preparation passes
	// (duplicate transactions, unmatched legs).
	Warnings []string
}

// AllTime returns the synthetic all-time report.
func (r *Result) AllTime() *TaxReport {
	for _, report := range r.Reports {
		if report.Year == AllTimeYear {
			return report
		}
	}
	return nil
}

// ReportForYear returns the report for a calendar year, or nil if the year
// saw no activity.
func (r *Result) ReportForYear(year int) *TaxReport {
	for _, report := range r.Reports {
		if report.Year == year {
			return report
		}
	}
	return nil
}

// New creates a ledger with the given configuration. An invalid
// configuration is fatal here, before any processing starts.
func New(config *Config) (*Ledger, error) {
	if config == nil {
		config = NewConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Ledger{
		config:    config,
		inventory: NewInventory(),
	}, nil
}

// Config returns the ledger's configuration.
func (l *Ledger) Config() *Config {
	return l.config
}

// Balances returns the current outstanding quantity per currency.
func (l *Ledger) Balances() map[string]decimal.Decimal {
	balances := make(map[string]decimal.Decimal)
	for _, currency := range l.inventory.Currencies() {
		balances[currency] = l.inventory.Balance(currency)
	}
	return balances
}

// Balance returns the current outstanding quantity of one currency.
func (l *Ledger) Balance(currency string) decimal.Decimal {
	return l.inventory.Balance(currency)
}

// Holdings returns the open lots for a currency, oldest first.
func (l *Ledger) Holdings(currency string) []Holding {
	return l.inventory.Holdings(currency)
}

// Process runs a full pass over a transaction snapshot: structural
// validation, sorting, trade consolidation, transfer matching, then the
// chronological FIFO walk grouped by calendar year. Structural errors abort
// the pass before the ledger is touched; business conditions (deficits,
// missing prices) are carried in the result.
func (l *Ledger) Process(ctx context.Context, transactions []*tx.Transaction) (*Result, error) {
	if errs := tx.ValidateAll(transactions); len(errs) > 0 {
		return nil, &ProcessErrors{Errors: errs}
	}

	prepared := make([]*tx.Transaction, 0, len(transactions))
	for _, t := range transactions {
		switch {
		case !l.excluded(t):
			prepared = append(prepared, t)
		case t.Fee != nil && !l.config.Ignored(t.Fee.Currency):
			// The transaction is ignored but its fee is in a tracked
			// currency; keep it as a standalone fee disposal.
			feeTx := *t
			feeTx.Type = tx.Fee
			feeTx.Sent = t.Fee.Clone()
			feeTx.Received = nil
			feeTx.Fee = nil
			feeTx.Value = t.FeeValue.Clone()
			feeTx.FeeValue = nil
			prepared = append(prepared, &feeTx)
		}
	}
	tx.Sort(prepared)

	result := &Result{}
	for _, dup := range tx.Duplicates(prepared) {
		result.Warnings = append(result.Warnings, fmt.Sprintf("duplicate transaction detected: %s", dup))
	}

	prepareTimer := telemetry.StartTimer(ctx, "ledger.prepare")
	prepared = ConsolidateTrades(prepared, l.config.MergeWindow)
	prepared = MatchTransfers(prepared)
	prepareTimer.End()

	l.inventory = NewInventory()
	builder := newReportBuilder(l.config)

	processTimer := telemetry.StartTimer(ctx, fmt.Sprintf("ledger.processing (%d transactions)", len(prepared)))
	defer processTimer.End()

	var yearReports []*TaxReport
	start := 0
	for start < len(prepared) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		year := prepared[start].Timestamp.Year()
		end := start
		for end < len(prepared) && prepared[end].Timestamp.Year() == year {
			end++
		}
		yearTxs := prepared[start:end]

		builder.startYear()
		var gains []CapitalGain
		for _, t := range yearTxs {
			events, annotated := l.applyTransaction(t)
			gains = append(gains, events...)
			result.Transactions = append(result.Transactions, annotated)
		}
		yearReports = append(yearReports, builder.finishYear(year, yearTxs, gains, l.inventory))

		start = end
	}

	result.Reports = append(yearReports, allTimeReport(yearReports))
	return result, nil
}

// excluded reports whether a transaction is dropped from the ledger because
// all its asset legs are in ignored currencies. A trade is only excluded
// when both of its legs are ignored.
func (l *Ledger) excluded(t *tx.Transaction) bool {
	if len(l.config.IgnoredCurrencies) == 0 {
		return false
	}
	if t.Sent == nil && t.Received == nil {
		return false
	}

	if t.Sent != nil && !l.config.Ignored(t.Sent.Currency) {
		return false
	}
	if t.Received != nil && !l.config.Ignored(t.Received.Currency) {
		return false
	}
	return true
}
