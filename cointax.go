// Package cointax computes capital gains and yearly tax reports for
// cryptocurrency transaction histories using FIFO cost-basis accounting.
//
// The heavy lifting lives in the subpackages: tx defines the transaction
// model, ledger runs the accounting, loader owns portfolio files and
// export writes the report formats. This package ties them together for
// the common case of processing a portfolio file end to end.
package cointax

import (
	"context"

	"github.com/robinvdvleuten/cointax/ledger"
	"github.com/robinvdvleuten/cointax/loader"
	"github.com/robinvdvleuten/cointax/pricing"
	"github.com/robinvdvleuten/cointax/tx"
)

// ComputeFile loads a portfolio file and computes its tax reports. When the
// portfolio configures a price history, missing fiat values are estimated
// from it before processing.
func ComputeFile(ctx context.Context, path string) (*ledger.Result, error) {
	portfolio, err := loader.Load(path)
	if err != nil {
		return nil, err
	}

	history, err := portfolio.PriceHistory()
	if err != nil {
		return nil, err
	}

	var prices []pricing.Source
	if history != nil {
		prices = append(prices, history)
	}
	return Compute(ctx, portfolio.Transactions(), portfolio.Config(), prices...)
}

// Compute runs the full accounting pipeline over a transaction history.
// A nil config uses the defaults. Price sources, when given, fill in
// missing fiat values before processing; later sources only see what
// earlier ones left unvalued.
func Compute(ctx context.Context, transactions []*tx.Transaction, config *ledger.Config, prices ...pricing.Source) (*ledger.Result, error) {
	if config == nil {
		config = ledger.NewConfig()
	}

	l, err := ledger.New(config)
	if err != nil {
		return nil, err
	}

	for _, source := range prices {
		pricing.EstimateValues(transactions, source, config.BaseCurrency)
	}

	return l.Process(ctx, transactions)
}
