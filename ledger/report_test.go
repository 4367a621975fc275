package ledger

import (
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/robinvdvleuten/cointax/tx"
)

// tradeWithFiatFee is a trade whose fee is neither part of the sent amount
// nor a crypto disposal; its treatment depends on the fee policy.
func tradeWithFiatFee() []*tx.Transaction {
	return []*tx.Transaction{
		{
			ID: "b1", Timestamp: date(2021, 1, 1), Type: tx.Buy,
			Received: amt("1", "BTC"), Value: amt("10000", "EUR"),
		},
		{
			ID: "t1", Timestamp: date(2021, 6, 1), Type: tx.Trade,
			Sent: amt("0.5", "BTC"), Received: amt("8", "ETH"),
			Value: amt("6000", "EUR"),
			Fee:   amt("5", "EUR"),
		},
	}
}

func TestReport_FeePolicyShortTermCost(t *testing.T) {
	config := NewConfig()
	config.FeePolicy = FeePolicyShortTermCost

	_, result := process(t, config, tradeWithFiatFee())
	report := result.ReportForYear(2021)

	summary := summaryByCurrency(t, report, "EUR")
	assert.True(t, summary.Fees.Equal(dec("5")))

	// The trade gain is 1000; the fee is booked as an extra short-term loss.
	assert.True(t, report.ShortTermCapitalGains.Equal(dec("1000")))
	assert.True(t, report.ShortTermCapitalLosses.Equal(dec("5")))
	assert.True(t, report.ShortTermCost.Equal(dec("5005")))
}

func TestReport_FeePolicyIgnore(t *testing.T) {
	config := NewConfig()
	config.FeePolicy = FeePolicyIgnore

	_, result := process(t, config, tradeWithFiatFee())
	report := result.ReportForYear(2021)

	summary := summaryByCurrency(t, report, "EUR")
	assert.True(t, summary.Fees.Equal(dec("5")), "fees still show in the per-currency totals")

	assert.True(t, report.ShortTermCapitalLosses.IsZero())
	assert.True(t, report.ShortTermCost.Equal(dec("5000")))
}

func TestReport_TradeFeeWithoutValuation(t *testing.T) {
	txs := []*tx.Transaction{
		{
			ID: "b1", Timestamp: date(2021, 1, 1), Type: tx.Buy,
			Received: amt("1", "BTC"), Value: amt("10000", "EUR"),
		},
		{
			ID: "b2", Timestamp: date(2021, 1, 2), Type: tx.Buy,
			Received: amt("10", "BNB"), Value: amt("1000", "EUR"),
		},
		{
			ID: "t1", Timestamp: date(2021, 6, 1), Type: tx.Trade,
			Sent: amt("0.5", "BTC"), Received: amt("8", "ETH"),
			Value: amt("6000", "EUR"),
			Fee:   amt("0.1", "BNB"),
		},
	}

	_, result := process(t, nil, txs)
	report := result.ReportForYear(2021)

	summary := summaryByCurrency(t, report, "BNB")
	assert.True(t, summary.HasUnknownValues, "an unvalued fee cannot be booked")
	assert.True(t, report.HasUnknownValues)
}

func TestReport_SummariesSortedByClosingCost(t *testing.T) {
	txs := []*tx.Transaction{
		{
			ID: "b1", Timestamp: date(2021, 1, 1), Type: tx.Buy,
			Received: amt("1", "AAA"), Value: amt("100", "EUR"),
		},
		{
			ID: "b2", Timestamp: date(2021, 1, 2), Type: tx.Buy,
			Received: amt("1", "ZZZ"), Value: amt("900", "EUR"),
		},
	}

	_, result := process(t, nil, txs)
	report := result.ReportForYear(2021)

	assert.Equal(t, 2, len(report.Currencies))
	assert.Equal(t, "ZZZ", report.Currencies[0].Currency, "largest closing cost renders first")
	assert.Equal(t, "AAA", report.Currencies[1].Currency)
}

func TestReport_AllTimeAggregation(t *testing.T) {
	txs := []*tx.Transaction{
		{
			ID: "b1", Timestamp: date(2020, 1, 1), Type: tx.Buy,
			Received: amt("2", "BTC"), Value: amt("10000", "EUR"),
		},
		{
			ID: "s1", Timestamp: date(2020, 6, 1), Type: tx.Sell,
			Sent: amt("1", "BTC"), Value: amt("8000", "EUR"),
		},
		{
			ID: "s2", Timestamp: date(2021, 6, 1), Type: tx.Sell,
			Sent: amt("1", "BTC"), Value: amt("4000", "EUR"),
		},
	}

	_, result := process(t, nil, txs)

	allTime := result.AllTime()
	assert.True(t, allTime.ShortTermCapitalGains.Equal(dec("3000")))
	assert.True(t, allTime.LongTermCapitalLosses.Equal(dec("1000")))
	assert.True(t, allTime.TotalNetCapitalGains().Equal(dec("2000")))
	assert.Equal(t, 2, len(allTime.Gains))

	summary := summaryByCurrency(t, allTime, "BTC")
	assert.True(t, summary.QuantityDisposed.Equal(dec("2")))
	assert.True(t, summary.Proceeds.Equal(dec("12000")))
	assert.True(t, summary.BalanceEnd.IsZero(), "the all-time closing balance is the final one")
}

func summaryByCurrency(t *testing.T, report *TaxReport, currency string) *CurrencySummary {
	t.Helper()
	for _, s := range report.Currencies {
		if s.Currency == currency {
			return s
		}
	}
	t.Fatalf("no summary for %s", currency)
	return nil
}
