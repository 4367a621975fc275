package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/cointax/ledger"
	"github.com/robinvdvleuten/cointax/tx"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 12, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func amt(quantity, currency string) *tx.Amount {
	return tx.NewAmount(dec(quantity), currency)
}

func parseCSV(t *testing.T, buf *bytes.Buffer) [][]string {
	t.Helper()
	reader := csv.NewReader(buf)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	assert.NoError(t, err)
	return records
}

func TestWriteTransactions(t *testing.T) {
	txs := []*tx.Transaction{
		{
			ID: "t1", Timestamp: date(2021, 6, 1), Wallet: "binance", Type: tx.Trade,
			Sent: amt("0.5", "BTC"), Received: amt("8", "ETH"),
			Fee: amt("0.001", "BTC"),
		},
		{
			ID: "w1", Timestamp: date(2021, 7, 1), Wallet: "ledger", Type: tx.Swap,
			Sent: amt("1", "BTC"), Received: amt("1", "WBTC"),
		},
		{
			ID: "g1", Timestamp: date(2021, 8, 1), Wallet: "ledger", Type: tx.Gift,
			Received: amt("0.1", "BTC"),
		},
		{
			ID: "g2", Timestamp: date(2021, 9, 1), Wallet: "ledger", Type: tx.OutgoingGift,
			Sent: amt("0.05", "BTC"),
		},
	}

	var buf bytes.Buffer
	assert.NoError(t, WriteTransactions(&buf, txs))

	records := parseCSV(t, &buf)
	assert.Equal(t, ctcHeader, records[0])
	assert.Equal(t, 6, len(records), "header, trade, two swap legs, two gifts")

	trade := records[1]
	assert.Equal(t, "2021-06-01 12:00:00", trade[0])
	assert.Equal(t, "buy", trade[1])
	assert.Equal(t, "ETH", trade[2])
	assert.Equal(t, "8", trade[3])
	assert.Equal(t, "BTC", trade[4])
	assert.Equal(t, "0.5", trade[5])
	assert.Equal(t, "BTC", trade[6])
	assert.Equal(t, "0.001", trade[7])
	assert.Equal(t, "t1", trade[11])

	// A swap exports as a matched bridge pair so the basis carries over.
	assert.Equal(t, "bridge-out", records[2][1])
	assert.Equal(t, "BTC", records[2][2])
	assert.Equal(t, "bridge-in", records[3][1])
	assert.Equal(t, "WBTC", records[3][2])

	assert.Equal(t, "incoming-gift", records[4][1])

	assert.Equal(t, "outgoing-gift", records[5][1])
	assert.Equal(t, "BTC", records[5][2])
	assert.Equal(t, "0.05", records[5][3])
}

func TestWriteGains(t *testing.T) {
	gains := []ledger.CapitalGain{
		{
			Currency: "BTC", Quantity: dec("0.5"),
			Acquired: date(2020, 1, 1), Disposed: date(2021, 6, 1),
			Cost: dec("5000.125"), Proceeds: dec("6000"),
			LongTerm: true,
		},
		{
			Currency: "ETH", Quantity: dec("1"),
			Disposed: date(2021, 6, 1),
			CostErr:  ledger.ErrMissingCostBasis,
			Proceeds: dec("2000"),
			Deficit:  true,
		},
	}

	var buf bytes.Buffer
	assert.NoError(t, WriteGains(&buf, gains))

	records := parseCSV(t, &buf)
	assert.Equal(t, gainsHeader, records[0])

	known := records[1]
	assert.Equal(t, "BTC", known[0])
	assert.Equal(t, "2020-01-01 12:00:00", known[1])
	assert.Equal(t, "2021-06-01 12:00:00", known[2])
	assert.Equal(t, "0.5", known[3])
	assert.Equal(t, "5000.13", known[4], "cents, half away from zero")
	assert.Equal(t, "6000", known[5])
	assert.Equal(t, "999.88", known[6])
	assert.Equal(t, "true", known[7])

	deficit := records[2]
	assert.Equal(t, "", deficit[1], "deficits have no acquisition date")
	assert.Equal(t, "", deficit[4], "unknown cost renders empty, not zero")
	assert.Equal(t, "", deficit[6])
	assert.Equal(t, "2000", deficit[5])
}

func TestWriteSummary(t *testing.T) {
	report := &ledger.TaxReport{
		Year:                   2021,
		ShortTermCapitalGains:  dec("1000"),
		ShortTermCapitalLosses: dec("250"),
		LongTermCapitalGains:   dec("500"),
		Currencies: []*ledger.CurrencySummary{
			{
				Currency:          "BTC",
				BalanceStart:      dec("2"),
				BalanceEnd:        dec("1.5"),
				QuantityDisposed:  dec("0.5"),
				Cost:              dec("5000"),
				Proceeds:          dec("6000"),
				CapitalProfitLoss: dec("1000"),
				TotalProfitLoss:   dec("1000"),
			},
		},
	}

	var buf bytes.Buffer
	assert.NoError(t, WriteSummary(&buf, report, "cointax test"))

	// Blank separator rows are dropped by the reader.
	records := parseCSV(t, &buf)
	assert.Equal(t, "Exported by cointax test", records[0][0])
	assert.Equal(t, []string{"", "Short Term", "Long Term", "Total"}, records[1])
	assert.Equal(t, []string{"Capital Gains", "1000", "500", "1500"}, records[2])
	assert.Equal(t, []string{"Capital Losses", "250", "0", "250"}, records[3])
	assert.Equal(t, []string{"Net Capital Gains", "750", "500", "1250"}, records[4])
	assert.Equal(t, summaryHeader, records[5])

	btc := records[6]
	assert.Equal(t, "BTC", btc[0])
	assert.Equal(t, "6000", btc[1])
	assert.Equal(t, "2", btc[7])
	assert.Equal(t, "1.5", btc[10])
}

func TestWriteYearlyOverview(t *testing.T) {
	reports := []*ledger.TaxReport{
		{Year: 2020, ShortTermProceeds: dec("8000"), ShortTermCost: dec("5000")},
		{Year: 2021, ShortTermProceeds: dec("4000"), ShortTermCost: dec("5000")},
		{Year: ledger.AllTimeYear, ShortTermProceeds: dec("12000"), ShortTermCost: dec("10000")},
	}

	var buf bytes.Buffer
	assert.NoError(t, WriteYearlyOverview(&buf, reports))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, "Year,Proceeds,Cost,Gain or Loss", lines[0])
	assert.Equal(t, "2020,8000,5000,3000", lines[1])
	assert.Equal(t, "2021,4000,5000,-1000", lines[2])
	assert.Equal(t, "all time,12000,10000,2000", lines[3])
}
