package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/robinvdvleuten/cointax/ledger"
)

var summaryHeader = []string{
	"Currency",
	"Proceeds",
	"Cost (ex Fees)",
	"Fees",
	"Capital Gains",
	"Other Income",
	"Total Gains",
	"Opening Balance",
	"Quantity Traded",
	"Quantity Income",
	"Closing Balance",
}

// WriteSummary writes one year's tax report as CSV: a totals block with the
// short/long-term breakdown followed by the per-currency table. generator
// names the producing tool in the file header.
func WriteSummary(w io.Writer, report *ledger.TaxReport, generator string) error {
	cw := csv.NewWriter(w)

	rows := [][]string{
		{fmt.Sprintf("Exported by %s", generator)},
		{""},
		{"", "Short Term", "Long Term", "Total"},
		{"Capital Gains",
			report.ShortTermCapitalGains.Round(2).String(),
			report.LongTermCapitalGains.Round(2).String(),
			report.TotalCapitalGains().Round(2).String()},
		{"Capital Losses",
			report.ShortTermCapitalLosses.Round(2).String(),
			report.LongTermCapitalLosses.Round(2).String(),
			report.TotalCapitalLosses().Round(2).String()},
		{"Net Capital Gains",
			report.ShortTermNetCapitalGains().Round(2).String(),
			report.LongTermNetCapitalGains().Round(2).String(),
			report.TotalNetCapitalGains().Round(2).String()},
		{""},
		summaryHeader,
	}

	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	for _, currency := range report.Currencies {
		record := []string{
			currency.Currency,
			currency.Proceeds.Round(2).String(),
			currency.Cost.Round(2).String(),
			currency.Fees.Round(2).String(),
			currency.CapitalProfitLoss.Round(2).String(),
			currency.Income.Round(2).String(),
			currency.TotalProfitLoss.Round(2).String(),
			currency.BalanceStart.String(),
			currency.QuantityDisposed.String(),
			currency.QuantityIncome.String(),
			currency.BalanceEnd.String(),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteYearlyOverview writes one row per report with its short-term
// figures, the compact cross-year view.
func WriteYearlyOverview(w io.Writer, reports []*ledger.TaxReport) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Year", "Proceeds", "Cost", "Gain or Loss"}); err != nil {
		return err
	}

	for _, report := range reports {
		year := "all time"
		if report.Year != ledger.AllTimeYear {
			year = strconv.Itoa(report.Year)
		}
		record := []string{
			year,
			report.ShortTermProceeds.Round(2).String(),
			report.ShortTermCost.Round(2).String(),
			report.ShortTermProceeds.Sub(report.ShortTermCost).Round(2).String(),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
