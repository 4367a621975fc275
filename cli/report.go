package cli

import (
	"context"
	stdErrors "errors"
	"fmt"
	"io"

	"github.com/alecthomas/kong"
	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/cointax/ledger"
	"github.com/robinvdvleuten/cointax/loader"
	"github.com/robinvdvleuten/cointax/output"
	"github.com/robinvdvleuten/cointax/pricing"
	"github.com/robinvdvleuten/cointax/telemetry"
)

type ReportCmd struct {
	File       string `help:"Portfolio file to report on." arg:"" type:"existingfile"`
	Year       int    `help:"Limit output to a single calendar year." default:"0"`
	Currencies bool   `help:"Include the per-currency breakdown for each year." short:"c"`
}

func (cmd *ReportCmd) Run(ctx *kong.Context, globals *Globals) error {
	runCtx := context.Background()

	if globals.Telemetry {
		collector := telemetry.NewTimingCollector()
		runCtx = telemetry.WithCollector(runCtx, collector)

		defer func() {
			_, _ = fmt.Fprintln(ctx.Stderr)
			collector.Report(ctx.Stderr, output.NewStyles(ctx.Stderr))
		}()
	}

	portfolio, err := loadPortfolio(ctx, cmd.File)
	if err != nil {
		return err
	}

	result, base, err := processPortfolio(runCtx, ctx, portfolio)
	if err != nil {
		return err
	}

	for _, warning := range result.Warnings {
		printWarning(ctx.Stderr, warning)
	}

	if cmd.Year != 0 {
		report := result.ReportForYear(cmd.Year)
		if report == nil {
			printError(ctx.Stderr, fmt.Sprintf("no activity in %d", cmd.Year))
			return NewCommandError(1)
		}
		renderReport(ctx.Stdout, report, base, cmd.Currencies)
		return nil
	}

	renderOverview(ctx.Stdout, result, base)

	if cmd.Currencies {
		for _, report := range result.Reports {
			if report.Year == ledger.AllTimeYear {
				continue
			}
			_, _ = fmt.Fprintln(ctx.Stdout)
			renderReport(ctx.Stdout, report, base, true)
		}
	}

	return nil
}

// processPortfolio runs the full pipeline for a portfolio and reports
// failures in the common style. It returns the result and the base
// currency the amounts are denominated in.
func processPortfolio(runCtx context.Context, ctx *kong.Context, portfolio *loader.Portfolio) (*ledger.Result, string, error) {
	config := portfolio.Config()

	l, err := ledger.New(config)
	if err != nil {
		printError(ctx.Stderr, err.Error())
		return nil, "", NewCommandError(1)
	}

	transactions := portfolio.Transactions()

	history, err := portfolio.PriceHistory()
	if err != nil {
		printError(ctx.Stderr, err.Error())
		return nil, "", NewCommandError(1)
	}
	if history != nil {
		pricing.EstimateValues(transactions, history, config.BaseCurrency)
	}

	result, err := l.Process(runCtx, transactions)
	if err != nil {
		var processErrors *ledger.ProcessErrors
		if stdErrors.As(err, &processErrors) {
			for _, e := range processErrors.Errors {
				printError(ctx.Stderr, e.Error())
			}
			return nil, "", NewCommandError(1)
		}
		return nil, "", err
	}

	return result, config.BaseCurrency, nil
}

func renderOverview(w io.Writer, result *ledger.Result, base string) {
	styles := output.NewStyles(w)

	_, _ = fmt.Fprintln(w, styles.Keyword("Yearly overview"))
	_, _ = fmt.Fprintln(w)

	t := &table{header: []string{"Year", "Proceeds", "Cost", "Gain or Loss"}}
	for _, report := range result.Reports {
		label := fmt.Sprintf("%d", report.Year)
		if report.Year == ledger.AllTimeYear {
			label = "all time"
		}

		net := report.TotalNetCapitalGains()
		t.addRow(
			text(label),
			num(money(report.ShortTermProceeds)),
			num(money(report.ShortTermCost)),
			styled(num(gainText(report, net)), func(s string) string {
				return styles.Gain(s, net.IsNegative())
			}),
		)
	}
	t.render(w)

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, styles.Dim(fmt.Sprintf("Amounts in %s", base)))
}

func renderReport(w io.Writer, report *ledger.TaxReport, base string, currencies bool) {
	styles := output.NewStyles(w)

	title := fmt.Sprintf("Tax report %d", report.Year)
	if report.Year == ledger.AllTimeYear {
		title = "Tax report (all time)"
	}
	_, _ = fmt.Fprintln(w, styles.Keyword(title))
	_, _ = fmt.Fprintln(w)

	totals := &table{header: []string{"", "Short Term", "Long Term", "Total"}}
	totals.addRow(
		text("Capital Gains"),
		num(money(report.ShortTermCapitalGains)),
		num(money(report.LongTermCapitalGains)),
		num(money(report.TotalCapitalGains())),
	)
	totals.addRow(
		text("Capital Losses"),
		num(money(report.ShortTermCapitalLosses)),
		num(money(report.LongTermCapitalLosses)),
		num(money(report.TotalCapitalLosses())),
	)

	shortNet := report.ShortTermNetCapitalGains()
	longNet := report.LongTermNetCapitalGains()
	totalNet := report.TotalNetCapitalGains()
	totals.addRow(
		text("Net Capital Gains"),
		styled(num(money(shortNet)), func(s string) string { return styles.Gain(s, shortNet.IsNegative()) }),
		styled(num(money(longNet)), func(s string) string { return styles.Gain(s, longNet.IsNegative()) }),
		styled(num(money(totalNet)), func(s string) string { return styles.Gain(s, totalNet.IsNegative()) }),
	)
	totals.render(w)

	if report.HasUnknownValues {
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintln(w, styles.Warning("Some values are unknown and excluded from the totals above."))
	}

	if currencies && len(report.Currencies) > 0 {
		_, _ = fmt.Fprintln(w)
		renderCurrencies(w, styles, report)
	}

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, styles.Dim(fmt.Sprintf("Amounts in %s", base)))
}

func renderCurrencies(w io.Writer, styles *output.Styles, report *ledger.TaxReport) {
	t := &table{header: []string{
		"Currency", "Proceeds", "Cost", "Fees", "Income", "Total P/L", "Balance",
	}}

	for _, summary := range report.Currencies {
		total := summary.TotalProfitLoss
		name := summary.Currency
		if summary.HasUnknownValues {
			name += " *"
		}

		t.addRow(
			styled(text(name), styles.Currency),
			num(money(summary.Proceeds)),
			num(money(summary.Cost)),
			num(money(summary.Fees)),
			num(money(summary.Income)),
			styled(num(money(total)), func(s string) string { return styles.Gain(s, total.IsNegative()) }),
			num(summary.BalanceEnd.String()),
		)
	}
	t.render(w)
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func gainText(report *ledger.TaxReport, net decimal.Decimal) string {
	s := money(net)
	if report.HasUnknownValues {
		s += " *"
	}
	return s
}
