package cli

import (
	"context"
	stdErrors "errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/cointax/ledger"
	"github.com/robinvdvleuten/cointax/output"
	"github.com/robinvdvleuten/cointax/pricing"
	"github.com/robinvdvleuten/cointax/telemetry"
)

type CheckCmd struct {
	File string `help:"Portfolio file to check." arg:"" type:"existingfile"`
}

func (cmd *CheckCmd) Run(ctx *kong.Context, globals *Globals) error {
	runCtx := context.Background()

	var collector telemetry.Collector
	var checkTimer telemetry.Timer
	var once sync.Once

	reportTelemetry := func() {
		once.Do(func() {
			if collector != nil {
				checkTimer.End()
				_, _ = fmt.Fprintln(ctx.Stderr)
				collector.Report(ctx.Stderr, output.NewStyles(ctx.Stderr))
			}
		})
	}

	if globals.Telemetry {
		collector = telemetry.NewTimingCollector()
		runCtx = telemetry.WithCollector(runCtx, collector)

		checkTimer = collector.Start(fmt.Sprintf("check %s", filepath.Base(cmd.File)))
		runCtx = telemetry.WithRootTimer(runCtx, checkTimer)

		defer reportTelemetry()
	}

	portfolio, err := loadPortfolio(ctx, cmd.File)
	if err != nil {
		reportTelemetry()
		return err
	}

	transactions := portfolio.Transactions()
	config := portfolio.Config()

	l, err := ledger.New(config)
	if err != nil {
		printError(ctx.Stderr, err.Error())
		reportTelemetry()
		return NewCommandError(1)
	}

	history, err := portfolio.PriceHistory()
	if err != nil {
		printError(ctx.Stderr, err.Error())
		reportTelemetry()
		return NewCommandError(1)
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
			_, _ = fmt.Fprintln(ctx.Stderr)
			printError(ctx.Stderr, fmt.Sprintf("%d validation error(s) found", len(processErrors.Errors)))

			reportTelemetry()
			return NewCommandError(1)
		}
		return err
	}

	for _, warning := range result.Warnings {
		printWarning(ctx.Stderr, warning)
	}

	unknown := 0
	for _, report := range result.Reports {
		if report.Year != ledger.AllTimeYear && report.HasUnknownValues {
			unknown++
		}
	}
	if unknown > 0 {
		printWarning(ctx.Stderr, fmt.Sprintf("%d report year(s) contain unknown values", unknown))
	}

	printSuccess(ctx.Stdout, fmt.Sprintf("Check passed (%d transactions)", len(transactions)))

	return nil
}
