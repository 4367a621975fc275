package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/cointax/export"
	"github.com/robinvdvleuten/cointax/ledger"
	"github.com/robinvdvleuten/cointax/output"
	"github.com/robinvdvleuten/cointax/telemetry"
	"github.com/robinvdvleuten/cointax/tx"
)

type ExportCmd struct {
	File   string `help:"Portfolio file to export from." arg:"" type:"existingfile"`
	Format string `help:"Export format." enum:"ctc,gains,summary,yearly,transactions" default:"gains"`
	Output string `help:"Destination file (format-specific default next to the portfolio)." short:"o"`
	Year   int    `help:"Limit gains and summary exports to a single calendar year." default:"0"`
	Force  bool   `help:"Overwrite the destination without confirmation." short:"f"`
}

func (cmd *ExportCmd) Run(ctx *kong.Context, globals *Globals) error {
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

	result, _, err := processPortfolio(runCtx, ctx, portfolio)
	if err != nil {
		return err
	}

	destination := cmd.Output
	if destination == "" {
		destination = defaultDestination(cmd.File, cmd.Format)
	}

	if !cmd.Force {
		if _, err := os.Stat(destination); err == nil {
			confirmed, err := promptYesNo(ctx, fmt.Sprintf("File %q exists. Overwrite it?", destination))
			if err != nil {
				return fmt.Errorf("failed to read confirmation: %w", err)
			}
			if !confirmed {
				printError(ctx.Stderr, "export aborted")
				return NewCommandError(1)
			}
		}
	}

	report, err := cmd.reportForExport(result)
	if err != nil {
		printError(ctx.Stderr, err.Error())
		return NewCommandError(1)
	}

	f, err := os.Create(destination)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}

	switch cmd.Format {
	case "ctc":
		err = export.WriteTransactions(f, rawTransactions(result))
	case "gains":
		err = export.WriteGains(f, report.Gains)
	case "summary":
		err = export.WriteSummary(f, report, generator())
	case "yearly":
		err = export.WriteYearlyOverview(f, result.Reports)
	case "transactions":
		err = tx.Encode(f, rawTransactions(result))
	}
	if err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	printSuccess(ctx.Stdout, fmt.Sprintf("Exported %s to %s", cmd.Format, pathStyle.Render(destination)))

	return nil
}

// reportForExport selects the report a year-scoped export draws from.
func (cmd *ExportCmd) reportForExport(result *ledger.Result) (*ledger.TaxReport, error) {
	if cmd.Year == 0 {
		return result.AllTime(), nil
	}
	report := result.ReportForYear(cmd.Year)
	if report == nil {
		return nil, fmt.Errorf("no activity in %d", cmd.Year)
	}
	return report, nil
}

func defaultDestination(portfolioPath, format string) string {
	base := portfolioPath[:len(portfolioPath)-len(filepath.Ext(portfolioPath))]
	switch format {
	case "transactions":
		return base + "-transactions.json"
	default:
		return fmt.Sprintf("%s-%s.csv", base, format)
	}
}

// rawTransactions unwraps processed transactions for the interchange
// writers, which work on the plain records.
func rawTransactions(result *ledger.Result) []*tx.Transaction {
	transactions := make([]*tx.Transaction, len(result.Transactions))
	for i, processed := range result.Transactions {
		transactions[i] = processed.Transaction
	}
	return transactions
}

func generator() string {
	if Version == "" {
		return "cointax dev"
	}
	return "cointax " + Version
}
