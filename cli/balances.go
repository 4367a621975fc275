package cli

import (
	"fmt"
	"time"

	"github.com/alecthomas/kong"
	"golang.org/x/exp/slices"

	"github.com/robinvdvleuten/cointax/ledger"
	"github.com/robinvdvleuten/cointax/output"
)

type BalancesCmd struct {
	File   string `help:"Portfolio file to read balances from." arg:"" type:"existingfile"`
	Wallet string `help:"Limit to a single wallet." short:"w"`
	At     string `help:"Balances as of this date (YYYY-MM-DD), end of day." placeholder:"DATE"`
}

func (cmd *BalancesCmd) Run(ctx *kong.Context, globals *Globals) error {
	portfolio, err := loadPortfolio(ctx, cmd.File)
	if err != nil {
		return err
	}

	at := time.Now()
	if cmd.At != "" {
		day, err := time.Parse("2006-01-02", cmd.At)
		if err != nil {
			printError(ctx.Stderr, fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", cmd.At))
			return NewCommandError(1)
		}
		at = day.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}

	balances := ledger.BalancesAsOf(portfolio.Transactions(), at, cmd.Wallet)
	if len(balances) == 0 {
		printInfof(ctx.Stdout, "No balances held")
		return nil
	}

	styles := output.NewStyles(ctx.Stdout)

	currencies := make([]string, 0, len(balances))
	for currency := range balances {
		currencies = append(currencies, currency)
	}
	slices.Sort(currencies)

	t := &table{header: []string{"Currency", "Balance"}}
	for _, currency := range currencies {
		t.addRow(
			styled(text(currency), styles.Currency),
			styled(num(balances[currency].String()), styles.Amount),
		)
	}
	t.render(ctx.Stdout)

	return nil
}
