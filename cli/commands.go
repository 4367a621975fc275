package cli

var (
	Version   = ""
	CommitSHA = ""
)

// Globals defines global flags available to all commands.
type Globals struct {
	Telemetry bool `help:"Show timing telemetry for operations."`
}

type Commands struct {
	Globals

	Check    CheckCmd    `cmd:"" help:"Validate a portfolio file and its transactions."`
	Report   ReportCmd   `cmd:"" help:"Compute capital gains and print yearly tax reports."`
	Balances BalancesCmd `cmd:"" help:"Show currency balances held at a point in time."`
	Export   ExportCmd   `cmd:"" help:"Export reports and transactions to CSV or JSON files."`
	Watch    WatchCmd    `cmd:"" help:"Watch a portfolio file and reprint the report on changes."`
}
