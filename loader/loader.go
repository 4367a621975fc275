// Package loader owns the portfolio file lifecycle. A portfolio names the
// user's wallets and transaction sources and carries the engine settings;
// it is loaded into an explicitly owned value, passed around by reference,
// and saved back on request. There is no ambient "currently open portfolio"
// state.
package loader

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/robinvdvleuten/cointax/ledger"
	"github.com/robinvdvleuten/cointax/pricing"
	"github.com/robinvdvleuten/cointax/tx"
)

// Source is one stream of transactions inside a wallet: an exchange export,
// a synced blockchain address, a manual file. Importers fill Transactions;
// the loader only stores them.
type Source struct {
	Name         string            `json:"name"`
	Format       string            `json:"format,omitempty"`
	Path         string            `json:"path,omitempty"`
	Enabled      bool              `json:"enabled"`
	Transactions []*tx.Transaction `json:"transactions,omitempty"`
}

// Wallet groups sources under one name.
type Wallet struct {
	Name    string    `json:"name"`
	Enabled bool      `json:"enabled"`
	Sources []*Source `json:"sources,omitempty"`
}

// Settings are the engine settings persisted with the portfolio.
type Settings struct {
	BaseCurrency        string   `json:"base_currency,omitempty"`
	HoldingPeriodMonths int      `json:"holding_period_months,omitempty"`
	MergeWindowMinutes  int      `json:"merge_window_minutes,omitempty"`
	FeePolicy           string   `json:"fee_policy,omitempty"`
	IgnoredCurrencies   []string `json:"ignored_currencies,omitempty"`

	// PriceHistory names a price history file used to estimate missing
	// fiat values, resolved relative to the portfolio file.
	PriceHistory string `json:"price_history,omitempty"`
}

// Portfolio is the root of the portfolio file.
type Portfolio struct {
	Name     string    `json:"name,omitempty"`
	Settings Settings  `json:"settings"`
	Wallets  []*Wallet `json:"wallets,omitempty"`

	// Path is where the portfolio was loaded from. Relative settings paths
	// resolve against its directory. Not persisted.
	Path string `json:"-"`
}

// Load reads a portfolio file.
func Load(path string) (*Portfolio, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read portfolio: %w", err)
	}

	var portfolio Portfolio
	if err := json.Unmarshal(raw, &portfolio); err != nil {
		return nil, fmt.Errorf("invalid portfolio file %s: %w", path, err)
	}

	portfolio.Path = path
	return &portfolio, nil
}

// Save writes the portfolio atomically: to a temporary file in the target
// directory first, then renamed over the destination.
func Save(path string, portfolio *Portfolio) error {
	raw, err := json.MarshalIndent(portfolio, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".portfolio-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), path)
}

// Config builds the engine configuration from the portfolio settings,
// applying defaults for anything unset.
func (p *Portfolio) Config() *ledger.Config {
	config := ledger.NewConfig()

	if p.Settings.BaseCurrency != "" {
		config.BaseCurrency = p.Settings.BaseCurrency
	}
	if p.Settings.HoldingPeriodMonths != 0 {
		config.HoldingPeriodMonths = p.Settings.HoldingPeriodMonths
	}
	if p.Settings.MergeWindowMinutes != 0 {
		config.MergeWindow = time.Duration(p.Settings.MergeWindowMinutes) * time.Minute
	}
	if p.Settings.FeePolicy != "" {
		config.FeePolicy = ledger.FeePolicy(p.Settings.FeePolicy)
	}
	config.IgnoredCurrencies = p.Settings.IgnoredCurrencies

	return config
}

// PriceHistory loads the price history file named by the settings. Returns
// nil when the portfolio doesn't configure one.
func (p *Portfolio) PriceHistory() (*pricing.History, error) {
	if p.Settings.PriceHistory == "" {
		return nil, nil
	}

	path := p.Settings.PriceHistory
	if !filepath.IsAbs(path) && p.Path != "" {
		path = filepath.Join(filepath.Dir(p.Path), path)
	}
	return pricing.LoadHistory(path)
}

// Transactions collects the transactions of all enabled sources in enabled
// wallets, tagged with their wallet and source names. Disabled sources
// don't reach the ledger at all.
func (p *Portfolio) Transactions() []*tx.Transaction {
	var transactions []*tx.Transaction

	for _, wallet := range p.Wallets {
		if !wallet.Enabled {
			continue
		}
		for _, source := range wallet.Sources {
			if !source.Enabled {
				continue
			}
			for _, t := range source.Transactions {
				tagged := *t
				tagged.Wallet = wallet.Name
				tagged.Source = source.Name
				transactions = append(transactions, &tagged)
			}
		}
	}

	tx.Sort(transactions)
	return transactions
}

// TransactionCount returns the number of transactions an enabled wallet
// contributes, for display.
func (w *Wallet) TransactionCount() int {
	count := 0
	for _, source := range w.Sources {
		if source.Enabled {
			count += len(source.Transactions)
		}
	}
	return count
}
