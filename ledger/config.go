package ledger

import (
	"time"
)

// FeePolicy decides how trade fees paid in a currency other than the
// disposed one are treated. The correct rule is jurisdiction-dependent, so
// it's configuration rather than a hardcoded choice.
type FeePolicy string

const (
	// FeePolicyShortTermCost books such fees as short-term cost (and loss)
	// in the year they were paid. This approximates the fee reducing the
	// trade's proceeds.
	FeePolicyShortTermCost FeePolicy = "short-term-cost"

	// FeePolicyIgnore leaves such fees out of the capital gains figures
	// entirely. They still show up in the per-currency fee totals.
	FeePolicyIgnore FeePolicy = "ignore"
)

// Config holds the engine settings for a processing pass.
type Config struct {
	// BaseCurrency is the fiat currency all values are denominated in.
	BaseCurrency string

	// HoldingPeriodMonths is the threshold for long-term classification.
	// A disposal on or after the calendar anniversary (acquired date plus
	// this many months) is long-term. Calendar arithmetic keeps the
	// anniversary stable across leap years.
	HoldingPeriodMonths int

	// MergeWindow is the maximum time between two trade legs for them to be
	// consolidated into one logical trade. Zero disables consolidation.
	MergeWindow time.Duration

	// FeePolicy controls non-same-currency trade fee attribution.
	FeePolicy FeePolicy

	// IgnoredCurrencies are excluded from the ledger entirely. Fee legs in
	// non-ignored currencies survive as standalone fee disposals.
	IgnoredCurrencies []string
}

// NewConfig returns a Config with the default settings: EUR base, one year
// holding period, five minute merge window.
func NewConfig() *Config {
	return &Config{
		BaseCurrency:        "EUR",
		HoldingPeriodMonths: 12,
		MergeWindow:         5 * time.Minute,
		FeePolicy:           FeePolicyShortTermCost,
	}
}

// Validate checks the configuration. Errors here are fatal; a pass never
// starts with an invalid config.
func (c *Config) Validate() error {
	if c.BaseCurrency == "" {
		return &ConfigError{Field: "BaseCurrency", Reason: "must not be empty"}
	}
	if c.HoldingPeriodMonths <= 0 {
		return &ConfigError{Field: "HoldingPeriodMonths", Reason: "must be positive"}
	}
	if c.MergeWindow < 0 {
		return &ConfigError{Field: "MergeWindow", Reason: "must not be negative"}
	}
	switch c.FeePolicy {
	case FeePolicyShortTermCost, FeePolicyIgnore:
	default:
		return &ConfigError{Field: "FeePolicy", Reason: "unknown policy"}
	}
	return nil
}

// LongTerm classifies a holding period. The boundary day itself is
// long-term: acquired 2023-03-01 and disposed 2024-03-01 qualifies.
func (c *Config) LongTerm(acquired, disposed time.Time) bool {
	anniversary := acquired.AddDate(0, c.HoldingPeriodMonths, 0)
	return !disposed.Before(anniversary)
}

// Ignored reports whether a currency is excluded from the ledger.
func (c *Config) Ignored(currency string) bool {
	for _, ignored := range c.IgnoredCurrencies {
		if ignored == currency {
			return true
		}
	}
	return false
}
