package ledger

import (
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{name: "defaults are valid", mutate: func(c *Config) {}},
		{name: "empty base currency", mutate: func(c *Config) { c.BaseCurrency = "" }, wantField: "BaseCurrency"},
		{name: "zero holding period", mutate: func(c *Config) { c.HoldingPeriodMonths = 0 }, wantField: "HoldingPeriodMonths"},
		{name: "negative merge window", mutate: func(c *Config) { c.MergeWindow = -time.Minute }, wantField: "MergeWindow"},
		{name: "unknown fee policy", mutate: func(c *Config) { c.FeePolicy = "split" }, wantField: "FeePolicy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := NewConfig()
			tt.mutate(config)

			err := config.Validate()
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			configErr, ok := err.(*ConfigError)
			assert.True(t, ok, "should be ConfigError")
			assert.Equal(t, tt.wantField, configErr.Field)
		})
	}
}

func TestConfig_LongTerm(t *testing.T) {
	config := NewConfig()

	tests := []struct {
		name     string
		acquired time.Time
		disposed time.Time
		want     bool
	}{
		{
			name:     "one day short",
			acquired: time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC),
			disposed: time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
			want:     false,
		},
		{
			name:     "anniversary day is long term",
			acquired: time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC),
			disposed: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			want:     true,
		},
		{
			name:     "well past the anniversary",
			acquired: time.Date(2020, 1, 15, 0, 0, 0, 0, time.UTC),
			disposed: time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
			want:     true,
		},
		{
			// AddDate normalizes Feb 29 + 12 months to Mar 1.
			name:     "acquired on leap day",
			acquired: time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
			disposed: time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC),
			want:     false,
		},
		{
			name:     "acquired on leap day, disposed past normalized anniversary",
			acquired: time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
			disposed: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
			want:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, config.LongTerm(tt.acquired, tt.disposed))
		})
	}
}

func TestConfig_LongTerm_CustomPeriod(t *testing.T) {
	config := NewConfig()
	config.HoldingPeriodMonths = 6

	acquired := time.Date(2023, 1, 10, 0, 0, 0, 0, time.UTC)
	assert.False(t, config.LongTerm(acquired, time.Date(2023, 7, 9, 0, 0, 0, 0, time.UTC)))
	assert.True(t, config.LongTerm(acquired, time.Date(2023, 7, 10, 0, 0, 0, 0, time.UTC)))
}

func TestConfig_Ignored(t *testing.T) {
	config := NewConfig()
	config.IgnoredCurrencies = []string{"SCAMCOIN", "DUST"}

	assert.True(t, config.Ignored("DUST"))
	assert.False(t, config.Ignored("BTC"))
}
