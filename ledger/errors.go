package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Gain errors describe why a computed value is unknown. They are carried in
// the output data model as first-class result states, never thrown across
// the processing pass; a transaction with an unknown value doesn't stop the
// ledger from processing the ones after it.
var (
	// ErrMissingFiatValue marks a transaction that needs a fiat valuation
	// (proceeds, cost or income value) which was not supplied and could not
	// be estimated from price history.
	ErrMissingFiatValue = errors.New("missing fiat value")

	// ErrInvalidFiatValue marks a valuation denominated in a non-fiat
	// currency.
	ErrInvalidFiatValue = errors.New("fiat value is not denominated in fiat")

	// ErrMissingCostBasis marks a gain computed from lots whose own
	// acquisition value was unknown.
	ErrMissingCostBasis = errors.New("missing cost basis")
)

// InsufficientBalanceError is the deficit state: a disposal consumed more
// than the tracked lot inventory held. The unmatched remainder is reported
// so the user can investigate (usually a missing earlier import).
type InsufficientBalanceError struct {
	Currency string
	Missing  decimal.Decimal
	At       time.Time
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("%s: insufficient balance, %s %s not found in holdings",
		e.At.Format("2006-01-02 15:04:05"), e.Missing.String(), e.Currency)
}

// TransactionOrderError is returned when a disposal predates a lot at the
// head of the queue. It indicates the input sequence was not sorted.
type TransactionOrderError struct {
	Currency string
	At       time.Time
	LotAt    time.Time
}

func (e *TransactionOrderError) Error() string {
	return fmt.Sprintf("disposal of %s at %s predates lot acquired at %s",
		e.Currency, e.At.Format("2006-01-02 15:04:05"), e.LotAt.Format("2006-01-02 15:04:05"))
}

// ConfigError is fatal at the start of a processing pass.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid config: %s: %s", e.Field, e.Reason)
}

// ProcessErrors wraps the structural errors collected while preparing a
// transaction sequence for processing.
type ProcessErrors struct {
	Errors []error
}

func (e *ProcessErrors) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors occurred while processing transactions", len(e.Errors))
}

// Unwrap returns the underlying errors for error unwrapping.
func (e *ProcessErrors) Unwrap() []error {
	return e.Errors
}
