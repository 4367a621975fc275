package tx

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// fiatCurrencies holds the fiat codes recognized by the engine. The tax base
// itself is EUR; the others are recognized so fiat legs from foreign exchanges
// are never mistaken for crypto holdings.
var fiatCurrencies = map[string]bool{
	"EUR": true,
	"USD": true,
	"GBP": true,
	"CHF": true,
	"JPY": true,
}

// Amount is a quantity of a specific currency. Quantities use decimal
// arithmetic throughout; floats never enter the engine.
type Amount struct {
	Quantity decimal.Decimal `json:"quantity"`
	Currency string          `json:"currency"`
}

// NewAmount creates an Amount from a quantity and currency code.
func NewAmount(quantity decimal.Decimal, currency string) *Amount {
	return &Amount{Quantity: quantity, Currency: currency}
}

// IsFiat reports whether the amount is denominated in a recognized fiat
// currency rather than a crypto asset.
func (a *Amount) IsFiat() bool {
	return fiatCurrencies[a.Currency]
}

// TryAdd returns the sum of two amounts when they share a currency.
// Amounts in different currencies cannot be combined.
func (a *Amount) TryAdd(other *Amount) (*Amount, bool) {
	if other == nil {
		return a.Clone(), true
	}
	if a.Currency != other.Currency {
		return nil, false
	}
	return &Amount{Quantity: a.Quantity.Add(other.Quantity), Currency: a.Currency}, true
}

// Clone returns a copy of the amount.
func (a *Amount) Clone() *Amount {
	if a == nil {
		return nil
	}
	clone := *a
	return &clone
}

// Equal reports whether two amounts have the same currency and quantity.
func (a *Amount) Equal(other *Amount) bool {
	if a == nil || other == nil {
		return a == other
	}
	return a.Currency == other.Currency && a.Quantity.Equal(other.Quantity)
}

func (a *Amount) String() string {
	return fmt.Sprintf("%s %s", a.Quantity.String(), a.Currency)
}
