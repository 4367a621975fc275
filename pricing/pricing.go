// Package pricing supplies fair-market fiat valuations to the ledger. The
// engine itself performs no lookups; a value estimation pass runs over the
// transaction snapshot before processing and fills in the missing fiat
// values, so the processing pass stays pure.
package pricing

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/cointax/tx"
)

// ErrPriceUnavailable is returned when no quote close enough to the
// requested instant exists. Affected values stay unknown; they are never
// defaulted to zero.
var ErrPriceUnavailable = errors.New("price unavailable")

// Source values an amount of a currency in fiat at a point in time.
type Source interface {
	FiatValue(currency string, quantity decimal.Decimal, at time.Time) (decimal.Decimal, error)
}

// PricePoint is a single quote: the fiat price of one unit at an instant.
type PricePoint struct {
	Timestamp time.Time       `json:"timestamp"`
	Price     decimal.Decimal `json:"price"`
}

// History is an in-memory price table, one quote series per currency.
// Quotes come from the surrounding application (CSV caches, API fetches);
// the engine only reads them.
type History struct {
	// MaxGap is the furthest a quote may be from the requested instant to
	// still be used. Zero means any distance is acceptable.
	MaxGap time.Duration

	points map[string][]PricePoint
}

// NewHistory creates an empty history with a one-day maximum quote gap.
func NewHistory() *History {
	return &History{
		MaxGap: 24 * time.Hour,
		points: make(map[string][]PricePoint),
	}
}

// LoadHistory reads a price history file: a JSON object mapping currency
// codes to quote series.
func LoadHistory(path string) (*History, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read price history: %w", err)
	}

	var series map[string][]PricePoint
	if err := json.Unmarshal(raw, &series); err != nil {
		return nil, fmt.Errorf("invalid price history file %s: %w", path, err)
	}

	history := NewHistory()
	for currency, points := range series {
		for _, point := range points {
			history.Add(currency, point.Timestamp, point.Price)
		}
	}
	return history, nil
}

// Add inserts a quote for a currency, keeping the series sorted.
func (h *History) Add(currency string, at time.Time, price decimal.Decimal) {
	series := h.points[currency]
	point := PricePoint{Timestamp: at, Price: price}

	i := sort.Search(len(series), func(i int) bool {
		return !series[i].Timestamp.Before(at)
	})
	series = append(series, PricePoint{})
	copy(series[i+1:], series[i:])
	series[i] = point
	h.points[currency] = series
}

// FiatValue returns the fiat value of a quantity using the quote nearest to
// the requested instant.
func (h *History) FiatValue(currency string, quantity decimal.Decimal, at time.Time) (decimal.Decimal, error) {
	series := h.points[currency]
	if len(series) == 0 {
		return decimal.Zero, ErrPriceUnavailable
	}

	i := sort.Search(len(series), func(i int) bool {
		return !series[i].Timestamp.Before(at)
	})

	nearest := -1
	if i < len(series) {
		nearest = i
	}
	if i > 0 {
		if nearest == -1 || at.Sub(series[i-1].Timestamp) < series[i].Timestamp.Sub(at) {
			nearest = i - 1
		}
	}

	point := series[nearest]
	gap := at.Sub(point.Timestamp)
	if gap < 0 {
		gap = -gap
	}
	if h.MaxGap > 0 && gap > h.MaxGap {
		return decimal.Zero, ErrPriceUnavailable
	}

	return point.Price.Mul(quantity), nil
}

// EstimateValues fills in missing fiat values on a transaction snapshot
// from the price source: transaction values for income-classified receipts
// and crypto-to-crypto trades, and fee values for crypto fees. Values the
// importer already supplied are left alone. Lookups that fail leave the
// value missing; the ledger marks the affected results unknown.
//
// The base currency denominates the filled-in values.
func EstimateValues(transactions []*tx.Transaction, source Source, baseCurrency string) {
	for _, t := range transactions {
		if t.Value == nil {
			if amount := valuationLeg(t); amount != nil {
				if amount.IsFiat() {
					// A fiat leg is its own valuation.
					t.Value = amount.Clone()
				} else if value, err := source.FiatValue(amount.Currency, amount.Quantity, t.Timestamp); err == nil {
					t.Value = tx.NewAmount(value, baseCurrency)
				}
			}
		}

		if t.FeeValue == nil && t.Fee != nil && !t.Fee.IsFiat() {
			if value, err := source.FiatValue(t.Fee.Currency, t.Fee.Quantity, t.Timestamp); err == nil {
				t.FeeValue = tx.NewAmount(value, baseCurrency)
			}
		}
	}
}

// valuationLeg picks the leg whose market value prices the transaction.
// For trades the sent leg is used; both legs were worth the same at
// execution. Swaps carry their basis over and need no valuation.
func valuationLeg(t *tx.Transaction) *tx.Amount {
	switch {
	case t.Type == tx.Swap:
		return nil
	case t.Sent != nil && t.Received != nil:
		if t.Received.IsFiat() {
			return t.Received
		}
		return t.Sent
	case t.Received != nil:
		return t.Received
	case t.Sent != nil:
		return t.Sent
	default:
		return nil
	}
}
