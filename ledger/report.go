package ledger

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/cointax/tx"
)

// AllTimeYear marks the synthetic report spanning every year with activity.
const AllTimeYear = 0

// CurrencySummary aggregates one currency's activity within a report year.
// Balances are the ledger's outstanding quantities at the year boundaries.
// Recomputed per report generation, never mutated in place afterwards.
type CurrencySummary struct {
	Currency string

	BalanceStart decimal.Decimal
	BalanceEnd   decimal.Decimal
	CostStart    decimal.Decimal
	CostEnd      decimal.Decimal

	QuantityDisposed decimal.Decimal
	QuantityIncome   decimal.Decimal

	Cost     decimal.Decimal
	Fees     decimal.Decimal
	Proceeds decimal.Decimal
	Income   decimal.Decimal

	CapitalProfitLoss decimal.Decimal
	TotalProfitLoss   decimal.Decimal

	// HasUnknownValues is set when figures for this currency exclude events
	// whose cost or proceeds could not be computed.
	HasUnknownValues bool
}

// less orders summaries by descending closing balance value, then currency,
// so the most relevant holdings render first.
func (s *CurrencySummary) less(other *CurrencySummary) bool {
	if !s.CostEnd.Equal(other.CostEnd) {
		return s.CostEnd.GreaterThan(other.CostEnd)
	}
	return s.Currency < other.Currency
}

// TaxReport is the per-year output of a processing pass. Gains and losses
// are kept gross and separated by holding period; netting only happens in
// the accessor methods.
type TaxReport struct {
	// Year is the calendar year, or AllTimeYear for the synthetic total.
	Year int

	ShortTermCost     decimal.Decimal
	ShortTermProceeds decimal.Decimal

	ShortTermCapitalGains  decimal.Decimal
	ShortTermCapitalLosses decimal.Decimal
	LongTermCapitalGains   decimal.Decimal
	LongTermCapitalLosses  decimal.Decimal

	Currencies []*CurrencySummary
	Gains      []CapitalGain

	// HasUnknownValues is set when any figure excludes events with unknown
	// cost or proceeds. The excluded events are still listed in Gains with
	// their error markers.
	HasUnknownValues bool
}

// ShortTermNetCapitalGains returns short-term gains netted against losses.
func (r *TaxReport) ShortTermNetCapitalGains() decimal.Decimal {
	return r.ShortTermCapitalGains.Sub(r.ShortTermCapitalLosses)
}

// LongTermNetCapitalGains returns long-term gains netted against losses.
func (r *TaxReport) LongTermNetCapitalGains() decimal.Decimal {
	return r.LongTermCapitalGains.Sub(r.LongTermCapitalLosses)
}

// TotalCapitalGains returns gross gains across both holding periods.
func (r *TaxReport) TotalCapitalGains() decimal.Decimal {
	return r.ShortTermCapitalGains.Add(r.LongTermCapitalGains)
}

// TotalCapitalLosses returns gross losses across both holding periods.
func (r *TaxReport) TotalCapitalLosses() decimal.Decimal {
	return r.ShortTermCapitalLosses.Add(r.LongTermCapitalLosses)
}

// TotalNetCapitalGains returns the fully netted result.
func (r *TaxReport) TotalNetCapitalGains() decimal.Decimal {
	return r.TotalCapitalGains().Sub(r.TotalCapitalLosses())
}

// reportBuilder accumulates one year's report while the transaction stream
// is walked. Currency summaries roll over between years: the closing
// balances become the next year's opening balances.
type reportBuilder struct {
	config     *Config
	currencies []*CurrencySummary
}

func newReportBuilder(config *Config) *reportBuilder {
	return &reportBuilder{config: config}
}

func (b *reportBuilder) summaryFor(currency string) *CurrencySummary {
	for _, s := range b.currencies {
		if s.Currency == currency {
			return s
		}
	}
	s := &CurrencySummary{Currency: currency}
	b.currencies = append(b.currencies, s)
	return s
}

// startYear rolls the summaries over to a new year. Currencies without an
// opening balance are dropped; they'll reappear if they see activity.
func (b *reportBuilder) startYear() {
	kept := b.currencies[:0]
	for _, s := range b.currencies {
		if !s.BalanceEnd.IsPositive() {
			continue
		}
		next := &CurrencySummary{
			Currency:     s.Currency,
			BalanceStart: s.BalanceEnd,
			BalanceEnd:   s.BalanceEnd,
			CostStart:    s.CostEnd,
			CostEnd:      s.CostEnd,
		}
		kept = append(kept, next)
	}
	b.currencies = kept
}

// finishYear builds the report for one year from its gain events, the
// transactions processed, and the inventory state at the year boundary.
func (b *reportBuilder) finishYear(year int, transactions []*tx.Transaction, gains []CapitalGain, inv *Inventory) *TaxReport {
	report := &TaxReport{Year: year, Gains: gains}

	for i := range gains {
		gain := &gains[i]
		summary := b.summaryFor(gain.Currency)
		summary.QuantityDisposed = summary.QuantityDisposed.Add(gain.Quantity)

		if !gain.Known() {
			summary.HasUnknownValues = true
			report.HasUnknownValues = true
			continue
		}

		gainOrLoss := gain.GainOrLoss()
		switch {
		case gain.LongTerm && gainOrLoss.IsNegative():
			report.LongTermCapitalLosses = report.LongTermCapitalLosses.Sub(gainOrLoss)
		case gain.LongTerm:
			report.LongTermCapitalGains = report.LongTermCapitalGains.Add(gainOrLoss)
		case gainOrLoss.IsNegative():
			report.ShortTermCapitalLosses = report.ShortTermCapitalLosses.Sub(gainOrLoss)
		default:
			report.ShortTermCapitalGains = report.ShortTermCapitalGains.Add(gainOrLoss)
		}

		if !gain.LongTerm {
			report.ShortTermCost = report.ShortTermCost.Add(gain.Cost)
			report.ShortTermProceeds = report.ShortTermProceeds.Add(gain.Proceeds)
		}

		summary.Cost = summary.Cost.Add(gain.Cost)
		summary.Proceeds = summary.Proceeds.Add(gain.Proceeds)
	}

	b.collectFeesAndIncome(report, transactions)

	// Every held currency gets a summary, even without activity this year.
	for _, currency := range inv.Currencies() {
		b.summaryFor(currency)
	}

	for _, summary := range b.currencies {
		summary.BalanceEnd = inv.Balance(summary.Currency)
		summary.CostEnd = inv.CostBase(summary.Currency)
		summary.CapitalProfitLoss = summary.Proceeds.Sub(summary.Cost).Sub(summary.Fees)
		summary.TotalProfitLoss = summary.CapitalProfitLoss.Add(summary.Income)

		if b.config.FeePolicy == FeePolicyShortTermCost {
			report.ShortTermCapitalLosses = report.ShortTermCapitalLosses.Add(summary.Fees)
			report.ShortTermCost = report.ShortTermCost.Add(summary.Fees)
		}
	}

	report.Currencies = cloneSummaries(b.currencies)
	sortSummaries(report.Currencies)

	return report
}

// collectFeesAndIncome books trade fees that were not part of a disposed
// amount, and values income-class receipts at market value.
func (b *reportBuilder) collectFeesAndIncome(report *TaxReport, transactions []*tx.Transaction) {
	for _, t := range transactions {
		if t.Type == tx.Trade && t.Fee != nil && !t.FeeInSentCurrency() {
			summary := b.summaryFor(t.Fee.Currency)
			if fee, err := fiatValue(t.FeeValue); err == nil {
				summary.Fees = summary.Fees.Add(fee)
			} else if t.Fee.IsFiat() {
				summary.Fees = summary.Fees.Add(t.Fee.Quantity)
			} else {
				summary.HasUnknownValues = true
				report.HasUnknownValues = true
			}
		}

		if t.Type.IsIncome() && !t.Received.IsFiat() {
			summary := b.summaryFor(t.Received.Currency)
			summary.QuantityIncome = summary.QuantityIncome.Add(t.Received.Quantity)
			if income, err := fiatValue(t.Value); err == nil {
				summary.Income = summary.Income.Add(income)
			} else {
				summary.HasUnknownValues = true
				report.HasUnknownValues = true
			}
		}
	}
}

// allTimeReport folds the yearly reports into the synthetic total.
func allTimeReport(reports []*TaxReport) *TaxReport {
	allTime := &TaxReport{Year: AllTimeYear}
	var currencies []*CurrencySummary

	summaryFor := func(currency string) *CurrencySummary {
		for _, s := range currencies {
			if s.Currency == currency {
				return s
			}
		}
		s := &CurrencySummary{Currency: currency}
		currencies = append(currencies, s)
		return s
	}

	for _, report := range reports {
		allTime.ShortTermCost = allTime.ShortTermCost.Add(report.ShortTermCost)
		allTime.ShortTermProceeds = allTime.ShortTermProceeds.Add(report.ShortTermProceeds)
		allTime.ShortTermCapitalGains = allTime.ShortTermCapitalGains.Add(report.ShortTermCapitalGains)
		allTime.ShortTermCapitalLosses = allTime.ShortTermCapitalLosses.Add(report.ShortTermCapitalLosses)
		allTime.LongTermCapitalGains = allTime.LongTermCapitalGains.Add(report.LongTermCapitalGains)
		allTime.LongTermCapitalLosses = allTime.LongTermCapitalLosses.Add(report.LongTermCapitalLosses)
		allTime.HasUnknownValues = allTime.HasUnknownValues || report.HasUnknownValues

		for _, s := range report.Currencies {
			total := summaryFor(s.Currency)
			total.BalanceEnd = s.BalanceEnd
			total.CostEnd = s.CostEnd
			total.QuantityDisposed = total.QuantityDisposed.Add(s.QuantityDisposed)
			total.QuantityIncome = total.QuantityIncome.Add(s.QuantityIncome)
			total.Cost = total.Cost.Add(s.Cost)
			total.Fees = total.Fees.Add(s.Fees)
			total.Proceeds = total.Proceeds.Add(s.Proceeds)
			total.Income = total.Income.Add(s.Income)
			total.CapitalProfitLoss = total.CapitalProfitLoss.Add(s.CapitalProfitLoss)
			total.TotalProfitLoss = total.TotalProfitLoss.Add(s.TotalProfitLoss)
			total.HasUnknownValues = total.HasUnknownValues || s.HasUnknownValues
		}

		allTime.Gains = append(allTime.Gains, report.Gains...)
	}

	sortSummaries(currencies)
	allTime.Currencies = currencies

	return allTime
}

func cloneSummaries(summaries []*CurrencySummary) []*CurrencySummary {
	clones := make([]*CurrencySummary, len(summaries))
	for i, s := range summaries {
		clone := *s
		clones[i] = &clone
	}
	return clones
}

func sortSummaries(summaries []*CurrencySummary) {
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].less(summaries[j])
	})
}
