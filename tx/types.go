package tx

// Type classifies a transaction. The set mirrors the categories used by
// common crypto tax tools so imported data maps onto it without loss.
type Type string

const (
	// Buy is a purchase of crypto against fiat. Creates a lot at the fiat
	// cost paid.
	Buy Type = "buy"

	// Sell is a disposal of crypto against fiat. Realizes a capital gain.
	Sell Type = "sell"

	// Trade is a crypto-to-crypto exchange. The sent leg is a disposal, the
	// received leg an acquisition, both valued at the trade's fiat value.
	Trade Type = "trade"

	// Swap is a cost-basis-preserving exchange (token rename, wrap). No gain
	// is realized; the received lots inherit the consumed lots' basis and
	// acquisition dates.
	Swap Type = "swap"

	// Deposit is fiat entering an exchange. Not tracked by the ledger.
	Deposit Type = "deposit"

	// Withdrawal is fiat leaving an exchange. Not tracked by the ledger.
	Withdrawal Type = "withdrawal"

	// Fee is a standalone disposal to cover transaction costs.
	Fee Type = "fee"

	// Receive is crypto arriving from an unknown counterparty. Unmatched
	// receives are reclassified as buys before processing.
	Receive Type = "receive"

	// Send is crypto leaving to an unknown counterparty. Unmatched sends are
	// reclassified as sells before processing.
	Send Type = "send"

	// Transfer moves crypto between the user's own wallets. Lots keep their
	// cost basis and acquisition date; only the fee is a disposal.
	Transfer Type = "transfer"

	// ChainSplit is crypto received from a fork. Zero cost basis.
	ChainSplit Type = "chain-split"

	// Expense is a disposal categorized as spending.
	Expense Type = "expense"

	// Stolen is a capital loss with zero proceeds.
	Stolen Type = "stolen"

	// Lost is a capital loss with zero proceeds.
	Lost Type = "lost"

	// Burn is a capital loss with zero proceeds.
	Burn Type = "burn"

	// Income is crypto received as payment, acquired at market value.
	Income Type = "income"

	// Airdrop is crypto received for free. Zero cost basis.
	Airdrop Type = "airdrop"

	// Staking is a staking reward, acquired at market value.
	Staking Type = "staking"

	// Cashback is a spending reward, acquired at market value.
	Cashback Type = "cashback"

	// Gift is crypto received as a gift, acquired at market value.
	Gift Type = "gift"

	// OutgoingGift is crypto given away. A disposal at market value, like
	// a sell.
	OutgoingGift Type = "outgoing-gift"

	// Spam is an unsolicited token. Zero cost basis, never income.
	Spam Type = "spam"
)

// shape describes which legs a transaction type must and must not carry.
type shape struct {
	sent     bool
	received bool
}

var shapes = map[Type]shape{
	Buy:          {received: true},
	Sell:         {sent: true},
	Trade:        {sent: true, received: true},
	Swap:         {sent: true, received: true},
	Deposit:      {received: true},
	Withdrawal:   {sent: true},
	Fee:          {sent: true},
	Receive:      {received: true},
	Send:         {sent: true},
	Transfer:     {sent: true, received: true},
	ChainSplit:   {received: true},
	Expense:      {sent: true},
	Stolen:       {sent: true},
	Lost:         {sent: true},
	Burn:         {sent: true},
	Income:       {received: true},
	Airdrop:      {received: true},
	Staking:      {received: true},
	Cashback:     {received: true},
	Gift:         {received: true},
	OutgoingGift: {sent: true},
	Spam:         {received: true},
}

// Valid reports whether t is a known transaction type.
func (t Type) Valid() bool {
	_, ok := shapes[t]
	return ok
}

// IsAcquisition reports whether the type creates lots for its received leg.
func (t Type) IsAcquisition() bool {
	switch t {
	case Buy, Trade, Swap, Receive, Transfer, ChainSplit, Income, Airdrop, Staking, Cashback, Gift, Spam:
		return true
	}
	return false
}

// IsDisposal reports whether the type consumes lots for its sent leg.
func (t Type) IsDisposal() bool {
	switch t {
	case Sell, Trade, Swap, Fee, Send, Expense, Stolen, Lost, Burn, OutgoingGift:
		return true
	}
	return false
}

// IsZeroProceeds reports whether disposals of this type realize a loss with
// zero sale price.
func (t Type) IsZeroProceeds() bool {
	switch t {
	case Stolen, Lost, Burn:
		return true
	}
	return false
}

// IsZeroCost reports whether acquisitions of this type enter the ledger with
// a zero cost basis.
func (t Type) IsZeroCost() bool {
	switch t {
	case ChainSplit, Airdrop, Spam:
		return true
	}
	return false
}

// IsIncome reports whether acquisitions of this type are taxed as income at
// their market value on receipt.
func (t Type) IsIncome() bool {
	switch t {
	case Income, Staking, Cashback:
		return true
	}
	return false
}
