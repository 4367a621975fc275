package tx

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestAmount_TryAdd(t *testing.T) {
	tests := []struct {
		name   string
		a, b   *Amount
		want   string
		wantOK bool
	}{
		{name: "same currency", a: amt("1.5", "BTC"), b: amt("0.5", "BTC"), want: "2", wantOK: true},
		{name: "nil other", a: amt("1.5", "BTC"), b: nil, want: "1.5", wantOK: true},
		{name: "different currencies", a: amt("1", "BTC"), b: amt("1", "ETH"), wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sum, ok := tt.a.TryAdd(tt.b)
			assert.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				return
			}
			assert.Equal(t, tt.want, sum.Quantity.String())
			assert.Equal(t, tt.a.Currency, sum.Currency)
		})
	}
}

func TestAmount_IsFiat(t *testing.T) {
	assert.True(t, amt("100", "EUR").IsFiat())
	assert.True(t, amt("100", "USD").IsFiat())
	assert.False(t, amt("1", "BTC").IsFiat())
	assert.False(t, amt("1", "USDC").IsFiat())
}

func TestAmount_Equal(t *testing.T) {
	assert.True(t, amt("1.50", "BTC").Equal(amt("1.5", "BTC")))
	assert.False(t, amt("1.5", "BTC").Equal(amt("1.5", "ETH")))
	assert.False(t, amt("1.5", "BTC").Equal(nil))

	var a, b *Amount
	assert.True(t, a.Equal(b))
}

func TestAmount_Clone(t *testing.T) {
	a := amt("1.5", "BTC")
	clone := a.Clone()
	assert.True(t, a.Equal(clone))

	clone.Currency = "ETH"
	assert.Equal(t, "BTC", a.Currency)

	var missing *Amount
	assert.Zero(t, missing.Clone())
}
