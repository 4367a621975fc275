package tx

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	txs := []*Transaction{
		{
			ID:        "t1",
			Timestamp: time.Date(2021, 3, 14, 15, 9, 26, 0, time.UTC),
			Wallet:    "kraken",
			Type:      Buy,
			Received:  amt("0.12345678", "BTC"),
			Value:     amt("5000.42", "EUR"),
			Fee:       amt("0.0001", "BTC"),
			FeeValue:  amt("4.05", "EUR"),
		},
		{
			ID:        "t2",
			Timestamp: time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC),
			Type:      Trade,
			Sent:      amt("0.1", "BTC"),
			Received:  amt("1.5", "ETH"),
			TxHash:    "0xabc",
		},
	}

	var buf bytes.Buffer
	assert.NoError(t, Encode(&buf, txs))

	decoded, err := Decode(&buf)
	assert.NoError(t, err)
	assert.Equal(t, len(txs), len(decoded))

	for i := range txs {
		assert.True(t, txs[i].Equal(decoded[i]), "transaction %d should survive the round trip", i)
		assert.True(t, txs[i].Value.Equal(decoded[i].Value))
		assert.Equal(t, txs[i].TxHash, decoded[i].TxHash)
	}
}

func TestDecode_UnsupportedVersion(t *testing.T) {
	_, err := Decode(strings.NewReader(`{"version": 99, "transactions": []}`))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported document version")
}

func TestDecode_RejectsInvalidRecords(t *testing.T) {
	doc := `{
		"version": 1,
		"transactions": [
			{"id": "t1", "timestamp": "2021-01-01T00:00:00Z", "type": "buy"}
		]
	}`

	_, err := Decode(strings.NewReader(doc))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "missing received amount")
}

func TestDecode_Garbage(t *testing.T) {
	_, err := Decode(strings.NewReader("not json"))
	assert.Error(t, err)
}
