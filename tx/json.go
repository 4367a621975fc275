package tx

import (
	"encoding/json"
	"fmt"
	"io"
)

// interchangeVersion is bumped when the JSON document layout changes in a way
// older readers cannot handle.
const interchangeVersion = 1

// document is the on-disk layout of the JSON interchange format.
type document struct {
	Version      int            `json:"version"`
	Transactions []*Transaction `json:"transactions"`
}

// Encode writes transactions to the JSON interchange format. Exporting and
// re-importing a set must reproduce an equivalent ledger; all quantities are
// serialized as decimal strings and timestamps keep their full precision.
func Encode(w io.Writer, transactions []*Transaction) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(&document{
		Version:      interchangeVersion,
		Transactions: transactions,
	})
}

// Decode reads transactions from the JSON interchange format. Every record
// is structurally validated; a malformed record fails the whole import.
func Decode(r io.Reader) ([]*Transaction, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("invalid transaction document: %w", err)
	}

	if doc.Version > interchangeVersion {
		return nil, fmt.Errorf("unsupported document version %d", doc.Version)
	}

	for _, t := range doc.Transactions {
		if err := t.Validate(); err != nil {
			return nil, err
		}
	}

	return doc.Transactions, nil
}
