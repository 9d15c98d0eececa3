package entity

import (
	"encoding/base64"
	"fmt"
)

// Transaction is an opaque signable transaction payload. The core never
// inspects transaction internals; it only moves payloads between the
// execution service and the signing capability.
type Transaction struct {
	payload []byte
}

// DeserializeTransaction decodes a base64 transaction payload from the
// execution service.
func DeserializeTransaction(encoded string) (*Transaction, error) {
	payload, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode transaction payload: %w", err)
	}
	if len(payload) == 0 {
		return nil, fmt.Errorf("empty transaction payload")
	}
	return &Transaction{payload: payload}, nil
}

// Serialize encodes the payload as base64 for submission.
func (t *Transaction) Serialize() string {
	return base64.StdEncoding.EncodeToString(t.payload)
}

// Bytes returns the raw payload.
func (t *Transaction) Bytes() []byte {
	return t.payload
}
