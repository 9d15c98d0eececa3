package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Holding represents one non-zero balance of a fungible asset in a wallet.
// A Holding is immutable once placed in a snapshot; refreshes replace the
// whole snapshot rather than patching individual holdings.
type Holding struct {
	AssetID       string           `json:"assetId"`
	RawAmount     string           `json:"rawAmount"`
	DisplayAmount decimal.Decimal  `json:"displayAmount"`
	PriceUSD      *decimal.Decimal `json:"priceUsd,omitempty"`
	Metadata      *TokenMetadata   `json:"metadata,omitempty"`
	ValueUSD      *decimal.Decimal `json:"valueUsd,omitempty"`
}

// valueOrZero returns the computed USD value, treating unknown as zero.
// Used for ordering only; the dust filter has already excluded unknown-price
// holdings from published snapshots.
func (h Holding) valueOrZero() decimal.Decimal {
	if h.ValueUSD == nil {
		return decimal.Zero
	}
	return *h.ValueUSD
}

// HoldingsSnapshot is the set of holdings for one wallet at one point in
// time. No two holdings in a snapshot share an AssetID, and every holding
// has a positive DisplayAmount.
type HoldingsSnapshot struct {
	WalletAddress string    `json:"walletAddress"`
	Holdings      []Holding `json:"holdings"`
	FetchedAt     time.Time `json:"fetchedAt"`
}
