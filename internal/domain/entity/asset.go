package entity

import "github.com/shopspring/decimal"

// TokenMetadata holds descriptive information about an asset as returned by
// the token metadata endpoint. All fields are optional on the wire.
type TokenMetadata struct {
	Symbol  string `json:"symbol"`
	Name    string `json:"name"`
	LogoURI string `json:"logoURI,omitempty"`
}

// RiskWarning is a single screening flag attached to an asset identifier.
// Only the non-sellable tag excludes an asset; every other tag is informational.
type RiskWarning struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
}

// RawBalance is one balance entry as reported by the balances endpoint.
// Amount is the quantity in smallest units, kept as a string to avoid
// floating-point loss; UIAmount is the human-readable decimal quantity.
type RawBalance struct {
	Amount   string          `json:"amount"`
	UIAmount decimal.Decimal `json:"uiAmount"`
}

// NormalizeAssetID maps the chain's native currency identifier to its wrapped
// token representation. Applied exactly once, when raw balances enter the
// pipeline; every downstream component operates on wrapped identifiers and
// nothing translates back.
func NormalizeAssetID(assetID, nativeID, wrappedNativeID string) string {
	if assetID == nativeID {
		return wrappedNativeID
	}
	return assetID
}
