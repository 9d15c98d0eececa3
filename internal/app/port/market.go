package port

import (
	"context"

	"github.com/shopspring/decimal"

	"token_sweeper/internal/domain/entity"
)

// MarketDataClient fetches prices and descriptive metadata for batches of
// asset identifiers. Both calls tolerate partial misses: an identifier with
// no known price is simply absent from the price map, and a metadata lookup
// failure yields a nil entry for that identifier only.
type MarketDataClient interface {
	// GetPrices returns the USD price for every identifier the pricing
	// service knows. Unknown identifiers are absent, never an error.
	GetPrices(ctx context.Context, assetIDs []string) (map[string]decimal.Decimal, error)

	// GetMetadata returns metadata per identifier; entries are nil when the
	// lookup failed for that identifier.
	GetMetadata(ctx context.Context, assetIDs []string) (map[string]*entity.TokenMetadata, error)
}

// RiskScreener fetches warning tags for a batch of asset identifiers. The
// backing service bounds how many identifiers one call may carry, so
// implementations chunk transparently and merge results.
//
// The returned map contains an entry (possibly an empty slice) for every
// identifier that was successfully screened. When one or more chunk calls
// fail, the affected identifiers are absent from the map and a non-nil error
// describes the failure; callers must treat absent identifiers
// conservatively rather than assuming them safe.
type RiskScreener interface {
	GetWarnings(ctx context.Context, assetIDs []string) (map[string][]entity.RiskWarning, error)
}

// BalanceClient fetches a wallet's raw token balances.
type BalanceClient interface {
	GetBalances(ctx context.Context, walletAddress string) (map[string]entity.RawBalance, error)
}
