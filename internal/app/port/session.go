package port

import (
	"context"

	"github.com/shopspring/decimal"

	"token_sweeper/internal/domain/entity"
)

// HoldingsProvider produces the canonical holdings snapshot for a wallet.
// Non-fatal failures (price misses, screening gaps) are reported alongside
// the snapshot; a balances fetch failure yields an empty snapshot plus a
// fetch error.
type HoldingsProvider interface {
	FetchSnapshot(ctx context.Context, walletAddress string) (*entity.HoldingsSnapshot, []entity.PipelineError)
}

// ConversionRunner executes one conversion batch over an ordered list of
// holdings, strictly sequentially, and reports every attempted job.
type ConversionRunner interface {
	RunBatch(ctx context.Context, walletAddress string, holdings []entity.Holding) *entity.ConversionBatchReport
}

// SelectionSummary is the read-only aggregate over the selected subset.
type SelectionSummary struct {
	Count         int             `json:"count"`
	TotalValueUSD decimal.Decimal `json:"totalValueUsd"`
}

// SweepSession is the presentation-facing contract of one wallet session.
// Refresh, ToggleSelection and RunConversion are the only mutating entry
// points; everything else is a read-only view.
type SweepSession interface {
	Refresh(ctx context.Context) ([]entity.PipelineError, error)
	ToggleSelection(assetID string) bool
	RunConversion(ctx context.Context) (*entity.ConversionBatchReport, error)

	WalletAddress() string
	Snapshot() *entity.HoldingsSnapshot
	Selection() map[string]bool
	SelectionSummary() SelectionSummary
	LastReport() *entity.ConversionBatchReport
	LastErrors() []entity.PipelineError
}
