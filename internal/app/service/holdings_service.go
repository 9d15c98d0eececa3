package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"token_sweeper/internal/app/port"
	"token_sweeper/internal/domain/entity"
	"token_sweeper/internal/infrastructure/configloader"
	"token_sweeper/internal/pkg/metrics"
)

// HoldingsServiceImpl implements port.HoldingsProvider. It turns a wallet
// address into the canonical holdings snapshot: raw balances are filtered
// for positive quantities, identifiers normalized to the wrapped space,
// screened for tradeability, enriched with prices and metadata, and dust
// filtered.
type HoldingsServiceImpl struct {
	balanceClient port.BalanceClient
	screener      port.RiskScreener
	market        port.MarketDataClient
	logger        port.Logger
	cfg           configloader.SweepConfig
}

// NewHoldingsService creates a new instance of HoldingsServiceImpl.
func NewHoldingsService(
	bc port.BalanceClient,
	rs port.RiskScreener,
	mc port.MarketDataClient,
	l port.Logger,
	cfg configloader.SweepConfig,
) port.HoldingsProvider {
	return &HoldingsServiceImpl{
		balanceClient: bc,
		screener:      rs,
		market:        mc,
		logger:        l,
		cfg:           cfg,
	}
}

// pendingHolding accumulates a normalized balance before enrichment. Native
// and wrapped balances normalize to the same identifier, so quantities are
// summed to keep snapshot identifiers unique.
type pendingHolding struct {
	rawAmount     decimal.Decimal
	displayAmount decimal.Decimal
}

// FetchSnapshot implements port.HoldingsProvider. A balances fetch failure
// yields an empty snapshot plus a fetch error; failures in screening,
// pricing or metadata degrade per asset and are reported alongside the
// snapshot.
func (s *HoldingsServiceImpl) FetchSnapshot(ctx context.Context, walletAddress string) (*entity.HoldingsSnapshot, []entity.PipelineError) {
	s.logger.Debug("Fetching holdings snapshot", "wallet_address", walletAddress)

	snapshot := &entity.HoldingsSnapshot{
		WalletAddress: walletAddress,
		Holdings:      []entity.Holding{},
		FetchedAt:     time.Now().UTC(),
	}

	rawBalances, err := s.balanceClient.GetBalances(ctx, walletAddress)
	if err != nil {
		s.logger.Error("Failed to fetch wallet balances", "wallet_address", walletAddress, "error", err)
		metrics.PipelineErrors.WithLabelValues("balances").Inc()
		return snapshot, []entity.PipelineError{{
			Kind:    entity.FetchError,
			Stage:   "balances",
			Message: fmt.Sprintf("balances fetch failed: %v", err),
		}}
	}

	pending := s.normalizeBalances(rawBalances)
	if len(pending) == 0 {
		s.logger.Info("Wallet holds no positive balances", "wallet_address", walletAddress)
		metrics.SnapshotRefreshes.Inc()
		return snapshot, nil
	}

	assetIDs := make([]string, 0, len(pending))
	for id := range pending {
		assetIDs = append(assetIDs, id)
	}
	sort.Strings(assetIDs)

	var pipelineErrs []entity.PipelineError

	tradeable, screenErrs := s.screenAssets(ctx, assetIDs)
	pipelineErrs = append(pipelineErrs, screenErrs...)

	prices, priceErr := s.market.GetPrices(ctx, tradeable)
	if priceErr != nil {
		s.logger.Warn("Price fetch degraded, unpriced assets will be excluded", "error", priceErr)
		metrics.PipelineErrors.WithLabelValues("prices").Inc()
		pipelineErrs = append(pipelineErrs, entity.PipelineError{
			Kind:    entity.FetchError,
			Stage:   "prices",
			Message: fmt.Sprintf("price fetch degraded: %v", priceErr),
		})
	}

	meta, metaErr := s.market.GetMetadata(ctx, tradeable)
	if metaErr != nil {
		metrics.PipelineErrors.WithLabelValues("metadata").Inc()
		pipelineErrs = append(pipelineErrs, entity.PipelineError{
			Kind:    entity.FetchError,
			Stage:   "metadata",
			Message: fmt.Sprintf("metadata fetch degraded: %v", metaErr),
		})
	}

	for _, assetID := range tradeable {
		bal := pending[assetID]

		price, priced := prices[assetID]
		if !priced {
			// An asset that cannot currently be priced is not actionable:
			// its value cannot be proven non-dust.
			s.logger.Debug("Excluding unpriced holding", "asset_id", assetID)
			continue
		}

		value := bal.displayAmount.Mul(price)
		if value.LessThan(s.cfg.MinValueUSD) {
			s.logger.Debug("Excluding dust holding",
				"asset_id", assetID, "value_usd", value.String())
			continue
		}

		priceCopy, valueCopy := price, value
		snapshot.Holdings = append(snapshot.Holdings, entity.Holding{
			AssetID:       assetID,
			RawAmount:     bal.rawAmount.String(),
			DisplayAmount: bal.displayAmount,
			PriceUSD:      &priceCopy,
			Metadata:      meta[assetID],
			ValueUSD:      &valueCopy,
		})
	}

	sort.Slice(snapshot.Holdings, func(i, j int) bool {
		vi, vj := *snapshot.Holdings[i].ValueUSD, *snapshot.Holdings[j].ValueUSD
		if vi.Equal(vj) {
			return snapshot.Holdings[i].AssetID < snapshot.Holdings[j].AssetID
		}
		return vi.LessThan(vj)
	})

	metrics.SnapshotRefreshes.Inc()
	s.logger.Info("Published holdings snapshot",
		"wallet_address", walletAddress,
		"holding_count", len(snapshot.Holdings),
		"pipeline_errors", len(pipelineErrs))
	return snapshot, pipelineErrs
}

// normalizeBalances drops non-positive entries and maps identifiers into the
// wrapped space, merging quantities that normalize to the same identifier.
func (s *HoldingsServiceImpl) normalizeBalances(rawBalances map[string]entity.RawBalance) map[string]pendingHolding {
	pending := make(map[string]pendingHolding, len(rawBalances))
	for assetID, bal := range rawBalances {
		if !bal.UIAmount.IsPositive() {
			continue
		}
		rawAmount, err := decimal.NewFromString(bal.Amount)
		if err != nil || !rawAmount.IsPositive() {
			s.logger.Warn("Skipping balance with unparsable raw amount",
				"asset_id", assetID, "raw_amount", bal.Amount)
			continue
		}

		normalized := entity.NormalizeAssetID(assetID, s.cfg.NativeAssetID, s.cfg.WrappedNativeAssetID)
		acc := pending[normalized]
		acc.rawAmount = acc.rawAmount.Add(rawAmount)
		acc.displayAmount = acc.displayAmount.Add(bal.UIAmount)
		pending[normalized] = acc
	}
	return pending
}

// screenAssets returns the identifiers that passed risk screening. When
// screening could not be completed for some identifiers, those are excluded
// conservatively and the failure is reported.
func (s *HoldingsServiceImpl) screenAssets(ctx context.Context, assetIDs []string) ([]string, []entity.PipelineError) {
	warnings, err := s.screener.GetWarnings(ctx, assetIDs)

	var pipelineErrs []entity.PipelineError
	if err != nil {
		s.logger.Error("Risk screening degraded, unscreened assets will be excluded", "error", err)
		metrics.PipelineErrors.WithLabelValues("screening").Inc()
		pipelineErrs = append(pipelineErrs, entity.PipelineError{
			Kind:    entity.FetchError,
			Stage:   "screening",
			Message: fmt.Sprintf("screening degraded: %v", err),
		})
	}

	tradeable := make([]string, 0, len(assetIDs))
	for _, assetID := range assetIDs {
		tags, screened := warnings[assetID]
		if !screened {
			continue
		}
		if s.isNonTradeable(tags) {
			s.logger.Debug("Excluding non-tradeable asset", "asset_id", assetID)
			continue
		}
		tradeable = append(tradeable, assetID)
	}
	return tradeable, pipelineErrs
}

func (s *HoldingsServiceImpl) isNonTradeable(tags []entity.RiskWarning) bool {
	for _, tag := range tags {
		if tag.Type == s.cfg.NotSellableTag {
			return true
		}
	}
	return false
}
