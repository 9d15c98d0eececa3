package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"token_sweeper/internal/app/port"
	"token_sweeper/internal/domain/entity"
	"token_sweeper/internal/pkg/utils"
)

// marketDataClientImpl implements port.MarketDataClient against the lite-API
// price and token metadata endpoints. Price lookups are batched, metadata
// lookups run per identifier; both fan out concurrently. Metadata changes
// rarely, so it sits behind a TTL cache; prices are always fetched fresh.
type marketDataClientImpl struct {
	api              *apiClient
	logger           *zap.Logger
	metaCache        *gocache.Cache
	maxIDsPerRequest int
	maxConcurrent    int
}

// NewMarketDataClient creates a new market data client.
func NewMarketDataClient(
	baseURL string,
	timeout time.Duration,
	limiter *rate.Limiter,
	logger *zap.Logger,
	maxIDsPerRequest int,
	maxConcurrent int,
	metadataTTL time.Duration,
) port.MarketDataClient {
	if maxIDsPerRequest <= 0 {
		maxIDsPerRequest = 50
	}
	if maxConcurrent <= 0 {
		maxConcurrent = 5
	}
	l := logger.Named("MarketDataClient")
	return &marketDataClientImpl{
		api:              newAPIClient(baseURL, timeout, limiter, l),
		logger:           l,
		metaCache:        gocache.New(metadataTTL, 2*metadataTTL),
		maxIDsPerRequest: maxIDsPerRequest,
		maxConcurrent:    maxConcurrent,
	}
}

type priceResponse struct {
	Data map[string]struct {
		UsdPrice decimal.Decimal `json:"usdPrice"`
	} `json:"data"`
}

// GetPrices implements port.MarketDataClient. Identifiers the pricing
// service does not know are simply absent from the result; a failed batch
// leaves its identifiers absent and contributes to the returned error while
// other batches still resolve.
func (c *marketDataClientImpl) GetPrices(ctx context.Context, assetIDs []string) (map[string]decimal.Decimal, error) {
	if len(assetIDs) == 0 {
		return map[string]decimal.Decimal{}, nil
	}

	prices := make(map[string]decimal.Decimal, len(assetIDs))
	var mu sync.Mutex
	var fetchErrs []error

	var g errgroup.Group
	g.SetLimit(c.maxConcurrent)

	for _, batch := range utils.BatchStrings(assetIDs, c.maxIDsPerRequest) {
		g.Go(func() error {
			path := "/price/v3?ids=" + strings.Join(batch, ",")

			var resp priceResponse
			if err := c.api.getJSON(ctx, path, &resp); err != nil {
				c.logger.Warn("Price batch fetch failed",
					zap.Int("batchSize", len(batch)), zap.Error(err))
				mu.Lock()
				fetchErrs = append(fetchErrs, err)
				mu.Unlock()
				return nil
			}

			mu.Lock()
			for id, p := range resp.Data {
				prices[id] = p.UsdPrice
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	c.logger.Debug("Fetched prices",
		zap.Int("requested", len(assetIDs)),
		zap.Int("resolved", len(prices)))
	return prices, errors.Join(fetchErrs...)
}

// GetMetadata implements port.MarketDataClient. A lookup failure for one
// identifier yields a nil entry for that identifier only.
func (c *marketDataClientImpl) GetMetadata(ctx context.Context, assetIDs []string) (map[string]*entity.TokenMetadata, error) {
	metadata := make(map[string]*entity.TokenMetadata, len(assetIDs))
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(c.maxConcurrent)

	for _, id := range assetIDs {
		if cached, found := c.metaCache.Get(id); found {
			// Fan-out goroutines for earlier identifiers may already be
			// writing the map.
			mu.Lock()
			metadata[id] = cached.(*entity.TokenMetadata)
			mu.Unlock()
			continue
		}

		g.Go(func() error {
			var meta entity.TokenMetadata
			if err := c.api.getJSON(ctx, "/tokens/v1/token/"+id, &meta); err != nil {
				c.logger.Warn("Metadata lookup failed", zap.String("assetId", id), zap.Error(err))
				mu.Lock()
				metadata[id] = nil
				mu.Unlock()
				return nil
			}

			c.metaCache.Set(id, &meta, gocache.DefaultExpiration)
			mu.Lock()
			metadata[id] = &meta
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return metadata, fmt.Errorf("metadata fan-out failed: %w", err)
	}
	return metadata, nil
}
