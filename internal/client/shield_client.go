package client

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"token_sweeper/internal/app/port"
	"token_sweeper/internal/domain/entity"
	"token_sweeper/internal/pkg/utils"
)

// shieldClientImpl implements port.RiskScreener against the shield endpoint.
// The endpoint bounds how many identifiers one call may query, so the input
// is chunked transparently and results merged; callers never see the
// chunking.
type shieldClientImpl struct {
	api           *apiClient
	logger        *zap.Logger
	chunkSize     int
	maxConcurrent int
}

// NewShieldClient creates a new screening client. chunkSize is the service's
// per-call identifier limit.
func NewShieldClient(
	baseURL string,
	timeout time.Duration,
	limiter *rate.Limiter,
	logger *zap.Logger,
	chunkSize int,
	maxConcurrent int,
) port.RiskScreener {
	if chunkSize <= 0 {
		chunkSize = 10
	}
	if maxConcurrent <= 0 {
		maxConcurrent = 5
	}
	l := logger.Named("ShieldClient")
	return &shieldClientImpl{
		api:           newAPIClient(baseURL, timeout, limiter, l),
		logger:        l,
		chunkSize:     chunkSize,
		maxConcurrent: maxConcurrent,
	}
}

type shieldResponse struct {
	Warnings map[string][]entity.RiskWarning `json:"warnings"`
}

// GetWarnings implements port.RiskScreener. Successfully screened
// identifiers always get an entry, empty when the service raised no flags.
// A failed chunk leaves its identifiers absent and is reported through the
// returned error; it is never swallowed into "all flagged safe".
func (c *shieldClientImpl) GetWarnings(ctx context.Context, assetIDs []string) (map[string][]entity.RiskWarning, error) {
	if len(assetIDs) == 0 {
		return map[string][]entity.RiskWarning{}, nil
	}

	warnings := make(map[string][]entity.RiskWarning, len(assetIDs))
	var mu sync.Mutex
	var chunkErrs []error

	var g errgroup.Group
	g.SetLimit(c.maxConcurrent)

	for _, chunk := range utils.BatchStrings(assetIDs, c.chunkSize) {
		g.Go(func() error {
			path := "/ultra/v1/shield?mints=" + strings.Join(chunk, ",")

			var resp shieldResponse
			if err := c.api.getJSON(ctx, path, &resp); err != nil {
				c.logger.Error("Shield chunk fetch failed",
					zap.Int("chunkSize", len(chunk)), zap.Error(err))
				mu.Lock()
				chunkErrs = append(chunkErrs, err)
				mu.Unlock()
				return nil
			}

			mu.Lock()
			for _, id := range chunk {
				if tags, ok := resp.Warnings[id]; ok {
					warnings[id] = tags
				} else {
					warnings[id] = []entity.RiskWarning{}
				}
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	c.logger.Debug("Screened asset identifiers",
		zap.Int("requested", len(assetIDs)),
		zap.Int("screened", len(warnings)))
	return warnings, errors.Join(chunkErrs...)
}
