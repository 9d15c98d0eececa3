package client

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"token_sweeper/internal/app/port"
	"token_sweeper/internal/domain/entity"
)

// ultraBalanceClientImpl fetches wallet balances from the ultra balances
// endpoint.
type ultraBalanceClientImpl struct {
	api    *apiClient
	logger *zap.Logger
}

// NewUltraBalanceClient creates a new balance client.
func NewUltraBalanceClient(baseURL string, timeout time.Duration, limiter *rate.Limiter, logger *zap.Logger) port.BalanceClient {
	l := logger.Named("UltraBalanceClient")
	return &ultraBalanceClientImpl{
		api:    newAPIClient(baseURL, timeout, limiter, l),
		logger: l,
	}
}

// GetBalances implements port.BalanceClient.
func (c *ultraBalanceClientImpl) GetBalances(ctx context.Context, walletAddress string) (map[string]entity.RawBalance, error) {
	if walletAddress == "" {
		return nil, fmt.Errorf("walletAddress cannot be empty")
	}

	var balances map[string]entity.RawBalance
	path := "/ultra/v1/balances/" + walletAddress
	if err := c.api.getJSON(ctx, path, &balances); err != nil {
		return nil, err
	}

	c.logger.Debug("Fetched wallet balances",
		zap.String("walletAddress", walletAddress),
		zap.Int("entryCount", len(balances)))
	return balances, nil
}
