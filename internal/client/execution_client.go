package client

import (
	"context"
	"fmt"
	"time"

	"github.com/google/go-querystring/query"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"token_sweeper/internal/app/port"
	"token_sweeper/internal/domain/entity"
)

// ultraExecutionClientImpl implements port.ExecutionClient against the ultra
// order and execute endpoints.
type ultraExecutionClientImpl struct {
	api    *apiClient
	logger *zap.Logger
}

// NewUltraExecutionClient creates a new execution client.
func NewUltraExecutionClient(baseURL string, timeout time.Duration, limiter *rate.Limiter, logger *zap.Logger) port.ExecutionClient {
	l := logger.Named("UltraExecutionClient")
	return &ultraExecutionClientImpl{
		api:    newAPIClient(baseURL, timeout, limiter, l),
		logger: l,
	}
}

// GetOrder implements port.ExecutionClient. The order endpoint answers
// structured rejections in non-2xx bodies; those decode into an
// OrderResponse carrying the error field rather than failing the call.
func (c *ultraExecutionClientImpl) GetOrder(ctx context.Context, req entity.OrderRequest) (*entity.OrderResponse, error) {
	values, err := query.Values(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode order query: %w", err)
	}
	path := "/ultra/v1/order?" + values.Encode()

	status, body, err := c.api.do(ctx, fasthttp.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var order entity.OrderResponse
	if jsonErr := json.Unmarshal(body, &order); jsonErr != nil {
		if status != fasthttp.StatusOK {
			return nil, fmt.Errorf("order request failed with status %d: %s", status, string(body))
		}
		return nil, fmt.Errorf("failed to unmarshal order response: %w", jsonErr)
	}
	if status != fasthttp.StatusOK && order.Classify() != entity.OrderRejected {
		return nil, fmt.Errorf("order request failed with status %d: %s", status, string(body))
	}

	order.Raw = body
	c.logger.Debug("Received order response",
		zap.String("inputMint", req.InputMint),
		zap.String("swapType", order.SwapType),
		zap.Bool("signable", order.Classify() == entity.OrderSignable))
	return &order, nil
}

type executeRequest struct {
	SignedTransaction string `json:"signedTransaction"`
	RequestID         string `json:"requestId"`
}

// ExecuteOrder implements port.ExecutionClient.
func (c *ultraExecutionClientImpl) ExecuteOrder(ctx context.Context, signedTransaction, requestID string) (*entity.ExecuteResponse, error) {
	payload, err := json.Marshal(executeRequest{
		SignedTransaction: signedTransaction,
		RequestID:         requestID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal execute request: %w", err)
	}

	status, body, err := c.api.do(ctx, fasthttp.MethodPost, "/ultra/v1/execute", payload)
	if err != nil {
		return nil, err
	}

	var result entity.ExecuteResponse
	if jsonErr := json.Unmarshal(body, &result); jsonErr != nil {
		return nil, fmt.Errorf("execute request failed with status %d: %s", status, string(body))
	}
	if result.Status == "" {
		return nil, fmt.Errorf("execute response carries no status (http %d): %s", status, string(body))
	}

	c.logger.Debug("Received execute response",
		zap.String("requestId", requestID),
		zap.String("status", result.Status))
	return &result, nil
}
