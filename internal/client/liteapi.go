package client

import (
	"context"
	"fmt"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// apiClient is the shared fasthttp transport for all lite-API clients.
// Requests honor the caller's context deadline when present and fall back to
// the configured timeout otherwise. A shared rate limiter keeps the batch
// fan-out inside the service's request budget.
type apiClient struct {
	client  *fasthttp.Client
	baseURL string
	timeout time.Duration
	limiter *rate.Limiter
	logger  *zap.Logger
}

func newAPIClient(baseURL string, timeout time.Duration, limiter *rate.Limiter, logger *zap.Logger) *apiClient {
	return &apiClient{
		client:  &fasthttp.Client{},
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		limiter: limiter,
		logger:  logger,
	}
}

// do executes one request and returns the status code and a copy of the
// response body. Transport failures return an error; HTTP error statuses do
// not, since several endpoints put structured rejections in non-2xx bodies.
func (c *apiClient) do(ctx context.Context, method, path string, body []byte) (int, []byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return 0, nil, err
		}
	}

	requestURL := c.baseURL + path

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(method)
	req.Header.SetContentType("application/json")
	if body != nil {
		req.SetBody(body)
	}

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	if deadline, ok := ctx.Deadline(); ok {
		if err := c.client.DoDeadline(req, resp, deadline); err != nil {
			c.logger.Error("Failed to execute request", zap.String("url", requestURL), zap.Error(err))
			return 0, nil, fmt.Errorf("failed to execute request to %s: %w", requestURL, err)
		}
	} else {
		if err := c.client.DoTimeout(req, resp, c.timeout); err != nil {
			c.logger.Error("Failed to execute request (with default timeout)", zap.String("url", requestURL), zap.Error(err))
			return 0, nil, fmt.Errorf("failed to execute request to %s with default timeout: %w", requestURL, err)
		}
	}

	rawBody := append([]byte(nil), resp.Body()...)
	return resp.StatusCode(), rawBody, nil
}

// getJSON performs a GET request and unmarshals a 200 response into dest.
func (c *apiClient) getJSON(ctx context.Context, path string, dest any) error {
	status, body, err := c.do(ctx, fasthttp.MethodGet, path, nil)
	if err != nil {
		return err
	}
	if status != fasthttp.StatusOK {
		c.logger.Error("API request failed",
			zap.String("path", path),
			zap.Int("statusCode", status),
			zap.ByteString("responseBody", body))
		return fmt.Errorf("request to %s failed with status %d: %s", path, status, string(body))
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("failed to unmarshal response from %s: %w", path, err)
	}
	return nil
}
