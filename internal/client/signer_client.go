package client

import (
	"context"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"token_sweeper/internal/app/port"
	"token_sweeper/internal/domain/entity"
)

// remoteSignerImpl implements port.TransactionSigner by forwarding signing
// requests to the wallet bridge. The bridge owns the keys and the user
// consent flow; a declined request comes back as a structured error.
type remoteSignerImpl struct {
	api    *apiClient
	logger *zap.Logger
}

// NewRemoteSigner creates a new signer client for the wallet bridge at
// baseURL. No rate limiter: signing is serialized by the orchestrator and
// gated on user confirmation anyway.
func NewRemoteSigner(baseURL string, timeout time.Duration, logger *zap.Logger) port.TransactionSigner {
	l := logger.Named("RemoteSigner")
	return &remoteSignerImpl{
		api:    newAPIClient(baseURL, timeout, nil, l),
		logger: l,
	}
}

type signRequest struct {
	Transaction string `json:"transaction"`
}

type signResponse struct {
	SignedTransaction string `json:"signedTransaction"`
	Error             string `json:"error"`
}

// SignTransaction implements port.TransactionSigner.
func (s *remoteSignerImpl) SignTransaction(ctx context.Context, tx *entity.Transaction) (*entity.Transaction, error) {
	payload, err := json.Marshal(signRequest{Transaction: tx.Serialize()})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal sign request: %w", err)
	}

	status, body, err := s.api.do(ctx, fasthttp.MethodPost, "/sign", payload)
	if err != nil {
		return nil, err
	}

	var resp signResponse
	if jsonErr := json.Unmarshal(body, &resp); jsonErr != nil {
		return nil, fmt.Errorf("sign request failed with status %d: %s", status, string(body))
	}
	if resp.Error != "" {
		s.logger.Warn("Signing declined by wallet bridge", zap.String("reason", resp.Error))
		return nil, fmt.Errorf("signing declined: %s", resp.Error)
	}
	if resp.SignedTransaction == "" {
		return nil, fmt.Errorf("sign response carries no signed transaction (http %d)", status)
	}

	signed, err := entity.DeserializeTransaction(resp.SignedTransaction)
	if err != nil {
		return nil, fmt.Errorf("wallet bridge returned an invalid signed transaction: %w", err)
	}
	s.logger.Debug("Transaction signed", zap.Int("payloadBytes", len(signed.Bytes())))
	return signed, nil
}
