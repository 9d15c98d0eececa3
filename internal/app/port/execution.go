package port

import (
	"context"

	"token_sweeper/internal/domain/entity"
)

// ExecutionClient talks to the external quoting/execution service.
type ExecutionClient interface {
	// GetOrder requests a quote/order for one swap. Structured rejections
	// (an error or message field, including non-2xx bodies that parse) are
	// returned inside the OrderResponse, not as an error; an error return
	// means the service could not be reached or answered garbage.
	GetOrder(ctx context.Context, req entity.OrderRequest) (*entity.OrderResponse, error)

	// ExecuteOrder submits a signed transaction under its request
	// correlation id.
	ExecuteOrder(ctx context.Context, signedTransaction, requestID string) (*entity.ExecuteResponse, error)
}

// TransactionSigner is the wallet-side signing capability. A refusal (user
// declined, wallet locked) surfaces as an error.
type TransactionSigner interface {
	SignTransaction(ctx context.Context, tx *entity.Transaction) (*entity.Transaction, error)
}
