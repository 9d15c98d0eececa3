package service

import (
	"context"
	"fmt"

	"token_sweeper/internal/app/port"
	"token_sweeper/internal/domain/entity"
	"token_sweeper/internal/pkg/metrics"
)

// ConversionServiceImpl implements port.ConversionRunner. Jobs run strictly
// sequentially: each depends on a quote priced at submission time, and the
// signing capability handles one user confirmation at a time. One job's
// failure never stops the remaining jobs.
type ConversionServiceImpl struct {
	execClient    port.ExecutionClient
	signer        port.TransactionSigner
	logger        port.Logger
	targetAssetID string
}

// NewConversionService creates a new instance of ConversionServiceImpl.
func NewConversionService(
	ec port.ExecutionClient,
	ts port.TransactionSigner,
	l port.Logger,
	targetAssetID string,
) port.ConversionRunner {
	return &ConversionServiceImpl{
		execClient:    ec,
		signer:        ts,
		logger:        l,
		targetAssetID: targetAssetID,
	}
}

// RunBatch implements port.ConversionRunner. Every started job reaches
// exactly one terminal outcome and is recorded with its sequence index
// before the next job starts. Cancelling the context between jobs abandons
// the remainder of the batch; already-recorded outcomes stay recorded.
func (s *ConversionServiceImpl) RunBatch(ctx context.Context, walletAddress string, holdings []entity.Holding) *entity.ConversionBatchReport {
	metrics.ConversionBatches.Inc()
	s.logger.Info("Starting conversion batch",
		"wallet_address", walletAddress,
		"job_count", len(holdings),
		"target_asset", s.targetAssetID)

	jobs := make([]entity.ConversionJob, 0, len(holdings))
	for i, holding := range holdings {
		if ctx.Err() != nil {
			s.logger.Warn("Conversion batch abandoned between jobs",
				"completed_jobs", len(jobs), "remaining_jobs", len(holdings)-len(jobs))
			break
		}

		job := entity.ConversionJob{
			AssetID:            holding.AssetID,
			RequestedRawAmount: holding.RawAmount,
			SequenceIndex:      i,
			Outcome:            entity.JobOutcome{Status: entity.JobPending},
		}
		job.Outcome = s.runJob(ctx, walletAddress, holding)

		metrics.ConversionJobs.WithLabelValues(string(job.Outcome.Status)).Inc()
		s.logger.Info("Conversion job finished",
			"asset_id", job.AssetID,
			"sequence_index", job.SequenceIndex,
			"status", job.Outcome.Status,
			"reason", job.Outcome.Reason)
		jobs = append(jobs, job)
	}

	report := entity.BuildBatchReport(jobs)
	s.logger.Info("Conversion batch finished",
		"successes", report.Successes,
		"deferrals", report.Deferrals,
		"failures", report.Failures)
	return report
}

// runJob executes one quote -> sign -> submit cycle and returns the terminal
// outcome.
func (s *ConversionServiceImpl) runJob(ctx context.Context, walletAddress string, holding entity.Holding) entity.JobOutcome {
	order, err := s.execClient.GetOrder(ctx, entity.OrderRequest{
		InputMint:  holding.AssetID,
		OutputMint: s.targetAssetID,
		Amount:     holding.RawAmount,
		Taker:      walletAddress,
	})
	if err != nil {
		return entity.FailedOutcome(entity.FetchError, fmt.Sprintf("quote request failed: %v", err))
	}

	switch order.Classify() {
	case entity.OrderRejected:
		return entity.FailedOutcome(entity.ServiceRejected, order.RejectionReason())
	case entity.OrderDeferred:
		return entity.DeferredOutcome(order.Raw)
	case entity.OrderSignable:
		return s.signAndSubmit(ctx, order)
	default:
		return entity.FailedOutcome(entity.ProtocolError, "unrecognized response")
	}
}

func (s *ConversionServiceImpl) signAndSubmit(ctx context.Context, order *entity.OrderResponse) entity.JobOutcome {
	tx, err := entity.DeserializeTransaction(order.Transaction)
	if err != nil {
		return entity.FailedOutcome(entity.ProtocolError, fmt.Sprintf("invalid transaction payload: %v", err))
	}

	signed, err := s.signer.SignTransaction(ctx, tx)
	if err != nil {
		return entity.FailedOutcome(entity.SigningDeclined, fmt.Sprintf("signing failed: %v", err))
	}

	result, err := s.execClient.ExecuteOrder(ctx, signed.Serialize(), order.RequestID)
	if err != nil {
		return entity.FailedOutcome(entity.FetchError, fmt.Sprintf("execution submission failed: %v", err))
	}
	if !result.Succeeded() {
		return entity.FailedOutcome(entity.ServiceRejected, result.FailureReason())
	}
	return entity.SuccessOutcome(result.Signature)
}
