package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"testing"

	"token_sweeper/internal/domain/entity"
)

// fakeExecutionClient scripts one order response (or error) per input mint and
// records the call order.
type fakeExecutionClient struct {
	orders    map[string]*entity.OrderResponse
	orderErrs map[string]error
	execErr   error
	execution *entity.ExecuteResponse

	orderCalls []string
	execCalls  []string
}

func (f *fakeExecutionClient) GetOrder(_ context.Context, req entity.OrderRequest) (*entity.OrderResponse, error) {
	f.orderCalls = append(f.orderCalls, req.InputMint)
	if err := f.orderErrs[req.InputMint]; err != nil {
		return nil, err
	}
	order, ok := f.orders[req.InputMint]
	if !ok {
		return nil, fmt.Errorf("no scripted order for %s", req.InputMint)
	}
	return order, nil
}

func (f *fakeExecutionClient) ExecuteOrder(_ context.Context, _, requestID string) (*entity.ExecuteResponse, error) {
	f.execCalls = append(f.execCalls, requestID)
	if f.execErr != nil {
		return nil, f.execErr
	}
	return f.execution, nil
}

type fakeSigner struct {
	err   error
	calls int
}

func (f *fakeSigner) SignTransaction(_ context.Context, tx *entity.Transaction) (*entity.Transaction, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return tx, nil
}

func holdingForJob(assetID, rawAmount string) entity.Holding {
	return entity.Holding{AssetID: assetID, RawAmount: rawAmount}
}

func signableOrder(requestID string) *entity.OrderResponse {
	tx := base64.StdEncoding.EncodeToString([]byte("tx-" + requestID))
	return &entity.OrderResponse{Transaction: tx, RequestID: requestID}
}

func TestRunBatchFailureDoesNotStopRemainingJobs(t *testing.T) {
	exec := &fakeExecutionClient{
		orders: map[string]*entity.OrderResponse{
			"asset-a": signableOrder("req-a"),
			"asset-c": signableOrder("req-c"),
		},
		orderErrs: map[string]error{"asset-b": errors.New("upstream timeout")},
		execution: &entity.ExecuteResponse{Status: entity.ExecuteStatusSuccess, Signature: "sig"},
	}
	signer := &fakeSigner{}

	runner := NewConversionService(exec, signer, nopLogger{}, "target-mint")
	report := runner.RunBatch(context.Background(), "wallet-1", []entity.Holding{
		holdingForJob("asset-a", "100"),
		holdingForJob("asset-b", "200"),
		holdingForJob("asset-c", "300"),
	})

	if len(report.Jobs) != 3 {
		t.Fatalf("got %d jobs, want 3", len(report.Jobs))
	}
	wantOrder := []string{"asset-a", "asset-b", "asset-c"}
	for i, job := range report.Jobs {
		if job.AssetID != wantOrder[i] || job.SequenceIndex != i {
			t.Errorf("job %d = %s (index %d), want %s (index %d)",
				i, job.AssetID, job.SequenceIndex, wantOrder[i], i)
		}
	}
	if report.Successes != 2 || report.Failures != 1 || report.Deferrals != 0 {
		t.Errorf("tallies = %d/%d/%d (success/deferred/failed), want 2/0/1",
			report.Successes, report.Deferrals, report.Failures)
	}
	if report.Jobs[1].Outcome.Status != entity.JobFailed {
		t.Errorf("middle job status = %s, want failed", report.Jobs[1].Outcome.Status)
	}
	if report.Jobs[1].Outcome.Kind != entity.FetchError {
		t.Errorf("middle job kind = %s, want %s", report.Jobs[1].Outcome.Kind, entity.FetchError)
	}
	if !strings.Contains(report.Jobs[1].Outcome.Reason, "quote request failed") {
		t.Errorf("middle job reason = %q, want a quote failure", report.Jobs[1].Outcome.Reason)
	}
}

func TestRunBatchJobsRunSequentially(t *testing.T) {
	exec := &fakeExecutionClient{
		orders: map[string]*entity.OrderResponse{
			"asset-a": signableOrder("req-a"),
			"asset-b": signableOrder("req-b"),
		},
		execution: &entity.ExecuteResponse{Status: entity.ExecuteStatusSuccess, Signature: "sig"},
	}

	runner := NewConversionService(exec, &fakeSigner{}, nopLogger{}, "target-mint")
	runner.RunBatch(context.Background(), "wallet-1", []entity.Holding{
		holdingForJob("asset-a", "100"),
		holdingForJob("asset-b", "200"),
	})

	// Each job completes its quote and execution before the next quote starts.
	if len(exec.orderCalls) != 2 || exec.orderCalls[0] != "asset-a" || exec.orderCalls[1] != "asset-b" {
		t.Errorf("order calls = %v, want [asset-a asset-b]", exec.orderCalls)
	}
	if len(exec.execCalls) != 2 || exec.execCalls[0] != "req-a" || exec.execCalls[1] != "req-b" {
		t.Errorf("execute calls = %v, want [req-a req-b]", exec.execCalls)
	}
}

func TestRunBatchDeferredOutcome(t *testing.T) {
	rfq := &entity.OrderResponse{SwapType: entity.SwapTypeRFQ, Raw: []byte(`{"swapType":"rfq"}`)}
	exec := &fakeExecutionClient{orders: map[string]*entity.OrderResponse{"asset-a": rfq}}
	signer := &fakeSigner{}

	runner := NewConversionService(exec, signer, nopLogger{}, "target-mint")
	report := runner.RunBatch(context.Background(), "wallet-1",
		[]entity.Holding{holdingForJob("asset-a", "100")})

	job := report.Jobs[0]
	if job.Outcome.Status != entity.JobDeferred {
		t.Fatalf("status = %s, want deferred", job.Outcome.Status)
	}
	if string(job.Outcome.Details) != `{"swapType":"rfq"}` {
		t.Errorf("details = %s, want the raw order body", job.Outcome.Details)
	}
	if signer.calls != 0 {
		t.Errorf("signer was called %d times for a deferred order, want 0", signer.calls)
	}
	if len(exec.execCalls) != 0 {
		t.Errorf("execute was called %d times for a deferred order, want 0", len(exec.execCalls))
	}
}

func TestRunBatchServiceRejection(t *testing.T) {
	rejected := &entity.OrderResponse{Error: "no route for this pair"}
	exec := &fakeExecutionClient{orders: map[string]*entity.OrderResponse{"asset-a": rejected}}

	runner := NewConversionService(exec, &fakeSigner{}, nopLogger{}, "target-mint")
	report := runner.RunBatch(context.Background(), "wallet-1",
		[]entity.Holding{holdingForJob("asset-a", "100")})

	job := report.Jobs[0]
	if job.Outcome.Status != entity.JobFailed || job.Outcome.Reason != "no route for this pair" {
		t.Errorf("outcome = %+v, want failed with the service reason", job.Outcome)
	}
	if job.Outcome.Kind != entity.ServiceRejected {
		t.Errorf("kind = %s, want %s", job.Outcome.Kind, entity.ServiceRejected)
	}
}

func TestRunBatchSigningDeclined(t *testing.T) {
	exec := &fakeExecutionClient{
		orders: map[string]*entity.OrderResponse{"asset-a": signableOrder("req-a")},
	}
	signer := &fakeSigner{err: errors.New("signing declined: user rejected")}

	runner := NewConversionService(exec, signer, nopLogger{}, "target-mint")
	report := runner.RunBatch(context.Background(), "wallet-1",
		[]entity.Holding{holdingForJob("asset-a", "100")})

	job := report.Jobs[0]
	if job.Outcome.Status != entity.JobFailed {
		t.Fatalf("status = %s, want failed", job.Outcome.Status)
	}
	if job.Outcome.Kind != entity.SigningDeclined {
		t.Errorf("kind = %s, want %s", job.Outcome.Kind, entity.SigningDeclined)
	}
	if !strings.Contains(job.Outcome.Reason, "signing failed") {
		t.Errorf("reason = %q, want a signing failure", job.Outcome.Reason)
	}
	if len(exec.execCalls) != 0 {
		t.Errorf("execute was called after a declined signature, want no call")
	}
}

func TestRunBatchUnrecognizedResponse(t *testing.T) {
	exec := &fakeExecutionClient{
		orders: map[string]*entity.OrderResponse{"asset-a": {SwapType: "aggregator"}},
	}

	runner := NewConversionService(exec, &fakeSigner{}, nopLogger{}, "target-mint")
	report := runner.RunBatch(context.Background(), "wallet-1",
		[]entity.Holding{holdingForJob("asset-a", "100")})

	job := report.Jobs[0]
	if job.Outcome.Status != entity.JobFailed || job.Outcome.Reason != "unrecognized response" {
		t.Errorf("outcome = %+v, want failed with unrecognized response", job.Outcome)
	}
	if job.Outcome.Kind != entity.ProtocolError {
		t.Errorf("kind = %s, want %s", job.Outcome.Kind, entity.ProtocolError)
	}
}

func TestRunBatchExecutionFailure(t *testing.T) {
	exec := &fakeExecutionClient{
		orders: map[string]*entity.OrderResponse{"asset-a": signableOrder("req-a")},
		execution: &entity.ExecuteResponse{
			Status: "Failed", Error: "slippage exceeded", Code: 4001,
		},
	}

	runner := NewConversionService(exec, &fakeSigner{}, nopLogger{}, "target-mint")
	report := runner.RunBatch(context.Background(), "wallet-1",
		[]entity.Holding{holdingForJob("asset-a", "100")})

	job := report.Jobs[0]
	if job.Outcome.Status != entity.JobFailed {
		t.Fatalf("status = %s, want failed", job.Outcome.Status)
	}
	if job.Outcome.Kind != entity.ServiceRejected {
		t.Errorf("kind = %s, want %s", job.Outcome.Kind, entity.ServiceRejected)
	}
	if job.Outcome.Reason != "Failed (code 4001): slippage exceeded" {
		t.Errorf("reason = %q, want the formatted execution failure", job.Outcome.Reason)
	}
}

func TestRunBatchAbandonedOnCancelledContext(t *testing.T) {
	exec := &fakeExecutionClient{
		orders: map[string]*entity.OrderResponse{
			"asset-a": signableOrder("req-a"),
			"asset-b": signableOrder("req-b"),
		},
		execution: &entity.ExecuteResponse{Status: entity.ExecuteStatusSuccess, Signature: "sig"},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := NewConversionService(exec, &fakeSigner{}, nopLogger{}, "target-mint")
	report := runner.RunBatch(ctx, "wallet-1", []entity.Holding{
		holdingForJob("asset-a", "100"),
		holdingForJob("asset-b", "200"),
	})

	if len(report.Jobs) != 0 {
		t.Errorf("got %d jobs on a cancelled context, want 0", len(report.Jobs))
	}
}
