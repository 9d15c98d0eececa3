package entity

import (
	"encoding/json"
	"fmt"
)

// SwapTypeRFQ marks a request-for-quote order that carries no directly
// signable transaction and must be completed out of band.
const SwapTypeRFQ = "rfq"

// ExecuteStatusSuccess is the execution status reported for a landed swap.
const ExecuteStatusSuccess = "Success"

// OrderRequest describes one quote request to the execution service.
// Field tags drive query-string encoding.
type OrderRequest struct {
	InputMint  string `url:"inputMint"`
	OutputMint string `url:"outputMint"`
	Amount     string `url:"amount"`
	Taker      string `url:"taker"`
}

// OrderResponse is the decoded order endpoint response. The service answers
// with one of three shapes: a structured error, a signable transaction plus
// a correlation id, or a quote-only order. Raw preserves the original body
// for deferred reporting.
type OrderResponse struct {
	Transaction string `json:"transaction"`
	RequestID   string `json:"requestId"`
	SwapType    string `json:"swapType"`
	Error       string `json:"error"`
	Message     string `json:"message"`

	Raw json.RawMessage `json:"-"`
}

// OrderKind classifies an order response shape.
type OrderKind int

const (
	// OrderRejected carries an explicit error or message field.
	OrderRejected OrderKind = iota
	// OrderSignable carries a transaction payload and a request id.
	OrderSignable
	// OrderDeferred is a request-for-quote order.
	OrderDeferred
	// OrderUnrecognized is any other shape.
	OrderUnrecognized
)

// Classify decodes the response shape once at the service boundary so the
// orchestrator consumes a tagged variant instead of branching on raw fields.
func (o *OrderResponse) Classify() OrderKind {
	switch {
	case o.Error != "" || o.Message != "":
		return OrderRejected
	case o.Transaction != "" && o.RequestID != "":
		return OrderSignable
	case o.SwapType == SwapTypeRFQ:
		return OrderDeferred
	default:
		return OrderUnrecognized
	}
}

// RejectionReason returns the service-supplied reason for a rejected order.
func (o *OrderResponse) RejectionReason() string {
	if o.Error != "" {
		return o.Error
	}
	return o.Message
}

// ExecuteResponse is the decoded execution endpoint response.
type ExecuteResponse struct {
	Status    string `json:"status"`
	Signature string `json:"signature,omitempty"`
	Error     string `json:"error,omitempty"`
	Code      int    `json:"code,omitempty"`
}

// Succeeded reports whether the execution landed.
func (r *ExecuteResponse) Succeeded() bool {
	return r.Status == ExecuteStatusSuccess
}

// FailureReason formats the non-success status with its code and error.
func (r *ExecuteResponse) FailureReason() string {
	if r.Error != "" {
		return fmt.Sprintf("%s (code %d): %s", r.Status, r.Code, r.Error)
	}
	return fmt.Sprintf("execution status %q (code %d)", r.Status, r.Code)
}
