package entity

// ErrorKind names the failure classes the pipeline distinguishes.
type ErrorKind string

const (
	// FetchError covers unreachable or failing read endpoints (balances,
	// prices, metadata, screening).
	FetchError ErrorKind = "fetch_error"
	// ServiceRejected means the execution service returned a structured
	// error or message.
	ServiceRejected ErrorKind = "service_rejected"
	// ProtocolError means a response shape was not recognized.
	ProtocolError ErrorKind = "protocol_error"
	// SigningDeclined means the signing capability refused to sign.
	SigningDeclined ErrorKind = "signing_declined"
)

// PipelineError records a non-fatal failure inside the holdings pipeline.
// Errors are aggregated alongside results rather than aborting aggregation;
// a caller never needs a separate channel to learn why data is missing.
type PipelineError struct {
	Kind    ErrorKind `json:"kind"`
	Stage   string    `json:"stage"`
	AssetID string    `json:"assetId,omitempty"`
	Message string    `json:"message"`
}
