package entity

import "encoding/json"

// JobStatus is the lifecycle state of a conversion job. A job transitions
// exactly once from JobPending to one of the terminal states and is never
// retried within the same batch.
type JobStatus string

const (
	JobPending  JobStatus = "pending"
	JobSuccess  JobStatus = "success"
	JobDeferred JobStatus = "deferred"
	JobFailed   JobStatus = "failed"
)

// JobOutcome is the terminal result of one conversion job.
type JobOutcome struct {
	Status JobStatus `json:"status"`
	// Signature is the execution signature, set on success.
	Signature string `json:"signature,omitempty"`
	// Details carries the raw order response for deferred (request-for-quote)
	// swaps that require out-of-band completion.
	Details json.RawMessage `json:"details,omitempty"`
	// Kind classifies the failure, set on failed jobs.
	Kind ErrorKind `json:"kind,omitempty"`
	// Reason is a human-readable explanation for non-success.
	Reason string `json:"reason,omitempty"`
}

// SuccessOutcome builds the outcome for an executed swap.
func SuccessOutcome(signature string) JobOutcome {
	return JobOutcome{Status: JobSuccess, Signature: signature}
}

// DeferredOutcome builds the outcome for a quote-only swap that is
// intentionally not auto-finalized.
func DeferredOutcome(details json.RawMessage) JobOutcome {
	return JobOutcome{Status: JobDeferred, Details: details}
}

// FailedOutcome builds the outcome for a failed job.
func FailedOutcome(kind ErrorKind, reason string) JobOutcome {
	return JobOutcome{Status: JobFailed, Kind: kind, Reason: reason}
}

// ConversionJob is one attempted swap of one holding into the target asset.
type ConversionJob struct {
	AssetID            string     `json:"assetId"`
	RequestedRawAmount string     `json:"requestedRawAmount"`
	SequenceIndex      int        `json:"sequenceIndex"`
	Outcome            JobOutcome `json:"outcome"`
}

// ConversionBatchReport aggregates all jobs of one orchestration run. Jobs
// are ordered by SequenceIndex, matching the deterministic selection order
// the batch was built from.
type ConversionBatchReport struct {
	Jobs             []ConversionJob `json:"jobs"`
	Successes        int             `json:"successes"`
	Deferrals        int             `json:"deferrals"`
	Failures         int             `json:"failures"`
	RefreshTriggered bool            `json:"refreshTriggered"`
}

// BuildBatchReport tallies job outcomes into a report.
func BuildBatchReport(jobs []ConversionJob) *ConversionBatchReport {
	report := &ConversionBatchReport{Jobs: jobs}
	for _, job := range jobs {
		switch job.Outcome.Status {
		case JobSuccess:
			report.Successes++
		case JobDeferred:
			report.Deferrals++
		case JobFailed:
			report.Failures++
		}
	}
	return report
}
