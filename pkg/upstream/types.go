package upstream

import (
	"time"

	"mercator-hq/courier/pkg/jsonvalue"
)

// CompletionRequest is the body posted to the completion endpoint.
// Parameters and Debug are always empty objects.
type CompletionRequest struct {
	Input      Input    `json:"input"`
	Parameters struct{} `json:"parameters"`
	Debug      struct{} `json:"debug"`
}

// Input carries the prompt. A nil Prompt is omitted from the body, which is
// how an absent prompt field is forwarded.
type Input struct {
	Prompt *jsonvalue.Value `json:"prompt,omitempty"`
}

// NewCompletionRequest wraps prompt in a completion request body.
func NewCompletionRequest(prompt *jsonvalue.Value) CompletionRequest {
	return CompletionRequest{Input: Input{Prompt: prompt}}
}

// Health is a snapshot of upstream availability as seen by the client.
type Health struct {
	// Healthy is false after unhealthyThreshold consecutive failures
	Healthy bool

	// LastCheck is when the last call or probe finished
	LastCheck time.Time

	// ConsecutiveFailures counts failures since the last success
	ConsecutiveFailures int

	// LastError is the message of the most recent failure, if any
	LastError string

	// LastSuccess is when the last successful call or probe finished
	LastSuccess time.Time

	// TotalRequests counts completion calls, not probes
	TotalRequests int64

	// FailedRequests counts completion calls that returned an error
	FailedRequests int64
}

// Observer receives per-call measurements. The metrics collector implements
// it; a nil Observer is replaced with a no-op.
type Observer interface {
	// ObserveUpstream records one completion call with its Kind and latency.
	ObserveUpstream(kind string, latency time.Duration)

	// SetUpstreamUp records the current health verdict.
	SetUpstreamUp(up bool)
}

type nopObserver struct{}

func (nopObserver) ObserveUpstream(string, time.Duration) {}
func (nopObserver) SetUpstreamUp(bool)                    {}
