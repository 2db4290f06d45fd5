package metrics

import "time"

// Sink defines the interface for recording metrics.
// All methods are fire-and-forget: implementations MUST NOT block or propagate
// errors. If the metrics backend is unavailable, implementations log warnings
// and continue.
type Sink interface {
	// Tick engine metrics
	TickStarted()
	TickCompleted(duration time.Duration, published int, err error)
	ItemsPending(count int)

	// Row and publish metrics
	RowSkipped(reason string)
	PublishCompleted(outcome string, duration time.Duration)
	AckFailed()
}

// Outcome constants for the PublishCompleted metric.
const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
)
