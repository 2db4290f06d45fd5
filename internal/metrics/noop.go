package metrics

import "time"

// NoopSink is a no-op implementation of Sink.
// Used when metrics are disabled to avoid nil checks.
type NoopSink struct{}

// NewNoopSink returns a no-op metrics sink.
func NewNoopSink() *NoopSink {
	return &NoopSink{}
}

func (n *NoopSink) TickStarted()                                                   {}
func (n *NoopSink) TickCompleted(duration time.Duration, published int, err error) {}
func (n *NoopSink) ItemsPending(count int)                                         {}
func (n *NoopSink) RowSkipped(reason string)                                       {}
func (n *NoopSink) PublishCompleted(outcome string, duration time.Duration)        {}
func (n *NoopSink) AckFailed()                                                     {}
