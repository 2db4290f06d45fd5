package metrics

import (
	"log"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusSink implements Sink using the Prometheus client library.
// All methods are non-blocking and fire-and-forget.
// Registration errors are logged but never propagated.
type PrometheusSink struct {
	ticksTotal      prometheus.Counter
	tickErrorsTotal prometheus.Counter
	publishedTotal  prometheus.Counter
	tickDuration    prometheus.Histogram
	itemsPending    prometheus.Gauge

	rowsSkippedTotal     *prometheus.CounterVec
	publishOutcomesTotal *prometheus.CounterVec
	publishDuration      prometheus.Histogram
	ackFailuresTotal     prometheus.Counter
}

// NewPrometheusSink creates a new Prometheus metrics sink.
// If registration fails, it logs a warning and returns a functional sink.
func NewPrometheusSink(reg prometheus.Registerer) *PrometheusSink {
	s := &PrometheusSink{}
	s.initTickMetrics(reg)
	s.initPublishMetrics(reg)
	return s
}

func (s *PrometheusSink) initTickMetrics(reg prometheus.Registerer) {
	s.ticksTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tweetsched_ticks_total",
		Help: "Total number of scheduler ticks processed.",
	})
	s.tickErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tweetsched_tick_errors_total",
		Help: "Total number of ticks that failed to fetch candidates.",
	})
	s.publishedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tweetsched_tweets_published_total",
		Help: "Total number of tweets successfully published.",
	})
	s.tickDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "tweetsched_tick_duration_seconds",
		Help:    "Duration of each scheduler tick in seconds.",
		Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
	})
	s.itemsPending = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "tweetsched_items_pending",
		Help: "Candidate rows returned by the last fetch.",
	})

	s.register(reg, s.ticksTotal, "tweetsched_ticks_total")
	s.register(reg, s.tickErrorsTotal, "tweetsched_tick_errors_total")
	s.register(reg, s.publishedTotal, "tweetsched_tweets_published_total")
	s.register(reg, s.tickDuration, "tweetsched_tick_duration_seconds")
	s.register(reg, s.itemsPending, "tweetsched_items_pending")
}

func (s *PrometheusSink) initPublishMetrics(reg prometheus.Registerer) {
	s.rowsSkippedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tweetsched_rows_skipped_total",
		Help: "Total number of malformed rows dropped from the candidate set.",
	}, []string{"reason"})

	s.publishOutcomesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tweetsched_publish_outcomes_total",
		Help: "Total number of publish attempts by outcome.",
	}, []string{"outcome"})

	s.publishDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "tweetsched_publish_duration_seconds",
		Help:    "Tweet API request latency in seconds.",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	})

	s.ackFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tweetsched_ack_failures_total",
		Help: "Total number of acknowledgments that failed after a successful publish.",
	})

	s.register(reg, s.rowsSkippedTotal, "tweetsched_rows_skipped_total")
	s.register(reg, s.publishOutcomesTotal, "tweetsched_publish_outcomes_total")
	s.register(reg, s.publishDuration, "tweetsched_publish_duration_seconds")
	s.register(reg, s.ackFailuresTotal, "tweetsched_ack_failures_total")
}

// register attempts to register a collector, logging any errors without propagating them.
func (s *PrometheusSink) register(reg prometheus.Registerer, c prometheus.Collector, name string) {
	if err := reg.Register(c); err != nil {
		log.Printf("metrics: failed to register %s: %v", name, err)
	}
}

func (s *PrometheusSink) TickStarted() {
	s.ticksTotal.Inc()
}

func (s *PrometheusSink) TickCompleted(duration time.Duration, published int, err error) {
	s.tickDuration.Observe(duration.Seconds())
	s.publishedTotal.Add(float64(published))
	if err != nil {
		s.tickErrorsTotal.Inc()
	}
}

func (s *PrometheusSink) ItemsPending(count int) {
	s.itemsPending.Set(float64(count))
}

func (s *PrometheusSink) RowSkipped(reason string) {
	s.rowsSkippedTotal.WithLabelValues(reason).Inc()
}

func (s *PrometheusSink) PublishCompleted(outcome string, duration time.Duration) {
	s.publishOutcomesTotal.WithLabelValues(outcome).Inc()
	s.publishDuration.Observe(duration.Seconds())
}

func (s *PrometheusSink) AckFailed() {
	s.ackFailuresTotal.Inc()
}
