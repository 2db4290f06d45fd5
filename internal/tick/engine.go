// Package tick drives the fetch-evaluate-publish-acknowledge cycle.
//
// One tick fetches every pending row from the store, computes "now" once in
// IST, and walks the rows strictly in fetch order: a due item is published and,
// only on publish success, acknowledged. Every failure past startup is
// recovered locally so the loop stays alive indefinitely.
package tick

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/theashutoshn/notion-tweet-scheduler/internal/domain"
)

// ItemStore fetches candidate rows and marks them published.
type ItemStore interface {
	FetchPending(ctx context.Context) ([]domain.RowResult, error)
	MarkPublished(ctx context.Context, id string) error
}

// Publisher submits tweet text to the delivery platform.
type Publisher interface {
	Publish(ctx context.Context, text string) (domain.PublishReceipt, error)
}

// MetricsSink records engine metrics. All methods must be non-blocking and
// fire-and-forget.
type MetricsSink interface {
	TickStarted()
	TickCompleted(duration time.Duration, published int, err error)
	RowSkipped(reason string)
	PublishCompleted(outcome string, duration time.Duration)
	AckFailed()
	ItemsPending(count int)
}

// AnalyticsSink counts published tweets. The sink handles errors internally;
// analytics never affects tick correctness.
type AnalyticsSink interface {
	Record(ctx context.Context, tweetID string, publishedAt time.Time)
}

// Config holds engine configuration.
type Config struct {
	TickInterval time.Duration
}

// Engine runs the polling loop.
type Engine struct {
	config    Config
	store     ItemStore
	publisher Publisher
	metrics   MetricsSink   // optional, nil = disabled
	analytics AnalyticsSink // optional, nil = disabled
	clock     func() time.Time
}

// New creates an Engine over the given store and publisher.
func New(config Config, store ItemStore, publisher Publisher) *Engine {
	return &Engine{
		config:    config,
		store:     store,
		publisher: publisher,
		clock:     time.Now,
	}
}

// WithMetrics attaches a metrics sink to the engine.
func (e *Engine) WithMetrics(sink MetricsSink) *Engine {
	e.metrics = sink
	return e
}

// WithAnalytics attaches an analytics sink to the engine.
func (e *Engine) WithAnalytics(sink AnalyticsSink) *Engine {
	e.analytics = sink
	return e
}

// Run executes one tick immediately, then one per interval until ctx is
// cancelled. Tick starts are spaced start-to-start: a slow tick does not push
// the next one later.
func (e *Engine) Run(ctx context.Context) error {
	log.Printf("tick: started, interval=%s", e.config.TickInterval)

	e.tick(ctx)

	ticker := time.NewTicker(e.config.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("tick: stopped")
			return ctx.Err()
		case <-ticker.C:
			e.tick(ctx)
		}
	}
}

func (e *Engine) tick(ctx context.Context) {
	start := time.Now()
	if e.metrics != nil {
		e.metrics.TickStarted()
	}

	published, err := e.processTick(ctx)

	if e.metrics != nil {
		e.metrics.TickCompleted(time.Since(start), published, err)
	}
	if err != nil {
		// A fetch failure yields an empty candidate set; next tick retries.
		log.Printf("tick: error: %v", err)
	}
}

// processTick runs one full cycle and returns how many items were published.
func (e *Engine) processTick(ctx context.Context) (int, error) {
	now := e.clock().In(domain.IST)

	rows, err := e.store.FetchPending(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch pending: %w", err)
	}

	log.Printf("tick: fetched %d candidate rows, now=%s", len(rows), now.Format(time.RFC3339))
	if e.metrics != nil {
		e.metrics.ItemsPending(len(rows))
	}

	published := 0
	for _, row := range rows {
		// Honor cancellation between items so shutdown never splits more than
		// one publish from its acknowledgment.
		if ctx.Err() != nil {
			log.Printf("tick: interrupted after %d published", published)
			return published, nil
		}

		if row.Skipped() {
			log.Printf("tick: warning: skipping row=%s reason=%s", row.Item.ID, row.Skip)
			if e.metrics != nil {
				e.metrics.RowSkipped(string(row.Skip))
			}
			continue
		}

		item := row.Item
		if !item.Due(now) {
			log.Printf("tick: item=%s not due until %s", item.ID, item.ScheduledAt.Format(time.RFC3339))
			continue
		}

		if e.publishItem(ctx, item) {
			published++
		}
	}

	return published, nil
}

// publishItem delivers one due item and acknowledges it in the store.
// Reports whether the publish itself succeeded.
func (e *Engine) publishItem(ctx context.Context, item domain.Item) bool {
	attemptID := uuid.New()
	log.Printf("tick: publishing item=%s attempt=%s", item.ID, attemptID)

	start := time.Now()
	receipt, err := e.publisher.Publish(ctx, item.Text)
	duration := time.Since(start)

	if err != nil {
		// Item stays unacknowledged and remains a candidate next tick.
		log.Printf("tick: publish failed item=%s attempt=%s: %v", item.ID, attemptID, err)
		if e.metrics != nil {
			e.metrics.PublishCompleted(OutcomeFailed, duration)
		}
		return false
	}

	log.Printf("tick: published item=%s tweet=%s", item.ID, receipt.TweetID)
	if e.metrics != nil {
		e.metrics.PublishCompleted(OutcomeSuccess, duration)
	}

	if err := e.store.MarkPublished(ctx, item.ID); err != nil {
		// Known duplicate-post hazard: the published flag was never set, so
		// the item will be re-evaluated and may be posted again next tick.
		log.Printf("tick: failed to mark item=%s published: %v", item.ID, err)
		if e.metrics != nil {
			e.metrics.AckFailed()
		}
		return true
	}
	log.Printf("tick: marked item=%s published", item.ID)

	if e.analytics != nil {
		e.analytics.Record(ctx, receipt.TweetID, e.clock())
	}
	return true
}

// Outcome constants for the PublishCompleted metric.
const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
)
