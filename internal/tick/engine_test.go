package tick

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/theashutoshn/notion-tweet-scheduler/internal/domain"
	"github.com/theashutoshn/notion-tweet-scheduler/internal/testutil"
)

// fakeStore serves a fixed row set and records acknowledgments.
type fakeStore struct {
	mu         sync.Mutex
	rows       []domain.RowResult
	fetchErr   error
	markErr    error
	fetchCalls int
	marked     []string
	fetched    chan struct{} // optional, signalled on every fetch
}

func (s *fakeStore) FetchPending(ctx context.Context) ([]domain.RowResult, error) {
	s.mu.Lock()
	s.fetchCalls++
	rows := make([]domain.RowResult, len(s.rows))
	copy(rows, s.rows)
	err := s.fetchErr
	ch := s.fetched
	s.mu.Unlock()

	if ch != nil {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *fakeStore) MarkPublished(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.markErr != nil {
		return s.markErr
	}
	s.marked = append(s.marked, id)
	return nil
}

func (s *fakeStore) fetchCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetchCalls
}

func (s *fakeStore) markedIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.marked...)
}

// fakePublisher records published texts.
type fakePublisher struct {
	mu    sync.Mutex
	err   error
	texts []string
}

func (p *fakePublisher) Publish(ctx context.Context, text string) (domain.PublishReceipt, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return domain.PublishReceipt{}, p.err
	}
	p.texts = append(p.texts, text)
	return domain.PublishReceipt{TweetID: fmt.Sprintf("tw-%d", len(p.texts))}, nil
}

func (p *fakePublisher) published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.texts...)
}

// fakeMetrics counts sink calls.
type fakeMetrics struct {
	mu        sync.Mutex
	skipped   map[string]int
	outcomes  map[string]int
	ackFails  int
	pending   int
	ticks     int
	completed int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{skipped: map[string]int{}, outcomes: map[string]int{}}
}

func (m *fakeMetrics) TickStarted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ticks++
}

func (m *fakeMetrics) TickCompleted(d time.Duration, published int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completed++
}

func (m *fakeMetrics) RowSkipped(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.skipped[reason]++
}

func (m *fakeMetrics) PublishCompleted(outcome string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes[outcome]++
}

func (m *fakeMetrics) AckFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ackFails++
}

func (m *fakeMetrics) ItemsPending(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = count
}

func fixedEngine(store *fakeStore, pub *fakePublisher, now time.Time) *Engine {
	e := New(Config{TickInterval: time.Minute}, store, pub)
	e.clock = testutil.NewFakeClock(now).Now
	return e
}

func okRow(id, text string, at time.Time) domain.RowResult {
	return domain.OkRow(domain.Item{ID: id, Text: text, ScheduledAt: at})
}

func TestProcessTick_PublishesDueItemsInFetchOrder(t *testing.T) {
	now := time.Date(2024, 6, 1, 14, 30, 0, 0, domain.IST)
	store := &fakeStore{rows: []domain.RowResult{
		okRow("row-past", "posted late", now.Add(-time.Hour)),
		okRow("row-now", "posted on time", now),
		okRow("row-future", "not yet", now.Add(time.Hour)),
	}}
	pub := &fakePublisher{}

	published, err := fixedEngine(store, pub, now).processTick(testutil.TestContext(t))
	if err != nil {
		t.Fatalf("tick failed: %v", err)
	}

	if published != 2 {
		t.Errorf("published = %d, want 2 (past and exactly-now)", published)
	}
	got := pub.published()
	if len(got) != 2 || got[0] != "posted late" || got[1] != "posted on time" {
		t.Errorf("publish order = %v, want [posted late, posted on time]", got)
	}
	marked := store.markedIDs()
	if len(marked) != 2 || marked[0] != "row-past" || marked[1] != "row-now" {
		t.Errorf("marked = %v, want [row-past row-now]", marked)
	}
}

func TestProcessTick_DueIsNonStrict(t *testing.T) {
	now := time.Date(2024, 6, 1, 14, 30, 0, 0, domain.IST)
	store := &fakeStore{rows: []domain.RowResult{
		okRow("row-exact", "exactly now", now),
		okRow("row-just-after", "one microsecond later", now.Add(time.Microsecond)),
	}}
	pub := &fakePublisher{}

	published, err := fixedEngine(store, pub, now).processTick(testutil.TestContext(t))
	if err != nil {
		t.Fatalf("tick failed: %v", err)
	}

	if published != 1 {
		t.Errorf("published = %d, want 1", published)
	}
	if got := pub.published(); len(got) != 1 || got[0] != "exactly now" {
		t.Errorf("published texts = %v, want [exactly now]", got)
	}
}

func TestProcessTick_PublishFailureSkipsAck(t *testing.T) {
	now := time.Date(2024, 6, 1, 14, 30, 0, 0, domain.IST)
	store := &fakeStore{rows: []domain.RowResult{
		okRow("row-1", "hello", now.Add(-time.Minute)),
	}}
	pub := &fakePublisher{err: errors.New("403 forbidden")}

	published, err := fixedEngine(store, pub, now).processTick(testutil.TestContext(t))
	if err != nil {
		t.Fatalf("publish failure must not fail the tick: %v", err)
	}

	if published != 0 {
		t.Errorf("published = %d, want 0", published)
	}
	if marked := store.markedIDs(); len(marked) != 0 {
		t.Errorf("acknowledge must never run after a failed publish, marked %v", marked)
	}
}

func TestProcessTick_AckFailureLeavesItemPending(t *testing.T) {
	now := time.Date(2024, 6, 1, 14, 30, 0, 0, domain.IST)
	store := &fakeStore{
		rows:    []domain.RowResult{okRow("row-1", "hello", now.Add(-time.Minute))},
		markErr: errors.New("store unreachable"),
	}
	pub := &fakePublisher{}
	engine := fixedEngine(store, pub, now)

	// First tick publishes but cannot acknowledge.
	published, err := engine.processTick(testutil.TestContext(t))
	if err != nil {
		t.Fatalf("ack failure must not fail the tick: %v", err)
	}
	if published != 1 {
		t.Errorf("published = %d, want 1 (publish itself succeeded)", published)
	}

	// The row is still pending, so re-running the tick publishes it again.
	// This is the documented duplicate-post hazard, not a bug.
	if _, err := engine.processTick(testutil.TestContext(t)); err != nil {
		t.Fatalf("second tick failed: %v", err)
	}
	if got := pub.published(); len(got) != 2 {
		t.Errorf("expected the unacknowledged item to be republished, got %d publishes", len(got))
	}
}

func TestProcessTick_SkippedRowsAreNeverPublished(t *testing.T) {
	now := time.Date(2024, 6, 1, 14, 30, 0, 0, domain.IST)
	store := &fakeStore{rows: []domain.RowResult{
		domain.SkippedRow("row-no-text", domain.SkipMissingText),
		domain.SkippedRow("row-no-date", domain.SkipMissingSchedule),
		okRow("row-ok", "hello", now.Add(-time.Minute)),
		domain.SkippedRow("row-bad-time", domain.SkipBadTimeOfDay),
	}}
	pub := &fakePublisher{}
	metrics := newFakeMetrics()

	engine := fixedEngine(store, pub, now).WithMetrics(metrics)
	published, err := engine.processTick(testutil.TestContext(t))
	if err != nil {
		t.Fatalf("skipped rows must not fail the tick: %v", err)
	}

	if published != 1 {
		t.Errorf("published = %d, want 1", published)
	}
	if got := pub.published(); len(got) != 1 || got[0] != "hello" {
		t.Errorf("published texts = %v, want [hello]", got)
	}
	if metrics.skipped[string(domain.SkipMissingText)] != 1 ||
		metrics.skipped[string(domain.SkipMissingSchedule)] != 1 ||
		metrics.skipped[string(domain.SkipBadTimeOfDay)] != 1 {
		t.Errorf("skip metrics = %v, want one per reason", metrics.skipped)
	}
	if metrics.pending != 4 {
		t.Errorf("pending gauge = %d, want 4", metrics.pending)
	}
}

func TestProcessTick_EmptyCandidateSet(t *testing.T) {
	now := time.Date(2024, 6, 1, 14, 30, 0, 0, domain.IST)
	store := &fakeStore{}
	pub := &fakePublisher{}

	published, err := fixedEngine(store, pub, now).processTick(testutil.TestContext(t))
	if err != nil {
		t.Fatalf("empty tick failed: %v", err)
	}
	if published != 0 {
		t.Errorf("published = %d, want 0", published)
	}
	if len(pub.published()) != 0 || len(store.markedIDs()) != 0 {
		t.Error("empty tick must not publish or acknowledge anything")
	}
}

func TestProcessTick_FetchErrorYieldsNoCandidates(t *testing.T) {
	now := time.Date(2024, 6, 1, 14, 30, 0, 0, domain.IST)
	store := &fakeStore{fetchErr: errors.New("401 unauthorized")}
	pub := &fakePublisher{}

	published, err := fixedEngine(store, pub, now).processTick(testutil.TestContext(t))
	if err == nil {
		t.Fatal("expected fetch error to be reported")
	}
	if published != 0 {
		t.Errorf("published = %d, want 0", published)
	}
	if len(pub.published()) != 0 {
		t.Error("no publish may happen on a failed fetch")
	}
}

func TestRun_TicksRepeatedlyWithNoDueItems(t *testing.T) {
	now := time.Date(2024, 6, 1, 14, 30, 0, 0, domain.IST)
	fetched := make(chan struct{}, 16)
	store := &fakeStore{
		rows:    []domain.RowResult{okRow("row-future", "later", now.Add(24 * time.Hour))},
		fetched: fetched,
	}
	pub := &fakePublisher{}

	engine := New(Config{TickInterval: 5 * time.Millisecond}, store, pub)
	engine.clock = func() time.Time { return now }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- engine.Run(ctx) }()

	// One immediate tick plus at least two interval ticks.
	for i := 0; i < 3; i++ {
		select {
		case <-fetched:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for tick %d", i+1)
		}
	}
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancellation")
	}

	if store.fetchCount() < 3 {
		t.Errorf("fetch calls = %d, want at least 3", store.fetchCount())
	}
	if len(pub.published()) != 0 {
		t.Errorf("publisher must not be called for future items, got %v", pub.published())
	}
}

func TestRun_FirstTickIsImmediate(t *testing.T) {
	now := time.Date(2024, 6, 1, 14, 30, 0, 0, domain.IST)
	fetched := make(chan struct{}, 1)
	store := &fakeStore{fetched: fetched}
	pub := &fakePublisher{}

	// A long interval proves the first fetch does not wait for the ticker.
	engine := New(Config{TickInterval: time.Hour}, store, pub)
	engine.clock = func() time.Time { return now }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- engine.Run(ctx) }()

	select {
	case <-fetched:
	case <-time.After(2 * time.Second):
		t.Fatal("expected an immediate tick at startup")
	}
	cancel()
	<-done
}
