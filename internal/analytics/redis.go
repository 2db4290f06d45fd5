// Package analytics keeps best-effort publish counters in Redis.
package analytics

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisSink counts published tweets in time-bucketed keys. Errors are logged
// and swallowed: analytics never affects the tick.
type RedisSink struct {
	client    *redis.Client
	window    time.Duration
	retention time.Duration
}

// NewRedisSink creates a sink that buckets counts by window and expires keys
// after retention.
func NewRedisSink(client *redis.Client, window, retention time.Duration) *RedisSink {
	if window <= 0 {
		window = time.Hour
	}
	if retention <= 0 {
		retention = 720 * time.Hour
	}
	return &RedisSink{client: client, window: window, retention: retention}
}

// Record increments the bucket covering publishedAt.
func (s *RedisSink) Record(ctx context.Context, tweetID string, publishedAt time.Time) {
	key := bucketKey(publishedAt, s.window)

	pipe := s.client.Pipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, s.retention)

	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("analytics: failed to record tweet=%s: %v", tweetID, err)
	}
}

func bucketKey(t time.Time, window time.Duration) string {
	return "tweetsched:published:" + truncateToBucket(t, window)
}

func truncateToBucket(t time.Time, window time.Duration) string {
	t = t.UTC()
	switch window {
	case time.Minute:
		return t.Format("200601021504")
	case 5 * time.Minute:
		minute := (t.Minute() / 5) * 5
		return t.Format("2006010215") + fmt.Sprintf("%02d", minute)
	case time.Hour:
		return t.Format("2006010215")
	default:
		return t.Format("200601021504")
	}
}
