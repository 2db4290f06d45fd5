package main

import (
	"log"
	"time"

	"github.com/theashutoshn/notion-tweet-scheduler/internal/config"
)

// logConfigWarnings surfaces configurations that are valid but likely to
// misbehave in production. Warnings never block startup.
func logConfigWarnings(cfg *config.Config) {
	if cfg.TickInterval < 10*time.Second {
		log.Printf("WARNING: TICK_INTERVAL=%s is below 10s; tight polling can exhaust Notion's rate limit", cfg.TickIntervalStr)
	}

	if cfg.PublishTimeout >= cfg.TickInterval {
		log.Printf("WARNING: PUBLISH_TIMEOUT=%s is not shorter than TICK_INTERVAL=%s; a single slow publish can consume the whole tick",
			cfg.PublishTimeoutStr, cfg.TickIntervalStr)
	}

	if !cfg.MetricsEnabled {
		log.Println("INFO: METRICS_ENABLED=false; publish failures are only visible in logs")
	}

	if cfg.RedisAddr == "" && cfg.AnalyticsWindowStr != "1h" {
		log.Println("INFO: ANALYTICS_WINDOW is set but REDIS_ADDR is empty; analytics stays disabled")
	}
}
