package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/theashutoshn/notion-tweet-scheduler/internal/analytics"
	"github.com/theashutoshn/notion-tweet-scheduler/internal/config"
	"github.com/theashutoshn/notion-tweet-scheduler/internal/metrics"
	"github.com/theashutoshn/notion-tweet-scheduler/internal/publish/twitter"
	"github.com/theashutoshn/notion-tweet-scheduler/internal/store/notion"
	"github.com/theashutoshn/notion-tweet-scheduler/internal/tick"
)

// Build-time variables set via -ldflags
var (
	version = "dev"
	commit  = "unknown"
)

const (
	exitSuccess       = 0
	exitRuntimeError  = 1
	exitInvalidConfig = 2
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(exitRuntimeError)
	}

	switch cmd := os.Args[1]; cmd {
	case "serve":
		os.Exit(runServe())
	case "validate":
		os.Exit(runValidate())
	case "config":
		os.Exit(runConfig())
	case "version":
		os.Exit(runVersion())
	case "--help", "-h", "help":
		printUsage()
		os.Exit(exitSuccess)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		printUsage()
		os.Exit(exitRuntimeError)
	}
}

func printUsage() {
	fmt.Println(`tweetsched - publishes scheduled tweets from a Notion database

Usage:
  tweetsched <command>

Commands:
  serve      Start the polling loop
  validate   Validate configuration (no connections made)
  config     Print effective configuration as JSON (secrets masked)
  version    Print version information

Environment Variables:
  NOTION_API_KEY            Notion integration token (required)
  NOTION_DB_ID              Notion database id holding the tweet rows (required)
  TWITTER_API_KEY           Twitter app key (required)
  TWITTER_API_SECRET        Twitter app secret (required)
  TWITTER_ACCESS_TOKEN      Twitter user access token (required)
  TWITTER_ACCESS_SECRET     Twitter user access secret (required)

  TICK_INTERVAL             Time between tick starts (default: "60s")
  STORE_OP_TIMEOUT          Per-operation Notion timeout (default: "10s")
  PUBLISH_TIMEOUT           Tweet API request timeout (default: "30s")
  HTTP_SHUTDOWN_TIMEOUT     Graceful metrics server shutdown (default: "10s")

  METRICS_ENABLED           Enable Prometheus metrics (default: "false")
  METRICS_PATH              Metrics endpoint path (default: "/metrics")
  METRICS_PORT              Metrics server port (default: "9090")

  REDIS_ADDR                Redis address for publish analytics (optional)
  ANALYTICS_WINDOW          Analytics bucket size: 1m, 5m or 1h (default: "1h")
  ANALYTICS_RETENTION       Analytics key expiry (default: "720h")

  TWEET_PROPERTY            Notion column with the tweet text (default: "Tweet")
  SCHEDULED_PROPERTY        Notion date column (default: "Scheduled")
  TIME_PROPERTY             Notion time-of-day column (default: "Time")
  PUBLISHED_PROPERTY        Notion published checkbox (default: "isPublished")`)
}

func runServe() int {
	cfg := config.Load()

	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		return exitInvalidConfig
	}

	logConfigWarnings(&cfg)

	store := notion.New(cfg.NotionAPIKey, cfg.NotionDBID, notion.Properties{
		Tweet:     cfg.TweetProperty,
		Scheduled: cfg.ScheduledProperty,
		TimeOfDay: cfg.TimeProperty,
		Published: cfg.PublishedProperty,
	}, cfg.StoreOpTimeout)

	publisher := twitter.New(twitter.Credentials{
		APIKey:       cfg.TwitterAPIKey,
		APISecret:    cfg.TwitterAPISecret,
		AccessToken:  cfg.TwitterAccessToken,
		AccessSecret: cfg.TwitterAccessSecret,
	}, cfg.PublishTimeout)

	engine := tick.New(tick.Config{TickInterval: cfg.TickInterval}, store, publisher)

	// Metrics sink and server (optional)
	var metricsServer *http.Server
	if cfg.MetricsEnabled {
		sink := metrics.NewPrometheusSink(prometheus.DefaultRegisterer)
		engine = engine.WithMetrics(sink)

		metricsMux := http.NewServeMux()
		metricsMux.Handle(cfg.MetricsPath, promhttp.Handler())
		metricsServer = &http.Server{
			Addr:    ":" + cfg.MetricsPort,
			Handler: metricsMux,
		}
		go func() {
			log.Printf("tweetsched: metrics server listening on :%s", cfg.MetricsPort)
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("tweetsched: metrics server error: %v", err)
			}
		}()
	} else {
		log.Println("tweetsched: METRICS_ENABLED not set; metrics disabled")
	}

	// Analytics sink (optional)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		engine = engine.WithAnalytics(analytics.NewRedisSink(redisClient, cfg.AnalyticsWindow, cfg.AnalyticsRetention))
		log.Printf("tweetsched: analytics enabled (redis=%s, window=%s)", cfg.RedisAddr, cfg.AnalyticsWindowStr)
	} else {
		log.Println("tweetsched: REDIS_ADDR not set; analytics disabled")
	}

	engineCtx, cancelEngine := context.WithCancel(context.Background())
	var engineWg sync.WaitGroup

	engineWg.Add(1)
	go func() {
		defer engineWg.Done()
		engine.Run(engineCtx)
	}()

	log.Printf("tweetsched: started (tick=%s, database=%s)", cfg.TickInterval, cfg.NotionDBID)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	received := <-sig

	log.Printf("tweetsched: received signal %v, shutting down", received)

	// Stop the engine first so no publish is cut off from its acknowledgment.
	log.Println("tweetsched: stopping engine...")
	cancelEngine()
	engineWg.Wait()
	log.Println("tweetsched: engine stopped")

	if metricsServer != nil {
		log.Println("tweetsched: stopping metrics server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
		defer cancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("tweetsched: metrics server shutdown error: %v", err)
		}
		log.Println("tweetsched: metrics server stopped")
	}

	log.Println("tweetsched: stopped")
	return exitSuccess
}

func runValidate() int {
	cfg := config.Load()

	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return exitInvalidConfig
	}

	fmt.Println("configuration valid")
	return exitSuccess
}

func runConfig() int {
	cfg := config.Load()

	data, err := cfg.MaskedJSON()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to marshal config: %v\n", err)
		return exitRuntimeError
	}

	fmt.Println(string(data))
	return exitSuccess
}

func runVersion() int {
	fmt.Printf("tweetsched version %s (commit: %s)\n", version, commit)
	return exitSuccess
}
