package config

import (
	"encoding/json"
	"os"
	"time"
)

// Config holds all configuration for the tweetsched application.
// Values are loaded from environment variables; see printUsage() for the full list.
type Config struct {
	NotionAPIKey string `json:"notion_api_key"`
	NotionDBID   string `json:"notion_db_id"`

	TwitterAPIKey       string `json:"twitter_api_key"`
	TwitterAPISecret    string `json:"twitter_api_secret"`
	TwitterAccessToken  string `json:"twitter_access_token"`
	TwitterAccessSecret string `json:"twitter_access_secret"`

	TickInterval    time.Duration `json:"-"`
	TickIntervalStr string        `json:"tick_interval"`

	StoreOpTimeout    time.Duration `json:"-"`
	StoreOpTimeoutStr string        `json:"store_op_timeout"`

	PublishTimeout    time.Duration `json:"-"`
	PublishTimeoutStr string        `json:"publish_timeout"`

	HTTPShutdownTimeout    time.Duration `json:"-"`
	HTTPShutdownTimeoutStr string        `json:"http_shutdown_timeout"`

	MetricsEnabled bool   `json:"metrics_enabled"`
	MetricsPath    string `json:"metrics_path"`
	MetricsPort    string `json:"metrics_port"`

	RedisAddr string `json:"redis_addr,omitempty"`

	AnalyticsWindow       time.Duration `json:"-"`
	AnalyticsWindowStr    string        `json:"analytics_window"`
	AnalyticsRetention    time.Duration `json:"-"`
	AnalyticsRetentionStr string        `json:"analytics_retention"`

	// Notion property names; overridable for databases with renamed columns.
	TweetProperty     string `json:"tweet_property"`
	ScheduledProperty string `json:"scheduled_property"`
	TimeProperty      string `json:"time_property"`
	PublishedProperty string `json:"published_property"`
}

// Load reads configuration from environment variables with defaults.
func Load() Config {
	cfg := Config{
		NotionAPIKey:           os.Getenv("NOTION_API_KEY"),
		NotionDBID:             os.Getenv("NOTION_DB_ID"),
		TwitterAPIKey:          os.Getenv("TWITTER_API_KEY"),
		TwitterAPISecret:       os.Getenv("TWITTER_API_SECRET"),
		TwitterAccessToken:     os.Getenv("TWITTER_ACCESS_TOKEN"),
		TwitterAccessSecret:    os.Getenv("TWITTER_ACCESS_SECRET"),
		TickIntervalStr:        os.Getenv("TICK_INTERVAL"),
		StoreOpTimeoutStr:      os.Getenv("STORE_OP_TIMEOUT"),
		PublishTimeoutStr:      os.Getenv("PUBLISH_TIMEOUT"),
		HTTPShutdownTimeoutStr: os.Getenv("HTTP_SHUTDOWN_TIMEOUT"),
		MetricsEnabled:         os.Getenv("METRICS_ENABLED") == "true",
		MetricsPath:            os.Getenv("METRICS_PATH"),
		MetricsPort:            os.Getenv("METRICS_PORT"),
		RedisAddr:              os.Getenv("REDIS_ADDR"),
		AnalyticsWindowStr:     os.Getenv("ANALYTICS_WINDOW"),
		AnalyticsRetentionStr:  os.Getenv("ANALYTICS_RETENTION"),
		TweetProperty:          os.Getenv("TWEET_PROPERTY"),
		ScheduledProperty:      os.Getenv("SCHEDULED_PROPERTY"),
		TimeProperty:           os.Getenv("TIME_PROPERTY"),
		PublishedProperty:      os.Getenv("PUBLISHED_PROPERTY"),
	}

	if cfg.TickIntervalStr == "" {
		cfg.TickIntervalStr = "60s"
	}
	if cfg.StoreOpTimeoutStr == "" {
		cfg.StoreOpTimeoutStr = "10s"
	}
	if cfg.PublishTimeoutStr == "" {
		cfg.PublishTimeoutStr = "30s"
	}
	if cfg.HTTPShutdownTimeoutStr == "" {
		cfg.HTTPShutdownTimeoutStr = "10s"
	}
	if cfg.MetricsPath == "" {
		cfg.MetricsPath = "/metrics"
	}
	if cfg.MetricsPort == "" {
		cfg.MetricsPort = "9090"
	}
	if cfg.AnalyticsWindowStr == "" {
		cfg.AnalyticsWindowStr = "1h"
	}
	if cfg.AnalyticsRetentionStr == "" {
		cfg.AnalyticsRetentionStr = "720h"
	}
	if cfg.TweetProperty == "" {
		cfg.TweetProperty = "Tweet"
	}
	if cfg.ScheduledProperty == "" {
		cfg.ScheduledProperty = "Scheduled"
	}
	if cfg.TimeProperty == "" {
		cfg.TimeProperty = "Time"
	}
	if cfg.PublishedProperty == "" {
		cfg.PublishedProperty = "isPublished"
	}

	// Parse durations; validation is handled separately by Validate().
	if d, err := time.ParseDuration(cfg.TickIntervalStr); err == nil {
		cfg.TickInterval = d
	}
	if d, err := time.ParseDuration(cfg.StoreOpTimeoutStr); err == nil {
		cfg.StoreOpTimeout = d
	}
	if d, err := time.ParseDuration(cfg.PublishTimeoutStr); err == nil {
		cfg.PublishTimeout = d
	}
	if d, err := time.ParseDuration(cfg.HTTPShutdownTimeoutStr); err == nil {
		cfg.HTTPShutdownTimeout = d
	}
	if d, err := time.ParseDuration(cfg.AnalyticsWindowStr); err == nil {
		cfg.AnalyticsWindow = d
	}
	if d, err := time.ParseDuration(cfg.AnalyticsRetentionStr); err == nil {
		cfg.AnalyticsRetention = d
	}

	return cfg
}

// MaskedJSON returns the configuration as JSON with secrets masked.
func (c Config) MaskedJSON() ([]byte, error) {
	masked := struct {
		NotionAPIKey        string `json:"notion_api_key"`
		NotionDBID          string `json:"notion_db_id"`
		TwitterAPIKey       string `json:"twitter_api_key"`
		TwitterAPISecret    string `json:"twitter_api_secret"`
		TwitterAccessToken  string `json:"twitter_access_token"`
		TwitterAccessSecret string `json:"twitter_access_secret"`
		TickInterval        string `json:"tick_interval"`
		StoreOpTimeout      string `json:"store_op_timeout"`
		PublishTimeout      string `json:"publish_timeout"`
		HTTPShutdownTimeout string `json:"http_shutdown_timeout"`
		MetricsEnabled      bool   `json:"metrics_enabled"`
		MetricsPath         string `json:"metrics_path"`
		MetricsPort         string `json:"metrics_port"`
		RedisAddr           string `json:"redis_addr,omitempty"`
		AnalyticsWindow     string `json:"analytics_window"`
		AnalyticsRetention  string `json:"analytics_retention"`
		TweetProperty       string `json:"tweet_property"`
		ScheduledProperty   string `json:"scheduled_property"`
		TimeProperty        string `json:"time_property"`
		PublishedProperty   string `json:"published_property"`
	}{
		NotionAPIKey:        maskSecret(c.NotionAPIKey),
		NotionDBID:          c.NotionDBID,
		TwitterAPIKey:       maskSecret(c.TwitterAPIKey),
		TwitterAPISecret:    maskSecret(c.TwitterAPISecret),
		TwitterAccessToken:  maskSecret(c.TwitterAccessToken),
		TwitterAccessSecret: maskSecret(c.TwitterAccessSecret),
		TickInterval:        c.TickIntervalStr,
		StoreOpTimeout:      c.StoreOpTimeoutStr,
		PublishTimeout:      c.PublishTimeoutStr,
		HTTPShutdownTimeout: c.HTTPShutdownTimeoutStr,
		MetricsEnabled:      c.MetricsEnabled,
		MetricsPath:         c.MetricsPath,
		MetricsPort:         c.MetricsPort,
		RedisAddr:           c.RedisAddr,
		AnalyticsWindow:     c.AnalyticsWindowStr,
		AnalyticsRetention:  c.AnalyticsRetentionStr,
		TweetProperty:       c.TweetProperty,
		ScheduledProperty:   c.ScheduledProperty,
		TimeProperty:        c.TimeProperty,
		PublishedProperty:   c.PublishedProperty,
	}
	return json.MarshalIndent(masked, "", "  ")
}

// maskSecret hides a secret value, keeping a short prefix for recognizability
// (Notion keys start with "secret_" or "ntn_").
func maskSecret(s string) string {
	if len(s) > 4 {
		return s[:4] + "***"
	}
	if s == "" {
		return ""
	}
	return "***"
}
