package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		NotionAPIKey:        "secret_abc",
		NotionDBID:          "db-123",
		TwitterAPIKey:       "key",
		TwitterAPISecret:    "keysecret",
		TwitterAccessToken:  "token",
		TwitterAccessSecret: "tokensecret",
	}
}

func TestValidate_Valid(t *testing.T) {
	if err := Validate(validConfig()); err != nil {
		t.Errorf("expected valid config, got: %v", err)
	}
}

func TestValidate_MissingCredentials(t *testing.T) {
	tests := []struct {
		name  string
		unset func(*Config)
		field string
	}{
		{"notion api key", func(c *Config) { c.NotionAPIKey = "" }, "NOTION_API_KEY"},
		{"notion db id", func(c *Config) { c.NotionDBID = "" }, "NOTION_DB_ID"},
		{"twitter api key", func(c *Config) { c.TwitterAPIKey = "" }, "TWITTER_API_KEY"},
		{"twitter api secret", func(c *Config) { c.TwitterAPISecret = "" }, "TWITTER_API_SECRET"},
		{"twitter access token", func(c *Config) { c.TwitterAccessToken = "" }, "TWITTER_ACCESS_TOKEN"},
		{"twitter access secret", func(c *Config) { c.TwitterAccessSecret = "" }, "TWITTER_ACCESS_SECRET"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.unset(&cfg)

			err := Validate(cfg)
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("expected error mentioning %s, got: %v", tt.field, err)
			}
		})
	}
}

func TestValidate_AllCredentialsMissing(t *testing.T) {
	err := Validate(Config{})
	if err == nil {
		t.Fatal("expected validation errors, got nil")
	}

	verrs, ok := err.(ValidationErrors)
	if !ok {
		t.Fatalf("expected ValidationErrors, got %T", err)
	}
	if len(verrs) != 6 {
		t.Errorf("expected 6 errors for 6 missing credentials, got %d: %v", len(verrs), verrs)
	}
}

func TestValidate_InvalidDurations(t *testing.T) {
	cfg := validConfig()
	cfg.TickIntervalStr = "sixty seconds"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error for bad TICK_INTERVAL")
	}
	if !strings.Contains(err.Error(), "TICK_INTERVAL") {
		t.Errorf("expected TICK_INTERVAL error, got: %v", err)
	}
}

func TestValidate_NonPositiveInterval(t *testing.T) {
	cfg := validConfig()
	cfg.TickIntervalStr = "-10s"
	cfg.TickInterval = -10 * time.Second

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error for negative TICK_INTERVAL")
	}
	if !strings.Contains(err.Error(), "must be positive") {
		t.Errorf("expected 'must be positive', got: %v", err)
	}
}

func TestValidate_AnalyticsWindow(t *testing.T) {
	cfg := validConfig()
	cfg.AnalyticsWindowStr = "17m"
	cfg.AnalyticsWindow = 17 * time.Minute

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error for unsupported ANALYTICS_WINDOW")
	}
	if !strings.Contains(err.Error(), "ANALYTICS_WINDOW") {
		t.Errorf("expected ANALYTICS_WINDOW error, got: %v", err)
	}

	for _, ok := range []struct {
		str string
		dur time.Duration
	}{{"1m", time.Minute}, {"5m", 5 * time.Minute}, {"1h", time.Hour}} {
		cfg.AnalyticsWindowStr = ok.str
		cfg.AnalyticsWindow = ok.dur
		if err := Validate(cfg); err != nil {
			t.Errorf("window %s should be valid, got: %v", ok.str, err)
		}
	}
}
