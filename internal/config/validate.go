package config

import (
	"fmt"
	"time"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	msg := fmt.Sprintf("%d validation errors:", len(e))
	for _, err := range e {
		msg += "\n  - " + err.Error()
	}
	return msg
}

// Validate checks the configuration for errors.
// Missing credentials are the only fatal condition the process has: everything
// after startup recovers locally and keeps the loop alive.
// Returns nil if valid, or ValidationErrors if invalid.
func Validate(cfg Config) error {
	var errs ValidationErrors

	required := []struct {
		field, value string
	}{
		{"NOTION_API_KEY", cfg.NotionAPIKey},
		{"NOTION_DB_ID", cfg.NotionDBID},
		{"TWITTER_API_KEY", cfg.TwitterAPIKey},
		{"TWITTER_API_SECRET", cfg.TwitterAPISecret},
		{"TWITTER_ACCESS_TOKEN", cfg.TwitterAccessToken},
		{"TWITTER_ACCESS_SECRET", cfg.TwitterAccessSecret},
	}
	for _, r := range required {
		if r.value == "" {
			errs = append(errs, ValidationError{Field: r.field, Message: "required"})
		}
	}

	for _, d := range []struct {
		field, value string
	}{
		{"TICK_INTERVAL", cfg.TickIntervalStr},
		{"STORE_OP_TIMEOUT", cfg.StoreOpTimeoutStr},
		{"PUBLISH_TIMEOUT", cfg.PublishTimeoutStr},
		{"HTTP_SHUTDOWN_TIMEOUT", cfg.HTTPShutdownTimeoutStr},
		{"ANALYTICS_RETENTION", cfg.AnalyticsRetentionStr},
	} {
		if d.value == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.value)
		if err != nil {
			errs = append(errs, ValidationError{
				Field:   d.field,
				Message: fmt.Sprintf("invalid duration: %v", err),
			})
		} else if parsed <= 0 {
			errs = append(errs, ValidationError{Field: d.field, Message: "must be positive"})
		}
	}

	// The analytics window maps to a Redis key bucket; only a few sizes are meaningful.
	if cfg.AnalyticsWindowStr != "" {
		switch cfg.AnalyticsWindow {
		case time.Minute, 5 * time.Minute, time.Hour:
		default:
			errs = append(errs, ValidationError{
				Field:   "ANALYTICS_WINDOW",
				Message: fmt.Sprintf("must be '1m', '5m' or '1h', got %q", cfg.AnalyticsWindowStr),
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
