package notifier

import (
	"fmt"
	"net/url"
	"time"

	"github.com/macielcr7/exa-chat-notifier/internal/batch"
	"github.com/macielcr7/exa-chat-notifier/internal/cache"
	"github.com/macielcr7/exa-chat-notifier/internal/domain"
)

// Level selects which events are dispatched.
type Level string

// Dispatch levels.
const (
	// LevelAll dispatches every event.
	LevelAll Level = "all"

	// LevelImportant dispatches only events the schema classifies as
	// important. Events without an extractable identifier are never
	// filtered.
	LevelImportant Level = "important"
)

// Default configuration values.
const (
	DefaultMaxMessage = 4096
	DefaultTimeout    = 10 * time.Second
	DefaultRetryMax   = 3
	DefaultRetryBase  = 500 * time.Millisecond
)

// IdempotencyConfig controls duplicate suppression.
type IdempotencyConfig struct {
	// Enabled turns the idempotency cache on. Suppression additionally
	// requires the schema to supply an idempotency key.
	Enabled bool

	// TTL is how long a delivered event's key suppresses duplicates.
	// Default: 24h.
	TTL time.Duration

	// SweepInterval is the cadence of the background sweep that removes
	// expired keys. Default: 5m.
	SweepInterval time.Duration
}

// BatchConfig controls batching of outgoing notifications.
type BatchConfig struct {
	// Enabled turns batching on; Notify then enqueues and returns without
	// waiting for delivery.
	Enabled bool

	// Size is the queue length that triggers a flush. Default: 10.
	Size int

	// Interval is the cadence of time-triggered flushes. Default: 5s.
	Interval time.Duration

	// FlushOnDestroy controls whether Destroy delivers pending items.
	FlushOnDestroy bool
}

// Config holds the notifier configuration.
// Use DefaultConfig() to get a Config with sensible defaults.
type Config struct {
	// Level filters events by importance. Default: LevelAll.
	Level Level

	// MaxMessage bounds free-text fields in built cards, in characters.
	// Default: 4096.
	MaxMessage int

	// DefaultWebhookURL is the destination used when no name is given or
	// a named destination is absent.
	DefaultWebhookURL string

	// Destinations maps destination names to webhook URLs.
	Destinations map[string]string

	// Timeout bounds each delivery attempt. Default: 10s.
	Timeout time.Duration

	// RetryMax is the total number of delivery attempts, the first one
	// included. Default: 3.
	RetryMax int

	// RetryBase is the wait before the second attempt; each further wait
	// doubles. Default: 500ms.
	RetryBase time.Duration

	// RatePerSec caps outbound requests per second. Zero disables.
	RatePerSec int

	// Idempotency controls duplicate suppression.
	Idempotency IdempotencyConfig

	// Batch controls batching.
	Batch BatchConfig
}

// DefaultConfig returns a Config with sensible defaults: all events,
// idempotency and batching enabled, pending items flushed on destroy.
func DefaultConfig() Config {
	return Config{
		Level:      LevelAll,
		MaxMessage: DefaultMaxMessage,
		Timeout:    DefaultTimeout,
		RetryMax:   DefaultRetryMax,
		RetryBase:  DefaultRetryBase,
		Idempotency: IdempotencyConfig{
			Enabled:       true,
			TTL:           cache.DefaultTTL,
			SweepInterval: cache.DefaultSweepInterval,
		},
		Batch: BatchConfig{
			Enabled:        true,
			Size:           batch.DefaultSize,
			Interval:       batch.DefaultInterval,
			FlushOnDestroy: true,
		},
	}
}

// SetDefaults fills zero values with defaults. Boolean switches are left
// untouched; DefaultConfig() is the place where they default on.
func (c *Config) SetDefaults() {
	if c.Level == "" {
		c.Level = LevelAll
	}
	if c.MaxMessage <= 0 {
		c.MaxMessage = DefaultMaxMessage
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.RetryMax < 1 {
		c.RetryMax = DefaultRetryMax
	}
	if c.RetryBase <= 0 {
		c.RetryBase = DefaultRetryBase
	}
	if c.Idempotency.TTL <= 0 {
		c.Idempotency.TTL = cache.DefaultTTL
	}
	if c.Idempotency.SweepInterval <= 0 {
		c.Idempotency.SweepInterval = cache.DefaultSweepInterval
	}
	if c.Batch.Size <= 0 {
		c.Batch.Size = batch.DefaultSize
	}
	if c.Batch.Interval <= 0 {
		c.Batch.Interval = batch.DefaultInterval
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Level != LevelAll && c.Level != LevelImportant {
		return fmt.Errorf("%w: unknown level %q", domain.ErrInvalidConfig, c.Level)
	}
	if c.DefaultWebhookURL != "" {
		if err := validateWebhookURL(c.DefaultWebhookURL); err != nil {
			return fmt.Errorf("%w: default destination: %v", domain.ErrInvalidConfig, err)
		}
	}
	for name, u := range c.Destinations {
		if name == "" {
			return fmt.Errorf("%w: destination with empty name", domain.ErrInvalidConfig)
		}
		if err := validateWebhookURL(u); err != nil {
			return fmt.Errorf("%w: destination %q: %v", domain.ErrInvalidConfig, name, err)
		}
	}
	return nil
}

// validateWebhookURL rejects non-absolute and non-HTTP(S) URLs.
func validateWebhookURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("parse url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host in %q", raw)
	}
	return nil
}
