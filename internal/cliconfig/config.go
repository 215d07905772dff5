// Package cliconfig loads CLI configuration from file, environment, and
// flags, with flags taking precedence over environment over file.
package cliconfig

import (
	"fmt"
	"strconv"
	"time"
)

// Config holds CLI configuration for chat-notifier.
type Config struct {
	WebhookURL   string
	Destinations map[string]string

	Level      string
	MaxMessage int

	Timeout    time.Duration
	RetryMax   int
	RetryBase  time.Duration
	RatePerSec int

	Idempotency    bool
	IdempotencyTTL time.Duration
	SweepInterval  time.Duration

	Batch         bool
	BatchSize     int
	BatchInterval time.Duration
	FlushOnExit   bool

	WatchConfig bool
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Level:          "all",
		MaxMessage:     4096,
		Timeout:        10 * time.Second,
		RetryMax:       3,
		RetryBase:      500 * time.Millisecond,
		Idempotency:    true,
		IdempotencyTTL: 24 * time.Hour,
		SweepInterval:  5 * time.Minute,
		Batch:          true,
		BatchSize:      10,
		BatchInterval:  5 * time.Second,
		FlushOnExit:    true,
	}
}

// Validate checks the configuration for errors.
// URL validation happens in the notifier; this catches CLI-level mistakes.
func (c *Config) Validate() error {
	if c.WebhookURL == "" && len(c.Destinations) == 0 {
		return fmt.Errorf("webhook-url or at least one destination is required")
	}
	if c.Level != "all" && c.Level != "important" {
		return fmt.Errorf("level must be \"all\" or \"important\", got %q", c.Level)
	}
	if c.RetryMax < 1 {
		return fmt.Errorf("retry-max must be at least 1")
	}
	return nil
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
// Used for environment variables that come as strings.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
