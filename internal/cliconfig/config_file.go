package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	WebhookURL   string            `toml:"webhook_url"`
	Destinations map[string]string `toml:"destinations"`

	Level      string `toml:"level"`
	MaxMessage int    `toml:"max_message"`

	Timeout    string `toml:"timeout"`
	RetryMax   int    `toml:"retry_max"`
	RetryBase  string `toml:"retry_base"`
	RatePerSec int    `toml:"rate_per_sec"`

	Idempotency    *bool  `toml:"idempotency"`
	IdempotencyTTL string `toml:"idempotency_ttl"`
	SweepInterval  string `toml:"sweep_interval"`

	Batch         *bool  `toml:"batch"`
	BatchSize     int    `toml:"batch_size"`
	BatchInterval string `toml:"batch_interval"`
	FlushOnExit   *bool  `toml:"flush_on_exit"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.chat-notifier/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".chat-notifier", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("webhook-url", fc.WebhookURL, &cfg.WebhookURL)
	s.setString("level", fc.Level, &cfg.Level)

	// Destinations merge under the flag-provided ones.
	if len(fc.Destinations) > 0 {
		if cfg.Destinations == nil {
			cfg.Destinations = map[string]string{}
		}
		for name, url := range fc.Destinations {
			if _, ok := cfg.Destinations[name]; !ok {
				cfg.Destinations[name] = url
			}
		}
	}

	s.setInt("max-message", fc.MaxMessage, &cfg.MaxMessage)
	s.setInt("retry-max", fc.RetryMax, &cfg.RetryMax)
	s.setInt("rate", fc.RatePerSec, &cfg.RatePerSec)
	s.setInt("batch-size", fc.BatchSize, &cfg.BatchSize)

	if err := s.setDuration("timeout", fc.Timeout, &cfg.Timeout); err != nil {
		return err
	}
	if err := s.setDuration("retry-base", fc.RetryBase, &cfg.RetryBase); err != nil {
		return err
	}
	if err := s.setDuration("idempotency-ttl", fc.IdempotencyTTL, &cfg.IdempotencyTTL); err != nil {
		return err
	}
	if err := s.setDuration("sweep-interval", fc.SweepInterval, &cfg.SweepInterval); err != nil {
		return err
	}
	if err := s.setDuration("batch-interval", fc.BatchInterval, &cfg.BatchInterval); err != nil {
		return err
	}

	s.setBool("idempotency", fc.Idempotency, &cfg.Idempotency)
	s.setBool("batch", fc.Batch, &cfg.Batch)
	s.setBool("flush-on-exit", fc.FlushOnExit, &cfg.FlushOnExit)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
