package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (CHAT_NOTIFIER_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("webhook-url", os.Getenv("CHAT_NOTIFIER_WEBHOOK_URL"), &cfg.WebhookURL)
	s.setString("level", os.Getenv("CHAT_NOTIFIER_LEVEL"), &cfg.Level)

	if err := s.setIntFromString("max-message", os.Getenv("CHAT_NOTIFIER_MAX_MESSAGE"), &cfg.MaxMessage); err != nil {
		return err
	}
	if err := s.setIntFromString("retry-max", os.Getenv("CHAT_NOTIFIER_RETRY_MAX"), &cfg.RetryMax); err != nil {
		return err
	}
	if err := s.setIntFromString("rate", os.Getenv("CHAT_NOTIFIER_RATE_PER_SEC"), &cfg.RatePerSec); err != nil {
		return err
	}
	if err := s.setIntFromString("batch-size", os.Getenv("CHAT_NOTIFIER_BATCH_SIZE"), &cfg.BatchSize); err != nil {
		return err
	}

	if err := s.setDuration("timeout", os.Getenv("CHAT_NOTIFIER_TIMEOUT"), &cfg.Timeout); err != nil {
		return err
	}
	if err := s.setDuration("retry-base", os.Getenv("CHAT_NOTIFIER_RETRY_BASE"), &cfg.RetryBase); err != nil {
		return err
	}
	if err := s.setDuration("idempotency-ttl", os.Getenv("CHAT_NOTIFIER_IDEMPOTENCY_TTL"), &cfg.IdempotencyTTL); err != nil {
		return err
	}
	if err := s.setDuration("sweep-interval", os.Getenv("CHAT_NOTIFIER_SWEEP_INTERVAL"), &cfg.SweepInterval); err != nil {
		return err
	}
	if err := s.setDuration("batch-interval", os.Getenv("CHAT_NOTIFIER_BATCH_INTERVAL"), &cfg.BatchInterval); err != nil {
		return err
	}

	s.setBoolFromString("idempotency", os.Getenv("CHAT_NOTIFIER_IDEMPOTENCY"), &cfg.Idempotency)
	s.setBoolFromString("batch", os.Getenv("CHAT_NOTIFIER_BATCH"), &cfg.Batch)
	s.setBoolFromString("flush-on-exit", os.Getenv("CHAT_NOTIFIER_FLUSH_ON_EXIT"), &cfg.FlushOnExit)
	s.setBoolFromString("watch-config", os.Getenv("CHAT_NOTIFIER_WATCH_CONFIG"), &cfg.WatchConfig)

	return nil
}
