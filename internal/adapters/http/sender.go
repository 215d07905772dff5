// Package http implements the retrying webhook delivery adapter.
package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"

	"github.com/macielcr7/exa-chat-notifier/internal/domain"
	"github.com/macielcr7/exa-chat-notifier/internal/ports"
	"github.com/macielcr7/exa-chat-notifier/pkg/log"
)

// Default sender configuration values.
const (
	DefaultTimeout        = 10 * time.Second
	DefaultMaxAttempts    = 3
	DefaultInitialBackoff = 500 * time.Millisecond
)

// Config holds delivery settings.
type Config struct {
	// Timeout bounds each individual attempt. Default: 10s.
	Timeout time.Duration

	// MaxAttempts is the total number of attempts per delivery, the first
	// one included. Default: 3.
	MaxAttempts int

	// InitialBackoff is the wait before the second attempt; each further
	// wait doubles. Default: 500ms.
	InitialBackoff time.Duration

	// RatePerSec caps outbound requests per second across deliveries.
	// Zero disables rate limiting.
	RatePerSec int
}

// WebhookSender implements ports.CardSender over HTTP POST.
//
// Transient failures (network errors and non-2xx responses) are retried
// with pure exponential backoff. The first 2xx response wins; after the
// final attempt the last captured error is returned as a DeliveryError.
type WebhookSender struct {
	client  ports.HTTPClient
	limiter *rate.Limiter
	clock   clockwork.Clock
	logger  log.Logger

	timeout        time.Duration
	maxAttempts    int
	initialBackoff time.Duration
}

// NewWebhookSender creates a sender with the given configuration.
// A nil client selects a default http.Client, a nil clock the real clock,
// and a nil logger discards output.
func NewWebhookSender(cfg Config, client ports.HTTPClient, clock clockwork.Clock, logger log.Logger) *WebhookSender {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = DefaultInitialBackoff
	}
	if client == nil {
		client = &http.Client{}
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = log.NewNoopLogger()
	}

	var limiter *rate.Limiter
	if cfg.RatePerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.RatePerSec)
	}

	return &WebhookSender{
		client:         client,
		limiter:        limiter,
		clock:          clock,
		logger:         logger,
		timeout:        cfg.Timeout,
		maxAttempts:    cfg.MaxAttempts,
		initialBackoff: cfg.InitialBackoff,
	}
}

// Send posts the card to the webhook URL, retrying transient failures.
func (s *WebhookSender) Send(ctx context.Context, url string, card *domain.CardPayload) (*domain.DeliveryResult, error) {
	body, err := json.Marshal(card)
	if err != nil {
		return nil, fmt.Errorf("marshal card: %w", err)
	}

	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = s.initialBackoff
	expo.Multiplier = 2
	expo.RandomizationFactor = 0
	expo.MaxInterval = time.Hour

	start := s.clock.Now()

	var (
		lastErr    error
		lastStatus int
	)
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				return nil, &domain.DeliveryError{Attempts: attempt - 1, Err: err}
			}
		}

		result, status, err := s.post(ctx, url, body)
		if err == nil {
			result.Attempts = attempt
			result.Elapsed = s.clock.Since(start)
			s.logger.Debug("card delivered",
				log.String("request_id", result.RequestID),
				log.Int("status", result.StatusCode),
				log.Int("attempts", attempt))
			return result, nil
		}
		lastErr = err
		lastStatus = status

		// No sleep after the final attempt.
		if attempt == s.maxAttempts {
			break
		}

		wait := expo.NextBackOff()
		s.logger.Debug("delivery attempt failed, retrying",
			log.Int("attempt", attempt),
			log.Duration("backoff", wait),
			log.Err(err))
		select {
		case <-ctx.Done():
			return nil, &domain.DeliveryError{Attempts: attempt, StatusCode: lastStatus, Err: ctx.Err()}
		case <-s.clock.After(wait):
		}
	}

	return nil, &domain.DeliveryError{Attempts: s.maxAttempts, StatusCode: lastStatus, Err: lastErr}
}

// post performs one delivery attempt with its own timeout.
func (s *WebhookSender) post(ctx context.Context, url string, body []byte) (*domain.DeliveryResult, int, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	req.Header.Set("X-Request-Id", requestID)

	s.logger.Debug("posting card", log.String("request_id", requestID), log.Int("bytes", len(body)))

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode/100 != 2 {
		return nil, resp.StatusCode, fmt.Errorf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	return &domain.DeliveryResult{
		RequestID:  requestID,
		StatusCode: resp.StatusCode,
		Body:       string(respBody),
	}, resp.StatusCode, nil
}
