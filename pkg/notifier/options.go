package notifier

import (
	"github.com/jonboulle/clockwork"

	"github.com/macielcr7/exa-chat-notifier/internal/domain"
	"github.com/macielcr7/exa-chat-notifier/internal/ports"
	"github.com/macielcr7/exa-chat-notifier/pkg/log"
)

// Re-export core types for convenient access without importing internal
// packages.
type (
	// Payload is an opaque, caller-defined event record.
	Payload = domain.Payload

	// BatchItem pairs a payload with its destination name.
	BatchItem = domain.BatchItem

	// DeliveryResult describes one accepted delivery.
	DeliveryResult = domain.DeliveryResult

	// DeliveryError is returned when all delivery attempts are exhausted.
	DeliveryError = domain.DeliveryError

	// Logger is the structured logging interface from pkg/log.
	Logger = log.Logger
)

// Domain errors, checked with errors.Is.
var (
	ErrNoDestination = domain.ErrNoDestination
	ErrInvalidConfig = domain.ErrInvalidConfig
	ErrDestroyed     = domain.ErrDestroyed
)

// SuccessFunc is invoked after each accepted delivery.
type SuccessFunc func(item BatchItem, result *DeliveryResult)

// ErrorFunc is invoked for each failed delivery. In batch mode this is the
// only failure signal; in synchronous mode the error is also returned from
// Notify.
type ErrorFunc func(item BatchItem, err error)

// Option configures optional behavior of the Notifier.
type Option func(*options)

// options holds the optional configuration for a Notifier instance.
type options struct {
	logger     log.Logger
	httpClient ports.HTTPClient
	clock      clockwork.Clock
	schema     any
	builder    ports.CardBuilder
	resolver   ports.DestinationResolver
	sender     ports.CardSender
	onSuccess  SuccessFunc
	onError    ErrorFunc
}

// defaultOptions returns options with sensible defaults.
func defaultOptions() options {
	return options{
		logger: log.NewNoopLogger(),
		clock:  clockwork.NewRealClock(),
	}
}

// WithLogger sets a custom logger for structured logging.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client for webhook delivery.
// If not provided, a default client is used; per-attempt timeouts are
// applied through the request context either way.
func WithHTTPClient(client ports.HTTPClient) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithClock sets the clock used for cache expiry, sweep and flush timers,
// and backoff waits. Intended for tests.
func WithClock(clock clockwork.Clock) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// WithSchema sets the schema value probed for the optional capabilities:
// card building, importance classification, idempotency keying, and
// destination naming. Each capability is independently optional; absent
// capabilities fall back to no filtering, no idempotency, and the default
// destination. If not provided, schema.NewDefault() is used.
func WithSchema(s any) Option {
	return func(o *options) {
		o.schema = s
	}
}

// WithCardBuilder overrides the card builder independently of the schema.
func WithCardBuilder(b ports.CardBuilder) Option {
	return func(o *options) {
		o.builder = b
	}
}

// WithResolver overrides the destination resolver built from the
// configuration's destination map.
func WithResolver(r ports.DestinationResolver) Option {
	return func(o *options) {
		o.resolver = r
	}
}

// WithSender overrides the delivery client. Intended for tests and for
// transports other than plain HTTP POST.
func WithSender(s ports.CardSender) Option {
	return func(o *options) {
		o.sender = s
	}
}

// WithOnSuccess sets the callback invoked after each accepted delivery.
func WithOnSuccess(fn SuccessFunc) Option {
	return func(o *options) {
		o.onSuccess = fn
	}
}

// WithOnError sets the callback invoked for each failed delivery.
func WithOnError(fn ErrorFunc) Option {
	return func(o *options) {
		o.onError = fn
	}
}
