// Package notifier implements the notification dispatcher: the public
// Notify/Flush/Destroy contract wiring the idempotency cache, the batch
// scheduler, and the retrying webhook delivery client.
//
// Example usage:
//
//	cfg := notifier.DefaultConfig()
//	cfg.DefaultWebhookURL = "https://chat.example.com/v1/rooms/ops/messages"
//	n, err := notifier.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer n.Destroy(context.Background())
//
//	_ = n.Notify(ctx, notifier.Payload{
//	    "event":  "completed",
//	    "bucket": "uploads",
//	    "object": "report.csv",
//	})
package notifier

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/sourcegraph/conc/pool"

	httpAdapter "github.com/macielcr7/exa-chat-notifier/internal/adapters/http"
	"github.com/macielcr7/exa-chat-notifier/internal/batch"
	"github.com/macielcr7/exa-chat-notifier/internal/cache"
	"github.com/macielcr7/exa-chat-notifier/internal/domain"
	"github.com/macielcr7/exa-chat-notifier/internal/ports"
	"github.com/macielcr7/exa-chat-notifier/pkg/log"
	"github.com/macielcr7/exa-chat-notifier/pkg/schema"
)

// Notifier dispatches event payloads to chat webhook destinations.
//
// Per payload, Notify applies the importance filter, then the idempotency
// check, then either enqueues into the batch scheduler (returning without
// waiting for delivery) or delivers synchronously through the retrying
// client. Use New() to create an instance and Destroy() to tear it down.
type Notifier struct {
	cfg    Config
	logger log.Logger

	builder  ports.CardBuilder
	resolver ports.DestinationResolver
	sender   ports.CardSender

	// Optional schema capabilities; nil when the schema does not provide
	// them.
	classifier ports.ImportanceClassifier
	keyer      ports.IdempotencyKeyer
	namer      ports.DestinationNamer

	// cache and scheduler are nil when the corresponding feature is
	// disabled.
	cache     *cache.Cache
	scheduler *batch.Scheduler

	onSuccess SuccessFunc
	onError   ErrorFunc

	destroyed   atomic.Bool
	destroyOnce sync.Once
}

// New creates a Notifier with the given configuration.
// Returns an error if configuration is invalid.
func New(cfg Config, opts ...Option) (*Notifier, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.schema == nil {
		o.schema = schema.NewDefault()
	}

	n := &Notifier{
		cfg:       cfg,
		logger:    o.logger,
		onSuccess: o.onSuccess,
		onError:   o.onError,
	}

	// Probe the schema for each optional capability.
	n.classifier, _ = o.schema.(ports.ImportanceClassifier)
	n.keyer, _ = o.schema.(ports.IdempotencyKeyer)
	n.namer, _ = o.schema.(ports.DestinationNamer)

	n.builder = o.builder
	if n.builder == nil {
		n.builder, _ = o.schema.(ports.CardBuilder)
	}
	if n.builder == nil {
		return nil, fmt.Errorf("%w: schema provides no card builder", domain.ErrInvalidConfig)
	}

	n.resolver = o.resolver
	if n.resolver == nil {
		n.resolver = newMapResolver(cfg.DefaultWebhookURL, cfg.Destinations)
	}

	n.sender = o.sender
	if n.sender == nil {
		n.sender = httpAdapter.NewWebhookSender(httpAdapter.Config{
			Timeout:        cfg.Timeout,
			MaxAttempts:    cfg.RetryMax,
			InitialBackoff: cfg.RetryBase,
			RatePerSec:     cfg.RatePerSec,
		}, o.httpClient, o.clock, o.logger)
	}

	if cfg.Idempotency.Enabled {
		n.cache = cache.New(cfg.Idempotency.TTL, cfg.Idempotency.SweepInterval, o.clock, o.logger)
	}
	if cfg.Batch.Enabled {
		n.scheduler = batch.New(batch.Config{
			Size:           cfg.Batch.Size,
			Interval:       cfg.Batch.Interval,
			FlushOnDestroy: cfg.Batch.FlushOnDestroy,
		}, n.deliverBatch, o.clock, o.logger)
	}

	return n, nil
}

// Notify dispatches a payload to the destination named by the schema, or
// the default destination. In batch mode the payload is enqueued and Notify
// returns immediately; delivery failures are reported only through the
// error callback. In synchronous mode Notify blocks through retries and
// returns the delivery error, if any.
func (n *Notifier) Notify(ctx context.Context, p Payload) error {
	return n.notify(ctx, p, "")
}

// NotifyTo dispatches a payload to the named destination, falling back to
// the default destination when the name is not configured.
func (n *Notifier) NotifyTo(ctx context.Context, destination string, p Payload) error {
	return n.notify(ctx, p, destination)
}

func (n *Notifier) notify(ctx context.Context, p Payload, destination string) error {
	if n.destroyed.Load() {
		return domain.ErrDestroyed
	}

	// Importance filter. Payloads without an extractable event identifier
	// are never filtered; the identifier lookup convention is documented
	// on Payload.EventID.
	if n.cfg.Level == LevelImportant && n.classifier != nil {
		if id, ok := p.EventID(); ok && !n.classifier.IsImportantEvent(id) {
			n.logger.Debug("event filtered by level", log.String("event", id))
			return nil
		}
	}

	// Idempotency check.
	var (
		key     string
		haveKey bool
	)
	if n.cache != nil && n.keyer != nil {
		if k, ok := n.keyer.IdempotencyKey(p); ok {
			key, haveKey = k, true
			if n.cache.Has(k) {
				n.logger.Debug("duplicate suppressed", log.String("key", k))
				return nil
			}
		}
	}

	if destination == "" && n.namer != nil {
		if name, ok := n.namer.DestinationName(p); ok {
			destination = name
		}
	}

	if n.scheduler != nil {
		n.scheduler.Add(p, destination)
		// Mark the key at enqueue time so a duplicate arriving before the
		// batch flushes is also suppressed.
		if haveKey {
			n.cache.Set(key)
		}
		return nil
	}

	item := domain.BatchItem{Payload: p, Destination: destination}
	result, err := n.deliver(ctx, item)
	if err != nil {
		n.reportError(item, err)
		return err
	}
	if haveKey {
		n.cache.Set(key)
	}
	n.reportSuccess(item, result)
	return nil
}

// Flush delivers all queued items now. Without batching it is a no-op.
// Returns once the flush has completed.
func (n *Notifier) Flush(ctx context.Context) {
	if n.scheduler != nil {
		n.scheduler.Flush(ctx)
	}
}

// Destroy tears the notifier down: the batch scheduler first, so pending
// items are flushed while the idempotency cache is still live, then the
// cache. Safe to call multiple times; in-flight deliveries are waited for,
// not cancelled.
func (n *Notifier) Destroy(ctx context.Context) {
	n.destroyOnce.Do(func() {
		n.destroyed.Store(true)
		if n.scheduler != nil {
			n.scheduler.Destroy(ctx)
		}
		if n.cache != nil {
			n.cache.Close()
		}
	})
}

// deliver builds the card, resolves the destination URL, and sends.
func (n *Notifier) deliver(ctx context.Context, item domain.BatchItem) (*domain.DeliveryResult, error) {
	card, err := n.builder.BuildCard(item.Payload, n.cfg.MaxMessage)
	if err != nil {
		return nil, fmt.Errorf("build card: %w", err)
	}

	url, err := n.resolver.Resolve(item.Destination)
	if err != nil {
		return nil, err
	}

	result, err := n.sender.Send(ctx, url, card)
	if err != nil {
		if de, ok := err.(*domain.DeliveryError); ok && de.Destination == "" {
			de.Destination = item.Destination
		}
		return nil, err
	}
	return result, nil
}

// deliverBatch fans a flushed batch out to its destinations. Items are
// delivered concurrently; each failure is isolated and reported through
// the error callback, so the flush as a whole always completes.
func (n *Notifier) deliverBatch(ctx context.Context, items []domain.BatchItem) {
	if len(items) == 0 {
		return
	}

	workers := len(items)
	if max := runtime.GOMAXPROCS(0); workers > max {
		workers = max
	}

	p := pool.New().WithMaxGoroutines(workers)
	for _, item := range items {
		item := item
		p.Go(func() {
			result, err := n.deliver(ctx, item)
			if err != nil {
				n.logger.Warn("batched delivery failed",
					log.String("destination", item.Destination),
					log.Err(err))
				n.reportError(item, err)
				return
			}
			n.reportSuccess(item, result)
		})
	}
	p.Wait()
}

func (n *Notifier) reportSuccess(item domain.BatchItem, result *domain.DeliveryResult) {
	if n.onSuccess != nil {
		n.onSuccess(item, result)
	}
}

func (n *Notifier) reportError(item domain.BatchItem, err error) {
	if n.onError != nil {
		n.onError(item, err)
	}
}
