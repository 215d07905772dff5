// Package batch implements the batching queue and flush scheduler.
//
// Items are accumulated in insertion order and handed to a caller-supplied
// flush callback when a size threshold is reached, when the flush interval
// elapses, on manual Flush, or on Destroy. At most one flush executes its
// callback at a time.
package batch

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/macielcr7/exa-chat-notifier/internal/domain"
	"github.com/macielcr7/exa-chat-notifier/pkg/log"
)

// Default scheduler configuration values.
const (
	DefaultSize     = 10
	DefaultInterval = 5 * time.Second
)

// FlushFunc receives the drained batch. Items are in submission order.
// Panics are recovered and logged; they never leave the scheduler stuck.
type FlushFunc func(ctx context.Context, items []domain.BatchItem)

// Config holds scheduler settings.
type Config struct {
	// Size is the queue length that triggers an asynchronous flush.
	// Default: 10.
	Size int

	// Interval is the cadence of time-triggered flushes. Default: 5s.
	Interval time.Duration

	// FlushOnDestroy controls whether Destroy performs one final flush of
	// pending items. When false, pending items are discarded unsent.
	FlushOnDestroy bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Size:           DefaultSize,
		Interval:       DefaultInterval,
		FlushOnDestroy: true,
	}
}

// Scheduler accumulates batch items and coordinates flushes.
//
// The queue is mutated only by Add (append) and by a flush (atomic drain);
// the size threshold is a trigger, not a hard bound, so the queue may
// transiently exceed it while an asynchronous flush is pending.
type Scheduler struct {
	mu        sync.Mutex
	queue     []domain.BatchItem
	flushing  bool
	flushDone chan struct{}

	size           int
	interval       time.Duration
	flushOnDestroy bool
	onFlush        FlushFunc

	clock  clockwork.Clock
	logger log.Logger

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// New creates a scheduler and starts its interval timer.
// A nil clock selects the real clock; a nil logger discards output.
func New(cfg Config, onFlush FlushFunc, clock clockwork.Clock, logger log.Logger) *Scheduler {
	if cfg.Size <= 0 {
		cfg.Size = DefaultSize
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = log.NewNoopLogger()
	}

	s := &Scheduler{
		size:           cfg.Size,
		interval:       cfg.Interval,
		flushOnDestroy: cfg.FlushOnDestroy,
		onFlush:        onFlush,
		clock:          clock,
		logger:         logger,
		stop:           make(chan struct{}),
		done:           make(chan struct{}),
	}

	go s.tickLoop()

	return s
}

// Add appends a payload to the tail of the queue. If the queue has reached
// the size threshold after the append, a flush is handed off to a new
// goroutine; Add itself never blocks and is never re-entered by the flush.
func (s *Scheduler) Add(p domain.Payload, destination string) {
	item := domain.BatchItem{Payload: p.Clone(), Destination: destination}

	s.mu.Lock()
	s.queue = append(s.queue, item)
	trigger := len(s.queue) >= s.size
	s.mu.Unlock()

	if trigger {
		go s.Flush(context.Background())
	}
}

// Flush drains the queue and invokes the flush callback with the drained
// batch. When a flush is already in progress or the queue is empty, Flush
// is a no-op that returns immediately; it is safe to call concurrently.
func (s *Scheduler) Flush(ctx context.Context) {
	s.mu.Lock()
	if s.flushing || len(s.queue) == 0 {
		s.mu.Unlock()
		return
	}
	batch := s.queue
	s.queue = nil
	s.flushing = true
	done := make(chan struct{})
	s.flushDone = done
	s.mu.Unlock()

	// The flushing flag is released on every exit path, panics included.
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("flush callback panicked", log.Any("panic", r))
		}
		s.mu.Lock()
		s.flushing = false
		s.mu.Unlock()
		close(done)
	}()

	s.logger.Debug("flushing batch", log.Int("items", len(batch)))
	s.onFlush(ctx, batch)
}

// Len returns the number of queued items not yet claimed by a flush.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Flushing reports whether a flush is currently executing its callback.
func (s *Scheduler) Flushing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushing
}

// Destroy stops the interval timer, waits for any in-flight flush, then
// either flushes pending items (FlushOnDestroy) or discards them.
// After Destroy the scheduler schedules no further flushes. Safe to call
// multiple times.
func (s *Scheduler) Destroy(ctx context.Context) {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
	<-s.done

	s.mu.Lock()
	inFlight := s.flushDone
	s.mu.Unlock()
	if inFlight != nil {
		<-inFlight
	}

	if s.flushOnDestroy {
		s.Flush(ctx)
		return
	}

	s.mu.Lock()
	dropped := len(s.queue)
	s.queue = nil
	s.mu.Unlock()

	if dropped > 0 {
		s.logger.Warn("discarded queued items on destroy", log.Int("items", dropped))
	}
}

// tickLoop triggers a flush every interval while the queue is non-empty.
// The empty-queue check inside Flush guarantees the callback never fires
// for an empty batch.
func (s *Scheduler) tickLoop() {
	defer close(s.done)

	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.Chan():
			s.Flush(context.Background())
		}
	}
}
