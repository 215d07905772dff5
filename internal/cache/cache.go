// Package cache implements the in-memory idempotency cache: a mapping from
// opaque string keys to expiry times, with lazy eviction on lookup and a
// periodic background sweep.
package cache

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/macielcr7/exa-chat-notifier/pkg/log"
)

// Default cache configuration values.
const (
	DefaultTTL           = 24 * time.Hour
	DefaultSweepInterval = 5 * time.Minute
)

// Cache stores idempotency keys with a fixed per-instance TTL.
// A key present and not expired means the corresponding logical event has
// already been delivered or queued; it must not be delivered again.
//
// Correctness relies solely on the lazy eviction in Has. The periodic sweep
// is a liveness measure that bounds memory between lookups.
type Cache struct {
	mu      sync.Mutex
	entries map[string]time.Time

	ttl   time.Duration
	sweep time.Duration

	clock  clockwork.Clock
	logger log.Logger

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// New creates a cache and starts its sweep goroutine.
// Zero ttl or sweepInterval select the defaults. A nil clock selects the
// real clock; a nil logger discards output.
func New(ttl, sweepInterval time.Duration, clock clockwork.Clock, logger log.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if sweepInterval <= 0 {
		sweepInterval = DefaultSweepInterval
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = log.NewNoopLogger()
	}

	c := &Cache{
		entries: make(map[string]time.Time),
		ttl:     ttl,
		sweep:   sweepInterval,
		clock:   clock,
		logger:  logger,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}

	go c.sweepLoop()

	return c
}

// Has reports whether key was set and has not expired. A found-but-expired
// entry is removed before returning false, so no caller ever observes an
// expired entry as a hit.
func (c *Cache) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiry, ok := c.entries[key]
	if !ok {
		return false
	}
	if !c.clock.Now().Before(expiry) {
		delete(c.entries, key)
		return false
	}
	return true
}

// Set inserts or overwrites key with expiry = now + ttl. Last write wins.
func (c *Cache) Set(key string) {
	c.mu.Lock()
	c.entries[key] = c.clock.Now().Add(c.ttl)
	c.mu.Unlock()
}

// Len returns the number of stored entries. Between sweeps the count may
// include expired entries that have not been looked up yet.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Close stops the sweep goroutine and drops all entries.
// Safe to call multiple times and from any state.
func (c *Cache) Close() {
	c.stopOnce.Do(func() {
		close(c.stop)
	})
	<-c.done

	c.mu.Lock()
	c.entries = make(map[string]time.Time)
	c.mu.Unlock()
}

// sweepLoop removes expired entries on a fixed cadence until Close.
func (c *Cache) sweepLoop() {
	defer close(c.done)

	ticker := c.clock.NewTicker(c.sweep)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.Chan():
			c.removeExpired()
		}
	}
}

// removeExpired scans all entries and deletes those past their expiry.
func (c *Cache) removeExpired() {
	now := c.clock.Now()

	c.mu.Lock()
	removed := 0
	for key, expiry := range c.entries {
		if !now.Before(expiry) {
			delete(c.entries, key)
			removed++
		}
	}
	remaining := len(c.entries)
	c.mu.Unlock()

	if removed > 0 {
		c.logger.Debug("cache sweep",
			log.Int("removed", removed),
			log.Int("remaining", remaining))
	}
}
