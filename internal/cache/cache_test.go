package cache

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestCache_SetAndHas(t *testing.T) {
	c := New(time.Minute, time.Hour, clockwork.NewFakeClock(), nil)
	defer c.Close()

	if c.Has("k") {
		t.Error("Has() = true for unset key")
	}

	c.Set("k")

	if !c.Has("k") {
		t.Error("Has() = false immediately after Set")
	}
	if got := c.Len(); got != 1 {
		t.Errorf("Len() = %d, want 1", got)
	}
}

func TestCache_TTLExpiry(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := New(50*time.Millisecond, time.Hour, clock, nil)
	defer c.Close()

	c.Set("k")
	clock.Advance(100 * time.Millisecond)

	if c.Has("k") {
		t.Error("Has() = true after TTL elapsed")
	}
	// The failed lookup must also evict the entry.
	if got := c.Len(); got != 0 {
		t.Errorf("Len() = %d after expired lookup, want 0", got)
	}
}

func TestCache_LastWriteWins(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := New(50*time.Millisecond, time.Hour, clock, nil)
	defer c.Close()

	c.Set("k")
	clock.Advance(40 * time.Millisecond)
	c.Set("k")
	clock.Advance(40 * time.Millisecond)

	// 80ms since the first Set, 40ms since the overwrite.
	if !c.Has("k") {
		t.Error("Has() = false, want true: Set must refresh the expiry")
	}
}

func TestCache_PeriodicSweep(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := New(50*time.Millisecond, time.Minute, clock, nil)
	defer c.Close()

	c.Set("a")
	c.Set("b")
	c.Set("c")

	// Wait for the sweeper to arm its ticker before advancing past it.
	clock.BlockUntil(1)
	clock.Advance(time.Minute)

	eventually(t, func() bool { return c.Len() == 0 },
		"sweep did not remove expired entries")
}

func TestCache_SweepKeepsLiveEntries(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := New(time.Hour, time.Minute, clock, nil)
	defer c.Close()

	c.Set("live")

	clock.BlockUntil(1)
	clock.Advance(time.Minute)

	// Give the sweeper a chance to run; the entry must survive.
	time.Sleep(20 * time.Millisecond)
	if !c.Has("live") {
		t.Error("sweep removed an unexpired entry")
	}
}

func TestCache_CloseIdempotent(t *testing.T) {
	c := New(time.Minute, time.Hour, clockwork.NewFakeClock(), nil)

	c.Set("k")
	c.Close()
	c.Close()

	if got := c.Len(); got != 0 {
		t.Errorf("Len() = %d after Close, want 0", got)
	}
}

func TestCache_Defaults(t *testing.T) {
	c := New(0, 0, nil, nil)
	defer c.Close()

	if c.ttl != DefaultTTL {
		t.Errorf("ttl = %v, want %v", c.ttl, DefaultTTL)
	}
	if c.sweep != DefaultSweepInterval {
		t.Errorf("sweep = %v, want %v", c.sweep, DefaultSweepInterval)
	}
}
