package batch

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/macielcr7/exa-chat-notifier/internal/domain"
)

// collector records flushed batches for assertions.
type collector struct {
	mu      sync.Mutex
	batches [][]domain.BatchItem
	block   chan struct{} // when non-nil, flush blocks until closed
}

func (c *collector) flush(ctx context.Context, items []domain.BatchItem) {
	if c.block != nil {
		<-c.block
	}
	c.mu.Lock()
	c.batches = append(c.batches, items)
	c.mu.Unlock()
}

func (c *collector) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.batches)
}

func (c *collector) batch(i int) []domain.BatchItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.batches[i]
}

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

func payload(n string) domain.Payload {
	return domain.Payload{"event": n}
}

func TestScheduler_SizeTrigger(t *testing.T) {
	col := &collector{}
	s := New(Config{Size: 3, Interval: time.Hour, FlushOnDestroy: true},
		col.flush, clockwork.NewFakeClock(), nil)
	defer s.Destroy(context.Background())

	s.Add(payload("a"), "")
	s.Add(payload("b"), "")
	if got := col.count(); got != 0 {
		t.Fatalf("flush count = %d before size threshold, want 0", got)
	}
	s.Add(payload("c"), "")

	eventually(t, func() bool { return col.count() == 1 },
		"size threshold did not trigger a flush")

	got := col.batch(0)
	if len(got) != 3 {
		t.Fatalf("flushed %d items, want 3", len(got))
	}
	for i, want := range []string{"a", "b", "c"} {
		if id, _ := got[i].Payload.EventID(); id != want {
			t.Errorf("item %d = %q, want %q (submission order)", i, id, want)
		}
	}
	if got := s.Len(); got != 0 {
		t.Errorf("Len() = %d after flush, want 0", got)
	}
}

func TestScheduler_TimeTrigger(t *testing.T) {
	clock := clockwork.NewFakeClock()
	col := &collector{}
	s := New(Config{Size: 100, Interval: time.Second, FlushOnDestroy: true},
		col.flush, clock, nil)
	defer s.Destroy(context.Background())

	// An empty queue must not produce a flush from time alone.
	clock.BlockUntil(1)
	clock.Advance(time.Second)
	time.Sleep(20 * time.Millisecond)
	if got := col.count(); got != 0 {
		t.Fatalf("flush count = %d with empty queue, want 0", got)
	}

	s.Add(payload("a"), "")
	clock.BlockUntil(1)
	clock.Advance(time.Second)

	eventually(t, func() bool { return col.count() == 1 },
		"interval did not trigger a flush")
	if got := len(col.batch(0)); got != 1 {
		t.Errorf("flushed %d items, want 1", got)
	}
}

func TestScheduler_FlushEmptyIsNoop(t *testing.T) {
	col := &collector{}
	s := New(DefaultConfig(), col.flush, clockwork.NewFakeClock(), nil)
	defer s.Destroy(context.Background())

	s.Flush(context.Background())

	if got := col.count(); got != 0 {
		t.Errorf("flush count = %d for empty queue, want 0", got)
	}
}

func TestScheduler_ConcurrentFlushMutualExclusion(t *testing.T) {
	col := &collector{block: make(chan struct{})}
	s := New(Config{Size: 100, Interval: time.Hour, FlushOnDestroy: true},
		col.flush, clockwork.NewFakeClock(), nil)
	defer s.Destroy(context.Background())

	s.Add(payload("a"), "")

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Flush(context.Background())
		}()
	}

	// Let the winning flush claim the queue, then release it.
	eventually(t, func() bool { return s.Flushing() }, "no flush started")
	close(col.block)
	wg.Wait()

	eventually(t, func() bool { return !s.Flushing() }, "flushing flag stuck")
	if got := col.count(); got != 1 {
		t.Errorf("flush callback ran %d times, want 1", got)
	}
}

func TestScheduler_AddDuringFlushNotReconsumed(t *testing.T) {
	block := make(chan struct{})
	col := &collector{block: block}
	s := New(Config{Size: 100, Interval: time.Hour, FlushOnDestroy: true},
		col.flush, clockwork.NewFakeClock(), nil)
	defer s.Destroy(context.Background())

	s.Add(payload("claimed"), "")
	go s.Flush(context.Background())
	eventually(t, func() bool { return s.Flushing() }, "no flush started")

	// Arrives while the first batch is in flight; must land in a new queue.
	s.Add(payload("late"), "")
	if got := s.Len(); got != 1 {
		t.Fatalf("Len() = %d during flush, want 1", got)
	}

	close(block)
	eventually(t, func() bool { return col.count() == 1 }, "first flush did not finish")

	s.Flush(context.Background())
	eventually(t, func() bool { return col.count() == 2 }, "second flush did not run")

	if got := len(col.batch(0)); got != 1 {
		t.Errorf("first batch has %d items, want 1", got)
	}
	if id, _ := col.batch(1)[0].Payload.EventID(); id != "late" {
		t.Errorf("second batch item = %q, want %q", id, "late")
	}
}

func TestScheduler_DestroyFlushesPending(t *testing.T) {
	col := &collector{}
	s := New(Config{Size: 100, Interval: time.Hour, FlushOnDestroy: true},
		col.flush, clockwork.NewFakeClock(), nil)

	s.Add(payload("a"), "")
	s.Add(payload("b"), "")
	s.Destroy(context.Background())

	if got := col.count(); got != 1 {
		t.Fatalf("flush count = %d after destroy, want 1", got)
	}
	if got := len(col.batch(0)); got != 2 {
		t.Errorf("final batch has %d items, want 2", got)
	}
}

func TestScheduler_DestroyDiscardsWhenDisabled(t *testing.T) {
	col := &collector{}
	s := New(Config{Size: 100, Interval: time.Hour, FlushOnDestroy: false},
		col.flush, clockwork.NewFakeClock(), nil)

	s.Add(payload("a"), "")
	s.Add(payload("b"), "")
	s.Destroy(context.Background())

	if got := col.count(); got != 0 {
		t.Errorf("flush count = %d after destroy, want 0", got)
	}
	if got := s.Len(); got != 0 {
		t.Errorf("Len() = %d after destroy, want 0", got)
	}
}

func TestScheduler_DestroyIdempotent(t *testing.T) {
	col := &collector{}
	s := New(Config{Size: 100, Interval: time.Hour, FlushOnDestroy: true},
		col.flush, clockwork.NewFakeClock(), nil)

	s.Add(payload("a"), "")
	s.Destroy(context.Background())
	s.Destroy(context.Background())

	if got := col.count(); got != 1 {
		t.Errorf("flush count = %d after double destroy, want 1", got)
	}
}

func TestScheduler_CallbackPanicReleasesFlag(t *testing.T) {
	s := New(Config{Size: 100, Interval: time.Hour, FlushOnDestroy: true},
		func(ctx context.Context, items []domain.BatchItem) { panic("boom") },
		clockwork.NewFakeClock(), nil)
	defer s.Destroy(context.Background())

	s.Add(payload("a"), "")
	s.Flush(context.Background())

	if s.Flushing() {
		t.Error("flushing flag stuck after callback panic")
	}
}
