package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestMemoryLimiter_AllowsThenRejectsThenResets(t *testing.T) {
	window := time.Minute
	l := NewMemoryLimiter(Policy{Max: 2, Window: window})
	ctx := context.Background()
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	want := []bool{true, true, false}
	for i, allowed := range want {
		dec, err := l.Admit(ctx, "10.0.0.1", start.Add(time.Duration(i)*time.Second))
		if err != nil {
			t.Fatalf("request %d: unexpected error: %v", i+1, err)
		}
		if dec.Allowed != allowed {
			t.Fatalf("request %d: allowed = %v, want %v", i+1, dec.Allowed, allowed)
		}
	}

	dec, _ := l.Admit(ctx, "10.0.0.1", start.Add(window))
	if !dec.Allowed || dec.Count != 1 {
		t.Fatalf("expected fresh window with count 1 after elapse, got %+v", dec)
	}
	if !dec.ResetAt.Equal(start.Add(2 * window)) {
		t.Fatalf("ResetAt = %v, want %v", dec.ResetAt, start.Add(2*window))
	}
}

func TestMemoryLimiter_RejectedRequestsStillCount(t *testing.T) {
	l := NewMemoryLimiter(Policy{Max: 1, Window: time.Minute})
	now := time.Now()

	for i := 0; i < 5; i++ {
		l.Admit(context.Background(), "k", now)
	}
	dec, _ := l.Admit(context.Background(), "k", now)

	if dec.Allowed || dec.Count != 6 || dec.Remaining != 0 {
		t.Fatalf("expected saturated window, got %+v", dec)
	}
}

func TestMemoryLimiter_KeysAreIndependent(t *testing.T) {
	l := NewMemoryLimiter(Policy{Max: 1, Window: time.Minute})
	now := time.Now()

	a, _ := l.Admit(context.Background(), "a", now)
	b, _ := l.Admit(context.Background(), "b", now)
	if !a.Allowed || !b.Allowed {
		t.Fatalf("expected both keys to be admitted: a=%+v b=%+v", a, b)
	}
}

func TestMemoryLimiter_SweepEvictsElapsedWindows(t *testing.T) {
	l := NewMemoryLimiter(Policy{Max: 5, Window: time.Minute}, WithCleanupEvery(0))
	now := time.Now()

	l.Admit(context.Background(), "old", now)
	l.Admit(context.Background(), "fresh", now.Add(30*time.Second))

	if removed := l.Sweep(now.Add(time.Minute)); removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	if l.Len() != 1 {
		t.Fatalf("Len = %d, want 1", l.Len())
	}

	dec, _ := l.Admit(context.Background(), "old", now.Add(time.Minute))
	if !dec.Allowed || dec.Count != 1 {
		t.Fatalf("expected evicted key to start over, got %+v", dec)
	}
}

func TestMemoryLimiter_JanitorStopsWithContext(t *testing.T) {
	l := NewMemoryLimiter(Policy{Max: 5, Window: time.Millisecond}, WithCleanupEvery(2*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())

	l.Admit(ctx, "k", time.Now())
	l.StartJanitor(ctx)

	deadline := time.Now().Add(time.Second)
	for l.Len() != 0 && time.Now().Before(deadline) {
		time.Sleep(2 * time.Millisecond)
	}
	cancel()

	if l.Len() != 0 {
		t.Fatalf("expected janitor to evict elapsed window, Len = %d", l.Len())
	}
}

func TestMemoryLimiter_ConcurrentAdmitsDoNotUndercount(t *testing.T) {
	const (
		workers    = 50
		perWorker  = 40
		maxAllowed = 100
	)
	l := NewMemoryLimiter(Policy{Max: maxAllowed, Window: time.Hour})
	now := time.Now()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				dec, _ := l.Admit(context.Background(), "shared", now)
				if dec.Allowed {
					mu.Lock()
					allowed++
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()

	if allowed != maxAllowed {
		t.Fatalf("allowed = %d, want exactly %d", allowed, maxAllowed)
	}
	dec, _ := l.Admit(context.Background(), "shared", now)
	if dec.Count != workers*perWorker+1 {
		t.Fatalf("count = %d, want %d", dec.Count, workers*perWorker+1)
	}
}

func TestMemoryLimiter_Reconfigure(t *testing.T) {
	l := NewMemoryLimiter(Policy{Max: 1, Window: time.Minute})
	now := time.Now()

	l.Admit(context.Background(), "k", now)
	l.Reconfigure(Policy{Max: 3, Window: time.Minute})

	dec, _ := l.Admit(context.Background(), "k", now)
	if !dec.Allowed || dec.Limit != 3 {
		t.Fatalf("expected new limit to apply, got %+v", dec)
	}
}

func TestPolicy_NormalizeAppliesDefaults(t *testing.T) {
	l := NewMemoryLimiter(Policy{})
	if got := l.Policy(); got != DefaultPolicy() {
		t.Fatalf("Policy = %+v, want %+v", got, DefaultPolicy())
	}
}

func TestProperty_MemoryLimiterAdmitsExactlyMax(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("within one window exactly max requests are admitted", prop.ForAll(
		func(max int, excess int) bool {
			l := NewMemoryLimiter(Policy{Max: max, Window: time.Minute})
			now := time.Now()

			admitted, rejected := 0, 0
			for i := 0; i < max+excess; i++ {
				dec, _ := l.Admit(context.Background(), "192.168.1.100", now)
				if dec.Allowed {
					admitted++
				} else {
					rejected++
				}
			}
			return admitted == max && rejected == excess
		},
		gen.IntRange(1, 50),
		gen.IntRange(1, 20),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
