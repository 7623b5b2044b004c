package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter keeps one window per key in process memory. Each window has
// its own lock so the read-modify-write of a key is atomic while different
// keys proceed independently. Elapsed windows are evicted by Sweep.
type MemoryLimiter struct {
	policy policyHolder

	mu      sync.RWMutex
	windows map[string]*window

	cleanupEvery time.Duration
}

type window struct {
	mu    sync.Mutex
	start time.Time
	count int64
	dead  bool // evicted; callers holding it must look the key up again
}

type MemoryOption func(*MemoryLimiter)

// WithCleanupEvery sets the janitor interval. Zero disables the janitor.
func WithCleanupEvery(d time.Duration) MemoryOption {
	return func(l *MemoryLimiter) { l.cleanupEvery = d }
}

func NewMemoryLimiter(policy Policy, opts ...MemoryOption) *MemoryLimiter {
	l := &MemoryLimiter{
		windows:      make(map[string]*window),
		cleanupEvery: time.Minute,
	}
	l.policy.store(policy)
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Policy returns the policy currently applied
func (l *MemoryLimiter) Policy() Policy { return l.policy.load() }

// Reconfigure swaps the policy. Open windows keep their start time.
func (l *MemoryLimiter) Reconfigure(p Policy) { l.policy.store(p) }

// Admit implements Limiter. It never returns an error.
func (l *MemoryLimiter) Admit(_ context.Context, key string, now time.Time) (Decision, error) {
	policy := l.policy.load()

	var w *window
	for {
		w = l.window(key)
		w.mu.Lock()
		if !w.dead {
			break
		}
		w.mu.Unlock()
	}
	defer w.mu.Unlock()

	if w.start.IsZero() || !now.Before(w.start.Add(policy.Window)) {
		w.start = now
		w.count = 1
	} else {
		w.count++
	}

	return decide(policy, w.count, w.start.Add(policy.Window)), nil
}

func (l *MemoryLimiter) window(key string) *window {
	l.mu.RLock()
	w, ok := l.windows[key]
	l.mu.RUnlock()
	if ok {
		return w
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if w, ok = l.windows[key]; ok {
		return w
	}
	w = &window{}
	l.windows[key] = w
	return w
}

// Sweep evicts every window that has elapsed at now and returns how many
// were removed. A request arriving for an evicted key simply opens a fresh
// window, which is what it would have done anyway.
func (l *MemoryLimiter) Sweep(now time.Time) int {
	policy := l.policy.load()

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, w := range l.windows {
		w.mu.Lock()
		if w.start.IsZero() || !now.Before(w.start.Add(policy.Window)) {
			w.dead = true
			delete(l.windows, key)
			removed++
		}
		w.mu.Unlock()
	}
	return removed
}

// Len returns the number of tracked keys
func (l *MemoryLimiter) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.windows)
}

// StartJanitor sweeps elapsed windows periodically until ctx is cancelled
func (l *MemoryLimiter) StartJanitor(ctx context.Context) {
	if l.cleanupEvery <= 0 {
		return
	}

	t := time.NewTicker(l.cleanupEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-t.C:
				l.Sweep(now)
			}
		}
	}()
}
