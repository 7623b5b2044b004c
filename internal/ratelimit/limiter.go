// Package ratelimit implements fixed-window admission control keyed by
// client identity. A window starts with the first request from a key, counts
// every request until it elapses and rejects requests past the limit. Rejected
// requests still count, so a saturated window stays closed until it resets.
package ratelimit

import (
	"context"
	"sync/atomic"
	"time"
)

// Defaults mirror the public API policy
const (
	DefaultMax    = 100
	DefaultWindow = 15 * time.Minute
)

// Policy is the limit applied to every key
type Policy struct {
	Max    int
	Window time.Duration
}

// DefaultPolicy returns the default 100 requests per 15 minutes
func DefaultPolicy() Policy {
	return Policy{Max: DefaultMax, Window: DefaultWindow}
}

func (p Policy) normalize() Policy {
	if p.Max <= 0 {
		p.Max = DefaultMax
	}
	if p.Window <= 0 {
		p.Window = DefaultWindow
	}
	return p
}

// Decision is the outcome of one admission check
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	Count     int64
	ResetAt   time.Time
}

// RetryAfter returns how long a rejected client should wait
func (d Decision) RetryAfter(now time.Time) time.Duration {
	if d.ResetAt.After(now) {
		return d.ResetAt.Sub(now)
	}
	return 0
}

// Limiter decides whether a request from key may proceed
type Limiter interface {
	Admit(ctx context.Context, key string, now time.Time) (Decision, error)
}

// Reconfigurable limiters accept a new policy at runtime
type Reconfigurable interface {
	Reconfigure(Policy)
}

func decide(policy Policy, count int64, resetAt time.Time) Decision {
	remaining := policy.Max - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   count <= int64(policy.Max),
		Limit:     policy.Max,
		Remaining: remaining,
		Count:     count,
		ResetAt:   resetAt,
	}
}

// policyHolder lets limiters swap their policy without locking readers
type policyHolder struct {
	p atomic.Pointer[Policy]
}

func (h *policyHolder) load() Policy {
	return *h.p.Load()
}

func (h *policyHolder) store(p Policy) {
	p = p.normalize()
	h.p.Store(&p)
}
