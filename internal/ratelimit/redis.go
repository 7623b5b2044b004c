package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix namespaces rate limit counters in Redis
const DefaultKeyPrefix = "rate_limit"

// admitScript increments the counter and arms the window expiry on the
// first hit, in one round trip so concurrent processes cannot interleave.
var admitScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
local ttl = redis.call("PTTL", KEYS[1])
if count == 1 or ttl < 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
	ttl = tonumber(ARGV[1])
end
return {count, ttl}
`)

// RedisLimiter shares windows between processes through Redis. Expiry is
// handled by Redis itself, so no sweeping is needed.
type RedisLimiter struct {
	client redis.UniversalClient
	prefix string
	policy policyHolder
}

func NewRedisLimiter(client redis.UniversalClient, policy Policy, prefix string) *RedisLimiter {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	l := &RedisLimiter{client: client, prefix: prefix}
	l.policy.store(policy)
	return l
}

// Policy returns the policy currently applied
func (l *RedisLimiter) Policy() Policy { return l.policy.load() }

// Reconfigure swaps the policy. Running windows keep their expiry.
func (l *RedisLimiter) Reconfigure(p Policy) { l.policy.store(p) }

// Admit implements Limiter
func (l *RedisLimiter) Admit(ctx context.Context, key string, now time.Time) (Decision, error) {
	policy := l.policy.load()
	redisKey := fmt.Sprintf("%s:%s", l.prefix, key)

	res, err := admitScript.Run(ctx, l.client, []string{redisKey}, policy.Window.Milliseconds()).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("failed to increment rate limit counter: %w", err)
	}
	if len(res) != 2 {
		return Decision{}, fmt.Errorf("unexpected rate limit script reply: %v", res)
	}

	count, ttl := res[0], time.Duration(res[1])*time.Millisecond
	return decide(policy, count, now.Add(ttl)), nil
}
