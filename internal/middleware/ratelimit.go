package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/jeswanthjohn/api-forge/internal/apperror"
	applog "github.com/jeswanthjohn/api-forge/internal/logger"
	"github.com/jeswanthjohn/api-forge/internal/ratelimit"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RateLimitMessage is the body message of every rejected request
const RateLimitMessage = "Too many requests from this IP, please try again later."

// KeyFunc derives the rate limit key of a request
type KeyFunc func(r *http.Request) string

// ClientKey identifies the caller by IP. RemoteAddr has already been rewritten
// by chi's RealIP when the server runs behind a proxy.
func ClientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimitMiddleware admits or rejects each request through limiter. A
// rejected request never reaches next. Limiter failures are logged and the
// request is let through.
func RateLimitMiddleware(limiter ratelimit.Limiter, keyFn KeyFunc, logger *zap.Logger) func(http.Handler) http.Handler {
	if keyFn == nil {
		keyFn = ClientKey
	}
	rejectLog := rate.Sometimes{Interval: time.Second}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := keyFn(r)
			now := time.Now()

			dec, err := limiter.Admit(r.Context(), key, now)
			if err != nil {
				applog.WithRequest(logger, r).Error("Failed to check rate limit",
					zap.Error(err),
					zap.String("client_id", key),
				)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(dec.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(dec.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(dec.ResetAt.Unix(), 10))

			if !dec.Allowed {
				rejectLog.Do(func() {
					applog.WithRequest(logger, r).Warn("Rate limit exceeded",
						zap.String("client_id", key),
						zap.Int64("count", dec.Count),
						zap.Int("limit", dec.Limit),
					)
				})

				retry := int(math.Ceil(dec.RetryAfter(now).Seconds()))
				w.Header().Set("Retry-After", strconv.Itoa(retry))

				WriteError(w, r, logger, apperror.TooManyRequests(RateLimitMessage))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
