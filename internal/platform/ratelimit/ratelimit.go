package ratelimit

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/oncoserve/oncoserve/internal/platform/apperrors"
	"github.com/oncoserve/oncoserve/internal/platform/auth"
	"github.com/oncoserve/oncoserve/internal/platform/metrics"
)

// Bucket is a named counter scope with a fixed-window threshold.
type Bucket struct {
	Limit  int64
	Window time.Duration
}

// DefaultBuckets returns the per-route-category thresholds.
func DefaultBuckets() map[string]Bucket {
	return map[string]Bucket{
		"patients":     {Limit: 120, Window: time.Minute},
		"appointments": {Limit: 120, Window: time.Minute},
		"profile":      {Limit: 60, Window: time.Minute},
		"auth":         {Limit: 30, Window: time.Minute},
	}
}

// Limiter bounds request frequency per (caller, bucket). Throttling is
// best-effort: a counter store failure allows the request through rather
// than locking out clinical traffic.
type Limiter struct {
	store   CounterStore
	buckets map[string]Bucket
	logger  zerolog.Logger
}

func NewLimiter(store CounterStore, buckets map[string]Bucket, logger zerolog.Logger) *Limiter {
	if buckets == nil {
		buckets = DefaultBuckets()
	}
	return &Limiter{store: store, buckets: buckets, logger: logger}
}

// Middleware returns per-route middleware for the named bucket. The caller
// key is the authenticated user ID, falling back to the client IP for
// unauthenticated routes.
func (l *Limiter) Middleware(bucket string) echo.MiddlewareFunc {
	cfg, ok := l.buckets[bucket]
	if !ok {
		cfg = Bucket{Limit: 60, Window: time.Minute}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			caller := c.RealIP()
			if identity := auth.IdentityFromContext(c.Request().Context()); identity != nil {
				caller = identity.ID
			}
			key := "ratelimit:" + bucket + ":" + caller

			count, resetAt, err := l.store.Incr(c.Request().Context(), key, cfg.Window)
			if err != nil {
				// Fail open: availability for clinical workflows outweighs
				// strict throttling.
				metrics.RateLimitStoreErrors.Inc()
				l.logger.Warn().Err(err).Str("bucket", bucket).Msg("rate limit store unavailable, allowing request")
				return next(c)
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.FormatInt(cfg.Limit, 10))

			if count > cfg.Limit {
				metrics.RateLimitRejects.WithLabelValues(bucket).Inc()
				retryAfter := int(time.Until(resetAt).Seconds()) + 1
				h.Set("X-RateLimit-Remaining", "0")
				h.Set("Retry-After", strconv.Itoa(retryAfter))
				return apperrors.New(apperrors.RateLimited, "rate limit exceeded")
			}

			remaining := cfg.Limit - count
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
			return next(c)
		}
	}
}
