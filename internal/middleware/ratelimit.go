package middleware

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/movie-show-catalog/internal/config"
	"github.com/iliyamo/movie-show-catalog/internal/metrics"
)

// TooManyRequestsMessage is the message of the 429 envelope.
const TooManyRequestsMessage = "Too many requests from this IP, please try again later."

// Decision is the outcome of counting one request against a window.
type Decision struct {
	Count      int64         // requests seen in the current window, this one included
	RetryAfter time.Duration // time until the window resets
}

// Limiter counts requests per key in fixed windows.
type Limiter interface {
	Hit(ctx context.Context, key string, window time.Duration) (Decision, error)
}

// fixedWindowScript increments the window counter and starts the window
// on the first hit.  A counter that somehow lost its TTL is given one.
var fixedWindowScript = redis.NewScript(`
	local count = redis.call('INCR', KEYS[1])
	if count == 1 then
		redis.call('PEXPIRE', KEYS[1], ARGV[1])
	end
	local ttl = redis.call('PTTL', KEYS[1])
	if ttl < 0 then
		redis.call('PEXPIRE', KEYS[1], ARGV[1])
		ttl = tonumber(ARGV[1])
	end
	return { count, ttl }
`)

// RedisLimiter keeps window counters in Redis so that all server instances
// share one budget per client.
type RedisLimiter struct {
	rdb *redis.Client
}

// NewRedisLimiter returns a Limiter backed by rdb.
func NewRedisLimiter(rdb *redis.Client) *RedisLimiter { return &RedisLimiter{rdb: rdb} }

// Hit implements Limiter.
func (l *RedisLimiter) Hit(ctx context.Context, key string, window time.Duration) (Decision, error) {
	vals, err := fixedWindowScript.Run(ctx, l.rdb, []string{key}, window.Milliseconds()).Result()
	if err != nil {
		return Decision{}, err
	}
	arr, ok := vals.([]interface{})
	if !ok || len(arr) != 2 {
		return Decision{}, fmt.Errorf("unexpected script result %#v", vals)
	}
	return Decision{Count: asInt64(arr[0]), RetryAfter: time.Duration(asInt64(arr[1])) * time.Millisecond}, nil
}

// MemoryLimiter keeps window counters in process memory.  It is used when
// Redis is unavailable; each instance then enforces its own budget.
type MemoryLimiter struct {
	c *gocache.Cache
}

// NewMemoryLimiter returns an in-process Limiter.  Expired windows are
// purged every cleanup interval.
func NewMemoryLimiter(cleanup time.Duration) *MemoryLimiter {
	return &MemoryLimiter{c: gocache.New(gocache.NoExpiration, cleanup)}
}

// Hit implements Limiter.
func (l *MemoryLimiter) Hit(_ context.Context, key string, window time.Duration) (Decision, error) {
	for attempt := 0; attempt < 3; attempt++ {
		if err := l.c.Add(key, int64(1), window); err == nil {
			return Decision{Count: 1, RetryAfter: window}, nil
		}
		n, err := l.c.IncrementInt64(key, 1)
		if err != nil {
			continue // window expired between Add and Increment
		}
		retry := window
		if _, exp, ok := l.c.GetWithExpiration(key); ok && !exp.IsZero() {
			retry = time.Until(exp)
		}
		return Decision{Count: n, RetryAfter: retry}, nil
	}
	return Decision{}, fmt.Errorf("rate limit counter %q unavailable", key)
}

// NewRateLimit enforces cfg.Max requests per client key per cfg.Window.
// Rejected requests receive 429 with the standard envelope and a
// Retry-After header.  Health probes are never counted.  A failing limiter
// lets the request through.
func NewRateLimit(cfg config.RateLimitConfig, limiter Limiter) echo.MiddlewareFunc {
	if !cfg.Enabled || limiter == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return next
		}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if strings.HasSuffix(c.Request().URL.Path, "/health") {
				return next(c)
			}
			key := buildRateKey(cfg, c)

			d, err := limiter.Hit(c.Request().Context(), key, cfg.Window)
			if err != nil {
				log.Ctx(c.Request().Context()).Warn().Err(err).Str("key", key).Msg("rate limiter unavailable")
				return next(c)
			}

			remaining := int64(cfg.Max) - d.Count
			if remaining < 0 {
				remaining = 0
			}
			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Max))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(int64(math.Ceil(d.RetryAfter.Seconds())), 10))

			if d.Count > int64(cfg.Max) {
				secs := int(math.Ceil(d.RetryAfter.Seconds()))
				if secs < 1 {
					secs = 1
				}
				h.Set("Retry-After", strconv.Itoa(secs))
				metrics.RateLimited.Inc()
				if cfg.Debug {
					log.Ctx(c.Request().Context()).Info().Str("key", key).Int64("count", d.Count).Msg("rate limit block")
				}
				return c.JSON(http.StatusTooManyRequests, echo.Map{
					"success": false,
					"message": TooManyRequestsMessage,
				})
			}

			if cfg.Debug {
				h.Set("X-RateLimit-Key", key)
			}
			return next(c)
		}
	}
}

func asInt64(v interface{}) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int32:
		return int64(t)
	case int:
		return int64(t)
	case float64:
		return int64(t)
	case string:
		if n, err := strconv.ParseInt(t, 10, 64); err == nil {
			return n
		}
	}
	return 0
}

func buildRateKey(cfg config.RateLimitConfig, c echo.Context) string {
	parts := []string{cfg.Prefix}
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	route := c.Request().Method + " " + c.Path()

	switch strings.ToLower(cfg.KeyStrategy) {
	case "route":
		parts = append(parts, "route", route)
	case "ip_route":
		parts = append(parts, "ip", ip, "route", route)
	default: // "ip"
		parts = append(parts, "ip", ip)
	}
	return strings.Join(parts, ":")
}
