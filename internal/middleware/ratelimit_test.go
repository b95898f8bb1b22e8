package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-show-catalog/internal/config"
)

func TestMemoryLimiterCountsWithinWindow(t *testing.T) {
	l := NewMemoryLimiter(time.Minute)
	ctx := context.Background()

	for i := int64(1); i <= 3; i++ {
		d, err := l.Hit(ctx, "k", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, i, d.Count)
		assert.True(t, d.RetryAfter > 0 && d.RetryAfter <= time.Minute)
	}

	d, err := l.Hit(ctx, "other", time.Minute)
	require.NoError(t, err)
	assert.EqualValues(t, 1, d.Count)
}

func TestMemoryLimiterWindowExpires(t *testing.T) {
	l := NewMemoryLimiter(time.Minute)
	ctx := context.Background()

	_, err := l.Hit(ctx, "k", 20*time.Millisecond)
	require.NoError(t, err)
	_, err = l.Hit(ctx, "k", 20*time.Millisecond)
	require.NoError(t, err)

	time.Sleep(40 * time.Millisecond)
	d, err := l.Hit(ctx, "k", 20*time.Millisecond)
	require.NoError(t, err)
	assert.EqualValues(t, 1, d.Count)
}

type failingLimiter struct{}

func (failingLimiter) Hit(context.Context, string, time.Duration) (Decision, error) {
	return Decision{}, errors.New("redis down")
}

func serve(t *testing.T, mw echo.MiddlewareFunc, path string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	ok := func(c echo.Context) error { return c.String(http.StatusOK, "ok") }
	e.GET("/api/movies-shows", ok, mw)
	e.GET("/api/movies-shows/health", ok, mw)
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = "203.0.113.7:5555"
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRateLimitBlocksOverMax(t *testing.T) {
	cfg := config.RateLimitConfig{Enabled: true, Max: 2, Window: time.Minute, Prefix: "rl"}
	mw := NewRateLimit(cfg, NewMemoryLimiter(time.Minute))

	for i := 0; i < 2; i++ {
		rec := serve(t, mw, "/api/movies-shows")
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec := serve(t, mw, "/api/movies-shows")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"`+TooManyRequestsMessage+`"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	// Health probes are never counted or blocked.
	assert.Equal(t, http.StatusOK, serve(t, mw, "/api/movies-shows/health").Code)
}

func TestRateLimitFailsOpen(t *testing.T) {
	cfg := config.RateLimitConfig{Enabled: true, Max: 1, Window: time.Minute}
	mw := NewRateLimit(cfg, failingLimiter{})
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, serve(t, mw, "/api/movies-shows").Code)
	}
}

func TestRateLimitDisabled(t *testing.T) {
	mw := NewRateLimit(config.RateLimitConfig{Enabled: false, Max: 1}, NewMemoryLimiter(time.Minute))
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, serve(t, mw, "/api/movies-shows").Code)
	}
}

func TestBuildRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/movies-shows/7", nil)
	req.RemoteAddr = "198.51.100.2:1234"
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/api/movies-shows/:id")

	cfg := config.RateLimitConfig{Prefix: "rl"}
	assert.Equal(t, "rl:ip:198.51.100.2", buildRateKey(cfg, c))
	cfg.KeyStrategy = "route"
	assert.Equal(t, "rl:route:GET /api/movies-shows/:id", buildRateKey(cfg, c))
	cfg.KeyStrategy = "ip_route"
	assert.Equal(t, "rl:ip:198.51.100.2:route:GET /api/movies-shows/:id", buildRateKey(cfg, c))
}

// redisClient returns a client for REDIS_ADDR or skips the test.
func redisClient(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { rdb.Close() })
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis unreachable: %v", err)
	}
	return rdb
}

func TestRedisLimiter(t *testing.T) {
	rdb := redisClient(t)
	ctx := context.Background()
	key := "test:rl:" + t.Name() + ":" + time.Now().Format(time.RFC3339Nano)
	t.Cleanup(func() { rdb.Del(context.Background(), key) })

	l := NewRedisLimiter(rdb)
	d, err := l.Hit(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.EqualValues(t, 1, d.Count)
	d, err = l.Hit(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.EqualValues(t, 2, d.Count)
	assert.True(t, d.RetryAfter > 0 && d.RetryAfter <= time.Minute)
}
