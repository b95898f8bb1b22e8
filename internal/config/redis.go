package config

// Redis backs the shared rate-limit counters and the list response cache.
// It is optional: when the server cannot be reached at startup the catalog
// falls back to in-process rate limiting and serves every read from the
// database.

import (
	"context"
	"crypto/tls"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisOptions resolves the connection settings from the environment.
// REDIS_URL (redis:// or rediss://) wins over the discrete variables
// REDIS_ADDR, REDIS_HOST/REDIS_PORT, REDIS_PASSWORD, REDIS_DB and REDIS_TLS.
// ok is false when no Redis variable is set at all, which callers treat as
// "Redis disabled".
func RedisOptions() (opts *redis.Options, ok bool) {
	if raw := os.Getenv("REDIS_URL"); raw != "" {
		if o, err := redis.ParseURL(raw); err == nil {
			return o, true
		}
	}
	addr := os.Getenv("REDIS_ADDR")
	host, port := os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT")
	if host != "" {
		if port == "" {
			port = "6379"
		}
		addr = host + ":" + port
	}
	if addr == "" {
		return nil, false
	}
	o := &redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       envInt("REDIS_DB", 0),
	}
	if t := os.Getenv("REDIS_TLS"); strings.EqualFold(t, "true") || t == "1" {
		o.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return o, true
}

// NewRedisClient connects to Redis and pings it with a short timeout.  It
// returns nil when Redis is not configured or not reachable.
func NewRedisClient() *redis.Client {
	opts, ok := RedisOptions()
	if !ok {
		return nil
	}
	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil
	}
	return client
}
