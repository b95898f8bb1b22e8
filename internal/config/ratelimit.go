package config

import (
	"os"
	"strconv"
	"time"
)

// RateLimitConfig describes the fixed-window limiter applied to the catalog
// API: at most Max requests per client key within each Window.
type RateLimitConfig struct {
	Enabled     bool
	Max         int
	Window      time.Duration
	KeyStrategy string
	Prefix      string
	Debug       bool
}

// LoadRateLimitConfig builds the limiter settings.  The default ceiling
// depends on the environment: 100 requests per 15 minutes in production and
// 1000 elsewhere.
func LoadRateLimitConfig(env string) RateLimitConfig {
	defMax := 1000
	if env == EnvProduction {
		defMax = 100
	}
	def := RateLimitConfig{
		Enabled:     envBool("RATE_LIMIT_ENABLED", true),
		Max:         envInt("RATE_LIMIT_MAX", defMax),
		Window:      envDur("RATE_LIMIT_WINDOW", 15*time.Minute),
		KeyStrategy: envStr("RATE_LIMIT_KEY_STRATEGY", "ip"),
		Prefix:      envStr("RATE_LIMIT_PREFIX", "rl"),
		Debug:       envBool("RATE_LIMIT_DEBUG", false),
	}
	if def.Max < 1 {
		def.Max = 1
	}
	if def.Window < time.Second {
		def.Window = time.Second
	}
	return def
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envBool(k string, d bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	switch v {
	case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
		return false
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	return d
}
