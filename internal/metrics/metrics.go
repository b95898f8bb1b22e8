// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequests counts handled requests by method, route template and status.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "catalog",
		Name:      "http_requests_total",
		Help:      "HTTP requests handled, by method, route and status code.",
	}, []string{"method", "route", "status"})

	// HTTPDuration observes request latency by method and route template.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "catalog",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	// Mutations counts successful catalog mutations by operation.
	Mutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "catalog",
		Name:      "entry_mutations_total",
		Help:      "Successful entry mutations, by operation.",
	}, []string{"op"})

	// RateLimited counts requests rejected with 429.
	RateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "catalog",
		Name:      "rate_limited_total",
		Help:      "Requests rejected by the rate limiter.",
	})

	// CacheResults counts response cache lookups by result (hit, miss, skip).
	CacheResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "catalog",
		Name:      "response_cache_results_total",
		Help:      "Response cache lookups, by result.",
	}, []string{"result"})
)
