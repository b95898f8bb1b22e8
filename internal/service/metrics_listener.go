package service

import (
	"context"

	"github.com/iliyamo/movie-show-catalog/internal/metrics"
)

// MetricsListener counts mutations by operation.
var MetricsListener = MutationListenerFunc(func(_ context.Context, m Mutation) error {
	metrics.Mutations.WithLabelValues(m.Op).Inc()
	return nil
})
