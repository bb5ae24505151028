// Package deals loads the deals behind one funnel stage.
package deals

import (
	"context"

	"github.com/wonny/dealfunnel/internal/contracts"
	"github.com/wonny/dealfunnel/internal/external/backend"
	"github.com/wonny/dealfunnel/pkg/logger"
	"github.com/wonny/dealfunnel/pkg/metrics"
)

// Repository fetches deals on every call. Deals are never cached.
type Repository struct {
	fetcher contracts.DealsFetcher
	logger  *logger.Logger
	metrics *metrics.Metrics
}

// NewRepository creates a deals repository
func NewRepository(fetcher contracts.DealsFetcher, log *logger.Logger, m *metrics.Metrics) *Repository {
	return &Repository{
		fetcher: fetcher,
		logger:  log,
		metrics: m,
	}
}

// GetDeals returns the deals for stage on dateKey in backend order.
// Failures are logged and yield an empty slice.
func (r *Repository) GetDeals(ctx context.Context, stage, dateKey string) []contracts.Deal {
	deals, err := r.fetcher.FetchDeals(ctx, stage, dateKey)
	if err != nil {
		kind := backend.Kind(err)
		r.metrics.FetchFailed("deals", kind)
		r.logger.WithFields(map[string]interface{}{
			"stage": stage,
			"date":  dateKey,
			"kind":  kind,
		}).WithError(err).Error("Failed to load deals")
		return []contracts.Deal{}
	}
	if deals == nil {
		return []contracts.Deal{}
	}
	return deals
}
