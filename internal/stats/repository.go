// Package stats resolves raw stage records for a date, from the session store
// or the backend.
package stats

import (
	"context"

	"github.com/wonny/dealfunnel/internal/contracts"
	"github.com/wonny/dealfunnel/internal/external/backend"
	"github.com/wonny/dealfunnel/pkg/logger"
	"github.com/wonny/dealfunnel/pkg/metrics"
)

// Repository serves stage records per date with a session cache in front of the backend
// ⭐ SSOT: the only owner of the stats cache
type Repository struct {
	fetcher contracts.StatsFetcher
	store   Store
	logger  *logger.Logger
	metrics *metrics.Metrics
}

// NewRepository creates a repository. A nil store means a fresh MemoryStore.
func NewRepository(fetcher contracts.StatsFetcher, store Store, log *logger.Logger, m *metrics.Metrics) *Repository {
	if store == nil {
		store = NewMemoryStore()
	}
	return &Repository{
		fetcher: fetcher,
		store:   store,
		logger:  log,
		metrics: m,
	}
}

// GetStats returns the records for dateKey, fetching on a cache miss.
// A failed fetch yields an empty slice and leaves the cache untouched.
//
// Two concurrent misses for the same key both fetch and the last write wins.
// Both responses describe the same date, so this is not de-duplicated.
func (r *Repository) GetStats(ctx context.Context, dateKey string) []contracts.StageRecord {
	log := r.logger.WithField("date", dateKey)

	records, found, err := r.store.Get(ctx, dateKey)
	if err != nil {
		log.WithError(err).Warn("Stats cache read failed, fetching from backend")
	}
	if found {
		r.metrics.CacheHit()
		log.Debug("Using cached stats")
		return records
	}
	r.metrics.CacheMiss()

	records, err = r.fetcher.FetchStats(ctx, dateKey)
	if err != nil {
		r.metrics.FetchFailed("stats", backend.Kind(err))
		log.WithError(err).WithField("kind", backend.Kind(err)).Error("Failed to load stats")
		return []contracts.StageRecord{}
	}

	if err := r.store.Set(ctx, dateKey, records); err != nil {
		log.WithError(err).Warn("Stats cache write failed")
	}

	return records
}

// Invalidate drops the cached entry so the next GetStats re-fetches
func (r *Repository) Invalidate(ctx context.Context, dateKey string) {
	if err := r.store.Delete(ctx, dateKey); err != nil {
		r.logger.WithField("date", dateKey).WithError(err).Warn("Stats cache delete failed")
	}
}

// Refresh invalidates dateKey and loads it again
func (r *Repository) Refresh(ctx context.Context, dateKey string) []contracts.StageRecord {
	r.Invalidate(ctx, dateKey)
	return r.GetStats(ctx, dateKey)
}

// AvailableDates lists the dates the backend has stats for. Never cached;
// empty on failure.
func (r *Repository) AvailableDates(ctx context.Context) []string {
	dates, err := r.fetcher.FetchDates(ctx)
	if err != nil {
		r.metrics.FetchFailed("dates", backend.Kind(err))
		r.logger.WithError(err).Error("Failed to load available dates")
		return []string{}
	}
	return dates
}
