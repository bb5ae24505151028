package funnel

import (
	"context"

	"github.com/wonny/dealfunnel/internal/contracts"
	"github.com/wonny/dealfunnel/internal/stages"
)

// StatsSource is the cached stats lookup the service reads from
type StatsSource interface {
	GetStats(ctx context.Context, dateKey string) []contracts.StageRecord
	Refresh(ctx context.Context, dateKey string) []contracts.StageRecord
	AvailableDates(ctx context.Context) []string
}

// Service builds funnel views for dates
type Service struct {
	stats   StatsSource
	catalog *stages.Catalog
	policy  contracts.TotalPolicy
}

// NewService creates a funnel service. A nil catalog means stages.Default().
func NewService(stats StatsSource, catalog *stages.Catalog, policy contracts.TotalPolicy) *Service {
	if catalog == nil {
		catalog = stages.Default()
	}
	return &Service{stats: stats, catalog: catalog, policy: policy}
}

// View returns the funnel for dateKey, served from cache when possible
func (s *Service) View(ctx context.Context, dateKey string) contracts.FunnelView {
	return Aggregate(dateKey, s.stats.GetStats(ctx, dateKey), s.catalog, s.policy)
}

// Refresh drops the cached stats for dateKey and rebuilds the funnel
func (s *Service) Refresh(ctx context.Context, dateKey string) contracts.FunnelView {
	return Aggregate(dateKey, s.stats.Refresh(ctx, dateKey), s.catalog, s.policy)
}

// Dates lists the dates the backend has stats for
func (s *Service) Dates(ctx context.Context) []string {
	return s.stats.AvailableDates(ctx)
}

// Catalog returns the stage catalog used for rows
func (s *Service) Catalog() *stages.Catalog {
	return s.catalog
}
