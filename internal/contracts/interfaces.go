package contracts

import "context"

// StatsFetcher loads raw stage records for a date key from the backend
// ⭐ SSOT: the stats repository depends on this, not on the HTTP client
type StatsFetcher interface {
	FetchStats(ctx context.Context, dateKey string) ([]StageRecord, error)
	FetchDates(ctx context.Context) ([]string, error)
}

// DealsFetcher loads the deals behind one stage on one date
type DealsFetcher interface {
	FetchDeals(ctx context.Context, stage, dateKey string) ([]Deal, error)
}
