package stats

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/wonny/dealfunnel/internal/contracts"
	"github.com/wonny/dealfunnel/pkg/redis"
)

// Store holds raw stage records per date key for the lifetime of a session.
// Entries are never evicted by size or age; only Delete removes them. That is
// fine for a human browsing a few dates, but grows without bound in a
// long-running process that visits many dates.
type Store interface {
	Get(ctx context.Context, dateKey string) ([]contracts.StageRecord, bool, error)
	Set(ctx context.Context, dateKey string, records []contracts.StageRecord) error
	Delete(ctx context.Context, dateKey string) error
}

// MemoryStore is the default in-process session store
type MemoryStore struct {
	items *gocache.Cache
}

// NewMemoryStore creates an empty store without expiration or janitor
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: gocache.New(gocache.NoExpiration, 0)}
}

// Get implements Store
func (s *MemoryStore) Get(_ context.Context, dateKey string) ([]contracts.StageRecord, bool, error) {
	v, ok := s.items.Get(dateKey)
	if !ok {
		return nil, false, nil
	}
	return append([]contracts.StageRecord{}, v.([]contracts.StageRecord)...), true, nil
}

// Set implements Store. The slice is copied so callers cannot mutate the entry.
func (s *MemoryStore) Set(_ context.Context, dateKey string, records []contracts.StageRecord) error {
	s.items.Set(dateKey, append([]contracts.StageRecord{}, records...), gocache.NoExpiration)
	return nil
}

// Delete implements Store
func (s *MemoryStore) Delete(_ context.Context, dateKey string) error {
	s.items.Delete(dateKey)
	return nil
}

// RedisStore shares the stats cache between dashboard replicas. Unlike
// MemoryStore its entries outlive a single process, so each one expires
// after ttl and a restart cannot serve day-old counters forever.
type RedisStore struct {
	cache *redis.Cache
	ttl   time.Duration
}

// DefaultRedisTTL is used when NewRedisStore gets a non-positive ttl
const DefaultRedisTTL = 24 * time.Hour

// NewRedisStore wraps a redis cache helper
func NewRedisStore(cache *redis.Cache, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultRedisTTL
	}
	return &RedisStore{cache: cache, ttl: ttl}
}

// Get implements Store
func (s *RedisStore) Get(ctx context.Context, dateKey string) ([]contracts.StageRecord, bool, error) {
	var records []contracts.StageRecord
	found, err := s.cache.Get(ctx, redis.StatsKey(dateKey), &records)
	if err != nil || !found {
		return nil, false, err
	}
	if records == nil {
		records = []contracts.StageRecord{}
	}
	return records, true, nil
}

// Set implements Store
func (s *RedisStore) Set(ctx context.Context, dateKey string, records []contracts.StageRecord) error {
	return s.cache.Set(ctx, redis.StatsKey(dateKey), records, s.ttl)
}

// Delete implements Store
func (s *RedisStore) Delete(ctx context.Context, dateKey string) error {
	return s.cache.Delete(ctx, redis.StatsKey(dateKey))
}
