package commands

import (
	"fmt"
	"strings"

	"github.com/wonny/dealfunnel/internal/contracts"
	"github.com/wonny/dealfunnel/internal/deals"
	"github.com/wonny/dealfunnel/internal/external/backend"
	"github.com/wonny/dealfunnel/internal/funnel"
	"github.com/wonny/dealfunnel/internal/stages"
	"github.com/wonny/dealfunnel/internal/stats"
	"github.com/wonny/dealfunnel/pkg/config"
	"github.com/wonny/dealfunnel/pkg/httputil"
	"github.com/wonny/dealfunnel/pkg/logger"
	"github.com/wonny/dealfunnel/pkg/metrics"
	"github.com/wonny/dealfunnel/pkg/redis"
)

// app holds the wired dependencies shared by every command
type app struct {
	cfg     *config.Config
	log     *logger.Logger
	metrics *metrics.Metrics
	redis   *redis.Client
	stats   *stats.Repository
	deals   *deals.Repository
	funnel  *funnel.Service
}

// newApp loads config and wires the backend client, stores and repositories
func newApp() (*app, error) {
	// 1. Load config
	cfg, err := config.LoadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	// 2. Apply flag overrides
	if backendURL != "" {
		cfg.Backend.BaseURL = strings.TrimRight(backendURL, "/")
	}
	if policy != "" {
		cfg.Funnel.TotalPolicy = policy
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}

	// 3. Initialize logger
	log := logger.New(cfg)

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
	}

	// 4. Create HTTP client and backend client
	httpClient := httputil.New(cfg, log)
	client := backend.NewClient(httpClient, cfg.Backend.BaseURL, log)

	// 5. Pick the stats store
	rdb, err := redis.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	var store stats.Store
	if rdb.Enabled() {
		store = stats.NewRedisStore(redis.NewCache(rdb, cfg.Redis.Prefix), cfg.Redis.TTL)
		log.WithFields(map[string]interface{}{
			"prefix": cfg.Redis.Prefix,
			"ttl":    cfg.Redis.TTL,
		}).Info("Using redis stats store")
	}

	// 6. Load the stage catalog
	catalog := stages.Default()
	if cfg.Funnel.StagesFile != "" {
		if catalog, err = stages.LoadFile(cfg.Funnel.StagesFile); err != nil {
			return nil, err
		}
		log.WithFields(map[string]interface{}{
			"file":   cfg.Funnel.StagesFile,
			"stages": catalog.Len(),
		}).Info("Loaded custom stage catalog")
	}

	// 7. Create repositories and the funnel service
	statsRepo := stats.NewRepository(client, store, log, m)
	dealsRepo := deals.NewRepository(client, log, m)
	svc := funnel.NewService(statsRepo, catalog, contracts.ParseTotalPolicy(cfg.Funnel.TotalPolicy))

	log.WithFields(map[string]interface{}{
		"backend": cfg.Backend.BaseURL,
		"policy":  cfg.Funnel.TotalPolicy,
	}).Debug("Dashboard wired")

	return &app{
		cfg:     cfg,
		log:     log,
		metrics: m,
		redis:   rdb,
		stats:   statsRepo,
		deals:   dealsRepo,
		funnel:  svc,
	}, nil
}

// close releases connections held by the app
func (a *app) close() {
	if err := a.redis.Close(); err != nil {
		a.log.WithError(err).Warn("Failed to close redis")
	}
}
