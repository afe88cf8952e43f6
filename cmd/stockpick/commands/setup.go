package commands

import (
	"fmt"

	"github.com/zhouql/stockpick/internal/cache"
	"github.com/zhouql/stockpick/internal/external/tushare"
	"github.com/zhouql/stockpick/internal/fetch"
	"github.com/zhouql/stockpick/internal/notify"
	"github.com/zhouql/stockpick/internal/review"
	"github.com/zhouql/stockpick/internal/selection"
	"github.com/zhouql/stockpick/internal/strategy"
	"github.com/zhouql/stockpick/pkg/config"
	"github.com/zhouql/stockpick/pkg/database"
	"github.com/zhouql/stockpick/pkg/logger"
	"github.com/zhouql/stockpick/pkg/redis"
)

// app holds the shared wiring every command needs: config, logger,
// database, cache store, optional Redis.
type app struct {
	cfg   *config.Config
	log   *logger.Logger
	db    *database.DB
	rdb   *redis.Client
	store *cache.Store
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	if strategyFile != "" {
		cfg.Selection.StrategyFile = strategyFile
	}

	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	store, err := cache.New(db, log)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init cache store: %w", err)
	}

	rdb, err := redis.New(cfg)
	if err != nil {
		// Redis is optional; run without the distributed limiter.
		log.WithError(err).Warn("Redis unavailable, running without distributed rate limiting")
		rdb = nil
	}

	return &app{cfg: cfg, log: log, db: db, rdb: rdb, store: store}, nil
}

func (a *app) close() {
	if a.rdb != nil {
		a.rdb.Close()
	}
	a.db.Close()
}

// coordinator wires the vendor client behind the fetch coordinator.
// Fails when no vendor token is configured.
func (a *app) coordinator(force bool) (*fetch.Coordinator, error) {
	if err := a.cfg.RequireVendor(); err != nil {
		return nil, err
	}

	var limiter *redis.RateLimiter
	if a.rdb != nil && a.rdb.Enabled() {
		limiter = redis.NewRateLimiter(a.rdb, "stockpick")
	}

	vendor := tushare.New(a.cfg, a.log, limiter)
	return fetch.New(a.store, vendor, a.log, force), nil
}

// selector builds the full selection pipeline.
func (a *app) selector(force bool) (*selection.Selector, *selection.Repository, *strategy.Strategy, error) {
	strat, err := strategy.Load(a.cfg.Selection.StrategyFile)
	if err != nil {
		return nil, nil, nil, err
	}
	if topN > 0 {
		strat.TopN = topN
	}

	coord, err := a.coordinator(force)
	if err != nil {
		return nil, nil, nil, err
	}

	repo := selection.NewRepository(a.store)
	return selection.New(coord, repo, strat, a.log), repo, strat, nil
}

// notifier builds the webhook notifier, a no-op without WEBHOOK_URL.
func (a *app) notifier() *notify.Notifier {
	return notify.New(a.cfg.WebhookURL, a.log)
}

// reviewer builds the performance reviewer.
func (a *app) reviewer() *review.Reviewer {
	repo := selection.NewRepository(a.store)
	return review.New(a.store, repo, a.log)
}
