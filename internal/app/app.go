// Package app wires configuration, storage, caches and services into one
// container shared by the server and the seeder.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/redis/go-redis/v9"

	"journeylens/internal/cache"
	"journeylens/internal/config"
	"journeylens/internal/insight"
	"journeylens/internal/repository"
	"journeylens/internal/seed"
	"journeylens/internal/service"
	"journeylens/internal/transport/rest"
	"journeylens/internal/transport/ws"
)

type App struct {
	Config *config.Config
	Logger *slog.Logger

	Store          *repository.Store
	Redis          *redis.Client // nil when caching is disabled
	DashboardCache cache.DashboardCache
	RiskBoard      cache.RiskBoardCache
	Rules          *insight.Rules
	Engine         *insight.Engine
	Hub            *ws.Hub

	AuthService       *service.AuthService
	AccountService    *service.AccountService
	InsightService    *service.InsightService
	DashboardService  *service.DashboardService
	FeedbackService   *service.FeedbackService
	EvaluationService *service.EvaluationService
	SeedService       *service.SeedService
}

// New opens the configured store and optional Redis and builds every service.
// The runtime engine has no seeded overrides; those apply only while seeding.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	rules := insight.DefaultRules()
	if cfg.RulesFile != "" {
		loaded, err := insight.LoadRules(cfg.RulesFile)
		if err != nil {
			return nil, err
		}
		rules = loaded
		logger.Info("loaded insight rules", "path", cfg.RulesFile, "intents", len(rules.Intents))
	}

	store, err := repository.Open(ctx, repository.Options{
		Driver:   cfg.Database.Driver,
		Path:     cfg.Database.Path,
		MongoURI: cfg.Database.MongoURI,
		MongoDB:  cfg.Database.MongoDB,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Database.Driver, err)
	}
	logger.Info("store opened", "driver", cfg.Database.Driver)

	a := &App{
		Config:         cfg,
		Logger:         logger,
		Store:          store,
		DashboardCache: cache.NewNopDashboardCache(),
		RiskBoard:      cache.NewNopRiskBoardCache(),
		Rules:          rules,
		Engine:         insight.NewEngine(rules, nil),
	}

	if cfg.Redis.URL != "" {
		client, err := cache.NewClient(ctx, cfg.Redis.URL)
		if err != nil {
			store.Close(ctx)
			return nil, err
		}
		a.Redis = client
		a.DashboardCache = cache.NewDashboardCache(client, cfg.Redis.TTL)
		a.RiskBoard = cache.NewRiskBoardCache(client)
		logger.Info("redis caching enabled", "ttl", cfg.Redis.TTL)
	} else {
		logger.Info("redis url not set, caching disabled")
	}

	a.Hub = ws.NewHub(logger)

	a.AuthService = service.NewAuthService(cfg.AuthToken)
	a.AccountService = service.NewAccountService(store.Accounts, store.Interactions, store.Insights)
	a.InsightService = service.NewInsightService(store.Accounts, store.Interactions, store.Insights,
		a.Engine, a.DashboardCache, logger)
	a.DashboardService = service.NewDashboardService(store.Accounts, store.Interactions, store.Insights,
		a.Engine, a.DashboardCache, a.RiskBoard, logger)
	a.FeedbackService = service.NewFeedbackService(store.Insights, store.Feedback, a.DashboardCache, logger)
	a.EvaluationService = service.NewEvaluationService(store.Interactions, store.Insights, store.Feedback,
		store.EvalSamples, a.Engine, a.DashboardCache, logger)
	a.SeedService = service.NewSeedService(store, rules, a.DashboardCache, a.RiskBoard, logger)

	// Inject broadcaster (the hub implements service.Broadcaster)
	a.InsightService.SetBroadcaster(a.Hub)

	return a, nil
}

// SeedFiles returns the demo CSV paths from the configuration.
func (a *App) SeedFiles() seed.Files {
	d := a.Config.DemoData
	files := seed.Files{
		Accounts:     d.AccountsPath(),
		Contacts:     d.ContactsPath(),
		Interactions: d.InteractionsPath(),
	}
	if d.Expected != "" {
		files.Expected = d.ExpectedPath()
	}
	return files
}

// Router builds the HTTP handler for every route.
func (a *App) Router() http.Handler {
	return rest.NewRouter(&rest.Container{
		AppName:           a.Config.AppName,
		APIVersion:        a.Config.APIVersion,
		CORSOrigins:       a.Config.HTTP.CORSOrigins,
		Logger:            a.Logger,
		AuthService:       a.AuthService,
		AccountService:    a.AccountService,
		InsightService:    a.InsightService,
		DashboardService:  a.DashboardService,
		FeedbackService:   a.FeedbackService,
		EvaluationService: a.EvaluationService,
		WSHub:             a.Hub,
	})
}

// Close stops the hub and releases the store and Redis connections.
func (a *App) Close(ctx context.Context) error {
	a.Hub.Close()
	var errs []error
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	errs = append(errs, a.Store.Close(ctx))
	return errors.Join(errs...)
}
