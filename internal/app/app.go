package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/qubitgyan-student/internal/data/localstate"
	"github.com/yungbote/qubitgyan-student/internal/http"
	"github.com/yungbote/qubitgyan-student/internal/observability"
	"github.com/yungbote/qubitgyan-student/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Router   *gin.Engine
	Server   *http.Server
	Cfg      Config
	Clients  Clients
	Repos    Repos
	Services Services
	Metrics  *observability.Metrics

	otelShutdown func(context.Context) error
}

func New(ctx context.Context) (*App, error) {
	cfg, err := LoadConfig(nil)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.LogMode, logger.WithService(cfg.ServiceName))
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	log.Info("Loaded configuration", "http_addr", cfg.HTTPAddr, "lms_base_url", cfg.LMS.BaseURL, "redis", cfg.Redis.Addr != "")

	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfigFromEnv(cfg.ServiceName))

	db, err := localstate.Open(log, cfg.LocalStateDSN)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init local state: %w", err)
	}

	metrics := observability.NewMetrics()
	clients, err := wireClients(log, cfg, metrics)
	if err != nil {
		log.Sync()
		return nil, err
	}
	reposet := wireRepos(db, log)
	serviceset, err := wireServices(log, cfg, clients, reposet, metrics)
	if err != nil {
		clients.Close()
		log.Sync()
		return nil, err
	}
	handlerset := wireHandlers(log, db, clients, serviceset)
	middleware := wireMiddleware(log, cfg, serviceset)
	server := wireServer(log, cfg, metrics, handlerset, middleware)

	return &App{
		Log:          log,
		DB:           db,
		Router:       server.Engine,
		Server:       server,
		Cfg:          cfg,
		Clients:      clients,
		Repos:        reposet,
		Services:     serviceset,
		Metrics:      metrics,
		otelShutdown: otelShutdown,
	}, nil
}

// Run serves HTTP, sweeps idle workspaces and follows shared tree
// invalidations until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Services.Sessions.Run(gctx)
		return nil
	})

	if a.Clients.TreeCache != nil {
		g.Go(func() error {
			err := a.Clients.TreeCache.Subscribe(gctx, a.Services.Sessions.InvalidateAll)
			if err != nil && !errors.Is(err, context.Canceled) {
				a.Log.Warn("tree invalidation subscription ended", "error", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		a.Log.Info("HTTP server listening", "addr", a.Cfg.HTTPAddr)
		if err := a.Server.Run(gctx, a.Cfg.HTTPAddr, a.Cfg.ShutdownGrace.Std()); err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		a.Log.Info("HTTP server stopped")
		return nil
	})

	return g.Wait()
}

func (a *App) Close() {
	if a == nil {
		return
	}
	a.Clients.Close()
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.otelShutdown(ctx); err != nil && a.Log != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
