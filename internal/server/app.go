// Package server builds the application's dependency graph and runs the HTTP service.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/storefront-insights/internal/api"
	"github.com/JakeFAU/storefront-insights/internal/clock"
	"github.com/JakeFAU/storefront-insights/internal/config"
	"github.com/JakeFAU/storefront-insights/internal/engine"
	"github.com/JakeFAU/storefront-insights/internal/fetch"
	collyfetcher "github.com/JakeFAU/storefront-insights/internal/fetch/colly"
	"github.com/JakeFAU/storefront-insights/internal/logging"
	"github.com/JakeFAU/storefront-insights/internal/policy/ratelimit"
	"github.com/JakeFAU/storefront-insights/internal/telemetry"
)

const shutdownTimeout = 10 * time.Second

// App contains the application's dependencies.
type App struct {
	cfg            config.Config
	logger         *zap.Logger
	engine         *engine.Engine
	apiServer      *api.Server
	tracerShutdown func(context.Context) error
}

// Build creates the application's dependencies.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	logger, err := logging.New(logging.Options{
		Development: cfg.Logging.Development,
		Level:       cfg.Logging.Level,
	})
	if err != nil {
		return nil, fmt.Errorf("logger init failed: %w", err)
	}
	zap.ReplaceGlobals(logger)
	return BuildWithLogger(ctx, cfg, logger)
}

// BuildWithLogger creates the application's dependencies around an existing logger.
func BuildWithLogger(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	app := &App{cfg: cfg, logger: logger}
	logger.Info("building application dependencies",
		zap.Int("server_port", cfg.Server.Port),
		zap.Int("workers", cfg.Engine.Workers),
		zap.Duration("request_timeout", cfg.Engine.RequestTimeout),
	)

	if cfg.Telemetry.TracingEnabled {
		tp, err := telemetry.InitTracerProvider(ctx, cfg.Telemetry.ServiceName)
		if err != nil {
			return nil, fmt.Errorf("tracer init failed: %w", err)
		}
		app.tracerShutdown = tp.Shutdown
	}

	clk := clock.NewSystem()
	fetcher := collyfetcher.New(collyfetcher.Config{
		UserAgent: cfg.Fetch.UserAgent,
		Timeout:   cfg.Fetch.Timeout,
	})
	limiter := ratelimit.New(ratelimit.Config{
		MinInterval: cfg.Fetch.MinInterval,
		IdleTTL:     cfg.Fetch.LimiterTTL,
	})
	client := fetch.NewClient(fetcher, limiter, retryPolicy(cfg.Fetch), logger, fetch.WithClock(clk))
	logger.Info("using colly fetcher",
		zap.String("user_agent", cfg.Fetch.UserAgent),
		zap.Int("max_attempts", cfg.Fetch.MaxAttempts),
		zap.Duration("min_interval", cfg.Fetch.MinInterval),
	)

	eng, err := engine.New(client, clk, engineConfig(cfg.Engine), logger)
	if err != nil {
		return nil, fmt.Errorf("engine init failed: %w", err)
	}
	app.engine = eng
	app.apiServer = api.NewServer(eng, clk, cfg.Server, logger)
	return app, nil
}

// Analyzer exposes the analysis engine for one-shot commands.
func (a *App) Analyzer() api.Analyzer {
	return a.engine
}

// Logger returns the application logger.
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Handler returns the HTTP handler serving the API.
func (a *App) Handler() http.Handler {
	return a.apiServer.Handler()
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.Server.Port),
		Handler:           a.apiServer.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		a.logger.Info("http server started", zap.Int("port", a.cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("http server error", zap.Error(err))
			serveErr <- err
			stop()
		}
	}()

	<-ctx.Done()
	a.logger.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("server shutdown error", zap.Error(err))
	}
	if err := a.Close(shutdownCtx); err != nil {
		return err
	}

	select {
	case err := <-serveErr:
		return fmt.Errorf("serve: %w", err)
	default:
		return nil
	}
}

// Close flushes logs and stops tracing.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.tracerShutdown != nil {
		if err := a.tracerShutdown(ctx); err != nil {
			a.logger.Warn("tracer shutdown failed", zap.Error(err))
			errs = append(errs, err)
		}
	}
	a.logger.Info("shutdown complete")
	// Sync fails on stderr/stdout sinks on some platforms; ignore it.
	_ = a.logger.Sync()
	return errors.Join(errs...)
}

func retryPolicy(cfg config.FetchConfig) fetch.RetryPolicy {
	policy := fetch.DefaultRetryPolicy()
	policy.MaxAttempts = cfg.MaxAttempts
	policy.BaseDelay = cfg.BaseDelay
	policy.MaxDelay = cfg.MaxDelay
	policy.Multiplier = cfg.Multiplier
	policy.Jitter = cfg.Jitter
	policy.MaxRetryAfter = cfg.MaxRetryAfter
	return policy
}

func engineConfig(cfg config.EngineConfig) engine.Config {
	return engine.Config{
		Workers:           cfg.Workers,
		RequestTimeout:    cfg.RequestTimeout,
		CatalogPageCap:    cfg.CatalogPageCap,
		CatalogPageSize:   cfg.CatalogPageSize,
		MaxHeroProducts:   cfg.MaxHeroProducts,
		MaxFAQs:           cfg.MaxFAQs,
		RequireStorefront: cfg.RequireStorefront,
	}
}
