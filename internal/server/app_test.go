package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/storefront-insights/internal/config"
)

func TestBuildWithLoggerWiresHandler(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	app, err := BuildWithLogger(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, app.Analyzer())

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rr := httptest.NewRecorder()
	app.Handler().ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	require.NoError(t, app.Close(context.Background()))
}

func TestBuildWithTracing(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Telemetry.TracingEnabled = true
	app, err := BuildWithLogger(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, app.tracerShutdown)
	require.NoError(t, app.Close(context.Background()))
}

func TestRetryPolicyFromConfig(t *testing.T) {
	t.Parallel()

	cfg := config.Default().Fetch
	cfg.MaxAttempts = 2
	cfg.BaseDelay = time.Second
	policy := retryPolicy(cfg)
	require.Equal(t, 2, policy.MaxAttempts)
	require.Equal(t, time.Second, policy.BaseDelay)
	require.Equal(t, cfg.MaxRetryAfter, policy.MaxRetryAfter)
}

func TestEngineConfigFromConfig(t *testing.T) {
	t.Parallel()

	cfg := config.Default().Engine
	got := engineConfig(cfg)
	require.Equal(t, cfg.Workers, got.Workers)
	require.Equal(t, cfg.CatalogPageCap, got.CatalogPageCap)
	require.Equal(t, cfg.RequireStorefront, got.RequireStorefront)
}
