package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, 4, cfg.Fetch.MaxAttempts)
	require.Equal(t, 500*time.Millisecond, cfg.Fetch.BaseDelay)
	require.Equal(t, 8*time.Second, cfg.Fetch.MaxDelay)
	require.Equal(t, 30*time.Second, cfg.Fetch.MaxRetryAfter)
	require.Equal(t, 10*time.Minute, cfg.Fetch.LimiterTTL)
	require.Equal(t, 45*time.Second, cfg.Engine.RequestTimeout)
	require.Equal(t, 10, cfg.Engine.CatalogPageCap)
	require.Equal(t, 250, cfg.Engine.CatalogPageSize)
	require.Equal(t, 6, cfg.Engine.MaxHeroProducts)
	require.True(t, cfg.Engine.RequireStorefront)
	require.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
}

func TestLoadWithFileOverrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	configYAML := `
server:
  port: 9090
  cors_origins: ["https://app.example.com"]
fetch:
  user_agent: test-agent
  max_attempts: 2
  base_delay: 100ms
  max_delay: 1s
engine:
  workers: 8
  request_timeout: 20s
  catalog_page_cap: 3
  require_storefront: false
logging:
  development: true
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(configYAML), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, []string{"https://app.example.com"}, cfg.Server.CORSOrigins)
	require.Equal(t, "test-agent", cfg.Fetch.UserAgent)
	require.Equal(t, 2, cfg.Fetch.MaxAttempts)
	require.Equal(t, 100*time.Millisecond, cfg.Fetch.BaseDelay)
	require.Equal(t, 8, cfg.Engine.Workers)
	require.Equal(t, 20*time.Second, cfg.Engine.RequestTimeout)
	require.Equal(t, 3, cfg.Engine.CatalogPageCap)
	require.False(t, cfg.Engine.RequireStorefront)
	require.True(t, cfg.Logging.Development)
	require.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestConfigValidateErrors(t *testing.T) {
	t.Parallel()

	base := Default()

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{name: "invalid port", mutate: func(c *Config) { c.Server.Port = 0 }, want: "server.port"},
		{name: "invalid attempts", mutate: func(c *Config) { c.Fetch.MaxAttempts = 0 }, want: "fetch.max_attempts"},
		{name: "delay inversion", mutate: func(c *Config) { c.Fetch.MaxDelay = time.Millisecond }, want: "fetch.base_delay"},
		{name: "jitter too wide", mutate: func(c *Config) { c.Fetch.Jitter = 1 }, want: "fetch.jitter"},
		{name: "no workers", mutate: func(c *Config) { c.Engine.Workers = 0 }, want: "engine.workers"},
		{name: "no request budget", mutate: func(c *Config) { c.Engine.RequestTimeout = 0 }, want: "engine.request_timeout"},
		{name: "no catalog pages", mutate: func(c *Config) { c.Engine.CatalogPageCap = 0 }, want: "engine.catalog_page_cap"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := base
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			require.True(t, strings.Contains(err.Error(), tt.want), "got %v", err)
		})
	}
}
