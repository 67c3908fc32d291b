// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Fetch     FetchConfig     `mapstructure:"fetch"`
	Engine    EngineConfig    `mapstructure:"engine"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	CORSOrigins    []string      `mapstructure:"cors_origins"`
	HandlerTimeout time.Duration `mapstructure:"handler_timeout"`
}

// FetchConfig configures the storefront HTTP client and its retry behavior.
type FetchConfig struct {
	UserAgent     string        `mapstructure:"user_agent"`
	Timeout       time.Duration `mapstructure:"timeout"`
	MaxAttempts   int           `mapstructure:"max_attempts"`
	BaseDelay     time.Duration `mapstructure:"base_delay"`
	MaxDelay      time.Duration `mapstructure:"max_delay"`
	Multiplier    float64       `mapstructure:"multiplier"`
	Jitter        float64       `mapstructure:"jitter"`
	MaxRetryAfter time.Duration `mapstructure:"max_retry_after"`
	MinInterval   time.Duration `mapstructure:"min_interval"`
	LimiterTTL    time.Duration `mapstructure:"limiter_idle_ttl"`
}

// EngineConfig governs a single analysis.
type EngineConfig struct {
	Workers           int           `mapstructure:"workers"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout"`
	CatalogPageCap    int           `mapstructure:"catalog_page_cap"`
	CatalogPageSize   int           `mapstructure:"catalog_page_size"`
	MaxHeroProducts   int           `mapstructure:"max_hero_products"`
	MaxFAQs           int           `mapstructure:"max_faqs"`
	RequireStorefront bool          `mapstructure:"require_storefront"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
}

// TelemetryConfig controls tracing.
type TelemetryConfig struct {
	ServiceName    string `mapstructure:"service_name"`
	TracingEnabled bool   `mapstructure:"tracing_enabled"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("STOREFRONT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("default config invalid: %v", err))
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.handler_timeout", "60s")
	v.SetDefault("fetch.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	v.SetDefault("fetch.timeout", "15s")
	v.SetDefault("fetch.max_attempts", 4)
	v.SetDefault("fetch.base_delay", "500ms")
	v.SetDefault("fetch.max_delay", "8s")
	v.SetDefault("fetch.multiplier", 2.0)
	v.SetDefault("fetch.jitter", 0.2)
	v.SetDefault("fetch.max_retry_after", "30s")
	v.SetDefault("fetch.min_interval", "250ms")
	v.SetDefault("fetch.limiter_idle_ttl", "10m")
	v.SetDefault("engine.workers", 4)
	v.SetDefault("engine.request_timeout", "45s")
	v.SetDefault("engine.catalog_page_cap", 10)
	v.SetDefault("engine.catalog_page_size", 250)
	v.SetDefault("engine.max_hero_products", 6)
	v.SetDefault("engine.max_faqs", 10)
	v.SetDefault("engine.require_storefront", true)
	v.SetDefault("logging.development", false)
	v.SetDefault("logging.level", "info")
	v.SetDefault("telemetry.service_name", "storefront-insights")
	v.SetDefault("telemetry.tracing_enabled", false)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Server.HandlerTimeout <= 0 {
		return fmt.Errorf("server.handler_timeout must be > 0")
	}
	if c.Fetch.Timeout <= 0 {
		return fmt.Errorf("fetch.timeout must be > 0")
	}
	if c.Fetch.MaxAttempts <= 0 {
		return fmt.Errorf("fetch.max_attempts must be > 0")
	}
	if c.Fetch.BaseDelay <= 0 || c.Fetch.MaxDelay < c.Fetch.BaseDelay {
		return fmt.Errorf("fetch.base_delay must be > 0 and <= fetch.max_delay")
	}
	if c.Fetch.Multiplier < 1 {
		return fmt.Errorf("fetch.multiplier must be >= 1")
	}
	if c.Fetch.Jitter < 0 || c.Fetch.Jitter >= 1 {
		return fmt.Errorf("fetch.jitter must be in [0,1)")
	}
	if c.Fetch.MinInterval < 0 {
		return fmt.Errorf("fetch.min_interval must be >= 0")
	}
	if c.Engine.Workers <= 0 {
		return fmt.Errorf("engine.workers must be > 0")
	}
	if c.Engine.RequestTimeout <= 0 {
		return fmt.Errorf("engine.request_timeout must be > 0")
	}
	if c.Engine.CatalogPageCap <= 0 || c.Engine.CatalogPageSize <= 0 {
		return fmt.Errorf("engine.catalog_page_cap and engine.catalog_page_size must be > 0")
	}
	if c.Engine.MaxHeroProducts < 0 || c.Engine.MaxFAQs < 0 {
		return fmt.Errorf("engine.max_hero_products and engine.max_faqs must be >= 0")
	}
	return nil
}
