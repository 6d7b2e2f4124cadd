package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	AppEnv   string `yaml:"app_env"`
	LogLevel string `yaml:"log_level"`

	GRPCPort int `yaml:"grpc_port"`
	HTTPPort int `yaml:"http_port"`

	// GRPCUpstream is the address the gateway dials.
	GRPCUpstream string `yaml:"grpc_upstream"`

	Redis   RedisConfig   `yaml:"redis"`
	Remote  RemoteConfig  `yaml:"remote"`
	Pricing PricingConfig `yaml:"pricing"`
	Catalog CatalogConfig `yaml:"catalog"`
	Tracing TracingConfig `yaml:"tracing"`
}

type RedisConfig struct {
	// URL is empty when the process should keep its state in memory.
	URL       string `yaml:"url"`
	Namespace string `yaml:"namespace"`
}

type RemoteConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type PricingConfig struct {
	// UnitRounding is "fractional" or "whole".
	UnitRounding string `yaml:"unit_rounding"`
}

type CatalogConfig struct {
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

type TracingConfig struct {
	Enabled bool `yaml:"enabled"`
}

func Default() Config {
	return Config{
		AppEnv:       "dev",
		LogLevel:     "info",
		HTTPPort:     8080,
		GRPCPort:     8081,
		GRPCUpstream: "localhost:8081",
		Redis:        RedisConfig{Namespace: "epicerie"},
		Remote: RemoteConfig{
			BaseURL: "http://localhost:3000/api",
			Timeout: 10 * time.Second,
		},
		Pricing: PricingConfig{UnitRounding: "fractional"},
		Catalog: CatalogConfig{CacheTTL: 5 * time.Minute},
	}
}

// Load builds the configuration from defaults, the optional YAML file named by
// EPICERIE_CONFIG and finally environment overrides.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("EPICERIE_CONFIG"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.AppEnv = getEnv("APP_ENV", cfg.AppEnv)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.HTTPPort = getEnvInt("HTTP_PORT", cfg.HTTPPort)
	cfg.GRPCPort = getEnvInt("GRPC_PORT", cfg.GRPCPort)
	cfg.GRPCUpstream = getEnv("GRPC_UPSTREAM", cfg.GRPCUpstream)
	cfg.Redis.URL = getEnv("REDIS_URL", cfg.Redis.URL)
	cfg.Redis.Namespace = getEnv("REDIS_NAMESPACE", cfg.Redis.Namespace)
	cfg.Remote.BaseURL = getEnv("API_BASE_URL", cfg.Remote.BaseURL)
	cfg.Remote.Timeout = getEnvDuration("API_TIMEOUT", cfg.Remote.Timeout)
	cfg.Pricing.UnitRounding = getEnv("PRICING_UNIT_ROUNDING", cfg.Pricing.UnitRounding)
	cfg.Catalog.CacheTTL = getEnvDuration("CATALOG_CACHE_TTL", cfg.Catalog.CacheTTL)
	cfg.Tracing.Enabled = getEnvBool("TRACING_ENABLED", cfg.Tracing.Enabled)
}

func (c Config) Validate() error {
	var errs []error
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		errs = append(errs, fmt.Errorf("http_port out of range: %d", c.HTTPPort))
	}
	if c.GRPCPort <= 0 || c.GRPCPort > 65535 {
		errs = append(errs, fmt.Errorf("grpc_port out of range: %d", c.GRPCPort))
	}
	if strings.TrimSpace(c.GRPCUpstream) == "" {
		errs = append(errs, errors.New("grpc_upstream is required"))
	}
	if strings.TrimSpace(c.Remote.BaseURL) == "" {
		errs = append(errs, errors.New("remote.base_url is required"))
	}
	if c.Remote.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("remote.timeout must be positive, got %s", c.Remote.Timeout))
	}
	switch c.Pricing.UnitRounding {
	case "fractional", "whole":
	default:
		errs = append(errs, fmt.Errorf("pricing.unit_rounding must be fractional or whole, got %q", c.Pricing.UnitRounding))
	}
	if c.Catalog.CacheTTL < 0 {
		errs = append(errs, fmt.Errorf("catalog.cache_ttl cannot be negative, got %s", c.Catalog.CacheTTL))
	}
	return errors.Join(errs...)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)

	if v == "" {
		return def
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}

	return n
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
