// Package config provides application configuration loading and validation.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the complete application configuration.
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Provider   ProviderConfig
	Resilience ResilienceConfig
	Cache      CacheConfig
	Worker     WorkerConfig
	Auth       AuthConfig
	Currency   CurrencyConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port          int  `mapstructure:"port"`
	ServeSwagger  bool `mapstructure:"serve_swagger"`
	ServeAsynqmon bool `mapstructure:"serve_asynqmon"`
}

// DatabaseConfig holds PostgreSQL connection settings for the fetch audit log.
type DatabaseConfig struct {
	Host               string `mapstructure:"host"`
	Port               int    `mapstructure:"port"`
	User               string `mapstructure:"user"`
	Password           string `mapstructure:"password"`
	Name               string `mapstructure:"name"`
	SSLMode            string `mapstructure:"sslmode"`
	MaxOpenConns       int    `mapstructure:"max_open_conns"`
	MaxIdleConns       int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeSec int    `mapstructure:"conn_max_lifetime_sec"`
	DSN                string
}

// RedisConfig holds connection settings for the Redis instances.
// CacheAddr is only required when cache.backend is "redis".
type RedisConfig struct {
	AsynqAddr string `mapstructure:"asynq_addr"`
	CacheAddr string `mapstructure:"cache_addr"`
}

// ProviderConfig selects the active upstream rate source and holds
// per-provider settings.
type ProviderConfig struct {
	Active           string                 `mapstructure:"active"`
	Frankfurter      FrankfurterConfig      `mapstructure:"frankfurter"`
	ExchangeRateHost ExchangeRateHostConfig `mapstructure:"exchangerate_host"`
}

// FrankfurterConfig holds settings for the frankfurter provider.
type FrankfurterConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Timeout int    `mapstructure:"timeout_sec"`
}

// ExchangeRateHostConfig holds settings for the exchangerate.host provider.
type ExchangeRateHostConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	Timeout int    `mapstructure:"timeout_sec"`
}

// ResilienceConfig holds retry and circuit breaker settings for upstream calls.
type ResilienceConfig struct {
	RetryMaxAttempts       int `mapstructure:"retry_max_attempts"`
	RetryInitialBackoffSec int `mapstructure:"retry_initial_backoff_sec"`
	BreakerFailureLimit    int `mapstructure:"breaker_failure_limit"`
	BreakerCooldownSec     int `mapstructure:"breaker_cooldown_sec"`
}

// CacheConfig holds rate cache settings. Backend is "memory" or "redis".
type CacheConfig struct {
	Backend            string `mapstructure:"backend"`
	LatestTTLSec       int    `mapstructure:"latest_ttl_sec"`
	HistoricalTTLSec   int    `mapstructure:"historical_ttl_sec"`
	ConversionTTLSec   int    `mapstructure:"conversion_ttl_sec"`
	JanitorIntervalSec int    `mapstructure:"janitor_interval_sec"`
}

// WorkerConfig holds background worker and task queue settings.
type WorkerConfig struct {
	Concurrency      int `mapstructure:"concurrency"`
	MaxRetry         int `mapstructure:"max_retry"`
	TimeoutSec       int `mapstructure:"timeout_sec"`
	CheckIntervalSec int `mapstructure:"check_interval_sec"`
}

// AuthConfig holds JWT settings and the seed credentials.
// Seed users are a stand-in for an external identity store.
type AuthConfig struct {
	Secret         string `mapstructure:"secret"`
	Issuer         string `mapstructure:"issuer"`
	TokenTTLMin    int    `mapstructure:"token_ttl_min"`
	AdminUser      string `mapstructure:"admin_user"`
	AdminPassword  string `mapstructure:"admin_password"`
	ClientUser     string `mapstructure:"client_user"`
	ClientPassword string `mapstructure:"client_password"`
}

// CurrencyConfig holds the excluded currency policy, fixed at startup.
type CurrencyConfig struct {
	Excluded []string `mapstructure:"excluded"`
}

// LoadConfig reads configuration from config files, environment variables, and defaults.
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		fmt.Printf("No .env file found or error loading it: %v\n", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Config search paths
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("./internal/config")

	viper.SetEnvPrefix("RATESVC")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// default values
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.serve_swagger", true)
	viper.SetDefault("server.serve_asynqmon", false)
	viper.SetDefault("database.host", "db")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "postgres")
	viper.SetDefault("database.name", "ratesdb")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("database.max_open_conns", 10)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime_sec", 300)
	viper.SetDefault("redis.asynq_addr", "redis_asynq:6380")
	viper.SetDefault("redis.cache_addr", "")
	viper.SetDefault("provider.active", "frankfurter")
	viper.SetDefault("provider.frankfurter.base_url", "https://api.frankfurter.app")
	viper.SetDefault("provider.frankfurter.timeout_sec", 5)
	viper.SetDefault("provider.exchangerate_host.base_url", "https://api.exchangerate.host")
	viper.SetDefault("provider.exchangerate_host.api_key", "")
	viper.SetDefault("provider.exchangerate_host.timeout_sec", 5)
	viper.SetDefault("resilience.retry_max_attempts", 3)
	viper.SetDefault("resilience.retry_initial_backoff_sec", 1)
	viper.SetDefault("resilience.breaker_failure_limit", 2)
	viper.SetDefault("resilience.breaker_cooldown_sec", 30)
	viper.SetDefault("cache.backend", "memory")
	viper.SetDefault("cache.latest_ttl_sec", 3600)
	viper.SetDefault("cache.historical_ttl_sec", 3600)
	viper.SetDefault("cache.conversion_ttl_sec", 86400)
	viper.SetDefault("cache.janitor_interval_sec", 0)
	viper.SetDefault("worker.concurrency", 1)
	viper.SetDefault("worker.max_retry", 3)
	viper.SetDefault("worker.timeout_sec", 30)
	viper.SetDefault("worker.check_interval_sec", 5)
	viper.SetDefault("auth.issuer", "ratesvc")
	viper.SetDefault("auth.token_ttl_min", 60)
	viper.SetDefault("auth.admin_user", "admin")
	viper.SetDefault("auth.client_user", "user")
	viper.SetDefault("currency.excluded", []string{"TRY", "PLN", "THB", "MXN"})

	if err := viper.ReadInConfig(); err != nil {
		// It's okay if no config file, we have defaults and env
		fmt.Printf("Config file not found: %v\n", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	cfg.Database.DSN = fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.Database.User, cfg.Database.Password,
		cfg.Database.Host, cfg.Database.Port,
		cfg.Database.Name, cfg.Database.SSLMode)

	return &cfg, nil
}

// Validate checks that all required configuration fields are set and valid.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 {
		errs = append(errs, fmt.Errorf("server.port must be positive, got %d", c.Server.Port))
	}

	if c.Database.Host == "" {
		errs = append(errs, fmt.Errorf("database.host is required"))
	}
	if c.Database.Port <= 0 {
		errs = append(errs, fmt.Errorf("database.port must be positive, got %d", c.Database.Port))
	}
	if c.Database.User == "" {
		errs = append(errs, fmt.Errorf("database.user is required"))
	}
	if c.Database.Name == "" {
		errs = append(errs, fmt.Errorf("database.name is required"))
	}

	if c.Redis.AsynqAddr == "" {
		errs = append(errs, fmt.Errorf("redis.asynq_addr is required (set RATESVC_REDIS_ASYNQ_ADDR)"))
	}

	if c.Provider.Active == "" {
		errs = append(errs, fmt.Errorf("provider.active is required"))
	}

	switch c.Cache.Backend {
	case "memory":
	case "redis":
		if c.Redis.CacheAddr == "" {
			errs = append(errs, fmt.Errorf("redis.cache_addr is required when cache.backend is redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("cache.backend must be memory or redis, got %q", c.Cache.Backend))
	}
	if c.Cache.LatestTTLSec <= 0 {
		errs = append(errs, fmt.Errorf("cache.latest_ttl_sec must be positive, got %d", c.Cache.LatestTTLSec))
	}
	if c.Cache.HistoricalTTLSec <= 0 {
		errs = append(errs, fmt.Errorf("cache.historical_ttl_sec must be positive, got %d", c.Cache.HistoricalTTLSec))
	}
	if c.Cache.ConversionTTLSec <= 0 {
		errs = append(errs, fmt.Errorf("cache.conversion_ttl_sec must be positive, got %d", c.Cache.ConversionTTLSec))
	}

	if c.Resilience.RetryMaxAttempts < 0 {
		errs = append(errs, fmt.Errorf("resilience.retry_max_attempts must be non-negative, got %d", c.Resilience.RetryMaxAttempts))
	}
	if c.Resilience.RetryInitialBackoffSec <= 0 {
		errs = append(errs, fmt.Errorf("resilience.retry_initial_backoff_sec must be positive, got %d", c.Resilience.RetryInitialBackoffSec))
	}
	if c.Resilience.BreakerFailureLimit <= 0 {
		errs = append(errs, fmt.Errorf("resilience.breaker_failure_limit must be positive, got %d", c.Resilience.BreakerFailureLimit))
	}
	if c.Resilience.BreakerCooldownSec <= 0 {
		errs = append(errs, fmt.Errorf("resilience.breaker_cooldown_sec must be positive, got %d", c.Resilience.BreakerCooldownSec))
	}

	if c.Worker.Concurrency <= 0 {
		errs = append(errs, fmt.Errorf("worker.concurrency must be positive, got %d", c.Worker.Concurrency))
	}
	if c.Worker.MaxRetry < 0 {
		errs = append(errs, fmt.Errorf("worker.max_retry must be non-negative, got %d", c.Worker.MaxRetry))
	}
	if c.Worker.TimeoutSec <= 0 {
		errs = append(errs, fmt.Errorf("worker.timeout_sec must be positive, got %d", c.Worker.TimeoutSec))
	}
	if c.Worker.CheckIntervalSec <= 0 {
		errs = append(errs, fmt.Errorf("worker.check_interval_sec must be positive, got %d", c.Worker.CheckIntervalSec))
	}

	if c.Auth.Secret == "" {
		errs = append(errs, fmt.Errorf("auth.secret is required (set RATESVC_AUTH_SECRET)"))
	}
	if c.Auth.TokenTTLMin <= 0 {
		errs = append(errs, fmt.Errorf("auth.token_ttl_min must be positive, got %d", c.Auth.TokenTTLMin))
	}

	return errors.Join(errs...)
}
