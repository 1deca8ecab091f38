package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Log         LogConfig
	Pricing     PricingConfig
	Feed        FeedConfig
	Marketplace MarketplaceConfig
	Jobs        JobsConfig
}

type ServerConfig struct {
	Port            int
	ShutdownTimeout time.Duration
	// WriteTimeout bounds synchronous batch requests.
	WriteTimeout time.Duration
	RateLimit    int
	RateWindow   time.Duration
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type LogConfig struct {
	Level    string
	Encoding string
}

type PricingConfig struct {
	Workers      int
	StoreTimeout time.Duration
	FetchTimeout time.Duration
	ApplyTimeout time.Duration
	MinorDigits  int32
	MaxBatchSize int
	// SettingsBackend selects the bot settings store: "mysql" or "memory".
	SettingsBackend string
	// LockBackend selects per-product locking: "memory" or "redis".
	LockBackend string
	LockTTL     time.Duration
	LockPrefix  string
}

type FeedConfig struct {
	BaseURL string
	Token   string
}

type MarketplaceConfig struct {
	BaseURL string
	Token   string
}

type JobsConfig struct {
	Enabled     bool
	Concurrency int
	Cron        string
}

// Load reads configuration from an optional YAML file at path, overridden by
// environment variables (pricing.workers -> PRICING_WORKERS).
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("stat config file: %w", err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            v.GetInt("server.port"),
			ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
			WriteTimeout:    v.GetDuration("server.write_timeout"),
			RateLimit:       v.GetInt("server.rate_limit"),
			RateWindow:      v.GetDuration("server.rate_window"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("db.host"),
			Port:            v.GetInt("db.port"),
			User:            v.GetString("db.user"),
			Password:        v.GetString("db.password"),
			Name:            v.GetString("db.name"),
			MaxOpenConns:    v.GetInt("db.max_open_conns"),
			MaxIdleConns:    v.GetInt("db.max_idle_conns"),
			ConnMaxLifetime: v.GetDuration("db.conn_max_lifetime"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Log: LogConfig{
			Level:    v.GetString("log.level"),
			Encoding: v.GetString("log.encoding"),
		},
		Pricing: PricingConfig{
			Workers:         v.GetInt("pricing.workers"),
			StoreTimeout:    v.GetDuration("pricing.store_timeout"),
			FetchTimeout:    v.GetDuration("pricing.fetch_timeout"),
			ApplyTimeout:    v.GetDuration("pricing.apply_timeout"),
			MinorDigits:     v.GetInt32("pricing.minor_digits"),
			MaxBatchSize:    v.GetInt("pricing.max_batch_size"),
			SettingsBackend: v.GetString("pricing.settings_backend"),
			LockBackend:     v.GetString("pricing.lock_backend"),
			LockTTL:         v.GetDuration("pricing.lock_ttl"),
			LockPrefix:      v.GetString("pricing.lock_prefix"),
		},
		Feed: FeedConfig{
			BaseURL: v.GetString("feed.base_url"),
			Token:   v.GetString("feed.token"),
		},
		Marketplace: MarketplaceConfig{
			BaseURL: v.GetString("marketplace.base_url"),
			Token:   v.GetString("marketplace.token"),
		},
		Jobs: JobsConfig{
			Enabled:     v.GetBool("jobs.enabled"),
			Concurrency: v.GetInt("jobs.concurrency"),
			Cron:        v.GetString("jobs.cron"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.write_timeout", "2m")
	v.SetDefault("server.rate_limit", 30)
	v.SetDefault("server.rate_window", "1m")

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 3306)
	v.SetDefault("db.user", "repricer")
	v.SetDefault("db.password", "secret")
	v.SetDefault("db.name", "repricer")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", "5m")

	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "json")

	v.SetDefault("pricing.workers", 8)
	v.SetDefault("pricing.store_timeout", "2s")
	v.SetDefault("pricing.fetch_timeout", "3s")
	v.SetDefault("pricing.apply_timeout", "3s")
	v.SetDefault("pricing.minor_digits", 2)
	v.SetDefault("pricing.max_batch_size", 1000)
	v.SetDefault("pricing.settings_backend", "mysql")
	v.SetDefault("pricing.lock_backend", "memory")
	v.SetDefault("pricing.lock_ttl", "30s")
	v.SetDefault("pricing.lock_prefix", "repricer")

	v.SetDefault("feed.base_url", "http://localhost:9001")
	v.SetDefault("marketplace.base_url", "http://localhost:9002")

	v.SetDefault("jobs.enabled", false)
	v.SetDefault("jobs.concurrency", 2)
	v.SetDefault("jobs.cron", "")
}

func (c *Config) Validate() error {
	if c.Pricing.Workers <= 0 {
		return errors.New("pricing.workers must be positive")
	}
	if c.Pricing.StoreTimeout <= 0 || c.Pricing.FetchTimeout <= 0 || c.Pricing.ApplyTimeout <= 0 {
		return errors.New("pricing timeouts must be positive")
	}
	if c.Pricing.MinorDigits < 0 {
		return errors.New("pricing.minor_digits must be non-negative")
	}
	switch c.Pricing.SettingsBackend {
	case "mysql", "memory":
	default:
		return fmt.Errorf("unknown pricing.settings_backend %q", c.Pricing.SettingsBackend)
	}
	switch c.Pricing.LockBackend {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown pricing.lock_backend %q", c.Pricing.LockBackend)
	}
	if c.Pricing.LockBackend == "redis" && c.Pricing.LockTTL <= c.Pricing.LockHoldLimit() {
		return errors.New("pricing.lock_ttl must exceed store_timeout + fetch_timeout + apply_timeout")
	}
	// Background passes run in a separate process, so product locks must be
	// visible to both the server and the worker.
	if c.Jobs.Enabled && c.Pricing.LockBackend != "redis" {
		return errors.New("jobs.enabled requires pricing.lock_backend redis")
	}
	return nil
}

// ValidateWorker checks the extra requirements of the background worker.
// The server reads the same file, so requiring jobs.enabled here also puts
// the server on the shared Redis locks.
func (c *Config) ValidateWorker() error {
	if !c.Jobs.Enabled {
		return errors.New("worker requires jobs.enabled")
	}
	return c.Validate()
}

// LockHoldLimit is the longest a product lock is held by one pipeline.
func (c PricingConfig) LockHoldLimit() time.Duration {
	return c.StoreTimeout + c.FetchTimeout + c.ApplyTimeout
}
