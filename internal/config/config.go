// Package config loads runtime configuration from an optional YAML file,
// an optional .env file and environment variables, in that order of precedence
// (environment wins).
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Catalog sources.
const (
	SourceFile     = "file"
	SourcePostgres = "postgres"
)

// Cache backends.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Config holds all runtime configuration values.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Redis    RedisConfig    `yaml:"redis"`
	Booking  BookingConfig  `yaml:"booking"`
	Notify   NotifyConfig   `yaml:"notify"`
	Database DatabaseConfig `yaml:"database"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Port         string        `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

// LogConfig controls the global logger.
type LogConfig struct {
	Level   string `yaml:"level"`
	Service string `yaml:"service"`
}

// CatalogConfig selects where events come from and how query results are cached.
type CatalogConfig struct {
	Source   string        `yaml:"source"`
	SeedFile string        `yaml:"seed_file"`
	Cache    string        `yaml:"cache"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

// RedisConfig holds Redis connection settings for the result cache.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// BookingConfig tunes the simulated confirmation and the submit rate limit.
type BookingConfig struct {
	ConfirmDelay time.Duration `yaml:"confirm_delay"`
	FailureRate  float64       `yaml:"failure_rate"`
	SubmitLimit  int           `yaml:"submit_limit"`
	SubmitWindow time.Duration `yaml:"submit_window"`
}

// NotifyConfig configures publication of confirmed bookings. An empty AMQPURL
// logs confirmations instead of publishing them.
type NotifyConfig struct {
	AMQPURL string `yaml:"amqp_url"`
	Queue   string `yaml:"queue"`
}

// DatabaseConfig holds PostgreSQL connection settings for the postgres source.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN builds a libpq-compatible connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:         "8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Log: LogConfig{Level: "info", Service: "culinary-events"},
		Catalog: CatalogConfig{
			Source:   SourceFile,
			SeedFile: "data/events.yaml",
			Cache:    CacheMemory,
			CacheTTL: 5 * time.Minute,
		},
		Redis: RedisConfig{Addr: "localhost:6379"},
		Booking: BookingConfig{
			ConfirmDelay: 2 * time.Second,
			SubmitLimit:  10,
			SubmitWindow: time.Minute,
		},
		Notify: NotifyConfig{Queue: "booking.confirmed"},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     "5432",
			User:     "postgres",
			Password: "postgres",
			Name:     "culinary",
			SSLMode:  "disable",
		},
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// empty), a .env file in the working directory if present, and the process
// environment.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	cfg.Server.Port = getEnv("PORT", cfg.Server.Port)
	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Catalog.Source = getEnv("CATALOG_SOURCE", cfg.Catalog.Source)
	cfg.Catalog.SeedFile = getEnv("CATALOG_SEED_FILE", cfg.Catalog.SeedFile)
	cfg.Catalog.Cache = getEnv("CACHE_BACKEND", cfg.Catalog.Cache)
	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Notify.AMQPURL = getEnv("AMQP_URL", cfg.Notify.AMQPURL)
	cfg.Database.Host = getEnv("DB_HOST", cfg.Database.Host)
	cfg.Database.Port = getEnv("DB_PORT", cfg.Database.Port)
	cfg.Database.User = getEnv("DB_USER", cfg.Database.User)
	cfg.Database.Password = getEnv("DB_PASSWORD", cfg.Database.Password)
	cfg.Database.Name = getEnv("DB_NAME", cfg.Database.Name)
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", cfg.Database.SSLMode)

	var err error
	if cfg.Redis.DB, err = envInt("REDIS_DB", cfg.Redis.DB); err != nil {
		return err
	}
	if cfg.Catalog.CacheTTL, err = envDuration("CACHE_TTL", cfg.Catalog.CacheTTL); err != nil {
		return err
	}
	if cfg.Booking.ConfirmDelay, err = envDuration("BOOKING_CONFIRM_DELAY", cfg.Booking.ConfirmDelay); err != nil {
		return err
	}
	if v := os.Getenv("BOOKING_FAILURE_RATE"); v != "" {
		rate, perr := strconv.ParseFloat(v, 64)
		if perr != nil {
			return fmt.Errorf("invalid BOOKING_FAILURE_RATE %q: %w", v, perr)
		}
		cfg.Booking.FailureRate = rate
	}
	return nil
}

// Validate rejects configurations the service cannot start with.
func (c Config) Validate() error {
	switch c.Catalog.Source {
	case SourceFile:
		if c.Catalog.SeedFile == "" {
			return errors.New("catalog.seed_file is required for the file source")
		}
	case SourcePostgres:
	default:
		return fmt.Errorf("unknown catalog.source %q", c.Catalog.Source)
	}
	switch c.Catalog.Cache {
	case CacheNone, CacheMemory, CacheRedis:
	default:
		return fmt.Errorf("unknown catalog.cache %q", c.Catalog.Cache)
	}
	if c.Booking.FailureRate < 0 || c.Booking.FailureRate > 1 {
		return fmt.Errorf("booking.failure_rate must be within [0,1], got %v", c.Booking.FailureRate)
	}
	if c.Booking.ConfirmDelay < 0 {
		return errors.New("booking.confirm_delay must not be negative")
	}
	if c.Server.Port == "" {
		return errors.New("server.port is required")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}
