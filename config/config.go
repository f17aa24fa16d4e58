package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Catalog source types
const (
	CatalogSourceFile   = "file"
	CatalogSourceSQLite = "sqlite"
	CatalogSourceHTTP   = "http"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	Catalog    CatalogConfig
	Cache      CacheConfig
	RateLimit  RateLimitConfig
	Scoring    ScoringConfig
	Vocabulary VocabularyConfig
	Log        LogConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// CatalogConfig selects and configures the product catalog source
type CatalogConfig struct {
	Source            string        `mapstructure:"source"` // "file", "sqlite" or "http"
	Path              string        `mapstructure:"path"`
	URL               string        `mapstructure:"url"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
	MaxRetries        int           `mapstructure:"max_retries"`
	Timeout           time.Duration `mapstructure:"timeout"`
	BreakerThreshold  uint32        `mapstructure:"breaker_threshold"`
	BreakerCooldown   time.Duration `mapstructure:"breaker_cooldown"`
}

// CacheConfig holds catalog snapshot cache configuration
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig holds per-client rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute, 0 disables
	Burst int `mapstructure:"burst"`
}

// ScoringConfig holds the ranking weights
type ScoringConfig struct {
	BrandBonus        int `mapstructure:"brand_bonus"`
	UseCaseWeight     int `mapstructure:"use_case_weight"`
	FeatureWeight     int `mapstructure:"feature_weight"`
	BudgetMarginBonus int `mapstructure:"budget_margin_bonus"`
	BudgetMargin      int `mapstructure:"budget_margin"`
}

// VocabularyConfig points at an optional YAML vocabulary file
type VocabularyConfig struct {
	File string `mapstructure:"file"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "console"
}

// IsDevelopment reports whether the server runs in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/productfinder/")

	// PRODUCTFINDER_CATALOG_SOURCE -> catalog.source
	v.SetEnvPrefix("PRODUCTFINDER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads a .env file from the working directory if one exists.
// Variables already present in the environment win.
func loadEnvFile() error {
	if _, err := os.Stat(".env"); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(".env")
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Catalog defaults
	v.SetDefault("catalog.source", CatalogSourceFile)
	v.SetDefault("catalog.path", "products.json")
	v.SetDefault("catalog.url", "")
	v.SetDefault("catalog.requests_per_second", 1.0)
	v.SetDefault("catalog.burst", 5)
	v.SetDefault("catalog.max_retries", 3)
	v.SetDefault("catalog.breaker_threshold", 5)
	v.SetDefault("catalog.breaker_cooldown", "30s")
	v.SetDefault("catalog.timeout", "30s")

	// Cache defaults
	v.SetDefault("cache.ttl", "5m")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 100)
	v.SetDefault("ratelimit.burst", 20)

	// Scoring defaults
	v.SetDefault("scoring.brand_bonus", 2)
	v.SetDefault("scoring.use_case_weight", 1)
	v.SetDefault("scoring.feature_weight", 1)
	v.SetDefault("scoring.budget_margin_bonus", 1)
	v.SetDefault("scoring.budget_margin", 5000)

	// Vocabulary defaults to the built-in one
	v.SetDefault("vocabulary.file", "")

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// validate validates the configuration
func validate(config *Config) error {
	switch config.Catalog.Source {
	case CatalogSourceFile, CatalogSourceSQLite:
		if config.Catalog.Path == "" {
			return fmt.Errorf("catalog path is required for source '%s' (set PRODUCTFINDER_CATALOG_PATH)", config.Catalog.Source)
		}
	case CatalogSourceHTTP:
		if config.Catalog.URL == "" {
			return fmt.Errorf("catalog URL is required for source 'http' (set PRODUCTFINDER_CATALOG_URL)")
		}
	default:
		return fmt.Errorf("catalog source must be 'file', 'sqlite' or 'http', got: %s", config.Catalog.Source)
	}

	if config.Log.Format != "json" && config.Log.Format != "console" {
		return fmt.Errorf("log format must be 'json' or 'console', got: %s", config.Log.Format)
	}

	if config.RateLimit.PerIP < 0 {
		return fmt.Errorf("rate limit per IP must not be negative, got: %d", config.RateLimit.PerIP)
	}

	scoring := config.Scoring
	if scoring.BrandBonus <= 0 || scoring.UseCaseWeight <= 0 || scoring.FeatureWeight <= 0 ||
		scoring.BudgetMarginBonus <= 0 || scoring.BudgetMargin <= 0 {
		return fmt.Errorf("scoring weights and budget margin must be positive, got: %+v", scoring)
	}

	return nil
}
