package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

var configEnvVars = []string{
	"PRODUCTFINDER_SERVER_PORT",
	"PRODUCTFINDER_SERVER_ENVIRONMENT",
	"PRODUCTFINDER_SERVER_ALLOWED_ORIGINS",
	"PRODUCTFINDER_CATALOG_SOURCE",
	"PRODUCTFINDER_CATALOG_PATH",
	"PRODUCTFINDER_CATALOG_URL",
	"PRODUCTFINDER_CATALOG_TIMEOUT",
	"PRODUCTFINDER_CACHE_TTL",
	"PRODUCTFINDER_RATELIMIT_PER_IP",
	"PRODUCTFINDER_SCORING_BRAND_BONUS",
	"PRODUCTFINDER_SCORING_BUDGET_MARGIN",
	"PRODUCTFINDER_VOCABULARY_FILE",
	"PRODUCTFINDER_LOG_LEVEL",
	"PRODUCTFINDER_LOG_FORMAT",
}

// clearConfigEnv unsets every variable Load reads and restores them after the test
func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, name := range configEnvVars {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
}

// inTempDir runs the test from an empty directory so no config.yaml or .env is picked up
func inTempDir(t *testing.T) {
	t.Helper()
	originalDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd() error = %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("Chdir() error = %v", err)
	}
	t.Cleanup(func() { os.Chdir(originalDir) })
}

func TestLoad(t *testing.T) {
	t.Run("loads with defaults when no env vars set", func(t *testing.T) {
		clearConfigEnv(t)
		inTempDir(t)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "8080" {
			t.Errorf("Server.Port = %s, want 8080", cfg.Server.Port)
		}
		if !cfg.IsDevelopment() {
			t.Errorf("Server.Environment = %s, want development", cfg.Server.Environment)
		}
		if cfg.Catalog.Source != CatalogSourceFile {
			t.Errorf("Catalog.Source = %s, want file", cfg.Catalog.Source)
		}
		if cfg.Catalog.Path != "products.json" {
			t.Errorf("Catalog.Path = %s, want products.json", cfg.Catalog.Path)
		}
		if cfg.Catalog.Timeout != 30*time.Second {
			t.Errorf("Catalog.Timeout = %v, want 30s", cfg.Catalog.Timeout)
		}
		if cfg.Catalog.BreakerThreshold != 5 || cfg.Catalog.BreakerCooldown != 30*time.Second {
			t.Errorf("Catalog breaker = %d/%v, want 5/30s", cfg.Catalog.BreakerThreshold, cfg.Catalog.BreakerCooldown)
		}
		if cfg.Cache.TTL != 5*time.Minute {
			t.Errorf("Cache.TTL = %v, want 5m", cfg.Cache.TTL)
		}
		if cfg.RateLimit.PerIP != 100 {
			t.Errorf("RateLimit.PerIP = %d, want 100", cfg.RateLimit.PerIP)
		}

		wantScoring := ScoringConfig{BrandBonus: 2, UseCaseWeight: 1, FeatureWeight: 1, BudgetMarginBonus: 1, BudgetMargin: 5000}
		if cfg.Scoring != wantScoring {
			t.Errorf("Scoring = %+v, want %+v", cfg.Scoring, wantScoring)
		}
		if cfg.Vocabulary.File != "" {
			t.Errorf("Vocabulary.File = %s, want empty", cfg.Vocabulary.File)
		}
		if cfg.Log.Level != "info" || cfg.Log.Format != "json" {
			t.Errorf("Log = %+v, want info/json", cfg.Log)
		}
	})

	t.Run("loads custom values from environment variables", func(t *testing.T) {
		clearConfigEnv(t)
		inTempDir(t)

		t.Setenv("PRODUCTFINDER_SERVER_PORT", "9090")
		t.Setenv("PRODUCTFINDER_SERVER_ENVIRONMENT", "production")
		t.Setenv("PRODUCTFINDER_SERVER_ALLOWED_ORIGINS", "https://shop.example.com,https://admin.example.com")
		t.Setenv("PRODUCTFINDER_CATALOG_SOURCE", "sqlite")
		t.Setenv("PRODUCTFINDER_CATALOG_PATH", "/var/lib/productfinder/products.db")
		t.Setenv("PRODUCTFINDER_CACHE_TTL", "1h")
		t.Setenv("PRODUCTFINDER_RATELIMIT_PER_IP", "200")
		t.Setenv("PRODUCTFINDER_SCORING_BRAND_BONUS", "3")
		t.Setenv("PRODUCTFINDER_SCORING_BUDGET_MARGIN", "2500")
		t.Setenv("PRODUCTFINDER_VOCABULARY_FILE", "/etc/productfinder/vocabulary.yaml")
		t.Setenv("PRODUCTFINDER_LOG_LEVEL", "debug")
		t.Setenv("PRODUCTFINDER_LOG_FORMAT", "console")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "9090" {
			t.Errorf("Server.Port = %s, want 9090", cfg.Server.Port)
		}
		if cfg.IsDevelopment() {
			t.Errorf("Server.Environment = %s, want production", cfg.Server.Environment)
		}
		if len(cfg.Server.AllowedOrigins) != 2 || cfg.Server.AllowedOrigins[1] != "https://admin.example.com" {
			t.Errorf("Server.AllowedOrigins = %v, want two origins", cfg.Server.AllowedOrigins)
		}
		if cfg.Catalog.Source != CatalogSourceSQLite {
			t.Errorf("Catalog.Source = %s, want sqlite", cfg.Catalog.Source)
		}
		if cfg.Catalog.Path != "/var/lib/productfinder/products.db" {
			t.Errorf("Catalog.Path = %s", cfg.Catalog.Path)
		}
		if cfg.Cache.TTL != time.Hour {
			t.Errorf("Cache.TTL = %v, want 1h", cfg.Cache.TTL)
		}
		if cfg.RateLimit.PerIP != 200 {
			t.Errorf("RateLimit.PerIP = %d, want 200", cfg.RateLimit.PerIP)
		}
		if cfg.Scoring.BrandBonus != 3 {
			t.Errorf("Scoring.BrandBonus = %d, want 3", cfg.Scoring.BrandBonus)
		}
		if cfg.Scoring.BudgetMargin != 2500 {
			t.Errorf("Scoring.BudgetMargin = %d, want 2500", cfg.Scoring.BudgetMargin)
		}
		if cfg.Vocabulary.File != "/etc/productfinder/vocabulary.yaml" {
			t.Errorf("Vocabulary.File = %s", cfg.Vocabulary.File)
		}
		if cfg.Log.Level != "debug" || cfg.Log.Format != "console" {
			t.Errorf("Log = %+v, want debug/console", cfg.Log)
		}
	})

	t.Run("reads config.yaml from the working directory", func(t *testing.T) {
		clearConfigEnv(t)
		inTempDir(t)

		content := `
catalog:
  source: http
  url: https://catalog.example.com/products
scoring:
  feature_weight: 2
`
		if err := os.WriteFile("config.yaml", []byte(content), 0644); err != nil {
			t.Fatalf("Failed to create config.yaml: %v", err)
		}

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Catalog.Source != CatalogSourceHTTP {
			t.Errorf("Catalog.Source = %s, want http", cfg.Catalog.Source)
		}
		if cfg.Catalog.URL != "https://catalog.example.com/products" {
			t.Errorf("Catalog.URL = %s", cfg.Catalog.URL)
		}
		if cfg.Scoring.FeatureWeight != 2 {
			t.Errorf("Scoring.FeatureWeight = %d, want 2", cfg.Scoring.FeatureWeight)
		}
		if cfg.Scoring.BrandBonus != 2 {
			t.Errorf("Scoring.BrandBonus = %d, want default 2", cfg.Scoring.BrandBonus)
		}
	})

	t.Run("environment overrides config file", func(t *testing.T) {
		clearConfigEnv(t)
		inTempDir(t)

		if err := os.WriteFile("config.yaml", []byte("server:\n  port: \"7000\"\n"), 0644); err != nil {
			t.Fatalf("Failed to create config.yaml: %v", err)
		}
		t.Setenv("PRODUCTFINDER_SERVER_PORT", "7100")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}
		if cfg.Server.Port != "7100" {
			t.Errorf("Server.Port = %s, want 7100", cfg.Server.Port)
		}
	})

	t.Run("fails validation for http source without URL", func(t *testing.T) {
		clearConfigEnv(t)
		inTempDir(t)
		t.Setenv("PRODUCTFINDER_CATALOG_SOURCE", "http")

		_, err := Load()
		if err == nil {
			t.Fatal("Load() error = nil, want error for missing catalog URL")
		}
		if !strings.Contains(err.Error(), "catalog URL is required") {
			t.Errorf("Load() error = %v, want 'catalog URL is required'", err)
		}
	})

	t.Run("rejects a zero scoring weight instead of using the default", func(t *testing.T) {
		clearConfigEnv(t)
		inTempDir(t)
		t.Setenv("PRODUCTFINDER_SCORING_BRAND_BONUS", "0")

		_, err := Load()
		if err == nil {
			t.Fatal("Load() error = nil, want error for zero brand bonus")
		}
		if !strings.Contains(err.Error(), "must be positive") {
			t.Errorf("Load() error = %v, want 'must be positive'", err)
		}
	})

	t.Run("fails validation for unknown catalog source", func(t *testing.T) {
		clearConfigEnv(t)
		inTempDir(t)
		t.Setenv("PRODUCTFINDER_CATALOG_SOURCE", "postgres")

		if _, err := Load(); err == nil {
			t.Error("Load() error = nil, want error for invalid catalog source")
		}
	})
}

func TestLoadEnvFile(t *testing.T) {
	t.Run("returns nil when .env file doesn't exist", func(t *testing.T) {
		inTempDir(t)

		if err := loadEnvFile(); err != nil {
			t.Errorf("loadEnvFile() error = %v, want nil when file doesn't exist", err)
		}
	})

	t.Run("loads variables and skips comments", func(t *testing.T) {
		inTempDir(t)

		envContent := `
# Comment line
PF_TEST_VAR_1=value1

   # indented comment
PF_TEST_VAR_2=value2
# PF_TEST_COMMENTED=should_not_load
`
		if err := os.WriteFile(".env", []byte(envContent), 0644); err != nil {
			t.Fatalf("Failed to create test .env file: %v", err)
		}

		for _, name := range []string{"PF_TEST_VAR_1", "PF_TEST_VAR_2", "PF_TEST_COMMENTED"} {
			t.Setenv(name, "")
			os.Unsetenv(name)
		}

		if err := loadEnvFile(); err != nil {
			t.Fatalf("loadEnvFile() error = %v, want nil", err)
		}

		if os.Getenv("PF_TEST_VAR_1") != "value1" {
			t.Errorf("PF_TEST_VAR_1 = %s, want value1", os.Getenv("PF_TEST_VAR_1"))
		}
		if os.Getenv("PF_TEST_VAR_2") != "value2" {
			t.Errorf("PF_TEST_VAR_2 = %s, want value2", os.Getenv("PF_TEST_VAR_2"))
		}
		if _, ok := os.LookupEnv("PF_TEST_COMMENTED"); ok {
			t.Errorf("PF_TEST_COMMENTED should not be loaded from comment")
		}
	})

	t.Run("doesn't override existing environment variables", func(t *testing.T) {
		inTempDir(t)
		t.Setenv("PF_TEST_OVERRIDE", "existing-value")

		if err := os.WriteFile(".env", []byte("PF_TEST_OVERRIDE=new-value"), 0644); err != nil {
			t.Fatalf("Failed to create test .env file: %v", err)
		}

		if err := loadEnvFile(); err != nil {
			t.Fatalf("loadEnvFile() error = %v, want nil", err)
		}

		if os.Getenv("PF_TEST_OVERRIDE") != "existing-value" {
			t.Errorf("PF_TEST_OVERRIDE = %s, want existing-value", os.Getenv("PF_TEST_OVERRIDE"))
		}
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Catalog: CatalogConfig{Source: CatalogSourceFile, Path: "products.json"},
			Scoring: ScoringConfig{BrandBonus: 2, UseCaseWeight: 1, FeatureWeight: 1, BudgetMarginBonus: 1, BudgetMargin: 5000},
			Log:     LogConfig{Level: "info", Format: "json"},
		}
	}

	testCases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid file source", mutate: func(c *Config) {}},
		{name: "valid sqlite source", mutate: func(c *Config) { c.Catalog.Source = CatalogSourceSQLite }},
		{name: "valid http source", mutate: func(c *Config) {
			c.Catalog.Source = CatalogSourceHTTP
			c.Catalog.URL = "https://catalog.example.com"
		}},
		{name: "file source without path", mutate: func(c *Config) { c.Catalog.Path = "" }, wantErr: true},
		{name: "http source without url", mutate: func(c *Config) { c.Catalog.Source = CatalogSourceHTTP }, wantErr: true},
		{name: "unknown source", mutate: func(c *Config) { c.Catalog.Source = "redis" }, wantErr: true},
		{name: "unknown log format", mutate: func(c *Config) { c.Log.Format = "xml" }, wantErr: true},
		{name: "negative rate limit", mutate: func(c *Config) { c.RateLimit.PerIP = -1 }, wantErr: true},
		{name: "negative scoring weight", mutate: func(c *Config) { c.Scoring.FeatureWeight = -2 }, wantErr: true},
		{name: "zero brand bonus", mutate: func(c *Config) { c.Scoring.BrandBonus = 0 }, wantErr: true},
		{name: "zero budget margin", mutate: func(c *Config) { c.Scoring.BudgetMargin = 0 }, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(cfg)

			err := validate(cfg)
			if tc.wantErr && err == nil {
				t.Error("validate() error = nil, want error")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("validate() error = %v, want nil", err)
			}
		})
	}
}
