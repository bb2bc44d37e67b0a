package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port                  string   `mapstructure:"PORT"`
	Env                   string   `mapstructure:"ENV"`
	DatabaseURL           string   `mapstructure:"DATABASE_URL"`
	DBMaxConns            int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns            int32    `mapstructure:"DB_MIN_CONNS"`
	CORSOrigins           []string `mapstructure:"CORS_ORIGINS"`
	WorklistRetentionDays int      `mapstructure:"WORKLIST_RETENTION_DAYS"`
	EmbeddingBaseURL      string   `mapstructure:"EMBEDDING_BASE_URL"`
	EmbeddingAPIKey       string   `mapstructure:"EMBEDDING_API_KEY"`
	EmbeddingModel        string   `mapstructure:"EMBEDDING_MODEL"`
	EmbeddingDimensions   int      `mapstructure:"EMBEDDING_DIMENSIONS"`
	SearchTimeoutMS       int      `mapstructure:"SEARCH_TIMEOUT_MS"`
	RequestTimeoutMS      int      `mapstructure:"REQUEST_TIMEOUT_MS"`
	RateLimitRPS          float64  `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst        int      `mapstructure:"RATE_LIMIT_BURST"`
	BodyLimit             string   `mapstructure:"BODY_LIMIT"`
	BodyLimitBatch        string   `mapstructure:"BODY_LIMIT_BATCH"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("WORKLIST_RETENTION_DAYS", 7)
	v.SetDefault("EMBEDDING_BASE_URL", "https://api.openai.com/v1")
	v.SetDefault("EMBEDDING_MODEL", "text-embedding-3-small")
	v.SetDefault("EMBEDDING_DIMENSIONS", 1536)
	v.SetDefault("SEARCH_TIMEOUT_MS", 2000)
	v.SetDefault("REQUEST_TIMEOUT_MS", 30000)
	v.SetDefault("RATE_LIMIT_RPS", 100)
	v.SetDefault("RATE_LIMIT_BURST", 200)
	v.SetDefault("BODY_LIMIT", "1M")
	v.SetDefault("BODY_LIMIT_BATCH", "10M")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("WORKLIST_RETENTION_DAYS")
	v.BindEnv("EMBEDDING_BASE_URL")
	v.BindEnv("EMBEDDING_API_KEY")
	v.BindEnv("EMBEDDING_MODEL")
	v.BindEnv("EMBEDDING_DIMENSIONS")
	v.BindEnv("SEARCH_TIMEOUT_MS")
	v.BindEnv("REQUEST_TIMEOUT_MS")
	v.BindEnv("RATE_LIMIT_RPS")
	v.BindEnv("RATE_LIMIT_BURST")
	v.BindEnv("BODY_LIMIT")
	v.BindEnv("BODY_LIMIT_BATCH")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// SearchTimeout returns the similarity-search deadline as a duration.
func (c *Config) SearchTimeout() time.Duration {
	return time.Duration(c.SearchTimeoutMS) * time.Millisecond
}

// RequestTimeout returns the per-request deadline as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}

// Validate checks that the configuration is safe to run. The retention
// window and embedding dimensionality must be positive; a zero retention
// window would evict every entry on the first maintenance pass.
func (c *Config) Validate() error {
	if c.WorklistRetentionDays <= 0 {
		return fmt.Errorf("WORKLIST_RETENTION_DAYS must be positive, got %d", c.WorklistRetentionDays)
	}
	if c.EmbeddingDimensions <= 0 {
		return fmt.Errorf("EMBEDDING_DIMENSIONS must be positive, got %d", c.EmbeddingDimensions)
	}
	if c.SearchTimeoutMS <= 0 {
		return fmt.Errorf("SEARCH_TIMEOUT_MS must be positive, got %d", c.SearchTimeoutMS)
	}
	return nil
}
