package config

import (
	"errors"
	"fmt"
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Auth     AuthConfig     `yaml:"auth"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Search   SearchConfig   `yaml:"search"`
	OpenAI   OpenAIConfig   `yaml:"openai"`
	Scoring  ScoringConfig  `yaml:"scoring"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"15s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"30s"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL           string `yaml:"url"            env:"DATABASE_URL"`
	MigrationsDir string `yaml:"migrations_dir" env:"MIGRATIONS_DIR" env-default:"migrations"`
}

// RedisConfig holds Redis connection and result-cache settings.
type RedisConfig struct {
	URL       string        `yaml:"url"        env:"REDIS_URL"`
	ResultTTL time.Duration `yaml:"result_ttl" env:"RESULT_CACHE_TTL" env-default:"15m"`
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	BearerToken string `yaml:"bearer_token" env:"BEARER_TOKEN"`
}

// CatalogConfig holds destination-catalog provider settings.
type CatalogConfig struct {
	BaseURL        string        `yaml:"base_url"        env:"CATALOG_BASE_URL"`
	APIKey         string        `yaml:"api_key"         env:"CATALOG_API_KEY"`
	TTL            time.Duration `yaml:"ttl"             env:"CATALOG_TTL"             env-default:"168h"`
	FuzzyThreshold float64       `yaml:"fuzzy_threshold" env:"CATALOG_FUZZY_THRESHOLD" env-default:"0.70"`
}

// SearchConfig holds product-search provider settings.
type SearchConfig struct {
	BaseURL string `yaml:"base_url" env:"SEARCH_BASE_URL"`
	APIKey  string `yaml:"api_key"  env:"SEARCH_API_KEY"`
}

// OpenAIConfig holds text-completion collaborator settings.
// An empty API key disables the collaborator; enrichment stays deterministic.
type OpenAIConfig struct {
	APIKey string `yaml:"api_key" env:"OPENAI_API_KEY"`
	Model  string `yaml:"model"   env:"OPENAI_MODEL" env-default:"gpt-4o-mini"`
}

// ScoreBand is one threshold-to-points row of a scoring band table.
type ScoreBand struct {
	Limit  float64 `yaml:"limit"`
	Points int     `yaml:"points"`
}

// ScoringConfig holds the relevance-scoring point budgets and band tables.
// Defaults match the tuned production values; change with care, the bands
// were chosen empirically. Band tables are YAML-only: a threshold table has
// no sensible single-env-var encoding, and an empty table means "keep the
// defaults".
type ScoringConfig struct {
	BudgetMax      int `yaml:"budget_max"      env:"SCORE_BUDGET_MAX"      env-default:"30"`
	TagMax         int `yaml:"tag_max"         env:"SCORE_TAG_MAX"         env-default:"40"`
	VibeMax        int `yaml:"vibe_max"        env:"SCORE_VIBE_MAX"        env-default:"20"`
	PreferencesMax int `yaml:"preferences_max" env:"SCORE_PREFERENCES_MAX" env-default:"10"`
	QualityMax     int `yaml:"quality_max"     env:"SCORE_QUALITY_MAX"     env-default:"10"`

	BudgetBands []ScoreBand `yaml:"budget_bands"`
	TagBands    []ScoreBand `yaml:"tag_bands"`
	VibeBands   []ScoreBand `yaml:"vibe_bands"`
	RatingBands []ScoreBand `yaml:"rating_bands"`
	ReviewBands []ScoreBand `yaml:"review_bands"`
}

// Validate checks that all required settings are present.
func (c *Config) Validate() error {
	var errs []error

	if c.Database.URL == "" {
		errs = append(errs, errors.New("database.url is required"))
	}
	if c.Redis.URL == "" {
		errs = append(errs, errors.New("redis.url is required"))
	}
	if c.Auth.BearerToken == "" {
		errs = append(errs, errors.New("auth.bearer_token is required"))
	}
	if c.Catalog.BaseURL == "" {
		errs = append(errs, errors.New("catalog.base_url is required"))
	}
	if c.Search.BaseURL == "" {
		errs = append(errs, errors.New("search.base_url is required"))
	}
	if c.Catalog.FuzzyThreshold <= 0 || c.Catalog.FuzzyThreshold > 1 {
		errs = append(errs, fmt.Errorf("catalog.fuzzy_threshold must be in (0,1], got %v", c.Catalog.FuzzyThreshold))
	}

	return errors.Join(errs...)
}
