// Package config loads service configuration from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all upstream configuration for the service.
type Config struct {
	Covalent        CovalentConfig
	Scoring         ScoringConfig
	Telegram        TelegramConfig
	UpstreamTimeout time.Duration `env:"UPSTREAM_TIMEOUT" envDefault:"30s"`
}

// CovalentConfig configures the indexer client and the transaction fetcher.
type CovalentConfig struct {
	APIKey     string  `env:"COVALENT_API_KEY"`
	BaseURL    string  `env:"COVALENT_BASE_URL" envDefault:"https://api.covalenthq.com"`
	Chain      string  `env:"COVALENT_CHAIN" envDefault:"eth-mainnet"`
	MaxPages   int     `env:"INDEXER_MAX_PAGES" envDefault:"50"`  // page ceiling per address
	RateLimit  float64 `env:"INDEXER_RATE_LIMIT" envDefault:"4"`  // requests per second, 0 disables
	MaxRetries int     `env:"INDEXER_MAX_RETRIES" envDefault:"0"` // per-request retries
}

// ScoringConfig configures the model API client. An empty URL disables scoring.
type ScoringConfig struct {
	URL        string `env:"SCORING_API_URL"`
	MaxRetries int    `env:"SCORING_MAX_RETRIES" envDefault:"2"`
}

// TelegramConfig configures alert delivery. Alerts are dropped when either
// field is empty.
type TelegramConfig struct {
	BotToken string        `env:"TELEGRAM_BOT_TOKEN"`
	ChatID   string        `env:"TELEGRAM_CHAT_ID"`
	Timeout  time.Duration `env:"TELEGRAM_TIMEOUT" envDefault:"50s"`
}

// Validation errors.
var (
	ErrMissingAPIKey = errors.New("COVALENT_API_KEY is required")
	ErrInvalidConfig = errors.New("invalid config")
)

// Load reads envFile (if it exists) into the process environment and parses
// the configuration. Variables already set in the environment win.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FromMap parses the configuration from an explicit variable set instead of
// the process environment.
func FromMap(vars map[string]string) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: vars}); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Covalent.APIKey == "" {
		return ErrMissingAPIKey
	}
	if err := validateURL("COVALENT_BASE_URL", c.Covalent.BaseURL); err != nil {
		return err
	}
	if c.Covalent.Chain == "" {
		return fmt.Errorf("%w: COVALENT_CHAIN is empty", ErrInvalidConfig)
	}
	if c.Covalent.MaxPages <= 0 {
		return fmt.Errorf("%w: INDEXER_MAX_PAGES must be positive, got %d", ErrInvalidConfig, c.Covalent.MaxPages)
	}
	if c.Covalent.RateLimit < 0 {
		return fmt.Errorf("%w: INDEXER_RATE_LIMIT must not be negative", ErrInvalidConfig)
	}
	if c.Covalent.MaxRetries < 0 || c.Scoring.MaxRetries < 0 {
		return fmt.Errorf("%w: retry counts must not be negative", ErrInvalidConfig)
	}
	if c.Scoring.URL != "" {
		if err := validateURL("SCORING_API_URL", c.Scoring.URL); err != nil {
			return err
		}
	}
	if c.UpstreamTimeout <= 0 || c.Telegram.Timeout <= 0 {
		return fmt.Errorf("%w: timeouts must be positive", ErrInvalidConfig)
	}
	return nil
}

// ScoringEnabled reports whether a model API is configured.
func (c *Config) ScoringEnabled() bool {
	return c.Scoring.URL != ""
}

func validateURL(name, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: %s must be an absolute URL, got %q", ErrInvalidConfig, name, raw)
	}
	return nil
}
