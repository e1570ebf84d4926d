// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/newspulse/newspulse/internal/news"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Search   SearchConfig   `mapstructure:"search"`
	Fetch    FetchConfig    `mapstructure:"fetch"`
	Headless HeadlessConfig `mapstructure:"headless"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Archive  ArchiveConfig  `mapstructure:"archive"`
	PubSub   PubSubConfig   `mapstructure:"pubsub"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port           int `mapstructure:"port"`
	RequestTimeout int `mapstructure:"request_timeout_seconds"`
}

// SearchConfig governs the query aggregator.
type SearchConfig struct {
	BaseURL      string   `mapstructure:"base_url"`
	Language     string   `mapstructure:"language"`
	Region       string   `mapstructure:"region"`
	MinArticles  int      `mapstructure:"min_articles"`
	PaceMinMs    int      `mapstructure:"pace_min_ms"`
	PaceMaxMs    int      `mapstructure:"pace_max_ms"`
	DefaultTerms []string `mapstructure:"default_terms"`
}

// FetchConfig configures the content fetcher and its retry policy.
type FetchConfig struct {
	TimeoutSeconds int      `mapstructure:"timeout_seconds"`
	MaxRetries     int      `mapstructure:"max_retries"`
	BackoffMinMs   int      `mapstructure:"backoff_min_ms"`
	BackoffMaxMs   int      `mapstructure:"backoff_max_ms"`
	MinTextLength  int      `mapstructure:"min_text_length"`
	BlockedDomains []string `mapstructure:"blocked_domains"`
	UserAgents     []string `mapstructure:"user_agents"`
}

// HeadlessConfig gates the optional JS renderer used before a thin-content
// fallback. Disabled by default.
type HeadlessConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxParallel   int  `mapstructure:"max_parallel"`
	NavTimeoutSec int  `mapstructure:"nav_timeout_seconds"`
}

// PipelineConfig bounds the fetch fan-out and the whole run.
type PipelineConfig struct {
	Concurrency    int `mapstructure:"concurrency"`
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// CacheConfig controls the result cache in front of the pipeline.
type CacheConfig struct {
	TTLSeconds int `mapstructure:"ttl_seconds"`
}

// ArchiveConfig enables the optional Postgres archive when a DSN is set.
type ArchiveConfig struct {
	DSN      string `mapstructure:"dsn"`
	Table    string `mapstructure:"table"`
	MaxConns int32  `mapstructure:"max_conns"`
}

// PubSubConfig holds metadata for run-completion notifications.
type PubSubConfig struct {
	ProjectID string `mapstructure:"project_id"`
	TopicName string `mapstructure:"topic_name"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("NEWSPULSE")
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

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.request_timeout_seconds", 120)
	v.SetDefault("search.base_url", "https://news.google.com/rss/search")
	v.SetDefault("search.language", "en")
	v.SetDefault("search.region", "IN")
	v.SetDefault("search.min_articles", 30)
	v.SetDefault("search.pace_min_ms", 500)
	v.SetDefault("search.pace_max_ms", 1500)
	v.SetDefault("fetch.timeout_seconds", 10)
	v.SetDefault("fetch.max_retries", 4)
	v.SetDefault("fetch.backoff_min_ms", 1000)
	v.SetDefault("fetch.backoff_max_ms", 2000)
	v.SetDefault("fetch.min_text_length", 50)
	v.SetDefault("headless.enabled", false)
	v.SetDefault("headless.max_parallel", 1)
	v.SetDefault("headless.nav_timeout_seconds", 25)
	v.SetDefault("pipeline.concurrency", 10)
	v.SetDefault("pipeline.timeout_seconds", 120)
	v.SetDefault("cache.ttl_seconds", 300)
	v.SetDefault("archive.table", "news_articles")
	v.SetDefault("logging.development", false)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Search.MinArticles <= 0 {
		return fmt.Errorf("search.min_articles must be > 0")
	}
	if c.Search.PaceMaxMs < c.Search.PaceMinMs {
		return fmt.Errorf("search.pace_max_ms must be >= search.pace_min_ms")
	}
	if c.Fetch.TimeoutSeconds <= 0 {
		return fmt.Errorf("fetch.timeout_seconds must be > 0")
	}
	if c.Fetch.MaxRetries <= 0 {
		return fmt.Errorf("fetch.max_retries must be > 0")
	}
	if c.Fetch.BackoffMaxMs < c.Fetch.BackoffMinMs {
		return fmt.Errorf("fetch.backoff_max_ms must be >= fetch.backoff_min_ms")
	}
	if c.Pipeline.Concurrency <= 0 {
		return fmt.Errorf("pipeline.concurrency must be > 0")
	}
	if c.Headless.Enabled && c.Headless.MaxParallel <= 0 {
		return fmt.Errorf("headless.max_parallel must be > 0 when headless is enabled")
	}
	if c.Cache.TTLSeconds < 0 {
		return fmt.Errorf("cache.ttl_seconds must be >= 0")
	}
	return nil
}

// FetchTimeout returns the per-request HTTP timeout.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.Fetch.TimeoutSeconds) * time.Second
}

// PipelineTimeout bounds one whole pipeline run.
func (c Config) PipelineTimeout() time.Duration {
	return time.Duration(c.Pipeline.TimeoutSeconds) * time.Second
}

// CacheTTL returns the result cache TTL.
func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

// Backoff converts the fetch retry knobs into a policy object.
func (c Config) Backoff() news.BackoffPolicy {
	return news.BackoffPolicy{
		MaxAttempts: c.Fetch.MaxRetries,
		MinDelay:    time.Duration(c.Fetch.BackoffMinMs) * time.Millisecond,
		MaxDelay:    time.Duration(c.Fetch.BackoffMaxMs) * time.Millisecond,
	}
}
