package config

import "time"

// Config represents the complete configuration structure
type Config struct {
	Region      string            `mapstructure:"region"`
	Locale      string            `mapstructure:"locale"`
	Credentials CredentialsConfig `mapstructure:"credentials"`
	HTTP        HTTPConfig        `mapstructure:"http"`
	Retry       RetryConfig       `mapstructure:"retry"`
	Hydration   HydrationConfig   `mapstructure:"hydration"`
	Bulk        BulkConfig        `mapstructure:"bulk"`
	Filter      FilterConfig      `mapstructure:"filter"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// CredentialsConfig holds the battle.net API client credentials
type CredentialsConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
}

// HTTPConfig tunes the HTTP client. Empty hosts mean the region defaults.
type HTTPConfig struct {
	Timeout   time.Duration `mapstructure:"timeout"`
	APIHost   string        `mapstructure:"api_host"`
	OAuthHost string        `mapstructure:"oauth_host"`
}

// RetryConfig holds the attempt budget of every call site
type RetryConfig struct {
	Token   uint `mapstructure:"token"`
	Get     uint `mapstructure:"get"`
	Search  uint `mapstructure:"search"`
	Hydrate uint `mapstructure:"hydrate"`
	Bulk    uint `mapstructure:"bulk"`
}

// HydrationConfig caps concurrent search result fetches. Zero or less means
// one goroutine per result.
type HydrationConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

// BulkConfig tunes the exhaustive item crawl
type BulkConfig struct {
	Workers  int `mapstructure:"workers"`
	PageSize int `mapstructure:"page_size"`
}

// FilterConfig contains named auction filter presets
type FilterConfig struct {
	Presets map[string]string `mapstructure:"presets"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}
