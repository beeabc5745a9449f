package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/s0up4200/wowdata/wowapi"
	"github.com/spf13/viper"
)

const (
	envPrefix   = "WOWDATA"
	maxPageSize = 1000
)

var localeRe = regexp.MustCompile(`^[a-z]{2}_[A-Z]{2}$`)

// Load loads the configuration. An explicit configPath must exist; without
// one the standard locations are searched and a missing file is fine, since
// everything can come from defaults and the environment.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)
	bindEnv(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".wowdata"))
		}
		v.AddConfigPath("/etc/wowdata/")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("region", string(wowapi.RegionUS))
	v.SetDefault("locale", "en_US")

	v.SetDefault("http.timeout", "180s")
	v.SetDefault("http.api_host", "")
	v.SetDefault("http.oauth_host", "")

	budgets := wowapi.DefaultRetryBudgets()
	v.SetDefault("retry.token", budgets.Token)
	v.SetDefault("retry.get", budgets.Get)
	v.SetDefault("retry.search", budgets.Search)
	v.SetDefault("retry.hydrate", budgets.Hydrate)
	v.SetDefault("retry.bulk", budgets.Bulk)

	v.SetDefault("hydration.concurrency", 0)
	v.SetDefault("bulk.workers", 32)
	v.SetDefault("bulk.page_size", maxPageSize)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)
}

// bindEnv maps WOWDATA_* variables onto keys. Credentials also accept the
// wow_api_id / wow_api_secret names.
func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("credentials.client_id", "WOWDATA_CREDENTIALS_CLIENT_ID",
		wowapi.EnvClientID, strings.ToUpper(wowapi.EnvClientID))
	_ = v.BindEnv("credentials.client_secret", "WOWDATA_CREDENTIALS_CLIENT_SECRET",
		wowapi.EnvClientSecret, strings.ToUpper(wowapi.EnvClientSecret))
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	region, err := wowapi.ParseRegion(cfg.Region)
	if err != nil {
		return err
	}
	cfg.Region = string(region)

	if !localeRe.MatchString(cfg.Locale) {
		return fmt.Errorf("invalid locale: %s (expected e.g. en_US)", cfg.Locale)
	}

	if cfg.Credentials.ClientID == "" || cfg.Credentials.ClientSecret == "" {
		return fmt.Errorf("credentials.client_id and credentials.client_secret are required (or set %s and %s)",
			wowapi.EnvClientID, wowapi.EnvClientSecret)
	}

	if cfg.HTTP.Timeout < 0 {
		return fmt.Errorf("http.timeout must not be negative")
	}

	budgets := map[string]uint{
		"token":   cfg.Retry.Token,
		"get":     cfg.Retry.Get,
		"search":  cfg.Retry.Search,
		"hydrate": cfg.Retry.Hydrate,
		"bulk":    cfg.Retry.Bulk,
	}
	for name, budget := range budgets {
		if budget == 0 {
			return fmt.Errorf("retry.%s must be at least 1", name)
		}
	}

	if cfg.Bulk.Workers < 1 {
		return fmt.Errorf("bulk.workers must be at least 1")
	}
	if cfg.Bulk.PageSize < 1 || cfg.Bulk.PageSize > maxPageSize {
		return fmt.Errorf("bulk.page_size must be between 1 and %d", maxPageSize)
	}

	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	return nil
}

// ClientCredentials returns the configured API credentials
func (c *Config) ClientCredentials() wowapi.Credentials {
	return wowapi.Credentials{
		ClientID:     c.Credentials.ClientID,
		ClientSecret: c.Credentials.ClientSecret,
	}
}

// ClientOptions translates the configuration into client options
func (c *Config) ClientOptions() []wowapi.Option {
	opts := []wowapi.Option{
		wowapi.WithLocale(c.Locale),
		wowapi.WithRetryBudgets(wowapi.RetryBudgets{
			Token:   c.Retry.Token,
			Get:     c.Retry.Get,
			Search:  c.Retry.Search,
			Hydrate: c.Retry.Hydrate,
			Bulk:    c.Retry.Bulk,
		}),
		wowapi.WithHydrationConcurrency(c.Hydration.Concurrency),
		wowapi.WithBulkWorkers(c.Bulk.Workers),
		wowapi.WithBulkPageSize(c.Bulk.PageSize),
	}
	if c.HTTP.Timeout > 0 {
		opts = append(opts, wowapi.WithTimeout(c.HTTP.Timeout))
	}
	if c.HTTP.APIHost != "" {
		opts = append(opts, wowapi.WithAPIHost(c.HTTP.APIHost))
	}
	if c.HTTP.OAuthHost != "" {
		opts = append(opts, wowapi.WithOAuthHost(c.HTTP.OAuthHost))
	}
	return opts
}
