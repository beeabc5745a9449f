package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Region: "eu",
		Locale: "en_GB",
		Credentials: CredentialsConfig{
			ClientID:     "id",
			ClientSecret: "secret",
		},
		Retry:   RetryConfig{Token: 5, Get: 5, Search: 5, Hydrate: 5, Bulk: 10},
		Bulk:    BulkConfig{Workers: 4, PageSize: 100},
		Logging: LoggingConfig{Level: "info", Format: "console"},
	}
}

// clearCredentialEnv hides credentials the developer may have exported.
func clearCredentialEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"wow_api_id", "wow_api_secret", "WOW_API_ID", "WOW_API_SECRET",
		"WOWDATA_CREDENTIALS_CLIENT_ID", "WOWDATA_CREDENTIALS_CLIENT_SECRET",
	} {
		t.Setenv(name, "")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{
			name:   "valid",
			modify: func(*Config) {},
		},
		{
			name:   "region is normalized",
			modify: func(c *Config) { c.Region = "KR" },
		},
		{
			name:    "unknown region",
			modify:  func(c *Config) { c.Region = "oce" },
			wantErr: "unknown region",
		},
		{
			name:    "bad locale",
			modify:  func(c *Config) { c.Locale = "english" },
			wantErr: "invalid locale",
		},
		{
			name:    "missing secret",
			modify:  func(c *Config) { c.Credentials.ClientSecret = "" },
			wantErr: "wow_api_secret",
		},
		{
			name:    "zero retry budget",
			modify:  func(c *Config) { c.Retry.Hydrate = 0 },
			wantErr: "retry.hydrate must be at least 1",
		},
		{
			name:    "page size too large",
			modify:  func(c *Config) { c.Bulk.PageSize = 5000 },
			wantErr: "bulk.page_size",
		},
		{
			name:    "no workers",
			modify:  func(c *Config) { c.Bulk.Workers = 0 },
			wantErr: "bulk.workers",
		},
		{
			name:    "negative timeout",
			modify:  func(c *Config) { c.HTTP.Timeout = -time.Second },
			wantErr: "http.timeout",
		},
		{
			name:    "invalid log level",
			modify:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: "invalid logging level",
		},
		{
			name:    "invalid log format",
			modify:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: "invalid logging format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modify(cfg)

			err := validate(cfg)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	clearCredentialEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
region: eu
locale: de_DE
credentials:
  client_id: file-id
  client_secret: file-secret
http:
  timeout: 30s
retry:
  bulk: 20
hydration:
  concurrency: 8
filter:
  presets:
    linen: "ItemID == 2589"
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "eu", cfg.Region)
	assert.Equal(t, "de_DE", cfg.Locale)
	assert.Equal(t, "file-id", cfg.Credentials.ClientID)
	assert.Equal(t, 30*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, uint(20), cfg.Retry.Bulk)
	assert.Equal(t, uint(5), cfg.Retry.Token)
	assert.Equal(t, 8, cfg.Hydration.Concurrency)
	assert.Equal(t, 1000, cfg.Bulk.PageSize)
	assert.Equal(t, "ItemID == 2589", cfg.Filter.Presets["linen"])
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Len(t, cfg.ClientOptions(), 6)
}

func TestLoadCredentialsFromEnv(t *testing.T) {
	clearCredentialEnv(t)
	t.Setenv("wow_api_id", "env-id")
	t.Setenv("WOW_API_SECRET", "env-secret")
	t.Setenv("WOWDATA_REGION", "tw")
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "tw", cfg.Region)
	creds := cfg.ClientCredentials()
	assert.Equal(t, "env-id", creds.ClientID)
	assert.Equal(t, "env-secret", creds.ClientSecret)
	assert.Equal(t, 180*time.Second, cfg.HTTP.Timeout)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config")
}

func TestLoadWithoutCredentials(t *testing.T) {
	clearCredentialEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "credentials.client_id")
}
