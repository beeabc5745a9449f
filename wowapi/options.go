package wowapi

import (
	"net/http"
	"time"
)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithTimeout sets the overall per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithLocale sets the locale sent with every request. An empty locale makes
// the API return every localization.
func WithLocale(locale string) Option {
	return func(c *Client) {
		c.locale = locale
	}
}

// WithAPIHost overrides the game-data host. The value may contain a
// {region} placeholder.
func WithAPIHost(host string) Option {
	return func(c *Client) {
		c.apiHost = host
	}
}

// WithOAuthHost overrides the host serving /oauth/token. The value may
// contain a {region} placeholder.
func WithOAuthHost(host string) Option {
	return func(c *Client) {
		c.oauthHost = host
	}
}

// WithRetryBudgets sets the attempt budget of every call site. Zero fields
// keep their default.
func WithRetryBudgets(budgets RetryBudgets) Option {
	return func(c *Client) {
		if budgets.Token > 0 {
			c.budgets.Token = budgets.Token
		}
		if budgets.Get > 0 {
			c.budgets.Get = budgets.Get
		}
		if budgets.Search > 0 {
			c.budgets.Search = budgets.Search
		}
		if budgets.Hydrate > 0 {
			c.budgets.Hydrate = budgets.Hydrate
		}
		if budgets.Bulk > 0 {
			c.budgets.Bulk = budgets.Bulk
		}
	}
}

// WithHydrationConcurrency caps how many detail requests a search fans out
// at once. Zero or a negative value leaves the fan-out unbounded.
func WithHydrationConcurrency(n int) Option {
	return func(c *Client) {
		if n <= 0 {
			n = -1
		}
		c.hydrationLimit = n
	}
}

// WithBulkWorkers sets how many consumers hydrate items during AllItems.
func WithBulkWorkers(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.bulkWorkers = n
		}
	}
}

// WithBulkPageSize sets the _pageSize used while paging through AllItems.
func WithBulkPageSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.bulkPageSize = n
		}
	}
}
