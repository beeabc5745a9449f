package wowapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

const (
	// DateKey is the field every JSON response is stamped with. It carries
	// the response's Date header.
	DateKey = "Date"

	defaultLocale       = "en_US"
	defaultTimeout      = 180 * time.Second
	defaultDialTimeout  = 5 * time.Second
	defaultBulkPageSize = 1000
	defaultBulkWorkers  = 32
	maxErrorBody        = 512
)

// Client is a session against one region of the game-data API. It holds one
// bearer token and one connection pool and is safe for concurrent use.
type Client struct {
	region         Region
	locale         string
	apiHost        string
	oauthHost      string
	httpClient     *http.Client
	timeout        time.Duration
	logger         zerolog.Logger
	budgets        RetryBudgets
	hydrationLimit int
	bulkWorkers    int
	bulkPageSize   int

	tokens *tokenManager
	closed atomic.Bool
}

// New creates a client for region and exchanges creds for the first access
// token. It fails when the exchange does not succeed within the token budget.
func New(ctx context.Context, region Region, creds Credentials, logger zerolog.Logger, opts ...Option) (*Client, error) {
	region, err := ParseRegion(string(region))
	if err != nil {
		return nil, err
	}
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return nil, ErrMissingCredentials
	}

	c := &Client{
		region:         region,
		locale:         defaultLocale,
		apiHost:        DefaultHost(HostAPI, region),
		oauthHost:      DefaultHost(HostOAuth, region),
		httpClient:     newHTTPClient(),
		logger:         logger.With().Str("region", string(region)).Logger(),
		budgets:        DefaultRetryBudgets(),
		hydrationLimit: -1,
		bulkWorkers:    defaultBulkWorkers,
		bulkPageSize:   defaultBulkPageSize,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.timeout > 0 {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}

	tokenEndpoint, err := Lookup(EndpointAccessToken)
	if err != nil {
		return nil, err
	}
	tokenURL, err := tokenEndpoint.URL(c.oauthHost, region, nil)
	if err != nil {
		return nil, err
	}
	c.tokens = newTokenManager(c.httpClient, tokenURL, creds, c.policy(EndpointAccessToken, c.budgets.Token))

	if _, err := c.tokens.Token(ctx); err != nil {
		return nil, fmt.Errorf("failed to acquire access token: %w", err)
	}

	c.logger.Debug().Str("locale", c.locale).Msg("Created game data client")
	return c, nil
}

func newHTTPClient() *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{
		Timeout:   defaultDialTimeout,
		KeepAlive: 30 * time.Second,
	}).DialContext
	return &http.Client{
		Timeout:   defaultTimeout,
		Transport: transport,
	}
}

// Region returns the region the client was created for.
func (c *Client) Region() Region {
	return c.region
}

// Locale returns the locale sent with every request.
func (c *Client) Locale() string {
	return c.locale
}

// AccessToken returns the bearer token in use, refreshing it first when the
// server-advertised expiry has passed.
func (c *Client) AccessToken(ctx context.Context) (string, error) {
	if c.closed.Load() {
		return "", ErrClosed
	}
	return c.tokens.Token(ctx)
}

// TokenExpiry returns when the held token expires. The zero time means the
// server did not advertise an expiry.
func (c *Client) TokenExpiry() time.Time {
	tok := c.tokens.Current()
	if tok == nil {
		return time.Time{}
	}
	return tok.Expiry
}

// Close releases pooled connections. Calls made afterwards fail with ErrClosed.
func (c *Client) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	c.httpClient.CloseIdleConnections()
	return nil
}

// Get fetches a JSON endpoint by catalog name. params must hold exactly the
// endpoint's path parameters. The result carries the response Date header
// under DateKey.
func (c *Client) Get(ctx context.Context, name string, params map[string]string) (Response, error) {
	ep, rawURL, err := c.resolveDirect(name, params, ShapeJSON)
	if err != nil {
		return nil, err
	}

	p, err := c.fetch(ctx, ep.Name, rawURL, ep.Namespace, nil, c.budgets.Get)
	if err != nil {
		return nil, err
	}
	return p.stamped(ep.Name)
}

// GetBytes fetches a binary endpoint by catalog name and returns the raw
// body. The body is never inspected.
func (c *Client) GetBytes(ctx context.Context, name string, params map[string]string) ([]byte, error) {
	ep, rawURL, err := c.resolveDirect(name, params, ShapeBinary)
	if err != nil {
		return nil, err
	}

	p, err := c.fetch(ctx, ep.Name, rawURL, ep.Namespace, nil, c.budgets.Get)
	if err != nil {
		return nil, err
	}
	return p.body, nil
}

func (c *Client) resolveDirect(name string, params map[string]string, shape Shape) (Endpoint, string, error) {
	ep, err := Lookup(name)
	if err != nil {
		return Endpoint{}, "", err
	}
	switch {
	case ep.Host != HostAPI:
		return Endpoint{}, "", &FormatError{Endpoint: name, Reason: "not a game data endpoint"}
	case ep.Search:
		return Endpoint{}, "", &FormatError{Endpoint: name, Reason: "search endpoint, use Search"}
	case ep.Shape != shape && shape == ShapeJSON:
		return Endpoint{}, "", &FormatError{Endpoint: name, Reason: "binary endpoint, use GetBytes"}
	case ep.Shape != shape:
		return Endpoint{}, "", &FormatError{Endpoint: name, Reason: "JSON endpoint, use Get"}
	}

	rawURL, err := ep.URL(c.apiHost, c.region, params)
	if err != nil {
		return Endpoint{}, "", err
	}
	return ep, rawURL, nil
}

// payload is one successful response.
type payload struct {
	body   []byte
	header http.Header
}

func (p payload) decode(op string) (Response, error) {
	var resp Response
	if err := json.Unmarshal(p.body, &resp); err != nil {
		return nil, &DecodeError{Op: op, Err: err}
	}
	if resp == nil {
		resp = Response{}
	}
	return resp, nil
}

func (p payload) stamped(op string) (Response, error) {
	resp, err := p.decode(op)
	if err != nil {
		return nil, err
	}
	resp[DateKey] = p.header.Get("Date")
	return resp, nil
}

// fetch performs one GET under a retry budget. Every attempt reads the
// current token so a refresh between attempts is picked up. extra is applied
// over the base parameters.
func (c *Client) fetch(ctx context.Context, op, rawURL string, ns Namespace, extra url.Values, budget uint) (payload, error) {
	return Retry(ctx, op, c.policy(op, budget), func(ctx context.Context) (payload, error) {
		if c.closed.Load() {
			return payload{}, ErrClosed
		}

		query, err := c.baseParams(ctx, ns)
		if err != nil {
			return payload{}, err
		}
		for k, vs := range extra {
			query[k] = vs
		}

		return c.doGet(ctx, op, rawURL, query)
	})
}

func (c *Client) baseParams(ctx context.Context, ns Namespace) (url.Values, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("access_token", token)
	if namespace := ns.For(c.region); namespace != "" {
		query.Set("namespace", namespace)
	}
	if c.locale != "" {
		query.Set("locale", c.locale)
	}
	return query, nil
}

// doGet performs a single GET. query is merged over any query string rawURL
// already carries.
func (c *Client) doGet(ctx context.Context, op, rawURL string, query url.Values) (payload, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return payload{}, &FormatError{Endpoint: op, Reason: fmt.Sprintf("invalid URL %q", rawURL)}
	}

	merged := u.Query()
	for k, vs := range query {
		merged[k] = vs
	}
	u.RawQuery = merged.Encode()
	display := redact(u)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return payload{}, &FormatError{Endpoint: op, Reason: err.Error()}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// url.Error repeats the full URL, token included.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return payload{}, &ConnectionError{Op: op, URL: display, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return payload{}, &ConnectionError{Op: op, URL: display, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return payload{}, &StatusError{
			Op:         op,
			URL:        display,
			StatusCode: resp.StatusCode,
			Body:       truncate(string(body), maxErrorBody),
		}
	}

	c.logger.Trace().Str("op", op).Str("url", display).Int("bytes", len(body)).Msg("Request succeeded")
	return payload{body: body, header: resp.Header}, nil
}

func (c *Client) policy(op string, attempts uint) RetryPolicy {
	return RetryPolicy{
		Attempts: attempts,
		OnFailure: func(attempt uint, err error) {
			event := c.logger.Warn().Err(err).Str("op", op).Uint("attempt", attempt).Uint("budget", attempts)
			var statusErr *StatusError
			if errors.As(err, &statusErr) {
				event = event.Str("category", "status").Int("status", statusErr.StatusCode)
			} else {
				event = event.Str("category", "connection")
			}
			event.Msg("Request attempt failed")
		},
	}
}

func redact(u *url.URL) string {
	clean := *u
	clean.RawQuery = ""
	return clean.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
