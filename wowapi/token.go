package wowapi

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// Environment variables holding the client credentials.
const (
	EnvClientID     = "wow_api_id"
	EnvClientSecret = "wow_api_secret"
)

// Credentials identify a battle.net API client.
type Credentials struct {
	ClientID     string
	ClientSecret string
}

// CredentialsFromEnv reads the client id and secret from the environment,
// loading the given dotenv files (".env" when none are named) first.
// Variables already set in the environment win over dotenv values.
func CredentialsFromEnv(files ...string) (Credentials, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Credentials{}, fmt.Errorf("failed to load dotenv: %w", err)
	}

	creds := Credentials{
		ClientID:     lookupEnv(EnvClientID),
		ClientSecret: lookupEnv(EnvClientSecret),
	}
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return creds, ErrMissingCredentials
	}
	return creds, nil
}

func lookupEnv(name string) string {
	if v, ok := os.LookupEnv(name); ok {
		return v
	}
	return os.Getenv(strings.ToUpper(name))
}

// tokenManager owns the session's bearer token. The first token is fetched
// eagerly by New; afterwards a token is only re-exchanged once the expiry the
// server advertised has passed. Tokens without expires_in never expire here.
type tokenManager struct {
	cfg        clientcredentials.Config
	httpClient *http.Client
	policy     RetryPolicy

	mu    sync.Mutex
	token *oauth2.Token
}

func newTokenManager(httpClient *http.Client, tokenURL string, creds Credentials, policy RetryPolicy) *tokenManager {
	return &tokenManager{
		cfg: clientcredentials.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			TokenURL:     tokenURL,
			AuthStyle:    oauth2.AuthStyleInHeader,
		},
		httpClient: httpClient,
		policy:     policy,
	}
}

// Token returns a valid access token, exchanging credentials when none is
// held or the held one expired.
func (m *tokenManager) Token(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.token.Valid() {
		return m.token.AccessToken, nil
	}

	tok, err := Retry(ctx, EndpointAccessToken, m.policy, m.exchange)
	if err != nil {
		return "", err
	}
	m.token = tok
	return tok.AccessToken, nil
}

// Current returns the held token without refreshing it.
func (m *tokenManager) Current() *oauth2.Token {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

func (m *tokenManager) exchange(ctx context.Context) (*oauth2.Token, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, m.httpClient)
	tok, err := m.cfg.Token(ctx)
	if err != nil {
		return nil, classifyTokenError(m.cfg.TokenURL, err)
	}
	return tok, nil
}

func classifyTokenError(tokenURL string, err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		statusErr := &StatusError{
			Op:   EndpointAccessToken,
			URL:  tokenURL,
			Body: truncate(string(retrieveErr.Body), maxErrorBody),
		}
		if retrieveErr.Response != nil {
			statusErr.StatusCode = retrieveErr.Response.StatusCode
		}
		return statusErr
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return &ConnectionError{Op: EndpointAccessToken, URL: tokenURL, Err: urlErr.Err}
	}

	return &DecodeError{Op: EndpointAccessToken, Err: err}
}
