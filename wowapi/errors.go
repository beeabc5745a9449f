package wowapi

import (
	"errors"
	"fmt"
	"net/http"
)

// Common errors that can be checked with errors.Is.
var (
	// ErrClosed is returned by calls made after Close.
	ErrClosed = errors.New("wowapi: client is closed")
	// ErrUnauthorized indicates the token was rejected or the credentials are invalid.
	ErrUnauthorized = errors.New("wowapi: unauthorized")
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("wowapi: resource not found")
	// ErrRateLimited indicates the API answered 429.
	ErrRateLimited = errors.New("wowapi: rate limit exceeded")
	// ErrMissingCredentials indicates no client id or secret was supplied.
	ErrMissingCredentials = errors.New("wowapi: client id and secret are required")
)

// FormatError indicates a request could not be built: an unknown endpoint
// name, a missing or unexpected path parameter, or an endpoint used with the
// wrong executor. It is a programming error and is never retried.
type FormatError struct {
	Endpoint string
	Reason   string
}

func (e *FormatError) Error() string {
	if e.Endpoint == "" {
		return fmt.Sprintf("wowapi: %s", e.Reason)
	}
	return fmt.Sprintf("wowapi: endpoint %q: %s", e.Endpoint, e.Reason)
}

// ConnectionError represents a transport-level failure: timeout, DNS,
// refused connection or a body that could not be read.
type ConnectionError struct {
	Op  string
	URL string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s: connection error: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// StatusError represents a non-2xx response.
type StatusError struct {
	Op         string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s: status %d", e.Op, e.StatusCode)
}

// Is implements errors.Is for sentinel error matching.
func (e *StatusError) Is(target error) bool {
	switch e.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return target == ErrUnauthorized
	case http.StatusNotFound:
		return target == ErrNotFound
	case http.StatusTooManyRequests:
		return target == ErrRateLimited
	}
	return false
}

// DecodeError indicates a 2xx response whose body was not valid JSON.
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: failed to decode response: %v", e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ExhaustedError is returned once every attempt of a retry budget failed.
// Last holds the error of the final attempt.
type ExhaustedError struct {
	Op       string
	Attempts uint
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%s: giving up after %d attempts: %v", e.Op, e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Last
}

// IsTransient reports whether err is a failure class the retry policy
// absorbs: a connection failure or a non-2xx response.
func IsTransient(err error) bool {
	var connErr *ConnectionError
	var statusErr *StatusError
	return errors.As(err, &connErr) || errors.As(err, &statusErr)
}

// IsExhausted reports whether err ends a retry budget.
func IsExhausted(err error) bool {
	var exhausted *ExhaustedError
	return errors.As(err, &exhausted)
}
