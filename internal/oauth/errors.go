package oauth

import (
	"fmt"
	"strings"
	"time"
)

// ConfigurationError reports missing or invalid flow configuration.
// The flow never starts when this is returned.
type ConfigurationError struct {
	// Missing lists the required fields that were absent.
	Missing []string

	// Reason describes an invalid (rather than missing) value.
	Reason string
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("invalid configuration: missing %s", strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("invalid configuration: %s", e.Reason)
}

// BrowserLaunchError indicates the user's browser could not be opened.
// The flow aborts before blocking on the callback, since the user has no
// way to authenticate.
type BrowserLaunchError struct {
	Err error
}

// Error implements the error interface.
func (e *BrowserLaunchError) Error() string {
	return fmt.Sprintf("failed to launch browser: %v", e.Err)
}

// Unwrap returns the underlying error for error chain inspection.
func (e *BrowserLaunchError) Unwrap() error {
	return e.Err
}

// ProviderDeniedError indicates the provider returned an error on the
// callback, typically because the user declined consent.
type ProviderDeniedError struct {
	// Code is the OAuth error code (e.g. "access_denied").
	Code string

	// Description is the optional human-readable error description.
	Description string
}

// Error implements the error interface.
func (e *ProviderDeniedError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("authorization failed: %s - %s", e.Code, e.Description)
	}
	return fmt.Sprintf("authorization failed: %s", e.Code)
}

// TimeoutError indicates no valid callback arrived within the configured bound.
type TimeoutError struct {
	Timeout time.Duration
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("no authorization callback received within %s", e.Timeout)
}

// ExchangeFailure classifies what went wrong during the token exchange.
type ExchangeFailure string

const (
	// ExchangeTransport is a network-level failure reaching the token endpoint.
	ExchangeTransport ExchangeFailure = "transport"

	// ExchangeStatus is a non-success HTTP status from the token endpoint.
	ExchangeStatus ExchangeFailure = "status"

	// ExchangeMalformedBody is a response body that could not be parsed.
	ExchangeMalformedBody ExchangeFailure = "malformed_body"

	// ExchangeMissingToken is a parseable response without an access_token.
	ExchangeMissingToken ExchangeFailure = "missing_token"
)

// TokenExchangeError reports a failed code-for-token exchange. The detail
// carries enough of the provider response to diagnose the failure but never
// the client secret. Exchanges are not retried: the authorization code is
// single-use and the provider rejects replays.
type TokenExchangeError struct {
	// Failure classifies the error.
	Failure ExchangeFailure

	// StatusCode is the HTTP status, when a response was received.
	StatusCode int

	// Detail is a bounded excerpt of the provider response body.
	Detail string

	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *TokenExchangeError) Error() string {
	switch e.Failure {
	case ExchangeTransport:
		return fmt.Sprintf("token exchange request failed: %v", e.Err)
	case ExchangeStatus:
		return fmt.Sprintf("token exchange failed with status %d: %s", e.StatusCode, e.Detail)
	case ExchangeMalformedBody:
		return fmt.Sprintf("token exchange returned a malformed response: %v", e.Err)
	case ExchangeMissingToken:
		return "token exchange response is missing access_token"
	default:
		return "token exchange failed"
	}
}

// Unwrap returns the underlying error for error chain inspection.
func (e *TokenExchangeError) Unwrap() error {
	return e.Err
}
