package oauth

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestConfigurationError_Message(t *testing.T) {
	err := &ConfigurationError{Missing: []string{"clientID", "clientSecret"}}
	if !strings.Contains(err.Error(), "clientID") || !strings.Contains(err.Error(), "clientSecret") {
		t.Errorf("expected all missing fields in message, got: %s", err.Error())
	}

	err = &ConfigurationError{Reason: "timeout must not be negative"}
	if !strings.Contains(err.Error(), "timeout must not be negative") {
		t.Errorf("expected reason in message, got: %s", err.Error())
	}
}

func TestBrowserLaunchError_Unwrap(t *testing.T) {
	underlying := errors.New("exec: xdg-open not found")
	err := &BrowserLaunchError{Err: underlying}

	if !errors.Is(err, underlying) {
		t.Error("expected errors.Is to find the underlying error")
	}

	wrapped := fmt.Errorf("flow failed: %w", err)
	var launchErr *BrowserLaunchError
	if !errors.As(wrapped, &launchErr) {
		t.Error("expected errors.As to find BrowserLaunchError through wrapping")
	}
}

func TestProviderDeniedError_Message(t *testing.T) {
	err := &ProviderDeniedError{Code: "access_denied"}
	if !strings.Contains(err.Error(), "access_denied") {
		t.Errorf("expected error code in message, got: %s", err.Error())
	}

	err = &ProviderDeniedError{Code: "access_denied", Description: "User declined"}
	if !strings.Contains(err.Error(), "User declined") {
		t.Errorf("expected description in message, got: %s", err.Error())
	}
}

func TestTimeoutError_Message(t *testing.T) {
	err := &TimeoutError{Timeout: 30 * time.Second}
	if !strings.Contains(err.Error(), "30s") {
		t.Errorf("expected timeout duration in message, got: %s", err.Error())
	}
}

func TestTokenExchangeError_Messages(t *testing.T) {
	testCases := []struct {
		name     string
		err      *TokenExchangeError
		expected string
	}{
		{
			"transport",
			&TokenExchangeError{Failure: ExchangeTransport, Err: errors.New("connection refused")},
			"connection refused",
		},
		{
			"status",
			&TokenExchangeError{Failure: ExchangeStatus, StatusCode: 400, Detail: "invalid_grant"},
			"status 400",
		},
		{
			"malformed body",
			&TokenExchangeError{Failure: ExchangeMalformedBody, Err: errors.New("unexpected end of JSON input")},
			"malformed",
		},
		{
			"missing token",
			&TokenExchangeError{Failure: ExchangeMissingToken},
			"access_token",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if !strings.Contains(tc.err.Error(), tc.expected) {
				t.Errorf("expected %q in message, got: %s", tc.expected, tc.err.Error())
			}
		})
	}
}

func TestTokenExchangeError_Unwrap(t *testing.T) {
	underlying := errors.New("dial tcp: connection refused")
	err := &TokenExchangeError{Failure: ExchangeTransport, Err: underlying}

	if !errors.Is(err, underlying) {
		t.Error("expected errors.Is to find the underlying error")
	}
}
