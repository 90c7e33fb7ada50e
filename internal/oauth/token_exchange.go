package oauth

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultHTTPTimeout is the default timeout for token endpoint requests.
const DefaultHTTPTimeout = 30 * time.Second

// maxResponseBytes bounds how much of a token endpoint response is read.
// Access tokens can be multi-kilobyte JWTs, but a response this large is
// not a token response.
const maxResponseBytes = 1 << 20

// maxErrorBodyBytes bounds how much of a provider error response is kept
// for diagnostics.
const maxErrorBodyBytes = 2048

// TokenExchanger performs the server-to-server exchange of an authorization
// code for an access token. The client authenticates with HTTP Basic
// credentials (base64 of clientID:clientSecret) per RFC 6749 section 2.3.1.
//
// An exchange is never retried: the code is single-use and the provider
// rejects a replay, so a failed exchange terminates the flow.
type TokenExchanger struct {
	endpoint     string
	clientID     string
	clientSecret string
	httpClient   *http.Client
	logger       *slog.Logger
}

// NewTokenExchanger creates a token exchanger for the given endpoint and
// client credentials. A nil httpClient gets a default with DefaultHTTPTimeout.
func NewTokenExchanger(endpoint, clientID, clientSecret string, httpClient *http.Client, logger *slog.Logger) *TokenExchanger {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultHTTPTimeout}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TokenExchanger{
		endpoint:     endpoint,
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   httpClient,
		logger:       logger,
	}
}

// Exchange trades the authorization code for an access token. redirectURI
// must be the exact value used in the authorization request.
//
// Every failure mode is distinct and typed (*TokenExchangeError): transport
// failure, non-success status, malformed body, missing access_token. A
// transport-level success with an empty access_token is still a hard failure.
func (e *TokenExchanger) Exchange(ctx context.Context, code, redirectURI string) (*Token, error) {
	data := url.Values{
		"grant_type":   {"authorization_code"},
		"code":         {code},
		"redirect_uri": {redirectURI},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, &TokenExchangeError{Failure: ExchangeTransport, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(e.clientID, e.clientSecret)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, &TokenExchangeError{Failure: ExchangeTransport, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &TokenExchangeError{Failure: ExchangeTransport, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		e.logger.Warn("token exchange rejected by provider",
			"status", resp.StatusCode,
			"endpoint", e.endpoint,
		)
		return nil, &TokenExchangeError{
			Failure:    ExchangeStatus,
			StatusCode: resp.StatusCode,
			Detail:     truncateBody(body),
		}
	}

	var token Token
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, &TokenExchangeError{Failure: ExchangeMalformedBody, StatusCode: resp.StatusCode, Err: err}
	}

	if token.AccessToken == "" {
		return nil, &TokenExchangeError{Failure: ExchangeMissingToken, StatusCode: resp.StatusCode}
	}

	token.SetExpiresAtFromExpiresIn()
	return &token, nil
}

// truncateBody bounds a provider response body for inclusion in errors.
func truncateBody(body []byte) string {
	if len(body) > maxErrorBodyBytes {
		return string(body[:maxErrorBodyBytes]) + "... (truncated)"
	}
	return string(body)
}
