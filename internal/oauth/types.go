package oauth

import (
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// DefaultFlowTimeout is the default bound on waiting for the authorization
// callback. A user who closes the browser tab must not hang the process
// forever, so the timeout is never infinite.
const DefaultFlowTimeout = 5 * time.Minute

// DefaultLandingURL is the neutral page the browser is redirected to after
// the callback, independent of success or failure. The response never
// carries codes, tokens or error detail, so nothing sensitive ends up in
// browser history.
const DefaultLandingURL = "https://authloop.github.io/authorized"

// DefaultScopeDelimiter joins scope values in the authorization request.
// Space is the delimiter mandated by RFC 6749; some providers use commas.
const DefaultScopeDelimiter = " "

// DefaultExpiryMargin is the default margin when checking token expiry.
// This accounts for clock skew and network latency.
const DefaultExpiryMargin = 30 * time.Second

// Config holds everything a single authorization-code flow needs.
// ClientSecret is a process-lifetime secret and is never logged.
type Config struct {
	// ClientID identifies the registered OAuth client. Required.
	ClientID string

	// ClientSecret authenticates the client at the token endpoint. Required.
	ClientSecret string

	// RedirectURI is the pre-registered callback address. The local listener
	// binds to exactly the host and port encoded here. Required, and must
	// match the provider's registration byte for byte.
	RedirectURI string

	// Scopes is the ordered set of permission strings to request.
	Scopes []string

	// ScopeDelimiter joins Scopes in the authorization request.
	// Defaults to a single space.
	ScopeDelimiter string

	// AuthorizeEndpoint is the provider's authorization endpoint URL. Required.
	AuthorizeEndpoint string

	// TokenEndpoint is the provider's token endpoint URL. Required.
	TokenEndpoint string

	// Timeout bounds the wait for the authorization callback.
	// Defaults to DefaultFlowTimeout. Must not be negative.
	Timeout time.Duration

	// LandingURL is the neutral page the browser is redirected to after any
	// callback. Defaults to DefaultLandingURL.
	LandingURL string
}

// Validate checks the fatal preconditions of a flow. It returns a
// *ConfigurationError naming every missing or invalid field so the caller
// can fix them all at once.
func (c *Config) Validate() error {
	var missing []string
	if c.ClientID == "" {
		missing = append(missing, "clientID")
	}
	if c.ClientSecret == "" {
		missing = append(missing, "clientSecret")
	}
	if c.RedirectURI == "" {
		missing = append(missing, "redirectURI")
	}
	if c.AuthorizeEndpoint == "" {
		missing = append(missing, "authorizeEndpoint")
	}
	if c.TokenEndpoint == "" {
		missing = append(missing, "tokenEndpoint")
	}
	if len(missing) > 0 {
		return &ConfigurationError{Missing: missing}
	}

	if u, err := url.Parse(c.RedirectURI); err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return &ConfigurationError{Reason: "redirectURI must be an absolute http(s) URL"}
	}
	if c.Timeout < 0 {
		return &ConfigurationError{Reason: "timeout must not be negative"}
	}
	return nil
}

// applyDefaults fills the defaultable fields in place.
func (c *Config) applyDefaults() {
	if c.ScopeDelimiter == "" {
		c.ScopeDelimiter = DefaultScopeDelimiter
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultFlowTimeout
	}
	if c.LandingURL == "" {
		c.LandingURL = DefaultLandingURL
	}
}

// AuthorizationRequest is the immutable view of a flow used to build the
// provider's authorization URL.
type AuthorizationRequest struct {
	// ClientID identifies the registered OAuth client.
	ClientID string

	// RedirectURI is the callback address the provider redirects to.
	RedirectURI string

	// Scopes is the ordered set of permission strings to request.
	Scopes []string

	// ScopeDelimiter joins Scopes. Empty means DefaultScopeDelimiter.
	ScopeDelimiter string

	// State is the per-flow anti-forgery token.
	State string
}

// scopeString returns the joined scope parameter value.
func (r AuthorizationRequest) scopeString() string {
	delim := r.ScopeDelimiter
	if delim == "" {
		delim = DefaultScopeDelimiter
	}
	return strings.Join(r.Scopes, delim)
}

// Token represents an OAuth access token with associated metadata,
// as parsed from the token endpoint response.
type Token struct {
	// AccessToken is the bearer token used for authorization.
	// Non-empty on every successful exchange.
	AccessToken string `json:"access_token"`

	// TokenType is typically "Bearer".
	TokenType string `json:"token_type,omitempty"`

	// RefreshToken is used to obtain new access tokens (optional).
	RefreshToken string `json:"refresh_token,omitempty"`

	// ExpiresIn is the token lifetime in seconds (from token response).
	ExpiresIn int `json:"expires_in,omitempty"`

	// ExpiresAt is the calculated expiration timestamp.
	ExpiresAt time.Time `json:"expires_at,omitempty"`

	// Scope is the granted scope(s) as reported by the provider.
	Scope string `json:"scope,omitempty"`
}

// IsExpired checks if the token has expired.
// Returns true if the token is expired or will expire within the default margin.
func (t *Token) IsExpired() bool {
	return t.IsExpiredWithMargin(DefaultExpiryMargin)
}

// IsExpiredWithMargin checks if the token has expired or will expire within the margin.
func (t *Token) IsExpiredWithMargin(margin time.Duration) bool {
	if t.ExpiresAt.IsZero() {
		return false // Tokens without expiration don't expire
	}
	return time.Now().Add(margin).After(t.ExpiresAt)
}

// SetExpiresAtFromExpiresIn calculates and sets ExpiresAt from ExpiresIn.
func (t *Token) SetExpiresAtFromExpiresIn() {
	if t.ExpiresIn > 0 && t.ExpiresAt.IsZero() {
		t.ExpiresAt = time.Now().Add(time.Duration(t.ExpiresIn) * time.Second)
	}
}

// ToOAuth2Token converts the Token to an oauth2.Token for use with
// golang.org/x/oauth2 transports.
func (t *Token) ToOAuth2Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  t.AccessToken,
		TokenType:    t.TokenType,
		RefreshToken: t.RefreshToken,
		Expiry:       t.ExpiresAt,
	}
}
