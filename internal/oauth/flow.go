package oauth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
)

// Flow sequences a single interactive authorization-code exchange:
// generate state, start the callback listener, open the browser, wait for
// the callback within the configured bound, exchange the code for a token.
//
// A Flow value runs one exchange per invocation of Run. The local listener
// is torn down on every exit path, and the token exchange is attempted at
// most once per received code.
type Flow struct {
	cfg        Config
	launcher   Launcher
	httpClient *http.Client
	logger     *slog.Logger
}

// FlowOption customizes a Flow.
type FlowOption func(*Flow)

// WithLauncher replaces the default system browser launcher.
func WithLauncher(l Launcher) FlowOption {
	return func(f *Flow) { f.launcher = l }
}

// WithHTTPClient replaces the HTTP client used for the token exchange.
func WithHTTPClient(c *http.Client) FlowOption {
	return func(f *Flow) { f.httpClient = c }
}

// WithLogger replaces the default logger.
func WithLogger(logger *slog.Logger) FlowOption {
	return func(f *Flow) { f.logger = logger }
}

// NewFlow validates the configuration and prepares a flow. A
// *ConfigurationError is returned before anything is started if required
// fields are missing or invalid.
func NewFlow(cfg Config, opts ...FlowOption) (*Flow, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	f := &Flow{
		cfg:      cfg,
		launcher: SystemBrowser{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.httpClient == nil {
		f.httpClient = &http.Client{Timeout: DefaultHTTPTimeout}
	}

	return f, nil
}

// Run executes the flow end to end and returns the obtained token.
// All failures are returned as typed errors per the package taxonomy;
// nothing panics and the listener never outlives the call.
func (f *Flow) Run(ctx context.Context) (*Token, error) {
	// Correlates all log lines of this flow. Secrets and tokens are never logged.
	logger := f.logger.With("flow_id", uuid.NewString())

	state, err := GenerateState()
	if err != nil {
		return nil, err
	}

	server, err := NewCallbackServer(f.cfg.RedirectURI, state, f.cfg.LandingURL, logger)
	if err != nil {
		return nil, &ConfigurationError{Reason: err.Error()}
	}
	if err := server.Start(ctx); err != nil {
		return nil, err
	}
	defer server.Stop()

	authURL, err := BuildAuthorizationURL(f.cfg.AuthorizeEndpoint, AuthorizationRequest{
		ClientID:       f.cfg.ClientID,
		RedirectURI:    f.cfg.RedirectURI,
		Scopes:         f.cfg.Scopes,
		ScopeDelimiter: f.cfg.ScopeDelimiter,
		State:          state,
	})
	if err != nil {
		return nil, &ConfigurationError{Reason: err.Error()}
	}

	logger.Info("opening browser for authorization",
		"authorize_endpoint", f.cfg.AuthorizeEndpoint,
		"redirect_uri", f.cfg.RedirectURI,
	)
	if err := f.launcher.Open(authURL); err != nil {
		return nil, &BrowserLaunchError{Err: err}
	}

	waitCtx, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
	defer cancel()

	result, err := server.WaitForCallback(waitCtx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			logger.Warn("no authorization callback before deadline", "timeout", f.cfg.Timeout.String())
			return nil, &TimeoutError{Timeout: f.cfg.Timeout}
		}
		return nil, fmt.Errorf("callback failed: %w", err)
	}

	if result.IsError() {
		logger.Warn("authorization denied by provider",
			"error", result.Error,
			"error_description", result.ErrorDescription,
		)
		return nil, &ProviderDeniedError{Code: result.Error, Description: result.ErrorDescription}
	}

	exchanger := NewTokenExchanger(f.cfg.TokenEndpoint, f.cfg.ClientID, f.cfg.ClientSecret, f.httpClient, logger)
	token, err := exchanger.Exchange(ctx, result.Code, f.cfg.RedirectURI)
	if err != nil {
		return nil, err
	}

	logger.Info("authorization flow complete", "token_type", token.TokenType)
	return token, nil
}
