package oauth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// shutdownGrace gives the browser time to receive the redirect response
// before the listener begins shutting down.
const shutdownGrace = 500 * time.Millisecond

// CallbackResult is the terminal outcome of a single inbound redirect request.
type CallbackResult struct {
	// Code is the authorization code from the OAuth provider.
	Code string

	// State is the state parameter, already verified against the flow's state.
	State string

	// Error is the error code if the authorization failed.
	Error string

	// ErrorDescription is a human-readable error description.
	ErrorDescription string
}

// IsError returns true if the callback result represents a provider error.
func (r *CallbackResult) IsError() bool {
	return r.Error != ""
}

// CallbackServer is a temporary local HTTP server for receiving one OAuth
// callback. It binds to the host and port of the flow's redirect URI, waits
// for a single terminal callback, then shuts down.
//
// Requests that do not belong to the flow are absorbed: a missing or
// mismatched state parameter, or a request with neither a code nor an error,
// gets the same neutral redirect and the server keeps listening. This guards
// against stray requests and crawlers without leaking why a request was
// rejected. Exactly one terminal result is ever delivered, even under
// concurrent duplicate callbacks.
type CallbackServer struct {
	addr          string
	expectedState string
	landingURL    string
	logger        *slog.Logger

	server   *http.Server
	listener net.Listener
	group    *errgroup.Group
	resultCh chan *CallbackResult
	errorCh  chan error
	done     chan struct{}

	signalOnce sync.Once
	stopOnce   sync.Once
}

// NewCallbackServer creates a callback server bound to the host and port of
// redirectURI. Every inbound callback's state parameter is compared against
// expectedState; the browser is always redirected to landingURL.
func NewCallbackServer(redirectURI, expectedState, landingURL string, logger *slog.Logger) (*CallbackServer, error) {
	u, err := url.Parse(redirectURI)
	if err != nil {
		return nil, fmt.Errorf("invalid redirect URI %q: %w", redirectURI, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("redirect URI %q has no host", redirectURI)
	}

	addr := u.Host
	if u.Port() == "" {
		// Bind the scheme's default port so the listener address matches
		// the registered redirect URI exactly.
		switch u.Scheme {
		case "https":
			addr = net.JoinHostPort(u.Hostname(), "443")
		default:
			addr = net.JoinHostPort(u.Hostname(), "80")
		}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &CallbackServer{
		addr:          addr,
		expectedState: expectedState,
		landingURL:    landingURL,
		logger:        logger,
		resultCh:      make(chan *CallbackResult, 1),
		errorCh:       make(chan error, 1),
		done:          make(chan struct{}),
	}, nil
}

// Start binds the listener and begins serving callback requests on all
// paths. The server stops automatically when the context is cancelled.
func (s *CallbackServer) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to start callback server on %s: %w", s.addr, err)
	}
	s.listener = listener

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleCallback)

	s.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.group = &errgroup.Group{}
	s.group.Go(func() error {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			select {
			case s.errorCh <- err:
			default:
			}
			return err
		}
		return nil
	})

	go func() {
		select {
		case <-ctx.Done():
			s.Stop()
		case <-s.done:
		}
	}()

	return nil
}

// WaitForCallback blocks until the terminal callback arrives, the server
// fails, or the context is done (cancellation or timeout).
func (s *CallbackServer) WaitForCallback(ctx context.Context) (*CallbackResult, error) {
	select {
	case result := <-s.resultCh:
		return result, nil
	case err := <-s.errorCh:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// handleCallback classifies a single inbound request. Only a request with a
// matching state and either a code or an error is terminal; everything else
// is absorbed and the server keeps listening.
func (s *CallbackServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	s.setSecurityHeaders(w)
	query := r.URL.Query()

	state := query.Get("state")
	if subtle.ConstantTimeCompare([]byte(state), []byte(s.expectedState)) != 1 {
		// Possible CSRF attempt or stray traffic. Absorb it without leaking
		// detail to the browser and keep waiting for the real callback.
		s.logger.Warn("callback state mismatch, ignoring request",
			"expected_state_len", len(s.expectedState),
			"received_state_len", len(state),
		)
		s.redirect(w, r)
		return
	}

	if errCode := query.Get("error"); errCode != "" {
		s.deliver(&CallbackResult{
			State:            state,
			Error:            errCode,
			ErrorDescription: query.Get("error_description"),
		})
		s.redirect(w, r)
		return
	}

	if codes := query["code"]; len(codes) == 1 && codes[0] != "" {
		s.deliver(&CallbackResult{
			Code:  codes[0],
			State: state,
		})
		s.redirect(w, r)
		return
	}

	s.logger.Debug("malformed callback request absorbed", "path", r.URL.Path)
	s.redirect(w, r)
}

// deliver hands the terminal result to the waiting flow at most once and
// schedules shutdown. Duplicate terminal callbacks are absorbed: they never
// override the recorded result or trigger a second shutdown signal.
func (s *CallbackServer) deliver(result *CallbackResult) {
	s.signalOnce.Do(func() {
		s.resultCh <- result
		go func() {
			time.Sleep(shutdownGrace)
			s.Stop()
		}()
	})
}

// redirect answers every callback request with the same neutral redirect,
// independent of outcome, so the browser shows something coherent and no
// code, token or error detail lands in browser history.
func (s *CallbackServer) redirect(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, s.landingURL, http.StatusSeeOther)
}

func (s *CallbackServer) setSecurityHeaders(w http.ResponseWriter) {
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("Referrer-Policy", "no-referrer")
	w.Header().Set("Cache-Control", "no-store")
}

// Stop gracefully shuts down the callback server and waits until the serve
// loop has exited, so callers can rely on the listener being gone when Stop
// returns. Calling Stop more than once is a no-op.
func (s *CallbackServer) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
		if s.server != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = s.server.Shutdown(ctx)
		}
		if s.listener != nil {
			_ = s.listener.Close()
		}
		if s.group != nil {
			_ = s.group.Wait()
		}
	})
}

// Addr returns the address the server is listening on.
func (s *CallbackServer) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}
