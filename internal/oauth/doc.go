// Package oauth implements a local-redirect OAuth 2.0 Authorization Code
// flow for command-line use.
//
// # Architecture
//
// A single interactive flow is owned by a Flow value:
//   - a cryptographically random state parameter is generated per flow
//   - a transient HTTP listener is bound to the host/port of the configured
//     redirect URI and waits for exactly one terminal callback
//   - the user's default browser is opened on the provider's authorization URL
//   - the received authorization code is exchanged server-to-server for an
//     access token using HTTP Basic client authentication
//
// Every listener is an explicitly owned instance, constructed per flow and
// torn down per flow. Nothing is registered on shared global routing state,
// so flows can run in isolation (including concurrently in tests).
//
// # Callback handling
//
// The callback listener absorbs requests that do not belong to the flow:
// requests with a missing or mismatched state parameter, and requests with
// neither a code nor an error, are answered with a neutral redirect and the
// listener keeps waiting. Only one terminal event (code received, provider
// error) is ever delivered, even under concurrent duplicate callbacks.
//
// # Token storage
//
// Obtained tokens can be persisted with TokenStore in an XDG-compliant
// location:
//
//	~/.config/authloop/tokens/{provider-hash}.json
//
// Token files are created with 0600 permissions and token values are never
// logged.
//
// # Usage
//
//	flow, err := oauth.NewFlow(oauth.Config{
//	    ClientID:          "abc",
//	    ClientSecret:      "xyz",
//	    RedirectURI:       "http://localhost:4321",
//	    Scopes:            []string{"read", "write"},
//	    AuthorizeEndpoint: "https://provider.example.com/oauth/authorize",
//	    TokenEndpoint:     "https://provider.example.com/oauth/token",
//	})
//	if err != nil {
//	    return err
//	}
//	token, err := flow.Run(ctx)
package oauth
