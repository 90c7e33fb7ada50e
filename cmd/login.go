package cmd

import (
	"fmt"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"authloop/internal/oauth"
)

// Login-specific flags
var (
	loginClientID          string
	loginClientSecret      string
	loginRedirectURI       string
	loginScopes            []string
	loginAuthorizeEndpoint string
	loginTokenEndpoint     string
	loginTimeout           time.Duration
	loginPrintToken        bool
	loginNoStore           bool
)

// newLoginCmd creates the Cobra command that runs the authorization flow.
func newLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate to the configured OAuth provider",
		Long: `Run the browser-based OAuth authorization-code flow and store the
obtained access token.

Configuration is read from config.yaml in the config directory; every value
can be overridden with a flag. The client secret can also be supplied via
the AUTHLOOP_CLIENT_SECRET environment variable.

Examples:
  authloop login
  authloop login --scope read --scope write
  authloop login --print-token --no-store`,
		RunE: runLogin,
	}

	cmd.Flags().StringVar(&loginClientID, "client-id", "", "OAuth client ID")
	cmd.Flags().StringVar(&loginClientSecret, "client-secret", "", "OAuth client secret")
	cmd.Flags().StringVar(&loginRedirectURI, "redirect-uri", "", "registered redirect URI (the local listener binds its host/port)")
	cmd.Flags().StringArrayVar(&loginScopes, "scope", nil, "scope to request (repeatable, ordered)")
	cmd.Flags().StringVar(&loginAuthorizeEndpoint, "authorize-endpoint", "", "provider authorization endpoint URL")
	cmd.Flags().StringVar(&loginTokenEndpoint, "token-endpoint", "", "provider token endpoint URL")
	cmd.Flags().DurationVar(&loginTimeout, "timeout", 0, "how long to wait for the browser callback (default 5m)")
	cmd.Flags().BoolVar(&loginPrintToken, "print-token", false, "print the access token to stdout for scripting")
	cmd.Flags().BoolVar(&loginNoStore, "no-store", false, "do not persist the obtained token")

	return cmd
}

func runLogin(cmd *cobra.Command, args []string) error {
	fileConfig, err := loadConfig()
	if err != nil {
		return err
	}

	cfg := fileConfig.ToFlowConfig()
	applyLoginOverrides(&cfg)

	flow, err := oauth.NewFlow(cfg)
	if err != nil {
		return err
	}

	spin := spinner.New(spinner.CharSets[14], 100*time.Millisecond,
		spinner.WithWriter(cmd.ErrOrStderr()))
	spin.Suffix = " Waiting for authorization in your browser..."
	spin.Start()

	token, err := flow.Run(cmd.Context())
	spin.Stop()
	if err != nil {
		return err
	}

	if !loginNoStore {
		store, err := oauth.NewTokenStore(oauth.TokenStoreConfig{FileMode: true})
		if err != nil {
			return err
		}
		if err := store.Store(cfg.TokenEndpoint, token); err != nil {
			return err
		}
	}

	if loginPrintToken {
		fmt.Fprintln(cmd.OutOrStdout(), token.AccessToken)
		return nil
	}

	if token.ExpiresAt.IsZero() {
		fmt.Fprintln(cmd.OutOrStdout(), "Login successful.")
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Login successful. Token expires at %s.\n",
			token.ExpiresAt.Format(time.RFC3339))
	}
	return nil
}

// applyLoginOverrides lets flags take precedence over the config file.
func applyLoginOverrides(cfg *oauth.Config) {
	if loginClientID != "" {
		cfg.ClientID = loginClientID
	}
	if loginClientSecret != "" {
		cfg.ClientSecret = loginClientSecret
	}
	if loginRedirectURI != "" {
		cfg.RedirectURI = loginRedirectURI
	}
	if len(loginScopes) > 0 {
		cfg.Scopes = loginScopes
	}
	if loginAuthorizeEndpoint != "" {
		cfg.AuthorizeEndpoint = loginAuthorizeEndpoint
	}
	if loginTokenEndpoint != "" {
		cfg.TokenEndpoint = loginTokenEndpoint
	}
	if loginTimeout != 0 {
		cfg.Timeout = loginTimeout
	}
}
