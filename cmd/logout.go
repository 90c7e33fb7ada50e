package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"authloop/internal/oauth"
)

var logoutTokenEndpoint string

// newLogoutCmd creates the Cobra command that removes a stored token.
func newLogoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Delete the stored token for a provider",
		Long: `Delete the locally stored token for the configured provider.

This only removes the local copy; it does not revoke the token at the provider.`,
		RunE: runLogout,
	}

	cmd.Flags().StringVar(&logoutTokenEndpoint, "token-endpoint", "", "provider token endpoint URL (defaults to the configured one)")

	return cmd
}

func runLogout(cmd *cobra.Command, args []string) error {
	endpoint := logoutTokenEndpoint
	if endpoint == "" {
		fileConfig, err := loadConfig()
		if err != nil {
			return err
		}
		endpoint = fileConfig.TokenEndpoint
	}
	if endpoint == "" {
		return fmt.Errorf("no provider configured; pass --token-endpoint or set tokenEndpoint in config.yaml")
	}

	store, err := oauth.NewTokenStore(oauth.TokenStoreConfig{FileMode: true})
	if err != nil {
		return err
	}
	if err := store.Delete(endpoint); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Deleted stored token for %s\n", endpoint)
	return nil
}
