package cmd

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"authloop/internal/oauth"
)

// newStatusCmd creates the Cobra command that lists stored tokens.
func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show stored tokens and their expiry",
		Long: `List the tokens authloop has stored, per provider, with their type,
granted scope and expiry. Token values themselves are never displayed.`,
		RunE: runStatus,
	}
}

func runStatus(cmd *cobra.Command, args []string) error {
	store, err := oauth.NewTokenStore(oauth.TokenStoreConfig{FileMode: true})
	if err != nil {
		return err
	}

	tokens := store.List()
	if len(tokens) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No stored tokens.")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Provider", "Type", "Scope", "Expires", "Status"})

	for _, token := range tokens {
		expires := "never"
		if !token.Expiry.IsZero() {
			expires = token.Expiry.Format(time.RFC3339)
		}
		status := "valid"
		if token.IsExpired() {
			status = "expired"
		}
		t.AppendRow(table.Row{token.Provider, token.TokenType, token.Scope, expires, status})
	}

	t.Render()
	return nil
}
