package cmd

import (
	"errors"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"authloop/internal/config"
	"authloop/internal/oauth"
)

// Exit codes for CLI commands.
// These follow common conventions for scripting and automation.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeConfig indicates missing or invalid configuration.
	ExitCodeConfig = 2
	// ExitCodeAuthFailed indicates the OAuth flow failed.
	ExitCodeAuthFailed = 3
)

var (
	configDir string
	verbose   bool
)

// rootCmd represents the base command for the authloop application.
var rootCmd = &cobra.Command{
	Use:   "authloop",
	Short: "Obtain OAuth access tokens from the command line",
	Long: `authloop performs an OAuth 2.0 authorization-code exchange from the
command line. It opens your browser on the provider's consent page, receives
the redirect on a temporary local listener, and exchanges the authorization
code for an access token.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors
	// that are handled by the application.
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
		slog.SetDefault(slog.New(handler))
	},
}

// SetVersion sets the version for the root command.
// This is called from the main package to inject the build version.
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "authloop version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode determines the appropriate exit code based on the error type.
func getExitCode(err error) int {
	var configErr *oauth.ConfigurationError
	if errors.As(err, &configErr) {
		return ExitCodeConfig
	}

	var browserErr *oauth.BrowserLaunchError
	var deniedErr *oauth.ProviderDeniedError
	var timeoutErr *oauth.TimeoutError
	var exchangeErr *oauth.TokenExchangeError
	if errors.As(err, &browserErr) || errors.As(err, &deniedErr) ||
		errors.As(err, &timeoutErr) || errors.As(err, &exchangeErr) {
		return ExitCodeAuthFailed
	}

	return ExitCodeError
}

// loadConfig resolves the config directory and loads the configuration file.
func loadConfig() (config.Config, error) {
	dir := configDir
	if dir == "" {
		var err error
		dir, err = config.DefaultConfigPath()
		if err != nil {
			return config.Config{}, err
		}
	}
	return config.LoadConfig(dir)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "config directory (default is $HOME/.config/authloop)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newLogoutCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())
}
