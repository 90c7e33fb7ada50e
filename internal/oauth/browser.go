package oauth

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
)

// Launcher opens an authorization URL in the user's interactive browser.
// The flow only depends on this capability; implementations are replaceable
// for testing.
type Launcher interface {
	Open(url string) error
}

// browserLauncher starts the platform browser command. It is a variable so
// tests can intercept the command without opening a real browser.
var browserLauncher = func(cmd *exec.Cmd) error {
	return cmd.Start()
}

// SystemBrowser is the default Launcher. It shells out to the platform's
// URL opener (xdg-open, open, or cmd start).
type SystemBrowser struct{}

// Open opens the specified URL in the default web browser.
// It supports Linux, macOS, and Windows.
func (SystemBrowser) Open(rawURL string) error {
	return OpenBrowser(rawURL)
}

// OpenBrowser opens the specified URL in the default web browser.
// Only http and https URLs are accepted; anything else (file:, javascript:,
// custom schemes) is rejected before reaching the shell.
func OpenBrowser(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("URL cannot be empty")
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme %q: only http and https are allowed", parsed.Scheme)
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "linux":
		cmd = exec.Command("xdg-open", rawURL)
	case "darwin":
		cmd = exec.Command("open", rawURL)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", rawURL)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	// Start the command but don't wait for it to complete.
	// The browser opens in the background.
	if err := browserLauncher(cmd); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}

	return nil
}
