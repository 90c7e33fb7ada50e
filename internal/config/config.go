// Package config loads the authloop configuration file and converts it into
// a flow configuration.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"authloop/internal/oauth"
)

const (
	userConfigDir  = ".config/authloop"
	configFileName = "config.yaml"
)

// Duration wraps time.Duration so YAML values like "30s" or "5m" parse.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Config is the on-disk configuration schema.
type Config struct {
	ClientID          string   `yaml:"clientID"`
	ClientSecret      string   `yaml:"clientSecret,omitempty"`
	RedirectURI       string   `yaml:"redirectURI"`
	Scopes            []string `yaml:"scopes,omitempty"`
	ScopeDelimiter    string   `yaml:"scopeDelimiter,omitempty"`
	AuthorizeEndpoint string   `yaml:"authorizeEndpoint"`
	TokenEndpoint     string   `yaml:"tokenEndpoint"`
	Timeout           Duration `yaml:"timeout,omitempty"`
	LandingURL        string   `yaml:"landingURL,omitempty"`
}

// clientSecretEnv overrides the file-based client secret so the secret does
// not have to live on disk.
const clientSecretEnv = "AUTHLOOP_CLIENT_SECRET"

// DefaultConfigPath returns the default configuration directory
// (~/.config/authloop).
func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine user config directory: %w", err)
	}
	return filepath.Join(homeDir, userConfigDir), nil
}

// LoadConfig loads config.yaml from the specified directory. A missing file
// is not an error; the zero config is returned and validation happens when
// the flow starts. The AUTHLOOP_CLIENT_SECRET environment variable, when
// set, overrides the clientSecret field.
func LoadConfig(configPath string) (Config, error) {
	configFilePath := filepath.Join(configPath, configFileName)

	var config Config
	data, err := os.ReadFile(configFilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.Debug("no config.yaml found, using defaults", "path", configFilePath)
			return applyEnvOverrides(config), nil
		}
		return Config{}, fmt.Errorf("error reading config from %s: %w", configFilePath, err)
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("error loading config from %s: %w", configFilePath, err)
	}

	slog.Debug("loaded configuration", "path", configFilePath)
	return applyEnvOverrides(config), nil
}

func applyEnvOverrides(config Config) Config {
	if secret := os.Getenv(clientSecretEnv); secret != "" {
		config.ClientSecret = secret
	}
	return config
}

// ToFlowConfig converts the file schema into the flow configuration.
func (c Config) ToFlowConfig() oauth.Config {
	return oauth.Config{
		ClientID:          c.ClientID,
		ClientSecret:      c.ClientSecret,
		RedirectURI:       c.RedirectURI,
		Scopes:            c.Scopes,
		ScopeDelimiter:    c.ScopeDelimiter,
		AuthorizeEndpoint: c.AuthorizeEndpoint,
		TokenEndpoint:     c.TokenEndpoint,
		Timeout:           time.Duration(c.Timeout),
		LandingURL:        c.LandingURL,
	}
}
