package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, configFileName), []byte(content), 0600))
	return dir
}

func TestLoadConfig(t *testing.T) {
	dir := writeConfigFile(t, `
clientID: abc
clientSecret: xyz
redirectURI: http://localhost:4321
scopes:
  - read
  - write
authorizeEndpoint: https://provider.example.com/oauth/authorize
tokenEndpoint: https://provider.example.com/oauth/token
timeout: 45s
`)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "abc", cfg.ClientID)
	assert.Equal(t, "xyz", cfg.ClientSecret)
	assert.Equal(t, "http://localhost:4321", cfg.RedirectURI)
	assert.Equal(t, []string{"read", "write"}, cfg.Scopes)
	assert.Equal(t, Duration(45*time.Second), cfg.Timeout)
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Config{}, cfg)
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	dir := writeConfigFile(t, "clientID: [unclosed")
	_, err := LoadConfig(dir)
	assert.Error(t, err)
}

func TestLoadConfig_InvalidDuration(t *testing.T) {
	dir := writeConfigFile(t, "timeout: not-a-duration")
	_, err := LoadConfig(dir)
	assert.Error(t, err)
}

func TestLoadConfig_ClientSecretEnvOverride(t *testing.T) {
	dir := writeConfigFile(t, `
clientID: abc
clientSecret: from-file
`)
	t.Setenv(clientSecretEnv, "from-env")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.ClientSecret)
}

func TestConfig_ToFlowConfig(t *testing.T) {
	cfg := Config{
		ClientID:          "abc",
		ClientSecret:      "xyz",
		RedirectURI:       "http://localhost:4321",
		Scopes:            []string{"read"},
		ScopeDelimiter:    ",",
		AuthorizeEndpoint: "https://provider.example.com/authorize",
		TokenEndpoint:     "https://provider.example.com/token",
		Timeout:           Duration(30 * time.Second),
		LandingURL:        "https://example.com/done",
	}

	flowCfg := cfg.ToFlowConfig()
	assert.Equal(t, "abc", flowCfg.ClientID)
	assert.Equal(t, "xyz", flowCfg.ClientSecret)
	assert.Equal(t, "http://localhost:4321", flowCfg.RedirectURI)
	assert.Equal(t, []string{"read"}, flowCfg.Scopes)
	assert.Equal(t, ",", flowCfg.ScopeDelimiter)
	assert.Equal(t, 30*time.Second, flowCfg.Timeout)
	assert.Equal(t, "https://example.com/done", flowCfg.LandingURL)
	require.NoError(t, flowCfg.Validate())
}
