package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("VERIFLOW_CONFIG", path)
}

func TestLoadAppliesDefaults(t *testing.T) {
	writeConfig(t, `
appinfo:
  api_domain: https://api.example.com
  website_domain: https://www.example.com
providers:
  - id: google
    client_id: google-client
    client_secret: google-secret
`)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/auth", cfg.AppInfo.APIBasePath)
	assert.Equal(t, "/auth", cfg.AppInfo.WebsiteBasePath)
	assert.Equal(t, int64(3153600000), cfg.JWT.ValiditySeconds)
	require.Len(t, cfg.Providers, 1)
	assert.Equal(t, "google", cfg.Providers[0].ID)
}

func TestLoadRequiresAPIDomain(t *testing.T) {
	writeConfig(t, `
appinfo:
  website_domain: https://www.example.com
providers:
  - id: google
    client_id: google-client
`)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api_domain")
}

func TestLoadRequiresProviders(t *testing.T) {
	writeConfig(t, `
appinfo:
  api_domain: https://api.example.com
  website_domain: https://www.example.com
`)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "provider")
}

func TestLoadRejectsDuplicateProviders(t *testing.T) {
	writeConfig(t, `
appinfo:
  api_domain: https://api.example.com
  website_domain: https://www.example.com
providers:
  - id: google
    client_id: first
  - id: google
    client_id: second
`)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configured twice")
}

func TestLoadRejectsProviderWithoutClientID(t *testing.T) {
	writeConfig(t, `
appinfo:
  api_domain: https://api.example.com
  website_domain: https://www.example.com
providers:
  - id: google
`)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "client_id")
}
