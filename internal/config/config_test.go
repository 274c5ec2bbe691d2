package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clem.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_FullFile(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9090"
database:
  path: /var/lib/clem/claims.db
reasoner:
  model: gpt-4o
  base_url: http://localhost:8000/v1
  api_key_env: CLEM_API_KEY
  timeout_seconds: 30
  temperature: 0.2
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "/var/lib/clem/claims.db", cfg.Database.Path)
	assert.Equal(t, "gpt-4o", cfg.Reasoner.Model)
	assert.Equal(t, "http://localhost:8000/v1", cfg.Reasoner.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Reasoner.Timeout())
	assert.InDelta(t, 0.2, cfg.Reasoner.Temperature, 0.001)
}

func TestLoad_FillsDefaults(t *testing.T) {
	path := writeConfig(t, `
database:
  path: test.db
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, DefaultAddr, cfg.Server.Addr)
	assert.Equal(t, "test.db", cfg.Database.Path)
	assert.Equal(t, DefaultModel, cfg.Reasoner.Model)
	assert.Equal(t, DefaultAPIKeyEnv, cfg.Reasoner.APIKeyEnv)
	assert.Equal(t, time.Duration(DefaultTimeoutSeconds)*time.Second, cfg.Reasoner.Timeout())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeConfig(t, "server: [not a mapping")
	_, err := Load(path)
	require.Error(t, err)
}

func TestAPIKey_Resolution(t *testing.T) {
	cfg := ReasonerConfig{APIKeyEnv: "CLEM_TEST_KEY"}

	t.Setenv("CLEM_TEST_KEY", "sk-test")
	key, err := cfg.APIKey()
	require.NoError(t, err)
	assert.Equal(t, "sk-test", key)

	t.Setenv("CLEM_TEST_KEY", "")
	_, err = cfg.APIKey()
	require.Error(t, err)
}
