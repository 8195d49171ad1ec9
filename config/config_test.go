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
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "openai", cfg.Model.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.Model.Name)
	assert.Equal(t, 10, cfg.Agent.MaxIterations)
	assert.Equal(t, "memory", cfg.Session.Backend)
	assert.Equal(t, 10*time.Second, cfg.Tools.Timeout.Std())
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
addr: ":9090"
model:
  provider: anthropic
  name: claude-sonnet-4-20250514
  temperature: 0.2
agent:
  max_iterations: 5
  instructions: "You are a helpful assistant."
session:
  backend: redis
  redis:
    addr: "redis:6379"
    db: 2
    ttl: 1h
tools:
  fx_base_url: "http://localhost:9001"
logging:
  level: debug
  format: text
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "anthropic", cfg.Model.Provider)
	assert.Equal(t, "claude-sonnet-4-20250514", cfg.Model.Name)
	assert.Equal(t, 0.2, cfg.Model.Temperature)
	assert.Equal(t, 5, cfg.Agent.MaxIterations)
	assert.Equal(t, "You are a helpful assistant.", cfg.Agent.Instructions)
	assert.Equal(t, "redis", cfg.Session.Backend)
	assert.Equal(t, "redis:6379", cfg.Session.Redis.Addr)
	assert.Equal(t, 2, cfg.Session.Redis.DB)
	assert.Equal(t, time.Hour, cfg.Session.Redis.TTL.Std())
	assert.Equal(t, "http://localhost:9001", cfg.Tools.FXBaseURL)
	assert.Equal(t, "debug", cfg.Logging.Level)

	// Unset file fields keep their defaults.
	assert.Equal(t, 10*time.Second, cfg.Tools.Timeout.Std())
}

func TestLoad_EnvOverridesAddr(t *testing.T) {
	t.Setenv("AGENTCHAT_ADDR", ":7070")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Addr)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "addr: [unclosed")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_InvalidDuration(t *testing.T) {
	path := writeConfig(t, "tools:\n  timeout: soon\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.Validate())

	bad := Default()
	bad.Model.Provider = "cohere"
	assert.Error(t, bad.Validate())

	bad = Default()
	bad.Session.Backend = "postgres"
	assert.Error(t, bad.Validate())

	bad = Default()
	bad.Agent.MaxIterations = -1
	assert.Error(t, bad.Validate())
}
