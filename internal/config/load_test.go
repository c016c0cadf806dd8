package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "docket.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaultsWhenPathEmpty(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Listen)
	assert.Equal(t, "./agents", cfg.Registry.Root)
	assert.Equal(t, "/agents", cfg.API.BasePath)
	assert.Nil(t, cfg.Audit)
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
listen     = "127.0.0.1:9999"
log_level  = "debug"
log_format = "json"

registry {
  root        = "/srv/agents"
  extension   = ".doc"
  auto_reload = true
  schema_file = "/srv/agent.schema.json"
}

api {
  base_path = "/v1/agents/"
  metrics   = false
}

audit {
  database = "/srv/docket.db"
}
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9999", cfg.Listen)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "/srv/agents", cfg.Registry.Root)
	assert.Equal(t, ".doc", cfg.Registry.Extension)
	assert.True(t, cfg.Registry.AutoReload)
	assert.Equal(t, "/srv/agent.schema.json", cfg.Registry.SchemaFile)
	assert.Equal(t, "/v1/agents", cfg.API.BasePath, "trailing slash trimmed")
	assert.False(t, cfg.API.MetricsEnabled())
	require.NotNil(t, cfg.Audit)
	assert.Equal(t, "/srv/docket.db", cfg.Audit.Database)
}

func TestLoadPartialConfigKeepsDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `listen = ":9090"`))
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Listen)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, ".json", cfg.Registry.Extension)
	assert.Equal(t, "/agents", cfg.API.BasePath)
}

func TestLoadEmptyAuditBlock(t *testing.T) {
	cfg, err := Load(writeConfig(t, "audit {}\n"))
	require.NoError(t, err)

	require.NotNil(t, cfg.Audit)
	assert.Equal(t, "./docket_audit.db", cfg.Audit.Database)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.hcl"))
	require.Error(t, err)
}

func TestLoadMalformedHCL(t *testing.T) {
	_, err := Load(writeConfig(t, "registry {"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestLoadUnknownAttribute(t *testing.T) {
	_, err := Load(writeConfig(t, `colour = "red"`))
	require.Error(t, err)
}

func TestLoadInvalidLogLevel(t *testing.T) {
	_, err := Load(writeConfig(t, `log_level = "loud"`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log_level")
}
