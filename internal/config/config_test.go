package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	yaml := `
server:
  addr: ":9090"
  auth_token: dev-token
market:
  operator_address: "0x4d61726b6574"
storage:
  driver: postgres
  postgres:
    host: localhost
    name: marketplace
    user: postgres
    password: postgres
`
	cfg, err := LoadAndValidate(writeTempFile(t, yaml))
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "dev-token", cfg.Server.AuthToken)
	assert.Equal(t, "0x4d61726b6574", cfg.Market.OperatorAddress)
	assert.Equal(t, "postgres", cfg.Storage.Driver)
	assert.Equal(t, DefaultDBPort, cfg.Storage.Postgres.Port)
	assert.Equal(t, DefaultDBSSLMode, cfg.Storage.Postgres.SSLMode)
	assert.Contains(t, cfg.Storage.Postgres.ConnString(), "dbname=marketplace")
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	t.Setenv("TEST_DB_PASSWORD", "secret123")

	yaml := `
storage:
  driver: postgres
  postgres:
    host: localhost
    name: marketplace
    user: postgres
    password: ${TEST_DB_PASSWORD}
`
	cfg, err := LoadAndValidate(writeTempFile(t, yaml))
	require.NoError(t, err)
	assert.Equal(t, "secret123", cfg.Storage.Postgres.Password)
}

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, DefaultAddr, cfg.Server.Addr)
	assert.Equal(t, DefaultStorageDriver, cfg.Storage.Driver)
	assert.Equal(t, DefaultOperatorAddress, cfg.Market.OperatorAddress)
	assert.Equal(t, DefaultClientBuffer, cfg.Feed.ClientBuffer)
	assert.NoError(t, cfg.Validate())
}

func TestValidateRejectsBadConfig(t *testing.T) {
	cfg := Default()
	cfg.Storage.Driver = "etcd"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Storage.Driver = "postgres"
	assert.Error(t, cfg.Validate(), "postgres driver without connection settings")

	cfg = Default()
	cfg.Storage.Driver = "sqlite"
	cfg.Storage.Path = ""
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Feed.ClientBuffer = 0
	assert.Error(t, cfg.Validate())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
