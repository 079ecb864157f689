package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "store.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"STORE_HTTP_ADDR", "STORE_GRPC_ADDR", "STORE_STORAGE_DRIVER", "STORE_DATA_FILE",
		"REDIS_ADDR", "MYSQL_DSN", "STORE_LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadOrDefault_MissingFile(t *testing.T) {
	clearEnv(t)
	cfg, loaded, err := LoadOrDefault(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.False(t, loaded)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
httpAddr: ":9090"
currency: eur
shutdownTimeout: 2s
log:
  level: DEBUG
  development: true
storage:
  driver: Redis
  redisKey: shop:state
`)

	cfg, loaded, err := LoadOrDefault(path)
	require.NoError(t, err)
	assert.True(t, loaded)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, ":50051", cfg.GRPCAddr)
	assert.Equal(t, "EUR", cfg.Currency)
	assert.Equal(t, 2*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.Development)
	assert.Equal(t, DriverRedis, cfg.Storage.Driver)
	assert.Equal(t, "shop:state", cfg.Storage.RedisKey)
	assert.Equal(t, "localhost:6379", cfg.Storage.RedisAddr)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_HTTP_ADDR", ":7000")
	t.Setenv("STORE_STORAGE_DRIVER", "mysql")
	t.Setenv("MYSQL_DSN", "u:p@tcp(db:3306)/shop")
	t.Setenv("STORE_DATA_FILE", "/var/lib/store/data.json")

	cfg, _, err := LoadOrDefault(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.HTTPAddr)
	assert.Equal(t, DriverMySQL, cfg.Storage.Driver)
	assert.Equal(t, "u:p@tcp(db:3306)/shop", cfg.Storage.MySQLDSN)
	assert.Equal(t, "/var/lib/store/data.json", cfg.Storage.Path)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "storage: [unterminated")

	_, _, err := LoadOrDefault(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown driver", func(c *Config) { c.Storage.Driver = "sqlite" }},
		{"empty file path", func(c *Config) { c.Storage.Path = "" }},
		{"empty redis addr", func(c *Config) { c.Storage.Driver = DriverRedis; c.Storage.RedisAddr = " " }},
		{"empty mysql dsn", func(c *Config) { c.Storage.Driver = DriverMySQL; c.Storage.MySQLDSN = "" }},
		{"empty http addr", func(c *Config) { c.HTTPAddr = "" }},
		{"empty grpc addr", func(c *Config) { c.GRPCAddr = "" }},
		{"empty currency", func(c *Config) { c.Currency = "" }},
	}

	require.NoError(t, Default().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
