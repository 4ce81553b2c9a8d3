package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.App.Port)
	assert.True(t, cfg.App.Development())
	assert.Equal(t, []string{"*"}, cfg.App.AllowedOrigins)
	assert.Equal(t, int32(10), cfg.Database.MaxConns)
	assert.Equal(t, 30*time.Second, cfg.Database.StatementTimeout)
	assert.Equal(t, 5*time.Second, cfg.Database.LockTimeout)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, "hwshop", cfg.Metrics.Prefix)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("APP_ENV", "production")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://shop.example, https://admin.example")
	t.Setenv("DB_LOCK_TIMEOUT", "2s")
	t.Setenv("CACHE_ENABLED", "true")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.App.Port)
	assert.False(t, cfg.App.Development())
	assert.Equal(t, []string{"https://shop.example", "https://admin.example"}, cfg.App.AllowedOrigins)
	assert.Equal(t, 2*time.Second, cfg.Database.LockTimeout)
	assert.True(t, cfg.Cache.Enabled)
}

func TestLoad_DotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("METRICS_PREFIX=shop_test\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("METRICS_PREFIX") })

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "shop_test", cfg.Metrics.Prefix)
}

func TestValidate(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{MaxConns: 0}}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
	assert.Contains(t, err.Error(), "AUTH_JWT_SECRET")
	assert.Contains(t, err.Error(), "DB_MAX_CONNS")

	cfg = &Config{
		Database: DatabaseConfig{URL: "postgres://localhost/hwshop", MaxConns: 5},
		Auth:     AuthConfig{JWTSecret: "s3cret"},
	}
	assert.NoError(t, cfg.Validate())
}

func TestLoad_InvalidTimeout(t *testing.T) {
	t.Setenv("DB_STATEMENT_TIMEOUT", "soon")

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
}
