package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_FileWithEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
postgres:
  dsn: postgres://file
http:
  addr: ":9000"
handicap:
  base_url: https://handicap.example
  timeout: 5s
queue:
  rate_per_second: 4
scoring:
  default_view: net
`), 0o600))

	t.Setenv("DATABASE_URL", "postgres://env")
	t.Setenv("HANDICAP_API_TOKEN", "tok")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres://env", cfg.Postgres.DSN)
	assert.Equal(t, ":9000", cfg.HTTP.Addr)
	assert.Equal(t, "https://handicap.example", cfg.Handicap.BaseURL)
	assert.Equal(t, "tok", cfg.Handicap.Token)
	assert.Equal(t, 5*time.Second, cfg.Handicap.Timeout)
	assert.Equal(t, 4.0, cfg.Queue.RatePerSecond)
	assert.Equal(t, 5, cfg.Queue.MaxWorkers)
	assert.Equal(t, "net", cfg.Scoring.DefaultView)
}

func TestLoadConfig_EnvOnly(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":7000")
	t.Setenv("POSTING_RATE_PER_SEC", "0.5")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.HTTP.Addr)
	assert.Equal(t, 0.5, cfg.Queue.RatePerSecond)
	assert.Equal(t, "points", cfg.Scoring.DefaultView)
	assert.Equal(t, 10*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, 5.0, cfg.HTTP.WriteRateLimit)
	assert.Equal(t, 10, cfg.HTTP.WriteBurst)
}

func TestLoadConfig_InvalidEnv(t *testing.T) {
	t.Setenv("POSTING_RATE_PER_SEC", "fast")

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "POSTING_RATE_PER_SEC")
}
