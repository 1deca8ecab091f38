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
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 8, cfg.Pricing.Workers)
	assert.Equal(t, 3*time.Second, cfg.Pricing.FetchTimeout)
	assert.Equal(t, 3*time.Second, cfg.Pricing.ApplyTimeout)
	assert.Equal(t, int32(2), cfg.Pricing.MinorDigits)
	assert.Equal(t, "mysql", cfg.Pricing.SettingsBackend)
	assert.Equal(t, "memory", cfg.Pricing.LockBackend)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_MissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Pricing.Workers)
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
pricing:
  workers: 4
  fetch_timeout: 1500ms
  settings_backend: memory
feed:
  base_url: http://feed.internal
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	t.Setenv("PRICING_WORKERS", "12")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 12, cfg.Pricing.Workers)
	assert.Equal(t, 1500*time.Millisecond, cfg.Pricing.FetchTimeout)
	assert.Equal(t, "memory", cfg.Pricing.SettingsBackend)
	assert.Equal(t, "http://feed.internal", cfg.Feed.BaseURL)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "zero workers", env: map[string]string{"PRICING_WORKERS": "0"}},
		{name: "unknown settings backend", env: map[string]string{"PRICING_SETTINGS_BACKEND": "postgres"}},
		{name: "unknown lock backend", env: map[string]string{"PRICING_LOCK_BACKEND": "etcd"}},
		{name: "redis lock ttl too short", env: map[string]string{"PRICING_LOCK_BACKEND": "redis", "PRICING_LOCK_TTL": "2s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			assert.Error(t, err)
		})
	}
}

func TestLoad_LockTTLCoversStoreTimeout(t *testing.T) {
	t.Setenv("PRICING_LOCK_BACKEND", "redis")
	t.Setenv("PRICING_LOCK_TTL", "7s")
	t.Setenv("PRICING_STORE_TIMEOUT", "2s")

	_, err := Load("")
	assert.Error(t, err, "7s does not cover 2s store + 3s fetch + 3s apply")

	t.Setenv("PRICING_LOCK_TTL", "9s")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 8*time.Second, cfg.Pricing.LockHoldLimit())
}

func TestLoad_JobsRequireRedisLocks(t *testing.T) {
	t.Setenv("JOBS_ENABLED", "true")

	_, err := Load("")
	assert.ErrorContains(t, err, "lock_backend redis")

	_, err = Load("config.yaml")
	assert.ErrorContains(t, err, "lock_backend redis")

	t.Setenv("PRICING_LOCK_BACKEND", "redis")
	cfg, err := Load("config.yaml")
	require.NoError(t, err)
	assert.True(t, cfg.Jobs.Enabled)
	assert.Equal(t, "redis", cfg.Pricing.LockBackend)
}

func TestValidateWorker(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.ErrorContains(t, cfg.ValidateWorker(), "jobs.enabled")

	cfg.Jobs.Enabled = true
	assert.ErrorContains(t, cfg.ValidateWorker(), "lock_backend redis")

	cfg.Pricing.LockBackend = "redis"
	assert.NoError(t, cfg.ValidateWorker())
}
