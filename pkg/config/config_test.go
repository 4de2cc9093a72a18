package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	l := cfg.Toast.Lifetimes()
	assert.Equal(t, 6*time.Second, l.Default)
	assert.Equal(t, 12*time.Second, l.Mention)
	assert.Equal(t, 10*time.Second, l.RemoteMention)
	assert.Equal(t, 5*time.Minute, cfg.Presence.Window)
	assert.Equal(t, 100, cfg.Ledger.Capacity)
	assert.Equal(t, 5, cfg.Toast.Capacity)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hoconnect.yaml")
	content := `
data_dir: /var/lib/hoconnect
store:
  backend: redis
bus:
  transport: redis
redis:
  addr: redis:6379
  db: 2
toast:
  remote_mention: 12s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "/var/lib/hoconnect", cfg.DataDir)
	assert.Equal(t, StoreRedis, cfg.Store.Backend)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, 12*time.Second, cfg.Toast.RemoteMention)
	assert.Equal(t, 6*time.Second, cfg.Toast.Lifetime, "unset keys keep their defaults")
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("toast: [unclosed"), 0644))
	_, err = Load(path)
	assert.Error(t, err)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("HOCONNECT_LOG_LEVEL", "debug")
	t.Setenv("HOCONNECT_LOG_JSON", "true")
	t.Setenv("HOCONNECT_REDIS_DB", "3")
	t.Setenv("HOCONNECT_PRESENCE_WINDOW", "2m")
	t.Setenv("HOCONNECT_INSTANCE_ID", "desk-7")
	t.Setenv("HOCONNECT_METRICS_ADDR", "0.0.0.0:9100")

	cfg := Default()
	cfg.ApplyEnv()

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.JSON)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, 2*time.Minute, cfg.Presence.Window)
	assert.Equal(t, "desk-7", cfg.InstanceID)
	assert.Equal(t, "0.0.0.0:9100", cfg.Metrics.Addr)
}

func TestApplyEnvIgnoresMalformed(t *testing.T) {
	t.Setenv("HOCONNECT_REDIS_DB", "three")
	t.Setenv("HOCONNECT_PRESENCE_WINDOW", "soon")

	cfg := Default()
	cfg.ApplyEnv()
	assert.Equal(t, 0, cfg.Redis.DB)
	assert.Equal(t, 5*time.Minute, cfg.Presence.Window)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown store", func(c *Config) { c.Store.Backend = "sqlite" }},
		{"unknown bus", func(c *Config) { c.Bus.Transport = "carrier-pigeon" }},
		{"redis store on memory bus", func(c *Config) { c.Store.Backend = StoreRedis }},
		{"missing redis addr", func(c *Config) { c.Bus.Transport = BusRedis; c.Redis.Addr = "" }},
		{"missing data dir", func(c *Config) { c.DataDir = "" }},
		{"zero toast capacity", func(c *Config) { c.Toast.Capacity = 0 }},
		{"zero lifetime", func(c *Config) { c.Toast.Mention = 0 }},
		{"zero presence window", func(c *Config) { c.Presence.Window = 0 }},
		{"zero ledger capacity", func(c *Config) { c.Ledger.Capacity = 0 }},
		{"unknown log level", func(c *Config) { c.Log.Level = "verbose" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
