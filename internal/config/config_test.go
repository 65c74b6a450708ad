package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, StoreMemory, cfg.Store.Backend)
	assert.Equal(t, 24*time.Hour, cfg.Store.SessionTTL.Std())
	assert.Equal(t, 50*time.Second, cfg.Telegram.PollTimeout.Std())
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
telegram:
  token: "123:abc"
  poll_timeout: 30s
store:
  backend: redis
  session_ttl: 2h
  redis:
    addr: "redis.local:6379"
    db: 3
log:
  level: debug
  format: json
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "123:abc", cfg.Telegram.Token)
	assert.Equal(t, 30*time.Second, cfg.Telegram.PollTimeout.Std())
	assert.Equal(t, StoreRedis, cfg.Store.Backend)
	assert.Equal(t, 2*time.Hour, cfg.Store.SessionTTL.Std())
	assert.Equal(t, "redis.local:6379", cfg.Store.Redis.Addr)
	assert.Equal(t, 3, cfg.Store.Redis.DB)
	assert.Equal(t, "json", cfg.Log.Format)

	// Unset fields keep their defaults.
	assert.Equal(t, 30*time.Second, cfg.Engine.Timeout.Std())
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("engine:\n  base_url: http://file.example\n"), 0o644))

	t.Setenv("PGDBOT_ENGINE_URL", "http://env.example")
	t.Setenv("PGDBOT_SESSION_TTL", "15m")
	t.Setenv("PGDBOT_REDIS_DB", "7")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://env.example", cfg.Engine.BaseURL)
	assert.Equal(t, 15*time.Minute, cfg.Store.SessionTTL.Std())
	assert.Equal(t, 7, cfg.Store.Redis.DB)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown backend", "store:\n  backend: etcd\n"},
		{"redis without addr", "store:\n  backend: redis\n  redis:\n    addr: \"\"\n"},
		{"negative ttl", "store:\n  session_ttl: -1h\n"},
		{"zero poll timeout", "telegram:\n  poll_timeout: 0s\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o644))

			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
