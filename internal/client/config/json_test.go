package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/mobapp/internal/flagx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJSON_SourcesAndPrecedence(t *testing.T) {
	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"api_base_url":    "https://www.example/api",
		"request_timeout": "15s",
		"store":           "redis",
		"redis_prefix":    "tenant-a:",
	})
	pathEnv := writeTempJSON(t, dir, "env.json", map[string]any{
		"request_timeout": 2000000000,
	})

	t.Run("loads from flags", func(t *testing.T) {
		t.Setenv(flagx.ConfigEnvVar, pathEnv)

		cfg := defaults()
		require.NoError(t, parseJSON(cfg, []string{"-config", pathFlag}))

		assert.Equal(t, "https://www.example/api", cfg.APIBaseURL)
		assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
		assert.Equal(t, StoreRedis, cfg.StoreBackend)
		assert.Equal(t, "tenant-a:", cfg.RedisPrefix)
		assert.Equal(t, EnvDevelopment, cfg.Environment, "absent fields keep their value")
	})

	t.Run("falls back to MOBAPP_CONFIG", func(t *testing.T) {
		t.Setenv(flagx.ConfigEnvVar, pathEnv)

		cfg := defaults()
		require.NoError(t, parseJSON(cfg, nil))
		assert.Equal(t, 2*time.Second, cfg.RequestTimeout)
	})

	t.Run("no path → no changes", func(t *testing.T) {
		t.Setenv(flagx.ConfigEnvVar, "")

		cfg := defaults()
		require.NoError(t, parseJSON(cfg, nil))
		assert.Equal(t, defaults(), cfg)
	})

	t.Run("invalid JSON → error", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		cfg := defaults()
		require.Error(t, parseJSON(cfg, []string{"-c", bad}))
	})

	t.Run("invalid duration → error", func(t *testing.T) {
		badDur := writeTempJSON(t, dir, "dur.json", map[string]any{"request_timeout": "forever"})

		cfg := defaults()
		require.Error(t, parseJSON(cfg, []string{"-c", badDur}))
	})
}
