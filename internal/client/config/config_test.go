package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/mobapp/internal/common"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points the dotenv loader at a file that does not exist and clears
// the MOBAPP_* variables the loaders read.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv(EnvFileVar, filepath.Join(t.TempDir(), "absent.env"))
	for _, name := range []string{
		"MOBAPP_API_BASE_URL", "MOBAPP_REQUEST_TIMEOUT", "MOBAPP_ENVIRONMENT", "MOBAPP_DEBUG",
		"MOBAPP_LOG_LEVEL", "MOBAPP_LOG_FORMAT", "MOBAPP_STORE", "MOBAPP_SQLITE_DSN",
		"MOBAPP_REDIS_URL", "MOBAPP_REDIS_PREFIX", "MOBAPP_STORE_PASSPHRASE", "MOBAPP_CONFIG",
	} {
		t.Setenv(name, "")
		require.NoError(t, os.Unsetenv(name))
	}
}

func defaults() *Config {
	var c Config
	c.LoadDefaults()
	return &c
}

func TestLoadDefaults(t *testing.T) {
	c := defaults()

	assert.Equal(t, "http://laravel-template.pub.localhost/api", c.APIBaseURL)
	assert.Equal(t, 10*time.Second, c.RequestTimeout)
	assert.Equal(t, EnvDevelopment, c.Environment)
	assert.Equal(t, StoreSQLite, c.StoreBackend)
	assert.Equal(t, "info", c.EffectiveLogLevel())
	assert.NoError(t, c.Validate())
}

func TestLoad_DefaultsOnly(t *testing.T) {
	isolate(t)

	cfg, err := load(nil)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(defaults(), cfg))
}

func TestLoad_Precedence(t *testing.T) {
	isolate(t)
	dir := t.TempDir()

	dotenv := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(dotenv, []byte("MOBAPP_LOG_FORMAT=json\nMOBAPP_ENVIRONMENT=staging\n"), 0o600))
	t.Setenv(EnvFileVar, dotenv)

	t.Setenv("MOBAPP_ENVIRONMENT", "production") // beats the dotenv file
	t.Setenv("MOBAPP_REQUEST_TIMEOUT", "3s")
	t.Setenv("MOBAPP_STORE", StoreMemory)

	jsonPath := writeTempJSON(t, dir, "cfg.json", map[string]any{
		"request_timeout": "7s",
		"log_level":       "warn",
		"debug_mode":      true,
		"api_base_url":    "https://json.example/api",
	})

	cfg, err := load([]string{"-c", jsonPath, "-a", "https://flag.example/api", "-s", StoreRedis})
	require.NoError(t, err)

	want := defaults()
	want.LogFormat = "json"
	want.Environment = EnvProduction
	want.RequestTimeout = 7 * time.Second
	want.LogLevel = "warn"
	want.DebugMode = true
	want.APIBaseURL = "https://flag.example/api"
	want.StoreBackend = StoreRedis

	assert.Empty(t, cmp.Diff(want, cfg))
	assert.Equal(t, "debug", cfg.EffectiveLogLevel())
	assert.True(t, cfg.IsProduction())
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		args []string
	}{
		{name: "bad timeout env", env: map[string]string{"MOBAPP_REQUEST_TIMEOUT": "soon"}},
		{name: "bad debug env", env: map[string]string{"MOBAPP_DEBUG": "maybe"}},
		{name: "missing json", args: []string{"-config", "/definitely/not/here.json"}},
		{name: "bad flag value", args: []string{"-t", "abc"}},
		{name: "unknown store", args: []string{"-s", "floppy"}},
		{name: "unknown environment", args: []string{"-e", "qa"}},
		{name: "relative url", args: []string{"-a", "/api"}},
		{name: "zero timeout", args: []string{"-t", "0s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := load(tt.args)
			require.Error(t, err)
		})
	}
}

func TestValidate_UnknownStoreIsSentinel(t *testing.T) {
	c := defaults()
	c.StoreBackend = "tape"
	require.ErrorIs(t, c.Validate(), common.ErrUnknownStoreBackend)
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    func(c *Config)
		wantErr bool
	}{
		{
			name: "all flags",
			args: []string{"-a", "https://x.io/api", "-t", "2s", "-e", "staging", "-debug", "-l", "error",
				"-log-format", "json", "-s", "memory", "-d", "/tmp/x.db", "-r", "redis://r:6379/1"},
			want: func(c *Config) {
				c.APIBaseURL = "https://x.io/api"
				c.RequestTimeout = 2 * time.Second
				c.Environment = EnvStaging
				c.DebugMode = true
				c.LogLevel = "error"
				c.LogFormat = "json"
				c.StoreBackend = StoreMemory
				c.SQLiteDSN = "/tmp/x.db"
				c.RedisURL = "redis://r:6379/1"
			},
		},
		{name: "foreign flags ignored", args: []string{"-c", "cfg.json", "-unknown", "v"}, want: func(*Config) {}},
		{name: "bad duration", args: []string{"-t", "abc"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := defaults()
			err := parseFlags(got, tt.args)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)

			want := defaults()
			tt.want(want)
			assert.Empty(t, cmp.Diff(want, got))
		})
	}
}
