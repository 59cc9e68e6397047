package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/mobapp/internal/flagx"
	"github.com/dmitrijs2005/mobapp/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify the timeout either as a
// string like "10s" or as integer nanoseconds. Absent fields leave the
// corresponding Config value alone.
type JsonConfig struct {
	APIBaseURL      string          `json:"api_base_url"`
	RequestTimeout  *timex.Duration `json:"request_timeout"`
	Environment     string          `json:"environment"`
	DebugMode       *bool           `json:"debug_mode"`
	LogLevel        string          `json:"log_level"`
	LogFormat       string          `json:"log_format"`
	StoreBackend    string          `json:"store"`
	SQLiteDSN       string          `json:"sqlite_dsn"`
	RedisURL        string          `json:"redis_url"`
	RedisPrefix     string          `json:"redis_prefix"`
	StorePassphrase string          `json:"store_passphrase"`
}

// parseJSON overlays cfg with values from the JSON file named by -c/-config
// (or $MOBAPP_CONFIG). Without a path it does nothing.
func parseJSON(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&cfg.APIBaseURL, jc.APIBaseURL)
	set(&cfg.Environment, jc.Environment)
	set(&cfg.LogLevel, jc.LogLevel)
	set(&cfg.LogFormat, jc.LogFormat)
	set(&cfg.StoreBackend, jc.StoreBackend)
	set(&cfg.SQLiteDSN, jc.SQLiteDSN)
	set(&cfg.RedisURL, jc.RedisURL)
	set(&cfg.RedisPrefix, jc.RedisPrefix)
	set(&cfg.StorePassphrase, jc.StorePassphrase)

	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.DebugMode != nil {
		cfg.DebugMode = *jc.DebugMode
	}
	return nil
}
