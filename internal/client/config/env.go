package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// EnvFileVar points at an alternative dotenv file. Default is ./.env.
const EnvFileVar = "MOBAPP_ENV_FILE"

// parseEnv overlays cfg with MOBAPP_* environment variables. Variables from
// the dotenv file are loaded first but never override ones already set in
// the process environment.
func parseEnv(cfg *Config) error {
	path := os.Getenv(EnvFileVar)
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}

	str := func(name string, dst *string) {
		if v, ok := os.LookupEnv(name); ok && v != "" {
			*dst = v
		}
	}
	str("MOBAPP_API_BASE_URL", &cfg.APIBaseURL)
	str("MOBAPP_ENVIRONMENT", &cfg.Environment)
	str("MOBAPP_LOG_LEVEL", &cfg.LogLevel)
	str("MOBAPP_LOG_FORMAT", &cfg.LogFormat)
	str("MOBAPP_STORE", &cfg.StoreBackend)
	str("MOBAPP_SQLITE_DSN", &cfg.SQLiteDSN)
	str("MOBAPP_REDIS_URL", &cfg.RedisURL)
	str("MOBAPP_REDIS_PREFIX", &cfg.RedisPrefix)
	str("MOBAPP_STORE_PASSPHRASE", &cfg.StorePassphrase)

	if v := os.Getenv("MOBAPP_REQUEST_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("MOBAPP_REQUEST_TIMEOUT: %w", err)
		}
		cfg.RequestTimeout = d
	}
	if v := os.Getenv("MOBAPP_DEBUG"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("MOBAPP_DEBUG: %w", err)
		}
		cfg.DebugMode = b
	}
	return nil
}
