package config

import (
	"fmt"
	"net/url"
	"os"
	"slices"
	"time"

	"github.com/dmitrijs2005/mobapp/internal/common"
)

const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

const (
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Config holds runtime settings for the mobapp CLI.
//
// Fields:
//   - APIBaseURL: root of the REST API, endpoint paths are appended to it.
//   - RequestTimeout: per-request timeout of the gateway client.
//   - Environment: development, staging or production; stamped on log entries.
//   - DebugMode: forces debug-level logging.
//   - LogLevel / LogFormat: slog level name and "text" or "json".
//   - StoreBackend: where tokens and the user record are persisted
//     (sqlite, memory or redis) and the backend-specific SQLiteDSN,
//     RedisURL and RedisPrefix.
//   - StorePassphrase: when set, stored values are sealed with a key derived
//     from it.
type Config struct {
	APIBaseURL      string
	RequestTimeout  time.Duration
	Environment     string
	DebugMode       bool
	LogLevel        string
	LogFormat       string
	StoreBackend    string
	SQLiteDSN       string
	RedisURL        string
	RedisPrefix     string
	StorePassphrase string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://laravel-template.pub.localhost/api"
	c.RequestTimeout = 10 * time.Second
	c.Environment = EnvDevelopment
	c.DebugMode = false
	c.LogLevel = "info"
	c.LogFormat = "text"
	c.StoreBackend = StoreSQLite
	c.SQLiteDSN = "mobapp.db"
	c.RedisURL = "redis://localhost:6379/0"
	c.RedisPrefix = "mobapp:"
	c.StorePassphrase = ""
}

// EffectiveLogLevel is LogLevel, or "debug" when DebugMode is on.
func (c *Config) EffectiveLogLevel() string {
	if c.DebugMode {
		return "debug"
	}
	return c.LogLevel
}

func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api base url %q must be an absolute http(s) URL", c.APIBaseURL)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %s", c.RequestTimeout)
	}
	if !slices.Contains([]string{EnvDevelopment, EnvStaging, EnvProduction}, c.Environment) {
		return fmt.Errorf("unknown environment %q", c.Environment)
	}
	if !slices.Contains([]string{StoreSQLite, StoreMemory, StoreRedis}, c.StoreBackend) {
		return fmt.Errorf("%w: %q", common.ErrUnknownStoreBackend, c.StoreBackend)
	}
	return nil
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the environment (including a .env file), JSON (if present) and command-line
// flags. Later sources take precedence over earlier ones.
func LoadConfig() (*Config, error) {
	return load(os.Args[1:])
}

func load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseJSON(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
