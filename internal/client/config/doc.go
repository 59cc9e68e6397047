// Package config loads runtime configuration for the mobapp CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment variables MOBAPP_*, after loading a dotenv file (./.env or
//     $MOBAPP_ENV_FILE) that never overrides variables already set.
//  3. Optional JSON file selected with -c / -config or $MOBAPP_CONFIG.
//  4. Command-line flags, which override everything else.
//
// The merged result is checked with (*Config).Validate.
//
// # Environment variables
//
//	MOBAPP_API_BASE_URL      MOBAPP_REQUEST_TIMEOUT   MOBAPP_ENVIRONMENT
//	MOBAPP_DEBUG             MOBAPP_LOG_LEVEL         MOBAPP_LOG_FORMAT
//	MOBAPP_STORE             MOBAPP_SQLITE_DSN        MOBAPP_REDIS_URL
//	MOBAPP_REDIS_PREFIX      MOBAPP_STORE_PASSPHRASE
//
// # JSON schema
//
// Durations use timex.Duration, so "10s" and 10000000000 are equivalent:
//
//	{
//	  "api_base_url": "https://api.example.com/api",
//	  "request_timeout": "10s",
//	  "environment": "staging",
//	  "debug_mode": false,
//	  "log_level": "info",
//	  "log_format": "json",
//	  "store": "sqlite",
//	  "sqlite_dsn": "mobapp.db",
//	  "redis_url": "redis://localhost:6379/0",
//	  "redis_prefix": "mobapp:",
//	  "store_passphrase": ""
//	}
//
// The store passphrase has no flag so it does not end up in shell history.
package config
