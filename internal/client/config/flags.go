package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/mobapp/internal/flagx"
)

var knownFlags = []string{"-a", "-t", "-e", "-debug", "-l", "-log-format", "-s", "-d", "-r"}

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-a string          API base URL
//	-t duration        request timeout, e.g. 10s
//	-e string          environment (development, staging, production)
//	-debug             debug logging
//	-l string          log level
//	-log-format string text or json
//	-s string          store backend (sqlite, memory, redis)
//	-d string          SQLite DSN
//	-r string          Redis URL
//
// args are filtered with flagx.FilterArgs first so flags owned by other
// parsers (-c) do not trip this one.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, knownFlags)

	fs := flag.NewFlagSet("mobapp", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "API base URL")
	fs.DurationVar(&cfg.RequestTimeout, "t", cfg.RequestTimeout, "request timeout")
	fs.StringVar(&cfg.Environment, "e", cfg.Environment, "environment")
	fs.BoolVar(&cfg.DebugMode, "debug", cfg.DebugMode, "debug logging")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format (text or json)")
	fs.StringVar(&cfg.StoreBackend, "s", cfg.StoreBackend, "store backend (sqlite, memory, redis)")
	fs.StringVar(&cfg.SQLiteDSN, "d", cfg.SQLiteDSN, "SQLite DSN")
	fs.StringVar(&cfg.RedisURL, "r", cfg.RedisURL, "Redis URL")

	return fs.Parse(args)
}
