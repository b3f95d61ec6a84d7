// Package config loads server settings from the environment
package config

import (
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/KirkDiggler/rpg-sheets/internal/errors"
)

// Config is the server configuration. Command line flags override it.
type Config struct {
	HTTPAddr string `env:"RPG_SHEETS_HTTP_ADDR" envDefault:":8080"`
	GRPCPort int    `env:"RPG_SHEETS_GRPC_PORT" envDefault:"50051"`

	// RedisAddr enables shared tables. Empty runs without them.
	RedisAddr string        `env:"RPG_SHEETS_REDIS_ADDR"`
	TableTTL  time.Duration `env:"RPG_SHEETS_TABLE_TTL" envDefault:"12h"`

	DND5eBaseURL  string        `env:"RPG_SHEETS_DND5E_BASE_URL" envDefault:"https://www.dnd5eapi.co/api/2014/"`
	DND5eCacheTTL time.Duration `env:"RPG_SHEETS_DND5E_CACHE_TTL" envDefault:"24h"`

	LogLevel string `env:"RPG_SHEETS_LOG_LEVEL" envDefault:"info"`
}

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// Load parses the environment and validates the result
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "failed to parse environment")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and enums
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	errors.ValidateRequired("HTTPAddr", c.HTTPAddr, vb)
	errors.ValidateRange("GRPCPort", c.GRPCPort, 1, 65535, vb)
	errors.ValidateEnum("LogLevel", c.LogLevel, []string{"debug", "info", "warn", "error"}, vb)
	if c.TableTTL <= 0 {
		vb.Field("TableTTL", "must be positive")
	}
	if c.DND5eCacheTTL < 0 {
		vb.Field("DND5eCacheTTL", "cannot be negative")
	}

	return vb.Build()
}

// SlogLevel is LogLevel as a slog.Level, info when unknown
func (c *Config) SlogLevel() slog.Level {
	if level, ok := logLevels[c.LogLevel]; ok {
		return level
	}
	return slog.LevelInfo
}
