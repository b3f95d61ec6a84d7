// Package redis builds the go-redis client behind shared tables.
package redis

import (
	"context"
	"crypto/tls"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/rpg-sheets/internal/errors"
)

// Config describes a single redis node. Zero pool values keep the go-redis
// defaults.
type Config struct {
	Addr        string
	DB          int
	PoolSize    int
	DialTimeout time.Duration
	UseTLS      bool
}

func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("Addr", c.Addr, vb)
	errors.ValidateRange("DB", c.DB, 0, 15, vb)
	if c.PoolSize < 0 {
		vb.Field("PoolSize", "must not be negative")
	}
	if c.DialTimeout < 0 {
		vb.Field("DialTimeout", "must not be negative")
	}
	return vb.Build()
}

// NewClient dials nothing; the first command opens the connection.
func NewClient(cfg *Config) (Client, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("redis config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid redis config")
	}

	opts := &redis.Options{
		Addr:        cfg.Addr,
		DB:          cfg.DB,
		PoolSize:    cfg.PoolSize,
		DialTimeout: cfg.DialTimeout,
	}
	if cfg.UseTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return redis.NewClient(opts), nil
}

// Ping reports an unreachable server as Unavailable.
func Ping(ctx context.Context, client Client) error {
	if err := client.Ping(ctx).Err(); err != nil {
		return errors.WrapWithCode(err, errors.CodeUnavailable, "redis is unreachable")
	}
	return nil
}
