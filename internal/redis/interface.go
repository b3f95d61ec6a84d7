package redis

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// Client is the part of go-redis the sheet state backend touches. Both
// *redis.Client and a client pointed at miniredis satisfy it.
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	LRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd
	TxPipelined(ctx context.Context, fn func(redis.Pipeliner) error) ([]redis.Cmder, error)
	Watch(ctx context.Context, fn func(*redis.Tx) error, keys ...string) error
	Subscribe(ctx context.Context, channels ...string) *redis.PubSub
	Ping(ctx context.Context) *redis.StatusCmd
	Close() error
}

var _ Client = (*redis.Client)(nil)
