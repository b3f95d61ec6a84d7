// Package testutils holds fakes shared by the package tests.
package testutils

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/rpg-sheets/internal/redis"
)

// CreateTestRedisClient is CreateTestRedis for tests that never look at the
// server side.
func CreateTestRedisClient(t *testing.T) (redis.Client, func()) {
	client, _, cleanup := CreateTestRedis(t)
	return client, cleanup
}

// CreateTestRedis starts a miniredis server and a client pointed at it. The
// server is also handed back so tests can inspect keys or FastForward TTLs.
// Suites call cleanup from TearDownTest.
func CreateTestRedis(t *testing.T) (redis.Client, *miniredis.Miniredis, func()) {
	t.Helper()

	mr := miniredis.NewMiniRedis()
	require.NoError(t, mr.Start(), "failed to start miniredis")

	client, err := redis.NewClient(&redis.Config{Addr: mr.Addr()})
	if err != nil {
		mr.Close()
		require.NoError(t, err, "failed to create redis client")
	}

	return client, mr, func() {
		_ = client.Close()
		mr.Close()
	}
}
