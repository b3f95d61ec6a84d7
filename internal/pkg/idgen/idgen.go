// Package idgen names shared tables and the processes publishing to them.
package idgen

import (
	"encoding/hex"
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

type Generator interface {
	Generate() string
}

// Func adapts a plain function to Generator.
type Func func() string

func (f Func) Generate() string { return f() }

func withPrefix(prefix, id string) string {
	if prefix == "" {
		return id
	}
	return prefix + "_" + id
}

// NewUUID yields prefixed random UUIDs.
func NewUUID(prefix string) Generator {
	return Func(func() string {
		return withPrefix(prefix, uuid.NewString())
	})
}

// NewShort yields 16 hex characters of a random UUID. Table IDs end up in
// links players paste into chat, so they trade some entropy for length.
func NewShort(prefix string) Generator {
	return Func(func() string {
		id := uuid.New()
		return withPrefix(prefix, hex.EncodeToString(id[:8]))
	})
}

// Sequential yields prefix_1, prefix_2, ... and is safe for concurrent use.
type Sequential struct {
	prefix string
	n      atomic.Uint64
}

func NewSequential(prefix string) *Sequential {
	return &Sequential{prefix: prefix}
}

func (g *Sequential) Generate() string {
	return withPrefix(g.prefix, strconv.FormatUint(g.n.Add(1), 10))
}
