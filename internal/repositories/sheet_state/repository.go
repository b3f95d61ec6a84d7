// Package sheetstate keeps a sheet's query state in redis so several
// browsers can follow one character at a shared table.
package sheetstate

import (
	"context"
	"net/url"

	"github.com/KirkDiggler/rpg-sheets/internal/store"
)

// Backend is a store backend for one redis session with server side
// history. Several players write to it, so commits from a Store are
// compare-and-set.
type Backend interface {
	store.ConditionalBackend

	// Back restores the entry before the latest commit. It reports false when
	// there is nothing to go back to.
	Back(ctx context.Context) (bool, error)

	// Entries returns committed queries, oldest first
	Entries(ctx context.Context) ([]url.Values, error)

	// Close stops the pub/sub subscription
	Close() error
}
