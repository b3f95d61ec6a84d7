package store

import (
	"context"
	"net/url"

	"github.com/KirkDiggler/rpg-sheets/internal/errors"
)

//go:generate mockgen -destination=mock/mock_backend.go -package=storemock github.com/KirkDiggler/rpg-sheets/internal/store Backend

// Backend persists the parameter set and reports changes to it.
type Backend interface {
	// Load returns a copy of the current parameter set
	Load(ctx context.Context) (url.Values, error)

	// Commit replaces the parameter set as a single navigation step
	Commit(ctx context.Context, values url.Values) error

	// Subscribe registers fn to run after every change, whether it came from
	// Commit or from outside (back/forward, another process). The returned
	// func removes the subscription.
	Subscribe(fn func()) (unsubscribe func())
}

// ErrConflict is what CommitIf reports when another writer changed the
// parameter set after it was loaded.
var ErrConflict = errors.FailedPrecondition("query changed concurrently")

// ConditionalBackend is a Backend shared by several writers. CommitIf commits
// values only while the backend still holds base and returns ErrConflict
// otherwise. A Store over one retries the whole read-modify-write, so a
// Batch fn may run more than once.
type ConditionalBackend interface {
	Backend

	CommitIf(ctx context.Context, base, values url.Values) error
}
