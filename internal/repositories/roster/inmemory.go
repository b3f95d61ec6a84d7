package roster

import (
	"context"
	"sync"

	"github.com/KirkDiggler/rpg-sheets/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-sheets/internal/errors"
)

// InMemoryRepository implements Repository over a fixed slice
type InMemoryRepository struct {
	mu    sync.RWMutex
	order []string
	store map[string]*dnd5e.Character
}

// NewInMemory creates a repository holding characters in the given order.
// Later duplicates of an ID replace earlier ones.
func NewInMemory(characters ...*dnd5e.Character) *InMemoryRepository {
	r := &InMemoryRepository{
		store: make(map[string]*dnd5e.Character, len(characters)),
	}
	for _, c := range characters {
		if _, exists := r.store[c.ID]; !exists {
			r.order = append(r.order, c.ID)
		}
		r.store[c.ID] = c
	}
	return r
}

// NewDefault creates a repository with the built in characters
func NewDefault() *InMemoryRepository {
	return NewInMemory(Characters()...)
}

// Ensure InMemoryRepository implements Repository
var _ Repository = (*InMemoryRepository)(nil)

// Get retrieves a character by ID
func (r *InMemoryRepository) Get(_ context.Context, input GetInput) (*GetOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument("character ID is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	c, exists := r.store[input.ID]
	if !exists {
		return nil, errors.NotFoundf("character %s not found", input.ID).
			WithMeta("character_id", input.ID)
	}

	return &GetOutput{Character: c}, nil
}

// List returns all characters in roster order
func (r *InMemoryRepository) List(_ context.Context) (*ListOutput, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*dnd5e.Character, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.store[id])
	}

	return &ListOutput{Characters: out}, nil
}
