// Package roster serves the fixed set of characters the sheets are built for
package roster

//go:generate mockgen -destination=mock/mock_repository.go -package=rostermock github.com/KirkDiggler/rpg-sheets/internal/repositories/roster Repository

import (
	"context"

	"github.com/KirkDiggler/rpg-sheets/internal/entities/dnd5e"
)

// Repository defines read access to characters
type Repository interface {
	// Get retrieves a character by ID
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// List returns all characters in roster order
	List(ctx context.Context) (*ListOutput, error)
}

// GetInput defines the request for retrieving a character
type GetInput struct {
	ID string
}

// GetOutput defines the response for retrieving a character
type GetOutput struct {
	Character *dnd5e.Character
}

// ListOutput defines the response for listing characters
type ListOutput struct {
	Characters []*dnd5e.Character
}
