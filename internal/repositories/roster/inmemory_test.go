package roster

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/rpg-sheets/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-sheets/internal/errors"
)

func TestInMemoryRepository_Get(t *testing.T) {
	ctx := context.Background()
	repo := NewDefault()

	t.Run("known character", func(t *testing.T) {
		out, err := repo.Get(ctx, GetInput{ID: "brannoc"})
		require.NoError(t, err)
		assert.Equal(t, "Brannoc Stonehelm", out.Character.Name)
	})

	t.Run("unknown character", func(t *testing.T) {
		_, err := repo.Get(ctx, GetInput{ID: "nobody"})
		require.Error(t, err)
		assert.True(t, errors.IsNotFound(err))
		assert.Equal(t, "nobody", errors.GetMeta(err)["character_id"])
	})

	t.Run("missing ID", func(t *testing.T) {
		_, err := repo.Get(ctx, GetInput{})
		assert.True(t, errors.IsInvalidArgument(err))
	})
}

func TestInMemoryRepository_List(t *testing.T) {
	repo := NewInMemory(
		&dnd5e.Character{ID: "b", Name: "first b"},
		&dnd5e.Character{ID: "a", Name: "a"},
		&dnd5e.Character{ID: "b", Name: "second b"},
	)

	out, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, out.Characters, 2)
	assert.Equal(t, "second b", out.Characters[0].Name)
	assert.Equal(t, "a", out.Characters[1].ID)
}

func TestCharacters_DerivedStats(t *testing.T) {
	tests := []struct {
		id        string
		maxHP     int
		hitDice   string
		slots     []int
		resources []string
	}{
		// 10 + 26 rolled + (2 + 1) * 5
		{id: "brannoc", maxHP: 51, hitDice: "5d10", slots: []int{4, 2},
			resources: []string{dnd5e.ResourceChannelDivinity, dnd5e.ResourceLayOnHands}},
		// 8 + 22 rolled + (2 + 2) * 5
		{id: "ilsa", maxHP: 50, hitDice: "5d8", slots: []int{4, 3, 2},
			resources: []string{dnd5e.ResourceLuckPoints, dnd5e.ResourceHeroicInspiration, dnd5e.ResourceChannelDivinity}},
		// 8 + 29 rolled + 2 * 6
		{id: "tamsin", maxHP: 49, hitDice: "3d10+3d8"},
	}

	repo := NewDefault()
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			out, err := repo.Get(context.Background(), GetInput{ID: tt.id})
			require.NoError(t, err)

			s := out.Character.Stats()
			assert.Equal(t, tt.maxHP, s.MaxHitPoints)
			assert.Equal(t, tt.hitDice, s.HitDice.String())
			assert.Equal(t, tt.slots, s.SpellSlots)

			var ids []string
			for _, r := range s.Resources {
				ids = append(ids, r.ID)
			}
			assert.Equal(t, tt.resources, ids)
		})
	}
}
