package sheet

import (
	"github.com/KirkDiggler/rpg-sheets/internal/dice"
	"github.com/KirkDiggler/rpg-sheets/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-sheets/internal/store"
)

// Action names a sheet mutation
type Action string

const (
	ActionDamage      Action = "damage"
	ActionHeal        Action = "heal"
	ActionSetMaxHP    Action = "set-max-hp"
	ActionClearMaxHP  Action = "clear-max-hp"
	ActionToggle      Action = "toggle"
	ActionIncrement   Action = "increment"
	ActionDecrement   Action = "decrement"
	ActionSpendSlot   Action = "spend-slot"
	ActionRestoreSlot Action = "restore-slot"
	ActionSpendHitDie Action = "spend-hit-die"
	ActionShortRest   Action = "short-rest"
	ActionLongRest    Action = "long-rest"
	ActionSetRollMode Action = "set-roll-mode"
)

// Sheet is a character's stats joined with its current play state
type Sheet struct {
	Character *dnd5e.Character
	Stats     *dnd5e.Stats

	MaxHitPoints int
	// MaxHitPointsOverridden is set when the query replaces the computed max
	MaxHitPointsOverridden bool
	HitPoints              int
	HitPointsSpent         int

	HitDiceSpent     dice.Value
	HitDiceRemaining dice.Value

	SpellSlots []SlotState
	Resources  []ResourceState
	RollMode   RollMode
}

// SlotState is the slots of one spell level
type SlotState struct {
	Level int
	Max   int
	Spent int
}

// Remaining slots of this level
func (s SlotState) Remaining() int {
	return max(s.Max-s.Spent, 0)
}

// ResourceState is a limited use feature and how much of it is spent
type ResourceState struct {
	dnd5e.Resource
	Used int
}

// Remaining uses or points
func (r ResourceState) Remaining() int {
	return max(r.Max-r.Used, 0)
}

// GetSheetInput defines the request for reading a sheet
type GetSheetInput struct {
	CharacterID string
	Store       *store.Store
}

// GetSheetOutput defines the response for reading a sheet
type GetSheetOutput struct {
	Sheet *Sheet
}

// ApplyActionInput defines the request for changing a sheet. Which of the
// optional fields are read depends on Action.
type ApplyActionInput struct {
	CharacterID string
	Store       *store.Store
	Action      Action

	// Amount of damage, healing or new max hit points. For increment and
	// decrement it defaults to 1.
	Amount int
	// Resource is the resource ID for toggle, increment and decrement
	Resource string
	// Index is the zero based checkbox clicked for toggle
	Index int
	// Level is the spell level for spend-slot and restore-slot
	Level int
	// Faces picks the hit die for spend-hit-die
	Faces int
	// RollMode for set-roll-mode
	RollMode RollMode
}

// ApplyActionOutput defines the response for changing a sheet
type ApplyActionOutput struct {
	Sheet *Sheet
	// Roll is set when the action rolled dice
	Roll *dice.RollResult
	// Healed is the hit points regained by spend-hit-die
	Healed int
}

// RollDamageInput defines the request for a damage roll
type RollDamageInput struct {
	CharacterID string
	Store       *store.Store
	AttackIndex int
	Crit        bool
}

// RollDamageOutput defines the response for a damage roll
type RollDamageOutput struct {
	Attack dnd5e.Attack
	Damage dice.Value
	Mode   RollMode
	// Roll is nil in average mode
	Roll  *dice.RollResult
	Total int
}
