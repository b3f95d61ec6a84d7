// Package sheet joins roster characters with the play state held in a
// store and applies sheet actions to that state.
package sheet

import (
	"context"
	"log/slog"
	"slices"

	toolkitdice "github.com/KirkDiggler/rpg-toolkit/dice"

	"github.com/KirkDiggler/rpg-sheets/internal/dice"
	"github.com/KirkDiggler/rpg-sheets/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-sheets/internal/errors"
	"github.com/KirkDiggler/rpg-sheets/internal/repositories/roster"
	"github.com/KirkDiggler/rpg-sheets/internal/store"
)

// Service defines the sheet operations
type Service interface {
	GetSheet(ctx context.Context, input *GetSheetInput) (*GetSheetOutput, error)
	ApplyAction(ctx context.Context, input *ApplyActionInput) (*ApplyActionOutput, error)
	RollDamage(ctx context.Context, input *RollDamageInput) (*RollDamageOutput, error)
}

// Config holds the dependencies for the sheet orchestrator
type Config struct {
	Roster roster.Repository
	Roller toolkitdice.Roller
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.Roster == nil {
		vb.RequiredField("Roster")
	}
	if c.Roller == nil {
		vb.RequiredField("Roller")
	}

	return vb.Build()
}

type orchestrator struct {
	roster roster.Repository
	roller toolkitdice.Roller
}

// NewOrchestrator creates a new sheet orchestrator with the provided dependencies
func NewOrchestrator(cfg *Config) (Service, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &orchestrator{
		roster: cfg.Roster,
		roller: cfg.Roller,
	}, nil
}

// GetSheet reads the character and its state
func (o *orchestrator) GetSheet(ctx context.Context, input *GetSheetInput) (*GetSheetOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	c, err := o.character(ctx, input.CharacterID, input.Store)
	if err != nil {
		return nil, err
	}

	sheet, err := readSheet(ctx, input.Store, c)
	if err != nil {
		return nil, err
	}

	return &GetSheetOutput{Sheet: sheet}, nil
}

// ApplyAction runs one action as a single store batch
func (o *orchestrator) ApplyAction(ctx context.Context, input *ApplyActionInput) (*ApplyActionOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if err := validateAction(input); err != nil {
		return nil, err
	}

	c, err := o.character(ctx, input.CharacterID, input.Store)
	if err != nil {
		return nil, err
	}

	out := &ApplyActionOutput{}
	err = input.Store.Batch(ctx, func(ctx context.Context) error {
		sheet, err := readSheet(ctx, input.Store, c)
		if err != nil {
			return err
		}
		return o.apply(ctx, input, sheet, out)
	})
	if err != nil {
		return nil, err
	}

	out.Sheet, err = readSheet(ctx, input.Store, c)
	if err != nil {
		return nil, err
	}

	slog.Info("Applied sheet action",
		"character_id", c.ID,
		"action", input.Action,
		"hit_points", out.Sheet.HitPoints)

	return out, nil
}

func (o *orchestrator) apply(ctx context.Context, input *ApplyActionInput, sheet *Sheet, out *ApplyActionOutput) error {
	s := input.Store

	switch input.Action {
	case ActionDamage:
		return HitPointsSpent.Set(ctx, s, min(sheet.HitPointsSpent+input.Amount, sheet.MaxHitPoints))

	case ActionHeal:
		return HitPointsSpent.Set(ctx, s, max(sheet.HitPointsSpent-input.Amount, 0))

	case ActionSetMaxHP:
		amount := input.Amount
		return MaxHitPoints.Set(ctx, s, &amount)

	case ActionClearMaxHP:
		return MaxHitPoints.Clear(ctx, s)

	case ActionToggle, ActionIncrement, ActionDecrement:
		return applyResource(ctx, input, sheet)

	case ActionSpendSlot, ActionRestoreSlot:
		return applySlot(ctx, input, sheet)

	case ActionSpendHitDie:
		return o.spendHitDie(ctx, input, sheet, out)

	case ActionShortRest:
		return s.ResetKeys(ctx, shortRestKeys(sheet.Stats)...)

	case ActionLongRest:
		return s.ResetKeys(ctx, LongRestKeys()...)

	case ActionSetRollMode:
		return Roll.Set(ctx, s, input.RollMode)
	}

	return errors.InvalidArgumentf("unknown action %q", input.Action)
}

func applyResource(ctx context.Context, input *ApplyActionInput, sheet *Sheet) error {
	idx := slices.IndexFunc(sheet.Resources, func(r ResourceState) bool {
		return r.ID == input.Resource
	})
	if idx < 0 {
		return errors.FailedPreconditionf("%s has no %s resource", sheet.Character.Name, input.Resource).
			WithMeta("resource", input.Resource)
	}
	r := sheet.Resources[idx]
	value := resourceValues[r.ID]
	if value == nil {
		return errors.Internal("resource has no state key").WithMeta("resource", r.ID)
	}

	used := r.Used
	switch input.Action {
	case ActionToggle:
		if r.Kind != dnd5e.ResourceCounter {
			return errors.FailedPreconditionf("%s is not a checkbox row", r.Name)
		}
		used = toggle(used, input.Index)
	case ActionIncrement:
		used += amountOrOne(input.Amount)
	case ActionDecrement:
		used -= amountOrOne(input.Amount)
	}

	return value.Set(ctx, input.Store, min(max(used, 0), r.Max))
}

// toggle returns the uses spent after clicking checkbox index in a row with
// used boxes ticked from the left. Clicking a ticked box unticks it and every
// box after it, clicking an empty box ticks it and every box before it.
func toggle(used, index int) int {
	if index < used {
		return index
	}
	return index + 1
}

func amountOrOne(n int) int {
	if n == 0 {
		return 1
	}
	return n
}

func applySlot(ctx context.Context, input *ApplyActionInput, sheet *Sheet) error {
	if input.Level > len(sheet.SpellSlots) {
		return errors.FailedPreconditionf("%s has no level %d spell slots", sheet.Character.Name, input.Level)
	}

	spent := make([]int, len(sheet.SpellSlots))
	for i, slot := range sheet.SpellSlots {
		spent[i] = slot.Spent
	}

	slot := sheet.SpellSlots[input.Level-1]
	switch input.Action {
	case ActionSpendSlot:
		if slot.Remaining() == 0 {
			return errors.FailedPreconditionf("no level %d spell slots remaining", input.Level)
		}
		spent[input.Level-1]++
	case ActionRestoreSlot:
		spent[input.Level-1] = max(slot.Spent-1, 0)
	}

	return SpellSlotsSpent.Set(ctx, input.Store, spent)
}

func (o *orchestrator) spendHitDie(ctx context.Context, input *ApplyActionInput, sheet *Sheet, out *ApplyActionOutput) error {
	if sheet.HitDiceRemaining.Count(input.Faces) == 0 {
		return errors.FailedPreconditionf("no d%d hit dice remaining", input.Faces).
			WithMeta("faces", input.Faces)
	}

	heal := dice.Die(1, input.Faces).Add(dice.Fixed(sheet.Stats.Modifiers[dnd5e.Constitution]))

	total := heal.Average()
	if sheet.RollMode == RollModeDice {
		roll, err := heal.Roll(o.roller)
		if err != nil {
			return errors.Wrap(err, "failed to roll hit die")
		}
		out.Roll = &roll
		total = roll.Total
	}
	out.Healed = max(total, 0)

	if err := HitDiceSpent.Set(ctx, input.Store, sheet.HitDiceSpent.Add(dice.Die(1, input.Faces))); err != nil {
		return err
	}
	return HitPointsSpent.Set(ctx, input.Store, max(sheet.HitPointsSpent-out.Healed, 0))
}

// RollDamage rolls an attack's damage, or takes its average in average mode
func (o *orchestrator) RollDamage(ctx context.Context, input *RollDamageInput) (*RollDamageOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	c, err := o.character(ctx, input.CharacterID, input.Store)
	if err != nil {
		return nil, err
	}

	stats := c.Stats()
	if input.AttackIndex < 0 || input.AttackIndex >= len(stats.Attacks) {
		return nil, errors.OutOfRangef("attack %d out of range", input.AttackIndex).
			WithMeta("attacks", len(stats.Attacks))
	}

	mode, err := Roll.Get(ctx, input.Store)
	if err != nil {
		return nil, err
	}

	attack := stats.Attacks[input.AttackIndex]
	damage := attack.Damage
	if input.Crit {
		damage = attack.CritDamage
	}

	out := &RollDamageOutput{
		Attack: attack,
		Damage: damage,
		Mode:   mode,
		Total:  damage.Average(),
	}

	if mode == RollModeDice {
		roll, err := damage.Roll(o.roller)
		if err != nil {
			return nil, errors.Wrap(err, "failed to roll damage")
		}
		out.Roll = &roll
		out.Total = roll.Total
	}

	slog.Info("Rolled damage",
		"character_id", c.ID,
		"attack", attack.Name,
		"crit", input.Crit,
		"notation", damage.String(),
		"total", out.Total)

	return out, nil
}

func (o *orchestrator) character(ctx context.Context, id string, s *store.Store) (*dnd5e.Character, error) {
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("CharacterID", id, vb)
	if s == nil {
		vb.RequiredField("Store")
	}
	if err := vb.Build(); err != nil {
		return nil, err
	}

	out, err := o.roster.Get(ctx, roster.GetInput{ID: id})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get character %s", id)
	}
	return out.Character, nil
}

func validateAction(input *ApplyActionInput) error {
	vb := errors.NewValidationBuilder()

	switch input.Action {
	case ActionDamage, ActionHeal, ActionSetMaxHP:
		if input.Amount <= 0 {
			vb.Field("Amount", "must be positive")
		}
	case ActionToggle:
		errors.ValidateRequired("Resource", input.Resource, vb)
		if input.Index < 0 {
			vb.Field("Index", "cannot be negative")
		}
	case ActionIncrement, ActionDecrement:
		errors.ValidateRequired("Resource", input.Resource, vb)
		if input.Amount < 0 {
			vb.Field("Amount", "cannot be negative")
		}
	case ActionSpendSlot, ActionRestoreSlot:
		errors.ValidateRange("Level", input.Level, 1, 9, vb)
	case ActionSpendHitDie:
		if input.Faces <= 0 {
			vb.Field("Faces", "must be positive")
		}
	case ActionSetRollMode:
		errors.ValidateEnum("RollMode", string(input.RollMode),
			[]string{string(RollModeDice), string(RollModeAverage)}, vb)
	case ActionClearMaxHP, ActionShortRest, ActionLongRest:
	default:
		vb.Fieldf("Action", "unknown action %q", input.Action)
	}

	return vb.Build()
}

// readSheet joins stats with the state in s
func readSheet(ctx context.Context, s *store.Store, c *dnd5e.Character) (*Sheet, error) {
	stats := c.Stats()
	sheet := &Sheet{
		Character:    c,
		Stats:        stats,
		MaxHitPoints: stats.MaxHitPoints,
	}

	override, err := MaxHitPoints.Get(ctx, s)
	if err != nil {
		return nil, err
	}
	if override != nil && *override > 0 {
		sheet.MaxHitPoints = *override
		sheet.MaxHitPointsOverridden = true
	}

	if sheet.HitPointsSpent, err = HitPointsSpent.Get(ctx, s); err != nil {
		return nil, err
	}
	sheet.HitPointsSpent = min(max(sheet.HitPointsSpent, 0), sheet.MaxHitPoints)
	sheet.HitPoints = sheet.MaxHitPoints - sheet.HitPointsSpent

	spentDice, err := HitDiceSpent.Get(ctx, s)
	if err != nil {
		return nil, err
	}
	sheet.HitDiceSpent = clampPool(stats.HitDice, spentDice)
	sheet.HitDiceRemaining = stats.HitDice.Sub(sheet.HitDiceSpent)

	spentSlots, err := SpellSlotsSpent.Get(ctx, s)
	if err != nil {
		return nil, err
	}
	for i, n := range stats.SpellSlots {
		slot := SlotState{Level: i + 1, Max: n}
		if i < len(spentSlots) {
			slot.Spent = min(spentSlots[i], n)
		}
		sheet.SpellSlots = append(sheet.SpellSlots, slot)
	}

	for _, r := range stats.Resources {
		state := ResourceState{Resource: r}
		if v, ok := resourceValues[r.ID]; ok {
			used, err := v.Get(ctx, s)
			if err != nil {
				return nil, err
			}
			state.Used = min(max(used, 0), r.Max)
		}
		sheet.Resources = append(sheet.Resources, state)
	}

	if sheet.RollMode, err = Roll.Get(ctx, s); err != nil {
		return nil, err
	}

	return sheet, nil
}

// clampPool drops spent dice the pool does not have and any modifier
func clampPool(pool, spent dice.Value) dice.Value {
	terms := make([]dice.Term, 0, len(pool.Terms()))
	for _, t := range pool.Terms() {
		terms = append(terms, dice.Term{Count: min(t.Count, spent.Count(t.Faces)), Faces: t.Faces})
	}
	return dice.Must(terms, 0)
}
