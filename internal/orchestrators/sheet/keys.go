package sheet

import (
	"github.com/KirkDiggler/rpg-sheets/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-sheets/internal/store"
)

// RollMode selects whether damage is rolled or taken as the fixed average
type RollMode string

const (
	RollModeDice    RollMode = "dice"
	RollModeAverage RollMode = "average"
)

// Query keys holding a sheet's play state. Every key is absent at its
// default.
var (
	MaxHitPoints          = store.NewValue("hit-points", store.OptionalIntCodec())
	HitPointsSpent        = store.NewValue("hit-points-spent", store.IntCodec(0))
	SpellSlotsSpent       = store.NewValue("spell-slots-spent", store.SlotsCodec())
	HitDiceSpent          = store.NewValue("hit-dice-spent", store.DiceCodec())
	ChannelDivinityUsed   = store.NewValue("channel-divinity-used", store.IntCodec(0))
	LayOnHandsSpent       = store.NewValue("lay-on-hands", store.IntCodec(0))
	HeroicInspirationUsed = store.NewValue("heroic-inspiration-used", store.IntCodec(0))
	LuckPointsUsed        = store.NewValue("luck-points-used", store.IntCodec(0))
	Roll                  = store.NewValue("roll", store.EnumCodec(RollModeDice, RollModeDice, RollModeAverage))
)

// resourceValues maps a resource ID to the counter of uses spent
var resourceValues = map[string]*store.Value[int]{
	dnd5e.ResourceChannelDivinity:   ChannelDivinityUsed,
	dnd5e.ResourceLayOnHands:        LayOnHandsSpent,
	dnd5e.ResourceHeroicInspiration: HeroicInspirationUsed,
	dnd5e.ResourceLuckPoints:        LuckPointsUsed,
}

// LongRestKeys are cleared by a long rest. The max hit point override and
// the roll mode are settings and survive it.
func LongRestKeys() []string {
	keys := []string{HitPointsSpent.Key(), SpellSlotsSpent.Key(), HitDiceSpent.Key()}
	for _, id := range []string{
		dnd5e.ResourceChannelDivinity,
		dnd5e.ResourceLayOnHands,
		dnd5e.ResourceHeroicInspiration,
		dnd5e.ResourceLuckPoints,
	} {
		keys = append(keys, resourceValues[id].Key())
	}
	return keys
}

// shortRestKeys are the counters of resources that recover on a short rest
func shortRestKeys(stats *dnd5e.Stats) []string {
	var keys []string
	for _, r := range stats.Resources {
		if r.Reset != dnd5e.ShortRest {
			continue
		}
		if v, ok := resourceValues[r.ID]; ok {
			keys = append(keys, v.Key())
		}
	}
	return keys
}
