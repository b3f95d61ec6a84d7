package dnd5e

import (
	"slices"

	"github.com/KirkDiggler/rpg-sheets/internal/dice"
)

// Trait is a named adjustment to derived stats. Traits always apply in the
// order they are declared below, whatever order a character lists them in.
type Trait struct {
	Name  string
	order int
	apply func(*Stats)
}

// Apply runs the trait against s
func (t Trait) Apply(s *Stats) {
	if t.apply != nil {
		t.apply(s)
	}
}

// Trait names
const (
	TraitTough             = "Tough"
	TraitDwarvenToughness  = "Dwarven Toughness"
	TraitLucky             = "Lucky"
	TraitHeroicInspiration = "Heroic Inspiration"
	TraitChannelDivinity   = "Channel Divinity"
	TraitLayOnHands        = "Lay on Hands"
	TraitDivineSmite       = "Divine Smite"
	TraitSneakAttack       = "Sneak Attack"
	TraitImprovedCritical  = "Improved Critical"
)

var (
	// Tough adds 2 hit points per level
	Tough = Trait{Name: TraitTough, order: 1, apply: func(s *Stats) {
		s.HitPointsPerLevel += 2
	}}

	// DwarvenToughness adds 1 hit point per level
	DwarvenToughness = Trait{Name: TraitDwarvenToughness, order: 2, apply: func(s *Stats) {
		s.HitPointsPerLevel++
	}}

	// Lucky grants 3 luck points per long rest
	Lucky = Trait{Name: TraitLucky, order: 3, apply: func(s *Stats) {
		s.AddResource(Resource{
			ID:    ResourceLuckPoints,
			Name:  "Luck Points",
			Max:   3,
			Reset: LongRest,
		})
	}}

	// HeroicInspiration is regained on every long rest
	HeroicInspiration = Trait{Name: TraitHeroicInspiration, order: 4, apply: func(s *Stats) {
		s.AddResource(Resource{
			ID:    ResourceHeroicInspiration,
			Name:  "Heroic Inspiration",
			Max:   1,
			Reset: LongRest,
		})
	}}

	// ChannelDivinity uses scale with cleric level, paladins get one from 3rd
	ChannelDivinity = Trait{Name: TraitChannelDivinity, order: 5, apply: func(s *Stats) {
		uses := 0
		switch cleric := s.ClassLevel(ClassCleric); {
		case cleric >= 18:
			uses = 3
		case cleric >= 6:
			uses = 2
		case cleric >= 2:
			uses = 1
		}
		if s.ClassLevel(ClassPaladin) >= 3 {
			uses = max(uses, 1)
		}
		if uses == 0 {
			return
		}
		s.AddResource(Resource{
			ID:    ResourceChannelDivinity,
			Name:  "Channel Divinity",
			Max:   uses,
			Reset: ShortRest,
		})
	}}

	// LayOnHands is a pool of 5 hit points per paladin level
	LayOnHands = Trait{Name: TraitLayOnHands, order: 6, apply: func(s *Stats) {
		paladin := s.ClassLevel(ClassPaladin)
		if paladin == 0 {
			return
		}
		s.AddResource(Resource{
			ID:    ResourceLayOnHands,
			Name:  "Lay on Hands",
			Kind:  ResourcePool,
			Max:   5 * paladin,
			Reset: LongRest,
		})
	}}

	// DivineSmite adds a smite line under every melee attack, using a 1st
	// level slot
	DivineSmite = Trait{Name: TraitDivineSmite, order: 7, apply: func(s *Stats) {
		s.Attacks = withVariants(s.Attacks, func(a Attack) (Attack, bool) {
			if !a.Melee {
				return a, false
			}
			a.Name += " + Divine Smite"
			a.Damage = a.Damage.Add(dice.Die(2, 8))
			a.Notes = "2d8 radiant, spends a spell slot"
			return a, true
		})
	}}

	// SneakAttack adds ceil(rogue level/2) d6 to finesse and ranged attacks
	SneakAttack = Trait{Name: TraitSneakAttack, order: 8, apply: func(s *Stats) {
		rogue := s.ClassLevel(ClassRogue)
		if rogue == 0 {
			return
		}
		extra := dice.Die((rogue+1)/2, 6)
		s.Attacks = withVariants(s.Attacks, func(a Attack) (Attack, bool) {
			if !a.Finesse {
				return a, false
			}
			a.Name += " + Sneak Attack"
			a.Damage = a.Damage.Add(extra)
			a.Notes = "once per turn"
			return a, true
		})
	}}

	// ImprovedCritical crits on 19 or 20
	ImprovedCritical = Trait{Name: TraitImprovedCritical, order: 9, apply: func(s *Stats) {
		s.CritRange = min(s.CritRange, 19)
	}}
)

// TraitByName looks up a declared trait
func TraitByName(name string) (Trait, bool) {
	for _, t := range []Trait{
		Tough, DwarvenToughness, Lucky, HeroicInspiration, ChannelDivinity,
		LayOnHands, DivineSmite, SneakAttack, ImprovedCritical,
	} {
		if t.Name == name {
			return t, true
		}
	}
	return Trait{}, false
}

func orderedTraits(traits []Trait) []Trait {
	out := slices.Clone(traits)
	slices.SortStableFunc(out, func(a, b Trait) int {
		return a.order - b.order
	})
	return out
}

// withVariants inserts the variant of each attack that fn accepts directly
// after the attack it came from
func withVariants(attacks []Attack, fn func(Attack) (Attack, bool)) []Attack {
	out := make([]Attack, 0, len(attacks)*2)
	for _, a := range attacks {
		out = append(out, a)
		if v, ok := fn(a); ok {
			out = append(out, v)
		}
	}
	return out
}
