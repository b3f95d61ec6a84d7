package dnd5e

import (
	"slices"

	"github.com/KirkDiggler/rpg-sheets/internal/dice"
)

// Stats are the numbers derived from a Character. Traits adjust them
// between the base derivation and the final hit point and crit totals.
type Stats struct {
	Level            int
	Classes          []ClassLevel
	ProficiencyBonus int
	Modifiers        map[Ability]int
	Saves            map[Ability]int
	Skills           map[Skill]int

	ArmorClass        int
	Speed             int
	Initiative        int
	PassivePerception int

	MaxHitPoints int
	// HitPointsPerLevel is added once per character level to max hit points
	HitPointsPerLevel int
	// HitDice is the full pool, one die per level of each class
	HitDice dice.Value

	// CritRange is the lowest d20 roll that crits
	CritRange int
	Attacks   []Attack

	// SpellSlots holds slots per spell level, index 0 being 1st level
	SpellSlots []int
	Resources  []Resource

	hitPointRolls []int
}

// Attack is one line of the attacks table
type Attack struct {
	Name       string
	ToHit      int
	Damage     dice.Value
	CritDamage dice.Value
	DamageType string
	// Melee is false for ranged weapon attacks
	Melee bool
	// Finesse or ranged attacks qualify for sneak attack
	Finesse bool
	Notes   string
}

// ResourceKind says how a resource is tracked on the sheet
type ResourceKind int

const (
	// ResourceCounter is a row of checkboxes, one per use
	ResourceCounter ResourceKind = iota
	// ResourcePool is a number of points spent in any amount
	ResourcePool
)

// Resource is a limited use feature
type Resource struct {
	ID    string
	Name  string
	Kind  ResourceKind
	Max   int
	Reset Rest
}

// ClassLevel returns the levels taken in class
func (s *Stats) ClassLevel(class string) int {
	for _, cl := range s.Classes {
		if cl.Class == class {
			return cl.Level
		}
	}
	return 0
}

// Resource returns the resource with id
func (s *Stats) Resource(id string) (Resource, bool) {
	for _, r := range s.Resources {
		if r.ID == id {
			return r, true
		}
	}
	return Resource{}, false
}

// AddResource adds r, or raises the max of an existing resource with the same
// id
func (s *Stats) AddResource(r Resource) {
	for i, existing := range s.Resources {
		if existing.ID == r.ID {
			s.Resources[i].Max = max(existing.Max, r.Max)
			return
		}
	}
	s.Resources = append(s.Resources, r)
}

// Stats derives the sheet numbers for c
func (c *Character) Stats() *Stats {
	level := c.Level()
	prof := ProficiencyBonus(level)

	s := &Stats{
		Level:            level,
		Classes:          slices.Clone(c.Classes),
		ProficiencyBonus: prof,
		Modifiers:        make(map[Ability]int, len(Abilities)),
		Saves:            make(map[Ability]int, len(Abilities)),
		Skills:           make(map[Skill]int, len(Skills)),
		ArmorClass:       c.ArmorClass,
		Speed:            c.Speed,
		CritRange:        20,
		hitPointRolls:    c.HitPointRolls,
	}

	for _, a := range Abilities {
		mod := AbilityModifier(c.Scores[a])
		s.Modifiers[a] = mod
		s.Saves[a] = mod
		if slices.Contains(c.SaveProficiencies, a) {
			s.Saves[a] += prof
		}
	}

	for _, skill := range Skills {
		bonus := s.Modifiers[SkillAbility[skill]]
		if slices.Contains(c.SkillProficiencies, skill) {
			bonus += prof
		}
		if slices.Contains(c.Expertise, skill) {
			bonus += prof
		}
		s.Skills[skill] = bonus
	}

	s.Initiative = s.Modifiers[Dexterity]
	s.PassivePerception = 10 + s.Skills[SkillPerception]

	pool := make([]dice.Value, 0, len(c.Classes))
	for _, cl := range c.Classes {
		pool = append(pool, dice.Die(cl.Level, cl.HitDie))
	}
	s.HitDice = dice.Sum(pool...)

	for _, w := range c.Weapons {
		s.Attacks = append(s.Attacks, s.weaponAttack(w))
	}

	s.SpellSlots = spellSlots(c.Classes)

	for _, t := range orderedTraits(c.Traits) {
		t.Apply(s)
	}

	s.MaxHitPoints = s.maxHitPoints()
	for i := range s.Attacks {
		s.Attacks[i].CritDamage = s.Attacks[i].Damage.Crit()
	}

	return s
}

func (s *Stats) weaponAttack(w Weapon) Attack {
	ability := Strength
	switch {
	case w.Ranged:
		ability = Dexterity
	case w.Finesse && s.Modifiers[Dexterity] > s.Modifiers[Strength]:
		ability = Dexterity
	}

	mod := s.Modifiers[ability]
	toHit := mod
	if w.Proficient {
		toHit += s.ProficiencyBonus
	}

	return Attack{
		Name:       w.Name,
		ToHit:      toHit,
		Damage:     w.Damage.Add(dice.Fixed(mod)),
		DamageType: w.DamageType,
		Melee:      !w.Ranged,
		Finesse:    w.Finesse || w.Ranged,
	}
}

// maxHitPoints takes the first hit die at max, the recorded rolls after that
// and the fixed average for any level without a roll.
func (s *Stats) maxHitPoints() int {
	total := 0
	n := 0
	for _, cl := range s.Classes {
		for range cl.Level {
			switch {
			case n == 0:
				total += cl.HitDie
			case n-1 < len(s.hitPointRolls):
				total += s.hitPointRolls[n-1]
			default:
				total += cl.HitDie/2 + 1
			}
			n++
		}
	}

	total += (s.Modifiers[Constitution] + s.HitPointsPerLevel) * s.Level
	return max(total, s.Level)
}
