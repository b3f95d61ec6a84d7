package dnd5e

import (
	"github.com/KirkDiggler/rpg-sheets/internal/dice"
)

// Character is the static definition of a sheet. Nothing on it changes
// during play; play state lives in the sheet's query.
type Character struct {
	ID       string
	Name     string
	Ancestry string

	Scores  AbilityScores
	Classes []ClassLevel

	SaveProficiencies  []Ability
	SkillProficiencies []Skill
	Expertise          []Skill

	ArmorClass int
	Speed      int
	Weapons    []Weapon

	// HitPointRolls are the hit die results for every level after the first,
	// in level order. Levels without a roll take the fixed average.
	HitPointRolls []int

	Traits []Trait
}

// AbilityScores maps an ability to its score
type AbilityScores map[Ability]int

// ClassLevel is the levels taken in one class. The first entry of
// Character.Classes is the starting class.
type ClassLevel struct {
	Class    string
	Subclass string
	Level    int
	HitDie   int
}

// Weapon is an attack the character can make
type Weapon struct {
	Name       string
	Damage     dice.Value
	DamageType string
	Finesse    bool
	Ranged     bool
	Proficient bool
}

// Level is the total character level
func (c *Character) Level() int {
	total := 0
	for _, cl := range c.Classes {
		total += cl.Level
	}
	return total
}

// ClassLevel returns the levels taken in class
func (c *Character) ClassLevel(class string) int {
	for _, cl := range c.Classes {
		if cl.Class == class {
			return cl.Level
		}
	}
	return 0
}

// HasTrait reports whether the character carries the named trait
func (c *Character) HasTrait(name string) bool {
	for _, t := range c.Traits {
		if t.Name == name {
			return true
		}
	}
	return false
}

// AbilityModifier is floor((score-10)/2)
func AbilityModifier(score int) int {
	d := score - 10
	if d < 0 {
		return (d - 1) / 2
	}
	return d / 2
}

// ProficiencyBonus for a total character level
func ProficiencyBonus(level int) int {
	if level < 1 {
		level = 1
	}
	return 2 + (level-1)/4
}
