package roster

import (
	"github.com/KirkDiggler/rpg-sheets/internal/dice"
	"github.com/KirkDiggler/rpg-sheets/internal/entities/dnd5e"
)

// Characters returns fresh copies of the built in characters
func Characters() []*dnd5e.Character {
	return []*dnd5e.Character{brannoc(), ilsa(), tamsin()}
}

func brannoc() *dnd5e.Character {
	return &dnd5e.Character{
		ID:       "brannoc",
		Name:     "Brannoc Stonehelm",
		Ancestry: "Hill Dwarf",
		Scores: dnd5e.AbilityScores{
			dnd5e.Strength:     16,
			dnd5e.Dexterity:    10,
			dnd5e.Constitution: 14,
			dnd5e.Intelligence: 8,
			dnd5e.Wisdom:       12,
			dnd5e.Charisma:     16,
		},
		Classes: []dnd5e.ClassLevel{
			{Class: dnd5e.ClassPaladin, Subclass: "vengeance", Level: 5, HitDie: 10},
		},
		SaveProficiencies:  []dnd5e.Ability{dnd5e.Wisdom, dnd5e.Charisma},
		SkillProficiencies: []dnd5e.Skill{dnd5e.SkillAthletics, dnd5e.SkillIntimidation, dnd5e.SkillReligion},
		ArmorClass:         18,
		Speed:              25,
		Weapons: []dnd5e.Weapon{
			{Name: "Warhammer", Damage: dice.MustParse("d8"), DamageType: dnd5e.DamageBludgeoning, Proficient: true},
			{Name: "Handaxe", Damage: dice.MustParse("d6"), DamageType: dnd5e.DamageSlashing, Proficient: true},
		},
		HitPointRolls: []int{7, 4, 9, 6},
		Traits: []dnd5e.Trait{
			dnd5e.DwarvenToughness,
			dnd5e.ChannelDivinity,
			dnd5e.LayOnHands,
			dnd5e.DivineSmite,
		},
	}
}

func ilsa() *dnd5e.Character {
	return &dnd5e.Character{
		ID:       "ilsa",
		Name:     "Ilsa Varn",
		Ancestry: "Human",
		Scores: dnd5e.AbilityScores{
			dnd5e.Strength:     14,
			dnd5e.Dexterity:    10,
			dnd5e.Constitution: 14,
			dnd5e.Intelligence: 10,
			dnd5e.Wisdom:       17,
			dnd5e.Charisma:     12,
		},
		Classes: []dnd5e.ClassLevel{
			{Class: dnd5e.ClassCleric, Subclass: "life", Level: 5, HitDie: 8},
		},
		SaveProficiencies:  []dnd5e.Ability{dnd5e.Wisdom, dnd5e.Charisma},
		SkillProficiencies: []dnd5e.Skill{dnd5e.SkillMedicine, dnd5e.SkillInsight, dnd5e.SkillReligion},
		ArmorClass:         18,
		Speed:              30,
		Weapons: []dnd5e.Weapon{
			{Name: "Mace", Damage: dice.MustParse("d6"), DamageType: dnd5e.DamageBludgeoning, Proficient: true},
			{Name: "Light Crossbow", Damage: dice.MustParse("d8"), DamageType: dnd5e.DamagePiercing, Ranged: true, Proficient: true},
		},
		HitPointRolls: []int{5, 8, 3, 6},
		Traits: []dnd5e.Trait{
			dnd5e.Tough,
			dnd5e.Lucky,
			dnd5e.HeroicInspiration,
			dnd5e.ChannelDivinity,
		},
	}
}

func tamsin() *dnd5e.Character {
	return &dnd5e.Character{
		ID:       "tamsin",
		Name:     "Tamsin Underbough",
		Ancestry: "Lightfoot Halfling",
		Scores: dnd5e.AbilityScores{
			dnd5e.Strength:     10,
			dnd5e.Dexterity:    18,
			dnd5e.Constitution: 14,
			dnd5e.Intelligence: 12,
			dnd5e.Wisdom:       13,
			dnd5e.Charisma:     8,
		},
		Classes: []dnd5e.ClassLevel{
			{Class: dnd5e.ClassRogue, Subclass: "thief", Level: 3, HitDie: 8},
			{Class: dnd5e.ClassFighter, Subclass: "champion", Level: 3, HitDie: 10},
		},
		SaveProficiencies:  []dnd5e.Ability{dnd5e.Dexterity, dnd5e.Intelligence},
		SkillProficiencies: []dnd5e.Skill{dnd5e.SkillStealth, dnd5e.SkillPerception, dnd5e.SkillSleightOfHand, dnd5e.SkillAcrobatics},
		Expertise:          []dnd5e.Skill{dnd5e.SkillStealth, dnd5e.SkillSleightOfHand},
		ArmorClass:         16,
		Speed:              25,
		Weapons: []dnd5e.Weapon{
			{Name: "Rapier", Damage: dice.MustParse("d8"), DamageType: dnd5e.DamagePiercing, Finesse: true, Proficient: true},
			{Name: "Shortbow", Damage: dice.MustParse("d6"), DamageType: dnd5e.DamagePiercing, Ranged: true, Proficient: true},
		},
		HitPointRolls: []int{5, 6, 7, 3, 8},
		Traits: []dnd5e.Trait{
			dnd5e.SneakAttack,
			dnd5e.ImprovedCritical,
		},
	}
}
