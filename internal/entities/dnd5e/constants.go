// Package dnd5e holds character records and the derived numbers on a 5e
// character sheet.
package dnd5e

// Ability is a three letter ability key
type Ability string

// Ability constants
const (
	Strength     Ability = "str"
	Dexterity    Ability = "dex"
	Constitution Ability = "con"
	Intelligence Ability = "int"
	Wisdom       Ability = "wis"
	Charisma     Ability = "cha"
)

// Abilities in sheet order
var Abilities = []Ability{Strength, Dexterity, Constitution, Intelligence, Wisdom, Charisma}

// Skill is an SRD skill index
type Skill string

// Skill constants
const (
	SkillAcrobatics     Skill = "acrobatics"
	SkillAnimalHandling Skill = "animal-handling"
	SkillArcana         Skill = "arcana"
	SkillAthletics      Skill = "athletics"
	SkillDeception      Skill = "deception"
	SkillHistory        Skill = "history"
	SkillInsight        Skill = "insight"
	SkillIntimidation   Skill = "intimidation"
	SkillInvestigation  Skill = "investigation"
	SkillMedicine       Skill = "medicine"
	SkillNature         Skill = "nature"
	SkillPerception     Skill = "perception"
	SkillPerformance    Skill = "performance"
	SkillPersuasion     Skill = "persuasion"
	SkillReligion       Skill = "religion"
	SkillSleightOfHand  Skill = "sleight-of-hand"
	SkillStealth        Skill = "stealth"
	SkillSurvival       Skill = "survival"
)

// Skills in sheet order
var Skills = []Skill{
	SkillAcrobatics, SkillAnimalHandling, SkillArcana, SkillAthletics,
	SkillDeception, SkillHistory, SkillInsight, SkillIntimidation,
	SkillInvestigation, SkillMedicine, SkillNature, SkillPerception,
	SkillPerformance, SkillPersuasion, SkillReligion, SkillSleightOfHand,
	SkillStealth, SkillSurvival,
}

// SkillAbility maps each skill to the ability it keys off
var SkillAbility = map[Skill]Ability{
	SkillAcrobatics:     Dexterity,
	SkillAnimalHandling: Wisdom,
	SkillArcana:         Intelligence,
	SkillAthletics:      Strength,
	SkillDeception:      Charisma,
	SkillHistory:        Intelligence,
	SkillInsight:        Wisdom,
	SkillIntimidation:   Charisma,
	SkillInvestigation:  Intelligence,
	SkillMedicine:       Wisdom,
	SkillNature:         Intelligence,
	SkillPerception:     Wisdom,
	SkillPerformance:    Charisma,
	SkillPersuasion:     Charisma,
	SkillReligion:       Intelligence,
	SkillSleightOfHand:  Dexterity,
	SkillStealth:        Dexterity,
	SkillSurvival:       Wisdom,
}

// Class constants use SRD API indexes so they double as reference keys
const (
	ClassBarbarian = "barbarian"
	ClassBard      = "bard"
	ClassCleric    = "cleric"
	ClassDruid     = "druid"
	ClassFighter   = "fighter"
	ClassMonk      = "monk"
	ClassPaladin   = "paladin"
	ClassRanger    = "ranger"
	ClassRogue     = "rogue"
	ClassSorcerer  = "sorcerer"
	ClassWarlock   = "warlock"
	ClassWizard    = "wizard"
)

// Caster describes how a class contributes to multiclass spellcaster level
type Caster int

const (
	CasterNone Caster = iota
	CasterFull
	CasterHalf
)

var casterByClass = map[string]Caster{
	ClassBard:     CasterFull,
	ClassCleric:   CasterFull,
	ClassDruid:    CasterFull,
	ClassSorcerer: CasterFull,
	ClassWizard:   CasterFull,
	ClassPaladin:  CasterHalf,
	ClassRanger:   CasterHalf,
}

// Rest is what recovers a resource
type Rest string

const (
	ShortRest Rest = "short"
	LongRest  Rest = "long"
)

// Resource IDs
const (
	ResourceChannelDivinity   = "channel-divinity"
	ResourceLayOnHands        = "lay-on-hands"
	ResourceHeroicInspiration = "heroic-inspiration"
	ResourceLuckPoints        = "luck-points"
)

// Damage types used by the roster's weapons and features
const (
	DamageBludgeoning = "bludgeoning"
	DamagePiercing    = "piercing"
	DamageSlashing    = "slashing"
	DamageRadiant     = "radiant"
)
