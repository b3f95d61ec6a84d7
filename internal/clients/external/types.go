package external

// ClassSummary is a class as it appears in the class list
type ClassSummary struct {
	Key  string
	Name string
}

// ClassData represents class information from external source
type ClassData struct {
	Key                 string
	Name                string
	HitDie              int
	SavingThrows        []string
	ArmorProficiencies  []string
	WeaponProficiencies []string
	ToolProficiencies   []string
	SpellsKnown         int
	SpellSlotsLevel1    int
	// Features gained at level 1
	Features []*FeatureData
}

// FeatureData represents a class feature from external source
type FeatureData struct {
	Key        string
	Name       string
	Level      int
	ClassKey   string
	ClassName  string
	HasChoices bool
}
