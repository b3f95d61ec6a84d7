package dnd5e

// fullCasterSlots is the multiclass spellcaster table, indexed by caster
// level. Each row lists slots for spell levels 1 up.
var fullCasterSlots = [...][]int{
	1:  {2},
	2:  {3},
	3:  {4, 2},
	4:  {4, 3},
	5:  {4, 3, 2},
	6:  {4, 3, 3},
	7:  {4, 3, 3, 1},
	8:  {4, 3, 3, 2},
	9:  {4, 3, 3, 3, 1},
	10: {4, 3, 3, 3, 2},
	11: {4, 3, 3, 3, 2, 1},
	12: {4, 3, 3, 3, 2, 1},
	13: {4, 3, 3, 3, 2, 1, 1},
	14: {4, 3, 3, 3, 2, 1, 1},
	15: {4, 3, 3, 3, 2, 1, 1, 1},
	16: {4, 3, 3, 3, 2, 1, 1, 1},
	17: {4, 3, 3, 3, 2, 1, 1, 1, 1},
	18: {4, 3, 3, 3, 3, 1, 1, 1, 1},
	19: {4, 3, 3, 3, 3, 2, 1, 1, 1},
	20: {4, 3, 3, 3, 3, 2, 2, 1, 1},
}

// CasterLevel combines class levels into a spellcaster level. Full casters
// count every level and half casters count half, rounded down. A character
// whose only spellcasting class is a half caster uses that class's own table,
// which rounds up from 2nd level.
func CasterLevel(classes []ClassLevel) int {
	full, half, casters := 0, 0, 0
	for _, cl := range classes {
		switch casterByClass[cl.Class] {
		case CasterFull:
			full += cl.Level
			casters++
		case CasterHalf:
			half += cl.Level
			casters++
		}
	}

	if casters == 1 && full == 0 {
		if half < 2 {
			return 0
		}
		return (half + 1) / 2
	}
	return full + half/2
}

func spellSlots(classes []ClassLevel) []int {
	level := min(CasterLevel(classes), len(fullCasterSlots)-1)
	if level <= 0 {
		return nil
	}
	return append([]int(nil), fullCasterSlots[level]...)
}
