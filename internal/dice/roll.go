package dice

import (
	"fmt"
	"strings"

	toolkitdice "github.com/KirkDiggler/rpg-toolkit/dice"

	"github.com/KirkDiggler/rpg-sheets/internal/errors"
)

// TermRoll holds the individual results for one term.
type TermRoll struct {
	Faces   int
	Results []int
}

// RollResult is the audit trail for one evaluation of a Value.
type RollResult struct {
	Notation string
	Rolls    []TermRoll
	Modifier int
	Total    int
}

// DiceTotal is the sum of the dice before the modifier.
func (r RollResult) DiceTotal() int {
	return r.Total - r.Modifier
}

// String renders "2d6+3: [4 5] +3 = 12".
func (r RollResult) String() string {
	parts := make([]string, 0, len(r.Rolls))
	for _, roll := range r.Rolls {
		parts = append(parts, fmt.Sprint(roll.Results))
	}
	return fmt.Sprintf("%s: %s %+d = %d", r.Notation, strings.Join(parts, " "), r.Modifier, r.Total)
}

// MaxRolledDice is the most dice Roll will throw at once: a critical hit on
// the largest expression Parse accepts.
const MaxRolledDice = 2 * MaxDice

// Roll evaluates the expression with the given roller. A nil roller uses the
// toolkit's default random roller. Expressions above MaxRolledDice are
// OutOfRange and roll nothing.
func (v Value) Roll(roller toolkitdice.Roller) (RollResult, error) {
	remaining := MaxRolledDice
	for _, t := range v.terms {
		if t.Count > remaining {
			return RollResult{}, errors.OutOfRangef("cannot roll %s, the limit is %d dice", v, MaxRolledDice)
		}
		remaining -= t.Count
	}
	if roller == nil {
		roller = toolkitdice.DefaultRoller
	}

	result := RollResult{
		Notation: v.String(),
		Rolls:    make([]TermRoll, 0, len(v.terms)),
		Modifier: v.modifier,
		Total:    v.modifier,
	}

	for _, t := range v.terms {
		results, err := roller.RollN(t.Count, t.Faces)
		if err != nil {
			return RollResult{}, errors.Wrapf(err, "failed to roll %dd%d", t.Count, t.Faces)
		}
		for _, r := range results {
			result.Total += r
		}
		result.Rolls = append(result.Rolls, TermRoll{Faces: t.Faces, Results: results})
	}

	return result, nil
}
