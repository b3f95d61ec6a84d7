package dice

import (
	"slices"
	"strconv"
	"strings"
)

// Flat is the face count of a term that contributes a fixed number instead
// of a die. New folds flat terms into the modifier.
const Flat = 0

// Term is Count dice with Faces sides each.
type Term struct {
	Count int
	Faces int
}

// Value is a normalized dice expression. The zero Value renders as "0".
type Value struct {
	terms    []Term
	modifier int
}

// New builds a Value from raw terms. Terms may repeat faces and may be in any
// order. A negative count or negative faces is an InvalidDiceError.
func New(terms []Term, modifier int) (Value, error) {
	for _, t := range terms {
		if t.Count < 0 || t.Faces < 0 {
			return Value{}, &InvalidDiceError{Term: t}
		}
	}
	return normalize(terms, modifier), nil
}

// Must is New that panics. Character definitions are static, so a bad term
// there is a programming error.
func Must(terms []Term, modifier int) Value {
	v, err := New(terms, modifier)
	if err != nil {
		panic(err)
	}
	return v
}

// Die returns count dice with the given faces.
func Die(count, faces int) Value {
	return Must([]Term{{Count: count, Faces: faces}}, 0)
}

// Fixed returns a Value with no dice.
func Fixed(modifier int) Value {
	return Value{modifier: modifier}
}

func normalize(terms []Term, modifier int) Value {
	counts := make(map[int]int, len(terms))
	for _, t := range terms {
		if t.Faces == Flat {
			modifier += t.Count
			continue
		}
		counts[t.Faces] += t.Count
	}

	merged := make([]Term, 0, len(counts))
	for faces, count := range counts {
		if count == 0 {
			continue
		}
		merged = append(merged, Term{Count: count, Faces: faces})
	}
	slices.SortFunc(merged, func(a, b Term) int {
		return b.Faces - a.Faces
	})

	if len(merged) == 0 {
		merged = nil
	}
	return Value{terms: merged, modifier: modifier}
}

// Terms returns a copy of the dice terms, largest faces first.
func (v Value) Terms() []Term {
	return slices.Clone(v.terms)
}

// Modifier returns the flat component only.
func (v Value) Modifier() int {
	return v.modifier
}

// Count returns how many dice with the given faces the expression holds.
func (v Value) Count(faces int) int {
	for _, t := range v.terms {
		if t.Faces == faces {
			return t.Count
		}
	}
	return 0
}

// DiceCount returns the total number of dice.
func (v Value) DiceCount() int {
	n := 0
	for _, t := range v.terms {
		n += t.Count
	}
	return n
}

// IsZero reports whether the expression is "0".
func (v Value) IsZero() bool {
	return len(v.terms) == 0 && v.modifier == 0
}

// Normalize returns the canonical form. Values are normalized on
// construction, so this only matters for callers comparing Terms directly.
func (v Value) Normalize() Value {
	return normalize(v.terms, v.modifier)
}

// Equal reports whether both expressions are the same after normalization.
func (v Value) Equal(other Value) bool {
	return v.modifier == other.modifier && slices.Equal(v.terms, other.terms)
}

// Add combines like-faced terms and adds modifiers.
func (v Value) Add(other Value) Value {
	return Sum(v, other)
}

// Sub removes other's dice from v, never going below zero of any die, and
// subtracts its modifier. Used to compute what is left of a dice pool.
func (v Value) Sub(other Value) Value {
	terms := make([]Term, 0, len(v.terms))
	for _, t := range v.terms {
		terms = append(terms, Term{Count: max(t.Count-other.Count(t.Faces), 0), Faces: t.Faces})
	}
	return normalize(terms, v.modifier-other.modifier)
}

// Multiply scales every dice count by n. The modifier is not scaled. n must
// not be negative.
func (v Value) Multiply(n int) Value {
	if n < 0 {
		panic("dice: negative Multiply count")
	}
	terms := make([]Term, len(v.terms))
	for i, t := range v.terms {
		terms[i] = Term{Count: t.Count * n, Faces: t.Faces}
	}
	return normalize(terms, v.modifier)
}

// Crit doubles the dice and leaves the modifier alone.
func (v Value) Crit() Value {
	return v.Multiply(2)
}

// Min is the lowest possible total.
func (v Value) Min() int {
	return v.DiceCount() + v.modifier
}

// Max is the highest possible total.
func (v Value) Max() int {
	total := v.modifier
	for _, t := range v.terms {
		total += t.Count * t.Faces
	}
	return total
}

// Average is the fixed damage value, rounded down.
func (v Value) Average() int {
	doubled := 0
	for _, t := range v.terms {
		doubled += t.Count * (t.Faces + 1)
	}
	return doubled/2 + v.modifier
}

// String renders canonical notation: "2d6+3", "d8-1", "5", "0".
func (v Value) String() string {
	if len(v.terms) == 0 {
		return strconv.Itoa(v.modifier)
	}

	var b strings.Builder
	for i, t := range v.terms {
		if i > 0 {
			b.WriteByte('+')
		}
		if t.Count != 1 {
			b.WriteString(strconv.Itoa(t.Count))
		}
		b.WriteByte('d')
		b.WriteString(strconv.Itoa(t.Faces))
	}

	switch {
	case v.modifier > 0:
		b.WriteByte('+')
		b.WriteString(strconv.Itoa(v.modifier))
	case v.modifier < 0:
		b.WriteString(strconv.Itoa(v.modifier))
	}
	return b.String()
}

// Sum adds any number of expressions. Order does not matter.
func Sum(values ...Value) Value {
	var terms []Term
	modifier := 0
	for _, v := range values {
		terms = append(terms, v.terms...)
		modifier += v.modifier
	}
	return normalize(terms, modifier)
}
