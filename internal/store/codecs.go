package store

import (
	"slices"
	"strconv"
	"strings"

	"github.com/KirkDiggler/rpg-sheets/internal/dice"
)

type intCodec struct {
	def int
}

// IntCodec stores an integer, omitting it when it equals def.
func IntCodec(def int) Codec[int] {
	return intCodec{def: def}
}

func (c intCodec) Encode(value int) (string, bool) {
	if value == c.def {
		return "", false
	}
	return strconv.Itoa(value), true
}

func (c intCodec) Decode(raw string, present bool) int {
	if !present {
		return c.def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return c.def
	}
	return n
}

type optionalIntCodec struct{}

// OptionalIntCodec stores an integer that may be unset. nil means absent.
func OptionalIntCodec() Codec[*int] {
	return optionalIntCodec{}
}

func (optionalIntCodec) Encode(value *int) (string, bool) {
	if value == nil {
		return "", false
	}
	return strconv.Itoa(*value), true
}

func (optionalIntCodec) Decode(raw string, present bool) *int {
	if !present {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &n
}

type enumCodec[T ~string] struct {
	def     T
	allowed []T
}

// EnumCodec stores one of a closed set of strings. Unknown input decodes to
// def and def itself is never written.
func EnumCodec[T ~string](def T, allowed ...T) Codec[T] {
	return enumCodec[T]{def: def, allowed: allowed}
}

func (c enumCodec[T]) Encode(value T) (string, bool) {
	if value == c.def || !slices.Contains(c.allowed, value) {
		return "", false
	}
	return string(value), true
}

func (c enumCodec[T]) Decode(raw string, present bool) T {
	value := T(raw)
	if !present || !slices.Contains(c.allowed, value) {
		return c.def
	}
	return value
}

type slotsCodec struct{}

// SlotsCodec stores per-level counters as dot separated integers, index 0
// being level 1: []int{2, 0, 1} is "2.0.1". Trailing zeros are dropped and an
// all-zero slice is absent.
func SlotsCodec() Codec[[]int] {
	return slotsCodec{}
}

func (slotsCodec) Encode(value []int) (string, bool) {
	end := len(value)
	for end > 0 && value[end-1] == 0 {
		end--
	}
	if end == 0 {
		return "", false
	}

	parts := make([]string, end)
	for i, n := range value[:end] {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, "."), true
}

func (slotsCodec) Decode(raw string, present bool) []int {
	if !present || raw == "" {
		return nil
	}

	parts := strings.Split(raw, ".")
	out := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return nil
		}
		out[i] = n
	}
	return out
}

type diceCodec struct{}

// DiceCodec stores a dice pool such as spent hit dice as notation,
// e.g. "2d10+1d8". An empty pool is absent.
func DiceCodec() Codec[dice.Value] {
	return diceCodec{}
}

func (diceCodec) Encode(value dice.Value) (string, bool) {
	if value.IsZero() {
		return "", false
	}
	return value.String(), true
}

func (diceCodec) Decode(raw string, present bool) dice.Value {
	if !present {
		return dice.Value{}
	}
	// an unescaped "+" in a hand edited URL arrives as a space
	v, err := dice.Parse(strings.Join(strings.Fields(raw), "+"))
	if err != nil {
		return dice.Value{}
	}
	return v
}
