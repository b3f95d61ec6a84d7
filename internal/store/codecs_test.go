package store

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/KirkDiggler/rpg-sheets/internal/dice"
)

func TestSlotsCodec(t *testing.T) {
	codec := SlotsCodec()

	tests := []struct {
		name    string
		value   []int
		raw     string
		present bool
	}{
		{name: "mixed", value: []int{2, 0, 1}, raw: "2.0.1", present: true},
		{name: "trailing zeros dropped", value: []int{1, 0, 0}, raw: "1", present: true},
		{name: "all zero", value: []int{0, 0}, present: false},
		{name: "empty", value: nil, present: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, ok := codec.Encode(tt.value)
			assert.Equal(t, tt.present, ok)
			assert.Equal(t, tt.raw, raw)
		})
	}

	assert.Equal(t, []int{2, 0, 1}, codec.Decode("2.0.1", true))
	assert.Nil(t, codec.Decode("2.-1", true))
	assert.Nil(t, codec.Decode("", false))
}

func TestDiceCodec(t *testing.T) {
	codec := DiceCodec()

	raw, ok := codec.Encode(dice.Sum(dice.Die(2, 10), dice.Die(1, 8)))
	assert.True(t, ok)
	assert.Equal(t, "2d10+d8", raw)

	_, ok = codec.Encode(dice.Value{})
	assert.False(t, ok)

	assert.Equal(t, "2d10+d8", codec.Decode("2d10+1d8", true).String())
	assert.Equal(t, "2d10+d8", codec.Decode("2d10 1d8", true).String())
	assert.True(t, codec.Decode("banana", true).IsZero())
}

func TestEnumCodec(t *testing.T) {
	type mode string
	codec := EnumCodec[mode]("dice", "dice", "average")

	raw, ok := codec.Encode("average")
	assert.True(t, ok)
	assert.Equal(t, "average", raw)

	_, ok = codec.Encode("dice")
	assert.False(t, ok, "default is not written")

	_, ok = codec.Encode("loaded")
	assert.False(t, ok)

	assert.Equal(t, mode("average"), codec.Decode("average", true))
	assert.Equal(t, mode("dice"), codec.Decode("", false))
}

func TestIntCodecs(t *testing.T) {
	assert.Equal(t, 4, IntCodec(0).Decode("4", true))
	assert.Equal(t, 3, IntCodec(3).Decode("x", true))

	raw, ok := IntCodec(0).Encode(-2)
	assert.True(t, ok)
	assert.Equal(t, "-2", raw)

	zero := 0
	raw, ok = OptionalIntCodec().Encode(&zero)
	assert.True(t, ok, "an explicit zero is a value")
	assert.Equal(t, "0", raw)
	assert.Equal(t, 0, *OptionalIntCodec().Decode("0", true))
}
