package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoalesce(t *testing.T) {
	assert.Equal(t, "b", Coalesce("", "b", "c"))
	assert.Equal(t, 0, Coalesce(0, 0))
}

func TestNextPowerOfTwo(t *testing.T) {
	cases := map[uint]uint{0: 1, 1: 1, 2: 2, 3: 4, 5: 8, 16: 16, 17: 32, 1000: 1024}
	for in, want := range cases {
		assert.Equal(t, want, NextPowerOfTwo(in), "NextPowerOfTwo(%d)", in)
	}
}

func TestRoundUp(t *testing.T) {
	assert.Equal(t, uint64(16), RoundUp(16, 1))
	assert.Equal(t, uint64(32), RoundUp(16, 32))
	assert.Equal(t, uint64(7), RoundUp(0, 7))
}

func TestStringHash(t *testing.T) {
	assert.Equal(t, uint32(0), StringHash(""))
	assert.NotEqual(t, uint32(0), StringHash("SHADOW"))
	assert.Equal(t, StringHash("SHADOW"), StringHash("SHADOW"))
	assert.NotEqual(t, StringHash("SHADOW"), StringHash("INSTANCED"))
}

func TestParseBool(t *testing.T) {
	for _, s := range []string{"true", "True", "1", "yes", " t"} {
		assert.True(t, ParseBool(s), s)
	}
	for _, s := range []string{"", "false", "0", "no", "off"} {
		assert.False(t, ParseBool(s), s)
	}
}

func TestAttributes(t *testing.T) {
	var a Attributes
	assert.False(t, a.Has("vs"))
	a.Set("vs", "LitSolid")
	a.Set("depthwrite", "False")
	a.Set("vs", "Unlit")

	assert.True(t, a.Has("vs"))
	assert.Equal(t, "Unlit", a.String("vs"))
	assert.Equal(t, "false", a.Lower("depthwrite"))
	assert.False(t, a.Bool("depthwrite"))
	assert.Len(t, a, 2)
	assert.Equal(t, "", a.String("ps"))
}
