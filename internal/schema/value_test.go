package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValueEqual_AcrossAllKinds(t *testing.T) {
	cases := []Value{
		U8(7), U16(7), U32(7),
		I8(-7), I16(-7), I32(-7),
		Bool(true), String("abc"),
		BytesValue([]byte{1, 2, 3}),
		Enum(3), BitField(5),
	}
	for _, v := range cases {
		assert.True(t, v.Equal(v))
	}
}

func TestValueEqual_DifferentKindNeverEqual(t *testing.T) {
	assert.False(t, U8(1).Equal(U16(1)))
}

func TestValueEqual_BytesComparesContent(t *testing.T) {
	a := BytesValue([]byte{1, 2, 3})
	b := BytesValue([]byte{1, 2, 3})
	c := BytesValue([]byte{1, 2, 4})
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestSignedRoundTrip_AsIntSignExtends(t *testing.T) {
	assert.Equal(t, int32(-1), I8(-1).AsInt())
	assert.Equal(t, int32(-1), I16(-1).AsInt())
	assert.Equal(t, int32(-1), I32(-1).AsInt())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "u8", KindU8.String())
	assert.Equal(t, "bitfield", KindBitField.String())
	assert.Equal(t, "unknown", Kind(999).String())
}

func TestValueString_FormatsByKind(t *testing.T) {
	assert.Equal(t, "true", Bool(true).String())
	assert.Equal(t, "abc", String("abc").String())
	assert.Equal(t, "-5", I8(-5).String())
	assert.Equal(t, "5", U8(5).String())
}
