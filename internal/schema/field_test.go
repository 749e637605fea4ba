package schema

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstraintValidate_Range(t *testing.T) {
	min, max := int64(1), int64(100)
	c := &Constraint{Min: &min, Max: &max}

	assert.NoError(t, c.Validate(U8(50)))
	assert.Error(t, c.Validate(U8(0)))

	big := int64(200)
	c2 := &Constraint{Max: &big}
	assert.Error(t, c2.Validate(U32(300)))
}

func TestConstraintValidate_SignedRangeUsesAsInt(t *testing.T) {
	min, max := int64(-10), int64(10)
	c := &Constraint{Min: &min, Max: &max}

	assert.NoError(t, c.Validate(I8(-5)))
	assert.Error(t, c.Validate(I8(-20)))
}

func TestConstraintValidate_Enum(t *testing.T) {
	c := &Constraint{EnumValues: map[uint32]string{0: "off", 1: "on"}}
	assert.NoError(t, c.Validate(Enum(1)))
	assert.Error(t, c.Validate(Enum(2)))
}

func TestConstraintValidate_MaxLenAndRegex(t *testing.T) {
	maxLen := 5
	c := &Constraint{MaxLen: &maxLen}
	assert.NoError(t, c.Validate(String("abc")))
	assert.Error(t, c.Validate(String("abcdef")))

	re := regexp.MustCompile(`^[A-Z0-9]+$`)
	c2 := &Constraint{Regex: re}
	assert.NoError(t, c2.Validate(String("ZONE1")))
	assert.Error(t, c2.Validate(String("zone one")))
}

func TestConstraintValidate_Custom(t *testing.T) {
	called := false
	c := &Constraint{Custom: func(v Value) error {
		called = true
		return nil
	}}
	assert.NoError(t, c.Validate(U8(1)))
	assert.True(t, called)
}

func TestConstraintValidate_NilConstraintAlwaysPasses(t *testing.T) {
	var c *Constraint
	assert.NoError(t, c.Validate(U32(12345)))
}

func TestFieldValidate_OffsetOutOfBounds(t *testing.T) {
	f := &Field{ID: "f", Kind: KindU8, BitOffset: 0, BitLength: 8}
	assert.NoError(t, f.Validate(1))
	assert.Error(t, f.Validate(0))
}

func TestFieldValidate_FixedWidthMismatch(t *testing.T) {
	f := &Field{ID: "f", Kind: KindU16, BitOffset: 0, BitLength: 8}
	err := f.Validate(4)
	assert.ErrorContains(t, err, "requires bit_length 16")
}

func TestFieldValidate_EnumValueTooWide(t *testing.T) {
	f := &Field{
		ID: "f", Kind: KindEnum, BitOffset: 0, BitLength: 2,
		EnumLabels: map[uint32]string{0: "a", 7: "b"},
	}
	err := f.Validate(4)
	assert.ErrorContains(t, err, "does not fit in 2 bits")
}

func TestFieldValidate_ZeroBitLengthRejected(t *testing.T) {
	f := &Field{ID: "f", Kind: KindU8, BitOffset: 0, BitLength: 0}
	assert.Error(t, f.Validate(8))
}
