package schema

import (
	"fmt"
	"regexp"

	"github.com/opencps/mocodeplug/internal/bitio"
)

// Category groups a field for presentation, matching the categories a UI
// layer enumerates.
type Category int

const (
	CategoryGeneral Category = iota
	CategoryChannel
	CategoryAudio
	CategorySignaling
	CategoryScan
	CategoryContacts
	CategoryBluetooth
	CategoryAdvanced
	CategoryVoicePrompts
)

// Constraint validates a candidate Value before it is written to the buffer.
// Exactly one of the option fields is normally set; zero fields means "no
// constraint".
type Constraint struct {
	Min, Max   *int64         // numeric range, inclusive
	EnumValues map[uint32]string // enum membership -> label
	MaxLen     *int           // string length
	Regex      *regexp.Regexp // string pattern
	Custom     func(Value) error
}

// Validate returns a non-nil error describing why v fails the constraint.
func (c *Constraint) Validate(v Value) error {
	if c == nil {
		return nil
	}
	if c.Min != nil || c.Max != nil {
		n := int64(v.AsUint())
		if v.Kind == KindI8 || v.Kind == KindI16 || v.Kind == KindI32 {
			n = int64(v.AsInt())
		}
		if c.Min != nil && n < *c.Min {
			return fmt.Errorf("value %d below minimum %d", n, *c.Min)
		}
		if c.Max != nil && n > *c.Max {
			return fmt.Errorf("value %d above maximum %d", n, *c.Max)
		}
	}
	if c.EnumValues != nil {
		if _, ok := c.EnumValues[v.AsUint()]; !ok {
			return fmt.Errorf("value %d is not a member of the enumeration", v.AsUint())
		}
	}
	if c.MaxLen != nil {
		if len(v.AsString()) > *c.MaxLen {
			return fmt.Errorf("string length %d exceeds maximum %d", len(v.AsString()), *c.MaxLen)
		}
	}
	if c.Regex != nil {
		if !c.Regex.MatchString(v.AsString()) {
			return fmt.Errorf("value %q does not match required pattern", v.AsString())
		}
	}
	if c.Custom != nil {
		if err := c.Custom(v); err != nil {
			return err
		}
	}
	return nil
}

// Field is an immutable descriptor of one typed, bit-addressed slice of a
// codeplug buffer. Field values are data, not code: no offsets are
// hard-coded outside a Field.
type Field struct {
	ID          string
	Name        string
	Category    Category
	Kind        Kind
	BitOffset   int
	BitLength   int
	Default     Value
	Constraint  *Constraint
	Deps        []string
	ReadOnly    bool
	HelpText    string
	TextEncode  bitio.TextEncoding // only meaningful for KindString
	EnumLabels  map[uint32]string  // only meaningful for KindEnum
	BigEndian   bool               // byte order for byte-aligned u16/u32; default little-endian
}

// Validate enforces the invariants from the field-schema spec: offset/length
// fit the buffer, fixed-primitive width matches bit length, and every
// enumeration value fits in the declared width.
func (f *Field) Validate(bufSizeBytes int) error {
	if f.BitOffset < 0 || f.BitLength <= 0 {
		return fmt.Errorf("field %q: invalid offset/length", f.ID)
	}
	if f.BitOffset+f.BitLength > bufSizeBytes*8 {
		return fmt.Errorf("field %q: bit_offset(%d)+bit_length(%d) exceeds buffer size %d bits",
			f.ID, f.BitOffset, f.BitLength, bufSizeBytes*8)
	}
	if want, ok := fixedWidth(f.Kind); ok && want != f.BitLength {
		return fmt.Errorf("field %q: kind %s requires bit_length %d, got %d", f.ID, f.Kind, want, f.BitLength)
	}
	if f.Kind == KindEnum {
		maxVal := uint64(1)<<uint(f.BitLength) - 1
		for v := range f.EnumLabels {
			if uint64(v) > maxVal {
				return fmt.Errorf("field %q: enum value %d does not fit in %d bits", f.ID, v, f.BitLength)
			}
		}
	}
	return nil
}

func fixedWidth(k Kind) (int, bool) {
	switch k {
	case KindU8, KindI8:
		return 8, true
	case KindU16, KindI16:
		return 16, true
	case KindU32, KindI32:
		return 32, true
	default:
		return 0, false
	}
}
