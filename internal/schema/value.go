package schema

import "fmt"

// Kind identifies which variant of Value is populated.
type Kind int

const (
	KindU8 Kind = iota
	KindU16
	KindU32
	KindI8
	KindI16
	KindI32
	KindBool
	KindString
	KindBytes
	KindEnum
	KindBitField
)

func (k Kind) String() string {
	switch k {
	case KindU8:
		return "u8"
	case KindU16:
		return "u16"
	case KindU32:
		return "u32"
	case KindI8:
		return "i8"
	case KindI16:
		return "i16"
	case KindI32:
		return "i32"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	case KindEnum:
		return "enum"
	case KindBitField:
		return "bitfield"
	default:
		return "unknown"
	}
}

// Value is a tagged variant carrying exactly one field's worth of decoded
// data. Unsigned integer kinds (including Enum and BitField, which are raw
// numeric tags) are stored in Num; signed integer kinds are stored in Num
// as their own-width bit pattern (not sign-extended) and recovered,
// sign-extended, via AsInt().
type Value struct {
	Kind  Kind
	Num   uint32
	Flag  bool
	Str   string
	Bytes []byte
}

// U8 constructs an unsigned 8-bit value.
func U8(v uint8) Value { return Value{Kind: KindU8, Num: uint32(v)} }

// U16 constructs an unsigned 16-bit value.
func U16(v uint16) Value { return Value{Kind: KindU16, Num: uint32(v)} }

// U32 constructs an unsigned 32-bit value.
func U32(v uint32) Value { return Value{Kind: KindU32, Num: v} }

// I8 constructs a signed 8-bit value.
func I8(v int8) Value { return Value{Kind: KindI8, Num: uint32(uint8(v))} }

// I16 constructs a signed 16-bit value.
func I16(v int16) Value { return Value{Kind: KindI16, Num: uint32(uint16(v))} }

// I32 constructs a signed 32-bit value.
func I32(v int32) Value { return Value{Kind: KindI32, Num: uint32(v)} }

// Bool constructs a boolean value.
func Bool(v bool) Value { return Value{Kind: KindBool, Flag: v} }

// String constructs a fixed-string value.
func String(v string) Value { return Value{Kind: KindString, Str: v} }

// BytesValue constructs an opaque byte-block value.
func BytesValue(v []byte) Value { return Value{Kind: KindBytes, Bytes: v} }

// Enum constructs an enumeration value carrying its raw numeric tag.
func Enum(v uint32) Value { return Value{Kind: KindEnum, Num: v} }

// BitField constructs an opaque N-bit value carrying its raw numeric tag.
func BitField(v uint32) Value { return Value{Kind: KindBitField, Num: v} }

// AsUint returns the numeric value for any unsigned-family kind (u8/u16/u32/enum/bitfield).
func (v Value) AsUint() uint32 { return v.Num }

// AsInt returns the sign-extended numeric value for a signed-family kind.
func (v Value) AsInt() int32 {
	switch v.Kind {
	case KindI8:
		return int32(int8(v.Num))
	case KindI16:
		return int32(int16(v.Num))
	default:
		return int32(v.Num)
	}
}

// AsBool returns the boolean value.
func (v Value) AsBool() bool { return v.Flag }

// AsString returns the string value.
func (v Value) AsString() string { return v.Str }

// AsBytes returns the byte-block value.
func (v Value) AsBytes() []byte { return v.Bytes }

// Equal reports whether two values carry the same kind and data, used by the
// round-trip property tests (get(set(v)) == v).
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindBool:
		return v.Flag == o.Flag
	case KindString:
		return v.Str == o.Str
	case KindBytes:
		if len(v.Bytes) != len(o.Bytes) {
			return false
		}
		for i := range v.Bytes {
			if v.Bytes[i] != o.Bytes[i] {
				return false
			}
		}
		return true
	default:
		return v.Num == o.Num
	}
}

func (v Value) String() string {
	switch v.Kind {
	case KindBool:
		return fmt.Sprintf("%v", v.Flag)
	case KindString:
		return v.Str
	case KindBytes:
		return fmt.Sprintf("% x", v.Bytes)
	case KindI8, KindI16, KindI32:
		return fmt.Sprintf("%d", v.AsInt())
	default:
		return fmt.Sprintf("%d", v.Num)
	}
}
