package bitio

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackUnpackRoundTrip_ByteAligned(t *testing.T) {
	buf := make([]byte, 16)
	p := NewPacker(buf)
	p.WriteU8(0xAB)
	p.WriteU16(0x1234, binary.BigEndian)
	p.WriteU32(0xDEADBEEF, binary.LittleEndian)
	p.WriteBytes([]byte{1, 2, 3, 4})

	u := NewUnpacker(buf)
	assert.Equal(t, uint8(0xAB), u.ReadU8())
	assert.Equal(t, uint16(0x1234), u.ReadU16(binary.BigEndian))
	assert.Equal(t, uint32(0xDEADBEEF), u.ReadU32(binary.LittleEndian))
	assert.Equal(t, []byte{1, 2, 3, 4}, u.ReadBytes(4))
}

func TestWriteUint_BitAlignedMatchesByteAlignedPath(t *testing.T) {
	// A 16-bit field written bit-by-bit (not through the fast path) must
	// produce the identical bytes as the byte-aligned fast path.
	bufFast := make([]byte, 4)
	pf := NewPacker(bufFast)
	pf.WriteU16(0xCAFE, binary.BigEndian)

	bufSlow := make([]byte, 4)
	ps := NewPacker(bufSlow)
	ps.WriteUint(0xCAFE, 16)

	assert.Equal(t, bufFast, bufSlow)
}

func TestSingleBitMSBAndLSBOfByte(t *testing.T) {
	buf := make([]byte, 1)
	p := NewPacker(buf)
	p.SeekBit(0)
	p.WriteBit(1)
	assert.Equal(t, byte(0x80), buf[0])

	buf2 := make([]byte, 1)
	p2 := NewPacker(buf2)
	p2.SeekBit(7)
	p2.WriteBit(1)
	assert.Equal(t, byte(0x01), buf2[0])
}

func TestNonByteAlignedUint(t *testing.T) {
	buf := make([]byte, 2)
	p := NewPacker(buf)
	p.SeekBit(3)
	p.WriteUint(0b10110, 5)

	u := NewUnpacker(buf)
	u.SeekBit(3)
	assert.Equal(t, uint32(0b10110), u.ReadUint(5))
}

func TestStringRoundTrip_ShorterEqualLongerThanSlot(t *testing.T) {
	cases := []struct {
		name string
		s    string
		slot int
	}{
		{"shorter", "hi", 8},
		{"equal", "12345678", 8},
		{"longer_truncated", "this is way too long", 8},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			buf := make([]byte, c.slot)
			p := NewPacker(buf)
			p.WriteString(c.s, c.slot, ASCII)

			u := NewUnpacker(buf)
			got := u.ReadString(c.slot, ASCII)
			want := c.s
			if len(want) > c.slot {
				want = want[:c.slot]
			}
			assert.Equal(t, want, got)
		})
	}
}

func TestReadPastEndOfBufferReturnsZero(t *testing.T) {
	buf := make([]byte, 1)
	u := NewUnpacker(buf)
	u.SeekBit(8)
	assert.Equal(t, uint32(0), u.ReadUint(16))
}

func TestWritePastEndOfBufferIsNoop(t *testing.T) {
	buf := make([]byte, 1)
	p := NewPacker(buf)
	p.SeekBit(8)
	require.NotPanics(t, func() {
		p.WriteUint(0xFF, 8)
	})
	assert.Equal(t, []byte{0x00}, buf)
}

func TestUTF16LERoundTrip(t *testing.T) {
	buf := make([]byte, 16)
	p := NewPacker(buf)
	p.WriteString("Zone1", 16, UTF16LE)

	u := NewUnpacker(buf)
	assert.Equal(t, "Zone1", u.ReadString(16, UTF16LE))
}
