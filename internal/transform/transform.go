// Package transform implements pure, total, two-way mappings between raw
// numeric codeplug fields and the human-domain values a UI presents.
package transform

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Frequency converts a raw u32 count of 100 Hz units to and from a decimal
// MHz string with four fractional digits, e.g. 4_625_625 <-> "462.5625".
type Frequency struct{}

func (Frequency) ToDisplay(raw uint32) string {
	mhz := float64(raw) / 10000.0
	return fmt.Sprintf("%.4f", mhz)
}

func (Frequency) ToRaw(display string) (uint32, error) {
	f, err := strconv.ParseFloat(display, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid frequency %q: %w", display, err)
	}
	return uint32(math.Round(f * 10000.0)), nil
}

// ctcssTonesTenthHz is the standard 50-tone CTCSS table, index 1..50; index 0 means
// "None". Values are in tenths of a Hz to keep comparisons exact.
var ctcssTonesTenthHz = []int{
	0, // index 0: None
	670, 693, 719, 744, 770, 797, 825, 854, 885, 915,
	948, 974, 1000, 1035, 1072, 1109, 1148, 1188, 1230, 1273,
	1318, 1365, 1413, 1462, 1514, 1567, 1598, 1622, 1655, 1679,
	1713, 1738, 1773, 1799, 1835, 1862, 1899, 1928, 1966, 1995,
	2035, 2065, 2107, 2181, 2257, 2291, 2336, 2418, 2503, 2541,
}

// CTCSS converts between a u8 table index and its "NN.N Hz" (or "None")
// display string. Reverse lookup matches the nearest tone within 0.05 Hz.
type CTCSS struct{}

func (CTCSS) ToDisplay(index uint8) string {
	if int(index) == 0 || int(index) >= len(ctcssTonesTenthHz) {
		return "None"
	}
	tenths := ctcssTonesTenthHz[index]
	return fmt.Sprintf("%d.%d Hz", tenths/10, tenths%10)
}

func (CTCSS) ToRaw(display string) (uint8, error) {
	display = strings.TrimSpace(display)
	if display == "None" || display == "" {
		return 0, nil
	}
	display = strings.TrimSuffix(display, " Hz")
	display = strings.TrimSuffix(display, "Hz")
	f, err := strconv.ParseFloat(strings.TrimSpace(display), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid CTCSS tone %q: %w", display, err)
	}
	target := int(math.Round(f * 100)) // hundredths of a Hz
	best := -1
	bestDelta := math.MaxInt32
	for i, tenths := range ctcssTonesTenthHz {
		if i == 0 {
			continue
		}
		delta := tenths*10 - target
		if delta < 0 {
			delta = -delta
		}
		if delta <= 5 && delta < bestDelta { // 5 hundredths == 0.05 Hz
			best = i
			bestDelta = delta
		}
	}
	if best == -1 {
		return 0, fmt.Errorf("no CTCSS tone within 0.05 Hz of %q", display)
	}
	return uint8(best), nil
}

// InvertedBool flips storage sense against display sense, used for
// "Disable*" UI fields that store the enabled sense.
type InvertedBool struct{}

func (InvertedBool) ToDisplay(storageBit bool) bool { return !storageBit }
func (InvertedBool) ToRaw(displayBit bool) bool     { return !displayBit }

// VersionTriplet converts three raw bytes [letter, major, minor] to and
// from "<letter><major:02d>.<minor:02d>", e.g. [A,1,5] <-> "A01.05".
type VersionTriplet struct{}

func (VersionTriplet) ToDisplay(raw [3]byte) string {
	return fmt.Sprintf("%c%02d.%02d", raw[0], raw[1], raw[2])
}

func (VersionTriplet) ToRaw(display string) ([3]byte, error) {
	var out [3]byte
	if len(display) < 1 {
		return out, fmt.Errorf("invalid version string %q", display)
	}
	letter := display[0]
	rest := display[1:]
	parts := strings.SplitN(rest, ".", 2)
	if len(parts) != 2 {
		return out, fmt.Errorf("invalid version string %q", display)
	}
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return out, fmt.Errorf("invalid major version in %q: %w", display, err)
	}
	minor, err := strconv.Atoi(parts[1])
	if err != nil {
		return out, fmt.Errorf("invalid minor version in %q: %w", display, err)
	}
	out[0] = letter
	out[1] = byte(major)
	out[2] = byte(minor)
	return out, nil
}

// LinearScale maps an integer range [A,B] linearly onto a decimal range
// [X,Y], appending Suffix ("%", "dB", ...) on display.
type LinearScale struct {
	A, B   int64
	X, Y   float64
	Suffix string
}

func (s LinearScale) ToDisplay(raw int64) string {
	if s.B == s.A {
		return fmt.Sprintf("%.1f%s", s.X, s.Suffix)
	}
	frac := float64(raw-s.A) / float64(s.B-s.A)
	v := s.X + frac*(s.Y-s.X)
	return fmt.Sprintf("%.1f%s", v, s.Suffix)
}

func (s LinearScale) ToRaw(display string) (int64, error) {
	display = strings.TrimSuffix(strings.TrimSpace(display), s.Suffix)
	v, err := strconv.ParseFloat(strings.TrimSpace(display), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid scaled value %q: %w", display, err)
	}
	if s.Y == s.X {
		return s.A, nil
	}
	frac := (v - s.X) / (s.Y - s.X)
	raw := float64(s.A) + frac*float64(s.B-s.A)
	return int64(math.Round(raw)), nil
}
