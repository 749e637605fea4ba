package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrequencyRoundTrip(t *testing.T) {
	cases := []struct {
		raw     uint32
		display string
	}{
		{4_625_625, "462.5625"},
		{4_000_000, "400.0000"},
		{0, "0.0000"},
	}
	for _, c := range cases {
		assert.Equal(t, c.display, Frequency{}.ToDisplay(c.raw))
		got, err := Frequency{}.ToRaw(c.display)
		require.NoError(t, err)
		assert.Equal(t, c.raw, got)
	}
}

func TestFrequencyToRawRejectsGarbage(t *testing.T) {
	_, err := Frequency{}.ToRaw("not a number")
	assert.Error(t, err)
}

func TestCTCSSRoundTrip(t *testing.T) {
	cases := []struct {
		index   uint8
		display string
	}{
		{0, "None"},
		{1, "67.0 Hz"},
		{50, "254.1 Hz"},
	}
	for _, c := range cases {
		assert.Equal(t, c.display, CTCSS{}.ToDisplay(c.index))
		got, err := CTCSS{}.ToRaw(c.display)
		require.NoError(t, err)
		assert.Equal(t, c.index, got)
	}
}

func TestCTCSSToDisplayOutOfRangeIsNone(t *testing.T) {
	assert.Equal(t, "None", CTCSS{}.ToDisplay(255))
}

func TestCTCSSToRawEmptyAndNoneAreZero(t *testing.T) {
	for _, s := range []string{"", "None"} {
		got, err := CTCSS{}.ToRaw(s)
		require.NoError(t, err)
		assert.Equal(t, uint8(0), got)
	}
}

func TestCTCSSToRawRejectsUnlistedTone(t *testing.T) {
	_, err := CTCSS{}.ToRaw("999.9 Hz")
	assert.Error(t, err)
}

func TestInvertedBoolRoundTrip(t *testing.T) {
	assert.Equal(t, false, InvertedBool{}.ToDisplay(true))
	assert.Equal(t, true, InvertedBool{}.ToDisplay(false))
	assert.Equal(t, true, InvertedBool{}.ToRaw(false))
	assert.Equal(t, false, InvertedBool{}.ToRaw(true))
}

func TestVersionTripletRoundTrip(t *testing.T) {
	raw := [3]byte{'A', 1, 5}
	display := "A01.05"
	assert.Equal(t, display, VersionTriplet{}.ToDisplay(raw))
	got, err := VersionTriplet{}.ToRaw(display)
	require.NoError(t, err)
	assert.Equal(t, raw, got)
}

func TestVersionTripletToRawRejectsMalformed(t *testing.T) {
	cases := []string{"", "A", "A0105", "A01.0x"}
	for _, s := range cases {
		_, err := VersionTriplet{}.ToRaw(s)
		assert.Errorf(t, err, "expected error for %q", s)
	}
}

func TestLinearScaleRoundTrip(t *testing.T) {
	s := LinearScale{A: 0, B: 9, X: 0, Y: 100, Suffix: "%"}
	assert.Equal(t, "0.0%", s.ToDisplay(0))
	assert.Equal(t, "100.0%", s.ToDisplay(9))
	got, err := s.ToRaw("100.0%")
	require.NoError(t, err)
	assert.Equal(t, int64(9), got)
}

func TestLinearScaleDegenerateRangeIsConstant(t *testing.T) {
	s := LinearScale{A: 3, B: 3, X: 50, Y: 50, Suffix: "%"}
	assert.Equal(t, "50.0%", s.ToDisplay(3))
	got, err := s.ToRaw("50.0%")
	require.NoError(t, err)
	assert.Equal(t, int64(3), got)
}

func TestLinearScaleToRawRejectsGarbage(t *testing.T) {
	s := LinearScale{A: 0, B: 9, X: 0, Y: 100, Suffix: "%"}
	_, err := s.ToRaw("not a number%")
	assert.Error(t, err)
}
