package models

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencps/mocodeplug/internal/radio"
	"github.com/opencps/mocodeplug/internal/schema"
)

func TestRDU2020RegisteredAndDefaultIsValid(t *testing.T) {
	m, ok := radio.Lookup("RDU2020")
	require.True(t, ok)

	cp, err := m.CreateDefault()
	require.NoError(t, err)
	assert.Empty(t, m.Validate(cp))
	assert.False(t, cp.HasUnsavedChanges())
}

func TestRDU2020FieldRoundTrip(t *testing.T) {
	m, ok := radio.Lookup("RDU2020")
	require.True(t, ok)
	cp, err := m.CreateDefault()
	require.NoError(t, err)

	f, ok := cp.FieldByID("channel.name#0")
	require.True(t, ok)
	require.NoError(t, cp.Set(schema.String("Repeater 1"), f))

	got, err := cp.Get(f)
	require.NoError(t, err)
	assert.Equal(t, "Repeater 1", got.AsString())
	assert.True(t, cp.IsModified("channel.name#0"))
}

func TestRDU2020ReadOnlyFieldRejectsSet(t *testing.T) {
	m, ok := radio.Lookup("RDU2020")
	require.True(t, ok)
	cp, err := m.CreateDefault()
	require.NoError(t, err)

	f, ok := cp.FieldByID("general.modelName")
	require.True(t, ok)
	err = cp.Set(schema.String("FAKE"), f)
	assert.Error(t, err)
}

func TestRDU2020RejectedOutOfBandSetLeavesValidationClean(t *testing.T) {
	m, ok := radio.Lookup("RDU2020")
	require.True(t, ok)
	cp, err := m.CreateDefault()
	require.NoError(t, err)

	f, ok := cp.FieldByID("channel.rxFreq#0")
	require.True(t, ok)
	err = cp.Set(schema.U32(9_000_000), f)
	require.Error(t, err, "constraint should reject an out-of-band frequency at Set time")

	issues := m.Validate(cp)
	assert.Empty(t, issues, "a rejected Set must leave the buffer, and therefore validation, untouched")
}

func TestRDU2020ScrambleDisableZerosAllChannelCodes(t *testing.T) {
	m, ok := radio.Lookup("RDU2020")
	require.True(t, ok)
	cp, err := m.CreateDefault()
	require.NoError(t, err)

	scrambleOn, ok := cp.FieldByID("general.scrambleEnable")
	require.True(t, ok)
	require.NoError(t, cp.Set(schema.Bool(true), scrambleOn))

	codeField, ok := cp.FieldByID("channel.scrambleCode#0")
	require.True(t, ok)
	require.NoError(t, cp.Set(schema.U8(42), codeField))

	require.NoError(t, cp.Set(schema.Bool(false), scrambleOn))

	for i := 0; i < rdu2020MaxChannels; i++ {
		f, ok := cp.FieldByID("channel.scrambleCode#" + strconv.Itoa(i))
		require.True(t, ok)
		v, err := cp.Get(f)
		require.NoError(t, err)
		assert.Equal(t, uint32(0), v.AsUint(), "channel %d scramble code must be cleared when scramble is disabled", i)
	}
}
