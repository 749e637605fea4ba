package container_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencps/mocodeplug/internal/container"
	"github.com/opencps/mocodeplug/internal/radio"
	_ "github.com/opencps/mocodeplug/internal/radio/models"
	"github.com/opencps/mocodeplug/internal/radioerr"
)

func newTestCodeplug(t *testing.T) *radio.Model {
	t.Helper()
	m, ok := radio.Lookup("RDU2020")
	require.True(t, ok)
	return m
}

func TestSerializeDeserializeRoundTripUnencrypted(t *testing.T) {
	m := newTestCodeplug(t)
	cp, err := m.CreateDefault()
	require.NoError(t, err)

	data, err := container.Serialize(cp, "")
	require.NoError(t, err)

	back, err := container.Deserialize(data, "")
	require.NoError(t, err)
	assert.Equal(t, cp.Raw(), back.Raw())
	assert.Equal(t, cp.ModelID(), back.ModelID())
}

func TestSerializeDeserializeRoundTripEncrypted(t *testing.T) {
	m := newTestCodeplug(t)
	cp, err := m.CreateDefault()
	require.NoError(t, err)

	data, err := container.Serialize(cp, "hunter2")
	require.NoError(t, err)

	back, err := container.Deserialize(data, "hunter2")
	require.NoError(t, err)
	assert.Equal(t, cp.Raw(), back.Raw())
}

func TestDeserializeEncryptedWrongPassword(t *testing.T) {
	m := newTestCodeplug(t)
	cp, err := m.CreateDefault()
	require.NoError(t, err)

	data, err := container.Serialize(cp, "hunter2")
	require.NoError(t, err)

	_, err = container.Deserialize(data, "wrong")
	var badPw *radioerr.BadPassword
	require.ErrorAs(t, err, &badPw)
}

func TestDeserializeEncryptedMissingPassword(t *testing.T) {
	m := newTestCodeplug(t)
	cp, err := m.CreateDefault()
	require.NoError(t, err)

	data, err := container.Serialize(cp, "hunter2")
	require.NoError(t, err)

	_, err = container.Deserialize(data, "")
	var missing *radioerr.MissingPassword
	require.ErrorAs(t, err, &missing)
}

func TestDeserializeBadMagic(t *testing.T) {
	_, err := container.Deserialize([]byte("not-a-codeplug-file"), "")
	var invalid *radioerr.InvalidFormat
	require.ErrorAs(t, err, &invalid)
}

func TestDeserializeTruncated(t *testing.T) {
	m := newTestCodeplug(t)
	cp, err := m.CreateDefault()
	require.NoError(t, err)

	data, err := container.Serialize(cp, "")
	require.NoError(t, err)

	_, err = container.Deserialize(data[:len(data)-10], "")
	var corrupted *radioerr.Corrupted
	require.ErrorAs(t, err, &corrupted)
}

func TestEveryEncryptedSaveUsesFreshSaltAndNonce(t *testing.T) {
	m := newTestCodeplug(t)
	cp, err := m.CreateDefault()
	require.NoError(t, err)

	a, err := container.Serialize(cp, "hunter2")
	require.NoError(t, err)
	b, err := container.Serialize(cp, "hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, a, b, "salt/nonce must differ between saves")
}
