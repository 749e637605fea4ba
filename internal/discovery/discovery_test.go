package discovery_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencps/mocodeplug/internal/discovery"
)

func TestSerialBackendFiltersKnownPrefixes(t *testing.T) {
	b := &discovery.SerialBackend{
		ListDevices: func() ([]string, error) {
			return []string{"cu.usbserial-A1B2", "random-thing", "ttyACM0", "null"}, nil
		},
	}
	results, err := b.Poll(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 2)

	var endpoints []string
	for _, r := range results {
		endpoints = append(endpoints, r.Endpoint)
		assert.NotEmpty(t, r.ID)
	}
	assert.Contains(t, endpoints, "/dev/cu.usbserial-A1B2")
	assert.Contains(t, endpoints, "/dev/ttyACM0")
}

func TestSerialBackendIdempotentIDsAreFreshPerPoll(t *testing.T) {
	b := &discovery.SerialBackend{
		ListDevices: func() ([]string, error) { return []string{"ttyUSB0"}, nil },
	}
	first, err := b.Poll(context.Background())
	require.NoError(t, err)
	second, err := b.Poll(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].Endpoint, second[0].Endpoint)
	assert.NotEqual(t, first[0].ID, second[0].ID)
}

func TestPollerMergesBackendsAndSortsResults(t *testing.T) {
	b1 := &discovery.SerialBackend{ListDevices: func() ([]string, error) { return []string{"ttyUSB1"}, nil }}
	b2 := &discovery.SerialBackend{ListDevices: func() ([]string, error) { return []string{"ttyUSB0"}, nil }}

	p := &discovery.Poller{Backends: []discovery.DiscoveryBackend{b1, b2}}
	p.Start(context.Background())
	defer p.Stop()

	// the first poll runs immediately on Start's background goroutine, so
	// wait briefly for its results to land
	deadline := time.Now().Add(time.Second)
	var results []discovery.Result
	for time.Now().Before(deadline) {
		if results = p.Results(); len(results) > 0 {
			break
		}
		time.Sleep(time.Millisecond)
	}
	require.Len(t, results, 2)
	assert.Equal(t, "/dev/ttyUSB0", results[0].Endpoint)
	assert.Equal(t, "/dev/ttyUSB1", results[1].Endpoint)
}
