package asio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sbooth/asioengine/format"
)

func TestDriverNegotiatedSummary(t *testing.T) {
	n := DriverNegotiated{SampleRate: 48000, PreferredBufferSize: 512, MinBufferSize: 64, MaxBufferSize: 4096, BufferSizeGranularity: 1}
	assert.Contains(t, n.Summary(), "rate=48000")
	assert.Contains(t, n.Summary(), "buffer=512")
}

func TestDriverNegotiatedStringListsChannels(t *testing.T) {
	n := DriverNegotiated{
		ChannelInfo: []format.DriverFormatDescriptor{
			{ChannelIndex: 0, SampleType: format.Int32LSB},
			{ChannelIndex: 1, SampleType: format.Int32LSB},
		},
	}
	s := n.String()
	assert.Contains(t, s, "ch0")
	assert.Contains(t, s, "ch1")
}

func TestDriverRegistryByIndex(t *testing.T) {
	d1, d2 := newMockDriver(), newMockDriver()
	reg := NewDriverRegistry(d1, d2)
	assert.Equal(t, []string{"mock", "mock"}, reg.Names())

	got, err := reg.ByIndex(1)
	require.NoError(t, err)
	assert.Same(t, Driver(d2), got)

	_, err = reg.ByIndex(5)
	assert.ErrorIs(t, err, ErrDriverUnavailable)
}
