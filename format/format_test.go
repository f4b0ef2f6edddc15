package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrameCountToByteCount(t *testing.T) {
	f := AudioFormat{BytesPerFrame: 8}
	assert.EqualValues(t, 800, f.FrameCountToByteCount(100))
}

func TestFrameCountToByteCountSubByteDSD(t *testing.T) {
	f := DescribeSampleType(DSDInt8LSB1)
	assert.EqualValues(t, 0, f.FrameCountToByteCount(1000))
}

func TestBufferListNumberOfChannels(t *testing.T) {
	bl := BufferList{Buffers: []Buffer{{ChannelCount: 1}, {ChannelCount: 1}}}
	assert.Equal(t, 2, bl.NumberOfChannels())
}

func TestDoubleBufferListZeroPreservesCapacity(t *testing.T) {
	dbl := DoubleBufferList{Buffers: []DoubleBuffer{{Data: make([]float64, 256), ByteSize: 2048, ChannelCount: 1}}}
	dbl.Zero()
	assert.Equal(t, 0, dbl.Buffers[0].ByteSize)
	assert.Len(t, dbl.Buffers[0].Data, 256)
}

func TestFlagsHas(t *testing.T) {
	f := SignedInteger | Packed
	assert.True(t, f.Has(SignedInteger))
	assert.False(t, f.Has(Float))
}
