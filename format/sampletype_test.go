package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribeSampleTypePacked(t *testing.T) {
	f := DescribeSampleType(Int16LSB)
	require.True(t, f.IsPCM())
	assert.True(t, f.Flags.Has(SignedInteger))
	assert.True(t, f.Flags.Has(Packed))
	assert.True(t, f.Flags.Has(NonInterleaved))
	assert.False(t, f.Flags.Has(BigEndian))
	assert.EqualValues(t, 16, f.BitsPerChannel)
	assert.EqualValues(t, 2, f.BytesPerPacket)
}

func TestDescribeSampleTypeBigEndianFlag(t *testing.T) {
	f := DescribeSampleType(Int32MSB)
	assert.True(t, f.Flags.Has(BigEndian))
	f2 := DescribeSampleType(Int32LSB)
	assert.False(t, f2.Flags.Has(BigEndian))
}

// Scenario: a driver channel reports Int32LSB16 — a 32-bit container
// carrying 16 significant bits, not packed.
func TestDescribeSampleTypeContainerWithSignificantBits(t *testing.T) {
	f := DescribeSampleType(Int32LSB16)
	assert.True(t, f.Flags.Has(SignedInteger))
	assert.True(t, f.Flags.Has(NonInterleaved))
	assert.False(t, f.Flags.Has(Packed))
	assert.EqualValues(t, 16, f.BitsPerChannel)
	assert.EqualValues(t, 4, f.BytesPerPacket)
	assert.EqualValues(t, 4, f.BytesPerFrame)
}

func TestDescribeSampleTypeFloat(t *testing.T) {
	f := DescribeSampleType(Float64LSB)
	assert.True(t, f.Flags.Has(Float))
	assert.False(t, f.Flags.Has(SignedInteger))
	assert.EqualValues(t, 64, f.BitsPerChannel)
	assert.EqualValues(t, 8, f.BytesPerPacket)
}

func TestDescribeSampleTypeDSD(t *testing.T) {
	f := DescribeSampleType(DSDInt8LSB1)
	require.True(t, f.IsDSD())
	assert.EqualValues(t, 0, f.BytesPerFrame)
	assert.EqualValues(t, 8, f.FramesPerPacket)

	f2 := DescribeSampleType(DSDInt8NER8)
	require.True(t, f2.IsDSD())
	assert.EqualValues(t, 1, f2.BytesPerFrame)
}

func TestDescribeSampleTypeUnrecognized(t *testing.T) {
	f := DescribeSampleType(SampleType(9999))
	assert.Equal(t, AudioFormat{}, f)
}

// Invariant: for every recognized PCM sample type, bytesPerFrame equals
// bytesPerPacket times framesPerPacket.
func TestDescribeSampleTypeFrameByteInvariant(t *testing.T) {
	types := []SampleType{
		Int16LSB, Int16MSB, Int24LSB, Int24MSB, Int32LSB, Int32MSB,
		Float32LSB, Float32MSB, Float64LSB, Float64MSB,
		Int32LSB16, Int32MSB16, Int32LSB18, Int32MSB18,
		Int32LSB20, Int32MSB20, Int32LSB24, Int32MSB24,
	}
	for _, st := range types {
		f := DescribeSampleType(st)
		require.NotZero(t, f.BytesPerPacket, "sample type %s", st)
		assert.EqualValues(t, f.BytesPerPacket*f.FramesPerPacket, f.BytesPerFrame, "sample type %s", st)
	}
}
