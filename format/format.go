// Package format describes PCM/DSD sample layouts and the non-owning
// buffer views the converter and output controller pass audio through.
package format

import "fmt"

// Kind identifies the top-level encoding family of an AudioFormat.
type Kind int

const (
	PCM Kind = iota
	DSD
)

func (k Kind) String() string {
	switch k {
	case PCM:
		return "PCM"
	case DSD:
		return "DSD"
	default:
		return "Unknown"
	}
}

// Flags is a bitset describing the layout of one sample within an AudioFormat.
type Flags uint32

const (
	SignedInteger  Flags = 1 << iota // samples are signed integers
	Float                            // samples are IEEE-754 floats
	Packed                           // bitsPerChannel == 8*sampleWidth, no padding
	NonInterleaved                   // one buffer per channel rather than interleaved frames
	BigEndian                        // samples are stored most-significant-byte first
	AlignedHigh                      // a sub-container sample occupies the high bits of its container
)

func (f Flags) Has(bit Flags) bool { return f&bit != 0 }

// AudioFormat is a pure value type describing the encoding of one PCM or DSD
// stream. Construct it with named fields; there is no mutation after
// construction save for wholesale reassignment.
type AudioFormat struct {
	Kind             Kind
	Flags            Flags
	BitsPerChannel   uint32
	BytesPerPacket   uint32
	FramesPerPacket  uint32
	BytesPerFrame    uint32
	SampleRate       float64
	ChannelsPerFrame uint32
}

func (f AudioFormat) IsPCM() bool { return f.Kind == PCM }
func (f AudioFormat) IsDSD() bool { return f.Kind == DSD }

// FrameCountToByteCount converts a frame count to the number of bytes that
// count of frames occupies in this format. DSD sub-byte formats report
// BytesPerFrame == 0 and always convert to zero; callers must special-case
// sub-byte DSD themselves (§3 "sentinel for sub-byte").
func (f AudioFormat) FrameCountToByteCount(n uint32) uint32 {
	return n * f.BytesPerFrame
}

func (f AudioFormat) String() string {
	return fmt.Sprintf("%s %d-bit ch=%d rate=%.0f flags=%#x", f.Kind, f.BitsPerChannel, f.ChannelsPerFrame, f.SampleRate, uint32(f.Flags))
}

// Buffer is a non-owning scatter/gather view over raw PCM/DSD memory for one
// or more interleaved channels. The backing Data always belongs to the
// driver or the producer; Buffer never allocates or frees it.
type Buffer struct {
	Data         []byte
	ByteSize     int
	ChannelCount int
}

// BufferList is an ordered list of Buffer views, e.g. one buffer per
// deinterleaved channel, or a single buffer holding all interleaved
// channels.
type BufferList struct {
	Buffers []Buffer
}

// NumberOfChannels sums ChannelCount across every buffer in the list.
func (bl BufferList) NumberOfChannels() int {
	n := 0
	for _, b := range bl.Buffers {
		n += b.ChannelCount
	}
	return n
}

// DoubleBuffer is a non-owning view over one deinterleaved channel of
// normalized float64 samples, the fixed output shape of the sample-format
// converter (§4.3 of the data model).
type DoubleBuffer struct {
	Data         []float64
	ByteSize     int
	ChannelCount int
}

// DoubleBufferList is an ordered list of DoubleBuffer views, one per output
// channel.
type DoubleBufferList struct {
	Buffers []DoubleBuffer
}

// Zero sets every buffer's bookkeeping fields to reflect an empty transfer,
// without touching the underlying Data capacity so scratch buffers can be
// reused on the next call.
func (bl DoubleBufferList) Zero() {
	for i := range bl.Buffers {
		bl.Buffers[i].ByteSize = 0
		bl.Buffers[i].ChannelCount = 1
	}
}
