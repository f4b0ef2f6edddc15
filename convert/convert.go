// Package convert normalizes PCM sample data of arbitrary container width,
// alignment, signedness and endianness into deinterleaved float64 in
// [-1, +1), the one shape the rest of the pipeline has to understand.
package convert

import (
	"errors"
	"fmt"

	"github.com/sbooth/asioengine/format"
)

var (
	ErrUnsupportedEncoding     = errors.New("convert: unsupported encoding")
	ErrUnsupportedPackedWidth  = errors.New("convert: unsupported packed sample width")
	ErrUnsupportedAlignedWidth = errors.New("convert: unsupported aligned container width")
)

// Converter normalizes interleaved samples in one fixed source AudioFormat
// into deinterleaved float64 channel buffers. A Converter is built once for
// a given source format and reused across calls to Convert, the way the
// teacher builds a Config once and reuses it across SetConfig calls.
type Converter struct {
	src      format.AudioFormat
	read     sampleReader
	width    int // container width in bytes
	channels int
}

type sampleReader func(b []byte) float64

// New validates src and builds a Converter for it. Only PCM sources are
// supported; a DSD source is rejected with ErrUnsupportedEncoding (§1
// non-goal: this package never touches sub-byte or 1-bit containers).
func New(src format.AudioFormat) (*Converter, error) {
	if !src.IsPCM() {
		return nil, fmt.Errorf("%w: kind %s", ErrUnsupportedEncoding, src.Kind)
	}
	if src.ChannelsPerFrame == 0 {
		return nil, fmt.Errorf("%w: zero channels per frame", ErrUnsupportedEncoding)
	}

	be := src.Flags.Has(format.BigEndian)
	signed := src.Flags.Has(format.SignedInteger)
	floating := src.Flags.Has(format.Float)

	width := int(src.BytesPerPacket)
	if width == 0 {
		width = int(src.BitsPerChannel+7) / 8
	}

	var read sampleReader
	var err error

	switch {
	case floating:
		read, err = floatReader(width, be)
	case src.Flags.Has(format.Packed):
		read, err = packedReader(width, be, signed)
	case src.Flags.Has(format.AlignedHigh):
		read, err = highAlignedReader(width, be, signed)
	default:
		// Non-packed, not flagged AlignedHigh: low-aligned. The sample
		// occupies the low bits of its container; shift it into the high
		// bits of a same-width scratch value before reading it as if it
		// were high-aligned, per channel, per sample — never touching the
		// caller's buffer.
		//
		// Only 8, 16 and 24-bit declared widths have a defined alignment
		// shift; a declared width like 18 or 20 bits sitting inside a wider
		// container is not a supported low-aligned layout, so reject it here
		// rather than silently shifting by the wrong amount.
		switch src.BitsPerChannel {
		case 8, 16, 24:
		default:
			return nil, fmt.Errorf("%w: %d declared bits in %d-byte container", ErrUnsupportedAlignedWidth, src.BitsPerChannel, width)
		}
		shift := uint(width*8) - uint(src.BitsPerChannel)
		var inner sampleReader
		inner, err = highAlignedReader(width, be, signed)
		if err == nil {
			read = lowAlignedReader(width, be, shift, inner)
		}
	}
	if err != nil {
		return nil, err
	}

	return &Converter{src: src, read: read, width: width, channels: int(src.ChannelsPerFrame)}, nil
}

// Convert reads frameCount frames from src and writes one deinterleaved,
// normalized channel into each of dst's buffers. If the Converter's source
// format is flagged NonInterleaved, src must hold one buffer per channel,
// each already containing that channel's samples only; otherwise src must
// hold exactly one buffer with all channels interleaved. len(dst.Buffers)
// must equal the channel count the Converter was built for.
//
// If frameCount is 0, every destination buffer's ByteSize is zeroed and no
// byte of src is read, matching the dispatcher's zero-frame contract.
func (c *Converter) Convert(dst format.DoubleBufferList, src format.BufferList, frameCount int) error {
	if len(dst.Buffers) != c.channels {
		return fmt.Errorf("convert: %d destination channels, want %d", len(dst.Buffers), c.channels)
	}
	if frameCount == 0 {
		dst.Zero()
		return nil
	}

	nonInterleaved := c.src.Flags.Has(format.NonInterleaved)
	if nonInterleaved && len(src.Buffers) != c.channels {
		return fmt.Errorf("convert: %d source channels, want %d", len(src.Buffers), c.channels)
	}
	if !nonInterleaved && len(src.Buffers) != 1 {
		return fmt.Errorf("convert: interleaved source needs exactly one buffer, got %d", len(src.Buffers))
	}

	frameStride := c.width
	if !nonInterleaved {
		frameStride = c.width * c.channels
	}

	for ch := 0; ch < c.channels; ch++ {
		out := dst.Buffers[ch].Data
		if len(out) < frameCount {
			return fmt.Errorf("convert: destination channel %d holds %d samples, want %d", ch, len(out), frameCount)
		}

		var channelSrc []byte
		var offset int
		if nonInterleaved {
			channelSrc = src.Buffers[ch].Data
		} else {
			channelSrc = src.Buffers[0].Data
			offset = ch * c.width
		}
		if len(channelSrc) < frameStride*(frameCount-1)+offset+c.width {
			return fmt.Errorf("convert: source channel %d too short for %d frames", ch, frameCount)
		}

		for i := 0; i < frameCount; i++ {
			out[i] = c.read(channelSrc[offset : offset+c.width])
			offset += frameStride
		}
		dst.Buffers[ch].ByteSize = frameCount * 8
		dst.Buffers[ch].ChannelCount = 1
	}
	return nil
}
