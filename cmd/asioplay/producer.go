package main

import (
	"encoding/binary"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"

	"github.com/sbooth/asioengine/format"
)

// audioDecoder abstracts the decoding step so decoderProducer can stage WAV
// and MP3 input the same way.
type audioDecoder interface {
	PCMBuffer(buf *audio.IntBuffer) (n int, err error)
	Duration() (time.Duration, error)
	NumChans() uint16
	SampleRate() uint32
	BitDepth() uint16
	IsFloat() bool
}

type wavDecoderWrapper struct {
	*wav.Decoder
}

func newWavDecoder(r io.ReadSeeker) (audioDecoder, error) {
	decoder := wav.NewDecoder(r)
	if !decoder.IsValidFile() {
		return nil, errors.New("invalid WAV file")
	}
	return &wavDecoderWrapper{Decoder: decoder}, nil
}

func (w *wavDecoderWrapper) SampleRate() uint32 { return w.Decoder.SampleRate }
func (w *wavDecoderWrapper) NumChans() uint16   { return w.Decoder.NumChans }
func (w *wavDecoderWrapper) BitDepth() uint16   { return uint16(w.Decoder.BitDepth) }
func (w *wavDecoderWrapper) IsFloat() bool      { return w.Decoder.WavAudioFormat == 3 }

type mp3DecoderWrapper struct {
	decoder    *mp3.Decoder
	sampleRate uint32
	numChans   uint16
	bitDepth   uint16
	length     int64
}

func newMp3Decoder(r io.Reader) (audioDecoder, error) {
	decoder, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, err
	}
	return &mp3DecoderWrapper{
		decoder:    decoder,
		sampleRate: uint32(decoder.SampleRate()),
		numChans:   2,
		bitDepth:   16,
		length:     decoder.Length(),
	}, nil
}

func (m *mp3DecoderWrapper) PCMBuffer(buf *audio.IntBuffer) (n int, err error) {
	numSamples := len(buf.Data)
	bytesToRead := numSamples * 2
	byteBuf := make([]byte, bytesToRead)

	bytesRead, err := m.decoder.Read(byteBuf)
	if err != nil && !errors.Is(err, io.EOF) {
		return 0, err
	}

	samplesRead := bytesRead / 2
	for i := 0; i < samplesRead; i++ {
		sample := int16(binary.LittleEndian.Uint16(byteBuf[i*2:]))
		buf.Data[i] = int(sample)
	}
	return samplesRead, err
}

func (m *mp3DecoderWrapper) Duration() (time.Duration, error) {
	bytesPerFrame := int64(m.numChans) * int64(m.bitDepth/8)
	if bytesPerFrame == 0 {
		return 0, errors.New("invalid frame size")
	}
	totalFrames := m.length / bytesPerFrame
	seconds := float64(totalFrames) / float64(m.sampleRate)
	return time.Duration(seconds * float64(time.Second)), nil
}

func (m *mp3DecoderWrapper) SampleRate() uint32 { return m.sampleRate }
func (m *mp3DecoderWrapper) NumChans() uint16   { return m.numChans }
func (m *mp3DecoderWrapper) BitDepth() uint16   { return m.bitDepth }
func (m *mp3DecoderWrapper) IsFloat() bool      { return false }

// decoderProducer adapts an audioDecoder to asio.Producer, scaling whatever
// bit depth the decoder hands back up to the 32-bit signed little-endian
// container the demo driver negotiates, and deinterleaving into one byte
// buffer per channel. ProvideAudio runs on the (simulated) RT thread, so
// the decode work itself happens ahead of time on decodeLoop's own
// goroutine, staging fully-decoded frames into pending for ProvideAudio to
// drain rather than decoding inline.
type decoderProducer struct {
	decoder  audioDecoder
	channels int

	mu             sync.Mutex
	pending        []int32 // interleaved, scaled to 32-bit signed
	capacityFrames int
	eof            bool
}

func newDecoderProducer(d audioDecoder, channels int) *decoderProducer {
	return &decoderProducer{decoder: d, channels: channels}
}

// decodeLoop runs until the decoder is exhausted, scaling and buffering
// frames for ProvideAudio to drain. It is the non-RT half of the pipeline
// (§5's Housekeeping-adjacent domain: ordinary goroutine, free to block and
// allocate).
func (p *decoderProducer) decodeLoop() error {
	chunk := &audio.IntBuffer{
		Format: &audio.Format{NumChannels: int(p.decoder.NumChans()), SampleRate: int(p.decoder.SampleRate())},
		Data:   make([]int, 4096*int(p.decoder.NumChans())),
	}
	shift := uint(32 - int(p.decoder.BitDepth()))

	for {
		n, err := p.decoder.PCMBuffer(chunk)
		if n > 0 {
			scaled := make([]int32, n)
			for i, s := range chunk.Data[:n] {
				scaled[i] = int32(s) << shift
			}
			p.mu.Lock()
			p.pending = append(p.pending, scaled...)
			p.mu.Unlock()
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				p.mu.Lock()
				p.eof = true
				p.mu.Unlock()
				return nil
			}
			return err
		}
		if n == 0 {
			p.mu.Lock()
			p.eof = true
			p.mu.Unlock()
			return nil
		}
	}
}

// ProvideAudio implements asio.Producer. It never blocks: if fewer than
// frameCount frames are buffered, it fills as many as it has and writes
// silence into the rest of dst, signaling the underrun through its return
// value rather than through the buffer's contents.
func (p *decoderProducer) ProvideAudio(dst format.BufferList, frameCount int) int {
	p.mu.Lock()
	available := len(p.pending) / p.channels
	n := frameCount
	if n > available {
		n = available
	}
	frames := p.pending[:n*p.channels]
	p.pending = p.pending[n*p.channels:]
	p.mu.Unlock()

	for ch := 0; ch < p.channels && ch < len(dst.Buffers); ch++ {
		buf := dst.Buffers[ch].Data
		for i := 0; i < n; i++ {
			binary.LittleEndian.PutUint32(buf[i*4:], uint32(frames[i*p.channels+ch]))
		}
		for i := n; i < frameCount && i*4+4 <= len(buf); i++ {
			binary.LittleEndian.PutUint32(buf[i*4:], 0)
		}
	}
	return n
}

// GetRingBufferFormat implements asio.Producer. It reports the format
// frames are actually staged in internally — always 32-bit signed
// little-endian, since decodeLoop scales every decoder's native bit depth
// up to that container before buffering — not the decoder's own format.
func (p *decoderProducer) GetRingBufferFormat() format.AudioFormat {
	return format.AudioFormat{
		Kind:             format.PCM,
		Flags:            format.SignedInteger | format.Packed,
		BitsPerChannel:   32,
		BytesPerPacket:   4,
		FramesPerPacket:  1,
		BytesPerFrame:    4,
		SampleRate:       float64(p.decoder.SampleRate()),
		ChannelsPerFrame: uint32(p.channels),
	}
}

// GetRingBufferCapacity implements asio.Producer.
func (p *decoderProducer) GetRingBufferCapacity() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.capacityFrames
}

// SetRingBufferCapacity implements asio.Producer, growing pending's backing
// array up front so decodeLoop's appends don't reallocate mid-stream once
// playback has started.
func (p *decoderProducer) SetRingBufferCapacity(frames int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	want := frames * p.channels
	if cap(p.pending) < want {
		grown := make([]int32, len(p.pending), want)
		copy(grown, p.pending)
		p.pending = grown
	}
	p.capacityFrames = frames
	return nil
}
