package asio

import (
	"fmt"
	"strings"

	"github.com/sbooth/asioengine/format"
)

// DriverNegotiated is the read-only snapshot of what Open/SetupForDecoder
// actually negotiated with a Driver: buffer sizing, latencies, the sample
// rate in effect, and a descriptor per channel. It is rebuilt on every
// successful negotiation; afterward only Reset changes it in place, by
// refreshing PostOutput.
type DriverNegotiated struct {
	MinBufferSize int
	MaxBufferSize int
	// PreferredBufferSize is the frame count CreateBuffers was actually
	// called with — the driver's reported preferred size unless Config
	// overrode it — not necessarily the driver's own preference. Reset
	// rebuilds buffers from this value, so Setup and Reset always agree on
	// the size in effect.
	PreferredBufferSize   int
	BufferSizeGranularity int

	InputLatency  int
	OutputLatency int

	SampleRate float64
	PostOutput bool

	// RingFormat is derived from the first negotiated output channel's
	// sample type (§4.5), with SampleRate and ChannelsPerFrame filled in.
	RingFormat format.AudioFormat

	BufferInfo  []BufferInfo
	ChannelInfo []format.DriverFormatDescriptor
}

// Summary renders a one-line, log-friendly description of the negotiated
// state, the way the teacher's SoundCard.String() summarizes a card for
// diagnostics.
func (n DriverNegotiated) Summary() string {
	return fmt.Sprintf(
		"rate=%.0f buffer=%d (min=%d max=%d pref=%d gran=%d) latency(in=%d out=%d) channels=%d ring=%s",
		n.SampleRate, n.PreferredBufferSize, n.MinBufferSize, n.MaxBufferSize,
		n.PreferredBufferSize, n.BufferSizeGranularity, n.InputLatency, n.OutputLatency, len(n.ChannelInfo),
		n.RingFormat.String(),
	)
}

// String renders the summary line plus one line per negotiated channel.
func (n DriverNegotiated) String() string {
	var b strings.Builder
	b.WriteString(n.Summary())
	for _, ch := range n.ChannelInfo {
		b.WriteByte('\n')
		b.WriteString("  " + ch.String())
	}
	return b.String()
}
