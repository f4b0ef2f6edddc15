package format

import "strconv"

// SampleType is the tagged union of sample encodings a driver channel can
// report, mirroring the ASIOSampleType codes of the ASIO 2 SDK. Only the
// PCM/DSD shapes actually reachable by a driver channel are enumerated;
// DescribeSampleType is total over this set and zero-valued (caller must
// detect) for anything else.
type SampleType int32

const (
	Int16MSB   SampleType = 0
	Int24MSB   SampleType = 1 // packed in 3 bytes, also used for 20 bits
	Int32MSB   SampleType = 2
	Float32MSB SampleType = 3
	Float64MSB SampleType = 4

	Int32MSB16 SampleType = 8 // 32 bit container, 16 significant bits
	Int32MSB18 SampleType = 9
	Int32MSB20 SampleType = 10
	Int32MSB24 SampleType = 11

	Int16LSB   SampleType = 16
	Int24LSB   SampleType = 17
	Int32LSB   SampleType = 18
	Float32LSB SampleType = 19
	Float64LSB SampleType = 20

	Int32LSB16 SampleType = 24
	Int32LSB18 SampleType = 25
	Int32LSB20 SampleType = 26
	Int32LSB24 SampleType = 27

	DSDInt8LSB1 SampleType = 32 // 1-bit DSD, 8 samples/byte, first sample in LSB
	DSDInt8MSB1 SampleType = 33 // 1-bit DSD, 8 samples/byte, first sample in MSB
	DSDInt8NER8 SampleType = 40 // 8-bit DSD nibble, 1 sample/byte
)

// sampleTypeNames is used only for diagnostics (DriverFormatDescriptor.String).
var sampleTypeNames = map[SampleType]string{
	Int16MSB: "Int16MSB", Int24MSB: "Int24MSB", Int32MSB: "Int32MSB",
	Float32MSB: "Float32MSB", Float64MSB: "Float64MSB",
	Int32MSB16: "Int32MSB16", Int32MSB18: "Int32MSB18", Int32MSB20: "Int32MSB20", Int32MSB24: "Int32MSB24",
	Int16LSB: "Int16LSB", Int24LSB: "Int24LSB", Int32LSB: "Int32LSB",
	Float32LSB: "Float32LSB", Float64LSB: "Float64LSB",
	Int32LSB16: "Int32LSB16", Int32LSB18: "Int32LSB18", Int32LSB20: "Int32LSB20", Int32LSB24: "Int32LSB24",
	DSDInt8LSB1: "DSDInt8LSB1", DSDInt8MSB1: "DSDInt8MSB1", DSDInt8NER8: "DSDInt8NER8",
}

func (s SampleType) String() string {
	if name, ok := sampleTypeNames[s]; ok {
		return name
	}
	return "Unrecognized"
}

// DescribeSampleType derives the AudioFormat a driver channel reporting this
// SampleType actually carries, per §4.2. Channel count and sample rate are
// not known to this pure function and are left zero; the caller fills them
// in from the negotiated stream state.
func DescribeSampleType(t SampleType) AudioFormat {
	var f AudioFormat

	switch t {
	case Int16LSB, Int16MSB:
		f = AudioFormat{Kind: PCM, Flags: SignedInteger | NonInterleaved | Packed, BitsPerChannel: 16}
	case Int24LSB, Int24MSB:
		f = AudioFormat{Kind: PCM, Flags: SignedInteger | NonInterleaved | Packed, BitsPerChannel: 24}
	case Int32LSB, Int32MSB:
		f = AudioFormat{Kind: PCM, Flags: SignedInteger | NonInterleaved | Packed, BitsPerChannel: 32}
	case Float32LSB, Float32MSB:
		f = AudioFormat{Kind: PCM, Flags: Float | NonInterleaved | Packed, BitsPerChannel: 32}
	case Float64LSB, Float64MSB:
		f = AudioFormat{Kind: PCM, Flags: Float | NonInterleaved | Packed, BitsPerChannel: 64}

	case Int32LSB16, Int32MSB16:
		f = AudioFormat{Kind: PCM, Flags: SignedInteger | NonInterleaved, BitsPerChannel: 16, BytesPerPacket: 4}
	case Int32LSB18, Int32MSB18:
		f = AudioFormat{Kind: PCM, Flags: SignedInteger | NonInterleaved, BitsPerChannel: 18, BytesPerPacket: 4}
	case Int32LSB20, Int32MSB20:
		f = AudioFormat{Kind: PCM, Flags: SignedInteger | NonInterleaved, BitsPerChannel: 20, BytesPerPacket: 4}
	case Int32LSB24, Int32MSB24:
		f = AudioFormat{Kind: PCM, Flags: SignedInteger | NonInterleaved, BitsPerChannel: 24, BytesPerPacket: 4}

	case DSDInt8LSB1, DSDInt8MSB1:
		f = AudioFormat{Kind: DSD, Flags: NonInterleaved, BitsPerChannel: 1, BytesPerPacket: 1, FramesPerPacket: 8, BytesPerFrame: 0}

	case DSDInt8NER8:
		f = AudioFormat{Kind: DSD, Flags: NonInterleaved, BitsPerChannel: 8, BytesPerPacket: 1, FramesPerPacket: 1, BytesPerFrame: 1}

	default:
		return AudioFormat{}
	}

	switch t {
	case Int16MSB, Int24MSB, Int32MSB, Float32MSB, Float64MSB,
		Int32MSB16, Int32MSB18, Int32MSB20, Int32MSB24, DSDInt8MSB1:
		f.Flags |= BigEndian
	}

	if f.Kind == PCM && f.BytesPerPacket == 0 {
		f.BytesPerPacket = f.BitsPerChannel / 8
	}
	if f.Kind == PCM {
		f.FramesPerPacket = 1
		f.BytesPerFrame = f.BytesPerPacket * f.FramesPerPacket
	}

	return f
}

// DriverFormatDescriptor is the per-channel information a driver reports
// about one of its input or output channels.
type DriverFormatDescriptor struct {
	ChannelIndex int
	IsInput      bool
	SampleType   SampleType
}

func (d DriverFormatDescriptor) String() string {
	dir := "out"
	if d.IsInput {
		dir = "in"
	}
	return "ch" + strconv.Itoa(d.ChannelIndex) + "/" + dir + "/" + d.SampleType.String()
}
