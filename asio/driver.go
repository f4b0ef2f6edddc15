package asio

import "github.com/sbooth/asioengine/format"

// Config carries buffer and format negotiation hints into
// SetupForDecoder. It is a plain struct passed at the call site, the way
// the teacher passes its Config into PcmOpen/SetConfig — there is no file
// format or persistence layer behind it.
type Config struct {
	PreferredBufferSize int
	ChannelsPerFrame    int
	SampleRate          float64
}

// Driver is the contract a concrete ASIO-style driver binding must satisfy.
// It is the out-of-scope external collaborator (§1, §6): this package never
// loads a shared library or talks to hardware itself, it only drives
// whatever already implements this interface.
type Driver interface {
	Name() string

	Init() error
	Exit() error

	GetChannels() (numInput, numOutput int, err error)
	GetBufferSize() (min, max, preferred, granularity int, err error)
	CanSampleRate(rate float64) error
	GetSampleRate() (float64, error)
	SetSampleRate(rate float64) error

	GetChannelInfo(channel int, isInput bool) (format.DriverFormatDescriptor, error)

	CreateBuffers(bufferInfo []BufferInfo, bufferSize int, callbacks Callbacks) error
	DisposeBuffers() error

	// GetLatencies reports input/output latency in frames. Only valid once
	// CreateBuffers has returned.
	GetLatencies() (input, output int, err error)

	Start() error
	Stop() error

	OutputReady() error
}

// BufferInfo identifies one driver-owned double buffer and, after
// CreateBuffers returns, the two native-format memory regions the driver
// will swap between.
type BufferInfo struct {
	IsInput      bool
	ChannelIndex int
	Buffers      [2][]byte
}

// Callbacks are the functions a Driver invokes on the RT audio thread. They
// are supplied to CreateBuffers and must satisfy the RT constraints in §7:
// no allocation, no blocking, no panics observable to the driver.
type Callbacks struct {
	BufferSwitch         func(doubleBufferIndex int, directProcess bool)
	SampleRateDidChange  func(newRate float64)
	ASIOMessage          func(selector, value int32) int32
	BufferSwitchTimeInfo func(doubleBufferIndex int, directProcess bool) // optional, preferred form
}

// Producer supplies audio frames to be pushed into a driver's output
// buffer. It is the bridge's contract with the player above it (§1, §6).
// ProvideAudio runs on the RT audio thread and must not block or allocate;
// the ring-buffer accessors below run on the control thread, during
// SetupForDecoder, and may block or allocate freely.
type Producer interface {
	// ProvideAudio fills dst (already bound to the driver's native-format
	// scratch memory for this half of the double buffer) with frameCount
	// frames. It returns the number of frames actually supplied; fewer than
	// frameCount signals underrun.
	ProvideAudio(dst format.BufferList, frameCount int) int

	// GetRingBufferFormat reports the AudioFormat the producer currently
	// stages frames in, so the controller can log a mismatch against what
	// it derived from the driver's negotiated channel format.
	GetRingBufferFormat() format.AudioFormat

	// GetRingBufferCapacity reports the producer's current ring buffer
	// capacity in frames.
	GetRingBufferCapacity() int

	// SetRingBufferCapacity asks the producer to grow its ring buffer to
	// hold at least the given number of frames.
	SetRingBufferCapacity(frames int) error
}

// DriverRegistry holds the set of Driver bindings a host process knows
// about. Populating it is the caller's job — this package never scans a
// filesystem or a plugin directory for drivers, it only enumerates what it
// was given, generalizing the teacher's /proc/asound scan into an injected
// list.
type DriverRegistry struct {
	drivers []Driver
}

// NewDriverRegistry builds a registry over an already-resolved list of
// driver bindings.
func NewDriverRegistry(drivers ...Driver) *DriverRegistry {
	return &DriverRegistry{drivers: drivers}
}

// Drivers returns the registered drivers in registration order.
func (r *DriverRegistry) Drivers() []Driver {
	out := make([]Driver, len(r.drivers))
	copy(out, r.drivers)
	return out
}

// Names returns the registered drivers' names, in registration order, for
// presenting a selection list to a user.
func (r *DriverRegistry) Names() []string {
	names := make([]string, len(r.drivers))
	for i, d := range r.drivers {
		names[i] = d.Name()
	}
	return names
}

// ByIndex returns the driver at position index, or ErrDriverUnavailable if
// index is out of range.
func (r *DriverRegistry) ByIndex(index int) (Driver, error) {
	if index < 0 || index >= len(r.drivers) {
		return nil, ErrDriverUnavailable
	}
	return r.drivers[index], nil
}
