package asio

import (
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"github.com/sbooth/asioengine/format"
)

// State is one position in the controller's lifecycle state machine.
type State int32

const (
	Closed State = iota
	Open
	Configured
	Running
)

func (s State) String() string {
	switch s {
	case Closed:
		return "Closed"
	case Open:
		return "Open"
	case Configured:
		return "Configured"
	case Running:
		return "Running"
	default:
		return "Unknown"
	}
}

// Controller drives a single Driver through its lifecycle: Open, configure
// for a stream, Start, Stop, Close. It owns the one EventMailbox the RT
// callback adapter uses to hand control-plane notifications to the
// housekeeping drain loop (§4.7).
//
// The ASIO ABI this is modeled on dispatches into bare C function pointers
// with no context parameter, which forces the original implementation to
// keep its active controller in a process-wide global so the callback can
// find it. CreateBuffers here takes a Callbacks value built from closures
// over this *Controller instead, so that necessity doesn't carry over —
// see callbacksFor in callback.go.
type Controller struct {
	mu sync.Mutex

	driver   Driver
	producer Producer
	logger   *log.Logger

	state atomic.Int32

	// postOutput caches whether the driver supports an outputReady
	// notification, queried once in Open per §4.5 and refreshed by Reset.
	postOutput bool

	negotiated DriverNegotiated
	mailbox    *EventMailbox

	housekeeping *housekeeping

	scratch        format.BufferList
	bufferSwitches uint64
	resets         uint64
}

// New builds a Controller bound to driver. The controller starts Closed;
// call Open before anything else.
func New(driver Driver, logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.Default()
	}
	c := &Controller{
		driver:  driver,
		logger:  logger,
		mailbox: NewEventMailbox(),
	}
	c.state.Store(int32(Closed))
	return c
}

// State returns the controller's current lifecycle state. Safe to call from
// any goroutine, including the RT callback adapter.
func (c *Controller) State() State {
	return State(c.state.Load())
}

func (c *Controller) requireState(want State) error {
	if got := c.State(); got != want {
		return fmt.Errorf("%w: in %s, need %s", ErrStateViolation, got, want)
	}
	return nil
}

// Open initializes the underlying driver and transitions Closed -> Open.
func (c *Controller) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireState(Closed); err != nil {
		return err
	}
	if err := c.driver.Init(); err != nil {
		return fmt.Errorf("%w: %v", ErrDriverCallFailed, err)
	}

	// Query outputReady() support once and cache it (§4.5); the RT callback
	// adapter gates its own outputReady call on this flag rather than
	// calling it unconditionally.
	c.postOutput = c.driver.OutputReady() == nil

	c.state.Store(int32(Open))
	return nil
}

// Close tears the driver down and returns to Closed from any state. If the
// stream is Running it is stopped first.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.State() {
	case Closed:
		return nil
	case Running:
		if err := c.stopLocked(); err != nil {
			return err
		}
	}

	if c.housekeeping != nil {
		c.housekeeping.stop()
		c.housekeeping = nil
	}
	if c.State() >= Configured {
		_ = c.driver.DisposeBuffers()
	}
	if err := c.driver.Exit(); err != nil {
		return fmt.Errorf("%w: %v", ErrDriverCallFailed, err)
	}
	c.state.Store(int32(Closed))
	return nil
}

// SetupForDecoder negotiates buffers and sample rate for the given format
// and producer, transitioning Open -> Configured.
//
// SetDeviceSampleRate's result is checked and surfaced as ErrRateUnsupported
// here; the original controller this is modeled on calls the equivalent
// negotiation but discards its boolean result, so a driver that silently
// falls back to a different rate than the decoder expects stays that way —
// this rewrite treats the check as load-bearing instead.
func (c *Controller) SetupForDecoder(cfg Config, producer Producer) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireState(Open); err != nil {
		return err
	}

	if err := c.driver.CanSampleRate(cfg.SampleRate); err != nil {
		return fmt.Errorf("%w: %v", ErrRateUnsupported, err)
	}
	if err := c.driver.SetSampleRate(cfg.SampleRate); err != nil {
		return fmt.Errorf("%w: %v", ErrRateUnsupported, err)
	}

	numIn, numOut, err := c.driver.GetChannels()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDriverCallFailed, err)
	}
	outCount := cfg.ChannelsPerFrame
	if outCount > numOut {
		outCount = numOut
	}
	_ = numIn

	minBuf, maxBuf, preferred, granularity, err := c.driver.GetBufferSize()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDriverCallFailed, err)
	}
	bufferSize := preferred
	if cfg.PreferredBufferSize > 0 {
		bufferSize = cfg.PreferredBufferSize
	}

	bufferInfo := make([]BufferInfo, outCount)
	channelInfo := make([]format.DriverFormatDescriptor, outCount)
	for i := 0; i < outCount; i++ {
		bufferInfo[i] = BufferInfo{IsInput: false, ChannelIndex: i}
		desc, err := c.driver.GetChannelInfo(i, false)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrDriverCallFailed, err)
		}
		channelInfo[i] = desc
	}

	callbacks := c.callbacksFor(bufferSize)
	if err := c.driver.CreateBuffers(bufferInfo, bufferSize, callbacks); err != nil {
		return fmt.Errorf("%w: %v", ErrResourceExhausted, err)
	}

	rate, err := c.driver.GetSampleRate()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDriverCallFailed, err)
	}

	// Latencies are only valid once CreateBuffers has returned (§4.5); a
	// driver that can't report them is logged, not fatal, matching the
	// original controller's non-fatal LOGGER_ERR on the same call.
	inputLatency, outputLatency, err := c.driver.GetLatencies()
	if err != nil {
		c.logger.Printf("asio: unable to get latencies: %v", err)
	}

	// Derive the ring buffer format from the first output channel's sample
	// type (§4.5) and make sure the producer's ring buffer is large enough
	// to hold at least 4 preferred buffers, per original lines 719-720.
	var ringFormat format.AudioFormat
	if len(channelInfo) > 0 {
		ringFormat = format.DescribeSampleType(channelInfo[0].SampleType)
		ringFormat.SampleRate = rate
		ringFormat.ChannelsPerFrame = uint32(outCount)

		if producerFormat := producer.GetRingBufferFormat(); producerFormat != ringFormat {
			c.logger.Printf("asio: producer ring buffer format %s differs from negotiated %s", producerFormat, ringFormat)
		}
	}

	wantCapacity := 4 * bufferSize
	if producer.GetRingBufferCapacity() < wantCapacity {
		if err := producer.SetRingBufferCapacity(wantCapacity); err != nil {
			return fmt.Errorf("%w: %v", ErrResourceExhausted, err)
		}
	}

	c.negotiated = DriverNegotiated{
		MinBufferSize:         minBuf,
		MaxBufferSize:         maxBuf,
		PreferredBufferSize:   bufferSize,
		BufferSizeGranularity: granularity,
		InputLatency:          inputLatency,
		OutputLatency:         outputLatency,
		SampleRate:            rate,
		PostOutput:            c.postOutput,
		RingFormat:            ringFormat,
		BufferInfo:            bufferInfo,
		ChannelInfo:           channelInfo,
	}

	c.scratch = format.BufferList{Buffers: make([]format.Buffer, outCount)}
	c.producer = producer

	c.housekeeping = newHousekeeping(c.mailbox, c)
	c.housekeeping.start()

	c.state.Store(int32(Configured))
	return nil
}

// Start begins playback, transitioning Configured -> Running.
func (c *Controller) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireState(Configured); err != nil {
		return err
	}
	if err := c.driver.Start(); err != nil {
		return fmt.Errorf("%w: %v", ErrDriverCallFailed, err)
	}
	c.state.Store(int32(Running))
	return nil
}

// Stop halts playback synchronously, transitioning Running -> Configured.
func (c *Controller) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopLocked()
}

func (c *Controller) stopLocked() error {
	if err := c.requireState(Running); err != nil {
		return err
	}
	if err := c.driver.Stop(); err != nil {
		return fmt.Errorf("%w: %v", ErrDriverCallFailed, err)
	}
	c.state.Store(int32(Configured))
	return nil
}

// RequestStop asks for playback to stop asynchronously by posting
// EventStopPlayback to the mailbox, rather than calling into the
// driver's Stop synchronously from whatever goroutine RequestStop runs on.
// The housekeeping loop observes the event and calls Stop for real on its
// own next drain cycle.
func (c *Controller) RequestStop() error {
	if err := c.requireState(Running); err != nil {
		return err
	}
	if !c.mailbox.Push(EventStopPlayback) {
		return ErrResourceExhausted
	}
	return nil
}

// Reset tears down and recreates the driver's buffers against the last
// negotiated configuration, without leaving Configured (or Running, which
// is stopped first). It is the synchronous counterpart to the RT adapter's
// asioMessage(kAsioResetRequest) path, which only posts to the mailbox.
func (c *Controller) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	wasRunning := c.State() == Running
	if wasRunning {
		if err := c.stopLocked(); err != nil {
			return err
		}
	}
	if err := c.requireState(Configured); err != nil {
		return err
	}

	if err := c.driver.DisposeBuffers(); err != nil {
		return fmt.Errorf("%w: %v", ErrDriverCallFailed, err)
	}
	callbacks := c.callbacksFor(c.negotiated.PreferredBufferSize)
	if err := c.driver.CreateBuffers(c.negotiated.BufferInfo, c.negotiated.PreferredBufferSize, callbacks); err != nil {
		return fmt.Errorf("%w: %v", ErrResourceExhausted, err)
	}
	c.postOutput = c.driver.OutputReady() == nil
	c.negotiated.PostOutput = c.postOutput
	c.resets++

	if wasRunning {
		if err := c.driver.Start(); err != nil {
			return fmt.Errorf("%w: %v", ErrDriverCallFailed, err)
		}
		c.state.Store(int32(Running))
	}
	return nil
}

// GetDeviceIOFormat reports the AudioFormat the negotiated output channel
// at index actually carries, derived from the driver's reported sample
// type per §4.2.
func (c *Controller) GetDeviceIOFormat(channel int) (format.AudioFormat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if channel < 0 || channel >= len(c.negotiated.ChannelInfo) {
		return format.AudioFormat{}, fmt.Errorf("%w: channel %d", ErrFormatUnsupported, channel)
	}
	desc := c.negotiated.ChannelInfo[channel]
	f := format.DescribeSampleType(desc.SampleType)
	if f == (format.AudioFormat{}) {
		return format.AudioFormat{}, fmt.Errorf("%w: unrecognized sample type %s", ErrFormatUnsupported, desc.SampleType)
	}
	f.SampleRate = c.negotiated.SampleRate
	f.ChannelsPerFrame = 1
	return f, nil
}

// Negotiated returns a copy of the current negotiated state.
func (c *Controller) Negotiated() DriverNegotiated {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.negotiated
}

// BufferSwitchCount reports how many times the RT adapter has serviced a
// buffer switch callback, for tests and diagnostics.
func (c *Controller) BufferSwitchCount() uint64 {
	return atomic.LoadUint64(&c.bufferSwitches)
}

// ResetCount reports how many times Reset has actually executed.
func (c *Controller) ResetCount() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resets
}
