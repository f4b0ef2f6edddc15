package asio

import (
	"log"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sbooth/asioengine/format"
)

// mockDriver is a fully in-memory Driver stand-in: no hardware, no shared
// library, just enough state to let Controller walk through its lifecycle
// and to let a test drive the RT callbacks itself.
type mockDriver struct {
	mu        sync.Mutex
	callbacks Callbacks
	started   bool
	rate      float64
}

func newMockDriver() *mockDriver { return &mockDriver{rate: 44100} }

func (d *mockDriver) Name() string { return "mock" }
func (d *mockDriver) Init() error  { return nil }
func (d *mockDriver) Exit() error  { return nil }

func (d *mockDriver) GetChannels() (int, int, error) { return 0, 2, nil }
func (d *mockDriver) GetBufferSize() (int, int, int, int, error) {
	return 64, 4096, 256, 1, nil
}
func (d *mockDriver) CanSampleRate(rate float64) error { return nil }
func (d *mockDriver) GetSampleRate() (float64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rate, nil
}
func (d *mockDriver) SetSampleRate(rate float64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rate = rate
	return nil
}

func (d *mockDriver) GetChannelInfo(channel int, isInput bool) (format.DriverFormatDescriptor, error) {
	return format.DriverFormatDescriptor{ChannelIndex: channel, IsInput: isInput, SampleType: format.Int32LSB}, nil
}

func (d *mockDriver) CreateBuffers(bufferInfo []BufferInfo, bufferSize int, callbacks Callbacks) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range bufferInfo {
		bufferInfo[i].Buffers[0] = make([]byte, bufferSize*4)
		bufferInfo[i].Buffers[1] = make([]byte, bufferSize*4)
	}
	d.callbacks = callbacks
	return nil
}
func (d *mockDriver) DisposeBuffers() error { return nil }

func (d *mockDriver) GetLatencies() (int, int, error) { return 64, 128, nil }

func (d *mockDriver) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.started = true
	return nil
}
func (d *mockDriver) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.started = false
	return nil
}
func (d *mockDriver) OutputReady() error { return nil }

func (d *mockDriver) fireBufferSwitch(index int) {
	d.mu.Lock()
	cb := d.callbacks.BufferSwitchTimeInfo
	d.mu.Unlock()
	cb(index, true)
}

func (d *mockDriver) fireMessage(selector, value int32) int32 {
	d.mu.Lock()
	cb := d.callbacks.ASIOMessage
	d.mu.Unlock()
	return cb(selector, value)
}

// countingProducer counts ProvideAudio calls and the frame count each one
// received.
type countingProducer struct {
	mu         sync.Mutex
	calls      int
	lastFrames int
	capacity   int
}

func (p *countingProducer) ProvideAudio(dst format.BufferList, frameCount int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	p.lastFrames = frameCount
	return frameCount
}

func (p *countingProducer) GetRingBufferFormat() format.AudioFormat { return format.AudioFormat{} }

func (p *countingProducer) GetRingBufferCapacity() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.capacity
}

func (p *countingProducer) SetRingBufferCapacity(frames int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.capacity = frames
	return nil
}

func (p *countingProducer) snapshot() (int, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls, p.lastFrames
}

func openedController(t *testing.T) (*Controller, *mockDriver) {
	drv := newMockDriver()
	c := New(drv, log.New(testWriter{t}, "", 0))
	require.NoError(t, c.Open())
	return c, drv
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}

// Scenario: open, configure, start, service ten buffer switches of 256
// frames each, request a stop, and observe the transition back out of
// Running with the producer having been asked for exactly ten buffers of
// 256 frames.
func TestControllerLifecycleAndBufferSwitches(t *testing.T) {
	c, drv := openedController(t)
	producer := &countingProducer{}

	require.NoError(t, c.SetupForDecoder(Config{PreferredBufferSize: 256, ChannelsPerFrame: 2, SampleRate: 44100}, producer))
	assert.Equal(t, Configured, c.State())

	require.NoError(t, c.Start())
	assert.Equal(t, Running, c.State())
	assert.True(t, drv.started)

	for i := 0; i < 10; i++ {
		drv.fireBufferSwitch(i % 2)
	}
	calls, lastFrames := producer.snapshot()
	assert.Equal(t, 10, calls)
	assert.Equal(t, 256, lastFrames)
	assert.EqualValues(t, 10, c.BufferSwitchCount())

	require.NoError(t, c.RequestStop())
	require.Eventually(t, func() bool { return c.State() == Configured }, 2*time.Second, 10*time.Millisecond)
	assert.False(t, drv.started)

	require.NoError(t, c.Close())
	assert.Equal(t, Closed, c.State())
}

// Scenario: under Running, the driver signals an overload and then a reset
// request through asioMessage. After one housekeeping drain cycle, Reset
// has executed exactly once. The overload goes to the test logger; this
// test does not assert on the log output.
func TestControllerResetUnderOverload(t *testing.T) {
	c, drv := openedController(t)
	producer := &countingProducer{}

	require.NoError(t, c.SetupForDecoder(Config{PreferredBufferSize: 256, ChannelsPerFrame: 2, SampleRate: 44100}, producer))
	require.NoError(t, c.Start())

	assert.EqualValues(t, 1, drv.fireMessage(selectorOverload, 0))
	assert.EqualValues(t, 1, drv.fireMessage(selectorResetRequest, 0))
	assert.EqualValues(t, 1, drv.fireMessage(selectorResetRequest, 0)) // duplicate within the same cycle

	require.Eventually(t, func() bool { return c.ResetCount() == 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(3 * housekeepingInterval)
	assert.EqualValues(t, 1, c.ResetCount(), "duplicate reset requests in one cycle must collapse to one Reset")

	require.NoError(t, c.Close())
}

func TestControllerRejectsOperationsOutOfState(t *testing.T) {
	c, _ := openedController(t)
	err := c.Start()
	assert.ErrorIs(t, err, ErrStateViolation)
}

func TestControllerGetDeviceIOFormat(t *testing.T) {
	c, _ := openedController(t)
	producer := &countingProducer{}
	require.NoError(t, c.SetupForDecoder(Config{PreferredBufferSize: 256, ChannelsPerFrame: 2, SampleRate: 44100}, producer))

	f, err := c.GetDeviceIOFormat(0)
	require.NoError(t, err)
	assert.True(t, f.IsPCM())
	assert.EqualValues(t, 44100, f.SampleRate)
}
