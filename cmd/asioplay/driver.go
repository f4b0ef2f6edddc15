package main

import (
	"sync"
	"time"

	"github.com/sbooth/asioengine/asio"
	"github.com/sbooth/asioengine/format"
)

// loopbackDriver is a self-contained stand-in for a real ASIO driver
// binding: it negotiates a 32-bit signed little-endian output format on as
// many channels as it was built with, and drives its own buffer-switch callback on a ticker
// instead of an audio thread owned by a kernel driver. It exists so the
// demo can exercise the full Controller lifecycle without linking against
// any actual vendor driver, which is out of scope for this module (§1).
type loopbackDriver struct {
	sampleRate float64
	channels   int

	mu        sync.Mutex
	callbacks asio.Callbacks
	buffers   []asio.BufferInfo

	stop chan struct{}
	done chan struct{}
}

func newLoopbackDriver(channels int) *loopbackDriver {
	return &loopbackDriver{sampleRate: 44100, channels: channels}
}

func (d *loopbackDriver) Name() string { return "loopback" }
func (d *loopbackDriver) Init() error  { return nil }
func (d *loopbackDriver) Exit() error  { return nil }

func (d *loopbackDriver) GetChannels() (int, int, error) { return 0, d.channels, nil }
func (d *loopbackDriver) GetBufferSize() (int, int, int, int, error) {
	return 64, 8192, 512, 4, nil
}
func (d *loopbackDriver) CanSampleRate(rate float64) error { return nil }
func (d *loopbackDriver) GetSampleRate() (float64, error)  { return d.sampleRate, nil }
func (d *loopbackDriver) SetSampleRate(rate float64) error {
	d.sampleRate = rate
	return nil
}

func (d *loopbackDriver) GetChannelInfo(channel int, isInput bool) (format.DriverFormatDescriptor, error) {
	return format.DriverFormatDescriptor{ChannelIndex: channel, IsInput: isInput, SampleType: format.Int32LSB}, nil
}

func (d *loopbackDriver) CreateBuffers(bufferInfo []asio.BufferInfo, bufferSize int, callbacks asio.Callbacks) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range bufferInfo {
		bufferInfo[i].Buffers[0] = make([]byte, bufferSize*4)
		bufferInfo[i].Buffers[1] = make([]byte, bufferSize*4)
	}
	d.buffers = bufferInfo
	d.callbacks = callbacks
	return nil
}

func (d *loopbackDriver) GetLatencies() (int, int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	bufferSize := 512
	if len(d.buffers) > 0 {
		bufferSize = len(d.buffers[0].Buffers[0]) / 4
	}
	return bufferSize, bufferSize, nil
}

func (d *loopbackDriver) DisposeBuffers() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.buffers = nil
	return nil
}

func (d *loopbackDriver) Start() error {
	d.mu.Lock()
	bufferSize := len(d.buffers[0].Buffers[0]) / 4
	d.stop = make(chan struct{})
	d.done = make(chan struct{})
	d.mu.Unlock()

	period := time.Duration(float64(bufferSize)/d.sampleRate*1000) * time.Millisecond
	go func() {
		defer close(d.done)
		index := 0
		ticker := time.NewTicker(period)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				d.mu.Lock()
				cb := d.callbacks.BufferSwitchTimeInfo
				d.mu.Unlock()
				if cb != nil {
					cb(index, true)
				}
				index = 1 - index
			case <-d.stop:
				return
			}
		}
	}()
	return nil
}

func (d *loopbackDriver) Stop() error {
	d.mu.Lock()
	stop := d.stop
	done := d.done
	d.mu.Unlock()
	if stop == nil {
		return nil
	}
	close(stop)
	<-done
	return nil
}

func (d *loopbackDriver) OutputReady() error { return nil }
