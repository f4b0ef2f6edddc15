package asio

import (
	"sync/atomic"

	"github.com/sbooth/asioengine/format"
)

// asioMessage selectors this adapter recognizes, per the original
// controller's HandleASIOMessage switch. Unrecognized selectors return 0,
// meaning "not handled", the ASIO convention for an unsupported query.
const (
	selectorSelectorSupported    = 1
	selectorEngineVersion        = 2
	selectorResetRequest         = 3
	selectorBufferSizeChange     = 4
	selectorResyncRequest        = 5
	selectorLatenciesChanged     = 6
	selectorSupportsTimeInfo     = 7
	selectorSupportsTimeCode     = 8
	selectorSupportsInputMonitor = 10
	selectorOverload             = 15
)

// supportedSelectors is the whitelist kAsioSelectorSupported checks value
// against. Overload is a control event, not an advertised capability, so it
// is handled below but never reported supported here.
var supportedSelectors = map[int32]bool{
	selectorResetRequest:         true,
	selectorEngineVersion:        true,
	selectorResyncRequest:        true,
	selectorLatenciesChanged:     true,
	selectorSupportsTimeInfo:     true,
	selectorSupportsTimeCode:     true,
	selectorSupportsInputMonitor: true,
}

// callbacksFor builds the Callbacks value CreateBuffers wires into the
// driver for the RT audio thread to invoke. bufferSize is the negotiated
// frame count per half of the double buffer.
func (c *Controller) callbacksFor(bufferSize int) Callbacks {
	serviceSwitch := func(doubleBufferIndex int) {
		defer func() {
			if r := recover(); r != nil {
				c.logger.Printf("asio: recovered panic in buffer switch callback: %v", r)
			}
		}()
		c.bufferSwitchTimeInfo(doubleBufferIndex, bufferSize)
	}
	return Callbacks{
		BufferSwitch: func(doubleBufferIndex int, directProcess bool) {
			serviceSwitch(doubleBufferIndex)
		},
		BufferSwitchTimeInfo: func(doubleBufferIndex int, directProcess bool) {
			serviceSwitch(doubleBufferIndex)
		},
		ASIOMessage: c.asioMessage,
	}
}

// bufferSwitchTimeInfo is the RT buffer-switch callback body (§4.6). It
// rebinds the scratch BufferList's backing memory to the driver's own
// native-format buffers for this half of the double buffer — no sample
// conversion happens here, the driver sees whatever raw format it
// negotiated — pulls frameCount frames from the producer, and, if fewer
// than negotiated arrived, leaves the remainder of the driver's buffer
// whatever it already held rather than allocating or blocking to fill it.
// It then calls the driver's outputReady only if Open found the driver
// supports it (§4.5's cached postOutput).
//
// A panic here would cross into the driver's own calling thread, which the
// driver owns, not this package, so callbacksFor wraps every call in a
// recover that logs the panic and returns normally. Internally it touches
// no allocation and takes no lock the producer may be blocked holding.
func (c *Controller) bufferSwitchTimeInfo(doubleBufferIndex int, frameCount int) {
	atomic.AddUint64(&c.bufferSwitches, 1)

	info := c.negotiated.BufferInfo
	for i := range c.scratch.Buffers {
		if i >= len(info) {
			break
		}
		c.scratch.Buffers[i] = formatBufferFor(info[i], doubleBufferIndex, frameCount)
	}

	if c.producer != nil {
		c.producer.ProvideAudio(c.scratch, frameCount)
	}

	if c.postOutput {
		_ = c.driver.OutputReady()
	}
}

func formatBufferFor(info BufferInfo, doubleBufferIndex, frameCount int) format.Buffer {
	return format.Buffer{Data: info.Buffers[doubleBufferIndex], ByteSize: len(info.Buffers[doubleBufferIndex]), ChannelCount: 1}
}

// asioMessage handles the driver's synchronous control-plane callback
// (§4.6). Selector queries are answered directly and immediately; selectors
// that imply asynchronous work (reset, overload) only post an event to the
// mailbox and return — the real handling happens on the housekeeping
// drain loop, never on the RT thread.
func (c *Controller) asioMessage(selector, value int32) int32 {
	switch selector {
	case selectorSelectorSupported:
		if supportedSelectors[value] {
			return 1
		}
		return 0
	case selectorEngineVersion:
		return 2
	case selectorResetRequest:
		c.mailbox.Push(EventResetNeeded)
		return 1
	case selectorOverload:
		c.mailbox.Push(EventOverload)
		return 1
	case selectorResyncRequest, selectorLatenciesChanged, selectorSupportsTimeInfo:
		return 1
	default:
		return 0
	}
}
