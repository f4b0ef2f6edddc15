package asio

import (
	"encoding/binary"
	"sync/atomic"
)

// EventCode is a fixed 4-byte code the RT callback adapter pushes into an
// EventMailbox. The codes mirror the four-character selectors the original
// controller used for its own internal event queue.
type EventCode uint32

const (
	EventStopPlayback EventCode = 0x73746f70 // "stop"
	EventResetNeeded  EventCode = 0x72657374 // "rest"
	EventOverload     EventCode = 0x6f766c64 // "ovld"
)

const eventSize = 4

// mailboxCapacity is the ring's byte capacity, rounded up to a power of two.
// 1024 bytes holds 256 pending events, far more than one housekeeping period
// (§4.7, ~5Hz) could ever accumulate from a single RT thread.
const mailboxCapacity = 1024

// EventMailbox is a lock-free single-producer/single-consumer ring carrying
// fixed-size EventCode records from the RT audio thread to the housekeeping
// task. The producer (the driver's callback thread) never blocks and never
// allocates; the consumer (the housekeeping drain loop) is the only reader.
type EventMailbox struct {
	writePos atomic.Uint64
	_pad1    [56]byte
	readPos  atomic.Uint64
	_pad2    [56]byte

	buf  []byte
	mask uint64
}

// NewEventMailbox builds a mailbox with a fixed, power-of-two capacity.
func NewEventMailbox() *EventMailbox {
	return &EventMailbox{
		buf:  make([]byte, mailboxCapacity),
		mask: uint64(mailboxCapacity - 1),
	}
}

// Push enqueues one event code. It never blocks; if the ring is full the
// event is dropped and Push returns false. Call only from the RT callback.
func (mb *EventMailbox) Push(code EventCode) bool {
	w := mb.writePos.Load()
	r := mb.readPos.Load()

	free := uint64(len(mb.buf)) - (w - r)
	if free < eventSize {
		return false
	}

	var rec [eventSize]byte
	binary.LittleEndian.PutUint32(rec[:], uint32(code))

	pos := w & mb.mask
	first := uint64(len(mb.buf)) - pos
	if first >= eventSize {
		copy(mb.buf[pos:pos+eventSize], rec[:])
	} else {
		copy(mb.buf[pos:], rec[:first])
		copy(mb.buf[:eventSize-first], rec[first:])
	}

	mb.writePos.Store(w + eventSize)
	return true
}

// Drain reads every pending event and calls handle for each, in order. If a
// partial record is found at the tail — which should not happen, since
// Push only ever enqueues whole 4-byte records — Drain stops and returns
// ErrShortMailboxRead rather than handing handle a truncated code, mirroring
// the short-read abort in the teacher's mixer event reader.
func (mb *EventMailbox) Drain(handle func(EventCode)) error {
	for {
		r := mb.readPos.Load()
		w := mb.writePos.Load()
		available := w - r
		if available == 0 {
			return nil
		}
		if available < eventSize {
			return ErrShortMailboxRead
		}

		var rec [eventSize]byte
		pos := r & mb.mask
		first := uint64(len(mb.buf)) - pos
		if first >= eventSize {
			copy(rec[:], mb.buf[pos:pos+eventSize])
		} else {
			copy(rec[:first], mb.buf[pos:])
			copy(rec[first:], mb.buf[:eventSize-first])
		}

		mb.readPos.Store(r + eventSize)
		handle(EventCode(binary.LittleEndian.Uint32(rec[:])))
	}
}
