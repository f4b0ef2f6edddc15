package asio

import "time"

// housekeepingInterval models the original event queue timer's
// dispatch_source_set_timer(NSEC_PER_SEC/5, NSEC_PER_SEC/3): a roughly 5Hz
// drain with roughly 3Hz worth of coalescing leeway. Go's time.Ticker has
// no leeway parameter; the leeway is expressed in intent — draining the
// whole mailbox and collapsing repeats on every tick already absorbs the
// bursts the leeway exists to tolerate, rather than in the ticker itself.
const housekeepingInterval = 200 * time.Millisecond

// housekeeping runs the periodic mailbox drain on its own goroutine,
// entirely outside the RT audio thread (§5's Housekeeping domain).
type housekeeping struct {
	c       *Controller
	mailbox *EventMailbox

	ticker *time.Ticker
	done   chan struct{}
}

func newHousekeeping(mailbox *EventMailbox, c *Controller) *housekeeping {
	return &housekeeping{c: c, mailbox: mailbox, done: make(chan struct{})}
}

func (h *housekeeping) start() {
	h.ticker = time.NewTicker(housekeepingInterval)
	go func() {
		for {
			select {
			case <-h.ticker.C:
				h.drainOnce()
			case <-h.done:
				return
			}
		}
	}()
}

func (h *housekeeping) stop() {
	if h.ticker != nil {
		h.ticker.Stop()
	}
	close(h.done)
}

// drainOnce drains every pending mailbox event and reacts to it. Repeated
// reset or stop requests queued within a single cycle collapse into one
// action each (§4.7's idempotence requirement); overload is logged once per
// occurrence, since each is a distinct event rather than a request to
// deduplicate. A short read aborts the rest of this cycle without acting on
// whatever was read, mirroring the teacher's ReadEvent short-read handling —
// the next tick tries again from wherever the ring actually is.
func (h *housekeeping) drainOnce() {
	var sawReset, sawStop bool
	err := h.mailbox.Drain(func(code EventCode) {
		switch code {
		case EventResetNeeded:
			sawReset = true
		case EventStopPlayback:
			sawStop = true
		case EventOverload:
			h.c.logger.Printf("asio: output overload reported by driver")
		}
	})
	if err != nil {
		h.c.logger.Printf("asio: %v", err)
		return
	}

	if sawReset {
		if err := h.c.Reset(); err != nil {
			h.c.logger.Printf("asio: reset requested by driver failed: %v", err)
		}
	}
	if sawStop {
		if err := h.c.Stop(); err != nil && h.c.State() == Running {
			h.c.logger.Printf("asio: stop requested by driver failed: %v", err)
		}
	}
}
