// Package asio bridges a high-level audio player to a low-latency,
// double-buffered driver interface modeled on the ASIO 2 callback protocol:
// a state-machine Controller (Closed -> Open -> Configured -> Running), an
// RT-safe buffer-switch callback adapter, and a lock-free EventMailbox
// carrying control-plane notifications (reset requests, overload) from the
// driver's own audio thread to an ordinary goroutine that can safely act on
// them.
//
// Three concurrency domains meet here and nowhere else:
//
//   - RT-audio: the driver's own callback thread. Only bufferSwitchTimeInfo
//     and asioMessage run here. Neither may allocate, block, or take a lock
//     the Producer might be holding.
//   - Housekeeping: a goroutine ticking at roughly 5Hz that drains the
//     EventMailbox and reacts to what it finds.
//   - Control: whatever goroutine calls Open, SetupForDecoder, Start, Stop,
//     RequestStop, Reset, or Close. The package assumes one caller at a
//     time here, the same assumption the teacher's PCM/Mixer types make
//     about their own lifecycle methods.
package asio
