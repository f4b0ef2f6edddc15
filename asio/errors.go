package asio

import "errors"

// Error taxonomy for the output controller. Each sentinel is returned
// wrapped with additional context via fmt.Errorf's %w verb; test against
// the taxonomy with errors.Is, not string matching.
var (
	ErrDriverUnavailable = errors.New("asio: driver unavailable")
	ErrFormatUnsupported = errors.New("asio: format unsupported by driver")
	ErrRateUnsupported   = errors.New("asio: sample rate unsupported by driver")
	ErrResourceExhausted = errors.New("asio: resource exhausted")
	ErrDriverCallFailed  = errors.New("asio: driver call failed")
	ErrStateViolation    = errors.New("asio: operation invalid in current state")

	// ErrShortMailboxRead signals mailbox corruption: a partial event record
	// was found where only whole records should exist. The caller should
	// abort the current drain cycle rather than trust what it read.
	ErrShortMailboxRead = errors.New("asio: short read draining event mailbox")
)
