package bridge

import "errors"

var (
	// ErrPortOpen is returned by Start when the underlying serial port
	// fails to open.
	ErrPortOpen = errors.New("bridge: port open failed")

	// ErrPortIO marks a read/write failure against the open port.
	ErrPortIO = errors.New("bridge: port i/o error")

	// ErrFrameOverflow marks the reader's frame accumulator overflowing
	// before a delimiter arrived; the partial frame is discarded.
	ErrFrameOverflow = errors.New("bridge: frame accumulator overflow")

	// ErrInvalidCobs marks a segment that failed COBS decoding.
	ErrInvalidCobs = errors.New("bridge: invalid cobs segment")

	// ErrRingFull marks a frame dropped because the ring had no space.
	ErrRingFull = errors.New("bridge: ring full")

	// ErrConsumerRejected marks a frame the consumer queue refused.
	ErrConsumerRejected = errors.New("bridge: consumer queue rejected frame")

	// ErrAllocation is returned by New when required dependencies are missing.
	ErrAllocation = errors.New("bridge: missing required dependency")
)
