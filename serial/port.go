// Package serial provides a minimal, non-blocking byte-level port
// abstraction over a physical or pseudo serial line, with platform
// adapters for Linux (termios/ioctl) and Windows (overlapped I/O).
package serial

import "time"

// ReadReady is the result of a WaitReadable call.
type ReadReady int

const (
	// Timeout means no data became available before the deadline.
	Timeout ReadReady = iota
	// Ready means the port has at least one byte buffered for Read.
	Ready
)

// Port is the capability set the bridge package depends on. Reads never
// block for more than the platform's minimal query and return 0 when
// nothing is currently buffered; writes may be short.
type Port interface {
	Read(p []byte) (n int, err error)
	Write(p []byte) (n int, err error)
	WaitReadable(timeout time.Duration) (ReadReady, error)
	Close() error
}

// canonicalBauds are the rates §4.2 requires to be accepted directly.
// Anything else falls back to 115200.
var canonicalBauds = map[int]bool{
	9600:   true,
	19200:  true,
	38400:  true,
	57600:  true,
	115200: true,
}

func normalizeBaud(baud int) int {
	if canonicalBauds[baud] {
		return baud
	}
	return 115200
}

// Open opens the named port at the given baud rate, performing the DTR
// reset toggle and disabling flow control. baud is normalized to one of
// the canonical rates before the platform adapter configures the line.
func Open(name string, baud int) (Port, error) {
	return openPlatform(name, normalizeBaud(baud))
}
