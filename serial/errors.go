package serial

import "syscall"

// Error wraps a port-level failure with the operation that produced it
// (open/read/write/wait readable/...) so callers one layer up can log or
// branch on which step failed, not just that something did.
type Error struct {
	op  string
	err error
}

func (e Error) Error() string {
	if e.op != "" {
		if e.err != nil {
			return e.op + ": " + e.err.Error()
		}
		return e.op
	}
	if e.err != nil {
		return e.err.Error()
	}
	return ""
}

func (e Error) Unwrap() error {
	return e.err
}

// Op reports which operation failed ("open", "read", "write", ...), for
// callers that want more than the formatted message.
func (e Error) Op() string {
	return e.op
}

func wrapErr(op string, e error) error {
	if e == nil {
		return nil
	}
	return Error{op: op, err: e}
}

var (
	// ErrClosed is returned by Read/Write/WaitReadable on a closed port.
	ErrClosed = Error{op: "port already closed", err: syscall.EBADF}
)
