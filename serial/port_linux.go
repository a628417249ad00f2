package serial

import (
	"sync/atomic"
	"syscall"
	"time"
	"unsafe"

	"github.com/daedaluz/fdev/poll"
	ioctl "github.com/daedaluz/goioctl"
)

// linuxPort adapts the teacher's termios/ioctl Port to the serial.Port
// interface: non-blocking open, raw mode, DTR reset toggle, flow control
// disabled, canonical baud only.
type linuxPort struct {
	f      int
	closed atomic.Bool
}

func openPlatform(name string, baud int) (Port, error) {
	fd, err := syscall.Open(name, syscall.O_RDWR|syscall.O_NOCTTY|syscall.O_NONBLOCK, 0)
	if err != nil {
		return nil, wrapErr("open", err)
	}
	p := &linuxPort{f: fd}

	attrs, err := p.getAttr()
	if err != nil {
		p.Close()
		return nil, wrapErr("get attr", err)
	}
	attrs.MakeRaw()
	attrs.SetSpeed(baudToCFlag[baud])
	attrs.Cflag |= CLOCAL | CREAD
	attrs.Cflag &^= CRTSCTS
	attrs.Iflag &^= IXON | IXOFF
	if err := p.setAttr(attrs); err != nil {
		p.Close()
		return nil, wrapErr("set attr", err)
	}

	if err := p.toggleDTR(); err != nil {
		p.Close()
		return nil, wrapErr("dtr toggle", err)
	}
	if err := p.flush(TCIOFLUSH); err != nil {
		p.Close()
		return nil, wrapErr("flush", err)
	}
	return p, nil
}

// toggleDTR clears then, after a brief settle, re-asserts DTR. Many
// embedded targets treat this edge as a reset signal.
func (p *linuxPort) toggleDTR() error {
	if err := p.clearModemLines(TIOCM_DTR); err != nil {
		return err
	}
	time.Sleep(10 * time.Millisecond)
	return p.setModemLines(TIOCM_DTR)
}

func (p *linuxPort) getAttr() (*Termios, error) {
	attrs := &Termios{}
	if err := ioctl.Ioctl(uintptr(p.f), tcgets, uintptr(unsafe.Pointer(attrs))); err != nil {
		return nil, err
	}
	return attrs, nil
}

func (p *linuxPort) setAttr(attrs *Termios) error {
	return ioctl.Ioctl(uintptr(p.f), tcsets+uintptr(TCSANOW), uintptr(unsafe.Pointer(attrs)))
}

func (p *linuxPort) setModemLines(line ModemLine) error {
	return ioctl.Ioctl(uintptr(p.f), tiocmbis, uintptr(unsafe.Pointer(&line)))
}

func (p *linuxPort) clearModemLines(line ModemLine) error {
	return ioctl.Ioctl(uintptr(p.f), tiocmbic, uintptr(unsafe.Pointer(&line)))
}

func (p *linuxPort) flush(q Queue) error {
	return ioctl.Ioctl(uintptr(p.f), tcflsh, uintptr(q))
}

func (p *linuxPort) Write(data []byte) (int, error) {
	if p.closed.Load() {
		return 0, ErrClosed
	}
	n, err := syscall.Write(p.f, data)
	if err != nil {
		return n, wrapErr("write", err)
	}
	return n, nil
}

func (p *linuxPort) Read(data []byte) (int, error) {
	if p.closed.Load() {
		return 0, ErrClosed
	}
	n, err := syscall.Read(p.f, data)
	if err == syscall.EAGAIN || err == syscall.EWOULDBLOCK {
		return 0, nil
	}
	if err != nil {
		return n, wrapErr("read", err)
	}
	return n, nil
}

// WaitReadable blocks up to timeout for the descriptor to become
// readable. A poll timeout reports Timeout, not an error.
func (p *linuxPort) WaitReadable(timeout time.Duration) (ReadReady, error) {
	if p.closed.Load() {
		return Timeout, ErrClosed
	}
	err := poll.WaitInput(p.f, timeout)
	if err == nil {
		return Ready, nil
	}
	if err == syscall.ETIMEDOUT || err == syscall.EAGAIN {
		return Timeout, nil
	}
	return Timeout, wrapErr("wait readable", err)
}

func (p *linuxPort) Close() error {
	if p.closed.Swap(true) {
		return ErrClosed
	}
	fd := p.f
	p.f = -1
	return syscall.Close(fd)
}
