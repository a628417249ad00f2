package serial

import (
	"strconv"
	"syscall"
	"unsafe"

	ioctl "github.com/daedaluz/goioctl"
)

var (
	tiocgptn   = ioctl.IOR('T', 0x30, unsafe.Sizeof(uint32(0)))
	tiocsptlck = ioctl.IOW('T', 0x31, unsafe.Sizeof(int32(0)))
)

// OpenPTY opens a fresh pseudoterminal pair for loopback testing: writes
// to the master arrive as reads on the slave and vice versa, so bridge
// tests can exercise a real non-blocking fd pair without hardware.
// Linux-only, grounded in the teacher's pty_linux.go intent but rebuilt
// on the ioctl numbers the teacher's own ioctl_linux.go already defines,
// since the teacher's SetLockPT/GetPTPeer calls have no corresponding
// methods anywhere in the retrieved Port implementation.
func OpenPTY() (master Port, slave Port, err error) {
	fd, err := syscall.Open("/dev/ptmx", syscall.O_RDWR|syscall.O_NOCTTY|syscall.O_NONBLOCK, 0)
	if err != nil {
		return nil, nil, wrapErr("open ptmx", err)
	}
	mp := &linuxPort{f: fd}

	var locked int32
	if err := ioctl.Ioctl(uintptr(fd), tiocsptlck, uintptr(unsafe.Pointer(&locked))); err != nil {
		mp.Close()
		return nil, nil, wrapErr("unlock pty", err)
	}

	var n uint32
	if err := ioctl.Ioctl(uintptr(fd), tiocgptn, uintptr(unsafe.Pointer(&n))); err != nil {
		mp.Close()
		return nil, nil, wrapErr("get pty number", err)
	}

	slaveFd, err := syscall.Open("/dev/pts/"+strconv.Itoa(int(n)), syscall.O_RDWR|syscall.O_NOCTTY|syscall.O_NONBLOCK, 0)
	if err != nil {
		mp.Close()
		return nil, nil, wrapErr("open pty slave", err)
	}
	sp := &linuxPort{f: slaveFd}

	attrs, err := sp.getAttr()
	if err != nil {
		mp.Close()
		sp.Close()
		return nil, nil, wrapErr("get slave attr", err)
	}
	attrs.MakeRaw()
	if err := sp.setAttr(attrs); err != nil {
		mp.Close()
		sp.Close()
		return nil, nil, wrapErr("set slave attr", err)
	}

	return mp, sp, nil
}
