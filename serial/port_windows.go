package serial

import (
	"sync/atomic"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"
)

// x/sys/windows covers general file/overlapped-I/O primitives (CreateFile,
// ReadFile, WriteFile, CreateEvent, GetOverlappedResult) but not the
// COMM-specific Win32 API (DCB, COMMTIMEOUTS, COMSTAT, PurgeComm,
// EscapeCommFunction, ClearCommError). Those are bound directly off
// kernel32, the same approach every pure-Go serial library on Windows
// uses in the absence of syscall package coverage.
var (
	modkernel32         = windows.NewLazySystemDLL("kernel32.dll")
	procGetCommState    = modkernel32.NewProc("GetCommState")
	procSetCommState    = modkernel32.NewProc("SetCommState")
	procSetCommTimeouts = modkernel32.NewProc("SetCommTimeouts")
	procPurgeComm       = modkernel32.NewProc("PurgeComm")
	procEscapeCommFunc  = modkernel32.NewProc("EscapeCommFunction")
	procClearCommError  = modkernel32.NewProc("ClearCommError")
)

// dcb mirrors the Win32 DCB structure field for field; configure sets
// only the baud rate, byte size, parity, stop bits and flag bits.
type dcb struct {
	dcbLength  uint32
	baudRate   uint32
	bitFields  uint32
	wReserved  uint16
	xonLim     uint16
	xoffLim    uint16
	byteSize   byte
	parity     byte
	stopBits   byte
	xonChar    byte
	xoffChar   byte
	errorChar  byte
	eofChar    byte
	evtChar    byte
	wReserved1 uint16
}

const dcbFBinary = 1 << 0
const dcbFDtrControlEnable = 1 << 4 // fDtrControl bit 0 of the 2-bit field at offset 4

type commTimeouts struct {
	readIntervalTimeout         uint32
	readTotalTimeoutMultiplier  uint32
	readTotalTimeoutConstant    uint32
	writeTotalTimeoutMultiplier uint32
	writeTotalTimeoutConstant   uint32
}

// comStat mirrors the Win32 COMSTAT structure's queue-length fields.
type comStat struct {
	flags   uint32
	cbInQue uint32
	cbOutQue uint32
}

const maxDWORD = 0xFFFFFFFF

const (
	setDTR = 5 // Win32 SETDTR escape function code
	clrDTR = 6 // Win32 CLRDTR escape function code

	purgeRxClear = 0x0008
	purgeTxClear = 0x0004
)

type windowsPort struct {
	h      windows.Handle
	closed atomic.Bool
}

func openPlatform(name string, baud int) (Port, error) {
	pathPtr, err := windows.UTF16PtrFromString(`\\.\` + name)
	if err != nil {
		return nil, wrapErr("utf16 path", err)
	}
	h, err := windows.CreateFile(pathPtr,
		windows.GENERIC_READ|windows.GENERIC_WRITE,
		0, nil, windows.OPEN_EXISTING,
		windows.FILE_FLAG_OVERLAPPED, 0)
	if err != nil {
		return nil, wrapErr("create file", err)
	}
	p := &windowsPort{h: h}

	if err := p.configure(baud); err != nil {
		p.Close()
		return nil, err
	}
	if err := p.toggleDTR(); err != nil {
		p.Close()
		return nil, err
	}
	procPurgeComm.Call(uintptr(h), uintptr(purgeRxClear|purgeTxClear)) // best-effort
	return p, nil
}

func (p *windowsPort) configure(baud int) error {
	state := dcb{dcbLength: uint32(unsafe.Sizeof(dcb{}))}
	if r, _, callErr := procGetCommState.Call(uintptr(p.h), uintptr(unsafe.Pointer(&state))); r == 0 {
		return wrapErr("get comm state", callErr)
	}
	state.baudRate = uint32(baud)
	state.byteSize = 8
	state.parity = 0   // NOPARITY
	state.stopBits = 0 // ONESTOPBIT
	state.bitFields = dcbFBinary | dcbFDtrControlEnable
	if r, _, callErr := procSetCommState.Call(uintptr(p.h), uintptr(unsafe.Pointer(&state))); r == 0 {
		return wrapErr("set comm state", callErr)
	}

	timeouts := commTimeouts{readIntervalTimeout: maxDWORD}
	if r, _, callErr := procSetCommTimeouts.Call(uintptr(p.h), uintptr(unsafe.Pointer(&timeouts))); r == 0 {
		return wrapErr("set comm timeouts", callErr)
	}
	return nil
}

func (p *windowsPort) toggleDTR() error {
	if r, _, callErr := procEscapeCommFunc.Call(uintptr(p.h), uintptr(clrDTR)); r == 0 {
		return wrapErr("clear dtr", callErr)
	}
	time.Sleep(10 * time.Millisecond)
	if r, _, callErr := procEscapeCommFunc.Call(uintptr(p.h), uintptr(setDTR)); r == 0 {
		return wrapErr("set dtr", callErr)
	}
	return nil
}

func (p *windowsPort) Write(data []byte) (int, error) {
	if p.closed.Load() {
		return 0, ErrClosed
	}
	ov, err := newOverlapped()
	if err != nil {
		return 0, wrapErr("overlapped", err)
	}
	defer windows.CloseHandle(ov.HEvent)
	var n uint32
	if err := windows.WriteFile(p.h, data, &n, ov); err != nil && err != windows.ERROR_IO_PENDING {
		return 0, wrapErr("write", err)
	}
	if err := windows.GetOverlappedResult(p.h, ov, &n, true); err != nil {
		return int(n), wrapErr("write result", err)
	}
	return int(n), nil
}

// Read relies on ReadIntervalTimeout == MAXDWORD (set in configure), which
// makes ReadFile return immediately with whatever is currently buffered.
func (p *windowsPort) Read(data []byte) (int, error) {
	if p.closed.Load() {
		return 0, ErrClosed
	}
	ov, err := newOverlapped()
	if err != nil {
		return 0, wrapErr("overlapped", err)
	}
	defer windows.CloseHandle(ov.HEvent)
	var n uint32
	if err := windows.ReadFile(p.h, data, &n, ov); err != nil && err != windows.ERROR_IO_PENDING {
		return 0, wrapErr("read", err)
	}
	if err := windows.GetOverlappedResult(p.h, ov, &n, true); err != nil {
		return int(n), wrapErr("read result", err)
	}
	return int(n), nil
}

// WaitReadable polls ClearCommError's queue-length report for pending
// input bytes, since overlapped ReadFile above never blocks long enough
// to double as the wait primitive itself.
func (p *windowsPort) WaitReadable(timeout time.Duration) (ReadReady, error) {
	if p.closed.Load() {
		return Timeout, ErrClosed
	}
	deadline := time.Now().Add(timeout)
	for {
		var errs uint32
		var stat comStat
		if r, _, callErr := procClearCommError.Call(uintptr(p.h), uintptr(unsafe.Pointer(&errs)), uintptr(unsafe.Pointer(&stat))); r == 0 {
			return Timeout, wrapErr("clear comm error", callErr)
		}
		if stat.cbInQue > 0 {
			return Ready, nil
		}
		if time.Now().After(deadline) {
			return Timeout, nil
		}
		time.Sleep(500 * time.Microsecond)
	}
}

func (p *windowsPort) Close() error {
	if p.closed.Swap(true) {
		return ErrClosed
	}
	return windows.CloseHandle(p.h)
}

func newOverlapped() (*windows.Overlapped, error) {
	ev, err := windows.CreateEvent(nil, 1, 0, nil)
	if err != nil {
		return nil, err
	}
	return &windows.Overlapped{HEvent: ev}, nil
}
