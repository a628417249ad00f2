package serial

import (
	"bytes"
	"sync"
	"sync/atomic"
	"time"
)

// FakePort is an in-memory Port double: Feed injects bytes that Read will
// return, and Write accumulates into an internal buffer retrievable via
// Written. Safe for concurrent use by one reader goroutine and one writer
// goroutine, matching how bridge drives a real Port.
type FakePort struct {
	mu      sync.Mutex
	inbound bytes.Buffer
	written bytes.Buffer
	signal  chan struct{}
	closed  atomic.Bool
}

// NewFakePort returns a ready-to-use fake port with nothing buffered.
func NewFakePort() *FakePort {
	return &FakePort{signal: make(chan struct{}, 1)}
}

// Feed appends b to the bytes a subsequent Read will drain from.
func (f *FakePort) Feed(b []byte) {
	f.mu.Lock()
	f.inbound.Write(b)
	f.mu.Unlock()
	select {
	case f.signal <- struct{}{}:
	default:
	}
}

func (f *FakePort) Read(p []byte) (int, error) {
	if f.closed.Load() {
		return 0, ErrClosed
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.inbound.Len() == 0 {
		return 0, nil
	}
	return f.inbound.Read(p)
}

func (f *FakePort) Write(p []byte) (int, error) {
	if f.closed.Load() {
		return 0, ErrClosed
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.written.Write(p)
}

// WaitReadable blocks until Feed is called or timeout elapses.
func (f *FakePort) WaitReadable(timeout time.Duration) (ReadReady, error) {
	if f.closed.Load() {
		return Timeout, ErrClosed
	}
	f.mu.Lock()
	has := f.inbound.Len() > 0
	f.mu.Unlock()
	if has {
		return Ready, nil
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-f.signal:
		return Ready, nil
	case <-timer.C:
		return Timeout, nil
	}
}

func (f *FakePort) Close() error {
	if f.closed.Swap(true) {
		return ErrClosed
	}
	return nil
}

// Written returns a copy of everything written to the port so far.
func (f *FakePort) Written() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]byte(nil), f.written.Bytes()...)
}
