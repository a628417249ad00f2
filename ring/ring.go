// Package ring implements the bounded single-producer/single-consumer
// byte ring the bridge reader and delivery worker share: each entry is a
// uint16-LE length prefix followed by its payload, stored contiguously
// with wraparound, so the ring never allocates on the hot path.
package ring

import (
	"encoding/binary"
	"sync"
	"time"
)

const maxFrameLen = 0xFFFF

// Ring is a fixed-capacity byte ring holding length-prefixed frames.
// head and tail are monotonically increasing byte offsets; only their
// difference and their value modulo the buffer size are meaningful.
type Ring struct {
	mu      sync.Mutex
	cond    *sync.Cond
	buf     []byte
	size    uint64
	head    uint64
	tail    uint64
	dropped uint64
	closed  bool
}

// New allocates a ring with the given byte capacity.
func New(capacity int) *Ring {
	r := &Ring{buf: make([]byte, capacity), size: uint64(capacity)}
	r.cond = sync.NewCond(&r.mu)
	return r
}

func (r *Ring) writeAt(pos uint64, data []byte) {
	start := pos % r.size
	n := copy(r.buf[start:], data)
	if n < len(data) {
		copy(r.buf, data[n:])
	}
}

func (r *Ring) readAt(pos uint64, dst []byte) {
	start := pos % r.size
	n := copy(dst, r.buf[start:])
	if n < len(dst) {
		copy(dst[n:], r.buf)
	}
}

// Push appends a length-prefixed entry. It never blocks: if there is not
// enough free space (or b exceeds the 64 KiB length-prefix range), it
// increments the dropped counter and returns false.
func (r *Ring) Push(b []byte) bool {
	if len(b) > maxFrameLen {
		r.mu.Lock()
		r.dropped++
		r.mu.Unlock()
		return false
	}
	needed := uint64(2 + len(b))

	r.mu.Lock()
	available := r.size - (r.head - r.tail)
	if needed > available {
		r.dropped++
		r.mu.Unlock()
		return false
	}
	var lenBuf [2]byte
	binary.LittleEndian.PutUint16(lenBuf[:], uint16(len(b)))
	r.writeAt(r.head, lenBuf[:])
	r.writeAt(r.head+2, b)
	r.head += needed
	r.mu.Unlock()

	r.cond.Broadcast()
	return true
}

// Pop removes the oldest entry and copies its payload into dst, which
// must be at least as large as the entry. Returns the payload length and
// true, or (0, false) if the ring is empty.
func (r *Ring) Pop(dst []byte) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.head == r.tail {
		return 0, false
	}
	var lenBuf [2]byte
	r.readAt(r.tail, lenBuf[:])
	l := int(binary.LittleEndian.Uint16(lenBuf[:]))
	if l > len(dst) {
		// Caller's scratch buffer is undersized for this entry; drop it
		// rather than overrun dst or leave the ring stuck on it.
		r.tail += uint64(2 + l)
		return 0, false
	}
	r.readAt(r.tail+2, dst[:l])
	r.tail += uint64(2 + l)
	return l, true
}

// Signal wakes any goroutine blocked in Wait without pushing anything.
func (r *Ring) Signal() {
	r.mu.Lock()
	r.cond.Broadcast()
	r.mu.Unlock()
}

// Wait blocks until a push occurs, the ring is closed, or timeout
// elapses, returning whether an entry is currently available to Pop.
func (r *Ring) Wait(timeout time.Duration) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.head != r.tail || r.closed {
		return r.head != r.tail
	}

	done := make(chan struct{})
	timer := time.AfterFunc(timeout, func() {
		close(done)
		r.mu.Lock()
		r.cond.Broadcast()
		r.mu.Unlock()
	})
	defer timer.Stop()

	for r.head == r.tail && !r.closed {
		select {
		case <-done:
			return false
		default:
		}
		r.cond.Wait()
	}
	return r.head != r.tail
}

// Close marks the ring drained for shutdown and wakes any waiter; it
// does not discard buffered entries already pushed.
func (r *Ring) Close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	r.cond.Broadcast()
}

// Dropped returns the number of entries rejected by Push so far.
func (r *Ring) Dropped() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropped
}

// Len returns the number of bytes currently buffered (header + payload).
func (r *Ring) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int(r.head - r.tail)
}

// Cap returns the ring's total byte capacity.
func (r *Ring) Cap() int {
	return int(r.size)
}
