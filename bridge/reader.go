package bridge

import (
	"bytes"
	"fmt"
	"runtime"
	"time"

	"github.com/sistemicorp/P1150/cobs"
	"github.com/sistemicorp/P1150/serial"
)

// readerLoop pulls raw bytes off the port, splits them on 0x00, COBS-
// decodes each inter-delimiter chunk, and pushes successful decodes into
// the ring. It runs pinned to an OS thread at best-effort elevated
// priority, matching the original's reader being the latency-critical
// path on the link.
func (m *Manager) readerLoop() {
	defer m.wg.Done()
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	log := m.namedLogger("reader")
	elevatePriority(log)

	staging := make([]byte, m.opts.StagingBufSize)
	acc := make([]byte, 0, m.opts.FrameAccumulatorCap)
	decodeBuf := make([]byte, m.opts.FrameAccumulatorCap)

	backoff := time.Millisecond
	const backoffFloor = 100 * time.Microsecond

	for m.alive.Load() {
		port := m.getPort()
		if port == nil {
			return
		}

		n, err := port.Read(staging)
		if err != nil {
			m.metrics.PortIOErrors.Add(1)
			log.Debugw("port read error", "error", fmt.Errorf("%w: %v", ErrPortIO, err), "op", serialOp(err))
			time.Sleep(10 * time.Millisecond)
			continue
		}

		if n == 0 {
			ready, err := port.WaitReadable(backoff)
			if err != nil {
				m.metrics.PortIOErrors.Add(1)
				log.Debugw("port wait-readable error", "error", fmt.Errorf("%w: %v", ErrPortIO, err), "op", serialOp(err))
				time.Sleep(10 * time.Millisecond)
				continue
			}
			if ready == serial.Timeout {
				backoff *= 2
				if backoff > m.opts.ReaderIdleBackoffMax {
					backoff = m.opts.ReaderIdleBackoffMax
				}
			} else {
				backoff = backoffFloor
			}
			continue
		}
		backoff = backoffFloor

		chunk := staging[:n]
		for len(chunk) > 0 {
			idx := bytes.IndexByte(chunk, 0x00)
			var piece []byte
			if idx < 0 {
				piece = chunk
				chunk = nil
			} else {
				piece = chunk[:idx]
				chunk = chunk[idx+1:]
			}

			if len(piece) > 0 {
				if len(acc)+len(piece) > cap(acc) {
					m.metrics.FrameOverflow.Add(1)
					log.Debugw("frame accumulator overflow, resyncing", "error", ErrFrameOverflow)
					acc = acc[:0]
				} else {
					acc = append(acc, piece...)
				}
			}

			if idx >= 0 {
				if len(acc) > 0 {
					dn, derr := cobs.Decode(decodeBuf, acc)
					if derr != nil {
						m.metrics.DecodeFailures.Add(1)
						log.Debugw("cobs decode failed", "error", fmt.Errorf("%w: %v", ErrInvalidCobs, derr))
					} else if !m.ring.Push(decodeBuf[:dn]) {
						m.metrics.RingDropped.Add(1)
						log.Debugw("ring full, dropping frame", "error", ErrRingFull, "len", dn)
					}
				}
				acc = acc[:0]
			}
		}
	}
}
