package bridge

import (
	"fmt"
	"time"
)

// writerLoop pops outbound messages from the producer queue, opportunistically
// coalesces several into one buffer, and issues a single port write per
// batch. A message that does not fit the remaining buffer space starts the
// next batch; a message larger than the whole buffer is written on its own.
// No COBS encoding is applied here: outbound bytes are delivered
// verbatim, framing (if any) is the producer's responsibility.
func (m *Manager) writerLoop() {
	defer m.wg.Done()
	log := m.namedLogger("writer")

	buf := make([]byte, m.opts.WriterCoalesceBufSize)
	var pending []byte

	for m.alive.Load() && m.enabled.Load() {
		msg, ok := pending, pending != nil
		pending = nil
		if !ok {
			msg, ok = m.producer.PopTimeout(m.opts.WriterPopTimeout)
		}
		if !ok {
			time.Sleep(m.opts.WriterIdleYield)
			continue
		}

		n := copy(buf, msg)
		for n < len(buf) {
			more, ok := m.producer.PopNoWait()
			if !ok {
				break
			}
			if n+len(more) > len(buf) {
				pending = more
				break
			}
			n += copy(buf[n:], more)
		}
		batch := buf[:n]
		if len(msg) > len(buf) {
			batch = msg
		}

		port := m.getPort()
		if port == nil {
			return
		}
		written, err := port.Write(batch)
		if err != nil {
			m.metrics.PortIOErrors.Add(1)
			log.Debugw("port write error", "error", fmt.Errorf("%w: %v", ErrPortIO, err), "op", serialOp(err))
			continue
		}
		m.metrics.WriteBatches.Add(1)
		m.metrics.WriteBytes.Add(uint64(written))
	}
}
