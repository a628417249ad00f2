package bridge

import "fmt"

// deliverLoop drains the ring in batches and offers each frame to the
// consumer queue. It never holds the ring's internal lock while calling
// out to the consumer: Ring.Pop already copies the payload into a
// caller-owned buffer before returning.
func (m *Manager) deliverLoop() {
	defer m.wg.Done()
	log := m.namedLogger("deliver")

	scratch := make([]byte, 1<<16)

	for m.alive.Load() {
		if m.ring.Len() == 0 {
			if !m.ring.Wait(m.opts.DeliverWaitTimeout) {
				continue
			}
		}
		if !m.enabled.Load() {
			continue
		}

		for i := 0; i < m.opts.DeliverBatchMax; i++ {
			n, ok := m.ring.Pop(scratch)
			if !ok {
				break
			}
			frame := append([]byte(nil), scratch[:n]...)
			if err := m.consumer.OfferNoWait(frame); err != nil {
				m.metrics.ConsumerRejected.Add(1)
				log.Debugw("consumer rejected frame", "error", fmt.Errorf("%w: %v", ErrConsumerRejected, err), "len", n)
			}
		}
	}
}
