// Package metrics holds the atomic counters the bridge workers update and
// the Manager exposes via Snapshot.
package metrics

import "sync/atomic"

// Counters are updated from multiple goroutines without a lock.
type Counters struct {
	RingDropped      atomic.Uint64
	DecodeFailures   atomic.Uint64
	ConsumerRejected atomic.Uint64
	FrameOverflow    atomic.Uint64
	PortIOErrors     atomic.Uint64
	WriteBatches     atomic.Uint64
	WriteBytes       atomic.Uint64
}

// Snapshot is a point-in-time copy of Counters safe to read without races.
type Snapshot struct {
	RingDropped      uint64
	DecodeFailures   uint64
	ConsumerRejected uint64
	FrameOverflow    uint64
	PortIOErrors     uint64
	WriteBatches     uint64
	WriteBytes       uint64
}

// Snapshot reads every counter once and returns the result.
func (c *Counters) Snapshot() Snapshot {
	return Snapshot{
		RingDropped:      c.RingDropped.Load(),
		DecodeFailures:   c.DecodeFailures.Load(),
		ConsumerRejected: c.ConsumerRejected.Load(),
		FrameOverflow:    c.FrameOverflow.Load(),
		PortIOErrors:     c.PortIOErrors.Load(),
		WriteBatches:     c.WriteBatches.Load(),
		WriteBytes:       c.WriteBytes.Load(),
	}
}
