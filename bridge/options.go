package bridge

import "time"

// Options holds the tunable knobs for a Manager. Zero values are filled
// in by withDefaults; callers normally construct Options{} and override
// only the fields they care about.
type Options struct {
	// RingCapacity is the frame ring's total byte capacity.
	RingCapacity int

	// StagingBufSize is the reader's per-read scratch buffer size.
	StagingBufSize int

	// FrameAccumulatorCap bounds how large an in-progress (undelimited)
	// frame may grow before the reader resyncs by discarding it.
	FrameAccumulatorCap int

	// ReaderIdleBackoffMax caps the reader's adaptive backoff between
	// empty reads.
	ReaderIdleBackoffMax time.Duration

	// DeliverBatchMax is the maximum number of frames drained from the
	// ring per delivery-worker wake.
	DeliverBatchMax int

	// DeliverWaitTimeout bounds how long the delivery worker waits on
	// the ring's signal when it finds the ring empty.
	DeliverWaitTimeout time.Duration

	// WriterCoalesceBufSize bounds how many outbound bytes the writer
	// aggregates into a single port write.
	WriterCoalesceBufSize int

	// WriterPopTimeout is the writer's blocking-pop timeout.
	WriterPopTimeout time.Duration

	// WriterIdleYield is how long the writer sleeps after an empty pop.
	WriterIdleYield time.Duration
}

func (o *Options) withDefaults() *Options {
	out := Options{}
	if o != nil {
		out = *o
	}
	if out.RingCapacity <= 0 {
		out.RingCapacity = 1 << 20 // 1 MiB
	}
	if out.StagingBufSize <= 0 {
		out.StagingBufSize = 16 << 10 // 16 KiB
	}
	if out.FrameAccumulatorCap <= 0 {
		out.FrameAccumulatorCap = 64 << 10 // 64 KiB
	}
	if out.ReaderIdleBackoffMax <= 0 {
		out.ReaderIdleBackoffMax = 3 * time.Millisecond
	}
	if out.DeliverBatchMax <= 0 {
		out.DeliverBatchMax = 256
	}
	if out.DeliverWaitTimeout <= 0 {
		out.DeliverWaitTimeout = 10 * time.Millisecond
	}
	if out.WriterCoalesceBufSize <= 0 {
		out.WriterCoalesceBufSize = 64 << 10 // 64 KiB
	}
	if out.WriterPopTimeout <= 0 {
		out.WriterPopTimeout = time.Millisecond
	}
	if out.WriterIdleYield <= 0 {
		out.WriterIdleYield = 500 * time.Microsecond
	}
	return &out
}
