package bridge

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sistemicorp/P1150/queue"
	"github.com/sistemicorp/P1150/serial"
)

func newTestManager(t *testing.T, fake *serial.FakePort, producer, consumer *queue.Bounded) *Manager {
	t.Helper()
	m, err := New("fake0", 115200, producer, consumer, &Options{
		RingCapacity:         1 << 16,
		DeliverWaitTimeout:   5 * time.Millisecond,
		ReaderIdleBackoffMax: time.Millisecond,
		WriterPopTimeout:     2 * time.Millisecond,
		WriterIdleYield:      time.Millisecond,
	})
	require.NoError(t, err)
	m.openPort = func(string, int) (serial.Port, error) { return fake, nil }
	return m
}

func drainMessages(t *testing.T, consumer *queue.Bounded, want int, timeout time.Duration) [][]byte {
	t.Helper()
	deadline := time.Now().Add(timeout)
	var got [][]byte
	for len(got) < want && time.Now().Before(deadline) {
		if m, ok := consumer.PopTimeout(10 * time.Millisecond); ok {
			got = append(got, m)
		}
	}
	return got
}

func TestPipelineSingleSegment(t *testing.T) {
	fake := serial.NewFakePort()
	producer := queue.NewBounded(4)
	consumer := queue.NewBounded(16)
	m := newTestManager(t, fake, producer, consumer)
	require.NoError(t, m.Start())
	defer m.Shutdown()

	fake.Feed([]byte{0x03, 0x11, 0x22, 0x02, 0x33, 0x00})

	got := drainMessages(t, consumer, 1, time.Second)
	require.Len(t, got, 1)
	assert.Equal(t, []byte{0x11, 0x22, 0x00, 0x33}, got[0])
}

func TestPipelineEmptyMessages(t *testing.T) {
	fake := serial.NewFakePort()
	producer := queue.NewBounded(4)
	consumer := queue.NewBounded(16)
	m := newTestManager(t, fake, producer, consumer)
	require.NoError(t, m.Start())
	defer m.Shutdown()

	fake.Feed([]byte{0x01, 0x00, 0x01, 0x00, 0x01, 0x00})

	got := drainMessages(t, consumer, 3, time.Second)
	require.Len(t, got, 3)
	for _, msg := range got {
		assert.Empty(t, msg)
	}
}

func TestPipeline254Run(t *testing.T) {
	fake := serial.NewFakePort()
	producer := queue.NewBounded(4)
	consumer := queue.NewBounded(16)
	m := newTestManager(t, fake, producer, consumer)
	require.NoError(t, m.Start())
	defer m.Shutdown()

	stream := make([]byte, 0, 256)
	stream = append(stream, 0xFF)
	for i := 0; i < 254; i++ {
		stream = append(stream, 0xAA)
	}
	stream = append(stream, 0x00)
	fake.Feed(stream)

	got := drainMessages(t, consumer, 1, time.Second)
	require.Len(t, got, 1)
	assert.Len(t, got[0], 254)
	for _, b := range got[0] {
		assert.Equal(t, byte(0xAA), b)
	}
}

// A segment whose declared code byte promises more payload than the
// stream actually delivers before the next 0x00 fails COBS decoding and
// is dropped; the reader resyncs at the delimiter and the next, valid,
// segment is still delivered.
func TestPipelineResyncAfterInvalidSegment(t *testing.T) {
	fake := serial.NewFakePort()
	producer := queue.NewBounded(4)
	consumer := queue.NewBounded(16)
	m := newTestManager(t, fake, producer, consumer)
	require.NoError(t, m.Start())
	defer m.Shutdown()

	stream := []byte{
		0x05, 0x11, 0x22, 0x00, // truncated: code=5 promises 4 bytes, only 2 present
		0x03, 0x11, 0x22, 0x02, 0x33, 0x00, // valid
	}
	fake.Feed(stream)

	got := drainMessages(t, consumer, 1, time.Second)
	require.Len(t, got, 1)
	assert.Equal(t, []byte{0x11, 0x22, 0x00, 0x33}, got[0])
	assert.Equal(t, uint64(1), m.Snapshot().DecodeFailures)
}

func TestOutboundCoalescingUnderBackpressure(t *testing.T) {
	fake := serial.NewFakePort()
	producer := queue.NewBounded(4096)
	consumer := queue.NewBounded(16)
	m := newTestManager(t, fake, producer, consumer)

	const count = 2000
	const size = 32
	for i := 0; i < count; i++ {
		msg := make([]byte, size)
		for j := range msg {
			msg[j] = byte(i)
		}
		require.True(t, producer.TryPush(msg))
	}

	require.NoError(t, m.Start())
	defer m.Shutdown()

	deadline := time.Now().Add(5 * time.Second)
	for len(fake.Written()) < count*size && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	written := fake.Written()
	require.Len(t, written, count*size)
	for i := 0; i < count; i++ {
		for j := 0; j < size; j++ {
			require.Equal(t, byte(i), written[i*size+j], "byte mismatch at message %d offset %d", i, j)
		}
	}
}

func TestShutdownDuringSustainedTraffic(t *testing.T) {
	fake := serial.NewFakePort()
	producer := queue.NewBounded(4)
	consumer := queue.NewBounded(4096)
	m := newTestManager(t, fake, producer, consumer)
	require.NoError(t, m.Start())

	stop := make(chan struct{})
	go func() {
		for {
			select {
			case <-stop:
				return
			default:
				fake.Feed([]byte{0x01, 0x00})
			}
		}
	}()

	time.Sleep(50 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	err := m.ShutdownContext(ctx)
	close(stop)

	require.NoError(t, err)
	assert.False(t, m.IsRunning())
}
