// Package bridge wires the COBS codec, the serial port adapter, and the
// frame ring into the three-goroutine reader/deliver/writer pipeline and
// the Manager that owns their lifecycle.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/sistemicorp/P1150/internal/logging"
	"github.com/sistemicorp/P1150/internal/metrics"
	"github.com/sistemicorp/P1150/queue"
	"github.com/sistemicorp/P1150/ring"
	"github.com/sistemicorp/P1150/serial"
)

type state int32

const (
	stateCreated state = iota
	stateRunning
	stateStopped
)

// Manager owns a serial port, a frame ring, and the reader/deliver/writer
// goroutines that move bytes between them and the two host-supplied
// queues. Lifecycle is one-way: Created -> Running -> Stopped.
type Manager struct {
	portName string
	baud     int
	opts     *Options

	producer queue.ProducerQueue
	consumer queue.ConsumerQueue

	portMu sync.RWMutex
	port   serial.Port

	ring *ring.Ring

	alive   atomic.Bool
	enabled atomic.Bool
	st      atomic.Int32

	wg           sync.WaitGroup
	shutdownOnce sync.Once
	shutdownErr  error

	log     *zap.SugaredLogger
	metrics *metrics.Counters

	// openPort defaults to serial.Open; tests in this package override it
	// to inject a FakePort or PTY pair without touching real hardware.
	openPort func(name string, baud int) (serial.Port, error)
}

// New constructs a Manager for the named port at the given baud. producer
// and consumer must be non-nil; opts may be nil to take every default.
func New(portName string, baud int, producer queue.ProducerQueue, consumer queue.ConsumerQueue, opts *Options) (*Manager, error) {
	if producer == nil || consumer == nil {
		return nil, ErrAllocation
	}
	m := &Manager{
		portName: portName,
		baud:     baud,
		opts:     opts.withDefaults(),
		producer: producer,
		consumer: consumer,
		log:      logging.New(),
		metrics:  &metrics.Counters{},
		openPort: serial.Open,
	}
	m.st.Store(int32(stateCreated))
	return m, nil
}

// SetPortOpener overrides how Start obtains a serial.Port, for callers
// that want to hand the manager an already-open port (e.g. one half of
// a loopback PTY pair) instead of dialing portName/baud through
// serial.Open. Must be called before Start.
func (m *Manager) SetPortOpener(open func(name string, baud int) (serial.Port, error)) error {
	if state(m.st.Load()) != stateCreated {
		return fmt.Errorf("bridge: cannot set port opener after Start")
	}
	m.openPort = open
	return nil
}

func (m *Manager) getPort() serial.Port {
	m.portMu.RLock()
	defer m.portMu.RUnlock()
	return m.port
}

func (m *Manager) setPort(p serial.Port) {
	m.portMu.Lock()
	m.port = p
	m.portMu.Unlock()
}

// Start opens the port and launches the reader, delivery, and writer
// goroutines. Idempotent: calling Start while already running is a no-op.
func (m *Manager) Start() error {
	if m.alive.Load() {
		return nil
	}
	if state(m.st.Load()) == stateStopped {
		return fmt.Errorf("bridge: manager already stopped")
	}

	port, err := m.openPort(m.portName, m.baud)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPortOpen, err)
	}
	m.setPort(port)
	m.ring = ring.New(m.opts.RingCapacity)

	m.alive.Store(true)
	m.enabled.Store(true)
	m.st.Store(int32(stateRunning))

	m.wg.Add(3)
	go m.readerLoop()
	go m.deliverLoop()
	go m.writerLoop()
	return nil
}

// IsRunning reports whether the manager is alive, enabled, and holding
// an open port.
func (m *Manager) IsRunning() bool {
	return m.alive.Load() && m.enabled.Load() && m.getPort() != nil
}

// Snapshot returns a point-in-time copy of the bridge's counters.
func (m *Manager) Snapshot() metrics.Snapshot {
	return m.metrics.Snapshot()
}

// Shutdown stops the manager, blocking until all three goroutines have
// joined. Idempotent and safe to call even if Start was never called.
func (m *Manager) Shutdown() {
	_ = m.ShutdownContext(context.Background())
}

// ShutdownContext stops the manager the same way Shutdown does, but
// returns ctx.Err() if the goroutines have not joined by the time ctx is
// done, instead of blocking forever.
func (m *Manager) ShutdownContext(ctx context.Context) error {
	m.shutdownOnce.Do(func() {
		m.enabled.Store(false)
		m.alive.Store(false)
		if m.ring != nil {
			m.ring.Close()
		}
		if p := m.getPort(); p != nil {
			p.Close()
		}

		joined := make(chan struct{})
		go func() {
			m.wg.Wait()
			close(joined)
		}()

		select {
		case <-joined:
			m.st.Store(int32(stateStopped))
		case <-ctx.Done():
			m.shutdownErr = ctx.Err()
			m.st.Store(int32(stateStopped))
		}
	})
	return m.shutdownErr
}

// namedLogger tags the bridge's sugared logger with a worker name.
func (m *Manager) namedLogger(component string) *zap.SugaredLogger {
	return logging.Named(m.log, component)
}

// serialOp extracts the failing operation name from a serial.Error, for
// log fields; returns "" for errors that didn't originate in serial.
func serialOp(err error) string {
	var serr serial.Error
	if errors.As(err, &serr) {
		return serr.Op()
	}
	return ""
}
