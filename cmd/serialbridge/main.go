// Command serialbridge is a manual exerciser for the bridge package: it
// opens a real serial port (or, with -pty, a loopback pseudo-terminal
// pair) and relays inbound frames to stdout as hex lines while relaying
// stdin lines (also hex) to the port as outbound messages.
package main

import (
	"bufio"
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/sistemicorp/P1150/bridge"
	"github.com/sistemicorp/P1150/internal/logging"
	"github.com/sistemicorp/P1150/queue"
	"github.com/sistemicorp/P1150/serial"
)

func main() {
	var (
		port = flag.String("port", "/dev/ttyUSB0", "serial device to open")
		baud = flag.Int("baud", 115200, "baud rate (normalized to a canonical rate)")
		pty  = flag.Bool("pty", false, "ignore -port and use the master side of a new PTY pair (the slave side is left unattached)")
	)
	flag.Parse()

	log := logging.New()
	defer log.Sync()

	producer := queue.NewBounded(256)
	consumer := queue.NewBounded(256)

	m, err := bridge.New(*port, *baud, producer, consumer, nil)
	if err != nil {
		log.Fatalw("failed to construct manager", "error", err)
	}

	if *pty {
		if err := wirePTY(m, log); err != nil {
			log.Fatalw("failed to wire pty loopback", "error", err)
		}
	}

	if err := m.Start(); err != nil {
		log.Fatalw("failed to start bridge", "error", err)
	}
	log.Infow("bridge started", "port", *port, "baud", *baud)

	go printInbound(consumer, log)
	go readOutbound(producer, log)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := m.ShutdownContext(ctx); err != nil {
		log.Warnw("shutdown did not complete cleanly", "error", err)
	}
	snap := m.Snapshot()
	log.Infow("final counters",
		"ringDropped", snap.RingDropped,
		"decodeFailures", snap.DecodeFailures,
		"consumerRejected", snap.ConsumerRejected,
		"frameOverflow", snap.FrameOverflow,
		"portIOErrors", snap.PortIOErrors,
		"writeBatches", snap.WriteBatches,
		"writeBytes", snap.WriteBytes,
	)
}

func printInbound(consumer *queue.Bounded, log *zap.SugaredLogger) {
	for {
		frame, ok := consumer.PopTimeout(time.Second)
		if !ok {
			continue
		}
		fmt.Println(hex.EncodeToString(frame))
	}
}

func readOutbound(producer *queue.Bounded, log *zap.SugaredLogger) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		msg, err := hex.DecodeString(scanner.Text())
		if err != nil {
			log.Warnw("skipping malformed hex line", "error", err)
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		if err := producer.Push(ctx, msg); err != nil {
			log.Warnw("outbound message dropped under backpressure", "error", err)
		}
		cancel()
	}
}

// wirePTY overrides the manager's port-open seam to hand back one end of
// a loopback PTY pair, used when no real hardware is attached.
func wirePTY(m *bridge.Manager, log *zap.SugaredLogger) error {
	master, _, err := serial.OpenPTY()
	if err != nil {
		return err
	}
	log.Info("opened pty loopback pair")
	return m.SetPortOpener(func(string, int) (serial.Port, error) {
		return master, nil
	})
}
