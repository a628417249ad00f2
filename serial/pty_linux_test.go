package serial

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestOpenPTYLoopback(t *testing.T) {
	master, slave, err := OpenPTY()
	if err != nil {
		t.Skipf("no pty support in this environment: %v", err)
	}
	defer master.Close()
	defer slave.Close()

	_, err = master.Write([]byte("ping"))
	require.NoError(t, err)

	ready, err := slave.WaitReadable(time.Second)
	require.NoError(t, err)
	require.Equal(t, Ready, ready)

	buf := make([]byte, 16)
	n, err := slave.Read(buf)
	require.NoError(t, err)
	require.Equal(t, "ping", string(buf[:n]))
}
