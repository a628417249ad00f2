package serial

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakePortReadWrite(t *testing.T) {
	p := NewFakePort()
	defer p.Close()

	ready, err := p.WaitReadable(10 * time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, Timeout, ready)

	p.Feed([]byte("hello"))
	ready, err = p.WaitReadable(time.Second)
	require.NoError(t, err)
	assert.Equal(t, Ready, ready)

	buf := make([]byte, 16)
	n, err := p.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(buf[:n]))

	n, err = p.Write([]byte("world"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "world", string(p.Written()))
}

func TestFakePortClosedOperationsFail(t *testing.T) {
	p := NewFakePort()
	require.NoError(t, p.Close())

	_, err := p.Read(make([]byte, 1))
	assert.ErrorIs(t, err, ErrClosed)

	_, err = p.Write([]byte("x"))
	assert.ErrorIs(t, err, ErrClosed)

	assert.ErrorIs(t, p.Close(), ErrClosed)
}

func TestNormalizeBaud(t *testing.T) {
	assert.Equal(t, 9600, normalizeBaud(9600))
	assert.Equal(t, 115200, normalizeBaud(115200))
	assert.Equal(t, 115200, normalizeBaud(1234567))
}
