package ring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPushPopOrderPreserved(t *testing.T) {
	r := New(1024)
	msgs := [][]byte{[]byte("a"), []byte("bb"), []byte("ccc"), {}}
	for _, m := range msgs {
		require.True(t, r.Push(m))
	}
	dst := make([]byte, 256)
	for _, want := range msgs {
		n, ok := r.Pop(dst)
		require.True(t, ok)
		assert.Equal(t, want, append([]byte{}, dst[:n]...))
	}
	_, ok := r.Pop(dst)
	assert.False(t, ok)
}

func TestPushDropsOnInsufficientSpace(t *testing.T) {
	r := New(8) // room for exactly one 6-byte frame (2 + 4)
	require.True(t, r.Push([]byte("abcd")))
	assert.False(t, r.Push([]byte("x")))
	assert.Equal(t, uint64(1), r.Dropped())

	dst := make([]byte, 16)
	n, ok := r.Pop(dst)
	require.True(t, ok)
	assert.Equal(t, "abcd", string(dst[:n]))

	assert.True(t, r.Push([]byte("y")))
}

func TestPushOversizedFrameAlwaysFails(t *testing.T) {
	r := New(1 << 20)
	huge := make([]byte, 0x10000)
	assert.False(t, r.Push(huge))
	assert.Equal(t, uint64(1), r.Dropped())
}

func TestWraparound(t *testing.T) {
	r := New(16)
	dst := make([]byte, 16)
	for i := 0; i < 100; i++ {
		msg := []byte{byte(i), byte(i + 1), byte(i + 2)}
		require.True(t, r.Push(msg))
		n, ok := r.Pop(dst)
		require.True(t, ok)
		assert.Equal(t, msg, append([]byte{}, dst[:n]...))
	}
}

func TestWaitWakesOnPush(t *testing.T) {
	r := New(1024)
	done := make(chan bool, 1)
	go func() {
		done <- r.Wait(time.Second)
	}()
	time.Sleep(20 * time.Millisecond)
	r.Push([]byte("x"))
	select {
	case ok := <-done:
		assert.True(t, ok)
	case <-time.After(time.Second):
		t.Fatal("Wait did not wake on push")
	}
}

func TestWaitTimesOutWhenEmpty(t *testing.T) {
	r := New(1024)
	start := time.Now()
	ok := r.Wait(30 * time.Millisecond)
	assert.False(t, ok)
	assert.Less(t, time.Since(start), time.Second)
}

func TestWaitReturnsImmediatelyWhenNonEmpty(t *testing.T) {
	r := New(1024)
	r.Push([]byte("x"))
	start := time.Now()
	ok := r.Wait(time.Second)
	assert.True(t, ok)
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestCloseWakesWaiter(t *testing.T) {
	r := New(1024)
	done := make(chan bool, 1)
	go func() {
		done <- r.Wait(5 * time.Second)
	}()
	time.Sleep(20 * time.Millisecond)
	r.Close()
	select {
	case ok := <-done:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("Wait did not wake on Close")
	}
}
