//go:build test_unit

package output

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingBuffer_Order(t *testing.T) {
	rb := NewRingBuffer[int](3)
	require.NoError(t, rb.Put(1))
	require.NoError(t, rb.Put(2))
	require.NoError(t, rb.Put(3))
	assert.ErrorIs(t, rb.Put(4), ErrBufferFull)
	assert.Equal(t, 3, rb.Size())

	item, ok, err := rb.Get()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, item)

	require.NoError(t, rb.Put(4))
	for _, expected := range []int{2, 3, 4} {
		item, err := rb.GetWait()
		require.NoError(t, err)
		assert.Equal(t, expected, item)
	}

	_, ok, err = rb.Get()
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestRingBuffer_PutWaitUnblocksOnClear(t *testing.T) {
	rb := NewRingBuffer[int](1)
	require.NoError(t, rb.Put(1))

	done := make(chan error)
	go func() { done <- rb.PutWait(2) }()

	select {
	case <-done:
		t.Fatal("PutWait returned on a full buffer")
	case <-time.After(20 * time.Millisecond):
	}

	rb.Clear()
	require.NoError(t, <-done)

	item, err := rb.GetWait()
	require.NoError(t, err)
	assert.Equal(t, 2, item)
}

func TestRingBuffer_Close(t *testing.T) {
	rb := NewRingBuffer[int](1)

	done := make(chan error)
	go func() {
		_, err := rb.GetWait()
		done <- err
	}()

	require.NoError(t, rb.Close())
	assert.ErrorIs(t, <-done, ErrBufferClosed)
	assert.ErrorIs(t, rb.Put(1), ErrBufferClosed)
	assert.ErrorIs(t, rb.PutWait(1), ErrBufferClosed)
}
