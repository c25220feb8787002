package output

import (
	"errors"
	"sync"
)

var (
	ErrBufferClosed = errors.New("buffer closed")
	ErrBufferFull   = errors.New("buffer full")
)

// RingBuffer is a bounded FIFO queue safe for concurrent use.
type RingBuffer[T any] struct {
	inner        []T
	start, count int
	mu           sync.Mutex
	notEmpty     *sync.Cond
	notFull      *sync.Cond
	closed       bool
}

func NewRingBuffer[T any](capacity uint64) *RingBuffer[T] {
	rb := &RingBuffer[T]{inner: make([]T, max(capacity, 1))}
	rb.notEmpty = sync.NewCond(&rb.mu)
	rb.notFull = sync.NewCond(&rb.mu)
	return rb
}

func (rb *RingBuffer[T]) push(item T) {
	rb.inner[(rb.start+rb.count)%len(rb.inner)] = item
	rb.count++
	rb.notEmpty.Signal()
}

func (rb *RingBuffer[T]) pop() T {
	var zero T
	item := rb.inner[rb.start]
	rb.inner[rb.start] = zero
	rb.start = (rb.start + 1) % len(rb.inner)
	rb.count--
	rb.notFull.Signal()
	return item
}

// Put adds an item without blocking, failing when the buffer is full.
func (rb *RingBuffer[T]) Put(item T) error {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	if rb.closed {
		return ErrBufferClosed
	} else if rb.count == len(rb.inner) {
		return ErrBufferFull
	}

	rb.push(item)
	return nil
}

// PutWait adds an item, waiting for room.
func (rb *RingBuffer[T]) PutWait(item T) error {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	for rb.count == len(rb.inner) && !rb.closed {
		rb.notFull.Wait()
	}

	if rb.closed {
		return ErrBufferClosed
	}

	rb.push(item)
	return nil
}

// Get removes the oldest item, if any.
func (rb *RingBuffer[T]) Get() (T, bool, error) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	var zero T
	if rb.closed {
		return zero, false, ErrBufferClosed
	} else if rb.count == 0 {
		return zero, false, nil
	}

	return rb.pop(), true, nil
}

// GetWait removes the oldest item, waiting for one to be available.
func (rb *RingBuffer[T]) GetWait() (T, error) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	for rb.count == 0 && !rb.closed {
		rb.notEmpty.Wait()
	}

	if rb.closed {
		var zero T
		return zero, ErrBufferClosed
	}

	return rb.pop(), nil
}

func (rb *RingBuffer[T]) Size() int {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	return rb.count
}

// Clear drops every item and wakes up blocked producers.
func (rb *RingBuffer[T]) Clear() {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	clear(rb.inner)
	rb.start = 0
	rb.count = 0
	rb.notFull.Broadcast()
}

func (rb *RingBuffer[T]) Close() error {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	rb.closed = true
	rb.notEmpty.Broadcast()
	rb.notFull.Broadcast()
	return nil
}
