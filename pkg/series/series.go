// Package series provides the fixed-capacity, most-recent-first history
// buffers backing a strategy host's tick and bar caches.
package series

import (
	"fmt"
)

// ErrIndexOutOfRange is returned by Get when the index is >= Len.
var ErrIndexOutOfRange = fmt.Errorf("series index out of range")

// Series is a bounded most-recent-first sequence. Records insert at the
// front; once the length exceeds capacity the oldest element is evicted.
// Index 0 is always the most recent element. Storage is a ring, so Record
// is O(1) and never reallocates. Not safe for concurrent use: the owning
// host serializes all access.
type Series[T any] struct {
	items    []T
	head     int // ring index of the most recent element
	size     int
	capacity int
}

// New returns a Series with the given capacity. Capacity must be positive.
func New[T any](capacity int) (*Series[T], error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("series capacity must be positive, got %d", capacity)
	}
	return &Series[T]{
		items:    make([]T, capacity),
		capacity: capacity,
	}, nil
}

// Record inserts an item at the front, evicting the oldest element when the
// series is at capacity.
func (s *Series[T]) Record(item T) {
	s.head = (s.head - 1 + s.capacity) % s.capacity
	s.items[s.head] = item
	if s.size < s.capacity {
		s.size++
	}
}

// Get returns the item at the given index, 0 being the most recent.
func (s *Series[T]) Get(index int) (T, error) {
	var zero T
	if index < 0 || index >= s.size {
		return zero, fmt.Errorf("%w: index %d, size %d", ErrIndexOutOfRange, index, s.size)
	}
	return s.items[(s.head+index)%s.capacity], nil
}

// Len returns the number of recorded items, always <= capacity.
func (s *Series[T]) Len() int {
	return s.size
}

// Capacity returns the configured capacity.
func (s *Series[T]) Capacity() int {
	return s.capacity
}

// Snapshot returns an independently-owned copy in most-recent-first order.
func (s *Series[T]) Snapshot() []T {
	out := make([]T, s.size)
	for i := 0; i < s.size; i++ {
		out[i] = s.items[(s.head+i)%s.capacity]
	}
	return out
}
