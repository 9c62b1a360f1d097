// Copyright © 2020 Kent Gibson <warthog618@gmail.com>.
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package ring provides a bounded FIFO queue over caller supplied storage.
//
// The Ring never allocates after construction and never resizes.
// It provides no locking - callers sharing a Ring between an interrupt
// handler and foreground code must provide their own exclusion.
package ring

// Ring is a fixed capacity circular FIFO of T.
//
// head and tail are equal when the ring is either empty or full, so count
// is the only source of truth for the fill level.
type Ring[T any] struct {
	buf   []T
	head  int
	tail  int
	count int
}

// New creates a Ring bound to the backing slice.
// The capacity of the Ring is len(backing), and the backing must not be used
// by the caller while the Ring is live.
func New[T any](backing []T) *Ring[T] {
	return &Ring[T]{buf: backing}
}

// Push adds v at the head of the ring.
// Returns false, leaving the ring unchanged, if the ring is full.
func (r *Ring[T]) Push(v T) bool {
	if r.count == len(r.buf) {
		return false
	}
	r.buf[r.head] = v
	r.head++
	if r.head == len(r.buf) {
		r.head = 0
	}
	r.count++
	return true
}

// Pop removes the element at the tail of the ring.
// Returns false if the ring is empty, in which case the returned value is the
// zero value of T.
func (r *Ring[T]) Pop() (v T, ok bool) {
	if r.count == 0 {
		return
	}
	v = r.buf[r.tail]
	r.tail++
	if r.tail == len(r.buf) {
		r.tail = 0
	}
	r.count--
	return v, true
}

// Peek returns the element at the tail without removing it.
func (r *Ring[T]) Peek() (v T, ok bool) {
	if r.count == 0 {
		return
	}
	return r.buf[r.tail], true
}

// Flush discards the contents of the ring.
// The backing storage is not zeroed.
func (r *Ring[T]) Flush() {
	r.tail = r.head
	r.count = 0
}

// Len returns the number of elements in the ring.
func (r *Ring[T]) Len() int {
	return r.count
}

// Cap returns the capacity of the ring.
func (r *Ring[T]) Cap() int {
	return len(r.buf)
}

// Remaining returns the number of elements that can be pushed before the
// ring is full.
func (r *Ring[T]) Remaining() int {
	return len(r.buf) - r.count
}

// Empty returns true if the ring contains no elements.
func (r *Ring[T]) Empty() bool {
	return r.count == 0
}

// Full returns true if the ring is at capacity.
func (r *Ring[T]) Full() bool {
	return r.count == len(r.buf)
}
