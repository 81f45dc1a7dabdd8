package reactive

import "sync/atomic"

// Latest is a single-slot holder for the most recent value, usually a
// callback. It never notifies anyone: readers dereference it at call time.
type Latest[T any] struct {
	v atomic.Pointer[T]
}

// NewLatest creates a holder containing v.
func NewLatest[T any](v T) *Latest[T] {
	l := &Latest[T]{}
	l.Store(v)
	return l
}

// Store replaces the held value.
func (l *Latest[T]) Store(v T) {
	l.v.Store(&v)
}

// Load returns the held value, or the zero value if nothing was stored.
func (l *Latest[T]) Load() T {
	if p := l.v.Load(); p != nil {
		return *p
	}
	var zero T
	return zero
}
