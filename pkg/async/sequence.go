package async

import (
	"fmt"
	"sync/atomic"
)

// Sequence numbers successive operations so that only the latest one may
// apply its result.
type Sequence struct {
	n atomic.Uint64
}

// Next starts a new operation and returns its number. Every earlier
// number becomes stale.
func (s *Sequence) Next() uint64 {
	return s.n.Add(1)
}

// Invalidate makes every issued number stale.
func (s *Sequence) Invalidate() {
	s.n.Add(1)
}

// Current reports whether n is the latest issued number.
func (s *Sequence) Current(n uint64) bool {
	return s.n.Load() == n
}

// PanicError is the error of a task whose function panicked.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("async: task panicked: %v", e.Value)
}
