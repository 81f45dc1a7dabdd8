package subscription

import (
	"sync"

	"github.com/vango-dev/use/pkg/platform"
)

// Slot holds at most one subscription for a logical binding.
type Slot struct {
	registry *Registry

	sub      *Subscription
	target   platform.EventTarget
	event    string
	listener *platform.Listener
	opts     platform.Options

	released bool
	mu       sync.Mutex
}

// NewSlot creates an empty slot.
func (r *Registry) NewSlot() *Slot {
	return &Slot{registry: r}
}

// Bind makes the slot's subscription match the given tuple. If the resolved
// target, event, listener or options differ from the current ones, the
// current subscription is fully detached before the new one is attached.
// A once subscription that already fired is re-armed by any Bind. Bind
// reports whether it replaced the subscription. After Release, Bind does
// nothing.
func (s *Slot) Bind(source Resolver, event string, l *platform.Listener, opts platform.Options) bool {
	target := Resolve(source)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.released {
		return false
	}
	if s.sub != nil &&
		!s.sub.Spent() &&
		sameTarget(s.target, target) &&
		s.event == event &&
		s.listener == l &&
		s.opts == opts {
		return false
	}

	if s.sub != nil {
		s.sub.Unsubscribe()
		s.sub = nil
	}

	s.target, s.event, s.listener, s.opts = target, event, l, opts
	s.sub = s.registry.subscribe(target, event, l, opts)
	return true
}

// Release detaches the current subscription and disables the slot. It is
// safe to call on a slot that never attached, and more than once.
func (s *Slot) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.released = true
	if s.sub != nil {
		s.sub.Unsubscribe()
		s.sub = nil
	}
}

// Attached reports whether the slot holds an attached subscription.
func (s *Slot) Attached() bool {
	s.mu.Lock()
	sub := s.sub
	s.mu.Unlock()
	return sub != nil && sub.Attached()
}

// Target returns the target of the current subscription.
func (s *Slot) Target() platform.EventTarget {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sub == nil {
		return nil
	}
	return s.sub.Target()
}
