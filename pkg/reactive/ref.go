package reactive

import "sync"

// Ref holds a handle that is attached some time after creation, typically
// an element that has not been rendered yet. It is safe for concurrent use.
type Ref[T any] struct {
	base base

	mu       sync.RWMutex
	current  T
	attached bool
}

// NewRef creates an unattached ref.
func NewRef[T any]() *Ref[T] {
	return &Ref[T]{base: base{id: NextID()}}
}

// RefOf creates a ref already attached to v.
func RefOf[T any](v T) *Ref[T] {
	return &Ref[T]{base: base{id: NextID()}, current: v, attached: true}
}

// Current returns the attached value, or the zero value.
func (r *Ref[T]) Current() T {
	v, _ := r.load()
	return v
}

// IsSet reports whether the ref is attached.
func (r *Ref[T]) IsSet() bool {
	_, ok := r.load()
	return ok
}

func (r *Ref[T]) load() (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current, r.attached
}

// Set attaches the ref and notifies tracked listeners.
func (r *Ref[T]) Set(value T) {
	r.store(value, true)
}

// Clear detaches the ref and notifies tracked listeners.
func (r *Ref[T]) Clear() {
	var zero T
	r.store(zero, false)
}

func (r *Ref[T]) store(v T, attached bool) {
	r.mu.Lock()
	r.current, r.attached = v, attached
	r.mu.Unlock()
	r.base.notify()
}

// Track subscribes l to attach/detach of this ref.
func (r *Ref[T]) Track(l Listener) { r.base.track(l) }

// Untrack removes l.
func (r *Ref[T]) Untrack(l Listener) { r.base.untrack(l) }
