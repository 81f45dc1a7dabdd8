package reactive

import (
	"reflect"
	"sync"
)

// base provides type-erased listener management shared by Cell and Ref.
type base struct {
	id uint64

	listeners []Listener
	callbacks []*callback

	mu sync.RWMutex
}

type callback struct {
	fn func()
}

// track adds a listener, deduplicated by ID.
func (b *base) track(l Listener) {
	if l == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	lid := l.ID()
	for _, existing := range b.listeners {
		if existing.ID() == lid {
			return
		}
	}
	b.listeners = append(b.listeners, l)
}

func (b *base) untrack(l Listener) {
	if l == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	lid := l.ID()
	for i, existing := range b.listeners {
		if existing.ID() == lid {
			b.listeners[i] = b.listeners[len(b.listeners)-1]
			b.listeners = b.listeners[:len(b.listeners)-1]
			return
		}
	}
}

func (b *base) addCallback(fn func()) func() {
	cb := &callback{fn: fn}

	b.mu.Lock()
	b.callbacks = append(b.callbacks, cb)
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			for i, existing := range b.callbacks {
				if existing == cb {
					b.callbacks = append(b.callbacks[:i], b.callbacks[i+1:]...)
					return
				}
			}
		})
	}
}

// notify copies the listener lists under the lock and calls them after
// releasing it, so a listener may write other cells.
func (b *base) notify() {
	b.mu.RLock()
	listeners := make([]Listener, len(b.listeners))
	copy(listeners, b.listeners)
	callbacks := make([]*callback, len(b.callbacks))
	copy(callbacks, b.callbacks)
	b.mu.RUnlock()

	for _, cb := range callbacks {
		cb.fn()
	}
	for _, l := range listeners {
		l.MarkDirty()
	}
}

func (b *base) listenerCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners) + len(b.callbacks)
}

// Cell is a reactive value container.
type Cell[T any] struct {
	base base

	value T
	mu    sync.RWMutex

	// equal decides whether a write changes the value. nil means defaultEquals.
	equal func(T, T) bool
}

// NewCell creates a cell holding initial.
func NewCell[T any](initial T) *Cell[T] {
	return &Cell[T]{
		base:  base{id: NextID()},
		value: initial,
	}
}

// Get returns the latest committed value.
func (c *Cell[T]) Get() T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

// Set replaces the value and notifies listeners if it changed.
// Set may be called from inside a subscription callback.
func (c *Cell[T]) Set(value T) {
	c.mu.Lock()
	changed := !c.equals(c.value, value)
	if changed {
		c.value = value
	}
	c.mu.Unlock()

	if changed {
		c.base.notify()
	}
}

// Update atomically reads and replaces the value.
func (c *Cell[T]) Update(fn func(T) T) {
	c.mu.Lock()
	old := c.value
	next := fn(old)
	changed := !c.equals(old, next)
	if changed {
		c.value = next
	}
	c.mu.Unlock()

	if changed {
		c.base.notify()
	}
}

// Track subscribes l to changes of this cell.
func (c *Cell[T]) Track(l Listener) {
	c.base.track(l)
}

// Untrack removes l.
func (c *Cell[T]) Untrack(l Listener) {
	c.base.untrack(l)
}

// Subscribe calls fn with the new value after every change. The returned
// function removes the callback; calling it more than once is a no-op.
func (c *Cell[T]) Subscribe(fn func(T)) func() {
	return c.base.addCallback(func() {
		fn(c.Get())
	})
}

// Listeners returns the number of tracked listeners and callbacks.
func (c *Cell[T]) Listeners() int {
	return c.base.listenerCount()
}

// WithEquals sets a custom equality function and returns the cell.
func (c *Cell[T]) WithEquals(fn func(T, T) bool) *Cell[T] {
	c.equal = fn
	return c
}

// ID returns the unique identifier for this cell.
func (c *Cell[T]) ID() uint64 {
	return c.base.id
}

func (c *Cell[T]) equals(a, b T) bool {
	if c.equal != nil {
		return c.equal(a, b)
	}
	return defaultEquals(a, b)
}

// defaultEquals uses == for common comparable kinds and reflect.DeepEqual
// for everything else.
func defaultEquals[T any](a, b T) bool {
	switch av := any(a).(type) {
	case int:
		bv, ok := any(b).(int)
		return ok && av == bv
	case int64:
		bv, ok := any(b).(int64)
		return ok && av == bv
	case uint64:
		bv, ok := any(b).(uint64)
		return ok && av == bv
	case float64:
		bv, ok := any(b).(float64)
		return ok && av == bv
	case string:
		bv, ok := any(b).(string)
		return ok && av == bv
	case bool:
		bv, ok := any(b).(bool)
		return ok && av == bv
	default:
		return reflect.DeepEqual(a, b)
	}
}
