package use

import (
	"reflect"

	"github.com/vango-dev/use/pkg/reactive"
	"github.com/vango-dev/use/pkg/runtime"
)

// CounterOptions configures Counter.
type CounterOptions struct {
	// Clamp limits the count to [Min, Max].
	Clamp bool
	Min   int
	Max   int
}

// CounterState is the result of Counter.
type CounterState struct {
	count   *reactive.Cell[int]
	initial int
	opts    CounterOptions
}

func (c *CounterState) clamp(n int) int {
	if !c.opts.Clamp {
		return n
	}
	if n < c.opts.Min {
		return c.opts.Min
	}
	if n > c.opts.Max {
		return c.opts.Max
	}
	return n
}

// Count returns the current count.
func (c *CounterState) Count() int { return c.count.Get() }

// Inc adds delta (default 1).
func (c *CounterState) Inc(delta ...int) {
	d := 1
	if len(delta) > 0 {
		d = delta[0]
	}
	c.count.Update(func(n int) int { return c.clamp(n + d) })
}

// Dec subtracts delta (default 1).
func (c *CounterState) Dec(delta ...int) {
	d := 1
	if len(delta) > 0 {
		d = delta[0]
	}
	c.count.Update(func(n int) int { return c.clamp(n - d) })
}

// Set replaces the count.
func (c *CounterState) Set(n int) { c.count.Set(c.clamp(n)) }

// Reset restores the initial count.
func (c *CounterState) Reset() { c.count.Set(c.clamp(c.initial)) }

// Counter holds an integer count. Options from the latest render apply to
// later updates; the current count is not re-clamped when they change.
func Counter(u *runtime.Unit, initial int, opts CounterOptions) *CounterState {
	st := runtime.UseSlot(u, "use.Counter", func() *CounterState {
		c := &CounterState{initial: initial, opts: opts}
		c.count = reactive.NewCell(c.clamp(initial))
		return c
	})
	st.opts = opts
	u.Watch(st.count)
	return st
}

// ToggleState is the result of Toggle.
type ToggleState struct {
	value *reactive.Cell[bool]
}

// Value returns the current state.
func (t *ToggleState) Value() bool { return t.value.Get() }

// Toggle flips the state.
func (t *ToggleState) Toggle() { t.value.Update(func(v bool) bool { return !v }) }

// Set replaces the state.
func (t *ToggleState) Set(v bool) { t.value.Set(v) }

// Toggle holds a boolean.
func Toggle(u *runtime.Unit, initial bool) *ToggleState {
	return &ToggleState{value: useCell(u, "use.Toggle", func() bool { return initial })}
}

// QueueState is the result of Queue.
type QueueState[T any] struct {
	items *reactive.Cell[[]T]
}

// Items returns a copy of the queued items, oldest first.
func (q *QueueState[T]) Items() []T {
	return append([]T(nil), q.items.Get()...)
}

// Len returns the number of queued items.
func (q *QueueState[T]) Len() int { return len(q.items.Get()) }

// Push appends v.
func (q *QueueState[T]) Push(v T) {
	q.items.Update(func(items []T) []T {
		next := make([]T, len(items), len(items)+1)
		copy(next, items)
		return append(next, v)
	})
}

// Peek returns the oldest item.
func (q *QueueState[T]) Peek() (T, bool) {
	items := q.items.Get()
	if len(items) == 0 {
		var zero T
		return zero, false
	}
	return items[0], true
}

// Pop removes and returns the oldest item.
func (q *QueueState[T]) Pop() (T, bool) {
	v, ok := q.Peek()
	if !ok {
		return v, false
	}
	q.items.Update(func(items []T) []T {
		return append([]T(nil), items[1:]...)
	})
	return v, true
}

// Clear removes every item.
func (q *QueueState[T]) Clear() { q.items.Set(nil) }

// Queue holds a FIFO list.
func Queue[T any](u *runtime.Unit, initial []T) *QueueState[T] {
	items := useCell(u, "use.Queue", func() []T { return append([]T(nil), initial...) })
	return &QueueState[T]{items: items}
}

type previousState[T any] struct {
	cur, prev T
	has       bool
	seen      bool
}

// Previous returns the value value had before it last changed, and
// whether it changed at all.
func Previous[T any](u *runtime.Unit, value T) (T, bool) {
	st := runtime.UseSlot(u, "use.Previous", func() *previousState[T] {
		return &previousState[T]{}
	})
	if !st.seen {
		st.cur, st.seen = value, true
	} else if !reflect.DeepEqual(st.cur, value) {
		st.prev, st.cur, st.has = st.cur, value, true
	}
	return st.prev, st.has
}

// Latest returns a holder that always contains value from the most recent
// render. The holder keeps its identity across renders, so callbacks can
// capture it without being re-registered.
func Latest[T any](u *runtime.Unit, value T) *reactive.Latest[T] {
	l := runtime.UseSlot(u, "use.Latest", func() *reactive.Latest[T] {
		return reactive.NewLatest(value)
	})
	l.Store(value)
	return l
}
