// Package reactive provides the reactive cells that hooks expose to
// components.
//
// A Cell[T] holds a value. Reading it returns the latest committed value;
// writing it notifies every tracked Listener (typically the consuming
// component, which then schedules a re-render):
//
//	count := reactive.NewCell(0)
//	count.Track(unit)      // unit re-renders when count changes
//	count.Set(5)
//	count.Update(func(n int) int { return n + 1 })
//
// Writes whose new value equals the current one are dropped before any
// listener is notified.
//
// # Latest
//
// Latest[T] is a single-slot holder. Listeners registered with an external
// source are long-lived; they dereference a Latest on every invocation so
// that the freshest callback runs without re-subscribing.
//
// # Refs
//
// Ref[T] holds a handle that may not exist yet (an element that has not been
// attached). Setting a ref notifies tracked listeners so that subscriptions
// bound to it can resolve.
package reactive
