// Package subscription attaches listeners to external event sources and
// guarantees they are detached.
//
// Registry.Subscribe resolves a source and registers one listener on it.
// A source that does not resolve yet (a ref that is not attached) produces
// a pending subscription: nothing is registered and no error is reported.
// Unsubscribe is idempotent.
//
//	sub := reg.Subscribe(subscription.Static(window), "resize", l, platform.Options{})
//	defer sub.Unsubscribe()
//
// A Slot holds the single subscription of one logical binding. Binding a
// different (target, event, listener, options) tuple detaches the previous
// subscription before attaching the new one, so a slot never holds two.
//
// The registry keeps counters for attaches, detaches and pending calls,
// exported as Prometheus metrics when a registerer is configured.
package subscription
