package use

import (
	"github.com/vango-dev/use/pkg/platform"
	"github.com/vango-dev/use/pkg/reactive"
	"github.com/vango-dev/use/pkg/runtime"
	"github.com/vango-dev/use/pkg/subscription"
)

// Handler receives delivered events.
type Handler func(platform.Event)

// Listening is the handle of an EventListener binding.
type Listening struct {
	slot   *subscription.Slot
	binder *runtime.Binder
}

// Attached reports whether the listener is registered on a resolved
// target.
func (l *Listening) Attached() bool { return l.slot.Attached() }

// Stop removes the listener for the rest of the unit's life.
func (l *Listening) Stop() {
	l.slot.Release()
	if l.binder != nil {
		l.binder.Detach()
	}
}

type eventListenerState struct {
	latest   *reactive.Latest[Handler]
	listener *platform.Listener
	slot     *subscription.Slot
	handle   *Listening
}

// EventListener registers handler for event on source while the unit is
// mounted. The registered listener keeps its identity across renders and
// always calls the handler from the latest render. When source resolves to
// a different target, or event or opts change, the old registration is
// removed before the new one is added. An unresolved source leaves the
// binding pending until a later render resolves it.
func EventListener(u *runtime.Unit, source subscription.Resolver, event string, handler Handler, opts platform.Options) *Listening {
	st := runtime.UseSlot(u, "use.EventListener", func() *eventListenerState {
		s := &eventListenerState{
			latest: reactive.NewLatest(handler),
			slot:   u.Registry().NewSlot(),
		}
		s.listener = platform.NewListener(func(e platform.Event) {
			if h := s.latest.Load(); h != nil {
				h(e)
			}
		})
		s.handle = &Listening{slot: s.slot}
		u.OnCleanup(s.slot.Release)
		return s
	})
	st.latest.Store(handler)

	watchSource(u, source)
	target := subscription.Resolve(source)

	st.handle.binder = u.Effect([]any{target, event, opts}, func() reactive.Cleanup {
		st.slot.Bind(source, event, st.listener, opts)
		return nil
	})
	return st.handle
}

// Count is the result of EventCount.
type Count struct {
	count  *reactive.Cell[int]
	handle *Listening
}

// Value returns the number of events delivered.
func (c *Count) Value() int { return c.count.Get() }

// Reset sets the count back to zero.
func (c *Count) Reset() { c.count.Set(0) }

// Attached reports whether the counting listener is registered.
func (c *Count) Attached() bool { return c.handle.Attached() }

// EventCount counts deliveries of event on source.
func EventCount(u *runtime.Unit, source subscription.Resolver, event string) *Count {
	count := useCell(u, "use.EventCount", func() int { return 0 })
	handle := EventListener(u, source, event, func(platform.Event) {
		count.Update(func(n int) int { return n + 1 })
	}, platform.Options{Passive: true})
	return &Count{count: count, handle: handle}
}
