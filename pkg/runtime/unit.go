package runtime

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/vango-dev/use/internal/errors"
	"github.com/vango-dev/use/pkg/platform"
	"github.com/vango-dev/use/pkg/reactive"
	"github.com/vango-dev/use/pkg/subscription"
)

// RenderFunc renders a unit. Hooks are called from inside it, in the same
// order on every render.
type RenderFunc func(u *Unit)

// Trackable is a reactive source a unit can watch.
type Trackable interface {
	Track(l reactive.Listener)
	Untrack(l reactive.Listener)
}

// Unit is a mounted component instance.
type Unit struct {
	id     uint64
	loop   *Loop
	fn     RenderFunc
	logger *slog.Logger

	dirty    atomic.Bool
	disposed atomic.Bool
	renders  atomic.Uint64

	// Hook state. Only touched on the loop goroutine.
	rendering bool
	slots     []any
	slotKinds []string
	slotIdx   int
	binders   []*Binder
	watched   []Trackable
	cleanups  []func()

	disposeOnce sync.Once
}

func newUnit(l *Loop, fn RenderFunc) *Unit {
	id := reactive.NextID()
	return &Unit{
		id:     id,
		loop:   l,
		fn:     fn,
		logger: l.logger.With("unit", id),
	}
}

// ID implements reactive.Listener.
func (u *Unit) ID() uint64 { return u.id }

// MarkDirty implements reactive.Listener. It schedules a re-render and may
// be called from any goroutine.
func (u *Unit) MarkDirty() {
	if u.disposed.Load() {
		return
	}
	if u.dirty.CompareAndSwap(false, true) {
		u.loop.wake()
	}
}

// IsDirty reports whether a re-render is scheduled.
func (u *Unit) IsDirty() bool { return u.dirty.Load() }

func (u *Unit) takeDirty() bool {
	return u.dirty.CompareAndSwap(true, false)
}

// Renders returns how many times the unit rendered.
func (u *Unit) Renders() uint64 { return u.renders.Load() }

// Disposed reports whether the unit was disposed.
func (u *Unit) Disposed() bool { return u.disposed.Load() }

// Loop returns the owning loop.
func (u *Unit) Loop() *Loop { return u.loop }

// Platform returns the host environment.
func (u *Unit) Platform() *platform.Platform { return u.loop.platform }

// Logger returns the unit logger.
func (u *Unit) Logger() *slog.Logger { return u.logger }

// Registry returns the subscription registry.
func (u *Unit) Registry() *subscription.Registry { return u.loop.registry }

// Dispatch queues fn on the owning loop. The callback is skipped if the
// unit is disposed by the time it runs.
func (u *Unit) Dispatch(fn func()) {
	u.loop.Dispatch(func() {
		if u.disposed.Load() {
			return
		}
		fn()
	})
}

// Rerender renders the unit now. It must run on the loop goroutine.
func (u *Unit) Rerender() {
	u.dirty.Store(false)
	u.loop.safeRender(u)
}

func (u *Unit) render() {
	if u.disposed.Load() {
		return
	}

	u.rendering = true
	u.slotIdx = 0
	u.renders.Add(1)

	u.fn(u)

	if u.loop.debug && u.renders.Load() > 1 && u.slotIdx != len(u.slots) {
		u.rendering = false
		panic(errors.New("M001").
			WithDetail(fmt.Sprintf("render used %d hook slots, previous renders used %d", u.slotIdx, len(u.slots))))
	}
	u.rendering = false

	u.attachPending()
}

// attachPending runs the binders scheduled by the last render, in
// creation order.
func (u *Unit) attachPending() {
	for _, b := range u.binders {
		if u.disposed.Load() {
			return
		}
		if b.pending {
			b.pending = false
			b.attach()
		}
	}
}

// Watch tracks src so that changes to it re-render the unit. Watching the
// same source twice is a no-op. Sources are untracked on Dispose.
func (u *Unit) Watch(src Trackable) {
	if src == nil || u.disposed.Load() {
		return
	}
	for _, w := range u.watched {
		if w == src {
			return
		}
	}
	u.watched = append(u.watched, src)
	src.Track(u)
}

// OnCleanup registers fn to run on Dispose. Cleanups run in reverse
// registration order, after every binder has been detached.
func (u *Unit) OnCleanup(fn func()) {
	if fn == nil {
		return
	}
	if u.disposed.Load() {
		fn()
		return
	}
	u.cleanups = append(u.cleanups, fn)
}

// Effect returns the binder stored in the current hook slot, creating it
// on first render. The binder attaches after the render completes and
// re-attaches whenever deps differ from the previous render's. Nil deps
// re-attach after every render; empty deps attach once.
func (u *Unit) Effect(deps []any, setup func() reactive.Cleanup) *Binder {
	b := UseSlot(u, "Effect", func() *Binder {
		b := &Binder{unit: u, state: Unattached, pending: true}
		u.binders = append(u.binders, b)
		return b
	})

	b.setup = setup
	if b.state == Detached {
		return b
	}
	if !b.pending && (deps == nil || !depsEqual(b.deps, deps)) {
		b.pending = true
	}
	b.deps = append(b.deps[:0:0], deps...)
	return b
}

// Dispose detaches every binder in reverse creation order, runs cleanups
// in reverse registration order, untracks watched sources and unmounts the
// unit. It is idempotent and must run on the loop goroutine.
func (u *Unit) Dispose() {
	u.disposeOnce.Do(func() {
		u.disposed.Store(true)

		for i := len(u.binders) - 1; i >= 0; i-- {
			u.binders[i].Detach()
		}
		for i := len(u.cleanups) - 1; i >= 0; i-- {
			u.safeCleanup(u.cleanups[i])
		}
		u.cleanups = nil

		for _, w := range u.watched {
			w.Untrack(u)
		}
		u.watched = nil

		u.loop.unregister(u)
	})
}

// Misuse reports invalid hook arguments. In debug mode it panics with err,
// which aborts the render; otherwise err is logged and the hook carries on
// with its fallback.
func (u *Unit) Misuse(err error) {
	if u.loop.debug {
		panic(err)
	}
	u.logger.Error("hook misuse", "error", err)
}

func (u *Unit) safeCleanup(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			u.logger.Error("cleanup panic", "panic", r)
		}
	}()
	fn()
}
