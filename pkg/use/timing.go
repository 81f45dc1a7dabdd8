package use

import (
	"fmt"
	"reflect"
	"time"

	"github.com/vango-dev/use/pkg/platform"
	"github.com/vango-dev/use/pkg/reactive"
	"github.com/vango-dev/use/pkg/runtime"
)

// timerSlot runs at most one pending callback on the loop.
type timerSlot struct {
	unit  *runtime.Unit
	clock platform.Clock
	timer platform.Timer
	gen   uint64
}

func newTimerSlot(u *runtime.Unit) *timerSlot {
	t := &timerSlot{unit: u, clock: u.Platform().ClockOrSystem()}
	u.OnCleanup(t.stop)
	return t
}

// start replaces any pending callback with fn after d.
func (t *timerSlot) start(d time.Duration, fn func()) {
	t.stop()
	gen := t.gen
	t.timer = t.clock.AfterFunc(d, func() {
		t.unit.Dispatch(func() {
			if t.gen != gen {
				return
			}
			t.timer = nil
			fn()
		})
	})
}

func (t *timerSlot) stop() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.gen++
}

func (t *timerSlot) pending() bool { return t.timer != nil }

type debounceState[T any] struct {
	value *reactive.Cell[T]
	last  T
	timer *timerSlot
}

// Debounce returns value once it has stopped changing for wait.
func Debounce[T any](u *runtime.Unit, value T, wait time.Duration) T {
	st := runtime.UseSlot(u, "use.Debounce", func() *debounceState[T] {
		return &debounceState[T]{
			value: reactive.NewCell(value),
			last:  value,
			timer: newTimerSlot(u),
		}
	})
	u.Watch(st.value)

	if !reflect.DeepEqual(st.last, value) {
		st.last = value
		st.timer.start(wait, func() { st.value.Set(value) })
	}
	return st.value.Get()
}

// DebounceOptions configures DebounceFn.
type DebounceOptions struct {
	// MaxWait forces a call when calls keep arriving for this long.
	// Zero disables it.
	MaxWait time.Duration
}

// Debounced is the result of DebounceFn.
type Debounced struct {
	fn      *reactive.Latest[func()]
	wait    time.Duration
	opts    DebounceOptions
	timer   *timerSlot
	first   time.Time
	waiting bool
}

// Call schedules the function, pushing back any scheduled call.
func (d *Debounced) Call() {
	now := d.timer.clock.Now()
	if !d.waiting {
		d.first = now
		d.waiting = true
	}

	delay := d.wait
	if d.opts.MaxWait > 0 {
		if remaining := d.opts.MaxWait - now.Sub(d.first); remaining < delay {
			delay = remaining
		}
		if delay < 0 {
			delay = 0
		}
	}
	d.timer.start(delay, d.fire)
}

func (d *Debounced) fire() {
	d.waiting = false
	if fn := d.fn.Load(); fn != nil {
		fn()
	}
}

// Flush runs a scheduled call now.
func (d *Debounced) Flush() {
	if !d.timer.pending() {
		return
	}
	d.timer.stop()
	d.fire()
}

// Cancel drops a scheduled call.
func (d *Debounced) Cancel() {
	d.timer.stop()
	d.waiting = false
}

// Pending reports whether a call is scheduled.
func (d *Debounced) Pending() bool { return d.timer.pending() }

// DebounceFn returns a debounced caller of fn. The latest fn is called.
func DebounceFn(u *runtime.Unit, fn func(), wait time.Duration, opts DebounceOptions) *Debounced {
	d := runtime.UseSlot(u, "use.DebounceFn", func() *Debounced {
		return &Debounced{fn: reactive.NewLatest(fn), timer: newTimerSlot(u)}
	})
	d.fn.Store(fn)
	d.wait, d.opts = wait, opts
	return d
}

type throttleState[T any] struct {
	value    *reactive.Cell[T]
	last     T
	emitted  time.Time
	trailing T
	timer    *timerSlot
}

// Throttle returns value, updating at most once per wait. A change inside
// the window is applied when the window ends.
func Throttle[T any](u *runtime.Unit, value T, wait time.Duration) T {
	st := runtime.UseSlot(u, "use.Throttle", func() *throttleState[T] {
		return &throttleState[T]{
			value: reactive.NewCell(value),
			last:  value,
			timer: newTimerSlot(u),
		}
	})
	u.Watch(st.value)

	if !reflect.DeepEqual(st.last, value) {
		st.last = value
		now := st.timer.clock.Now()
		elapsed := now.Sub(st.emitted)
		if st.emitted.IsZero() || elapsed >= wait {
			st.timer.stop()
			st.emitted = now
			st.value.Set(value)
		} else {
			st.trailing = value
			if !st.timer.pending() {
				st.timer.start(wait-elapsed, func() {
					st.emitted = st.timer.clock.Now()
					st.value.Set(st.trailing)
				})
			}
		}
	}
	return st.value.Get()
}

// IntervalState is the result of Interval.
type IntervalState struct {
	counter *reactive.Cell[int]
	active  *reactive.Cell[bool]
	fn      *reactive.Latest[func(int)]
	every   time.Duration
	timer   *timerSlot
}

// Counter returns how many ticks fired.
func (i *IntervalState) Counter() int { return i.counter.Get() }

// Active reports whether the interval is running.
func (i *IntervalState) Active() bool { return i.active.Get() }

// Pause stops ticking.
func (i *IntervalState) Pause() {
	i.timer.stop()
	i.active.Set(false)
}

// Resume restarts ticking.
func (i *IntervalState) Resume() {
	if i.every <= 0 {
		return
	}
	i.active.Set(true)
	i.schedule()
}

// Reset sets the counter back to zero.
func (i *IntervalState) Reset() { i.counter.Set(0) }

func (i *IntervalState) schedule() {
	i.timer.start(i.every, func() {
		n := i.counter.Get() + 1
		i.counter.Set(n)
		if fn := i.fn.Load(); fn != nil {
			fn(n)
		}
		if i.active.Get() {
			i.schedule()
		}
	})
}

// Interval calls fn every d, starting one d after mount. fn may be nil.
func Interval(u *runtime.Unit, d time.Duration, fn func(n int)) *IntervalState {
	if d <= 0 {
		misuse(u, "use.interval", fmt.Sprintf("interval must be positive, got %s", d))
	}
	st := runtime.UseSlot(u, "use.Interval", func() *IntervalState {
		return &IntervalState{
			counter: reactive.NewCell(0),
			active:  reactive.NewCell(false),
			fn:      reactive.NewLatest(fn),
			timer:   newTimerSlot(u),
		}
	})
	u.Watch(st.counter)
	u.Watch(st.active)
	st.fn.Store(fn)

	u.Effect([]any{d}, func() reactive.Cleanup {
		st.every = d
		st.Resume()
		return st.timer.stop
	})
	return st
}

// TimeoutState is the result of Timeout.
type TimeoutState struct {
	ready *reactive.Cell[bool]
	fn    *reactive.Latest[func()]
	after time.Duration
	timer *timerSlot
}

// Ready reports whether the timeout fired since the last Start.
func (t *TimeoutState) Ready() bool { return t.ready.Get() }

// Pending reports whether the timeout is armed.
func (t *TimeoutState) Pending() bool { return t.timer.pending() }

// Start (re)arms the timeout.
func (t *TimeoutState) Start() {
	t.ready.Set(false)
	t.timer.start(t.after, func() {
		t.ready.Set(true)
		if fn := t.fn.Load(); fn != nil {
			fn()
		}
	})
}

// Stop disarms the timeout.
func (t *TimeoutState) Stop() { t.timer.stop() }

// Timeout calls fn once, d after mount. fn may be nil.
func Timeout(u *runtime.Unit, d time.Duration, fn func()) *TimeoutState {
	if d < 0 {
		misuse(u, "use.timeout", fmt.Sprintf("timeout must not be negative, got %s", d))
		d = 0
	}
	st := runtime.UseSlot(u, "use.Timeout", func() *TimeoutState {
		return &TimeoutState{
			ready: reactive.NewCell(false),
			fn:    reactive.NewLatest(fn),
			timer: newTimerSlot(u),
		}
	})
	u.Watch(st.ready)
	st.fn.Store(fn)

	u.Effect([]any{d}, func() reactive.Cleanup {
		st.after = d
		st.Start()
		return st.timer.stop
	})
	return st
}
