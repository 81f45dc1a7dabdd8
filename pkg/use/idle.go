package use

import (
	"fmt"
	"time"

	"github.com/vango-dev/use/pkg/platform"
	"github.com/vango-dev/use/pkg/reactive"
	"github.com/vango-dev/use/pkg/runtime"
	"github.com/vango-dev/use/pkg/subscription"
)

// DefaultIdleTimeout replaces a timeout that is not positive.
const DefaultIdleTimeout = time.Minute

// DefaultIdleEvents are the window events that count as activity.
var DefaultIdleEvents = []string{
	platform.EventMouseMove,
	platform.EventMouseDown,
	platform.EventResize,
	platform.EventKeyDown,
	platform.EventTouchStart,
	platform.EventWheel,
}

// IdleOptions configures Idle.
type IdleOptions struct {
	// Events defaults to DefaultIdleEvents.
	Events []string

	// Initial is the idle state before the first timeout.
	Initial bool

	// IgnoreVisibility stops a document becoming visible from counting
	// as activity.
	IgnoreVisibility bool
}

// IdleState is the result of Idle.
type IdleState struct {
	idle       *reactive.Cell[bool]
	lastActive *reactive.Cell[time.Time]
	st         *idleState
}

// Idle reports whether no activity happened for the timeout.
func (s *IdleState) Idle() bool { return s.idle.Get() }

// LastActive returns when activity was last seen.
func (s *IdleState) LastActive() time.Time { return s.lastActive.Get() }

// Reset records activity now and restarts the timer.
func (s *IdleState) Reset() { s.st.reset() }

type idleState struct {
	clock   platform.Clock
	timeout time.Duration

	idle       *reactive.Cell[bool]
	lastActive *reactive.Cell[time.Time]
	timer      *timerSlot

	activity   *platform.Listener
	visibility *platform.Listener
	events     *multiBinding
	visSlot    *subscription.Slot
}

func (st *idleState) arm() {
	st.timer.start(st.timeout, func() { st.idle.Set(true) })
}

func (st *idleState) reset() {
	st.idle.Set(false)
	st.lastActive.Set(st.clock.Now())
	st.arm()
}

// Idle tracks user inactivity. After timeout without any of the activity
// events on the window, Idle() becomes true; the next activity event sets
// it back to false and restarts the timer. Without a window the timer still
// runs, so a headless unit goes idle after the first timeout.
func Idle(u *runtime.Unit, timeout time.Duration, opts IdleOptions) *IdleState {
	p := u.Platform()
	if timeout <= 0 {
		misuse(u, "use.idle", fmt.Sprintf("timeout must be positive, got %s", timeout))
		timeout = DefaultIdleTimeout
	}
	events := opts.Events
	if events == nil {
		events = DefaultIdleEvents
	}

	st := runtime.UseSlot(u, "use.Idle", func() *idleState {
		clock := p.ClockOrSystem()
		s := &idleState{
			clock:      clock,
			timer:      newTimerSlot(u),
			timeout:    timeout,
			idle:       reactive.NewCell(opts.Initial),
			lastActive: reactive.NewCell(clock.Now()),
			events:     newMultiBinding(u),
			visSlot:    u.Registry().NewSlot(),
		}
		s.activity = platform.NewListener(func(platform.Event) { s.reset() })
		s.visibility = platform.NewListener(func(platform.Event) {
			if p.Document != nil && p.Document.VisibilityState() == "visible" {
				s.reset()
			}
		})
		u.OnCleanup(s.visSlot.Release)
		return s
	})
	u.Watch(st.idle)
	u.Watch(st.lastActive)

	u.Effect([]any{timeout}, func() reactive.Cleanup {
		st.timeout = timeout
		st.arm()
		return st.timer.stop
	})

	u.Effect([]any{signature(events), opts.IgnoreVisibility}, func() reactive.Cleanup {
		st.events.bind(eventBindings(subscription.Window(p), events), st.activity, platform.Options{Passive: true})
		if opts.IgnoreVisibility {
			st.visSlot.Bind(subscription.Static(nil), platform.EventVisibilityChange, st.visibility, platform.Options{})
		} else {
			st.visSlot.Bind(subscription.Document(p), platform.EventVisibilityChange, st.visibility, platform.Options{})
		}
		return nil
	})

	return &IdleState{idle: st.idle, lastActive: st.lastActive, st: st}
}
