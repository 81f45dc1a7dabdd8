package use

import (
	"testing"

	"github.com/vango-dev/use/pkg/platform"
	"github.com/vango-dev/use/pkg/reactive"
	"github.com/vango-dev/use/pkg/runtime"
	"github.com/vango-dev/use/pkg/subscription"
)

func TestEventCountOnUnattachedRef(t *testing.T) {
	_, _, loop := newBrowser(t, platform.BrowserOptions{})
	ref := reactive.NewRef[*platform.Target]()
	var count *Count

	u := loop.Mount(func(u *runtime.Unit) {
		count = EventCount(u, subscription.FromRef(ref), platform.EventClick)
	})
	loop.Flush()

	if count.Attached() {
		t.Fatal("Attached() = true before the ref is set")
	}
	if got := count.Value(); got != 0 {
		t.Errorf("Value() = %d, want 0", got)
	}

	button := platform.NewTarget("button")
	ref.Set(button)
	loop.Flush()

	if !count.Attached() {
		t.Fatal("Attached() = false after the ref is set")
	}
	if got := button.ListenerCount(platform.EventClick); got != 1 {
		t.Errorf("click listeners = %d, want 1", got)
	}

	u.Rerender()
	loop.Flush()
	if got := loop.Registry().Stats().Attaches; got != 1 {
		t.Errorf("attaches = %d, want 1", got)
	}

	button.Dispatch(platform.Event{Type: platform.EventClick})
	button.Dispatch(platform.Event{Type: platform.EventClick})
	loop.Flush()
	if got := count.Value(); got != 2 {
		t.Errorf("Value() = %d, want 2", got)
	}

	count.Reset()
	loop.Flush()
	if got := count.Value(); got != 0 {
		t.Errorf("after Reset Value() = %d, want 0", got)
	}

	u.Dispose()
	if got := button.ListenerCount(platform.EventClick); got != 0 {
		t.Errorf("click listeners after dispose = %d, want 0", got)
	}
	stats := loop.Registry().Stats()
	if stats.Attaches != stats.Detaches {
		t.Errorf("attaches = %d, detaches = %d; want equal", stats.Attaches, stats.Detaches)
	}
}

func TestEventListenerRebindsOnTargetChange(t *testing.T) {
	_, _, loop := newBrowser(t, platform.BrowserOptions{})
	a, b := platform.NewTarget("a"), platform.NewTarget("b")
	ref := reactive.RefOf(a)

	loop.Mount(func(u *runtime.Unit) {
		EventListener(u, subscription.FromRef(ref), platform.EventClick, func(platform.Event) {}, platform.Options{})
	})
	loop.Flush()

	if a.ListenerCount(platform.EventClick) != 1 {
		t.Fatal("listener not attached to a")
	}

	ref.Set(b)
	loop.Flush()

	if got := a.ListenerCount(platform.EventClick); got != 0 {
		t.Errorf("listeners on a = %d, want 0", got)
	}
	if got := b.ListenerCount(platform.EventClick); got != 1 {
		t.Errorf("listeners on b = %d, want 1", got)
	}
	if got := loop.Registry().Stats().Active; got != 1 {
		t.Errorf("active = %d, want 1", got)
	}
}

func TestEventListenerCallsLatestHandler(t *testing.T) {
	b, _, loop := newBrowser(t, platform.BrowserOptions{})
	label := "first"
	var seen []string

	u := loop.Mount(func(u *runtime.Unit) {
		current := label
		EventListener(u, subscription.Window(u.Platform()), platform.EventClick, func(platform.Event) {
			seen = append(seen, current)
		}, platform.Options{})
	})
	loop.Flush()

	label = "second"
	u.Rerender()
	loop.Flush()

	b.Window().Dispatch(platform.Event{Type: platform.EventClick})

	if len(seen) != 1 || seen[0] != "second" {
		t.Errorf("seen = %v, want [second]", seen)
	}
	if got := b.Window().ListenerCount(platform.EventClick); got != 1 {
		t.Errorf("listeners = %d, want 1", got)
	}
}

func TestEventListenerOptionsChangeRebinds(t *testing.T) {
	b, _, loop := newBrowser(t, platform.BrowserOptions{})
	capture := false

	u := loop.Mount(func(u *runtime.Unit) {
		EventListener(u, subscription.Window(u.Platform()), platform.EventKeyDown, func(platform.Event) {}, platform.Options{Capture: capture})
	})
	loop.Flush()

	capture = true
	u.Rerender()
	loop.Flush()

	if got := b.Window().ListenerCount(platform.EventKeyDown); got != 1 {
		t.Errorf("listeners = %d, want 1", got)
	}
	stats := loop.Registry().Stats()
	if stats.Attaches != 2 || stats.Detaches != 1 {
		t.Errorf("attaches = %d, detaches = %d; want 2, 1", stats.Attaches, stats.Detaches)
	}
}

func TestListeningStop(t *testing.T) {
	b, _, loop := newBrowser(t, platform.BrowserOptions{})
	var l *Listening

	u := loop.Mount(func(u *runtime.Unit) {
		l = EventListener(u, subscription.Window(u.Platform()), platform.EventClick, func(platform.Event) {}, platform.Options{})
	})
	loop.Flush()

	l.Stop()
	u.Rerender()
	loop.Flush()

	if l.Attached() {
		t.Error("Attached() = true after Stop")
	}
	if got := b.Window().ListenerCount(platform.EventClick); got != 0 {
		t.Errorf("listeners = %d, want 0", got)
	}
}

// loggedTarget appends every registration change to a shared log and
// tracks how many registrations are live at once.
type loggedTarget struct {
	name string
	log  *[]string
	live *int
	peak *int
}

func (l *loggedTarget) AddEventListener(event string, _ *platform.Listener, _ platform.Options) {
	*l.live++
	if *l.live > *l.peak {
		*l.peak = *l.live
	}
	*l.log = append(*l.log, "add "+l.name)
}

func (l *loggedTarget) RemoveEventListener(event string, _ *platform.Listener, _ platform.Options) {
	*l.live--
	*l.log = append(*l.log, "remove "+l.name)
}

func TestEventListenerDetachesBeforeAttach(t *testing.T) {
	_, _, loop := newBrowser(t, platform.BrowserOptions{})
	var log []string
	var live, peak int
	a := &loggedTarget{name: "a", log: &log, live: &live, peak: &peak}
	b := &loggedTarget{name: "b", log: &log, live: &live, peak: &peak}
	ref := reactive.RefOf[*loggedTarget](a)
	capture := false

	u := loop.Mount(func(u *runtime.Unit) {
		EventListener(u, subscription.FromRef(ref), platform.EventClick, func(platform.Event) {}, platform.Options{Capture: capture})
	})
	loop.Flush()

	ref.Set(b)
	loop.Flush()

	capture = true
	u.Rerender()
	loop.Flush()

	u.Dispose()

	want := []string{"add a", "remove a", "add b", "remove b", "add b", "remove b"}
	if len(log) != len(want) {
		t.Fatalf("log = %v, want %v", log, want)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Errorf("log[%d] = %q, want %q", i, log[i], want[i])
		}
	}
	if peak != 1 {
		t.Errorf("peak live registrations = %d, want 1", peak)
	}
	if live != 0 {
		t.Errorf("live registrations after dispose = %d, want 0", live)
	}
}
