package use

import (
	"testing"
	"time"

	"github.com/vango-dev/use/pkg/platform"
	"github.com/vango-dev/use/pkg/runtime"
)

func TestIdleAfterTimeoutResetByActivity(t *testing.T) {
	b, clock, loop := newBrowser(t, platform.BrowserOptions{})
	var idle *IdleState

	loop.Mount(func(u *runtime.Unit) {
		idle = Idle(u, time.Minute, IdleOptions{})
	})
	loop.Flush()

	if idle.Idle() {
		t.Fatal("Idle() = true before timeout, want false")
	}

	clock.Advance(59 * time.Second)
	loop.Flush()
	if idle.Idle() {
		t.Fatal("Idle() = true at 59s, want false")
	}

	clock.Advance(time.Second)
	loop.Flush()
	if !idle.Idle() {
		t.Fatal("Idle() = false at 60s, want true")
	}

	b.Window().Dispatch(platform.Event{Type: platform.EventMouseMove})
	loop.Flush()
	if idle.Idle() {
		t.Fatal("Idle() = true after mousemove, want false")
	}
	if got, want := idle.LastActive(), epoch.Add(time.Minute); !got.Equal(want) {
		t.Errorf("LastActive() = %v, want %v", got, want)
	}

	clock.Advance(time.Minute)
	loop.Flush()
	if !idle.Idle() {
		t.Error("Idle() = false a minute after activity, want true")
	}
}

func TestIdleCustomEvents(t *testing.T) {
	b, clock, loop := newBrowser(t, platform.BrowserOptions{})
	var idle *IdleState

	loop.Mount(func(u *runtime.Unit) {
		idle = Idle(u, time.Second, IdleOptions{Events: []string{platform.EventClick}, Initial: true})
	})
	loop.Flush()
	if !idle.Idle() {
		t.Fatal("Idle() = false with Initial, want true")
	}

	b.Window().Dispatch(platform.Event{Type: platform.EventMouseMove})
	loop.Flush()
	if !idle.Idle() {
		t.Error("mousemove counted as activity with custom events")
	}

	b.Window().Dispatch(platform.Event{Type: platform.EventClick})
	loop.Flush()
	if idle.Idle() {
		t.Error("click not counted as activity")
	}

	clock.Advance(time.Second)
	loop.Flush()
	if !idle.Idle() {
		t.Error("Idle() = false after timeout, want true")
	}
}

func TestIdleVisibility(t *testing.T) {
	tests := []struct {
		name   string
		ignore bool
		want   bool
	}{
		{"counts visibility", false, false},
		{"ignores visibility", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, clock, loop := newBrowser(t, platform.BrowserOptions{})
			var idle *IdleState
			loop.Mount(func(u *runtime.Unit) {
				idle = Idle(u, time.Second, IdleOptions{IgnoreVisibility: tt.ignore})
			})
			clock.Advance(time.Second)
			loop.Flush()

			b.SetVisibility("hidden")
			b.SetVisibility("visible")
			loop.Flush()

			if got := idle.Idle(); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIdleDisposeStopsTimer(t *testing.T) {
	b, clock, loop := newBrowser(t, platform.BrowserOptions{})
	u := loop.Mount(func(u *runtime.Unit) {
		Idle(u, time.Second, IdleOptions{})
	})
	loop.Flush()

	u.Dispose()

	if got := clock.Pending(); got != 0 {
		t.Errorf("pending timers = %d, want 0", got)
	}
	if got := b.Window().ListenerCount(platform.EventMouseMove); got != 0 {
		t.Errorf("mousemove listeners = %d, want 0", got)
	}
}
