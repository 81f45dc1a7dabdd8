package use

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/vango-dev/use/pkg/platform"
	"github.com/vango-dev/use/pkg/runtime"
)

// releaseLoop returns a loop without debug checks that logs to buf.
func releaseLoop(t *testing.T, p *platform.Platform, buf *bytes.Buffer) *runtime.Loop {
	t.Helper()
	loop := runtime.NewLoop(runtime.Config{
		Platform: p,
		Logger:   slog.New(slog.NewTextHandler(buf, nil)),
	})
	t.Cleanup(loop.Close)
	return loop
}

func TestMisusePanicsInDebug(t *testing.T) {
	tests := []struct {
		name   string
		render func(u *runtime.Unit)
	}{
		{"empty breakpoints", func(u *runtime.Unit) { Breakpoints(u, map[string]int{}) }},
		{"zero idle timeout", func(u *runtime.Unit) { Idle(u, 0, IdleOptions{}) }},
		{"negative interval", func(u *runtime.Unit) { Interval(u, -time.Second, nil) }},
		{"negative timeout", func(u *runtime.Unit) { Timeout(u, -time.Second, nil) }},
		{"unserializable value", func(u *runtime.Unit) {
			LocalStorage(u, "fn", func() {}, StorageOptions[func()]{})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, loop := newBrowser(t, platform.BrowserOptions{})
			loop.Mount(tt.render)
			if got := loop.Stats().Panics; got != 1 {
				t.Errorf("Panics = %d, want 1", got)
			}
		})
	}
}

func TestMisuseLoggedOutsideDebug(t *testing.T) {
	var buf bytes.Buffer
	clock := platform.NewFakeClock(epoch)
	b := platform.NewBrowser(platform.BrowserOptions{Clock: clock})
	loop := releaseLoop(t, b.Platform(), &buf)

	var idle *IdleState
	loop.Mount(func(u *runtime.Unit) {
		idle = Idle(u, -time.Second, IdleOptions{})
	})
	loop.Flush()

	if got := loop.Stats().Panics; got != 0 {
		t.Errorf("Panics = %d, want 0", got)
	}
	if !strings.Contains(buf.String(), "use.idle: M002") {
		t.Errorf("log missing misuse entry:\n%s", buf.String())
	}

	clock.Advance(DefaultIdleTimeout - time.Second)
	loop.Flush()
	if idle.Idle() {
		t.Error("idle before the default timeout")
	}
	clock.Advance(time.Second)
	loop.Flush()
	if !idle.Idle() {
		t.Error("not idle after the default timeout")
	}
}

func TestMisuseEmptyBreakpointsOutsideDebug(t *testing.T) {
	var buf bytes.Buffer
	loop := releaseLoop(t, platform.NewBrowser(platform.BrowserOptions{}).Platform(), &buf)

	var set *BreakpointSet
	loop.Mount(func(u *runtime.Unit) {
		set = Breakpoints(u, nil)
	})
	loop.Flush()

	if got := set.Current(); len(got) != 0 {
		t.Errorf("Current() = %v, want empty", got)
	}
	if got := set.Active(); got != "" {
		t.Errorf("Active() = %q, want empty", got)
	}
	if !strings.Contains(buf.String(), "use.breakpoints: M002") {
		t.Errorf("log missing misuse entry:\n%s", buf.String())
	}
}
