package subscription

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/vango-dev/use/pkg/platform"
	"github.com/vango-dev/use/pkg/reactive"
)

func TestSubscribeAttachesAndUnsubscribeDetaches(t *testing.T) {
	reg := NewRegistry()
	target := platform.NewTarget("window")

	calls := 0
	l := platform.NewListener(func(platform.Event) { calls++ })

	sub := reg.Subscribe(Static(target), "resize", l, platform.Options{})
	if !sub.Attached() {
		t.Fatal("Attached() = false, want true")
	}
	if got := target.ListenerCount("resize"); got != 1 {
		t.Fatalf("ListenerCount = %d, want 1", got)
	}

	target.Dispatch(platform.Event{Type: "resize"})
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}

	sub.Unsubscribe()
	sub.Unsubscribe()

	if sub.Attached() {
		t.Error("Attached() = true after Unsubscribe")
	}
	if got := target.ListenerCount("resize"); got != 0 {
		t.Errorf("ListenerCount = %d, want 0", got)
	}

	stats := reg.Stats()
	if stats.Attaches != 1 || stats.Detaches != 1 || stats.Active != 0 {
		t.Errorf("Stats = %+v, want 1 attach, 1 detach, 0 active", stats)
	}
}

func TestSubscribePending(t *testing.T) {
	reg := NewRegistry()
	l := platform.NewListener(func(platform.Event) {})

	t.Run("nil target", func(t *testing.T) {
		sub := reg.Subscribe(Static(nil), "click", l, platform.Options{})
		if sub.Attached() || !sub.Pending() {
			t.Errorf("Attached/Pending = %v/%v, want false/true", sub.Attached(), sub.Pending())
		}
		sub.Unsubscribe()
	})

	t.Run("typed nil target", func(t *testing.T) {
		var target *platform.Target
		sub := reg.Subscribe(Static(target), "click", l, platform.Options{})
		if sub.Attached() {
			t.Error("typed nil target attached")
		}
	})

	t.Run("unattached ref", func(t *testing.T) {
		ref := reactive.NewRef[*platform.Target]()
		sub := reg.Subscribe(FromRef(ref), "click", l, platform.Options{})
		if sub.Attached() {
			t.Error("unattached ref attached")
		}
	})

	t.Run("nil resolver", func(t *testing.T) {
		sub := reg.Subscribe(nil, "click", l, platform.Options{})
		if sub.Attached() {
			t.Error("nil resolver attached")
		}
	})

	stats := reg.Stats()
	if stats.Pending != 4 || stats.Attaches != 0 {
		t.Errorf("Stats = %+v, want 4 pending, 0 attaches", stats)
	}
}

func TestSubscribeFromAttachedRef(t *testing.T) {
	reg := NewRegistry()
	target := platform.NewTarget("button")
	ref := reactive.RefOf(target)

	sub := reg.Subscribe(FromRef(ref), "click", platform.NewListener(func(platform.Event) {}), platform.Options{})
	defer sub.Unsubscribe()

	if sub.Target() != platform.EventTarget(target) {
		t.Errorf("Target = %v, want %v", sub.Target(), target)
	}
	if got := target.ListenerCount("click"); got != 1 {
		t.Errorf("ListenerCount = %d, want 1", got)
	}
}

func TestPlatformResolvers(t *testing.T) {
	b := platform.NewBrowser(platform.BrowserOptions{})
	p := b.Platform()

	if Resolve(Window(p)) != platform.EventTarget(b.Window()) {
		t.Error("Window resolver did not return the window")
	}
	if Resolve(Document(p)) == nil {
		t.Error("Document resolver returned nil")
	}
	if Resolve(Window(platform.Headless())) != nil {
		t.Error("Window resolver on headless platform should be nil")
	}
	if Resolve(Document(nil)) != nil {
		t.Error("Document resolver on nil platform should be nil")
	}
}

func TestSnapshot(t *testing.T) {
	reg := NewRegistry()
	win := platform.NewTarget("window")
	doc := platform.NewTarget("document")

	a := reg.Subscribe(Static(win), "resize", platform.NewListener(func(platform.Event) {}), platform.Options{})
	b := reg.Subscribe(Static(doc), "keydown", platform.NewListener(func(platform.Event) {}), platform.Options{Capture: true})

	infos := reg.Snapshot()
	if len(infos) != 2 {
		t.Fatalf("len(Snapshot) = %d, want 2", len(infos))
	}
	if infos[0].Target != "window" || infos[0].Event != "resize" {
		t.Errorf("infos[0] = %+v", infos[0])
	}
	if infos[1].Target != "document" || !infos[1].Capture {
		t.Errorf("infos[1] = %+v", infos[1])
	}

	a.Unsubscribe()
	b.Unsubscribe()
	if got := len(reg.Snapshot()); got != 0 {
		t.Errorf("len(Snapshot) after unsubscribe = %d, want 0", got)
	}
}

func TestRegistryMetrics(t *testing.T) {
	promReg := prometheus.NewRegistry()
	reg := NewRegistry(WithRegisterer(promReg), WithNamespace("test"))
	target := platform.NewTarget("window")

	sub := reg.Subscribe(Static(target), "resize", platform.NewListener(func(platform.Event) {}), platform.Options{})
	reg.Subscribe(Static(nil), "resize", platform.NewListener(func(platform.Event) {}), platform.Options{})

	expected := `
# HELP test_subscriptions_active Number of listeners currently attached to an event source
# TYPE test_subscriptions_active gauge
test_subscriptions_active 1
`
	if err := testutil.GatherAndCompare(promReg, strings.NewReader(expected), "test_subscriptions_active"); err != nil {
		t.Errorf("active gauge: %v", err)
	}

	sub.Unsubscribe()

	expected = `
# HELP test_subscriptions_detach_total Total number of listeners detached
# TYPE test_subscriptions_detach_total counter
test_subscriptions_detach_total{event="resize"} 1
`
	if err := testutil.GatherAndCompare(promReg, strings.NewReader(expected), "test_subscriptions_detach_total"); err != nil {
		t.Errorf("detach counter: %v", err)
	}

	expected = `
# HELP test_subscriptions_pending_total Total number of subscriptions whose source was not resolved
# TYPE test_subscriptions_pending_total counter
test_subscriptions_pending_total{event="resize"} 1
`
	if err := testutil.GatherAndCompare(promReg, strings.NewReader(expected), "test_subscriptions_pending_total"); err != nil {
		t.Errorf("pending counter: %v", err)
	}
}
