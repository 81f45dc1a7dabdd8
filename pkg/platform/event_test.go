package platform

import "testing"

func TestTargetAddRemove(t *testing.T) {
	target := NewTarget("test")
	calls := 0
	l := NewListener(func(Event) { calls++ })

	target.AddEventListener("ping", l, Options{})
	target.AddEventListener("ping", l, Options{}) // same tuple, ignored
	if n := target.ListenerCount("ping"); n != 1 {
		t.Fatalf("ListenerCount: got %d, want 1", n)
	}

	target.Dispatch(Event{Type: "ping"})
	if calls != 1 {
		t.Errorf("calls: got %d, want 1", calls)
	}

	// Capture flag is part of the identity.
	target.RemoveEventListener("ping", l, Options{Capture: true})
	if n := target.ListenerCount("ping"); n != 1 {
		t.Errorf("remove with different capture flag should not match, count=%d", n)
	}

	target.RemoveEventListener("ping", l, Options{})
	target.RemoveEventListener("ping", l, Options{})
	target.Dispatch(Event{Type: "ping"})
	if calls != 1 {
		t.Errorf("calls after remove: got %d, want 1", calls)
	}
}

func TestTargetDispatchOrder(t *testing.T) {
	target := NewTarget("test")
	var order []string
	bubble := NewListener(func(Event) { order = append(order, "bubble") })
	capture := NewListener(func(Event) { order = append(order, "capture") })

	target.AddEventListener("x", bubble, Options{})
	target.AddEventListener("x", capture, Options{Capture: true})
	target.Dispatch(Event{Type: "x"})

	if len(order) != 2 || order[0] != "capture" || order[1] != "bubble" {
		t.Errorf("order: got %v, want [capture bubble]", order)
	}
}

func TestTargetOnce(t *testing.T) {
	target := NewTarget("test")
	calls := 0
	l := NewListener(func(e Event) {
		calls++
		if e.Target != EventTarget(target) {
			t.Error("event target should default to the dispatching target")
		}
	})
	target.AddEventListener("x", l, Options{Once: true})

	target.Dispatch(Event{Type: "x"})
	target.Dispatch(Event{Type: "x"})
	if calls != 1 {
		t.Errorf("calls: got %d, want 1", calls)
	}
	if n := target.ListenerCount("x"); n != 0 {
		t.Errorf("once listener should be removed, count=%d", n)
	}
}

func TestNilListenerIgnored(t *testing.T) {
	target := NewTarget("test")
	target.AddEventListener("x", nil, Options{})
	if n := target.ListenerCount("x"); n != 0 {
		t.Errorf("nil listener registered, count=%d", n)
	}
	var l *Listener
	l.Handle(Event{}) // must not panic
}
