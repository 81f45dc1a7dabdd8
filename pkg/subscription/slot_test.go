package subscription

import (
	"testing"

	"github.com/vango-dev/use/pkg/platform"
	"github.com/vango-dev/use/pkg/reactive"
)

func TestSlotBindSameTupleKeepsSubscription(t *testing.T) {
	reg := NewRegistry()
	slot := reg.NewSlot()
	target := platform.NewTarget("window")
	l := platform.NewListener(func(platform.Event) {})

	if !slot.Bind(Static(target), "resize", l, platform.Options{}) {
		t.Fatal("first Bind returned false")
	}
	for i := 0; i < 3; i++ {
		if slot.Bind(Static(target), "resize", l, platform.Options{}) {
			t.Errorf("Bind #%d with same tuple rebound", i+2)
		}
	}

	if got := reg.Stats().Attaches; got != 1 {
		t.Errorf("Attaches = %d, want 1", got)
	}
}

func TestSlotRebindDetachesFirst(t *testing.T) {
	tests := []struct {
		name   string
		rebind func(s *Slot, a, b *platform.Target, l, l2 *platform.Listener)
	}{
		{
			name: "target change",
			rebind: func(s *Slot, a, b *platform.Target, l, l2 *platform.Listener) {
				s.Bind(Static(b), "click", l, platform.Options{})
			},
		},
		{
			name: "event change",
			rebind: func(s *Slot, a, b *platform.Target, l, l2 *platform.Listener) {
				s.Bind(Static(a), "keydown", l, platform.Options{})
			},
		},
		{
			name: "listener change",
			rebind: func(s *Slot, a, b *platform.Target, l, l2 *platform.Listener) {
				s.Bind(Static(a), "click", l2, platform.Options{})
			},
		},
		{
			name: "options change",
			rebind: func(s *Slot, a, b *platform.Target, l, l2 *platform.Listener) {
				s.Bind(Static(a), "click", l, platform.Options{Capture: true})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := NewRegistry()
			slot := reg.NewSlot()
			a := platform.NewTarget("a")
			b := platform.NewTarget("b")
			l := platform.NewListener(func(platform.Event) {})
			l2 := platform.NewListener(func(platform.Event) {})

			slot.Bind(Static(a), "click", l, platform.Options{})
			tt.rebind(slot, a, b, l, l2)

			total := 0
			for _, tgt := range []*platform.Target{a, b} {
				total += tgt.ListenerCount("click") + tgt.ListenerCount("keydown")
			}
			if total != 1 {
				t.Errorf("registrations = %d, want 1", total)
			}

			stats := reg.Stats()
			if stats.Active != 1 {
				t.Errorf("Active = %d, want 1", stats.Active)
			}
			if stats.Attaches != 2 || stats.Detaches != 1 {
				t.Errorf("Stats = %+v, want 2 attaches and 1 detach", stats)
			}
		})
	}
}

func TestSlotPendingThenResolved(t *testing.T) {
	reg := NewRegistry()
	slot := reg.NewSlot()
	ref := reactive.NewRef[*platform.Target]()
	l := platform.NewListener(func(platform.Event) {})

	slot.Bind(FromRef(ref), "click", l, platform.Options{})
	if slot.Attached() {
		t.Fatal("slot attached before ref was set")
	}

	button := platform.NewTarget("button")
	ref.Set(button)

	slot.Bind(FromRef(ref), "click", l, platform.Options{})
	slot.Bind(FromRef(ref), "click", l, platform.Options{})

	if !slot.Attached() {
		t.Fatal("slot not attached after ref was set")
	}
	if got := button.ListenerCount("click"); got != 1 {
		t.Errorf("ListenerCount = %d, want 1", got)
	}
	if got := reg.Stats().Attaches; got != 1 {
		t.Errorf("Attaches = %d, want 1", got)
	}
}

func TestSlotRelease(t *testing.T) {
	reg := NewRegistry()
	target := platform.NewTarget("window")
	l := platform.NewListener(func(platform.Event) {})

	t.Run("attached", func(t *testing.T) {
		slot := reg.NewSlot()
		slot.Bind(Static(target), "resize", l, platform.Options{})
		slot.Release()
		slot.Release()

		if got := target.ListenerCount("resize"); got != 0 {
			t.Errorf("ListenerCount = %d, want 0", got)
		}
		if slot.Bind(Static(target), "resize", l, platform.Options{}) {
			t.Error("Bind after Release rebound")
		}
		if got := target.ListenerCount("resize"); got != 0 {
			t.Errorf("ListenerCount after Bind on released slot = %d, want 0", got)
		}
	})

	t.Run("never attached", func(t *testing.T) {
		slot := reg.NewSlot()
		slot.Release()
		if slot.Attached() {
			t.Error("released empty slot reports attached")
		}
		if slot.Target() != nil {
			t.Error("released empty slot has a target")
		}
	})
}

func TestSlotOnceExpires(t *testing.T) {
	reg := NewRegistry()
	slot := reg.NewSlot()
	target := platform.NewTarget("button")
	calls := 0
	l := platform.NewListener(func(platform.Event) { calls++ })

	slot.Bind(Static(target), "click", l, platform.Options{Once: true})
	target.Dispatch(platform.Event{Type: "click"})
	target.Dispatch(platform.Event{Type: "click"})

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if got := target.ListenerCount("click"); got != 0 {
		t.Errorf("ListenerCount = %d, want 0", got)
	}
	if slot.Attached() {
		t.Error("slot attached after its once listener fired")
	}
	stats := reg.Stats()
	if stats.Active != 0 || stats.Attaches != 1 || stats.Detaches != 1 {
		t.Errorf("Stats = %+v, want 0 active, 1 attach, 1 detach", stats)
	}
	if got := len(reg.Snapshot()); got != 0 {
		t.Errorf("Snapshot len = %d, want 0", got)
	}

	if !slot.Bind(Static(target), "click", l, platform.Options{Once: true}) {
		t.Fatal("Bind with the same tuple did not re-arm")
	}
	target.Dispatch(platform.Event{Type: "click"})
	if calls != 2 {
		t.Errorf("calls after re-arm = %d, want 2", calls)
	}

	slot.Release()
	stats = reg.Stats()
	if stats.Attaches != stats.Detaches || stats.Active != 0 {
		t.Errorf("Stats after Release = %+v, want balanced", stats)
	}
}

// journal records registrations across targets in call order.
type journal struct {
	ops  []string
	live int
	peak int
}

type recordingTarget struct {
	name string
	j    *journal
}

func (r *recordingTarget) AddEventListener(event string, l *platform.Listener, opts platform.Options) {
	r.j.live++
	if r.j.live > r.j.peak {
		r.j.peak = r.j.live
	}
	r.j.ops = append(r.j.ops, "add "+r.name+" "+event)
}

func (r *recordingTarget) RemoveEventListener(event string, l *platform.Listener, opts platform.Options) {
	r.j.live--
	r.j.ops = append(r.j.ops, "remove "+r.name+" "+event)
}

func TestSlotRebindOrder(t *testing.T) {
	l := platform.NewListener(func(platform.Event) {})
	l2 := platform.NewListener(func(platform.Event) {})

	tests := []struct {
		name   string
		rebind func(s *Slot, a, b *recordingTarget)
		want   []string
	}{
		{
			name:   "target change",
			rebind: func(s *Slot, a, b *recordingTarget) { s.Bind(Static(b), "click", l, platform.Options{}) },
			want:   []string{"add a click", "remove a click", "add b click"},
		},
		{
			name:   "event change",
			rebind: func(s *Slot, a, b *recordingTarget) { s.Bind(Static(a), "keydown", l, platform.Options{}) },
			want:   []string{"add a click", "remove a click", "add a keydown"},
		},
		{
			name:   "listener change",
			rebind: func(s *Slot, a, b *recordingTarget) { s.Bind(Static(a), "click", l2, platform.Options{}) },
			want:   []string{"add a click", "remove a click", "add a click"},
		},
		{
			name: "options change",
			rebind: func(s *Slot, a, b *recordingTarget) {
				s.Bind(Static(a), "click", l, platform.Options{Passive: true})
			},
			want: []string{"add a click", "remove a click", "add a click"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j := &journal{}
			a := &recordingTarget{name: "a", j: j}
			b := &recordingTarget{name: "b", j: j}
			slot := NewRegistry().NewSlot()

			slot.Bind(Static(a), "click", l, platform.Options{})
			tt.rebind(slot, a, b)

			if len(j.ops) != len(tt.want) {
				t.Fatalf("ops = %v, want %v", j.ops, tt.want)
			}
			for i := range tt.want {
				if j.ops[i] != tt.want[i] {
					t.Errorf("ops[%d] = %q, want %q", i, j.ops[i], tt.want[i])
				}
			}
			if j.peak != 1 {
				t.Errorf("peak live registrations = %d, want 1", j.peak)
			}
			if j.live != 1 {
				t.Errorf("live registrations = %d, want 1", j.live)
			}
		})
	}
}
