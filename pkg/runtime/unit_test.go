package runtime

import (
	"reflect"
	"testing"

	"github.com/vango-dev/use/pkg/reactive"
)

func TestUseSlotPersistsAcrossRenders(t *testing.T) {
	loop := newTestLoop(true)
	inits := 0
	var got []*int

	u := loop.Mount(func(u *Unit) {
		p := UseSlot(u, "counter", func() *int {
			inits++
			return new(int)
		})
		got = append(got, p)
	})

	u.Rerender()
	u.Rerender()

	if inits != 1 {
		t.Errorf("inits = %d, want 1", inits)
	}
	if len(got) != 3 || got[0] != got[1] || got[1] != got[2] {
		t.Errorf("slot values differ across renders")
	}
}

func TestHookOrderChangeDetected(t *testing.T) {
	loop := newTestLoop(true)
	flip := false

	u := loop.Mount(func(u *Unit) {
		if flip {
			UseSlot(u, "b", func() int { return 0 })
			UseSlot(u, "a", func() int { return 0 })
			return
		}
		UseSlot(u, "a", func() int { return 0 })
		UseSlot(u, "b", func() int { return 0 })
	})

	flip = true
	u.Rerender()

	if got := loop.Stats().Panics; got != 1 {
		t.Errorf("Panics = %d, want 1", got)
	}
}

func TestHookCountChangeDetected(t *testing.T) {
	loop := newTestLoop(true)
	extra := false

	u := loop.Mount(func(u *Unit) {
		UseSlot(u, "a", func() int { return 0 })
		if extra {
			UseSlot(u, "b", func() int { return 0 })
		}
	})

	extra = true
	u.Rerender()
	extra = false
	u.Rerender()

	if got := loop.Stats().Panics; got != 1 {
		t.Errorf("Panics = %d, want 1", got)
	}
}

func TestEffectLifecycle(t *testing.T) {
	loop := newTestLoop(false)
	dep := reactive.NewCell(1)
	var log []string
	var binder *Binder
	var stateDuringFirstRender State

	u := loop.Mount(func(u *Unit) {
		u.Watch(dep)
		d := dep.Get()
		binder = u.Effect([]any{d}, func() reactive.Cleanup {
			log = append(log, "setup")
			return func() { log = append(log, "cleanup") }
		})
		if u.Renders() == 1 {
			stateDuringFirstRender = binder.State()
		}
	})

	if stateDuringFirstRender != Unattached {
		t.Errorf("state during first render = %v, want unattached", stateDuringFirstRender)
	}
	if binder.State() != Attached {
		t.Errorf("state after mount = %v, want attached", binder.State())
	}

	// Same deps: no re-run.
	u.Rerender()
	if binder.Runs() != 1 {
		t.Errorf("Runs after same-deps render = %d, want 1", binder.Runs())
	}

	// Changed deps: cleanup then setup.
	dep.Set(2)
	loop.Flush()
	if binder.Runs() != 2 {
		t.Errorf("Runs after deps change = %d, want 2", binder.Runs())
	}

	u.Dispose()
	u.Dispose()

	want := []string{"setup", "cleanup", "setup", "cleanup"}
	if !reflect.DeepEqual(log, want) {
		t.Errorf("log = %v, want %v", log, want)
	}
	if binder.State() != Detached {
		t.Errorf("state after Dispose = %v, want detached", binder.State())
	}

	binder.Refresh()
	binder.attach()
	if binder.State() != Detached || binder.Runs() != 2 {
		t.Errorf("detached binder re-attached: state %v, runs %d", binder.State(), binder.Runs())
	}
}

func TestEffectDepsModes(t *testing.T) {
	tests := []struct {
		name string
		deps []any
		want int
	}{
		{"nil deps run every render", nil, 3},
		{"empty deps run once", []any{}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loop := newTestLoop(false)
			runs := 0
			u := loop.Mount(func(u *Unit) {
				u.Effect(tt.deps, func() reactive.Cleanup {
					runs++
					return nil
				})
			})
			u.Rerender()
			u.Rerender()

			if runs != tt.want {
				t.Errorf("runs = %d, want %d", runs, tt.want)
			}
		})
	}
}

func TestDisposeOrder(t *testing.T) {
	loop := newTestLoop(false)
	var log []string

	u := loop.Mount(func(u *Unit) {
		for _, name := range []string{"a", "b"} {
			name := name
			u.Effect([]any{}, func() reactive.Cleanup {
				return func() { log = append(log, "binder "+name) }
			})
		}
		UseSlot(u, "cleanups", func() bool {
			u.OnCleanup(func() { log = append(log, "cleanup 1") })
			u.OnCleanup(func() { log = append(log, "cleanup 2") })
			return true
		})
	})

	u.Dispose()

	want := []string{"binder b", "binder a", "cleanup 2", "cleanup 1"}
	if !reflect.DeepEqual(log, want) {
		t.Errorf("log = %v, want %v", log, want)
	}

	ran := false
	u.OnCleanup(func() { ran = true })
	if !ran {
		t.Error("OnCleanup on a disposed unit did not run immediately")
	}
}

func TestEffectSetupWriteRerenders(t *testing.T) {
	loop := newTestLoop(false)
	ready := reactive.NewCell(false)
	var seen []bool

	loop.Mount(func(u *Unit) {
		u.Watch(ready)
		seen = append(seen, ready.Get())
		u.Effect([]any{}, func() reactive.Cleanup {
			ready.Set(true)
			return nil
		})
	})
	loop.Flush()

	if !reflect.DeepEqual(seen, []bool{false, true}) {
		t.Errorf("seen = %v, want [false true]", seen)
	}
}

func TestMarkDirtyAfterDispose(t *testing.T) {
	loop := newTestLoop(false)
	u := loop.Mount(func(u *Unit) {})
	u.Dispose()
	u.MarkDirty()

	if u.IsDirty() {
		t.Error("disposed unit became dirty")
	}
}

func TestDepEqual(t *testing.T) {
	type pair struct{ A, B int }
	p1, p2 := &pair{1, 2}, &pair{1, 2}
	s := []int{1, 2}
	m := map[string]int{"a": 1}
	fn := func() {}

	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"nil nil", nil, nil, true},
		{"nil value", nil, 1, false},
		{"ints equal", 1, 1, true},
		{"ints differ", 1, 2, false},
		{"types differ", 1, int64(1), false},
		{"strings", "a", "a", true},
		{"struct values", pair{1, 2}, pair{1, 2}, true},
		{"same pointer", p1, p1, true},
		{"equal pointees", p1, p2, false},
		{"same slice", s, s, true},
		{"equal slices", s, []int{1, 2}, false},
		{"same map", m, m, true},
		{"funcs", fn, fn, false},
		{"struct with slice", struct{ S []int }{s}, struct{ S []int }{s}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := depEqual(tt.a, tt.b); got != tt.want {
				t.Errorf("depEqual(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestStateString(t *testing.T) {
	for state, want := range map[State]string{
		Unattached: "unattached",
		Attached:   "attached",
		Detached:   "detached",
		State(9):   "unknown",
	} {
		if got := state.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", state, got, want)
		}
	}
}
