package use

import (
	"sort"
	"strings"

	"github.com/vango-dev/use/internal/errors"
	"github.com/vango-dev/use/pkg/platform"
	"github.com/vango-dev/use/pkg/reactive"
	"github.com/vango-dev/use/pkg/runtime"
	"github.com/vango-dev/use/pkg/subscription"
)

// useCell returns a cell stored in the current slot and makes the unit
// watch it.
func useCell[T any](u *runtime.Unit, kind string, initial func() T) *reactive.Cell[T] {
	c := runtime.UseSlot(u, kind, func() *reactive.Cell[T] {
		return reactive.NewCell(initial())
	})
	u.Watch(c)
	return c
}

// misuse reports invalid options passed to the hook named op.
func misuse(u *runtime.Unit, op, detail string) {
	u.Misuse(errors.New("M002").WithOp(op).WithDetail(detail))
}

// watchSource makes the unit re-render when a ref-backed source attaches.
func watchSource(u *runtime.Unit, source subscription.Resolver) {
	if t, ok := source.(runtime.Trackable); ok {
		u.Watch(t)
	}
}

// binding is one (source, event) pair of a multiBinding.
type binding struct {
	source subscription.Resolver
	event  string
}

// eventBindings binds every event in events on source.
func eventBindings(source subscription.Resolver, events []string) map[string]binding {
	out := make(map[string]binding, len(events))
	for _, ev := range events {
		out[ev] = binding{source: source, event: ev}
	}
	return out
}

// multiBinding keeps one subscription slot per key, all sharing one
// listener.
type multiBinding struct {
	registry *subscription.Registry
	slots    map[string]*subscription.Slot
}

func newMultiBinding(u *runtime.Unit) *multiBinding {
	m := &multiBinding{
		registry: u.Registry(),
		slots:    make(map[string]*subscription.Slot),
	}
	u.OnCleanup(m.release)
	return m
}

// bind makes the bound keys equal to the keys of bindings. Keys that
// disappear are released; the rest are rebound.
func (m *multiBinding) bind(bindings map[string]binding, l *platform.Listener, opts platform.Options) {
	for key, slot := range m.slots {
		if _, ok := bindings[key]; !ok {
			slot.Release()
			delete(m.slots, key)
		}
	}
	for key, b := range bindings {
		slot, ok := m.slots[key]
		if !ok {
			slot = m.registry.NewSlot()
			m.slots[key] = slot
		}
		slot.Bind(b.source, b.event, l, opts)
	}
}

func (m *multiBinding) release() {
	for ev, slot := range m.slots {
		slot.Release()
		delete(m.slots, ev)
	}
}

func (m *multiBinding) attached() int {
	n := 0
	for _, slot := range m.slots {
		if slot.Attached() {
			n++
		}
	}
	return n
}

// signature is a stable dependency key for a string set.
func signature(items []string) string {
	sorted := append([]string(nil), items...)
	sort.Strings(sorted)
	return strings.Join(sorted, "\x00")
}
