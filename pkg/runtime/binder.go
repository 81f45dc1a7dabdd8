package runtime

import (
	"reflect"

	"github.com/vango-dev/use/pkg/reactive"
)

// State is the lifecycle state of a Binder.
type State int

const (
	// Unattached: created, setup not run yet.
	Unattached State = iota
	// Attached: setup ran and its cleanup is pending.
	Attached
	// Detached: cleanup ran; the binder never attaches again.
	Detached
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Unattached:
		return "unattached"
	case Attached:
		return "attached"
	case Detached:
		return "detached"
	default:
		return "unknown"
	}
}

// Binder ties one external registration to a unit's lifetime.
type Binder struct {
	unit    *Unit
	deps    []any
	setup   func() reactive.Cleanup
	cleanup reactive.Cleanup
	state   State
	pending bool
	runs    int
}

// State returns the current state.
func (b *Binder) State() State { return b.state }

// Runs returns how many times setup ran.
func (b *Binder) Runs() int { return b.runs }

// attach runs the previous cleanup, if any, then setup.
func (b *Binder) attach() {
	if b.state == Detached {
		return
	}
	b.runCleanup()
	if b.setup != nil {
		b.cleanup = b.setup()
	}
	b.state = Attached
	b.runs++
}

// Detach runs the cleanup and moves the binder to Detached. It is
// idempotent and may be called before the binder ever attached.
func (b *Binder) Detach() {
	if b.state == Detached {
		return
	}
	b.runCleanup()
	b.state = Detached
	b.pending = false
}

// Refresh schedules setup to re-run after the next render and marks the
// unit dirty.
func (b *Binder) Refresh() {
	if b.state == Detached {
		return
	}
	b.pending = true
	b.unit.MarkDirty()
}

func (b *Binder) runCleanup() {
	if b.cleanup == nil {
		return
	}
	fn := b.cleanup
	b.cleanup = nil
	b.unit.safeCleanup(fn)
}

func depsEqual(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !depEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

// depEqual compares dependencies by identity for reference kinds and by
// value otherwise. Functions are never equal.
func depEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}

	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	switch va.Kind() {
	case reflect.Func:
		return false
	case reflect.Map, reflect.Slice:
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	}

	if ta.Comparable() {
		return safeEqual(a, b)
	}
	return reflect.DeepEqual(a, b)
}

func safeEqual(a, b any) (eq bool) {
	defer func() {
		if recover() != nil {
			eq = false
		}
	}()
	return a == b
}
