package subscription

import (
	"reflect"

	"github.com/vango-dev/use/pkg/platform"
	"github.com/vango-dev/use/pkg/reactive"
)

// Resolver produces the current event target of a source, or nil when the
// source does not exist yet.
type Resolver interface {
	Resolve() platform.EventTarget
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func() platform.EventTarget

// Resolve calls f.
func (f ResolverFunc) Resolve() platform.EventTarget {
	if f == nil {
		return nil
	}
	return normalize(f())
}

// Static resolves to t. A nil t (including a typed nil pointer) resolves
// to nil.
func Static(t platform.EventTarget) Resolver {
	return ResolverFunc(func() platform.EventTarget { return t })
}

// FromRef resolves to the ref's value once it is attached. The returned
// resolver also forwards Track and Untrack to the ref, so a unit can watch
// for the ref being attached.
func FromRef[T platform.EventTarget](r *reactive.Ref[T]) Resolver {
	return refResolver[T]{ref: r}
}

type refResolver[T platform.EventTarget] struct {
	ref *reactive.Ref[T]
}

func (r refResolver[T]) Resolve() platform.EventTarget {
	if r.ref == nil || !r.ref.IsSet() {
		return nil
	}
	return normalize(r.ref.Current())
}

func (r refResolver[T]) Track(l reactive.Listener) {
	if r.ref != nil {
		r.ref.Track(l)
	}
}

func (r refResolver[T]) Untrack(l reactive.Listener) {
	if r.ref != nil {
		r.ref.Untrack(l)
	}
}

// Window resolves to the platform window.
func Window(p *platform.Platform) Resolver {
	return ResolverFunc(func() platform.EventTarget {
		if p == nil {
			return nil
		}
		return p.Window
	})
}

// Document resolves to the platform document.
func Document(p *platform.Platform) Resolver {
	return ResolverFunc(func() platform.EventTarget {
		if p == nil || p.Document == nil {
			return nil
		}
		return p.Document
	})
}

// Resolve resolves r, treating a nil resolver as unresolved.
func Resolve(r Resolver) platform.EventTarget {
	if r == nil {
		return nil
	}
	return normalize(r.Resolve())
}

// normalize turns typed nil pointers into a nil interface.
func normalize(t platform.EventTarget) platform.EventTarget {
	if t == nil {
		return nil
	}
	v := reflect.ValueOf(t)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		if v.IsNil() {
			return nil
		}
	}
	return t
}

// sameTarget compares target identity without panicking on
// non-comparable implementations.
func sameTarget(a, b platform.EventTarget) (same bool) {
	defer func() {
		if recover() != nil {
			same = false
		}
	}()
	return a == b
}
