package use

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"

	"github.com/vango-dev/use/internal/errors"
	"github.com/vango-dev/use/pkg/platform"
	"github.com/vango-dev/use/pkg/reactive"
	"github.com/vango-dev/use/pkg/runtime"
	"github.com/vango-dev/use/pkg/subscription"
)

// Serializer converts values to and from their stored text.
type Serializer[T any] interface {
	Read(raw string) (T, error)
	Write(v T) (string, error)
}

// JSONSerializer stores values as JSON.
type JSONSerializer[T any] struct{}

// Read decodes raw.
func (JSONSerializer[T]) Read(raw string) (T, error) {
	var v T
	err := json.Unmarshal([]byte(raw), &v)
	return v, err
}

// Write encodes v.
func (JSONSerializer[T]) Write(v T) (string, error) {
	b, err := json.Marshal(v)
	return string(b), err
}

// StringSerializer stores strings verbatim.
type StringSerializer struct{}

// Read returns raw.
func (StringSerializer) Read(raw string) (string, error) { return raw, nil }

// Write returns v.
func (StringSerializer) Write(v string) (string, error) { return v, nil }

// IntSerializer stores integers in decimal.
type IntSerializer struct{}

// Read parses raw.
func (IntSerializer) Read(raw string) (int, error) { return strconv.Atoi(raw) }

// Write formats v.
func (IntSerializer) Write(v int) (string, error) { return strconv.Itoa(v), nil }

// StorageOptions configures Storage.
type StorageOptions[T any] struct {
	// Serializer defaults to StringSerializer for strings and
	// JSONSerializer otherwise.
	Serializer Serializer[T]

	// WriteDefaults stores the initial value when the key is absent.
	WriteDefaults bool

	// NoSync ignores storage events, including writes from other
	// consumers of the same key.
	NoSync bool

	// OnError is called with read, decode and write failures.
	OnError func(error)
}

// Stored is the result of Storage.
type Stored[T any] struct {
	st *storageState[T]
}

// Value returns the current value.
func (s *Stored[T]) Value() T { return s.st.value.Get() }

// Err returns the last storage failure, or nil. It is U002 while no
// storage area is available.
func (s *Stored[T]) Err() error { return s.st.err.Get() }

// Supported reports whether the value is backed by a storage area.
func (s *Stored[T]) Supported() bool { return s.st.area != nil }

// Key returns the storage key.
func (s *Stored[T]) Key() string { return s.st.key }

// Set stores v. The value is updated even if the write fails.
func (s *Stored[T]) Set(v T) { s.st.write(v) }

// Update stores fn(current).
func (s *Stored[T]) Update(fn func(T) T) { s.st.write(fn(s.st.value.Get())) }

// Remove deletes the key and resets the value to the initial one.
func (s *Stored[T]) Remove() {
	st := s.st
	st.value.Set(st.initial)
	if st.area == nil {
		return
	}
	if err := st.area.RemoveItem(st.key); err != nil {
		st.fail(errors.New("T003").WithOp("storage.remove").Wrap(err))
	}
}

type storageState[T any] struct {
	unit    *runtime.Unit
	area    *platform.Storage
	key     string
	initial T
	opts    StorageOptions[T]
	ser     Serializer[T]

	value *reactive.Cell[T]
	err   *reactive.Cell[error]
}

func defaultSerializer[T any]() Serializer[T] {
	if s, ok := any(StringSerializer{}).(Serializer[T]); ok {
		return s
	}
	return JSONSerializer[T]{}
}

// jsonEncodable reports whether encoding/json can handle values of type T.
func jsonEncodable[T any]() bool {
	t := reflect.TypeOf((*T)(nil)).Elem()
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Func, reflect.Chan, reflect.UnsafePointer, reflect.Complex64, reflect.Complex128:
		return false
	}
	return true
}

// read loads the key from the area, falling back to the initial value.
// Without an area Err reports U002 until an area is bound.
func (st *storageState[T]) read() T {
	if st.area == nil {
		st.err.Set(errors.New("U002").WithOp("storage.open").WithDetail("key " + st.key))
		return st.initial
	}
	if errors.IsCode(st.err.Get(), "U002") {
		st.err.Set(nil)
	}
	raw, ok, err := st.area.GetItem(st.key)
	if err != nil {
		st.fail(errors.New("T003").WithOp("storage.get").Wrap(err))
		return st.initial
	}
	if !ok {
		if st.opts.WriteDefaults {
			st.persist(st.initial)
		}
		return st.initial
	}
	v, err := st.ser.Read(raw)
	if err != nil {
		st.fail(errors.New("T004").WithOp("storage.decode").Wrap(err))
		return st.initial
	}
	return v
}

func (st *storageState[T]) write(v T) {
	st.value.Set(v)
	st.persist(v)
}

func (st *storageState[T]) persist(v T) {
	if st.area == nil {
		return
	}
	raw, err := st.ser.Write(v)
	if err != nil {
		st.fail(errors.New("T004").WithOp("storage.encode").Wrap(err))
		return
	}
	if err := st.area.SetItem(st.key, raw); err != nil {
		st.fail(errors.New("T003").WithOp("storage.set").Wrap(err))
	}
}

func (st *storageState[T]) fail(err error) {
	st.unit.Logger().Warn("storage failure", "key", st.key, "error", err)
	if st.err != nil {
		st.err.Set(err)
	}
	if st.opts.OnError != nil {
		st.opts.OnError(err)
	}
}

// onStorage applies a storage event for this key.
func (st *storageState[T]) onStorage(e platform.Event) {
	ev, ok := e.Data.(platform.StorageEvent)
	if !ok {
		return
	}
	if ev.Key != "" && ev.Key != st.key {
		return
	}
	if ev.NewValue == nil {
		st.value.Set(st.initial)
		return
	}
	v, err := st.ser.Read(*ev.NewValue)
	if err != nil {
		st.fail(errors.New("T004").WithOp("storage.decode").Wrap(err))
		return
	}
	st.value.Set(v)
}

// Storage binds a value to key in area. The first render reads the stored
// value synchronously. Writes made through any consumer of the same area
// and key, and external writes the area's backend reports, update the
// value. A nil area keeps the value in memory.
func Storage[T any](u *runtime.Unit, area *platform.Storage, key string, initial T, opts StorageOptions[T]) *Stored[T] {
	st := runtime.UseSlot(u, "use.Storage", func() *storageState[T] {
		s := &storageState[T]{
			unit:    u,
			area:    area,
			key:     key,
			initial: initial,
			opts:    opts,
			ser:     opts.Serializer,
		}
		if s.ser == nil {
			if !jsonEncodable[T]() {
				misuse(u, "use.storage", fmt.Sprintf("no serializer for %T, set StorageOptions.Serializer", initial))
			}
			s.ser = defaultSerializer[T]()
		}
		s.err = reactive.NewCell[error](nil)
		s.value = reactive.NewCell(s.read())
		return s
	})
	u.Watch(st.value)
	u.Watch(st.err)

	st.opts.OnError = opts.OnError

	u.Effect([]any{area, key}, func() reactive.Cleanup {
		if st.area != area || st.key != key {
			st.area, st.key = area, key
			st.value.Set(st.read())
		}
		return nil
	})

	source := subscription.Static(area)
	if opts.NoSync {
		source = subscription.Static(nil)
	}
	EventListener(u, source, platform.EventStorage, st.onStorage, platform.Options{})

	return &Stored[T]{st: st}
}

// LocalStorage binds a value to key in the platform's local storage area.
func LocalStorage[T any](u *runtime.Unit, key string, initial T, opts StorageOptions[T]) *Stored[T] {
	return Storage(u, u.Platform().LocalStorage, key, initial, opts)
}

// SessionStorage binds a value to key in the platform's session storage
// area.
func SessionStorage[T any](u *runtime.Unit, key string, initial T, opts StorageOptions[T]) *Stored[T] {
	return Storage(u, u.Platform().SessionStorage, key, initial, opts)
}
