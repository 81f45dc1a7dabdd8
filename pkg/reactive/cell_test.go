package reactive

import (
	"strings"
	"testing"
)

type countingListener struct {
	id    uint64
	dirty int
}

func newCountingListener() *countingListener {
	return &countingListener{id: NextID()}
}

func (l *countingListener) MarkDirty() { l.dirty++ }
func (l *countingListener) ID() uint64 { return l.id }

func TestCellSetGet(t *testing.T) {
	c := NewCell(0)
	if got := c.Get(); got != 0 {
		t.Errorf("initial Get: got %v, want 0", got)
	}

	c.Set(42)
	if got := c.Get(); got != 42 {
		t.Errorf("after Set: got %v, want 42", got)
	}
}

func TestCellNotifiesTrackedListeners(t *testing.T) {
	c := NewCell("a")
	l := newCountingListener()
	c.Track(l)
	c.Track(l) // deduplicated

	c.Set("b")
	if l.dirty != 1 {
		t.Errorf("dirty: got %d, want 1", l.dirty)
	}

	c.Untrack(l)
	c.Set("c")
	if l.dirty != 1 {
		t.Errorf("dirty after Untrack: got %d, want 1", l.dirty)
	}
}

func TestCellEqualityShortCircuit(t *testing.T) {
	t.Run("Primitive", func(t *testing.T) {
		c := NewCell(5)
		l := newCountingListener()
		c.Track(l)

		c.Set(5)
		if l.dirty != 0 {
			t.Errorf("equal write notified %d times", l.dirty)
		}
	})

	t.Run("Slice", func(t *testing.T) {
		c := NewCell([]string{"a", "b"})
		l := newCountingListener()
		c.Track(l)

		c.Set([]string{"a", "b"})
		if l.dirty != 0 {
			t.Errorf("deep-equal write notified %d times", l.dirty)
		}

		c.Set([]string{"a"})
		if l.dirty != 1 {
			t.Errorf("dirty: got %d, want 1", l.dirty)
		}
	})

	t.Run("CustomEquals", func(t *testing.T) {
		c := NewCell("Hello").WithEquals(strings.EqualFold)
		l := newCountingListener()
		c.Track(l)

		c.Set("HELLO")
		if l.dirty != 0 {
			t.Errorf("case-insensitive equal write notified %d times", l.dirty)
		}
		if got := c.Get(); got != "Hello" {
			t.Errorf("Get: got %q, want %q", got, "Hello")
		}
	})
}

func TestCellUpdate(t *testing.T) {
	c := NewCell(1)
	c.Update(func(n int) int { return n * 10 })
	if got := c.Get(); got != 10 {
		t.Errorf("Update: got %v, want 10", got)
	}
}

func TestCellSubscribe(t *testing.T) {
	c := NewCell(0)
	var seen []int
	unsubscribe := c.Subscribe(func(v int) { seen = append(seen, v) })

	c.Set(1)
	c.Set(2)
	unsubscribe()
	unsubscribe()
	c.Set(3)

	if len(seen) != 2 || seen[0] != 1 || seen[1] != 2 {
		t.Errorf("seen: got %v, want [1 2]", seen)
	}
	if n := c.Listeners(); n != 0 {
		t.Errorf("Listeners after unsubscribe: got %d, want 0", n)
	}
}

func TestCellWriteFromCallback(t *testing.T) {
	a := NewCell(0)
	b := NewCell(0)
	a.Subscribe(func(v int) { b.Set(v * 2) })

	a.Set(21)
	if got := b.Get(); got != 42 {
		t.Errorf("chained write: got %v, want 42", got)
	}
}

func TestLatest(t *testing.T) {
	var l Latest[func() string]
	if l.Load() != nil {
		t.Fatal("empty Latest should load nil")
	}

	l.Store(func() string { return "first" })
	stable := func() string { return l.Load()() }
	l.Store(func() string { return "second" })

	if got := stable(); got != "second" {
		t.Errorf("stable caller: got %q, want %q", got, "second")
	}
}

func TestRef(t *testing.T) {
	r := NewRef[*int]()
	if r.IsSet() {
		t.Error("new ref should not be set")
	}

	l := newCountingListener()
	r.Track(l)

	v := 7
	r.Set(&v)
	if !r.IsSet() || r.Current() != &v {
		t.Error("ref should hold the attached value")
	}
	if l.dirty != 1 {
		t.Errorf("dirty after Set: got %d, want 1", l.dirty)
	}

	r.Clear()
	if r.IsSet() || r.Current() != nil {
		t.Error("ref should be cleared")
	}
	if l.dirty != 2 {
		t.Errorf("dirty after Clear: got %d, want 2", l.dirty)
	}

	if !RefOf(3).IsSet() {
		t.Error("RefOf should be set")
	}
}
