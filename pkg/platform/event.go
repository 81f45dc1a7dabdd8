package platform

import (
	"sync"
	"time"
)

// Event names dispatched by the simulated platform.
const (
	EventResize           = "resize"
	EventChange           = "change"
	EventStorage          = "storage"
	EventOnline           = "online"
	EventOffline          = "offline"
	EventVisibilityChange = "visibilitychange"
	EventMouseMove        = "mousemove"
	EventMouseDown        = "mousedown"
	EventKeyDown          = "keydown"
	EventTouchStart       = "touchstart"
	EventWheel            = "wheel"
	EventClick            = "click"
)

// Event is a notification delivered to listeners.
type Event struct {
	// Type is the event name.
	Type string

	// Target is the target the event was dispatched on.
	Target EventTarget

	// Key carries the storage key or keyboard key, when relevant.
	Key string

	// Data is the event-specific payload (StorageEvent, MediaQueryEvent...).
	Data any

	// Time is when the event was dispatched.
	Time time.Time
}

// Listener wraps a callback. Its pointer is its identity: registering the
// same *Listener twice for the same event and capture flag is a no-op.
type Listener struct {
	fn func(Event)
}

// NewListener creates a listener calling fn.
func NewListener(fn func(Event)) *Listener {
	return &Listener{fn: fn}
}

// Handle invokes the callback.
func (l *Listener) Handle(e Event) {
	if l != nil && l.fn != nil {
		l.fn(e)
	}
}

// Options mirrors addEventListener options.
type Options struct {
	Capture bool
	Passive bool
	Once    bool
}

// EventTarget is the addEventListener/removeEventListener contract.
type EventTarget interface {
	AddEventListener(event string, l *Listener, opts Options)
	RemoveEventListener(event string, l *Listener, opts Options)
}

type registration struct {
	listener *Listener
	opts     Options
}

// Target is an in-memory EventTarget.
type Target struct {
	name string

	regs map[string][]registration
	mu   sync.Mutex
}

// NewTarget creates an empty target. The name is only used for debugging.
func NewTarget(name string) *Target {
	return &Target{name: name, regs: make(map[string][]registration)}
}

// Name returns the debug name.
func (t *Target) Name() string {
	return t.name
}

// AddEventListener registers l for event. A second registration with the
// same listener and capture flag is ignored.
func (t *Target) AddEventListener(event string, l *Listener, opts Options) {
	if l == nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	for _, r := range t.regs[event] {
		if r.listener == l && r.opts.Capture == opts.Capture {
			return
		}
	}
	t.regs[event] = append(t.regs[event], registration{listener: l, opts: opts})
}

// RemoveEventListener removes the registration matching l and the capture
// flag. Removing something that is not registered is a no-op.
func (t *Target) RemoveEventListener(event string, l *Listener, opts Options) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.removeLocked(event, l, opts.Capture)
}

func (t *Target) removeLocked(event string, l *Listener, capture bool) {
	regs := t.regs[event]
	for i, r := range regs {
		if r.listener == l && r.opts.Capture == capture {
			t.regs[event] = append(regs[:i:i], regs[i+1:]...)
			if len(t.regs[event]) == 0 {
				delete(t.regs, event)
			}
			return
		}
	}
}

// Dispatch delivers e to the listeners registered for e.Type. Capture
// listeners run first, then the rest, each group in registration order.
// Once listeners are removed before they are invoked.
func (t *Target) Dispatch(e Event) {
	if e.Target == nil {
		e.Target = t
	}
	if e.Time.IsZero() {
		e.Time = time.Now()
	}

	t.mu.Lock()
	regs := make([]registration, 0, len(t.regs[e.Type]))
	for _, r := range t.regs[e.Type] {
		if r.opts.Capture {
			regs = append(regs, r)
		}
	}
	for _, r := range t.regs[e.Type] {
		if !r.opts.Capture {
			regs = append(regs, r)
		}
	}
	for _, r := range regs {
		if r.opts.Once {
			t.removeLocked(e.Type, r.listener, r.opts.Capture)
		}
	}
	t.mu.Unlock()

	for _, r := range regs {
		r.listener.Handle(e)
	}
}

// ListenerCount returns the number of registrations for event.
func (t *Target) ListenerCount(event string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.regs[event])
}
