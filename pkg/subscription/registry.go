package subscription

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vango-dev/use/pkg/platform"
	"github.com/vango-dev/use/pkg/reactive"
)

// Registry attaches listeners to event targets and accounts for them.
type Registry struct {
	logger  *slog.Logger
	metrics *metrics

	attaches atomic.Uint64
	detaches atomic.Uint64
	pending  atomic.Uint64

	live   map[uint64]*Subscription
	liveMu sync.Mutex
}

// Stats is a point-in-time view of the registry counters.
type Stats struct {
	Active   int    `json:"active"`
	Attaches uint64 `json:"attaches"`
	Detaches uint64 `json:"detaches"`
	Pending  uint64 `json:"pending"`
}

// Info describes one attached subscription.
type Info struct {
	ID      uint64    `json:"id"`
	Event   string    `json:"event"`
	Target  string    `json:"target"`
	Capture bool      `json:"capture"`
	Once    bool      `json:"once"`
	Since   time.Time `json:"since"`
}

// NewRegistry creates a registry.
func NewRegistry(opts ...Option) *Registry {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Registry{
		logger:  cfg.Logger,
		metrics: newMetrics(cfg),
		live:    make(map[uint64]*Subscription),
	}
}

// Subscribe resolves source and registers l for event on it. When source
// does not resolve the returned subscription is pending and holds nothing.
func (r *Registry) Subscribe(source Resolver, event string, l *platform.Listener, opts platform.Options) *Subscription {
	return r.subscribe(Resolve(source), event, l, opts)
}

func (r *Registry) subscribe(target platform.EventTarget, event string, l *platform.Listener, opts platform.Options) *Subscription {
	s := &Subscription{
		id:       reactive.NextID(),
		registry: r,
		target:   target,
		event:    event,
		listener: l,
		handler:  l,
		opts:     opts,
	}

	if target == nil || l == nil {
		r.pending.Add(1)
		r.metrics.pending.WithLabelValues(event).Inc()
		r.logger.Debug("subscription pending", "event", event)
		return s
	}

	if opts.Once {
		// The target drops a once registration before delivering it.
		s.handler = platform.NewListener(func(e platform.Event) {
			s.expire()
			l.Handle(e)
		})
	}

	target.AddEventListener(event, s.handler, opts)
	s.attached = true
	s.since = time.Now()

	r.attaches.Add(1)
	r.metrics.attaches.WithLabelValues(event).Inc()
	r.metrics.active.Inc()

	r.liveMu.Lock()
	r.live[s.id] = s
	r.liveMu.Unlock()

	return s
}

func (r *Registry) release(s *Subscription) {
	s.target.RemoveEventListener(s.event, s.handler, s.opts)
	r.forget(s)
}

// forget accounts for a detached subscription without touching its target.
func (r *Registry) forget(s *Subscription) {
	r.detaches.Add(1)
	r.metrics.detaches.WithLabelValues(s.event).Inc()
	r.metrics.active.Dec()

	r.liveMu.Lock()
	delete(r.live, s.id)
	r.liveMu.Unlock()
}

// Stats returns the registry counters.
func (r *Registry) Stats() Stats {
	r.liveMu.Lock()
	active := len(r.live)
	r.liveMu.Unlock()

	return Stats{
		Active:   active,
		Attaches: r.attaches.Load(),
		Detaches: r.detaches.Load(),
		Pending:  r.pending.Load(),
	}
}

// Snapshot lists attached subscriptions ordered by ID.
func (r *Registry) Snapshot() []Info {
	r.liveMu.Lock()
	infos := make([]Info, 0, len(r.live))
	for _, s := range r.live {
		infos = append(infos, Info{
			ID:      s.id,
			Event:   s.event,
			Target:  targetName(s.target),
			Capture: s.opts.Capture,
			Once:    s.opts.Once,
			Since:   s.since,
		})
	}
	r.liveMu.Unlock()

	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}

func targetName(t platform.EventTarget) string {
	if n, ok := t.(interface{ Name() string }); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", t)
}

// Subscription is one listener registration.
type Subscription struct {
	id       uint64
	registry *Registry
	target   platform.EventTarget
	event    string
	listener *platform.Listener
	handler  *platform.Listener
	opts     platform.Options
	since    time.Time

	attached bool
	done     bool
	spent    bool
	mu       sync.Mutex
}

// Attached reports whether the listener is currently registered.
func (s *Subscription) Attached() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attached
}

// Pending reports whether the subscription never attached because its
// source did not resolve.
func (s *Subscription) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.attached && !s.done && s.target == nil
}

// Target returns the resolved target, or nil for a pending subscription.
func (s *Subscription) Target() platform.EventTarget {
	return s.target
}

// Event returns the event name.
func (s *Subscription) Event() string {
	return s.event
}

// Spent reports whether a once subscription has delivered its event.
func (s *Subscription) Spent() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.spent
}

// expire marks a once subscription as delivered. The target has already
// removed the registration.
func (s *Subscription) expire() {
	s.mu.Lock()
	if s.done {
		s.mu.Unlock()
		return
	}
	s.done, s.spent, s.attached = true, true, false
	s.mu.Unlock()

	s.registry.forget(s)
}

// Unsubscribe removes the registration. Calling it again, or on a pending
// subscription, is a no-op.
func (s *Subscription) Unsubscribe() {
	s.mu.Lock()
	if s.done {
		s.mu.Unlock()
		return
	}
	s.done = true
	wasAttached := s.attached
	s.attached = false
	s.mu.Unlock()

	if wasAttached {
		s.registry.release(s)
	}
}
