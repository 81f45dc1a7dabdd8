package runtime

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/vango-dev/use/internal/errors"
	"github.com/vango-dev/use/pkg/platform"
	"github.com/vango-dev/use/pkg/subscription"
)

// DefaultQueueSize is the dispatch queue capacity used when Config leaves
// it zero.
const DefaultQueueSize = 1024

// maxRenderPasses bounds how many times one settle may re-render before
// the loop gives up on units that keep marking themselves dirty.
const maxRenderPasses = 100

// Config configures a Loop.
type Config struct {
	// Platform is the host environment. Nil means headless.
	Platform *platform.Platform

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// Registry defaults to a registry without exported metrics.
	Registry *subscription.Registry

	// QueueSize is the dispatch queue capacity.
	QueueSize int

	// Debug enables hook order validation.
	Debug bool
}

// Loop is the single goroutine that owns units and their hook state.
type Loop struct {
	platform *platform.Platform
	logger   *slog.Logger
	registry *subscription.Registry
	debug    bool

	dispatchCh chan func()
	wakeCh     chan struct{}
	done       chan struct{}
	closed     atomic.Bool
	closeOnce  sync.Once

	units   map[uint64]*Unit
	unitsMu sync.Mutex

	dispatched atomic.Uint64
	panics     atomic.Uint64
}

// NewLoop creates a loop. It does not start processing until Run or Flush
// is called.
func NewLoop(cfg Config) *Loop {
	if cfg.Platform == nil {
		cfg.Platform = platform.Headless()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Registry == nil {
		cfg.Registry = subscription.NewRegistry(subscription.WithLogger(cfg.Logger))
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultQueueSize
	}

	return &Loop{
		platform:   cfg.Platform,
		logger:     cfg.Logger,
		registry:   cfg.Registry,
		debug:      cfg.Debug,
		dispatchCh: make(chan func(), cfg.QueueSize),
		wakeCh:     make(chan struct{}, 1),
		done:       make(chan struct{}),
		units:      make(map[uint64]*Unit),
	}
}

// Platform returns the host environment.
func (l *Loop) Platform() *platform.Platform { return l.platform }

// Logger returns the loop logger.
func (l *Loop) Logger() *slog.Logger { return l.logger }

// Registry returns the subscription registry.
func (l *Loop) Registry() *subscription.Registry { return l.registry }

// Dispatch queues fn to run on the loop. It never blocks: when the queue
// is full the callback is dropped and logged. Callbacks queued after Close
// are discarded.
func (l *Loop) Dispatch(fn func()) {
	if fn == nil || l.closed.Load() {
		return
	}
	select {
	case l.dispatchCh <- fn:
	case <-l.done:
	default:
		l.logger.Warn("dispatch queue full, discarding callback")
	}
}

// Run processes dispatched callbacks until ctx is cancelled or the loop is
// closed.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.done:
			return nil
		case fn := <-l.dispatchCh:
			l.execute(fn)
		case <-l.wakeCh:
			l.settle()
		}
	}
}

// Flush runs queued callbacks and pending renders on the calling goroutine
// until both are drained. It returns the number of callbacks run. Flush
// must not be used while Run is active.
func (l *Loop) Flush() int {
	n := 0
	for {
		select {
		case fn := <-l.dispatchCh:
			l.execute(fn)
			n++
			continue
		default:
		}
		if !l.settle() {
			return n
		}
	}
}

// Close stops Run and drops queued callbacks. Mounted units are disposed.
func (l *Loop) Close() {
	l.closeOnce.Do(func() {
		l.closed.Store(true)
		close(l.done)

		for _, u := range l.sortedUnits() {
			u.Dispose()
		}
	})
}

// Stats reports loop counters.
func (l *Loop) Stats() LoopStats {
	l.unitsMu.Lock()
	units := len(l.units)
	l.unitsMu.Unlock()

	return LoopStats{
		Units:      units,
		Queued:     len(l.dispatchCh),
		Dispatched: l.dispatched.Load(),
		Panics:     l.panics.Load(),
	}
}

// LoopStats is a point-in-time view of the loop.
type LoopStats struct {
	Units      int    `json:"units"`
	Queued     int    `json:"queued"`
	Dispatched uint64 `json:"dispatched"`
	Panics     uint64 `json:"panics"`
}

// Mount creates a unit for render, renders it once and attaches the
// binders the first render scheduled. Mount must run on the loop
// goroutine.
func (l *Loop) Mount(render RenderFunc) *Unit {
	u := newUnit(l, render)

	l.unitsMu.Lock()
	l.units[u.id] = u
	l.unitsMu.Unlock()

	l.safeRender(u)
	return u
}

func (l *Loop) unregister(u *Unit) {
	l.unitsMu.Lock()
	delete(l.units, u.id)
	l.unitsMu.Unlock()
}

// wake asks a running loop to render dirty units.
func (l *Loop) wake() {
	select {
	case l.wakeCh <- struct{}{}:
	default:
	}
}

// execute runs one dispatched callback and then renders dirty units.
func (l *Loop) execute(fn func()) {
	l.dispatched.Add(1)
	l.safeExecute(fn)
	l.settle()
}

func (l *Loop) safeExecute(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.panics.Add(1)
			l.logger.Error("dispatch panic",
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()
	fn()
}

// settle re-renders dirty units until none are left. It reports whether
// anything was rendered, and false when it gave up.
func (l *Loop) settle() bool {
	rendered := false
	for pass := 0; pass < maxRenderPasses; pass++ {
		var dirty []*Unit
		for _, u := range l.sortedUnits() {
			if u.takeDirty() {
				dirty = append(dirty, u)
			}
		}
		if len(dirty) == 0 {
			return rendered
		}
		rendered = true
		for _, u := range dirty {
			l.safeRender(u)
		}
	}

	// Drop the remaining renders so a unit that dirties itself on every
	// render cannot spin the loop.
	for _, u := range l.sortedUnits() {
		u.takeDirty()
	}
	err := errors.New("M004")
	l.logger.Error("render did not settle", "error", err, "passes", maxRenderPasses)
	return false
}

func (l *Loop) safeRender(u *Unit) {
	defer func() {
		if r := recover(); r != nil {
			l.panics.Add(1)
			u.rendering = false
			l.logger.Error("render panic",
				"unit", u.id,
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()
	u.render()
}

// sortedUnits returns mounted units in mount order.
func (l *Loop) sortedUnits() []*Unit {
	l.unitsMu.Lock()
	units := make([]*Unit, 0, len(l.units))
	for _, u := range l.units {
		units = append(units, u)
	}
	l.unitsMu.Unlock()

	sort.Slice(units, func(i, j int) bool { return units[i].id < units[j].id })
	return units
}
