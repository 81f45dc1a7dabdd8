package platform

import (
	"sync"

	"github.com/vango-dev/use/pkg/storage"
)

// BrowserOptions configures NewBrowser.
type BrowserOptions struct {
	Width         float64
	Height        float64
	ColorScheme   string
	ReducedMotion bool
	Offline       bool

	// Local and Session default to memory backends.
	Local   storage.Backend
	Session storage.Backend

	// Clock defaults to the system clock.
	Clock Clock

	// Dialer defaults to GorillaDialer.
	Dialer Dialer
}

// Browser is an in-memory browser. Its mutators dispatch events
// synchronously and must be called from the goroutine running the loop
// that owns the listeners.
type Browser struct {
	window   *Target
	document *document

	env    MediaEnv
	online bool

	queries map[string]*mediaQueryList

	local     *Storage
	session   *Storage
	clipboard *MemoryClipboard
	copier    *MemoryCopier
	clock     Clock
	dialer    Dialer

	mu sync.Mutex
}

type document struct {
	*Target
	state string
	mu    sync.Mutex
}

func (d *document) VisibilityState() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// NewBrowser creates a browser with the given initial state.
func NewBrowser(opts BrowserOptions) *Browser {
	if opts.Width == 0 {
		opts.Width = 1024
	}
	if opts.Height == 0 {
		opts.Height = 768
	}
	if opts.ColorScheme == "" {
		opts.ColorScheme = "light"
	}
	if opts.Local == nil {
		opts.Local = storage.NewMemory()
	}
	if opts.Session == nil {
		opts.Session = storage.NewMemory()
	}
	if opts.Clock == nil {
		opts.Clock = SystemClock{}
	}
	if opts.Dialer == nil {
		opts.Dialer = GorillaDialer{}
	}

	return &Browser{
		window:   NewTarget("window"),
		document: &document{Target: NewTarget("document"), state: "visible"},
		env: MediaEnv{
			Width:         opts.Width,
			Height:        opts.Height,
			ColorScheme:   opts.ColorScheme,
			ReducedMotion: opts.ReducedMotion,
		},
		online:    !opts.Offline,
		queries:   make(map[string]*mediaQueryList),
		local:     NewStorage("local", opts.Local),
		session:   NewStorage("session", opts.Session),
		clipboard: NewMemoryClipboard(),
		copier:    NewMemoryCopier(),
		clock:     opts.Clock,
		dialer:    opts.Dialer,
	}
}

// Platform returns a handle exposing every capability of the browser.
func (b *Browser) Platform() *Platform {
	return &Platform{
		Window:         b.window,
		Document:       b.document,
		LocalStorage:   b.local,
		SessionStorage: b.session,
		Media:          b,
		Clipboard:      b.clipboard,
		LegacyCopier:   b.copier,
		Navigator:      b,
		Viewport:       b,
		WebSocket:      b.dialer,
		Clock:          b.clock,
	}
}

// Window returns the window target.
func (b *Browser) Window() *Target { return b.window }

// Document returns the document target.
func (b *Browser) Document() *Target { return b.document.Target }

// Clipboard returns the asynchronous clipboard.
func (b *Browser) Clipboard() *MemoryClipboard { return b.clipboard }

// Copier returns the legacy copier.
func (b *Browser) Copier() *MemoryCopier { return b.copier }

// LocalStorage returns the local storage area.
func (b *Browser) LocalStorage() *Storage { return b.local }

// SessionStorage returns the session storage area.
func (b *Browser) SessionStorage() *Storage { return b.session }

// Dispatch delivers e on target, filling in Type when e leaves it empty.
func (b *Browser) Dispatch(target *Target, event string, e Event) {
	if e.Type == "" {
		e.Type = event
	}
	target.Dispatch(e)
}

// Size implements Viewport.
func (b *Browser) Size() (float64, float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.env.Width, b.env.Height
}

// Online implements Navigator.
func (b *Browser) Online() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.online
}

// MatchMedia implements MediaMatcher. Equal query strings share one list.
// A query that fails to parse never matches.
func (b *Browser) MatchMedia(query string) MediaQueryList {
	b.mu.Lock()
	defer b.mu.Unlock()

	if q, ok := b.queries[query]; ok {
		return q
	}
	parsed, err := ParseMediaQuery(query)
	mql := &mediaQueryList{Target: NewTarget("media:" + query), media: query}
	if err == nil {
		mql.query = parsed
		mql.matches = parsed.Eval(b.env)
	}
	b.queries[query] = mql
	return mql
}

// Resize changes the viewport, dispatches EventResize on the window and
// EventChange on every media query list whose result flipped.
func (b *Browser) Resize(width, height float64) {
	b.mu.Lock()
	b.env.Width = width
	b.env.Height = height
	b.mu.Unlock()

	b.window.Dispatch(Event{Type: EventResize, Data: [2]float64{width, height}})
	b.reevaluate()
}

// SetColorScheme switches prefers-color-scheme.
func (b *Browser) SetColorScheme(scheme string) {
	b.mu.Lock()
	b.env.ColorScheme = scheme
	b.mu.Unlock()
	b.reevaluate()
}

// SetReducedMotion switches prefers-reduced-motion.
func (b *Browser) SetReducedMotion(reduce bool) {
	b.mu.Lock()
	b.env.ReducedMotion = reduce
	b.mu.Unlock()
	b.reevaluate()
}

// SetOnline changes connectivity and dispatches online/offline.
func (b *Browser) SetOnline(online bool) {
	b.mu.Lock()
	changed := b.online != online
	b.online = online
	b.mu.Unlock()

	if !changed {
		return
	}
	if online {
		b.window.Dispatch(Event{Type: EventOnline})
	} else {
		b.window.Dispatch(Event{Type: EventOffline})
	}
}

// SetVisibility changes document.visibilityState and dispatches
// visibilitychange.
func (b *Browser) SetVisibility(state string) {
	b.document.mu.Lock()
	changed := b.document.state != state
	b.document.state = state
	b.document.mu.Unlock()

	if changed {
		b.document.Dispatch(Event{Type: EventVisibilityChange, Data: state})
	}
}

func (b *Browser) reevaluate() {
	b.mu.Lock()
	env := b.env
	var flipped []*mediaQueryList
	for _, q := range b.queries {
		if q.query == nil {
			continue
		}
		if q.update(q.query.Eval(env)) {
			flipped = append(flipped, q)
		}
	}
	b.mu.Unlock()

	for _, q := range flipped {
		m := q.Matches()
		q.Dispatch(Event{Type: EventChange, Data: MediaQueryEvent{Media: q.media, Matches: m}})
	}
}

type mediaQueryList struct {
	*Target
	media   string
	query   *MediaQuery
	matches bool
	mu      sync.Mutex
}

func (q *mediaQueryList) Matches() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.matches
}

func (q *mediaQueryList) Media() string {
	return q.media
}

func (q *mediaQueryList) update(m bool) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.matches == m {
		return false
	}
	q.matches = m
	return true
}
