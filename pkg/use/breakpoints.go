package use

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/vango-dev/use/pkg/platform"
	"github.com/vango-dev/use/pkg/reactive"
	"github.com/vango-dev/use/pkg/runtime"
	"github.com/vango-dev/use/pkg/subscription"
)

// Breakpoint is a named minimum viewport width in pixels.
type Breakpoint struct {
	Name  string
	Width int
}

// BreakpointsTailwind are Tailwind's default screens.
var BreakpointsTailwind = map[string]int{
	"sm":  640,
	"md":  768,
	"lg":  1024,
	"xl":  1280,
	"2xl": 1536,
}

// BreakpointsBootstrap are Bootstrap 5's grid breakpoints.
var BreakpointsBootstrap = map[string]int{
	"xs":  0,
	"sm":  576,
	"md":  768,
	"lg":  992,
	"xl":  1200,
	"xxl": 1400,
}

// SortBreakpoints orders points by width, then by name.
func SortBreakpoints(points map[string]int) []Breakpoint {
	out := make([]Breakpoint, 0, len(points))
	for name, width := range points {
		out = append(out, Breakpoint{Name: name, Width: width})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Width != out[j].Width {
			return out[i].Width < out[j].Width
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// BreakpointSet is the result of Breakpoints.
type BreakpointSet struct {
	p      *platform.Platform
	points []Breakpoint
	widths map[string]int
	lists  map[string]platform.MediaQueryList
}

func px(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}

func (b *BreakpointSet) width(name string) (int, bool) {
	w, ok := b.widths[name]
	return w, ok
}

func (b *BreakpointSet) match(query string) bool {
	list := b.p.MatchMedia(query)
	return list != nil && list.Matches()
}

// GreaterOrEqual reports whether the viewport is at least as wide as the
// named breakpoint. Unknown names never match.
func (b *BreakpointSet) GreaterOrEqual(name string) bool {
	if list, ok := b.lists[name]; ok && list != nil {
		return list.Matches()
	}
	return false
}

// Greater reports whether the viewport is wider than the breakpoint.
func (b *BreakpointSet) Greater(name string) bool {
	w, ok := b.width(name)
	if !ok {
		return false
	}
	return b.match(fmt.Sprintf("(min-width: %s)", px(float64(w)+0.1)))
}

// Smaller reports whether the viewport is narrower than the breakpoint.
func (b *BreakpointSet) Smaller(name string) bool {
	w, ok := b.width(name)
	if !ok {
		return false
	}
	return b.match(fmt.Sprintf("(max-width: %s)", px(float64(w)-0.1)))
}

// SmallerOrEqual reports whether the viewport is at most as wide as the
// breakpoint.
func (b *BreakpointSet) SmallerOrEqual(name string) bool {
	w, ok := b.width(name)
	if !ok {
		return false
	}
	return b.match(fmt.Sprintf("(max-width: %s)", px(float64(w))))
}

// Between reports whether the viewport is at least as wide as a and
// narrower than b.
func (b *BreakpointSet) Between(a, c string) bool {
	wa, okA := b.width(a)
	wc, okC := b.width(c)
	if !okA || !okC {
		return false
	}
	return b.match(fmt.Sprintf("(min-width: %s) and (max-width: %s)", px(float64(wa)), px(float64(wc)-0.1)))
}

// Current returns the names of every breakpoint the viewport reaches, in
// ascending width order.
func (b *BreakpointSet) Current() []string {
	var names []string
	for _, bp := range b.points {
		if b.GreaterOrEqual(bp.Name) {
			names = append(names, bp.Name)
		}
	}
	return names
}

// Active returns the widest breakpoint the viewport reaches, or "".
func (b *BreakpointSet) Active() string {
	current := b.Current()
	if len(current) == 0 {
		return ""
	}
	return current[len(current)-1]
}

// Points returns the breakpoints in ascending order.
func (b *BreakpointSet) Points() []Breakpoint {
	return append([]Breakpoint(nil), b.points...)
}

type breakpointsState struct {
	sig      string
	set      *BreakpointSet
	tick     *reactive.Cell[int]
	listener *platform.Listener
	lists    *multiBinding
	resize   *subscription.Slot
}

// Breakpoints evaluates a set of min-width breakpoints against the
// viewport. The unit re-renders whenever a breakpoint boundary or the
// window size changes.
func Breakpoints(u *runtime.Unit, points map[string]int) *BreakpointSet {
	p := u.Platform()
	if len(points) == 0 {
		misuse(u, "use.breakpoints", "breakpoint set is empty")
	}
	sorted := SortBreakpoints(points)

	keys := make([]string, len(sorted))
	for i, bp := range sorted {
		keys[i] = bp.Name + "=" + strconv.Itoa(bp.Width)
	}
	sig := strings.Join(keys, ",")

	st := runtime.UseSlot(u, "use.Breakpoints", func() *breakpointsState {
		s := &breakpointsState{
			tick:   reactive.NewCell(0),
			lists:  newMultiBinding(u),
			resize: u.Registry().NewSlot(),
		}
		s.listener = platform.NewListener(func(platform.Event) {
			s.tick.Update(func(n int) int { return n + 1 })
		})
		u.OnCleanup(s.resize.Release)
		return s
	})
	u.Watch(st.tick)

	if st.set == nil || st.sig != sig {
		set := &BreakpointSet{
			p:      p,
			points: sorted,
			widths: make(map[string]int, len(sorted)),
			lists:  make(map[string]platform.MediaQueryList, len(sorted)),
		}
		for _, bp := range sorted {
			set.widths[bp.Name] = bp.Width
			set.lists[bp.Name] = p.MatchMedia(fmt.Sprintf("(min-width: %dpx)", bp.Width))
		}
		st.set, st.sig = set, sig
	}

	set := st.set
	u.Effect([]any{sig}, func() reactive.Cleanup {
		bindings := make(map[string]binding, len(set.lists))
		for name, list := range set.lists {
			bindings[name] = binding{source: subscription.Static(list), event: platform.EventChange}
		}
		st.lists.bind(bindings, st.listener, platform.Options{})
		st.resize.Bind(subscription.Window(p), platform.EventResize, st.listener, platform.Options{Passive: true})
		return nil
	})

	return set
}
