package use

import (
	"github.com/vango-dev/use/pkg/platform"
	"github.com/vango-dev/use/pkg/reactive"
	"github.com/vango-dev/use/pkg/runtime"
	"github.com/vango-dev/use/pkg/subscription"
)

// Size is the result of WindowSize.
type Size struct {
	width  *reactive.Cell[float64]
	height *reactive.Cell[float64]
}

// Width returns the viewport width, or +Inf when unknown.
func (s *Size) Width() float64 { return s.width.Get() }

// Height returns the viewport height, or +Inf when unknown.
func (s *Size) Height() float64 { return s.height.Get() }

// WindowSize tracks the viewport size.
func WindowSize(u *runtime.Unit) *Size {
	p := u.Platform()
	width := useCell(u, "use.WindowSize.width", func() float64 {
		w, _ := p.ViewportSize()
		return w
	})
	height := useCell(u, "use.WindowSize.height", func() float64 {
		_, h := p.ViewportSize()
		return h
	})

	EventListener(u, subscription.Window(p), platform.EventResize, func(platform.Event) {
		w, h := p.ViewportSize()
		width.Set(w)
		height.Set(h)
	}, platform.Options{Passive: true})

	return &Size{width: width, height: height}
}

// Online tracks network connectivity. Without a navigator it reports true.
func Online(u *runtime.Unit) bool {
	p := u.Platform()
	online := useCell(u, "use.Online", p.Online)

	update := func(platform.Event) { online.Set(p.Online()) }
	EventListener(u, subscription.Window(p), platform.EventOnline, update, platform.Options{})
	EventListener(u, subscription.Window(p), platform.EventOffline, update, platform.Options{})

	return online.Get()
}

// DocumentVisibility tracks document.visibilityState. Without a document
// it reports "visible".
func DocumentVisibility(u *runtime.Unit) string {
	p := u.Platform()
	state := func() string {
		if p.Document == nil {
			return "visible"
		}
		return p.Document.VisibilityState()
	}
	visibility := useCell(u, "use.DocumentVisibility", state)

	EventListener(u, subscription.Document(p), platform.EventVisibilityChange, func(platform.Event) {
		visibility.Set(state())
	}, platform.Options{})

	return visibility.Get()
}

// Supported evaluates probe once on the first render and reports the
// result for the unit's life.
func Supported(u *runtime.Unit, probe func(p *platform.Platform) bool) bool {
	return runtime.UseSlot(u, "use.Supported", func() bool {
		if probe == nil {
			return false
		}
		return probe(u.Platform())
	})
}

// SupportsCapability reports whether the platform has capability c.
func SupportsCapability(u *runtime.Unit, c platform.Capability) bool {
	return Supported(u, func(p *platform.Platform) bool { return p.Supports(c) })
}
