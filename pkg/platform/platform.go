package platform

import (
	"context"
	"errors"
	"math"
)

var (
	// ErrUnsupported is returned when a capability is absent.
	ErrUnsupported = errors.New("platform: capability not supported")

	// ErrPermissionDenied is returned by clipboard and similar APIs when
	// the environment refuses the operation.
	ErrPermissionDenied = errors.New("platform: permission denied")
)

// Capability names a probe-able part of the platform.
type Capability string

const (
	CapWindow         Capability = "window"
	CapDocument       Capability = "document"
	CapLocalStorage   Capability = "localStorage"
	CapSessionStorage Capability = "sessionStorage"
	CapMatchMedia     Capability = "matchMedia"
	CapClipboard      Capability = "clipboard"
	CapLegacyCopy     Capability = "execCommand"
	CapNavigator      Capability = "navigator"
	CapViewport       Capability = "viewport"
	CapWebSocket      Capability = "WebSocket"
	CapClock          Capability = "clock"
)

// Document is the document-level event target.
type Document interface {
	EventTarget

	// VisibilityState returns "visible" or "hidden".
	VisibilityState() string
}

// Navigator reports connectivity.
type Navigator interface {
	Online() bool
}

// Viewport reports the inner window size in CSS pixels.
type Viewport interface {
	Size() (width, height float64)
}

// MediaMatcher evaluates media queries.
type MediaMatcher interface {
	MatchMedia(query string) MediaQueryList
}

// MediaQueryList is a live media query. It dispatches EventChange with a
// MediaQueryEvent payload when its match state flips.
type MediaQueryList interface {
	EventTarget
	Matches() bool
	Media() string
}

// MediaQueryEvent is the payload of a media query change.
type MediaQueryEvent struct {
	Media   string
	Matches bool
}

// Clipboard is the asynchronous clipboard API.
type Clipboard interface {
	WriteText(ctx context.Context, text string) error
	ReadText(ctx context.Context) (string, error)
}

// LegacyCopier is the selection-based copy path used when the
// asynchronous clipboard is missing or refuses a write.
type LegacyCopier interface {
	ExecCopy(text string) bool
}

// Platform is the explicit handle to the host environment. Nil fields are
// absent capabilities.
type Platform struct {
	Window         EventTarget
	Document       Document
	LocalStorage   *Storage
	SessionStorage *Storage
	Media          MediaMatcher
	Clipboard      Clipboard
	LegacyCopier   LegacyCopier
	Navigator      Navigator
	Viewport       Viewport
	WebSocket      Dialer
	Clock          Clock
}

// Headless returns a platform with no browser capabilities, as seen during
// server rendering. Only the system clock is available.
func Headless() *Platform {
	return &Platform{Clock: SystemClock{}}
}

// Supports reports whether capability c is present. It is safe on a nil
// platform.
func (p *Platform) Supports(c Capability) bool {
	if p == nil {
		return false
	}
	switch c {
	case CapWindow:
		return p.Window != nil
	case CapDocument:
		return p.Document != nil
	case CapLocalStorage:
		return p.LocalStorage != nil
	case CapSessionStorage:
		return p.SessionStorage != nil
	case CapMatchMedia:
		return p.Media != nil
	case CapClipboard:
		return p.Clipboard != nil
	case CapLegacyCopy:
		return p.LegacyCopier != nil
	case CapNavigator:
		return p.Navigator != nil
	case CapViewport:
		return p.Viewport != nil
	case CapWebSocket:
		return p.WebSocket != nil
	case CapClock:
		return p.Clock != nil
	default:
		return false
	}
}

// ViewportSize returns the viewport size, or +Inf for both dimensions when
// the size is unknown.
func (p *Platform) ViewportSize() (float64, float64) {
	if p == nil || p.Viewport == nil {
		return math.Inf(1), math.Inf(1)
	}
	return p.Viewport.Size()
}

// Online reports connectivity. Without a navigator the process is assumed
// online.
func (p *Platform) Online() bool {
	if p == nil || p.Navigator == nil {
		return true
	}
	return p.Navigator.Online()
}

// MatchMedia evaluates query, returning nil when matchMedia is absent.
func (p *Platform) MatchMedia(query string) MediaQueryList {
	if p == nil || p.Media == nil {
		return nil
	}
	return p.Media.MatchMedia(query)
}

// ClockOrSystem returns the platform clock, falling back to the system
// clock.
func (p *Platform) ClockOrSystem() Clock {
	if p == nil || p.Clock == nil {
		return SystemClock{}
	}
	return p.Clock
}
