// Package platform models the host environment hooks observe: event
// targets, storage areas, media queries, the clipboard, timers and
// websocket dialing.
//
// Nothing in this package is reached through globals. A *Platform is an
// explicit handle handed to the runtime loop; every capability is a field
// that may be nil. A nil field means the capability is absent (server
// render, headless process, restricted environment) and hooks fall back to
// documented defaults instead of failing:
//
//	p := platform.Headless()
//	p.Supports(platform.CapMatchMedia) // false
//
// Browser is a complete in-memory implementation used by tests, the CLI demo
// and any process that wants browser-like semantics without a browser:
//
//	b := platform.NewBrowser(platform.BrowserOptions{Width: 500, Height: 800})
//	p := b.Platform()
//	b.Resize(1024, 768) // fires "resize" and media query "change" events
package platform
