// Package use is a catalog of hooks that bind platform state to units.
//
// Every hook takes the calling *runtime.Unit first and must be called from
// the unit's render function, in the same order on every render. A hook
// returns a small result value whose accessors read reactive cells; the
// unit re-renders whenever one of those cells changes.
//
//	loop.Mount(func(u *runtime.Unit) {
//	    bp := use.Breakpoints(u, use.BreakpointsTailwind)
//	    dark := use.PreferredDark(u)
//	    theme := use.LocalStorage(u, "theme", "light", use.StorageOptions[string]{})
//	    render(bp.Active(), dark, theme.Value())
//	})
//
// Hooks never fail because a capability is missing. Without a window,
// matchMedia, storage or clipboard they return documented defaults (+Inf
// sizes, false matches, in-memory values) and report Supported() == false.
// Asynchronous failures surface through Err() or the returned task.
package use
