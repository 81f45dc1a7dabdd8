// Package runtime runs units on a single-threaded cooperative loop.
//
// A Unit is the Go counterpart of a component instance: a render function
// plus the hook state it accumulates across renders. Units are mounted on a
// Loop, which owns the goroutine every render, event callback and binder
// runs on.
//
//	loop := runtime.NewLoop(runtime.Config{Platform: browser.Platform()})
//	unit := loop.Mount(func(u *runtime.Unit) {
//	    size := use.WindowSize(u)
//	    fmt.Println(size.Width())
//	})
//	defer unit.Dispose()
//	go loop.Run(ctx)
//
// Work produced off the loop (timers, goroutines, I/O) is applied with
// Loop.Dispatch. After every dispatched callback the loop re-renders the
// units that were marked dirty, then attaches the binders those renders
// scheduled.
//
// # Binders
//
// Unit.Effect creates a Binder, the lifecycle of one external
// registration. A binder moves from Unattached to Attached when its setup
// runs after a render, re-runs (cleanup first) when its dependencies
// change, and moves to Detached when the unit is disposed or the binder is
// detached explicitly. Detached is final.
//
// # Tests
//
// Tests drive the loop synchronously with Flush instead of Run:
//
//	browser.Resize(500, 800)
//	loop.Flush()
package runtime
