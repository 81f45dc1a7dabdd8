// Package async runs blocking work off the loop and applies the result on
// it.
//
// Go starts fn on a goroutine inside an OpenTelemetry span and returns a
// Task. Callbacks registered with Then are dispatched onto the loop once
// the task settles, so they may touch unit state freely:
//
//	task := async.Go(ctx, unit, "clipboard.write", func(ctx context.Context) (string, error) {
//	    return text, clipboard.WriteText(ctx, text)
//	})
//	task.Then(func(text string, err error) {
//	    copied.Set(err == nil)
//	})
//
// Cancel aborts the task: its context is cancelled and it settles with
// ErrAborted regardless of what fn returns. A Sequence drops results of
// superseded tasks.
package async
