package use

import (
	"context"
	"time"

	"github.com/vango-dev/use/internal/errors"
	"github.com/vango-dev/use/pkg/async"
	"github.com/vango-dev/use/pkg/platform"
	"github.com/vango-dev/use/pkg/reactive"
	"github.com/vango-dev/use/pkg/runtime"
)

// DefaultCopiedDuring is how long Copied() stays true after a copy.
const DefaultCopiedDuring = 1500 * time.Millisecond

// ClipboardOptions configures Clipboard.
type ClipboardOptions struct {
	// NoLegacy disables the selection-based fallback.
	NoLegacy bool

	// CopiedDuring defaults to DefaultCopiedDuring.
	CopiedDuring time.Duration

	// Timeout bounds each asynchronous clipboard call (default 5s).
	Timeout time.Duration
}

// ClipboardState is the result of Clipboard.
type ClipboardState struct {
	st *clipboardState
}

// Text returns the last copied text.
func (c *ClipboardState) Text() string { return c.st.text.Get() }

// Copied reports whether a copy succeeded within the last CopiedDuring.
func (c *ClipboardState) Copied() bool { return c.st.copied.Get() }

// Err returns the last copy failure, or nil.
func (c *ClipboardState) Err() error { return c.st.err.Get() }

// Supported reports whether any copy path is available.
func (c *ClipboardState) Supported() bool { return c.st.supported() }

// Copy writes text to the clipboard. When the asynchronous clipboard is
// missing or refuses the write, the legacy copy path is tried. The task
// settles with the copied text; the state is updated on the loop.
func (c *ClipboardState) Copy(text string) *async.Task[string] {
	return c.st.copy(text)
}

type clipboardState struct {
	unit *runtime.Unit
	p    *platform.Platform
	opts ClipboardOptions

	text   *reactive.Cell[string]
	copied *reactive.Cell[bool]
	err    *reactive.Cell[error]

	seq      async.Sequence
	timer    platform.Timer
	inflight func()
}

func (st *clipboardState) legacy() platform.LegacyCopier {
	if st.opts.NoLegacy {
		return nil
	}
	return st.p.LegacyCopier
}

func (st *clipboardState) supported() bool {
	return st.p.Clipboard != nil || st.legacy() != nil
}

func (st *clipboardState) copy(text string) *async.Task[string] {
	n := st.seq.Next()
	var task *async.Task[string]

	switch {
	case st.p.Clipboard != nil:
		clipboard, legacy, timeout := st.p.Clipboard, st.legacy(), st.opts.Timeout
		task = async.Go(context.Background(), st.unit, "clipboard.write", func(ctx context.Context) (string, error) {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			err := clipboard.WriteText(ctx, text)
			if err == nil {
				return text, nil
			}
			if legacy != nil && legacy.ExecCopy(text) {
				return text, nil
			}
			return "", errors.New("T002").WithOp("clipboard.copy").Wrap(err)
		})
		if st.inflight != nil {
			st.inflight()
		}
		st.inflight = task.Cancel

	case st.legacy() != nil:
		if st.legacy().ExecCopy(text) {
			task = async.Resolved(st.unit, "clipboard.write", text)
		} else {
			task = async.Rejected[string](st.unit, "clipboard.write", errors.New("T002").WithOp("clipboard.copy"))
		}

	default:
		task = async.Rejected[string](st.unit, "clipboard.write", errors.New("U003").WithOp("clipboard.copy"))
	}

	return task.Then(func(v string, err error) {
		if !st.seq.Current(n) {
			return
		}
		if err != nil {
			st.err.Set(err)
			st.copied.Set(false)
			return
		}
		st.err.Set(nil)
		st.text.Set(v)
		st.copied.Set(true)
		st.armReset(n)
	})
}

func (st *clipboardState) armReset(n uint64) {
	if st.timer != nil {
		st.timer.Stop()
	}
	st.timer = st.p.ClockOrSystem().AfterFunc(st.opts.CopiedDuring, func() {
		st.unit.Dispatch(func() {
			if st.seq.Current(n) {
				st.copied.Set(false)
			}
		})
	})
}

func (st *clipboardState) dispose() {
	if st.timer != nil {
		st.timer.Stop()
	}
	if st.inflight != nil {
		st.inflight()
	}
	st.seq.Invalidate()
}

// Clipboard exposes copy-to-clipboard with a legacy fallback.
func Clipboard(u *runtime.Unit, opts ClipboardOptions) *ClipboardState {
	if opts.CopiedDuring <= 0 {
		opts.CopiedDuring = DefaultCopiedDuring
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}

	st := runtime.UseSlot(u, "use.Clipboard", func() *clipboardState {
		s := &clipboardState{
			unit:   u,
			p:      u.Platform(),
			opts:   opts,
			text:   reactive.NewCell(""),
			copied: reactive.NewCell(false),
			err:    reactive.NewCell[error](nil),
		}
		u.OnCleanup(s.dispose)
		return s
	})
	u.Watch(st.text)
	u.Watch(st.copied)
	u.Watch(st.err)

	return &ClipboardState{st: st}
}
