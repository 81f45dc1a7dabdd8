package use

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/vango-dev/use/internal/errors"
	"github.com/vango-dev/use/pkg/async"
	"github.com/vango-dev/use/pkg/platform"
	"github.com/vango-dev/use/pkg/reactive"
	"github.com/vango-dev/use/pkg/runtime"
)

// WebSocketStatus is the connection state of a WebSocket hook.
type WebSocketStatus string

const (
	StatusConnecting WebSocketStatus = "CONNECTING"
	StatusOpen       WebSocketStatus = "OPEN"
	StatusClosed     WebSocketStatus = "CLOSED"
)

// WebSocketOptions configures WebSocket.
type WebSocketOptions struct {
	// Dialer defaults to the platform dialer.
	Dialer platform.Dialer
	Header http.Header

	// Manual leaves the connection closed until Open is called.
	Manual bool

	// AutoReconnect redials after an unexpected close, up to Retries
	// times (zero means unlimited), waiting RetryDelay (default 1s)
	// between attempts.
	AutoReconnect bool
	Retries       int
	RetryDelay    time.Duration

	// Heartbeat sends HeartbeatMessage (default "ping") at this interval
	// while open. Zero disables it.
	Heartbeat        time.Duration
	HeartbeatMessage string

	// OnMessage is called on the loop for every received message.
	OnMessage func(data string)
}

// WebSocketState is the result of WebSocket.
type WebSocketState struct {
	st *wsState
}

// Status returns the connection state.
func (w *WebSocketState) Status() WebSocketStatus { return w.st.status.Get() }

// Data returns the last received message.
func (w *WebSocketState) Data() string { return w.st.data.Get() }

// Err returns the last connection failure, or nil.
func (w *WebSocketState) Err() error { return w.st.err.Get() }

// Send writes data when the connection is open and buffers it until the
// next open otherwise. It reports whether data was written now.
func (w *WebSocketState) Send(data string) bool { return w.st.send(data) }

// Open (re)connects.
func (w *WebSocketState) Open() {
	w.st.retries = 0
	w.st.open()
}

// Close closes the connection and stops reconnecting.
func (w *WebSocketState) Close() { w.st.close() }

type wsState struct {
	unit *runtime.Unit
	url  string
	opts WebSocketOptions

	status *reactive.Cell[WebSocketStatus]
	data   *reactive.Cell[string]
	err    *reactive.Cell[error]

	conn      platform.Conn
	dial      func()
	seq       async.Sequence
	buffer    []string
	retries   int
	explicit  bool
	reconnect *timerSlot
	heartbeat *timerSlot
}

func (st *wsState) dialer() platform.Dialer {
	if st.opts.Dialer != nil {
		return st.opts.Dialer
	}
	return st.unit.Platform().WebSocket
}

func (st *wsState) open() {
	st.teardown()
	st.explicit = false

	dialer := st.dialer()
	if dialer == nil {
		st.err.Set(errors.New("U004").WithOp("websocket.open"))
		st.status.Set(StatusClosed)
		return
	}

	n := st.seq.Next()
	url, header := st.url, st.opts.Header
	st.status.Set(StatusConnecting)

	task := async.Go(context.Background(), st.unit, "websocket.dial", func(ctx context.Context) (platform.Conn, error) {
		conn, err := dialer.Dial(ctx, url, header)
		if err == nil && ctx.Err() != nil {
			conn.Close()
			return nil, ctx.Err()
		}
		return conn, err
	})
	st.dial = task.Cancel
	task.Then(func(conn platform.Conn, err error) {
		if !st.seq.Current(n) {
			if conn != nil {
				conn.Close()
			}
			return
		}
		st.dial = nil
		if err != nil {
			if stderrors.Is(err, async.ErrAborted) {
				return
			}
			st.err.Set(errors.New("T005").WithOp("websocket.dial").WithDetail(url).Wrap(err))
			st.status.Set(StatusClosed)
			st.scheduleReconnect()
			return
		}
		st.connected(n, conn)
	})
}

func (st *wsState) connected(n uint64, conn platform.Conn) {
	st.conn = conn
	st.retries = 0
	st.err.Set(nil)
	st.status.Set(StatusOpen)
	st.unit.Logger().Debug("websocket open", "url", st.url)

	buffered := st.buffer
	st.buffer = nil
	for _, msg := range buffered {
		st.send(msg)
	}
	st.beat()

	go st.read(n, conn)
}

// read runs on its own goroutine and hands every message to the loop.
func (st *wsState) read(n uint64, conn platform.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			st.unit.Dispatch(func() {
				if st.seq.Current(n) {
					st.closed(err)
				}
			})
			return
		}
		msg := string(data)
		st.unit.Dispatch(func() {
			if !st.seq.Current(n) {
				return
			}
			st.data.Set(msg)
			if st.opts.OnMessage != nil {
				st.opts.OnMessage(msg)
			}
		})
	}
}

func (st *wsState) closed(err error) {
	st.conn = nil
	st.heartbeat.stop()
	st.status.Set(StatusClosed)
	if st.explicit {
		return
	}
	st.err.Set(errors.New("T005").WithOp("websocket.read").WithDetail(st.url).Wrap(err))
	st.scheduleReconnect()
}

func (st *wsState) scheduleReconnect() {
	if !st.opts.AutoReconnect || st.explicit {
		return
	}
	if st.opts.Retries > 0 && st.retries >= st.opts.Retries {
		st.unit.Logger().Warn("websocket reconnect attempts exhausted", "url", st.url, "retries", st.retries)
		return
	}
	st.retries++
	st.reconnect.start(st.opts.RetryDelay, st.open)
}

func (st *wsState) beat() {
	if st.opts.Heartbeat <= 0 {
		return
	}
	st.heartbeat.start(st.opts.Heartbeat, func() {
		if st.conn == nil {
			return
		}
		st.send(st.opts.HeartbeatMessage)
		st.beat()
	})
}

func (st *wsState) send(data string) bool {
	if st.conn == nil || st.status.Get() != StatusOpen {
		st.buffer = append(st.buffer, data)
		return false
	}
	if err := st.conn.WriteMessage(platform.TextMessage, []byte(data)); err != nil {
		st.err.Set(errors.New("T005").WithOp("websocket.send").Wrap(err))
		return false
	}
	return true
}

// teardown drops the current connection attempt and connection without
// touching the reconnect policy.
func (st *wsState) teardown() {
	st.seq.Invalidate()
	st.reconnect.stop()
	st.heartbeat.stop()
	if st.dial != nil {
		st.dial()
		st.dial = nil
	}
	if st.conn != nil {
		st.conn.Close()
		st.conn = nil
	}
}

func (st *wsState) close() {
	st.explicit = true
	st.teardown()
	st.status.Set(StatusClosed)
}

// WebSocket keeps a websocket connection to url. Changing url reconnects.
func WebSocket(u *runtime.Unit, url string, opts WebSocketOptions) *WebSocketState {
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = time.Second
	}
	if opts.HeartbeatMessage == "" {
		opts.HeartbeatMessage = "ping"
	}

	st := runtime.UseSlot(u, "use.WebSocket", func() *wsState {
		return &wsState{
			unit:      u,
			status:    reactive.NewCell(StatusClosed),
			data:      reactive.NewCell(""),
			err:       reactive.NewCell[error](nil),
			reconnect: newTimerSlot(u),
			heartbeat: newTimerSlot(u),
		}
	})
	u.Watch(st.status)
	u.Watch(st.data)
	u.Watch(st.err)
	st.url, st.opts = url, opts

	u.Effect([]any{url}, func() reactive.Cleanup {
		if !opts.Manual {
			st.open()
		}
		return st.close
	})
	return &WebSocketState{st: st}
}
