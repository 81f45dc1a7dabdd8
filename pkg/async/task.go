package async

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/vango-dev/use/pkg/async"

// ErrAborted is the error of a cancelled task.
var ErrAborted = errors.New("async: task aborted")

// Poster runs callbacks on the loop that owns the caller's state.
type Poster interface {
	Dispatch(fn func())
}

// Status is the settlement state of a task.
type Status int

const (
	Pending Status = iota
	Succeeded
	Failed
	Aborted
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	case Aborted:
		return "aborted"
	default:
		return "unknown"
	}
}

type options struct {
	tracer trace.Tracer
	attrs  []attribute.KeyValue
}

// Option configures Go.
type Option func(*options)

// WithTracer sets the tracer (default: the global provider's tracer).
func WithTracer(t trace.Tracer) Option {
	return func(o *options) {
		o.tracer = t
	}
}

// WithAttributes adds span attributes.
func WithAttributes(attrs ...attribute.KeyValue) Option {
	return func(o *options) {
		o.attrs = append(o.attrs, attrs...)
	}
}

// Task is the handle of one asynchronous operation.
type Task[T any] struct {
	name   string
	poster Poster
	cancel context.CancelFunc
	done   chan struct{}

	aborted atomic.Bool

	mu     sync.Mutex
	status Status
	value  T
	err    error
	thens  []func(T, error)
}

// Go runs fn on a new goroutine. ctx bounds the work; poster receives the
// Then callbacks.
func Go[T any](ctx context.Context, poster Poster, name string, fn func(ctx context.Context) (T, error), opts ...Option) *Task[T] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.tracer == nil {
		o.tracer = otel.Tracer(tracerName)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	workCtx, cancel := context.WithCancel(ctx)
	spanCtx, span := o.tracer.Start(workCtx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(append([]attribute.KeyValue{
			attribute.String("vango.task", name),
		}, o.attrs...)...),
	)

	t := &Task[T]{
		name:   name,
		poster: poster,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer span.End()
		defer cancel()

		var (
			v   T
			err error
		)
		func() {
			defer func() {
				if r := recover(); r != nil {
					err = &PanicError{Value: r}
				}
			}()
			v, err = fn(spanCtx)
		}()

		if t.aborted.Load() || errors.Is(err, context.Canceled) {
			var zero T
			v, err = zero, ErrAborted
		}

		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		t.settle(v, err)
	}()

	return t
}

// Resolved returns a task that already succeeded with v.
func Resolved[T any](poster Poster, name string, v T) *Task[T] {
	t := &Task[T]{name: name, poster: poster, cancel: func() {}, done: make(chan struct{})}
	t.settle(v, nil)
	return t
}

// Rejected returns a task that already failed with err.
func Rejected[T any](poster Poster, name string, err error) *Task[T] {
	t := &Task[T]{name: name, poster: poster, cancel: func() {}, done: make(chan struct{})}
	var zero T
	t.settle(zero, err)
	return t
}

func (t *Task[T]) settle(v T, err error) {
	t.mu.Lock()
	t.value, t.err = v, err
	switch {
	case err == nil:
		t.status = Succeeded
	case errors.Is(err, ErrAborted):
		t.status = Aborted
	default:
		t.status = Failed
	}
	thens := t.thens
	t.thens = nil
	close(t.done)
	t.mu.Unlock()

	for _, fn := range thens {
		t.post(fn, v, err)
	}
}

func (t *Task[T]) post(fn func(T, error), v T, err error) {
	if t.poster == nil {
		fn(v, err)
		return
	}
	t.poster.Dispatch(func() { fn(v, err) })
}

// Name returns the task name.
func (t *Task[T]) Name() string { return t.name }

// Then registers fn to run on the poster once the task settles. If it
// already settled, fn is dispatched immediately.
func (t *Task[T]) Then(fn func(T, error)) *Task[T] {
	t.mu.Lock()
	if t.status == Pending {
		t.thens = append(t.thens, fn)
		t.mu.Unlock()
		return t
	}
	v, err := t.value, t.err
	t.mu.Unlock()

	t.post(fn, v, err)
	return t
}

// Done is closed when the task settles.
func (t *Task[T]) Done() <-chan struct{} { return t.done }

// Wait blocks until the task settles or ctx is done.
func (t *Task[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-t.done:
		return t.Result()
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Result returns the settled value and error. Before settlement it
// returns the zero value and a nil error.
func (t *Task[T]) Result() (T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.value, t.err
}

// Status returns the settlement state.
func (t *Task[T]) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// Cancel aborts the task. A task that already settled is unaffected.
func (t *Task[T]) Cancel() {
	t.mu.Lock()
	pending := t.status == Pending
	t.mu.Unlock()

	if pending {
		t.aborted.Store(true)
	}
	t.cancel()
}
