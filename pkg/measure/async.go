package measure

import (
	"context"
)

// Future is the pending result of a call started by a function wrapped with
// Async.
type Future[R any] struct {
	done chan struct{}

	result   R
	err      error
	panicked bool
	panicVal any
}

// Done is closed once the call has finished.
func (f *Future[R]) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the call finishes or ctx ends. A finished call wins over
// an ended ctx. If the call panicked, Await panics with the same value.
func (f *Future[R]) Await(ctx context.Context) (R, error) {
	select {
	case <-f.done:
	default:
		select {
		case <-f.done:
		case <-ctx.Done():
			var zero R
			return zero, ctx.Err()
		}
	}

	if f.panicked {
		panic(f.panicVal)
	}
	return f.result, f.err
}

// call runs fn and captures a panic from it. It reports whether fn returned
// normally.
func (f *Future[R]) call(ctx context.Context, fn func(context.Context) (R, error)) (returned bool) {
	defer func() {
		if v := recover(); v != nil {
			f.panicked = true
			f.panicVal = v
		}
	}()

	f.result, f.err = fn(ctx)
	return true
}

// Async wraps fn so each call runs it on its own goroutine and records a
// sample under AsyncMetricName once fn returns a nil error. The timer starts
// when the wrapped function is called, so time fn spends blocked is included.
// Abandoning the Future does not cancel fn; cancel the context passed to the
// wrapped function for that.
func Async[R any](m *Measurer, fn func(context.Context) (R, error), opts ...Option) func(context.Context) *Future[R] {
	p := m.probe(AsyncMetricName, fn, opts)
	return func(ctx context.Context) *Future[R] {
		f := &Future[R]{done: make(chan struct{})}
		ctx, r := p.begin(ctx)

		go func() {
			defer close(f.done)
			defer r.abandon()

			if f.call(ctx, fn) {
				r.end(f.err)
			}
		}()

		return f
	}
}
