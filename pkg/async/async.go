package async

import (
	"context"
	"fmt"
)

// Future represents the result of an asynchronous computation.
type Future[U any] struct {
	result U
	err    error
	done   chan struct{}
}

// Await waits for the asynchronous function to complete and returns its result and error.
func (f *Future[U]) Await() (U, error) {
	<-f.done
	return f.result, f.err
}

// Done returns a channel that is closed once the computation has finished.
func (f *Future[U]) Done() <-chan struct{} {
	return f.done
}

// IsComplete reports whether the computation has finished, without blocking.
func (f *Future[U]) IsComplete() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Async runs fn(ctx, param) in its own goroutine and returns a Future for its result.
// When ctx is already cancelled fn is not started and the Future completes
// with ctx.Err(). A panic inside fn completes the Future with an error
// wrapping ErrPanic instead of crashing the process.
func Async[T any, U any](ctx context.Context, param T, fn func(context.Context, T) (U, error)) *Future[U] {
	f := &Future[U]{done: make(chan struct{})}

	go func() {
		defer close(f.done)
		defer func() {
			if r := recover(); r != nil {
				var zero U
				f.result = zero
				f.err = fmt.Errorf("%w: %v", ErrPanic, r)
			}
		}()

		if err := ctx.Err(); err != nil {
			f.err = err
			return
		}

		f.result, f.err = fn(ctx, param)
	}()

	return f
}
