package pool

import (
	"context"
	"sync"
)

// Result is a one-shot producer/consumer slot carrying a task's value or
// failure to its waiter; Get may be called more than once and every call
// observes the same outcome. Destroying a Result without ever reading
// it is always safe and never blocks; the producer side is responsible
// for calling break_ if the owning task is drained unexecuted.
type Result[T any] struct {
	c    chan outcome[T]
	once sync.Once
}

type outcome[T any] struct {
	value T
	err   error
}

func newResult[T any]() *Result[T] {
	return &Result[T]{c: make(chan outcome[T], 1)}
}

// complete delivers the task's value or failure. It is a no-op past the
// first call, since a task may only produce once.
func (r *Result[T]) complete(v T, err error) {
	r.once.Do(func() {
		r.c <- outcome[T]{value: v, err: err}
	})
}

// break_ transitions the result to the broken_task failure, used by the
// shutdown drain when a queued task is destroyed unexecuted.
func (r *Result[T]) break_() {
	var zero T
	r.complete(zero, ErrBrokenTask)
}

// Get blocks until the task completes, the shutdown drain breaks it, or
// ctx is done, whichever happens first.
func (r *Result[T]) Get(ctx context.Context) (T, error) {
	select {
	case o := <-r.c:
		// Re-buffer so a second Get (or a racing one) still observes
		// the terminal value instead of blocking forever.
		r.c <- o
		return o.value, o.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
