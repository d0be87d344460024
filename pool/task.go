package pool

import "context"

// ResumableHandle is an opaque, externally-owned resumable execution
// token — the integration point for coroutine-style callers. Ownership
// transfers to the pool on a successful Enqueue/EnqueueSpan.
type ResumableHandle interface {
	// Resume runs the handle to its next suspension point or to
	// completion. It is called on a worker thread with no pool locks
	// held.
	Resume(ctx context.Context)
}

// task is the unit placed on a worker's local queue: either a callable
// invocation (post/submit) or a resumable handle (enqueue).
type task interface {
	// run executes the task body. It must never be called with any
	// pool or worker mutex held.
	run(ctx context.Context)
	// destroy is invoked instead of run when the task is drained,
	// unexecuted, during shutdown. It must break any Result the task
	// owns with ErrBrokenTask.
	destroy()
}

// callableTask wraps a fire-and-forget invocation posted via Post or
// BulkPost. Faults are handed to the pool's failure sink; the task has
// no Result to break on destroy.
type callableTask struct {
	fn   func(context.Context)
	pool *Pool
}

func (t *callableTask) run(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			t.pool.reportFault(r)
		}
	}()
	t.fn(ctx)
}

func (t *callableTask) destroy() {}

// valueTask wraps a value-producing invocation submitted via Submit or
// BulkSubmit. Both a panic and a returned error land in the Result as
// its failure.
type valueTask[T any] struct {
	fn     func(context.Context) (T, error)
	result *Result[T]
}

func (t *valueTask[T]) run(ctx context.Context) {
	var (
		value T
		err   error
	)
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = &panicError{recovered: r}
			}
		}()
		value, err = t.fn(ctx)
	}()
	t.result.complete(value, err)
}

func (t *valueTask[T]) destroy() {
	t.result.break_()
}

// handleTask wraps an externally-owned resumable handle enqueued via
// Enqueue/EnqueueSpan. There is no Result: the handle's own completion
// path (owned by the coroutine runtime) is responsible for observing
// that it was never resumed, if that matters to the caller.
type handleTask struct {
	handle ResumableHandle
}

func (t *handleTask) run(ctx context.Context) { t.handle.Resume(ctx) }
func (t *handleTask) destroy()                {}

// panicError wraps a recovered panic value so Submit callers can recover
// the original payload via errors.As if they choose to.
type panicError struct {
	recovered any
}

func (e *panicError) Error() string {
	return "task panicked: " + formatRecovered(e.recovered)
}

func formatRecovered(r any) string {
	if err, ok := r.(error); ok {
		return err.Error()
	}
	if s, ok := r.(string); ok {
		return s
	}
	return "non-error panic value"
}
