package pool

import "errors"

// Kind classifies the sentinel failures the pool can surface. Unlike an
// opaque error string, callers can switch on Kind without caring about
// wrapping depth.
type Kind string

const (
	// KindExecutorShutdown marks an enqueue attempted after Shutdown.
	KindExecutorShutdown Kind = "executor_shutdown"
	// KindBrokenTask marks a Result whose task was destroyed before
	// it ran, during the shutdown drain.
	KindBrokenTask Kind = "broken_task"
)

// ErrExecutorShutdown is returned by Post, Submit, BulkPost, BulkSubmit,
// Enqueue and EnqueueSpan once ShutdownRequested is true.
var ErrExecutorShutdown = &PoolError{Kind: KindExecutorShutdown, msg: "thread pool executor has been shut down"}

// ErrBrokenTask is the terminal error a Result carries when its task was
// drained, unexecuted, during shutdown.
var ErrBrokenTask = &PoolError{Kind: KindBrokenTask, msg: "task was destroyed before it could run"}

// PoolError wraps a Kind with a human-readable message. errors.Is matches
// against the package-level sentinels by Kind, so wrapping with fmt.Errorf
// elsewhere in user code still compares correctly.
type PoolError struct {
	Kind Kind
	msg  string
}

func (e *PoolError) Error() string { return e.msg }

// Is reports whether target is a *PoolError with the same Kind, so
// errors.Is(err, pool.ErrBrokenTask) works regardless of which *PoolError
// value was actually constructed.
func (e *PoolError) Is(target error) bool {
	var pe *PoolError
	if errors.As(target, &pe) {
		return pe.Kind == e.Kind
	}
	return false
}
