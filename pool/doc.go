// Package pool provides a dynamically-sized thread-pool executor.
//
// The primary type is Pool, a fixed-capacity roster of worker goroutines
// (each pinned to its own OS thread while active) that accept callables
// and resumable handles, place them on worker-owned FIFO queues using a
// three-rule placement algorithm, and return results through one-shot
// Result values.
//
// # Basic usage
//
//	p := pool.New("workers", 4, 10*time.Second)
//	defer p.Shutdown()
//
//	ctx := context.Background()
//	_ = p.Post(ctx, func(ctx context.Context) { fmt.Println("hi") })
//
//	res, err := pool.Submit(p, ctx, func(ctx context.Context) (int, error) {
//	    return 42, nil
//	})
//	v, err := res.Get(ctx)
//
// # Placement
//
// Enqueueing a task applies three rules in order: hand it to an idle
// worker if one exists, otherwise enqueue to the caller's own worker if
// the caller is itself running on this pool, otherwise round-robin
// across the roster. A worker idle for longer than maxIdleTime exits and
// its slot goes dormant until the next placement decision reactivates it.
//
// # Shutdown
//
// Shutdown is idempotent: the first caller signals every worker, joins
// every worker thread, and destroys any task still sitting in a local
// queue, breaking its Result (if any) with ErrBrokenTask. Calls made
// after shutdown fail immediately with ErrExecutorShutdown.
package pool
